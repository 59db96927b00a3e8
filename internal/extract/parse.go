package extract

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrParse is wrapped by ParseError.
var ErrParse = errors.New("parse failed")

// ParseError locates the first syntax error in a file. Line and Column are
// 1-based.
type ParseError struct {
	File      string
	Line      int
	Column    int
	StartByte int
	EndByte   int
	Message   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Tree is a parsed source file.
type Tree struct {
	Path   string
	Source []byte
	tree   *sitter.Tree
}

// Root returns the program node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

func (t *Tree) text(n *sitter.Node) string {
	return n.Content(t.Source)
}

// Parse parses src as TypeScript with JSX. A tree containing error or
// missing nodes is rejected with a *ParseError.
func Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsxGrammar())

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	t := &Tree{Path: path, Source: src, tree: st}

	if root := st.RootNode(); root.HasError() {
		pe := &ParseError{File: path, Message: "syntax error"}
		if bad := firstErrorNode(root); bad != nil {
			fillSpan(pe, bad)
			if bad.IsMissing() {
				pe.Message = fmt.Sprintf("missing %s", bad.Type())
			} else {
				pe.Message = fmt.Sprintf("unexpected %q", truncate(bad.Content(src), 40))
			}
		}
		st.Close()
		return nil, pe
	}
	return t, nil
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func fillSpan(pe *ParseError, n *sitter.Node) {
	p := n.StartPoint()
	pe.Line = int(p.Row) + 1
	pe.Column = int(p.Column) + 1
	pe.StartByte = int(n.StartByte())
	pe.EndByte = int(n.EndByte())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
