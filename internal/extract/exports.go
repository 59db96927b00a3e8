package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/depgraph/internal/graph"
)

// Export is a component exported from a file, together with the identifiers
// its definition refers to.
type Export struct {
	Name string
	Line int // 1-based line of the export statement

	refs map[string]struct{}
}

// References reports whether the export's definition mentions local.
func (e Export) References(local string) bool {
	_, ok := e.refs[local]
	return ok
}

// declarationTypes are the top-level declaration node kinds that introduce
// names usable by an export clause.
var declarationTypes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"class_declaration":              true,
	"abstract_class_declaration":     true,
	"lexical_declaration":            true,
	"variable_declaration":           true,
	"interface_declaration":          true,
	"type_alias_declaration":         true,
	"enum_declaration":               true,
	"ambient_declaration":            true,
	"module":                         true,
	"internal_module":                true,
}

// referenceTypes are the node kinds whose text can name an imported binding.
var referenceTypes = map[string]bool{
	"identifier":                    true,
	"type_identifier":               true,
	"shorthand_property_identifier": true,
}

// namedNode pairs a declared name with the node that defines it.
type namedNode struct {
	name string
	node *sitter.Node
}

// Exports returns the components exported by t in source order. Re-exports
// (export ... from) and export assignments are not components of this file.
func Exports(t *Tree) []Export {
	root := t.Root()
	locals := make(map[string][]*sitter.Node)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		decl := node
		if node.Type() == "export_statement" {
			decl = node.ChildByFieldName("declaration")
		}
		if decl == nil || !declarationTypes[decl.Type()] {
			continue
		}
		for _, nn := range declaredNames(t, decl) {
			locals[nn.name] = append(locals[nn.name], nn.node)
		}
	}

	var exports []Export
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "export_statement" || node.ChildByFieldName("source") != nil {
			continue
		}
		exports = append(exports, exportStatement(t, node, locals)...)
	}
	return exports
}

func exportStatement(t *Tree, node *sitter.Node, locals map[string][]*sitter.Node) []Export {
	line := int(node.StartPoint().Row) + 1
	decl := node.ChildByFieldName("declaration")

	if isDefaultExport(node) {
		e := Export{Name: graph.DefaultComponent, Line: line, refs: make(map[string]struct{})}
		body := decl
		if body == nil {
			body = node.ChildByFieldName("value")
		}
		if body == nil {
			return nil
		}
		collectRefs(t, body, e.refs)
		// export default Layout: follow the name to its declaration.
		if body.Type() == "identifier" {
			for _, n := range locals[t.text(body)] {
				collectRefs(t, n, e.refs)
			}
		}
		return []Export{e}
	}

	if decl != nil {
		var out []Export
		for _, nn := range declaredNames(t, decl) {
			e := Export{Name: nn.name, Line: line, refs: make(map[string]struct{})}
			collectRefs(t, nn.node, e.refs)
			out = append(out, e)
		}
		return out
	}

	var out []Export
	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			spec := clause.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := spec.ChildByFieldName("name")
			if name == nil {
				continue
			}
			local := t.text(name)
			exported := local
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = t.text(alias)
				if alias.Type() == "string" {
					exported = stringValue(exported)
				}
			}
			e := Export{Name: exportedName(exported), Line: line, refs: map[string]struct{}{local: {}}}
			for _, n := range locals[local] {
				collectRefs(t, n, e.refs)
			}
			out = append(out, e)
		}
	}
	return out
}

func isDefaultExport(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			return true
		}
	}
	return false
}

// exportedName maps the "default" export name to the Default sentinel.
func exportedName(name string) string {
	if name == "default" {
		return graph.DefaultComponent
	}
	return name
}

// declaredNames lists the names a declaration introduces with their
// defining nodes. Variable declarations yield one entry per bound name.
func declaredNames(t *Tree, decl *sitter.Node) []namedNode {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		var out []namedNode
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() != "variable_declarator" {
				continue
			}
			name := d.ChildByFieldName("name")
			if name == nil {
				continue
			}
			for _, n := range patternNames(t, name) {
				out = append(out, namedNode{name: n, node: d})
			}
		}
		return out
	case "ambient_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			if inner := decl.NamedChild(i); declarationTypes[inner.Type()] {
				return declaredNames(t, inner)
			}
		}
		return nil
	default:
		name := decl.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		return []namedNode{{name: t.text(name), node: decl}}
	}
}

// patternNames returns the identifiers bound by a declarator name, which may
// be a destructuring pattern.
func patternNames(t *Tree, n *sitter.Node) []string {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []string{t.text(n)}
	case "pair_pattern":
		if v := n.ChildByFieldName("value"); v != nil {
			return patternNames(t, v)
		}
		return nil
	case "assignment_pattern", "object_assignment_pattern":
		if l := n.ChildByFieldName("left"); l != nil {
			return patternNames(t, l)
		}
		return nil
	}
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, patternNames(t, n.NamedChild(i))...)
	}
	return out
}

func collectRefs(t *Tree, n *sitter.Node, refs map[string]struct{}) {
	if referenceTypes[n.Type()] {
		refs[t.text(n)] = struct{}{}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectRefs(t, n.NamedChild(i), refs)
	}
}
