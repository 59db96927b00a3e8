package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/depgraph/internal/graph"
)

// Resolver maps an import specifier to a canonical file path.
type Resolver interface {
	Resolve(specifier, fromFile string) (string, error)
}

// Binding is one entry of a file's symbol table.
type Binding struct {
	Local     string
	Component graph.ComponentIdentity
}

// SymbolTable maps the local names introduced by a file's imports to the
// components they refer to. Rebinding a name replaces the earlier entry but
// keeps its position.
type SymbolTable struct {
	order   []string
	byLocal map[string]graph.ComponentIdentity
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byLocal: make(map[string]graph.ComponentIdentity)}
}

// Bind sets local to refer to id.
func (s *SymbolTable) Bind(local string, id graph.ComponentIdentity) {
	if _, ok := s.byLocal[local]; !ok {
		s.order = append(s.order, local)
	}
	s.byLocal[local] = id
}

// Lookup returns the component bound to local.
func (s *SymbolTable) Lookup(local string) (graph.ComponentIdentity, bool) {
	id, ok := s.byLocal[local]
	return id, ok
}

// Len returns the number of bound names.
func (s *SymbolTable) Len() int {
	return len(s.order)
}

// Bindings returns all bindings in first-bound order.
func (s *SymbolTable) Bindings() []Binding {
	out := make([]Binding, 0, len(s.order))
	for _, local := range s.order {
		out = append(out, Binding{Local: local, Component: s.byLocal[local]})
	}
	return out
}

// Extractor builds per-file symbol tables from import declarations.
type Extractor struct {
	resolver  Resolver
	externals []string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExternals skips import declarations whose specifier equals one of names
// or starts with name + "/". Skipped declarations bind nothing.
func WithExternals(names ...string) ExtractorOption {
	return func(x *Extractor) {
		x.externals = append(x.externals, names...)
	}
}

// NewExtractor creates an Extractor that resolves specifiers with r.
func NewExtractor(r Resolver, opts ...ExtractorOption) *Extractor {
	x := &Extractor{resolver: r}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Extractor) isExternal(specifier string) bool {
	for _, name := range x.externals {
		if specifier == name || strings.HasPrefix(specifier, name+"/") {
			return true
		}
	}
	return false
}

// Imports walks the top-level import declarations of t and returns the
// resulting symbol table. Namespace imports bind nothing. The first
// specifier that fails to resolve aborts the walk and no table is returned.
func (x *Extractor) Imports(t *Tree) (*SymbolTable, error) {
	table := NewSymbolTable()
	root := t.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		if node.Type() != "import_statement" {
			continue
		}
		if err := x.importStatement(t, node, table); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (x *Extractor) importStatement(t *Tree, node *sitter.Node, table *SymbolTable) error {
	src := node.ChildByFieldName("source")
	if src == nil {
		// import x = require("...")
		return nil
	}
	specifier := stringValue(t.text(src))
	if x.isExternal(specifier) {
		return nil
	}

	resolved, err := x.resolver.Resolve(specifier, t.Path)
	if err != nil {
		return err
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			spec := clause.NamedChild(j)
			switch spec.Type() {
			case "identifier":
				table.Bind(t.text(spec), graph.NewComponentIdentity(resolved, graph.DefaultComponent))
			case "named_imports":
				bindNamed(t, spec, resolved, table)
			case "namespace_import":
				// Not tracked: a namespace binding names no single component.
			}
		}
	}
	return nil
}

func bindNamed(t *Tree, named *sitter.Node, resolved string, table *SymbolTable) {
	for k := 0; k < int(named.NamedChildCount()); k++ {
		spec := named.NamedChild(k)
		if spec.Type() != "import_specifier" {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}
		local := t.text(name)
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			local = t.text(alias)
		}

		// import { "quoted-name" as local } keeps the local name.
		imported := local
		if name.Type() != "string" {
			imported = exportedName(t.text(name))
		}
		table.Bind(local, graph.NewComponentIdentity(resolved, imported))
	}
}

// stringValue strips the quotes from a string literal.
func stringValue(lit string) string {
	if len(lit) >= 2 {
		return lit[1 : len(lit)-1]
	}
	return lit
}
