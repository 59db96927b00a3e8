// Package graph holds the component dependency graph. Edges are stored in
// reverse orientation: each component maps to the components that depend on it.
package graph

import "sort"

// DefaultComponent is the component name used for a module's default export.
const DefaultComponent = "Default"

// ComponentIdentity names an exported component: the canonical path of the
// declaring file and the exported name (never a local alias).
type ComponentIdentity struct {
	FilePath      string `json:"file_path"`
	ComponentName string `json:"component_name"`
}

// NewComponentIdentity builds a ComponentIdentity. The path is not checked.
func NewComponentIdentity(filePath, componentName string) ComponentIdentity {
	return ComponentIdentity{FilePath: filePath, ComponentName: componentName}
}

func (c ComponentIdentity) String() string {
	return c.FilePath + ":" + c.ComponentName
}

// Dump is the serialisable form of a DependencyGraph:
// file path → component name → ordered dependents.
type Dump map[string]map[string][]ComponentIdentity

// DependencyGraph records, for every depended-upon component, the ordered
// and deduplicated list of components that depend on it.
//
// A DependencyGraph is not safe for concurrent mutation.
type DependencyGraph struct {
	data map[string]map[string][]ComponentIdentity
}

// New returns an empty graph.
func New() *DependencyGraph {
	return &DependencyGraph{data: make(map[string]map[string][]ComponentIdentity)}
}

// FromDump rebuilds a graph from a Dump. The dump is copied.
func FromDump(d Dump) *DependencyGraph {
	g := New()
	for file, comps := range d {
		for name, deps := range comps {
			for _, dep := range deps {
				g.AddDependency(dep, NewComponentIdentity(file, name))
			}
		}
	}
	return g
}

// AddDependency records that current depends on dependOn. Adding the same
// pair twice is a no-op.
func (g *DependencyGraph) AddDependency(current, dependOn ComponentIdentity) {
	comps, ok := g.data[dependOn.FilePath]
	if !ok {
		comps = make(map[string][]ComponentIdentity)
		g.data[dependOn.FilePath] = comps
	}
	deps := comps[dependOn.ComponentName]
	for _, d := range deps {
		if d == current {
			return
		}
	}
	comps[dependOn.ComponentName] = append(deps, current)
}

// DependentsOf returns the components that depend on (filePath, componentName),
// in insertion order. Unknown components yield an empty result.
func (g *DependencyGraph) DependentsOf(filePath, componentName string) []ComponentIdentity {
	deps := g.data[filePath][componentName]
	if len(deps) == 0 {
		return nil
	}
	out := make([]ComponentIdentity, len(deps))
	copy(out, deps)
	return out
}

// Files returns the paths of all depended-upon files, sorted.
func (g *DependencyGraph) Files() []string {
	files := make([]string, 0, len(g.data))
	for f := range g.data {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Components returns the depended-upon component names of a file, sorted.
func (g *DependencyGraph) Components(filePath string) []string {
	comps := g.data[filePath]
	names := make([]string, 0, len(comps))
	for n := range comps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of dependency edges.
func (g *DependencyGraph) Len() int {
	n := 0
	for _, comps := range g.data {
		for _, deps := range comps {
			n += len(deps)
		}
	}
	return n
}

// Dump returns a deep copy of the graph contents.
func (g *DependencyGraph) Dump() Dump {
	d := make(Dump, len(g.data))
	for file, comps := range g.data {
		cm := make(map[string][]ComponentIdentity, len(comps))
		for name, deps := range comps {
			cp := make([]ComponentIdentity, len(deps))
			copy(cp, deps)
			cm[name] = cp
		}
		d[file] = cm
	}
	return d
}
