package depgraph

import (
	"github.com/jward/depgraph/internal/extract"
	"github.com/jward/depgraph/internal/graph"
	"github.com/jward/depgraph/internal/resolve"
	"github.com/jward/depgraph/internal/store"
)

// Public type aliases for internal types used in the Engine and QueryBuilder
// APIs. These are Go type aliases (=), identical to the internal types at
// compile time. External consumers use these names; no conversion is needed.

type ComponentIdentity = graph.ComponentIdentity
type DependencyGraph = graph.DependencyGraph
type Dump = graph.Dump
type Store = store.Store
type StoredFileError = store.FileError

type ModuleNotFoundError = resolve.ModuleNotFoundError
type PathResolutionError = resolve.PathResolutionError
type ParseError = extract.ParseError

// DefaultComponent names a module's default export.
const DefaultComponent = graph.DefaultComponent

// Sentinels matched with errors.Is.
var (
	ErrModuleNotFound = resolve.ErrModuleNotFound
	ErrPathResolution = resolve.ErrPathResolution
	ErrParse          = extract.ErrParse
)

// NewComponentIdentity returns the identity of component name in filePath.
func NewComponentIdentity(filePath, name string) ComponentIdentity {
	return graph.NewComponentIdentity(filePath, name)
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return graph.New()
}
