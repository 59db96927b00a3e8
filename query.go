package depgraph

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jward/depgraph/internal/store"
)

// Metadata keys written by Result.Save.
const (
	MetaRoot       = "root"
	MetaAnalyzedAt = "analyzed_at"
	MetaFiles      = "files"
)

// OpenStore opens (creating if needed) the SQLite database at dbPath and
// applies the schema.
func OpenStore(dbPath string) (*Store, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

// Save replaces the run stored in s with this result.
func (r *Result) Save(s *Store) error {
	fileErrors := make([]store.FileError, 0, len(r.FileErrors))
	for _, fe := range r.FileErrors {
		fileErrors = append(fileErrors, store.FileError{Path: fe.Path, Message: fe.Err.Error()})
	}
	meta := map[string]string{
		MetaRoot:       r.Root,
		MetaAnalyzedAt: time.Now().UTC().Format(time.RFC3339),
		MetaFiles:      strconv.Itoa(r.Files),
	}
	if err := s.SaveRun(r.Graph.Dump(), fileErrors, meta); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// QueryBuilder provides a query API over a saved run.
type QueryBuilder struct {
	store *store.Store
}

// NewQueryBuilder returns a QueryBuilder reading from s.
func NewQueryBuilder(s *Store) *QueryBuilder {
	return &QueryBuilder{store: s}
}

// Dependents returns the components that depend on component in file, in
// first-recorded order. Unknown components yield an empty result.
func (q *QueryBuilder) Dependents(file, component string) ([]ComponentIdentity, error) {
	deps, err := q.store.DependentsOf(file, component)
	if err != nil {
		return nil, fmt.Errorf("dependents: %w", err)
	}
	return deps, nil
}

// Graph reconstructs the saved graph.
func (q *QueryBuilder) Graph() (*DependencyGraph, error) {
	g, err := q.store.LoadGraph()
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	return g, nil
}

// FileErrors returns the files skipped by the saved run.
func (q *QueryBuilder) FileErrors() ([]StoredFileError, error) {
	fes, err := q.store.FileErrors()
	if err != nil {
		return nil, fmt.Errorf("file errors: %w", err)
	}
	return fes, nil
}

// Root returns the project root of the saved run, or "" if nothing was saved.
func (q *QueryBuilder) Root() (string, error) {
	return q.store.GetMetadata(MetaRoot)
}
