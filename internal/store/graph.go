package store

import (
	"fmt"

	"github.com/jward/depgraph/internal/graph"
)

// SaveRun replaces the stored graph and file errors with the results of a
// new run and upserts meta, all within a single transaction. Dependents keep
// their list order through the ordinal column.
func (s *Store) SaveRun(d graph.Dump, fileErrors []FileError, meta map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save run: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM dependents",
		"DELETE FROM file_errors",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("save run: clear: %w", err)
		}
	}

	stmt, err := tx.Prepare(
		`INSERT INTO dependents
		 (dependee_file, dependee_component, ordinal, dependent_file, dependent_component)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("save run: prepare: %w", err)
	}
	defer stmt.Close()

	for file, comps := range d {
		for name, deps := range comps {
			for i, dep := range deps {
				if _, err := stmt.Exec(file, name, i, dep.FilePath, dep.ComponentName); err != nil {
					return fmt.Errorf("save run: dependent of %s:%s: %w", file, name, err)
				}
			}
		}
	}

	for _, fe := range fileErrors {
		if _, err := tx.Exec("INSERT INTO file_errors (path, message) VALUES (?, ?)", fe.Path, fe.Message); err != nil {
			return fmt.Errorf("save run: file error %s: %w", fe.Path, err)
		}
	}

	for k, v := range meta {
		if _, err := tx.Exec(upsertMetadata, k, v); err != nil {
			return fmt.Errorf("save run: metadata %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// LoadGraph rebuilds the stored graph.
func (s *Store) LoadGraph() (*graph.DependencyGraph, error) {
	rows, err := s.db.Query(
		`SELECT dependee_file, dependee_component, dependent_file, dependent_component
		 FROM dependents
		 ORDER BY dependee_file, dependee_component, ordinal`,
	)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	defer rows.Close()

	g := graph.New()
	for rows.Next() {
		var dependee, dependent graph.ComponentIdentity
		if err := rows.Scan(&dependee.FilePath, &dependee.ComponentName, &dependent.FilePath, &dependent.ComponentName); err != nil {
			return nil, fmt.Errorf("load graph: scan: %w", err)
		}
		g.AddDependency(dependent, dependee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load graph: rows: %w", err)
	}
	return g, nil
}

// DependentsOf returns the stored dependents of (file, component) in order.
func (s *Store) DependentsOf(file, component string) ([]graph.ComponentIdentity, error) {
	rows, err := s.db.Query(
		`SELECT dependent_file, dependent_component FROM dependents
		 WHERE dependee_file = ? AND dependee_component = ?
		 ORDER BY ordinal`,
		file, component,
	)
	if err != nil {
		return nil, fmt.Errorf("dependents of: %w", err)
	}
	defer rows.Close()

	var out []graph.ComponentIdentity
	for rows.Next() {
		var c graph.ComponentIdentity
		if err := rows.Scan(&c.FilePath, &c.ComponentName); err != nil {
			return nil, fmt.Errorf("dependents of: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FileErrors returns the files skipped by the stored run.
func (s *Store) FileErrors() ([]FileError, error) {
	rows, err := s.db.Query("SELECT path, message FROM file_errors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("file errors: %w", err)
	}
	defer rows.Close()

	var out []FileError
	for rows.Next() {
		var fe FileError
		if err := rows.Scan(&fe.Path, &fe.Message); err != nil {
			return nil, fmt.Errorf("file errors: scan: %w", err)
		}
		out = append(out, fe)
	}
	return out, rows.Err()
}
