// Package extract parses TypeScript/JavaScript files with tree-sitter and
// pulls out what the dependency graph needs from each one: the components
// bound by import declarations and the components the file exports.
package extract

import (
	"context"
	"fmt"
	"os"
)

// FileResult is the extraction output for one file.
type FileResult struct {
	Path    string
	Imports *SymbolTable
	Exports []Export
}

// ExtractFile reads, parses and extracts the file at path. Any error leaves
// no partial result.
func (x *Extractor) ExtractFile(ctx context.Context, path string) (*FileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return x.ExtractSource(ctx, path, src)
}

// ExtractSource is ExtractFile for source already in memory. path is used
// for relative resolution and error reporting.
func (x *Extractor) ExtractSource(ctx context.Context, path string, src []byte) (*FileResult, error) {
	tree, err := Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	imports, err := x.Imports(tree)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		Path:    path,
		Imports: imports,
		Exports: Exports(tree),
	}, nil
}
