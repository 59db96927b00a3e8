// Package depgraph builds a reverse dependency graph between the exported
// components of a JavaScript/TypeScript (React) project.
//
// # Pipeline
//
// For each source file (.tsx, .jsx, .ts, .js) under the project root:
//
//  1. Parse with tree-sitter (TSX grammar).
//  2. Extract imports: every import binding is resolved to a concrete file
//     and recorded under its local name as the component it refers to
//     ("Default" for default imports, the original name for named imports).
//  3. Extract exports: the file's exported component names.
//  4. Attribute: each exported component depends on the file's import
//     bindings (all of them, or only the ones its definition refers to when
//     fine-grained attribution is enabled). Edges are stored reversed, so a
//     component maps to the components that depend on it.
//
// # Usage
//
//	e, err := depgraph.New("path/to/project", depgraph.WithOnFileError(depgraph.SkipAndRecord))
//	if err != nil { ... }
//
//	res, err := e.AnalyzeDirectory(ctx)
//	deps := res.Graph.DependentsOf("/abs/path/src/shared/index.tsx", "Header")
//
// # Errors
//
// A specifier that matches no file yields [ModuleNotFoundError], a project
// path that cannot be canonicalised yields [PathResolutionError] and a file
// tree-sitter cannot parse yields [ParseError]. The [ErrorPolicy] decides
// whether such a file aborts the run or is skipped and recorded in
// [Result.FileErrors].
//
// # Persistence
//
// [Result.Save] writes a run to a SQLite [Store]; [QueryBuilder] answers
// dependents queries against it.
package depgraph
