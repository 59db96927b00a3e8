package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jward/depgraph"
	"github.com/spf13/cobra"
)

var dependentsCmd = &cobra.Command{
	Use:   "dependents <file> [component]",
	Short: "List the components that depend on a component",
	Long:  "Reads the last analysis from the database and lists the components depending on component (default: Default) exported by file.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDependents,
}

var flagEdges bool

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the whole dependency graph",
	Long:  "Prints the stored graph as a nested file -> component -> dependents map, or as a flat edge list with --edges (text format always lists edges).",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List files skipped by the last analysis",
	Args:  cobra.NoArgs,
	RunE:  runErrors,
}

func init() {
	dumpCmd.Flags().BoolVar(&flagEdges, "edges", false, "print a flat, sorted edge list")
}

// --- Helpers ---

// openStore opens the Store from the --db flag path (or default).
func openStore() (*depgraph.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	repoRoot := findRepoRoot(cwd)
	dbPath := resolveDBPath(repoRoot)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'depgraph analyze' first)", dbPath)
	}

	return depgraph.OpenStore(dbPath)
}

// resolveFilePath converts a file argument to the canonical path the graph
// is keyed by. Paths that cannot be canonicalised are returned absolute.
func resolveFilePath(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving file path %q: %w", file, err)
	}
	if canon, err := filepath.EvalSymlinks(abs); err == nil {
		return canon, nil
	}
	return abs, nil
}

// outputResult writes a CLIResult in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

func componentToCLI(c depgraph.ComponentIdentity) CLIComponent {
	return CLIComponent{File: c.FilePath, Component: c.ComponentName}
}

// dumpToEdges flattens a dump into edges sorted by dependee, keeping each
// dependee's dependents in recorded order.
func dumpToEdges(d depgraph.Dump) []CLIEdge {
	files := make([]string, 0, len(d))
	for f := range d {
		files = append(files, f)
	}
	sort.Strings(files)

	var edges []CLIEdge
	for _, f := range files {
		comps := make([]string, 0, len(d[f]))
		for c := range d[f] {
			comps = append(comps, c)
		}
		sort.Strings(comps)
		for _, c := range comps {
			dependee := CLIComponent{File: f, Component: c}
			for _, dep := range d[f][c] {
				edges = append(edges, CLIEdge{Dependee: dependee, Dependent: componentToCLI(dep)})
			}
		}
	}
	return edges
}

func analyzeSummary(res *depgraph.Result, dbPath string) CLIAnalyzeSummary {
	summary := CLIAnalyzeSummary{
		Root:       res.Root,
		Database:   dbPath,
		Files:      res.Files,
		Edges:      res.Graph.Len(),
		DurationMS: res.Duration.Milliseconds(),
	}
	for _, fe := range res.FileErrors {
		summary.Skipped = append(summary.Skipped, CLIFileError{Path: fe.Path, Message: fe.Err.Error()})
	}
	return summary
}

// --- Commands ---

func runDependents(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("dependents", err)
	}
	component := depgraph.DefaultComponent
	if len(args) > 1 {
		component = args[1]
	}

	s, err := openStore()
	if err != nil {
		return outputError("dependents", err)
	}
	defer s.Close()

	deps, err := depgraph.NewQueryBuilder(s).Dependents(file, component)
	if err != nil {
		return outputError("dependents", err)
	}
	out := make([]CLIComponent, 0, len(deps))
	for _, d := range deps {
		out = append(out, componentToCLI(d))
	}
	count := len(out)
	return outputResult(CLIResult{Command: "dependents", Results: out, TotalCount: &count})
}

func runDump(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("dump", err)
	}
	defer s.Close()

	g, err := depgraph.NewQueryBuilder(s).Graph()
	if err != nil {
		return outputError("dump", err)
	}
	if flagEdges || flagFormat == "text" {
		edges := dumpToEdges(g.Dump())
		count := len(edges)
		return outputResult(CLIResult{Command: "dump", Results: edges, TotalCount: &count})
	}
	return outputResult(CLIResult{Command: "dump", Results: g.Dump()})
}

func runErrors(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return outputError("errors", err)
	}
	defer s.Close()

	fes, err := depgraph.NewQueryBuilder(s).FileErrors()
	if err != nil {
		return outputError("errors", err)
	}
	out := make([]CLIFileError, 0, len(fes))
	for _, fe := range fes {
		out = append(out, CLIFileError{Path: fe.Path, Message: fe.Message})
	}
	return outputResult(CLIResult{Command: "errors", Results: out})
}
