package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/jward/depgraph"
	"github.com/jward/depgraph/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagDB      string
	flagFormat  string
	flagConfig  string
	flagVerbose bool
)

// cfg is loaded once in PersistentPreRunE.
var cfg *config.Config

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "depgraph",
	Short:         "Component dependency graphs for React projects",
	Long:          "Depgraph parses JavaScript/TypeScript sources with tree-sitter and records which exported components depend on which, in a SQLite database.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		// A missing .env is fine.
		_ = godotenv.Load()

		c, err := config.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		cfg = c

		if flagVerbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
		return nil
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .depgraph/graph.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./.depgraph.yaml or $HOME/.depgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log per-file progress to stderr")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dependentsCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(errorsCmd)
}

var (
	flagSkipErrors  bool
	flagAttribution string
	flagSerial      bool
	flagWorkers     int
	flagExternals   []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Build the component dependency graph of a project",
	Long:  "Parses every .tsx/.jsx/.ts/.js file under path, resolves imports, attributes them to exported components and writes the reverse dependency graph to the SQLite database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagSkipErrors, "skip-errors", false, "skip and record files that fail instead of aborting")
	analyzeCmd.Flags().StringVar(&flagAttribution, "attribution", "", "attribution policy: coarse|fine (default from config)")
	analyzeCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable parallel extraction")
	analyzeCmd.Flags().IntVar(&flagWorkers, "workers", 0, "extraction workers (default from config, 0 = NumCPU)")
	analyzeCmd.Flags().StringSliceVar(&flagExternals, "external", nil, "bare specifier to skip, e.g. react (repeatable)")
}

// engineOptions merges config values with analyze flags; flags win.
func engineOptions(cmd *cobra.Command) ([]depgraph.Option, error) {
	opts := []depgraph.Option{
		depgraph.WithLogger(logger),
		depgraph.WithParallel(cfg.Parallel && !flagSerial),
		depgraph.WithResolverCacheSize(cfg.Resolver.CacheSize),
		depgraph.WithExternals(cfg.Externals...),
		depgraph.WithExternals(flagExternals...),
		depgraph.WithSkipDirs(cfg.SkipDirs...),
	}

	policy := cfg.OnFileError
	if flagSkipErrors {
		policy = config.OnFileErrorSkip
	}
	if policy == config.OnFileErrorSkip {
		opts = append(opts, depgraph.WithOnFileError(depgraph.SkipAndRecord))
	}

	attribution := cfg.Attribution
	if cmd.Flags().Changed("attribution") {
		attribution = flagAttribution
	}
	switch attribution {
	case config.AttributionCoarse:
	case config.AttributionFine:
		opts = append(opts, depgraph.WithAttribution(depgraph.AttributionFine))
	default:
		return nil, fmt.Errorf("invalid attribution %q: must be coarse or fine", attribution)
	}

	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = flagWorkers
	}
	opts = append(opts, depgraph.WithWorkers(workers))
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Determine the target directory.
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("analyze", err)
	}

	// Resolve repo root and DB path.
	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)

	// Ensure .depgraph/ directory exists.
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return outputError("analyze", fmt.Errorf("creating %s: %w", dbDir, err))
	}

	opts, err := engineOptions(cmd)
	if err != nil {
		return outputError("analyze", err)
	}
	engine, err := depgraph.New(targetDir, opts...)
	if err != nil {
		return outputError("analyze", fmt.Errorf("creating engine: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := engine.AnalyzeDirectory(ctx)
	if err != nil {
		return outputError("analyze", err)
	}

	s, err := depgraph.OpenStore(dbPath)
	if err != nil {
		return outputError("analyze", err)
	}
	defer s.Close()
	if err := res.Save(s); err != nil {
		return outputError("analyze", err)
	}

	warn := color.New(color.FgYellow)
	for _, fe := range res.FileErrors {
		warn.Fprintf(os.Stderr, "Skipped %s: %v\n", fe.Path, fe.Err)
	}
	fmt.Fprintf(os.Stderr, "Analyzed %s files in %s: %s dependency edges\n",
		humanize.Comma(int64(res.Files)),
		res.Duration.Round(time.Millisecond),
		humanize.Comma(int64(res.Graph.Len())),
	)
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)

	return outputResult(CLIResult{Command: "analyze", Results: analyzeSummary(res, dbPath)})
}

// resolveTargetDir returns the absolute path of the directory to analyze.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag, the config
// file, or the default, in that order.
func resolveDBPath(repoRoot string) string {
	db := flagDB
	if db == "" && cfg != nil {
		db = cfg.DB
	}
	if db != "" {
		if filepath.IsAbs(db) {
			return db
		}
		return filepath.Join(repoRoot, db)
	}
	return filepath.Join(repoRoot, ".depgraph", "graph.db")
}
