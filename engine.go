package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jward/depgraph/internal/extract"
	"github.com/jward/depgraph/internal/graph"
	"github.com/jward/depgraph/internal/resolve"
)

// ErrorPolicy decides what a run does when a file cannot be processed.
type ErrorPolicy int

const (
	// Abort stops the run at the first failing file (in path order).
	Abort ErrorPolicy = iota
	// SkipAndRecord leaves the failing file out of the graph, records the
	// error in Result.FileErrors and continues.
	SkipAndRecord
)

func (p ErrorPolicy) String() string {
	if p == SkipAndRecord {
		return "skip"
	}
	return "abort"
}

// Attribution decides which exported components of a file own the
// dependencies introduced by its imports.
type Attribution int

const (
	// AttributionCoarse makes every exported component depend on every
	// import binding of its file.
	AttributionCoarse Attribution = iota
	// AttributionFine makes an exported component depend only on the import
	// bindings its definition refers to.
	AttributionFine
)

func (a Attribution) String() string {
	if a == AttributionFine {
		return "fine"
	}
	return "coarse"
}

// Engine builds component dependency graphs for one project root.
type Engine struct {
	root        string
	resolver    *resolve.Resolver
	extractor   *extract.Extractor
	onFileError ErrorPolicy
	attribution Attribution
	externals   []string
	skipDirs    map[string]bool
	cacheSize   int
	logger      *slog.Logger

	// useParallel enables the parallel extraction pipeline.
	useParallel bool
	workers     int // 0 means runtime.NumCPU()
}

// Option configures an Engine.
type Option func(*Engine)

// WithOnFileError sets the per-file error policy. Default Abort.
func WithOnFileError(p ErrorPolicy) Option {
	return func(e *Engine) {
		e.onFileError = p
	}
}

// WithAttribution sets the attribution policy. Default AttributionCoarse.
func WithAttribution(a Attribution) Option {
	return func(e *Engine) {
		e.attribution = a
	}
}

// WithParallel controls parallel extraction. When true (default), files are
// parsed and extracted by a worker pool while a single goroutine writes to
// the graph. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithWorkers caps the number of extraction workers. Zero uses NumCPU.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithExternals names bare specifiers (and their subpaths) that are skipped
// instead of resolved, e.g. "react".
func WithExternals(names ...string) Option {
	return func(e *Engine) {
		e.externals = append(e.externals, names...)
	}
}

// WithSkipDirs adds directory names excluded from file discovery.
func WithSkipDirs(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.skipDirs[n] = true
		}
	}
}

// WithResolverCacheSize memoises up to n resolver lookups. Zero disables it.
func WithResolverCacheSize(n int) Option {
	return func(e *Engine) {
		e.cacheSize = n
	}
}

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine for the project rooted at root, which must exist.
func New(root string, opts ...Option) (*Engine, error) {
	e := &Engine{
		useParallel: true,
		skipDirs: map[string]bool{
			"node_modules": true,
			"vendor":       true,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	r, err := resolve.New(root, resolve.WithCacheSize(e.cacheSize))
	if err != nil {
		return nil, fmt.Errorf("depgraph: %w", err)
	}
	e.root = r.Root()
	e.resolver = r
	e.extractor = extract.NewExtractor(r, extract.WithExternals(e.externals...))
	return e, nil
}

// Root returns the canonical project root.
func (e *Engine) Root() string {
	return e.root
}

// Resolve resolves specifier as imported from fromFile.
func (e *Engine) Resolve(specifier, fromFile string) (string, error) {
	return e.resolver.Resolve(specifier, fromFile)
}

// FileError is a file that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (fe FileError) Error() string {
	return fmt.Sprintf("%s: %v", fe.Path, fe.Err)
}

func (fe FileError) Unwrap() error { return fe.Err }

// Result is the outcome of one analysis run.
type Result struct {
	Root       string
	Graph      *DependencyGraph
	Files      int // files successfully analysed
	FileErrors []FileError
	Duration   time.Duration
}

// AnalyzeDirectory discovers all source files under the project root and
// analyses them. If the root is inside a git repository, git ls-files is used
// to respect .gitignore; otherwise the filesystem is walked.
func (e *Engine) AnalyzeDirectory(ctx context.Context) (*Result, error) {
	paths, err := e.gitListFiles(e.root)
	if err != nil {
		// Not a git repo or git not available; fall back to walk.
		paths, err = e.walkListFiles(e.root)
		if err != nil {
			return nil, err
		}
	}
	return e.AnalyzeFiles(ctx, paths)
}

// AnalyzeFiles builds a fresh graph from the given files. Files without a
// supported extension are ignored. Files are processed in sorted path order
// so the graph is identical in serial and parallel mode.
func (e *Engine) AnalyzeFiles(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	paths = sourceFiles(paths)
	// Lookups from an earlier run may be stale.
	e.resolver.Reset()

	var (
		outcomes []fileOutcome
		err      error
	)
	if e.useParallel && len(paths) > 1 {
		outcomes, err = e.extractParallel(ctx, paths)
	} else {
		outcomes, err = e.extractSerial(ctx, paths)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Root: e.root, Graph: graph.New()}
	for _, o := range outcomes {
		if err := e.apply(res, o); err != nil {
			return nil, err
		}
	}
	res.Duration = time.Since(start)

	e.logger.InfoContext(ctx, "analysis complete",
		"root", e.root,
		"files", res.Files,
		"skipped", len(res.FileErrors),
		"edges", res.Graph.Len(),
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res, nil
}

// fileOutcome is the extraction result (or error) for one path.
type fileOutcome struct {
	path   string
	result *extract.FileResult
	err    error
}

func (e *Engine) extractSerial(ctx context.Context, paths []string) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fr, err := e.extractFile(ctx, p)
		outcomes = append(outcomes, fileOutcome{path: p, result: fr, err: err})
	}
	return outcomes, nil
}

func (e *Engine) extractFile(ctx context.Context, path string) (*extract.FileResult, error) {
	canon, err := resolve.Canonicalize(path)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	fr, err := e.extractor.ExtractFile(ctx, canon)
	if err != nil {
		return nil, err
	}
	e.logger.DebugContext(ctx, "extracted file",
		"path", canon,
		"imports", fr.Imports.Len(),
		"exports", len(fr.Exports),
	)
	return fr, nil
}

// apply threads one file's outcome into the result according to the error
// and attribution policies. It is only ever called from one goroutine.
func (e *Engine) apply(res *Result, o fileOutcome) error {
	if o.err != nil {
		if e.onFileError == Abort {
			return fmt.Errorf("analyze %s: %w", o.path, o.err)
		}
		e.logger.Warn("skipping file", "path", o.path, "error", o.err)
		res.FileErrors = append(res.FileErrors, FileError{Path: o.path, Err: o.err})
		return nil
	}
	attribute(res.Graph, o.result, e.attribution)
	res.Files++
	return nil
}

// attribute records an edge from each exported component of the file to the
// import bindings it is attributed under policy a.
func attribute(g *graph.DependencyGraph, fr *extract.FileResult, a Attribution) {
	bindings := fr.Imports.Bindings()
	for _, exp := range fr.Exports {
		current := graph.NewComponentIdentity(fr.Path, exp.Name)
		for _, b := range bindings {
			if a == AttributionFine && !exp.References(b.Local) {
				continue
			}
			g.AddDependency(current, b.Component)
		}
	}
}

// sourceFiles filters paths to supported extensions, dropping duplicates,
// and sorts them.
func sourceFiles(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !extract.IsSourceFile(p) || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported extensions.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || e.inSkippedDir(line) {
			continue
		}
		absPath := filepath.Join(root, line)
		if extract.IsSourceFile(absPath) {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

func (e *Engine) inSkippedDir(rel string) bool {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range parts[:len(parts)-1] {
		if e.skipDirs[dir] {
			return true
		}
	}
	return false
}

// walkListFiles discovers files by walking the filesystem, used as a fallback
// when git is not available. Skips hidden directories and skip dirs.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || e.skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if extract.IsSourceFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
