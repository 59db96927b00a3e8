// Package resolve maps import specifiers to source files on disk.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Extensions lists the supported source extensions in resolution priority order.
var Extensions = []string{"tsx", "jsx", "ts", "js"}

var (
	// ErrModuleNotFound is wrapped by ModuleNotFoundError.
	ErrModuleNotFound = errors.New("module not found")
	// ErrPathResolution is wrapped by PathResolutionError.
	ErrPathResolution = errors.New("path resolution failed")
)

// ModuleNotFoundError reports a specifier that matched no file after every
// extension and index fallback was tried.
type ModuleNotFoundError struct {
	Specifier string
	FromFile  string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module not found: %q imported from %s", e.Specifier, e.FromFile)
}

func (e *ModuleNotFoundError) Unwrap() error { return ErrModuleNotFound }

// PathResolutionError reports a relative specifier whose containing directory
// could not be canonicalised.
type PathResolutionError struct {
	Specifier string
	FromFile  string
	Path      string
	Err       error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("resolve %q from %s: canonicalize %s: %v", e.Specifier, e.FromFile, e.Path, e.Err)
}

func (e *PathResolutionError) Unwrap() []error { return []error{ErrPathResolution, e.Err} }

// Resolver resolves specifiers for one project root. It is safe for
// concurrent use.
type Resolver struct {
	root  string
	cache *lru.Cache[string, string] // base path → resolved file; nil disables
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithCacheSize memoises up to n successful lookups, keyed by base path.
// Zero disables caching.
func WithCacheSize(n int) Option {
	return func(r *Resolver) error {
		if n <= 0 {
			r.cache = nil
			return nil
		}
		c, err := lru.New[string, string](n)
		if err != nil {
			return fmt.Errorf("resolver cache: %w", err)
		}
		r.cache = c
		return nil
	}
}

// New creates a Resolver for projectRoot, which must exist.
func New(projectRoot string, opts ...Option) (*Resolver, error) {
	root, err := Canonicalize(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	r := &Resolver{root: root}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Root returns the canonical project root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps specifier, imported from fromFile, to a canonical file path.
//
// Specifiers starting with "." are resolved against fromFile's directory;
// everything else is joined onto the project root. The base path is then
// probed as base.{tsx,jsx,ts,js}, as-is when it already carries one of those
// extensions, and finally as base/index.{tsx,jsx,ts,js}.
func (r *Resolver) Resolve(specifier, fromFile string) (string, error) {
	base, err := r.basePath(specifier, fromFile)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if p, ok := r.cache.Get(base); ok {
			return p, nil
		}
	}

	found, ok := probe(base)
	if !ok {
		return "", &ModuleNotFoundError{Specifier: specifier, FromFile: fromFile}
	}
	// The leaf itself may be a symlink, or sit under a symlinked directory
	// reached through a rooted specifier.
	p, err := Canonicalize(found)
	if err != nil {
		return "", &PathResolutionError{
			Specifier: specifier,
			FromFile:  fromFile,
			Path:      found,
			Err:       err,
		}
	}
	if r.cache != nil {
		r.cache.Add(base, p)
	}
	return p, nil
}

// Reset drops every memoised lookup.
func (r *Resolver) Reset() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// IsRelative reports whether specifier is resolved against the importing file.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, ".")
}

func (r *Resolver) basePath(specifier, fromFile string) (string, error) {
	if !IsRelative(specifier) {
		return filepath.Join(r.root, specifier), nil
	}

	joined := filepath.Join(filepath.Dir(fromFile), specifier)
	parent := filepath.Dir(joined)
	canon, err := Canonicalize(parent)
	if err != nil {
		return "", &PathResolutionError{
			Specifier: specifier,
			FromFile:  fromFile,
			Path:      parent,
			Err:       err,
		}
	}
	return filepath.Join(canon, filepath.Base(joined)), nil
}

func probe(base string) (string, bool) {
	for _, ext := range Extensions {
		if candidate := base + "." + ext; isFile(candidate) {
			return candidate, true
		}
	}

	if hasSupportedExt(base) && isFile(base) {
		return base, true
	}

	for _, ext := range Extensions {
		if candidate := filepath.Join(base, "index."+ext); isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func hasSupportedExt(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Canonicalize returns the absolute, symlink-free form of an existing path.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
