package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProject creates the given files (relative paths) under a fresh
// canonical root and returns the root.
func newTestProject(t *testing.T, files ...string) string {
	t.Helper()
	root, err := Canonicalize(t.TempDir())
	require.NoError(t, err)
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("export {}\n"), 0o644))
	}
	return root
}

func newTestResolver(t *testing.T, root string, opts ...Option) *Resolver {
	t.Helper()
	r, err := New(root, opts...)
	require.NoError(t, err)
	return r
}

func TestResolve_ExtensionPriority(t *testing.T) {
	root := newTestProject(t, "foo.ts", "foo.js", "main.ts")
	r := newTestResolver(t, root)

	got, err := r.Resolve("foo", filepath.Join(root, "main.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "foo.ts"), got)
}

func TestResolve_FullPriorityOrder(t *testing.T) {
	root := newTestProject(t, "c.tsx", "c.jsx", "c.ts", "c.js", "main.ts")
	r := newTestResolver(t, root)
	from := filepath.Join(root, "main.ts")

	got, err := r.Resolve("./c", from)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "c.tsx"), got)

	require.NoError(t, os.Remove(filepath.Join(root, "c.tsx")))
	got, err = newTestResolver(t, root).Resolve("./c", from)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "c.jsx"), got)
}

func TestResolve_IndexFallback(t *testing.T) {
	root := newTestProject(t, "lib/index.js", "main.ts")
	r := newTestResolver(t, root)

	got, err := r.Resolve("lib", filepath.Join(root, "main.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lib", "index.js"), got)
}

func TestResolve_IndexPriority(t *testing.T) {
	root := newTestProject(t, "lib/index.js", "lib/index.tsx", "main.ts")
	r := newTestResolver(t, root)

	got, err := r.Resolve("lib", filepath.Join(root, "main.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lib", "index.tsx"), got)
}

func TestResolve_SiblingFileBeatsIndex(t *testing.T) {
	root := newTestProject(t, "lib.js", "lib/index.tsx", "main.ts")
	r := newTestResolver(t, root)

	got, err := r.Resolve("lib", filepath.Join(root, "main.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lib.js"), got)
}

func TestResolve_RelativeParentDirectory(t *testing.T) {
	root := newTestProject(t, "src/shared/index.tsx", "src/features/step.js")
	r := newTestResolver(t, root)

	got, err := r.Resolve("../shared", filepath.Join(root, "src", "features", "step.js"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "shared", "index.tsx"), got)
}

func TestResolve_RelativeFileWithoutDirectory(t *testing.T) {
	// The extension-less base does not exist on disk; only its parent must.
	root := newTestProject(t, "src/utils.ts", "src/app.tsx")
	r := newTestResolver(t, root)

	got, err := r.Resolve("./utils", filepath.Join(root, "src", "app.tsx"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "utils.ts"), got)
}

func TestResolve_ExplicitExtension(t *testing.T) {
	root := newTestProject(t, "util.js", "main.ts")
	r := newTestResolver(t, root)

	got, err := r.Resolve("./util.js", filepath.Join(root, "main.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "util.js"), got)
}

func TestResolve_DottedBaseName(t *testing.T) {
	root := newTestProject(t, "button.styles.ts", "main.ts")
	r := newTestResolver(t, root)

	got, err := r.Resolve("./button.styles", filepath.Join(root, "main.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "button.styles.ts"), got)
}

func TestResolve_DirectoryWithSourceExtension(t *testing.T) {
	root := newTestProject(t, "weird.ts/index.js", "main.ts")
	r := newTestResolver(t, root)
	from := filepath.Join(root, "main.ts")

	// A directory named weird.ts is never returned as a file match.
	_, err := r.Resolve("./weird", from)
	assert.ErrorIs(t, err, ErrModuleNotFound)

	got, err := r.Resolve("./weird.ts", from)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "weird.ts", "index.js"), got)
}

func TestResolve_ModuleNotFound(t *testing.T) {
	root := newTestProject(t, "main.ts")
	r := newTestResolver(t, root)
	from := filepath.Join(root, "main.ts")

	_, err := r.Resolve("./missing", from)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModuleNotFound)

	var nf *ModuleNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "./missing", nf.Specifier)
	assert.Equal(t, from, nf.FromFile)
	assert.Contains(t, err.Error(), "./missing")
	assert.Contains(t, err.Error(), from)
}

func TestResolve_RootedNotFound(t *testing.T) {
	root := newTestProject(t, "main.ts")
	r := newTestResolver(t, root)

	_, err := r.Resolve("react", filepath.Join(root, "main.ts"))
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestResolve_PathResolutionFailure(t *testing.T) {
	root := newTestProject(t, "main.ts")
	r := newTestResolver(t, root)

	_, err := r.Resolve("./nowhere/deeper/mod", filepath.Join(root, "main.ts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathResolution)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var pe *PathResolutionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "./nowhere/deeper/mod", pe.Specifier)
}

func TestResolve_Deterministic(t *testing.T) {
	root := newTestProject(t, "a.ts", "a.js", "main.ts")
	r := newTestResolver(t, root)
	from := filepath.Join(root, "main.ts")

	first, err := r.Resolve("./a", from)
	require.NoError(t, err)
	for range 5 {
		got, err := r.Resolve("./a", from)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}

	_, err1 := r.Resolve("./b", from)
	_, err2 := r.Resolve("./b", from)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestResolve_CachedLookup(t *testing.T) {
	root := newTestProject(t, "a.ts", "main.ts")
	r := newTestResolver(t, root, WithCacheSize(16))
	from := filepath.Join(root, "main.ts")

	got, err := r.Resolve("./a", from)
	require.NoError(t, err)
	assert.Equal(t, 1, r.cache.Len())

	again, err := r.Resolve("a", from)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, r.cache.Len(), "relative and rooted specifiers share the same base path key")
}

func TestResolve_FailuresAreNotCached(t *testing.T) {
	root := newTestProject(t, "main.ts")
	r := newTestResolver(t, root, WithCacheSize(16))
	from := filepath.Join(root, "main.ts")

	_, err := r.Resolve("./late", from)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "late.ts"), nil, 0o644))
	got, err := r.Resolve("./late", from)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "late.ts"), got)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestIsRelative(t *testing.T) {
	assert.True(t, IsRelative("./a"))
	assert.True(t, IsRelative("../a"))
	assert.True(t, IsRelative("."))
	assert.False(t, IsRelative("react"))
	assert.False(t, IsRelative("src/a"))
}

func TestResolve_ThroughSymlinkedDirectory(t *testing.T) {
	root := newTestProject(t, "real/Button.tsx", "main.ts")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "shared")))
	r := newTestResolver(t, root, WithCacheSize(16))
	want := filepath.Join(root, "real", "Button.tsx")

	for _, spec := range []string{"shared/Button", "./shared/Button", "./real/Button"} {
		got, err := r.Resolve(spec, filepath.Join(root, "main.ts"))
		require.NoError(t, err, spec)
		assert.Equal(t, want, got, spec)
	}
}

func TestResolve_SymlinkedLeafFile(t *testing.T) {
	root := newTestProject(t, "real/Button.tsx", "main.ts")
	require.NoError(t, os.Symlink(filepath.Join(root, "real", "Button.tsx"), filepath.Join(root, "Button.tsx")))
	r := newTestResolver(t, root)

	got, err := r.Resolve("./Button", filepath.Join(root, "main.ts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real", "Button.tsx"), got)
}

func TestResolve_UpperCaseExtensionIsNotProbed(t *testing.T) {
	root := newTestProject(t, "Header.TSX", "main.ts")
	r := newTestResolver(t, root)

	_, err := r.Resolve("./Header", filepath.Join(root, "main.ts"))
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestResolver_Reset(t *testing.T) {
	root := newTestProject(t, "foo.js", "main.ts")
	r := newTestResolver(t, root, WithCacheSize(16))
	from := filepath.Join(root, "main.ts")

	got, err := r.Resolve("./foo", from)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "foo.js"), got)

	require.NoError(t, os.WriteFile(filepath.Join(root, "foo.ts"), []byte("export {}\n"), 0o644))
	r.Reset()
	assert.Equal(t, 0, r.cache.Len())

	got, err = r.Resolve("./foo", from)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "foo.ts"), got)
}

func TestResolver_ResetWithoutCache(t *testing.T) {
	r := newTestResolver(t, newTestProject(t))
	assert.NotPanics(t, r.Reset)
}
