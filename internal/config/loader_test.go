package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "depgraph.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, OnFileErrorAbort, cfg.OnFileError)
	assert.Equal(t, AttributionCoarse, cfg.Attribution)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, DefaultResolverCacheSize, cfg.Resolver.CacheSize)
	assert.Empty(t, cfg.Externals)
}

func TestLoadConfig_File(t *testing.T) {
	p := writeConfig(t, `
on_file_error: skip
attribution: fine
parallel: false
workers: 3
externals: [react, "@mui/material"]
skip_dirs: [dist]
resolver:
  cache_size: 10
db: out/graph.db
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, OnFileErrorSkip, cfg.OnFileError)
	assert.Equal(t, AttributionFine, cfg.Attribution)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"react", "@mui/material"}, cfg.Externals)
	assert.Equal(t, []string{"dist"}, cfg.SkipDirs)
	assert.Equal(t, 10, cfg.Resolver.CacheSize)
	assert.Equal(t, "out/graph.db", cfg.DB)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "attribution: coarse\n")
	t.Setenv("DEPGRAPH_ATTRIBUTION", "fine")
	t.Setenv("DEPGRAPH_RESOLVER_CACHE_SIZE", "7")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, AttributionFine, cfg.Attribution)
	assert.Equal(t, 7, cfg.Resolver.CacheSize)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	for name, content := range map[string]string{
		"policy":      "on_file_error: retry\n",
		"attribution": "attribution: exact\n",
		"workers":     "workers: -1\n",
		"cache":       "resolver:\n  cache_size: -5\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}
