package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ATOMIC_STORE", "")
	t.Setenv("ATOMIC_NO_COLOR", "")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, FormatBlocks, cfg.Format)
	assert.True(t, cfg.Page)
	assert.Empty(t, cfg.Store)
	assert.Zero(t, cfg.MaxDepth)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "atomic.yaml", `
store: /var/lib/atomic
format: table
max_depth: 16
verbose: true
page: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/atomic", cfg.Store)
	assert.Equal(t, FormatTable, cfg.Format)
	assert.Equal(t, 16, cfg.MaxDepth)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.Page)

	_, err = Load(writeFile(t, "bad.yaml", "format: [oops"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "atomic.yaml", "store: from-file\ncolor: true\n")

	t.Setenv("ATOMIC_STORE", "from-env")
	t.Setenv("ATOMIC_NO_COLOR", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Store)
	assert.False(t, cfg.Color)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "atomic.yaml")

	cfg := DefaultConfig()
	cfg.MaxDepth = 4
	cfg.Format = FormatTable
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.MaxDepth)
	assert.Equal(t, FormatTable, loaded.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"table", func(c *Config) { c.Format = FormatTable }, false},
		{"unknown format", func(c *Config) { c.Format = "json" }, true},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
