package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScalarAndTableTools(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vx.toml")
	content := `
[tools]
node = "20"
go = { version = "1.22" }

[env]
NODE_ENV = "development"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "20", cfg.Tools["node"].Version)
	assert.Equal(t, "1.22", cfg.Tools["go"].Version)
	assert.Equal(t, "development", cfg.Env["NODE_ENV"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vx.toml")

	cfg := &Config{
		Tools: map[string]ToolRequirement{"uv": {Version: ">=0.5,<0.6"}},
		Env:   map[string]string{"FOO": "bar"},
	}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ">=0.5,<0.6", loaded.Tools["uv"].Version)
	assert.Equal(t, "bar", loaded.Env["FOO"])
}
