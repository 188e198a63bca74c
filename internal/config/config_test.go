package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultBackend, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, DefaultStoragePath), cfg.Storage.Path)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultWizardMode, cfg.Wizard.Mode)
	assert.Equal(t, dir, cfg.Export.Dir)
	assert.Empty(t, cfg.MCP.Addr)
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "hoshin.yml", `
storage:
  backend: kuzu
  path: /var/lib/hoshin
  syncWrites: true
log:
  level: debug
  development: true
wizard:
  mode: all
export:
  dir: exports
mcp:
  addr: localhost:8931
`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "kuzu", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/hoshin", cfg.Storage.Path)
	assert.True(t, cfg.Storage.SyncWrites)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "all", cfg.Wizard.Mode)
	assert.Equal(t, filepath.Join(dir, "exports"), cfg.Export.Dir)
	assert.Equal(t, "localhost:8931", cfg.MCP.Addr)
}

func TestLoad_YamlExtension(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "hoshin.yaml", "storage:\n  backend: memory\n")
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Empty(t, cfg.Storage.Path)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"backend":   "storage:\n  backend: postgres\n",
		"log level": "log:\n  level: loud\n",
		"wizard":    "wizard:\n  mode: sometimes\n",
		"mcp addr":  "mcp:\n  addr: not an address\n",
		"bad yaml":  "storage: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "hoshin.yml", body)
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}
