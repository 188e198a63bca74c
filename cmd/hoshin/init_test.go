package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/hoshin/internal/config"
)

func TestInit_WritesConfigAndMCPEntry(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, runInit(&out, dir, false))
	assert.Contains(t, out.String(), "created hoshin.yml")
	assert.Contains(t, out.String(), "created .mcp.json")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBackend, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, config.DefaultStoragePath), cfg.Storage.Path)

	var mcp mcpConfig
	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &mcp))
	assert.Contains(t, string(mcp.MCPServers["hoshin"]), `"serve-mcp"`)
}

func TestInit_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hoshin.yml"), []byte("storage:\n  backend: memory\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mcp.json"), []byte(`{"mcpServers":{"other":{"command":"x"}}}`), 0o644))

	var out bytes.Buffer
	require.NoError(t, runInit(&out, dir, false))
	assert.Contains(t, out.String(), "skipped hoshin.yml")
	assert.Contains(t, out.String(), "updated .mcp.json")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)

	var mcp mcpConfig
	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &mcp))
	assert.Contains(t, mcp.MCPServers, "other")
	assert.Contains(t, mcp.MCPServers, "hoshin")

	out.Reset()
	require.NoError(t, runInit(&out, dir, false))
	assert.Contains(t, out.String(), "skipped .mcp.json hoshin entry")
}
