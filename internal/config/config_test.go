package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modcheck/internal/ir"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, path, err := Load(context.Background(), LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `
root: com.shop
source: go
internal_segments: [internal, impl, core]
default_scope: internal
max_cycles: 5
docs:
  diagram: mermaid
history:
  db: runs.db
`)

	cfg, path, err := Load(context.Background(), LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)
	assert.Equal(t, "com.shop", cfg.Root)
	assert.Equal(t, "go", cfg.Source)
	assert.Equal(t, []string{"internal", "impl", "core"}, cfg.InternalSegments)
	assert.Equal(t, 5, cfg.MaxCycles)
	assert.Equal(t, "mermaid", cfg.Docs.Diagram)
	assert.Equal(t, filepath.Join("build", "modcheck-docs"), cfg.Docs.Output, "unset keys keep defaults")
	assert.Equal(t, "runs.db", cfg.History.DB)

	scope, err := cfg.Scope()
	require.NoError(t, err)
	assert.Equal(t, ir.ScopeInternal, scope)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MODCHECK_MAX_CYCLES", "7")
	t.Setenv("MODCHECK_DOCS_DIAGRAM", "mermaid")

	dir := writeConfig(t, "max_cycles: 3\n")
	cfg, _, err := Load(context.Background(), LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxCycles, "environment beats file")
	assert.Equal(t, "mermaid", cfg.Docs.Diagram)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := writeConfig(t, "root: app\n")
	cfg, path, err := Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, FileName)})
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Root)
	assert.NotEmpty(t, path)

	_, _, err = Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	dir := writeConfig(t, "source: java\ndefault_scope: public\nmax_cycles: -1\n")
	_, _, err := Load(context.Background(), LoadOptions{Dir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
	assert.Contains(t, err.Error(), "default_scope")
	assert.Contains(t, err.Error(), "max_cycles")
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Load(ctx, LoadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
