package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Paths.Ledger = "books/ledger.csv"
	cfg.Scan.TraceTail = 10
	cfg.Git.AutoCommit = true

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "import", cfg.Paths.ImportDir)
	assert.Equal(t, filepath.Join("import", "processed"), cfg.Paths.ProcessedDir)
	assert.Equal(t, "ledger.xlsx", cfg.Paths.Ledger)
	assert.Equal(t, 50, cfg.Scan.TraceTail)
	assert.Equal(t, 3000, cfg.Scan.PreviewChars)
	assert.Equal(t, []string{".pdf", ".txt"}, cfg.Scan.Extensions)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Git.AutoCommit)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("paths:\n  ledger: ledger.csv\nlogging:\n  format: json\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ledger.csv", cfg.Paths.Ledger)
	assert.Equal(t, "import", cfg.Paths.ImportDir)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Scan.TraceTail)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRoot_MissingFileUsesDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := LoadRoot(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "import"), cfg.Paths.ImportDir)
	assert.Equal(t, filepath.Join(root, "ledger.xlsx"), cfg.Paths.Ledger)
	assert.Equal(t, filepath.Join(root, "logs", "run-log.csv"), cfg.Paths.RunLog)
}

func TestLoadRoot_KeepsAbsolutePaths(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(t.TempDir(), "shared", "ledger.csv")
	cfg := Default()
	cfg.Paths.Ledger = abs
	require.NoError(t, Save(filepath.Join(root, FileName), cfg))

	got, err := LoadRoot(root)
	require.NoError(t, err)
	assert.Equal(t, abs, got.Paths.Ledger)
	assert.Equal(t, filepath.Join(root, "rules", "categories.yaml"), got.Paths.Rules)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("scan: [1, 2"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "import_dir: import")
	assert.Contains(t, contents, "trace_tail: 50")
	assert.Contains(t, contents, "auto_commit: false")
}
