package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/categorize"
	"github.com/cleared-dev/tally/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "tally-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "tally")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/tally")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runTally(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--no-git")
	require.NoError(t, err)

	expectedDirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"rules",
		"logs",
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err), "--no-git should not create a repository")
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--no-git", "--ledger", "books.csv")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "tally.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "books.csv", cfg.Paths.Ledger)
	assert.Equal(t, "import", cfg.Paths.ImportDir)
	assert.False(t, cfg.Git.AutoCommit)
}

func TestInit_Rules(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--no-git")
	require.NoError(t, err)

	rules, err := categorize.LoadRules(filepath.Join(dir, "rules", "categories.yaml"))
	require.NoError(t, err)
	assert.Equal(t, categorize.DefaultRules(), rules)
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--no-git")
	require.NoError(t, err)

	out, err := runTally(t, "init", dir, "--no-git")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestInit_GitRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	_, err := runTally(t, "init", dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init:")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Tally <tally@localhost>")
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runTally(t, "init", dir, "--no-git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "import/")
}

func TestVersion(t *testing.T) {
	out, err := runTally(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "tally version dev")
}
