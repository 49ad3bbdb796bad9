package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/categorize"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var noGit bool
	var ledgerPath string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new tally data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, ledgerPath, !noGit)
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "ledger.xlsx", "ledger file (.xlsx or .csv)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, ledgerPath string, withGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Paths.Ledger = ledgerPath
	cfg.Git.AutoCommit = withGit

	dirs := []string{
		cfg.Paths.ImportDir,
		cfg.Paths.ProcessedDir,
		filepath.Dir(cfg.Paths.Rules),
		filepath.Dir(cfg.Paths.RunLog),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := categorize.SaveRules(filepath.Join(dir, cfg.Paths.Rules), categorize.DefaultRules()); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	// Statements may be password protected; keep them out of history.
	gitignore := "import/\n*.corrupt\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	out := cmd.OutOrStdout()
	if !withGit {
		fmt.Fprintf(out, "Initialized tally data directory at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	hash, err := gitops.CommitAll(dir, "init: tally data directory", cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized tally data directory at %s (%s)\n", dir, hash)
	return nil
}
