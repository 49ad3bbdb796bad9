package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/gitops"
	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/pipeline"
	"github.com/cleared-dev/tally/internal/runlog"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var scanOpts pipeline.ScanOptions
	var dryRun, reset bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Extract new transactions from statements and append them to the ledger",
		Long: "Without arguments every document in the import directory is scanned.\n" +
			"Credits are skipped and transactions already in the ledger are ignored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			if reset {
				return runReset(cmd.OutOrStdout(), a)
			}
			return runImport(cmd, a, args, scanOpts, dryRun)
		},
	}

	cmd.Flags().StringVar(&scanOpts.Password, "password", "", "password for protected PDFs")
	cmd.Flags().StringVar(&scanOpts.Source, "source", "", "source label for staged rows (default: detected)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show staged transactions without committing")
	cmd.Flags().BoolVar(&reset, "reset", false, "move processed documents back to the import directory")

	return cmd
}

func runImport(cmd *cobra.Command, a *app, paths []string, opts pipeline.ScanOptions, dryRun bool) error {
	ctx := logger.WithContext(cmd.Context(), a.log)
	out := cmd.OutOrStdout()
	p := a.pipeline()

	batch, err := p.Scan(ctx, paths, opts)
	if err != nil {
		return err
	}
	for _, line := range batch.Logs {
		fmt.Fprintln(out, line)
	}

	if len(batch.Records) == 0 {
		fmt.Fprintln(out, "No new transactions.")
		return nil
	}

	fmt.Fprintln(out)
	if err := printRecords(out, batch.Records); err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run: %d transactions not committed.\n", len(batch.Records))
		return nil
	}

	if err := p.Commit(ctx, batch); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Fprintf(out, "Committed %d transactions to %s.\n", len(batch.Records), filepath.Base(a.store.Path()))

	return autoCommit(out, a, fmt.Sprintf("import: %d transactions from %d documents", len(batch.Records), len(batch.Documents())))
}

func runReset(out io.Writer, a *app) error {
	n, err := a.archiver.ResetProcessed()
	if err != nil {
		return err
	}
	if n > 0 {
		entry := runlog.Entry{
			Timestamp: time.Now(),
			RunID:     runlog.NewRunID(),
			Document:  filepath.Base(a.archiver.ProcessedDir),
			Action:    runlog.ActionReset,
			Details:   fmt.Sprintf("%d documents moved back to import", n),
		}
		if err := a.runLog.Append([]runlog.Entry{entry}); err != nil {
			a.log.Warn().Err(err).Msg("writing run log")
		}
	}
	fmt.Fprintf(out, "Moved %d documents back to %s.\n", n, a.archiver.ImportDir)
	return nil
}

// autoCommit commits the data root when configured to and something changed.
func autoCommit(out io.Writer, a *app, message string) error {
	if !a.cfg.Git.AutoCommit || !gitops.IsRepo(a.root) {
		return nil
	}
	changed, err := gitops.HasChanges(a.root)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	hash, err := gitops.CommitAll(a.root, message, a.cfg.Git.AuthorName, a.cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("auto-commit: %w", err)
	}
	fmt.Fprintf(out, "Recorded %s\n", hash)
	return nil
}

func printRecords(out io.Writer, records []model.StagedRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT\tCATEGORY\tSOURCE\tDOCUMENT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Date.Format("2006-01-02"),
			r.Description,
			r.Amount.StringFixed(2),
			r.Category,
			r.Source,
			filepath.Base(r.Document),
		)
	}
	return tw.Flush()
}
