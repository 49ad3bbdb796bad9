package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/document"
	"github.com/cleared-dev/tally/internal/extract"
)

func newInspectCommand() *cobra.Command {
	var password string
	var showText bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show how a statement is read, classified and extracted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			doc, err := document.FileOpener{}.Open(args[0], password)
			if err != nil {
				return err
			}

			for i, page := range doc.Pages {
				fmt.Fprintf(out, "=== Page %d: %d lines, %d tables ===\n", i+1, len(page.Lines()), len(page.Tables))
				if showText {
					fmt.Fprintln(out, page.Text)
				}
				for j, table := range page.Tables {
					fmt.Fprintf(out, "--- Table %d (%d rows) ---\n", j+1, len(table))
					for _, row := range table {
						fmt.Fprintf(out, "| %s |\n", strings.Join(row, " | "))
					}
				}
			}

			docType := extract.Classify(doc.FirstPageText())
			ex, err := extract.DefaultRegistry().New(docType)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Detected type: %s (extractor: %s)\n", docType, ex.Source())

			txns := ex.Extract(doc)
			fmt.Fprintln(out, "Trace:")
			for _, entry := range ex.Trace() {
				fmt.Fprintf(out, "  %s\n", entry)
			}

			fmt.Fprintf(out, "Extracted %d transactions:\n", len(txns))
			for _, t := range txns {
				fmt.Fprintf(out, "  %s  %-6s  %12s  %s\n", t.Date.Format("2006-01-02"), t.Kind, t.Amount.StringFixed(2), t.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password for protected PDFs")
	cmd.Flags().BoolVar(&showText, "text", false, "print the extracted page text")

	return cmd
}
