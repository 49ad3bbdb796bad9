package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Turn bank, card and wallet statements into a categorized ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.root, "root", ".", "data directory")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides tally.yaml)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(&opts))
	rootCmd.AddCommand(newRulesCommand(&opts))
	rootCmd.AddCommand(newInspectCommand())

	return rootCmd
}
