package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newRulesCommand(opts *globalOptions) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Category keyword rules",
	}
	rulesCmd.AddCommand(newRulesListCommand(opts))
	rulesCmd.AddCommand(newRulesAddCommand(opts))
	rulesCmd.AddCommand(newRulesApplyCommand(opts))
	return rulesCmd
}

func newRulesListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories and their keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			rules := a.rules.Rules()
			out := cmd.OutOrStdout()
			for _, cat := range rules.Categories {
				marker := ""
				if cat.Name == rules.CatchAll {
					marker = " (checked last)"
				}
				fmt.Fprintf(out, "%s%s: %s\n", cat.Name, marker, strings.Join(cat.Keywords, ", "))
			}
			return nil
		},
	}
}

func newRulesAddCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <keyword>",
		Short: "Add a keyword to a category",
		Long:  "Keywords are matched case-insensitively and may belong to one category only.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			res, err := a.rules.AddKeyword(args[0], args[1])
			if err != nil {
				return err
			}
			if !res.Added {
				return fmt.Errorf("keyword %q already belongs to %s", strings.ToLower(strings.TrimSpace(args[1])), res.Owner)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s\n", strings.ToLower(strings.TrimSpace(args[1])), args[0])
			return autoCommit(cmd.OutOrStdout(), a, fmt.Sprintf("rules: add %q to %s", args[1], args[0]))
		},
	}
}

func newRulesApplyCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Re-categorize every ledger row with the current rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			changed, total, err := a.pipeline().Recategorize(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ledgerName := filepath.Base(a.store.Path())
			if total == 0 {
				fmt.Fprintf(out, "No rows in %s.\n", ledgerName)
				return nil
			}
			fmt.Fprintf(out, "Re-categorized %s: %d of %d rows changed.\n", ledgerName, changed, total)
			if changed == 0 {
				return nil
			}
			return autoCommit(out, a, fmt.Sprintf("rules: re-categorize %d rows", changed))
		},
	}
}
