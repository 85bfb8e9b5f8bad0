// Package cli provides the command-line interface for gantry.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/config"
)

// AddLintCommand adds the lint command to the root command.
func AddLintCommand(root *cobra.Command) {
	root.AddCommand(newLintCmd())
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run the configured linters",
		Long: `Run the configured lint command list sequentially.
The first failing command aborts the run.

Examples:
  gantry lint
  gantry lint --output json
  gantry lint --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return silenceJSONError(cmd, runConfiguredCategory(cmd.Context(), cmd, os.Stdout, "lint", func(cfg *config.Config) []string {
				return cfg.Commands.Lint
			}))
		},
	}
}
