// Package cli provides the command-line interface for gantry.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/config"
)

// AddFormatCommand adds the format command to the root command.
func AddFormatCommand(root *cobra.Command) {
	root.AddCommand(newFormatCmd())
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format",
		Short: "Run the configured code formatters",
		Long: `Run the configured format command list sequentially.
The first failing command aborts the run.

Examples:
  gantry format
  gantry format --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return silenceJSONError(cmd, runConfiguredCategory(cmd.Context(), cmd, os.Stdout, "format", func(cfg *config.Config) []string {
				return cfg.Commands.Format
			}))
		},
	}
}
