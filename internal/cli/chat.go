// Package cli provides the command-line interface for gantry.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/config"
)

// AddChatCommand adds the chat command to the root command.
func AddChatCommand(root *cobra.Command) {
	root.AddCommand(newChatCmd())
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [arg ...]",
		Short: "Start the configured interactive chat client",
		Long: `Run the configured chat command list. Extra arguments are appended
to the last configured command.

Examples:
  gantry chat
  gantry chat --model llama-3-8b`,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return silenceJSONError(cmd, runConfiguredCategory(cmd.Context(), cmd, os.Stdout, "chat", func(cfg *config.Config) []string {
				return appendArgsToLast(cfg.Commands.Chat, args)
			}))
		},
	}
}
