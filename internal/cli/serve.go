// Package cli provides the command-line interface for gantry.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/config"
)

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command) {
	root.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve [arg ...]",
		Short: "Start the configured model server",
		Long: `Run the configured serve command list. Extra arguments are appended
to the last configured command.

Examples:
  gantry serve
  gantry serve --host 0.0.0.0 --port 8000`,
		// Unknown flags belong to the served process, not to gantry.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return silenceJSONError(cmd, runConfiguredCategory(cmd.Context(), cmd, os.Stdout, "serve", func(cfg *config.Config) []string {
				return appendArgsToLast(cfg.Commands.Serve, args)
			}))
		},
	}
}

// appendArgsToLast appends extra CLI arguments to the final configured
// command, leaving any preamble commands untouched.
func appendArgsToLast(commands, args []string) []string {
	if len(commands) == 0 || len(args) == 0 {
		return commands
	}
	out := make([]string, len(commands))
	copy(out, commands)
	out[len(out)-1] = out[len(out)-1] + " " + strings.Join(args, " ")
	return out
}
