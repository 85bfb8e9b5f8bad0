// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/runner"
)

// entrypointUsage is the static help text for the container dispatcher.
// Printing it must never fail, so it touches nothing but this string.
const entrypointUsage = `gantry entrypoint - container operation dispatcher

Usage:
  gantry entrypoint [operation] [arg ...]

Operations:
  help              show this message
  bash, shell       interactive shell (default with no arguments)
  build             build the native library and Python package
  test [category]   run the test suite
  lint              run the configured linters
  format            run the configured formatters
  package           build distributable packages
  serve [arg ...]   start the model server
  chat [arg ...]    start the interactive chat client

Any other operation is executed verbatim as a command; its exit code is
surfaced unchanged.
`

// passthroughFunc matches runner.Passthrough, injectable for tests.
type passthroughFunc func(ctx context.Context, env []string, argv ...string) error

// AddEntrypointCommand adds the entrypoint command to the root command.
func AddEntrypointCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "entrypoint [operation] [arg ...]",
		Short: "Container entrypoint dispatcher",
		Long: `Dispatch a single container operation. Installed as the image
ENTRYPOINT so that 'docker run IMAGE build' drives a build, 'docker run
IMAGE' opens a shell, and unknown commands pass through verbatim.`,
		// Arguments after the operation belong to the dispatched
		// command, not to gantry.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				exe = "gantry"
			}
			return dispatchEntrypoint(cmd.Context(), args, exe, runner.SourceEnv(), runner.Passthrough, os.Stdout)
		},
	}

	root.AddCommand(cmd)
}

// dispatchEntrypoint maps the first argument to exactly one operation.
func dispatchEntrypoint(ctx context.Context, args []string, exe string, env []string, run passthroughFunc, w io.Writer) error {
	op := "shell"
	var rest []string
	if len(args) > 0 {
		op = args[0]
		rest = args[1:]
	}

	switch op {
	case "help", "--help", "-h":
		_, _ = io.WriteString(w, entrypointUsage)
		return nil

	case "bash", "shell":
		return run(ctx, env, "/bin/bash")

	case "build", "test", "lint", "format", "package", "serve", "chat":
		argv := append([]string{exe, op}, rest...)
		return run(ctx, env, argv...)

	default:
		// Narrow passthrough: the argument list is executed verbatim,
		// never through a shell.
		return run(ctx, env, args...)
	}
}
