// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/config"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
	"github.com/gantryci/gantry/internal/tui"
)

// CommandResult holds the result of a single command execution.
type CommandResult struct {
	Command    string `json:"command"`
	Success    bool   `json:"success"`
	ExitCode   int    `json:"exit_code"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// CategoryResponse is the JSON response for configured-command categories.
type CategoryResponse struct {
	Success  bool            `json:"success"`
	Category string          `json:"category"`
	Results  []CommandResult `json:"results"`
}

// UtilityOptions holds options for utility command execution.
type UtilityOptions struct {
	Verbose      bool
	OutputFormat string
	Writer       io.Writer
}

// newCommandRunner builds the shared shell runner with the source-tree
// environment exported to every child process.
func newCommandRunner() *runner.DefaultCommandRunner {
	return &runner.DefaultCommandRunner{Env: runner.SourceEnv()}
}

// silenceJSONError suppresses cobra's error printing when the failure has
// already been reported as a JSON response. The error still propagates so
// the process exits non-zero.
func silenceJSONError(cmd *cobra.Command, err error) error {
	if stderrors.Is(err, errors.ErrJSONErrorOutput) {
		cmd.SilenceErrors = true
	}
	return err
}

// utilityOptionsFromCmd extracts the common options from the command's
// persistent flags.
func utilityOptionsFromCmd(cmd *cobra.Command, w io.Writer) UtilityOptions {
	return UtilityOptions{
		Verbose:      cmd.Flag("verbose").Value.String() == "true",
		OutputFormat: cmd.Flag("output").Value.String(),
		Writer:       w,
	}
}

// loadConfigOrDefaults loads the layered configuration, falling back to
// defaults when no config file is readable.
func loadConfigOrDefaults(ctx context.Context, logger zerolog.Logger) *config.Config {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		return config.DefaultConfig()
	}
	return cfg
}

// showVerboseOutput displays command output in verbose mode.
func showVerboseOutput(opts UtilityOptions, result CommandResult) {
	if !opts.Verbose {
		return
	}
	if result.Output != "" {
		_, _ = fmt.Fprintln(opts.Writer, result.Output)
	}
	if result.Error != "" {
		_, _ = fmt.Fprintln(opts.Writer, result.Error)
	}
}

// runSingleCommand executes a single command and returns the result.
func runSingleCommand(ctx context.Context, r runner.CommandRunner, workDir, cmdStr string, logger zerolog.Logger) CommandResult {
	start := time.Now()

	stdout, stderr, exitCode, err := r.Run(ctx, workDir, cmdStr)

	result := CommandResult{
		Command:    cmdStr,
		Success:    err == nil && exitCode == 0,
		ExitCode:   exitCode,
		DurationMs: time.Since(start).Milliseconds(),
	}

	if stdout != "" {
		result.Output = stdout
	}
	if err != nil || exitCode != 0 {
		if stderr != "" {
			result.Error = stderr
		} else if err != nil {
			result.Error = err.Error()
		}
	}

	logger.Debug().
		Str("command", cmdStr).
		Bool("success", result.Success).
		Int("exit_code", exitCode).
		Int64("duration_ms", result.DurationMs).
		Msg("command executed")

	return result
}

// executeCategory runs the configured command list for a category
// sequentially. The first failure aborts the category. The results gathered
// so far are returned alongside the error so callers can report them.
func executeCategory(
	ctx context.Context,
	r runner.CommandRunner,
	commands []string,
	category string,
	out tui.Output,
	opts UtilityOptions,
	logger zerolog.Logger,
) ([]CommandResult, error) {
	if len(commands) == 0 {
		return nil, fmt.Errorf("%w: no %s commands configured", errors.ErrCommandNotConfigured, category)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	results := make([]CommandResult, 0, len(commands))
	for _, cmdStr := range commands {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		if opts.Verbose && opts.OutputFormat != OutputJSON {
			out.Info("Running: " + cmdStr)
		}

		result := runSingleCommand(ctx, r, workDir, cmdStr, logger)
		results = append(results, result)

		showVerboseOutput(opts, result)

		if !result.Success {
			return results, fmt.Errorf("%w: %s in %s", errors.ErrCommandFailed, cmdStr, category)
		}

		// Per-command success lines are TTY only; JSON gets the final
		// response instead.
		if opts.OutputFormat != OutputJSON {
			out.Success(cmdStr)
		}
	}

	return results, nil
}

// runCategoryCommands executes a category and reports the outcome in the
// selected output format.
func runCategoryCommands(
	ctx context.Context,
	r runner.CommandRunner,
	commands []string,
	category string,
	out tui.Output,
	opts UtilityOptions,
	logger zerolog.Logger,
) error {
	results, err := executeCategory(ctx, r, commands, category, out, opts, logger)
	if err != nil {
		if !stderrors.Is(err, errors.ErrCommandFailed) {
			return err
		}
		if opts.OutputFormat == OutputJSON {
			if jsonErr := out.JSON(CategoryResponse{
				Success:  false,
				Category: category,
				Results:  results,
			}); jsonErr != nil {
				return jsonErr
			}
			// The failure is already on stdout as JSON; the sentinel
			// keeps the exit code non-zero without a second print.
			return errors.ErrJSONErrorOutput
		}
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	if opts.OutputFormat == OutputJSON {
		return out.JSON(CategoryResponse{
			Success:  true,
			Category: category,
			Results:  results,
		})
	}

	out.Success(fmt.Sprintf("%s completed successfully", category))
	return nil
}

// runConfiguredCategory is the shared entry point for commands that execute
// a configured command list (lint, format, package, serve, chat).
func runConfiguredCategory(
	ctx context.Context,
	cmd *cobra.Command,
	w io.Writer,
	category string,
	pick func(*config.Config) []string,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	tui.CheckNoColor()

	opts := utilityOptionsFromCmd(cmd, w)
	out := tui.NewOutput(w, opts.OutputFormat)

	cfg := loadConfigOrDefaults(ctx, logger)
	commands := pick(cfg)

	return runCategoryCommands(ctx, newCommandRunner(), commands, category, out, opts, logger)
}
