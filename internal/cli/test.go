// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/checks"
	"github.com/gantryci/gantry/internal/clock"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/tui"
)

// TestFlags holds flags specific to the test command.
type TestFlags struct {
	SourceDir  string
	Coverage   bool
	FailFast   bool
	ReportFile string
}

// AddTestCommand adds the test command to the root command.
func AddTestCommand(root *cobra.Command) {
	root.AddCommand(newTestCmd())
}

func newTestCmd() *cobra.Command {
	flags := &TestFlags{}

	cmd := &cobra.Command{
		Use:   "test [category]",
		Short: "Run the categorized test suite",
		Long: `Run the test suite for one category, or all of them. Categories:
all, import, deps, library, pytest, performance.

A Markdown report is always written, even when checks fail.

Examples:
  gantry test
  gantry test import
  gantry test pytest --coverage --fail-fast`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := string(checks.CategoryAll)
			if len(args) > 0 {
				category = args[0]
			}
			return runChecks(cmd.Context(), cmd, flags, category, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&flags.SourceDir, "source-dir", "", "project source directory")
	cmd.Flags().BoolVar(&flags.Coverage, "coverage", false, "collect pytest coverage for the project module")
	cmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "stop at the first failing category")
	cmd.Flags().StringVar(&flags.ReportFile, "report-file", "", "report output path")

	return cmd
}

func runChecks(ctx context.Context, cmd *cobra.Command, flags *TestFlags, category string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	tui.CheckNoColor()

	outputFormat := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, outputFormat)

	cfg := loadConfigOrDefaults(ctx, logger)

	parsed, err := checks.ParseCategory(category)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return errors.NewExitCode2Error(err)
	}

	opts := checks.Options{
		Category:         parsed,
		SourceDir:        cfg.SourceDir(),
		BuildDir:         cfg.Build.BuildDir,
		PythonModule:     cfg.Project.PythonModule,
		Imports:          cfg.Checks.Imports,
		RequiredPackages: cfg.Checks.RequiredPackages,
		OptionalPackages: cfg.Checks.OptionalPackages,
		LibraryGlobs:     cfg.Checks.LibraryGlobs,
		PytestArgs:       cfg.Checks.PytestArgs,
		Coverage:         flags.Coverage,
		FailFast:         flags.FailFast,
		ReportPath:       cfg.Checks.ReportPath,
		Timeout:          cfg.Checks.Timeout,
	}
	if flags.SourceDir != "" {
		opts.SourceDir = flags.SourceDir
	}
	if flags.ReportFile != "" {
		opts.ReportPath = flags.ReportFile
	}

	checker, err := checks.NewRunner(opts, newCommandRunner())
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return errors.NewExitCode2Error(err)
	}

	logger.Info().
		Str("component", "checks").
		Str("category", string(parsed)).
		Msg("running checks")

	summary, runErr := checker.Run(ctx)
	if runErr != nil && !stderrors.Is(runErr, errors.ErrChecksFailed) {
		out.Error(tui.WrapWithSuggestion(runErr))
		return runErr
	}

	if outputFormat == OutputJSON {
		if err := out.JSON(summary); err != nil {
			return err
		}
		return runErr
	}

	report := checks.RenderReport(parsed, summary, clock.RealClock{})
	if tui.IsTTY(w) {
		_, _ = io.WriteString(w, tui.RenderMarkdown(report))
	} else {
		_, _ = io.WriteString(w, report)
	}

	if runErr != nil {
		out.Error(tui.WrapWithSuggestion(runErr))
		return runErr
	}
	out.Success("all checks passed")
	return nil
}
