// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/tools"
	"github.com/gantryci/gantry/internal/tui"
)

// AddDoctorCommand adds the doctor command to the root command.
func AddDoctorCommand(root *cobra.Command) {
	root.AddCommand(newDoctorCmd())
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the build toolchain",
		Long: `Detect the build toolchain and report each tool's status, version,
and minimum requirement. Exits non-zero when a required tool is
missing or outdated.

Examples:
  gantry doctor
  gantry doctor --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd.Context(), cmd, tools.NewDetector(), os.Stdout)
		},
	}
}

func runDoctor(ctx context.Context, cmd *cobra.Command, detector *tools.Detector, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	tui.CheckNoColor()

	outputFormat := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, outputFormat)

	result, err := detector.Detect(ctx)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	if outputFormat == OutputJSON {
		if err := out.JSON(result); err != nil {
			return err
		}
		return result.Err()
	}

	renderToolTable(w, result)

	if detectErr := result.Err(); detectErr != nil {
		logger.Error().Err(detectErr).Msg("toolchain check failed")
		out.Error(tui.WrapWithSuggestion(detectErr))
		return detectErr
	}

	out.Success("toolchain looks good")
	return nil
}

// renderToolTable writes the per-tool status table.
func renderToolTable(w io.Writer, result *tools.DetectionResult) {
	table := tui.NewTable(w, []tui.TableColumn{
		{Name: "TOOL", Width: 10, Align: tui.AlignLeft},
		{Name: "STATUS", Width: 12, Align: tui.AlignLeft},
		{Name: "VERSION", Width: 12, Align: tui.AlignLeft},
		{Name: "MINIMUM", Width: 10, Align: tui.AlignLeft},
		{Name: "HINT", Width: 40, Align: tui.AlignLeft},
	})
	table.WriteHeader()

	for _, tool := range result.Tools {
		version := tool.CurrentVersion
		if version == "" {
			version = "-"
		}
		minimum := tool.MinVersion
		if minimum == "" {
			minimum = "-"
		}
		hint := ""
		if tool.Status != tools.StatusInstalled {
			hint = tool.InstallHint
		}
		table.WriteRow(tool.Name, tool.Status.String(), version, minimum, hint)
	}
}
