// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/artifact"
	"github.com/gantryci/gantry/internal/config"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/pipeline"
	"github.com/gantryci/gantry/internal/tui"
)

// PipelineFlags holds flags shared by the pipeline subcommands.
type PipelineFlags struct {
	File   string
	Ref    string
	Force  bool
	DryRun bool
	Watch  bool
}

// AddPipelineCommand adds the pipeline command group to the root command.
func AddPipelineCommand(root *cobra.Command) {
	flags := &PipelineFlags{}

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run, validate, and inspect the pipeline job graph",
	}
	cmd.PersistentFlags().StringVarP(&flags.File, "file", "f", "", "pipeline definition file")

	cmd.AddCommand(newPipelineRunCmd(flags))
	cmd.AddCommand(newPipelineValidateCmd(flags))
	cmd.AddCommand(newPipelineShowCmd(flags))

	root.AddCommand(cmd)
}

func newPipelineRunCmd(flags *PipelineFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the pipeline for a git ref",
		Long: `Execute the pipeline jobs in dependency order, applying each job's
gating rule against the given ref.

Examples:
  gantry pipeline run --ref refs/heads/main
  gantry pipeline run --ref refs/tags/v1.2.3
  gantry pipeline run --ref feature/fast-attn --dry-run
  gantry pipeline run --ref refs/heads/main --force --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), cmd, flags, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&flags.Ref, "ref", "", "git ref driving gating decisions (bare names are branches)")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "run jobs past failed or skipped predecessors")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "print gating decisions without executing")
	cmd.Flags().BoolVar(&flags.Watch, "watch", false, "live status view while the pipeline runs")
	_ = cmd.MarkFlagRequired("ref")

	return cmd
}

func newPipelineValidateCmd(flags *PipelineFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the pipeline definition",
		Long: `Check the pipeline definition for structural problems: duplicate or
missing job names, unknown dependencies, cycles, bad timeouts, unknown
gating rules, and empty matrix axes.

Examples:
  gantry pipeline validate
  gantry pipeline validate -f ci/gantry.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipelineValidate(cmd.Context(), cmd, flags, os.Stdout)
		},
	}
}

func newPipelineShowCmd(flags *PipelineFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the pipeline job graph",
		Long: `Render the pipeline jobs in execution order with their dependencies,
gating rules, and matrix axes.

Examples:
  gantry pipeline show
  gantry pipeline show -f ci/gantry.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipelineShow(cmd.Context(), cmd, flags, os.Stdout)
		},
	}
}

// parseRef converts the --ref flag to a fully qualified reference.
// Values already under refs/ pass through; anything else is a branch name.
func parseRef(value string) pipeline.Ref {
	if strings.HasPrefix(value, "refs/") {
		return pipeline.Ref(value)
	}
	return pipeline.BranchRef(value)
}

// loadGraph loads the pipeline definition and builds its execution graph.
func loadGraph(cfg *config.Config, flags *PipelineFlags) (*pipeline.Graph, error) {
	file := flags.File
	if file == "" {
		file = cfg.Pipeline.File
	}

	p, err := pipeline.Load(file)
	if err != nil {
		return nil, err
	}
	return pipeline.NewGraph(p)
}

func runPipeline(ctx context.Context, cmd *cobra.Command, flags *PipelineFlags, w io.Writer) error {
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

	graph, err := loadGraph(cfg, flags)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	ref := parseRef(flags.Ref)

	if flags.DryRun {
		decisions := pipeline.Evaluate(graph, pipeline.EvalInput{Ref: ref, Override: flags.Force}, nil)
		return renderDecisions(graph, decisions, out, outputFormat, w)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	engine := pipeline.NewEngine(graph, newCommandRunner(), artifact.Collect)
	opts := pipeline.ExecOptions{
		Ref:               ref,
		Override:          flags.Force,
		WorkDir:           workDir,
		ArtifactDir:       cfg.Pipeline.ArtifactDir,
		DefaultJobTimeout: cfg.Pipeline.JobTimeout,
	}

	runCtx := logger.WithContext(ctx)

	if flags.Watch && outputFormat != OutputJSON {
		return runPipelineWatch(runCtx, engine, opts, graph, ref, w)
	}

	if outputFormat != OutputJSON {
		opts.OnUpdate = func(res pipeline.JobResult) {
			line := fmt.Sprintf("%s  %s", tui.RenderStatus(res.Status), res.Instance)
			if res.Decision.Reason != "" {
				line += "  (" + res.Decision.Reason + ")"
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}

	summary, err := engine.Execute(runCtx, opts)
	if outputFormat == OutputJSON {
		if jsonErr := out.JSON(summary); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	counts := summary.Counts()
	out.Success(fmt.Sprintf("pipeline complete: %d succeeded, %d failed, %d skipped in %s",
		counts[pipeline.StatusSuccess], counts[pipeline.StatusFailure], counts[pipeline.StatusSkipped],
		summary.Duration.Round(time.Second)))
	return nil
}

// runPipelineWatch drives the live status view while the engine executes in
// a separate goroutine. Quitting the view cancels the run; the engine is
// always waited for so no jobs keep executing detached.
func runPipelineWatch(ctx context.Context, engine *pipeline.Engine, opts pipeline.ExecOptions, graph *pipeline.Graph, ref pipeline.Ref, w io.Writer) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan pipeline.JobResult, 16)
	result := make(chan error, 1)
	done := make(chan struct{})

	opts.OnUpdate = func(res pipeline.JobResult) {
		select {
		case updates <- res:
		case <-runCtx.Done():
		}
	}

	var runErr error
	go func() {
		_, runErr = engine.Execute(runCtx, opts)
		close(updates)
		result <- runErr
		close(done)
	}()

	model := tui.NewWatchModel(graph.Pipeline().Name, ref, updates, result)
	_, err := newWatchProgram(runCtx, model, w).Run()

	cancel()
	<-done

	if err != nil {
		return err
	}
	return runErr
}

// watchProgram is the surface of a running Bubble Tea program, injectable
// for tests.
type watchProgram interface {
	Run() (tea.Model, error)
}

var newWatchProgram = func(ctx context.Context, model tea.Model, w io.Writer) watchProgram {
	return tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(w))
}

// renderDecisions prints the dry-run gating decision for every job.
func renderDecisions(graph *pipeline.Graph, decisions map[string]pipeline.Decision, out tui.Output, outputFormat string, w io.Writer) error {
	if outputFormat == OutputJSON {
		return out.JSON(decisions)
	}

	table := tui.NewTable(w, []tui.TableColumn{
		{Name: "JOB", Width: 20, Align: tui.AlignLeft},
		{Name: "EXECUTE", Width: 8, Align: tui.AlignLeft},
		{Name: "STEPS", Width: 8, Align: tui.AlignLeft},
		{Name: "REASON", Width: 44, Align: tui.AlignLeft},
	})
	table.WriteHeader()

	for _, name := range graph.TopoOrder() {
		dec := decisions[name]
		table.WriteRow(name, yesNo(dec.Execute), yesNo(dec.MainSteps), dec.Reason)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func runPipelineValidate(ctx context.Context, cmd *cobra.Command, flags *PipelineFlags, w io.Writer) error {
	logger := GetLogger()
	tui.CheckNoColor()

	outputFormat := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, outputFormat)

	cfg := loadConfigOrDefaults(ctx, logger)
	file := flags.File
	if file == "" {
		file = cfg.Pipeline.File
	}

	data, err := os.ReadFile(file) //nolint:gosec // path comes from config or a flag
	if err != nil {
		wrapped := errors.Wrapf(err, "failed to read pipeline definition %s", file)
		out.Error(tui.WrapWithSuggestion(wrapped))
		return wrapped
	}

	issues, err := pipeline.ValidateData(data)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	if outputFormat == OutputJSON {
		if jsonErr := out.JSON(map[string]any{"valid": len(issues) == 0, "issues": issues}); jsonErr != nil {
			return jsonErr
		}
		if len(issues) > 0 {
			return errors.ErrPipelineInvalid
		}
		return nil
	}

	if len(issues) > 0 {
		for _, issue := range issues {
			out.Warning(issue)
		}
		failure := errors.Wrapf(errors.ErrPipelineInvalid, "%d issue(s)", len(issues))
		out.Error(tui.WrapWithSuggestion(failure))
		return failure
	}

	out.Success(fmt.Sprintf("%s is valid", file))
	return nil
}

func runPipelineShow(ctx context.Context, cmd *cobra.Command, flags *PipelineFlags, w io.Writer) error {
	logger := GetLogger()
	tui.CheckNoColor()

	outputFormat := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, outputFormat)

	graph, err := loadGraph(loadConfigOrDefaults(ctx, logger), flags)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	p := graph.Pipeline()
	if outputFormat == OutputJSON {
		return out.JSON(p)
	}

	_, _ = fmt.Fprintf(w, "%s (primary branch %s, tag prefix %q)\n\n", p.Name, p.PrimaryBranch, p.TagPrefix)

	table := tui.NewTable(w, []tui.TableColumn{
		{Name: "JOB", Width: 20, Align: tui.AlignLeft},
		{Name: "RULE", Width: 14, Align: tui.AlignLeft},
		{Name: "NEEDS", Width: 28, Align: tui.AlignLeft},
		{Name: "MATRIX", Width: 24, Align: tui.AlignLeft},
	})
	table.WriteHeader()

	for _, name := range graph.TopoOrder() {
		job, ok := graph.Job(name)
		if !ok {
			continue
		}
		table.WriteRow(name, string(job.EffectiveRule()), strings.Join(job.Needs, ", "), formatMatrix(job.Matrix))
	}
	return nil
}

// formatMatrix renders matrix axes as "key=n values" pairs.
func formatMatrix(matrix map[string][]string) string {
	if len(matrix) == 0 {
		return ""
	}
	axes := make([]string, 0, len(matrix))
	for axis := range matrix {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	parts := make([]string, 0, len(axes))
	for _, axis := range axes {
		parts = append(parts, fmt.Sprintf("%s(%d)", axis, len(matrix[axis])))
	}
	return strings.Join(parts, " ")
}
