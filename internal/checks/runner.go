package checks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gantryci/gantry/internal/clock"
	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
)

// Options configures a check run.
type Options struct {
	// Category selects which checks run; CategoryAll runs every category.
	Category Category

	SourceDir string
	BuildDir  string

	// PythonModule is the project module probed by import, pytest
	// coverage, and performance checks.
	PythonModule string

	// Imports lists the modules probed by the import category.
	Imports []string

	RequiredPackages []string
	OptionalPackages []string

	// LibraryGlobs are compiled-artifact patterns relative to BuildDir.
	LibraryGlobs []string

	// PytestArgs are extra arguments appended to the pytest invocation.
	PytestArgs []string

	// Coverage adds coverage reporting to the pytest category.
	Coverage bool

	// FailFast stops before the next category once one has failed.
	FailFast bool

	// ReportPath is where the summary report is written. Empty disables
	// the report file.
	ReportPath string

	// Timeout bounds each check command.
	Timeout time.Duration

	// ImportBudget bounds the performance category's module import time.
	ImportBudget time.Duration
}

// normalize fills in the option defaults.
func (o *Options) normalize() {
	if o.Category == "" {
		o.Category = CategoryAll
	}
	if o.SourceDir == "" {
		o.SourceDir = "."
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Minute
	}
	if o.ImportBudget <= 0 {
		o.ImportBudget = constants.ImportTimingBudget
	}
}

// Runner executes check categories.
type Runner struct {
	opts   Options
	runner runner.CommandRunner
	clock  clock.Clock
}

// NewRunner validates the category selector and creates a check runner.
func NewRunner(opts Options, r runner.CommandRunner) (*Runner, error) {
	if opts.Category != "" {
		if _, err := ParseCategory(string(opts.Category)); err != nil {
			return nil, err
		}
	}
	opts.normalize()
	return &Runner{opts: opts, runner: r, clock: clock.RealClock{}}, nil
}

// SetClock swaps the time source for tests.
func (r *Runner) SetClock(c clock.Clock) {
	r.clock = c
}

// Run executes the selected categories and always writes the summary
// report before returning, whatever the outcome. The error is
// ErrChecksFailed when any check failed.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := zerolog.Ctx(ctx).With().Str("component", "checks").Logger()
	log.Info().Str("category", string(r.opts.Category)).Bool("fail_fast", r.opts.FailFast).Msg("checks started")

	summary := &Summary{StartedAt: r.clock.Now()}

	for _, category := range r.selectedCategories() {
		if r.opts.FailFast && !summary.OK() {
			log.Warn().Str("category", string(category)).Msg("category not run: fail-fast after earlier failure")
			break
		}
		summary.Merge(r.runCategory(ctx, &log, category))
	}

	summary.Duration = r.clock.Now().Sub(summary.StartedAt)
	log.Info().
		Int("passed", summary.Passed).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("checks finished")

	// The report is written even when checks failed, so a broken run
	// still leaves an inspectable record behind.
	if r.opts.ReportPath != "" {
		if err := WriteReport(r.opts.ReportPath, r.opts.Category, summary, r.clock); err != nil {
			log.Warn().Err(err).Str("path", r.opts.ReportPath).Msg("failed to write report")
		}
	}

	if !summary.OK() {
		return summary, errors.Wrapf(errors.ErrChecksFailed, "%d of %d checks failed", summary.Failed, summary.Total())
	}
	return summary, nil
}

// selectedCategories resolves the category selector.
func (r *Runner) selectedCategories() []Category {
	if r.opts.Category == CategoryAll {
		return Categories()
	}
	return []Category{r.opts.Category}
}

// runCategory dispatches one category and returns its own summary.
func (r *Runner) runCategory(ctx context.Context, log *zerolog.Logger, category Category) Summary {
	log.Info().Str("category", string(category)).Msg("category started")

	var s Summary
	switch category {
	case CategoryImport:
		s = r.runImportChecks(ctx)
	case CategoryDeps:
		s = r.runDepsChecks(ctx)
	case CategoryLibrary:
		s = r.runLibraryChecks()
	case CategoryPytest:
		s = r.runPytest(ctx)
	case CategoryPerformance:
		s = r.runPerformance(ctx)
	case CategoryAll:
		// resolved by selectedCategories
	}

	log.Info().Str("category", string(category)).
		Int("passed", s.Passed).Int("failed", s.Failed).Int("skipped", s.Skipped).
		Msg("category finished")
	return s
}

// probe runs one python command and converts the outcome into a record.
func (r *Runner) probe(ctx context.Context, category Category, name, command string) Record {
	started := r.clock.Now()

	exec := runner.NewExecutorWithRunner(r.opts.Timeout, r.runner)
	results, err := exec.RunWithPhase(ctx, []string{command}, r.opts.SourceDir, string(category))

	record := Record{
		Category: category,
		Name:     name,
		Status:   CheckPassed,
		Duration: r.clock.Now().Sub(started),
	}
	if err != nil {
		record.Status = CheckFailed
		record.Detail = firstFailureDetail(results, err)
	}
	return record
}

// runImportChecks probes every expected module import.
func (r *Runner) runImportChecks(ctx context.Context) Summary {
	var s Summary
	for _, module := range r.opts.Imports {
		command := fmt.Sprintf("%s -c 'import %s'", constants.ToolPython, module)
		s.Add(r.probe(ctx, CategoryImport, "import "+module, command))
	}
	return s
}

// runDepsChecks probes required and optional Python packages. A missing
// required package fails; a missing optional one is a skip with a
// warning detail.
func (r *Runner) runDepsChecks(ctx context.Context) Summary {
	var s Summary
	for _, pkg := range r.opts.RequiredPackages {
		command := fmt.Sprintf("%s -c 'import %s'", constants.ToolPython, pkg)
		s.Add(r.probe(ctx, CategoryDeps, "required "+pkg, command))
	}
	for _, pkg := range r.opts.OptionalPackages {
		command := fmt.Sprintf("%s -c 'import %s'", constants.ToolPython, pkg)
		record := r.probe(ctx, CategoryDeps, "optional "+pkg, command)
		if record.Status == CheckFailed {
			record.Status = CheckSkipped
			record.Detail = "optional package not installed"
		}
		s.Add(record)
	}
	return s
}

// runLibraryChecks verifies compiled artifacts exist under the build
// directory. An absent library is a skip, not a failure: not every
// build variant produces every artifact.
func (r *Runner) runLibraryChecks() Summary {
	var s Summary
	for _, glob := range r.opts.LibraryGlobs {
		started := r.clock.Now()
		record := Record{Category: CategoryLibrary, Name: glob}

		matches, err := filepath.Glob(filepath.Join(r.opts.BuildDir, glob))
		switch {
		case err != nil:
			record.Status = CheckFailed
			record.Detail = fmt.Sprintf("bad pattern: %v", err)
		case len(matches) == 0:
			record.Status = CheckSkipped
			record.Detail = "no compiled artifact matched"
		default:
			record.Status = CheckPassed
			record.Detail = fmt.Sprintf("%d file(s)", len(matches))
		}

		record.Duration = r.clock.Now().Sub(started)
		s.Add(record)
	}
	return s
}

// runPytest executes the unit-test suite.
func (r *Runner) runPytest(ctx context.Context) Summary {
	parts := []string{constants.ToolPython, "-m", "pytest"}
	if r.opts.Coverage && r.opts.PythonModule != "" {
		parts = append(parts, "--cov="+r.opts.PythonModule)
	}
	parts = append(parts, r.opts.PytestArgs...)

	var s Summary
	s.Add(r.probe(ctx, CategoryPytest, "pytest", strings.Join(parts, " ")))
	return s
}

// runPerformance times the module import against the wall-clock budget.
func (r *Runner) runPerformance(ctx context.Context) Summary {
	var s Summary
	if r.opts.PythonModule == "" {
		s.Add(Record{
			Category: CategoryPerformance,
			Name:     "import timing",
			Status:   CheckSkipped,
			Detail:   "no python module configured",
		})
		return s
	}

	started := r.clock.Now()
	command := fmt.Sprintf("%s -c 'import %s'", constants.ToolPython, r.opts.PythonModule)

	exec := runner.NewExecutorWithRunner(r.opts.ImportBudget, r.runner)
	results, err := exec.RunWithPhase(ctx, []string{command}, r.opts.SourceDir, string(CategoryPerformance))

	record := Record{
		Category: CategoryPerformance,
		Name:     "import timing",
		Status:   CheckPassed,
		Detail:   fmt.Sprintf("budget %s", r.opts.ImportBudget),
		Duration: r.clock.Now().Sub(started),
	}
	if err != nil {
		record.Status = CheckFailed
		record.Detail = firstFailureDetail(results, err)
	}
	s.Add(record)
	return s
}

// firstFailureDetail extracts a short failure description from the
// command results.
func firstFailureDetail(results []runner.Result, err error) string {
	for i := range results {
		if !results[i].Success {
			if detail := strings.TrimSpace(results[i].Stderr); detail != "" {
				return firstLine(detail)
			}
			return results[i].Error
		}
	}
	return err.Error()
}

// firstLine truncates output to its first line.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
