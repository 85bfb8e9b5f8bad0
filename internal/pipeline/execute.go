package pipeline

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gantryci/gantry/internal/clock"
	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
)

// ExecOptions carries the run-level inputs to pipeline execution.
type ExecOptions struct {
	// Ref is the triggering git reference.
	Ref Ref

	// Override forces jobs to run past failed or skipped predecessors.
	Override bool

	// WorkDir is the working directory for job commands.
	WorkDir string

	// ArtifactDir is the root artifact directory; each run collects into
	// a subdirectory named after its run ID. Empty disables collection.
	ArtifactDir string

	// DefaultJobTimeout bounds jobs that do not declare their own.
	DefaultJobTimeout time.Duration

	// OnUpdate, when set, is called after every job instance completes.
	// Used by the live status view.
	OnUpdate func(JobResult)
}

// RunSummary is the aggregate outcome of one pipeline run.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Pipeline  string        `json:"pipeline"`
	Ref       Ref           `json:"ref"`
	Results   []JobResult   `json:"results"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Failed returns true when any executed job instance failed.
func (s *RunSummary) Failed() bool {
	for i := range s.Results {
		if s.Results[i].Status == StatusFailure {
			return true
		}
	}
	return false
}

// Counts returns the number of results per terminal status.
func (s *RunSummary) Counts() map[Status]int {
	counts := make(map[Status]int)
	for i := range s.Results {
		counts[s.Results[i].Status]++
	}
	return counts
}

// CollectFunc gathers the files matching globs (relative to srcDir)
// into destDir and returns the destination paths. The artifact package
// provides the production implementation.
type CollectFunc func(srcDir string, globs []string, destDir string) ([]string, error)

// Engine executes a pipeline graph through a command runner.
type Engine struct {
	graph   *Graph
	runner  runner.CommandRunner
	clock   clock.Clock
	collect CollectFunc
}

// NewEngine creates an execution engine for the graph. The collector is
// optional; without one, declared artifacts are not gathered.
func NewEngine(g *Graph, r runner.CommandRunner, collect CollectFunc) *Engine {
	return &Engine{
		graph:   g,
		runner:  r,
		clock:   clock.RealClock{},
		collect: collect,
	}
}

// SetClock swaps the time source for tests.
func (e *Engine) SetClock(c clock.Clock) {
	e.clock = c
}

// Execute runs the pipeline: jobs sequentially in topological order,
// matrix jobs fanned out into independent instances, each instance
// bounded by the job timeout. There are no retries; a failed instance
// fails its job, and downstream gating sees the aggregate job status.
//
// The summary is always returned. The error is ErrJobFailed when any
// executed instance failed, and the context error when the run was
// cancelled mid-flight.
func (e *Engine) Execute(ctx context.Context, opts ExecOptions) (*RunSummary, error) {
	if opts.DefaultJobTimeout <= 0 {
		opts.DefaultJobTimeout = constants.DefaultCommandTimeout
	}

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Pipeline:  e.graph.Pipeline().Name,
		Ref:       opts.Ref,
		StartedAt: e.clock.Now(),
	}

	log := zerolog.Ctx(ctx).With().
		Str("component", "pipeline").
		Str("run_id", summary.RunID).
		Str("ref", string(opts.Ref)).
		Logger()
	log.Info().Str("pipeline", summary.Pipeline).Bool("override", opts.Override).Msg("pipeline run started")

	in := EvalInput{Ref: opts.Ref, Override: opts.Override}
	statuses := make(map[string]Status, len(e.graph.order))
	cancelled := false

	for _, name := range e.graph.TopoOrder() {
		job, _ := e.graph.Job(name)

		if cancelled || ctx.Err() != nil {
			cancelled = true
			e.record(summary, opts, JobResult{
				Job:      name,
				Instance: name,
				Status:   StatusCancelled,
				Decision: Decision{Reason: "run cancelled"},
			})
			statuses[name] = StatusCancelled
			continue
		}

		dec := decide(e.graph.Pipeline(), job, in, statuses)
		if !dec.Execute {
			log.Info().Str("job", name).Str("reason", dec.Reason).Msg("job skipped")
			e.record(summary, opts, JobResult{
				Job:       name,
				Instance:  name,
				Status:    StatusSkipped,
				Decision:  dec,
				StartedAt: e.clock.Now(),
			})
			statuses[name] = StatusSkipped
			continue
		}

		statuses[name] = e.executeJob(ctx, &log, job, dec, opts, summary)
		if statuses[name] == StatusCancelled {
			cancelled = true
		}
	}

	summary.Duration = e.clock.Now().Sub(summary.StartedAt)
	counts := summary.Counts()
	log.Info().
		Int("success", counts[StatusSuccess]).
		Int("failure", counts[StatusFailure]).
		Int("skipped", counts[StatusSkipped]).
		Dur("duration", summary.Duration).
		Msg("pipeline run finished")

	if cancelled && ctx.Err() != nil {
		return summary, errors.Wrap(errors.ErrOperationCanceled, "pipeline run cancelled")
	}
	if summary.Failed() {
		return summary, errors.Wrapf(errors.ErrJobFailed,
			"%d job instance(s) failed", counts[StatusFailure])
	}
	return summary, nil
}

// executeJob runs every matrix instance of one job and returns the
// aggregate job status: success only when all instances succeeded.
func (e *Engine) executeJob(ctx context.Context, log *zerolog.Logger, job *Job, dec Decision, opts ExecOptions, summary *RunSummary) Status {
	timeout, err := job.ParseTimeout(opts.DefaultJobTimeout)
	if err != nil {
		// Validate catches this before execution; guard anyway.
		timeout = opts.DefaultJobTimeout
	}

	aggregate := StatusSuccess
	for _, inst := range expandMatrix(job.Matrix) {
		instance := job.Name
		if label := inst.Label(); label != "" {
			instance += " " + label
		}

		if ctx.Err() != nil {
			e.record(summary, opts, JobResult{
				Job:      job.Name,
				Instance: instance,
				Status:   StatusCancelled,
				Decision: dec,
			})
			return StatusCancelled
		}

		result := e.executeInstance(ctx, log, job, dec, inst, instance, timeout, opts, summary.RunID)
		e.record(summary, opts, result)

		// Fan-in: every instance must succeed for the job to succeed.
		// Instances stay independent, so later instances still run.
		switch result.Status {
		case StatusFailure:
			aggregate = StatusFailure
		case StatusCancelled:
			return StatusCancelled
		case StatusPending, StatusRunning, StatusSuccess, StatusSkipped:
		}
	}
	return aggregate
}

// executeInstance runs one job instance's main steps and collects its
// artifacts.
func (e *Engine) executeInstance(ctx context.Context, log *zerolog.Logger, job *Job, dec Decision, inst matrixInstance, instance string, timeout time.Duration, opts ExecOptions, runID string) JobResult {
	result := JobResult{
		Job:       job.Name,
		Instance:  instance,
		Decision:  dec,
		StartedAt: e.clock.Now(),
	}

	if !dec.MainSteps {
		// The job starts but its main steps are gated out; it completes
		// without running commands and counts as finished.
		log.Info().Str("instance", instance).Str("reason", dec.Reason).Msg("main steps skipped")
		result.Status = StatusSuccess
		result.Duration = e.clock.Now().Sub(result.StartedAt)
		return result
	}

	commands := make([]string, 0, len(job.Run))
	for _, command := range job.Run {
		commands = append(commands, expandCommand(command, inst))
	}

	log.Info().Str("instance", instance).Int("commands", len(commands)).Msg("job instance started")

	exec := runner.NewExecutorWithRunner(timeout, e.runner)
	cmdResults, runErr := exec.RunWithPhase(ctx, commands, opts.WorkDir, instance)
	result.Commands = cmdResults
	result.Duration = e.clock.Now().Sub(result.StartedAt)

	switch {
	case runErr == nil:
		result.Status = StatusSuccess
	case ctx.Err() != nil:
		result.Status = StatusCancelled
	default:
		result.Status = StatusFailure
	}

	if result.Status == StatusSuccess && len(job.Artifacts) > 0 && opts.ArtifactDir != "" && e.collect != nil {
		destDir := filepath.Join(opts.ArtifactDir, runID, job.Name)
		paths, collectErr := e.collect(opts.WorkDir, job.Artifacts, destDir)
		switch {
		case collectErr == nil:
		case stderrors.Is(collectErr, errors.ErrNoArtifacts):
			// Declared patterns that matched nothing are a warning, not a
			// failed job.
			log.Warn().Err(collectErr).Str("instance", instance).Msg("no artifacts matched")
		default:
			log.Warn().Err(collectErr).Str("instance", instance).Msg("artifact collection failed")
			result.Status = StatusFailure
		}
		result.ArtifactPaths = paths
	}

	log.Info().
		Str("instance", instance).
		Str("status", string(result.Status)).
		Dur("duration", result.Duration).
		Msg("job instance finished")
	return result
}

// record appends a result to the summary and notifies the watcher.
func (e *Engine) record(summary *RunSummary, opts ExecOptions, result JobResult) {
	summary.Results = append(summary.Results, result)
	if opts.OnUpdate != nil {
		opts.OnUpdate(result)
	}
}
