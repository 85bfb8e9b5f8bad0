package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	gantryerrors "github.com/gantryci/gantry/internal/errors"
)

// DefaultTimeout bounds a single command when the caller does not set one.
const DefaultTimeout = 30 * time.Minute

// Executor runs command sequences with a per-command timeout and structured
// logging. Build phases, check categories, and pipeline job steps all go
// through it so every subprocess is logged and bounded the same way.
type Executor struct {
	runner     CommandRunner
	timeout    time.Duration
	liveOutput io.Writer
}

// NewExecutor creates an executor backed by os/exec.
func NewExecutor(timeout time.Duration) *Executor {
	return NewExecutorWithRunner(timeout, &DefaultCommandRunner{Env: SourceEnv()})
}

// NewExecutorWithRunner creates an executor with a custom runner.
func NewExecutorWithRunner(timeout time.Duration, r CommandRunner) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{runner: r, timeout: timeout}
}

// SetLiveOutput streams stdout and stderr to w as commands produce them,
// in addition to capturing them in the results. Only effective when the
// underlying runner supports streaming.
func (e *Executor) SetLiveOutput(w io.Writer) {
	e.liveOutput = w
}

// Run executes commands sequentially, stopping on the first failure.
func (e *Executor) Run(ctx context.Context, commands []string, workDir string) ([]Result, error) {
	return e.RunWithPhase(ctx, commands, workDir, "")
}

// RunWithPhase executes commands sequentially, stopping on the first
// failure. The phase labels log lines (a build phase name, a check
// category, a pipeline job instance). All results collected so far are
// returned alongside the error.
func (e *Executor) RunWithPhase(ctx context.Context, commands []string, workDir, phase string) ([]Result, error) {
	results := make([]Result, 0, len(commands))

	for i, cmd := range commands {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := e.runOne(ctx, cmd, workDir, phase, i+1, len(commands))
		if result != nil {
			results = append(results, *result)
		}
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

func (e *Executor) runOne(ctx context.Context, command, workDir, phase string, num, total int) (*Result, error) {
	log := zerolog.Ctx(ctx)

	if workDir != "" {
		if _, err := os.Stat(workDir); os.IsNotExist(err) {
			log.Error().Str("work_dir", workDir).Str("command", command).
				Msg("work directory missing before command")
			return &Result{
					Command: command,
					Error:   fmt.Sprintf("work directory missing: %s", workDir),
				}, fmt.Errorf("work directory missing: %s: %w",
					workDir, gantryerrors.ErrSourceDirMissing)
		}
	}

	event := log.Info().Str("command", command).Str("work_dir", workDir)
	if phase != "" {
		event = event.Str("phase", phase)
	}
	if total > 0 {
		event = event.Int("command_num", num).Int("total_commands", total)
	}
	event.Msg("executing command")

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	stdout, stderr, exitCode, runErr := e.dispatch(cmdCtx, command, workDir)
	completed := time.Now()

	result := &Result{
		Command:     command,
		ExitCode:    exitCode,
		Stdout:      stdout,
		Stderr:      stderr,
		DurationMs:  completed.Sub(started).Milliseconds(),
		StartedAt:   started,
		CompletedAt: completed,
	}

	switch {
	case errors.Is(cmdCtx.Err(), context.DeadlineExceeded):
		result.Error = "command timed out"
		log.Error().Str("command", command).Int64("duration_ms", result.DurationMs).
			Str("stderr", stderr).Msg("command timed out")
		return result, gantryerrors.ErrCommandTimeout

	case ctx.Err() != nil:
		result.Error = "context canceled"
		return result, ctx.Err()

	case runErr != nil || exitCode != 0:
		if runErr != nil {
			result.Error = runErr.Error()
		} else {
			result.Error = fmt.Sprintf("exit code %d", exitCode)
		}
		log.Error().Str("command", command).Int("exit_code", exitCode).
			Int64("duration_ms", result.DurationMs).Str("stderr", stderr).
			Msg("command failed")
		return result, fmt.Errorf("%w: %s", gantryerrors.ErrCommandFailed, command)
	}

	result.Success = true
	log.Info().Str("command", command).Int("exit_code", exitCode).
		Int64("duration_ms", result.DurationMs).Msg("command completed")
	return result, nil
}

// dispatch picks the streaming path when live output is enabled and the
// runner can stream.
func (e *Executor) dispatch(ctx context.Context, command, workDir string) (stdout, stderr string, exitCode int, err error) {
	if e.liveOutput != nil {
		if live, ok := e.runner.(LiveOutputRunner); ok {
			return live.RunWithLiveOutput(ctx, workDir, command, e.liveOutput)
		}
	}
	return e.runner.Run(ctx, workDir, command)
}
