package build

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
)

// Run executes the build phases in order: pre-flight, clean, lock,
// submodules, configure, compile, install, smoke. The first failing
// phase aborts the build; smoke probe failures only produce warnings.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	log := zerolog.Ctx(ctx).With().Str("component", "build").Logger()
	log.Info().
		Str("build_type", d.opts.BuildType).
		Int("jobs", d.opts.Jobs).
		Str("source_dir", d.opts.SourceDir).
		Str("build_dir", d.opts.BuildDir).
		Msg("build started")

	started := time.Now()
	result := &Result{}

	if err := d.preflight(ctx, result); err != nil {
		return result, err
	}

	if d.opts.Clean {
		if err := d.clean(&log, result); err != nil {
			return result, err
		}
	}

	lock, err := acquireBuildLock(d.opts.BuildDir)
	if err != nil {
		return result, err
	}
	defer lock.release()

	phases := []struct {
		name    string
		skip    bool
		command string
		timeout time.Duration
	}{
		{"submodules", d.opts.SkipSubmodules, d.submoduleCommand(), d.opts.PhaseTimeout},
		{"configure", false, d.configureCommand(), d.opts.PhaseTimeout},
		{"compile", false, d.compileCommand(), d.opts.PhaseTimeout},
		{"install", false, d.installCommand(), d.opts.PhaseTimeout},
	}

	for _, phase := range phases {
		if phase.skip {
			log.Info().Str("phase", phase.name).Msg("phase skipped")
			result.Phases = append(result.Phases, PhaseResult{Name: phase.name, Skipped: true})
			continue
		}
		if err = d.runPhase(ctx, result, phase.name, phase.command, phase.timeout); err != nil {
			result.Duration = time.Since(started)
			return result, err
		}
	}

	if d.opts.SkipSmoke {
		result.Phases = append(result.Phases, PhaseResult{Name: "smoke", Skipped: true})
	} else {
		d.smoke(ctx, &log, result)
	}

	result.Duration = time.Since(started)
	log.Info().Dur("duration", result.Duration).Int("warnings", len(result.SmokeWarnings)).Msg("build finished")
	return result, nil
}

// preflight verifies the required toolchain is present and recent
// enough. SkipDeps bypasses detection entirely: no tool is probed.
func (d *Driver) preflight(ctx context.Context, result *Result) error {
	if d.opts.SkipDeps {
		result.Phases = append(result.Phases, PhaseResult{Name: "preflight", Skipped: true})
		return nil
	}

	started := time.Now()
	detection, err := d.detector.Detect(ctx)
	if err != nil {
		return errors.Wrap(err, "toolchain detection failed")
	}
	result.Phases = append(result.Phases, PhaseResult{Name: "preflight", Duration: time.Since(started)})

	return detection.Err()
}

// clean removes the build directory.
func (d *Driver) clean(log *zerolog.Logger, result *Result) error {
	started := time.Now()
	log.Info().Str("build_dir", d.opts.BuildDir).Msg("removing build directory")

	if err := os.RemoveAll(d.opts.BuildDir); err != nil {
		return errors.Wrapf(err, "failed to remove build directory %s", d.opts.BuildDir)
	}
	result.Phases = append(result.Phases, PhaseResult{Name: "clean", Duration: time.Since(started)})
	return nil
}

// runPhase executes one phase command under its timeout.
func (d *Driver) runPhase(ctx context.Context, result *Result, name, command string, timeout time.Duration) error {
	started := time.Now()

	exec := runner.NewExecutorWithRunner(timeout, d.runner)
	if d.opts.LiveOutput != nil {
		exec.SetLiveOutput(d.opts.LiveOutput)
	}
	cmdResults, err := exec.RunWithPhase(ctx, []string{command}, d.opts.SourceDir, name)

	result.Phases = append(result.Phases, PhaseResult{
		Name:     name,
		Commands: cmdResults,
		Duration: time.Since(started),
	})

	if err != nil {
		return errors.Wrapf(errors.ErrBuildPhaseFailed, "%s: %v", name, err)
	}
	return nil
}

// smoke runs the post-build import and version probes. Failures become
// warnings on the result, never errors.
func (d *Driver) smoke(ctx context.Context, log *zerolog.Logger, result *Result) {
	module := d.opts.PythonModule
	if module == "" {
		result.Phases = append(result.Phases, PhaseResult{Name: "smoke", Skipped: true})
		return
	}

	started := time.Now()
	phase := PhaseResult{Name: "smoke"}

	probes := []struct {
		label   string
		command string
		timeout time.Duration
	}{
		{
			"import",
			fmt.Sprintf("%s -c 'import %s'", constants.ToolPython, module),
			d.opts.SmokeImportTimeout,
		},
		{
			"version",
			fmt.Sprintf("%s -c 'import %s; print(%s.__version__)'", constants.ToolPython, module, module),
			d.opts.SmokeVersionTimeout,
		},
	}

	for _, probe := range probes {
		exec := runner.NewExecutorWithRunner(probe.timeout, d.runner)
		cmdResults, err := exec.RunWithPhase(ctx, []string{probe.command}, d.opts.SourceDir, "smoke")
		phase.Commands = append(phase.Commands, cmdResults...)
		if err != nil {
			warning := fmt.Sprintf("smoke %s probe failed: %v", probe.label, err)
			log.Warn().Str("probe", probe.label).Err(err).Msg("smoke probe failed")
			result.SmokeWarnings = append(result.SmokeWarnings, warning)
		}
	}

	phase.Duration = time.Since(started)
	result.Phases = append(result.Phases, phase)
}
