// Package build drives the native build: toolchain pre-flight, submodule
// init, configure, compile, install, and post-build smoke probes.
//
// Each phase fails fast; a phase failure stops the build immediately.
// Smoke probes are the one exception: their failures are reported as
// warnings and never change the build's outcome.
package build

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/gantryci/gantry/internal/config"
	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
	"github.com/gantryci/gantry/internal/tools"
)

// Options configures one build.
type Options struct {
	// BuildType is the build configuration: Release, Debug,
	// RelWithDebInfo, or MinSizeRel.
	BuildType string

	// Jobs is the compile parallelism. Zero means the processor count.
	Jobs int

	SourceDir     string
	BuildDir      string
	InstallPrefix string

	// PythonModule is probed by the smoke phase.
	PythonModule string

	// SkipDeps skips the toolchain pre-flight entirely.
	SkipDeps bool

	// SkipSubmodules skips git submodule initialization.
	SkipSubmodules bool

	// SkipSmoke skips the post-build smoke probes.
	SkipSmoke bool

	// Clean removes the build directory before configuring.
	Clean bool

	// PhaseTimeout bounds each configure/compile/install invocation.
	PhaseTimeout time.Duration

	SmokeImportTimeout  time.Duration
	SmokeVersionTimeout time.Duration

	// LiveOutput, when set, streams phase command output as it is
	// produced instead of only capturing it.
	LiveOutput io.Writer
}

// normalize fills in the option defaults.
func (o *Options) normalize() {
	if o.Jobs <= 0 {
		o.Jobs = runtime.NumCPU()
	}
	if o.PhaseTimeout <= 0 {
		o.PhaseTimeout = constants.DefaultCommandTimeout
	}
	if o.SmokeImportTimeout <= 0 {
		o.SmokeImportTimeout = constants.SmokeImportTimeout
	}
	if o.SmokeVersionTimeout <= 0 {
		o.SmokeVersionTimeout = constants.SmokeVersionTimeout
	}
	if o.SourceDir == "" {
		o.SourceDir = "."
	}
	if o.BuildDir == "" {
		o.BuildDir = "build"
	}
}

// PhaseResult records one build phase's outcome.
type PhaseResult struct {
	Name     string          `json:"name"`
	Skipped  bool            `json:"skipped,omitempty"`
	Commands []runner.Result `json:"commands,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// Result is the aggregate outcome of a build.
type Result struct {
	Phases []PhaseResult `json:"phases"`

	// SmokeWarnings lists smoke probe failures. They never fail the build.
	SmokeWarnings []string `json:"smoke_warnings,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Driver executes builds.
type Driver struct {
	opts     Options
	runner   runner.CommandRunner
	detector *tools.Detector
}

// NewDriver validates the options and creates a build driver.
//
// An unknown build type is rejected here, before any phase runs and
// before anything on disk is touched.
func NewDriver(opts Options, r runner.CommandRunner, detector *tools.Detector) (*Driver, error) {
	if !config.IsValidBuildType(opts.BuildType) {
		return nil, errors.Wrapf(errors.ErrInvalidBuildType,
			"%q must be one of %v", opts.BuildType, config.ValidBuildTypes())
	}
	opts.normalize()

	if detector == nil {
		detector = tools.NewDetector()
	}
	return &Driver{opts: opts, runner: r, detector: detector}, nil
}

// configureCommand renders the cmake configure invocation.
func (d *Driver) configureCommand() string {
	cmd := fmt.Sprintf("%s -S %s -B %s -DCMAKE_BUILD_TYPE=%s",
		constants.ToolCMake, d.opts.SourceDir, d.opts.BuildDir, d.opts.BuildType)
	if d.opts.InstallPrefix != "" {
		cmd += " -DCMAKE_INSTALL_PREFIX=" + d.opts.InstallPrefix
	}
	return cmd
}

// compileCommand renders the cmake build invocation.
func (d *Driver) compileCommand() string {
	return fmt.Sprintf("%s --build %s -j %d", constants.ToolCMake, d.opts.BuildDir, d.opts.Jobs)
}

// installCommand renders the cmake install invocation.
func (d *Driver) installCommand() string {
	cmd := fmt.Sprintf("%s --install %s", constants.ToolCMake, d.opts.BuildDir)
	if d.opts.InstallPrefix != "" {
		cmd += " --prefix " + d.opts.InstallPrefix
	}
	return cmd
}

// submoduleCommand renders the git submodule init invocation.
func (d *Driver) submoduleCommand() string {
	return constants.ToolGit + " submodule update --init --recursive"
}
