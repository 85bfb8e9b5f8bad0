// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/build"
	"github.com/gantryci/gantry/internal/config"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/tui"
)

// BuildFlags holds flags specific to the build command.
type BuildFlags struct {
	BuildType      string
	Jobs           int
	SourceDir      string
	BuildDir       string
	InstallPrefix  string
	SkipDeps       bool
	SkipSubmodules bool
	SkipTests      bool
	Clean          bool
}

// BuildResponse is the JSON response for the build command.
type BuildResponse struct {
	Success       bool     `json:"success"`
	BuildType     string   `json:"build_type"`
	Phases        []string `json:"phases"`
	SmokeWarnings []string `json:"smoke_warnings,omitempty"`
	DurationMs    int64    `json:"duration_ms"`
}

// AddBuildCommand adds the build command to the root command.
func AddBuildCommand(root *cobra.Command) {
	root.AddCommand(newBuildCmd())
}

func newBuildCmd() *cobra.Command {
	flags := &BuildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the native library and install the Python package",
		Long: `Drive the CMake build: toolchain preflight, submodule sync, configure,
compile, install, and post-build smoke tests.

Examples:
  gantry build
  gantry build --build-type Debug --jobs 8
  gantry build --clean --skip-tests`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, flags, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&flags.BuildType, "build-type", "", "build configuration (Release|Debug|RelWithDebInfo|MinSizeRel)")
	cmd.Flags().IntVar(&flags.Jobs, "jobs", 0, "compile parallelism (0 = processor count)")
	cmd.Flags().StringVar(&flags.SourceDir, "source-dir", "", "project source directory")
	cmd.Flags().StringVar(&flags.BuildDir, "build-dir", "", "build output directory")
	cmd.Flags().StringVar(&flags.InstallPrefix, "install-prefix", "", "install destination prefix")
	cmd.Flags().BoolVar(&flags.SkipDeps, "skip-deps", false, "skip toolchain preflight")
	cmd.Flags().BoolVar(&flags.SkipSubmodules, "skip-submodules", false, "skip git submodule sync")
	cmd.Flags().BoolVar(&flags.SkipTests, "skip-tests", false, "skip post-build smoke tests")
	cmd.Flags().BoolVar(&flags.Clean, "clean", false, "remove the build directory first")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, flags *BuildFlags, w io.Writer) error {
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
	opts := buildOptionsFromConfig(cfg, flags)

	// Verbose text mode streams compiler output as it happens.
	if outputFormat != OutputJSON && cmd.Flag("verbose").Value.String() == "true" {
		opts.LiveOutput = w
	}

	driver, err := build.NewDriver(opts, newCommandRunner(), nil)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		if stderrors.Is(err, errors.ErrInvalidBuildType) {
			return errors.NewExitCode2Error(err)
		}
		return err
	}

	logger.Info().
		Str("component", "build").
		Str("build_type", opts.BuildType).
		Int("jobs", opts.Jobs).
		Msg("starting build")

	start := time.Now()
	result, err := driver.Run(ctx)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	for _, warning := range result.SmokeWarnings {
		out.Warning(warning)
	}

	if outputFormat == OutputJSON {
		phases := make([]string, 0, len(result.Phases))
		for _, phase := range result.Phases {
			if !phase.Skipped {
				phases = append(phases, phase.Name)
			}
		}
		return out.JSON(BuildResponse{
			Success:       true,
			BuildType:     opts.BuildType,
			Phases:        phases,
			SmokeWarnings: result.SmokeWarnings,
			DurationMs:    time.Since(start).Milliseconds(),
		})
	}

	out.Success(fmt.Sprintf("build complete in %s", result.Duration.Round(time.Second)))
	return nil
}

// buildOptionsFromConfig merges config values and command flags into the
// driver's options. Flags win over config; GANTRY_SOURCE_DIR wins over both
// for the source directory via config.SourceDir.
func buildOptionsFromConfig(cfg *config.Config, flags *BuildFlags) build.Options {
	opts := build.Options{
		BuildType:           cfg.Build.Type,
		Jobs:                cfg.Build.Jobs,
		SourceDir:           cfg.SourceDir(),
		BuildDir:            cfg.Build.BuildDir,
		InstallPrefix:       cfg.Build.InstallPrefix,
		PythonModule:        cfg.Project.PythonModule,
		PhaseTimeout:        cfg.Build.PhaseTimeout,
		SmokeImportTimeout:  cfg.Build.SmokeImportTimeout,
		SmokeVersionTimeout: cfg.Build.SmokeVersionTimeout,
		SkipDeps:            flags.SkipDeps,
		SkipSubmodules:      flags.SkipSubmodules,
		SkipSmoke:           flags.SkipTests,
		Clean:               flags.Clean,
	}

	if flags.BuildType != "" {
		opts.BuildType = flags.BuildType
	}
	if flags.Jobs > 0 {
		opts.Jobs = flags.Jobs
	}
	if flags.SourceDir != "" {
		opts.SourceDir = flags.SourceDir
	}
	if flags.BuildDir != "" {
		opts.BuildDir = flags.BuildDir
	}
	if flags.InstallPrefix != "" {
		opts.InstallPrefix = flags.InstallPrefix
	}

	return opts
}
