package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/gantryci/gantry/internal/constants"
)

// Accepted build type values.
const (
	BuildTypeRelease        = "Release"
	BuildTypeDebug          = "Debug"
	BuildTypeRelWithDebInfo = "RelWithDebInfo"
	BuildTypeMinSizeRel     = "MinSizeRel"
)

// ValidBuildTypes returns the accepted build configuration values.
func ValidBuildTypes() []string {
	return []string{BuildTypeRelease, BuildTypeDebug, BuildTypeRelWithDebInfo, BuildTypeMinSizeRel}
}

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:          "mlc-llm",
			PythonModule:  "mlc_llm",
			PrimaryBranch: constants.DefaultPrimaryBranch,
			TagPrefix:     constants.DefaultTagPrefix,
		},
		Build: BuildConfig{
			// Release is what the CI pipeline ships; Debug is opt-in.
			Type:      BuildTypeRelease,
			SourceDir: ".",
			BuildDir:  "build",

			// Jobs: 0 resolves to the detected processor count at run time.
			Jobs: 0,

			PhaseTimeout:        constants.DefaultCommandTimeout,
			SmokeImportTimeout:  constants.SmokeImportTimeout,
			SmokeVersionTimeout: constants.SmokeVersionTimeout,
		},
		Checks: ChecksConfig{
			// The project module plus the sub-modules every install carries.
			Imports: []string{"mlc_llm", "mlc_llm.interface", "mlc_llm.protocol", "mlc_llm.serve"},

			RequiredPackages: []string{"numpy", "requests", "pydantic"},
			OptionalPackages: []string{"torch", "safetensors"},

			// Compiled runtime libraries, relative to the build directory.
			LibraryGlobs: []string{"lib/libmlc_llm*.so", "lib/libmlc_llm*.dylib", "lib/libtvm_runtime*.so"},

			ReportPath: filepath.Join(constants.GantryHome, constants.ReportsDir, constants.ReportFileName),
			Timeout:    10 * time.Minute,
		},
		Commands: CommandsConfig{
			Lint:    []string{constants.DefaultLintCommand},
			Format:  []string{constants.DefaultFormatCommand},
			Package: []string{constants.DefaultPackageCommand},
			Serve:   []string{constants.DefaultServeCommand},
			Chat:    []string{constants.DefaultChatCommand},
		},
		Package: PackageConfig{
			StageDir: filepath.Join(constants.DistDir, "stage"),
			Version:  constants.DefaultPackageVersion,
		},
		Pipeline: PipelineConfig{
			File:        constants.PipelineFileName,
			ArtifactDir: filepath.Join(constants.GantryHome, constants.ArtifactsDir),
			JobTimeout:  constants.DefaultCommandTimeout,
		},
		Release: ReleaseConfig{
			DistDir: constants.DistDir,
		},
	}
}

// setDefaults registers the default configuration values on a viper instance.
// Keys mirror the mapstructure tags in config.go.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("project.name", defaults.Project.Name)
	v.SetDefault("project.python_module", defaults.Project.PythonModule)
	v.SetDefault("project.primary_branch", defaults.Project.PrimaryBranch)
	v.SetDefault("project.tag_prefix", defaults.Project.TagPrefix)

	v.SetDefault("build.type", defaults.Build.Type)
	v.SetDefault("build.source_dir", defaults.Build.SourceDir)
	v.SetDefault("build.build_dir", defaults.Build.BuildDir)
	v.SetDefault("build.install_prefix", defaults.Build.InstallPrefix)
	v.SetDefault("build.jobs", defaults.Build.Jobs)
	v.SetDefault("build.phase_timeout", defaults.Build.PhaseTimeout)
	v.SetDefault("build.smoke_import_timeout", defaults.Build.SmokeImportTimeout)
	v.SetDefault("build.smoke_version_timeout", defaults.Build.SmokeVersionTimeout)

	v.SetDefault("checks.imports", defaults.Checks.Imports)
	v.SetDefault("checks.required_packages", defaults.Checks.RequiredPackages)
	v.SetDefault("checks.optional_packages", defaults.Checks.OptionalPackages)
	v.SetDefault("checks.library_globs", defaults.Checks.LibraryGlobs)
	v.SetDefault("checks.pytest_args", defaults.Checks.PytestArgs)
	v.SetDefault("checks.report_path", defaults.Checks.ReportPath)
	v.SetDefault("checks.timeout", defaults.Checks.Timeout)

	v.SetDefault("commands.lint", defaults.Commands.Lint)
	v.SetDefault("commands.format", defaults.Commands.Format)
	v.SetDefault("commands.package", defaults.Commands.Package)
	v.SetDefault("commands.serve", defaults.Commands.Serve)
	v.SetDefault("commands.chat", defaults.Commands.Chat)

	v.SetDefault("package.stage_dir", defaults.Package.StageDir)
	v.SetDefault("package.include", defaults.Package.Include)
	v.SetDefault("package.version", defaults.Package.Version)

	v.SetDefault("pipeline.file", defaults.Pipeline.File)
	v.SetDefault("pipeline.artifact_dir", defaults.Pipeline.ArtifactDir)
	v.SetDefault("pipeline.job_timeout", defaults.Pipeline.JobTimeout)

	v.SetDefault("release.dist_dir", defaults.Release.DistDir)
	v.SetDefault("release.signing_key_path", defaults.Release.SigningKeyPath)
	v.SetDefault("release.verify_key_path", defaults.Release.VerifyKeyPath)
}
