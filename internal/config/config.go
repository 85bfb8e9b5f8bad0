// Package config provides configuration management for gantry with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (GANTRY_* prefix)
//  3. Project config (.gantry/config.yaml)
//  4. Global config (~/.gantry/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import other internal packages.
package config

import "time"

// Config is the root configuration structure for gantry.
// It contains all configuration sections for the application.
type Config struct {
	// Project identifies the project gantry drives.
	Project ProjectConfig `yaml:"project" mapstructure:"project"`

	// Build contains settings for the build driver.
	Build BuildConfig `yaml:"build" mapstructure:"build"`

	// Checks contains settings for the test-suite runner.
	Checks ChecksConfig `yaml:"checks" mapstructure:"checks"`

	// Commands contains the configured command lists per category.
	Commands CommandsConfig `yaml:"commands" mapstructure:"commands"`

	// Package contains settings for platform-package assembly.
	Package PackageConfig `yaml:"package" mapstructure:"package"`

	// Pipeline contains settings for local pipeline execution.
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`

	// Release contains settings for release bundle assembly and signing.
	Release ReleaseConfig `yaml:"release" mapstructure:"release"`
}

// ProjectConfig identifies the project and its reference conventions.
type ProjectConfig struct {
	// Name is the project name used in artifact file names.
	// Default: "mlc-llm"
	Name string `yaml:"name" mapstructure:"name"`

	// PythonModule is the importable module name checked by smoke tests
	// and import probes.
	// Default: "mlc_llm"
	PythonModule string `yaml:"python_module" mapstructure:"python_module"`

	// PrimaryBranch is the protected mainline branch.
	// Default: "main"
	PrimaryBranch string `yaml:"primary_branch" mapstructure:"primary_branch"`

	// TagPrefix is the exact prefix identifying release tags (never fuzzy).
	// Default: "v"
	TagPrefix string `yaml:"tag_prefix" mapstructure:"tag_prefix"`
}

// BuildConfig contains settings for the build driver.
type BuildConfig struct {
	// Type is the default build configuration.
	// One of: Release, Debug, RelWithDebInfo, MinSizeRel.
	// Default: "Release"
	Type string `yaml:"type" mapstructure:"type"`

	// SourceDir is the project source tree. The GANTRY_SOURCE_DIR
	// environment variable and the --source-dir flag take precedence.
	// Default: "." (current directory)
	SourceDir string `yaml:"source_dir" mapstructure:"source_dir"`

	// BuildDir is the build output directory.
	// Default: "build"
	BuildDir string `yaml:"build_dir" mapstructure:"build_dir"`

	// InstallPrefix is the install destination passed to the install phase.
	// Empty means the build system default.
	InstallPrefix string `yaml:"install_prefix" mapstructure:"install_prefix"`

	// Jobs is the compile parallelism. Zero means the detected processor count.
	Jobs int `yaml:"jobs" mapstructure:"jobs"`

	// PhaseTimeout bounds a single configure/compile/install invocation.
	// Default: 30 minutes
	PhaseTimeout time.Duration `yaml:"phase_timeout" mapstructure:"phase_timeout"`

	// SmokeImportTimeout bounds the post-build import probe.
	// Default: 60 seconds
	SmokeImportTimeout time.Duration `yaml:"smoke_import_timeout" mapstructure:"smoke_import_timeout"`

	// SmokeVersionTimeout bounds the post-build version probe.
	// Default: 30 seconds
	SmokeVersionTimeout time.Duration `yaml:"smoke_version_timeout" mapstructure:"smoke_version_timeout"`
}

// ChecksConfig contains settings for the test-suite runner.
type ChecksConfig struct {
	// Imports lists the modules probed by the import category.
	// Default: the project module plus its conventional sub-modules.
	Imports []string `yaml:"imports" mapstructure:"imports"`

	// RequiredPackages lists Python packages whose absence fails the
	// deps category.
	RequiredPackages []string `yaml:"required_packages" mapstructure:"required_packages"`

	// OptionalPackages lists Python packages whose absence downgrades to
	// a skip with a warning.
	OptionalPackages []string `yaml:"optional_packages" mapstructure:"optional_packages"`

	// LibraryGlobs lists compiled-artifact globs, relative to the build
	// directory, checked by the library category.
	LibraryGlobs []string `yaml:"library_globs" mapstructure:"library_globs"`

	// PytestArgs are extra arguments for the pytest category.
	PytestArgs []string `yaml:"pytest_args" mapstructure:"pytest_args"`

	// ReportPath is where the summary report is written.
	// Default: .gantry/reports/test-report.md
	ReportPath string `yaml:"report_path" mapstructure:"report_path"`

	// Timeout bounds a single check command.
	// Default: 10 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CommandsConfig holds the configured command lists per category.
// Each list runs sequentially; the first failure aborts the category.
type CommandsConfig struct {
	Lint    []string `yaml:"lint" mapstructure:"lint"`
	Format  []string `yaml:"format" mapstructure:"format"`
	Package []string `yaml:"package" mapstructure:"package"`
	Serve   []string `yaml:"serve" mapstructure:"serve"`
	Chat    []string `yaml:"chat" mapstructure:"chat"`
}

// PackageConfig contains settings for platform-package assembly.
// The configured package commands populate StageDir; gantry then archives
// it into the dist directory under the platform file name.
type PackageConfig struct {
	// StageDir is the directory archived into the platform package after
	// the package commands run.
	// Default: "dist/stage"
	StageDir string `yaml:"stage_dir" mapstructure:"stage_dir"`

	// Include restricts the archive to the listed paths, relative to
	// StageDir. Empty archives every regular file under StageDir.
	Include []string `yaml:"include" mapstructure:"include"`

	// Version is embedded in the package file name when the --version
	// flag is not passed.
	// Default: "0.0.0-dev"
	Version string `yaml:"version" mapstructure:"version"`
}

// PipelineConfig contains settings for local pipeline execution.
type PipelineConfig struct {
	// File is the pipeline definition path.
	// Default: "gantry.yaml"
	File string `yaml:"file" mapstructure:"file"`

	// ArtifactDir is where collected job artifacts are placed, one
	// subdirectory per run.
	// Default: .gantry/artifacts
	ArtifactDir string `yaml:"artifact_dir" mapstructure:"artifact_dir"`

	// JobTimeout is the default per-job timeout when the definition
	// does not declare one.
	// Default: 30 minutes
	JobTimeout time.Duration `yaml:"job_timeout" mapstructure:"job_timeout"`
}

// ReleaseConfig contains settings for release bundle assembly.
// Signing material comes from config paths, never the CLI.
type ReleaseConfig struct {
	// DistDir is where platform packages are collected from.
	// Default: "dist"
	DistDir string `yaml:"dist_dir" mapstructure:"dist_dir"`

	// SigningKeyPath is an armored PGP private key used to clear-sign
	// the checksum manifest. Empty disables signing.
	SigningKeyPath string `yaml:"signing_key_path" mapstructure:"signing_key_path"`

	// VerifyKeyPath is an armored PGP public key used by Verify.
	VerifyKeyPath string `yaml:"verify_key_path" mapstructure:"verify_key_path"`
}
