// Package constants provides centralized constant values used throughout gantry.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by gantry for organizing data.
const (
	// GantryHome is the hidden directory name where gantry stores all its data.
	// This directory is created in the user's home directory, or per-project
	// at the repository root.
	GantryHome = ".gantry"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// ArtifactsDir is the directory name where collected job artifacts are stored.
	ArtifactsDir = "artifacts"

	// ReportsDir is the directory name where test summary reports are written.
	ReportsDir = "reports"

	// DistDir is the default directory where packaged artifacts are placed.
	DistDir = "dist"

	// ConfigFileName is the name of the configuration file inside GantryHome.
	ConfigFileName = "config.yaml"

	// PipelineFileName is the default pipeline definition file at the project root.
	PipelineFileName = "gantry.yaml"

	// ReportFileName is the default test summary report file name.
	ReportFileName = "test-report.md"

	// BuildLockFileName is the advisory lock file placed in a build directory.
	BuildLockFileName = ".gantry-build.lock"

	// ChecksumManifestName is the SHA-256 manifest written next to release bundles.
	ChecksumManifestName = "checksums.txt"

	// BundleKeysFileName records the BLAKE3 content keys of the packages a
	// bundle was assembled from, used to skip reassembly when nothing changed.
	BundleKeysFileName = ".bundle-keys"
)

// Environment variable names recognized by gantry.
const (
	// EnvGantryHome overrides the gantry home directory location.
	EnvGantryHome = "GANTRY_HOME"

	// EnvSourceDir points at the project source tree. Every operation that
	// locates project source consults this before falling back to config.
	EnvSourceDir = "GANTRY_SOURCE_DIR"

	// EnvPythonPath is the module-search-path variable derived from the
	// source directory and exported to child interpreter processes.
	EnvPythonPath = "PYTHONPATH"
)

// Log file names and rotation settings.
const (
	// CLILogFileName is the rotating log file under GantryHome/logs.
	CLILogFileName = "gantry.log"

	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Timeout configurations for various operations.
const (
	// ToolDetectionTimeout bounds the whole toolchain detection fan-out.
	ToolDetectionTimeout = 10 * time.Second

	// DefaultCommandTimeout is the default timeout for a single job or
	// build-phase command.
	DefaultCommandTimeout = 30 * time.Minute

	// SmokeImportTimeout bounds a post-build import smoke probe.
	SmokeImportTimeout = 60 * time.Second

	// SmokeVersionTimeout bounds a post-build version smoke probe.
	SmokeVersionTimeout = 30 * time.Second

	// ImportTimingBudget is the wall-clock bound for the performance
	// check's module import timing.
	ImportTimingBudget = 10 * time.Second
)

// Pipeline defaults.
const (
	// DefaultPrimaryBranch is the branch treated as the protected mainline.
	DefaultPrimaryBranch = "main"

	// DefaultTagPrefix is the exact prefix identifying release tags.
	DefaultTagPrefix = "v"

	// DefaultPackageVersion names packages built outside a release tag.
	DefaultPackageVersion = "0.0.0-dev"
)
