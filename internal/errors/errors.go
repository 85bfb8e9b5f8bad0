// Package errors provides centralized error handling for gantry.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrMissingRequiredTools indicates that required external tools are
	// missing from PATH. Detected before any build step runs.
	ErrMissingRequiredTools = errors.New("required tools are missing")

	// ErrOutdatedTool indicates a required tool is installed but below its
	// minimum version.
	ErrOutdatedTool = errors.New("tool below minimum version")

	// ErrInvalidBuildType indicates a build type outside the accepted set.
	ErrInvalidBuildType = errors.New("invalid build type")

	// ErrBuildPhaseFailed indicates a configure, compile, submodule, or
	// install phase exited non-zero. Build phases never continue past a
	// failure.
	ErrBuildPhaseFailed = errors.New("build phase failed")

	// ErrBuildDirLocked indicates another build driver holds the build
	// directory lock.
	ErrBuildDirLocked = errors.New("build directory locked")

	// ErrCommandFailed indicates that a command execution failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandTimeout indicates a command exceeded its timeout duration.
	ErrCommandTimeout = errors.New("command timeout exceeded")

	// ErrCommandNotConfigured indicates a mock command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrChecksFailed indicates one or more test categories failed.
	ErrChecksFailed = errors.New("checks failed")

	// ErrUnknownCategory indicates an unrecognized test category selector.
	ErrUnknownCategory = errors.New("unknown test category")

	// ErrPipelineInvalid indicates the pipeline definition failed validation.
	ErrPipelineInvalid = errors.New("invalid pipeline definition")

	// ErrDependencyCycle indicates the job graph contains a cycle.
	ErrDependencyCycle = errors.New("pipeline dependency cycle")

	// ErrUnknownJob indicates a needs entry references an undeclared job.
	ErrUnknownJob = errors.New("unknown job reference")

	// ErrJobFailed indicates one or more executed pipeline jobs failed.
	ErrJobFailed = errors.New("pipeline job failed")

	// ErrGateBlocked indicates a release gate predicate did not hold.
	ErrGateBlocked = errors.New("release gate blocked")

	// ErrNotReleaseRef indicates the triggering reference is not a release
	// tag with the exact configured prefix.
	ErrNotReleaseRef = errors.New("not a release reference")

	// ErrInvalidVersionTag indicates a release tag does not carry a valid
	// semantic version.
	ErrInvalidVersionTag = errors.New("invalid version tag")

	// ErrArtifactNotFound indicates the requested artifact file was not found.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrNoArtifacts indicates a collection glob matched no files.
	ErrNoArtifacts = errors.New("no artifacts matched")

	// ErrSigningKeyMissing indicates no signing key is configured.
	ErrSigningKeyMissing = errors.New("signing key not configured")

	// ErrSignatureInvalid indicates a bundle signature failed verification.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrInvalidDuration indicates that a duration format is invalid.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrSourceDirMissing indicates the project source directory does not exist.
	ErrSourceDirMissing = errors.New("source directory not found")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	// Commands should silence cobra's error printing when this is returned.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}

// ExitCodeError carries an arbitrary child process exit code. The entrypoint
// passthrough uses it to surface the wrapped command's own exit code unchanged.
type ExitCodeError struct {
	Code int
	Err  error
}

// NewExitCodeError wraps an error with a specific process exit code.
func NewExitCodeError(code int, err error) *ExitCodeError {
	return &ExitCodeError{Code: code, Err: err}
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	if e.Err == nil {
		return "exit status"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode extracts a process exit code from the error chain.
// Returns the carried code and true when an ExitCodeError is present.
func ExitCode(err error) (int, bool) {
	var e *ExitCodeError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
