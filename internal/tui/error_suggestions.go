// Package tui provides terminal user interface components for gantry.
package tui

import (
	"errors"

	gantryerrors "github.com/gantryci/gantry/internal/errors"
)

// ErrorSuggestion maps a sentinel error to its suggested fix.
type ErrorSuggestion struct {
	Error      error
	Suggestion string
}

// errorSuggestions maps common errors to helpful suggestions.
// Each suggestion should be actionable and start with a verb.
//
//nolint:gochecknoglobals // Intentional package-level constant for error suggestions
var errorSuggestions = []ErrorSuggestion{
	// Configuration errors
	{gantryerrors.ErrConfigNotFound, "Run: gantry init"},
	{gantryerrors.ErrConfigInvalid, "Check .gantry/config.yaml against 'gantry init' output"},
	{gantryerrors.ErrInvalidBuildType, "Use: --build-type Release, Debug, RelWithDebInfo, or MinSizeRel"},
	{gantryerrors.ErrSourceDirMissing, "Set GANTRY_SOURCE_DIR or pass --source-dir"},

	// Toolchain errors
	{gantryerrors.ErrMissingRequiredTools, "Run: gantry doctor"},
	{gantryerrors.ErrOutdatedTool, "Run: gantry doctor"},

	// Build errors
	{gantryerrors.ErrBuildDirLocked, "Wait for the other build to finish or remove the stale lock file"},
	{gantryerrors.ErrBuildPhaseFailed, "Re-run with --verbose to see the failing command output"},

	// Check errors
	{gantryerrors.ErrChecksFailed, "Inspect the report file for per-check details"},
	{gantryerrors.ErrUnknownCategory, "Use: gantry test all, import, deps, library, pytest, or performance"},

	// Pipeline errors
	{gantryerrors.ErrPipelineInvalid, "Run: gantry pipeline validate -f gantry.yaml"},
	{gantryerrors.ErrDependencyCycle, "Run: gantry pipeline validate -f gantry.yaml"},
	{gantryerrors.ErrJobFailed, "Run: gantry pipeline run --dry-run to inspect gating decisions"},

	// Release errors
	{gantryerrors.ErrGateBlocked, "Check 'gantry pipeline run' results for the artifact jobs"},
	{gantryerrors.ErrNotReleaseRef, "Check out a release tag (e.g. v1.2.3) before releasing"},
	{gantryerrors.ErrInvalidVersionTag, "Tag versions as <prefix><semver>, e.g. v1.2.3"},
	{gantryerrors.ErrSigningKeyMissing, "Set release.signing_key to an armored PGP private key path"},
	{gantryerrors.ErrNoArtifacts, "Run the package job before assembling a release"},
}

// SuggestionForError returns a suggestion for the given error.
// Returns empty string if no suggestion is available.
func SuggestionForError(err error) string {
	if err == nil {
		return ""
	}
	for _, es := range errorSuggestions {
		if errors.Is(err, es.Error) {
			return es.Suggestion
		}
	}
	return ""
}

// WrapWithSuggestion creates an ActionableError from an error if a suggestion
// exists. Returns the original error unchanged otherwise, preserving error
// types when no suggestion applies.
func WrapWithSuggestion(err error) error {
	if err == nil {
		return nil
	}
	suggestion := SuggestionForError(err)
	if suggestion == "" {
		return err
	}
	return NewActionableError(err.Error(), suggestion)
}
