package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	{
		err: ErrMissingRequiredTools,
		info: ErrorInfo{
			Message: "Required build tools are missing from PATH.",
			Action:  "Run 'gantry doctor' to see which tools need installing.",
		},
	},
	{
		err: ErrOutdatedTool,
		info: ErrorInfo{
			Message: "An installed tool is below its minimum required version.",
			Action:  "Run 'gantry doctor' for the minimum version and install hint.",
		},
	},
	{
		err: ErrInvalidBuildType,
		info: ErrorInfo{
			Message: "Unknown build type.",
			Action:  "Use one of: Release, Debug, RelWithDebInfo, MinSizeRel.",
		},
	},
	{
		err: ErrBuildPhaseFailed,
		info: ErrorInfo{
			Message: "A build phase failed. Check the output above for the failing command.",
			Action:  "Fix the reported error and rerun, or use --clean for a fresh build tree.",
		},
	},
	{
		err: ErrBuildDirLocked,
		info: ErrorInfo{
			Message: "Another gantry build is using this build directory.",
			Action:  "Wait for the other build to finish or choose a different --build-dir.",
		},
	},
	{
		err: ErrChecksFailed,
		info: ErrorInfo{
			Message: "One or more test categories failed. See the summary report.",
			Action:  "Rerun a single category, e.g. 'gantry test import --verbose'.",
		},
	},
	{
		err: ErrPipelineInvalid,
		info: ErrorInfo{
			Message: "The pipeline definition has structural problems.",
			Action:  "Run 'gantry pipeline validate' to list every issue.",
		},
	},
	{
		err: ErrJobFailed,
		info: ErrorInfo{
			Message: "A pipeline job failed. Downstream jobs were skipped.",
			Action:  "Fix the failing job and rerun, or pass --force to override gating.",
		},
	},
	{
		err: ErrGateBlocked,
		info: ErrorInfo{
			Message: "The release gate did not pass.",
			Action:  "Releases require a version tag and successful upstream artifact jobs.",
		},
	},
	{
		err: ErrSourceDirMissing,
		info: ErrorInfo{
			Message: "The project source directory could not be found.",
			Action:  "Set GANTRY_SOURCE_DIR or pass --source-dir.",
		},
	},
	{
		err: ErrConfigInvalid,
		info: ErrorInfo{
			Message: "The configuration contains an invalid value.",
			Action:  "Check .gantry/config.yaml against 'gantry init' defaults.",
		},
	},
}

// UserMessage returns a user-friendly message for a known sentinel error.
// Returns the error's own text when no mapping exists.
func UserMessage(err error) string {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info.Message
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Actionable returns a suggested action for a known sentinel error.
// Returns empty string when no suggestion exists.
func Actionable(err error) string {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info.Action
		}
	}
	return ""
}
