// Package tools implements detection of the external toolchain gantry drives.
//
// The build driver runs detection as a pre-flight step: a missing or
// under-versioned required tool aborts before any build side effect.
// Optional capability probes (GPU driver, Vulkan loader, ninja, ccache)
// degrade to absent without error.
package tools

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/coreos/go-semver/semver"
	"golang.org/x/sync/errgroup"

	"github.com/gantryci/gantry/internal/constants"
	gantryerrors "github.com/gantryci/gantry/internal/errors"
)

// Pre-compiled regexes for version parsing (compiled once at package init).
//
//nolint:gochecknoglobals // Package-level compiled regexes are a Go best practice for performance
var (
	cmakeVersionRe   = regexp.MustCompile(`cmake version (\d+\.\d+(?:\.\d+)?)`)
	gitVersionRe     = regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`)
	pythonVersionRe  = regexp.MustCompile(`Python (\d+\.\d+(?:\.\d+)?)`)
	rustcVersionRe   = regexp.MustCompile(`rustc (\d+\.\d+(?:\.\d+)?)`)
	genericVersionRe = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

	// Compiler drivers print wildly different banners (gcc, clang, apple clang).
	cxxVersionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)clang version (\d+\.\d+(?:\.\d+)?)`),
		regexp.MustCompile(`\) (\d+\.\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(\d+\.\d+\.\d+)`),
	}
)

// Status represents the installation status of an external tool.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type Status int

const (
	// StatusMissing indicates the tool is not installed.
	StatusMissing Status = iota

	// StatusInstalled indicates the tool is installed and meets version requirements.
	StatusInstalled

	// StatusOutdated indicates the tool is installed but below the minimum version.
	StatusOutdated
)

// String returns a human-readable representation of the tool status.
func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusMissing:
		return "missing"
	case StatusOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for human-readable JSON output.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for parsing JSON status strings.
func (s *Status) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	switch str {
	case "installed":
		*s = StatusInstalled
	case "outdated":
		*s = StatusOutdated
	default:
		*s = StatusMissing
	}
	return nil
}

// Tool represents an external tool that the build driver depends on.
type Tool struct {
	// Name is the tool identifier (e.g., "cmake", "git").
	Name string `json:"name"`

	// Required indicates if the tool is mandatory for a build to proceed.
	Required bool `json:"required"`

	// MinVersion is the minimum required version (semver format).
	MinVersion string `json:"min_version"`

	// CurrentVersion is the detected installed version.
	CurrentVersion string `json:"current_version"`

	// Status is the current installation status.
	Status Status `json:"status"`

	// InstallHint provides installation instructions for missing tools.
	InstallHint string `json:"install_hint"`
}

// DetectionResult holds the results of detecting all tools.
type DetectionResult struct {
	// Tools contains the detection result for each tool.
	Tools []Tool `json:"tools"`

	// HasMissingRequired indicates if any required tools are missing or outdated.
	HasMissingRequired bool `json:"has_missing_required"`
}

// MissingRequiredTools returns a list of required tools that are missing or outdated.
func (r *DetectionResult) MissingRequiredTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Required && (tool.Status == StatusMissing || tool.Status == StatusOutdated) {
			missing = append(missing, tool)
		}
	}
	return missing
}

// Err returns the pre-flight error for the detection result: nil when all
// required tools are present and current, ErrOutdatedTool when a required tool
// is under-versioned (the message names the minimum), ErrMissingRequiredTools
// otherwise.
func (r *DetectionResult) Err() error {
	for _, tool := range r.Tools {
		if tool.Required && tool.Status == StatusOutdated {
			return fmt.Errorf("%w: %s %s is older than required %s",
				gantryerrors.ErrOutdatedTool, tool.Name, tool.CurrentVersion, tool.MinVersion)
		}
	}
	if r.HasMissingRequired {
		missing := r.MissingRequiredTools()
		names := make([]string, 0, len(missing))
		for _, tool := range missing {
			names = append(names, tool.Name)
		}
		return fmt.Errorf("%w: %s", gantryerrors.ErrMissingRequiredTools, strings.Join(names, ", "))
	}
	return nil
}

// Executor abstracts command execution for testability.
type Executor interface {
	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)

	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// DefaultExecutor implements Executor using os/exec.
type DefaultExecutor struct{}

// LookPath searches for an executable in the PATH.
func (e *DefaultExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns its output.
func (e *DefaultExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Ensure output is captured and not printed to terminal
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Detector detects the installation status of external tools.
type Detector struct {
	executor Executor
}

// NewDetector creates a new Detector with the default executor.
func NewDetector() *Detector {
	return &Detector{executor: &DefaultExecutor{}}
}

// NewDetectorWithExecutor creates a new Detector with a custom executor.
func NewDetectorWithExecutor(executor Executor) *Detector {
	return &Detector{executor: executor}
}

// toolConfig holds the configuration for detecting a specific tool.
type toolConfig struct {
	name        string
	command     string
	versionFlag string
	minVersion  string
	required    bool
	installHint string
	parseFunc   func(output string) string
}

// getToolConfigs returns the configuration for all tools to detect.
func getToolConfigs() []toolConfig {
	return []toolConfig{
		{
			name:        constants.ToolCMake,
			command:     constants.ToolCMake,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  constants.MinVersionCMake,
			required:    true,
			installHint: "Install CMake from https://cmake.org/download/ (version 3.24+)",
			parseFunc:   parseCMakeVersion,
		},
		{
			name:        constants.ToolGit,
			command:     constants.ToolGit,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  constants.MinVersionGit,
			required:    true,
			installHint: "Install Git from https://git-scm.com/downloads (version 2.20+)",
			parseFunc:   parseGitVersion,
		},
		{
			name:        constants.ToolPython,
			command:     constants.ToolPython,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  constants.MinVersionPython,
			required:    true,
			installHint: "Install Python 3.9+ from https://www.python.org/downloads/",
			parseFunc:   parsePythonVersion,
		},
		{
			name:        constants.ToolCXX,
			command:     constants.ToolCXX,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  "",
			required:    true,
			installHint: "Install a C++ toolchain: apt install build-essential (or Xcode CLT on macOS)",
			parseFunc:   parseCXXVersion,
		},
		{
			name:        constants.ToolRustc,
			command:     constants.ToolRustc,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  constants.MinVersionRustc,
			required:    true,
			installHint: "Install Rust: curl https://sh.rustup.rs -sSf | sh",
			parseFunc:   parseRustcVersion,
		},
		{
			name:        constants.ToolCargo,
			command:     constants.ToolCargo,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  "",
			required:    true,
			installHint: "cargo ships with rustup: curl https://sh.rustup.rs -sSf | sh",
			parseFunc:   parseGenericVersion,
		},
		{
			name:        constants.ToolNinja,
			command:     constants.ToolNinja,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  "",
			required:    false,
			installHint: "Optional: apt install ninja-build for faster builds",
			parseFunc:   parseGenericVersion,
		},
		{
			name:        constants.ToolCCache,
			command:     constants.ToolCCache,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  "",
			required:    false,
			installHint: "Optional: apt install ccache to cache compilations",
			parseFunc:   parseGenericVersion,
		},
		{
			name:        constants.ToolNvidiaSMI,
			command:     constants.ToolNvidiaSMI,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  "",
			required:    false,
			installHint: "Optional: CUDA builds need an NVIDIA driver",
			parseFunc:   parseGenericVersion,
		},
		{
			name:        constants.ToolVulkanInfo,
			command:     constants.ToolVulkanInfo,
			versionFlag: constants.VersionFlagStandard,
			minVersion:  "",
			required:    false,
			installHint: "Optional: Vulkan builds need the Vulkan loader and tools",
			parseFunc:   parseGenericVersion,
		},
	}
}

// Detect checks all configured tools and returns their status.
func (d *Detector) Detect(ctx context.Context) (*DetectionResult, error) {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Apply timeout for detection
	detectCtx, cancel := context.WithTimeout(ctx, constants.ToolDetectionTimeout)
	defer cancel()

	configs := getToolConfigs()
	result := &DetectionResult{
		Tools: make([]Tool, 0, len(configs)),
	}
	var resultMu sync.Mutex

	g, gCtx := errgroup.WithContext(detectCtx)

	for _, cfg := range configs {
		g.Go(func() error {
			tool := d.detectTool(gCtx, cfg)
			resultMu.Lock()
			result.Tools = append(result.Tools, tool)
			resultMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}

	// Check if any required tools are missing
	for _, tool := range result.Tools {
		if tool.Required && (tool.Status == StatusMissing || tool.Status == StatusOutdated) {
			result.HasMissingRequired = true
			break
		}
	}

	return result, nil
}

// detectTool detects a single tool's status.
func (d *Detector) detectTool(ctx context.Context, cfg toolConfig) Tool {
	tool := Tool{
		Name:        cfg.name,
		Required:    cfg.required,
		MinVersion:  cfg.minVersion,
		InstallHint: cfg.installHint,
		Status:      StatusMissing,
	}

	// Check if tool exists in PATH
	_, err := d.executor.LookPath(cfg.command)
	if err != nil {
		return tool
	}

	// Get version
	output, err := d.executor.Run(ctx, cfg.command, cfg.versionFlag)
	if err != nil {
		// Tool exists but version command failed - treat as installed without version info
		tool.Status = StatusInstalled
		tool.CurrentVersion = "unknown"
		return tool
	}

	// Parse version
	tool.CurrentVersion = cfg.parseFunc(output)
	if tool.CurrentVersion == "" {
		tool.CurrentVersion = "unknown"
		tool.Status = StatusInstalled
		return tool
	}

	// Compare versions if minimum is specified
	if cfg.minVersion != "" {
		if CompareVersions(tool.CurrentVersion, cfg.minVersion) < 0 {
			tool.Status = StatusOutdated
		} else {
			tool.Status = StatusInstalled
		}
	} else {
		// No minimum version, just needs to be present
		tool.Status = StatusInstalled
	}

	return tool
}

// HasCapability reports whether an optional capability probe (GPU driver,
// Vulkan loader, ...) found its tool on PATH. Unknown names report false.
func (r *DetectionResult) HasCapability(name string) bool {
	for _, tool := range r.Tools {
		if tool.Name == name {
			return tool.Status != StatusMissing
		}
	}
	return false
}

// Version parsing functions for each tool.
// All functions use pre-compiled regexes defined at package level for performance.

// parseCMakeVersion parses "cmake version 3.28.1" → "3.28.1"
func parseCMakeVersion(output string) string {
	if matches := cmakeVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// parseGitVersion parses "git version 2.39.0" → "2.39.0"
func parseGitVersion(output string) string {
	if matches := gitVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// parsePythonVersion parses "Python 3.11.6" → "3.11.6"
func parsePythonVersion(output string) string {
	if matches := pythonVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// parseRustcVersion parses "rustc 1.75.0 (82e1608df 2023-12-21)" → "1.75.0"
func parseRustcVersion(output string) string {
	if matches := rustcVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// parseCXXVersion parses gcc and clang banners.
// Examples: "g++ (Ubuntu 13.2.0) 13.2.0", "Apple clang version 15.0.0"
func parseCXXVersion(output string) string {
	for _, re := range cxxVersionPatterns {
		if matches := re.FindStringSubmatch(output); len(matches) >= 2 {
			return matches[1]
		}
	}
	return ""
}

// parseGenericVersion extracts a version number from generic output.
func parseGenericVersion(output string) string {
	if matches := genericVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// CompareVersions compares two semantic versions.
// Returns:
//
//	-1 if current < required
//	 0 if current == required
//	 1 if current > required
//
// Unparseable versions compare as 0.0.0.
func CompareVersions(current, required string) int {
	cur := parseSemver(current)
	req := parseSemver(required)
	return cur.Compare(*req)
}

// parseSemver normalizes a version string to three segments and parses it.
// Tool banners frequently print two-segment versions like "3.28".
func parseSemver(version string) *semver.Version {
	version = strings.TrimPrefix(version, "v")
	for strings.Count(version, ".") < 2 {
		version += ".0"
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return &semver.Version{}
	}
	return v
}

// FormatMissingToolsError creates a formatted error message for missing tools.
func FormatMissingToolsError(missing []Tool) string {
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing required tools:\n\n")

	for _, tool := range missing {
		status := "missing"
		if tool.Status == StatusOutdated {
			status = fmt.Sprintf("outdated (have %s, need %s)", tool.CurrentVersion, tool.MinVersion)
		}
		sb.WriteString(fmt.Sprintf("  • %s: %s\n", tool.Name, status))
		sb.WriteString(fmt.Sprintf("    Install: %s\n\n", tool.InstallHint))
	}

	return sb.String()
}
