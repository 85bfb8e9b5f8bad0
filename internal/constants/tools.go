// Package constants provides centralized constant values used throughout gantry.
// This file contains tool-related constants for the toolchain detection system.
package constants

// External tool names used by the build driver and doctor command.
const (
	// ToolCMake is the build-tree configuration and compile driver.
	ToolCMake = "cmake"

	// ToolGit is the version-control tool used for submodule initialization.
	ToolGit = "git"

	// ToolPython is the interpreter used for import probes and test suites.
	ToolPython = "python3"

	// ToolCXX is the C++ compiler driver.
	ToolCXX = "c++"

	// ToolRustc is the Rust compiler, required by the compiled runtime.
	ToolRustc = "rustc"

	// ToolCargo is the Rust package manager.
	ToolCargo = "cargo"

	// ToolNinja is an optional generator backend for faster builds.
	ToolNinja = "ninja"

	// ToolCCache is an optional compiler cache.
	ToolCCache = "ccache"

	// ToolNvidiaSMI probes for an NVIDIA GPU driver.
	ToolNvidiaSMI = "nvidia-smi"

	// ToolVulkanInfo probes for a Vulkan loader.
	ToolVulkanInfo = "vulkaninfo"
)

// Minimum versions for required tools. An installed-but-older tool is a
// fatal pre-flight error naming the minimum.
const (
	MinVersionCMake  = "3.24.0"
	MinVersionGit    = "2.20.0"
	MinVersionPython = "3.9.0"
	MinVersionRustc  = "1.70.0"
)

// Version flag conventions.
const (
	// VersionFlagStandard is the conventional long version flag.
	VersionFlagStandard = "--version"
)

// Default commands for configured command categories when the project
// config does not provide any.
const (
	DefaultLintCommand    = "ruff check ."
	DefaultFormatCommand  = "ruff format ."
	DefaultPackageCommand = "python3 -m pip wheel --no-deps -w dist ."
	DefaultServeCommand   = "python3 -m mlc_llm serve"
	DefaultChatCommand    = "python3 -m mlc_llm chat"
)
