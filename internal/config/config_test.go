package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gantryci/gantry/internal/constants"
)

func TestDefaultConfig_ReturnsValidConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg, "DefaultConfig should not return nil")

	// Verify project defaults
	assert.Equal(t, "mlc-llm", cfg.Project.Name, "default project name")
	assert.Equal(t, "mlc_llm", cfg.Project.PythonModule, "default python module")
	assert.Equal(t, constants.DefaultPrimaryBranch, cfg.Project.PrimaryBranch, "default primary branch")
	assert.Equal(t, constants.DefaultTagPrefix, cfg.Project.TagPrefix, "default tag prefix")

	// Verify build defaults
	assert.Equal(t, BuildTypeRelease, cfg.Build.Type, "default build type")
	assert.Equal(t, ".", cfg.Build.SourceDir, "default source dir")
	assert.Equal(t, "build", cfg.Build.BuildDir, "default build dir")
	assert.Zero(t, cfg.Build.Jobs, "default jobs should be zero (auto-detect)")
	assert.Equal(t, constants.DefaultCommandTimeout, cfg.Build.PhaseTimeout, "default phase timeout")
	assert.Equal(t, constants.SmokeImportTimeout, cfg.Build.SmokeImportTimeout, "default smoke import timeout")
	assert.Equal(t, constants.SmokeVersionTimeout, cfg.Build.SmokeVersionTimeout, "default smoke version timeout")

	// Verify checks defaults
	assert.Contains(t, cfg.Checks.Imports, "mlc_llm", "default imports include the project module")
	assert.Contains(t, cfg.Checks.RequiredPackages, "numpy", "default required packages")
	assert.Contains(t, cfg.Checks.OptionalPackages, "torch", "default optional packages")
	assert.NotEmpty(t, cfg.Checks.LibraryGlobs, "default library globs")
	assert.Equal(t, 10*time.Minute, cfg.Checks.Timeout, "default checks timeout")

	// Verify command defaults
	assert.Equal(t, []string{constants.DefaultLintCommand}, cfg.Commands.Lint, "default lint commands")
	assert.Equal(t, []string{constants.DefaultFormatCommand}, cfg.Commands.Format, "default format commands")
	assert.Equal(t, []string{constants.DefaultPackageCommand}, cfg.Commands.Package, "default package commands")

	// Verify package defaults
	assert.Equal(t, filepath.Join(constants.DistDir, "stage"), cfg.Package.StageDir, "default stage dir")
	assert.Empty(t, cfg.Package.Include, "stage include defaults to everything")
	assert.Equal(t, constants.DefaultPackageVersion, cfg.Package.Version, "default package version")

	// Verify pipeline defaults
	assert.Equal(t, constants.PipelineFileName, cfg.Pipeline.File, "default pipeline file")
	assert.Equal(t, constants.DefaultCommandTimeout, cfg.Pipeline.JobTimeout, "default job timeout")

	// Verify release defaults
	assert.Equal(t, constants.DistDir, cfg.Release.DistDir, "default dist dir")
	assert.Empty(t, cfg.Release.SigningKeyPath, "signing should be disabled by default")

	// Validate the default config passes validation
	err := Validate(cfg)
	assert.NoError(t, err, "default config should pass validation")
}

func TestConfig_YAMLSerialization(t *testing.T) {
	original := &Config{
		Project: ProjectConfig{
			Name:          "my-project",
			PythonModule:  "my_project",
			PrimaryBranch: "trunk",
			TagPrefix:     "release-",
		},
		Build: BuildConfig{
			Type:                BuildTypeDebug,
			SourceDir:           "/src/my-project",
			BuildDir:            "out",
			InstallPrefix:       "/opt/my-project",
			Jobs:                8,
			PhaseTimeout:        45 * time.Minute,
			SmokeImportTimeout:  90 * time.Second,
			SmokeVersionTimeout: 20 * time.Second,
		},
		Checks: ChecksConfig{
			Imports:          []string{"my_project"},
			RequiredPackages: []string{"numpy"},
			OptionalPackages: []string{"torch"},
			LibraryGlobs:     []string{"lib/*.so"},
			PytestArgs:       []string{"-x", "-q"},
			ReportPath:       "reports/suite.md",
			Timeout:          15 * time.Minute,
		},
		Commands: CommandsConfig{
			Lint:   []string{"ruff check ."},
			Format: []string{"ruff format ."},
		},
		Pipeline: PipelineConfig{
			File:        "ci.yaml",
			ArtifactDir: "artifacts",
			JobTimeout:  time.Hour,
		},
		Release: ReleaseConfig{
			DistDir:        "dist",
			SigningKeyPath: "/keys/signing.asc",
			VerifyKeyPath:  "/keys/verify.asc",
		},
	}

	data, err := yaml.Marshal(original)
	require.NoError(t, err, "marshal should succeed")

	var decoded Config
	err = yaml.Unmarshal(data, &decoded)
	require.NoError(t, err, "unmarshal should succeed")

	assert.Equal(t, original.Project, decoded.Project, "project section should round-trip")
	assert.Equal(t, original.Build, decoded.Build, "build section should round-trip")
	assert.Equal(t, original.Checks, decoded.Checks, "checks section should round-trip")
	assert.Equal(t, original.Commands, decoded.Commands, "commands section should round-trip")
	assert.Equal(t, original.Pipeline, decoded.Pipeline, "pipeline section should round-trip")
	assert.Equal(t, original.Release, decoded.Release, "release section should round-trip")
}

func TestValidBuildTypes_ContainsAllTypes(t *testing.T) {
	types := ValidBuildTypes()

	assert.Contains(t, types, BuildTypeRelease)
	assert.Contains(t, types, BuildTypeDebug)
	assert.Contains(t, types, BuildTypeRelWithDebInfo)
	assert.Contains(t, types, BuildTypeMinSizeRel)
	assert.Len(t, types, 4, "exactly four accepted build types")
}

func TestConfig_SourceDir_EnvOverridesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Build.SourceDir = "/configured/path"

	t.Run("NoEnvReturnsConfigured", func(t *testing.T) {
		assert.Equal(t, "/configured/path", cfg.SourceDir())
	})

	t.Run("EnvWins", func(t *testing.T) {
		t.Setenv(constants.EnvSourceDir, "/mounted/workspace")
		assert.Equal(t, "/mounted/workspace", cfg.SourceDir())
	})
}
