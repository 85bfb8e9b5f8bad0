package config

import (
	"github.com/gantryci/gantry/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - build type must be one of the accepted values
//   - build jobs must not be negative
//   - phase and check timeouts must be positive
//   - project name, python module, primary branch, and tag prefix must not be empty
//   - pipeline definition path must not be empty
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateProjectConfig(&cfg.Project); err != nil {
		return err
	}
	if err := validateBuildConfig(&cfg.Build); err != nil {
		return err
	}
	if err := validateChecksConfig(&cfg.Checks); err != nil {
		return err
	}
	if err := validatePackageConfig(&cfg.Package); err != nil {
		return err
	}
	if err := validatePipelineConfig(&cfg.Pipeline); err != nil {
		return err
	}

	return nil
}

// validatePackageConfig checks package assembly values.
func validatePackageConfig(cfg *PackageConfig) error {
	if cfg.StageDir == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "package.stage_dir must not be empty")
	}
	if cfg.Version == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "package.version must not be empty")
	}
	return nil
}

// validateProjectConfig checks project identification values.
func validateProjectConfig(cfg *ProjectConfig) error {
	if cfg.Name == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "project.name must not be empty")
	}
	if cfg.PythonModule == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "project.python_module must not be empty")
	}
	if cfg.PrimaryBranch == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "project.primary_branch must not be empty")
	}
	if cfg.TagPrefix == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "project.tag_prefix must not be empty")
	}
	return nil
}

// validateBuildConfig checks build driver values.
func validateBuildConfig(cfg *BuildConfig) error {
	if !IsValidBuildType(cfg.Type) {
		return errors.Wrapf(errors.ErrInvalidBuildType,
			"build.type %q must be one of %v", cfg.Type, ValidBuildTypes())
	}

	if cfg.Jobs < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"build.jobs cannot be negative, got %d", cfg.Jobs)
	}

	if cfg.PhaseTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"build.phase_timeout must be positive, got %s", cfg.PhaseTimeout)
	}
	if cfg.SmokeImportTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"build.smoke_import_timeout must be positive, got %s", cfg.SmokeImportTimeout)
	}
	if cfg.SmokeVersionTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"build.smoke_version_timeout must be positive, got %s", cfg.SmokeVersionTimeout)
	}

	return nil
}

// validateChecksConfig checks test-runner values.
func validateChecksConfig(cfg *ChecksConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"checks.timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.ReportPath == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "checks.report_path must not be empty")
	}
	return nil
}

// validatePipelineConfig checks pipeline execution values.
func validatePipelineConfig(cfg *PipelineConfig) error {
	if cfg.File == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "pipeline.file must not be empty")
	}
	if cfg.JobTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"pipeline.job_timeout must be positive, got %s", cfg.JobTimeout)
	}
	return nil
}

// IsValidBuildType checks if the given value is an accepted build type.
func IsValidBuildType(buildType string) bool {
	for _, valid := range ValidBuildTypes() {
		if buildType == valid {
			return true
		}
	}
	return false
}
