package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
)

// newViperInstance creates a new Viper instance with standard gantry configuration.
// This includes environment variable prefix (GANTRY_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GANTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// viperDecoderOption returns the decode hooks for unmarshaling.
// Duration strings like "30m" decode into time.Duration fields.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (GANTRY_* prefix)
//  2. Project config (.gantry/config.yaml)
//  3. Global config (~/.gantry/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
//
// The function returns an error only for actual configuration problems,
// not for missing config files (which are expected in many scenarios).
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	// Load project config (higher precedence, merges over global)
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("build.type", cfg.Build.Type).
		Str("pipeline.file", cfg.Pipeline.File).
		Dur("build.phase_timeout", cfg.Build.PhaseTimeout).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig attempts to load the global config file (~/.gantry/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		// Global config doesn't exist or home dir unavailable, skip silently
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalDir, err := GlobalConfigDir()
	if err != nil {
		return "", false
	}

	globalConfigPath := filepath.Join(globalDir, "config.yaml")
	if _, err := os.Stat(globalConfigPath); err != nil {
		return "", false
	}

	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file (.gantry/config.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		// Project config doesn't exist, skip silently
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// The overrides parameter contains values from CLI flags which have the
// highest precedence in the configuration hierarchy.
//
// Only non-zero values in overrides are applied. Zero values are ignored
// to allow partial overrides.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	// Re-validate after applying overrides
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Empty paths are skipped; precedence is projectPath over globalPath.
func LoadFromPaths(_ context.Context, projectPath, globalPath string) (*Config, error) {
	v := newViperInstance()

	if globalPath != "" && fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read global config file")
		}
	}

	if projectPath != "" && fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read project config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// applyOverrides copies non-zero override values onto cfg.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Project.Name != "" {
		cfg.Project.Name = overrides.Project.Name
	}
	if overrides.Project.PythonModule != "" {
		cfg.Project.PythonModule = overrides.Project.PythonModule
	}
	if overrides.Project.PrimaryBranch != "" {
		cfg.Project.PrimaryBranch = overrides.Project.PrimaryBranch
	}
	if overrides.Project.TagPrefix != "" {
		cfg.Project.TagPrefix = overrides.Project.TagPrefix
	}

	if overrides.Build.Type != "" {
		cfg.Build.Type = overrides.Build.Type
	}
	if overrides.Build.SourceDir != "" {
		cfg.Build.SourceDir = overrides.Build.SourceDir
	}
	if overrides.Build.BuildDir != "" {
		cfg.Build.BuildDir = overrides.Build.BuildDir
	}
	if overrides.Build.InstallPrefix != "" {
		cfg.Build.InstallPrefix = overrides.Build.InstallPrefix
	}
	if overrides.Build.Jobs > 0 {
		cfg.Build.Jobs = overrides.Build.Jobs
	}

	if overrides.Checks.ReportPath != "" {
		cfg.Checks.ReportPath = overrides.Checks.ReportPath
	}

	if overrides.Pipeline.File != "" {
		cfg.Pipeline.File = overrides.Pipeline.File
	}
	if overrides.Pipeline.ArtifactDir != "" {
		cfg.Pipeline.ArtifactDir = overrides.Pipeline.ArtifactDir
	}

	if overrides.Release.DistDir != "" {
		cfg.Release.DistDir = overrides.Release.DistDir
	}
}

// SourceDir resolves the effective source directory: the GANTRY_SOURCE_DIR
// environment variable wins over the configured value.
func (c *Config) SourceDir() string {
	if dir := os.Getenv(constants.EnvSourceDir); dir != "" {
		return dir
	}
	return c.Build.SourceDir
}
