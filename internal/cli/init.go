// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gantryci/gantry/internal/config"
	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/tui"
)

// InitFlags holds flags specific to the init command.
type InitFlags struct {
	// NoInteractive skips all prompts and uses default values.
	NoInteractive bool
	// Force overwrites existing configuration files.
	Force bool
}

// initAnswers holds the values collected by the setup wizard.
type initAnswers struct {
	Name          string
	PythonModule  string
	PrimaryBranch string
	TagPrefix     string
	BuildType     string
}

// starterPipeline is the pipeline definition written by init. It covers the
// common shape: lint and build fan out, tests fan in, artifact jobs are
// protected, and the report job always runs.
const starterPipeline = `name: ci

jobs:
  - name: lint
    run:
      - gantry lint

  - name: build
    run:
      - gantry build

  - name: test
    needs: [build]
    run:
      - gantry test

  - name: package
    needs: [lint, test]
    rule: protected_ref
    run:
      - gantry package
    artifacts:
      - dist/*.tar.zst

  - name: report
    needs: [test]
    rule: always
    run:
      - gantry test import --report-file .gantry/reports/last-run.md
`

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command) {
	flags := &InitFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up gantry for a project",
		Long: `Create the project configuration (.gantry/config.yaml) and a starter
pipeline definition (gantry.yaml) through a guided setup.

Examples:
  gantry init
  gantry init --no-interactive
  gantry init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd, flags, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&flags.NoInteractive, "no-interactive", false, "use defaults without prompting")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite existing configuration files")

	root.AddCommand(cmd)
}

func runInit(ctx context.Context, cmd *cobra.Command, flags *InitFlags, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	tui.CheckNoColor()

	outputFormat := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, outputFormat)

	configPath := config.ProjectConfigPath()
	pipelinePath := constants.PipelineFileName

	if !flags.Force {
		for _, path := range []string{configPath, pipelinePath} {
			if _, err := os.Stat(path); err == nil {
				failure := fmt.Errorf("%w: %s already exists (use --force to overwrite)", errors.ErrConfigInvalid, path)
				out.Error(failure)
				return errors.NewExitCode2Error(failure)
			}
		}
	}

	defaults := config.DefaultConfig()
	answers := initAnswers{
		Name:          defaults.Project.Name,
		PythonModule:  defaults.Project.PythonModule,
		PrimaryBranch: defaults.Project.PrimaryBranch,
		TagPrefix:     defaults.Project.TagPrefix,
		BuildType:     defaults.Build.Type,
	}

	if !flags.NoInteractive {
		if err := runInitForm(&answers); err != nil {
			return err
		}
	}

	cfg := defaults
	cfg.Project.Name = answers.Name
	cfg.Project.PythonModule = answers.PythonModule
	cfg.Project.PrimaryBranch = answers.PrimaryBranch
	cfg.Project.TagPrefix = answers.TagPrefix
	cfg.Build.Type = answers.BuildType

	if err := config.Validate(cfg); err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return errors.NewExitCode2Error(err)
	}

	if err := writeProjectConfig(configPath, cfg); err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}
	out.Success("wrote " + configPath)

	if err := os.WriteFile(pipelinePath, []byte(starterPipeline), 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", pipelinePath)
	}
	out.Success("wrote " + pipelinePath)

	logger.Info().
		Str("component", "init").
		Str("project", cfg.Project.Name).
		Msg("project initialized")

	out.Info("Next: run 'gantry doctor' to check the toolchain")
	return nil
}

// runInitForm collects the project settings interactively.
func runInitForm(answers *initAnswers) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Description("Used in artifact file names.").
				Value(&answers.Name),
			huh.NewInput().
				Title("Python module").
				Description("Importable module checked by smoke tests.").
				Value(&answers.PythonModule),
			huh.NewInput().
				Title("Primary branch").
				Description("Protected mainline branch.").
				Value(&answers.PrimaryBranch),
			huh.NewInput().
				Title("Tag prefix").
				Description("Exact prefix of release tags.").
				Value(&answers.TagPrefix),
			huh.NewSelect[string]().
				Title("Build type").
				Options(huh.NewOptions(config.ValidBuildTypes()...)...).
				Value(&answers.BuildType),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return errors.Wrap(err, "setup wizard aborted")
	}
	return nil
}

// writeProjectConfig writes the config file under .gantry/.
func writeProjectConfig(path string, cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
