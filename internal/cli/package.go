// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/artifact"
	"github.com/gantryci/gantry/internal/config"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
	"github.com/gantryci/gantry/internal/tui"
)

// PackageResponse is the JSON response for the package command.
type PackageResponse struct {
	Success  bool            `json:"success"`
	Archive  string          `json:"archive,omitempty"`
	Platform string          `json:"platform"`
	Version  string          `json:"version"`
	Files    int             `json:"files"`
	Results  []CommandResult `json:"results,omitempty"`
}

// AddPackageCommand adds the package command to the root command.
func AddPackageCommand(root *cobra.Command) {
	root.AddCommand(newPackageCmd())
}

func newPackageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package",
		Short: "Build distributable packages",
		Long: `Run the configured package command list sequentially, then archive
the staged output into the dist directory under the platform file name.

Examples:
  gantry package
  gantry package --version 0.2.1
  gantry package --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, _ := cmd.Flags().GetString("version")
			return silenceJSONError(cmd, runPackage(cmd.Context(), cmd, os.Stdout, version))
		},
	}

	cmd.Flags().String("version", "", "package version embedded in the archive name (default from config)")

	return cmd
}

// runPackage executes the configured package commands and assembles the
// platform archive from the staging directory.
func runPackage(ctx context.Context, cmd *cobra.Command, w io.Writer, version string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	tui.CheckNoColor()

	opts := utilityOptionsFromCmd(cmd, w)
	out := tui.NewOutput(w, opts.OutputFormat)

	cfg := loadConfigOrDefaults(ctx, logger)

	return packageArtifacts(ctx, newCommandRunner(), cfg, version, out, opts, logger)
}

// packageArtifacts runs the package command list and archives the staged
// output under the platform file name in the dist directory.
func packageArtifacts(
	ctx context.Context,
	r runner.CommandRunner,
	cfg *config.Config,
	version string,
	out tui.Output,
	opts UtilityOptions,
	logger zerolog.Logger,
) error {
	if version == "" {
		version = cfg.Package.Version
	}
	platform := artifact.PlatformTag()

	results, err := executeCategory(ctx, r, cfg.Commands.Package, "package", out, opts, logger)
	if err != nil {
		if !stderrors.Is(err, errors.ErrCommandFailed) {
			return err
		}
		if opts.OutputFormat == OutputJSON {
			if jsonErr := out.JSON(PackageResponse{
				Success:  false,
				Platform: platform,
				Version:  version,
				Results:  results,
			}); jsonErr != nil {
				return jsonErr
			}
			return errors.ErrJSONErrorOutput
		}
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	files, err := artifact.StageFiles(cfg.Package.StageDir, cfg.Package.Include)
	if err != nil {
		return fmt.Errorf("failed to resolve staged files: %w", err)
	}

	if err = os.MkdirAll(cfg.Release.DistDir, 0o750); err != nil {
		return fmt.Errorf("failed to create dist directory: %w", err)
	}

	archivePath := filepath.Join(cfg.Release.DistDir,
		artifact.PackageFileName(cfg.Project.Name, version, platform))
	if err = artifact.CreateArchive(archivePath, cfg.Package.StageDir, files); err != nil {
		return fmt.Errorf("failed to create package archive: %w", err)
	}

	logger.Info().
		Str("archive", archivePath).
		Str("platform", platform).
		Int("files", len(files)).
		Msg("package assembled")

	if opts.OutputFormat == OutputJSON {
		return out.JSON(PackageResponse{
			Success:  true,
			Archive:  archivePath,
			Platform: platform,
			Version:  version,
			Files:    len(files),
			Results:  results,
		})
	}

	out.Success(fmt.Sprintf("packaged %d files into %s", len(files), archivePath))
	return nil
}
