// Package cli provides the command-line interface for gantry.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gantryci/gantry/internal/artifact"
	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/pipeline"
	"github.com/gantryci/gantry/internal/release"
	"github.com/gantryci/gantry/internal/tui"
)

// ReleaseFlags holds flags specific to the release command.
type ReleaseFlags struct {
	File string
	Ref  string
}

// ReleaseResponse is the JSON response for the release command.
type ReleaseResponse struct {
	Version   string   `json:"version"`
	Packages  []string `json:"packages"`
	Manifest  string   `json:"manifest"`
	Signature string   `json:"signature,omitempty"`
	Reused    bool     `json:"reused,omitempty"`
}

// AddReleaseCommand adds the release command to the root command.
func AddReleaseCommand(root *cobra.Command) {
	flags := &ReleaseFlags{}

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Gate and assemble a release bundle",
		Long: `Run the pipeline for a release tag, check the release gate, and
assemble the release bundle: platform packages, SHA-256 checksum
manifest, and an optional clear-signed signature.

Releases only run on exact-prefix version tags with the artifact jobs
successful; --force never bypasses the gate.

Examples:
  gantry release --ref refs/tags/v1.2.3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelease(cmd.Context(), cmd, flags, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&flags.File, "file", "f", "", "pipeline definition file")
	cmd.Flags().StringVar(&flags.Ref, "ref", "", "release tag ref (refs/tags/<prefix><version>)")
	_ = cmd.MarkFlagRequired("ref")

	cmd.AddCommand(newReleaseVerifyCmd())

	root.AddCommand(cmd)
}

func newReleaseVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify a release bundle signature",
		Long: `Verify the clear-signed checksum manifest in the dist directory
against the configured public key, then check every listed package
digest.

Examples:
  gantry release verify`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReleaseVerify(cmd.Context(), cmd, os.Stdout)
		},
	}
}

func runRelease(ctx context.Context, cmd *cobra.Command, flags *ReleaseFlags, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	tui.CheckNoColor()

	outputFormat := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, outputFormat)

	cfg := loadConfigOrDefaults(ctx, logger)

	ref := parseRef(flags.Ref)
	if !ref.IsReleaseTag(cfg.Project.TagPrefix) {
		err := errors.Wrapf(errors.ErrNotReleaseRef, "%s is not a %s* tag", ref, cfg.Project.TagPrefix)
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	graph, err := loadGraph(cfg, &PipelineFlags{File: flags.File})
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	logger.Info().
		Str("component", "release").
		Str("ref", string(ref)).
		Msg("running release pipeline")

	engine := pipeline.NewEngine(graph, newCommandRunner(), artifact.Collect)
	summary, execErr := engine.Execute(logger.WithContext(ctx), pipeline.ExecOptions{
		Ref:               ref,
		WorkDir:           workDir,
		ArtifactDir:       cfg.Pipeline.ArtifactDir,
		DefaultJobTimeout: cfg.Pipeline.JobTimeout,
	})
	if execErr != nil {
		out.Error(tui.WrapWithSuggestion(execErr))
		return execErr
	}

	results := make(map[string]pipeline.Status, len(summary.Results))
	for _, res := range summary.Results {
		results[res.Job] = res.Status
	}

	version, err := release.Gate(ref, results, cfg.Project.TagPrefix)
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	bundle, err := release.Assemble(&logger, release.Options{
		DistDir:        cfg.Release.DistDir,
		SigningKeyPath: cfg.Release.SigningKeyPath,
	})
	if err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	if outputFormat == OutputJSON {
		return out.JSON(ReleaseResponse{
			Version:   version.String(),
			Packages:  bundle.Packages,
			Manifest:  bundle.ManifestPath,
			Signature: bundle.SignaturePath,
			Reused:    bundle.Reused,
		})
	}

	for _, pkg := range bundle.Packages {
		out.Info("  " + filepath.Base(pkg))
	}
	if bundle.SignaturePath != "" {
		out.Info("  " + filepath.Base(bundle.SignaturePath))
	}
	if bundle.Reused {
		out.Success(fmt.Sprintf("release %s unchanged (%d packages)", version, len(bundle.Packages)))
		return nil
	}
	out.Success(fmt.Sprintf("release %s assembled (%d packages)", version, len(bundle.Packages)))
	return nil
}

func runReleaseVerify(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	logger := GetLogger()
	tui.CheckNoColor()

	outputFormat := cmd.Flag("output").Value.String()
	out := tui.NewOutput(w, outputFormat)

	cfg := loadConfigOrDefaults(ctx, logger)

	manifest := filepath.Join(cfg.Release.DistDir, constants.ChecksumManifestName)
	signature := manifest + ".asc"

	if err := release.Verify(manifest, signature, cfg.Release.VerifyKeyPath); err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}
	if err := artifact.VerifyManifest(manifest); err != nil {
		out.Error(tui.WrapWithSuggestion(err))
		return err
	}

	out.Success("release bundle verified")
	return nil
}
