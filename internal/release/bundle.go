package release

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gantryci/gantry/internal/artifact"
	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
)

// Bundle is an assembled release: the platform packages, their checksum
// manifest, and optionally the manifest's signature. Reused reports that
// the packages were unchanged since the last assembly and the existing
// manifest was kept.
type Bundle struct {
	Packages      []string `json:"packages"`
	ManifestPath  string   `json:"manifest_path"`
	SignaturePath string   `json:"signature_path,omitempty"`
	Reused        bool     `json:"reused,omitempty"`
}

// Options configures bundle assembly.
type Options struct {
	// DistDir holds the platform packages to bundle.
	DistDir string

	// SigningKeyPath is an armored PGP private key. Empty disables
	// signing. Key material always comes from configuration, never from
	// a command line.
	SigningKeyPath string
}

// Assemble collects the platform packages from the dist directory,
// writes the SHA-256 manifest next to them, and clear-signs it when a
// signing key is configured. When the package contents are unchanged
// since the previous assembly the existing manifest and signature are
// kept as-is.
func Assemble(log *zerolog.Logger, opts Options) (*Bundle, error) {
	packages, err := filepath.Glob(filepath.Join(opts.DistDir, "*.tar.zst"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan dist directory")
	}
	if len(packages) == 0 {
		return nil, errors.Wrapf(errors.ErrNoArtifacts, "no packages under %s", opts.DistDir)
	}
	sort.Strings(packages)

	keys, err := contentKeys(packages)
	if err != nil {
		return nil, err
	}

	if bundle := reusableBundle(opts, packages, keys); bundle != nil {
		log.Info().Int("packages", len(packages)).Msg("packages unchanged, keeping existing bundle")
		return bundle, nil
	}

	manifestPath, err := artifact.WriteManifest(opts.DistDir, packages)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{Packages: packages, ManifestPath: manifestPath}
	log.Info().Int("packages", len(packages)).Str("manifest", manifestPath).Msg("release bundle assembled")

	if opts.SigningKeyPath != "" {
		bundle.SignaturePath, err = Sign(manifestPath, opts.SigningKeyPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("signature", bundle.SignaturePath).Msg("manifest signed")
	}

	keysPath := filepath.Join(opts.DistDir, constants.BundleKeysFileName)
	if err = os.WriteFile(keysPath, []byte(keys), 0o600); err != nil {
		return nil, errors.Wrap(err, "failed to record bundle keys")
	}

	return bundle, nil
}

// contentKeys builds the BLAKE3 key block identifying the exact package
// contents, one "digest  name" line per package in sorted order.
func contentKeys(packages []string) (string, error) {
	var b strings.Builder
	for _, pkg := range packages {
		sum, err := artifact.Blake3Sum(pkg)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s  %s\n", sum, filepath.Base(pkg))
	}
	return b.String(), nil
}

// reusableBundle returns the previously assembled bundle when the recorded
// content keys match and the manifest (and signature, when signing is
// configured) are still present. Returns nil when reassembly is needed.
func reusableBundle(opts Options, packages []string, keys string) *Bundle {
	keysPath := filepath.Join(opts.DistDir, constants.BundleKeysFileName)
	prev, err := os.ReadFile(keysPath) //nolint:gosec // path derives from config
	if err != nil || string(prev) != keys {
		return nil
	}

	manifestPath := filepath.Join(opts.DistDir, constants.ChecksumManifestName)
	if _, err = os.Stat(manifestPath); err != nil {
		return nil
	}

	bundle := &Bundle{Packages: packages, ManifestPath: manifestPath, Reused: true}
	if opts.SigningKeyPath != "" {
		sigPath := manifestPath + ".asc"
		if _, err = os.Stat(sigPath); err != nil {
			return nil
		}
		bundle.SignaturePath = sigPath
	}
	return bundle
}
