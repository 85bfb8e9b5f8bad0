package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
)

// SHA256Sum returns the hex-encoded SHA-256 digest of the file. This is
// the digest published alongside release artifacts.
func SHA256Sum(path string) (string, error) {
	h := sha256.New()
	if err := hashFile(h, path); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Blake3Sum returns the hex-encoded BLAKE3 digest of the file. BLAKE3 is
// used internally as a fast content key for incremental packaging, never
// in the published manifest.
func Blake3Sum(path string) (string, error) {
	h := blake3.New()
	if err := hashFile(h, path); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashFile streams the file through the hash.
func hashFile(h io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // paths come from the artifact directory
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(h, f); err != nil {
		return errors.Wrapf(err, "failed to hash %s", path)
	}
	return nil
}

// WriteManifest writes a checksums.txt manifest into dir covering the
// given files (paths inside dir), in sha256sum's "digest  name" format.
// Returns the manifest path.
func WriteManifest(dir string, files []string) (string, error) {
	if len(files) == 0 {
		return "", errors.Wrap(errors.ErrNoArtifacts, "nothing to checksum")
	}

	var sb strings.Builder
	for _, path := range files {
		sum, err := SHA256Sum(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%s  %s\n", sum, filepath.Base(path))
	}

	manifestPath := filepath.Join(dir, constants.ChecksumManifestName)
	if err := os.WriteFile(manifestPath, []byte(sb.String()), 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write checksum manifest")
	}
	return manifestPath, nil
}

// VerifyManifest checks every entry of a checksums.txt manifest against
// the files next to it. Returns the first mismatch as an error.
func VerifyManifest(manifestPath string) error {
	data, err := os.ReadFile(manifestPath) //nolint:gosec // path comes from config or a flag
	if err != nil {
		return errors.Wrap(err, "failed to read checksum manifest")
	}

	dir := filepath.Dir(manifestPath)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("malformed manifest line %q", line)
		}
		want, name := fields[0], fields[1]

		got, sumErr := SHA256Sum(filepath.Join(dir, name))
		if sumErr != nil {
			return errors.Wrapf(errors.ErrArtifactNotFound, "%s listed in manifest", name)
		}
		if got != want {
			return fmt.Errorf("checksum mismatch for %s", name)
		}
	}
	return nil
}
