package artifact

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gantryci/gantry/internal/errors"
)

// Collect gathers the files matching globs (relative to srcDir) into
// destDir, preserving base names, and returns the destination paths in
// sorted order.
//
// A glob that matches nothing is not an error: jobs declare artifact
// patterns optimistically and some instances legitimately produce no
// files for a pattern. Returns ErrNoArtifacts only when no glob matched
// anything at all.
func Collect(srcDir string, globs []string, destDir string) ([]string, error) {
	matches := make(map[string]bool)
	for _, glob := range globs {
		found, err := filepath.Glob(filepath.Join(srcDir, glob))
		if err != nil {
			return nil, errors.Wrapf(err, "bad artifact pattern %q", glob)
		}
		for _, path := range found {
			info, statErr := os.Stat(path)
			if statErr != nil || info.IsDir() {
				continue
			}
			matches[path] = true
		}
	}

	if len(matches) == 0 {
		return nil, errors.Wrapf(errors.ErrNoArtifacts, "no files matched %v under %s", globs, srcDir)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create artifact directory")
	}

	sources := make([]string, 0, len(matches))
	for path := range matches {
		sources = append(sources, path)
	}
	sort.Strings(sources)

	collected := make([]string, 0, len(sources))
	for _, src := range sources {
		dest := filepath.Join(destDir, filepath.Base(src))
		if err := copyFile(src, dest); err != nil {
			return collected, errors.Wrapf(err, "failed to collect %s", src)
		}
		collected = append(collected, dest)
	}
	return collected, nil
}

// copyFile copies src to dest, preserving the source's permission bits.
func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src) //nolint:gosec // paths come from artifact globs
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
