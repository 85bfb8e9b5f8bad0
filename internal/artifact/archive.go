package artifact

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/gantryci/gantry/internal/errors"
)

// CreateArchive writes the given files (paths relative to srcDir) into a
// zstd-compressed tar archive at destPath. Entries are stored under
// their srcDir-relative paths.
func CreateArchive(destPath, srcDir string, files []string) (err error) {
	if len(files) == 0 {
		return errors.Wrap(errors.ErrNoArtifacts, "nothing to archive")
	}

	out, err := os.Create(destPath) //nolint:gosec // destination comes from config
	if err != nil {
		return errors.Wrap(err, "failed to create archive")
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return errors.Wrap(err, "failed to create zstd writer")
	}
	tw := tar.NewWriter(zw)

	for _, rel := range files {
		if addErr := addFile(tw, srcDir, rel); addErr != nil {
			return addErr
		}
	}

	if err = tw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize archive")
	}
	if err = zw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize compression")
	}
	return nil
}

// StageFiles resolves the archive file list for a staging directory.
// A non-empty include list is validated against the directory and returned
// as-is; an empty list walks stageDir and returns every regular file,
// sorted, as stageDir-relative paths.
func StageFiles(stageDir string, include []string) ([]string, error) {
	if len(include) > 0 {
		for _, rel := range include {
			if _, err := os.Stat(filepath.Join(stageDir, rel)); err != nil {
				return nil, errors.Wrapf(err, "staged file %s", rel)
			}
		}
		files := make([]string, len(include))
		copy(files, include)
		sort.Strings(files)
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(stageDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(stageDir, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk stage directory")
	}

	sort.Strings(files)
	return files, nil
}

// addFile writes one file entry into the tar stream.
func addFile(tw *tar.Writer, srcDir, rel string) error {
	path := filepath.Join(srcDir, rel)
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", rel)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return errors.Wrapf(err, "failed to build header for %s", rel)
	}
	hdr.Name = filepath.ToSlash(rel)

	if err = tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, "failed to write header for %s", rel)
	}

	in, err := os.Open(path) //nolint:gosec // path derives from the file list
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", rel)
	}
	defer func() { _ = in.Close() }()

	if _, err = io.Copy(tw, in); err != nil {
		return errors.Wrapf(err, "failed to archive %s", rel)
	}
	return nil
}

// ExtractArchive unpacks a zstd-compressed tar archive into destDir.
// Entries escaping destDir are rejected.
func ExtractArchive(archivePath, destDir string) error {
	in, err := os.Open(archivePath) //nolint:gosec // path comes from config or a flag
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer func() { _ = in.Close() }()

	zr, err := zstd.NewReader(in)
	if err != nil {
		return errors.Wrap(err, "failed to create zstd reader")
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, readErr := tr.Next()
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return errors.Wrap(readErr, "failed to read archive")
		}

		dest := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !withinDir(dest, destDir) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(dest, 0o750); err != nil {
				return errors.Wrapf(err, "failed to create %s", hdr.Name)
			}
		case tar.TypeReg:
			if err = extractFile(tr, dest, hdr.FileInfo().Mode()); err != nil {
				return errors.Wrapf(err, "failed to extract %s", hdr.Name)
			}
		default:
			// Symlinks and special files never appear in our own archives.
			continue
		}
	}
}

// withinDir reports whether path stays inside dir after cleaning.
func withinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

// extractFile writes one regular file entry from the tar stream.
func extractFile(tr *tar.Reader, dest string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm()) //nolint:gosec
	if err != nil {
		return err
	}
	if _, err = io.CopyN(out, tr, maxEntrySize); err != nil && err != io.EOF {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// maxEntrySize bounds a single extracted file (16 GiB) to keep a
// corrupted header from exhausting the disk.
const maxEntrySize = 16 << 30
