package build

import (
	"os"
	"path/filepath"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
)

// buildLock holds the exclusive advisory lock on a build directory.
type buildLock struct {
	file *os.File
}

// acquireBuildLock takes a non-blocking exclusive lock on the build
// directory's lock file, creating the directory if needed. A second
// concurrent driver gets ErrBuildDirLocked instead of interleaving its
// phases into the same build tree.
func acquireBuildLock(buildDir string) (*buildLock, error) {
	if err := os.MkdirAll(buildDir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "failed to create build directory %s", buildDir)
	}

	path := filepath.Join(buildDir, constants.BuildLockFileName)
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // path derives from the build dir
	if err != nil {
		return nil, errors.Wrap(err, "failed to open build lock file")
	}

	if err = lockFile(file.Fd()); err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(errors.ErrBuildDirLocked,
			"%s is in use by another build", buildDir)
	}

	return &buildLock{file: file}, nil
}

// release drops the lock and closes the file.
func (l *buildLock) release() {
	if l.file == nil {
		return
	}
	_ = unlockFile(l.file.Fd())
	_ = l.file.Close()
	l.file = nil
}
