//go:build unix

package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/errors"
)

func TestAcquireBuildLock_SecondAcquireFails(t *testing.T) {
	dir := t.TempDir()

	first, err := acquireBuildLock(dir)
	require.NoError(t, err)
	defer first.release()

	_, err = acquireBuildLock(dir)
	require.ErrorIs(t, err, errors.ErrBuildDirLocked)
}

func TestAcquireBuildLock_ReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()

	lock, err := acquireBuildLock(dir)
	require.NoError(t, err)
	lock.release()

	again, err := acquireBuildLock(dir)
	require.NoError(t, err)
	again.release()

	// release is idempotent
	again.release()
}

func TestAcquireBuildLock_CreatesBuildDir(t *testing.T) {
	dir := t.TempDir() + "/nested/build"

	lock, err := acquireBuildLock(dir)
	require.NoError(t, err)
	defer lock.release()

	assert.DirExists(t, dir)
}
