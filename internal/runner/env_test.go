package runner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/runner"
)

func TestSourceEnv_DerivesPythonPath(t *testing.T) {
	srcDir := t.TempDir()
	t.Setenv(constants.EnvSourceDir, srcDir)
	t.Setenv(constants.EnvPythonPath, "/opt/deps")

	env := runner.SourceEnv()

	require.Len(t, env, 2)
	sep := string(os.PathListSeparator)
	assert.Equal(t, "PYTHONPATH="+filepath.Join(srcDir, "python")+sep+"/opt/deps", env[0])
	assert.Equal(t, "GANTRY_SOURCE_DIR="+srcDir, env[1])
}

func TestSourceEnv_KeepsPythonPathAloneWhenUnset(t *testing.T) {
	srcDir := t.TempDir()
	t.Setenv(constants.EnvSourceDir, srcDir)
	t.Setenv(constants.EnvPythonPath, "")

	env := runner.SourceEnv()

	require.Len(t, env, 2)
	assert.Equal(t, "PYTHONPATH="+filepath.Join(srcDir, "python"), env[0])
}

func TestSourceEnv_EmptyWithoutSourceDir(t *testing.T) {
	t.Setenv(constants.EnvSourceDir, "")

	assert.Nil(t, runner.SourceEnv())
}
