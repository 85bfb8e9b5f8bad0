package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/config"
	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
)

func TestRunInit_NoInteractive(t *testing.T) {
	t.Setenv("GANTRY_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	cmd := newTestCommand(t, OutputText)

	err := runInit(context.Background(), cmd, &InitFlags{NoInteractive: true}, &buf)
	require.NoError(t, err)

	require.FileExists(t, config.ProjectConfigPath())
	require.FileExists(t, constants.PipelineFileName)

	// The written config must round-trip through the loader.
	cfg, err := config.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Project.Name, cfg.Project.Name)

	data, err := os.ReadFile(constants.PipelineFileName)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: ci")
	assert.Contains(t, string(data), "rule: protected_ref")

	assert.Contains(t, buf.String(), "gantry doctor")
}

func TestRunInit_RefusesOverwrite(t *testing.T) {
	t.Setenv("GANTRY_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(constants.PipelineFileName, []byte("name: old\n"), 0o600))

	var buf bytes.Buffer
	cmd := newTestCommand(t, OutputText)

	err := runInit(context.Background(), cmd, &InitFlags{NoInteractive: true}, &buf)
	require.Error(t, err)
	assert.True(t, errors.IsExitCode2Error(err))
	assert.Contains(t, err.Error(), "already exists")

	// The existing file is untouched.
	data, readErr := os.ReadFile(constants.PipelineFileName)
	require.NoError(t, readErr)
	assert.Equal(t, "name: old\n", string(data))
}

func TestRunInit_ForceOverwrites(t *testing.T) {
	t.Setenv("GANTRY_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(constants.PipelineFileName, []byte("name: old\n"), 0o600))

	var buf bytes.Buffer
	cmd := newTestCommand(t, OutputText)

	err := runInit(context.Background(), cmd, &InitFlags{NoInteractive: true, Force: true}, &buf)
	require.NoError(t, err)

	data, readErr := os.ReadFile(constants.PipelineFileName)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "name: ci")
}
