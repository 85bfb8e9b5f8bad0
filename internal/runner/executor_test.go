package runner_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gantryerrors "github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
)

func testContext() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func TestExecutor_Run_AllCommandsSucceed(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponse("cmake --version", "cmake version 3.28.1", "", 0, nil)
	mock.SetResponse("git --version", "git version 2.43.0", "", 0, nil)

	exec := runner.NewExecutorWithRunner(time.Minute, mock)
	results, err := exec.Run(testContext(), []string{"cmake --version", "git --version"}, t.TempDir())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "cmake version 3.28.1", results[0].Stdout)
	assert.True(t, results[1].Success)
}

func TestExecutor_Run_StopsOnFirstFailure(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponse("first", "ok", "", 0, nil)
	mock.SetResponse("second", "", "boom", 1, nil)
	mock.SetResponse("third", "never", "", 0, nil)

	exec := runner.NewExecutorWithRunner(time.Minute, mock)
	results, err := exec.Run(testContext(), []string{"first", "second", "third"}, t.TempDir())

	require.ErrorIs(t, err, gantryerrors.ErrCommandFailed)
	require.Len(t, results, 2, "third command must not run")
	assert.False(t, results[1].Success)
	assert.Equal(t, 1, results[1].ExitCode)
	assert.Equal(t, []string{"first", "second"}, mock.Calls())
}

func TestExecutor_Timeout(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponseWithDelay("sleepy", "", "", 0, nil, 500*time.Millisecond)

	exec := runner.NewExecutorWithRunner(50*time.Millisecond, mock)
	results, err := exec.Run(testContext(), []string{"sleepy"}, t.TempDir())

	require.ErrorIs(t, err, gantryerrors.ErrCommandTimeout)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "command timed out", results[0].Error)
}

func TestExecutor_MissingWorkDir(t *testing.T) {
	mock := runner.NewMockRunner()
	exec := runner.NewExecutorWithRunner(time.Minute, mock)

	results, err := exec.Run(testContext(), []string{"anything"}, "/nonexistent/gantry/workdir")

	require.ErrorIs(t, err, gantryerrors.ErrSourceDirMissing)
	require.Len(t, results, 1)
	assert.Empty(t, mock.Calls(), "command must not run when workdir is missing")
}

func TestExecutor_Run_ContextCanceledBetweenCommands(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponse("only", "ok", "", 0, nil)

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	exec := runner.NewExecutorWithRunner(time.Minute, mock)
	_, err := exec.Run(ctx, []string{"only"}, t.TempDir())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_LiveOutputStreams(t *testing.T) {
	var live bytes.Buffer
	exec := runner.NewExecutor(time.Minute)
	exec.SetLiveOutput(&live)

	results, err := exec.Run(testContext(), []string{"echo streamed"}, t.TempDir())

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, live.String(), "streamed")
	assert.Contains(t, results[0].Stdout, "streamed")
}

func TestExecutor_UnconfiguredCommandFails(t *testing.T) {
	mock := runner.NewMockRunner()
	exec := runner.NewExecutorWithRunner(time.Minute, mock)

	_, err := exec.Run(testContext(), []string{"mystery"}, t.TempDir())
	require.ErrorIs(t, err, gantryerrors.ErrCommandFailed)
}
