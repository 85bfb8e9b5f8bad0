package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/testutil"
	"github.com/gantryci/gantry/internal/tools"
)

// fakeExecutor implements tools.Executor with canned lookups and outputs.
type fakeExecutor struct {
	available map[string]bool
	outputs   map[string]string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		available: make(map[string]bool),
		outputs:   make(map[string]string),
	}
}

func (f *fakeExecutor) install(name, versionOutput string) {
	f.available[name] = true
	f.outputs[name] = versionOutput
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.available[file] {
		return "/usr/bin/" + file, nil
	}
	return "", testutil.ErrMockLookPath
}

func (f *fakeExecutor) Run(_ context.Context, name string, _ ...string) (string, error) {
	out, ok := f.outputs[name]
	if !ok {
		return "", testutil.ErrMockExec
	}
	return out, nil
}

func healthyExecutor() *fakeExecutor {
	f := newFakeExecutor()
	f.install(constants.ToolCMake, "cmake version 3.28.1")
	f.install(constants.ToolGit, "git version 2.43.0")
	f.install(constants.ToolPython, "Python 3.11.6")
	f.install(constants.ToolCXX, "g++ (Ubuntu 13.2.0-4ubuntu3) 13.2.0")
	f.install(constants.ToolRustc, "rustc 1.75.0 (82e1608df 2023-12-21)")
	f.install(constants.ToolCargo, "cargo 1.75.0")
	return f
}

func TestRunDoctor_HealthyToolchain(t *testing.T) {
	var buf bytes.Buffer
	cmd := newTestCommand(t, OutputText)
	detector := tools.NewDetectorWithExecutor(healthyExecutor())

	err := runDoctor(context.Background(), cmd, detector, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "TOOL")
	assert.Contains(t, output, constants.ToolCMake)
	assert.Contains(t, output, "toolchain looks good")
}

func TestRunDoctor_MissingToolsFail(t *testing.T) {
	var buf bytes.Buffer
	cmd := newTestCommand(t, OutputText)
	detector := tools.NewDetectorWithExecutor(newFakeExecutor())

	err := runDoctor(context.Background(), cmd, detector, &buf)
	require.ErrorIs(t, err, errors.ErrMissingRequiredTools)

	// Missing tools carry their install hints in the table.
	assert.Contains(t, buf.String(), "cmake.org")
}

func TestRunDoctor_JSON(t *testing.T) {
	var buf bytes.Buffer
	cmd := newTestCommand(t, OutputJSON)
	detector := tools.NewDetectorWithExecutor(healthyExecutor())

	err := runDoctor(context.Background(), cmd, detector, &buf)
	require.NoError(t, err)

	var result tools.DetectionResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.NotEmpty(t, result.Tools)
	assert.False(t, result.HasMissingRequired)
}

func TestRunDoctor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	cmd := newTestCommand(t, OutputText)

	err := runDoctor(ctx, cmd, tools.NewDetectorWithExecutor(newFakeExecutor()), &buf)
	require.ErrorIs(t, err, context.Canceled)
}
