package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/runner"
	"github.com/gantryci/gantry/internal/tui"
)

func testUtilityOptions(w *bytes.Buffer, format string) UtilityOptions {
	return UtilityOptions{
		OutputFormat: format,
		Writer:       w,
	}
}

func TestRunCategoryCommands_RunsSequentially(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponse("ruff check python", "ok", "", 0, nil)
	mock.SetResponse("mypy python", "ok", "", 0, nil)

	var buf bytes.Buffer
	out := tui.NewOutput(&buf, OutputText)

	err := runCategoryCommands(context.Background(), mock,
		[]string{"ruff check python", "mypy python"},
		"lint", out, testUtilityOptions(&buf, OutputText), zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, []string{"ruff check python", "mypy python"}, mock.Calls())
	assert.Contains(t, buf.String(), "lint completed successfully")
}

func TestRunCategoryCommands_FirstFailureAborts(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponse("ruff check python", "", "E501 line too long", 1, nil)
	mock.SetResponse("mypy python", "ok", "", 0, nil)

	var buf bytes.Buffer
	out := tui.NewOutput(&buf, OutputText)

	err := runCategoryCommands(context.Background(), mock,
		[]string{"ruff check python", "mypy python"},
		"lint", out, testUtilityOptions(&buf, OutputText), zerolog.Nop())

	require.ErrorIs(t, err, errors.ErrCommandFailed)
	assert.Equal(t, []string{"ruff check python"}, mock.Calls())
}

func TestRunCategoryCommands_JSONResponse(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponse("ruff check python", "all good", "", 0, nil)

	var buf bytes.Buffer
	out := tui.NewOutput(&buf, OutputJSON)

	err := runCategoryCommands(context.Background(), mock,
		[]string{"ruff check python"},
		"lint", out, testUtilityOptions(&buf, OutputJSON), zerolog.Nop())

	require.NoError(t, err)

	var resp CategoryResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "lint", resp.Category)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "ruff check python", resp.Results[0].Command)
	assert.Equal(t, "all good", resp.Results[0].Output)
}

func TestRunCategoryCommands_FailureJSONKeepsResults(t *testing.T) {
	mock := runner.NewMockRunner()
	mock.SetResponse("pytest", "", "3 failed", 1, nil)

	var buf bytes.Buffer
	out := tui.NewOutput(&buf, OutputJSON)

	// JSON mode reports the failure in the response body; the sentinel
	// error keeps the exit code non-zero.
	err := runCategoryCommands(context.Background(), mock,
		[]string{"pytest"},
		"package", out, testUtilityOptions(&buf, OutputJSON), zerolog.Nop())

	require.ErrorIs(t, err, errors.ErrJSONErrorOutput)
	assert.Equal(t, ExitError, ExitCodeForError(err))

	var resp CategoryResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "3 failed", resp.Results[0].Error)
}

func TestSilenceJSONError(t *testing.T) {
	cmd := newLintCmd()

	err := silenceJSONError(cmd, errors.ErrJSONErrorOutput)

	require.ErrorIs(t, err, errors.ErrJSONErrorOutput)
	assert.True(t, cmd.SilenceErrors)

	other := newLintCmd()
	require.NoError(t, silenceJSONError(other, nil))
	assert.False(t, other.SilenceErrors)
}

func TestRunCategoryCommands_NothingConfigured(t *testing.T) {
	var buf bytes.Buffer
	out := tui.NewOutput(&buf, OutputText)

	err := runCategoryCommands(context.Background(), runner.NewMockRunner(),
		nil, "serve", out, testUtilityOptions(&buf, OutputText), zerolog.Nop())

	require.ErrorIs(t, err, errors.ErrCommandNotConfigured)
}

func TestNewCommandRunner_ExportsSourceEnv(t *testing.T) {
	srcDir := t.TempDir()
	t.Setenv("GANTRY_SOURCE_DIR", srcDir)
	t.Setenv("PYTHONPATH", "")

	r := newCommandRunner()

	assert.Contains(t, r.Env, "GANTRY_SOURCE_DIR="+srcDir)
	assert.Contains(t, r.Env, "PYTHONPATH="+filepath.Join(srcDir, "python"))
}

func TestAppendArgsToLast(t *testing.T) {
	commands := []string{"setup", "python3 -m mlc_llm serve"}

	got := appendArgsToLast(commands, []string{"--port", "8000"})
	assert.Equal(t, []string{"setup", "python3 -m mlc_llm serve --port 8000"}, got)

	// Original slice stays untouched.
	assert.Equal(t, "python3 -m mlc_llm serve", commands[1])

	assert.Equal(t, commands, appendArgsToLast(commands, nil))
	assert.Nil(t, appendArgsToLast(nil, []string{"x"}))
}
