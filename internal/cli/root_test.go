package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/errors"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GANTRY_HOME", t.TempDir())

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "1.0.0", Commit: "abc1234", Date: "2026-01-01"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCmd_HelpListsCommands(t *testing.T) {
	output, err := executeRoot(t, "--help")
	require.NoError(t, err)

	for _, name := range []string{
		"build", "test", "doctor", "pipeline", "release", "init", "entrypoint",
	} {
		assert.Contains(t, output, name)
	}
}

func TestRootCmd_Version(t *testing.T) {
	output, err := executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, output, "1.0.0 (commit: abc1234, built: 2026-01-01)")
}

func TestRootCmd_InvalidOutputFormat(t *testing.T) {
	_, err := executeRoot(t, "--output", "xml", "doctor")
	require.ErrorIs(t, err, errors.ErrInvalidOutputFormat)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	_, err := executeRoot(t, "frobnicate")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCmd_VerboseQuietExclusive(t *testing.T) {
	_, err := executeRoot(t, "--verbose", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
