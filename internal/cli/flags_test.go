package cli

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gantryci/gantry/internal/errors"
)

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "NilIsSuccess",
			err:  nil,
			want: ExitSuccess,
		},
		{
			name: "GeneralErrorIsOne",
			err:  stderrors.New("boom"),
			want: ExitError,
		},
		{
			name: "ChecksFailedIsOne",
			err:  errors.ErrChecksFailed,
			want: ExitError,
		},
		{
			name: "ExitCode2WrapperIsTwo",
			err:  errors.NewExitCode2Error(stderrors.New("bad flag")),
			want: ExitInvalidInput,
		},
		{
			name: "InvalidOutputFormatIsTwo",
			err:  fmt.Errorf("%w: %q", errors.ErrInvalidOutputFormat, "yaml"),
			want: ExitInvalidInput,
		},
		{
			name: "UnknownFlagIsTwo",
			err:  stderrors.New("unknown flag: --frobnicate"),
			want: ExitInvalidInput,
		},
		{
			name: "UnknownCommandIsTwo",
			err:  stderrors.New(`unknown command "deploy" for "gantry"`),
			want: ExitInvalidInput,
		},
		{
			name: "MutuallyExclusiveFlagsIsTwo",
			err:  stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"),
			want: ExitInvalidInput,
		},
		{
			name: "PassthroughExitCodeSurvivesUnchanged",
			err:  errors.NewExitCodeError(42, stderrors.New("child failed")),
			want: 42,
		},
		{
			name: "CommandNotFoundIs127",
			err:  errors.NewExitCodeError(127, stderrors.New("exec failed")),
			want: 127,
		},
		{
			name: "WrappedPassthroughExitCode",
			err:  fmt.Errorf("entrypoint: %w", errors.NewExitCodeError(3, stderrors.New("child failed"))),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}

func TestFormatVersion(t *testing.T) {
	got := formatVersion(BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-15"})
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-01-15)", got)

	got = formatVersion(BuildInfo{})
	assert.Equal(t, "dev (commit: none, built: unknown)", got)
}
