package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gantryerrors "github.com/gantryci/gantry/internal/errors"
)

func TestSuggestionForError_KnownSentinel(t *testing.T) {
	got := SuggestionForError(gantryerrors.ErrConfigNotFound)
	assert.Equal(t, "Run: gantry init", got)
}

func TestSuggestionForError_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("loading pipeline: %w", gantryerrors.ErrDependencyCycle)
	got := SuggestionForError(err)
	assert.Contains(t, got, "gantry pipeline validate")
}

func TestSuggestionForError_UnknownError(t *testing.T) {
	assert.Empty(t, SuggestionForError(errors.New("mystery")))
	assert.Empty(t, SuggestionForError(nil))
}

func TestWrapWithSuggestion_WrapsKnownErrors(t *testing.T) {
	wrapped := WrapWithSuggestion(gantryerrors.ErrMissingRequiredTools)

	var actionable *ActionableError
	require.ErrorAs(t, wrapped, &actionable)
	assert.Equal(t, "Run: gantry doctor", actionable.GetSuggestion())
}

func TestWrapWithSuggestion_PassesThroughUnknownErrors(t *testing.T) {
	original := errors.New("mystery")
	assert.Equal(t, original, WrapWithSuggestion(original))
	assert.Nil(t, WrapWithSuggestion(nil))
}

func TestActionableError_ContextInMessage(t *testing.T) {
	err := NewActionableError("artifact not found", "Run the package job").
		WithContext("dist/mlc-llm-0.1.0.tar.zst")

	assert.Equal(t, "artifact not found (dist/mlc-llm-0.1.0.tar.zst)", err.Error())
	assert.Equal(t, "dist/mlc-llm-0.1.0.tar.zst", err.GetContext())
}
