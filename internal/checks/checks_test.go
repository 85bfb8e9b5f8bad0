package checks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/checks"
	"github.com/gantryci/gantry/internal/errors"
)

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"all", "import", "deps", "library", "pytest", "performance"} {
		category, err := checks.ParseCategory(valid)
		require.NoError(t, err, "category %q", valid)
		assert.Equal(t, checks.Category(valid), category)
	}

	_, err := checks.ParseCategory("lint")
	require.ErrorIs(t, err, errors.ErrUnknownCategory)

	_, err = checks.ParseCategory("")
	require.ErrorIs(t, err, errors.ErrUnknownCategory)
}

func TestSummary_AddTracksCounters(t *testing.T) {
	var s checks.Summary
	s.Add(checks.Record{Status: checks.CheckPassed})
	s.Add(checks.Record{Status: checks.CheckPassed})
	s.Add(checks.Record{Status: checks.CheckFailed})
	s.Add(checks.Record{Status: checks.CheckSkipped})

	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 4, s.Total())
	assert.False(t, s.OK())
}

func TestSummary_Merge(t *testing.T) {
	var a, b checks.Summary
	a.Add(checks.Record{Name: "one", Status: checks.CheckPassed})
	b.Add(checks.Record{Name: "two", Status: checks.CheckFailed})
	b.Add(checks.Record{Name: "three", Status: checks.CheckSkipped})

	a.Merge(b)

	assert.Equal(t, 1, a.Passed)
	assert.Equal(t, 1, a.Failed)
	assert.Equal(t, 1, a.Skipped)
	assert.Len(t, a.Records, 3)
}

func TestSummary_OKWhenEmpty(t *testing.T) {
	var s checks.Summary
	assert.True(t, s.OK())
	assert.Zero(t, s.Total())
}
