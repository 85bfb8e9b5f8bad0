package release_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/pipeline"
	"github.com/gantryci/gantry/internal/release"
)

// greenResults returns upstream results with both artifact jobs green.
func greenResults() map[string]pipeline.Status {
	return map[string]pipeline.Status{
		"package":    pipeline.StatusSuccess,
		"prod-image": pipeline.StatusSuccess,
	}
}

func TestGate_OpensOnReleaseTagWithGreenUpstream(t *testing.T) {
	version, err := release.Gate(pipeline.TagRef("v1.2.3"), greenResults(), "v")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version.String())
}

func TestGate_RejectsNonReleaseRefs(t *testing.T) {
	tests := []struct {
		name string
		ref  pipeline.Ref
	}{
		{"PrimaryBranch", pipeline.BranchRef("main")},
		{"FeatureBranch", pipeline.BranchRef("feature/x")},
		{"WrongTagPrefix", pipeline.TagRef("rc-1.2.3")},
		{"BranchNamedLikeTag", pipeline.BranchRef("v1.2.3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := release.Gate(tt.ref, greenResults(), "v")
			require.ErrorIs(t, err, errors.ErrNotReleaseRef)
		})
	}
}

func TestGate_RejectsInvalidVersion(t *testing.T) {
	_, err := release.Gate(pipeline.TagRef("vNext"), greenResults(), "v")
	require.ErrorIs(t, err, errors.ErrInvalidVersionTag)
}

func TestGate_BlocksOnUpstreamFailure(t *testing.T) {
	results := greenResults()
	results["prod-image"] = pipeline.StatusFailure

	_, err := release.Gate(pipeline.TagRef("v1.2.3"), results, "v")
	require.ErrorIs(t, err, errors.ErrGateBlocked)
	assert.Contains(t, err.Error(), "prod-image")
}

func TestGate_BlocksOnMissingUpstreamResult(t *testing.T) {
	results := map[string]pipeline.Status{"package": pipeline.StatusSuccess}

	_, err := release.Gate(pipeline.TagRef("v1.2.3"), results, "v")
	require.ErrorIs(t, err, errors.ErrGateBlocked)
}

func TestGate_BlocksOnSkippedUpstream(t *testing.T) {
	results := greenResults()
	results["package"] = pipeline.StatusSkipped

	_, err := release.Gate(pipeline.TagRef("v1.2.3"), results, "v")
	require.ErrorIs(t, err, errors.ErrGateBlocked)
}
