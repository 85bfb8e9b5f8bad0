// Package release implements release gating and bundle assembly.
//
// A release happens only from an exact-prefix version tag with a fully
// green upstream. Nothing here retries or overrides: the gate either
// opens or it does not.
package release

import (
	"strings"

	"github.com/coreos/go-semver/semver"

	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/pipeline"
)

// ArtifactJobs are the upstream jobs that must be green before the gate
// opens: the platform package build and the production image build.
var ArtifactJobs = []string{"package", "prod-image"}

// Gate decides whether a release may proceed for the given reference
// and upstream job results.
//
// The reference must be a tag carrying the release prefix, the version
// after the prefix must be valid semver, and every artifact-producing
// job must have finished success. The returned version is the parsed
// release version.
func Gate(ref pipeline.Ref, results map[string]pipeline.Status, tagPrefix string) (*semver.Version, error) {
	if !ref.IsReleaseTag(tagPrefix) {
		return nil, errors.Wrapf(errors.ErrNotReleaseRef,
			"ref %q is not a %s* release tag", ref, tagPrefix)
	}

	raw := strings.TrimPrefix(ref.Name(), tagPrefix)
	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidVersionTag,
			"%q is not a semantic version", raw)
	}

	for _, job := range ArtifactJobs {
		status, ok := results[job]
		if !ok {
			return nil, errors.Wrapf(errors.ErrGateBlocked, "job %q has no result", job)
		}
		if status != pipeline.StatusSuccess {
			return nil, errors.Wrapf(errors.ErrGateBlocked, "job %q finished %s", job, status)
		}
	}

	return version, nil
}
