package artifact

import (
	"fmt"
	"strings"

	"github.com/coreos/go-semver/semver"

	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/pipeline"
)

// ImageTags computes the container image tag set for a reference and
// short commit hash.
//
// Branch pushes are tagged with the sanitized branch name and the commit
// hash; the primary branch additionally floats "latest" and "prod".
// Release tags are tagged with the full semantic version plus the
// major.minor and major conveniences, so consumers can pin at the
// granularity they want. The version after the tag prefix must be valid
// semver.
func ImageTags(ref pipeline.Ref, shortCommit, primaryBranch, tagPrefix string) ([]string, error) {
	switch {
	case ref.IsBranch():
		tags := []string{sanitizeTag(ref.Name())}
		if shortCommit != "" {
			tags = append(tags, shortCommit)
		}
		if ref.Name() == primaryBranch {
			tags = append(tags, "latest", "prod")
		}
		return tags, nil

	case ref.IsReleaseTag(tagPrefix):
		raw := strings.TrimPrefix(ref.Name(), tagPrefix)
		version, err := semver.NewVersion(raw)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidVersionTag, "%q is not a semantic version", raw)
		}
		return []string{
			version.String(),
			fmt.Sprintf("%d.%d", version.Major, version.Minor),
			fmt.Sprintf("%d", version.Major),
		}, nil

	default:
		return nil, errors.Wrapf(errors.ErrNotReleaseRef, "no image tags for ref %q", ref)
	}
}

// sanitizeTag converts a ref name into a valid image tag: slashes and
// other disallowed characters become dashes.
func sanitizeTag(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return strings.Trim(sb.String(), ".-")
}
