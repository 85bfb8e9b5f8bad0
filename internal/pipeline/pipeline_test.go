package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gantryci/gantry/internal/pipeline"
)

func TestRef_IsBranch(t *testing.T) {
	assert.True(t, pipeline.Ref("refs/heads/main").IsBranch())
	assert.True(t, pipeline.Ref("refs/heads/feature/x").IsBranch())
	assert.False(t, pipeline.Ref("refs/tags/v1.2.3").IsBranch())
	assert.False(t, pipeline.Ref("main").IsBranch())
}

func TestRef_IsTag(t *testing.T) {
	assert.True(t, pipeline.Ref("refs/tags/v1.2.3").IsTag())
	assert.False(t, pipeline.Ref("refs/heads/main").IsTag())
	assert.False(t, pipeline.Ref("v1.2.3").IsTag())
}

func TestRef_Name(t *testing.T) {
	assert.Equal(t, "main", pipeline.Ref("refs/heads/main").Name())
	assert.Equal(t, "feature/x", pipeline.Ref("refs/heads/feature/x").Name())
	assert.Equal(t, "v1.2.3", pipeline.Ref("refs/tags/v1.2.3").Name())
	assert.Equal(t, "main", pipeline.Ref("main").Name(), "unqualified refs pass through")
}

func TestRef_IsReleaseTag(t *testing.T) {
	tests := []struct {
		name   string
		ref    pipeline.Ref
		prefix string
		want   bool
	}{
		{"VersionTag", "refs/tags/v1.2.3", "v", true},
		{"CustomPrefix", "refs/tags/release-1.0.0", "release-", true},
		{"BranchNeverMatches", "refs/heads/v1.2.3", "v", false},
		{"WrongPrefix", "refs/tags/rc-1.2.3", "v", false},
		{"PrefixAlone", "refs/tags/v", "v", false},
		{"EmptyPrefix", "refs/tags/v1.2.3", "", false},
		{"PrefixIsExactNotFuzzy", "refs/tags/rev1", "v", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.IsReleaseTag(tt.prefix))
		})
	}
}

func TestBranchRef_TagRef(t *testing.T) {
	assert.Equal(t, pipeline.Ref("refs/heads/main"), pipeline.BranchRef("main"))
	assert.Equal(t, pipeline.Ref("refs/tags/v2.0.0"), pipeline.TagRef("v2.0.0"))
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, pipeline.StatusSuccess.Terminal())
	assert.True(t, pipeline.StatusFailure.Terminal())
	assert.True(t, pipeline.StatusSkipped.Terminal())
	assert.True(t, pipeline.StatusCancelled.Terminal())
	assert.False(t, pipeline.StatusPending.Terminal())
	assert.False(t, pipeline.StatusRunning.Terminal())
}

func TestRule_IsValid(t *testing.T) {
	assert.True(t, pipeline.Rule("").IsValid(), "empty rule defaults to on_success")
	for _, rule := range pipeline.ValidRules() {
		assert.True(t, rule.IsValid())
	}
	assert.False(t, pipeline.Rule("on-success").IsValid())
	assert.False(t, pipeline.Rule("manual").IsValid())
}

func TestJob_EffectiveRule(t *testing.T) {
	job := pipeline.Job{Name: "build"}
	assert.Equal(t, pipeline.RuleOnSuccess, job.EffectiveRule())

	job.Rule = pipeline.RuleAlways
	assert.Equal(t, pipeline.RuleAlways, job.EffectiveRule())
}
