// Package pipeline models the CI job DAG and its gating predicates.
//
// A pipeline is a set of named jobs with dependency edges (needs), each
// guarded by a gating rule that decides, from the triggering git reference
// and the predecessors' outcomes, whether the job executes. The same
// definition file drives validation, dry-run planning, and local execution.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/gantryci/gantry/internal/runner"
)

// Status is the outcome of a job or job instance.
// Only StatusSuccess satisfies a dependency.
type Status string

// Job statuses.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// Terminal returns true if the status is a final outcome.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusSkipped, StatusCancelled:
		return true
	case StatusPending, StatusRunning:
		return false
	default:
		return false
	}
}

// Rule is a job gating rule.
type Rule string

// Gating rules.
const (
	// RuleOnSuccess runs the job iff every listed predecessor finished
	// success, or the run-level override flag is set. This is the default.
	RuleOnSuccess Rule = "on_success"

	// RuleAlways starts the job regardless of predecessor outcome, but its
	// main steps execute only if every predecessor succeeded or the
	// override flag is set.
	RuleAlways Rule = "always"

	// RuleProtectedRef runs the job only when the ref is the primary
	// branch or a release tag, and all predecessors succeeded.
	RuleProtectedRef Rule = "protected_ref"

	// RuleReleaseTag runs the job only when the ref is a release tag and
	// all predecessors succeeded. The override flag does not bypass this
	// rule.
	RuleReleaseTag Rule = "release_tag"
)

// ValidRules returns the accepted gating rules.
func ValidRules() []Rule {
	return []Rule{RuleOnSuccess, RuleAlways, RuleProtectedRef, RuleReleaseTag}
}

// IsValid checks whether the rule is one of the accepted values.
// The empty rule is valid and means RuleOnSuccess.
func (r Rule) IsValid() bool {
	if r == "" {
		return true
	}
	for _, valid := range ValidRules() {
		if r == valid {
			return true
		}
	}
	return false
}

// Ref is a fully qualified git reference such as refs/heads/main or
// refs/tags/v1.2.3.
type Ref string

const (
	branchRefPrefix = "refs/heads/"
	tagRefPrefix    = "refs/tags/"
)

// IsBranch returns true for branch references.
func (r Ref) IsBranch() bool {
	return strings.HasPrefix(string(r), branchRefPrefix)
}

// IsTag returns true for tag references.
func (r Ref) IsTag() bool {
	return strings.HasPrefix(string(r), tagRefPrefix)
}

// Name returns the reference name with the refs/heads/ or refs/tags/
// prefix stripped. Unqualified references are returned as-is.
func (r Ref) Name() string {
	s := string(r)
	if name, ok := strings.CutPrefix(s, branchRefPrefix); ok {
		return name
	}
	if name, ok := strings.CutPrefix(s, tagRefPrefix); ok {
		return name
	}
	return s
}

// IsReleaseTag reports whether the reference is a tag whose name carries
// the release tag prefix. Matching is an exact prefix match on the tag
// name: a prefix of "v" matches "v1.2.3" but never "revision-1" or a
// branch of any name.
func (r Ref) IsReleaseTag(prefix string) bool {
	if !r.IsTag() || prefix == "" {
		return false
	}
	name := r.Name()
	return strings.HasPrefix(name, prefix) && len(name) > len(prefix)
}

// BranchRef builds a fully qualified branch reference.
func BranchRef(name string) Ref {
	return Ref(branchRefPrefix + name)
}

// TagRef builds a fully qualified tag reference.
func TagRef(name string) Ref {
	return Ref(tagRefPrefix + name)
}

// Job is a single pipeline job as declared in the definition file.
type Job struct {
	// Name uniquely identifies the job within the pipeline.
	Name string `yaml:"name"`

	// Needs lists the names of jobs that must complete before this one.
	Needs []string `yaml:"needs,omitempty"`

	// Rule is the gating rule; empty means on_success.
	Rule Rule `yaml:"rule,omitempty"`

	// Run lists the shell commands executed sequentially as the job's
	// main steps. Matrix placeholders of the form ${{ matrix.key }} are
	// expanded per instance.
	Run []string `yaml:"run,omitempty"`

	// Matrix fans the job out into one fully independent instance per
	// combination of axis values.
	Matrix map[string][]string `yaml:"matrix,omitempty"`

	// Artifacts lists file globs, relative to the working directory,
	// collected into the run's artifact directory after a successful
	// instance.
	Artifacts []string `yaml:"artifacts,omitempty"`

	// Timeout bounds the job's main steps, as a duration string such as
	// "30m". Empty means the run-level default.
	Timeout string `yaml:"timeout,omitempty"`
}

// EffectiveRule returns the job's rule with the default applied.
func (j *Job) EffectiveRule() Rule {
	if j.Rule == "" {
		return RuleOnSuccess
	}
	return j.Rule
}

// ParseTimeout returns the job's timeout, or fallback when none is
// declared.
func (j *Job) ParseTimeout(fallback time.Duration) (time.Duration, error) {
	if j.Timeout == "" {
		return fallback, nil
	}
	return time.ParseDuration(j.Timeout)
}

// Pipeline is a complete pipeline definition.
type Pipeline struct {
	// Name identifies the pipeline in summaries and logs.
	Name string `yaml:"name"`

	// PrimaryBranch is the protected mainline branch. Default: "main".
	PrimaryBranch string `yaml:"primary_branch,omitempty"`

	// TagPrefix is the exact prefix identifying release tags. Default: "v".
	TagPrefix string `yaml:"tag_prefix,omitempty"`

	// Jobs in declaration order. Declaration order breaks ties in the
	// topological execution order.
	Jobs []Job `yaml:"jobs"`
}

// Job returns the declared job with the given name.
func (p *Pipeline) Job(name string) (*Job, bool) {
	for i := range p.Jobs {
		if p.Jobs[i].Name == name {
			return &p.Jobs[i], true
		}
	}
	return nil, false
}

// Decision is the outcome of applying a job's gating rule.
type Decision struct {
	// Execute is true when the job starts at all.
	Execute bool `json:"execute"`

	// MainSteps is true when the job's run commands execute. It differs
	// from Execute only for the always rule, whose jobs start even when a
	// predecessor failed but then skip their main steps.
	MainSteps bool `json:"main_steps"`

	// Reason explains the decision in one line.
	Reason string `json:"reason"`
}

// JobResult records the outcome of one job instance.
type JobResult struct {
	// Job is the declared job name.
	Job string `json:"job"`

	// Instance identifies the matrix instance, such as
	// "build [os=ubuntu-22.04]". For non-matrix jobs it equals Job.
	Instance string `json:"instance"`

	Status   Status          `json:"status"`
	Decision Decision        `json:"decision"`
	Commands []runner.Result `json:"commands,omitempty"`

	// ArtifactPaths lists files collected into the run's artifact
	// directory.
	ArtifactPaths []string `json:"artifact_paths,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// matrixInstance is one combination of matrix axis values.
type matrixInstance map[string]string

// Label renders the instance suffix with axes in sorted key order, e.g.
// "[os=ubuntu-22.04 gpu=cuda]" sorts to "[gpu=cuda os=ubuntu-22.04]".
// An empty instance renders as an empty string.
func (m matrixInstance) Label() string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// expandMatrix produces the cartesian product of the job's matrix axes,
// iterating axes in sorted key order so the instance order is
// deterministic. A job without a matrix yields a single empty instance.
func expandMatrix(matrix map[string][]string) []matrixInstance {
	if len(matrix) == 0 {
		return []matrixInstance{{}}
	}

	keys := make([]string, 0, len(matrix))
	for k := range matrix {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	instances := []matrixInstance{{}}
	for _, key := range keys {
		var next []matrixInstance
		for _, base := range instances {
			for _, value := range matrix[key] {
				inst := make(matrixInstance, len(base)+1)
				for k, v := range base {
					inst[k] = v
				}
				inst[key] = value
				next = append(next, inst)
			}
		}
		instances = next
	}
	return instances
}

// expandCommand substitutes ${{ matrix.key }} placeholders with the
// instance's axis values. Unknown placeholders are left untouched.
func expandCommand(command string, inst matrixInstance) string {
	for key, value := range inst {
		command = strings.ReplaceAll(command, "${{ matrix."+key+" }}", value)
		command = strings.ReplaceAll(command, "${{matrix."+key+"}}", value)
	}
	return command
}
