package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gantryci/gantry/internal/constants"
	"github.com/gantryci/gantry/internal/errors"
)

// Load reads and parses a pipeline definition file.
// The returned pipeline has passed structural validation.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config or a flag
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read pipeline definition %s", path)
	}
	return Parse(data)
}

// Parse decodes a pipeline definition and validates it.
// Validation issues are folded into a single ErrPipelineInvalid error.
func Parse(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to parse pipeline definition")
	}

	applyDefaults(&p)

	if issues := Validate(&p); len(issues) > 0 {
		return nil, errors.Wrapf(errors.ErrPipelineInvalid,
			"%d issue(s): %s", len(issues), strings.Join(issues, "; "))
	}

	return &p, nil
}

// ValidateData decodes a pipeline definition and returns its validation
// issues without folding them into an error. A decode failure is returned
// as an error; an empty issue list means the definition is valid.
func ValidateData(data []byte) ([]string, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to parse pipeline definition")
	}
	applyDefaults(&p)
	return Validate(&p), nil
}

// applyDefaults fills in the pipeline-level defaults.
func applyDefaults(p *Pipeline) {
	if p.PrimaryBranch == "" {
		p.PrimaryBranch = constants.DefaultPrimaryBranch
	}
	if p.TagPrefix == "" {
		p.TagPrefix = constants.DefaultTagPrefix
	}
}

// Validate checks the pipeline structure and returns a list of
// human-readable issues. An empty list means the pipeline is valid.
//
// Checks: at least one job; unique, non-empty job names; every needs
// entry references a declared job; no dependency cycles; parseable
// timeouts; known gating rules; non-empty matrix axes.
func Validate(p *Pipeline) []string {
	var issues []string

	if p == nil {
		return []string{"pipeline is empty"}
	}
	if len(p.Jobs) == 0 {
		return []string{"pipeline declares no jobs"}
	}

	names := make(map[string]bool, len(p.Jobs))
	for i := range p.Jobs {
		job := &p.Jobs[i]

		if job.Name == "" {
			issues = append(issues, fmt.Sprintf("job %d has an empty name", i+1))
			continue
		}
		if names[job.Name] {
			issues = append(issues, fmt.Sprintf("duplicate job name %q", job.Name))
			continue
		}
		names[job.Name] = true

		issues = append(issues, validateJob(job)...)
	}

	// Dependency references resolve against the full declared name set.
	for i := range p.Jobs {
		job := &p.Jobs[i]
		for _, need := range job.Needs {
			if need == job.Name {
				issues = append(issues, fmt.Sprintf("job %q depends on itself", job.Name))
			} else if !names[need] {
				issues = append(issues, fmt.Sprintf("job %q needs unknown job %q", job.Name, need))
			}
		}
	}

	// Cycle detection only makes sense once every edge resolves.
	if len(issues) == 0 {
		if cycle := findCycle(p); len(cycle) > 0 {
			issues = append(issues, fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
		}
	}

	return issues
}

// validateJob checks a single job's declaration.
func validateJob(job *Job) []string {
	var issues []string

	if !job.Rule.IsValid() {
		issues = append(issues, fmt.Sprintf("job %q has unknown rule %q", job.Name, job.Rule))
	}

	if job.Timeout != "" {
		if d, err := time.ParseDuration(job.Timeout); err != nil {
			issues = append(issues, fmt.Sprintf("job %q has unparseable timeout %q", job.Name, job.Timeout))
		} else if d <= 0 {
			issues = append(issues, fmt.Sprintf("job %q timeout must be positive, got %q", job.Name, job.Timeout))
		}
	}

	for axis, values := range job.Matrix {
		if axis == "" {
			issues = append(issues, fmt.Sprintf("job %q has an empty matrix axis name", job.Name))
		}
		if len(values) == 0 {
			issues = append(issues, fmt.Sprintf("job %q matrix axis %q has no values", job.Name, axis))
		}
	}

	return issues
}
