package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/pipeline"
)

const validPipelineYAML = `
name: ci
jobs:
  - name: lint
    run: ["ruff check ."]
  - name: build
    needs: [lint]
    timeout: 45m
    run: ["cmake --build build"]
    artifacts: ["build/lib/*.so"]
  - name: test
    needs: [build]
    matrix:
      os: [ubuntu-22.04, ubuntu-24.04]
    run: ["pytest tests/"]
  - name: report
    needs: [test]
    rule: always
    run: ["cat report.md"]
`

func TestParse_ValidPipeline(t *testing.T) {
	p, err := pipeline.Parse([]byte(validPipelineYAML))
	require.NoError(t, err)

	assert.Equal(t, "ci", p.Name)
	assert.Len(t, p.Jobs, 4)
	assert.Equal(t, "main", p.PrimaryBranch, "primary branch defaults to main")
	assert.Equal(t, "v", p.TagPrefix, "tag prefix defaults to v")

	build, ok := p.Job("build")
	require.True(t, ok)
	assert.Equal(t, []string{"lint"}, build.Needs)
	assert.Equal(t, "45m", build.Timeout)
}

func TestParse_ExplicitRefSettings(t *testing.T) {
	p, err := pipeline.Parse([]byte(`
name: ci
primary_branch: trunk
tag_prefix: release-
jobs:
  - name: build
    run: ["true"]
`))
	require.NoError(t, err)
	assert.Equal(t, "trunk", p.PrimaryBranch)
	assert.Equal(t, "release-", p.TagPrefix)
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := pipeline.Parse([]byte("jobs: [not: valid\n"))
	require.Error(t, err)
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gantry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validPipelineYAML), 0o600))

	p, err := pipeline.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ci", p.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := pipeline.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_ReportsIssues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "NoJobs",
			yaml: "name: ci\njobs: []\n",
			want: "no jobs",
		},
		{
			name: "EmptyJobName",
			yaml: "jobs:\n  - run: [\"true\"]\n",
			want: "empty name",
		},
		{
			name: "DuplicateJobName",
			yaml: "jobs:\n  - name: build\n  - name: build\n",
			want: "duplicate job name",
		},
		{
			name: "UnknownNeed",
			yaml: "jobs:\n  - name: test\n    needs: [build]\n",
			want: "unknown job",
		},
		{
			name: "SelfDependency",
			yaml: "jobs:\n  - name: build\n    needs: [build]\n",
			want: "depends on itself",
		},
		{
			name: "UnparseableTimeout",
			yaml: "jobs:\n  - name: build\n    timeout: soon\n",
			want: "unparseable timeout",
		},
		{
			name: "NegativeTimeout",
			yaml: "jobs:\n  - name: build\n    timeout: -5m\n",
			want: "must be positive",
		},
		{
			name: "UnknownRule",
			yaml: "jobs:\n  - name: build\n    rule: whenever\n",
			want: "unknown rule",
		},
		{
			name: "EmptyMatrixAxis",
			yaml: "jobs:\n  - name: build\n    matrix:\n      os: []\n",
			want: "has no values",
		},
		{
			name: "DependencyCycle",
			yaml: "jobs:\n  - name: a\n    needs: [b]\n  - name: b\n    needs: [a]\n",
			want: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, errors.ErrPipelineInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsMultipleIssues(t *testing.T) {
	var p pipeline.Pipeline
	p.Jobs = []pipeline.Job{
		{Name: "a", Rule: "bogus", Timeout: "later"},
		{Name: "b", Needs: []string{"missing"}},
	}

	issues := pipeline.Validate(&p)
	assert.Len(t, issues, 3, "rule, timeout, and needs issues are all reported")
}
