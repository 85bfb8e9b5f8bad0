package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantryci/gantry/internal/errors"
	"github.com/gantryci/gantry/internal/pipeline"
)

func TestNewGraph_TopoOrderPreservesDeclarationOrder(t *testing.T) {
	p := &pipeline.Pipeline{Jobs: []pipeline.Job{
		{Name: "lint"},
		{Name: "build"},
		{Name: "test", Needs: []string{"build"}},
		{Name: "package", Needs: []string{"test", "lint"}},
	}}

	g, err := pipeline.NewGraph(p)
	require.NoError(t, err)

	// lint and build are both ready immediately; declaration order wins.
	assert.Equal(t, []string{"lint", "build", "test", "package"}, g.TopoOrder())
}

func TestNewGraph_DependentDeclaredFirst(t *testing.T) {
	p := &pipeline.Pipeline{Jobs: []pipeline.Job{
		{Name: "package", Needs: []string{"build"}},
		{Name: "build"},
	}}

	g, err := pipeline.NewGraph(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "package"}, g.TopoOrder())
}

func TestNewGraph_UnknownNeed(t *testing.T) {
	p := &pipeline.Pipeline{Jobs: []pipeline.Job{
		{Name: "test", Needs: []string{"build"}},
	}}

	_, err := pipeline.NewGraph(p)
	require.ErrorIs(t, err, errors.ErrUnknownJob)
}

func TestNewGraph_DetectsCycle(t *testing.T) {
	p := &pipeline.Pipeline{Jobs: []pipeline.Job{
		{Name: "a", Needs: []string{"c"}},
		{Name: "b", Needs: []string{"a"}},
		{Name: "c", Needs: []string{"b"}},
	}}

	_, err := pipeline.NewGraph(p)
	require.ErrorIs(t, err, errors.ErrDependencyCycle)
}

func TestGraph_TopoOrderIsACopy(t *testing.T) {
	p := &pipeline.Pipeline{Jobs: []pipeline.Job{{Name: "a"}, {Name: "b"}}}

	g, err := pipeline.NewGraph(p)
	require.NoError(t, err)

	order := g.TopoOrder()
	order[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, g.TopoOrder())
}
