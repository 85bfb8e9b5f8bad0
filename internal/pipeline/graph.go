package pipeline

import (
	"strings"

	"github.com/gantryci/gantry/internal/errors"
)

// Graph is the pipeline's dependency structure with a precomputed
// deterministic topological order.
type Graph struct {
	pipeline *Pipeline
	order    []string
}

// NewGraph builds the dependency graph and computes the topological
// order. Among jobs whose dependencies are all satisfied, declaration
// order decides which runs first, so the order is stable across runs.
//
// Returns ErrUnknownJob for an unresolvable needs entry and
// ErrDependencyCycle when the jobs cannot be ordered.
func NewGraph(p *Pipeline) (*Graph, error) {
	indegree := make(map[string]int, len(p.Jobs))
	dependents := make(map[string][]string, len(p.Jobs))

	for i := range p.Jobs {
		indegree[p.Jobs[i].Name] = 0
	}
	for i := range p.Jobs {
		job := &p.Jobs[i]
		for _, need := range job.Needs {
			if _, ok := indegree[need]; !ok {
				return nil, errors.Wrapf(errors.ErrUnknownJob,
					"job %q needs %q", job.Name, need)
			}
			indegree[job.Name]++
			dependents[need] = append(dependents[need], job.Name)
		}
	}

	// Kahn's algorithm over the declaration-ordered job list. Scanning
	// the list front to back every round keeps ties in declaration order.
	order := make([]string, 0, len(p.Jobs))
	done := make(map[string]bool, len(p.Jobs))
	for len(order) < len(p.Jobs) {
		progressed := false
		for i := range p.Jobs {
			name := p.Jobs[i].Name
			if done[name] || indegree[name] != 0 {
				continue
			}
			done[name] = true
			order = append(order, name)
			for _, dep := range dependents[name] {
				indegree[dep]--
			}
			progressed = true
		}
		if !progressed {
			remaining := make([]string, 0)
			for i := range p.Jobs {
				if !done[p.Jobs[i].Name] {
					remaining = append(remaining, p.Jobs[i].Name)
				}
			}
			return nil, errors.Wrapf(errors.ErrDependencyCycle,
				"jobs %s cannot be ordered", strings.Join(remaining, ", "))
		}
	}

	return &Graph{pipeline: p, order: order}, nil
}

// TopoOrder returns the job names in execution order.
func (g *Graph) TopoOrder() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Pipeline returns the underlying pipeline definition.
func (g *Graph) Pipeline() *Pipeline {
	return g.pipeline
}

// Job returns the declared job with the given name.
func (g *Graph) Job(name string) (*Job, bool) {
	return g.pipeline.Job(name)
}

// findCycle reports one dependency cycle as a job name path, or nil when
// the graph is acyclic. Used by Validate for a issue message naming the
// jobs involved; NewGraph performs its own detection.
func findCycle(p *Pipeline) []string {
	const (
		unvisited = 0
		visiting  = 1
		finished  = 2
	)
	state := make(map[string]int, len(p.Jobs))

	var path []string
	var walk func(name string) []string
	walk = func(name string) []string {
		state[name] = visiting
		path = append(path, name)

		job, _ := p.Job(name)
		for _, need := range job.Needs {
			switch state[need] {
			case visiting:
				// Close the loop for the message.
				for i, n := range path {
					if n == need {
						return append(append([]string{}, path[i:]...), need)
					}
				}
				return []string{need, name, need}
			case unvisited:
				if cycle := walk(need); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		state[name] = finished
		return nil
	}

	for i := range p.Jobs {
		if state[p.Jobs[i].Name] == unvisited {
			path = path[:0]
			if cycle := walk(p.Jobs[i].Name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
