package pipeline

import "fmt"

// EvalInput carries the run-level inputs to gating evaluation.
type EvalInput struct {
	// Ref is the triggering git reference.
	Ref Ref

	// Override forces jobs to run past failed or skipped predecessors.
	// It never bypasses the release_tag rule or an unknown reference.
	Override bool
}

// Evaluate applies every job's gating rule in topological order and
// returns the per-job decisions.
//
// Known outcomes are taken from results; a job without a recorded result
// is assumed to succeed when its own decision says it executes, and to
// be skipped otherwise. With an empty results map this yields the
// dry-run plan for the given reference.
func Evaluate(g *Graph, in EvalInput, results map[string]Status) map[string]Decision {
	statuses := make(map[string]Status, len(g.order))
	decisions := make(map[string]Decision, len(g.order))

	for _, name := range g.TopoOrder() {
		job, _ := g.Job(name)
		dec := decide(g.pipeline, job, in, statuses)
		decisions[name] = dec

		if status, ok := results[name]; ok {
			statuses[name] = status
		} else if dec.Execute && dec.MainSteps {
			statuses[name] = StatusSuccess
		} else if dec.Execute {
			// always-rule job that skipped its main steps still completes.
			statuses[name] = StatusSuccess
		} else {
			statuses[name] = StatusSkipped
		}
	}

	return decisions
}

// decide applies a single job's gating rule against its predecessors'
// statuses.
func decide(p *Pipeline, job *Job, in EvalInput, statuses map[string]Status) Decision {
	predsOK, blocker := predecessorsSucceeded(job, statuses)

	switch job.EffectiveRule() {
	case RuleOnSuccess:
		if predsOK {
			return Decision{Execute: true, MainSteps: true, Reason: "all predecessors succeeded"}
		}
		if in.Override {
			return Decision{Execute: true, MainSteps: true,
				Reason: fmt.Sprintf("override set, ignoring %s", blocker)}
		}
		return Decision{Reason: blocker}

	case RuleAlways:
		if predsOK {
			return Decision{Execute: true, MainSteps: true, Reason: "all predecessors succeeded"}
		}
		if in.Override {
			return Decision{Execute: true, MainSteps: true,
				Reason: fmt.Sprintf("override set, ignoring %s", blocker)}
		}
		return Decision{Execute: true, MainSteps: false,
			Reason: fmt.Sprintf("job always starts, main steps gated: %s", blocker)}

	case RuleProtectedRef:
		onProtected := in.Ref.IsBranch() && in.Ref.Name() == p.PrimaryBranch ||
			in.Ref.IsReleaseTag(p.TagPrefix)
		if !onProtected {
			return Decision{Reason: fmt.Sprintf("ref %q is not the primary branch or a release tag", in.Ref)}
		}
		if predsOK {
			return Decision{Execute: true, MainSteps: true, Reason: "protected ref, all predecessors succeeded"}
		}
		if in.Override {
			return Decision{Execute: true, MainSteps: true,
				Reason: fmt.Sprintf("protected ref, override set, ignoring %s", blocker)}
		}
		return Decision{Reason: blocker}

	case RuleReleaseTag:
		// Override intentionally has no effect here: releases only ever
		// happen from a release tag with a fully green upstream.
		if !in.Ref.IsReleaseTag(p.TagPrefix) {
			return Decision{Reason: fmt.Sprintf("ref %q is not a %s* release tag", in.Ref, p.TagPrefix)}
		}
		if !predsOK {
			return Decision{Reason: blocker}
		}
		return Decision{Execute: true, MainSteps: true, Reason: "release tag, all predecessors succeeded"}

	default:
		return Decision{Reason: fmt.Sprintf("unknown rule %q", job.Rule)}
	}
}

// predecessorsSucceeded reports whether every needed job finished
// success. When not, blocker names the first offending predecessor in
// needs order.
func predecessorsSucceeded(job *Job, statuses map[string]Status) (ok bool, blocker string) {
	for _, need := range job.Needs {
		status, found := statuses[need]
		if !found {
			return false, fmt.Sprintf("predecessor %q has not run", need)
		}
		if status != StatusSuccess {
			return false, fmt.Sprintf("predecessor %q finished %s", need, status)
		}
	}
	return true, ""
}
