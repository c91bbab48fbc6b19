package cpm

import (
	"fmt"

	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/taskset"
)

// Analyze performs critical path method analysis on a task set.
//
// Construction errors (an unresolved predecessor) are returned without a
// result. When validation fails, the partial result holding the network and
// the validation report is returned together with a *ValidationError, so the
// caller can display the checks and move on.
func Analyze(ts *taskset.TaskSet) (*Result, error) {
	n, err := graph.Build(ts)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}

	result := &Result{
		Network:    n,
		Validation: graph.Validate(n),
	}
	if !result.Validation.OK() {
		return result, &ValidationError{Validation: result.Validation}
	}

	ranks, err := AssignRanks(n)
	if err != nil {
		return result, fmt.Errorf("assign ranks: %w", err)
	}
	result.Ranks = ranks
	result.Order = ByRank(ranks)

	sched, err := ComputeSchedule(n, result.Order)
	if err != nil {
		return result, fmt.Errorf("compute schedule: %w", err)
	}
	result.Schedule = sched
	result.TotalDuration = sched.Earliest[graph.End()]

	result.Slacks = ComputeSlack(sched)
	result.CriticalPath = CriticalPath(result.Slacks, ranks)
	result.Levels = ComputeLevels(ranks, result.Slacks)

	for _, v := range result.Order {
		dur := n.Duration(v)
		es, ls := sched.Earliest[v], sched.Latest[v]
		result.Vertices = append(result.Vertices, VertexSchedule{
			Vertex:     v,
			Rank:       ranks[v],
			Duration:   dur,
			ES:         es,
			EF:         es + dur,
			LS:         ls,
			LF:         ls + dur,
			Slack:      result.Slacks[v],
			IsCritical: result.Slacks[v] == 0,
		})
	}

	return result, nil
}

// Scheduled reports whether the passes ran, i.e. validation succeeded.
func (r *Result) Scheduled() bool {
	return r.Ranks != nil && r.Schedule.Earliest != nil
}

// Export converts the result into its serialisable form.
func (r *Result) Export() *Export {
	e := &Export{
		VertexCount:   r.Network.VertexCount(),
		ArcCount:      r.Network.ArcCount(),
		Tasks:         r.Network.Tasks.Tasks(),
		Arcs:          r.Network.Arcs(),
		Validation:    r.Validation,
		Ranks:         r.Ranks,
		Earliest:      r.Schedule.Earliest,
		Latest:        r.Schedule.Latest,
		Slack:         r.Slacks,
		CriticalPath:  r.CriticalPath,
		TotalDuration: r.TotalDuration,
	}
	if e.CriticalPath == nil {
		e.CriticalPath = []graph.Vertex{}
	}
	return e
}
