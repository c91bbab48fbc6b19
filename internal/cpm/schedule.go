package cpm

import (
	"fmt"

	"github.com/joshharrison/pertloom/internal/graph"
)

// ComputeSchedule runs the forward and backward passes over order, which
// must list every vertex of the network with each vertex after all of its
// predecessors (see ByRank).
//
// Forward: earliest(α) = 0, earliest(v) = max over predecessors p of
// earliest(p) + duration(p). Backward: latest(ω) = earliest(ω), latest(v) =
// min over successors s of latest(s), minus duration(v).
func ComputeSchedule(n *graph.Network, order []graph.Vertex) (Schedule, error) {
	if err := checkOrder(n, order); err != nil {
		return Schedule{}, err
	}

	s := Schedule{
		Earliest: make(map[graph.Vertex]int, len(order)),
		Latest:   make(map[graph.Vertex]int, len(order)),
	}

	// Forward pass: compute earliest dates
	for _, v := range order {
		es := 0
		for i, p := range n.Predecessors(v) {
			ep, ok := s.Earliest[p]
			if !ok {
				return Schedule{}, fmt.Errorf("%w: %s before predecessor %s", ErrOrder, v, p)
			}
			if c := ep + n.Duration(p); i == 0 || c > es {
				es = c
			}
		}
		s.Earliest[v] = es
	}

	end := graph.End()
	s.Latest[end] = s.Earliest[end]

	// Backward pass: compute latest dates in reverse rank order
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		if v.IsEnd() {
			continue
		}

		succs := n.Successors(v)
		if len(succs) == 0 {
			s.Latest[v] = s.Latest[end] - n.Duration(v)
			continue
		}

		minLatest := 0
		for j, succ := range succs {
			ls, ok := s.Latest[succ]
			if !ok {
				return Schedule{}, fmt.Errorf("%w: %s before successor %s", ErrOrder, v, succ)
			}
			if j == 0 || ls < minLatest {
				minLatest = ls
			}
		}
		s.Latest[v] = minLatest - n.Duration(v)
	}

	if err := verifySchedule(order, s); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// verifySchedule checks latest >= earliest for every vertex. A violation
// means the network itself is malformed.
func verifySchedule(order []graph.Vertex, s Schedule) error {
	for _, v := range order {
		if s.Latest[v] < s.Earliest[v] {
			return &InconsistentScheduleError{Vertex: v, Earliest: s.Earliest[v], Latest: s.Latest[v]}
		}
	}
	return nil
}

// checkOrder verifies that order holds each vertex of n exactly once.
func checkOrder(n *graph.Network, order []graph.Vertex) error {
	if len(order) != n.VertexCount() {
		return fmt.Errorf("%w: %d vertices given, network has %d", ErrOrder, len(order), n.VertexCount())
	}
	seen := make(map[graph.Vertex]bool, len(order))
	for _, v := range order {
		if n.Index(v) < 0 || seen[v] {
			return fmt.Errorf("%w: unexpected vertex %s", ErrOrder, v)
		}
		seen[v] = true
	}
	return nil
}
