package cpm

import (
	"fmt"
	"slices"

	"github.com/gammazero/toposort"

	"github.com/joshharrison/pertloom/internal/graph"
)

// AssignRanks computes the rank of every vertex: 0 for α, and for any other
// vertex one more than the highest rank among its predecessors. The network
// must already have passed the cycle check.
func AssignRanks(n *graph.Network) (Ranks, error) {
	order, err := topoOrder(n)
	if err != nil {
		return nil, err
	}

	ranks := make(Ranks, len(order))
	for _, v := range order {
		r := 0
		for _, p := range n.Predecessors(v) {
			if ranks[p]+1 > r {
				r = ranks[p] + 1
			}
		}
		ranks[v] = r
	}
	return ranks, nil
}

// topoOrder returns the network's vertices in a topological order.
func topoOrder(n *graph.Network) ([]graph.Vertex, error) {
	edges := make([]toposort.Edge, 0, n.ArcCount())
	for _, arc := range n.Arcs() {
		edges = append(edges, toposort.Edge{arc.From, arc.To})
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}

	order := make([]graph.Vertex, 0, len(sorted))
	for _, node := range sorted {
		order = append(order, node.(graph.Vertex))
	}
	if len(order) != n.VertexCount() {
		return nil, fmt.Errorf("%w: %d of %d vertices ordered", ErrCycle, len(order), n.VertexCount())
	}
	return order, nil
}

// ByRank returns the ranked vertices sorted by rank, then vertex order.
// Vertices of equal rank are independent, so any order among them would do;
// the tie-break keeps output deterministic.
func ByRank(ranks Ranks) []graph.Vertex {
	order := make([]graph.Vertex, 0, len(ranks))
	for v := range ranks {
		order = append(order, v)
	}
	slices.SortFunc(order, func(a, b graph.Vertex) int {
		if ranks[a] != ranks[b] {
			return ranks[a] - ranks[b]
		}
		return a.Compare(b)
	})
	return order
}
