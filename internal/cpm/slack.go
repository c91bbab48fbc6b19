package cpm

import (
	"slices"

	"github.com/joshharrison/pertloom/internal/graph"
)

// ComputeSlack returns latest - earliest for every vertex present in both
// date maps.
func ComputeSlack(s Schedule) Slacks {
	slacks := make(Slacks, len(s.Earliest))
	for v, es := range s.Earliest {
		if ls, ok := s.Latest[v]; ok {
			slacks[v] = ls - es
		}
	}
	return slacks
}

// CriticalPath returns the zero-slack vertices sorted by rank, then vertex
// order. Disjoint critical paths come out merged into one sequence; no
// single chain is reconstructed.
func CriticalPath(slacks Slacks, ranks Ranks) []graph.Vertex {
	var critical []graph.Vertex
	for v, sl := range slacks {
		if sl == 0 {
			critical = append(critical, v)
		}
	}
	slices.SortFunc(critical, func(a, b graph.Vertex) int {
		if ranks[a] != ranks[b] {
			return ranks[a] - ranks[b]
		}
		return a.Compare(b)
	})
	return critical
}

// ComputeLevels groups vertices by rank, lowest rank first.
func ComputeLevels(ranks Ranks, slacks Slacks) []Level {
	var levels []Level
	for _, v := range ByRank(ranks) {
		r := ranks[v]
		if len(levels) == 0 || levels[len(levels)-1].Rank != r {
			levels = append(levels, Level{Rank: r})
		}
		lvl := &levels[len(levels)-1]
		lvl.Vertices = append(lvl.Vertices, v)
		if sl, ok := slacks[v]; ok && sl == 0 {
			lvl.IsCritical = true
		}
	}
	return levels
}
