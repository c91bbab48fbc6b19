package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/joshharrison/pertloom/internal/taskset"
)

// ErrUnresolvedPredecessor is returned when a task names a predecessor that
// is not part of the TaskSet.
var ErrUnresolvedPredecessor = errors.New("unresolved predecessor")

// UnresolvedPredecessorError identifies the offending task and reference.
type UnresolvedPredecessorError struct {
	Task        int
	Predecessor int
}

func (e *UnresolvedPredecessorError) Error() string {
	return fmt.Sprintf("task %d: unresolved predecessor %d", e.Task, e.Predecessor)
}

func (e *UnresolvedPredecessorError) Is(target error) bool {
	return target == ErrUnresolvedPredecessor
}

// Build constructs the scheduling network of a TaskSet:
//
//	α -> t   weight 0            for every task without predecessors
//	p -> t   weight duration(p)  for every predecessor p of t
//	t -> ω   weight duration(t)  for every task without successors
//
// An empty TaskSet yields the single arc α -> ω with weight 0.
func Build(ts *taskset.TaskSet) (*Network, error) {
	n := &Network{
		Tasks:   ts,
		Adj:     make(map[Vertex][]Vertex),
		RevAdj:  make(map[Vertex][]Vertex),
		weights: make(map[[2]Vertex]int),
	}

	tasks := ts.Tasks()
	n.Vertices = make([]Vertex, 0, len(tasks)+2)
	n.Vertices = append(n.Vertices, Start())
	for _, t := range tasks {
		n.Vertices = append(n.Vertices, TaskVertex(t.ID))
	}
	n.Vertices = append(n.Vertices, End())

	for _, t := range tasks {
		v := TaskVertex(t.ID)
		if len(t.Predecessors) == 0 {
			n.addArc(Start(), v, 0)
			n.Roots = append(n.Roots, t.ID)
			continue
		}
		for _, p := range t.Predecessors {
			if !ts.Has(p) {
				return nil, &UnresolvedPredecessorError{Task: t.ID, Predecessor: p}
			}
			n.addArc(TaskVertex(p), v, ts.Duration(p))
		}
	}

	for _, t := range tasks {
		if len(ts.Successors(t.ID)) == 0 {
			n.addArc(TaskVertex(t.ID), End(), t.Duration)
			n.Terminals = append(n.Terminals, t.ID)
		}
	}

	if len(tasks) == 0 {
		n.addArc(Start(), End(), 0)
	}

	// Sort adjacency lists for deterministic ordering
	for k := range n.Adj {
		slices.SortFunc(n.Adj[k], Vertex.Compare)
	}
	for k := range n.RevAdj {
		slices.SortFunc(n.RevAdj[k], Vertex.Compare)
	}

	return n, nil
}

func (n *Network) addArc(from, to Vertex, weight int) {
	key := [2]Vertex{from, to}
	if _, ok := n.weights[key]; ok {
		return
	}
	n.weights[key] = weight
	n.Adj[from] = append(n.Adj[from], to)
	n.RevAdj[to] = append(n.RevAdj[to], from)
}

// VertexCount returns the number of tasks plus α and ω.
func (n *Network) VertexCount() int {
	return len(n.Vertices)
}

// ArcCount returns the number of arcs in the network.
func (n *Network) ArcCount() int {
	return len(n.weights)
}

// Weight returns the weight of the arc from -> to, and false if there is none.
func (n *Network) Weight(from, to Vertex) (int, bool) {
	w, ok := n.weights[[2]Vertex{from, to}]
	return w, ok
}

// Successors returns the out-neighbours of v.
func (n *Network) Successors(v Vertex) []Vertex {
	return n.Adj[v]
}

// Predecessors returns the in-neighbours of v.
func (n *Network) Predecessors(v Vertex) []Vertex {
	return n.RevAdj[v]
}

// Duration is the work carried by a vertex: the task's duration, 0 for α and ω.
func (n *Network) Duration(v Vertex) int {
	if !v.IsTask() {
		return 0
	}
	return n.Tasks.Duration(v.ID)
}

// Arcs lists every arc ordered by source then destination.
func (n *Network) Arcs() []Arc {
	arcs := make([]Arc, 0, len(n.weights))
	for _, from := range n.Vertices {
		for _, to := range n.Adj[from] {
			arcs = append(arcs, Arc{From: from, To: to, Weight: n.weights[[2]Vertex{from, to}]})
		}
	}
	return arcs
}

// Index returns the position of v in Vertices, or -1.
func (n *Network) Index(v Vertex) int {
	i, ok := slices.BinarySearchFunc(n.Vertices, v, Vertex.Compare)
	if !ok {
		return -1
	}
	return i
}

// Matrix returns the dense adjacency matrix indexed like Vertices. Cells
// without an arc hold NoArc.
func (n *Network) Matrix() [][]int {
	size := len(n.Vertices)
	m := make([][]int, size)
	for i := range m {
		m[i] = make([]int, size)
		for j := range m[i] {
			m[i][j] = NoArc
		}
	}
	for key, w := range n.weights {
		m[n.Index(key[0])][n.Index(key[1])] = w
	}
	return m
}

// FindCycle returns one cycle as a vertex path (first vertex repeated at the
// end), or nil if the network is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (n *Network) FindCycle() []Vertex {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[Vertex]int)
	parent := make(map[Vertex]Vertex)

	var dfs func(node Vertex) []Vertex
	dfs = func(node Vertex) []Vertex {
		color[node] = gray
		for _, next := range n.Adj[node] {
			if color[next] == gray {
				cycle := []Vertex{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				slices.Reverse(cycle)
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, v := range n.Vertices {
		if color[v] == white {
			if cycle := dfs(v); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
