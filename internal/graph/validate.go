package graph

import "github.com/joshharrison/pertloom/internal/taskset"

// Validation reports the two checks a network must pass before it can be
// scheduled. It only reports; halting is up to the caller.
type Validation struct {
	NegativeDuration bool     `json:"negative_duration"`
	NegativeTasks    []int    `json:"negative_tasks,omitempty"`
	Cycle            bool     `json:"cycle"`
	Unvisited        []Vertex `json:"unvisited,omitempty"`
}

// OK reports whether both checks passed.
func (v Validation) OK() bool {
	return !v.NegativeDuration && !v.Cycle
}

// Validate runs the negative-duration scan and the cycle check.
func Validate(n *Network) Validation {
	var v Validation
	v.NegativeDuration, v.NegativeTasks = HasNegativeDuration(n.Tasks)
	v.Cycle, v.Unvisited = DetectCycle(n)
	return v
}

// HasNegativeDuration scans the tasks for durations below zero and returns
// the offending IDs.
func HasNegativeDuration(ts *taskset.TaskSet) (bool, []int) {
	var neg []int
	for _, id := range ts.IDs() {
		if ts.Duration(id) < 0 {
			neg = append(neg, id)
		}
	}
	return len(neg) > 0, neg
}

// DetectCycle runs Kahn's algorithm over the network. If fewer vertices than
// the network holds can be released, a cycle exists; the vertices left
// behind are returned in vertex order.
func DetectCycle(n *Network) (bool, []Vertex) {
	inDegree := make(map[Vertex]int, len(n.Vertices))
	var queue []Vertex
	for _, v := range n.Vertices {
		inDegree[v] = len(n.RevAdj[v])
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}

	visited := make(map[Vertex]bool, len(n.Vertices))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited[node] = true

		for _, succ := range n.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(visited) == len(n.Vertices) {
		return false, nil
	}

	var unvisited []Vertex
	for _, v := range n.Vertices {
		if !visited[v] {
			unvisited = append(unvisited, v)
		}
	}
	return true, unvisited
}
