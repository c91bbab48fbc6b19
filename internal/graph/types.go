package graph

import (
	"fmt"
	"math"
	"strconv"

	"github.com/joshharrison/pertloom/internal/taskset"
)

// Kind distinguishes the synthetic start and end vertices from task vertices.
type Kind uint8

const (
	KindStart Kind = iota
	KindTask
	KindEnd
)

// Vertex is a node of the scheduling network: α, a task, or ω.
// ID is only meaningful for KindTask.
type Vertex struct {
	Kind Kind
	ID   int
}

// Start returns the synthetic start vertex α.
func Start() Vertex { return Vertex{Kind: KindStart} }

// End returns the synthetic end vertex ω.
func End() Vertex { return Vertex{Kind: KindEnd} }

// TaskVertex returns the vertex of a task.
func TaskVertex(id int) Vertex { return Vertex{Kind: KindTask, ID: id} }

func (v Vertex) IsStart() bool { return v.Kind == KindStart }
func (v Vertex) IsEnd() bool   { return v.Kind == KindEnd }
func (v Vertex) IsTask() bool  { return v.Kind == KindTask }

// Compare orders α before every task, tasks by ID, and ω last.
func (v Vertex) Compare(o Vertex) int {
	if v.Kind != o.Kind {
		if v.Kind < o.Kind {
			return -1
		}
		return 1
	}
	switch {
	case v.ID < o.ID:
		return -1
	case v.ID > o.ID:
		return 1
	}
	return 0
}

func (v Vertex) String() string {
	switch v.Kind {
	case KindStart:
		return "α"
	case KindEnd:
		return "ω"
	default:
		return strconv.Itoa(v.ID)
	}
}

// MarshalText lets vertices serve as JSON object keys.
func (v Vertex) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Vertex) UnmarshalText(b []byte) error {
	s := string(b)
	switch s {
	case "α", "alpha":
		*v = Start()
	case "ω", "omega":
		*v = End()
	default:
		id, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("parse vertex %q: %w", s, err)
		}
		*v = TaskVertex(id)
	}
	return nil
}

// NoArc marks an absent arc in Matrix.
const NoArc = math.MinInt

// Arc is a weighted edge of the network.
type Arc struct {
	From   Vertex `json:"from"`
	To     Vertex `json:"to"`
	Weight int    `json:"weight"`
}

// Network is the activity-on-arc graph derived from a TaskSet.
type Network struct {
	Tasks     *taskset.TaskSet
	Vertices  []Vertex            // α, tasks by ID, ω
	Adj       map[Vertex][]Vertex // vertex -> successors
	RevAdj    map[Vertex][]Vertex // vertex -> predecessors
	Roots     []int               // tasks without predecessors
	Terminals []int               // tasks without successors

	weights map[[2]Vertex]int
}
