package cpm

import (
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/taskset"
)

// Ranks maps every vertex to its longest-path distance, in arcs, from α.
type Ranks map[graph.Vertex]int

// Slacks maps every vertex to latest - earliest.
type Slacks map[graph.Vertex]int

// Schedule holds the earliest and latest dates of every vertex.
type Schedule struct {
	Earliest map[graph.Vertex]int
	Latest   map[graph.Vertex]int
}

// Result holds the complete critical path analysis of one TaskSet.
type Result struct {
	Network       *graph.Network
	Validation    graph.Validation
	Ranks         Ranks
	Order         []graph.Vertex // vertices by rank, then vertex order
	Schedule      Schedule
	Slacks        Slacks
	CriticalPath  []graph.Vertex // zero-slack vertices by rank, then vertex order
	Levels        []Level
	Vertices      []VertexSchedule
	TotalDuration int
}

// VertexSchedule is the per-vertex view of a schedule.
type VertexSchedule struct {
	Vertex     graph.Vertex
	Rank       int
	Duration   int
	ES, EF     int // earliest start/finish
	LS, LF     int // latest start/finish
	Slack      int
	IsCritical bool
}

// Level groups the vertices sharing a rank. Vertices of one level never
// depend on each other.
type Level struct {
	Rank       int
	Vertices   []graph.Vertex
	IsCritical bool // true if the level holds a critical vertex
}

// Export is the serialisable form of a Result.
type Export struct {
	VertexCount   int                  `json:"vertex_count"`
	ArcCount      int                  `json:"arc_count"`
	Tasks         []taskset.Task       `json:"tasks"`
	Arcs          []graph.Arc          `json:"arcs"`
	Validation    graph.Validation     `json:"validation"`
	Ranks         Ranks                `json:"ranks,omitempty"`
	Earliest      map[graph.Vertex]int `json:"earliest,omitempty"`
	Latest        map[graph.Vertex]int `json:"latest,omitempty"`
	Slack         Slacks               `json:"slack,omitempty"`
	CriticalPath  []graph.Vertex       `json:"critical_path"`
	TotalDuration int                  `json:"total_duration"`
}
