package cpm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshharrison/pertloom/internal/graph"
)

var (
	// ErrCycle is returned when no topological order exists.
	ErrCycle = errors.New("network has a cycle")
	// ErrInvalidNetwork is returned by Analyze when validation fails.
	ErrInvalidNetwork = errors.New("invalid network")
	// ErrInconsistentSchedule is returned when a vertex ends up with a latest
	// date before its earliest date.
	ErrInconsistentSchedule = errors.New("inconsistent schedule")
	// ErrOrder is returned when the vertex sequence given to ComputeSchedule
	// is not a complete rank order of the network.
	ErrOrder = errors.New("vertex order does not respect precedence")
)

// ValidationError carries the failed checks of a network.
type ValidationError struct {
	Validation graph.Validation
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Validation.NegativeDuration {
		parts = append(parts, fmt.Sprintf("negative duration on tasks %v", e.Validation.NegativeTasks))
	}
	if e.Validation.Cycle {
		parts = append(parts, fmt.Sprintf("cycle among %v", e.Validation.Unvisited))
	}
	return "invalid network: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidNetwork
}

// InconsistentScheduleError reports a vertex whose latest date precedes its
// earliest date.
type InconsistentScheduleError struct {
	Vertex   graph.Vertex
	Earliest int
	Latest   int
}

func (e *InconsistentScheduleError) Error() string {
	return fmt.Sprintf("inconsistent schedule: vertex %s has latest %d before earliest %d", e.Vertex, e.Latest, e.Earliest)
}

func (e *InconsistentScheduleError) Is(target error) bool {
	return target == ErrInconsistentSchedule
}
