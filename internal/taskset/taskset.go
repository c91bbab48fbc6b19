package taskset

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateTask is returned when two records share a task ID.
	ErrDuplicateTask = errors.New("duplicate task id")
	// ErrInvalidID is returned for task IDs that are not strictly positive.
	ErrInvalidID = errors.New("invalid task id")
)

// Task is a single activity of the project: an ID, a duration and the IDs of
// the tasks that must finish before it can start.
type Task struct {
	ID           int   `json:"id" yaml:"id"`
	Duration     int   `json:"duration" yaml:"duration"`
	Predecessors []int `json:"predecessors,omitempty" yaml:"predecessors,omitempty"`
}

// TaskSet is an immutable, ID-ordered collection of tasks.
type TaskSet struct {
	tasks []Task
	index map[int]int
	succ  map[int][]int
}

// New builds a TaskSet from loader records. Predecessor lists are treated as
// sets: duplicates are collapsed and the list is sorted.
func New(tasks []Task) (*TaskSet, error) {
	s := &TaskSet{
		tasks: make([]Task, 0, len(tasks)),
		index: make(map[int]int, len(tasks)),
		succ:  make(map[int][]int),
	}

	for _, t := range tasks {
		if t.ID <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidID, t.ID)
		}
		if _, ok := s.index[t.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTask, t.ID)
		}
		s.index[t.ID] = -1
		s.tasks = append(s.tasks, Task{
			ID:           t.ID,
			Duration:     t.Duration,
			Predecessors: dedupe(t.Predecessors),
		})
	}

	sort.Slice(s.tasks, func(i, j int) bool { return s.tasks[i].ID < s.tasks[j].ID })
	for i, t := range s.tasks {
		s.index[t.ID] = i
		for _, p := range t.Predecessors {
			s.succ[p] = append(s.succ[p], t.ID)
		}
	}

	return s, nil
}

// MustNew is New for fixtures known to be well formed.
func MustNew(tasks ...Task) *TaskSet {
	s, err := New(tasks)
	if err != nil {
		panic(err)
	}
	return s
}

func dedupe(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of tasks.
func (s *TaskSet) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the tasks in ascending ID order.
func (s *TaskSet) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		t.Predecessors = append([]int(nil), t.Predecessors...)
		out[i] = t
	}
	return out
}

// IDs returns all task IDs in ascending order.
func (s *TaskSet) IDs() []int {
	ids := make([]int, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	return ids
}

// Get looks up a task by ID.
func (s *TaskSet) Get(id int) (Task, bool) {
	i, ok := s.index[id]
	if !ok {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Has reports whether the set contains the task.
func (s *TaskSet) Has(id int) bool {
	_, ok := s.index[id]
	return ok
}

// Duration returns the duration of a task, or 0 when the ID is unknown.
func (s *TaskSet) Duration(id int) int {
	t, ok := s.Get(id)
	if !ok {
		return 0
	}
	return t.Duration
}

// Successors returns the IDs of the tasks listing id as a predecessor, in
// ascending order.
func (s *TaskSet) Successors(id int) []int {
	return s.succ[id]
}
