package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/taskset"
)

// DefaultDir is the state directory used when the config does not set one.
const DefaultDir = ".pertloom"

const (
	runsDir    = "runs"
	latestFile = "latest"
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 6
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrNoRuns      = errors.New("no archived runs")
	ErrInvalidID   = errors.New("invalid run id")
)

// Run is an archived analysis.
type Run struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	CreatedAt time.Time   `json:"created_at"`
	Export    *cpm.Export `json:"analysis"`
}

// Summary is the short form of a run listed by history.
type Summary struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
	Tasks         int       `json:"tasks"`
	TotalDuration int       `json:"total_duration"`
	Valid         bool      `json:"valid"`
}

// TaskSet rebuilds the task set the run was computed from.
func (r *Run) TaskSet() (*taskset.TaskSet, error) {
	if r.Export == nil {
		return nil, fmt.Errorf("run %s has no analysis", r.ID)
	}
	return taskset.New(r.Export.Tasks)
}

func (r *Run) summary() Summary {
	s := Summary{ID: r.ID, Source: r.Source, CreatedAt: r.CreatedAt}
	if r.Export != nil {
		s.Tasks = len(r.Export.Tasks)
		s.TotalDuration = r.Export.TotalDuration
		s.Valid = r.Export.Validation.OK()
	}
	return s
}

// Store archives runs under a directory:
//
//	<dir>/runs/<id>.json
//	<dir>/latest
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// Open returns a Store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(filepath.Join(dir, runsDir), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string { return s.dir }

// NewRunID returns a sortable id: a UTC timestamp followed by a random suffix.
func NewRunID(now time.Time) (string, error) {
	suffix, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return now.UTC().Format("20060102-150405") + "-" + suffix, nil
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (s *Store) runPath(id string) string {
	return filepath.Join(s.dir, runsDir, id+".json")
}

// Save archives the analysis of source and points latest at it.
func (s *Store) Save(source string, result *cpm.Result) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id, err := NewRunID(now)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:        id,
		Source:    source,
		CreatedAt: now,
		Export:    result.Export(),
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run: %w", err)
	}
	if err := os.WriteFile(s.runPath(id), data, 0644); err != nil {
		return nil, fmt.Errorf("write run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, latestFile), []byte(id+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write latest pointer: %w", err)
	}

	slog.Debug("run archived", "id", id, "source", source)
	return run, nil
}

// Load reads an archived run by id.
func (s *Store) Load(id string) (*Run, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	data, err := os.ReadFile(s.runPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", id, err)
	}
	return &run, nil
}

// LoadLatest reads the run the latest pointer refers to.
func (s *Store) LoadLatest() (*Run, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, latestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("read latest pointer: %w", err)
	}
	return s.Load(strings.TrimSpace(string(data)))
}

// List returns summaries of every archived run, newest first. Unreadable
// entries are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, runsDir))
	if err != nil {
		return nil, fmt.Errorf("read runs dir: %w", err)
	}

	var out []Summary
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		run, err := s.Load(id)
		if err != nil {
			slog.Warn("skipping unreadable run", "id", id, "err", err)
			continue
		}
		out = append(out, run.summary())
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Clean removes the state directory.
func (s *Store) Clean() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(s.dir)
}
