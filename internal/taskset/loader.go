package taskset

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrMalformedRecord is returned when an input record cannot be parsed.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes a record the loader could not parse.
// Line is the 1-based line number for text input and the 1-based record
// index for JSON and YAML input; 0 means the document as a whole.
type MalformedRecordError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("malformed record: %s", e.Reason)
	}
	if e.Text == "" {
		return fmt.Sprintf("malformed record %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed record %d (%q): %s", e.Line, e.Text, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// LoadFile reads a task file, choosing the format from its extension:
// .json, .yaml/.yml, anything else is the line-oriented text format.
func LoadFile(path string) (*TaskSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var ts *TaskSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		ts, err = ParseJSON(data)
	case ".yaml", ".yml":
		ts, err = ParseYAML(data)
	default:
		ts, err = ParseText(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	slog.Debug("loaded task file", "path", path, "tasks", ts.Len())
	return ts, nil
}

// ParseText reads records of the form "id duration [pred1 pred2 ...]", one
// per line. Blank lines and lines starting with '#' are ignored.
func ParseText(r io.Reader) (*TaskSet, error) {
	var tasks []Task
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &MalformedRecordError{Line: lineNo, Text: line, Reason: "expected at least id and duration"}
		}

		nums := make([]int, len(fields))
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, &MalformedRecordError{Line: lineNo, Text: line, Reason: fmt.Sprintf("field %d is not an integer", i+1)}
			}
			nums[i] = n
		}

		tasks = append(tasks, newRecord(nums[0], nums[1], nums[2:]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan task records: %w", err)
	}

	return New(tasks)
}

// ParseJSON reads either a bare array of task objects or an object with a
// "tasks" array. Each object carries "id", "duration" and an optional
// "predecessors" array.
func ParseJSON(data []byte) (*TaskSet, error) {
	if !gjson.ValidBytes(data) {
		return nil, &MalformedRecordError{Reason: "invalid JSON"}
	}

	list := gjson.ParseBytes(data)
	if list.IsObject() {
		list = list.Get("tasks")
	}
	if !list.IsArray() {
		return nil, &MalformedRecordError{Reason: "expected an array of tasks"}
	}

	var tasks []Task
	for i, item := range list.Array() {
		rec := i + 1
		if !item.IsObject() {
			return nil, &MalformedRecordError{Line: rec, Text: item.Raw, Reason: "expected an object"}
		}

		id, ok := jsonInt(item.Get("id"))
		if !ok {
			return nil, &MalformedRecordError{Line: rec, Text: item.Raw, Reason: "id must be an integer"}
		}
		dur, ok := jsonInt(item.Get("duration"))
		if !ok {
			return nil, &MalformedRecordError{Line: rec, Text: item.Raw, Reason: "duration must be an integer"}
		}

		var preds []int
		if p := item.Get("predecessors"); p.Exists() {
			if !p.IsArray() {
				return nil, &MalformedRecordError{Line: rec, Text: item.Raw, Reason: "predecessors must be an array"}
			}
			for _, v := range p.Array() {
				n, ok := jsonInt(v)
				if !ok {
					return nil, &MalformedRecordError{Line: rec, Text: item.Raw, Reason: "predecessor ids must be integers"}
				}
				preds = append(preds, n)
			}
		}

		tasks = append(tasks, newRecord(id, dur, preds))
	}

	return New(tasks)
}

func jsonInt(r gjson.Result) (int, bool) {
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		return 0, false
	}
	return int(r.Int()), true
}

type yamlTask struct {
	ID           *int  `yaml:"id"`
	Duration     *int  `yaml:"duration"`
	Predecessors []int `yaml:"predecessors"`
}

// ParseYAML reads a document with a top-level "tasks" list.
func ParseYAML(data []byte) (*TaskSet, error) {
	var doc struct {
		Tasks []yamlTask `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedRecordError{Reason: err.Error()}
	}

	tasks := make([]Task, 0, len(doc.Tasks))
	for i, yt := range doc.Tasks {
		if yt.ID == nil {
			return nil, &MalformedRecordError{Line: i + 1, Reason: "missing id"}
		}
		if yt.Duration == nil {
			return nil, &MalformedRecordError{Line: i + 1, Reason: "missing duration"}
		}
		tasks = append(tasks, newRecord(*yt.ID, *yt.Duration, yt.Predecessors))
	}

	return New(tasks)
}

func newRecord(id, duration int, preds []int) Task {
	t := Task{ID: id, Duration: duration}
	if len(preds) > 0 {
		t.Predecessors = append([]int(nil), preds...)
		if d := dedupe(preds); len(d) != len(preds) {
			slog.Debug("collapsed duplicate predecessors", "task", id, "given", len(preds), "kept", len(d))
		}
	}
	return t
}
