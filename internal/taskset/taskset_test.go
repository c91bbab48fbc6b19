package taskset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SortsAndIndexes(t *testing.T) {
	ts, err := New([]Task{
		{ID: 3, Duration: 4, Predecessors: []int{1}},
		{ID: 1, Duration: 3},
		{ID: 2, Duration: 2, Predecessors: []int{1, 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, ts.Len())
	assert.Equal(t, []int{1, 2, 3}, ts.IDs())
	assert.Equal(t, []int{2, 3}, ts.Successors(1))
	assert.Empty(t, ts.Successors(3))

	two, ok := ts.Get(2)
	require.True(t, ok)
	assert.Equal(t, []int{1}, two.Predecessors, "duplicate predecessors collapse")
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New([]Task{{ID: 1, Duration: 1}, {ID: 1, Duration: 2}})
	assert.ErrorIs(t, err, ErrDuplicateTask)
}

func TestNew_RejectsNonPositiveIDs(t *testing.T) {
	_, err := New([]Task{{ID: 0, Duration: 1}})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNew_Empty(t *testing.T) {
	ts, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ts.Len())
	assert.Empty(t, ts.IDs())
}

// A missing task has no duration to report. The scheduler relies on this
// fallback only for vertices the graph builder has already resolved, so a 0
// here should never be observable in a valid network.
func TestDuration_MissingDefaultsToZero(t *testing.T) {
	ts := MustNew(Task{ID: 1, Duration: 5})
	assert.Equal(t, 5, ts.Duration(1))
	assert.Equal(t, 0, ts.Duration(42))
	assert.False(t, ts.Has(42))
}

func TestTasks_ReturnsCopy(t *testing.T) {
	ts := MustNew(Task{ID: 1, Duration: 1}, Task{ID: 2, Duration: 1, Predecessors: []int{1}})
	tasks := ts.Tasks()
	tasks[1].Predecessors[0] = 99

	got, _ := ts.Get(2)
	assert.Equal(t, []int{1}, got.Predecessors)
}

func TestParseText(t *testing.T) {
	input := `# id duration preds
1 3
2 2 1

3 4 1
4 1 2 3
`
	ts, err := ParseText(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, ts.IDs())
	four, _ := ts.Get(4)
	assert.Equal(t, 1, four.Duration)
	assert.Equal(t, []int{2, 3}, four.Predecessors)
}

func TestParseText_Malformed(t *testing.T) {
	cases := map[string]string{
		"single field":    "1\n",
		"bad id":          "x 3\n",
		"bad duration":    "1 three\n",
		"bad predecessor": "1 3\n2 2 one\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)

			var mre *MalformedRecordError
			require.True(t, errors.As(err, &mre))
			assert.Positive(t, mre.Line)
		})
	}
}

func TestParseText_NegativeDurationIsLoaded(t *testing.T) {
	ts, err := ParseText(strings.NewReader("1 -2\n"))
	require.NoError(t, err)
	assert.Equal(t, -2, ts.Duration(1))
}

func TestParseJSON(t *testing.T) {
	data := []byte(`[
		{"id": 1, "duration": 3},
		{"id": 2, "duration": 2, "predecessors": [1]}
	]`)
	ts, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ts.IDs())
	assert.Equal(t, []int{2}, ts.Successors(1))

	wrapped, err := ParseJSON([]byte(`{"tasks": [{"id": 7, "duration": 1}]}`))
	require.NoError(t, err)
	assert.Equal(t, []int{7}, wrapped.IDs())
}

func TestParseJSON_Malformed(t *testing.T) {
	cases := map[string]string{
		"invalid":          `[{"id": 1,`,
		"not an array":     `{"id": 1}`,
		"fractional id":    `[{"id": 1.5, "duration": 1}]`,
		"string duration":  `[{"id": 1, "duration": "3"}]`,
		"predecessors obj": `[{"id": 1, "duration": 3, "predecessors": {"a": 1}}]`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(input))
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`tasks:
  - id: 1
    duration: 3
  - id: 2
    duration: 2
    predecessors: [1]
`)
	ts, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ts.IDs())

	_, err = ParseYAML([]byte("tasks:\n  - id: 1\n"))
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestLoadFile_ByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"table1.txt": "1 3\n2 2 1\n",
		"plan.json":  `[{"id": 1, "duration": 3}, {"id": 2, "duration": 2, "predecessors": [1]}]`,
		"plan.yml":   "tasks:\n  - {id: 1, duration: 3}\n  - {id: 2, duration: 2, predecessors: [1]}\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))

		ts, err := LoadFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, []int{1, 2}, ts.IDs(), name)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
