package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/pertloom/internal/config"
	"github.com/joshharrison/pertloom/internal/ui"
)

const diamondTable = `# id duration predecessors
1 3
2 2 1
3 4 1
4 1 2 3
`

const cycleTable = `1 1 2
2 1 1
`

func writeTable(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// execute runs the root command in a scratch working directory so the
// default config and state paths never touch the repository.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	flagJSON, flagNoColor, flagVerbose, flagSave = false, false, false, false
	flagConfig, flagFormat = "", "ascii"
	cfg = config.Default()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestScheduleCommand(t *testing.T) {
	path := writeTable(t, t.TempDir(), "table1.txt", diamondTable)

	out, err := execute(t, "schedule", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Project duration: 8")
	assert.Contains(t, out, "α → 1 → 3 → 4 → ω")
}

func TestScheduleCommand_JSON(t *testing.T) {
	path := writeTable(t, t.TempDir(), "table1.txt", diamondTable)

	out, err := execute(t, "schedule", "--json", path)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, float64(8), parsed["total_duration"])
	assert.Equal(t, float64(6), parsed["arc_count"])
}

func TestScheduleCommand_InvalidNetwork(t *testing.T) {
	path := writeTable(t, t.TempDir(), "table2.txt", cycleTable)

	out, err := execute(t, "schedule", path)
	require.Error(t, err)
	assert.True(t, isValidationFailure(err))
	assert.Contains(t, out, "cycle detected")
	assert.NotContains(t, out, "Project duration")
}

func TestScheduleCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "schedule", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.False(t, isValidationFailure(err))
}

func TestSaveHistoryShow(t *testing.T) {
	path := writeTable(t, t.TempDir(), "table1.txt", diamondTable)
	stateDir := filepath.Join(t.TempDir(), "state")
	cfgPath := writeTable(t, t.TempDir(), "pertloom.toml", `state_dir = "`+filepath.ToSlash(stateDir)+`"`)

	out, err := execute(t, "--config", cfgPath, "schedule", "--save", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved as")

	out, err = execute(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Archived runs (1)")
	assert.Contains(t, out, path)

	out, err = execute(t, "--config", cfgPath, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Project duration: 8")
}

func TestGraphCommand_Formats(t *testing.T) {
	path := writeTable(t, t.TempDir(), "table1.txt", diamondTable)

	out, err := execute(t, "graph", "--format", "dot", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph pertloom {"))

	out, err = execute(t, "graph", "--format", "matrix", path)
	require.NoError(t, err)
	assert.Contains(t, out, "| α ")

	out, err = execute(t, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rank 4")

	_, err = execute(t, "graph", "--format", "svg", path)
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, `data_dir = "Fichiers_a_test"`)
	assert.Contains(t, out, "viewer_port = 7272")
}

func TestRunInteractive(t *testing.T) {
	ui.SetEnabled(false)
	cfg = config.Default()
	flagSave = false

	dir := t.TempDir()
	writeTable(t, dir, "table1.txt", diamondTable)
	writeTable(t, dir, "table2.txt", cycleTable)
	writeTable(t, dir, "table3.txt", "1 x\n")

	in := strings.NewReader("1\n\nabc\n9\n3\n2\nq\n1\n")
	var out bytes.Buffer
	require.NoError(t, runInteractive(in, &out, dir, config.Default()))
	output := out.String()

	assert.Contains(t, output, "Project duration: 8")
	assert.Contains(t, output, `"abc" is not a table number`)
	assert.Contains(t, output, "table9.txt")
	assert.Contains(t, output, "malformed")
	assert.Contains(t, output, "cycle detected")
	assert.Contains(t, output, "Bye.")
	// Input after q is never read.
	assert.Equal(t, 1, strings.Count(output, "Project duration: 8"))
}

func TestRunInteractive_EOF(t *testing.T) {
	ui.SetEnabled(false)
	var out bytes.Buffer
	require.NoError(t, runInteractive(strings.NewReader(""), &out, t.TempDir(), config.Default()))
}

func TestRunInteractive_FilePatternFromConfig(t *testing.T) {
	ui.SetEnabled(false)
	c := config.Default()
	c.FilePattern = "case_%d.txt"

	dir := t.TempDir()
	writeTable(t, dir, "case_5.txt", diamondTable)

	var out bytes.Buffer
	require.NoError(t, runInteractive(strings.NewReader("5\nq\n"), &out, dir, c))
	assert.Contains(t, out.String(), "Project Schedule: "+filepath.Join(dir, "case_5.txt"))
	assert.Contains(t, out.String(), "Project duration: 8")
}

func TestGraphCommand_AsciiInvalidPrintsChecks(t *testing.T) {
	path := writeTable(t, t.TempDir(), "table2.txt", cycleTable)

	out, err := execute(t, "graph", path)
	require.Error(t, err)
	assert.True(t, isValidationFailure(err))
	assert.Contains(t, out, "cycle detected: 1 → 2 → 1")
	assert.NotContains(t, out, "Rank")
}

func TestHistoryClean(t *testing.T) {
	path := writeTable(t, t.TempDir(), "table1.txt", diamondTable)
	stateDir := filepath.Join(t.TempDir(), "state")
	cfgPath := writeTable(t, t.TempDir(), "pertloom.toml", `state_dir = "`+filepath.ToSlash(stateDir)+`"`)

	_, err := execute(t, "--config", cfgPath, "schedule", "--save", path)
	require.NoError(t, err)

	out, err := execute(t, "--config", cfgPath, "history", "--clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed archive")
	_, err = os.Stat(stateDir)
	assert.True(t, os.IsNotExist(err))

	out, err = execute(t, "--config", cfgPath, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No archived runs")
}
