package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/graph"
	"github.com/joshharrison/pertloom/internal/ui"
)

// Reporter renders a critical path analysis for the terminal.
type Reporter struct {
	Result *cpm.Result
	Source string // file the tasks were loaded from, for headers
}

// New creates a new Reporter.
func New(result *cpm.Result, source string) *Reporter {
	return &Reporter{Result: result, Source: source}
}

func label(v graph.Vertex) string {
	return ui.Vertex(v.String(), !v.IsTask())
}

func joinVertices(vs []graph.Vertex, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}

// PrintReport writes every section of the analysis in pipeline order. It
// stops after the checks when the network failed validation.
func (r *Reporter) PrintReport(w io.Writer) {
	title := "Project Schedule"
	if r.Source != "" {
		title += ": " + r.Source
	}
	fmt.Fprintf(w, "🎯 %s\n", ui.BoldCyan(title))
	fmt.Fprintln(w, ui.Cyan(strings.Repeat("═", 30)))

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("[Step 1] Constraints"))
	r.PrintConstraints(w)
	r.PrintArcs(w)

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("[Step 2] Adjacency matrix"))
	r.PrintMatrix(w)

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("[Step 3] Checks"))
	r.PrintChecks(w)
	if !r.Result.Scheduled() {
		fmt.Fprintf(w, "\n%s\n", ui.Yellow("Checks failed, scheduling skipped for this network."))
		return
	}

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("[Step 4] Ranks"))
	r.PrintRanks(w)

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("[Step 5] Earliest and latest dates"))
	r.PrintSchedule(w)

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("[Step 6] Slack"))
	r.PrintSlacks(w)

	fmt.Fprintf(w, "\n%s\n", ui.BoldWhite("[Step 7] Critical path"))
	r.PrintCriticalPath(w)
}

// PrintConstraints writes the vertex and arc counts and the task table.
func (r *Reporter) PrintConstraints(w io.Writer) {
	n := r.Result.Network
	fmt.Fprintf(w, "Vertices:  %s (including α and ω)\n", ui.Bold(n.VertexCount()))
	fmt.Fprintf(w, "Arcs:      %s\n", ui.Bold(n.ArcCount()))

	t := newTable("Task", "Duration", "Predecessors")
	for _, task := range n.Tasks.Tasks() {
		predCell := styled("none", ui.Dim)
		if len(task.Predecessors) > 0 {
			parts := make([]string, len(task.Predecessors))
			for i, p := range task.Predecessors {
				parts[i] = strconv.Itoa(p)
			}
			predCell = plain(strings.Join(parts, ", "))
		}
		durCell := plain(strconv.Itoa(task.Duration))
		if task.Duration < 0 {
			durCell = styled(durCell.text, ui.BoldRed)
		}
		t.add(styled(strconv.Itoa(task.ID), ui.BoldMagenta), durCell, predCell)
	}
	t.render(w)
}

// PrintArcs lists every arc as "from -> to = weight".
func (r *Reporter) PrintArcs(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Scheduling graph arcs:"))
	for _, arc := range r.Result.Network.Arcs() {
		fmt.Fprintf(w, "  %s %s %s = %d\n", label(arc.From), ui.Dim("->"), label(arc.To), arc.Weight)
	}
}

// PrintMatrix writes the adjacency matrix; "*" marks an absent arc.
func (r *Reporter) PrintMatrix(w io.Writer) {
	n := r.Result.Network
	headers := []string{" "}
	for _, v := range n.Vertices {
		headers = append(headers, v.String())
	}

	t := newTable(headers...)
	for i, row := range n.Matrix() {
		cells := []cell{styled(n.Vertices[i].String(), ui.Bold)}
		for _, wgt := range row {
			if wgt == graph.NoArc {
				cells = append(cells, styled("*", ui.Dim))
				continue
			}
			cells = append(cells, plain(strconv.Itoa(wgt)))
		}
		t.add(cells...)
	}
	t.render(w)
}

// PrintChecks writes the negative-duration and cycle results.
func (r *Reporter) PrintChecks(w io.Writer) {
	v := r.Result.Validation

	if v.NegativeDuration {
		fmt.Fprintf(w, "  %s negative durations on tasks %v\n", ui.CheckStatus(true), v.NegativeTasks)
	} else {
		fmt.Fprintf(w, "  %s no negative durations\n", ui.CheckStatus(false))
	}

	if v.Cycle {
		fmt.Fprintf(w, "  %s cycle detected", ui.CheckStatus(true))
		if cycle := r.Result.Network.FindCycle(); cycle != nil {
			fmt.Fprintf(w, ": %s", ui.Red(joinVertices(cycle, " → ")))
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "  %s no cycle\n", ui.CheckStatus(false))
	}
}

// PrintRanks writes the rank table, one row per level.
func (r *Reporter) PrintRanks(w io.Writer) {
	t := newTable("Rank", "Vertices")
	for _, lvl := range r.Result.Levels {
		rankCell := plain(strconv.Itoa(lvl.Rank))
		if lvl.IsCritical {
			rankCell = styled(rankCell.text, ui.BoldYellow)
		}
		t.add(rankCell, plain(joinVertices(lvl.Vertices, ", ")))
	}
	t.render(w)
}

// PrintSchedule writes earliest/latest start and finish per vertex in rank
// order.
func (r *Reporter) PrintSchedule(w io.Writer) {
	t := newTable("Vertex", "Rank", "Duration", "ES", "EF", "LS", "LF")
	for _, vs := range r.Result.Vertices {
		name := styled(vs.Vertex.String(), ui.BoldMagenta)
		if !vs.Vertex.IsTask() {
			name = styled(vs.Vertex.String(), ui.BoldCyan)
		}
		t.add(name,
			plain(strconv.Itoa(vs.Rank)),
			plain(strconv.Itoa(vs.Duration)),
			plain(strconv.Itoa(vs.ES)),
			plain(strconv.Itoa(vs.EF)),
			plain(strconv.Itoa(vs.LS)),
			plain(strconv.Itoa(vs.LF)))
	}
	t.render(w)
	fmt.Fprintf(w, "Project duration: %s\n", ui.Bold(r.Result.TotalDuration))
}

// PrintSlacks writes the slack of every vertex ordered by rank, then vertex.
func (r *Reporter) PrintSlacks(w io.Writer) {
	for _, vs := range r.Result.Vertices {
		fmt.Fprintf(w, "  %s %s slack = %s\n", ui.CriticalMark(vs.IsCritical), label(vs.Vertex), ui.Slack(vs.Slack))
	}
}

// PrintCriticalPath writes the zero-slack vertices in rank order.
func (r *Reporter) PrintCriticalPath(w io.Writer) {
	if len(r.Result.CriticalPath) == 0 {
		fmt.Fprintln(w, ui.Yellow("No critical vertex found."))
		return
	}
	fmt.Fprintf(w, "%s (%d vertices, duration %d)\n",
		ui.BoldYellow("⚡ "+joinVertices(r.Result.CriticalPath, " → ")),
		len(r.Result.CriticalPath), r.Result.TotalDuration)
}

// PrintLevels writes an ASCII view of the network, one block per rank with
// the outgoing arcs of each vertex.
func (r *Reporter) PrintLevels(w io.Writer) {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Scheduling Network"))
	fmt.Fprintln(w, ui.Cyan("══════════════════"))
	fmt.Fprintln(w)

	n := r.Result.Network
	for _, lvl := range r.Result.Levels {
		fmt.Fprintf(w, "%s Rank %d %s\n", ui.Cyan("──"), lvl.Rank, ui.Cyan("──────────────────────────────"))
		for _, v := range lvl.Vertices {
			critical := r.Result.Slacks[v] == 0
			fmt.Fprintf(w, "  %s [%s] %s\n", ui.CriticalMark(critical), label(v),
				ui.Dim(fmt.Sprintf("ES %d  LS %d", r.Result.Schedule.Earliest[v], r.Result.Schedule.Latest[v])))
			for _, succ := range n.Successors(v) {
				wgt, _ := n.Weight(v, succ)
				fmt.Fprintf(w, "      %s %s %s\n", ui.Dim("└──→"), ui.Magenta(succ.String()), ui.Dim(fmt.Sprintf("(%d)", wgt)))
			}
		}
		fmt.Fprintln(w)
	}
}

// JSON returns the machine-readable analysis.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Result.Export(), "", "  ")
}
