package reporter

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// cell is a table entry. Width is measured on text; style is applied after
// padding so escape codes never disturb alignment.
type cell struct {
	text  string
	style func(a ...interface{}) string
}

func plain(s string) cell { return cell{text: s} }

func styled(s string, style func(a ...interface{}) string) cell {
	return cell{text: s, style: style}
}

// table renders bordered rows:
//
//	+------+-------+
//	| Task | Slack |
//	+------+-------+
//	| 1    | 0     |
//	+------+-------+
type table struct {
	headers []string
	rows    [][]cell
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(c.text))
			}
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, wd := range widths {
		sep.WriteString(strings.Repeat("-", wd+2))
		sep.WriteString("+")
	}
	line := sep.String()

	writeRow := func(cells []cell) {
		var b strings.Builder
		b.WriteString("|")
		for i, wd := range widths {
			var c cell
			if i < len(cells) {
				c = cells[i]
			}
			text := c.text + strings.Repeat(" ", wd-utf8.RuneCountInString(c.text))
			if c.style != nil {
				text = c.style(text)
			}
			b.WriteString(" ")
			b.WriteString(text)
			b.WriteString(" |")
		}
		fmt.Fprintln(w, b.String())
	}

	headerCells := make([]cell, len(t.headers))
	for i, h := range t.headers {
		headerCells[i] = plain(h)
	}

	fmt.Fprintln(w, line)
	writeRow(headerCells)
	fmt.Fprintln(w, line)
	for _, row := range t.rows {
		writeRow(row)
	}
	fmt.Fprintln(w, line)
}
