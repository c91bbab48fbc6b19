package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetEnabled turns colored output on or off globally.
func SetEnabled(on bool) {
	color.NoColor = !on
}

// PrintLogo renders the colored pertloom logo.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	nodes := color.New(color.FgYellow)
	arcs := color.New(color.FgCyan, color.Faint)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +------------------------------+")
	nodes.Fprintln(w, "   |  α ──▶ o ──▶ o ──▶ o ──▶ ω   |")
	arcs.Fprintln(w, "   |        ╰──▶ o ──────╯        |")
	brand.Fprintln(w, "   |   P  E  R  T  L  O  O  M     |")
	frame.Fprintln(w, "   +------------------------------+")
	tag.Fprintf(w, "   %s Critical path scheduling\n", Dim("⏱"))
	fmt.Fprintln(w)
}

// CheckStatus returns a colored pass/fail marker for a validation check.
func CheckStatus(failed bool) string {
	if failed {
		return Red("✗")
	}
	return Green("✓")
}

// CriticalMark returns the marker shown next to zero-slack vertices.
func CriticalMark(critical bool) string {
	if critical {
		return BoldYellow("⚡")
	}
	return " "
}

// Vertex styles a vertex label: synthetic vertices in cyan, tasks in magenta.
func Vertex(label string, synthetic bool) string {
	if synthetic {
		return BoldCyan(label)
	}
	return BoldMagenta(label)
}

// Slack colors a slack value: zero is highlighted, positive slack is dimmed.
func Slack(s int) string {
	switch {
	case s == 0:
		return BoldYellow("0")
	case s < 0:
		return BoldRed(fmt.Sprint(s))
	default:
		return Dim(fmt.Sprint(s))
	}
}
