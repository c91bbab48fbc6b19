package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joshharrison/pertloom/internal/config"
	"github.com/joshharrison/pertloom/internal/reporter"
	"github.com/joshharrison/pertloom/internal/ui"
)

// runInteractive reads table numbers from in until "q" or EOF and prints the
// report for each one. Load and validation errors are shown and the loop
// carries on.
func runInteractive(in io.Reader, out io.Writer, dir string, c config.Config) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s ", ui.BoldCyan("Test table number (q to quit):"))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			fmt.Fprintln(out, ui.Dim("Bye."))
			return nil
		}

		n, err := strconv.Atoi(line)
		if err != nil || n <= 0 {
			fmt.Fprintf(out, "%s %q is not a table number\n\n", ui.Red("✗"), line)
			continue
		}

		path := filepath.Join(dir, c.FileFor(n))
		result, err := analyzeFile(path)
		if result == nil {
			fmt.Fprintf(out, "%s %v\n\n", ui.Red("✗"), err)
			continue
		}

		fmt.Fprintln(out)
		reporter.New(result, path).PrintReport(out)
		if err != nil && !isValidationFailure(err) {
			fmt.Fprintf(out, "%s %v\n", ui.Red("✗"), err)
		}
		if err := archive(out, path, result); err != nil {
			fmt.Fprintf(out, "%s %v\n", ui.Red("✗"), err)
		}
		fmt.Fprintln(out)
	}
}
