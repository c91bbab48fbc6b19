package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joshharrison/pertloom/internal/config"
	"github.com/joshharrison/pertloom/internal/cpm"
	"github.com/joshharrison/pertloom/internal/reporter"
	"github.com/joshharrison/pertloom/internal/state"
	"github.com/joshharrison/pertloom/internal/taskset"
	"github.com/joshharrison/pertloom/internal/ui"
	"github.com/joshharrison/pertloom/internal/viewer"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagJSON    bool
	flagNoColor bool
	flagVerbose bool
	flagSave    bool
	flagFormat  string

	cfg = config.Default()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pertloom",
		Short: "Critical path scheduling for task tables",
		Long: `Pertloom reads a table of tasks with durations and predecessors, builds
the scheduling network between a start vertex α and an end vertex ω,
checks it for negative durations and cycles, then computes ranks,
earliest and latest dates, slack and the critical path.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), flagVerbose)

			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded
			ui.SetEnabled(cfg.Color && !flagNoColor)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./pertloom.toml)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(interactiveCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// analyzeFile loads a task file and runs the analysis. A non-nil result
// with an error means the network was built but failed validation.
func analyzeFile(path string) (*cpm.Result, error) {
	ts, err := taskset.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	result, err := cpm.Analyze(ts)
	if result == nil {
		return nil, err
	}
	slog.Debug("analysis done", "file", path, "tasks", ts.Len(), "scheduled", result.Scheduled())
	return result, err
}

// archive stores the result when --save or save_runs asks for it.
func archive(w io.Writer, source string, result *cpm.Result) error {
	if !flagSave && !cfg.SaveRuns {
		return nil
	}
	store, err := state.Open(cfg.StateDir)
	if err != nil {
		return err
	}
	run, err := store.Save(source, result)
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	slog.Info("run archived", "id", run.ID, "dir", store.Dir())
	if !flagJSON {
		fmt.Fprintf(w, "\n💾 Saved as %s\n", ui.Bold(run.ID))
	}
	return nil
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule <file>",
		Short: "Print the full scheduling report for a task file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result, err := analyzeFile(args[0])
			if result == nil {
				return err
			}

			rpt := reporter.New(result, args[0])
			if flagJSON {
				data, jerr := rpt.JSON()
				if jerr != nil {
					return jerr
				}
				fmt.Fprintln(out, string(data))
			} else {
				rpt.PrintReport(out)
			}

			if aerr := archive(out, args[0], result); aerr != nil {
				return aerr
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&flagSave, "save", false, "Archive the result in the state directory")

	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Print constraints and validation checks only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result, err := analyzeFile(args[0])
			if result == nil {
				return err
			}

			if flagJSON {
				if jerr := outputJSON(out, result.Validation); jerr != nil {
					return jerr
				}
				return err
			}

			rpt := reporter.New(result, args[0])
			rpt.PrintConstraints(out)
			rpt.PrintArcs(out)
			fmt.Fprintln(out)
			rpt.PrintChecks(out)
			return err
		},
	}
}

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Print the scheduling network (ascii, dot, json, matrix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result, err := analyzeFile(args[0])
			if result == nil {
				return err
			}

			switch flagFormat {
			case "dot":
				fmt.Fprint(out, viewer.DOT(result))
			case "json":
				if jerr := outputJSON(out, viewer.ToGraph(result, args[0])); jerr != nil {
					return jerr
				}
			case "matrix":
				reporter.New(result, args[0]).PrintMatrix(out)
			case "ascii":
				rpt := reporter.New(result, args[0])
				if !result.Scheduled() {
					rpt.PrintChecks(out)
					return err
				}
				rpt.PrintLevels(out)
			default:
				return fmt.Errorf("unknown format %q (want ascii, dot, json or matrix)", flagFormat)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot, json, matrix)")

	return cmd
}

func interactiveCmd() *cobra.Command {
	var flagDir string

	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Prompt for test table numbers and schedule each one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.DataDir
			if cmd.Flags().Changed("dir") {
				dir = flagDir
			}
			ui.PrintLogo(cmd.OutOrStdout())
			return runInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), dir, cfg)
		},
	}

	cmd.Flags().StringVar(&flagDir, "dir", "", "Directory holding the test tables (default from config)")

	return cmd
}

func historyCmd() *cobra.Command {
	var flagClean bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := state.Open(cfg.StateDir)
			if err != nil {
				return err
			}

			if flagClean {
				if err := store.Clean(); err != nil {
					return fmt.Errorf("clean archive: %w", err)
				}
				slog.Info("archive removed", "dir", store.Dir())
				if !flagJSON {
					fmt.Fprintf(out, "🧹 Removed archive %s\n", ui.Bold(store.Dir()))
				}
				return nil
			}

			runs, err := store.List()
			if err != nil {
				return err
			}

			if flagJSON {
				if runs == nil {
					runs = []state.Summary{}
				}
				return outputJSON(out, runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, ui.Dim("No archived runs. Use `pertloom schedule --save <file>`."))
				return nil
			}

			fmt.Fprintf(out, "📚 %s (%d)\n", ui.BoldCyan("Archived runs"), len(runs))
			for _, r := range runs {
				fmt.Fprintf(out, "  %s %s  %s  %s tasks, duration %s  %s\n",
					ui.CheckStatus(!r.Valid),
					ui.BoldMagenta(r.ID),
					ui.Dim(r.CreatedAt.Local().Format("2006-01-02 15:04:05")),
					ui.Bold(r.Tasks),
					ui.Bold(r.TotalDuration),
					r.Source)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagClean, "clean", false, "Delete every archived run")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show an archived run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := state.Open(cfg.StateDir)
			if err != nil {
				return err
			}

			var run *state.Run
			if len(args) == 1 {
				run, err = store.Load(args[0])
			} else {
				run, err = store.LoadLatest()
			}
			if err != nil {
				return fmt.Errorf("load archived run: %w", err)
			}

			if flagJSON {
				return outputJSON(out, run)
			}

			ts, err := run.TaskSet()
			if err != nil {
				return fmt.Errorf("rebuild run %s: %w", run.ID, err)
			}
			result, err := cpm.Analyze(ts)
			if result == nil {
				return err
			}

			fmt.Fprintf(out, "🧵 %s %s  %s\n\n", ui.BoldCyan("Run"), ui.Bold(run.ID),
				ui.Dim(run.CreatedAt.Local().Format("2006-01-02 15:04:05")))
			reporter.New(result, run.Source).PrintReport(out)
			return err
		},
	}
}

func viewCmd() *cobra.Command {
	var (
		flagPort int
		flagOpen bool
	)

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Serve the analysed network over HTTP until interrupted",
		Long: `Analyses the task file and serves it on localhost:
  /graph       graph JSON with dates, slack and critical flags
  /graph.dot   Graphviz rendering
  /healthz     liveness probe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := analyzeFile(args[0])
			if result == nil {
				return err
			}
			if err != nil {
				slog.Warn("serving a network that failed validation", "file", args[0], "err", err)
			}

			port := cfg.ViewerPort
			if cmd.Flags().Changed("port") {
				port = flagPort
			}
			addr := fmt.Sprintf("localhost:%d", port)

			srv := viewer.NewServer()
			srv.Set(result, args[0])

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			url := fmt.Sprintf("http://%s/graph", addr)
			fmt.Fprintf(cmd.OutOrStdout(), "🌐 Serving %s on %s (Ctrl-C to stop)\n", ui.Bold(args[0]), ui.Cyan(url))
			if flagOpen {
				openBrowser(url)
			}

			if err := srv.Serve(ctx, addr); err != nil {
				return fmt.Errorf("viewer: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (default from config, 7272)")
	cmd.Flags().BoolVar(&flagOpen, "open", false, "Open the graph in a browser")

	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), cfg)
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("could not open browser", "err", err)
	}
}

func outputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// isValidationFailure reports whether err only means the network failed its
// checks, as opposed to a load or construction problem.
func isValidationFailure(err error) bool {
	return errors.Is(err, cpm.ErrInvalidNetwork)
}
