package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/modcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string // history database path
	Limit int    // number of runs to list
	RunID string // show a single run with its violations
}

// HistoryResult is the history command payload.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded verification runs",
		Long: `List runs recorded with "verify --record", newest first.

With --run, show a single run including its violations.

Examples:
  modcheck history --db .modcheck/history.db
  modcheck history --db .modcheck/history.db --limit 5
  modcheck history --db .modcheck/history.db --run 3f1c...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (default history.db from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by ID")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	dbPath := opts.DB
	if dbPath == "" {
		cfg, err := loadConfig(ctx, opts.RootOptions)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeConfig, err)
		}
		dbPath = cfg.History.DB
	}
	if dbPath == "" {
		return formatter.fail(ExitCommandError, ErrCodeHistory,
			errors.New("no history database: pass --db or set history.db"))
	}
	if opts.Limit <= 0 {
		return formatter.fail(ExitCommandError, ErrCodeHistory,
			fmt.Errorf("--limit must be positive, got %d", opts.Limit))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeHistory, err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.LoadRun(ctx, opts.RunID)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, err)
		}
		runs = []store.Run{*run}
	} else {
		runs, err = st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, err)
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(HistoryResult{Runs: runs})
	}
	printRuns(formatter.Writer, runs, opts.RunID != "")
	return nil
}

func printRuns(w io.Writer, runs []store.Run, detailed bool) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, run := range runs {
		verdict := SuccessStyle.Render("passed")
		if !run.Passed {
			verdict = ErrorStyle.Render(fmt.Sprintf("%d violation(s)", run.ViolationCount))
		}
		fmt.Fprintf(w, "#%d  %s  %s  %s  %s\n", run.Seq, run.ID, run.Root, verdict,
			SubtitleStyle.Render(shortFingerprint(run.Fingerprint)))
		if !detailed {
			continue
		}
		for _, v := range run.Violations {
			fmt.Fprintf(w, "  %s  %s\n", KindStyle.Render(string(v.Kind)), v.Message)
		}
		if run.Truncated {
			fmt.Fprintln(w, WarningStyle.Render("  cycle list truncated"))
		}
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
