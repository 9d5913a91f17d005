package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/modcheck/internal/ir"
	"github.com/roach88/modcheck/internal/pipeline"
	"github.com/roach88/modcheck/internal/store"
	"github.com/roach88/modcheck/internal/verify"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	SourceOptions
	Record string // history database to append the run to
}

// VerifyResult is the verify command payload.
type VerifyResult struct {
	Root        string         `json:"root"`
	Passed      bool           `json:"passed"`
	Truncated   bool           `json:"truncated,omitempty"`
	Modules     int            `json:"modules"`
	Edges       int            `json:"edges"`
	Fingerprint string         `json:"fingerprint"`
	RunID       string         `json:"run_id,omitempty"`
	Violations  []ir.Violation `json:"violations"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <codebase>",
		Short: "Check module boundaries and dependency cycles",
		Long: `Discover modules, extract their dependencies and verify them.

<codebase> is a YAML codebase description (--source yaml) or a Go
module directory (--source go).

Exit codes:
  0 - No violations
  1 - Violations found
  2 - Command error (bad input, discovery or extraction failure)

Examples:
  modcheck verify shop.yaml --declarations ./modules
  modcheck verify . --source go --record .modcheck/history.db
  modcheck verify shop.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.SourceOptions.register(cmd)
	cmd.Flags().StringVar(&opts.Record, "record", "", "append the run to this history database")

	return cmd
}

func runVerify(ctx context.Context, opts *VerifyOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := openSession(ctx, formatter, opts.RootOptions, &opts.SourceOptions, path)
	if err != nil {
		return err
	}
	res, err := s.run(ctx, formatter)
	if err != nil {
		return err
	}

	result, err := newVerifyResult(res)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err)
	}

	dbPath := opts.Record
	if dbPath == "" {
		dbPath = s.cfg.History.DB
	}
	if dbPath != "" {
		runID, err := recordRun(ctx, dbPath, s.pipeline, res)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeHistory, err)
		}
		result.RunID = runID
		s.logger.Debug("run recorded", "db", dbPath, "id", runID)
	}

	return outputVerify(formatter, result, res.Report)
}

func newVerifyResult(res *pipeline.Result) (VerifyResult, error) {
	fp, err := res.Report.Fingerprint()
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Root:        res.Report.Root,
		Passed:      res.Report.Passed(),
		Truncated:   res.Report.Truncated,
		Modules:     len(res.Graph.Modules),
		Edges:       len(res.Edges),
		Fingerprint: fp,
		Violations:  res.Report.Violations,
	}, nil
}

// recordRun appends the run to the history database. Clean runs also carry
// the fingerprint of their documentation model.
func recordRun(ctx context.Context, dbPath string, p *pipeline.Pipeline, res *pipeline.Result) (string, error) {
	modelFingerprint := ""
	if res.Passed() {
		model, err := p.Emit(res)
		if err != nil {
			return "", err
		}
		if modelFingerprint, err = model.Fingerprint(); err != nil {
			return "", err
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, err := store.NewRun(store.UUIDGenerator{}.NewID(), res.Report, modelFingerprint)
	if err != nil {
		return "", err
	}
	if _, err := st.RecordRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func outputVerify(f *OutputFormatter, result VerifyResult, report *ir.Report) error {
	failed := verify.Check(report)

	if f.IsJSON() {
		if failed == nil {
			return f.Success(result)
		}
		if err := f.Failure(ErrCodeViolations, failed.Error(), result); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, ErrCodeViolations, failed)
	}

	w := f.Writer
	if failed == nil {
		fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("✓ %s verified: %d module(s), %d dependency edge(s), no violations",
			result.Root, result.Modules, result.Edges)))
		printRunID(w, result.RunID)
		return nil
	}

	fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("✗ %s: %s", result.Root, failed.Error())))
	fmt.Fprintln(w)
	printViolations(w, report)
	printRunID(w, result.RunID)
	return WrapExitError(ExitFailure, ErrCodeViolations, failed)
}

// printViolations lists every violation with its evidence.
func printViolations(w io.Writer, report *ir.Report) {
	for _, v := range report.Violations {
		fmt.Fprintf(w, "%s  %s\n", KindStyle.Render(string(v.Kind)), v.Message)
		for _, ref := range v.Via {
			fmt.Fprintf(w, "    via %s -> %s\n", ref.From, ref.To)
		}
	}
	if report.Truncated {
		fmt.Fprintln(w)
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("cycle list truncated after %d cycle(s)", report.Count(ir.KindCycle))))
	}
}

func printRunID(w io.Writer, id string) {
	if id != "" {
		fmt.Fprintln(w, SubtitleStyle.Render("recorded run "+id))
	}
}
