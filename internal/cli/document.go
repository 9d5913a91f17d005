package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/modcheck/internal/docs"
	"github.com/roach88/modcheck/internal/verify"
)

// DocumentOptions holds flags for the document command.
type DocumentOptions struct {
	*RootOptions
	SourceOptions
	Output  string
	Diagram string
}

// DocumentResult is the document command payload.
type DocumentResult struct {
	Root    string   `json:"root"`
	Output  string   `json:"output"`
	Diagram string   `json:"diagram"`
	Files   []string `json:"files"`
}

// NewDocumentCommand creates the document command.
func NewDocumentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocumentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "document <codebase>",
		Short: "Write component diagrams and a module index",
		Long: `Verify the codebase and, if it is clean, write documentation.

The output directory receives a components diagram, one diagram per
module and an index.md. Nothing is written when verification finds
violations.

Examples:
  modcheck document shop.yaml --declarations ./modules
  modcheck document shop.yaml --diagram mermaid --output docs/modules`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocument(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.SourceOptions.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (default build/modcheck-docs)")
	cmd.Flags().StringVar(&opts.Diagram, "diagram", "", "diagram format (plantuml|mermaid)")

	return cmd
}

func runDocument(ctx context.Context, opts *DocumentOptions, path string, cmd *cobra.Command) error {
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
	if opts.Output != "" {
		s.cfg.Docs.Output = opts.Output
	}
	if opts.Diagram != "" {
		s.cfg.Docs.Diagram = opts.Diagram
	}
	diagram, err := docs.ParseFormat(s.cfg.Docs.Diagram)
	if err == nil && diagram != docs.FormatPlantUML && diagram != docs.FormatMermaid {
		err = fmt.Errorf("diagram format must be plantuml or mermaid, got %q", diagram)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, err)
	}

	res, err := s.run(ctx, formatter)
	if err != nil {
		return err
	}

	model, err := s.pipeline.Emit(res)
	if err != nil {
		failed := verify.Check(res.Report)
		if formatter.IsJSON() {
			result, rerr := newVerifyResult(res)
			if rerr != nil {
				return formatter.fail(ExitCommandError, ErrCodeGeneric, rerr)
			}
			if ferr := formatter.Failure(ErrCodeViolations, err.Error(), result); ferr != nil {
				return ferr
			}
		} else {
			fmt.Fprintln(formatter.Writer, ErrorStyle.Render(fmt.Sprintf("✗ %s: %v", res.Report.Root, err)))
			fmt.Fprintln(formatter.Writer)
			printViolations(formatter.Writer, res.Report)
		}
		return WrapExitError(ExitFailure, ErrCodeViolations, failed)
	}

	writer := &docs.Writer{Dir: s.cfg.Docs.Output, Diagram: diagram}
	files, err := writer.Write(model)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeWriteFailed, err)
	}
	s.logger.Debug("documentation written", "dir", s.cfg.Docs.Output, "files", len(files))

	result := DocumentResult{
		Root:    model.Root,
		Output:  s.cfg.Docs.Output,
		Diagram: string(diagram),
		Files:   files,
	}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, SuccessStyle.Render(fmt.Sprintf("✓ %s documented: %d file(s) in %s",
		result.Root, len(files), result.Output)))
	for _, f := range files {
		fmt.Fprintf(formatter.Writer, "  %s\n", f)
	}
	return nil
}
