package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/modcheck/internal/compiler"
	"github.com/roach88/modcheck/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Modules []string                   `json:"modules,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <declarations-dir>",
		Short: "Validate module declarations without a codebase",
		Long: `Compile and validate the CUE module declarations in a directory.

Reports every validation error (duplicate modules, self dependencies,
invalid sub-package paths, ...) without reading a codebase.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Loading declarations from %s", dir)
	decls, err := compiler.LoadDeclarations(dir)
	if err != nil {
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && len(loadErr.Errors) > 0 {
			return outputValidationErrors(formatter, loadErr.Errors)
		}
		return formatter.fail(ExitCommandError, errorCode(err, ErrCodeCompile), err)
	}

	return outputValidateSuccess(formatter, decls)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, decls []ir.Declaration) error {
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}

	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Modules: names})
	}

	fmt.Fprintln(formatter.Writer, SuccessStyle.Render(fmt.Sprintf("✓ %d module declaration(s) valid", len(decls))))
	for _, name := range names {
		formatter.VerboseLog("  %s", name)
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.IsJSON() {
		result := ValidationResult{Valid: false, Errors: errs}
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, ErrorStyle.Render("✗ Validation failed"))
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return exitErr
}
