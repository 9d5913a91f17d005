package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/modcheck/internal/discovery"
	"github.com/roach88/modcheck/internal/ir"
)

// ModulesOptions holds flags for the modules command.
type ModulesOptions struct {
	*RootOptions
	SourceOptions
}

// ModulesResult is the modules command payload.
type ModulesResult struct {
	Root    string      `json:"root"`
	Modules []ir.Module `json:"modules"`
}

// NewModulesCommand creates the modules command.
func NewModulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ModulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "modules <codebase>",
		Short: "List discovered modules and their packages",
		Long: `Discover modules without verifying them and list each module's
exposed and internal packages in discovery order.

Examples:
  modcheck modules shop.yaml
  modcheck modules . --source go --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModules(cmd.Context(), opts, args[0], cmd)
		},
	}

	opts.SourceOptions.register(cmd)

	return cmd
}

func runModules(ctx context.Context, opts *ModulesOptions, path string, cmd *cobra.Command) error {
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

	g, err := discovery.Discover(s.codebase, s.pipeline.Discovery)
	if err != nil {
		return formatter.fail(ExitCommandError, errorCode(err, ErrCodeGeneric), err)
	}

	result := ModulesResult{Root: g.Root, Modules: g.Modules}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	printModules(formatter.Writer, result)
	return nil
}

func printModules(w io.Writer, result ModulesResult) {
	fmt.Fprintf(w, "%s: %d module(s)\n", result.Root, len(result.Modules))
	for _, m := range result.Modules {
		fmt.Fprintln(w)
		title := m.Name
		if m.DisplayName != "" && m.DisplayName != m.Name {
			title = fmt.Sprintf("%s (%s)", m.Name, m.DisplayName)
		}
		fmt.Fprintln(w, TitleStyle.Render(title))
		fmt.Fprintln(w, SubtitleStyle.Render("  "+m.BasePackage))
		printUnits(w, "exposed", m.Exposed)
		printUnits(w, "internal", m.Internal)
		if m.Restricted() {
			deps := "none"
			if len(m.AllowedDependencies) > 0 {
				deps = strings.Join(m.AllowedDependencies, ", ")
			}
			fmt.Fprintf(w, "  allowed:  %s\n", deps)
		}
	}
}

func printUnits(w io.Writer, label string, units []string) {
	if len(units) == 0 {
		return
	}
	fmt.Fprintf(w, "  %-9s %s\n", label+":", strings.Join(units, ", "))
}
