package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/roach88/modcheck/internal/codebase"
	"github.com/roach88/modcheck/internal/compiler"
	"github.com/roach88/modcheck/internal/config"
	"github.com/roach88/modcheck/internal/discovery"
	"github.com/roach88/modcheck/internal/extract"
	"github.com/roach88/modcheck/internal/ir"
	"github.com/roach88/modcheck/internal/pipeline"
)

// CLI error codes. Declaration load errors keep the compiler's E001-E006,
// discovery and extraction errors keep their D and X codes.
const (
	ErrCodeGeneric     = "E000" // Generic/unknown error
	ErrCodeConfig      = "E010" // Configuration invalid or unreadable
	ErrCodeCodebase    = "E011" // Codebase description could not be loaded
	ErrCodeCompile     = "E012" // CUE declarations failed to compile
	ErrCodeWriteFailed = "E013" // Documentation write error
	ErrCodeHistory     = "E014" // Run history store error
	ErrCodeVerify      = "E015" // Verification aborted
	ErrCodeViolations  = "V001" // Verification found violations
	ErrCodeTestFailed  = "T001" // Harness scenarios failed
)

// SourceOptions are the input flags shared by commands that read a codebase.
// Empty values fall back to the configuration.
type SourceOptions struct {
	Declarations string
	Source       string
	Root         string
}

func (o *SourceOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Declarations, "declarations", "", "directory of CUE module declarations")
	cmd.Flags().StringVar(&o.Source, "source", "", "codebase source (yaml|go)")
	cmd.Flags().StringVar(&o.Root, "root", "", "root namespace (go source only; default module path)")
}

func (o *SourceOptions) apply(cfg *config.Config) {
	if o.Declarations != "" {
		cfg.Declarations = o.Declarations
	}
	if o.Source != "" {
		cfg.Source = o.Source
	}
	if o.Root != "" {
		cfg.Root = o.Root
	}
}

// loadConfig resolves configuration for the current directory or --config.
func loadConfig(ctx context.Context, opts *RootOptions) (*config.Config, error) {
	cfg, _, err := config.Load(ctx, config.LoadOptions{ConfigFilePath: opts.ConfigFile})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a slog logger backed by a charmbracelet handler writing
// to w. Debug records are shown only when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: "modcheck",
		Level:  level,
	})
	return slog.New(handler)
}

// loadCodebase reads the codebase at path according to cfg.Source.
func loadCodebase(ctx context.Context, cfg *config.Config, path string) (*codebase.Codebase, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("codebase not found: %s", path)
	}
	switch cfg.Source {
	case "go":
		return codebase.LoadGo(ctx, codebase.GoOptions{Dir: path, Root: cfg.Root})
	default:
		return codebase.LoadYAML(path)
	}
}

// loadDeclarations compiles the declarations directory, if one is configured.
func loadDeclarations(cfg *config.Config) ([]ir.Declaration, error) {
	if cfg.Declarations == "" {
		return nil, nil
	}
	return compiler.LoadDeclarations(cfg.Declarations)
}

// newPipeline builds a pipeline from cfg and declarations.
func newPipeline(cfg *config.Config, decls []ir.Declaration, logger *slog.Logger) (*pipeline.Pipeline, error) {
	scope, err := cfg.Scope()
	if err != nil {
		return nil, err
	}
	p := pipeline.New(logger)
	p.Discovery.Declarations = decls
	p.Discovery.DefaultScope = scope
	if len(cfg.InternalSegments) > 0 {
		p.Discovery.InternalSegments = cfg.InternalSegments
	}
	p.Extract.Workers = cfg.Workers
	p.Verify.Workers = cfg.Workers
	p.Verify.MaxCycles = cfg.MaxCycles
	return p, nil
}

// session is everything a codebase command needs after flag and config
// resolution.
type session struct {
	cfg      *config.Config
	codebase *codebase.Codebase
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// openSession loads config, codebase and declarations. Errors are returned
// as ExitErrors with exit code 2 after being reported through f.
func openSession(ctx context.Context, f *OutputFormatter, root *RootOptions, src *SourceOptions, path string) (*session, error) {
	cfg, err := loadConfig(ctx, root)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfig, err)
	}
	src.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfig, err)
	}

	logger := newLogger(f.GetErrWriter(), root.Verbose)

	cb, err := loadCodebase(ctx, cfg, path)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeCodebase, err)
	}
	logger.Debug("codebase loaded", "root", cb.Root, "packages", len(cb.Packages), "source", cfg.Source)

	decls, err := loadDeclarations(cfg)
	if err != nil {
		return nil, f.fail(ExitCommandError, errorCode(err, ErrCodeCompile), err)
	}
	if len(decls) > 0 {
		logger.Debug("declarations loaded", "dir", cfg.Declarations, "modules", len(decls))
	}

	p, err := newPipeline(cfg, decls, logger)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeConfig, err)
	}
	return &session{cfg: cfg, codebase: cb, pipeline: p, logger: logger}, nil
}

// run executes the pipeline, mapping tooling errors to exit code 2.
func (s *session) run(ctx context.Context, f *OutputFormatter) (*pipeline.Result, error) {
	res, err := s.pipeline.Run(ctx, s.codebase)
	if err != nil {
		return nil, f.fail(ExitCommandError, errorCode(err, ErrCodeVerify), err)
	}
	return res, nil
}

// errorCode returns the most specific code carried by err, or fallback.
func errorCode(err error, fallback string) string {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return ErrCodeCompile
	}
	var discoveryErr *discovery.DiscoveryError
	if errors.As(err, &discoveryErr) {
		return string(discoveryErr.Code)
	}
	var extractionErr *extract.ExtractionError
	if errors.As(err, &extractionErr) {
		return string(extractionErr.Code)
	}
	return fallback
}
