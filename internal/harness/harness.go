package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/modcheck/internal/codebase"
	"github.com/roach88/modcheck/internal/compiler"
	"github.com/roach88/modcheck/internal/pipeline"
	"github.com/roach88/modcheck/internal/store"
	"github.com/roach88/modcheck/internal/testutil"
)

// Harness is the scenario execution engine. Each Run gets a fresh one.
type Harness struct {
	store  *store.Store
	ids    store.IDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the codebase and compile the declarations
//  2. Run discover, extract and verify, and emit the model when clean
//  3. Record the report in a fresh in-memory store and read it back
//  4. Check the expected verdict and evaluate assertions
//
// Setup failures (unreadable codebase, invalid declarations, pipeline
// errors) are returned as errors. Unmet expectations are reported in
// Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		ids:    testutil.NewSequentialIDs(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(ctx, scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cb, err := loadCodebase(scenario)
	if err != nil {
		return nil, err
	}
	if scenario.Options.ShuffleSeed != nil {
		cb = cb.Shuffle(*scenario.Options.ShuffleSeed)
	}

	p, err := h.pipeline(scenario)
	if err != nil {
		return nil, err
	}

	res, err := p.Run(ctx, cb)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.State = res.State
	result.Report = res.Report
	result.Graph = res.Graph
	result.Edges = res.Edges

	modelFingerprint := ""
	if res.Passed() {
		model, err := p.Emit(res)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.Model = model
		if modelFingerprint, err = model.Fingerprint(); err != nil {
			return nil, err
		}
	}

	if err := h.record(ctx, result, modelFingerprint); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	for _, msg := range checkExpect(scenario.Expect, result) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"state", result.State,
		"pass", result.Pass)
	return result, nil
}

func (h *Harness) pipeline(scenario *Scenario) (*pipeline.Pipeline, error) {
	p := pipeline.New(h.logger)

	if scenario.Declarations != "" {
		decls, err := compiler.CompileSource(scenario.Declarations, scenario.Name+".cue")
		if err != nil {
			return nil, fmt.Errorf("scenario %s: declarations: %w", scenario.Name, err)
		}
		if verrs := compiler.Validate(decls); len(verrs) > 0 {
			return nil, fmt.Errorf("scenario %s: declarations: %w", scenario.Name, verrs[0])
		}
		p.Discovery.Declarations = decls
	}

	opts := scenario.Options
	if len(opts.InternalSegments) > 0 {
		p.Discovery.InternalSegments = slices.Clone(opts.InternalSegments)
	}
	if opts.DefaultScope != "" {
		scope, err := parseScope(opts.DefaultScope)
		if err != nil {
			return nil, err
		}
		p.Discovery.DefaultScope = scope
	}
	p.Verify.MaxCycles = opts.MaxCycles
	return p, nil
}

// record writes the report to the store and checks that it reads back with
// the same fingerprint.
func (h *Harness) record(ctx context.Context, result *Result, modelFingerprint string) error {
	run, err := store.NewRun(h.ids.NewID(), result.Report, modelFingerprint)
	if err != nil {
		return err
	}
	if _, err := h.store.RecordRun(ctx, run); err != nil {
		return err
	}
	result.RunID = run.ID

	loaded, err := h.store.LoadRun(ctx, run.ID)
	if err != nil {
		return err
	}
	if loaded.Fingerprint != run.Fingerprint {
		result.AddError(fmt.Sprintf("recorded run fingerprint %s does not match report %s",
			loaded.Fingerprint, run.Fingerprint))
	}
	if loaded.ViolationCount != len(loaded.Violations) {
		result.AddError(fmt.Sprintf("recorded run lists %d violations but stored %d",
			loaded.ViolationCount, len(loaded.Violations)))
	}
	return nil
}

func loadCodebase(scenario *Scenario) (*codebase.Codebase, error) {
	if scenario.Codebase != nil {
		cb := *scenario.Codebase
		if cb.Separator == "" {
			cb.Separator = codebase.DefaultSeparator
		}
		return &cb, nil
	}
	cb, err := codebase.LoadYAML(scenario.CodebaseFile)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return cb, nil
}

// checkExpect compares the verdict against the expected one.
func checkExpect(expect *Expect, result *Result) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	report := result.Report

	if report.Passed() != expect.Passed {
		errs = append(errs, fmt.Sprintf("expected passed=%t, got passed=%t with %d violation(s)",
			expect.Passed, report.Passed(), len(report.Violations)))
	}
	if report.Truncated != expect.Truncated {
		errs = append(errs, fmt.Sprintf("expected truncated=%t, got truncated=%t",
			expect.Truncated, report.Truncated))
	}

	if len(expect.Violations) > 0 {
		want := slices.Sorted(slices.Values(expect.Violations))
		got := report.Keys()
		if !slices.Equal(want, got) {
			errs = append(errs, fmt.Sprintf("violation keys differ\n  Expected: %s\n  Actual: %s",
				strings.Join(want, ", "), strings.Join(got, ", ")))
		}
	}
	return errs
}
