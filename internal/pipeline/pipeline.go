// Package pipeline runs discover, extract and verify as one state machine
// and gates documentation on a clean verification.
//
//	UNDISCOVERED → DISCOVERED → EXTRACTED → VERIFIED_OK → EMITTED
//	                                      ↘ VERIFIED_FAILED
//
// Nothing is retried. A discovery or extraction failure ends the run in the
// state it was in and is returned to the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/modcheck/internal/codebase"
	"github.com/roach88/modcheck/internal/discovery"
	"github.com/roach88/modcheck/internal/docs"
	"github.com/roach88/modcheck/internal/extract"
	"github.com/roach88/modcheck/internal/ir"
	"github.com/roach88/modcheck/internal/verify"
)

// State is a pipeline stage.
type State string

const (
	StateUndiscovered   State = "UNDISCOVERED"
	StateDiscovered     State = "DISCOVERED"
	StateExtracted      State = "EXTRACTED"
	StateVerifiedOK     State = "VERIFIED_OK"
	StateVerifiedFailed State = "VERIFIED_FAILED"
	StateEmitted        State = "EMITTED"
)

// ErrNotVerified is returned when documentation is requested for a run that
// did not verify cleanly.
var ErrNotVerified = errors.New("documentation requires a clean verification")

// Pipeline holds the settings for each stage.
type Pipeline struct {
	Discovery discovery.Options
	Extract   extract.Options
	Verify    verify.Options

	logger *slog.Logger
}

// New creates a pipeline. A nil logger discards output.
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		Discovery: discovery.DefaultOptions(),
		logger:    logger,
	}
}

// Result is the outcome of one run.
type Result struct {
	State  State
	Graph  *ir.Graph
	Edges  []ir.Edge
	Report *ir.Report
	Model  *ir.Model
}

// Passed reports whether the run verified cleanly.
func (r *Result) Passed() bool {
	return r.State == StateVerifiedOK || r.State == StateEmitted
}

// Run discovers, extracts and verifies cb.
//
// A failed verification is not an error: the result carries the report and
// State is StateVerifiedFailed.
func (p *Pipeline) Run(ctx context.Context, cb *codebase.Codebase) (*Result, error) {
	res := &Result{State: StateUndiscovered}

	g, err := discovery.Discover(cb, p.Discovery)
	if err != nil {
		p.logger.Error("discovery failed", "root", cb.Root, "error", err)
		return res, fmt.Errorf("discover: %w", err)
	}
	res.Graph = g
	p.transition(res, StateDiscovered, "modules", len(g.Modules), "units", len(g.Units))

	extractOpts := p.Extract
	if extractOpts.Resolver == nil {
		extractOpts.Resolver = discovery.NewResolver(g, p.Discovery)
	}
	edges, err := extract.Extract(ctx, g, extractOpts)
	if err != nil {
		p.logger.Error("extraction failed", "root", g.Root, "error", err)
		return res, fmt.Errorf("extract: %w", err)
	}
	res.Edges = edges
	p.transition(res, StateExtracted, "edges", len(edges))

	report, err := verify.Verify(ctx, g, edges, p.Verify)
	if err != nil {
		p.logger.Error("verification aborted", "root", g.Root, "error", err)
		return res, fmt.Errorf("verify: %w", err)
	}
	res.Report = report

	if report.Passed() {
		p.transition(res, StateVerifiedOK)
	} else {
		p.transition(res, StateVerifiedFailed,
			"violations", len(report.Violations),
			"boundary", report.Count(ir.KindBoundary),
			"disallowed", report.Count(ir.KindDisallowed),
			"cycles", report.Count(ir.KindCycle),
			"truncated", report.Truncated)
	}
	return res, nil
}

// Emit projects the documentation model of a clean run.
// It returns ErrNotVerified unless res is in StateVerifiedOK or StateEmitted.
func (p *Pipeline) Emit(res *Result) (*ir.Model, error) {
	switch res.State {
	case StateEmitted:
		return res.Model, nil
	case StateVerifiedOK:
	default:
		return nil, fmt.Errorf("%w (state %s)", ErrNotVerified, res.State)
	}

	res.Model = docs.Emit(res.Graph, res.Edges)
	p.transition(res, StateEmitted, "modules", len(res.Model.Modules), "edges", len(res.Model.Edges))
	return res.Model, nil
}

func (p *Pipeline) transition(res *Result, to State, args ...any) {
	attrs := append([]any{"from", res.State, "to", to}, args...)
	p.logger.Debug("pipeline transition", attrs...)
	res.State = to
}
