// Package verify checks a module graph for boundary violations, undeclared
// dependencies and module cycles.
//
// All passes always run and their findings are concatenated into one report,
// so a single run surfaces every problem. A failed verification is a normal
// return value; see Check for the error form.
package verify

import (
	"context"
	"fmt"

	"github.com/roach88/modcheck/internal/ir"
)

// DefaultMaxCycles caps the number of cycles reported per run.
const DefaultMaxCycles = 100

// Options controls verification.
type Options struct {
	// MaxCycles caps reported cycles. Zero means DefaultMaxCycles.
	MaxCycles int

	// Workers bounds concurrent component searches. Zero means GOMAXPROCS.
	Workers int
}

// Verify runs the boundary, declared-dependency and cycle passes over edges.
//
// The returned error is reserved for inconsistent input and cancellation.
// Violations, however many, come back in the report with a nil error.
func Verify(ctx context.Context, g *ir.Graph, edges []ir.Edge, opts Options) (*ir.Report, error) {
	for _, e := range edges {
		if _, ok := g.Module(e.Source); !ok {
			return nil, fmt.Errorf("verify: edge from %s references unknown module %d", e.SourceUnit, e.Source)
		}
		if _, ok := g.Module(e.Target); !ok {
			return nil, fmt.Errorf("verify: edge to %s references unknown module %d", e.TargetUnit, e.Target)
		}
	}

	maxCycles := opts.MaxCycles
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}

	report := &ir.Report{Root: g.Root, Violations: []ir.Violation{}}
	report.Violations = append(report.Violations, boundaryPass(g, edges)...)
	report.Violations = append(report.Violations, disallowedPass(g, edges)...)

	cycles, truncated, err := cyclePass(ctx, g, edges, maxCycles, opts.Workers)
	if err != nil {
		return nil, err
	}
	report.Violations = append(report.Violations, cycles...)
	report.Truncated = truncated

	return report, nil
}
