package verify

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/modcheck/internal/codebase"
	"github.com/roach88/modcheck/internal/discovery"
	"github.com/roach88/modcheck/internal/extract"
	"github.com/roach88/modcheck/internal/ir"
)

const propModules = 5

// randomCodebase builds propModules modules, each with an exposed "api" and an
// internal "core" unit. Each code picks a source unit, a target module and a
// target scope.
func randomCodebase(codes []int) (*codebase.Codebase, []ir.Declaration) {
	b := codebase.New("app")
	var decls []ir.Declaration
	for m := range propModules {
		b.Type(fmt.Sprintf("app.m%d.api", m), "Api")
		b.Type(fmt.Sprintf("app.m%d.core", m), "Core")
		decls = append(decls, ir.Declaration{
			Name:     fmt.Sprintf("m%d", m),
			Exposed:  []string{"api"},
			Internal: []string{"core"},
		})
	}
	for i, code := range codes {
		src := code % propModules
		tgt := (code / propModules) % propModules
		srcUnit := []string{"api", "core"}[(code/25)%2]
		tgtUnit := []string{"api", "core"}[(code/50)%2]
		b.Type(fmt.Sprintf("app.m%d.%s", src, srcUnit), fmt.Sprintf("Ref%d", i),
			fmt.Sprintf("app.m%d.%s.T", tgt, tgtUnit))
	}
	return b.Build(), decls
}

func verifyOnce(cb *codebase.Codebase, decls []ir.Declaration) (*ir.Report, error) {
	opts := discovery.DefaultOptions()
	opts.Declarations = decls
	g, err := discovery.Discover(cb, opts)
	if err != nil {
		return nil, err
	}
	edges, err := extract.Extract(context.Background(), g, extract.Options{Resolver: discovery.NewResolver(g, opts)})
	if err != nil {
		return nil, err
	}
	return Verify(context.Background(), g, edges, Options{})
}

// TestVerify_Properties checks determinism under package reordering and
// idempotence over random module graphs.
func TestVerify_Properties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	codes := gen.SliceOfN(12, gen.IntRange(0, 99))

	// Property 1: shuffling package order never changes the violation set
	properties.Property("violation keys are invariant under reordering", prop.ForAll(
		func(codes []int, seed uint64) bool {
			cb, decls := randomCodebase(codes)
			a, err := verifyOnce(cb, decls)
			if err != nil {
				return false
			}
			b, err := verifyOnce(cb.Shuffle(seed), decls)
			if err != nil {
				return false
			}
			return slices.Equal(a.Keys(), b.Keys())
		},
		codes,
		gen.UInt64(),
	))

	// Property 2: two runs on unchanged input are byte-identical
	properties.Property("reruns produce identical fingerprints", prop.ForAll(
		func(codes []int) bool {
			cb, decls := randomCodebase(codes)
			a, err := verifyOnce(cb, decls)
			if err != nil {
				return false
			}
			b, err := verifyOnce(cb, decls)
			if err != nil {
				return false
			}
			fa, errA := a.Fingerprint()
			fb, errB := b.Fingerprint()
			return errA == nil && errB == nil && fa == fb
		},
		codes,
	))

	// Property 3: a report without internal targets and cycles is empty
	properties.Property("acyclic exposed-only graphs verify", prop.ForAll(
		func(pairs []int) bool {
			b := codebase.New("app")
			for m := range propModules {
				b.Type(fmt.Sprintf("app.m%d.api", m), "Api")
			}
			for i, p := range pairs {
				src, tgt := p%propModules, (p/propModules)%propModules
				if src >= tgt {
					continue
				}
				b.Type(fmt.Sprintf("app.m%d.api", src), fmt.Sprintf("Ref%d", i),
					fmt.Sprintf("app.m%d.api.Api", tgt))
			}
			report, err := verifyOnce(b.Build(), nil)
			return err == nil && report.Passed()
		},
		gen.SliceOf(gen.IntRange(0, 24)),
	))

	// Property 4: every reported cycle is closed and elementary
	properties.Property("cycles are closed and elementary", prop.ForAll(
		func(codes []int) bool {
			cb, decls := randomCodebase(codes)
			report, err := verifyOnce(cb, decls)
			if err != nil {
				return false
			}
			for _, v := range report.OfKind(ir.KindCycle) {
				n := len(v.Cycle)
				if n < 3 || v.Cycle[0] != v.Cycle[n-1] {
					return false
				}
				open := slices.Clone(v.Cycle[:n-1])
				slices.Sort(open)
				if len(slices.Compact(open)) != n-1 {
					return false
				}
			}
			return true
		},
		codes,
	))

	properties.TestingRun(t)
}
