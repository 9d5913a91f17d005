// Package extract turns unit type references into cross-module edges.
package extract

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/modcheck/internal/ir"
)

// Resolver maps a package path to its owning module and scope.
// The last result is false for packages outside every module.
type Resolver interface {
	Resolve(pkg string) (ir.ModuleID, ir.Scope, bool)
}

// Options controls extraction.
type Options struct {
	// Workers bounds how many modules are extracted at once.
	// Zero means GOMAXPROCS.
	Workers int

	// Resolver classifies referenced packages. Nil resolves only packages
	// that have a unit in the graph.
	Resolver Resolver
}

// unitResolver resolves packages by exact unit path.
type unitResolver struct{ g *ir.Graph }

func (r unitResolver) Resolve(pkg string) (ir.ModuleID, ir.Scope, bool) {
	u, ok := r.g.UnitByPath(pkg)
	if !ok {
		return ir.NoModule, "", false
	}
	return u.Module, u.Scope, true
}

// Extract returns every cross-module edge in g.
//
// Edges are grouped by source module in discovery order, then by source unit
// (exposed first), then by the position of the first reference that produced
// them. References to the same module and to unresolvable packages are
// dropped. Modules are processed concurrently into private slots; the slots
// are concatenated only after every worker has finished.
func Extract(ctx context.Context, g *ir.Graph, opts Options) ([]ir.Edge, error) {
	if err := checkConsistency(g); err != nil {
		return nil, err
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = unitResolver{g: g}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	slots := make([][]ir.Edge, len(g.Modules))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range g.Modules {
		id := ir.ModuleID(i)
		eg.Go(func() error {
			edges, err := extractModule(egCtx, g, id, resolver)
			if err != nil {
				return err
			}
			slots[id] = edges
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, s := range slots {
		total += len(s)
	}
	out := make([]ir.Edge, 0, total)
	for _, s := range slots {
		out = append(out, s...)
	}
	return out, nil
}

func extractModule(ctx context.Context, g *ir.Graph, id ir.ModuleID, resolver Resolver) ([]ir.Edge, error) {
	var out []ir.Edge
	for _, u := range g.UnitsOf(id) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, unitEdges(u, resolver)...)
	}
	return out, nil
}

// unitEdges builds one edge per target package in first-reference order.
func unitEdges(u *ir.Unit, resolver Resolver) []ir.Edge {
	var edges []ir.Edge
	index := make(map[string]int)
	for _, ref := range u.Refs {
		pkg, ok := ir.OwningPackage(ref.To)
		if !ok {
			continue
		}
		target, scope, ok := resolver.Resolve(pkg)
		if !ok || target == u.Module {
			continue
		}
		if i, seen := index[pkg]; seen {
			edges[i].Via = append(edges[i].Via, ref)
			continue
		}
		index[pkg] = len(edges)
		edges = append(edges, ir.Edge{
			Source:      u.Module,
			SourceUnit:  u.Path,
			Target:      target,
			TargetUnit:  pkg,
			TargetScope: scope,
			Via:         []ir.TypeRef{ref},
		})
	}
	return edges
}

// checkConsistency verifies that units and modules agree on ownership.
func checkConsistency(g *ir.Graph) error {
	for _, u := range g.Units {
		if _, ok := g.Module(u.Module); !ok {
			return &ExtractionError{
				Code:    ErrCodeUnknownModule,
				Message: fmt.Sprintf("unit claims module %d which does not exist", u.Module),
				Unit:    u.Path,
			}
		}
	}
	for _, m := range g.Modules {
		for _, path := range m.Units() {
			u, ok := g.UnitByPath(path)
			if !ok || u.Module != m.ID {
				return &ExtractionError{
					Code:    ErrCodeMissingUnit,
					Message: "module lists a unit that does not belong to it",
					Unit:    path,
					Module:  m.Name,
				}
			}
		}
	}
	return nil
}
