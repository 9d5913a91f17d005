package verify

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/modcheck/internal/ir"
)

// moduleGraph is the unit graph collapsed to module granularity.
// adj[m] lists successors of m in the order their first edge was seen.
type moduleGraph struct {
	adj [][]ir.ModuleID
}

func collapse(g *ir.Graph, edges []ir.Edge) moduleGraph {
	mg := moduleGraph{adj: make([][]ir.ModuleID, len(g.Modules))}
	seen := make([]map[ir.ModuleID]bool, len(g.Modules))
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		if seen[e.Source] == nil {
			seen[e.Source] = make(map[ir.ModuleID]bool)
		}
		if seen[e.Source][e.Target] {
			continue
		}
		seen[e.Source][e.Target] = true
		mg.adj[e.Source] = append(mg.adj[e.Source], e.Target)
	}
	return mg
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Nodes are visited in ID order and successors in adjacency order, so the
// result is deterministic. Each component is returned sorted by ID.
func tarjanSCC(mg moduleGraph) [][]ir.ModuleID {
	n := len(mg.adj)
	var (
		index   = 0
		stack   []ir.ModuleID
		indices = make([]int, n)
		lowlink = make([]int, n)
		onStack = make([]bool, n)
		sccs    [][]ir.ModuleID
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(ir.ModuleID)
	strongConnect = func(v ir.ModuleID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range mg.adj[v] {
			if indices[w] < 0 {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack to form its component
		if lowlink[v] == indices[v] {
			var scc []ir.ModuleID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for v := range n {
		if indices[v] < 0 {
			strongConnect(ir.ModuleID(v))
		}
	}
	return sccs
}

// componentCycles enumerates the elementary cycles of one component.
//
// Each search starts at a member and only descends into members discovered
// after it, so every cycle is produced once, stated from its
// earliest-discovered module. A cycle whose reverse was already produced is
// skipped. The search stops after limit+1 cycles so the caller can tell that
// the limit was exceeded.
func componentCycles(ctx context.Context, mg moduleGraph, comp []ir.ModuleID, limit int) ([][]ir.ModuleID, error) {
	member := make(map[ir.ModuleID]bool, len(comp))
	for _, m := range comp {
		member[m] = true
	}

	var (
		cycles  [][]ir.ModuleID
		seen    = make(map[string]bool)
		path    []ir.ModuleID
		onStack = make(map[ir.ModuleID]bool)
	)

	full := func() bool { return len(cycles) > limit }

	var search func(start, v ir.ModuleID)
	search = func(start, v ir.ModuleID) {
		path = append(path, v)
		onStack[v] = true
		for _, w := range mg.adj[v] {
			if full() {
				break
			}
			switch {
			case w == start:
				cycle := append(slices.Clone(path), start)
				key := cycleKey(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			case member[w] && w > start && !onStack[w]:
				search(start, w)
			}
		}
		onStack[v] = false
		path = path[:len(path)-1]
	}

	for _, start := range comp {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if full() {
			break
		}
		search(start, start)
	}
	return cycles, nil
}

// cycleKey identifies a closed cycle up to rotation and reversal.
func cycleKey(closed []ir.ModuleID) string {
	names := make([]string, len(closed))
	for i, m := range closed {
		names[i] = fmt.Sprint(int(m))
	}
	return strings.Join(ir.CanonicalCycle(names), ",")
}

// cyclePass reports module cycles, searching non-trivial components
// concurrently and merging them in discovery order.
func cyclePass(ctx context.Context, g *ir.Graph, edges []ir.Edge, limit, workers int) ([]ir.Violation, bool, error) {
	mg := collapse(g, edges)

	var comps [][]ir.ModuleID
	for _, scc := range tarjanSCC(mg) {
		if len(scc) > 1 {
			comps = append(comps, scc)
		}
	}
	if len(comps) == 0 {
		return nil, false, nil
	}
	slices.SortFunc(comps, func(a, b []ir.ModuleID) int { return int(a[0] - b[0]) })

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([][][]ir.ModuleID, len(comps))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, comp := range comps {
		eg.Go(func() error {
			cycles, err := componentCycles(egCtx, mg, comp, limit)
			if err != nil {
				return err
			}
			results[i] = cycles
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, false, err
	}

	var out []ir.Violation
	truncated := false
	for _, cycles := range results {
		for _, c := range cycles {
			if len(out) == limit {
				truncated = true
				break
			}
			out = append(out, cycleViolation(g, c))
		}
	}
	return out, truncated, nil
}

func cycleViolation(g *ir.Graph, cycle []ir.ModuleID) ir.Violation {
	names := make([]string, len(cycle))
	for i, id := range cycle {
		m, _ := g.Module(id)
		names[i] = m.Name
	}
	return ir.Violation{
		Kind:         ir.KindCycle,
		SourceModule: names[0],
		TargetModule: names[1],
		Cycle:        names,
		Message:      "cycle detected: " + strings.Join(names, " → "),
	}
}
