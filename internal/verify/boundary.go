package verify

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/modcheck/internal/ir"
)

// boundaryPass reports every edge that reaches into another module's
// internal scope. Edges leaving internal units are treated like any other.
func boundaryPass(g *ir.Graph, edges []ir.Edge) []ir.Violation {
	var out []ir.Violation
	for _, e := range edges {
		if !e.CrossesInto() {
			continue
		}
		src, _ := g.Module(e.Source)
		tgt, _ := g.Module(e.Target)
		out = append(out, ir.Violation{
			Kind:         ir.KindBoundary,
			SourceModule: src.Name,
			SourceUnit:   e.SourceUnit,
			TargetModule: tgt.Name,
			TargetUnit:   e.TargetUnit,
			Via:          slices.Clone(e.Via),
			Message: fmt.Sprintf("%s depends on %s, which is internal to module %s",
				e.SourceUnit, e.TargetUnit, tgt.Name),
		})
	}
	return out
}

// disallowedPass reports each dependency of a restricted module on a module
// outside its allowed list, once per module pair, at the first offending edge.
func disallowedPass(g *ir.Graph, edges []ir.Edge) []ir.Violation {
	type pair struct{ from, to ir.ModuleID }
	seen := make(map[pair]bool)

	var out []ir.Violation
	for _, e := range edges {
		src, _ := g.Module(e.Source)
		tgt, _ := g.Module(e.Target)
		if src.Allows(tgt.Name) {
			continue
		}
		p := pair{e.Source, e.Target}
		if seen[p] {
			continue
		}
		seen[p] = true

		allowed := "none"
		if len(src.AllowedDependencies) > 0 {
			allowed = strings.Join(src.AllowedDependencies, ", ")
		}
		out = append(out, ir.Violation{
			Kind:         ir.KindDisallowed,
			SourceModule: src.Name,
			SourceUnit:   e.SourceUnit,
			TargetModule: tgt.Name,
			TargetUnit:   e.TargetUnit,
			Via:          slices.Clone(e.Via),
			Message: fmt.Sprintf("module %s depends on %s, allowed dependencies: %s",
				src.Name, tgt.Name, allowed),
		})
	}
	return out
}
