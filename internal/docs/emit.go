// Package docs projects a module graph into a documentation model and renders
// it as diagrams and a textual index.
package docs

import (
	"slices"

	"github.com/roach88/modcheck/internal/ir"
)

// Emit builds the documentation model for g.
//
// Modules keep discovery order. Each module's dependencies and the global
// edge list are deduplicated to module granularity in first-seen order;
// References counts the type references behind each module edge. Emit does
// not validate anything and works on failed graphs too.
func Emit(g *ir.Graph, edges []ir.Edge) *ir.Model {
	model := &ir.Model{
		Root:    g.Root,
		Modules: make([]ir.ModuleSummary, len(g.Modules)),
		Edges:   []ir.ModuleEdge{},
	}
	for i, m := range g.Modules {
		model.Modules[i] = ir.ModuleSummary{
			Name:        m.Name,
			DisplayName: m.DisplayName,
			BasePackage: m.BasePackage,
			Exposed:     nonNil(m.Exposed),
			Internal:    nonNil(m.Internal),
			DependsOn:   []ir.ModuleDependency{},
		}
	}

	type pair struct{ from, to ir.ModuleID }
	edgeIndex := make(map[pair]int)
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		src, ok := g.Module(e.Source)
		if !ok {
			continue
		}
		tgt, ok := g.Module(e.Target)
		if !ok {
			continue
		}
		refs := len(e.Via)

		p := pair{e.Source, e.Target}
		if i, seen := edgeIndex[p]; seen {
			model.Edges[i].References += refs
			deps := model.Modules[e.Source].DependsOn
			for j := range deps {
				if deps[j].Module == tgt.Name {
					deps[j].References += refs
				}
			}
			continue
		}
		edgeIndex[p] = len(model.Edges)
		model.Edges = append(model.Edges, ir.ModuleEdge{From: src.Name, To: tgt.Name, References: refs})
		model.Modules[e.Source].DependsOn = append(model.Modules[e.Source].DependsOn,
			ir.ModuleDependency{Module: tgt.Name, References: refs})
	}
	return model
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
