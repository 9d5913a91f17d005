package ir

import "fmt"

// Model is the documentation-ready projection of a module graph.
type Model struct {
	Root    string          `json:"root"`
	Modules []ModuleSummary `json:"modules"`
	Edges   []ModuleEdge    `json:"edges"`
}

// ModuleSummary describes one module for diagrams and the textual index.
type ModuleSummary struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	BasePackage string             `json:"base_package"`
	Exposed     []string           `json:"exposed"`
	Internal    []string           `json:"internal"`
	DependsOn   []ModuleDependency `json:"depends_on"`
}

// ModuleDependency is an outgoing dependency aggregated to module granularity.
type ModuleDependency struct {
	Module     string `json:"module"`
	References int    `json:"references"`
}

// ModuleEdge is a deduplicated module-level edge.
type ModuleEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	References int    `json:"references"`
}

// Summary returns the summary for the named module.
func (m *Model) Summary(name string) (*ModuleSummary, bool) {
	for i := range m.Modules {
		if m.Modules[i].Name == name {
			return &m.Modules[i], true
		}
	}
	return nil, false
}

// Fingerprint returns the content hash of the model's canonical form.
func (m *Model) Fingerprint() (string, error) {
	modules := make([]any, len(m.Modules))
	for i, s := range m.Modules {
		deps := make([]any, len(s.DependsOn))
		for j, d := range s.DependsOn {
			deps[j] = map[string]any{"module": d.Module, "references": d.References}
		}
		modules[i] = map[string]any{
			"name":         s.Name,
			"display_name": s.DisplayName,
			"base_package": s.BasePackage,
			"exposed":      stringsToAny(s.Exposed),
			"internal":     stringsToAny(s.Internal),
			"depends_on":   deps,
		}
	}
	edges := make([]any, len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = map[string]any{"from": e.From, "to": e.To, "references": e.References}
	}

	data, err := MarshalCanonical(map[string]any{
		"root":    m.Root,
		"modules": modules,
		"edges":   edges,
	})
	if err != nil {
		return "", fmt.Errorf("model fingerprint: %w", err)
	}
	return hashWithDomain(DomainModel, data), nil
}
