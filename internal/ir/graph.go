package ir

import "strings"

// Graph is the immutable arena holding one run's modules and units.
// Construct it with NewGraph; do not mutate the slices afterwards.
type Graph struct {
	Root      string   `json:"root"`
	Separator string   `json:"separator"`
	Modules   []Module `json:"modules"`
	Units     []Unit   `json:"units"`

	moduleByName map[string]ModuleID
	unitByPath   map[string]int
}

// NewGraph builds the lookup indexes over modules and units.
// Module IDs must equal their slice index.
func NewGraph(root, separator string, modules []Module, units []Unit) *Graph {
	g := &Graph{
		Root:         root,
		Separator:    separator,
		Modules:      modules,
		Units:        units,
		moduleByName: make(map[string]ModuleID, len(modules)),
		unitByPath:   make(map[string]int, len(units)),
	}
	for _, m := range modules {
		g.moduleByName[m.Name] = m.ID
	}
	for i, u := range units {
		g.unitByPath[u.Path] = i
	}
	return g
}

// Module returns the module with the given ID.
func (g *Graph) Module(id ModuleID) (*Module, bool) {
	if id < 0 || int(id) >= len(g.Modules) {
		return nil, false
	}
	return &g.Modules[id], true
}

// ModuleByName returns the module with the given name.
func (g *Graph) ModuleByName(name string) (*Module, bool) {
	id, ok := g.moduleByName[name]
	if !ok {
		return nil, false
	}
	return &g.Modules[id], true
}

// UnitByPath returns the unit for a package path.
func (g *Graph) UnitByPath(path string) (*Unit, bool) {
	i, ok := g.unitByPath[path]
	if !ok {
		return nil, false
	}
	return &g.Units[i], true
}

// UnitsOf returns the units owned by a module, exposed first, each group in
// first-encountered order.
func (g *Graph) UnitsOf(id ModuleID) []*Unit {
	m, ok := g.Module(id)
	if !ok {
		return nil
	}
	out := make([]*Unit, 0, len(m.Exposed)+len(m.Internal))
	for _, path := range m.Units() {
		if u, ok := g.UnitByPath(path); ok {
			out = append(out, u)
		}
	}
	return out
}

// ModuleOf returns the module a package path falls under, by prefix.
// Returns NoModule for the root package itself and for external packages.
func (g *Graph) ModuleOf(pkg string) ModuleID {
	name, ok := ChildSegment(g.Root, g.Separator, pkg)
	if !ok {
		return NoModule
	}
	id, ok := g.moduleByName[name]
	if !ok {
		return NoModule
	}
	return id
}

// ChildSegment returns the first path segment of pkg below root.
// The second result is false when pkg is not strictly below root.
func ChildSegment(root, sep, pkg string) (string, bool) {
	rest, ok := RelativePath(root, sep, pkg)
	if !ok || rest == "" {
		return "", false
	}
	if i := strings.Index(rest, sep); i >= 0 {
		return rest[:i], true
	}
	return rest, true
}

// RelativePath strips root and the separator from pkg.
// Returns ("", true) when pkg equals root.
func RelativePath(root, sep, pkg string) (string, bool) {
	if pkg == root {
		return "", true
	}
	prefix := root + sep
	if root == "" {
		prefix = ""
	}
	if !strings.HasPrefix(pkg, prefix) {
		return "", false
	}
	return pkg[len(prefix):], true
}

// OwningPackage returns the package part of a qualified type name, i.e.
// everything before the last dot. Returns false for unqualified names.
func OwningPackage(qualified string) (string, bool) {
	i := strings.LastIndex(qualified, ".")
	if i <= 0 {
		return "", false
	}
	return qualified[:i], true
}
