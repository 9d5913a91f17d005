package ir

import "slices"

// Scope classifies a unit as part of its module's public surface or not.
type Scope string

const (
	// ScopeExposed marks packages intended for cross-module use.
	ScopeExposed Scope = "EXPOSED"

	// ScopeInternal marks packages private to their module.
	ScopeInternal Scope = "INTERNAL"
)

// ModuleID indexes Graph.Modules. IDs follow discovery order.
type ModuleID int

// NoModule is returned by lookups that resolve to no known module.
const NoModule ModuleID = -1

// Module is a top-level package under the root namespace.
type Module struct {
	ID          ModuleID `json:"id"`
	Name        string   `json:"name"`         // path segment under the root
	DisplayName string   `json:"display_name"` // declared, or Name
	BasePackage string   `json:"base_package"` // full package path

	// Exposed and Internal hold full package paths in first-encountered order.
	// Together they partition the module's packages that contain types.
	Exposed  []string `json:"exposed"`
	Internal []string `json:"internal"`

	// AllowedDependencies restricts outgoing module dependencies.
	// nil means unrestricted; an empty non-nil slice allows none.
	AllowedDependencies []string `json:"allowed_dependencies,omitempty"`
}

// Restricted reports whether the module declared its allowed dependencies.
func (m *Module) Restricted() bool {
	return m.AllowedDependencies != nil
}

// Allows reports whether a dependency on the named module is permitted.
func (m *Module) Allows(name string) bool {
	if !m.Restricted() {
		return true
	}
	return slices.Contains(m.AllowedDependencies, name)
}

// Units returns every package path of the module, exposed first.
func (m *Module) Units() []string {
	out := make([]string, 0, len(m.Exposed)+len(m.Internal))
	out = append(out, m.Exposed...)
	return append(out, m.Internal...)
}

// TypeRef is a single outgoing type reference declared by a unit member.
type TypeRef struct {
	From string `json:"from"` // simple name of the referencing type
	To   string `json:"to"`   // qualified name of the referenced type
}

// Unit is a single package node inside a module.
type Unit struct {
	Path   string    `json:"path"`
	Module ModuleID  `json:"module"`
	Scope  Scope     `json:"scope"`
	Types  []string  `json:"types"`
	Refs   []TypeRef `json:"refs"` // declaration order
}

// Declaration is the declared metadata for a module, compiled from CUE.
// Exposed and Internal hold sub-package paths relative to the module base.
type Declaration struct {
	Name                string   `json:"name"`
	DisplayName         string   `json:"display_name,omitempty"`
	AllowedDependencies []string `json:"allowed_dependencies,omitempty"`
	Exposed             []string `json:"exposed,omitempty"`
	Internal            []string `json:"internal,omitempty"`
}
