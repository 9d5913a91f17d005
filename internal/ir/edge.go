package ir

// Edge is a directed cross-module dependency between two units.
//
// There is one edge per ordered (source unit, target unit) pair. Via keeps the
// type references that produced it in declaration order.
type Edge struct {
	Source      ModuleID  `json:"source_module"`
	SourceUnit  string    `json:"source_unit"`
	Target      ModuleID  `json:"target_module"`
	TargetUnit  string    `json:"target_unit"`
	TargetScope Scope     `json:"target_scope"`
	Via         []TypeRef `json:"via"`
}

// CrossesInto reports whether the edge reaches into another module's
// internal scope.
func (e Edge) CrossesInto() bool {
	return e.TargetScope == ScopeInternal && e.Target != e.Source
}
