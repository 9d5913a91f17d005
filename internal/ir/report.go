package ir

import (
	"fmt"
	"slices"
	"strings"
)

// ViolationKind tags a violation with its rule.
type ViolationKind string

const (
	// KindBoundary is a dependency reaching into another module's internal scope.
	KindBoundary ViolationKind = "BOUNDARY_VIOLATION"

	// KindCycle is a closed path of module-level dependencies.
	KindCycle ViolationKind = "CYCLE"

	// KindDisallowed is a dependency on a module outside the declared
	// allowed-dependency list of its source.
	KindDisallowed ViolationKind = "DISALLOWED_DEPENDENCY"
)

// Violation is a single architectural rule breach.
type Violation struct {
	Kind         ViolationKind `json:"kind"`
	SourceModule string        `json:"source_module,omitempty"`
	SourceUnit   string        `json:"source_unit,omitempty"`
	TargetModule string        `json:"target_module,omitempty"`
	TargetUnit   string        `json:"target_unit,omitempty"`
	Via          []TypeRef     `json:"via,omitempty"`
	Cycle        []string      `json:"cycle,omitempty"` // closed: first == last
	Message      string        `json:"message"`
}

// Key identifies the violation independently of discovery order.
// Cycles are keyed by their smallest rotation in either direction, so
// A→B→C→A, B→C→A→B and A→C→B→A share a key.
func (v Violation) Key() string {
	switch v.Kind {
	case KindCycle:
		return string(v.Kind) + ":" + strings.Join(CanonicalCycle(v.Cycle), "->")
	case KindBoundary:
		return fmt.Sprintf("%s:%s->%s", v.Kind, v.SourceUnit, v.TargetUnit)
	default:
		return fmt.Sprintf("%s:%s->%s", v.Kind, v.SourceModule, v.TargetModule)
	}
}

// String implements fmt.Stringer.
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// CanonicalCycle returns the open node sequence of a closed cycle rotated to
// its lexicographically smallest form, considering both directions.
func CanonicalCycle(closed []string) []string {
	if len(closed) < 2 {
		return slices.Clone(closed)
	}
	open := closed[:len(closed)-1]
	if closed[0] != closed[len(closed)-1] {
		open = closed
	}
	best := minRotation(open)
	reversed := slices.Clone(open)
	slices.Reverse(reversed)
	if alt := minRotation(reversed); slices.Compare(alt, best) < 0 {
		best = alt
	}
	return best
}

func minRotation(nodes []string) []string {
	var best []string
	for i := range nodes {
		rot := append(slices.Clone(nodes[i:]), nodes[:i]...)
		if best == nil || slices.Compare(rot, best) < 0 {
			best = rot
		}
	}
	return best
}

// Report is the aggregated outcome of one verification run.
// An empty report means the codebase verified.
type Report struct {
	Root       string      `json:"root"`
	Violations []Violation `json:"violations"`

	// Truncated is set when the cycle pass stopped at its configured limit.
	Truncated bool `json:"truncated,omitempty"`
}

// Passed reports whether the run found no violations.
func (r *Report) Passed() bool {
	return len(r.Violations) == 0
}

// Count returns the number of violations of the given kind.
func (r *Report) Count(kind ViolationKind) int {
	n := 0
	for _, v := range r.Violations {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

// OfKind returns the violations of the given kind in report order.
func (r *Report) OfKind(kind ViolationKind) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// Keys returns the sorted violation keys. Two runs over the same codebase
// read in different package orders produce equal key sets.
func (r *Report) Keys() []string {
	keys := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		keys[i] = v.Key()
	}
	slices.Sort(keys)
	return keys
}

// Fingerprint returns the content hash of the report's canonical form.
func (r *Report) Fingerprint() (string, error) {
	data, err := MarshalCanonical(r.canonical())
	if err != nil {
		return "", fmt.Errorf("report fingerprint: %w", err)
	}
	return hashWithDomain(DomainReport, data), nil
}

func (r *Report) canonical() map[string]any {
	violations := make([]any, len(r.Violations))
	for i, v := range r.Violations {
		entry := map[string]any{
			"kind":    string(v.Kind),
			"message": v.Message,
		}
		putString(entry, "source_module", v.SourceModule)
		putString(entry, "source_unit", v.SourceUnit)
		putString(entry, "target_module", v.TargetModule)
		putString(entry, "target_unit", v.TargetUnit)
		if len(v.Via) > 0 {
			entry["via"] = canonicalRefs(v.Via)
		}
		if len(v.Cycle) > 0 {
			entry["cycle"] = stringsToAny(v.Cycle)
		}
		violations[i] = entry
	}
	return map[string]any{
		"root":       r.Root,
		"violations": violations,
		"truncated":  r.Truncated,
	}
}

func canonicalRefs(refs []TypeRef) []any {
	out := make([]any, len(refs))
	for i, ref := range refs {
		out[i] = map[string]any{"from": ref.From, "to": ref.To}
	}
	return out
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
