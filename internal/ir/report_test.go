package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCanonicalCycle_Rotations tests that every rotation of a cycle shares one form.
func TestCanonicalCycle_Rotations(t *testing.T) {
	want := []string{"a", "b", "c"}

	assert.Equal(t, want, CanonicalCycle([]string{"a", "b", "c", "a"}))
	assert.Equal(t, want, CanonicalCycle([]string{"b", "c", "a", "b"}))
	assert.Equal(t, want, CanonicalCycle([]string{"c", "a", "b", "c"}))
}

// TestCanonicalCycle_Reverse tests that the reverse direction shares the form.
func TestCanonicalCycle_Reverse(t *testing.T) {
	assert.Equal(t,
		CanonicalCycle([]string{"a", "b", "c", "a"}),
		CanonicalCycle([]string{"a", "c", "b", "a"}))
}

// TestCanonicalCycle_Short tests degenerate inputs.
func TestCanonicalCycle_Short(t *testing.T) {
	assert.Empty(t, CanonicalCycle(nil))
	assert.Equal(t, []string{"a"}, CanonicalCycle([]string{"a"}))
}

// TestViolationKey_Cycle tests cycle keys ignore the stated rotation.
func TestViolationKey_Cycle(t *testing.T) {
	a := Violation{Kind: KindCycle, Cycle: []string{"shipping", "billing", "shipping"}}
	b := Violation{Kind: KindCycle, Cycle: []string{"billing", "shipping", "billing"}}

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "CYCLE:billing->shipping", a.Key())
}

// TestViolationKey_Boundary tests boundary keys use unit paths.
func TestViolationKey_Boundary(t *testing.T) {
	v := Violation{Kind: KindBoundary, SourceUnit: "app.shipping.api", TargetUnit: "app.billing.core"}
	assert.Equal(t, "BOUNDARY_VIOLATION:app.shipping.api->app.billing.core", v.Key())
}

// TestReport_PassedAndCount tests the summary helpers.
func TestReport_PassedAndCount(t *testing.T) {
	r := &Report{Root: "app"}
	assert.True(t, r.Passed())

	r.Violations = []Violation{
		{Kind: KindBoundary, SourceUnit: "x", TargetUnit: "y"},
		{Kind: KindCycle, Cycle: []string{"a", "b", "a"}},
		{Kind: KindBoundary, SourceUnit: "z", TargetUnit: "y"},
	}
	assert.False(t, r.Passed())
	assert.Equal(t, 2, r.Count(KindBoundary))
	assert.Equal(t, 1, r.Count(KindCycle))
	assert.Len(t, r.OfKind(KindBoundary), 2)
	assert.Equal(t, []string{
		"BOUNDARY_VIOLATION:x->y",
		"BOUNDARY_VIOLATION:z->y",
		"CYCLE:a->b",
	}, r.Keys())
}

// TestReport_FingerprintStable tests equal reports hash equally.
func TestReport_FingerprintStable(t *testing.T) {
	build := func() *Report {
		return &Report{
			Root: "app",
			Violations: []Violation{{
				Kind:         KindBoundary,
				SourceModule: "shipping",
				SourceUnit:   "app.shipping.api",
				TargetModule: "billing",
				TargetUnit:   "app.billing.core",
				Via:          []TypeRef{{From: "Label", To: "app.billing.core.Invoice"}},
				Message:      "boundary",
			}},
		}
	}

	fp1, err := build().Fingerprint()
	require.NoError(t, err)
	fp2, err := build().Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64)

	changed := build()
	changed.Violations[0].TargetUnit = "app.billing.impl"
	fp3, err := changed.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

// TestReport_FingerprintEmpty tests an empty report still fingerprints.
func TestReport_FingerprintEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		MustFingerprint(&Report{Root: "app"})
	})
}

// TestModel_Fingerprint tests model hashing and lookup.
func TestModel_Fingerprint(t *testing.T) {
	m := &Model{
		Root: "app",
		Modules: []ModuleSummary{
			{Name: "billing", DisplayName: "Billing", BasePackage: "app.billing", Exposed: []string{"app.billing.api"}},
		},
		Edges: []ModuleEdge{},
	}

	fp, err := m.Fingerprint()
	require.NoError(t, err)
	assert.NotEmpty(t, fp)

	s, ok := m.Summary("billing")
	require.True(t, ok)
	assert.Equal(t, "Billing", s.DisplayName)

	_, ok = m.Summary("missing")
	assert.False(t, ok)
}
