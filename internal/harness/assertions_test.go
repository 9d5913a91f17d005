package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modcheck/internal/ir"
)

func sampleReport() *ir.Report {
	return &ir.Report{
		Root: "com.shop",
		Violations: []ir.Violation{
			{
				Kind:         ir.KindBoundary,
				SourceModule: "shipping",
				SourceUnit:   "com.shop.shipping.api",
				TargetModule: "billing",
				TargetUnit:   "com.shop.billing.core",
				Message:      "com.shop.shipping.api depends on com.shop.billing.core, which is internal to module billing",
			},
			{
				Kind:         ir.KindCycle,
				SourceModule: "billing",
				TargetModule: "shipping",
				Cycle:        []string{"billing", "shipping", "billing"},
				Message:      "cycle detected: billing → shipping → billing",
			},
		},
	}
}

func sampleGraph() (*ir.Graph, []ir.Edge) {
	g := ir.NewGraph("com.shop", ".",
		[]ir.Module{
			{ID: 0, Name: "billing", BasePackage: "com.shop.billing"},
			{ID: 1, Name: "shipping", BasePackage: "com.shop.shipping"},
		}, nil)
	edges := []ir.Edge{
		{Source: 1, SourceUnit: "com.shop.shipping.api", Target: 0, TargetUnit: "com.shop.billing.api"},
	}
	return g, edges
}

func TestAssertViolationCount(t *testing.T) {
	report := sampleReport()

	assert.NoError(t, assertViolationCount(report, Assertion{Count: 2}))
	assert.NoError(t, assertViolationCount(report, Assertion{Kind: "CYCLE", Count: 1}))
	assert.NoError(t, assertViolationCount(report, Assertion{Kind: "DISALLOWED_DEPENDENCY", Count: 0}))

	err := assertViolationCount(report, Assertion{Kind: "BOUNDARY_VIOLATION", Count: 3})
	require.Error(t, err)
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "3 BOUNDARY_VIOLATION violation(s)", aerr.Expected)
	assert.Equal(t, "1 BOUNDARY_VIOLATION violation(s)", aerr.Actual)
}

func TestAssertViolationPresentAbsent(t *testing.T) {
	report := sampleReport()

	assert.NoError(t, assertViolationPresent(report, Assertion{Key: "CYCLE:billing->shipping"}))
	assert.Error(t, assertViolationPresent(report, Assertion{Key: "CYCLE:billing->warehouse"}))

	assert.NoError(t, assertViolationAbsent(report, Assertion{Key: "CYCLE:billing->warehouse"}))
	err := assertViolationAbsent(report, Assertion{Key: "CYCLE:billing->shipping"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestAssertMessageContains(t *testing.T) {
	report := sampleReport()
	key := "BOUNDARY_VIOLATION:com.shop.shipping.api->com.shop.billing.core"

	assert.NoError(t, assertMessageContains(report, Assertion{Key: key, Text: "internal to module billing"}))

	err := assertMessageContains(report, Assertion{Key: key, Text: "internal to module shipping"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `message containing "internal to module shipping"`)

	err = assertMessageContains(report, Assertion{Key: "nope", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in report")
}

func TestAssertDependsOn(t *testing.T) {
	g, edges := sampleGraph()

	assert.NoError(t, assertDependsOn(g, edges, Assertion{Source: "shipping", Target: "billing"}))

	err := assertDependsOn(g, edges, Assertion{Source: "billing", Target: "shipping"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dependency extracted")

	err = assertDependsOn(g, edges, Assertion{Source: "warehouse", Target: "billing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module warehouse not discovered")
}

func TestAssertionError_ListsViolations(t *testing.T) {
	err := &AssertionError{
		Type:     AssertViolationCount,
		Expected: "0 violation(s)",
		Actual:   "2 violation(s)",
		Report:   sampleReport().Violations,
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: violation_count")
	assert.Contains(t, msg, "[1] BOUNDARY_VIOLATION:com.shop.shipping.api->com.shop.billing.core")
	assert.Contains(t, msg, "[2] CYCLE:billing->shipping")
}

func TestEvaluateAssertions(t *testing.T) {
	g, edges := sampleGraph()
	result := &Result{Report: sampleReport(), Graph: g, Edges: edges}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertViolationCount, Count: 2},
		{Type: AssertViolationPresent, Key: "CYCLE:billing->shipping"},
		{Type: AssertDependsOn, Source: "shipping", Target: "billing"},
	})
	assert.Empty(t, errs)

	errs = EvaluateAssertions(result, []Assertion{
		{Type: AssertViolationCount, Count: 0},
		{Type: "final_state"},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[1], `unknown assertion type "final_state"`)
}

func TestEvaluateAssertions_DependsOnWithoutGraph(t *testing.T) {
	result := &Result{Report: sampleReport()}
	errs := EvaluateAssertions(result, []Assertion{{Type: AssertDependsOn, Source: "a", Target: "b"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a discovered graph")
}
