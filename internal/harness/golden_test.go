package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modcheck/internal/ir"
)

// TestScenarios_Golden runs every scenario in testdata/scenarios and
// compares its report snapshot against testdata/golden.
func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestReportSnapshot_SortsByKey(t *testing.T) {
	result := &Result{Report: &ir.Report{
		Root: "app",
		Violations: []ir.Violation{
			{Kind: ir.KindCycle, Cycle: []string{"x", "y", "x"}, Message: "second"},
			{Kind: ir.KindBoundary, SourceUnit: "app.a", TargetUnit: "app.b.core", Message: "first"},
		},
	}}

	snap := NewReportSnapshot("sorted", result)
	require.Len(t, snap.Violations, 2)
	assert.Equal(t, "first", snap.Violations[0].Message)
	assert.False(t, snap.Passed)

	data, err := snap.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"passed":false,"scenario":"sorted","truncated":false,"violations":[`+
			`{"key":"BOUNDARY_VIOLATION:app.a->app.b.core","message":"first"},`+
			`{"key":"CYCLE:x->y","message":"second"}]}`,
		string(data))
}

func TestReportSnapshot_DoesNotReorderReport(t *testing.T) {
	report := &ir.Report{Violations: []ir.Violation{
		{Kind: ir.KindCycle, Cycle: []string{"x", "y", "x"}},
		{Kind: ir.KindBoundary, SourceUnit: "a", TargetUnit: "b"},
	}}
	NewReportSnapshot("x", &Result{Report: report})
	assert.Equal(t, ir.KindCycle, report.Violations[0].Kind)
}

func TestAssertGolden_Existing(t *testing.T) {
	result := &Result{Report: &ir.Report{Root: "com.shop", Violations: []ir.Violation{}}}
	require.NoError(t, AssertGolden(t, "clean", result))
}
