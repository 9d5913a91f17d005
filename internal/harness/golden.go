package harness

import (
	"cmp"
	"context"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/modcheck/internal/ir"
)

// ReportSnapshot captures the verdict of a scenario execution.
// Violations are sorted by key so the snapshot does not depend on package
// order.
type ReportSnapshot struct {
	ScenarioName string
	Passed       bool
	Truncated    bool
	Violations   []ir.Violation
}

// NewReportSnapshot builds the snapshot of a result.
func NewReportSnapshot(name string, result *Result) ReportSnapshot {
	violations := slices.Clone(result.Report.Violations)
	slices.SortStableFunc(violations, func(a, b ir.Violation) int {
		return cmp.Compare(a.Key(), b.Key())
	})
	return ReportSnapshot{
		ScenarioName: name,
		Passed:       result.Report.Passed(),
		Truncated:    result.Report.Truncated,
		Violations:   violations,
	}
}

// toCanonicalMap converts the snapshot to a map[string]any for canonical
// JSON serialization. ir.MarshalCanonical only handles primitives, slices
// and maps.
func (s *ReportSnapshot) toCanonicalMap() map[string]any {
	violations := make([]any, len(s.Violations))
	for i, v := range s.Violations {
		violations[i] = map[string]any{
			"key":     v.Key(),
			"message": v.Message,
		}
	}
	return map[string]any{
		"scenario":   s.ScenarioName,
		"passed":     s.Passed,
		"truncated":  s.Truncated,
		"violations": violations,
	}
}

// Marshal returns the canonical JSON of the snapshot.
func (s *ReportSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the report against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass and Errors.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewReportSnapshot(scenarioName, result)
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
