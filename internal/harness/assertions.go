package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/modcheck/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Report   []ir.Violation // Full report for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Report) > 0 {
		fmt.Fprintf(&buf, "\nViolations:\n")
		for i, v := range e.Report {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, v.Key())
		}
	}

	return buf.String()
}

// assertViolationCount checks the number of violations, optionally of one kind.
func assertViolationCount(report *ir.Report, assertion Assertion) error {
	got := len(report.Violations)
	what := "violation(s)"
	if assertion.Kind != "" {
		got = report.Count(ir.ViolationKind(assertion.Kind))
		what = assertion.Kind + " violation(s)"
	}
	if got == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertViolationCount,
		Expected: fmt.Sprintf("%d %s", assertion.Count, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
		Report:   report.Violations,
	}
}

// assertViolationPresent checks that a violation with the key exists.
func assertViolationPresent(report *ir.Report, assertion Assertion) error {
	if _, ok := findViolation(report, assertion.Key); ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertViolationPresent,
		Expected: fmt.Sprintf("violation %s", assertion.Key),
		Actual:   "not found in report",
		Report:   report.Violations,
	}
}

// assertViolationAbsent checks that no violation with the key exists.
func assertViolationAbsent(report *ir.Report, assertion Assertion) error {
	v, ok := findViolation(report, assertion.Key)
	if !ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertViolationAbsent,
		Expected: fmt.Sprintf("no violation %s", assertion.Key),
		Actual:   v.Message,
		Report:   report.Violations,
	}
}

// assertMessageContains checks the message of the violation with the key.
func assertMessageContains(report *ir.Report, assertion Assertion) error {
	v, ok := findViolation(report, assertion.Key)
	if !ok {
		return &AssertionError{
			Type:     AssertMessageContains,
			Expected: fmt.Sprintf("violation %s", assertion.Key),
			Actual:   "not found in report",
			Report:   report.Violations,
		}
	}
	if strings.Contains(v.Message, assertion.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertMessageContains,
		Expected: fmt.Sprintf("message containing %q", assertion.Text),
		Actual:   v.Message,
	}
}

// assertDependsOn checks for at least one edge between the two modules.
func assertDependsOn(g *ir.Graph, edges []ir.Edge, assertion Assertion) error {
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertDependsOn,
			Expected: fmt.Sprintf("module %s depends on %s", assertion.Source, assertion.Target),
			Actual:   actual,
		}
	}

	src, ok := g.ModuleByName(assertion.Source)
	if !ok {
		return fail(fmt.Sprintf("module %s not discovered", assertion.Source))
	}
	tgt, ok := g.ModuleByName(assertion.Target)
	if !ok {
		return fail(fmt.Sprintf("module %s not discovered", assertion.Target))
	}
	for _, e := range edges {
		if e.Source == src.ID && e.Target == tgt.ID {
			return nil
		}
	}
	return fail("no dependency extracted")
}

func findViolation(report *ir.Report, key string) (ir.Violation, bool) {
	for _, v := range report.Violations {
		if v.Key() == key {
			return v, true
		}
	}
	return ir.Violation{}, false
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertViolationCount:
			err = assertViolationCount(result.Report, assertion)
		case AssertViolationPresent:
			err = assertViolationPresent(result.Report, assertion)
		case AssertViolationAbsent:
			err = assertViolationAbsent(result.Report, assertion)
		case AssertMessageContains:
			err = assertMessageContains(result.Report, assertion)
		case AssertDependsOn:
			if result.Graph == nil {
				err = fmt.Errorf("assertion[%d]: depends_on requires a discovered graph", i)
			} else {
				err = assertDependsOn(result.Graph, result.Edges, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
