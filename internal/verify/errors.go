package verify

import (
	"errors"
	"fmt"

	"github.com/roach88/modcheck/internal/ir"
)

// VerificationFailed carries a non-empty report.
//
// It is the expected negative outcome of a run, not a crash. Verify never
// returns it; callers obtain it from Check when they want a failed report to
// flow through error handling.
type VerificationFailed struct {
	Report *ir.Report
}

// Error implements the error interface.
func (e *VerificationFailed) Error() string {
	boundary := e.Report.Count(ir.KindBoundary)
	disallowed := e.Report.Count(ir.KindDisallowed)
	cycles := e.Report.Count(ir.KindCycle)
	return fmt.Sprintf("verification failed: %d violation(s) (%d boundary, %d disallowed, %d cycle)",
		len(e.Report.Violations), boundary, disallowed, cycles)
}

// Check returns a *VerificationFailed if the report has violations.
func Check(report *ir.Report) error {
	if report == nil || report.Passed() {
		return nil
	}
	return &VerificationFailed{Report: report}
}

// IsVerificationFailed returns true if err is or wraps a VerificationFailed.
func IsVerificationFailed(err error) bool {
	var vf *VerificationFailed
	return errors.As(err, &vf)
}
