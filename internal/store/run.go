package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/modcheck/internal/ir"
)

// ErrRunNotFound is returned when no run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded verification.
type Run struct {
	Seq              int64          `json:"seq"`
	ID               string         `json:"id"`
	Root             string         `json:"root"`
	Passed           bool           `json:"passed"`
	Truncated        bool           `json:"truncated,omitempty"`
	Fingerprint      string         `json:"fingerprint"`
	ModelFingerprint string         `json:"model_fingerprint,omitempty"`
	ToolVersion      string         `json:"tool_version"`
	ReportVersion    string         `json:"report_version"`
	ViolationCount   int            `json:"violation_count"`
	Violations       []ir.Violation `json:"violations,omitempty"`
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces random UUIDv4 run IDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewRun builds a run record from a report. modelFingerprint may be empty
// when no model was emitted.
func NewRun(id string, report *ir.Report, modelFingerprint string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("new run: invalid id %q: %w", id, err)
	}
	fp, err := report.Fingerprint()
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	return Run{
		ID:               id,
		Root:             report.Root,
		Passed:           report.Passed(),
		Truncated:        report.Truncated,
		Fingerprint:      fp,
		ModelFingerprint: modelFingerprint,
		ToolVersion:      ir.ToolVersion,
		ReportVersion:    ir.ReportVersion,
		ViolationCount:   len(report.Violations),
		Violations:       report.Violations,
	}, nil
}
