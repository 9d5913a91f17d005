package harness

import (
	"github.com/roach88/modcheck/internal/ir"
	"github.com/roach88/modcheck/internal/pipeline"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the expectations and all assertions hold.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	State  pipeline.State `json:"state"`
	Report *ir.Report     `json:"report,omitempty"`

	// Model is set only for runs that verified cleanly.
	Model *ir.Model `json:"model,omitempty"`

	// Graph and Edges are the discovered modules and extracted
	// unit-level dependencies.
	Graph *ir.Graph `json:"-"`
	Edges []ir.Edge `json:"-"`

	// RunID is the history record written for the run.
	RunID string `json:"run_id"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
