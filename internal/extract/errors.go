package extract

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes extraction failures.
type ErrorCode string

const (
	// ErrCodeUnknownModule indicates a unit claims a module that is not in the graph.
	ErrCodeUnknownModule ErrorCode = "X001"

	// ErrCodeMissingUnit indicates a module lists a unit path with no unit.
	ErrCodeMissingUnit ErrorCode = "X002"
)

// ExtractionError reports an inconsistent graph. It is fatal for the run.
type ExtractionError struct {
	Code    ErrorCode
	Message string
	Unit    string
	Module  string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	switch {
	case e.Unit != "" && e.Module != "":
		return fmt.Sprintf("%s: %s (unit=%s, module=%s)", e.Code, e.Message, e.Unit, e.Module)
	case e.Unit != "":
		return fmt.Sprintf("%s: %s (unit=%s)", e.Code, e.Message, e.Unit)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsExtractionError returns true if err is or wraps an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
