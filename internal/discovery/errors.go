package discovery

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes discovery failures.
type ErrorCode string

const (
	// ErrCodeNoModules indicates the root has no child packages.
	ErrCodeNoModules ErrorCode = "D001"

	// ErrCodeAmbiguousModule indicates two module names differ only by case.
	ErrCodeAmbiguousModule ErrorCode = "D002"

	// ErrCodeUnknownDeclared indicates a declaration names an undiscovered module.
	ErrCodeUnknownDeclared ErrorCode = "D003"

	// ErrCodeEmptyRoot indicates the codebase has no root namespace.
	ErrCodeEmptyRoot ErrorCode = "D004"

	// ErrCodeUnknownAllowed indicates an allowed dependency names an undiscovered module.
	ErrCodeUnknownAllowed ErrorCode = "D005"
)

// DiscoveryError reports a malformed, empty or ambiguous root structure.
// It is fatal for the run.
type DiscoveryError struct {
	Code    ErrorCode
	Message string

	// Path is the offending package or module, if any.
	Path string
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDiscoveryError returns true if err is or wraps a DiscoveryError.
func IsDiscoveryError(err error) bool {
	var de *DiscoveryError
	return errors.As(err, &de)
}

// CodeOf returns the discovery error code of err, or "" if err is not a
// DiscoveryError.
func CodeOf(err error) ErrorCode {
	var de *DiscoveryError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
