package compiler

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/modcheck/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrModuleNameEmpty      = "E101" // module name is required
	ErrDuplicateModule      = "E102" // module declared twice
	ErrScopeConflict        = "E103" // sub-package both exposed and internal
	ErrSelfDependency       = "E104" // module lists itself as allowed dependency
	ErrInvalidRelativePath  = "E105" // exposed/internal entry is not a relative sub-path
	ErrDuplicateDependency  = "E106" // allowed dependency listed twice
	ErrInvalidModuleNameFmt = "E107" // module name contains a separator
)

// ValidationError represents a declaration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// relativePathPattern matches dotted or slashed sub-package paths such as
// "api", "spi.events" or "web/handlers".
var relativePathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*([./][A-Za-z_][A-Za-z0-9_-]*)*$`)

// Validate checks compiled declarations.
// Returns all errors found (does not fail-fast).
func Validate(decls []ir.Declaration) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(decls))

	for i, decl := range decls {
		field := fmt.Sprintf("module[%d]", i)
		name := strings.TrimSpace(decl.Name)

		// E101: name is required
		if name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "module name is required and must be non-empty",
				Code:    ErrModuleNameEmpty,
			})
		} else {
			field = "module." + name
		}

		// E107: module names are single path segments
		if strings.ContainsAny(name, "./") {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("module name %q must be a single path segment", name),
				Code:    ErrInvalidModuleNameFmt,
			})
		}

		// E102: duplicate module
		if name != "" && seen[name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate module declaration: %q", name),
				Code:    ErrDuplicateModule,
			})
		}
		seen[name] = true

		errs = append(errs, validateDependencies(field, name, decl.AllowedDependencies)...)
		errs = append(errs, validatePaths(field+".exposed", decl.Exposed)...)
		errs = append(errs, validatePaths(field+".internal", decl.Internal)...)

		// E103: a sub-package cannot be both exposed and internal
		for _, p := range decl.Exposed {
			if slices.Contains(decl.Internal, p) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("sub-package %q is declared both exposed and internal", p),
					Code:    ErrScopeConflict,
				})
			}
		}
	}

	return errs
}

func validateDependencies(field, name string, deps []string) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(deps))
	for j, dep := range deps {
		depField := fmt.Sprintf("%s.allowed_dependencies[%d]", field, j)

		// E104: no self dependency
		if dep == name {
			errs = append(errs, ValidationError{
				Field:   depField,
				Message: fmt.Sprintf("module %q cannot depend on itself", name),
				Code:    ErrSelfDependency,
			})
		}

		// E106: duplicate entry
		if seen[dep] {
			errs = append(errs, ValidationError{
				Field:   depField,
				Message: fmt.Sprintf("duplicate allowed dependency %q", dep),
				Code:    ErrDuplicateDependency,
			})
		}
		seen[dep] = true
	}
	return errs
}

func validatePaths(field string, paths []string) []ValidationError {
	var errs []ValidationError
	for j, p := range paths {
		// E105: relative sub-path
		if !relativePathPattern.MatchString(p) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, j),
				Message: fmt.Sprintf("invalid sub-package path %q, expected a relative path like \"api\"", p),
				Code:    ErrInvalidRelativePath,
			})
		}
	}
	return errs
}
