package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/modcheck/internal/ir"
)

// CompileDeclarations parses every entry of the top-level "module" struct.
// Declarations keep their source order. A value without a "module" field
// compiles to an empty list.
//
//	module: billing: {
//		display_name: "Billing"
//		allowed_dependencies: ["shipping"]
//		exposed: ["api"]
//		internal: ["core"]
//	}
func CompileDeclarations(v cue.Value) ([]ir.Declaration, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modulesVal := v.LookupPath(cue.ParsePath("module"))
	if !modulesVal.Exists() {
		return nil, nil
	}

	iter, err := modulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []ir.Declaration
	for iter.Next() {
		decl, err := CompileDeclaration(iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, *decl)
	}
	return decls, nil
}

// CompileDeclaration parses a single module declaration. The module name is
// the struct label.
func CompileDeclaration(v cue.Value) (*ir.Declaration, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &ir.Declaration{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = unquote(labels[len(labels)-1].String())
	}

	if _, err := v.Fields(); err != nil {
		return nil, &CompileError{
			Field:   "module." + decl.Name,
			Message: "module declaration must be a struct",
			Pos:     v.Pos(),
		}
	}

	var err error
	if decl.DisplayName, err = optionalString(v, "display_name"); err != nil {
		return nil, err
	}
	if decl.AllowedDependencies, err = optionalList(v, "allowed_dependencies"); err != nil {
		return nil, err
	}
	if decl.Exposed, err = optionalList(v, "exposed"); err != nil {
		return nil, err
	}
	if decl.Internal, err = optionalList(v, "internal"); err != nil {
		return nil, err
	}

	return decl, nil
}

// CompileSource compiles CUE source text into declarations.
func CompileSource(src, filename string) ([]ir.Declaration, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return CompileDeclarations(v)
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a string", field),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// optionalList returns nil when the field is absent and a non-nil slice when
// it is present, even if empty. allowed_dependencies relies on the difference.
func optionalList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}

	iter, err := fv.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a list of strings", field),
			Pos:     fv.Pos(),
		}
	}

	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("%s must be a list of strings", field),
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func unquote(label string) string {
	if len(label) >= 2 && label[0] == '"' && label[len(label)-1] == '"' {
		return label[1 : len(label)-1]
	}
	return label
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
