package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/modcheck/internal/ir"
)

// marshalJSON encodes v as compact JSON TEXT without HTML escaping.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// marshalVia converts type references to JSON TEXT. Nil encodes as [].
func marshalVia(refs []ir.TypeRef) (string, error) {
	if refs == nil {
		refs = []ir.TypeRef{}
	}
	s, err := marshalJSON(refs)
	if err != nil {
		return "", fmt.Errorf("marshal via: %w", err)
	}
	return s, nil
}

// marshalCycle converts a cycle path to JSON TEXT. Nil encodes as [].
func marshalCycle(cycle []string) (string, error) {
	if cycle == nil {
		cycle = []string{}
	}
	s, err := marshalJSON(cycle)
	if err != nil {
		return "", fmt.Errorf("marshal cycle: %w", err)
	}
	return s, nil
}

// unmarshalVia parses JSON TEXT back to type references. Empty lists decode
// to nil so loaded violations compare equal to fresh ones.
func unmarshalVia(data string) ([]ir.TypeRef, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var refs []ir.TypeRef
	if err := json.Unmarshal([]byte(data), &refs); err != nil {
		return nil, fmt.Errorf("unmarshal via: %w", err)
	}
	return refs, nil
}

// unmarshalCycle parses JSON TEXT back to a cycle path.
func unmarshalCycle(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var cycle []string
	if err := json.Unmarshal([]byte(data), &cycle); err != nil {
		return nil, fmt.Errorf("unmarshal cycle: %w", err)
	}
	return cycle, nil
}
