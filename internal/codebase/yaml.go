package codebase

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads and parses a codebase description file.
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields, or fails structural validation.
func LoadYAML(path string) (*Codebase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read codebase file: %w", err)
	}

	cb, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cb, nil
}

// ParseYAML parses a codebase description.
//
// Example:
//
//	root: com.shop
//	packages:
//	  - path: com.shop.billing.api
//	    types:
//	      - name: BillingApi
//	        refs: [com.shop.billing.core.Invoice]
func ParseYAML(data []byte) (*Codebase, error) {
	var cb Codebase
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cb); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cb.Separator == "" {
		cb.Separator = DefaultSeparator
	}

	if err := cb.Validate(); err != nil {
		return nil, fmt.Errorf("invalid codebase: %w", err)
	}
	return &cb, nil
}

// MarshalYAML renders a codebase description, e.g. to snapshot a Go module
// for later runs.
func MarshalYAML(cb *Codebase) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cb); err != nil {
		return nil, fmt.Errorf("failed to encode codebase: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode codebase: %w", err)
	}
	return buf.Bytes(), nil
}
