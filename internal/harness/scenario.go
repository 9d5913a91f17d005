package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/modcheck/internal/codebase"
	"github.com/roach88/modcheck/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Codebase is an inline codebase description.
	Codebase *codebase.Codebase `yaml:"codebase,omitempty"`

	// CodebaseFile is a codebase description path, relative to the
	// scenario file. Exactly one of Codebase and CodebaseFile is set.
	CodebaseFile string `yaml:"codebase_file,omitempty"`

	// Declarations is CUE source with module declarations. Optional.
	Declarations string `yaml:"declarations,omitempty"`

	Options Options `yaml:"options,omitempty"`

	// Expect is the expected verdict.
	Expect *Expect `yaml:"expect"`

	// Assertions are additional checks against the report and edges.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Options adjusts pipeline settings for one scenario.
type Options struct {
	MaxCycles        int      `yaml:"max_cycles,omitempty"`
	InternalSegments []string `yaml:"internal_segments,omitempty"`
	DefaultScope     string   `yaml:"default_scope,omitempty"`

	// ShuffleSeed permutes package order before discovery.
	ShuffleSeed *uint64 `yaml:"shuffle_seed,omitempty"`
}

// Expect is the expected verdict of a scenario.
type Expect struct {
	Passed    bool `yaml:"passed"`
	Truncated bool `yaml:"truncated,omitempty"`

	// Violations lists the expected violation keys in any order. When set
	// the report's key set must match it exactly.
	Violations []string `yaml:"violations,omitempty"`
}

// Assertion is an extra check on the run.
type Assertion struct {
	// Type is one of violation_count, violation_present, violation_absent,
	// message_contains and depends_on.
	Type string `yaml:"type"`

	// Kind restricts violation_count to one violation kind.
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of violations (violation_count).
	Count int `yaml:"count,omitempty"`

	// Key is a violation key (violation_present, violation_absent,
	// message_contains).
	Key string `yaml:"key,omitempty"`

	// Text must appear in the message (message_contains).
	Text string `yaml:"text,omitempty"`

	// Source and Target are module names (depends_on).
	Source string `yaml:"source,omitempty"`
	Target string `yaml:"target,omitempty"`
}

// Assertion type constants.
const (
	AssertViolationCount   = "violation_count"
	AssertViolationPresent = "violation_present"
	AssertViolationAbsent  = "violation_absent"
	AssertMessageContains  = "message_contains"
	AssertDependsOn        = "depends_on"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. A relative codebase_file is resolved
// against basePath.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.CodebaseFile != "" && !filepath.IsAbs(scenario.CodebaseFile) && basePath != "" {
		scenario.CodebaseFile = filepath.Join(basePath, scenario.CodebaseFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml file in dir, in name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Codebase == nil && s.CodebaseFile == "":
		return fmt.Errorf("one of codebase or codebase_file is required")
	case s.Codebase != nil && s.CodebaseFile != "":
		return fmt.Errorf("codebase and codebase_file are mutually exclusive")
	case s.Codebase != nil:
		if err := s.Codebase.Validate(); err != nil {
			return fmt.Errorf("codebase: %w", err)
		}
	default:
		if _, err := os.Stat(s.CodebaseFile); os.IsNotExist(err) {
			return fmt.Errorf("codebase file not found: %s", s.CodebaseFile)
		}
	}

	if s.Options.MaxCycles < 0 {
		return fmt.Errorf("options.max_cycles must be non-negative")
	}
	if s.Options.DefaultScope != "" {
		if _, err := parseScope(s.Options.DefaultScope); err != nil {
			return fmt.Errorf("options.%w", err)
		}
	}

	if s.Expect == nil {
		return fmt.Errorf("expect is required")
	}
	if s.Expect.Passed && len(s.Expect.Violations) > 0 {
		return fmt.Errorf("expect: passed scenario cannot list violations")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertViolationCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for violation_count", index)
		}
		if a.Kind != "" && !knownKind(a.Kind) {
			return fmt.Errorf("assertions[%d]: unknown violation kind %q", index, a.Kind)
		}
	case AssertViolationPresent, AssertViolationAbsent:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for %s", index, a.Type)
		}
	case AssertMessageContains:
		if a.Key == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: key and text are required for message_contains", index)
		}
	case AssertDependsOn:
		if a.Source == "" || a.Target == "" {
			return fmt.Errorf("assertions[%d]: source and target are required for depends_on", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func knownKind(kind string) bool {
	switch ir.ViolationKind(kind) {
	case ir.KindBoundary, ir.KindDisallowed, ir.KindCycle:
		return true
	}
	return false
}

func parseScope(s string) (ir.Scope, error) {
	switch scope := ir.Scope(strings.ToUpper(s)); scope {
	case ir.ScopeExposed, ir.ScopeInternal:
		return scope, nil
	default:
		return "", fmt.Errorf("default_scope: must be exposed or internal, got %q", s)
	}
}
