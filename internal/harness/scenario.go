package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test: a graph, optional roots and the
// assertions its compilation must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph is the path to a CUE graph document, resolved relative to the
	// scenario file when loaded.
	Graph string `yaml:"graph,omitempty"`

	// Source is an inline CUE graph document. Exactly one of Graph and
	// Source is set.
	Source string `yaml:"source,omitempty"`

	// Roots overrides the document's roots by node name.
	Roots []string `yaml:"roots,omitempty"`

	// Golden enables comparison against golden/<file>.golden next to the
	// scenario file.
	Golden bool `yaml:"golden,omitempty"`

	Assertions []Assertion `yaml:"assertions"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Assertion checks one property of a compilation. Only the fields used by
// Type are read.
type Assertion struct {
	Type     string `yaml:"type"`
	Status   string `yaml:"status,omitempty"`
	Count    int    `yaml:"count,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Code     string `yaml:"code,omitempty"`
	Node     string `yaml:"node,omitempty"`
	Severity string `yaml:"severity,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus           = "status"
	AssertInstructionCount = "instruction_count"
	AssertConvertCount     = "convert_count"
	AssertWGSLContains     = "wgsl_contains"
	AssertIRContains       = "ir_contains"
	AssertErrorCode        = "error_code"
	AssertDiagnostic       = "diagnostic"
	AssertDiagnosticCount  = "diagnostic_count"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.Path = path

	if scenario.Graph != "" && !filepath.IsAbs(scenario.Graph) {
		scenario.Graph = filepath.Join(filepath.Dir(path), scenario.Graph)
	}
	if scenario.Graph != "" {
		if _, err := os.Stat(scenario.Graph); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: graph file not found: %s", scenario.Graph)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
// Relative graph paths stay unresolved.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
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
	case s.Graph == "" && s.Source == "":
		return fmt.Errorf("one of graph or source is required")
	case s.Graph != "" && s.Source != "":
		return fmt.Errorf("graph and source are mutually exclusive")
	}

	if len(s.Assertions) == 0 && !s.Golden {
		return fmt.Errorf("assertions list is required unless golden is set")
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
	case AssertStatus:
		if a.Status != StatusOK && a.Status != StatusFailed {
			return fmt.Errorf("assertions[%d]: status must be %q or %q", index, StatusOK, StatusFailed)
		}
	case AssertInstructionCount, AssertConvertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertWGSLContains, AssertIRContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertErrorCode, AssertDiagnostic:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for %s", index, a.Type)
		}
		if a.Severity != "" && !slices.Contains([]string{"error", "warning"}, a.Severity) {
			return fmt.Errorf("assertions[%d]: severity must be error or warning", index)
		}
	case AssertDiagnosticCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
		if a.Severity != "" && !slices.Contains([]string{"error", "warning"}, a.Severity) {
			return fmt.Errorf("assertions[%d]: severity must be error or warning", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
