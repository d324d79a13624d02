package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nestedjson/internal/codec"
)

// Scenario scripts one edit session.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the initial document text.
	Document string `yaml:"document,omitempty"`

	// File names a file holding the initial document, relative to the
	// scenario file. Exactly one of Document and File is set.
	File string `yaml:"file,omitempty"`

	// Indent is the save indent width. Defaults to 2.
	Indent *int `yaml:"indent,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final session state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one session action. Exactly one of Add, Reset and Save is set.
type Step struct {
	// Add is a path in any notation to store Value at.
	Add string `yaml:"add,omitempty"`

	// Value is typed input, inferred as the session does.
	Value string `yaml:"value,omitempty"`

	// Overwrite allows replacing an existing leaf.
	Overwrite bool `yaml:"overwrite,omitempty"`

	// Reset discards every edit since the last save.
	Reset bool `yaml:"reset,omitempty"`

	// Save writes the document; Force skips the mass-removal check.
	Save  bool `yaml:"save,omitempty"`
	Force bool `yaml:"force,omitempty"`

	// ExpectError is the error code the step must fail with, e.g.
	// CONFLICT, DUPLICATE_KEY, INVALID_PATH or MASS_REMOVAL.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step kinds.
const (
	StepAdd   = "add"
	StepReset = "reset"
	StepSave  = "save"
)

// Kind names the action the step performs, or "" if none or several are set.
func (s Step) Kind() string {
	kind, n := "", 0
	if s.Add != "" {
		kind, n = StepAdd, n+1
	}
	if s.Reset {
		kind, n = StepReset, n+1
	}
	if s.Save {
		kind, n = StepSave, n+1
	}
	if n != 1 {
		return ""
	}
	return kind
}

// Assertion validates the final session state.
type Assertion struct {
	// Type specifies the assertion type:
	// stats, changed, leaves, value, absent, pending, writes
	Type string `yaml:"type"`

	// Path is a leaf path in any notation (value, absent).
	Path string `yaml:"path,omitempty"`

	// Paths are canonical paths (changed, leaves, pending).
	Paths []string `yaml:"paths,omitempty"`

	// Equals is JSON text compared canonically (value).
	Equals string `yaml:"equals,omitempty"`

	// Counts (stats). Unset counts are not checked.
	Added    *int `yaml:"added,omitempty"`
	Modified *int `yaml:"modified,omitempty"`
	Removed  *int `yaml:"removed,omitempty"`

	// Count is the expected number of saves (writes).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStats   = "stats"
	AssertChanged = "changed"
	AssertLeaves  = "leaves"
	AssertValue   = "value"
	AssertAbsent  = "absent"
	AssertPending = "pending"
	AssertWrites  = "writes"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A file: reference is resolved relative to the scenario and read.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.File != "" {
		docPath := scenario.File
		if !filepath.IsAbs(docPath) {
			docPath = filepath.Join(filepath.Dir(path), docPath)
		}
		text, err := os.ReadFile(docPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read document file: %w", err)
		}
		scenario.Document = string(text)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. File references are left unresolved.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
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

	if (s.Document == "") == (s.File == "") {
		return fmt.Errorf("exactly one of document and file is required")
	}

	if s.Indent != nil && (*s.Indent < 0 || *s.Indent > 10) {
		return fmt.Errorf("indent must be between 0 and 10")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Kind() == "" {
			return fmt.Errorf("steps[%d]: exactly one of add, reset and save is required", i)
		}
		if step.Force && !step.Save {
			return fmt.Errorf("steps[%d]: force is only valid with save", i)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
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
	case AssertStats:
		if a.Added == nil && a.Modified == nil && a.Removed == nil {
			return fmt.Errorf("assertions[%d]: stats needs at least one of added, modified, removed", index)
		}
	case AssertChanged, AssertLeaves, AssertPending:
		// An empty list is a valid expectation.
	case AssertValue:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for value", index)
		}
		if _, err := codec.Parse(a.Equals); err != nil {
			return fmt.Errorf("assertions[%d]: equals must be JSON: %w", index, err)
		}
	case AssertAbsent:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for absent", index)
		}
	case AssertWrites:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for writes", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}

	return nil
}
