package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tpgm/internal/store"
)

// Scenario defines an end-to-end query scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the path of the query document. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Document string `yaml:"document"`

	// Variables overrides the document's pattern variables when set.
	Variables []string `yaml:"variables,omitempty"`

	// Expect lists the checks applied to the run.
	Expect Expect `yaml:"expect"`
}

// Expect holds the expected outcome of a scenario.
type Expect struct {
	// Unfolded is the rendering of the rewritten predicate.
	Unfolded string `yaml:"unfolded,omitempty"`

	// SQL is the WHERE fragment compiled with the default column naming.
	SQL string `yaml:"sql,omitempty"`

	// Matches are the expected embeddings, in store order (by element id
	// of each variable). nil skips the check.
	Matches []store.Embedding `yaml:"matches"`

	// Error is a substring of the expected failure. When set, the run must
	// fail and no other check applies.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) {
		scenario.Document = filepath.Join(filepath.Dir(path), scenario.Document)
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

	if s.Document == "" {
		return fmt.Errorf("document is required")
	}
	if _, err := os.Stat(s.Document); os.IsNotExist(err) {
		return fmt.Errorf("document not found: %s", s.Document)
	}

	e := s.Expect
	if e.Error != "" && (e.Unfolded != "" || e.SQL != "" || e.Matches != nil) {
		return fmt.Errorf("expect: error excludes unfolded, sql and matches")
	}
	if e.Error == "" && e.Unfolded == "" && e.SQL == "" && e.Matches == nil {
		return fmt.Errorf("expect: at least one of unfolded, sql, matches, error is required")
	}

	for i, m := range e.Matches {
		if len(m) == 0 {
			return fmt.Errorf("expect.matches[%d]: empty embedding", i)
		}
	}

	return nil
}
