package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/exprtree/internal/document"
)

// Suite defines a conformance suite.
type Suite struct {
	// Name uniquely identifies this suite. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this suite validates.
	Description string `yaml:"description"`

	// Catalog is an optional CUE catalog to load before building cases.
	// Relative paths are resolved against the suite file's directory.
	Catalog string `yaml:"catalog,omitempty"`

	// Cases are built and checked in order.
	Cases []Case `yaml:"cases"`

	// Assertions validate relations between cases and the stored batch.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Case is one expression to build and check.
// Exactly one of Expression and Ref is set.
type Case struct {
	Name string `yaml:"name"`

	// Expression is the document to build. It may use dtype ref to reach
	// catalog expressions.
	Expression *document.Expression `yaml:"expression,omitempty"`

	// Ref names a catalog expression to check as is.
	Ref string `yaml:"ref,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect specifies the expected outcome of a case. Empty fields are not
// checked.
type Expect struct {
	// Error is the expected error kind (e.g. "ArityError"). When set, the
	// case must fail to build or render.
	Error string `yaml:"error,omitempty"`

	Text  string `yaml:"text,omitempty"`
	LaTeX string `yaml:"latex,omitempty"`

	// LaTeXError is the expected kind of the LaTeX rendering failure for
	// operators that have a text template only.
	LaTeXError string `yaml:"latex_error,omitempty"`

	// Kind is "atomic", "atomic operation" or "compound operation".
	Kind string `yaml:"kind,omitempty"`

	// Root is the name of the root operator.
	Root string `yaml:"root,omitempty"`

	Depth *int `yaml:"depth,omitempty"`

	// ID is the expected content id; a prefix is enough.
	ID string `yaml:"id,omitempty"`
}

// Assertion validates relations between case outcomes.
type Assertion struct {
	// Type specifies the assertion type:
	// - "same_id": listed cases share a content id
	// - "distinct_ids": listed cases have pairwise different ids
	// - "stored_count": the store holds Count distinct expressions
	// - "round_trip": listed cases (all when empty) rebuild from the store
	Type string `yaml:"type"`

	Cases []string `yaml:"cases,omitempty"`

	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertSameID      = "same_id"
	AssertDistinctIDs = "distinct_ids"
	AssertStoredCount = "stored_count"
	AssertRoundTrip   = "round_trip"
)

// LoadSuite reads and parses a suite YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative catalog path is resolved against the suite's directory.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	suite, err := ParseSuite(data)
	if err != nil {
		return nil, err
	}

	if suite.Catalog != "" && !filepath.IsAbs(suite.Catalog) {
		suite.Catalog = filepath.Join(filepath.Dir(path), suite.Catalog)
	}
	if suite.Catalog != "" {
		if _, err := os.Stat(suite.Catalog); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid suite: catalog file not found: %s", suite.Catalog)
		}
	}
	return suite, nil
}

// ParseSuite parses suite YAML. Catalog paths are left as written.
func ParseSuite(data []byte) (*Suite, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &suite, nil
}

// validateSuite checks that required fields are present and valid.
func validateSuite(s *Suite) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true

		switch {
		case c.Expression == nil && c.Ref == "":
			return fmt.Errorf("cases[%d]: one of expression or ref is required", i)
		case c.Expression != nil && c.Ref != "":
			return fmt.Errorf("cases[%d]: expression and ref are mutually exclusive", i)
		}
		if c.Expect.Error != "" && (c.Expect.Text != "" || c.Expect.LaTeX != "" || c.Expect.ID != "") {
			return fmt.Errorf("cases[%d].expect: error excludes text, latex and id", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, names); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, cases map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSameID, AssertDistinctIDs:
		if len(a.Cases) < 2 {
			return fmt.Errorf("assertions[%d]: %s needs at least two cases", index, a.Type)
		}
	case AssertStoredCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for stored_count", index)
		}
	case AssertRoundTrip:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	for _, name := range a.Cases {
		if !cases[name] {
			return fmt.Errorf("assertions[%d]: unknown case %q", index, name)
		}
	}
	return nil
}
