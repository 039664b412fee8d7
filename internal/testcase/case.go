// Package testcase loads the YAML suites that drive the harness: one
// file per flow, each listing cases with form inputs and the machine
// terminal state the case is expected to end in.
//
// Suites are validated twice on load. The embedded CUE schema rejects
// shape errors with source positions, then strict YAML decoding and
// structural checks catch what the schema cannot express (duplicate
// ids, for instance). Loaded suites are plain data and never mutated.
package testcase

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Case is one scripted walk through a flow.
type Case struct {
	// ID uniquely identifies the case within its suite.
	ID string `yaml:"id"`

	// Name says what the case demonstrates.
	Name string `yaml:"name"`

	// Inputs maps flow field names to the values typed into them.
	// An empty value means the field is deliberately left untouched.
	Inputs map[string]string `yaml:"inputs"`

	// ExpectedState names the flow machine terminal the case must
	// reach.
	ExpectedState string `yaml:"expected_state"`

	// ExpectedMessage optionally names the banner a success case
	// shows. It is checked non-fatally.
	ExpectedMessage string `yaml:"expected_message,omitempty"`

	// ExpectedError names the banner an error case must show. Error
	// verification runs only when this is set.
	ExpectedError string `yaml:"expected_error,omitempty"`
}

// Suite is one flow's set of cases.
type Suite struct {
	// Flow names the registered flow the cases run against.
	Flow string `yaml:"flow"`

	// Description explains what the suite covers.
	Description string `yaml:"description,omitempty"`

	// Cases lists the cases in execution order.
	Cases []Case `yaml:"cases"`

	// Path records where the suite was loaded from. Not part of the
	// YAML document.
	Path string `yaml:"-"`
}

// LoadSuite reads and parses a suite YAML file. It fails when the file
// is missing, violates the CUE schema, contains unknown fields (typos),
// or is structurally invalid.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("suite %s: %w", path, err)
	}

	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSuite(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}

	suite.Path = path
	return &suite, nil
}

// LoadDir loads every .yaml/.yml suite under dir, sorted by path so
// runs are ordered the same everywhere.
func LoadDir(dir string) ([]*Suite, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan suite directory: %w", err)
	}
	sort.Strings(files)

	suites := make([]*Suite, 0, len(files))
	for _, f := range files {
		s, err := LoadSuite(f)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// validateSuite checks what the schema cannot express.
func validateSuite(s *Suite) error {
	if s.Flow == "" {
		return fmt.Errorf("flow is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.ID == "" {
			return fmt.Errorf("cases[%d]: id is required", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("cases[%d]: duplicate case id %q", i, c.ID)
		}
		seen[c.ID] = true

		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if c.Inputs == nil {
			return fmt.Errorf("cases[%d]: inputs is required (use an empty map for none)", i)
		}
		if c.ExpectedState == "" {
			return fmt.Errorf("cases[%d]: expected_state is required", i)
		}
	}

	return nil
}
