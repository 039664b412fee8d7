package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gustavo-meilus/flowgate/internal/flows"
	"github.com/gustavo-meilus/flowgate/internal/fsm"
	"github.com/gustavo-meilus/flowgate/internal/testcase"
)

// SuiteResult holds the validation result for a single suite file.
type SuiteResult struct {
	Path   string   `json:"path"`
	Flow   string   `json:"flow,omitempty"`
	Cases  int      `json:"cases"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds the overall validation result.
type ValidationResult struct {
	Suites  []SuiteResult `json:"suites"`
	Valid   int           `json:"valid"`
	Invalid int           `json:"invalid"`
	Total   int           `json:"total"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <cases-dir>",
		Short: "Validate suite files without running them",
		Long: `Validate every test case suite under the cases directory.

Each file is checked against the embedded CUE schema, strictly decoded,
and then cross-checked against its flow: the flow must be registered,
every expected state must be a terminal state of the flow's machine,
and every input must name a declared field. No browser is started.

Exit codes:
  0 - All suites are valid
  1 - One or more suites are invalid
  2 - Command error (directory not found, etc.)

Examples:
  flowgate validate ./testdata/cases
  flowgate validate ./testdata/cases --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, casesDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(casesDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("cases directory not found: %s", casesDir))
	}

	files, err := findSuiteFiles(casesDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to scan cases directory", err)
	}
	if len(files) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no suite files found in %s", casesDir))
	}

	result := ValidationResult{
		Suites: make([]SuiteResult, 0, len(files)),
		Total:  len(files),
	}
	for _, f := range files {
		sr := validateSuiteFile(f)
		result.Suites = append(result.Suites, sr)
		if sr.Valid {
			result.Valid++
		} else {
			result.Invalid++
		}
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return WrapExitError(ExitCommandError, "failed to write result", err)
		}
	} else {
		w := cmd.OutOrStdout()
		for _, sr := range result.Suites {
			if sr.Valid {
				fmt.Fprintf(w, "✓ %s (%s, %d cases)\n", sr.Path, sr.Flow, sr.Cases)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", sr.Path)
			for _, e := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		fmt.Fprintf(w, "\n%d valid, %d invalid, %d total\n", result.Valid, result.Invalid, result.Total)
	}

	if result.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d suites invalid", result.Invalid, result.Total))
	}
	return nil
}

// findSuiteFiles finds all YAML suite files under dir, sorted by path.
func findSuiteFiles(dir string) ([]string, error) {
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
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateSuiteFile loads one suite and cross-checks it against its
// flow's machine.
func validateSuiteFile(path string) SuiteResult {
	sr := SuiteResult{Path: path}

	suite, err := testcase.LoadSuite(path)
	if err != nil {
		sr.Errors = append(sr.Errors, err.Error())
		return sr
	}
	sr.Flow = suite.Flow
	sr.Cases = len(suite.Cases)

	fl, err := flows.ByName(suite.Flow)
	if err != nil {
		sr.Errors = append(sr.Errors, err.Error())
		return sr
	}

	machine := fl.Machine()
	for _, c := range suite.Cases {
		expected := fsm.State(c.ExpectedState)
		if !machine.Has(expected) {
			sr.Errors = append(sr.Errors,
				fmt.Sprintf("case %s: expected state %q is not a state of flow %q", c.ID, c.ExpectedState, suite.Flow))
			continue
		}
		if !machine.IsTerminal(expected) {
			sr.Errors = append(sr.Errors,
				fmt.Sprintf("case %s: expected state %q is not terminal", c.ID, c.ExpectedState))
		}
		for field := range c.Inputs {
			if !fl.HasField(field) {
				sr.Errors = append(sr.Errors,
					fmt.Sprintf("case %s: flow %q has no field %q", c.ID, suite.Flow, field))
			}
		}
		if expected != fl.SuccessState && c.ExpectedMessage != "" {
			sr.Errors = append(sr.Errors,
				fmt.Sprintf("case %s: expected_message is only checked for the success state %q", c.ID, fl.SuccessState))
		}
	}

	sr.Valid = len(sr.Errors) == 0
	return sr
}
