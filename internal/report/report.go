// Package report aggregates case outcomes into a run-level record and
// renders it for people (aligned text) or machines (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/gustavo-meilus/flowgate/internal/archive"
	"github.com/gustavo-meilus/flowgate/internal/flows"
	"github.com/gustavo-meilus/flowgate/internal/step"
)

// Report is the full record of one run.
//
// RunID is a UUIDv7, so report files sort by creation time. Durations
// are serialized as integer milliseconds to keep the JSON stable and
// diff-friendly.
type Report struct {
	RunID     string       `json:"run_id"`
	Mode      string       `json:"mode"`
	BaseURL   string       `json:"base_url"`
	StartedAt time.Time    `json:"started_at"`
	ElapsedMS int64        `json:"elapsed_ms"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	Total     int          `json:"total"`
	Cases     []CaseReport `json:"cases"`
}

// CaseReport is one case's outcome in serializable form.
type CaseReport struct {
	Flow          string       `json:"flow"`
	CaseID        string       `json:"case_id"`
	CaseName      string       `json:"case_name"`
	Pass          bool         `json:"pass"`
	FailedStep    string       `json:"failed_step,omitempty"`
	Diagnostic    string       `json:"diagnostic,omitempty"`
	Location      string       `json:"location,omitempty"`
	FreshIdentity string       `json:"fresh_identity,omitempty"`
	Steps         []StepReport `json:"steps,omitempty"`
	ElapsedMS     int64        `json:"elapsed_ms"`
}

// StepReport is one executed step within a case.
type StepReport struct {
	Name        string `json:"name"`
	OK          bool   `json:"ok"`
	FailedPhase string `json:"failed_phase,omitempty"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

// New assembles a report from the outcomes of one run.
func New(mode archive.Mode, baseURL string, startedAt time.Time, outcomes []flows.Outcome) *Report {
	r := &Report{
		RunID:     uuid.Must(uuid.NewV7()).String(),
		Mode:      mode.String(),
		BaseURL:   baseURL,
		StartedAt: startedAt.UTC(),
		ElapsedMS: time.Since(startedAt).Milliseconds(),
		Total:     len(outcomes),
		Cases:     make([]CaseReport, 0, len(outcomes)),
	}
	for _, out := range outcomes {
		r.Cases = append(r.Cases, caseReport(out))
		if out.Pass {
			r.Passed++
		} else {
			r.Failed++
		}
	}
	return r
}

func caseReport(out flows.Outcome) CaseReport {
	c := CaseReport{
		Flow:          out.Flow,
		CaseID:        out.CaseID,
		CaseName:      out.CaseName,
		Pass:          out.Pass,
		FailedStep:    out.FailedStep,
		Diagnostic:    out.Diagnostic,
		Location:      out.Location,
		FreshIdentity: out.FreshIdentity,
		ElapsedMS:     out.Elapsed.Milliseconds(),
	}
	for _, res := range out.Steps {
		c.Steps = append(c.Steps, stepReport(res))
	}
	return c
}

func stepReport(res step.Result) StepReport {
	s := StepReport{
		Name:      res.Step,
		OK:        res.OK,
		ElapsedMS: res.Elapsed.Milliseconds(),
	}
	if !res.OK {
		s.FailedPhase = res.Phase.String()
	}
	return s
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// WriteText renders the human-readable report: one line per case, with
// failure detail indented under the failing case, then a summary.
func (r *Report) WriteText(w io.Writer) error {
	for _, c := range r.Cases {
		if c.Pass {
			if _, err := fmt.Fprintf(w, "✓ %s/%s (%dms)\n", c.Flow, c.CaseID, c.ElapsedMS); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "✗ %s/%s (%dms)\n", c.Flow, c.CaseID, c.ElapsedMS); err != nil {
			return err
		}
		if c.Diagnostic != "" {
			fmt.Fprintf(w, "  %s\n", c.Diagnostic)
		}
		if c.Location != "" {
			fmt.Fprintf(w, "  at %s\n", c.Location)
		}
		if c.FreshIdentity != "" {
			fmt.Fprintf(w, "  fresh identity %s\n", c.FreshIdentity)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d total (mode %s, %dms)\n",
		r.Passed, r.Failed, r.Total, r.Mode, r.ElapsedMS)

	if r.OK() {
		fmt.Fprintln(w, "✓ All cases passed")
	}
	return nil
}

// WriteJSON renders the report as indented JSON, for report files and
// CI consumers.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
