package step

import (
	"fmt"
	"time"
)

// Phase identifies which stage of a step produced an outcome.
type Phase int

const (
	// PhaseNone means no phase failed.
	PhaseNone Phase = iota

	// PhasePre is the guard stage.
	PhasePre

	// PhaseAction is the mutation stage.
	PhaseAction

	// PhasePost is the verification stage.
	PhasePost
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre-condition"
	case PhaseAction:
		return "action"
	case PhasePost:
		return "post-condition"
	default:
		return "none"
	}
}

// Result is the outcome of running a single step.
//
// A Result is either passing (OK true, diagnostic fields zero) or
// failing (OK false, Phase and Reason set). Failures never travel as
// Go errors past the runner; callers branch on OK and read Message
// for the user-facing diagnostic.
type Result struct {
	// OK reports whether every phase passed.
	OK bool

	// Step is the name of the step that produced this result.
	Step string

	// Phase is the stage that failed. PhaseNone when OK.
	Phase Phase

	// Reason preserves the underlying cause (guard error text, action
	// error text, panic value). Diagnostic detail only; the user-facing
	// string comes from Message.
	Reason string

	// Elapsed is how long the step ran, across all phases executed.
	Elapsed time.Duration
}

// Passed builds a passing result for the named step.
func Passed(name string) Result {
	return Result{OK: true, Step: name}
}

// Fail builds a failing result for the named step.
func Fail(name string, phase Phase, reason string) Result {
	return Result{Step: name, Phase: phase, Reason: reason}
}

// Message renders the deterministic failure diagnostic. The wording is
// fixed per phase so reports stay stable across runs; the varying cause
// appears only for action failures, where it names what actually broke.
// Returns "" for passing results.
func (r Result) Message() string {
	if r.OK {
		return ""
	}
	switch r.Phase {
	case PhasePre:
		return fmt.Sprintf("[%s] Pre-condition failed: UI state invalid.", r.Step)
	case PhaseAction:
		return fmt.Sprintf("[%s] Action failed: %s", r.Step, r.Reason)
	case PhasePost:
		return fmt.Sprintf("[%s] Post-condition failed: Expected state not reached.", r.Step)
	default:
		return fmt.Sprintf("[%s] failed", r.Step)
	}
}
