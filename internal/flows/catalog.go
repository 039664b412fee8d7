// Package flows defines the login and registration flows as pairs of a
// state machine (the legal outcome space) and a step catalogue (the
// page interactions that walk it), plus the composer that executes test
// cases through them.
package flows

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/gustavo-meilus/flowgate/internal/fsm"
	"github.com/gustavo-meilus/flowgate/internal/step"
)

// Selectors and location patterns for the target application. The demo
// site keeps both forms on single-field-per-name pages, so CSS id
// selectors are stable.
const (
	usernameField = "#username"
	passwordField = "#password"
	confirmField  = "#confirmPassword"
	submitButton  = `button[type="submit"]`
	logoutLink    = `a[href="/logout"]`

	// alertRegions covers everywhere the application surfaces outcome
	// banners: ARIA alerts, the flash container, and bootstrap-style
	// alert boxes.
	alertRegions = `[role="alert"], #flash, .alert`

	loginPattern    = "**/login"
	securePattern   = "**/secure"
	registerPattern = "**/register"
)

// Waits groups the bounded waits used inside step phases. Every value
// must stay below the whole-case budget the runner enforces, so a
// wedged page always surfaces as a step failure rather than a case
// deadline.
type Waits struct {
	// Appear bounds element visibility waits in guards and landmarks.
	Appear time.Duration

	// ReadBack bounds the form value read-back after a fill.
	ReadBack time.Duration

	// Outcome bounds the submit step's outcome race.
	Outcome time.Duration

	// Settle bounds the best-effort waits ahead of verification.
	Settle time.Duration
}

// DefaultWaits returns the step wait profile used when configuration
// does not override it.
func DefaultWaits() Waits {
	return Waits{
		Appear:   4 * time.Second,
		ReadBack: 2 * time.Second,
		Outcome:  6 * time.Second,
		Settle:   3 * time.Second,
	}
}

// Env binds a flow's steps to a concrete site and timing profile.
type Env struct {
	// BaseURL is the application root, without a trailing slash.
	BaseURL string

	// Waits is the step wait profile.
	Waits Waits

	// Log receives step-level diagnostics. Nil means discard.
	Log *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Flow couples a machine factory with the step catalogue that drives a
// real page through the same outcome space.
type Flow struct {
	// Name is the flow identifier test-case suites reference.
	Name string

	// Fields lists the input names the flow accepts, in fill order.
	Fields []string

	// SuccessState is the machine's success terminal.
	SuccessState fsm.State

	// FreshField names the input regenerated for the designated
	// happy-path case, or "" when the flow replays fixed identities.
	FreshField string

	// Machine builds a fresh machine per execution context. Machines
	// carry position, so they are never shared.
	Machine func() *fsm.Machine

	// Steps builds the interaction sequence up to and including the
	// submit step.
	Steps func(env Env, inputs map[string]string) []step.Step

	// VerifySuccess builds the authoritative success verification step.
	VerifySuccess func(env Env) step.Step

	// VerifyError builds the verification step for an expected error
	// banner.
	VerifyError func(env Env, expected string) step.Step
}

// HasField reports whether the flow declares the input name.
func (f Flow) HasField(name string) bool {
	for _, field := range f.Fields {
		if field == name {
			return true
		}
	}
	return false
}

// ByName returns the flow registered under name.
func ByName(name string) (Flow, error) {
	switch name {
	case "login":
		return Login(), nil
	case "register":
		return Register(), nil
	}
	return Flow{}, fmt.Errorf("unknown flow %q (have %v)", name, Names())
}

// Names returns the registered flow names, sorted.
func Names() []string {
	names := []string{"login", "register"}
	sort.Strings(names)
	return names
}
