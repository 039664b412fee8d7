// Package page defines the browser capability surface the interaction
// steps are written against.
//
// The interface is deliberately narrow: navigation, location reads,
// visibility checks, form mutation, bounded waits, and text extraction.
// Steps never hold a concrete driver type, so the same step definitions
// run against a live Chrome tab (internal/chrome) or the scripted fake
// used in tests (internal/testutil).
//
// Bounded waits take an explicit duration and report expiry as a timeout
// DriverError. Two reads soften that contract on purpose: Value returns
// the empty string when the control cannot be read in time, and Visible
// reports false instead of an error. Callers that need hard failures use
// the Wait* variants.
package page

import (
	"context"
	"time"
)

// Page is one isolated browser surface (a tab, or a scripted stand-in).
//
// Implementations must be safe for concurrent reads: the Race helper
// polls several conditions from separate goroutines. Mutating calls
// (Navigate, Click, Clear, Fill) are only ever issued sequentially by
// the step runner.
type Page interface {
	// Navigate loads the target URL and waits for basic readiness.
	// The wait is bounded by the driver's navigation timeout, not by
	// full network idle.
	Navigate(ctx context.Context, url string) error

	// Location returns the current URL.
	Location(ctx context.Context) (string, error)

	// Visible reports whether the first element matching selector is
	// visible, polling for at most within. A non-positive within means
	// a single immediate check. Expiry reports false, nil.
	Visible(ctx context.Context, selector string, within time.Duration) (bool, error)

	// WaitVisible blocks until the first element matching selector is
	// visible or within elapses, in which case it returns a timeout
	// DriverError.
	WaitVisible(ctx context.Context, selector string, within time.Duration) error

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// Clear empties the form control matching selector.
	Clear(ctx context.Context, selector string) error

	// Fill types value into the form control matching selector.
	// The control is not cleared first; callers that need a known
	// starting state call Clear.
	Fill(ctx context.Context, selector string, value string) error

	// Value reads the current value of the form control matching
	// selector, polling for at most within until the control exists.
	// Expiry returns "", nil.
	Value(ctx context.Context, selector string, within time.Duration) (string, error)

	// WaitLocation blocks until the current URL matches the glob
	// pattern (see MatchLocation) or within elapses.
	WaitLocation(ctx context.Context, pattern string, within time.Duration) error

	// WaitText blocks until the page body contains text or within
	// elapses. Matching is literal.
	WaitText(ctx context.Context, text string, within time.Duration) error

	// Text returns the visible text of the first element matching
	// selector.
	Text(ctx context.Context, selector string) (string, error)

	// TextAll returns the visible text of every element matching
	// selector, in document order. A selector matching nothing yields
	// an empty slice, not an error.
	TextAll(ctx context.Context, selector string) ([]string, error)

	// BodyText returns the visible text of the whole document body.
	BodyText(ctx context.Context) (string, error)
}

// Browser creates isolated pages. Each test case gets its own page so
// cookies, storage, and navigation history never leak between cases.
type Browser interface {
	// NewPage opens a fresh page. The returned cleanup function closes
	// it and must be called exactly once.
	NewPage(ctx context.Context) (Page, func(), error)
}
