package page

import (
	"errors"
	"fmt"
	"time"
)

// DriverError represents a failure reported by a page driver.
//
// Driver failures include:
//   - Timeout: a bounded wait expired before its condition held
//   - Not found: a selector matched no element
//   - Detached: the page or browser went away mid-operation
//   - Navigation: the target URL could not be loaded
//
// DriverError carries structured fields so step diagnostics can name
// the operation and target without parsing message strings.
type DriverError struct {
	// Code identifies the failure category.
	Code DriverErrorCode

	// Op is the driver operation that failed ("click", "wait_visible", ...).
	Op string

	// Target is the selector, pattern, or URL the operation addressed.
	Target string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// DriverErrorCode categorizes driver errors.
type DriverErrorCode string

const (
	// ErrCodeTimeout indicates a bounded wait expired.
	ErrCodeTimeout DriverErrorCode = "TIMEOUT"

	// ErrCodeNotFound indicates a selector matched no element.
	ErrCodeNotFound DriverErrorCode = "NOT_FOUND"

	// ErrCodeDetached indicates the page or browser disappeared.
	ErrCodeDetached DriverErrorCode = "DETACHED"

	// ErrCodeNavigation indicates the target URL failed to load.
	ErrCodeNavigation DriverErrorCode = "NAVIGATION"
)

// Error implements the error interface.
func (e *DriverError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s %q: %s", e.Code, e.Op, e.Target, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DriverError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error is a bounded-wait expiry.
// Uses errors.As to handle wrapped errors.
func IsTimeout(err error) bool {
	var de *DriverError
	if errors.As(err, &de) {
		return de.Code == ErrCodeTimeout
	}
	return false
}

// IsNotFound returns true if the error reports a missing element.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var de *DriverError
	if errors.As(err, &de) {
		return de.Code == ErrCodeNotFound
	}
	return false
}

// NewTimeoutError creates a DriverError for a bounded wait that expired.
func NewTimeoutError(op, target string, within time.Duration) *DriverError {
	return &DriverError{
		Code:    ErrCodeTimeout,
		Op:      op,
		Target:  target,
		Message: fmt.Sprintf("condition not met within %s", within),
	}
}

// NewNotFoundError creates a DriverError for a selector with no match.
func NewNotFoundError(op, target string) *DriverError {
	return &DriverError{
		Code:    ErrCodeNotFound,
		Op:      op,
		Target:  target,
		Message: "no matching element",
	}
}
