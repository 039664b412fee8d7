// Package step implements the atomic interaction unit of the harness:
// a named guard/action/verify triple executed against a page, producing
// a Result value instead of a propagated error.
package step

import (
	"context"

	"github.com/gustavo-meilus/flowgate/internal/page"
)

// GuardFunc checks page state without mutating it. False means the
// step must not run; an error is treated the same way after logging.
type GuardFunc func(ctx context.Context, p page.Page) (bool, error)

// ActionFunc performs the step's single mutation of the page.
type ActionFunc func(ctx context.Context, p page.Page) error

// Step is one atomic page interaction.
//
// Construction has no side effects; nothing touches the page until the
// step is given to Run. Steps are value types and may be rebuilt freely
// per execution, so they never cache page state between runs.
//
// Any of the three phases may be nil, in which case it passes trivially.
type Step struct {
	// Name appears in every diagnostic for this step.
	Name string

	// Pre validates that the page is in a state where the action makes
	// sense. It must not mutate the page.
	Pre GuardFunc

	// Do performs the interaction. It runs at most once per Run and is
	// never retried.
	Do ActionFunc

	// Post verifies that the action produced the expected page state.
	// It must not mutate the page.
	Post GuardFunc
}
