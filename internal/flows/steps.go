package flows

import (
	"context"
	"log/slog"

	"github.com/gustavo-meilus/flowgate/internal/page"
	"github.com/gustavo-meilus/flowgate/internal/step"
)

// visibleGuard passes once the selector is visible, polling for at most
// within. Expiry reads as a guard failure, not an error.
func visibleGuard(selector string, w Waits) step.GuardFunc {
	return func(ctx context.Context, p page.Page) (bool, error) {
		return p.Visible(ctx, selector, w.Appear)
	}
}

// navigateStep loads url and confirms arrival.
//
// The guard blocks redundant navigation: a page already matching the
// target pattern fails the precondition instead of reloading. Arrival
// means the URL matches the pattern and the landmark element is
// visible.
func navigateStep(name, url, pattern, landmark string, w Waits) step.Step {
	return step.Step{
		Name: name,
		Pre: func(ctx context.Context, p page.Page) (bool, error) {
			loc, err := p.Location(ctx)
			if err != nil {
				return false, err
			}
			return !page.MatchLocation(pattern, loc), nil
		},
		Do: func(ctx context.Context, p page.Page) error {
			return p.Navigate(ctx, url)
		},
		Post: func(ctx context.Context, p page.Page) (bool, error) {
			loc, err := p.Location(ctx)
			if err != nil {
				return false, err
			}
			if !page.MatchLocation(pattern, loc) {
				return false, nil
			}
			return p.Visible(ctx, landmark, w.Appear)
		},
	}
}

// fillStep clears the control and types value into it.
//
// An empty value still clears but skips the typing, leaving the control
// empty. Verification reads the value back with a bounded wait; an
// unreadable control reads as empty, which still verifies correctly for
// the skipped case.
func fillStep(name, selector, value string, w Waits) step.Step {
	return step.Step{
		Name: name,
		Pre:  visibleGuard(selector, w),
		Do: func(ctx context.Context, p page.Page) error {
			if err := p.Clear(ctx, selector); err != nil {
				return err
			}
			if value == "" {
				return nil
			}
			return p.Fill(ctx, selector, value)
		},
		Post: func(ctx context.Context, p page.Page) (bool, error) {
			got, err := p.Value(ctx, selector, w.ReadBack)
			if err != nil {
				return false, err
			}
			return got == value, nil
		},
	}
}

// submitStep clicks the submit control and waits for any known outcome
// signal: the success navigation, a known error banner text, or an
// alert region turning visible.
//
// The step settles, it does not judge. Whichever signal shows up first
// (or none at all before the deadline) the postcondition reports true
// and leaves the verdict to the verification step that follows; the
// observed signal only goes to the debug log.
func submitStep(name, button string, w Waits, log *slog.Logger, outcomes ...page.Condition) step.Step {
	return step.Step{
		Name: name,
		Pre:  visibleGuard(button, w),
		Do: func(ctx context.Context, p page.Page) error {
			return p.Click(ctx, button)
		},
		Post: func(ctx context.Context, p page.Page) (bool, error) {
			idx, ok := page.Race(ctx, p, w.Outcome, outcomes...)
			if ok {
				log.Debug("submit outcome signal observed",
					"step", name,
					"condition", outcomes[idx].String(),
				)
			} else {
				log.Debug("no outcome signal before deadline, deferring to verification",
					"step", name,
				)
			}
			return true, nil
		},
	}
}

// verifySuccessStep asserts the flow reached its success view: URL
// matching the pattern with the landmark element visible.
//
// The guard gives navigation a best-effort chance to finish and is
// ignored on expiry; the postcondition is the authoritative check, so
// a success view that never arrives fails here and nowhere else.
func verifySuccessStep(name, pattern, landmark string, w Waits, log *slog.Logger) step.Step {
	return step.Step{
		Name: name,
		Pre: func(ctx context.Context, p page.Page) (bool, error) {
			if err := p.WaitLocation(ctx, pattern, w.Settle); err != nil {
				log.Debug("success navigation still pending", "step", name, "pattern", pattern)
			}
			return true, nil
		},
		Post: func(ctx context.Context, p page.Page) (bool, error) {
			loc, err := p.Location(ctx)
			if err != nil {
				return false, err
			}
			if !page.MatchLocation(pattern, loc) {
				return false, nil
			}
			return p.Visible(ctx, landmark, w.Appear)
		},
	}
}

// verifyErrorStep asserts the expected error banner is on the page,
// through the layered matching of MatchMessage.
//
// The guard waits best-effort for either the text or any alert region
// and is ignored on expiry. The postcondition is authoritative.
func verifyErrorStep(name, expected string, w Waits, log *slog.Logger) step.Step {
	return step.Step{
		Name: name,
		Pre: func(ctx context.Context, p page.Page) (bool, error) {
			_, ok := page.Race(ctx, p, w.Settle,
				page.TextCondition(expected),
				page.VisibleCondition(alertRegions),
			)
			if !ok {
				log.Debug("error banner still pending", "step", name, "expected", expected)
			}
			return true, nil
		},
		Post: func(ctx context.Context, p page.Page) (bool, error) {
			matched, layer := MatchMessage(ctx, p, expected)
			if matched {
				log.Debug("expected message matched", "step", name, "layer", layer)
			}
			return matched, nil
		},
	}
}
