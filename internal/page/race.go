package page

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// ConditionKind identifies what a racing wait is watching for.
type ConditionKind int

const (
	// LocationMatch waits for the URL to satisfy a glob pattern.
	LocationMatch ConditionKind = iota

	// TextPresent waits for literal text anywhere in the body.
	TextPresent

	// ElementVisible waits for a selector to become visible.
	ElementVisible
)

// Condition is one waitable outcome in a Race. Exactly one of Pattern,
// Text, or Selector is set, according to Kind.
type Condition struct {
	Kind     ConditionKind
	Pattern  string
	Text     string
	Selector string
}

// LocationCondition watches for the URL to match a glob pattern.
func LocationCondition(pattern string) Condition {
	return Condition{Kind: LocationMatch, Pattern: pattern}
}

// TextCondition watches for literal text in the page body.
func TextCondition(text string) Condition {
	return Condition{Kind: TextPresent, Text: text}
}

// VisibleCondition watches for a selector to become visible.
func VisibleCondition(selector string) Condition {
	return Condition{Kind: ElementVisible, Selector: selector}
}

// String describes the condition for diagnostics.
func (c Condition) String() string {
	switch c.Kind {
	case LocationMatch:
		return "location " + c.Pattern
	case TextPresent:
		return "text " + strconv.Quote(c.Text)
	case ElementVisible:
		return "visible " + c.Selector
	}
	return "unknown condition"
}

// Race waits for any one of conds under a single shared deadline and
// returns the index of the first condition satisfied.
//
// When the deadline expires before any wait resolves, every condition
// gets one direct non-blocking check; the first that already holds wins.
// Returns (-1, false) when nothing holds even then.
//
// Losing waits are abandoned through context cancellation and their
// outcomes discarded, so a late resolution or failure never surfaces
// after the race has settled.
func Race(ctx context.Context, p Page, within time.Duration, conds ...Condition) (int, bool) {
	if len(conds) == 0 {
		return -1, false
	}

	raceCtx, cancel := context.WithTimeout(ctx, within)
	defer cancel()

	type outcome struct {
		idx int
		err error
	}

	// Buffered so abandoned waiters never block on send.
	results := make(chan outcome, len(conds))
	for i, c := range conds {
		go func(idx int, c Condition) {
			results <- outcome{idx: idx, err: waitOn(raceCtx, p, c, within)}
		}(i, c)
	}

	for range conds {
		select {
		case out := <-results:
			if out.err == nil {
				return out.idx, true
			}
			// A single wait failing (usually its own expiry) does not
			// decide the race; keep draining the rest.
		case <-raceCtx.Done():
			return settle(ctx, p, conds)
		}
	}

	return settle(ctx, p, conds)
}

// settle runs one immediate check per condition after the shared
// deadline expired. A condition that happens to hold right now still
// wins; polling is over.
func settle(ctx context.Context, p Page, conds []Condition) (int, bool) {
	for i, c := range conds {
		if holdsNow(ctx, p, c) {
			return i, true
		}
	}
	return -1, false
}

func waitOn(ctx context.Context, p Page, c Condition, within time.Duration) error {
	switch c.Kind {
	case LocationMatch:
		return p.WaitLocation(ctx, c.Pattern, within)
	case TextPresent:
		return p.WaitText(ctx, c.Text, within)
	case ElementVisible:
		return p.WaitVisible(ctx, c.Selector, within)
	}
	return NewNotFoundError("race", c.String())
}

func holdsNow(ctx context.Context, p Page, c Condition) bool {
	switch c.Kind {
	case LocationMatch:
		loc, err := p.Location(ctx)
		return err == nil && MatchLocation(c.Pattern, loc)
	case TextPresent:
		body, err := p.BodyText(ctx)
		return err == nil && strings.Contains(body, c.Text)
	case ElementVisible:
		ok, err := p.Visible(ctx, c.Selector, 0)
		return err == nil && ok
	}
	return false
}
