package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/gustavo-meilus/flowgate/internal/page"
)

// pollInterval is how often Go-side waits re-check the page.
const pollInterval = 100 * time.Millisecond

// Page is one Chrome tab living in its own browser context.
//
// Every operation derives its deadline from the tab context, so a dead
// tab stops all waits promptly; the caller's context is honored too,
// which is how the per-case budget cuts a wedged wait short.
type Page struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger
}

// run executes chromedp actions bounded by within, honoring ctx.
func (p *Page) run(ctx context.Context, within time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, within)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// wrap classifies a chromedp error into a DriverError where the cause
// is recognizable.
func (p *Page) wrap(op, target string, within time.Duration, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return page.NewTimeoutError(op, target, within)
	case errors.Is(err, context.Canceled):
		return &page.DriverError{
			Code:    page.ErrCodeDetached,
			Op:      op,
			Target:  target,
			Message: "page closed",
			Err:     err,
		}
	default:
		return fmt.Errorf("%s %q: %w", op, target, err)
	}
}

// Navigate implements page.Page.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, p.opts.Navigation, chromedp.Navigate(url)); err != nil {
		return &page.DriverError{
			Code:    page.ErrCodeNavigation,
			Op:      "navigate",
			Target:  url,
			Message: "navigation failed",
			Err:     err,
		}
	}
	p.log.Debug("navigated", "url", url)
	return nil
}

// Location implements page.Page.
func (p *Page) Location(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, p.opts.Action, chromedp.Location(&loc)); err != nil {
		return "", p.wrap("location", "", p.opts.Action, err)
	}
	return loc, nil
}

// Visible implements page.Page. A non-positive within performs a single
// immediate check; otherwise expiry reports false, nil.
func (p *Page) Visible(ctx context.Context, selector string, within time.Duration) (bool, error) {
	if within <= 0 {
		var visible bool
		if err := p.run(ctx, p.opts.Action, chromedp.Evaluate(visibleExpr(selector), &visible)); err != nil {
			return false, p.wrap("visible", selector, p.opts.Action, err)
		}
		return visible, nil
	}

	err := p.run(ctx, within, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false, nil
	}
	return false, p.wrap("visible", selector, within, err)
}

// WaitVisible implements page.Page.
func (p *Page) WaitVisible(ctx context.Context, selector string, within time.Duration) error {
	if err := p.run(ctx, within, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return p.wrap("wait_visible", selector, within, err)
	}
	return nil
}

// Click implements page.Page.
func (p *Page) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, p.opts.Action, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return p.wrap("click", selector, p.opts.Action, err)
	}
	return nil
}

// Clear implements page.Page.
func (p *Page) Clear(ctx context.Context, selector string) error {
	if err := p.run(ctx, p.opts.Action, chromedp.Clear(selector, chromedp.ByQuery)); err != nil {
		return p.wrap("clear", selector, p.opts.Action, err)
	}
	return nil
}

// Fill implements page.Page.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	if err := p.run(ctx, p.opts.Action, chromedp.SendKeys(selector, value, chromedp.ByQuery)); err != nil {
		return p.wrap("fill", selector, p.opts.Action, err)
	}
	return nil
}

// Value implements page.Page. An unreadable control reads as empty.
func (p *Page) Value(ctx context.Context, selector string, within time.Duration) (string, error) {
	var v string
	err := p.run(ctx, within, chromedp.Value(selector, &v, chromedp.ByQuery))
	if err == nil {
		return v, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "", nil
	}
	return "", p.wrap("value", selector, within, err)
}

// WaitLocation implements page.Page. The glob semantics live in
// page.MatchLocation, so this polls from the Go side instead of
// delegating to an in-page expression.
func (p *Page) WaitLocation(ctx context.Context, pattern string, within time.Duration) error {
	deadline := time.Now().Add(within)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		loc, err := p.Location(ctx)
		if err == nil && page.MatchLocation(pattern, loc) {
			return nil
		}
		if time.Now().After(deadline) {
			return page.NewTimeoutError("wait_location", pattern, within)
		}
		select {
		case <-ctx.Done():
			return page.NewTimeoutError("wait_location", pattern, within)
		case <-p.ctx.Done():
			return page.NewTimeoutError("wait_location", pattern, within)
		case <-ticker.C:
		}
	}
}

// WaitText implements page.Page. Matching is literal, against the
// rendered body text.
func (p *Page) WaitText(ctx context.Context, text string, within time.Duration) error {
	expr := fmt.Sprintf(`document.body && document.body.innerText.includes(%s)`, jsString(text))
	var found bool
	err := p.run(ctx, within, chromedp.Poll(expr, &found, chromedp.WithPollingInterval(pollInterval)))
	if err != nil {
		return p.wrap("wait_text", text, within, err)
	}
	return nil
}

// Text implements page.Page.
func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	expr := fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	return el ? el.innerText : null;
})()`, jsString(selector))

	var out *string
	if err := p.run(ctx, p.opts.Action, chromedp.Evaluate(expr, &out)); err != nil {
		return "", p.wrap("text", selector, p.opts.Action, err)
	}
	if out == nil {
		return "", page.NewNotFoundError("text", selector)
	}
	return *out, nil
}

// TextAll implements page.Page.
func (p *Page) TextAll(ctx context.Context, selector string) ([]string, error) {
	expr := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(el => el.innerText)`, jsString(selector))

	var out []string
	if err := p.run(ctx, p.opts.Action, chromedp.Evaluate(expr, &out)); err != nil {
		return nil, p.wrap("text_all", selector, p.opts.Action, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// BodyText implements page.Page.
func (p *Page) BodyText(ctx context.Context) (string, error) {
	var out string
	expr := `document.body ? document.body.innerText : ""`
	if err := p.run(ctx, p.opts.Action, chromedp.Evaluate(expr, &out)); err != nil {
		return "", p.wrap("body_text", "body", p.opts.Action, err)
	}
	return out, nil
}

// jsString renders s as a JavaScript string literal. JSON string
// encoding is valid JavaScript for any input, including quotes in CSS
// selectors.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// visibleExpr builds the immediate visibility check: element exists,
// is not display:none or visibility:hidden, and has a box.
func visibleExpr(selector string) string {
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.visibility === 'hidden' || style.display === 'none') return false;
	const rect = el.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
})()`, jsString(selector))
}
