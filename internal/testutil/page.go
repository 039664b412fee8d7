package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gustavo-meilus/flowgate/internal/page"
)

const pollInterval = 2 * time.Millisecond

// FakePage is a scriptable, in-memory page.Page implementation.
//
// Tests describe the page with setters (SetVisible, SetBody, ...) and
// wire application behavior with hooks: Route functions run when a URL
// is navigated to, OnClick functions run when a selector is clicked,
// and After schedules a delayed mutation, which is how timed outcomes
// such as a slow error banner are emulated.
//
// Every interaction is counted so tests can assert that an action ran
// exactly once or not at all.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, matching the Page contract for racing waits.
type FakePage struct {
	mu sync.Mutex

	location string
	values   map[string]string
	visible  map[string]bool
	texts    map[string][]string
	body     string

	routes     map[string]func(*FakePage)
	clickHooks map[string]func(*FakePage)

	navigateErr error
	clickErr    map[string]error
	fillErr     map[string]error

	navigations int
	clicks      int
	clears      int
	fills       int
}

// NewFakePage creates an empty fake page at a blank location.
func NewFakePage() *FakePage {
	return &FakePage{
		values:     make(map[string]string),
		visible:    make(map[string]bool),
		texts:      make(map[string][]string),
		routes:     make(map[string]func(*FakePage)),
		clickHooks: make(map[string]func(*FakePage)),
		clickErr:   make(map[string]error),
		fillErr:    make(map[string]error),
	}
}

// SetLocation moves the fake to a URL without counting a navigation.
func (f *FakePage) SetLocation(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.location = url
}

// SetVisible marks a selector visible or hidden.
func (f *FakePage) SetVisible(selector string, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible[selector] = visible
}

// SetValue sets a form control's value directly.
func (f *FakePage) SetValue(selector, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[selector] = value
}

// SetTexts sets the text contents returned for a selector, in order.
func (f *FakePage) SetTexts(selector string, texts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[selector] = append([]string(nil), texts...)
}

// SetBody sets the document body text.
func (f *FakePage) SetBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = body
}

// Route registers a function that runs whenever the fake navigates to
// url, emulating what the application serves there.
func (f *FakePage) Route(url string, apply func(*FakePage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[url] = apply
}

// OnClick registers a function that runs whenever selector is clicked,
// emulating the application's response to the click.
func (f *FakePage) OnClick(selector string, apply func(*FakePage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clickHooks[selector] = apply
}

// After schedules a mutation to run once d has elapsed.
func (f *FakePage) After(d time.Duration, apply func(*FakePage)) {
	time.AfterFunc(d, func() { apply(f) })
}

// FailNavigate makes every Navigate call return err.
func (f *FakePage) FailNavigate(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigateErr = err
}

// FailClick makes Click on selector return err.
func (f *FakePage) FailClick(selector string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clickErr[selector] = err
}

// FailFill makes Fill on selector return err.
func (f *FakePage) FailFill(selector string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fillErr[selector] = err
}

// NavigationCount returns how many times Navigate ran.
func (f *FakePage) NavigationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigations
}

// ClickCount returns how many times Click ran.
func (f *FakePage) ClickCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clicks
}

// ClearCount returns how many times Clear ran.
func (f *FakePage) ClearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears
}

// FillCount returns how many times Fill ran.
func (f *FakePage) FillCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fills
}

// Navigate implements page.Page.
func (f *FakePage) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	if f.navigateErr != nil {
		err := f.navigateErr
		f.mu.Unlock()
		return err
	}
	f.navigations++
	f.location = url
	hook := f.routes[url]
	f.mu.Unlock()

	if hook != nil {
		hook(f)
	}
	return nil
}

// Location implements page.Page.
func (f *FakePage) Location(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location, nil
}

// Visible implements page.Page.
func (f *FakePage) Visible(ctx context.Context, selector string, within time.Duration) (bool, error) {
	if within <= 0 {
		return f.isVisible(selector), nil
	}

	deadline := time.Now().Add(within)
	for {
		if f.isVisible(selector) {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, nil
		case <-time.After(pollInterval):
		}
	}
}

// WaitVisible implements page.Page.
func (f *FakePage) WaitVisible(ctx context.Context, selector string, within time.Duration) error {
	deadline := time.Now().Add(within)
	for {
		if f.isVisible(selector) {
			return nil
		}
		if time.Now().After(deadline) {
			return page.NewTimeoutError("wait_visible", selector, within)
		}
		select {
		case <-ctx.Done():
			return page.NewTimeoutError("wait_visible", selector, within)
		case <-time.After(pollInterval):
		}
	}
}

// Click implements page.Page.
func (f *FakePage) Click(_ context.Context, selector string) error {
	f.mu.Lock()
	if err := f.clickErr[selector]; err != nil {
		f.mu.Unlock()
		return err
	}
	f.clicks++
	hook := f.clickHooks[selector]
	f.mu.Unlock()

	if hook != nil {
		hook(f)
	}
	return nil
}

// Clear implements page.Page.
func (f *FakePage) Clear(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.values[selector] = ""
	return nil
}

// Fill implements page.Page.
func (f *FakePage) Fill(_ context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fillErr[selector]; err != nil {
		return err
	}
	f.fills++
	f.values[selector] += value
	return nil
}

// Value implements page.Page.
func (f *FakePage) Value(ctx context.Context, selector string, within time.Duration) (string, error) {
	deadline := time.Now().Add(within)
	for {
		f.mu.Lock()
		v, ok := f.values[selector]
		f.mu.Unlock()
		if ok {
			return v, nil
		}
		if time.Now().After(deadline) {
			// Unreadable controls read back as empty per the Page contract.
			return "", nil
		}
		select {
		case <-ctx.Done():
			return "", nil
		case <-time.After(pollInterval):
		}
	}
}

// WaitLocation implements page.Page.
func (f *FakePage) WaitLocation(ctx context.Context, pattern string, within time.Duration) error {
	deadline := time.Now().Add(within)
	for {
		f.mu.Lock()
		loc := f.location
		f.mu.Unlock()
		if page.MatchLocation(pattern, loc) {
			return nil
		}
		if time.Now().After(deadline) {
			return page.NewTimeoutError("wait_location", pattern, within)
		}
		select {
		case <-ctx.Done():
			return page.NewTimeoutError("wait_location", pattern, within)
		case <-time.After(pollInterval):
		}
	}
}

// WaitText implements page.Page.
func (f *FakePage) WaitText(ctx context.Context, text string, within time.Duration) error {
	deadline := time.Now().Add(within)
	for {
		f.mu.Lock()
		body := f.body
		f.mu.Unlock()
		if strings.Contains(body, text) {
			return nil
		}
		if time.Now().After(deadline) {
			return page.NewTimeoutError("wait_text", text, within)
		}
		select {
		case <-ctx.Done():
			return page.NewTimeoutError("wait_text", text, within)
		case <-time.After(pollInterval):
		}
	}
}

// Text implements page.Page.
func (f *FakePage) Text(_ context.Context, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ts := f.texts[selector]; len(ts) > 0 {
		return ts[0], nil
	}
	return "", page.NewNotFoundError("text", selector)
}

// TextAll implements page.Page.
func (f *FakePage) TextAll(_ context.Context, selector string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts[selector]...), nil
}

// BodyText implements page.Page.
func (f *FakePage) BodyText(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.body, nil
}

func (f *FakePage) isVisible(selector string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible[selector]
}
