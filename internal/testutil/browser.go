package testutil

import (
	"context"
	"sync"

	"github.com/gustavo-meilus/flowgate/internal/page"
)

// FakeBrowser hands out fake pages, one per NewPage call, so runner
// tests can script each case's page ahead of time.
//
// Pages given to NewFakeBrowser are served in order; once they run out,
// fresh empty fakes are served. Scripted runs should therefore size the
// page list to the case count.
//
// Thread-safety: safe for concurrent use; the runner opens pages from
// parallel workers.
type FakeBrowser struct {
	mu     sync.Mutex
	pages  []*FakePage
	next   int
	opened int
	closed int
}

// NewFakeBrowser creates a browser serving the given pages in order.
func NewFakeBrowser(pages ...*FakePage) *FakeBrowser {
	return &FakeBrowser{pages: pages}
}

// NewPage implements page.Browser.
func (b *FakeBrowser) NewPage(context.Context) (page.Page, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var p *FakePage
	if b.next < len(b.pages) {
		p = b.pages[b.next]
		b.next++
	} else {
		p = NewFakePage()
	}
	b.opened++

	return p, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed++
	}, nil
}

// OpenedCount returns how many pages were handed out.
func (b *FakeBrowser) OpenedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

// ClosedCount returns how many page cleanups ran.
func (b *FakeBrowser) ClosedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
