// Package chrome implements page.Page against a real Chromium instance
// over the DevTools protocol, using chromedp.
//
// One Browser owns the Chrome process; every NewPage call opens a tab
// in its own incognito browser context, so cases never share cookies,
// storage, or login state. In record and replay modes the tab's network
// traffic runs through the fetch domain interceptors in intercept.go.
package chrome

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/gustavo-meilus/flowgate/internal/archive"
	"github.com/gustavo-meilus/flowgate/internal/page"
)

// Options configures the browser and every page opened from it.
type Options struct {
	// Headless runs Chrome without a visible window.
	Headless bool

	// Navigation bounds each Navigate call. Defaults to 30s.
	Navigation time.Duration

	// Action bounds each single interaction (click, fill, read).
	// Defaults to 10s.
	Action time.Duration

	// Mode selects live, record, or replay traffic handling.
	// Defaults to live.
	Mode archive.Mode

	// Archive is the exchange store. Required unless Mode is live.
	Archive *archive.Archive

	// Session names the archive session traffic is recorded into or
	// replayed from. Required unless Mode is live.
	Session string

	// Log receives driver diagnostics. Nil means discard.
	Log *slog.Logger
}

// Browser owns one Chrome process.
//
// Thread-safety: NewPage may be called from concurrent workers; the
// process is started exactly once, and each page lives in its own
// browser context.
type Browser struct {
	opts Options
	log  *slog.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc

	startOnce     sync.Once
	startErr      error
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowser prepares a Chrome allocator. The process itself starts
// lazily on the first NewPage call, so constructing a Browser is cheap
// and cannot leave an orphaned process behind on config errors.
func NewBrowser(opts Options) (*Browser, error) {
	if opts.Navigation <= 0 {
		opts.Navigation = 30 * time.Second
	}
	if opts.Action <= 0 {
		opts.Action = 10 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = archive.ModeLive
	}
	if opts.Mode != archive.ModeLive {
		if opts.Archive == nil {
			return nil, fmt.Errorf("chrome: %s mode requires an archive", opts.Mode)
		}
		if opts.Session == "" {
			return nil, fmt.Errorf("chrome: %s mode requires a session id", opts.Mode)
		}
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &Browser{
		opts:        opts,
		log:         log,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}, nil
}

func (b *Browser) start() error {
	b.startOnce.Do(func() {
		b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)
		b.startErr = chromedp.Run(b.browserCtx)
	})
	return b.startErr
}

// NewPage opens a tab in a fresh incognito browser context. The cleanup
// function closes the tab; the ctx only bounds page setup, not the
// tab's lifetime.
func (b *Browser) NewPage(ctx context.Context) (page.Page, func(), error) {
	if err := b.start(); err != nil {
		return nil, nil, fmt.Errorf("chrome: start browser: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// A separate browser context per page is what isolates cookies and
	// storage between cases.
	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx, chromedp.WithNewBrowserContext())

	// Materialize the target so interception can attach to it.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, nil, fmt.Errorf("chrome: open tab: %w", err)
	}

	switch b.opts.Mode {
	case archive.ModeRecord:
		if err := enableRecording(tabCtx, b.opts.Archive, b.opts.Session, b.log); err != nil {
			tabCancel()
			return nil, nil, fmt.Errorf("chrome: enable recording: %w", err)
		}
	case archive.ModeReplay:
		if err := enableReplay(tabCtx, b.opts.Archive, b.opts.Session, b.log); err != nil {
			tabCancel()
			return nil, nil, fmt.Errorf("chrome: enable replay: %w", err)
		}
	}

	p := &Page{ctx: tabCtx, opts: b.opts, log: b.log}
	return p, func() { tabCancel() }, nil
}

// Close tears down every remaining tab and the Chrome process. Call it
// after all pages are done.
func (b *Browser) Close() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	b.allocCancel()
}
