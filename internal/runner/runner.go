// Package runner fans suites of test cases out over a bounded worker
// pool. Every case runs on its own page, so parallel cases cannot see
// each other's cookies or navigation, and a single wedged case is cut
// off by its own deadline instead of stalling the run.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gustavo-meilus/flowgate/internal/flows"
	"github.com/gustavo-meilus/flowgate/internal/page"
	"github.com/gustavo-meilus/flowgate/internal/testcase"
)

// Options tunes the pool.
type Options struct {
	// Workers is the number of cases running concurrently. Defaults
	// to 1, which keeps runs strictly sequential.
	Workers int

	// CaseTimeout is the whole-case budget, covering page setup and
	// every step. Defaults to 90s. It must exceed the longest step
	// wait or a slow page reads as a case timeout.
	CaseTimeout time.Duration

	// Log receives scheduling diagnostics. Nil means discard.
	Log *slog.Logger
}

// Runner executes suites against a browser.
type Runner struct {
	browser  page.Browser
	composer *flows.Composer
	opts     Options
	log      *slog.Logger
}

// New creates a runner. The composer carries the flow environment; the
// browser supplies one isolated page per case.
func New(browser page.Browser, composer *flows.Composer, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.CaseTimeout <= 0 {
		opts.CaseTimeout = 90 * time.Second
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{browser: browser, composer: composer, opts: opts, log: log}
}

type job struct {
	flow flows.Flow
	tc   testcase.Case
}

// Run executes every case of every suite and returns one outcome per
// case, in suite order regardless of which worker finished first.
//
// An unknown flow name fails the whole run before any page opens; a
// failing case does not, it is reported through its outcome. The
// returned error is non-nil only for authoring errors or a cancelled
// context, and outcomes collected before cancellation are returned
// alongside it.
func (r *Runner) Run(ctx context.Context, suites []*testcase.Suite) ([]flows.Outcome, error) {
	jobs := make([]job, 0)
	for _, s := range suites {
		fl, err := flows.ByName(s.Flow)
		if err != nil {
			return nil, fmt.Errorf("suite %s: %w", s.Path, err)
		}
		for _, tc := range s.Cases {
			jobs = append(jobs, job{flow: fl, tc: tc})
		}
	}
	if len(jobs) == 0 {
		return []flows.Outcome{}, nil
	}

	r.log.Info("run started", "cases", len(jobs), "workers", r.opts.Workers)

	// Each worker writes only its own slot, so outcomes keep suite
	// order without locking.
	outcomes := make([]flows.Outcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, jb := range jobs {
		g.Go(func() error {
			outcomes[i] = r.runCase(gctx, jb)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, ctx.Err()
}

// runCase gives one case a page and a deadline. Workers never return
// errors; a case that cannot even get a page still produces a failing
// outcome so the report stays complete.
func (r *Runner) runCase(ctx context.Context, jb job) flows.Outcome {
	caseCtx, cancel := context.WithTimeout(ctx, r.opts.CaseTimeout)
	defer cancel()

	r.log.Debug("case dispatched", "flow", jb.flow.Name, "case", jb.tc.ID)

	p, closePage, err := r.browser.NewPage(caseCtx)
	if err != nil {
		r.log.Error("open page", "flow", jb.flow.Name, "case", jb.tc.ID, "error", err)
		return flows.Outcome{
			Flow:       jb.flow.Name,
			CaseID:     jb.tc.ID,
			CaseName:   jb.tc.Name,
			Diagnostic: fmt.Sprintf("failed to open page: %v", err),
		}
	}
	defer closePage()

	return r.composer.Run(caseCtx, p, jb.flow, jb.tc)
}
