package step

import (
	"context"
	"fmt"
	"time"

	"github.com/gustavo-meilus/flowgate/internal/page"
)

// Run executes one step against the page: guard, then action, then
// verification, stopping at the first phase that does not pass.
//
// The contract callers rely on:
//   - the action runs only after the guard passes, at most once,
//     and is never retried;
//   - a guard error is downgraded to a guard failure, so a broken
//     precondition check can never trigger the action;
//   - panics in any phase are recovered into a failing Result;
//   - nothing escapes as a Go error. The returned Result is the only
//     channel for failure.
func Run(ctx context.Context, p page.Page, s Step) (res Result) {
	started := time.Now()
	phase := PhasePre

	defer func() {
		if r := recover(); r != nil {
			res = Fail(s.Name, phase, fmt.Sprintf("panic: %v", r))
		}
		res.Elapsed = time.Since(started)
	}()

	if err := ctx.Err(); err != nil {
		return Fail(s.Name, PhasePre, err.Error())
	}

	if s.Pre != nil {
		ok, err := s.Pre(ctx, p)
		if err != nil {
			return Fail(s.Name, PhasePre, err.Error())
		}
		if !ok {
			return Fail(s.Name, PhasePre, "guard reported invalid state")
		}
	}

	phase = PhaseAction
	if s.Do != nil {
		if err := s.Do(ctx, p); err != nil {
			return Fail(s.Name, PhaseAction, err.Error())
		}
	}

	phase = PhasePost
	if s.Post != nil {
		ok, err := s.Post(ctx, p)
		if err != nil {
			return Fail(s.Name, PhasePost, err.Error())
		}
		if !ok {
			return Fail(s.Name, PhasePost, "expected state not reached")
		}
	}

	return Passed(s.Name)
}

// RunAll executes steps in order against the page, stopping at the
// first failure. Steps after a failed one are never started.
func RunAll(ctx context.Context, p page.Page, steps []Step) Result {
	for _, s := range steps {
		if res := Run(ctx, p, s); !res.OK {
			return res
		}
	}
	return Result{OK: true}
}
