package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/gustavo-meilus/flowgate/internal/fsm"
	"github.com/gustavo-meilus/flowgate/internal/page"
	"github.com/gustavo-meilus/flowgate/internal/step"
	"github.com/gustavo-meilus/flowgate/internal/testcase"
)

// Outcome is the verdict for one executed case.
type Outcome struct {
	Flow     string
	CaseID   string
	CaseName string

	// Pass reports whether every step completed and, for error cases,
	// the expected banner was found.
	Pass bool

	// FailedStep names the step that stopped the case. Empty on pass
	// or when the case was rejected before any step ran.
	FailedStep string

	// Diagnostic is the failure message, empty on pass.
	Diagnostic string

	// Location is the page URL captured at the moment of failure.
	Location string

	// FreshIdentity holds the regenerated value when the flow declares
	// a fresh field and the case expects success. Recording it lets a
	// failing run be replayed by hand.
	FreshIdentity string

	// Steps holds every executed step's result, in order.
	Steps []step.Result

	// Elapsed is the wall-clock duration of the whole case.
	Elapsed time.Duration
}

// Composer turns a flow and a case into an executed, judged run: it
// regenerates fresh identities, assembles the step sequence including
// the verification tail, and walks the steps until one fails.
//
// Thread-safety: a Composer is stateless between cases and safe for
// concurrent use; the page handle is owned by the caller and must not
// be shared across concurrent Run calls.
type Composer struct {
	env Env
	ids IdentityGenerator
}

// NewComposer creates a composer for the environment. A nil generator
// defaults to UniqueIdentity.
func NewComposer(env Env, ids IdentityGenerator) *Composer {
	if ids == nil {
		ids = UniqueIdentity{}
	}
	return &Composer{env: env, ids: ids}
}

// Run executes one case against an open page.
//
// The case's expected state must be a declared terminal of the flow's
// machine; anything else is a suite authoring error and fails before
// the page is touched. When the expected state is the flow's success
// state the verification tail asserts the success view; when the case
// declares an expected error banner the tail asserts that banner
// instead. Failures carry the failing step's diagnostic verbatim.
func (c *Composer) Run(ctx context.Context, p page.Page, fl Flow, tc testcase.Case) Outcome {
	log := c.env.logger().With("flow", fl.Name, "case", tc.ID)
	started := time.Now()

	out := Outcome{Flow: fl.Name, CaseID: tc.ID, CaseName: tc.Name}

	machine := fl.Machine()
	expected := fsm.State(tc.ExpectedState)
	if !machine.Has(expected) || !machine.IsTerminal(expected) {
		out.Diagnostic = fmt.Sprintf("expected state %q is not a terminal state of flow %q", tc.ExpectedState, fl.Name)
		out.Elapsed = time.Since(started)
		log.Error("case rejected", "diagnostic", out.Diagnostic)
		return out
	}
	for field := range tc.Inputs {
		if !fl.HasField(field) {
			out.Diagnostic = fmt.Sprintf("flow %q has no field %q", fl.Name, field)
			out.Elapsed = time.Since(started)
			log.Error("case rejected", "diagnostic", out.Diagnostic)
			return out
		}
	}

	inputs := make(map[string]string, len(tc.Inputs))
	for k, v := range tc.Inputs {
		inputs[k] = v
	}
	if fl.FreshField != "" && expected == fl.SuccessState {
		fresh := c.ids.Fresh(inputs[fl.FreshField])
		inputs[fl.FreshField] = fresh
		out.FreshIdentity = fresh
		log.Debug("regenerated identity", "field", fl.FreshField, "value", fresh)
	}

	steps := fl.Steps(c.env, inputs)
	switch {
	case expected == fl.SuccessState:
		steps = append(steps, fl.VerifySuccess(c.env))
	case tc.ExpectedError != "":
		steps = append(steps, fl.VerifyError(c.env, tc.ExpectedError))
	}

	for _, s := range steps {
		res := step.Run(ctx, p, s)
		out.Steps = append(out.Steps, res)
		if !res.OK {
			out.FailedStep = res.Step
			out.Diagnostic = res.Message()
			if loc, err := p.Location(ctx); err == nil {
				out.Location = loc
			}
			out.Elapsed = time.Since(started)
			log.Error("case failed",
				"step", res.Step,
				"phase", res.Phase.String(),
				"diagnostic", out.Diagnostic,
				"location", out.Location,
			)
			return out
		}
		log.Debug("step passed", "step", res.Step, "elapsed", res.Elapsed)
	}

	// The success view is authoritative; the banner text is checked
	// informatively so copy changes do not break suites.
	if expected == fl.SuccessState && tc.ExpectedMessage != "" {
		if ok, layer := MatchMessage(ctx, p, tc.ExpectedMessage); ok {
			log.Debug("success message matched", "layer", layer)
		} else {
			log.Warn("success message not found", "expected", tc.ExpectedMessage)
		}
	}

	out.Pass = true
	out.Elapsed = time.Since(started)
	log.Info("case passed", "steps", len(out.Steps), "elapsed", out.Elapsed)
	return out
}
