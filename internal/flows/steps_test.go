package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavo-meilus/flowgate/internal/page"
	"github.com/gustavo-meilus/flowgate/internal/step"
	"github.com/gustavo-meilus/flowgate/internal/testutil"
)

// testWaits keeps the bounded waits short so failure paths do not stall
// the suite.
func testWaits() Waits {
	return Waits{
		Appear:   80 * time.Millisecond,
		ReadBack: 40 * time.Millisecond,
		Outcome:  120 * time.Millisecond,
		Settle:   40 * time.Millisecond,
	}
}

func testEnv() Env {
	return Env{BaseURL: "https://app.example.com", Waits: testWaits()}
}

const loginURL = "https://app.example.com/login"

func TestNavigateStep_LoadsAndConfirmsArrival(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.Route(loginURL, func(p *testutil.FakePage) {
		p.SetVisible(usernameField, true)
	})

	s := navigateStep("navigate to login", loginURL, loginPattern, usernameField, testWaits())
	res := step.Run(context.Background(), fake, s)

	require.True(t, res.OK, res.Message())
	assert.Equal(t, 1, fake.NavigationCount())
}

func TestNavigateStep_GuardBlocksRedundantNavigation(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetLocation(loginURL)

	s := navigateStep("navigate to login", loginURL, loginPattern, usernameField, testWaits())
	res := step.Run(context.Background(), fake, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhasePre, res.Phase)
	assert.Equal(t, 0, fake.NavigationCount())
	assert.Equal(t, "[navigate to login] Pre-condition failed: UI state invalid.", res.Message())
}

func TestNavigateStep_MissingLandmarkFailsPost(t *testing.T) {
	fake := testutil.NewFakePage()
	// The route never reveals the username field.

	s := navigateStep("navigate to login", loginURL, loginPattern, usernameField, testWaits())
	res := step.Run(context.Background(), fake, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhasePost, res.Phase)
	assert.Equal(t, "[navigate to login] Post-condition failed: Expected state not reached.", res.Message())
}

func TestFillStep_ClearsThenTypes(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(usernameField, true)
	fake.SetValue(usernameField, "stale input")

	s := fillStep("fill username", usernameField, "practice", testWaits())
	res := step.Run(context.Background(), fake, s)

	require.True(t, res.OK, res.Message())
	assert.Equal(t, 1, fake.ClearCount())
	assert.Equal(t, 1, fake.FillCount())

	got, err := fake.Value(context.Background(), usernameField, 0)
	require.NoError(t, err)
	assert.Equal(t, "practice", got)
}

func TestFillStep_Idempotent(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(usernameField, true)

	s := fillStep("fill username", usernameField, "practice", testWaits())

	for i := 0; i < 2; i++ {
		res := step.Run(context.Background(), fake, s)
		require.True(t, res.OK, res.Message())
	}

	// Clear-then-set converges: a second run leaves the same value a
	// single run would.
	got, err := fake.Value(context.Background(), usernameField, 0)
	require.NoError(t, err)
	assert.Equal(t, "practice", got)
}

func TestFillStep_EmptyValueClearsWithoutTyping(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(passwordField, true)
	fake.SetValue(passwordField, "stale input")

	s := fillStep("fill password", passwordField, "", testWaits())
	res := step.Run(context.Background(), fake, s)

	require.True(t, res.OK, res.Message())
	assert.Equal(t, 1, fake.ClearCount())
	assert.Equal(t, 0, fake.FillCount())

	got, err := fake.Value(context.Background(), passwordField, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFillStep_HiddenControlFailsGuard(t *testing.T) {
	fake := testutil.NewFakePage()

	s := fillStep("fill username", usernameField, "practice", testWaits())
	res := step.Run(context.Background(), fake, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhasePre, res.Phase)
	assert.Equal(t, 0, fake.FillCount())
}

func TestFillStep_TypeErrorFailsAction(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(usernameField, true)
	fake.FailFill(usernameField, errors.New("element detached"))

	s := fillStep("fill username", usernameField, "practice", testWaits())
	res := step.Run(context.Background(), fake, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhaseAction, res.Phase)
	assert.Equal(t, "[fill username] Action failed: element detached", res.Message())
}

// misreadPage reads back a wrong value for every control.
type misreadPage struct {
	*testutil.FakePage
}

func (m misreadPage) Value(context.Context, string, time.Duration) (string, error) {
	return "garbled", nil
}

func TestFillStep_ReadBackMismatchFailsPost(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(usernameField, true)

	s := fillStep("fill username", usernameField, "practice", testWaits())
	res := step.Run(context.Background(), misreadPage{fake}, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhasePost, res.Phase)
	assert.Equal(t, 1, fake.FillCount())
}

func TestSubmitStep_SettlesOnOutcomeSignal(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(submitButton, true)
	fake.OnClick(submitButton, func(p *testutil.FakePage) {
		p.SetLocation("https://app.example.com/secure")
	})

	env := testEnv()
	s := submitStep("submit login", submitButton, env.Waits, env.logger(),
		page.LocationCondition(securePattern))
	res := step.Run(context.Background(), fake, s)

	require.True(t, res.OK, res.Message())
	assert.Equal(t, 1, fake.ClickCount())
}

func TestSubmitStep_PassesEvenWhenNothingSettles(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(submitButton, true)

	env := testEnv()
	s := submitStep("submit login", submitButton, env.Waits, env.logger(),
		page.LocationCondition(securePattern))
	res := step.Run(context.Background(), fake, s)

	// The submit step settles, it does not judge. Verification steps
	// own the verdict.
	require.True(t, res.OK, res.Message())
}

func TestSubmitStep_ClickErrorFailsAction(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetVisible(submitButton, true)
	fake.FailClick(submitButton, errors.New("node gone"))

	env := testEnv()
	s := submitStep("submit login", submitButton, env.Waits, env.logger())
	res := step.Run(context.Background(), fake, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhaseAction, res.Phase)
	assert.Equal(t, "[submit login] Action failed: node gone", res.Message())
}

func TestVerifySuccessStep_PassesOnSuccessView(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetLocation("https://app.example.com/secure")
	fake.SetVisible(logoutLink, true)

	env := testEnv()
	s := verifySuccessStep("verify secure area", securePattern, logoutLink, env.Waits, env.logger())
	res := step.Run(context.Background(), fake, s)

	require.True(t, res.OK, res.Message())
}

func TestVerifySuccessStep_WrongLocationFailsPost(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetLocation(loginURL)

	env := testEnv()
	s := verifySuccessStep("verify secure area", securePattern, logoutLink, env.Waits, env.logger())
	res := step.Run(context.Background(), fake, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhasePost, res.Phase)
	assert.Equal(t, "[verify secure area] Post-condition failed: Expected state not reached.", res.Message())
}

func TestVerifyErrorStep_MatchesBanner(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetTexts(alertRegions, "Invalid username.")
	fake.SetBody("Login Invalid username.")

	env := testEnv()
	s := verifyErrorStep("verify login error", "Invalid username.", env.Waits, env.logger())
	res := step.Run(context.Background(), fake, s)

	require.True(t, res.OK, res.Message())
}

func TestVerifyErrorStep_MissingBannerFailsPost(t *testing.T) {
	fake := testutil.NewFakePage()
	fake.SetBody("nothing to see")

	env := testEnv()
	s := verifyErrorStep("verify login error", "Invalid username.", env.Waits, env.logger())
	res := step.Run(context.Background(), fake, s)

	require.False(t, res.OK)
	assert.Equal(t, step.PhasePost, res.Phase)
	assert.Equal(t, "[verify login error] Post-condition failed: Expected state not reached.", res.Message())
}
