package flows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavo-meilus/flowgate/internal/testcase"
	"github.com/gustavo-meilus/flowgate/internal/testutil"
)

// loginApp scripts a fake page that behaves like the login form:
// navigating to /login reveals the form, and submitting runs outcome.
func loginApp(outcome func(*testutil.FakePage)) *testutil.FakePage {
	fake := testutil.NewFakePage()
	fake.Route("https://app.example.com/login", func(p *testutil.FakePage) {
		p.SetVisible(usernameField, true)
		p.SetVisible(passwordField, true)
		p.SetVisible(submitButton, true)
	})
	fake.OnClick(submitButton, outcome)
	return fake
}

// registerApp scripts the registration form the same way.
func registerApp(outcome func(*testutil.FakePage)) *testutil.FakePage {
	fake := testutil.NewFakePage()
	fake.Route("https://app.example.com/register", func(p *testutil.FakePage) {
		p.SetVisible(usernameField, true)
		p.SetVisible(passwordField, true)
		p.SetVisible(confirmField, true)
		p.SetVisible(submitButton, true)
	})
	fake.OnClick(submitButton, outcome)
	return fake
}

func TestComposer_LoginSuccess(t *testing.T) {
	fake := loginApp(func(p *testutil.FakePage) {
		p.SetLocation("https://app.example.com/secure")
		p.SetVisible(logoutLink, true)
		p.SetBody("You logged into a secure area!")
	})

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:   "valid-credentials",
		Name: "valid credentials reach the secure area",
		Inputs: map[string]string{
			"username": "practice",
			"password": "SuperSecretPassword!",
		},
		ExpectedState:   string(LoginStateAuthenticated),
		ExpectedMessage: "You logged into a secure area!",
	})

	require.True(t, out.Pass, out.Diagnostic)
	assert.Empty(t, out.FailedStep)
	assert.Empty(t, out.FreshIdentity)
	require.Len(t, out.Steps, 5)
	assert.Equal(t, "verify secure area", out.Steps[4].Step)

	got, err := fake.Value(context.Background(), usernameField, 0)
	require.NoError(t, err)
	assert.Equal(t, "practice", got)
}

func TestComposer_LoginUnknownUsername(t *testing.T) {
	fake := loginApp(func(p *testutil.FakePage) {
		p.SetTexts(alertRegions, "Invalid username.")
		p.SetBody("Login page Invalid username.")
	})

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:   "wrong-username",
		Name: "unknown username is rejected",
		Inputs: map[string]string{
			"username": "wrongUser",
			"password": "SuperSecretPassword!",
		},
		ExpectedState: string(LoginStateInvalidUsername),
		ExpectedError: "Invalid username.",
	})

	require.True(t, out.Pass, out.Diagnostic)
	require.Len(t, out.Steps, 5)
	assert.Equal(t, "verify login error", out.Steps[4].Step)
}

func TestComposer_RegisterPasswordMismatch(t *testing.T) {
	fake := registerApp(func(p *testutil.FakePage) {
		p.SetTexts(alertRegions, "Passwords do not match.")
		p.SetBody("Register page Passwords do not match.")
	})

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Register(), testcase.Case{
		ID:   "password-mismatch",
		Name: "mismatched confirmation is rejected",
		Inputs: map[string]string{
			"username":        "someone",
			"password":        "Password123",
			"confirmPassword": "Password124",
		},
		ExpectedState: string(RegisterStateMismatch),
		ExpectedError: "Passwords do not match.",
	})

	require.True(t, out.Pass, out.Diagnostic)
	// No identity regeneration outside the happy path.
	assert.Empty(t, out.FreshIdentity)

	got, err := fake.Value(context.Background(), usernameField, 0)
	require.NoError(t, err)
	assert.Equal(t, "someone", got)
}

func TestComposer_RegisterSuccessRegeneratesUsername(t *testing.T) {
	fake := registerApp(func(p *testutil.FakePage) {
		p.SetLocation("https://app.example.com/login")
		p.SetBody("Successfully registered, you can log in now.")
	})

	c := NewComposer(testEnv(), testutil.NewFixedIdentity("someone-fresh"))
	out := c.Run(context.Background(), fake, Register(), testcase.Case{
		ID:   "fresh-registration",
		Name: "fresh username registers and lands on login",
		Inputs: map[string]string{
			"username":        "someone",
			"password":        "Password123",
			"confirmPassword": "Password123",
		},
		ExpectedState:   string(RegisterStateRegistered),
		ExpectedMessage: "Successfully registered, you can log in now.",
	})

	require.True(t, out.Pass, out.Diagnostic)
	assert.Equal(t, "someone-fresh", out.FreshIdentity)
	require.Len(t, out.Steps, 6)
	assert.Equal(t, "verify registration complete", out.Steps[5].Step)

	// The regenerated value is what actually got typed.
	got, err := fake.Value(context.Background(), usernameField, 0)
	require.NoError(t, err)
	assert.Equal(t, "someone-fresh", got)
}

func TestComposer_RejectsUndeclaredExpectedState(t *testing.T) {
	fake := testutil.NewFakePage()

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:            "bad-state",
		Name:          "expected state does not exist",
		Inputs:        map[string]string{},
		ExpectedState: "locked-out",
	})

	require.False(t, out.Pass)
	assert.Contains(t, out.Diagnostic, `expected state "locked-out" is not a terminal state`)
	assert.Empty(t, out.Steps)
	assert.Equal(t, 0, fake.NavigationCount())
}

func TestComposer_RejectsNonTerminalExpectedState(t *testing.T) {
	fake := testutil.NewFakePage()

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:            "mid-state",
		Name:          "expected state is not terminal",
		Inputs:        map[string]string{},
		ExpectedState: string(LoginStateForm),
	})

	require.False(t, out.Pass)
	assert.Contains(t, out.Diagnostic, "not a terminal state")
	assert.Equal(t, 0, fake.NavigationCount())
}

func TestComposer_RejectsUnknownInputField(t *testing.T) {
	fake := testutil.NewFakePage()

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:   "bad-field",
		Name: "input field the flow does not declare",
		Inputs: map[string]string{
			"email": "someone@example.com",
		},
		ExpectedState: string(LoginStateAuthenticated),
	})

	require.False(t, out.Pass)
	assert.Contains(t, out.Diagnostic, `flow "login" has no field "email"`)
	assert.Equal(t, 0, fake.NavigationCount())
}

func TestComposer_CapturesFailureDiagnostics(t *testing.T) {
	// The app rejects the credentials, but the case expects success.
	fake := loginApp(func(p *testutil.FakePage) {
		p.SetTexts(alertRegions, "Invalid password.")
		p.SetBody("Invalid password.")
	})

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:   "should-have-passed",
		Name: "success expected but the app refused",
		Inputs: map[string]string{
			"username": "practice",
			"password": "nope",
		},
		ExpectedState: string(LoginStateAuthenticated),
	})

	require.False(t, out.Pass)
	assert.Equal(t, "verify secure area", out.FailedStep)
	assert.Equal(t, "[verify secure area] Post-condition failed: Expected state not reached.", out.Diagnostic)
	assert.Equal(t, "https://app.example.com/login", out.Location)
	require.Len(t, out.Steps, 5)
	assert.False(t, out.Steps[4].OK)
}

func TestComposer_ErrorCaseMissingBannerFails(t *testing.T) {
	// The app silently stays on the form with no banner at all.
	fake := loginApp(func(*testutil.FakePage) {})

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:   "silent-failure",
		Name: "expected banner never shows",
		Inputs: map[string]string{
			"username": "wrongUser",
			"password": "SuperSecretPassword!",
		},
		ExpectedState: string(LoginStateInvalidUsername),
		ExpectedError: "Invalid username.",
	})

	require.False(t, out.Pass)
	assert.Equal(t, "verify login error", out.FailedStep)
}

func TestComposer_ErrorStateWithoutBannerHasNoVerificationTail(t *testing.T) {
	fake := loginApp(func(*testutil.FakePage) {})

	c := NewComposer(testEnv(), nil)
	out := c.Run(context.Background(), fake, Login(), testcase.Case{
		ID:   "no-banner-declared",
		Name: "error terminal without a declared banner",
		Inputs: map[string]string{
			"username": "wrongUser",
			"password": "SuperSecretPassword!",
		},
		ExpectedState: string(LoginStateInvalidUsername),
	})

	require.True(t, out.Pass, out.Diagnostic)
	require.Len(t, out.Steps, 4)
	assert.Equal(t, "submit login", out.Steps[3].Step)
}
