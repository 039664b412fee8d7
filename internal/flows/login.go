package flows

import (
	"github.com/gustavo-meilus/flowgate/internal/fsm"
	"github.com/gustavo-meilus/flowgate/internal/page"
	"github.com/gustavo-meilus/flowgate/internal/step"
)

// Login flow states and events.
const (
	LoginStateStart           fsm.State = "start"
	LoginStateForm            fsm.State = "form"
	LoginStateAuthenticated   fsm.State = "authenticated"
	LoginStateInvalidUsername fsm.State = "invalid-username"
	LoginStateInvalidPassword fsm.State = "invalid-password"

	LoginEventNavigate        fsm.Event = "navigate"
	LoginEventSubmitValid     fsm.Event = "submit-valid"
	LoginEventUnknownUsername fsm.Event = "submit-unknown-username"
	LoginEventWrongPassword   fsm.Event = "submit-wrong-password"
)

// Messages the application shows for login outcomes.
const (
	msgLoginSuccess    = "You logged into a secure area!"
	msgInvalidUsername = "Invalid username."
	msgInvalidPassword = "Invalid password."
)

// NewLoginMachine builds a fresh login state machine: the form is
// reached by navigation, and each submission event lands deterministically
// in one terminal outcome.
func NewLoginMachine() *fsm.Machine {
	return fsm.MustNew(fsm.Definition{
		Name:    "login",
		Initial: LoginStateStart,
		States: []fsm.StateDef{
			{Name: LoginStateStart},
			{Name: LoginStateForm},
			{Name: LoginStateAuthenticated, Terminal: true, Message: msgLoginSuccess},
			{Name: LoginStateInvalidUsername, Terminal: true, Message: msgInvalidUsername},
			{Name: LoginStateInvalidPassword, Terminal: true, Message: msgInvalidPassword},
		},
		Transitions: []fsm.TransitionDef{
			{From: LoginStateStart, Event: LoginEventNavigate, To: LoginStateForm},
			{From: LoginStateForm, Event: LoginEventSubmitValid, To: LoginStateAuthenticated},
			{From: LoginStateForm, Event: LoginEventUnknownUsername, To: LoginStateInvalidUsername},
			{From: LoginStateForm, Event: LoginEventWrongPassword, To: LoginStateInvalidPassword},
		},
	})
}

// Login returns the login flow: navigate to the form, fill credentials,
// submit, then verify the secure area or the expected error banner.
//
// Login replays recorded identities, so no field is regenerated for its
// happy path.
func Login() Flow {
	return Flow{
		Name:         "login",
		Fields:       []string{"username", "password"},
		SuccessState: LoginStateAuthenticated,
		Machine:      NewLoginMachine,
		Steps:        loginSteps,
		VerifySuccess: func(env Env) step.Step {
			return verifySuccessStep("verify secure area", securePattern, logoutLink, env.Waits, env.logger())
		},
		VerifyError: func(env Env, expected string) step.Step {
			return verifyErrorStep("verify login error", expected, env.Waits, env.logger())
		},
	}
}

func loginSteps(env Env, inputs map[string]string) []step.Step {
	w := env.Waits
	return []step.Step{
		navigateStep("navigate to login", env.BaseURL+"/login", loginPattern, usernameField, w),
		fillStep("fill username", usernameField, inputs["username"], w),
		fillStep("fill password", passwordField, inputs["password"], w),
		submitStep("submit login", submitButton, w, env.logger(),
			page.LocationCondition(securePattern),
			page.TextCondition(msgInvalidUsername),
			page.TextCondition(msgInvalidPassword),
			page.VisibleCondition(alertRegions),
		),
	}
}
