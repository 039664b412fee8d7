package flows

import (
	"github.com/gustavo-meilus/flowgate/internal/fsm"
	"github.com/gustavo-meilus/flowgate/internal/page"
	"github.com/gustavo-meilus/flowgate/internal/step"
)

// Registration flow states and events.
const (
	RegisterStateStart         fsm.State = "start"
	RegisterStateForm          fsm.State = "form"
	RegisterStateRegistered    fsm.State = "registered"
	RegisterStateMismatch      fsm.State = "password-mismatch"
	RegisterStateMissingFields fsm.State = "missing-fields"

	RegisterEventNavigate      fsm.Event = "navigate"
	RegisterEventSubmitValid   fsm.Event = "submit-valid"
	RegisterEventMismatch      fsm.Event = "submit-password-mismatch"
	RegisterEventMissingFields fsm.Event = "submit-missing-fields"
)

// Messages the application shows for registration outcomes.
const (
	msgRegistered       = "Successfully registered, you can log in now."
	msgPasswordMismatch = "Passwords do not match."
	msgMissingFields    = "All fields are required."
)

// NewRegisterMachine builds a fresh registration state machine.
func NewRegisterMachine() *fsm.Machine {
	return fsm.MustNew(fsm.Definition{
		Name:    "register",
		Initial: RegisterStateStart,
		States: []fsm.StateDef{
			{Name: RegisterStateStart},
			{Name: RegisterStateForm},
			{Name: RegisterStateRegistered, Terminal: true, Message: msgRegistered},
			{Name: RegisterStateMismatch, Terminal: true, Message: msgPasswordMismatch},
			{Name: RegisterStateMissingFields, Terminal: true, Message: msgMissingFields},
		},
		Transitions: []fsm.TransitionDef{
			{From: RegisterStateStart, Event: RegisterEventNavigate, To: RegisterStateForm},
			{From: RegisterStateForm, Event: RegisterEventSubmitValid, To: RegisterStateRegistered},
			{From: RegisterStateForm, Event: RegisterEventMismatch, To: RegisterStateMismatch},
			{From: RegisterStateForm, Event: RegisterEventMissingFields, To: RegisterStateMissingFields},
		},
	})
}

// Register returns the registration flow: navigate to the form, fill
// the three fields, submit, then verify arrival back at the login page
// or the expected error banner.
//
// Registering the same username twice fails on the live site, so the
// happy-path case regenerates the username each run.
func Register() Flow {
	return Flow{
		Name:         "register",
		Fields:       []string{"username", "password", "confirmPassword"},
		SuccessState: RegisterStateRegistered,
		FreshField:   "username",
		Machine:      NewRegisterMachine,
		Steps:        registerSteps,
		VerifySuccess: func(env Env) step.Step {
			return verifySuccessStep("verify registration complete", loginPattern, usernameField, env.Waits, env.logger())
		},
		VerifyError: func(env Env, expected string) step.Step {
			return verifyErrorStep("verify registration error", expected, env.Waits, env.logger())
		},
	}
}

func registerSteps(env Env, inputs map[string]string) []step.Step {
	w := env.Waits
	return []step.Step{
		navigateStep("navigate to register", env.BaseURL+"/register", registerPattern, usernameField, w),
		fillStep("fill username", usernameField, inputs["username"], w),
		fillStep("fill password", passwordField, inputs["password"], w),
		fillStep("fill password confirmation", confirmField, inputs["confirmPassword"], w),
		submitStep("submit registration", submitButton, w, env.logger(),
			page.LocationCondition(loginPattern),
			page.TextCondition(msgPasswordMismatch),
			page.TextCondition(msgMissingFields),
			page.VisibleCondition(alertRegions),
		),
	}
}
