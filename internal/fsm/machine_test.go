package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition() Definition {
	return Definition{
		Name:    "checkout",
		Initial: "start",
		States: []StateDef{
			{Name: "start"},
			{Name: "cart"},
			{Name: "paid", Terminal: true},
			{Name: "declined", Terminal: true, Message: "Card declined."},
		},
		Transitions: []TransitionDef{
			{From: "start", Event: "open", To: "cart"},
			{From: "cart", Event: "pay-valid", To: "paid"},
			{From: "cart", Event: "pay-invalid", To: "declined"},
		},
	}
}

func TestNew_CompilesValidDefinition(t *testing.T) {
	m, err := New(sampleDefinition())
	require.NoError(t, err)

	assert.Equal(t, "checkout", m.Name())
	assert.Equal(t, State("start"), m.Initial())
	assert.Equal(t, State("start"), m.Current())
	assert.False(t, m.InTerminal())
	assert.Len(t, m.States(), 4)
	assert.Len(t, m.Transitions(), 3)
}

func TestNew_RejectsMissingName(t *testing.T) {
	def := sampleDefinition()
	def.Name = ""

	_, err := New(def)
	assert.ErrorContains(t, err, "name is required")
}

func TestNew_RejectsUndeclaredInitial(t *testing.T) {
	def := sampleDefinition()
	def.Initial = "nowhere"

	_, err := New(def)
	assert.ErrorContains(t, err, `initial state "nowhere" is not declared`)
}

func TestNew_RejectsDuplicateState(t *testing.T) {
	def := sampleDefinition()
	def.States = append(def.States, StateDef{Name: "cart"})

	_, err := New(def)
	assert.ErrorContains(t, err, `state "cart" declared twice`)
}

func TestNew_RejectsUndeclaredTransitionEndpoint(t *testing.T) {
	def := sampleDefinition()
	def.Transitions = append(def.Transitions, TransitionDef{From: "cart", Event: "ghost", To: "void"})

	_, err := New(def)
	assert.ErrorContains(t, err, `transition to undeclared state "void"`)
}

func TestNew_RejectsOutgoingFromTerminal(t *testing.T) {
	def := sampleDefinition()
	def.Transitions = append(def.Transitions, TransitionDef{From: "paid", Event: "reopen", To: "cart"})

	_, err := New(def)
	assert.ErrorContains(t, err, `terminal state "paid" has an outgoing transition`)
}

func TestNew_RejectsDuplicateEdge(t *testing.T) {
	def := sampleDefinition()
	def.Transitions = append(def.Transitions, TransitionDef{From: "cart", Event: "pay-valid", To: "declined"})

	_, err := New(def)
	assert.ErrorContains(t, err, `duplicate transition from "cart" on "pay-valid"`)
}

func TestMachine_Fire_FollowsDeclaredPath(t *testing.T) {
	m := MustNew(sampleDefinition())

	st, err := m.Fire("open")
	require.NoError(t, err)
	assert.Equal(t, State("cart"), st)

	st, err = m.Fire("pay-valid")
	require.NoError(t, err)
	assert.Equal(t, State("paid"), st)
	assert.True(t, m.InTerminal())
}

func TestMachine_Fire_UnlistedEventKeepsState(t *testing.T) {
	m := MustNew(sampleDefinition())

	st, err := m.Fire("pay-valid")
	assert.Equal(t, State("start"), st, "state must not move on an illegal event")
	require.Error(t, err)
	assert.True(t, IsNoTransition(err))
	assert.EqualError(t, err, `machine "checkout": no transition from "start" on event "pay-valid"`)

	// The machine is still usable afterwards.
	_, err = m.Fire("open")
	assert.NoError(t, err)
}

func TestMachine_Can(t *testing.T) {
	m := MustNew(sampleDefinition())

	assert.True(t, m.Can("open"))
	assert.False(t, m.Can("pay-valid"))

	_, err := m.Fire("open")
	require.NoError(t, err)
	assert.True(t, m.Can("pay-valid"))
	assert.True(t, m.Can("pay-invalid"))
}

func TestMachine_Reset(t *testing.T) {
	m := MustNew(sampleDefinition())

	_, err := m.Fire("open")
	require.NoError(t, err)
	require.Equal(t, State("cart"), m.Current())

	m.Reset()
	assert.Equal(t, State("start"), m.Current())
}

func TestMachine_MessageAndTerminalLookups(t *testing.T) {
	m := MustNew(sampleDefinition())

	assert.Equal(t, "Card declined.", m.Message("declined"))
	assert.Empty(t, m.Message("cart"))
	assert.True(t, m.IsTerminal("declined"))
	assert.False(t, m.IsTerminal("cart"))
	assert.True(t, m.Has("cart"))
	assert.False(t, m.Has("refunded"))
}

func TestMustNew_PanicsOnInvalidDefinition(t *testing.T) {
	def := sampleDefinition()
	def.Initial = "nowhere"

	assert.Panics(t, func() { MustNew(def) })
}

func TestIsNoTransition_WrappedAndForeignErrors(t *testing.T) {
	m := MustNew(sampleDefinition())
	_, err := m.Fire("nope")

	assert.True(t, IsNoTransition(err))
	assert.False(t, IsNoTransition(assert.AnError))
	assert.False(t, IsNoTransition(nil))
}
