// Package fsm models the expected behavior of a UI flow as a finite
// state machine: named states, one initial state, and deterministic
// event transitions into terminal outcome states.
//
// Machines are pure specification. They answer which events are legal
// and where they lead; they never drive the page. The interaction
// steps do the work, and test cases are checked against the machine's
// declared state space before anything runs.
package fsm

import (
	"errors"
	"fmt"
)

// State names a node in the machine.
type State string

// Event names a transition trigger.
type Event string

// StateDef declares a single state.
type StateDef struct {
	// Name uniquely identifies the state within the machine.
	Name State

	// Terminal marks an absorbing outcome state. Terminal states may
	// not have outgoing transitions.
	Terminal bool

	// Message is the descriptive text tied to an outcome state, such
	// as the error banner a flow is expected to surface. Empty for
	// states without an associated message.
	Message string
}

// TransitionDef declares one legal (from, event) -> to edge.
type TransitionDef struct {
	From  State
	Event Event
	To    State
}

// Definition declares a complete machine before compilation.
type Definition struct {
	// Name identifies the flow this machine describes.
	Name string

	// Initial is the state the machine starts in.
	Initial State

	// States lists every state. Declaration order is preserved by the
	// exporters, so keep it stable.
	States []StateDef

	// Transitions lists every legal edge. At most one target per
	// (from, event) pair.
	Transitions []TransitionDef
}

// Machine is a compiled, positioned state machine.
//
// A Machine is not safe for concurrent use; create one per execution
// context via its flow's factory instead of sharing.
type Machine struct {
	name    string
	initial State
	current State

	defs  []StateDef
	trans []TransitionDef

	next     map[State]map[Event]State
	terminal map[State]bool
	messages map[State]string
}

// New compiles a definition into a machine positioned at its initial
// state. The definition is rejected when:
//   - name, initial, or the state list is missing
//   - a state is declared twice
//   - the initial state or a transition endpoint is undeclared
//   - a terminal state has an outgoing transition
//   - two transitions share the same (from, event) pair
func New(def Definition) (*Machine, error) {
	if def.Name == "" {
		return nil, errors.New("machine name is required")
	}
	if def.Initial == "" {
		return nil, fmt.Errorf("machine %q: initial state is required", def.Name)
	}
	if len(def.States) == 0 {
		return nil, fmt.Errorf("machine %q: at least one state is required", def.Name)
	}

	m := &Machine{
		name:     def.Name,
		initial:  def.Initial,
		current:  def.Initial,
		defs:     make([]StateDef, len(def.States)),
		trans:    make([]TransitionDef, len(def.Transitions)),
		next:     make(map[State]map[Event]State),
		terminal: make(map[State]bool),
		messages: make(map[State]string),
	}
	copy(m.defs, def.States)
	copy(m.trans, def.Transitions)

	declared := make(map[State]bool, len(def.States))
	for _, sd := range def.States {
		if sd.Name == "" {
			return nil, fmt.Errorf("machine %q: state with empty name", def.Name)
		}
		if declared[sd.Name] {
			return nil, fmt.Errorf("machine %q: state %q declared twice", def.Name, sd.Name)
		}
		declared[sd.Name] = true
		if sd.Terminal {
			m.terminal[sd.Name] = true
		}
		if sd.Message != "" {
			m.messages[sd.Name] = sd.Message
		}
	}

	if !declared[def.Initial] {
		return nil, fmt.Errorf("machine %q: initial state %q is not declared", def.Name, def.Initial)
	}

	for _, tr := range def.Transitions {
		if !declared[tr.From] {
			return nil, fmt.Errorf("machine %q: transition from undeclared state %q", def.Name, tr.From)
		}
		if !declared[tr.To] {
			return nil, fmt.Errorf("machine %q: transition to undeclared state %q", def.Name, tr.To)
		}
		if tr.Event == "" {
			return nil, fmt.Errorf("machine %q: transition from %q with empty event", def.Name, tr.From)
		}
		if m.terminal[tr.From] {
			return nil, fmt.Errorf("machine %q: terminal state %q has an outgoing transition", def.Name, tr.From)
		}
		edges := m.next[tr.From]
		if edges == nil {
			edges = make(map[Event]State)
			m.next[tr.From] = edges
		}
		if _, dup := edges[tr.Event]; dup {
			return nil, fmt.Errorf("machine %q: duplicate transition from %q on %q", def.Name, tr.From, tr.Event)
		}
		edges[tr.Event] = tr.To
	}

	return m, nil
}

// MustNew compiles a definition and panics on error. Intended for the
// fixed flow factories whose definitions are covered by tests.
func MustNew(def Definition) *Machine {
	m, err := New(def)
	if err != nil {
		panic(err)
	}
	return m
}

// Name returns the machine's flow name.
func (m *Machine) Name() string { return m.name }

// Initial returns the declared initial state.
func (m *Machine) Initial() State { return m.initial }

// Current returns the state the machine is positioned at.
func (m *Machine) Current() State { return m.current }

// Has reports whether the state is declared.
func (m *Machine) Has(s State) bool {
	for _, sd := range m.defs {
		if sd.Name == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state is a declared terminal state.
func (m *Machine) IsTerminal(s State) bool { return m.terminal[s] }

// InTerminal reports whether the machine is positioned at a terminal state.
func (m *Machine) InTerminal() bool { return m.terminal[m.current] }

// Message returns the descriptive text attached to a state, or "".
func (m *Machine) Message(s State) string { return m.messages[s] }

// Can reports whether the event is legal from the current state.
func (m *Machine) Can(ev Event) bool {
	_, ok := m.next[m.current][ev]
	return ok
}

// Fire advances the machine along the transition the event names.
// An event with no transition from the current state returns a
// TransitionError and leaves the machine where it is.
func (m *Machine) Fire(ev Event) (State, error) {
	to, ok := m.next[m.current][ev]
	if !ok {
		return m.current, &TransitionError{Machine: m.name, From: m.current, Event: ev}
	}
	m.current = to
	return to, nil
}

// Reset repositions the machine at its initial state.
func (m *Machine) Reset() { m.current = m.initial }

// States returns the declared states in declaration order.
func (m *Machine) States() []StateDef {
	out := make([]StateDef, len(m.defs))
	copy(out, m.defs)
	return out
}

// Transitions returns the declared transitions in declaration order.
func (m *Machine) Transitions() []TransitionDef {
	out := make([]TransitionDef, len(m.trans))
	copy(out, m.trans)
	return out
}

// TransitionError reports an event that is not legal from a state.
type TransitionError struct {
	Machine string
	From    State
	Event   Event
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("machine %q: no transition from %q on event %q", e.Machine, e.From, e.Event)
}

// IsNoTransition returns true if the error reports an illegal event.
// Uses errors.As to handle wrapped errors.
func IsNoTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
