package lifecycle

import "fmt"

// Machine tracks the current status of a document and validates transitions.
type Machine struct {
	current     State
	transitions map[State]map[Trigger]State
}

// builder assembles the transition table for a machine.
type builder struct {
	transitions map[State]map[Trigger]State
}

func newBuilder() *builder {
	return &builder{transitions: make(map[State]map[Trigger]State)}
}

func (b *builder) permit(from State, trigger Trigger, to State) *builder {
	if !from.IsValid() || !to.IsValid() {
		panic(fmt.Sprintf("invalid transition %s -> %s", from, to))
	}
	if b.transitions[from] == nil {
		b.transitions[from] = make(map[Trigger]State)
	}
	b.transitions[from][trigger] = to
	return b
}

func (b *builder) build(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, initial)
	}
	return &Machine{current: initial, transitions: b.transitions}, nil
}

// NewInvoiceMachine creates a machine with the invoice transition table,
// positioned at the given status. Invoices move draft -> sent -> paid, may go
// sent -> overdue, and any non-terminal status can be cancelled. There is no
// automatic overdue transition; MARK_OVERDUE is fired manually.
func NewInvoiceMachine(initial State) (*Machine, error) {
	b := newBuilder()
	b.permit(StateDraft, TriggerSend, StateSent)
	b.permit(StateDraft, TriggerCancel, StateCancelled)
	b.permit(StateSent, TriggerMarkPaid, StatePaid)
	b.permit(StateSent, TriggerMarkOverdue, StateOverdue)
	b.permit(StateSent, TriggerCancel, StateCancelled)
	b.permit(StateOverdue, TriggerMarkPaid, StatePaid)
	b.permit(StateOverdue, TriggerCancel, StateCancelled)
	return b.build(initial)
}

// NewQuoteMachine creates a machine with the quote transition table,
// positioned at the given status: draft -> sent -> accepted, sent -> rejected.
func NewQuoteMachine(initial State) (*Machine, error) {
	b := newBuilder()
	b.permit(StateDraft, TriggerSend, StateSent)
	b.permit(StateSent, TriggerAccept, StateAccepted)
	b.permit(StateSent, TriggerReject, StateRejected)
	return b.build(initial)
}

// State returns the current status.
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if the trigger is permitted in the current status.
func (m *Machine) CanFire(trigger Trigger) bool {
	_, ok := m.transitions[m.current][trigger]
	return ok
}

// Fire executes the trigger, moving to the new status if the transition is
// permitted.
func (m *Machine) Fire(trigger Trigger) error {
	to, ok := m.transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}

// PermittedTriggers returns all triggers that can be fired in the current status.
func (m *Machine) PermittedTriggers() []Trigger {
	perms := m.transitions[m.current]
	triggers := make([]Trigger, 0, len(perms))
	for trigger := range perms {
		triggers = append(triggers, trigger)
	}
	return triggers
}

// TriggerTo returns the trigger that moves the machine from its current status
// to the target status, if one is defined. Status changes arrive from the admin
// UI as a target status, not a trigger name.
func (m *Machine) TriggerTo(target State) (Trigger, bool) {
	for trigger, to := range m.transitions[m.current] {
		if to == target {
			return trigger, true
		}
	}
	return "", false
}
