package lifecycle

// State represents a document status in the billing lifecycle.
type State string

const (
	StateDraft    State = "draft"
	StateSent     State = "sent"
	StatePaid     State = "paid"
	StateOverdue  State = "overdue"
	StateCancelled State = "cancelled"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
)

var validStates = map[State]bool{
	StateDraft:     true,
	StateSent:      true,
	StatePaid:      true,
	StateOverdue:   true,
	StateCancelled: true,
	StateAccepted:  true,
	StateRejected:  true,
}

var terminalStates = map[State]bool{
	StatePaid:      true,
	StateCancelled: true,
	StateAccepted:  true,
	StateRejected:  true,
}

// IsTerminal returns true if no further transitions are defined from the state.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state belongs to the lifecycle vocabulary.
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}
