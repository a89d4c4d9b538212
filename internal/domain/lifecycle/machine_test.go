package lifecycle

import (
	"errors"
	"testing"
)

func TestInvoiceTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		want    State
		wantErr bool
	}{
		{"send draft", StateDraft, TriggerSend, StateSent, false},
		{"cancel draft", StateDraft, TriggerCancel, StateCancelled, false},
		{"pay sent", StateSent, TriggerMarkPaid, StatePaid, false},
		{"overdue sent", StateSent, TriggerMarkOverdue, StateOverdue, false},
		{"cancel sent", StateSent, TriggerCancel, StateCancelled, false},
		{"pay overdue", StateOverdue, TriggerMarkPaid, StatePaid, false},
		{"cancel overdue", StateOverdue, TriggerCancel, StateCancelled, false},
		{"pay draft", StateDraft, TriggerMarkPaid, StateDraft, true},
		{"send sent", StateSent, TriggerSend, StateSent, true},
		{"accept invoice", StateSent, TriggerAccept, StateSent, true},
		{"pay paid", StatePaid, TriggerMarkPaid, StatePaid, true},
		{"cancel cancelled", StateCancelled, TriggerCancel, StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewInvoiceMachine(tt.from)
			if err != nil {
				t.Fatalf("NewInvoiceMachine(%s): %v", tt.from, err)
			}
			err = m.Fire(tt.trigger)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Fire(%s) from %s: want ErrInvalidTransition, got %v", tt.trigger, tt.from, err)
				}
				if m.State() != tt.from {
					t.Fatalf("state changed on rejected transition: %s", m.State())
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire(%s) from %s: %v", tt.trigger, tt.from, err)
			}
			if m.State() != tt.want {
				t.Fatalf("state = %s, want %s", m.State(), tt.want)
			}
		})
	}
}

func TestQuoteTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		want    State
		wantErr bool
	}{
		{"send draft", StateDraft, TriggerSend, StateSent, false},
		{"accept sent", StateSent, TriggerAccept, StateAccepted, false},
		{"reject sent", StateSent, TriggerReject, StateRejected, false},
		{"pay quote", StateSent, TriggerMarkPaid, StateSent, true},
		{"overdue quote", StateSent, TriggerMarkOverdue, StateSent, true},
		{"accept accepted", StateAccepted, TriggerAccept, StateAccepted, true},
		{"reject rejected", StateRejected, TriggerReject, StateRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewQuoteMachine(tt.from)
			if err != nil {
				t.Fatalf("NewQuoteMachine(%s): %v", tt.from, err)
			}
			err = m.Fire(tt.trigger)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Fire(%s) from %s: want ErrInvalidTransition, got %v", tt.trigger, tt.from, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fire(%s) from %s: %v", tt.trigger, tt.from, err)
			}
			if m.State() != tt.want {
				t.Fatalf("state = %s, want %s", m.State(), tt.want)
			}
		})
	}
}

func TestTerminalStatesHaveNoTriggers(t *testing.T) {
	for _, s := range []State{StatePaid, StateCancelled} {
		m, err := NewInvoiceMachine(s)
		if err != nil {
			t.Fatalf("NewInvoiceMachine(%s): %v", s, err)
		}
		if got := m.PermittedTriggers(); len(got) != 0 {
			t.Fatalf("PermittedTriggers() from %s = %v, want none", s, got)
		}
	}
	for _, s := range []State{StateAccepted, StateRejected} {
		m, err := NewQuoteMachine(s)
		if err != nil {
			t.Fatalf("NewQuoteMachine(%s): %v", s, err)
		}
		if got := m.PermittedTriggers(); len(got) != 0 {
			t.Fatalf("PermittedTriggers() from %s = %v, want none", s, got)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []State{StatePaid, StateCancelled, StateAccepted, StateRejected}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", s)
		}
	}
	for _, s := range []State{StateDraft, StateSent, StateOverdue} {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true, want false", s)
		}
	}
}

func TestTriggerTo(t *testing.T) {
	m, err := NewInvoiceMachine(StateSent)
	if err != nil {
		t.Fatal(err)
	}
	trigger, ok := m.TriggerTo(StatePaid)
	if !ok || trigger != TriggerMarkPaid {
		t.Fatalf("TriggerTo(paid) = %s, %v; want %s, true", trigger, ok, TriggerMarkPaid)
	}
	if _, ok := m.TriggerTo(StateDraft); ok {
		t.Fatal("TriggerTo(draft) from sent should not be permitted")
	}
}

func TestCanFire(t *testing.T) {
	m, err := NewInvoiceMachine(StateDraft)
	if err != nil {
		t.Fatal(err)
	}
	if !m.CanFire(TriggerSend) {
		t.Fatal("CanFire(SEND) from draft = false")
	}
	if m.CanFire(TriggerMarkPaid) {
		t.Fatal("CanFire(MARK_PAID) from draft = true")
	}
}

func TestNewMachineInvalidState(t *testing.T) {
	if _, err := NewInvoiceMachine(State("bogus")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}
