package lifecycle

// Trigger represents an event that can cause a status transition.
type Trigger string

const (
	TriggerSend     Trigger = "SEND"
	TriggerMarkPaid Trigger = "MARK_PAID"
	TriggerMarkOverdue Trigger = "MARK_OVERDUE"
	TriggerCancel   Trigger = "CANCEL"
	TriggerAccept   Trigger = "ACCEPT"
	TriggerReject   Trigger = "REJECT"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
