package domain

// NotificationStatus is the delivery state of an outbox message.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "PENDING"
	NotificationSent    NotificationStatus = "SENT"
	NotificationFailed  NotificationStatus = "FAILED"
)

// NotificationMessage is an outbox row written inside the financial
// transaction that produced the event. Delivery is best-effort and never
// affects the outcome of the financial operation.
type NotificationMessage struct {
	MessageID string             `json:"messageID"` // Primary Key (e.g., UUID)
	Topic     string             `json:"topic"`     // e.g. "loan.issued", "distribution.completed"
	MemberID  string             `json:"memberID"`  // Recipient, empty for broadcast events
	Payload   string             `json:"payload"`   // JSON-encoded event body
	Status    NotificationStatus `json:"status"`
	Attempts  int                `json:"attempts"`
	AuditFields
}
