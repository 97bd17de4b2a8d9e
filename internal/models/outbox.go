package models

// NotificationMessage represents one outbox row.
type NotificationMessage struct {
	MessageID string `db:"message_id"`
	Topic     string `db:"topic"`
	MemberID  string `db:"member_id"`
	Payload   string `db:"payload"`
	Status    string `db:"status"`
	Attempts  int    `db:"attempts"`
	AuditFields
}
