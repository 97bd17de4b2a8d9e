package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalRequest represents a persisted withdrawal request row.
type WithdrawalRequest struct {
	RequestID        string          `db:"request_id"`
	MemberID         string          `db:"member_id"`
	WithdrawalType   string          `db:"withdrawal_type"`
	RequestedAmount  decimal.Decimal `db:"requested_amount"`
	PenaltyAmount    decimal.Decimal `db:"penalty_amount"`
	NetAmount        decimal.Decimal `db:"net_amount"`
	RequiresApproval bool            `db:"requires_approval"`
	Status           string          `db:"status"`
	Reason           string          `db:"reason"`
	CompletedAt      *time.Time      `db:"completed_at"` // Nullable
	AuditFields
}
