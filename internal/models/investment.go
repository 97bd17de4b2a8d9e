package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus mirrors the lifecycle state stored in the database.
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "ACTIVE"
	InvestmentWithdrawn InvestmentStatus = "WITHDRAWN"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

// Investment represents a single deposit with its own lock-in window.
type Investment struct {
	InvestmentID string           `db:"investment_id"`
	MemberID     string           `db:"member_id"`
	Principal    decimal.Decimal  `db:"principal"`
	CurrentValue decimal.Decimal  `db:"current_value"`
	Status       InvestmentStatus `db:"status"`
	LockInStart  time.Time        `db:"lock_in_start"`
	AuditFields
}
