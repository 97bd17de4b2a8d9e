package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus indicates the lifecycle state of an investment.
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "ACTIVE"
	InvestmentWithdrawn InvestmentStatus = "WITHDRAWN"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

// Investment represents a member's stake in a tiered investment product.
// Investment records are owned by an external collaborator; the engine
// reads them and triggers status transitions through a service facade.
type Investment struct {
	InvestmentID string           `json:"investmentID"` // Primary Key (e.g., UUID)
	MemberID     string           `json:"memberID"`     // FK -> Member.memberID (Not Null)
	Principal    decimal.Decimal  `json:"principal"`    // Invested capital
	CurrentValue decimal.Decimal  `json:"currentValue"` // Principal + accrued profit
	Status       InvestmentStatus `json:"status"`
	LockInStart  time.Time        `json:"lockInStart"` // Normally the creation time
	AuditFields
}

// AccruedProfit returns the unrealized gain, floored at zero.
func (i Investment) AccruedProfit() decimal.Decimal {
	profit := i.CurrentValue.Sub(i.Principal)
	if profit.IsNegative() {
		return decimal.Zero
	}
	return profit
}

// LockInEnd returns the date the lock-in period expires.
func (i Investment) LockInEnd(lockInMonths int) time.Time {
	return i.LockInStart.AddDate(0, lockInMonths, 0)
}

// WithinLockIn reports whether the investment is still inside its lock-in
// period at the given instant.
func (i Investment) WithinLockIn(now time.Time, lockInMonths int) bool {
	return now.Before(i.LockInEnd(lockInMonths))
}
