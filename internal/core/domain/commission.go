package domain

import "github.com/shopspring/decimal"

// CommissionStatus is the lifecycle of a referral commission. Commissions
// are created and paid by an external accrual subsystem; this engine only
// reads paid commissions and accumulates clawbacks against them.
type CommissionStatus string

const (
	CommissionPending    CommissionStatus = "PENDING"
	CommissionPaid       CommissionStatus = "PAID"
	CommissionClawedBack CommissionStatus = "CLAWED_BACK"
)

// ReferralCommission is a commission earned by a referrer on a referred
// member's investment. ClawedBack tracks the cumulative amount reversed so
// that repeated partial withdrawals can never reverse more than Amount.
type ReferralCommission struct {
	CommissionID string           `json:"commissionID"` // Primary Key (e.g., UUID)
	ReferrerID   string           `json:"referrerID"`   // FK -> Member.memberID
	MemberID     string           `json:"memberID"`     // The referred, withdrawing member
	InvestmentID string           `json:"investmentID"` // Underlying investment
	Amount       decimal.Decimal  `json:"amount"`
	ClawedBack   decimal.Decimal  `json:"clawedBack"` // Cumulative, capped at Amount
	Status       CommissionStatus `json:"status"`
	AuditFields
}

// Remaining returns the clawback headroom left on the commission.
func (c ReferralCommission) Remaining() decimal.Decimal {
	rem := c.Amount.Sub(c.ClawedBack)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// ClawbackStatus is the state of a single clawback application.
type ClawbackStatus string

const (
	ClawbackPending ClawbackStatus = "PENDING"
	ClawbackApplied ClawbackStatus = "APPLIED"
)

// CommissionClawback reverses part of one paid commission in response to
// one withdrawal. Each (commission, withdrawal) pair is applied at most once.
type CommissionClawback struct {
	ClawbackID   string          `json:"clawbackID"` // Primary Key (e.g., UUID)
	CommissionID string          `json:"commissionID"`
	WithdrawalID string          `json:"withdrawalID"`
	ReferrerID   string          `json:"referrerID"`
	MemberID     string          `json:"memberID"` // The withdrawing member
	Amount       decimal.Decimal `json:"amount"`
	Percent      decimal.Decimal `json:"percent"` // Withdrawal percentage applied, 0-100
	Status       ClawbackStatus  `json:"status"`
	AuditFields
}
