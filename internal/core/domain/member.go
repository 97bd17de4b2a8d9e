package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member represents a platform member as seen by the financial engine.
// Account management is external; the engine only mutates the loan counters
// and the cumulative referral-earnings counter.
type Member struct {
	MemberID         string          `json:"memberID"`         // Primary Key (e.g., UUID)
	CurrentTierID    *string         `json:"currentTierID"`    // FK -> InvestmentTier.tierID, nullable
	JoinedAt         time.Time       `json:"joinedAt"`         // Membership start date
	LoanBalance      decimal.Decimal `json:"loanBalance"`      // Outstanding loan, never negative
	LoanIssuedTotal  decimal.Decimal `json:"loanIssuedTotal"`  // Cumulative loans issued
	LoanRepaidTotal  decimal.Decimal `json:"loanRepaidTotal"`  // Cumulative repayments applied
	ReferralEarnings decimal.Decimal `json:"referralEarnings"` // Cumulative referral commissions, net of clawbacks
	AuditFields
}

// CanWithdraw reports whether the member passes the loan gate.
// Members with an outstanding loan balance cannot withdraw.
func (m Member) CanWithdraw() bool {
	return m.LoanBalance.IsZero()
}
