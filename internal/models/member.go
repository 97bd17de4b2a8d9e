package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member represents a platform member row. Loan counters live here; the
// withdrawable balance does not, it is derived from the ledger.
type Member struct {
	MemberID         string          `db:"member_id"`
	CurrentTierID    *string         `db:"current_tier_id"` // Nullable
	JoinedAt         time.Time       `db:"joined_at"`
	LoanBalance      decimal.Decimal `db:"loan_balance"`
	LoanIssuedTotal  decimal.Decimal `db:"loan_issued_total"`
	LoanRepaidTotal  decimal.Decimal `db:"loan_repaid_total"`
	ReferralEarnings decimal.Decimal `db:"referral_earnings"`
	AuditFields
}
