package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentTier is a named profit-rate bracket. The penalty reduction
// percent (0-100) scales down early-withdrawal penalties for members
// holding the tier.
type InvestmentTier struct {
	TierID                  string          `json:"tierID"` // Primary Key (e.g., UUID)
	Name                    string          `json:"name"`
	AnnualRatePercent       decimal.Decimal `json:"annualRatePercent"`       // Fixed annual profit rate
	PenaltyReductionPercent decimal.Decimal `json:"penaltyReductionPercent"` // 0-100
	AuditFields
}

// TierChange is one entry in a member's tier-history log, ordered by
// effective date. The log drives time-weighted profit reconstruction.
type TierChange struct {
	ChangeID      string    `json:"changeID"`
	MemberID      string    `json:"memberID"`
	TierID        string    `json:"tierID"`
	EffectiveFrom time.Time `json:"effectiveFrom"`
}
