package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentTier defines a tier's annual rate and penalty reduction.
type InvestmentTier struct {
	TierID                  string          `db:"tier_id"`
	Name                    string          `db:"name"`
	AnnualRatePercent       decimal.Decimal `db:"annual_rate_percent"`
	PenaltyReductionPercent decimal.Decimal `db:"penalty_reduction_percent"`
	AuditFields
}

// TierChange is one entry of a member's tier-change log.
type TierChange struct {
	ChangeID      string    `db:"change_id"`
	MemberID      string    `db:"member_id"`
	TierID        string    `db:"tier_id"`
	EffectiveFrom time.Time `db:"effective_from"`
}
