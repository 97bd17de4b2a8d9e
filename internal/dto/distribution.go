package dto

import (
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DistributeAnnualRequest drives one annual distribution run.
type DistributeAnnualRequest struct {
	TotalPool decimal.Decimal `json:"totalPool" validate:"required"`
	Year      int             `json:"year" validate:"required,gte=2000"`
	CreatedBy string          `json:"createdBy" validate:"required"`
}

// DistributeBonusRequest drives one quarterly bonus pool run. PoolPercent
// must fall inside the configured 5-10 band; zero means "use the default".
type DistributeBonusRequest struct {
	QuarterlyProfit decimal.Decimal `json:"quarterlyProfit" validate:"required"`
	PoolPercent     decimal.Decimal `json:"poolPercent"`
	QuarterStart    time.Time       `json:"quarterStart" validate:"required"`
	CreatedBy       string          `json:"createdBy" validate:"required"`
}

// MemberShareDetail is the audit view of one member's computed share.
type MemberShareDetail struct {
	MemberID    string                   `json:"memberID"`
	Amount      decimal.Decimal          `json:"amount"`
	PoolPercent decimal.Decimal          `json:"poolPercent"`
	Method      domain.CalculationMethod `json:"method"`
	LoanRepaid  decimal.Decimal          `json:"loanRepaid"` // Portion intercepted for loan repayment
}

// DistributionResult is the outcome of one distribution run. On failure
// Success is false and Error carries the cause; Shares is never partially
// populated.
type DistributionResult struct {
	Success          bool                `json:"success"`
	BatchID          string              `json:"batchID"`
	PeriodType       domain.PeriodType   `json:"periodType"`
	TotalPool        decimal.Decimal     `json:"totalPool"`
	TotalDistributed decimal.Decimal     `json:"totalDistributed"`
	Shares           []MemberShareDetail `json:"shares,omitempty"`
	Error            string              `json:"error,omitempty"`
}
