package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType identifies the distribution cadence.
type PeriodType string

const (
	PeriodAnnual    PeriodType = "ANNUAL"
	PeriodQuarterly PeriodType = "QUARTERLY"
)

// BatchStatus is the state machine for a distribution batch:
// PENDING -> COMPLETED on success, PENDING -> FAILED with a full rollback of
// its shares and transactions. Partial batches are never visible to readers.
type BatchStatus string

const (
	BatchPending   BatchStatus = "PENDING"
	BatchCompleted BatchStatus = "COMPLETED"
	BatchFailed    BatchStatus = "FAILED"
)

// CalculationMethod records how a member's share was computed, for audit.
type CalculationMethod string

const (
	MethodFixedTierRate       CalculationMethod = "fixed_tier_rate"
	MethodWeightedTierHistory CalculationMethod = "weighted_tier_history"
	MethodQuarterlyBonusPool  CalculationMethod = "quarterly_bonus_pool"
)

// ProfitDistributionBatch is one distribution run. Immutable once completed.
type ProfitDistributionBatch struct {
	BatchID          string          `json:"batchID"` // Primary Key (e.g., UUID)
	PeriodType       PeriodType      `json:"periodType"`
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
	TotalPool        decimal.Decimal `json:"totalPool"`
	TotalDistributed decimal.Decimal `json:"totalDistributed"` // Must equal sum of share amounts once completed
	Status           BatchStatus     `json:"status"`
	ProcessedAt      *time.Time      `json:"processedAt"`
	AuditFields
}

// ShareStatus is the settlement state of a member's profit share.
type ShareStatus string

const (
	SharePending ShareStatus = "PENDING"
	SharePaid    ShareStatus = "PAID"
)

// ProfitShare is one member's slice of a distribution batch. It transitions
// to PAID when the ledger posts the corresponding transfer.
type ProfitShare struct {
	ShareID       string            `json:"shareID"` // Primary Key (e.g., UUID)
	BatchID       string            `json:"batchID"` // FK -> ProfitDistributionBatch.batchID
	MemberID      string            `json:"memberID"`
	Amount        decimal.Decimal   `json:"amount"`
	PoolPercent   decimal.Decimal   `json:"poolPercent"` // Member investment / total investment base, in percent
	Method        CalculationMethod `json:"method"`
	Status        ShareStatus       `json:"status"`
	TransactionID string            `json:"transactionID"` // Pending ledger entry created with the share
	AuditFields
}
