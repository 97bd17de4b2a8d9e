package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitDistributionBatch represents one distribution run.
type ProfitDistributionBatch struct {
	BatchID          string          `db:"batch_id"`
	PeriodType       string          `db:"period_type"`
	PeriodStart      time.Time       `db:"period_start"`
	PeriodEnd        time.Time       `db:"period_end"`
	TotalPool        decimal.Decimal `db:"total_pool"`
	TotalDistributed decimal.Decimal `db:"total_distributed"`
	Status           string          `db:"status"`
	FailureReason    string          `db:"failure_reason"`
	ProcessedAt      *time.Time      `db:"processed_at"` // Nullable
	AuditFields
}

// ProfitShare represents one member's slice of a batch.
type ProfitShare struct {
	ShareID       string          `db:"share_id"`
	BatchID       string          `db:"batch_id"`
	MemberID      string          `db:"member_id"`
	Amount        decimal.Decimal `db:"amount"`
	PoolPercent   decimal.Decimal `db:"pool_percent"`
	Method        string          `db:"method"`
	Status        string          `db:"status"`
	TransactionID string          `db:"transaction_id"`
	AuditFields
}
