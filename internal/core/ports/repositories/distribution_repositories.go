package repositories

import (
	"context"
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DistributionReader defines read operations for distribution batches.
type DistributionReader interface {
	// FindBatchByID retrieves one distribution batch.
	FindBatchByID(ctx context.Context, batchID string) (*domain.ProfitDistributionBatch, error)

	// FindSharesByBatchID retrieves every share of a batch.
	FindSharesByBatchID(ctx context.Context, batchID string) ([]domain.ProfitShare, error)
}

// DistributionWriter persists distribution runs.
type DistributionWriter interface {
	// SaveDistributionBatch inserts the batch, its shares, their pending
	// ledger entries, the loan-counter adjustments and the outbox
	// notifications in one DB transaction. Member rows receiving a loan
	// repayment are locked for the adjustment. No partial batch is ever
	// visible.
	SaveDistributionBatch(ctx context.Context, batch domain.ProfitDistributionBatch, shares []domain.ProfitShare, txns []domain.Transaction, loanRepayments map[string]decimal.Decimal, notes []domain.NotificationMessage) error

	// MarkBatchFailed records a failed run for audit. Failed batches carry
	// no shares or transactions.
	MarkBatchFailed(ctx context.Context, batch domain.ProfitDistributionBatch, reason string) error

	// UpdateShareStatusByTransaction flips a share to PAID when the ledger
	// completes its transaction.
	UpdateShareStatusByTransaction(ctx context.Context, transactionID string, status domain.ShareStatus, updatedBy string, updatedAt time.Time) error
}

// DistributionRepositoryFacade combines all distribution repository interfaces.
type DistributionRepositoryFacade interface {
	DistributionReader
	DistributionWriter
}
