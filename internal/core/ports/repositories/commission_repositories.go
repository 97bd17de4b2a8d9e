package repositories

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CommissionReader defines read access to referral commissions. Commission
// rows are created by an external accrual subsystem; this engine only
// discovers clawback candidates.
type CommissionReader interface {
	// FindPaidCommissionsByMember retrieves every paid commission whose
	// underlying investment belongs to the given (withdrawing) member.
	FindPaidCommissionsByMember(ctx context.Context, memberID string) ([]domain.ReferralCommission, error)

	// ClawbackExists reports whether a clawback was already applied for the
	// (commission, withdrawal) pair.
	ClawbackExists(ctx context.Context, commissionID, withdrawalID string) (bool, error)
}

// ClawbackWriter persists clawback batches.
type ClawbackWriter interface {
	// SaveClawbackBatch inserts the clawback rows and their ledger entries,
	// debits each referrer's cumulative referral earnings, and accumulates
	// the clawed-back total on each original commission, all in one DB
	// transaction. If any step fails the whole batch rolls back.
	SaveClawbackBatch(ctx context.Context, clawbacks []domain.CommissionClawback, txns []domain.Transaction, earningsDebits map[string]decimal.Decimal, commissionDeltas map[string]decimal.Decimal) error
}

// CommissionRepositoryFacade combines all commission repository interfaces.
type CommissionRepositoryFacade interface {
	CommissionReader
	ClawbackWriter
}
