package services

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerSvcFacade is the transaction guard: every balance-affecting event
// is recorded exactly once through it.
type LedgerSvcFacade interface {
	// RecordCredit posts a positive ledger entry.
	RecordCredit(ctx context.Context, req dto.RecordTransactionRequest) (*domain.Transaction, error)

	// RecordDebit posts a negative ledger entry.
	RecordDebit(ctx context.Context, req dto.RecordTransactionRequest) (*domain.Transaction, error)

	// CheckSufficientBalance compares the member's completed balance with
	// the requested amount.
	CheckSufficientBalance(ctx context.Context, memberID string, amount decimal.Decimal) (*dto.BalanceCheck, error)

	// ProcessPayment debits the member with the balance check and the
	// debit executed atomically under the same row lock.
	ProcessPayment(ctx context.Context, req dto.PaymentRequest) (*domain.Transaction, error)

	// CompleteTransaction flips a pending entry to COMPLETED and marks any
	// profit share carried by it as paid.
	CompleteTransaction(ctx context.Context, transactionID string, completedBy string) error

	// FindDuplicates detects duplicate groups for a member.
	FindDuplicates(ctx context.Context, memberID string) ([]domain.DuplicateGroup, error)

	// FixDuplicates deletes all but the earliest entry of each duplicate
	// group. Admin-invoked operational repair.
	FixDuplicates(ctx context.Context, memberID string) (int64, error)
}
