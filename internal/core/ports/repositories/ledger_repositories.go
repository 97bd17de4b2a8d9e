package repositories

import (
	"context"
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// FindTransactionByID retrieves one ledger entry.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindByMemberTypeReferenceSince finds an existing entry with the same
	// (member, type, reference) created at or after the given instant.
	// Returns apperrors.ErrNotFound when no such entry exists.
	FindByMemberTypeReferenceSince(ctx context.Context, memberID string, txnType domain.TransactionType, reference string, since time.Time) (*domain.Transaction, error)

	// SumCompletedByMember computes the member's balance as the sum of
	// completed transaction amounts. The ledger is authoritative; no
	// separately cached balance exists.
	SumCompletedByMember(ctx context.Context, memberID string) (decimal.Decimal, error)

	// FindDuplicateGroups detects groups of transactions sharing
	// (reference, type, amount) with count > 1 for a member.
	FindDuplicateGroups(ctx context.Context, memberID string) ([]domain.DuplicateGroup, error)
}

// LedgerWriter defines append and repair operations.
type LedgerWriter interface {
	// SaveTransaction inserts one ledger entry. A unique-constraint
	// violation on (member, type, reference) maps to
	// apperrors.ErrDuplicateTransaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// SavePaymentWithBalanceCheck inserts a debit after verifying, under a
	// member row lock inside one DB transaction, that the completed balance
	// covers it. Returns apperrors.ErrInsufficientFunds otherwise.
	SavePaymentWithBalanceCheck(ctx context.Context, txn domain.Transaction) error

	// UpdateTransactionStatus transitions a pending entry.
	UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedBy string, updatedAt time.Time) error

	// DeleteDuplicateTransactions removes, for each duplicate group of the
	// member, all entries except the earliest. Returns the number deleted.
	// Admin-invoked repair, not an automatic safeguard.
	DeleteDuplicateTransactions(ctx context.Context, memberID string) (int64, error)
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
