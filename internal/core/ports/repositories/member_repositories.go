package repositories

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MemberReader defines read operations for member records.
type MemberReader interface {
	// FindMemberByID retrieves a member by its unique identifier.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// ListActiveMembers retrieves every member visible to distribution runs.
	ListActiveMembers(ctx context.Context) ([]domain.Member, error)
}

// TierReader defines read operations for tiers and tier-change history.
type TierReader interface {
	// FindTierByID retrieves a tier definition.
	FindTierByID(ctx context.Context, tierID string) (*domain.InvestmentTier, error)

	// FindTiersByIDs retrieves multiple tier definitions keyed by ID.
	FindTiersByIDs(ctx context.Context, tierIDs []string) (map[string]domain.InvestmentTier, error)

	// ListTierChanges retrieves a member's tier-change log ordered by
	// effective date ascending.
	ListTierChanges(ctx context.Context, memberID string) ([]domain.TierChange, error)
}

// LoanWriter defines the atomic loan mutations. Each method owns a single
// DB transaction covering the member counters and the ledger entries.
type LoanWriter interface {
	// SaveLoanIssue increments the member's loan balance and cumulative
	// issued counter, inserts the ledger credit and enqueues the outbox
	// notification, all atomically. The member row is locked for the check.
	SaveLoanIssue(ctx context.Context, memberID string, amount decimal.Decimal, txn domain.Transaction, note domain.NotificationMessage) error

	// SaveEarningsApplication decrements the loan balance and increments
	// cumulative repaid by repayment, and inserts the given ledger entries,
	// all atomically. Fails if the decrement would drive the balance
	// negative.
	SaveEarningsApplication(ctx context.Context, memberID string, repayment decimal.Decimal, txns []domain.Transaction) error
}

// MemberRepositoryFacade combines all member-related repository interfaces.
type MemberRepositoryFacade interface {
	MemberReader
	TierReader
	LoanWriter
}
