package services

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LoanSvcFacade applies incoming earnings against outstanding loans and
// gates withdrawals on a zero loan balance.
type LoanSvcFacade interface {
	// IssueLoan credits a loan to the member and updates the counters
	// atomically.
	IssueLoan(ctx context.Context, memberID string, amount decimal.Decimal, issuedBy string) (*domain.Transaction, error)

	// ApplyEarnings intercepts an earnings credit: min(earnings, balance)
	// repays the loan, the remainder is credited to the member.
	ApplyEarnings(ctx context.Context, memberID string, earnings decimal.Decimal, source domain.TransactionType, reference string, recordedBy string) (*dto.EarningsApplication, error)

	// CanWithdraw reports whether the member's loan balance is zero.
	CanWithdraw(ctx context.Context, memberID string) (bool, error)
}
