package services

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/shopspring/decimal"
)

// ClawbackSvcFacade reverses paid referral commissions when the underlying
// investment is withdrawn early.
type ClawbackSvcFacade interface {
	// Clawback walks the withdrawing member's paid commissions and reverses
	// a proportional amount from each referrer, atomically per withdrawal.
	Clawback(ctx context.Context, memberID string, withdrawalID string, withdrawalAmount decimal.Decimal) (*dto.ClawbackResult, error)
}
