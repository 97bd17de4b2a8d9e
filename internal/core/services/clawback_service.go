package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/ketepool/member_fund_app/internal/platform/ctxlog"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveWithdrawal = errors.New("withdrawal amount must be positive")
)

var oneHundred = decimal.NewFromInt(100)

// clawbackService reverses paid referral commissions proportionally to the
// withdrawn fraction of the referred member's holdings.
type clawbackService struct {
	commissionRepo portsrepo.CommissionRepositoryFacade
	investmentRepo portsrepo.InvestmentRepositoryFacade
	clk            clock.Clock
}

// NewClawbackService creates a new ClawbackService.
func NewClawbackService(commissionRepo portsrepo.CommissionRepositoryFacade, investmentRepo portsrepo.InvestmentRepositoryFacade, clk clock.Clock) portssvc.ClawbackSvcFacade {
	return &clawbackService{
		commissionRepo: commissionRepo,
		investmentRepo: investmentRepo,
		clk:            clk,
	}
}

// Ensure clawbackService implements the portssvc.ClawbackSvcFacade interface
var _ portssvc.ClawbackSvcFacade = (*clawbackService)(nil)

// Clawback walks the withdrawing member's paid commissions and reverses a
// proportional amount from each referrer, atomically per withdrawal. Each
// reversal is capped at the commission's remaining headroom so repeated
// partial withdrawals can never reclaim more than was originally paid.
func (s *clawbackService) Clawback(ctx context.Context, memberID string, withdrawalID string, withdrawalAmount decimal.Decimal) (*dto.ClawbackResult, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	if !withdrawalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveWithdrawal, withdrawalAmount.String())
	}

	result := &dto.ClawbackResult{
		Success:         true,
		WithdrawalID:    withdrawalID,
		TotalClawedBack: decimal.Zero,
	}

	commissions, err := s.commissionRepo.FindPaidCommissionsByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if len(commissions) == 0 {
		return result, nil
	}

	percent, err := s.withdrawalPercent(ctx, memberID, withdrawalAmount)
	if err != nil {
		return nil, err
	}

	var (
		clawbacks        []domain.CommissionClawback
		txns             []domain.Transaction
		earningsDebits   = make(map[string]decimal.Decimal)
		commissionDeltas = make(map[string]decimal.Decimal)
	)

	now := s.clk.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     memberID,
		LastUpdatedAt: now,
		LastUpdatedBy: memberID,
	}

	for _, commission := range commissions {
		exists, err := s.commissionRepo.ClawbackExists(ctx, commission.CommissionID, withdrawalID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		amount := commission.Amount.Mul(percent).Div(oneHundred).Truncate(2)
		amount = decimal.Min(amount, commission.Remaining())
		if !amount.IsPositive() {
			continue
		}

		clawback := domain.CommissionClawback{
			ClawbackID:   uuid.NewString(),
			CommissionID: commission.CommissionID,
			WithdrawalID: withdrawalID,
			ReferrerID:   commission.ReferrerID,
			MemberID:     memberID,
			Amount:       amount,
			Percent:      percent,
			Status:       domain.ClawbackApplied,
			AuditFields:  audit,
		}
		clawbacks = append(clawbacks, clawback)

		txns = append(txns, domain.Transaction{
			TransactionID:   uuid.NewString(),
			MemberID:        commission.ReferrerID,
			TransactionType: domain.TxnCommissionClawback,
			Amount:          amount.Neg(),
			Status:          domain.TxnCompleted,
			Reference:       generateReference(s.clk, domain.TxnCommissionClawback),
			Notes:           "commission clawback for withdrawal " + withdrawalID,
			AuditFields:     audit,
		})

		earningsDebits[commission.ReferrerID] = earningsDebits[commission.ReferrerID].Add(amount)
		commissionDeltas[commission.CommissionID] = commissionDeltas[commission.CommissionID].Add(amount)

		result.TotalClawedBack = result.TotalClawedBack.Add(amount)
		result.Entries = append(result.Entries, dto.ClawbackEntry{
			ClawbackID:   clawback.ClawbackID,
			CommissionID: commission.CommissionID,
			ReferrerID:   commission.ReferrerID,
			Amount:       amount,
			Percent:      percent,
		})
	}

	if len(clawbacks) == 0 {
		return result, nil
	}

	if err := s.commissionRepo.SaveClawbackBatch(ctx, clawbacks, txns, earningsDebits, commissionDeltas); err != nil {
		return nil, err
	}

	logger.Info("commission clawback applied",
		slog.String("member_id", memberID),
		slog.String("withdrawal_id", withdrawalID),
		slog.String("total", result.TotalClawedBack.String()),
		slog.Int("entries", len(result.Entries)),
	)
	return result, nil
}

// withdrawalPercent computes how much of the member's active holdings'
// current value the withdrawal represents, clamped to 100. A member with no
// remaining active value is treated as fully withdrawn.
func (s *clawbackService) withdrawalPercent(ctx context.Context, memberID string, withdrawalAmount decimal.Decimal) (decimal.Decimal, error) {
	investments, err := s.investmentRepo.FindActiveInvestmentsByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, inv := range investments {
		total = total.Add(inv.CurrentValue)
	}
	if !total.IsPositive() {
		return oneHundred, nil
	}

	percent := withdrawalAmount.Div(total).Mul(oneHundred)
	if percent.GreaterThan(oneHundred) {
		percent = oneHundred
	}
	return percent.Round(4), nil
}
