package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/ketepool/member_fund_app/internal/platform/ctxlog"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositivePool       = errors.New("distribution pool must be positive")
	ErrBonusPercentOutOfBand = errors.New("bonus pool percent is outside the allowed band")
)

// BonusBand is the allowed quarterly bonus pool percentage range.
type BonusBand struct {
	Min     decimal.Decimal
	Max     decimal.Decimal
	Default decimal.Decimal
}

// distributionService computes and persists profit distribution runs.
// Every run is atomic: either the batch with all shares, ledger entries and
// loan adjustments commits, or a FAILED batch row is recorded for audit.
type distributionService struct {
	memberRepo     portsrepo.MemberRepositoryFacade
	investmentRepo portsrepo.InvestmentRepositoryFacade
	distRepo       portsrepo.DistributionRepositoryFacade
	clk            clock.Clock
	lockInMonths   int
	bonusBand      BonusBand
	validate       *validator.Validate
}

// NewDistributionService creates a new DistributionService.
func NewDistributionService(
	memberRepo portsrepo.MemberRepositoryFacade,
	investmentRepo portsrepo.InvestmentRepositoryFacade,
	distRepo portsrepo.DistributionRepositoryFacade,
	clk clock.Clock,
	lockInMonths int,
	bonusBand BonusBand,
) portssvc.DistributionSvcFacade {
	return &distributionService{
		memberRepo:     memberRepo,
		investmentRepo: investmentRepo,
		distRepo:       distRepo,
		clk:            clk,
		lockInMonths:   lockInMonths,
		bonusBand:      bonusBand,
		validate:       validator.New(),
	}
}

// Ensure distributionService implements portssvc.DistributionSvcFacade
var _ portssvc.DistributionSvcFacade = (*distributionService)(nil)

// memberShare is one member's computed slice before persistence.
type memberShare struct {
	member      domain.Member
	amount      decimal.Decimal
	poolPercent decimal.Decimal
	method      domain.CalculationMethod
}

// DistributeAnnual splits the annual pool across members. Members whose tier
// changed during the year get a time-weighted reconstruction from the
// tier-change log; everyone else gets the flat current-tier rate.
func (s *distributionService) DistributeAnnual(ctx context.Context, req dto.DistributeAnnualRequest) (*dto.DistributionResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if !req.TotalPool.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositivePool, req.TotalPool.String())
	}

	yearStart := time.Date(req.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)
	yearDays := decimal.NewFromInt(int64(yearEnd.Sub(yearStart).Hours() / 24))

	members, err := s.memberRepo.ListActiveMembers(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.investmentRepo.ListActiveInvestmentTotals(ctx)
	if err != nil {
		return nil, err
	}

	totalInvested := decimal.Zero
	for _, member := range members {
		if invested, ok := totals[member.MemberID]; ok && invested.IsPositive() {
			totalInvested = totalInvested.Add(invested)
		}
	}

	var shares []memberShare
	for _, member := range members {
		invested, ok := totals[member.MemberID]
		if !ok || !invested.IsPositive() {
			continue
		}

		changes, err := s.memberRepo.ListTierChanges(ctx, member.MemberID)
		if err != nil {
			return nil, err
		}

		var amount decimal.Decimal
		var method domain.CalculationMethod
		if len(changes) > 1 {
			amount, err = s.weightedProfit(ctx, invested, changes, yearStart, yearEnd, yearDays)
			if err != nil {
				return nil, err
			}
			method = domain.MethodWeightedTierHistory
		} else {
			if member.CurrentTierID == nil {
				continue
			}
			tier, err := s.memberRepo.FindTierByID(ctx, *member.CurrentTierID)
			if err != nil {
				return nil, err
			}
			amount = invested.Mul(tier.AnnualRatePercent).Div(oneHundred).Truncate(2)
			method = domain.MethodFixedTierRate
		}

		if !amount.IsPositive() {
			continue
		}

		shares = append(shares, memberShare{
			member:      member,
			amount:      amount,
			poolPercent: invested.Div(totalInvested).Mul(oneHundred).Round(4),
			method:      method,
		})
	}

	return s.persistRun(ctx, domain.PeriodAnnual, yearStart, yearEnd, req.TotalPool, shares, req.CreatedBy)
}

// weightedProfit reconstructs a member's annual profit from the tier-change
// log, pro-rating each tier segment by its days in the year.
func (s *distributionService) weightedProfit(ctx context.Context, invested decimal.Decimal, changes []domain.TierChange, yearStart, yearEnd time.Time, yearDays decimal.Decimal) (decimal.Decimal, error) {
	tierIDs := make([]string, 0, len(changes))
	for _, change := range changes {
		tierIDs = append(tierIDs, change.TierID)
	}
	tiers, err := s.memberRepo.FindTiersByIDs(ctx, tierIDs)
	if err != nil {
		return decimal.Zero, err
	}

	profit := decimal.Zero
	for i, change := range changes {
		segStart := change.EffectiveFrom
		if segStart.Before(yearStart) {
			segStart = yearStart
		}
		segEnd := yearEnd
		if i+1 < len(changes) && changes[i+1].EffectiveFrom.Before(yearEnd) {
			segEnd = changes[i+1].EffectiveFrom
		}
		if !segEnd.After(segStart) {
			continue
		}

		tier, ok := tiers[change.TierID]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: tier %s referenced by change %s", apperrors.ErrNotFound, change.TierID, change.ChangeID)
		}

		segDays := decimal.NewFromInt(int64(segEnd.Sub(segStart).Hours() / 24))
		segProfit := invested.Mul(tier.AnnualRatePercent).Div(oneHundred).Mul(segDays).Div(yearDays)
		profit = profit.Add(segProfit)
	}

	return profit.Truncate(2), nil
}

// DistributeQuarterlyBonus splits a bonus pool carved from quarterly profit
// across eligible members only: joined before the quarter end, holding at
// least one active investment already outside its lock-in.
func (s *distributionService) DistributeQuarterlyBonus(ctx context.Context, req dto.DistributeBonusRequest) (*dto.DistributionResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if !req.QuarterlyProfit.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositivePool, req.QuarterlyProfit.String())
	}

	percent := req.PoolPercent
	if percent.IsZero() {
		percent = s.bonusBand.Default
	}
	if percent.LessThan(s.bonusBand.Min) || percent.GreaterThan(s.bonusBand.Max) {
		return nil, fmt.Errorf("%w: %s is outside [%s, %s]",
			ErrBonusPercentOutOfBand, percent.String(), s.bonusBand.Min.String(), s.bonusBand.Max.String())
	}

	pool := req.QuarterlyProfit.Mul(percent).Div(oneHundred)
	quarterStart := req.QuarterStart.UTC()
	quarterEnd := quarterStart.AddDate(0, 3, 0)

	members, err := s.memberRepo.ListActiveMembers(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.investmentRepo.ListActiveInvestmentTotals(ctx)
	if err != nil {
		return nil, err
	}

	type eligibleMember struct {
		member   domain.Member
		invested decimal.Decimal
	}

	var eligible []eligibleMember
	eligibleTotal := decimal.Zero
	for _, member := range members {
		invested, ok := totals[member.MemberID]
		if !ok || !invested.IsPositive() {
			continue
		}
		if !member.JoinedAt.Before(quarterEnd) {
			continue
		}

		investments, err := s.investmentRepo.FindActiveInvestmentsByMember(ctx, member.MemberID)
		if err != nil {
			return nil, err
		}
		qualifies := false
		for _, inv := range investments {
			if !inv.WithinLockIn(quarterEnd, s.lockInMonths) {
				qualifies = true
				break
			}
		}
		if !qualifies {
			continue
		}

		eligible = append(eligible, eligibleMember{member: member, invested: invested})
		eligibleTotal = eligibleTotal.Add(invested)
	}

	var shares []memberShare
	if eligibleTotal.IsPositive() {
		for _, e := range eligible {
			amount := pool.Mul(e.invested).Div(eligibleTotal).Truncate(2)
			if !amount.IsPositive() {
				continue
			}
			shares = append(shares, memberShare{
				member:      e.member,
				amount:      amount,
				poolPercent: e.invested.Div(eligibleTotal).Mul(oneHundred).Round(4),
				method:      domain.MethodQuarterlyBonusPool,
			})
		}
	}

	return s.persistRun(ctx, domain.PeriodQuarterly, quarterStart, quarterEnd, pool, shares, req.CreatedBy)
}

// persistRun verifies pool coverage and commits the whole batch atomically.
// Exceeding the pool records a FAILED batch for audit and returns an
// unsuccessful result rather than an error.
func (s *distributionService) persistRun(ctx context.Context, period domain.PeriodType, periodStart, periodEnd time.Time, pool decimal.Decimal, shares []memberShare, createdBy string) (*dto.DistributionResult, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	now := s.clk.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     createdBy,
		LastUpdatedAt: now,
		LastUpdatedBy: createdBy,
	}

	totalDistributed := decimal.Zero
	for _, share := range shares {
		totalDistributed = totalDistributed.Add(share.amount)
	}

	batch := domain.ProfitDistributionBatch{
		BatchID:          uuid.NewString(),
		PeriodType:       period,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		TotalPool:        pool,
		TotalDistributed: totalDistributed,
		Status:           domain.BatchCompleted,
		ProcessedAt:      &now,
		AuditFields:      audit,
	}

	result := &dto.DistributionResult{
		BatchID:          batch.BatchID,
		PeriodType:       period,
		TotalPool:        pool,
		TotalDistributed: totalDistributed,
	}

	if totalDistributed.GreaterThan(pool) {
		reason := fmt.Sprintf("computed distribution %s exceeds pool %s", totalDistributed.String(), pool.String())
		batch.Status = domain.BatchFailed
		batch.ProcessedAt = nil
		if err := s.distRepo.MarkBatchFailed(ctx, batch, reason); err != nil {
			return nil, err
		}
		logger.Error("distribution run failed",
			slog.String("batch_id", batch.BatchID),
			slog.String("period", string(period)),
			slog.String("reason", reason),
		)
		result.Error = reason
		return result, nil
	}

	var (
		profitShares   []domain.ProfitShare
		txns           []domain.Transaction
		notes          []domain.NotificationMessage
		loanRepayments = make(map[string]decimal.Decimal)
	)

	txnType := domain.TxnProfitDistribution
	if period == domain.PeriodQuarterly {
		txnType = domain.TxnQuarterlyBonus
	}

	for _, share := range shares {
		// Loan interception: the pending ledger entry carries the net
		// amount, so completing it can never credit the intercepted slice.
		// The loan counters settle at batch save.
		repayment := decimal.Min(share.amount, share.member.LoanBalance)
		loanRepaid := decimal.Zero
		txnNotes := fmt.Sprintf("%s distribution share for batch %s", period, batch.BatchID)
		if repayment.IsPositive() {
			loanRepayments[share.member.MemberID] = repayment
			loanRepaid = repayment
			txnNotes = fmt.Sprintf("%s, net of %s applied to outstanding loan", txnNotes, repayment.String())
		}

		txn := domain.Transaction{
			TransactionID:   uuid.NewString(),
			MemberID:        share.member.MemberID,
			TransactionType: txnType,
			Amount:          share.amount.Sub(repayment),
			Status:          domain.TxnPending,
			Reference:       generateReference(s.clk, txnType),
			Notes:           txnNotes,
			AuditFields:     audit,
		}
		txns = append(txns, txn)

		profitShares = append(profitShares, domain.ProfitShare{
			ShareID:       uuid.NewString(),
			BatchID:       batch.BatchID,
			MemberID:      share.member.MemberID,
			Amount:        share.amount,
			PoolPercent:   share.poolPercent,
			Method:        share.method,
			Status:        domain.SharePending,
			TransactionID: txn.TransactionID,
			AuditFields:   audit,
		})

		payload, _ := json.Marshal(map[string]string{
			"memberID":   share.member.MemberID,
			"batchID":    batch.BatchID,
			"amount":     share.amount.String(),
			"loanRepaid": loanRepaid.String(),
		})
		notes = append(notes, domain.NotificationMessage{
			MessageID:   uuid.NewString(),
			Topic:       "distribution.share.created",
			MemberID:    share.member.MemberID,
			Payload:     string(payload),
			Status:      domain.NotificationPending,
			AuditFields: audit,
		})

		result.Shares = append(result.Shares, dto.MemberShareDetail{
			MemberID:    share.member.MemberID,
			Amount:      share.amount,
			PoolPercent: share.poolPercent,
			Method:      share.method,
			LoanRepaid:  loanRepaid,
		})
	}

	batchPayload, _ := json.Marshal(map[string]string{
		"batchID":          batch.BatchID,
		"periodType":       string(period),
		"totalDistributed": totalDistributed.String(),
	})
	notes = append(notes, domain.NotificationMessage{
		MessageID:   uuid.NewString(),
		Topic:       "distribution.completed",
		Payload:     string(batchPayload),
		Status:      domain.NotificationPending,
		AuditFields: audit,
	})

	if err := s.distRepo.SaveDistributionBatch(ctx, batch, profitShares, txns, loanRepayments, notes); err != nil {
		return nil, err
	}

	logger.Info("distribution run completed",
		slog.String("batch_id", batch.BatchID),
		slog.String("period", string(period)),
		slog.String("total_distributed", totalDistributed.String()),
		slog.Int("shares", len(profitShares)),
	)
	result.Success = true
	return result, nil
}
