package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/core/services"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DistributionServiceTestSuite struct {
	suite.Suite
	mockMemberRepo     *MockMemberRepository
	mockInvestmentRepo *MockInvestmentRepository
	mockDistRepo       *MockDistributionRepository
	clk                *clock.FakeClock
	service            portssvc.DistributionSvcFacade
	createdBy          string
}

func (suite *DistributionServiceTestSuite) SetupTest() {
	suite.mockMemberRepo = new(MockMemberRepository)
	suite.mockInvestmentRepo = new(MockInvestmentRepository)
	suite.mockDistRepo = new(MockDistributionRepository)
	suite.clk = clock.NewFakeClock(time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC))
	suite.service = services.NewDistributionService(
		suite.mockMemberRepo,
		suite.mockInvestmentRepo,
		suite.mockDistRepo,
		suite.clk,
		12,
		services.BonusBand{
			Min:     decimal.NewFromInt(5),
			Max:     decimal.NewFromInt(10),
			Default: decimal.NewFromInt(8),
		},
	)
	suite.createdBy = uuid.NewString()
}

func (suite *DistributionServiceTestSuite) newMember(loanBalance decimal.Decimal, tierID *string) domain.Member {
	return domain.Member{
		MemberID:      uuid.NewString(),
		CurrentTierID: tierID,
		JoinedAt:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		LoanBalance:   loanBalance,
	}
}

func tierWithRate(tierID string, rate int64) *domain.InvestmentTier {
	return &domain.InvestmentTier{
		TierID:            tierID,
		Name:              "Tier " + tierID[:4],
		AnnualRatePercent: decimal.NewFromInt(rate),
	}
}

func (suite *DistributionServiceTestSuite) TestDistributeAnnual_FlatTierRate() {
	ctx := context.Background()
	tierID := uuid.NewString()
	member := suite.newMember(decimal.Zero, &tierID)

	suite.mockMemberRepo.On("ListActiveMembers", ctx).
		Return([]domain.Member{member}, nil).Once()
	suite.mockInvestmentRepo.On("ListActiveInvestmentTotals", ctx).
		Return(map[string]decimal.Decimal{member.MemberID: decimal.NewFromInt(10000)}, nil).Once()
	suite.mockMemberRepo.On("ListTierChanges", ctx, member.MemberID).
		Return([]domain.TierChange{}, nil).Once()
	suite.mockMemberRepo.On("FindTierByID", ctx, tierID).
		Return(tierWithRate(tierID, 10), nil).Once()
	suite.mockDistRepo.On("SaveDistributionBatch", ctx,
		mock.MatchedBy(func(batch domain.ProfitDistributionBatch) bool {
			return batch.PeriodType == domain.PeriodAnnual &&
				batch.Status == domain.BatchCompleted &&
				batch.TotalDistributed.Equal(decimal.NewFromInt(1000))
		}),
		mock.MatchedBy(func(shares []domain.ProfitShare) bool {
			return len(shares) == 1 &&
				shares[0].Amount.Equal(decimal.NewFromInt(1000)) &&
				shares[0].Method == domain.MethodFixedTierRate &&
				shares[0].Status == domain.SharePending &&
				shares[0].TransactionID != ""
		}),
		mock.MatchedBy(func(txns []domain.Transaction) bool {
			return len(txns) == 1 &&
				txns[0].TransactionType == domain.TxnProfitDistribution &&
				txns[0].Status == domain.TxnPending
		}),
		mock.MatchedBy(func(loanRepayments map[string]decimal.Decimal) bool {
			return len(loanRepayments) == 0
		}),
		mock.AnythingOfType("[]domain.NotificationMessage"),
	).Return(nil).Once()

	result, err := suite.service.DistributeAnnual(ctx, dto.DistributeAnnualRequest{
		TotalPool: decimal.NewFromInt(50000),
		Year:      2025,
		CreatedBy: suite.createdBy,
	})

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Require().Len(result.Shares, 1)
	suite.True(result.Shares[0].Amount.Equal(decimal.NewFromInt(1000)))
	suite.Equal(domain.MethodFixedTierRate, result.Shares[0].Method)
	suite.True(result.Shares[0].PoolPercent.Equal(decimal.NewFromInt(100)))
	suite.mockDistRepo.AssertExpectations(suite.T())
}

// A member who moved from a 10% tier to a 20% tier mid-year gets a
// time-weighted share: 10000 * 10% * 180/365 + 10000 * 20% * 185/365.
func (suite *DistributionServiceTestSuite) TestDistributeAnnual_WeightedTierHistory() {
	ctx := context.Background()
	tierA := uuid.NewString()
	tierB := uuid.NewString()
	member := suite.newMember(decimal.Zero, &tierB)
	changes := []domain.TierChange{
		{
			ChangeID:      uuid.NewString(),
			MemberID:      member.MemberID,
			TierID:        tierA,
			EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ChangeID:      uuid.NewString(),
			MemberID:      member.MemberID,
			TierID:        tierB,
			EffectiveFrom: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	suite.mockMemberRepo.On("ListActiveMembers", ctx).
		Return([]domain.Member{member}, nil).Once()
	suite.mockInvestmentRepo.On("ListActiveInvestmentTotals", ctx).
		Return(map[string]decimal.Decimal{member.MemberID: decimal.NewFromInt(10000)}, nil).Once()
	suite.mockMemberRepo.On("ListTierChanges", ctx, member.MemberID).
		Return(changes, nil).Once()
	suite.mockMemberRepo.On("FindTiersByIDs", ctx, []string{tierA, tierB}).
		Return(map[string]domain.InvestmentTier{
			tierA: *tierWithRate(tierA, 10),
			tierB: *tierWithRate(tierB, 20),
		}, nil).Once()

	expected := decimal.RequireFromString("1506.84")
	suite.mockDistRepo.On("SaveDistributionBatch", ctx,
		mock.AnythingOfType("domain.ProfitDistributionBatch"),
		mock.MatchedBy(func(shares []domain.ProfitShare) bool {
			return len(shares) == 1 &&
				shares[0].Amount.Equal(expected) &&
				shares[0].Method == domain.MethodWeightedTierHistory
		}),
		mock.AnythingOfType("[]domain.Transaction"),
		mock.AnythingOfType("map[string]decimal.Decimal"),
		mock.AnythingOfType("[]domain.NotificationMessage"),
	).Return(nil).Once()

	result, err := suite.service.DistributeAnnual(ctx, dto.DistributeAnnualRequest{
		TotalPool: decimal.NewFromInt(50000),
		Year:      2025,
		CreatedBy: suite.createdBy,
	})

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Require().Len(result.Shares, 1)
	suite.True(result.Shares[0].Amount.Equal(expected))
	suite.Equal(domain.MethodWeightedTierHistory, result.Shares[0].Method)
	suite.mockDistRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestDistributeAnnual_PoolExceededFailsBatch() {
	ctx := context.Background()
	tierID := uuid.NewString()
	member := suite.newMember(decimal.Zero, &tierID)

	suite.mockMemberRepo.On("ListActiveMembers", ctx).
		Return([]domain.Member{member}, nil).Once()
	suite.mockInvestmentRepo.On("ListActiveInvestmentTotals", ctx).
		Return(map[string]decimal.Decimal{member.MemberID: decimal.NewFromInt(10000)}, nil).Once()
	suite.mockMemberRepo.On("ListTierChanges", ctx, member.MemberID).
		Return([]domain.TierChange{}, nil).Once()
	suite.mockMemberRepo.On("FindTierByID", ctx, tierID).
		Return(tierWithRate(tierID, 10), nil).Once()
	suite.mockDistRepo.On("MarkBatchFailed", ctx,
		mock.MatchedBy(func(batch domain.ProfitDistributionBatch) bool {
			return batch.Status == domain.BatchFailed && batch.ProcessedAt == nil
		}),
		mock.AnythingOfType("string"),
	).Return(nil).Once()

	result, err := suite.service.DistributeAnnual(ctx, dto.DistributeAnnualRequest{
		TotalPool: decimal.NewFromInt(100),
		Year:      2025,
		CreatedBy: suite.createdBy,
	})

	suite.Require().NoError(err)
	suite.False(result.Success)
	suite.NotEmpty(result.Error)
	suite.Empty(result.Shares)
	suite.mockDistRepo.AssertNotCalled(suite.T(), "SaveDistributionBatch",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockDistRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestDistributeAnnual_LoanInterception() {
	ctx := context.Background()
	tierID := uuid.NewString()
	member := suite.newMember(decimal.NewFromInt(300), &tierID)

	suite.mockMemberRepo.On("ListActiveMembers", ctx).
		Return([]domain.Member{member}, nil).Once()
	suite.mockInvestmentRepo.On("ListActiveInvestmentTotals", ctx).
		Return(map[string]decimal.Decimal{member.MemberID: decimal.NewFromInt(10000)}, nil).Once()
	suite.mockMemberRepo.On("ListTierChanges", ctx, member.MemberID).
		Return([]domain.TierChange{}, nil).Once()
	suite.mockMemberRepo.On("FindTierByID", ctx, tierID).
		Return(tierWithRate(tierID, 10), nil).Once()
	suite.mockDistRepo.On("SaveDistributionBatch", ctx,
		mock.AnythingOfType("domain.ProfitDistributionBatch"),
		mock.MatchedBy(func(shares []domain.ProfitShare) bool {
			return len(shares) == 1 && shares[0].Amount.Equal(decimal.NewFromInt(1000))
		}),
		// The pending ledger entry carries the net credit: completing it
		// later can never pay out the intercepted slice.
		mock.MatchedBy(func(txns []domain.Transaction) bool {
			return len(txns) == 1 &&
				txns[0].TransactionType == domain.TxnProfitDistribution &&
				txns[0].Amount.Equal(decimal.NewFromInt(700)) &&
				txns[0].Status == domain.TxnPending
		}),
		mock.MatchedBy(func(loanRepayments map[string]decimal.Decimal) bool {
			return loanRepayments[member.MemberID].Equal(decimal.NewFromInt(300))
		}),
		mock.AnythingOfType("[]domain.NotificationMessage"),
	).Return(nil).Once()

	result, err := suite.service.DistributeAnnual(ctx, dto.DistributeAnnualRequest{
		TotalPool: decimal.NewFromInt(50000),
		Year:      2025,
		CreatedBy: suite.createdBy,
	})

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Require().Len(result.Shares, 1)
	suite.True(result.Shares[0].Amount.Equal(decimal.NewFromInt(1000)))
	suite.True(result.Shares[0].LoanRepaid.Equal(decimal.NewFromInt(300)))
	suite.mockDistRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestDistributeAnnual_FullyInterceptedShare() {
	ctx := context.Background()
	tierID := uuid.NewString()
	// Loan larger than the share: the whole share repays the loan and the
	// pending ledger entry nets to zero.
	member := suite.newMember(decimal.NewFromInt(1500), &tierID)

	suite.mockMemberRepo.On("ListActiveMembers", ctx).
		Return([]domain.Member{member}, nil).Once()
	suite.mockInvestmentRepo.On("ListActiveInvestmentTotals", ctx).
		Return(map[string]decimal.Decimal{member.MemberID: decimal.NewFromInt(10000)}, nil).Once()
	suite.mockMemberRepo.On("ListTierChanges", ctx, member.MemberID).
		Return([]domain.TierChange{}, nil).Once()
	suite.mockMemberRepo.On("FindTierByID", ctx, tierID).
		Return(tierWithRate(tierID, 10), nil).Once()
	suite.mockDistRepo.On("SaveDistributionBatch", ctx,
		mock.AnythingOfType("domain.ProfitDistributionBatch"),
		mock.MatchedBy(func(shares []domain.ProfitShare) bool {
			return len(shares) == 1 && shares[0].Amount.Equal(decimal.NewFromInt(1000))
		}),
		mock.MatchedBy(func(txns []domain.Transaction) bool {
			return len(txns) == 1 && txns[0].Amount.IsZero()
		}),
		mock.MatchedBy(func(loanRepayments map[string]decimal.Decimal) bool {
			return loanRepayments[member.MemberID].Equal(decimal.NewFromInt(1000))
		}),
		mock.AnythingOfType("[]domain.NotificationMessage"),
	).Return(nil).Once()

	result, err := suite.service.DistributeAnnual(ctx, dto.DistributeAnnualRequest{
		TotalPool: decimal.NewFromInt(50000),
		Year:      2025,
		CreatedBy: suite.createdBy,
	})

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Require().Len(result.Shares, 1)
	suite.True(result.Shares[0].LoanRepaid.Equal(decimal.NewFromInt(1000)))
	suite.mockDistRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestDistributeAnnual_RejectsNonPositivePool() {
	ctx := context.Background()

	_, err := suite.service.DistributeAnnual(ctx, dto.DistributeAnnualRequest{
		TotalPool: decimal.NewFromInt(-1),
		Year:      2025,
		CreatedBy: suite.createdBy,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNonPositivePool)
}

func (suite *DistributionServiceTestSuite) TestDistributeQuarterlyBonus_ProportionalSplit() {
	ctx := context.Background()
	quarterStart := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	unlocked := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	memberA := suite.newMember(decimal.Zero, nil)
	memberB := suite.newMember(decimal.Zero, nil)

	suite.mockMemberRepo.On("ListActiveMembers", ctx).
		Return([]domain.Member{memberA, memberB}, nil).Once()
	suite.mockInvestmentRepo.On("ListActiveInvestmentTotals", ctx).
		Return(map[string]decimal.Decimal{
			memberA.MemberID: decimal.NewFromInt(6000),
			memberB.MemberID: decimal.NewFromInt(2000),
		}, nil).Once()
	suite.mockInvestmentRepo.On("FindActiveInvestmentsByMember", ctx, memberA.MemberID).
		Return([]domain.Investment{{
			InvestmentID: uuid.NewString(),
			MemberID:     memberA.MemberID,
			Principal:    decimal.NewFromInt(6000),
			CurrentValue: decimal.NewFromInt(6500),
			Status:       domain.InvestmentActive,
			LockInStart:  unlocked,
		}}, nil).Once()
	suite.mockInvestmentRepo.On("FindActiveInvestmentsByMember", ctx, memberB.MemberID).
		Return([]domain.Investment{{
			InvestmentID: uuid.NewString(),
			MemberID:     memberB.MemberID,
			Principal:    decimal.NewFromInt(2000),
			CurrentValue: decimal.NewFromInt(2100),
			Status:       domain.InvestmentActive,
			LockInStart:  unlocked,
		}}, nil).Once()
	suite.mockDistRepo.On("SaveDistributionBatch", ctx,
		mock.MatchedBy(func(batch domain.ProfitDistributionBatch) bool {
			return batch.PeriodType == domain.PeriodQuarterly &&
				batch.TotalPool.Equal(decimal.NewFromInt(800))
		}),
		mock.MatchedBy(func(shares []domain.ProfitShare) bool {
			return len(shares) == 2 &&
				shares[0].Amount.Equal(decimal.NewFromInt(600)) &&
				shares[1].Amount.Equal(decimal.NewFromInt(200)) &&
				shares[0].Method == domain.MethodQuarterlyBonusPool
		}),
		mock.MatchedBy(func(txns []domain.Transaction) bool {
			return len(txns) == 2 && txns[0].TransactionType == domain.TxnQuarterlyBonus
		}),
		mock.AnythingOfType("map[string]decimal.Decimal"),
		mock.AnythingOfType("[]domain.NotificationMessage"),
	).Return(nil).Once()

	// Zero percent selects the configured default of 8%: 10000 -> 800 pool.
	result, err := suite.service.DistributeQuarterlyBonus(ctx, dto.DistributeBonusRequest{
		QuarterlyProfit: decimal.NewFromInt(10000),
		QuarterStart:    quarterStart,
		CreatedBy:       suite.createdBy,
	})

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.True(result.TotalDistributed.Equal(decimal.NewFromInt(800)))
	suite.mockDistRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestDistributeQuarterlyBonus_ExcludesLockedAndLateJoiners() {
	ctx := context.Background()
	quarterStart := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	eligible := suite.newMember(decimal.Zero, nil)
	lockedIn := suite.newMember(decimal.Zero, nil)
	lateJoiner := suite.newMember(decimal.Zero, nil)
	lateJoiner.JoinedAt = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	suite.mockMemberRepo.On("ListActiveMembers", ctx).
		Return([]domain.Member{eligible, lockedIn, lateJoiner}, nil).Once()
	suite.mockInvestmentRepo.On("ListActiveInvestmentTotals", ctx).
		Return(map[string]decimal.Decimal{
			eligible.MemberID:   decimal.NewFromInt(5000),
			lockedIn.MemberID:   decimal.NewFromInt(5000),
			lateJoiner.MemberID: decimal.NewFromInt(5000),
		}, nil).Once()
	suite.mockInvestmentRepo.On("FindActiveInvestmentsByMember", ctx, eligible.MemberID).
		Return([]domain.Investment{{
			InvestmentID: uuid.NewString(),
			MemberID:     eligible.MemberID,
			Principal:    decimal.NewFromInt(5000),
			CurrentValue: decimal.NewFromInt(5200),
			Status:       domain.InvestmentActive,
			LockInStart:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		}}, nil).Once()
	// Still inside the 12-month lock-in at quarter end.
	suite.mockInvestmentRepo.On("FindActiveInvestmentsByMember", ctx, lockedIn.MemberID).
		Return([]domain.Investment{{
			InvestmentID: uuid.NewString(),
			MemberID:     lockedIn.MemberID,
			Principal:    decimal.NewFromInt(5000),
			CurrentValue: decimal.NewFromInt(5100),
			Status:       domain.InvestmentActive,
			LockInStart:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		}}, nil).Once()
	suite.mockDistRepo.On("SaveDistributionBatch", ctx,
		mock.AnythingOfType("domain.ProfitDistributionBatch"),
		mock.MatchedBy(func(shares []domain.ProfitShare) bool {
			return len(shares) == 1 &&
				shares[0].MemberID == eligible.MemberID &&
				shares[0].Amount.Equal(decimal.NewFromInt(800))
		}),
		mock.AnythingOfType("[]domain.Transaction"),
		mock.AnythingOfType("map[string]decimal.Decimal"),
		mock.AnythingOfType("[]domain.NotificationMessage"),
	).Return(nil).Once()

	result, err := suite.service.DistributeQuarterlyBonus(ctx, dto.DistributeBonusRequest{
		QuarterlyProfit: decimal.NewFromInt(10000),
		QuarterStart:    quarterStart,
		CreatedBy:       suite.createdBy,
	})

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Require().Len(result.Shares, 1)
	suite.Equal(eligible.MemberID, result.Shares[0].MemberID)
	suite.mockInvestmentRepo.AssertNotCalled(suite.T(), "FindActiveInvestmentsByMember", ctx, lateJoiner.MemberID)
	suite.mockDistRepo.AssertExpectations(suite.T())
}

func (suite *DistributionServiceTestSuite) TestDistributeQuarterlyBonus_PercentOutOfBand() {
	ctx := context.Background()

	_, err := suite.service.DistributeQuarterlyBonus(ctx, dto.DistributeBonusRequest{
		QuarterlyProfit: decimal.NewFromInt(10000),
		PoolPercent:     decimal.NewFromInt(12),
		QuarterStart:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:       suite.createdBy,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrBonusPercentOutOfBand)
	suite.mockMemberRepo.AssertNotCalled(suite.T(), "ListActiveMembers", mock.Anything)
}

func TestDistributionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DistributionServiceTestSuite))
}
