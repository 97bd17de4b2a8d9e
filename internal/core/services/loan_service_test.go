package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/core/services"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LoanServiceTestSuite struct {
	suite.Suite
	mockMemberRepo *MockMemberRepository
	clk            *clock.FakeClock
	service        portssvc.LoanSvcFacade
	memberID       string
	issuedBy       string
}

func (suite *LoanServiceTestSuite) SetupTest() {
	suite.mockMemberRepo = new(MockMemberRepository)
	suite.clk = clock.NewFakeClock(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	suite.service = services.NewLoanService(suite.mockMemberRepo, suite.clk)
	suite.memberID = uuid.NewString()
	suite.issuedBy = uuid.NewString()
}

func (suite *LoanServiceTestSuite) member(loanBalance decimal.Decimal) *domain.Member {
	return &domain.Member{
		MemberID:    suite.memberID,
		JoinedAt:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		LoanBalance: loanBalance,
	}
}

func (suite *LoanServiceTestSuite) TestIssueLoan_Success() {
	ctx := context.Background()
	amount := decimal.NewFromInt(2000)

	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.memberID).
		Return(suite.member(decimal.Zero), nil).Once()
	suite.mockMemberRepo.On("SaveLoanIssue", ctx, suite.memberID, amount,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.TransactionType == domain.TxnLoanIssue &&
				txn.Amount.Equal(amount) &&
				txn.Status == domain.TxnCompleted
		}),
		mock.MatchedBy(func(note domain.NotificationMessage) bool {
			return note.Topic == "loan.issued" &&
				note.MemberID == suite.memberID &&
				note.Status == domain.NotificationPending
		}),
	).Return(nil).Once()

	txn, err := suite.service.IssueLoan(ctx, suite.memberID, amount, suite.issuedBy)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Regexp(`^LOAN-\d+-`, txn.Reference)
	suite.Equal(suite.issuedBy, txn.CreatedBy)
	suite.mockMemberRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestIssueLoan_RejectsNonPositiveAmount() {
	ctx := context.Background()

	_, err := suite.service.IssueLoan(ctx, suite.memberID, decimal.Zero, suite.issuedBy)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNonPositiveLoan)
	suite.mockMemberRepo.AssertNotCalled(suite.T(), "SaveLoanIssue",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestIssueLoan_UnknownMember() {
	ctx := context.Background()

	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.memberID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.IssueLoan(ctx, suite.memberID, decimal.NewFromInt(100), suite.issuedBy)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockMemberRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestApplyEarnings_PartialRepayment() {
	ctx := context.Background()
	earnings := decimal.NewFromInt(800)

	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.memberID).
		Return(suite.member(decimal.NewFromInt(500)), nil).Once()
	suite.mockMemberRepo.On("SaveEarningsApplication", ctx, suite.memberID, decimal.NewFromInt(500),
		mock.MatchedBy(func(txns []domain.Transaction) bool {
			if len(txns) != 2 {
				return false
			}
			credit, repay := txns[0], txns[1]
			return credit.TransactionType == domain.TxnProfitDistribution &&
				credit.Amount.Equal(earnings) &&
				repay.TransactionType == domain.TxnLoanRepayment &&
				repay.Amount.Equal(decimal.NewFromInt(-500))
		}),
	).Return(nil).Once()

	result, err := suite.service.ApplyEarnings(ctx, suite.memberID, earnings, domain.TxnProfitDistribution, "", suite.issuedBy)

	suite.Require().NoError(err)
	suite.True(result.Repayment.Equal(decimal.NewFromInt(500)))
	suite.True(result.NetCredit.Equal(decimal.NewFromInt(300)))
	suite.True(result.RemainingBalance.IsZero())
	suite.mockMemberRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestApplyEarnings_LoanExceedsEarnings() {
	ctx := context.Background()
	earnings := decimal.NewFromInt(300)

	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.memberID).
		Return(suite.member(decimal.NewFromInt(1000)), nil).Once()
	suite.mockMemberRepo.On("SaveEarningsApplication", ctx, suite.memberID, decimal.NewFromInt(300),
		mock.AnythingOfType("[]domain.Transaction")).Return(nil).Once()

	result, err := suite.service.ApplyEarnings(ctx, suite.memberID, earnings, domain.TxnQuarterlyBonus, "QBON-1-ref", suite.issuedBy)

	suite.Require().NoError(err)
	suite.True(result.Repayment.Equal(decimal.NewFromInt(300)))
	suite.True(result.NetCredit.IsZero())
	suite.True(result.RemainingBalance.Equal(decimal.NewFromInt(700)))
	suite.mockMemberRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestApplyEarnings_NoLoanSkipsRepayment() {
	ctx := context.Background()
	earnings := decimal.NewFromInt(250)

	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.memberID).
		Return(suite.member(decimal.Zero), nil).Once()
	suite.mockMemberRepo.On("SaveEarningsApplication", ctx, suite.memberID, decimal.Zero,
		mock.MatchedBy(func(txns []domain.Transaction) bool {
			return len(txns) == 1 && txns[0].Amount.Equal(earnings)
		}),
	).Return(nil).Once()

	result, err := suite.service.ApplyEarnings(ctx, suite.memberID, earnings, domain.TxnProfitDistribution, "", suite.issuedBy)

	suite.Require().NoError(err)
	suite.True(result.Repayment.IsZero())
	suite.True(result.NetCredit.Equal(earnings))
	suite.mockMemberRepo.AssertExpectations(suite.T())
}

func (suite *LoanServiceTestSuite) TestApplyEarnings_RejectsNonPositive() {
	ctx := context.Background()

	_, err := suite.service.ApplyEarnings(ctx, suite.memberID, decimal.NewFromInt(-5), domain.TxnProfitDistribution, "", suite.issuedBy)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNonPositiveEarnings)
}

func (suite *LoanServiceTestSuite) TestCanWithdraw() {
	ctx := context.Background()

	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.memberID).
		Return(suite.member(decimal.NewFromInt(50)), nil).Once()

	ok, err := suite.service.CanWithdraw(ctx, suite.memberID)

	suite.Require().NoError(err)
	suite.False(ok)

	suite.mockMemberRepo.On("FindMemberByID", ctx, suite.memberID).
		Return(suite.member(decimal.Zero), nil).Once()

	ok, err = suite.service.CanWithdraw(ctx, suite.memberID)

	suite.Require().NoError(err)
	suite.True(ok)
	suite.mockMemberRepo.AssertExpectations(suite.T())
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}
