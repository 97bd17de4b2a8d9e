package services_test

import (
	"context"
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock MemberRepository ---
type MockMemberRepository struct {
	mock.Mock
}

var _ portsrepo.MemberRepositoryFacade = (*MockMemberRepository)(nil)

func (m *MockMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ListActiveMembers(ctx context.Context) ([]domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindTierByID(ctx context.Context, tierID string) (*domain.InvestmentTier, error) {
	args := m.Called(ctx, tierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvestmentTier), args.Error(1)
}

func (m *MockMemberRepository) FindTiersByIDs(ctx context.Context, tierIDs []string) (map[string]domain.InvestmentTier, error) {
	args := m.Called(ctx, tierIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.InvestmentTier), args.Error(1)
}

func (m *MockMemberRepository) ListTierChanges(ctx context.Context, memberID string) ([]domain.TierChange, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TierChange), args.Error(1)
}

func (m *MockMemberRepository) SaveLoanIssue(ctx context.Context, memberID string, amount decimal.Decimal, txn domain.Transaction, note domain.NotificationMessage) error {
	args := m.Called(ctx, memberID, amount, txn, note)
	return args.Error(0)
}

func (m *MockMemberRepository) SaveEarningsApplication(ctx context.Context, memberID string, repayment decimal.Decimal, txns []domain.Transaction) error {
	args := m.Called(ctx, memberID, repayment, txns)
	return args.Error(0)
}

// --- Mock InvestmentRepository ---
type MockInvestmentRepository struct {
	mock.Mock
}

var _ portsrepo.InvestmentRepositoryFacade = (*MockInvestmentRepository)(nil)

func (m *MockInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	args := m.Called(ctx, investmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) FindActiveInvestmentsByMember(ctx context.Context, memberID string) ([]domain.Investment, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListActiveInvestmentTotals(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindByMemberTypeReferenceSince(ctx context.Context, memberID string, txnType domain.TransactionType, reference string, since time.Time) (*domain.Transaction, error) {
	args := m.Called(ctx, memberID, txnType, reference, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) SumCompletedByMember(ctx context.Context, memberID string) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) FindDuplicateGroups(ctx context.Context, memberID string) ([]domain.DuplicateGroup, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuplicateGroup), args.Error(1)
}

func (m *MockLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) SavePaymentWithBalanceCheck(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeleteDuplicateTransactions(ctx context.Context, memberID string) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock DistributionRepository ---
type MockDistributionRepository struct {
	mock.Mock
}

var _ portsrepo.DistributionRepositoryFacade = (*MockDistributionRepository)(nil)

func (m *MockDistributionRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.ProfitDistributionBatch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfitDistributionBatch), args.Error(1)
}

func (m *MockDistributionRepository) FindSharesByBatchID(ctx context.Context, batchID string) ([]domain.ProfitShare, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProfitShare), args.Error(1)
}

func (m *MockDistributionRepository) SaveDistributionBatch(ctx context.Context, batch domain.ProfitDistributionBatch, shares []domain.ProfitShare, txns []domain.Transaction, loanRepayments map[string]decimal.Decimal, notes []domain.NotificationMessage) error {
	args := m.Called(ctx, batch, shares, txns, loanRepayments, notes)
	return args.Error(0)
}

func (m *MockDistributionRepository) MarkBatchFailed(ctx context.Context, batch domain.ProfitDistributionBatch, reason string) error {
	args := m.Called(ctx, batch, reason)
	return args.Error(0)
}

func (m *MockDistributionRepository) UpdateShareStatusByTransaction(ctx context.Context, transactionID string, status domain.ShareStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, transactionID, status, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock WithdrawalRepository ---
type MockWithdrawalRepository struct {
	mock.Mock
}

var _ portsrepo.WithdrawalRepositoryFacade = (*MockWithdrawalRepository)(nil)

func (m *MockWithdrawalRepository) FindWithdrawalRequestByID(ctx context.Context, requestID string) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) ListWithdrawalRequestsByMember(ctx context.Context, memberID string, limit int) ([]domain.WithdrawalRequest, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) SaveWithdrawalRequest(ctx context.Context, req domain.WithdrawalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) UpdateWithdrawalRequestStatus(ctx context.Context, requestID string, status domain.WithdrawalStatus, completedAt *time.Time, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, requestID, status, completedAt, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock CommissionRepository ---
type MockCommissionRepository struct {
	mock.Mock
}

var _ portsrepo.CommissionRepositoryFacade = (*MockCommissionRepository)(nil)

func (m *MockCommissionRepository) FindPaidCommissionsByMember(ctx context.Context, memberID string) ([]domain.ReferralCommission, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReferralCommission), args.Error(1)
}

func (m *MockCommissionRepository) ClawbackExists(ctx context.Context, commissionID, withdrawalID string) (bool, error) {
	args := m.Called(ctx, commissionID, withdrawalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommissionRepository) SaveClawbackBatch(ctx context.Context, clawbacks []domain.CommissionClawback, txns []domain.Transaction, earningsDebits map[string]decimal.Decimal, commissionDeltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, clawbacks, txns, earningsDebits, commissionDeltas)
	return args.Error(0)
}

// --- Mock OutboxRepository ---
type MockOutboxRepository struct {
	mock.Mock
}

var _ portsrepo.OutboxRepositoryFacade = (*MockOutboxRepository)(nil)

func (m *MockOutboxRepository) ListPendingNotifications(ctx context.Context, limit int) ([]domain.NotificationMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NotificationMessage), args.Error(1)
}

func (m *MockOutboxRepository) SaveNotification(ctx context.Context, note domain.NotificationMessage) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkNotificationSent(ctx context.Context, messageID string, sentAt time.Time) error {
	args := m.Called(ctx, messageID, sentAt)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkNotificationFailed(ctx context.Context, messageID string, failedAt time.Time) error {
	args := m.Called(ctx, messageID, failedAt)
	return args.Error(0)
}

// --- Mock LedgerService (as used by WithdrawalService) ---
type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) RecordCredit(ctx context.Context, req dto.RecordTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) RecordDebit(ctx context.Context, req dto.RecordTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) CheckSufficientBalance(ctx context.Context, memberID string, amount decimal.Decimal) (*dto.BalanceCheck, error) {
	args := m.Called(ctx, memberID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BalanceCheck), args.Error(1)
}

func (m *MockLedgerService) ProcessPayment(ctx context.Context, req dto.PaymentRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) CompleteTransaction(ctx context.Context, transactionID string, completedBy string) error {
	args := m.Called(ctx, transactionID, completedBy)
	return args.Error(0)
}

func (m *MockLedgerService) FindDuplicates(ctx context.Context, memberID string) ([]domain.DuplicateGroup, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuplicateGroup), args.Error(1)
}

func (m *MockLedgerService) FixDuplicates(ctx context.Context, memberID string) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ClawbackService ---
type MockClawbackService struct {
	mock.Mock
}

var _ portssvc.ClawbackSvcFacade = (*MockClawbackService)(nil)

func (m *MockClawbackService) Clawback(ctx context.Context, memberID string, withdrawalID string, withdrawalAmount decimal.Decimal) (*dto.ClawbackResult, error) {
	args := m.Called(ctx, memberID, withdrawalID, withdrawalAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClawbackResult), args.Error(1)
}

// --- Mock InvestmentService (external collaborator) ---
type MockInvestmentService struct {
	mock.Mock
}

var _ portssvc.InvestmentSvcFacade = (*MockInvestmentService)(nil)

func (m *MockInvestmentService) ApplyWithdrawal(ctx context.Context, memberID string, amount decimal.Decimal, withdrawalType domain.WithdrawalType, appliedBy string) error {
	args := m.Called(ctx, memberID, amount, withdrawalType, appliedBy)
	return args.Error(0)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

var _ portssvc.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, note domain.NotificationMessage) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
