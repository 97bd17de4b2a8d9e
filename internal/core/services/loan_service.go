package services

import (
	"context"
	"encoding/json"
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
	ErrNonPositiveLoan     = errors.New("loan amount must be positive")
	ErrNonPositiveEarnings = errors.New("earnings amount must be positive")
)

// loanService applies incoming earnings against outstanding loans and
// gates withdrawals on a zero loan balance.
type loanService struct {
	memberRepo portsrepo.MemberRepositoryFacade
	clk        clock.Clock
}

// NewLoanService creates a new LoanService.
func NewLoanService(memberRepo portsrepo.MemberRepositoryFacade, clk clock.Clock) portssvc.LoanSvcFacade {
	return &loanService{
		memberRepo: memberRepo,
		clk:        clk,
	}
}

// Ensure loanService implements the portssvc.LoanSvcFacade interface
var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// IssueLoan credits a loan to the member and updates the loan counters
// atomically. The notification commits with the loan transaction.
func (s *loanService) IssueLoan(ctx context.Context, memberID string, amount decimal.Decimal, issuedBy string) (*domain.Transaction, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveLoan, amount.String())
	}
	if _, err := s.memberRepo.FindMemberByID(ctx, memberID); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		MemberID:        memberID,
		TransactionType: domain.TxnLoanIssue,
		Amount:          amount,
		Status:          domain.TxnCompleted,
		Reference:       generateReference(s.clk, domain.TxnLoanIssue),
		Notes:           "loan issued",
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     issuedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: issuedBy,
		},
	}

	payload, _ := json.Marshal(map[string]string{
		"memberID":      memberID,
		"amount":        amount.String(),
		"transactionID": txn.TransactionID,
	})
	note := domain.NotificationMessage{
		MessageID: uuid.NewString(),
		Topic:     "loan.issued",
		MemberID:  memberID,
		Payload:   string(payload),
		Status:    domain.NotificationPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     issuedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: issuedBy,
		},
	}

	if err := s.memberRepo.SaveLoanIssue(ctx, memberID, amount, txn, note); err != nil {
		return nil, err
	}

	logger.Info("loan issued",
		slog.String("member_id", memberID),
		slog.String("amount", amount.String()),
		slog.String("transaction_id", txn.TransactionID),
	)
	return &txn, nil
}

// ApplyEarnings intercepts an earnings credit: min(earnings, loan balance)
// repays the loan, the remainder reaches the member's balance. The full
// credit and the repayment debit post together so the ledger still shows
// the original earning.
func (s *loanService) ApplyEarnings(ctx context.Context, memberID string, earnings decimal.Decimal, source domain.TransactionType, reference string, recordedBy string) (*dto.EarningsApplication, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	if !earnings.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveEarnings, earnings.String())
	}

	member, err := s.memberRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	repayment := decimal.Min(earnings, member.LoanBalance)
	now := s.clk.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     recordedBy,
		LastUpdatedAt: now,
		LastUpdatedBy: recordedBy,
	}

	if reference == "" {
		reference = generateReference(s.clk, source)
	}

	txns := []domain.Transaction{
		{
			TransactionID:   uuid.NewString(),
			MemberID:        memberID,
			TransactionType: source,
			Amount:          earnings,
			Status:          domain.TxnCompleted,
			Reference:       reference,
			Notes:           "earnings credited",
			AuditFields:     audit,
		},
	}
	if repayment.IsPositive() {
		txns = append(txns, domain.Transaction{
			TransactionID:   uuid.NewString(),
			MemberID:        memberID,
			TransactionType: domain.TxnLoanRepayment,
			Amount:          repayment.Neg(),
			Status:          domain.TxnCompleted,
			Reference:       generateReference(s.clk, domain.TxnLoanRepayment),
			Notes:           "earnings applied to outstanding loan",
			AuditFields:     audit,
		})
	}

	if err := s.memberRepo.SaveEarningsApplication(ctx, memberID, repayment, txns); err != nil {
		return nil, err
	}

	result := &dto.EarningsApplication{
		MemberID:         memberID,
		Earnings:         earnings,
		Repayment:        repayment,
		NetCredit:        earnings.Sub(repayment),
		RemainingBalance: member.LoanBalance.Sub(repayment),
	}

	logger.Info("earnings applied",
		slog.String("member_id", memberID),
		slog.String("earnings", earnings.String()),
		slog.String("repayment", repayment.String()),
		slog.String("remaining_loan", result.RemainingBalance.String()),
	)
	return result, nil
}

// CanWithdraw reports whether the member passes the loan gate.
func (s *loanService) CanWithdraw(ctx context.Context, memberID string) (bool, error) {
	member, err := s.memberRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		return false, err
	}
	return member.CanWithdraw(), nil
}
