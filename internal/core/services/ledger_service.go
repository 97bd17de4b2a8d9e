package services

import (
	"context"
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
	"github.com/ketepool/member_fund_app/internal/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount = errors.New("transaction amount must be positive")
)

// ledgerService is the transaction guard. Every balance-affecting event
// funnels through it so the reference dedup window and the unique index are
// applied uniformly.
type ledgerService struct {
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	shareWriter portsrepo.DistributionWriter
	clk         clock.Clock
	dedupWindow time.Duration
	validate    *validator.Validate
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, shareWriter portsrepo.DistributionWriter, clk clock.Clock, dedupWindow time.Duration) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		shareWriter: shareWriter,
		clk:         clk,
		dedupWindow: dedupWindow,
		validate:    validator.New(),
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// generateReference builds a {type-prefix}-{timestamp}-{random} ledger
// reference.
func generateReference(clk clock.Clock, txnType domain.TransactionType) string {
	suffix, err := utils.GenerateSecureRandomString(4)
	if err != nil {
		suffix = uuid.NewString()[:8]
	}
	return fmt.Sprintf("%s-%d-%s", txnType.ReferencePrefix(), clk.Now().Unix(), suffix)
}

// RecordCredit posts a positive ledger entry.
func (s *ledgerService) RecordCredit(ctx context.Context, req dto.RecordTransactionRequest) (*domain.Transaction, error) {
	return s.record(ctx, req, false)
}

// RecordDebit posts a negative ledger entry. The request amount stays
// positive; the sign is applied here.
func (s *ledgerService) RecordDebit(ctx context.Context, req dto.RecordTransactionRequest) (*domain.Transaction, error) {
	return s.record(ctx, req, true)
}

func (s *ledgerService) record(ctx context.Context, req dto.RecordTransactionRequest, isDebit bool) (*domain.Transaction, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveAmount, req.Amount.String())
	}

	now := s.clk.Now()
	reference := req.Reference
	if reference == "" {
		reference = generateReference(s.clk, req.TransactionType)
	} else {
		// Caller-supplied references are checked against the trailing dedup
		// window before touching the unique index, so the common retry case
		// fails fast with the existing entry's identity.
		existing, err := s.ledgerRepo.FindByMemberTypeReferenceSince(ctx, req.MemberID, req.TransactionType, reference, now.Add(-s.dedupWindow))
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check dedup window: %w", err)
		}
		if existing != nil {
			logger.Warn("duplicate transaction blocked",
				slog.String("member_id", req.MemberID),
				slog.String("reference", reference),
				slog.String("existing_transaction_id", existing.TransactionID),
			)
			return nil, fmt.Errorf("%w: reference %s already recorded as transaction %s",
				apperrors.ErrDuplicateTransaction, reference, existing.TransactionID)
		}
	}

	amount := req.Amount
	if isDebit {
		amount = amount.Neg()
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		MemberID:        req.MemberID,
		TransactionType: req.TransactionType,
		Amount:          amount,
		Status:          domain.TxnCompleted,
		Reference:       reference,
		Notes:           req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     req.RecordedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: req.RecordedBy,
		},
	}

	if err := s.ledgerRepo.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}

	logger.Info("transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("member_id", txn.MemberID),
		slog.String("type", string(txn.TransactionType)),
		slog.String("amount", txn.Amount.String()),
		slog.String("reference", txn.Reference),
	)
	return &txn, nil
}

// CheckSufficientBalance compares the member's completed balance with the
// requested amount. Advisory only: ProcessPayment re-checks under a row
// lock.
func (s *ledgerService) CheckSufficientBalance(ctx context.Context, memberID string, amount decimal.Decimal) (*dto.BalanceCheck, error) {
	balance, err := s.ledgerRepo.SumCompletedByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceCheck{
		MemberID:   memberID,
		Balance:    balance,
		Requested:  amount,
		Sufficient: balance.GreaterThanOrEqual(amount),
	}, nil
}

// ProcessPayment debits the member with the balance check and the debit
// executed atomically under the member row lock.
func (s *ledgerService) ProcessPayment(ctx context.Context, req dto.PaymentRequest) (*domain.Transaction, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveAmount, req.Amount.String())
	}

	txnType := req.TransactionType
	if txnType == "" {
		txnType = domain.TxnPayment
	}

	now := s.clk.Now()
	reference := req.Reference
	if reference == "" {
		reference = generateReference(s.clk, txnType)
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		MemberID:        req.MemberID,
		TransactionType: txnType,
		Amount:          req.Amount.Neg(),
		Status:          domain.TxnCompleted,
		Reference:       reference,
		Notes:           req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     req.RecordedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: req.RecordedBy,
		},
	}

	if err := s.ledgerRepo.SavePaymentWithBalanceCheck(ctx, txn); err != nil {
		return nil, err
	}

	logger.Info("payment processed",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("member_id", txn.MemberID),
		slog.String("amount", req.Amount.String()),
	)
	return &txn, nil
}

// CompleteTransaction flips a pending entry to COMPLETED, and marks the
// profit share carried by it as paid when one exists.
func (s *ledgerService) CompleteTransaction(ctx context.Context, transactionID string, completedBy string) error {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	now := s.clk.Now()
	if err := s.ledgerRepo.UpdateTransactionStatus(ctx, transactionID, domain.TxnCompleted, completedBy, now); err != nil {
		return err
	}

	err := s.shareWriter.UpdateShareStatusByTransaction(ctx, transactionID, domain.SharePaid, completedBy, now)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to mark share paid for transaction %s: %w", transactionID, err)
	}

	logger.Info("transaction completed", slog.String("transaction_id", transactionID))
	return nil
}

// FindDuplicates detects duplicate groups for a member.
func (s *ledgerService) FindDuplicates(ctx context.Context, memberID string) ([]domain.DuplicateGroup, error) {
	return s.ledgerRepo.FindDuplicateGroups(ctx, memberID)
}

// FixDuplicates deletes all but the earliest entry of each duplicate group
// for the member. Admin-invoked repair, not an automatic safeguard.
func (s *ledgerService) FixDuplicates(ctx context.Context, memberID string) (int64, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	deleted, err := s.ledgerRepo.DeleteDuplicateTransactions(ctx, memberID)
	if err != nil {
		return 0, err
	}

	logger.Info("duplicate transactions removed",
		slog.String("member_id", memberID),
		slog.Int64("deleted", deleted),
	)
	return deleted, nil
}
