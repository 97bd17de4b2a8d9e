package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ketepool/member_fund_app/internal/apperrors"
	"github.com/ketepool/member_fund_app/internal/core/domain"
	portsrepo "github.com/ketepool/member_fund_app/internal/core/ports/repositories"
	portssvc "github.com/ketepool/member_fund_app/internal/core/ports/services"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/ketepool/member_fund_app/internal/platform/clock"
	"github.com/ketepool/member_fund_app/internal/platform/ctxlog"
	"github.com/ketepool/member_fund_app/internal/utils/penalty"
	"github.com/shopspring/decimal"
)

// withdrawalService evaluates withdrawal policy and drives the request
// lifecycle. Evaluation never mutates state; a rejection is a decision, not
// an error.
type withdrawalService struct {
	memberRepo     portsrepo.MemberRepositoryFacade
	investmentRepo portsrepo.InvestmentRepositoryFacade
	withdrawalRepo portsrepo.WithdrawalRepositoryFacade
	ledgerSvc      portssvc.LedgerSvcFacade
	clawbackSvc    portssvc.ClawbackSvcFacade
	investmentSvc  portssvc.InvestmentSvcFacade
	clk            clock.Clock
	sched          penalty.Schedule
}

// NewWithdrawalService creates a new WithdrawalService.
func NewWithdrawalService(
	memberRepo portsrepo.MemberRepositoryFacade,
	investmentRepo portsrepo.InvestmentRepositoryFacade,
	withdrawalRepo portsrepo.WithdrawalRepositoryFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	clawbackSvc portssvc.ClawbackSvcFacade,
	investmentSvc portssvc.InvestmentSvcFacade,
	clk clock.Clock,
	sched penalty.Schedule,
) portssvc.WithdrawalSvcFacade {
	return &withdrawalService{
		memberRepo:     memberRepo,
		investmentRepo: investmentRepo,
		withdrawalRepo: withdrawalRepo,
		ledgerSvc:      ledgerSvc,
		clawbackSvc:    clawbackSvc,
		investmentSvc:  investmentSvc,
		clk:            clk,
		sched:          sched,
	}
}

// Ensure withdrawalService implements portssvc.WithdrawalSvcFacade
var _ portssvc.WithdrawalSvcFacade = (*withdrawalService)(nil)

func rejection(req dto.EvaluateWithdrawalRequest, reason domain.WithdrawalReason, message string) *dto.WithdrawalDecision {
	return &dto.WithdrawalDecision{
		Approved:        false,
		Reason:          reason,
		Message:         message,
		RequestedAmount: req.Amount,
	}
}

// Evaluate produces a decision from current state only. Policy outcomes,
// including rejections, come back as decisions; only storage failures and
// unknown members surface as errors.
func (s *withdrawalService) Evaluate(ctx context.Context, req dto.EvaluateWithdrawalRequest) (*dto.WithdrawalDecision, error) {
	if req.MemberID == "" {
		return nil, fmt.Errorf("%w: member ID is required", apperrors.ErrValidation)
	}
	if !domain.KnownWithdrawalType(req.WithdrawalType) {
		return rejection(req, domain.ReasonInvalidType,
			fmt.Sprintf("unknown withdrawal type %q", req.WithdrawalType)), nil
	}
	if !req.Amount.IsPositive() {
		return rejection(req, domain.ReasonInvalidAmount,
			"requested amount must be greater than zero"), nil
	}

	member, err := s.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if !member.CanWithdraw() {
		return rejection(req, domain.ReasonLoanOutstanding,
			fmt.Sprintf("outstanding loan balance of %s must be repaid before withdrawing", member.LoanBalance.String())), nil
	}

	investments, err := s.investmentRepo.FindActiveInvestmentsByMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if len(investments) == 0 {
		return rejection(req, domain.ReasonNoActiveInvestments,
			"member has no active investments"), nil
	}

	var totalPrincipal, totalCurrent, totalProfit decimal.Decimal
	for _, inv := range investments {
		totalPrincipal = totalPrincipal.Add(inv.Principal)
		totalCurrent = totalCurrent.Add(inv.CurrentValue)
		totalProfit = totalProfit.Add(inv.AccruedProfit())
	}

	if req.Amount.GreaterThan(totalCurrent) {
		decision := rejection(req, domain.ReasonInsufficientBalance,
			fmt.Sprintf("requested %s exceeds available balance %s", req.Amount.String(), totalCurrent.String()))
		decision.AvailableBalance = totalCurrent
		return decision, nil
	}

	maxAmount := maxForType(req.WithdrawalType, totalPrincipal, totalCurrent, totalProfit)
	if req.Amount.GreaterThan(maxAmount) {
		decision := rejection(req, domain.ReasonAmountExceedsLimit,
			fmt.Sprintf("requested %s exceeds the %s limit of %s", req.Amount.String(), req.WithdrawalType, maxAmount.String()))
		decision.MaxAmount = maxAmount
		decision.AvailableBalance = totalCurrent
		return decision, nil
	}

	now := s.clk.Now()
	var locked []domain.Investment
	for _, inv := range investments {
		if inv.WithinLockIn(now, s.sched.LockInMonths) {
			locked = append(locked, inv)
		}
	}

	decision := &dto.WithdrawalDecision{
		Approved:         true,
		Reason:           domain.ReasonApproved,
		Message:          "withdrawal approved",
		RequestedAmount:  req.Amount,
		MaxAmount:        maxAmount,
		AvailableBalance: totalCurrent,
		PenaltyAmount:    decimal.Zero,
		NetAmount:        req.Amount,
	}

	if len(locked) == 0 {
		return decision, nil
	}

	if req.WithdrawalType != domain.WithdrawalEmergency {
		earliest := locked[0].LockInEnd(s.sched.LockInMonths)
		for _, inv := range locked[1:] {
			if end := inv.LockInEnd(s.sched.LockInMonths); end.Before(earliest) {
				earliest = end
			}
		}
		rejected := rejection(req, domain.ReasonLockInPeriodViolation,
			fmt.Sprintf("investments are locked until %s; use an emergency withdrawal to exit early", earliest.Format("2006-01-02")))
		rejected.MaxAmount = maxAmount
		rejected.AvailableBalance = totalCurrent
		rejected.EarliestWithdrawalDate = &earliest
		return rejected, nil
	}

	// Emergency withdrawals proceed inside the lock-in with penalties and
	// operator approval.
	var tier *domain.InvestmentTier
	if member.CurrentTierID != nil {
		tier, err = s.memberRepo.FindTierByID(ctx, *member.CurrentTierID)
		if err != nil {
			return nil, err
		}
	}

	totalPenalty := decimal.Zero
	for _, inv := range locked {
		breakdown := penalty.Calculate(inv, tier, now, s.sched)
		totalPenalty = totalPenalty.Add(breakdown.TotalPenalty)
		decision.PenaltyBreakdowns = append(decision.PenaltyBreakdowns, breakdown)
	}

	net := req.Amount.Sub(totalPenalty)
	if net.IsNegative() {
		net = decimal.Zero
	}

	decision.PenaltyAmount = totalPenalty
	decision.NetAmount = net
	decision.RequiresApproval = true
	decision.Message = fmt.Sprintf("emergency withdrawal approved with penalty %s; requires operator approval", totalPenalty.String())
	return decision, nil
}

func maxForType(t domain.WithdrawalType, totalPrincipal, totalCurrent, totalProfit decimal.Decimal) decimal.Decimal {
	switch t {
	case domain.WithdrawalPartial:
		return totalProfit.Div(decimal.NewFromInt(2))
	case domain.WithdrawalProfitsOnly:
		return totalProfit
	case domain.WithdrawalCapital:
		return totalPrincipal
	default: // full, emergency
		return totalCurrent
	}
}

// CreateRequest evaluates and, if the decision allows, persists a
// WithdrawalRequest. Rejected decisions come back without persistence.
func (s *withdrawalService) CreateRequest(ctx context.Context, req dto.EvaluateWithdrawalRequest, requestedBy string) (*domain.WithdrawalRequest, *dto.WithdrawalDecision, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	decision, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Approved {
		return nil, decision, nil
	}

	status := domain.WithdrawalPending
	if decision.RequiresApproval {
		status = domain.WithdrawalPendingApproval
	}

	now := s.clk.Now()
	request := domain.WithdrawalRequest{
		RequestID:        uuid.NewString(),
		MemberID:         req.MemberID,
		WithdrawalType:   req.WithdrawalType,
		RequestedAmount:  req.Amount,
		PenaltyAmount:    decision.PenaltyAmount,
		NetAmount:        decision.NetAmount,
		RequiresApproval: decision.RequiresApproval,
		Status:           status,
		Reason:           decision.Reason,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: requestedBy,
		},
	}

	if err := s.withdrawalRepo.SaveWithdrawalRequest(ctx, request); err != nil {
		return nil, nil, err
	}

	logger.Info("withdrawal request created",
		slog.String("request_id", request.RequestID),
		slog.String("member_id", request.MemberID),
		slog.String("type", string(request.WithdrawalType)),
		slog.String("net_amount", request.NetAmount.String()),
		slog.Bool("requires_approval", request.RequiresApproval),
	)
	return &request, decision, nil
}

// CompleteRequest pays out a pending request, notifies the investment
// collaborator and triggers the commission clawback. The clawback runs
// after the payout and its failure does not revert the withdrawal; it is
// reported in the completion for out-of-band retry.
func (s *withdrawalService) CompleteRequest(ctx context.Context, requestID string, completedBy string) (*dto.WithdrawalCompletion, error) {
	logger := ctxlog.GetLoggerFromCtx(ctx)

	request, err := s.withdrawalRepo.FindWithdrawalRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, fmt.Errorf("%w: withdrawal request %s is already %s", apperrors.ErrConflict, requestID, request.Status)
	}

	if request.NetAmount.IsPositive() {
		_, err = s.ledgerSvc.ProcessPayment(ctx, dto.PaymentRequest{
			MemberID:        request.MemberID,
			Amount:          request.NetAmount,
			TransactionType: domain.TxnWithdrawal,
			Notes:           "withdrawal payout for request " + request.RequestID,
			RecordedBy:      completedBy,
		})
		if err != nil {
			return nil, err
		}
	}

	now := s.clk.Now()
	if err := s.withdrawalRepo.UpdateWithdrawalRequestStatus(ctx, requestID, domain.WithdrawalCompleted, &now, completedBy, now); err != nil {
		return nil, err
	}
	request.Status = domain.WithdrawalCompleted
	request.CompletedAt = &now
	request.LastUpdatedAt = now
	request.LastUpdatedBy = completedBy

	if err := s.investmentSvc.ApplyWithdrawal(ctx, request.MemberID, request.RequestedAmount, request.WithdrawalType, completedBy); err != nil {
		logger.Error("failed to apply withdrawal to investments",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
	}

	completion := &dto.WithdrawalCompletion{Request: request}

	clawback, err := s.clawbackSvc.Clawback(ctx, request.MemberID, request.RequestID, request.RequestedAmount)
	if err != nil {
		logger.Error("commission clawback failed after withdrawal",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		completion.ClawbackError = err.Error()
		return completion, nil
	}
	completion.Clawback = clawback

	logger.Info("withdrawal request completed",
		slog.String("request_id", requestID),
		slog.String("member_id", request.MemberID),
		slog.String("net_amount", request.NetAmount.String()),
	)
	return completion, nil
}

// RejectRequest transitions a non-terminal request to REJECTED.
func (s *withdrawalService) RejectRequest(ctx context.Context, requestID string, rejectedBy string) error {
	return s.transition(ctx, requestID, domain.WithdrawalRejected, rejectedBy)
}

// CancelRequest transitions a non-terminal request to CANCELLED.
func (s *withdrawalService) CancelRequest(ctx context.Context, requestID string, cancelledBy string) error {
	return s.transition(ctx, requestID, domain.WithdrawalCancelled, cancelledBy)
}

func (s *withdrawalService) transition(ctx context.Context, requestID string, status domain.WithdrawalStatus, updatedBy string) error {
	request, err := s.withdrawalRepo.FindWithdrawalRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Terminal() {
		return fmt.Errorf("%w: withdrawal request %s is already %s", apperrors.ErrConflict, requestID, request.Status)
	}

	var completedAt *time.Time
	return s.withdrawalRepo.UpdateWithdrawalRequestStatus(ctx, requestID, status, completedAt, updatedBy, s.clk.Now())
}
