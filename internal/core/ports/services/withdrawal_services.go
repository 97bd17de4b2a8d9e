package services

import (
	"context"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/dto"
	"github.com/shopspring/decimal"
)

// WithdrawalSvcFacade validates and prices withdrawal requests and drives
// their lifecycle.
type WithdrawalSvcFacade interface {
	// Evaluate produces a decision from current state only; no mutation
	// occurs during evaluation.
	Evaluate(ctx context.Context, req dto.EvaluateWithdrawalRequest) (*dto.WithdrawalDecision, error)

	// CreateRequest evaluates and, if the decision allows, persists a
	// WithdrawalRequest. Rejected decisions are returned without
	// persistence.
	CreateRequest(ctx context.Context, req dto.EvaluateWithdrawalRequest, requestedBy string) (*domain.WithdrawalRequest, *dto.WithdrawalDecision, error)

	// CompleteRequest pays out a pending request and triggers the
	// commission clawback. A clawback failure does not revert the
	// withdrawal.
	CompleteRequest(ctx context.Context, requestID string, completedBy string) (*dto.WithdrawalCompletion, error)

	// RejectRequest transitions a non-terminal request to REJECTED.
	RejectRequest(ctx context.Context, requestID string, rejectedBy string) error

	// CancelRequest transitions a non-terminal request to CANCELLED.
	CancelRequest(ctx context.Context, requestID string, cancelledBy string) error
}

// InvestmentSvcFacade is the external investment-management collaborator.
// The engine triggers status transitions; the collaborator performs them.
type InvestmentSvcFacade interface {
	// ApplyWithdrawal reduces or withdraws the member's investments to
	// reflect a completed withdrawal.
	ApplyWithdrawal(ctx context.Context, memberID string, amount decimal.Decimal, withdrawalType domain.WithdrawalType, appliedBy string) error
}
