package dto

import (
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/ketepool/member_fund_app/internal/utils/penalty"
	"github.com/shopspring/decimal"
)

// EvaluateWithdrawalRequest is the input to a policy evaluation. Bad
// amounts and unknown types are policy outcomes, not validation errors, so
// the evaluator checks them itself and reports them as decisions.
type EvaluateWithdrawalRequest struct {
	MemberID       string                `json:"memberID"`
	Amount         decimal.Decimal       `json:"amount"`
	WithdrawalType domain.WithdrawalType `json:"withdrawalType"`
}

// WithdrawalDecision is the structured outcome of a policy evaluation. A
// rejection is a decision, not an error: Reason and Message are always
// populated so callers can present the outcome to the end user.
type WithdrawalDecision struct {
	Approved               bool                    `json:"approved"`
	Reason                 domain.WithdrawalReason `json:"reason"`
	Message                string                  `json:"message"`
	RequestedAmount        decimal.Decimal         `json:"requestedAmount"`
	MaxAmount              decimal.Decimal         `json:"maxAmount"`
	AvailableBalance       decimal.Decimal         `json:"availableBalance"`
	PenaltyAmount          decimal.Decimal         `json:"penaltyAmount"`
	NetAmount              decimal.Decimal         `json:"netAmount"`
	RequiresApproval       bool                    `json:"requiresApproval"`
	EarliestWithdrawalDate *time.Time              `json:"earliestWithdrawalDate,omitempty"`
	PenaltyBreakdowns      []penalty.Breakdown     `json:"penaltyBreakdowns,omitempty"`
}

// WithdrawalCompletion reports the outcome of completing a request. A
// clawback failure does not revert the withdrawal; it is surfaced here.
type WithdrawalCompletion struct {
	Request       *domain.WithdrawalRequest `json:"request"`
	Clawback      *ClawbackResult           `json:"clawback,omitempty"`
	ClawbackError string                    `json:"clawbackError,omitempty"`
}
