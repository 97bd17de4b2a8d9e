package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalType selects the withdrawal pricing rules and the type-specific
// maximum amount.
type WithdrawalType string

const (
	WithdrawalFull        WithdrawalType = "full"         // Max: total current value
	WithdrawalPartial     WithdrawalType = "partial"      // Max: 50% of unrealized profit
	WithdrawalProfitsOnly WithdrawalType = "profits_only" // Max: unrealized profit
	WithdrawalCapital     WithdrawalType = "capital"      // Max: invested principal
	WithdrawalEmergency   WithdrawalType = "emergency"    // Max: total current value, penalties apply inside lock-in
)

// KnownWithdrawalType reports whether t is one of the supported types.
func KnownWithdrawalType(t WithdrawalType) bool {
	switch t {
	case WithdrawalFull, WithdrawalPartial, WithdrawalProfitsOnly, WithdrawalCapital, WithdrawalEmergency:
		return true
	}
	return false
}

// WithdrawalStatus is the request state machine. COMPLETED, REJECTED and
// CANCELLED are terminal.
type WithdrawalStatus string

const (
	WithdrawalPending         WithdrawalStatus = "PENDING"
	WithdrawalPendingApproval WithdrawalStatus = "PENDING_APPROVAL"
	WithdrawalCompleted       WithdrawalStatus = "COMPLETED"
	WithdrawalRejected        WithdrawalStatus = "REJECTED"
	WithdrawalCancelled       WithdrawalStatus = "CANCELLED"
)

// WithdrawalReason is the machine-readable outcome of a policy evaluation.
// Rejections are expected, frequent outcomes and are reported as decision
// values, not errors.
type WithdrawalReason string

const (
	ReasonApproved              WithdrawalReason = "approved"
	ReasonInvalidAmount         WithdrawalReason = "invalid_amount"
	ReasonInvalidType           WithdrawalReason = "invalid_withdrawal_type"
	ReasonAmountExceedsLimit    WithdrawalReason = "amount_exceeds_limit"
	ReasonNoActiveInvestments   WithdrawalReason = "no_active_investments"
	ReasonInsufficientBalance   WithdrawalReason = "insufficient_balance"
	ReasonLockInPeriodViolation WithdrawalReason = "lock_in_period_violation"
	ReasonLoanOutstanding       WithdrawalReason = "loan_outstanding"
)

// WithdrawalRequest is a persisted, evaluated withdrawal. NetAmount is
// always RequestedAmount - PenaltyAmount, floored at zero.
type WithdrawalRequest struct {
	RequestID        string           `json:"requestID"` // Primary Key (e.g., UUID)
	MemberID         string           `json:"memberID"`
	WithdrawalType   WithdrawalType   `json:"withdrawalType"`
	RequestedAmount  decimal.Decimal  `json:"requestedAmount"`
	PenaltyAmount    decimal.Decimal  `json:"penaltyAmount"`
	NetAmount        decimal.Decimal  `json:"netAmount"`
	RequiresApproval bool             `json:"requiresApproval"`
	Status           WithdrawalStatus `json:"status"`
	Reason           WithdrawalReason `json:"reason"`
	CompletedAt      *time.Time       `json:"completedAt"`
	AuditFields
}

// Terminal reports whether the request can no longer transition.
func (w WithdrawalRequest) Terminal() bool {
	switch w.Status {
	case WithdrawalCompleted, WithdrawalRejected, WithdrawalCancelled:
		return true
	}
	return false
}
