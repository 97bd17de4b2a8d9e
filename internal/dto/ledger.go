package dto

import (
	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordTransactionRequest posts a single credit or debit to the ledger.
// Amount is always positive; the guard applies the sign. Reference is
// optional and generated as {type-prefix}-{timestamp}-{random} when empty.
type RecordTransactionRequest struct {
	MemberID        string                 `json:"memberID" validate:"required"`
	TransactionType domain.TransactionType `json:"transactionType" validate:"required"`
	Amount          decimal.Decimal        `json:"amount" validate:"required"`
	Reference       string                 `json:"reference"`
	Notes           string                 `json:"notes"`
	RecordedBy      string                 `json:"recordedBy" validate:"required"`
}

// PaymentRequest debits a member after an atomic balance check.
// TransactionType defaults to PAYMENT when empty; withdrawal payouts pass
// WITHDRAWAL so the ledger records the originating event.
type PaymentRequest struct {
	MemberID        string                 `json:"memberID" validate:"required"`
	Amount          decimal.Decimal        `json:"amount" validate:"required"`
	TransactionType domain.TransactionType `json:"transactionType"`
	Reference       string                 `json:"reference"`
	Notes           string                 `json:"notes"`
	RecordedBy      string                 `json:"recordedBy" validate:"required"`
}

// BalanceCheck reports a member's completed-transaction balance against a
// requested amount.
type BalanceCheck struct {
	MemberID   string          `json:"memberID"`
	Balance    decimal.Decimal `json:"balance"`
	Requested  decimal.Decimal `json:"requested"`
	Sufficient bool            `json:"sufficient"`
}
