package domain

import "github.com/shopspring/decimal"

// TransactionType tags a ledger entry with the balance-affecting event that
// produced it.
type TransactionType string

const (
	TxnDeposit            TransactionType = "DEPOSIT"
	TxnWithdrawal         TransactionType = "WITHDRAWAL"
	TxnProfitDistribution TransactionType = "PROFIT_DISTRIBUTION"
	TxnQuarterlyBonus     TransactionType = "QUARTERLY_BONUS"
	TxnCommissionClawback TransactionType = "COMMISSION_CLAWBACK"
	TxnLoanIssue          TransactionType = "LOAN_ISSUE"
	TxnLoanRepayment      TransactionType = "LOAN_REPAYMENT"
	TxnPayment            TransactionType = "PAYMENT"
)

// ReferencePrefix returns the prefix used when generating a ledger
// reference for this transaction type.
func (t TransactionType) ReferencePrefix() string {
	switch t {
	case TxnDeposit:
		return "DEP"
	case TxnWithdrawal:
		return "WDR"
	case TxnProfitDistribution:
		return "DIST"
	case TxnQuarterlyBonus:
		return "QBON"
	case TxnCommissionClawback:
		return "CLWB"
	case TxnLoanIssue:
		return "LOAN"
	case TxnLoanRepayment:
		return "REPAY"
	case TxnPayment:
		return "PAY"
	default:
		return "TXN"
	}
}

// TransactionStatus indicates the settlement state of a ledger entry.
type TransactionStatus string

const (
	TxnPending   TransactionStatus = "PENDING"
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnFailed    TransactionStatus = "FAILED"
)

// Transaction is a single append-only ledger entry. The ledger is the sole
// source of truth for a member's balance: consumers sum completed entries.
// Rows are never mutated after insert except for the status transition.
type Transaction struct {
	TransactionID   string            `json:"transactionID"` // Primary Key (e.g., UUID)
	MemberID        string            `json:"memberID"`      // FK -> Member.memberID (Not Null)
	TransactionType TransactionType   `json:"transactionType"`
	Amount          decimal.Decimal   `json:"amount"`    // Signed: credits positive, debits negative
	Status          TransactionStatus `json:"status"`    // PENDING -> COMPLETED/FAILED
	Reference       string            `json:"reference"` // Unique within the dedup window per (member, type)
	Notes           string            `json:"notes"`     // Nullable
	AuditFields
}

// DuplicateGroup describes a set of ledger entries for one member sharing
// (reference, type, amount) with count > 1, found by the repair operation.
type DuplicateGroup struct {
	Reference       string          `json:"reference"`
	TransactionType TransactionType `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Count           int             `json:"count"`
	TransactionIDs  []string        `json:"transactionIDs"` // Ordered earliest first
}
