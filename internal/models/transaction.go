package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType mirrors the ledger entry type column.
type TransactionType string

// TransactionStatus mirrors the settlement state column.
type TransactionStatus string

// Transaction represents one row of the append-only ledger.
type Transaction struct {
	TransactionID   string            `db:"transaction_id"`
	MemberID        string            `db:"member_id"`
	TransactionType TransactionType   `db:"transaction_type"`
	Amount          decimal.Decimal   `db:"amount"` // Signed
	Status          TransactionStatus `db:"status"`
	Reference       string            `db:"reference"`
	Notes           string            `db:"notes"`
	AuditFields
}
