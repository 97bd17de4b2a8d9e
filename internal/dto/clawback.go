package dto

import (
	"github.com/shopspring/decimal"
)

// ClawbackEntry describes one reversed commission.
type ClawbackEntry struct {
	ClawbackID   string          `json:"clawbackID"`
	CommissionID string          `json:"commissionID"`
	ReferrerID   string          `json:"referrerID"`
	Amount       decimal.Decimal `json:"amount"`
	Percent      decimal.Decimal `json:"percent"`
}

// ClawbackResult is the outcome of one clawback batch. Entries with a zero
// computed amount are skipped and do not appear here.
type ClawbackResult struct {
	Success        bool            `json:"success"`
	WithdrawalID   string          `json:"withdrawalID"`
	TotalClawedBack decimal.Decimal `json:"totalClawedBack"`
	Entries        []ClawbackEntry `json:"entries"`
}
