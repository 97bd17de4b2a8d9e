package dto

import "github.com/shopspring/decimal"

// EarningsApplication reports how an incoming earnings credit was split
// between loan repayment and the member's net credit.
type EarningsApplication struct {
	MemberID         string          `json:"memberID"`
	Earnings         decimal.Decimal `json:"earnings"`
	Repayment        decimal.Decimal `json:"repayment"`
	NetCredit        decimal.Decimal `json:"netCredit"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}
