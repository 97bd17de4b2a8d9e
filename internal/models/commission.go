package models

import (
	"github.com/shopspring/decimal"
)

// ReferralCommission represents a commission row owned by the external
// accrual subsystem. This engine reads it and accumulates clawed_back.
type ReferralCommission struct {
	CommissionID string          `db:"commission_id"`
	ReferrerID   string          `db:"referrer_id"`
	MemberID     string          `db:"member_id"`
	InvestmentID string          `db:"investment_id"`
	Amount       decimal.Decimal `db:"amount"`
	ClawedBack   decimal.Decimal `db:"clawed_back"`
	Status       string          `db:"status"`
	AuditFields
}

// CommissionClawback represents one applied clawback row. The
// (commission_id, withdrawal_id) pair is unique.
type CommissionClawback struct {
	ClawbackID   string          `db:"clawback_id"`
	CommissionID string          `db:"commission_id"`
	WithdrawalID string          `db:"withdrawal_id"`
	ReferrerID   string          `db:"referrer_id"`
	MemberID     string          `db:"member_id"`
	Amount       decimal.Decimal `db:"amount"`
	Percent      decimal.Decimal `db:"percent"`
	Status       string          `db:"status"`
	AuditFields
}
