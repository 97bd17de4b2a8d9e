package penalty

import (
	"time"

	"github.com/ketepool/member_fund_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Reason explains why a penalty resolved the way it did. Zero-penalty
// outcomes always carry an explicit reason so unrecognized states are
// observable rather than silently absorbed.
type Reason string

const (
	ReasonWithinLockIn       Reason = "within_lock_in"
	ReasonOutsideLockIn      Reason = "outside_lock_in"
	ReasonInvestmentInactive Reason = "investment_inactive"
	ReasonNoPrincipal        Reason = "no_principal"
	ReasonUnknownBand        Reason = "unknown_penalty_band"
)

// Band is one discrete penalty tier keyed by whole months remaining in the
// lock-in period. ProfitPercent is charged against accrued profit,
// CapitalPercent against principal.
type Band struct {
	MinMonthsExclusive int
	MaxMonthsInclusive int
	ProfitPercent      decimal.Decimal
	CapitalPercent     decimal.Decimal
}

// Schedule is the full penalty band table plus the lock-in duration.
type Schedule struct {
	LockInMonths int
	Bands        []Band
}

// DefaultSchedule returns the standard 12-month schedule: the earlier the
// withdrawal, the harsher the split.
func DefaultSchedule() Schedule {
	return Schedule{
		LockInMonths: 12,
		Bands: []Band{
			{MinMonthsExclusive: 9, MaxMonthsInclusive: 12, ProfitPercent: decimal.NewFromInt(100), CapitalPercent: decimal.NewFromInt(10)},
			{MinMonthsExclusive: 6, MaxMonthsInclusive: 9, ProfitPercent: decimal.NewFromInt(75), CapitalPercent: decimal.NewFromInt(5)},
			{MinMonthsExclusive: 3, MaxMonthsInclusive: 6, ProfitPercent: decimal.NewFromInt(50), CapitalPercent: decimal.NewFromInt(2)},
			{MinMonthsExclusive: 0, MaxMonthsInclusive: 3, ProfitPercent: decimal.NewFromInt(25), CapitalPercent: decimal.Zero},
		},
	}
}

// Breakdown is the per-investment penalty result.
type Breakdown struct {
	InvestmentID    string
	MonthsRemaining int
	ProfitPenalty   decimal.Decimal
	CapitalPenalty  decimal.Decimal
	TotalPenalty    decimal.Decimal // After any tier reduction
	Reduction       decimal.Decimal // Amount removed by the tier reduction factor
	Reason          Reason
}

var oneHundred = decimal.NewFromInt(100)

// MonthsRemaining returns the whole months left in the lock-in period at
// the given instant, rounded up. Zero or negative means the lock-in has
// expired.
func MonthsRemaining(inv domain.Investment, at time.Time, lockInMonths int) int {
	end := inv.LockInEnd(lockInMonths)
	if !at.Before(end) {
		return 0
	}
	months := 0
	cursor := at
	for cursor.Before(end) {
		cursor = cursor.AddDate(0, 1, 0)
		months++
	}
	return months
}

func zeroBreakdown(inv domain.Investment, months int, reason Reason) Breakdown {
	return Breakdown{
		InvestmentID:    inv.InvestmentID,
		MonthsRemaining: months,
		ProfitPenalty:   decimal.Zero,
		CapitalPenalty:  decimal.Zero,
		TotalPenalty:    decimal.Zero,
		Reduction:       decimal.Zero,
		Reason:          reason,
	}
}

// Calculate prices the early-withdrawal penalty for one investment at the
// given instant. tier may be nil when the member holds no tier; the
// reduction factor then defaults to zero. Calculate never fails:
// unrecognized states resolve to a zero penalty with an explanatory reason.
func Calculate(inv domain.Investment, tier *domain.InvestmentTier, at time.Time, sched Schedule) Breakdown {
	if inv.Status != domain.InvestmentActive {
		return zeroBreakdown(inv, 0, ReasonInvestmentInactive)
	}
	if !inv.Principal.IsPositive() {
		return zeroBreakdown(inv, 0, ReasonNoPrincipal)
	}

	months := MonthsRemaining(inv, at, sched.LockInMonths)
	if months <= 0 {
		return zeroBreakdown(inv, 0, ReasonOutsideLockIn)
	}

	var band *Band
	for i := range sched.Bands {
		b := &sched.Bands[i]
		if months > b.MinMonthsExclusive && months <= b.MaxMonthsInclusive {
			band = b
			break
		}
	}
	if band == nil {
		return zeroBreakdown(inv, months, ReasonUnknownBand)
	}

	profitPenalty := inv.AccruedProfit().Mul(band.ProfitPercent).Div(oneHundred)
	if profitPenalty.GreaterThan(inv.AccruedProfit()) {
		profitPenalty = inv.AccruedProfit()
	}

	capitalPenalty := inv.Principal.Mul(band.CapitalPercent).Div(oneHundred)
	if capitalPenalty.GreaterThan(inv.CurrentValue) {
		capitalPenalty = inv.CurrentValue
	}
	if capitalPenalty.IsNegative() {
		capitalPenalty = decimal.Zero
	}

	total := profitPenalty.Add(capitalPenalty)

	reduction := decimal.Zero
	if tier != nil && tier.PenaltyReductionPercent.IsPositive() {
		factor := tier.PenaltyReductionPercent
		if factor.GreaterThan(oneHundred) {
			factor = oneHundred
		}
		reduction = total.Mul(factor).Div(oneHundred)
		total = total.Sub(reduction)
	}

	return Breakdown{
		InvestmentID:    inv.InvestmentID,
		MonthsRemaining: months,
		ProfitPenalty:   profitPenalty,
		CapitalPenalty:  capitalPenalty,
		TotalPenalty:    total,
		Reduction:       reduction,
		Reason:          ReasonWithinLockIn,
	}
}
