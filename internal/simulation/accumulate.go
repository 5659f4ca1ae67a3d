package simulation

import (
	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// Accumulation is the outcome of YearsToTarget
type Accumulation struct {
	Years   int             `json:"years"` // 0 when the target is not reached
	Reached bool            `json:"reached"`
	Balance decimal.Decimal `json:"balance"`
}

// YearsToTarget grows start by annualContribution and annualRatePercent one
// year at a time until the balance reaches target or maxYears pass. With
// TimingStart the contribution is deposited before the year's growth.
func YearsToTarget(start, annualContribution, annualRatePercent, target decimal.Decimal, maxYears int, timing compounding.Timing) (*Accumulation, error) {
	const op = "years_to_target"
	if start.IsNegative() {
		return nil, domain.InvalidParameter(op, "current_savings", "savings must not be negative, got %s", start)
	}
	if annualContribution.IsNegative() {
		return nil, domain.InvalidParameter(op, "annual_contribution", "contribution must not be negative, got %s", annualContribution)
	}
	if maxYears < 1 {
		return nil, domain.InvalidParameter(op, "max_years", "max years must be at least 1, got %d", maxYears)
	}
	growth := domain.One.Add(domain.PercentToRate(annualRatePercent))
	if !growth.IsPositive() {
		return nil, domain.InvalidParameter(op, "rate", "rate must be above -100%%, got %s", annualRatePercent)
	}

	acc := &Accumulation{Balance: start}
	if !target.IsPositive() || start.GreaterThanOrEqual(target) {
		acc.Reached = true
		return acc, nil
	}

	for year := 1; year <= maxYears; year++ {
		if timing != compounding.TimingEnd {
			acc.Balance = acc.Balance.Add(annualContribution)
			acc.Balance = finmath.Work(acc.Balance.Mul(growth))
		} else {
			acc.Balance = finmath.Work(acc.Balance.Mul(growth))
			acc.Balance = acc.Balance.Add(annualContribution)
		}
		if acc.Balance.GreaterThanOrEqual(target) {
			acc.Years = year
			acc.Reached = true
			return acc, nil
		}
	}
	return acc, nil
}
