// Package compounding implements lump-sum and periodic-deposit growth.
package compounding

import (
	"strings"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// Timing places a periodic deposit at the start (annuity-due) or end
// (ordinary annuity) of its period
type Timing string

const (
	TimingStart Timing = "start"
	TimingEnd   Timing = "end"
)

// ParseTiming accepts start/begin/due and end/ordinary
func ParseTiming(s string) (Timing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "start", "begin", "beginning", "due":
		return TimingStart, nil
	case "end", "ordinary":
		return TimingEnd, nil
	}
	return "", domain.InvalidParameter("parse_timing", "deposit_at", "unsupported deposit timing %q", s)
}

// FutureValueLumpSum returns principal × (1 + r)^years
func FutureValueLumpSum(principal, annualRatePercent, years decimal.Decimal) (decimal.Decimal, error) {
	return FutureValueCompounded(principal, annualRatePercent, years, 1)
}

// FutureValueCompounded returns principal × (1 + r/m)^(m·years) for m
// compounding periods per year
func FutureValueCompounded(principal, annualRatePercent, years decimal.Decimal, perYear int) (decimal.Decimal, error) {
	const op = "future_value_lump_sum"
	if principal.IsNegative() {
		return decimal.Zero, domain.InvalidParameter(op, "principal", "principal must not be negative, got %s", principal)
	}
	if years.IsNegative() {
		return decimal.Zero, domain.InvalidParameter(op, "years", "years must not be negative, got %s", years)
	}
	if perYear < 1 {
		return decimal.Zero, domain.InvalidParameter(op, "compounding_frequency", "compounding frequency must be at least 1, got %d", perYear)
	}
	m := decimal.NewFromInt(int64(perYear))
	periodic := domain.PercentToRate(annualRatePercent).Div(m)
	if periodic.LessThanOrEqual(domain.One.Neg()) {
		return decimal.Zero, domain.InvalidParameter(op, "rate", "rate must be above -100%%, got %s", annualRatePercent)
	}
	growth, err := finmath.GrowthFactor(op, periodic, years.Mul(m))
	if err != nil {
		return decimal.Zero, err
	}
	return principal.Mul(growth), nil
}

// FutureValueAnnuity returns the value after periods deposits of amount
// growing at periodicRate per period. TimingStart gives the annuity-due
// value, one period of extra growth on every deposit.
func FutureValueAnnuity(amount, periodicRate decimal.Decimal, periods int, timing Timing) (decimal.Decimal, error) {
	const op = "future_value_annuity"
	if periods < 0 {
		return decimal.Zero, domain.InvalidParameter(op, "periods", "periods must not be negative, got %d", periods)
	}
	if periodicRate.LessThanOrEqual(domain.One.Neg()) {
		return decimal.Zero, domain.InvalidParameter(op, "rate", "periodic rate must be above -1, got %s", periodicRate)
	}
	n := decimal.NewFromInt(int64(periods))
	if periodicRate.IsZero() {
		return amount.Mul(n), nil
	}

	growth, err := finmath.PowInt(op, domain.One.Add(periodicRate), periods)
	if err != nil {
		return decimal.Zero, err
	}
	value := amount.Mul(growth.Sub(domain.One)).Div(periodicRate)
	if timing == TimingStart {
		value = value.Mul(domain.One.Add(periodicRate))
	}
	return value, nil
}

// SimpleInterest returns principal × r × years
func SimpleInterest(principal, annualRatePercent, years decimal.Decimal) (decimal.Decimal, error) {
	if principal.IsNegative() {
		return decimal.Zero, domain.InvalidParameter("simple_interest", "principal", "principal must not be negative, got %s", principal)
	}
	if years.IsNegative() {
		return decimal.Zero, domain.InvalidParameter("simple_interest", "years", "term must not be negative, got %s", years)
	}
	return principal.Mul(domain.PercentToRate(annualRatePercent)).Mul(years), nil
}

// CAGR returns the compound annual growth rate (fraction) from start to end over years
func CAGR(start, end, years decimal.Decimal) (decimal.Decimal, error) {
	const op = "cagr"
	if !start.IsPositive() {
		return decimal.Zero, domain.InvalidParameter(op, "start", "start value must be positive, got %s", start)
	}
	if !years.IsPositive() {
		return decimal.Zero, domain.InvalidParameter(op, "years", "years must be positive, got %s", years)
	}
	if end.IsNegative() {
		return decimal.Zero, domain.InvalidParameter(op, "end", "end value must not be negative, got %s", end)
	}
	ratio, err := finmath.Pow(op, end.Div(start), domain.One.Div(years))
	if err != nil {
		return decimal.Zero, err
	}
	return ratio.Sub(domain.One), nil
}

// RealRate converts a nominal rate into a real one using the Fisher
// relation (1+nominal)/(1+inflation) − 1. Both are fractions.
func RealRate(nominal, inflation decimal.Decimal) (decimal.Decimal, error) {
	base := domain.One.Add(inflation)
	if !base.IsPositive() {
		return decimal.Zero, domain.InvalidParameter("real_rate", "inflation", "inflation must be above -100%%, got %s", inflation)
	}
	return domain.One.Add(nominal).Div(base).Sub(domain.One), nil
}

// PresentValueAnnuity returns the value today of periods payments of amount
// discounted at rate, paid at the end of each period
func PresentValueAnnuity(amount, rate decimal.Decimal, periods int) (decimal.Decimal, error) {
	const op = "present_value_annuity"
	if periods < 0 {
		return decimal.Zero, domain.InvalidParameter(op, "periods", "periods must not be negative, got %d", periods)
	}
	if rate.LessThanOrEqual(domain.One.Neg()) {
		return decimal.Zero, domain.InvalidParameter(op, "rate", "rate must be above -1, got %s", rate)
	}
	if rate.IsZero() {
		return amount.Mul(decimal.NewFromInt(int64(periods))), nil
	}
	discount, err := finmath.PowInt(op, domain.One.Add(rate), -periods)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(domain.One.Sub(discount)).Div(rate), nil
}
