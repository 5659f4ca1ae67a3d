package amortization

import (
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// MonthsToPayoff returns how many months an instalment of emi takes to clear
// remainingPrincipal at monthlyRate:
//
//	log(emi / (emi − P·r)) / log(1 + r)
//
// The result is fractional; a zero rate gives P/emi. When emi does not exceed
// the monthly interest the loan never amortizes and UndefinedPayoff is returned.
func MonthsToPayoff(emi, monthlyRate, remainingPrincipal decimal.Decimal) (decimal.Decimal, error) {
	const op = "months_to_payoff"
	if !emi.IsPositive() {
		return decimal.Zero, domain.InvalidParameter(op, "emi", "emi must be positive, got %s", emi)
	}
	if monthlyRate.IsNegative() {
		return decimal.Zero, domain.InvalidParameter(op, "monthly_rate", "rate must not be negative, got %s", monthlyRate)
	}
	if remainingPrincipal.IsNegative() {
		return decimal.Zero, domain.InvalidParameter(op, "remaining_principal", "principal must not be negative, got %s", remainingPrincipal)
	}
	if remainingPrincipal.IsZero() {
		return decimal.Zero, nil
	}
	if monthlyRate.IsZero() {
		return remainingPrincipal.Div(emi), nil
	}

	interest := remainingPrincipal.Mul(monthlyRate)
	if emi.LessThanOrEqual(interest) {
		return decimal.Zero, domain.UndefinedPayoff(op,
			"instalment %s does not cover monthly interest %s", emi.StringFixed(2), interest.StringFixed(2))
	}

	numerator, err := finmath.Log(op, emi.Div(emi.Sub(interest)))
	if err != nil {
		return decimal.Zero, err
	}
	denominator, err := finmath.Log(op, domain.One.Add(monthlyRate))
	if err != nil {
		return decimal.Zero, err
	}
	return numerator.Div(denominator), nil
}
