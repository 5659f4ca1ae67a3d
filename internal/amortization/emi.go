// Package amortization computes equated instalments, repayment schedules and
// prepayment effects for fixed-rate amortizing loans.
package amortization

import (
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// ComputeEMI returns the fixed monthly instalment for principal borrowed at
// annualRatePercent over termMonths. A zero rate divides the principal evenly.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	const op = "compute_emi"
	if !principal.IsPositive() {
		return decimal.Zero, domain.InvalidParameter(op, "principal", "principal must be positive, got %s", principal)
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, domain.InvalidParameter(op, "rate", "rate must not be negative, got %s", annualRatePercent)
	}
	if termMonths < 1 {
		return decimal.Zero, domain.InvalidParameter(op, "term_months", "term must be at least one month, got %d", termMonths)
	}
	if termMonths > domain.MaxTermMonths {
		return decimal.Zero, domain.InvalidParameter(op, "term_months", "term must be at most %d months, got %d", domain.MaxTermMonths, termMonths)
	}

	n := decimal.NewFromInt(int64(termMonths))
	if annualRatePercent.IsZero() {
		return principal.Div(n), nil
	}

	r := domain.MonthlyRate(annualRatePercent)
	growth, err := finmath.PowInt(op, domain.One.Add(r), termMonths)
	if err != nil {
		return decimal.Zero, err
	}
	denominator := growth.Sub(domain.One)
	if !denominator.IsPositive() {
		return decimal.Zero, domain.InvalidParameter(op, "rate", "rate %s is too small to amortize over %d months", annualRatePercent, termMonths)
	}
	return principal.Mul(r).Mul(growth).Div(denominator), nil
}

// TotalRepayment returns emi × termMonths and the interest part of it
func TotalRepayment(emi decimal.Decimal, termMonths int, principal decimal.Decimal) (total, interest decimal.Decimal) {
	total = emi.Mul(decimal.NewFromInt(int64(termMonths)))
	return total, total.Sub(principal)
}
