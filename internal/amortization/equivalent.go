package amortization

import (
	"math"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

const (
	solverTolerance = 1e-12
	solverMaxIter   = 200
)

// LoanToDepositRate returns the annual deposit rate (percent) that grows one
// unit into the total a borrower repays on a unit loan at loanRatePercent
// over years: (total)^(1/years) − 1.
func LoanToDepositRate(loanRatePercent decimal.Decimal, years int) (decimal.Decimal, error) {
	const op = "loan_to_deposit_rate"
	if years < 1 {
		return decimal.Zero, domain.InvalidParameter(op, "years", "years must be at least 1, got %d", years)
	}
	emi, err := ComputeEMI(domain.One, loanRatePercent, years*12)
	if err != nil {
		return decimal.Zero, err
	}
	total, _ := TotalRepayment(emi, years*12, domain.One)
	growth, err := finmath.Pow(op, total, domain.One.Div(decimal.NewFromInt(int64(years))))
	if err != nil {
		return decimal.Zero, err
	}
	return domain.RateToPercent(growth.Sub(domain.One)), nil
}

// DepositToLoanRate returns the annual loan rate (percent, monthly
// compounding) at which repaying a unit loan over years costs exactly what a
// unit deposit grows to at depositRatePercent. The monthly rate is found by
// bisection; total repayment is increasing in the rate.
func DepositToLoanRate(depositRatePercent decimal.Decimal, years int) (decimal.Decimal, error) {
	const op = "deposit_to_loan_rate"
	if years < 1 {
		return decimal.Zero, domain.InvalidParameter(op, "years", "years must be at least 1, got %d", years)
	}
	if depositRatePercent.IsNegative() {
		return decimal.Zero, domain.InvalidParameter(op, "rate", "rate must not be negative, got %s", depositRatePercent)
	}
	if depositRatePercent.IsZero() {
		return decimal.Zero, nil
	}

	n := float64(years * 12)
	target := math.Pow(1+depositRatePercent.InexactFloat64()/100, float64(years))
	totalPaid := func(m float64) float64 {
		if m == 0 {
			return 1
		}
		g := math.Pow(1+m, n)
		return n * m * g / (g - 1)
	}

	lo, hi := 0.0, 1.0
	for totalPaid(hi) < target {
		hi *= 2
		if hi > 1e6 {
			return decimal.Zero, domain.InvalidParameter(op, "rate", "no loan rate matches deposit rate %s", depositRatePercent)
		}
	}
	mid := (lo + hi) / 2
	for i := 0; i < solverMaxIter && hi-lo > solverTolerance; i++ {
		mid = (lo + hi) / 2
		if totalPaid(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return finmath.FromFloat(op, mid*12*100)
}

// BreakEvenResult is the return a corpus needs to fund a loan's EMI
type BreakEvenResult struct {
	EMI decimal.Decimal `json:"emi"`
	// AnnualRate is a fraction (0.0834 for 8.34%)
	AnnualRate decimal.Decimal `json:"annualRate"`
	// Bracketed is false when no root was found; AnnualRate then holds the loan rate
	Bracketed  bool `json:"bracketed"`
	Iterations int  `json:"iterations"`
}

// BreakEvenWithdrawalReturn finds the annual return R at which a corpus equal
// to principal, paying out the loan's EMI every month with interest at R/12
// on the running balance credited once a year, is exactly used up after
// years. Bisection over [0, high], doubling high up to 60 times.
func BreakEvenWithdrawalReturn(principal, loanRatePercent decimal.Decimal, years int) (*BreakEvenResult, error) {
	const op = "break_even_withdrawal_return"
	if years < 1 {
		return nil, domain.InvalidParameter(op, "tenure_years", "tenure must be at least 1 year, got %d", years)
	}
	if !loanRatePercent.IsPositive() {
		return nil, domain.InvalidParameter(op, "loan_rate", "loan rate must be positive, got %s", loanRatePercent)
	}
	emi, err := ComputeEMI(principal, loanRatePercent, years*12)
	if err != nil {
		return nil, err
	}

	p := principal.InexactFloat64()
	e := emi.InexactFloat64()
	finalBalance := func(annual float64) float64 {
		bal := p
		for y := 0; y < years; y++ {
			interest := 0.0
			for m := 0; m < 12; m++ {
				bal -= e
				interest += bal * annual / 12
			}
			bal += interest
		}
		return bal
	}

	result := &BreakEvenResult{EMI: emi}
	lo, hi := 0.0, 1.0
	fLo, fHi := finalBalance(lo), finalBalance(hi)
	for i := 0; fLo*fHi > 0 && i < 60; i++ {
		hi *= 2
		fHi = finalBalance(hi)
	}
	if fLo*fHi > 0 || !finmath.IsFinite(fHi) {
		result.AnnualRate = domain.MonthlyRate(loanRatePercent).Mul(domain.Twelve)
		return result, nil
	}

	mid := 0.0
	for result.Iterations < solverMaxIter {
		result.Iterations++
		mid = (lo + hi) / 2
		fMid := finalBalance(mid)
		if math.Abs(fMid) < 1e-9 {
			break
		}
		if fLo*fMid <= 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
		if hi-lo < solverTolerance {
			break
		}
	}
	rate, err := finmath.FromFloat(op, mid)
	if err != nil {
		return nil, err
	}
	result.AnnualRate = rate
	result.Bracketed = true
	return result, nil
}
