package amortization

import (
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

// PrepaymentImpact describes a lump-sum prepayment that keeps the EMI and
// shortens the tenure
type PrepaymentImpact struct {
	EMI                          decimal.Decimal `json:"emi"`
	MonthlyRate                  decimal.Decimal `json:"monthlyRate"`
	TermMonths                   int             `json:"termMonths"`
	TotalPaidOriginal            decimal.Decimal `json:"totalPaidOriginal"`
	TotalInterestOriginal        decimal.Decimal `json:"totalInterestOriginal"`
	MonthsAfterPrepayment        decimal.Decimal `json:"monthsAfterPrepayment"`
	TotalPaidAfterPrepayment     decimal.Decimal `json:"totalPaidAfterPrepayment"`
	TotalInterestAfterPrepayment decimal.Decimal `json:"totalInterestAfterPrepayment"`
	InterestSaved                decimal.Decimal `json:"interestSaved"`
}

// AnalyzePrepayment compares repaying the loan as scheduled with paying
// prepayment up front and continuing the same EMI until the rest is cleared.
func AnalyzePrepayment(principal, annualRatePercent decimal.Decimal, termMonths int, prepayment decimal.Decimal) (*PrepaymentImpact, error) {
	const op = "analyze_prepayment"
	if prepayment.IsNegative() {
		return nil, domain.InvalidParameter(op, "prepayment", "prepayment must not be negative, got %s", prepayment)
	}
	if prepayment.GreaterThan(principal) {
		return nil, domain.InvalidParameter(op, "prepayment", "prepayment %s exceeds the loan %s", prepayment, principal)
	}

	emi, err := ComputeEMI(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}
	r := domain.MonthlyRate(annualRatePercent)
	totalOriginal, interestOriginal := TotalRepayment(emi, termMonths, principal)

	months, err := MonthsToPayoff(emi, r, principal.Sub(prepayment))
	if err != nil {
		return nil, err
	}
	totalAfter := emi.Mul(months).Add(prepayment)
	interestAfter := totalAfter.Sub(principal)

	return &PrepaymentImpact{
		EMI:                          emi,
		MonthlyRate:                  r,
		TermMonths:                   termMonths,
		TotalPaidOriginal:            totalOriginal,
		TotalInterestOriginal:        interestOriginal,
		MonthsAfterPrepayment:        months,
		TotalPaidAfterPrepayment:     totalAfter,
		TotalInterestAfterPrepayment: interestAfter,
		InterestSaved:                interestOriginal.Sub(interestAfter),
	}, nil
}
