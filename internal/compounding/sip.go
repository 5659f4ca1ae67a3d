package compounding

import (
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// SIPResult is the outcome of a systematic investment plan
type SIPResult struct {
	Invested         decimal.Decimal `json:"invested"`
	SIPValue         decimal.Decimal `json:"sipValue"`
	LumpSumValue     decimal.Decimal `json:"lumpSumValue"`
	MaturityValue    decimal.Decimal `json:"maturityValue"`
	EstimatedReturns decimal.Decimal `json:"estimatedReturns"`
}

// SIP values instalments of amount paid at the start of every period of
// freq for years, plus an optional lump sum invested on day one. Both
// compound at annualRatePercent / periods-per-year per period.
func SIP(amount, annualRatePercent, years decimal.Decimal, freq domain.Frequency, lumpSum decimal.Decimal) (*SIPResult, error) {
	const op = "sip"
	perYear, ok := freq.PeriodsPerYear()
	if !ok {
		return nil, domain.InvalidParameter(op, "frequency", "unsupported frequency %q", freq)
	}
	if amount.IsNegative() {
		return nil, domain.InvalidParameter(op, "investment", "instalment must not be negative, got %s", amount)
	}
	if lumpSum.IsNegative() {
		return nil, domain.InvalidParameter(op, "lumpsum", "lump sum must not be negative, got %s", lumpSum)
	}
	if !years.IsPositive() {
		return nil, domain.InvalidParameter(op, "years", "years must be positive, got %s", years)
	}
	if annualRatePercent.IsNegative() {
		return nil, domain.InvalidParameter(op, "rate", "rate must not be negative, got %s", annualRatePercent)
	}

	n := decimal.NewFromInt(int64(perYear))
	periods := n.Mul(years)
	rate := domain.PercentToRate(annualRatePercent).Div(n)

	res := &SIPResult{Invested: amount.Mul(periods).Add(lumpSum)}
	if rate.IsZero() {
		res.SIPValue = amount.Mul(periods)
		res.LumpSumValue = lumpSum
	} else {
		growth, err := finmath.GrowthFactor(op, rate, periods)
		if err != nil {
			return nil, err
		}
		res.SIPValue = amount.Mul(growth.Sub(domain.One)).Div(rate).Mul(domain.One.Add(rate))
		res.LumpSumValue = lumpSum.Mul(growth)
	}
	res.MaturityValue = res.SIPValue.Add(res.LumpSumValue)
	res.EstimatedReturns = res.MaturityValue.Sub(res.Invested)
	return res, nil
}
