package domain

import (
	"github.com/shopspring/decimal"
)

// Common decimal constants
var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Twelve  = decimal.NewFromInt(12)
	Hundred = decimal.NewFromInt(100)
)

// Output precisions used by the calculators
const (
	CurrencyPlaces     int32 = 2
	PercentPlaces      int32 = 2
	MonthlyRatePlaces  int32 = 3
	MonthsPlaces       int32 = 1
	PeriodicRatePlaces int32 = 6
	SolvedRatePlaces   int32 = 4
)

// RoundCurrency rounds half away from zero to cents
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// PercentToRate converts 8.5 into 0.085
func PercentToRate(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(Hundred)
}

// RateToPercent converts 0.085 into 8.5
func RateToPercent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(Hundred)
}

// MonthlyRate converts an annual percentage into a monthly fraction (8.5 -> 0.0070833...)
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(Hundred).Div(Twelve)
}

// MaxDecimal returns the larger of a and b
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MinDecimal returns the smaller of a and b
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
