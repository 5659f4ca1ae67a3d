// Package finmath holds the small numeric helpers shared by the engines.
//
// Balances and cash amounts are carried as decimals. Fractional powers and
// logarithms go through float64 and are checked for NaN and Inf before they
// are converted back, so a non-finite value never reaches a result.
package finmath

import (
	"math"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

// WorkingPlaces bounds the precision of intermediate balances. Decimal
// multiplication is exact, so repeated growth steps would otherwise carry an
// ever-growing number of digits.
const WorkingPlaces int32 = 12

// Dust is the balance below which an amortizing balance counts as settled.
var Dust = decimal.New(1, -4)

// Work rounds an intermediate value to WorkingPlaces
func Work(d decimal.Decimal) decimal.Decimal {
	return d.Round(WorkingPlaces)
}

// FromFloat converts f into a decimal, rejecting NaN and Inf
func FromFloat(op string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, domain.InvalidParameter(op, "", "computation produced a non-finite value")
	}
	return decimal.NewFromFloat(f), nil
}

// Pow returns base^exp
func Pow(op string, base, exp decimal.Decimal) (decimal.Decimal, error) {
	return FromFloat(op, math.Pow(base.InexactFloat64(), exp.InexactFloat64()))
}

// PowInt returns base^n for an integer exponent
func PowInt(op string, base decimal.Decimal, n int) (decimal.Decimal, error) {
	return FromFloat(op, math.Pow(base.InexactFloat64(), float64(n)))
}

// GrowthFactor returns (1+rate)^periods
func GrowthFactor(op string, rate, periods decimal.Decimal) (decimal.Decimal, error) {
	return Pow(op, domain.One.Add(rate), periods)
}

// Log returns the natural logarithm of x; x must be positive
func Log(op string, x decimal.Decimal) (decimal.Decimal, error) {
	if !x.IsPositive() {
		return decimal.Zero, domain.InvalidParameter(op, "", "logarithm of non-positive value %s", x.String())
	}
	return FromFloat(op, math.Log(x.InexactFloat64()))
}

// GCD returns the greatest common divisor of two positive integers
func GCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// LCM returns the least common multiple of two positive integers
func LCM(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

// IsFinite reports whether f is neither NaN nor infinite
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
