package finmath

import (
	"math"
	"testing"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLCM(t *testing.T) {
	assert.Equal(t, 12, LCM(12, 4), "Should take the larger frequency when it divides evenly")
	assert.Equal(t, 12, LCM(4, 6), "Should combine quarterly and bi-monthly")
	assert.Equal(t, 52, LCM(52, 1), "Should handle weekly with yearly")
	assert.Equal(t, 0, LCM(0, 12), "Should return zero for a zero frequency")
}

func TestFromFloat_RejectsNonFinite(t *testing.T) {
	_, err := FromFloat("test", math.NaN())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should classify NaN as invalid parameter")

	_, err = FromFloat("test", math.Inf(1))
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should classify Inf as invalid parameter")
}

func TestPow(t *testing.T) {
	v, err := Pow("test", decimal.NewFromFloat(1.1), decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.True(t, v.Sub(decimal.NewFromFloat(1.21)).Abs().LessThan(decimal.New(1, -12)), "Should square 1.1")

	_, err = Pow("test", decimal.NewFromInt(-8), decimal.NewFromFloat(0.5))
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should reject the square root of a negative number")
}

func TestLog(t *testing.T) {
	v, err := Log("test", decimal.NewFromFloat(math.E))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v.InexactFloat64(), 1e-12, "Should take the natural log")

	_, err = Log("test", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should reject log of zero")
}
