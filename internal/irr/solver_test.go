package irr

import (
	"context"
	"testing"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flows(amounts ...float64) []CashFlow {
	out := make([]CashFlow, len(amounts))
	for i, a := range amounts {
		out[i] = CashFlow{Period: i, Amount: decimal.NewFromFloat(a)}
	}
	return out
}

func TestSolve_SimpleInvestment(t *testing.T) {
	res, err := NewDefaultSolver().Solve(context.Background(), flows(-100, 110))

	require.NoError(t, err)
	assert.InDelta(t, 0.10, res.Rate.InexactFloat64(), 1e-7, "Should find a 10% return")
	assert.Equal(t, MethodNewton, res.Method)
}

func TestSolve_LoanLikeFlows(t *testing.T) {
	// 1000 borrowed, 12 payments of 88.85 is about 1% per month
	amounts := []float64{1000}
	for i := 0; i < 12; i++ {
		amounts = append(amounts, -88.85)
	}

	res, err := SolveIRR(flows(amounts...), 0.1)

	require.NoError(t, err)
	assert.InDelta(t, 0.01, res.Rate.InexactFloat64(), 1e-4)
}

func TestSolve_NPVIsZeroAtRoot(t *testing.T) {
	cf := flows(-5000, 1200, 1500, 1800, 2100)

	res, err := NewDefaultSolver().Solve(context.Background(), cf)
	require.NoError(t, err)

	v, err := NPV(res.Rate, cf)
	require.NoError(t, err)
	assert.InDelta(t, 0, v.InexactFloat64(), 1e-6, "Should satisfy NPV(r) = 0")
}

func TestSolve_NoSignChange(t *testing.T) {
	_, err := NewDefaultSolver().Solve(context.Background(), flows(100, 200, 300))
	assert.ErrorIs(t, err, domain.ErrIRRNotFound, "Should refuse flows without a sign change")

	_, err = NewDefaultSolver().Solve(context.Background(), flows(-100, 0, -5))
	assert.ErrorIs(t, err, domain.ErrIRRNotFound)
}

func TestSolve_InvalidInput(t *testing.T) {
	_, err := NewDefaultSolver().Solve(context.Background(), flows(-100))
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should require two flows")

	_, err = NewDefaultSolver().Solve(context.Background(), []CashFlow{
		{Period: -1, Amount: decimal.NewFromInt(-100)},
		{Period: 1, Amount: decimal.NewFromInt(110)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should reject negative periods")
}

func TestSolve_FallsBackToBisection(t *testing.T) {
	// From far above the root the first Newton step lands below -1
	solver := NewSolver(Options{InitialGuess: 10})

	res, err := solver.Solve(context.Background(), flows(-100, 300))

	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Rate.InexactFloat64(), 1e-6, "Should still converge")
	assert.Equal(t, MethodBisection, res.Method, "Should finish with bisection")
}

func TestSolve_ExpandsBracket(t *testing.T) {
	solver := NewSolver(Options{InitialGuess: 50})

	res, err := solver.Solve(context.Background(), flows(-1, 20))

	require.NoError(t, err)
	assert.Equal(t, MethodBisection, res.Method)
	assert.InDelta(t, 19.0, res.Rate.InexactFloat64(), 1e-5, "Should double the upper bound until NPV changes sign")
}

func TestSolve_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultSolver().Solve(ctx, flows(-100, 110))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSolver_Defaults(t *testing.T) {
	s := NewSolver(Options{})

	assert.Equal(t, DefaultOptions().Tolerance, s.Options.Tolerance)
	assert.Equal(t, DefaultOptions().MaxIterations, s.Options.MaxIterations)
	assert.Equal(t, DefaultOptions().BracketHigh, s.Options.BracketHigh)
}

func TestNPV(t *testing.T) {
	v, err := NPV(decimal.NewFromFloat(0.1), flows(-100, 110))
	require.NoError(t, err)
	assert.InDelta(t, 0, v.InexactFloat64(), 1e-9)

	_, err = NPV(decimal.NewFromInt(-1), flows(-100, 110))
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestAnnualize(t *testing.T) {
	a, err := Annualize(decimal.NewFromFloat(0.01), 12)
	require.NoError(t, err)
	assert.InDelta(t, 0.126825, a.InexactFloat64(), 1e-6)

	_, err = Annualize(decimal.NewFromFloat(0.01), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}
