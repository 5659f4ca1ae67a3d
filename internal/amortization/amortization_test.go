package amortization

import (
	"testing"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestComputeEMI_StandardLoan(t *testing.T) {
	emi, err := ComputeEMI(d(1000000), d(8.5), 240)

	require.NoError(t, err)
	assert.Equal(t, "8678.23", emi.StringFixed(2), "Should match the standard amortized payment")
}

func TestComputeEMI_ZeroRate(t *testing.T) {
	principal := d(120000)

	emi, err := ComputeEMI(principal, decimal.Zero, 12)

	require.NoError(t, err)
	assert.True(t, emi.Equal(principal.Div(decimal.NewFromInt(12))), "Should divide the principal evenly")
	assert.Equal(t, "10000", emi.String())
}

func TestComputeEMI_InvalidInputs(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		months    int
		param     string
	}{
		{"zero principal", decimal.Zero, d(8), 12, "principal"},
		{"negative rate", d(1000), d(-1), 12, "rate"},
		{"zero term", d(1000), d(8), 0, "term_months"},
		{"term past the cap", d(1000), d(8), domain.MaxTermMonths + 1, "term_months"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeEMI(tt.principal, tt.rate, tt.months)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidParameter)
			assert.Equal(t, tt.param, domain.ParameterOf(err))
		})
	}
}

func TestBuildSchedule_RejectsOversizedTerm(t *testing.T) {
	_, err := BuildSchedule(d(100000), d(8), 1<<40, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should refuse before allocating rows")

	s, err := BuildSchedule(d(100000), d(8), domain.MaxTermMonths, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxTermMonths, s.Months())
}

func assertScheduleSettles(t *testing.T, s *Schedule) {
	t.Helper()
	require.NotEmpty(t, s.Rows)

	last := s.Rows[len(s.Rows)-1]
	assert.True(t, last.Balance.IsZero(), "Should end with an exactly zero balance, got %s", last.Balance)

	sum := decimal.Zero
	prev := s.Principal
	for _, row := range s.Rows {
		sum = sum.Add(row.Principal)
		assert.True(t, row.Balance.LessThanOrEqual(prev), "Should never increase the balance (period %d)", row.Period)
		assert.False(t, row.Balance.IsNegative(), "Should never go negative (period %d)", row.Period)
		prev = row.Balance
	}
	assert.True(t, sum.Equal(s.Principal), "Should repay exactly the principal, got %s", sum)
}

func TestBuildSchedule_Properties(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		months    int
		extra     float64
	}{
		{1000000, 8.5, 240, 0},
		{500000, 9, 60, 0},
		{1000, 0, 3, 0},
		{250000, 12, 36, 0},
		{300000, 7.25, 120, 5000},
		{100, 18, 1, 0},
	}

	for _, c := range cases {
		s, err := BuildSchedule(d(c.principal), d(c.rate), c.months, d(c.extra))
		require.NoError(t, err)
		assertScheduleSettles(t, s)
		assert.LessOrEqual(t, s.Months(), c.months, "Should not exceed the term")
	}
}

func TestBuildSchedule_ExtraPaymentShortensTerm(t *testing.T) {
	base, err := BuildSchedule(d(300000), d(9), 120, decimal.Zero)
	require.NoError(t, err)
	withExtra, err := BuildSchedule(d(300000), d(9), 120, d(5000))
	require.NoError(t, err)

	assert.Equal(t, 120, base.Months(), "Should run the full term without extra payments")
	assert.Less(t, withExtra.Months(), base.Months(), "Should finish early with extra payments")
	assert.True(t, withExtra.TotalInterest.LessThan(base.TotalInterest), "Should save interest")
}

func TestBuildSchedule_TotalsConsistent(t *testing.T) {
	s, err := BuildSchedule(d(500000), d(9), 60, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, s.TotalPaid.Sub(s.TotalInterest).Equal(s.Principal), "Should satisfy paid = principal + interest")
	assert.Equal(t, s.EMI.StringFixed(2), s.Rows[0].Payment.StringFixed(2), "Should pay the EMI each period")
}

func TestBuildSchedule_RejectsNegativeExtra(t *testing.T) {
	_, err := BuildSchedule(d(1000), d(5), 12, d(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestMonthsToPayoff(t *testing.T) {
	emi, err := ComputeEMI(d(100000), d(12), 12)
	require.NoError(t, err)

	months, err := MonthsToPayoff(emi, domain.MonthlyRate(d(12)), d(100000))

	require.NoError(t, err)
	assert.InDelta(t, 12.0, months.InexactFloat64(), 1e-6, "Should invert the EMI formula")
}

func TestMonthsToPayoff_UndefinedAtInterestOnly(t *testing.T) {
	principal := d(100000)
	r := d(0.01)
	emi := principal.Mul(r)

	_, err := MonthsToPayoff(emi, r, principal)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUndefinedPayoff, "Should signal an infinite payoff")
}

func TestMonthsToPayoff_ZeroRateAndZeroBalance(t *testing.T) {
	months, err := MonthsToPayoff(d(1000), decimal.Zero, d(12000))
	require.NoError(t, err)
	assert.True(t, months.Equal(decimal.NewFromInt(12)))

	months, err = MonthsToPayoff(d(1000), d(0.01), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, months.IsZero())
}

func TestAnalyzePrepayment(t *testing.T) {
	impact, err := AnalyzePrepayment(d(1000000), d(8.5), 240, d(200000))

	require.NoError(t, err)
	assert.Equal(t, "8678.23", impact.EMI.StringFixed(2))
	assert.Less(t, impact.MonthsAfterPrepayment.InexactFloat64(), 240.0, "Should shorten the tenure")
	assert.True(t, impact.InterestSaved.IsPositive(), "Should save interest")
	assert.True(t, impact.TotalInterestOriginal.Sub(impact.TotalInterestAfterPrepayment).Equal(impact.InterestSaved))
}

func TestAnalyzePrepayment_TooLarge(t *testing.T) {
	_, err := AnalyzePrepayment(d(1000), d(8.5), 12, d(2000))
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestLoanToDepositRate(t *testing.T) {
	rate, err := LoanToDepositRate(d(10), 15)

	require.NoError(t, err)
	assert.Greater(t, rate.InexactFloat64(), 0.0)
	assert.Less(t, rate.InexactFloat64(), 10.0, "Should be below the nominal loan rate")
}

func TestDepositToLoanRate_RoundTrip(t *testing.T) {
	deposit, err := LoanToDepositRate(d(10), 15)
	require.NoError(t, err)

	loan, err := DepositToLoanRate(deposit, 15)

	require.NoError(t, err)
	assert.InDelta(t, 10.0, loan.InexactFloat64(), 1e-6, "Should invert the loan-to-deposit conversion")
}

func TestDepositToLoanRate_Zero(t *testing.T) {
	loan, err := DepositToLoanRate(decimal.Zero, 10)
	require.NoError(t, err)
	assert.True(t, loan.IsZero())
}

func TestBreakEvenWithdrawalReturn(t *testing.T) {
	res, err := BreakEvenWithdrawalReturn(d(1000000), d(9), 10)

	require.NoError(t, err)
	assert.True(t, res.Bracketed, "Should bracket a root")
	rate := res.AnnualRate.InexactFloat64()
	assert.Greater(t, rate, 0.0)
	assert.Less(t, rate, 0.2, "Should land near the loan rate")
}
