package calculator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminRegistry() *Registry {
	return NewRegistry(Deps{Resolver: rates.NewResolver(rates.StaticLookup(rates.Defaults()))})
}

func metricOf(t *testing.T, r *Result, name string) decimal.Decimal {
	t.Helper()
	v, ok := r.Metric(name)
	require.True(t, ok, "Should have metric %s", name)
	return v
}

type recordingLoans struct {
	saved []LoanRecord
}

func (r *recordingLoans) SaveLoan(_ context.Context, loan LoanRecord) error {
	r.saved = append(r.saved, loan)
	return nil
}

func TestRegistry_ListsEveryCalculator(t *testing.T) {
	registry := NewRegistry(Deps{})

	names := registry.List()
	assert.Len(t, names, 45, "Should register every built-in calculator")
	assert.IsIncreasing(t, names, "Should list names in sorted order")
	for _, want := range []string{"emi", "loan_schedule", "debt_payoff", "swp", "lic_policy", "fire", "gratuity"} {
		assert.Contains(t, names, want)
	}

	calcs := registry.Calculators()
	require.Len(t, calcs, 45)
	for _, c := range calcs {
		assert.NotEmpty(t, c.Description(), "Should describe %s", c.Name())
		assert.NotEmpty(t, c.Params(), "Should declare parameters for %s", c.Name())
	}
}

func TestRegistry_EveryCalculatorRunsWithDefaults(t *testing.T) {
	registry := adminRegistry()

	for _, name := range registry.List() {
		t.Run(name, func(t *testing.T) {
			result, err := registry.Run(context.Background(), name, Params{})
			require.NoError(t, err)
			assert.Equal(t, name, result.Calculator)
			assert.NotEmpty(t, result.Summary, "Should produce summary metrics")
		})
	}
}

func TestRegistry_UnknownCalculator(t *testing.T) {
	registry := NewRegistry(Deps{})

	_, err := registry.Run(context.Background(), "lottery", Params{})
	assert.True(t, errors.Is(err, ErrUnknownCalculator), "Should wrap ErrUnknownCalculator")
	assert.Contains(t, err.Error(), "lottery")
}

func TestRegistry_ParseParamSpec(t *testing.T) {
	registry := NewRegistry(Deps{})

	name, params, err := registry.ParseParamSpec("emi:principal=500000, rate=9.5,tenure=15")
	require.NoError(t, err)
	assert.Equal(t, "emi", name)
	assert.Equal(t, Params{"principal": "500000", "rate": "9.5", "tenure": "15"}, params)

	name, params, err = registry.ParseParamSpec("sip")
	require.NoError(t, err)
	assert.Equal(t, "sip", name)
	assert.Empty(t, params)

	_, _, err = registry.ParseParamSpec("emi:principal")
	assert.Error(t, err, "Should reject a pair without '='")

	_, _, err = registry.ParseParamSpec("nope:x=1")
	assert.True(t, errors.Is(err, ErrUnknownCalculator))
}

func TestCalculate_RejectsUnknownParameter(t *testing.T) {
	registry := NewRegistry(Deps{})

	_, err := registry.Run(context.Background(), "emi", Params{"principle": "100"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Equal(t, "principle", domain.ParameterOf(err))
}

func TestCalculate_InvalidNumberNamesParameter(t *testing.T) {
	registry := NewRegistry(Deps{})

	_, err := registry.Run(context.Background(), "emi", Params{"principal": "ten lakh"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Equal(t, "principal", domain.ParameterOf(err))
	assert.Contains(t, err.Error(), "emi:")
}

func TestCalculate_CancelledContext(t *testing.T) {
	registry := NewRegistry(Deps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := registry.Run(ctx, "emi", Params{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEMI_UserRate(t *testing.T) {
	registry := adminRegistry()

	result, err := registry.Run(context.Background(), "emi", Params{"principal": "1000000", "rate": "8.5", "tenure": "20"})
	require.NoError(t, err)

	assert.Equal(t, "8678.23", metricOf(t, result, "emi").StringFixed(2))
	assert.Equal(t, "240", metricOf(t, result, "tenure_months").String())
	assert.Equal(t, "user", result.Notes["rate_source"], "Should always prefer the user rate")
}

func TestEMI_RateSources(t *testing.T) {
	result, err := NewRegistry(Deps{}).Run(context.Background(), "emi", Params{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Notes["rate_source"])
	assert.True(t, result.RatesUsed["rate"].Value.Equal(decimal.NewFromFloat(8.5)))

	admin := NewRegistry(Deps{Resolver: rates.NewResolver(rates.StaticLookup{rates.KeyLoanRate: decimal.NewFromInt(9)})})
	result, err = admin.Run(context.Background(), "emi", Params{})
	require.NoError(t, err)
	assert.Equal(t, "admin", result.Notes["rate_source"])
	assert.True(t, result.RatesUsed["rate"].Value.Equal(decimal.NewFromInt(9)))
}

func TestEMI_SavesLoanWhenRequested(t *testing.T) {
	loans := &recordingLoans{}
	registry := NewRegistry(Deps{Loans: loans})

	result, err := registry.Run(context.Background(), "emi", Params{"principal": "200000", "rate": "12", "tenure": "12", "tenure_type": "months", "save": "yes"})
	require.NoError(t, err)

	require.Len(t, loans.saved, 1)
	saved := loans.saved[0]
	assert.Equal(t, result.Notes["loan_id"], saved.ID)
	assert.Equal(t, 12, saved.TermMonths)
	assert.Equal(t, rates.SourceUser, saved.RateSource)
	assert.Equal(t, "17769.76", saved.EMI.StringFixed(2))
}

func TestEMIInflation_NoRateIsUnresolved(t *testing.T) {
	registry := NewRegistry(Deps{})

	_, err := registry.Run(context.Background(), "emi_inflation", Params{})
	assert.True(t, errors.Is(err, domain.ErrRateUnresolved), "Should fail instead of guessing an inflation rate")

	result, err := registry.Run(context.Background(), "emi_inflation", Params{"inflation": "0", "years": "2", "monthly_emi": "1000"})
	require.NoError(t, err)
	assert.Equal(t, "24000.00", metricOf(t, result, "present_value").StringFixed(2), "Should not discount at zero inflation")
}

func TestEMIInflation_Modes(t *testing.T) {
	registry := NewRegistry(Deps{})

	yearly, err := registry.Run(context.Background(), "emi_inflation", Params{"inflation": "6", "years": "1", "monthly_emi": "1000"})
	require.NoError(t, err)
	// 12000 / 1.06
	assert.Equal(t, "11320.75", metricOf(t, yearly, "present_value").StringFixed(2))

	monthly, err := registry.Run(context.Background(), "emi_inflation", Params{"inflation": "6", "years": "1", "monthly_emi": "1000", "mode": "monthly"})
	require.NoError(t, err)
	pv := metricOf(t, monthly, "present_value")
	assert.True(t, pv.GreaterThan(metricOf(t, yearly, "present_value")), "Should discount monthly payments less than a full year")
	assert.Len(t, monthly.Tables[0].Rows, 1)
}

func TestSWP_RateChain(t *testing.T) {
	_, err := NewRegistry(Deps{}).Run(context.Background(), "swp", Params{})
	assert.True(t, errors.Is(err, domain.ErrRateUnresolved))

	registry := NewRegistry(Deps{Resolver: rates.NewResolver(rates.StaticLookup{rates.KeyLoanRate: decimal.NewFromInt(9)})})
	result, err := registry.Run(context.Background(), "swp", Params{})
	require.NoError(t, err)
	assert.Equal(t, "admin", result.Notes["expected_annual_return_source"])
	assert.Equal(t, rates.KeyLoanRate, result.RatesUsed["expected_annual_return"].Key, "Should fall through to loan_rate")
}

func TestSWP_Exhaustion(t *testing.T) {
	registry := NewRegistry(Deps{})

	result, err := registry.Run(context.Background(), "swp", Params{
		"lump_sum_deposit":       "10000",
		"regular_withdrawal":     "1000",
		"expected_annual_return": "0",
		"withdrawal_term":        "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "10", metricOf(t, result, "periods_elapsed").String())
	assert.Equal(t, "0.00", metricOf(t, result, "final_balance").StringFixed(2))
	assert.Contains(t, result.Notes["status"], "exhausted after 0.83")
}

func TestSWP_RejectsNegativeWithdrawals(t *testing.T) {
	_, err := NewRegistry(Deps{}).Run(context.Background(), "swp", Params{
		"lump_sum_deposit":             "100000",
		"regular_withdrawal":           "1000",
		"expected_annual_return":       "0",
		"withdrawal_term":              "24",
		"term_unit":                    "months",
		"annual_withdrawal_adjustment": "-200",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Equal(t, "annual_withdrawal_adjustment", domain.ParameterOf(err))
}

func TestSWP_TermCap(t *testing.T) {
	_, err := NewRegistry(Deps{}).Run(context.Background(), "swp", Params{
		"expected_annual_return": "8",
		"withdrawal_term":        "1e30",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Equal(t, "withdrawal_term", domain.ParameterOf(err))
}

func TestCompoundInterest_RejectsUnlistedFrequencies(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := adminRegistry().Run(ctx, "compound_interest", Params{
		"deposit_frequency":     "1000003",
		"compounding_frequency": "999983",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter), "Should fail fast instead of walking the LCM")
}

func TestTermCaps(t *testing.T) {
	registry := NewRegistry(Deps{})

	_, err := registry.Run(context.Background(), "loan_schedule", Params{"rate": "10", "tenure": "100000000"})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter), "Should refuse an oversized schedule")
	assert.Equal(t, "tenure", domain.ParameterOf(err))

	_, err = registry.Run(context.Background(), "emi_inflation", Params{"inflation": "6", "years": "5000"})
	assert.Equal(t, "years", domain.ParameterOf(err))

	_, err = registry.Run(context.Background(), "cost_of_delay", Params{"annual_return": "12", "delay_months": "2000000"})
	assert.Equal(t, "delay_months", domain.ParameterOf(err))
}

func TestLoanSchedule_Settles(t *testing.T) {
	result, err := NewRegistry(Deps{}).Run(context.Background(), "loan_schedule", Params{"rate": "10"})
	require.NoError(t, err)

	require.Len(t, result.Tables, 1)
	rows := result.Tables[0].Rows
	assert.Len(t, rows, 60)
	assert.True(t, rows[len(rows)-1].Values[4].IsZero(), "Should end with a zero balance")

	_, err = NewRegistry(Deps{}).Run(context.Background(), "loan_schedule", Params{"rate": "0"})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter), "Should reject a zero rate")
}

func TestDebtPayoff_ComparesStrategies(t *testing.T) {
	result, err := adminRegistry().Run(context.Background(), "debt_payoff", Params{})
	require.NoError(t, err)

	avalanche := metricOf(t, result, "avalanche_total_interest")
	snowball := metricOf(t, result, "snowball_total_interest")
	assert.True(t, avalanche.LessThanOrEqual(snowball), "Avalanche should never pay more interest")
	require.NotNil(t, result.Comparison)
	assert.Equal(t, "avalanche", result.Comparison.Base)
	assert.Len(t, result.Tables, 2)
	assert.Equal(t, "debt", result.Tables[0].KeyColumn)
}

func TestDebtPayoff_MissingRateResolved(t *testing.T) {
	registry := NewRegistry(Deps{Resolver: rates.NewResolver(rates.StaticLookup{rates.KeyInterestRate: decimal.NewFromInt(12)})})

	result, err := registry.Run(context.Background(), "debt_payoff", Params{"debts": "Card|10000|1000;Loan|20000|1000|8"})
	require.NoError(t, err)
	assert.Equal(t, rates.KeyInterestRate, result.RatesUsed["rate"].Key)
	assert.Equal(t, "admin", result.Notes["rate_source"])

	_, err = registry.Run(context.Background(), "debt_payoff", Params{"debts": "Card|ten|1000"})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Equal(t, "debts", domain.ParameterOf(err))
}

func TestLICPolicy_NoGainFailsExplicitly(t *testing.T) {
	_, err := adminRegistry().Run(context.Background(), "lic_policy", Params{"sum_assured": "0"})
	assert.True(t, errors.Is(err, domain.ErrIRRNotFound), "Should not fabricate a rate")
}

func TestLICPolicy_DefaultReturn(t *testing.T) {
	result, err := adminRegistry().Run(context.Background(), "lic_policy", Params{})
	require.NoError(t, err)

	assert.Equal(t, "1000000.00", metricOf(t, result, "total_premium_paid").StringFixed(2))
	assert.Equal(t, "500000.00", metricOf(t, result, "net_gain").StringFixed(2))
	annual := metricOf(t, result, "annual_irr")
	assert.True(t, annual.IsPositive(), "Should earn a positive return")
	assert.True(t, metricOf(t, result, "real_return").LessThan(annual), "Should lose to inflation")
	assert.NotEmpty(t, result.Notes["irr_method"])
}

func TestInsurancePolicy_Validation(t *testing.T) {
	_, err := adminRegistry().Run(context.Background(), "insurance_policy", Params{
		"premium_paying_term_years": "25",
		"total_policy_term_years":   "20",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Equal(t, "premium_paying_term_years", domain.ParameterOf(err))

	result, err := adminRegistry().Run(context.Background(), "insurance_policy", Params{"premium_frequency": "quarterly"})
	require.NoError(t, err)
	assert.Equal(t, "40", metricOf(t, result, "premium_paying_periods").String())
	assert.True(t, metricOf(t, result, "annual_irr").IsPositive())
}

func TestGratuity_RoundsUpSixMonths(t *testing.T) {
	registry := NewRegistry(Deps{})

	result, err := registry.Run(context.Background(), "gratuity", Params{"extra_months": "7"})
	require.NoError(t, err)
	assert.Equal(t, "11", metricOf(t, result, "completed_service").String())
	assert.Equal(t, "380769.23", metricOf(t, result, "gratuity_amount").StringFixed(2))

	result, err = registry.Run(context.Background(), "gratuity", Params{"extra_months": "5"})
	require.NoError(t, err)
	assert.Equal(t, "10", metricOf(t, result, "completed_service").String())

	_, err = registry.Run(context.Background(), "gratuity", Params{"extra_months": "12"})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
}

func TestSimpleInterestAndMIS(t *testing.T) {
	registry := NewRegistry(Deps{})

	si, err := registry.Run(context.Background(), "simple_interest", Params{"annual_interest_rate": "8"})
	require.NoError(t, err)
	assert.Equal(t, "40000.00", metricOf(t, si, "total_interest").StringFixed(2))
	assert.Equal(t, "140000.00", metricOf(t, si, "final_amount").StringFixed(2))

	mis, err := registry.Run(context.Background(), "mis", Params{})
	require.NoError(t, err)
	assert.Equal(t, "3083.33", metricOf(t, mis, "monthly_income").StringFixed(2))
	assert.Equal(t, "185000.00", metricOf(t, mis, "total_interest").StringFixed(2))
	assert.Len(t, mis.Tables[0].Rows, 5)
}

func TestSCSS_DepositLimit(t *testing.T) {
	_, err := NewRegistry(Deps{}).Run(context.Background(), "scss", Params{"deposit_amount": "3000001"})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
	assert.Equal(t, "deposit_amount", domain.ParameterOf(err))
}

func TestCostOfDelay_DelayBeyondTerm(t *testing.T) {
	result, err := NewRegistry(Deps{}).Run(context.Background(), "cost_of_delay", Params{"term_years": "1", "delay_months": "24"})
	require.NoError(t, err)
	assert.True(t, metricOf(t, result, "delayed_start").IsZero())
	assert.Equal(t, "100.00", metricOf(t, result, "loss_percent").StringFixed(2))
}

func TestCarLeaseVsBuy_WinnerMatchesCosts(t *testing.T) {
	result, err := adminRegistry().Run(context.Background(), "car_lease_vs_buy", Params{})
	require.NoError(t, err)

	lease := metricOf(t, result, "lease_net_cost")
	buy := metricOf(t, result, "buy_net_cost")
	want := "Lease"
	if buy.LessThan(lease) {
		want = "Buy"
	}
	require.NotNil(t, result.Comparison)
	assert.Equal(t, want, result.Comparison.Winner)
	assert.Equal(t, want, result.Notes["recommendation"])
}

func TestRetirement_ZeroYearsToRetire(t *testing.T) {
	result, err := adminRegistry().Run(context.Background(), "retirement", Params{"current_age": "60"})
	require.NoError(t, err)
	assert.True(t, metricOf(t, result, "annual_investment_required").IsZero())
	assert.Equal(t, "500000", metricOf(t, result, "inflation_adjusted_expense_at_retirement").String())
}

func TestParams_Accessors(t *testing.T) {
	p := Params{"n": "12.0", "f": "1.5", "b": "Yes", "x": " 7 "}

	n, err := p.Int("n")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = p.Int("f")
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))

	for _, raw := range []string{"1e30", "9999999999", "-9999999999"} {
		_, err = Params{"n": raw}.Int("n")
		assert.True(t, errors.Is(err, domain.ErrInvalidParameter), "Should reject out-of-range %s", raw)
	}

	b, err := p.Bool("b")
	require.NoError(t, err)
	assert.True(t, b)

	x, err := p.Decimal("x")
	require.NoError(t, err)
	assert.True(t, x.Equal(decimal.NewFromInt(7)))

	missing, err := p.OptionalDecimal("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = p.Decimal("missing")
	assert.Equal(t, "missing", domain.ParameterOf(err))
}

func TestRegistry_CompareInvocations(t *testing.T) {
	registry := NewRegistry(Deps{})
	base := Invocation{Name: "20 years", Calculator: "emi", Params: Params{"rate": "9"}}
	alternatives := []Invocation{
		{Name: "15 years", Calculator: "emi", Params: Params{"rate": "9", "tenure": "15"}},
		{Name: "10 years", Calculator: "emi", Params: Params{"rate": "9", "tenure": "10"}},
	}

	set, err := registry.Compare(context.Background(), base, alternatives, compare.Criterion{Metric: "total_interest", Goal: compare.Minimize})
	require.NoError(t, err)
	assert.Equal(t, "10 years", set.Best, "Shorter tenure should pay the least interest")
	assert.Len(t, set.Comparisons, 2)
	assert.NotEmpty(t, set.Recommendations)

	_, err = registry.Compare(context.Background(), base, []Invocation{{Name: "20 years", Calculator: "emi"}}, compare.Criterion{Metric: "emi", Goal: compare.Minimize})
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter), "Should reject duplicate outcome names")

	_, err = registry.Compare(context.Background(), base, []Invocation{{Calculator: "nope"}}, compare.Criterion{Metric: "emi", Goal: compare.Minimize})
	assert.True(t, errors.Is(err, ErrUnknownCalculator))
}
