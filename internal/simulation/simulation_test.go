package simulation

import (
	"testing"

	"github.com/rgehrsitz/fincalc/internal/amortization"
	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestDebtPayoff_SingleDebtMatchesSchedule(t *testing.T) {
	principal, rate, term := d(250000), d(10.5), 36
	emi, err := amortization.ComputeEMI(principal, rate, term)
	require.NoError(t, err)
	schedule, err := amortization.BuildSchedule(principal, rate, term, decimal.Zero)
	require.NoError(t, err)

	res, err := DebtPayoff([]Debt{{Name: "Car", Balance: principal, MinPayment: emi, AnnualRatePercent: rate}},
		decimal.Zero, Avalanche, DefaultDebtOptions())

	require.NoError(t, err)
	assert.Equal(t, schedule.Months(), res.Months, "Should take as many months as the schedule")
	assert.True(t, schedule.TotalInterest.Equal(res.TotalInterest), "Should accrue the same interest: %s vs %s", schedule.TotalInterest, res.TotalInterest)
	assert.True(t, schedule.TotalPaid.Equal(res.TotalPaid), "Should pay the same total")
	assert.False(t, res.CeilingReached)
	assert.Equal(t, term, res.Debts[0].PayoffMonth)

	snowball, err := DebtPayoff([]Debt{{Name: "Car", Balance: principal, MinPayment: emi, AnnualRatePercent: rate}},
		decimal.Zero, Snowball, DefaultDebtOptions())
	require.NoError(t, err)
	assert.Equal(t, res.Months, snowball.Months, "Should not depend on the strategy for one debt")
	assert.True(t, res.TotalInterest.Equal(snowball.TotalInterest))
}

func twoDebts() []Debt {
	return []Debt{
		{Name: "Card", Balance: d(5000), MinPayment: d(200), AnnualRatePercent: d(24)},
		{Name: "Personal", Balance: d(1000), MinPayment: d(50), AnnualRatePercent: d(10)},
	}
}

func TestDebtPayoff_StrategiesOrderPayments(t *testing.T) {
	avalanche, err := DebtPayoff(twoDebts(), d(300), Avalanche, DefaultDebtOptions())
	require.NoError(t, err)
	snowball, err := DebtPayoff(twoDebts(), d(300), Snowball, DefaultDebtOptions())
	require.NoError(t, err)

	assert.True(t, avalanche.TotalInterest.LessThanOrEqual(snowball.TotalInterest), "Should pay less interest with avalanche")
	assert.Equal(t, 3, snowball.Debts[1].PayoffMonth, "Should clear the smallest balance first with snowball")
	assert.Greater(t, avalanche.Debts[1].PayoffMonth, snowball.Debts[1].PayoffMonth)
	assert.Equal(t, "Card", avalanche.Debts[0].Name, "Should report debts in input order")
}

func TestDebtPayoff_ConservesMoney(t *testing.T) {
	res, err := DebtPayoff(twoDebts(), d(300), Snowball, DefaultDebtOptions())
	require.NoError(t, err)

	start := decimal.Zero
	for _, o := range res.Debts {
		start = start.Add(o.StartingBalance)
		assert.True(t, o.RemainingBalance.IsZero())
	}
	assert.True(t, res.TotalPaid.Equal(start.Add(res.TotalInterest)), "Should pay exactly principal plus interest")
}

func TestDebtPayoff_FreedMinimumsRollOver(t *testing.T) {
	withRollover, err := DebtPayoff(twoDebts(), decimal.Zero, Snowball, DefaultDebtOptions())
	require.NoError(t, err)

	card := twoDebts()[:1]
	cardAlone, err := DebtPayoff(card, decimal.Zero, Snowball, DefaultDebtOptions())
	require.NoError(t, err)

	assert.Less(t, withRollover.Debts[0].PayoffMonth, cardAlone.Debts[0].PayoffMonth,
		"Should put the retired debt's minimum towards the next one")
}

func TestDebtPayoff_CeilingReached(t *testing.T) {
	debts := []Debt{{Name: "Underwater", Balance: d(10000), MinPayment: d(100), AnnualRatePercent: d(24)}}

	res, err := DebtPayoff(debts, decimal.Zero, Avalanche, DebtOptions{MaxMonths: 12})

	require.NoError(t, err)
	assert.True(t, res.CeilingReached, "Should stop at the month ceiling")
	assert.Equal(t, 12, res.Months)
	assert.True(t, res.Debts[0].RemainingBalance.GreaterThan(d(10000)), "Should grow when the minimum misses the interest")
	assert.Zero(t, res.Debts[0].PayoffMonth)
}

func TestDebtPayoff_Validation(t *testing.T) {
	_, err := DebtPayoff(nil, decimal.Zero, Avalanche, DefaultDebtOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = DebtPayoff(twoDebts(), d(-1), Avalanche, DefaultDebtOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = DebtPayoff([]Debt{{Balance: d(-5), MinPayment: d(1)}}, decimal.Zero, Avalanche, DefaultDebtOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	assert.Equal(t, "debts[0].balance", domain.ParameterOf(err))

	_, err = DebtPayoff(twoDebts(), decimal.Zero, Strategy("random"), DefaultDebtOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" Snowball ")
	require.NoError(t, err)
	assert.Equal(t, Snowball, s)

	_, err = ParseStrategy("blizzard")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestSystematicWithdrawal_ZeroWithdrawalNeverExhausts(t *testing.T) {
	for _, principal := range []float64{0, 100000} {
		res, err := SystematicWithdrawal(WithdrawalPlan{
			Principal:      d(principal),
			Withdrawal:     decimal.Zero,
			PeriodicRate:   d(0.01),
			PeriodsPerYear: 12,
			TotalPeriods:   24,
		})

		require.NoError(t, err)
		assert.False(t, res.Exhausted, "Should not exhaust a corpus nothing is drawn from")
		assert.Equal(t, 24, res.PeriodsElapsed)
		assert.Len(t, res.Years, 2)
	}
}

func TestSystematicWithdrawal_Exhaustion(t *testing.T) {
	res, err := SystematicWithdrawal(WithdrawalPlan{
		Principal:      d(10000),
		Withdrawal:     d(1000),
		PeriodicRate:   decimal.Zero,
		PeriodsPerYear: 12,
		TotalPeriods:   24,
	})

	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.Equal(t, 10, res.PeriodsElapsed, "Should stop on the withdrawal that empties the corpus")
	assert.Equal(t, 1, res.ExhaustedInYear)
	assert.True(t, res.TotalWithdrawn.Equal(d(10000)))
	assert.True(t, res.FinalBalance.IsZero())
	require.Len(t, res.Years, 1)
	assert.True(t, res.Years[0].EndBalance.IsZero())
}

func TestSystematicWithdrawal_PercentAdjustment(t *testing.T) {
	res, err := SystematicWithdrawal(WithdrawalPlan{
		Principal:        d(1000000),
		Withdrawal:       d(1000),
		PeriodicRate:     decimal.Zero,
		PeriodsPerYear:   12,
		TotalPeriods:     24,
		AnnualAdjustment: d(10),
		AdjustmentType:   AdjustPercent,
	})

	require.NoError(t, err)
	require.Len(t, res.Years, 2)
	assert.True(t, res.Years[0].Withdrawn.Equal(d(12000)))
	assert.True(t, res.Years[1].Withdrawn.Equal(d(13200)), "Should raise the withdrawal 10%% after the first year")
	assert.True(t, res.Years[1].StartBalance.Equal(res.Years[0].EndBalance))
}

func TestSystematicWithdrawal_PercentCutBelowHundredRejected(t *testing.T) {
	plan := WithdrawalPlan{
		Principal:        d(100000),
		Withdrawal:       d(1000),
		PeriodicRate:     decimal.Zero,
		PeriodsPerYear:   12,
		TotalPeriods:     24,
		AnnualAdjustment: d(-200),
		AdjustmentType:   AdjustPercent,
	}
	_, err := SystematicWithdrawal(plan)
	assert.ErrorIs(t, err, domain.ErrInvalidParameter, "Should not turn withdrawals into deposits")
	assert.Equal(t, "annual_withdrawal_adjustment", domain.ParameterOf(err))

	plan.AnnualAdjustment = d(-100)
	res, err := SystematicWithdrawal(plan)
	require.NoError(t, err)
	require.Len(t, res.Years, 2)
	assert.True(t, res.Years[1].Withdrawn.IsZero(), "Should stop withdrawing after a full cut")
	assert.True(t, res.FinalBalance.Equal(d(88000)))
}

func TestSystematicWithdrawal_PeriodCap(t *testing.T) {
	_, err := SystematicWithdrawal(WithdrawalPlan{Principal: d(1), PeriodsPerYear: 12, TotalPeriods: MaxWithdrawalPeriods + 1})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
	assert.Equal(t, "term", domain.ParameterOf(err))
}

func TestSystematicWithdrawal_FlatAdjustmentFloorsAtZero(t *testing.T) {
	res, err := SystematicWithdrawal(WithdrawalPlan{
		Principal:        d(1000000),
		Withdrawal:       d(1000),
		PeriodsPerYear:   12,
		TotalPeriods:     24,
		AnnualAdjustment: d(-1500),
		AdjustmentType:   AdjustFlat,
	})

	require.NoError(t, err)
	assert.True(t, res.TotalWithdrawn.Equal(d(12000)), "Should never withdraw a negative amount")
	assert.False(t, res.Exhausted)
}

func TestSystematicWithdrawal_PartialFinalYear(t *testing.T) {
	res, err := SystematicWithdrawal(WithdrawalPlan{
		Principal:      d(100000),
		Withdrawal:     d(500),
		PeriodicRate:   d(0.005),
		PeriodsPerYear: 12,
		TotalPeriods:   18,
	})

	require.NoError(t, err)
	require.Len(t, res.Years, 2, "Should report the trailing partial year")
	assert.True(t, res.Years[1].Withdrawn.Equal(d(3000)))
	assert.True(t, res.FinalBalance.Equal(res.Years[1].EndBalance))
	assert.Equal(t, "1.5", res.YearsElapsed(12).String())
}

func TestSystematicWithdrawal_Validation(t *testing.T) {
	_, err := SystematicWithdrawal(WithdrawalPlan{Principal: d(1), PeriodsPerYear: 0, TotalPeriods: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = SystematicWithdrawal(WithdrawalPlan{Principal: d(1), PeriodsPerYear: 12, TotalPeriods: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = SystematicWithdrawal(WithdrawalPlan{Principal: d(1), Withdrawal: d(-1), PeriodsPerYear: 12, TotalPeriods: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestEffectivePeriodicRate(t *testing.T) {
	r, err := EffectivePeriodicRate(d(12.682503013197), 12)

	require.NoError(t, err)
	assert.InDelta(t, 0.01, r.InexactFloat64(), 1e-9)
}

func TestJobSwitchIncome(t *testing.T) {
	res, err := JobSwitchIncome(JobSwitchPlan{
		StableSalary:           d(100),
		StableIncrementPercent: d(10),
		StableBonus:            d(5),
		SwitchStartSalary:      d(100),
		SwitchIncreasePercent:  d(20),
		Switches:               1,
		AvgJobYears:            d(2),
		SwitchBonus:            d(10),
		Years:                  3,
	})

	require.NoError(t, err)
	assert.True(t, res.StableTotal.Equal(d(346)), "Should total 100+110+121 plus three bonuses, got %s", res.StableTotal)
	assert.True(t, res.SwitchTotal.Equal(d(330)), "Should total two years at 100, a bonus, one year at 120, got %s", res.SwitchTotal)
	assert.Equal(t, 1, res.SwitchesMade)
	assert.True(t, res.Difference.Equal(d(-16)))
}

func TestJobSwitchIncome_Validation(t *testing.T) {
	_, err := JobSwitchIncome(JobSwitchPlan{Years: 0, AvgJobYears: d(2)})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = JobSwitchIncome(JobSwitchPlan{Years: 5, AvgJobYears: d(0.05)})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestYearsToTarget(t *testing.T) {
	acc, err := YearsToTarget(decimal.Zero, d(100), decimal.Zero, d(1000), 100, compounding.TimingStart)
	require.NoError(t, err)
	assert.True(t, acc.Reached)
	assert.Equal(t, 10, acc.Years)

	due, err := YearsToTarget(decimal.Zero, d(100), d(10), d(360), 100, compounding.TimingStart)
	require.NoError(t, err)
	assert.Equal(t, 3, due.Years, "Should grow deposits made at the start of the year")

	ordinary, err := YearsToTarget(decimal.Zero, d(100), d(10), d(360), 100, compounding.TimingEnd)
	require.NoError(t, err)
	assert.Equal(t, 4, ordinary.Years)
}

func TestYearsToTarget_NotReached(t *testing.T) {
	acc, err := YearsToTarget(d(10), d(1), decimal.Zero, d(1000), 5, compounding.TimingStart)

	require.NoError(t, err)
	assert.False(t, acc.Reached)
	assert.Zero(t, acc.Years)
	assert.True(t, acc.Balance.Equal(d(15)))
}
