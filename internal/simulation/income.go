package simulation

import (
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// JobSwitchPlan compares staying in one job with switching jobs periodically
type JobSwitchPlan struct {
	StableSalary           decimal.Decimal
	StableIncrementPercent decimal.Decimal
	StableBonus            decimal.Decimal

	SwitchStartSalary     decimal.Decimal
	SwitchIncreasePercent decimal.Decimal
	Switches              int
	AvgJobYears           decimal.Decimal
	SwitchBonus           decimal.Decimal

	Years int
}

// JobSwitchResult is the outcome of JobSwitchIncome
type JobSwitchResult struct {
	StableTotal      decimal.Decimal `json:"stableTotal"`
	SwitchTotal      decimal.Decimal `json:"switchTotal"`
	Difference       decimal.Decimal `json:"difference"`
	AnnualDifference decimal.Decimal `json:"annualDifference"`
	SwitchesMade     int             `json:"switchesMade"`
}

var minJobYears = decimal.NewFromFloat(0.1)

// JobSwitchIncome totals earnings over Years on both paths. The stable path
// earns salary·(1+inc)^y plus the bonus every year. The switching path
// earns its current salary for blocks of AvgJobYears; between blocks, while
// switches remain, it collects the switch bonus and a raise.
func JobSwitchIncome(p JobSwitchPlan) (*JobSwitchResult, error) {
	const op = "job_switch_income"
	if p.Years < 1 || p.Years > domain.MaxTermYears {
		return nil, domain.InvalidParameter(op, "analysis_period_years", "analysis period must be between 1 and %d years, got %d", domain.MaxTermYears, p.Years)
	}
	if p.Switches < 0 {
		return nil, domain.InvalidParameter(op, "switch_number_of_switches", "number of switches must not be negative, got %d", p.Switches)
	}
	if p.AvgJobYears.LessThan(minJobYears) {
		return nil, domain.InvalidParameter(op, "switch_avg_duration_per_job_years", "average job duration must be at least %s years, got %s", minJobYears, p.AvgJobYears)
	}
	for name, v := range map[string]decimal.Decimal{
		"stable_current_annual_salary":    p.StableSalary,
		"stable_annual_increment_percent": p.StableIncrementPercent,
		"stable_annual_bonus":             p.StableBonus,
		"switch_starting_annual_salary":   p.SwitchStartSalary,
		"switch_salary_increase_percent":  p.SwitchIncreasePercent,
		"switch_bonus_per_switch":         p.SwitchBonus,
	} {
		if v.IsNegative() {
			return nil, domain.InvalidParameter(op, name, "value must not be negative, got %s", v)
		}
	}

	res := &JobSwitchResult{}
	stableGrowth := domain.One.Add(domain.PercentToRate(p.StableIncrementPercent))
	salary := p.StableSalary
	for y := 0; y < p.Years; y++ {
		res.StableTotal = res.StableTotal.Add(salary).Add(p.StableBonus)
		salary = finmath.Work(salary.Mul(stableGrowth))
	}

	switchGrowth := domain.One.Add(domain.PercentToRate(p.SwitchIncreasePercent))
	remaining := decimal.NewFromInt(int64(p.Years))
	current := p.SwitchStartSalary
	for remaining.IsPositive() {
		block := domain.MinDecimal(remaining, p.AvgJobYears)
		res.SwitchTotal = res.SwitchTotal.Add(current.Mul(block))
		remaining = remaining.Sub(block)

		if remaining.IsPositive() && res.SwitchesMade < p.Switches {
			res.SwitchTotal = res.SwitchTotal.Add(p.SwitchBonus)
			current = finmath.Work(current.Mul(switchGrowth))
			res.SwitchesMade++
		}
	}

	res.Difference = res.SwitchTotal.Sub(res.StableTotal)
	res.AnnualDifference = res.Difference.Div(decimal.NewFromInt(int64(p.Years)))
	return res, nil
}
