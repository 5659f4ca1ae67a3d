package calculator

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/simulation"
	"github.com/shopspring/decimal"
)

// fireSearchYears bounds the years-to-FIRE search; maxAge bounds the age inputs
const (
	fireSearchYears = 100
	maxAge          = 150
)

var retirementCalculator = definition{
	name:        "retirement",
	description: "Corpus needed at retirement and the yearly saving that builds it",
	params: []ParamSpec{
		{Name: "current_age", Description: "Age today", Default: "30"},
		{Name: "desired_retirement_age", Description: "Age at retirement", Default: "60"},
		{Name: "expected_life_expectancy", Description: "Age the corpus must last to", Default: "85"},
		{Name: "current_annual_expenses", Description: "Yearly expenses today", Default: "500000"},
		{Name: "annual_inflation_rate", Description: "Inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "expected_pre_retirement_return", Description: "Return before retirement in percent", Default: "12"},
		{Name: "expected_post_retirement_return", Description: "Return after retirement in percent", Default: "8"},
		{Name: "current_retirement_savings", Description: "Savings already set aside", Default: "0"},
	},
	run: runRetirement,
}

// retirementPlan is the part shared by the retirement and FIRE calculators
type retirementPlan struct {
	yearsToRetire int
	yearsRetired  int
	expenses      decimal.Decimal
	inflation     decimal.Decimal // fraction
	preReturn     decimal.Decimal // fraction
	postReturn    decimal.Decimal // fraction
	savings       decimal.Decimal
}

// readRetirementPlan reads ages, expenses and returns; inflationParam names
// the optional inflation input
func readRetirementPlan(ctx context.Context, s *session, inflationParam, preParam, postParam string) retirementPlan {
	age := s.integer("current_age")
	retireAge := s.integer("desired_retirement_age")
	lifeExpectancy := s.integer("expected_life_expectancy")
	if s.err == nil && age < 0 {
		s.check(domain.InvalidParameter(s.op, "current_age", "age must not be negative, got %d", age))
	}
	if s.err == nil && lifeExpectancy > maxAge {
		s.check(domain.InvalidParameter(s.op, "expected_life_expectancy", "life expectancy must be at most %d, got %d", maxAge, lifeExpectancy))
	}
	if s.err == nil && retireAge > maxAge {
		s.check(domain.InvalidParameter(s.op, "desired_retirement_age", "retirement age must be at most %d, got %d", maxAge, retireAge))
	}
	p := retirementPlan{
		yearsToRetire: max(0, retireAge-age),
		yearsRetired:  max(0, lifeExpectancy-retireAge),
		expenses:      s.nonNegative("current_annual_expenses"),
		preReturn:     domain.PercentToRate(s.decimal(preParam)),
		postReturn:    domain.PercentToRate(s.decimal(postParam)),
		savings:       s.nonNegative("current_retirement_savings"),
	}
	p.inflation = domain.PercentToRate(s.rate(ctx, inflationParam, rates.KeyInflationRate, rates.Percent(6)))
	if s.err == nil && p.preReturn.LessThanOrEqual(domain.One.Neg()) {
		s.check(domain.InvalidParameter(s.op, preParam, "return must be above -100%%"))
	}
	return p
}

// corpus returns the expense at retirement and the corpus that funds
// yearsRetired years of it growing with inflation, discounted at the real
// post-retirement return
func (p retirementPlan) corpus(op string) (expenseAtRetirement, corpus decimal.Decimal, err error) {
	inflate, err := finmath.PowInt(op, domain.One.Add(p.inflation), p.yearsToRetire)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	realRate, err := compounding.RealRate(p.postReturn, p.inflation)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	pv, err := compounding.PresentValueAnnuity(p.expenses, realRate, p.yearsRetired)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return p.expenses.Mul(inflate), finmath.Work(pv.Mul(inflate)), nil
}

// grownSavings returns the current savings compounded to retirement
func (p retirementPlan) grownSavings(op string) (decimal.Decimal, error) {
	g, err := finmath.PowInt(op, domain.One.Add(p.preReturn), p.yearsToRetire)
	if err != nil {
		return decimal.Zero, err
	}
	return p.savings.Mul(g), nil
}

// requiredSaving is the level yearly saving that closes the gap between
// target and the grown savings
func (p retirementPlan) requiredSaving(target, grown decimal.Decimal, timing compounding.Timing) (decimal.Decimal, error) {
	if p.yearsToRetire == 0 {
		return decimal.Zero, nil
	}
	factor, err := compounding.FutureValueAnnuity(domain.One, p.preReturn, p.yearsToRetire, timing)
	if err != nil {
		return decimal.Zero, err
	}
	gap := target.Sub(grown)
	if !gap.IsPositive() || !factor.IsPositive() {
		return decimal.Zero, nil
	}
	return gap.Div(factor), nil
}

func runRetirement(ctx context.Context, s *session) error {
	plan := readRetirementPlan(ctx, s, "annual_inflation_rate", "expected_pre_retirement_return", "expected_post_retirement_return")
	if err := s.Err(); err != nil {
		return err
	}

	expense, corpus, err := plan.corpus(s.op)
	if err != nil {
		return err
	}
	grown, err := plan.grownSavings(s.op)
	if err != nil {
		return err
	}
	saving, err := plan.requiredSaving(corpus, grown, compounding.TimingStart)
	if err != nil {
		return err
	}

	s.result.
		Add("inflation_adjusted_expense_at_retirement", expense.Round(0)).
		Add("corpus_required_at_retirement", corpus.Round(0)).
		Add("current_savings_at_retirement", grown.Round(0)).
		Add("annual_investment_required", saving.Round(0)).
		Add("years_until_retirement", decimal.NewFromInt(int64(plan.yearsToRetire))).
		Add("retirement_duration", decimal.NewFromInt(int64(plan.yearsRetired)))
	return nil
}

var fireCalculator = definition{
	name:        "fire",
	description: "Financial independence target, the saving it needs and the years to reach it",
	params: []ParamSpec{
		{Name: "current_age", Description: "Age today", Default: "30"},
		{Name: "desired_retirement_age", Description: "Target retirement age", Default: "60"},
		{Name: "expected_life_expectancy", Description: "Age the corpus must last to", Default: "85"},
		{Name: "current_annual_expenses", Description: "Yearly expenses today", Default: "600000"},
		{Name: "expected_annual_inflation_rate", Description: "Inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "safe_withdrawal_buffer", Description: "Safe withdrawal rate in percent", Default: "4"},
		{Name: "current_retirement_savings", Description: "Savings already set aside", Default: "1000000"},
		{Name: "annual_income_post_tax", Description: "Yearly income after tax", Default: "1500000"},
		{Name: "annual_savings_rate", Description: "Share of income saved in percent", Default: "50"},
		{Name: "expected_return_pre_retirement", Description: "Return before retirement in percent", Default: "10"},
		{Name: "expected_return_post_retirement", Description: "Return after retirement in percent", Default: "8"},
	},
	run: runFIRE,
}

func runFIRE(ctx context.Context, s *session) error {
	plan := readRetirementPlan(ctx, s, "expected_annual_inflation_rate", "expected_return_pre_retirement", "expected_return_post_retirement")
	withdrawal := s.positive("safe_withdrawal_buffer")
	income := s.nonNegative("annual_income_post_tax")
	savingsRate := s.nonNegative("annual_savings_rate")
	if err := s.Err(); err != nil {
		return err
	}

	expense, target, err := plan.corpus(s.op)
	if err != nil {
		return err
	}
	grown, err := plan.grownSavings(s.op)
	if err != nil {
		return err
	}
	required, err := plan.requiredSaving(target, grown, compounding.TimingEnd)
	if err != nil {
		return err
	}

	annualSaving := income.Mul(domain.PercentToRate(savingsRate))
	acc, err := simulation.YearsToTarget(plan.savings, annualSaving, domain.RateToPercent(plan.preReturn), target, fireSearchYears, compounding.TimingStart)
	if err != nil {
		return err
	}

	s.result.
		Add("target_fire_corpus", target.Round(0)).
		Add("safe_withdrawal_corpus", expense.Div(domain.PercentToRate(withdrawal)).Round(0)).
		Add("annual_investment_required", required.Round(0)).
		Add("annual_saving", annualSaving.Round(0)).
		Add("estimated_years_to_fire", decimal.NewFromInt(int64(acc.Years)))
	if !acc.Reached {
		s.result.Note("estimated_years_to_fire", fmt.Sprintf("target not reached within %d years", fireSearchYears))
	}
	return nil
}

var gratuityCalculator = definition{
	name:        "gratuity",
	description: "Gratuity on leaving after years of service",
	params: []ParamSpec{
		{Name: "basic_pay", Description: "Last drawn monthly basic pay", Default: "50000"},
		{Name: "da", Description: "Last drawn monthly dearness allowance", Default: "10000"},
		{Name: "service_years", Description: "Completed years of service", Default: "10"},
		{Name: "extra_months", Description: "Months beyond the completed years (0-11)", Default: "0"},
	},
	run: runGratuity,
}

func runGratuity(_ context.Context, s *session) error {
	basic := s.nonNegative("basic_pay")
	da := s.nonNegative("da")
	years := s.integer("service_years")
	months := s.integer("extra_months")
	if err := s.Err(); err != nil {
		return err
	}
	if years < 0 {
		return domain.InvalidParameter(s.op, "service_years", "service must not be negative, got %d", years)
	}
	if months < 0 || months > 11 {
		return domain.InvalidParameter(s.op, "extra_months", "extra months must be between 0 and 11, got %d", months)
	}

	completed := years
	if months >= 6 {
		completed++
	}
	salary := basic.Add(da)
	gratuity := salary.Mul(decimal.NewFromInt(int64(15 * completed))).Div(decimal.NewFromInt(26))

	s.result.
		Add("last_drawn_salary", domain.RoundCurrency(salary)).
		Add("completed_service", decimal.NewFromInt(int64(completed))).
		Add("gratuity_amount", domain.RoundCurrency(gratuity))
	return nil
}
