package calculator

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fincalc/internal/amortization"
	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/simulation"
	"github.com/shopspring/decimal"
)

var futureCostCalculator = definition{
	name:        "future_cost",
	description: "Price of an item after inflation",
	params: []ParamSpec{
		{Name: "current_cost", Description: "Price today", Default: "100000"},
		{Name: "annual_inflation_rate", Description: "Annual inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "term", Description: "Horizon", Default: "10"},
		{Name: "term_unit", Description: "years (compounded yearly) or months (compounded monthly)", Default: "years"},
	},
	run: runFutureCost,
}

func runFutureCost(ctx context.Context, s *session) error {
	cost := s.nonNegative("current_cost")
	months := s.termMonths("term", "term_unit")
	inflation := s.rate(ctx, "annual_inflation_rate", rates.KeyInflationRate, rates.Percent(6))
	if err := s.Err(); err != nil {
		return err
	}
	unit, _ := domain.ParseTermUnit(s.str("term_unit"))

	years := decimal.NewFromInt(int64(months)).Div(domain.Twelve)
	perYear := 1
	if unit == domain.TermMonths {
		perYear = 12
	}
	future, err := compounding.FutureValueCompounded(cost, inflation, years, perYear)
	if err != nil {
		return err
	}

	s.result.
		Add("future_cost", domain.RoundCurrency(future)).
		Add("cost_increase", domain.RoundCurrency(future.Sub(cost)))
	if future.IsPositive() {
		// what today's amount still buys at the end of the term
		s.result.Add("purchasing_power", domain.RoundCurrency(cost.Mul(cost).Div(future)))
	}
	return nil
}

// goal is a future expense funded by existing savings plus a sinking fund
type goal struct {
	cost             decimal.Decimal
	inflationPercent decimal.Decimal
	returnPercent    decimal.Decimal
	savings          decimal.Decimal
	years            int
}

// goalFunding is what it takes to reach a goal
type goalFunding struct {
	futureCost    decimal.Decimal
	futureSavings decimal.Decimal
	shortfall     decimal.Decimal
	annual        decimal.Decimal
	monthly       decimal.Decimal
}

// fund grows the cost with inflation and the savings with the return, then
// sizes the end-of-period deposit whose future value covers the shortfall.
// Monthly deposits use the effective monthly rate of the annual return.
func (g goal) fund(op string) (goalFunding, error) {
	n := decimal.NewFromInt(int64(g.years))
	var f goalFunding
	var err error
	if f.futureCost, err = compounding.FutureValueLumpSum(g.cost, g.inflationPercent, n); err != nil {
		return f, err
	}
	if f.futureSavings, err = compounding.FutureValueLumpSum(g.savings, g.returnPercent, n); err != nil {
		return f, err
	}
	f.shortfall = domain.MaxDecimal(decimal.Zero, f.futureCost.Sub(f.futureSavings))
	if f.shortfall.IsZero() {
		return f, nil
	}

	annualFactor, err := compounding.FutureValueAnnuity(domain.One, domain.PercentToRate(g.returnPercent), g.years, compounding.TimingEnd)
	if err != nil {
		return f, err
	}
	monthlyRate, err := simulation.EffectivePeriodicRate(g.returnPercent, 12)
	if err != nil {
		return f, err
	}
	monthlyFactor, err := compounding.FutureValueAnnuity(domain.One, monthlyRate, g.years*12, compounding.TimingEnd)
	if err != nil {
		return f, err
	}
	if !annualFactor.IsPositive() || !monthlyFactor.IsPositive() {
		return f, domain.InvalidParameter(op, "return_rate", "return %s%% cannot build a fund", g.returnPercent)
	}
	f.annual = finmath.Work(f.shortfall.Div(annualFactor))
	f.monthly = finmath.Work(f.shortfall.Div(monthlyFactor))
	return f, nil
}

var childEducationCalculator = definition{
	name:        "child_education",
	description: "Future cost of a child's education and the saving needed to fund it",
	params: []ParamSpec{
		{Name: "current_cost", Description: "Cost of the course today", Default: "1500000"},
		{Name: "current_age", Description: "Child's age today", Default: "5"},
		{Name: "target_age", Description: "Age when the course starts", Default: "18"},
		{Name: "inflation_rate", Description: "Education inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "return_rate", Description: "Annual return on savings in percent (sip_rate when omitted)", Optional: true},
		{Name: "current_savings", Description: "Savings already set aside", Default: "0"},
	},
	run: runChildEducation,
}

func runChildEducation(ctx context.Context, s *session) error {
	cost := s.positive("current_cost")
	age := s.count("current_age")
	target := s.count("target_age")
	savings := s.nonNegative("current_savings")
	if s.err == nil && (target <= age || target > maxAge) {
		s.check(domain.InvalidParameter(s.op, "target_age", "target age must be above the current age and at most %d, got %d", maxAge, target))
	}
	inflation := s.rate(ctx, "inflation_rate", rates.KeyInflationRate, rates.Percent(8))
	ret := s.rate(ctx, "return_rate", rates.KeySIPRate, rates.Percent(12))
	if err := s.Err(); err != nil {
		return err
	}

	g := goal{cost: cost, inflationPercent: inflation, returnPercent: ret, savings: savings, years: target - age}
	f, err := g.fund(s.op)
	if err != nil {
		return err
	}

	s.result.
		Add("years_left", decimal.NewFromInt(int64(g.years))).
		Add("future_cost", domain.RoundCurrency(f.futureCost)).
		Add("future_value_current_savings", domain.RoundCurrency(f.futureSavings)).
		Add("shortfall", domain.RoundCurrency(f.shortfall)).
		Add("required_annual_saving", domain.RoundCurrency(f.annual)).
		Add("required_monthly_saving", domain.RoundCurrency(f.monthly))
	if f.shortfall.IsZero() {
		s.result.Note("status", "current savings already cover the goal")
	}
	return nil
}

var marriageCalculator = definition{
	name:        "marriage",
	description: "Future wedding cost and the saving needed per month or year",
	params: []ParamSpec{
		{Name: "current_estimated_marriage_expense", Description: "Cost of the wedding today", Default: "1000000"},
		{Name: "time_until_marriage", Description: "Years until the wedding", Default: "5"},
		{Name: "expected_annual_inflation_rate", Description: "Annual inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "expected_annual_return_on_investment", Description: "Annual return in percent (sip_rate when omitted)", Optional: true},
		{Name: "existing_savings", Description: "Savings already set aside", Default: "200000"},
		{Name: "savings_frequency", Description: "monthly or yearly", Default: "monthly"},
	},
	run: runMarriage,
}

func runMarriage(ctx context.Context, s *session) error {
	cost := s.positive("current_estimated_marriage_expense")
	years := s.years("time_until_marriage")
	savings := s.nonNegative("existing_savings")
	freq, err := domain.ParseFrequency(s.str("savings_frequency"))
	s.check(err)
	if s.err == nil && freq != domain.Monthly && freq != domain.Yearly {
		s.check(domain.InvalidParameter(s.op, "savings_frequency", "savings frequency must be monthly or yearly, got %s", freq))
	}
	inflation := s.rate(ctx, "expected_annual_inflation_rate", rates.KeyInflationRate, rates.Percent(8))
	ret := s.rate(ctx, "expected_annual_return_on_investment", rates.KeySIPRate, rates.Percent(10))
	if err := s.Err(); err != nil {
		return err
	}

	f, err := goal{cost: cost, inflationPercent: inflation, returnPercent: ret, savings: savings, years: years}.fund(s.op)
	if err != nil {
		return err
	}
	required := f.monthly
	if freq == domain.Yearly {
		required = f.annual
	}

	s.result.
		Add("future_marriage_cost", domain.RoundCurrency(f.futureCost)).
		Add("future_value_existing_savings", domain.RoundCurrency(f.futureSavings)).
		Add("additional_amount_required", domain.RoundCurrency(f.shortfall)).
		Add("savings_required", domain.RoundCurrency(required))
	s.result.Note("savings_frequency", string(freq))
	s.result.Note("explanation", fmt.Sprintf("save %s %s for %d years to cover %s",
		domain.RoundCurrency(required).StringFixed(2), freq, years, domain.RoundCurrency(f.shortfall).StringFixed(2)))
	return nil
}

var higherEducationCalculator = definition{
	name:        "higher_education",
	description: "Return on a degree: its full cost against the present value of the extra earnings",
	params: []ParamSpec{
		{Name: "tuition_fees", Description: "Total tuition", Default: "2000000"},
		{Name: "additional_costs", Description: "Books, housing and other direct costs", Default: "300000"},
		{Name: "loan_amount", Description: "Education loan taken", Default: "1500000"},
		{Name: "loan_interest_rate_pct", Description: "Loan rate in percent (loan_rate when omitted)", Optional: true},
		{Name: "loan_repayment_period_years", Description: "Loan tenure in years", Default: "7"},
		{Name: "program_duration_years", Description: "Length of the program", Default: "2"},
		{Name: "opportunity_cost_per_year", Description: "Income given up per year of study", Default: "600000"},
		{Name: "starting_salary_after_degree", Description: "First-year salary with the degree", Default: "1800000"},
		{Name: "salary_growth_rate_pct", Description: "Yearly raise with the degree", Default: "8"},
		{Name: "baseline_salary_without_degree", Description: "First-year salary without the degree", Default: "800000"},
		{Name: "baseline_salary_growth_rate_pct", Description: "Yearly raise without the degree", Default: "6"},
		{Name: "career_duration_years", Description: "Working years compared", Default: "30"},
		{Name: "discount_inflation_rate_pct", Description: "Discount rate in percent (inflation_rate when omitted)", Optional: true},
	},
	run: runHigherEducation,
}

func runHigherEducation(ctx context.Context, s *session) error {
	tuition := s.nonNegative("tuition_fees")
	additional := s.nonNegative("additional_costs")
	loan := s.nonNegative("loan_amount")
	loanYears := s.duration("loan_repayment_period_years")
	programYears := s.duration("program_duration_years")
	opportunityPerYear := s.nonNegative("opportunity_cost_per_year")
	startSalary := s.nonNegative("starting_salary_after_degree")
	salaryGrowth := s.nonNegative("salary_growth_rate_pct")
	baseline := s.nonNegative("baseline_salary_without_degree")
	baselineGrowth := s.nonNegative("baseline_salary_growth_rate_pct")
	career := s.years("career_duration_years")
	loanRate := s.rate(ctx, "loan_interest_rate_pct", rates.KeyLoanRate, rates.Percent(10))
	discount := s.rate(ctx, "discount_inflation_rate_pct", rates.KeyInflationRate, rates.Percent(6))
	if s.err == nil && domain.PercentToRate(discount).LessThanOrEqual(domain.One.Neg()) {
		s.check(domain.InvalidParameter(s.op, "discount_inflation_rate_pct", "discount rate must be above -100%%, got %s", discount))
	}
	if err := s.Err(); err != nil {
		return err
	}

	directCost := tuition.Add(additional)
	loanInterest := decimal.Zero
	loanMonths := int(loanYears.Mul(domain.Twelve).Round(0).IntPart())
	if loan.IsPositive() && loanMonths > 0 {
		emi, err := amortization.ComputeEMI(loan, loanRate, loanMonths)
		if err != nil {
			return err
		}
		_, loanInterest = amortization.TotalRepayment(emi, loanMonths, loan)
	}
	opportunity := opportunityPerYear.Mul(programYears)
	investment := directCost.Add(loanInterest).Add(opportunity)

	g := domain.One.Add(domain.PercentToRate(salaryGrowth))
	bg := domain.One.Add(domain.PercentToRate(baselineGrowth))
	d := domain.One.Add(domain.PercentToRate(discount))
	salary, base, factor := startSalary, baseline, domain.One
	pvExtra := decimal.Zero
	table := s.result.AddTable("earnings", "year", "salary_with_degree", "salary_without_degree", "present_value_of_difference")
	for y := 1; y <= career; y++ {
		factor = finmath.Work(factor.Mul(d))
		pv := finmath.Work(salary.Sub(base).Div(factor))
		pvExtra = pvExtra.Add(pv)
		table.Append(decimal.NewFromInt(int64(y)), domain.RoundCurrency(salary), domain.RoundCurrency(base), domain.RoundCurrency(pv))
		salary = finmath.Work(salary.Mul(g))
		base = finmath.Work(base.Mul(bg))
	}

	s.result.
		Add("total_direct_cost", domain.RoundCurrency(directCost)).
		Add("loan_interest_paid", domain.RoundCurrency(loanInterest)).
		Add("opportunity_cost", domain.RoundCurrency(opportunity)).
		Add("total_investment", domain.RoundCurrency(investment)).
		Add("pv_additional_earnings", domain.RoundCurrency(pvExtra))
	if investment.IsPositive() {
		roi := pvExtra.Sub(investment).Div(investment)
		s.result.Add("roi_percent", domain.RateToPercent(roi).Round(domain.PercentPlaces))
	}
	return nil
}
