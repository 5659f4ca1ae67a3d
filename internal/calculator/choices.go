package calculator

import (
	"context"

	"github.com/rgehrsitz/fincalc/internal/amortization"
	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
)

// growthSum returns amount·((1+rate)^n − 1)/rate, the total of n yearly
// amounts growing at rate, or amount·n when rate is zero
func growthSum(amount, ratePercent decimal.Decimal, n int) (decimal.Decimal, error) {
	return compounding.FutureValueAnnuity(amount, domain.PercentToRate(ratePercent), n, compounding.TimingEnd)
}

var careerBreakCalculator = definition{
	name:        "career_break",
	description: "Earnings lost to a career break and the lasting gap it leaves",
	params: []ParamSpec{
		{Name: "pre_break_salary", Description: "Annual salary before the break", Default: "1200000"},
		{Name: "annual_salary_growth", Description: "Yearly raise had there been no break", Default: "8"},
		{Name: "career_break_years", Description: "Length of the break in years", Default: "2"},
		{Name: "alternative_income", Description: "Income per year during the break", Default: "0"},
		{Name: "expected_salary_on_return", Description: "Annual salary on returning", Default: "1200000"},
		{Name: "post_break_growth", Description: "Yearly raise after returning", Default: "8"},
		{Name: "remaining_career_years", Description: "Working years after the break", Default: "25"},
		{Name: "investment_return_rate", Description: "Return the lost earnings could have made (sip_rate when omitted)", Optional: true},
	},
	run: runCareerBreak,
}

func runCareerBreak(ctx context.Context, s *session) error {
	salary := s.nonNegative("pre_break_salary")
	growth := s.decimal("annual_salary_growth")
	breakYears := s.count("career_break_years")
	alternative := s.nonNegative("alternative_income")
	onReturn := s.nonNegative("expected_salary_on_return")
	postGrowth := s.decimal("post_break_growth")
	remaining := s.count("remaining_career_years")
	if s.err == nil && breakYears+remaining > domain.MaxTermYears {
		s.check(domain.InvalidParameter(s.op, "remaining_career_years", "career must span at most %d years", domain.MaxTermYears))
	}
	ret := s.rate(ctx, "investment_return_rate", rates.KeySIPRate, rates.Percent(10))
	if err := s.Err(); err != nil {
		return err
	}

	projected, err := growthSum(salary, growth, breakYears)
	if err != nil {
		return err
	}
	foregone := projected.Sub(alternative.Mul(decimal.NewFromInt(int64(breakYears))))
	noBreakSalary, err := compounding.FutureValueLumpSum(salary, growth, decimal.NewFromInt(int64(breakYears)))
	if err != nil {
		return err
	}
	gap := noBreakSalary.Sub(onReturn)
	careerImpact, err := growthSum(gap, postGrowth, remaining)
	if err != nil {
		return err
	}
	opportunity, err := growthSum(foregone, ret, remaining)
	if err != nil {
		return err
	}

	s.result.
		Add("foregone_during_break", domain.RoundCurrency(foregone)).
		Add("salary_gap_on_return", domain.RoundCurrency(gap)).
		Add("career_impact", domain.RoundCurrency(careerImpact)).
		Add("opportunity_cost", domain.RoundCurrency(opportunity)).
		Add("total_financial_impact", domain.RoundCurrency(foregone.Add(careerImpact)))
	return nil
}

var dualIncomeCalculator = definition{
	name:        "dual_income",
	description: "Whether a second income still pays once its tax and working costs are counted",
	params: []ParamSpec{
		{Name: "primary_income", Description: "Annual income of the first earner", Default: "1200000"},
		{Name: "secondary_income", Description: "Annual gross income of the second earner", Default: "800000"},
		{Name: "tax_rate_secondary", Description: "Tax on the second income in percent", Default: "20"},
		{Name: "childcare", Description: "Yearly childcare", Default: "120000"},
		{Name: "commuting", Description: "Yearly commuting", Default: "60000"},
		{Name: "meals", Description: "Yearly meals out", Default: "30000"},
		{Name: "wardrobe", Description: "Yearly work clothing", Default: "20000"},
		{Name: "housekeeping", Description: "Yearly paid housekeeping", Default: "60000"},
		{Name: "extra_home", Description: "Other yearly household costs", Default: "20000"},
		{Name: "time_opportunity_cost", Description: "Yearly value of time given up", Default: "50000"},
		{Name: "analysis_years", Description: "Years compared", Default: "10"},
		{Name: "investment_return", Description: "Return on the yearly difference (sip_rate when omitted)", Optional: true},
	},
	run: runDualIncome,
}

var dualIncomeCosts = []string{"childcare", "commuting", "meals", "wardrobe", "housekeeping", "extra_home", "time_opportunity_cost"}

func runDualIncome(ctx context.Context, s *session) error {
	primary := s.nonNegative("primary_income")
	secondary := s.nonNegative("secondary_income")
	tax := s.share("tax_rate_secondary")
	extra := decimal.Zero
	for _, name := range dualIncomeCosts {
		extra = extra.Add(s.nonNegative(name))
	}
	years := s.years("analysis_years")
	ret := s.rate(ctx, "investment_return", rates.KeySIPRate, rates.Percent(10))
	if err := s.Err(); err != nil {
		return err
	}

	secondaryNet := secondary.Mul(domain.One.Sub(domain.PercentToRate(tax)))
	dual := primary.Add(secondaryNet).Sub(extra)
	gain := dual.Sub(primary)
	future, err := growthSum(gain, ret, years)
	if err != nil {
		return err
	}

	s.result.
		Add("secondary_net_income", domain.RoundCurrency(secondaryNet)).
		Add("total_extra_costs", domain.RoundCurrency(extra)).
		Add("dual_income_effective_annual", domain.RoundCurrency(dual)).
		Add("single_income_effective_annual", domain.RoundCurrency(primary)).
		Add("annual_gain_from_second_income", domain.RoundCurrency(gain)).
		Add("future_value_of_annual_gain", domain.RoundCurrency(future))

	return s.compare(
		outcome("Single income", metric("effective_annual", primary)),
		outcome("Dual income", metric("effective_annual", dual)),
		compare.Criterion{Metric: "effective_annual", Goal: compare.Maximize},
	)
}

var taxSavingsCalculator = definition{
	name:        "tax_savings",
	description: "Tax-saving investment with an upfront deduction against a regular taxed investment",
	params: []ParamSpec{
		{Name: "investment_amount", Description: "Amount invested", Default: "150000"},
		{Name: "term_years", Description: "Holding period in years", Default: "5"},
		{Name: "annual_return_tax_saving", Description: "Return of the tax-saving product in percent", Default: "12"},
		{Name: "income_tax_slab", Description: "Marginal income tax in percent", Default: "30"},
		{Name: "annual_return_regular", Description: "Return of the regular investment in percent", Default: "12"},
		{Name: "tax_on_gains", Description: "Tax on regular gains in percent", Default: "10"},
	},
	run: runTaxSavings,
}

func runTaxSavings(_ context.Context, s *session) error {
	amount := s.positive("investment_amount")
	years := s.years("term_years")
	taxSavingReturn := s.nonNegative("annual_return_tax_saving")
	slab := s.share("income_tax_slab")
	regularReturn := s.nonNegative("annual_return_regular")
	gainsTax := s.share("tax_on_gains")
	if err := s.Err(); err != nil {
		return err
	}

	n := decimal.NewFromInt(int64(years))
	deduction := amount.Mul(domain.PercentToRate(slab))
	outOfPocket := amount.Sub(deduction)
	taxSavingValue, err := compounding.FutureValueLumpSum(amount, taxSavingReturn, n)
	if err != nil {
		return err
	}
	taxSavingGain := taxSavingValue.Sub(outOfPocket)

	regularValue, err := compounding.FutureValueLumpSum(amount, regularReturn, n)
	if err != nil {
		return err
	}
	regularGross := regularValue.Sub(amount)
	regularTax := regularGross.Mul(domain.PercentToRate(gainsTax))
	regularGain := regularGross.Sub(regularTax)

	s.result.
		Add("tax_saving_out_of_pocket", domain.RoundCurrency(outOfPocket)).
		Add("immediate_tax_savings", domain.RoundCurrency(deduction)).
		Add("tax_saving_future_value", domain.RoundCurrency(taxSavingValue)).
		Add("tax_saving_net_gain", domain.RoundCurrency(taxSavingGain)).
		Add("regular_future_value_before_tax", domain.RoundCurrency(regularValue)).
		Add("regular_tax_on_gains", domain.RoundCurrency(regularTax)).
		Add("regular_net_gain", domain.RoundCurrency(regularGain))

	return s.compare(
		outcome("Tax-saving", metric("net_gain", taxSavingGain)),
		outcome("Regular", metric("net_gain", regularGain)),
		compare.Criterion{Metric: "net_gain", Goal: compare.Maximize},
	)
}

var twoCarTCOCalculator = definition{
	name:        "two_car_tco",
	description: "Total cost of owning two cars over the same period",
	params: append(carParams("car_a", carDefaults{"1000000", "200000", "15", "15000", "25000", "450000"}),
		append(carParams("car_b", carDefaults{"1400000", "300000", "20", "12000", "35000", "700000"}),
			ParamSpec{Name: "ownership_years", Description: "Years each car is kept", Default: "5"},
		)...),
	run: runTwoCarTCO,
}

type carDefaults struct {
	price, down, efficiency, maintenance, insurance, resale string
}

func carParams(prefix string, d carDefaults) []ParamSpec {
	return []ParamSpec{
		{Name: prefix + "_purchase_price", Description: "On-road price", Default: d.price},
		{Name: prefix + "_down_payment", Description: "Down payment", Default: d.down},
		{Name: prefix + "_interest_rate_percent", Description: "Car loan rate (loan_rate when omitted)", Optional: true},
		{Name: prefix + "_loan_tenure_years", Description: "Loan tenure in years", Default: "5"},
		{Name: prefix + "_fuel_efficiency_km_per_l", Description: "Mileage in km per litre", Default: d.efficiency},
		{Name: prefix + "_annual_distance_km", Description: "Distance driven per year", Default: "12000"},
		{Name: prefix + "_fuel_price_per_l", Description: "Fuel price per litre", Default: "100"},
		{Name: prefix + "_annual_maintenance", Description: "Yearly maintenance", Default: d.maintenance},
		{Name: prefix + "_annual_insurance", Description: "Yearly insurance", Default: d.insurance},
		{Name: prefix + "_resale_value_after_ownership", Description: "Sale price at the end", Default: d.resale},
	}
}

// carCost is the ownership cost of one car
type carCost struct {
	loanPrincipal  decimal.Decimal
	emi            decimal.Decimal
	loanRepayment  decimal.Decimal
	loanInterest   decimal.Decimal
	fuel           decimal.Decimal
	maintenance    decimal.Decimal
	insurance      decimal.Decimal
	depreciation   decimal.Decimal
	totalOwnership decimal.Decimal
}

// carTCO is the cash paid for a car (down payment, loan repayment and
// running costs) less what it sells for
func carTCO(ctx context.Context, s *session, prefix string, years int) (carCost, error) {
	price := s.nonNegative(prefix + "_purchase_price")
	down := s.nonNegative(prefix + "_down_payment")
	tenure := s.duration(prefix + "_loan_tenure_years")
	efficiency := s.nonNegative(prefix + "_fuel_efficiency_km_per_l")
	distance := s.nonNegative(prefix + "_annual_distance_km")
	fuelPrice := s.nonNegative(prefix + "_fuel_price_per_l")
	maintenance := s.nonNegative(prefix + "_annual_maintenance")
	insurance := s.nonNegative(prefix + "_annual_insurance")
	resale := s.nonNegative(prefix + "_resale_value_after_ownership")
	rate := s.rate(ctx, prefix+"_interest_rate_percent", rates.KeyLoanRate, rates.Percent(9))
	if err := s.Err(); err != nil {
		return carCost{}, err
	}

	n := decimal.NewFromInt(int64(years))
	c := carCost{loanPrincipal: domain.MaxDecimal(decimal.Zero, price.Sub(down))}
	months := int(tenure.Mul(domain.Twelve).Round(0).IntPart())
	if months > 0 && c.loanPrincipal.IsPositive() {
		emi, err := amortization.ComputeEMI(c.loanPrincipal, rate, months)
		if err != nil {
			return carCost{}, err
		}
		c.emi = emi
		c.loanRepayment, c.loanInterest = amortization.TotalRepayment(emi, months, c.loanPrincipal)
	}
	if efficiency.IsPositive() {
		c.fuel = distance.Div(efficiency).Mul(fuelPrice).Mul(n)
	}
	c.maintenance = maintenance.Mul(n)
	c.insurance = insurance.Mul(n)
	c.depreciation = price.Sub(resale)
	paid := domain.MinDecimal(down, price)
	if months == 0 {
		// no loan: the whole price is paid upfront
		paid = price
	}
	c.totalOwnership = paid.Add(c.loanRepayment).Add(c.fuel).Add(c.maintenance).Add(c.insurance).Sub(resale)
	return c, nil
}

func runTwoCarTCO(ctx context.Context, s *session) error {
	years := s.years("ownership_years")
	if err := s.Err(); err != nil {
		return err
	}
	a, err := carTCO(ctx, s, "car_a", years)
	if err != nil {
		return err
	}
	b, err := carTCO(ctx, s, "car_b", years)
	if err != nil {
		return err
	}

	table := s.result.AddTable("tco", "car", "loan_principal", "emi", "loan_interest", "fuel", "maintenance", "insurance", "depreciation", "total_cost")
	for _, row := range []struct {
		label string
		c     carCost
	}{{"Car A", a}, {"Car B", b}} {
		table.AppendLabeled(row.label,
			domain.RoundCurrency(row.c.loanPrincipal),
			domain.RoundCurrency(row.c.emi),
			domain.RoundCurrency(row.c.loanInterest),
			domain.RoundCurrency(row.c.fuel),
			domain.RoundCurrency(row.c.maintenance),
			domain.RoundCurrency(row.c.insurance),
			domain.RoundCurrency(row.c.depreciation),
			domain.RoundCurrency(row.c.totalOwnership),
		)
	}
	s.result.
		Add("car_a_total_cost", domain.RoundCurrency(a.totalOwnership)).
		Add("car_b_total_cost", domain.RoundCurrency(b.totalOwnership)).
		Add("difference", domain.RoundCurrency(a.totalOwnership.Sub(b.totalOwnership).Abs()))

	return s.compare(
		outcome("Car A", metric("total_cost", a.totalOwnership), metric("depreciation", a.depreciation)),
		outcome("Car B", metric("total_cost", b.totalOwnership), metric("depreciation", b.depreciation)),
		compare.Criterion{Metric: "total_cost", Goal: compare.Minimize},
	)
}

var currencyDepreciationCalculator = definition{
	name:        "currency_depreciation",
	description: "Local value of a foreign-currency holding after an exchange-rate move",
	params: []ParamSpec{
		{Name: "initial_foreign_amount", Description: "Amount held in the foreign currency", Default: "10000"},
		{Name: "base_exchange_rate", Description: "Local units per foreign unit today", Default: "83"},
		{Name: "future_exchange_rate", Description: "Local units per foreign unit at the horizon", Default: "95"},
		{Name: "annual_investment_growth_rate_percent", Description: "Growth of the holding in its own currency", Default: "0"},
		{Name: "time_horizon_years", Description: "Horizon in years", Default: "5"},
	},
	run: runCurrencyDepreciation,
}

func runCurrencyDepreciation(_ context.Context, s *session) error {
	foreign := s.positive("initial_foreign_amount")
	baseRate := s.positive("base_exchange_rate")
	futureRate := s.nonNegative("future_exchange_rate")
	growth := s.decimal("annual_investment_growth_rate_percent")
	years := s.duration("time_horizon_years")
	if err := s.Err(); err != nil {
		return err
	}

	initialLocal := foreign.Mul(baseRate)
	noGrowth := foreign.Mul(futureRate)
	grownForeign, err := compounding.FutureValueLumpSum(foreign, growth, years)
	if err != nil {
		return err
	}
	withGrowth := grownForeign.Mul(futureRate)
	change := func(v decimal.Decimal) decimal.Decimal {
		return domain.RateToPercent(v.Sub(initialLocal).Div(initialLocal)).Round(domain.PercentPlaces)
	}

	s.result.
		Add("initial_local_value", domain.RoundCurrency(initialLocal)).
		Add("future_local_no_growth", domain.RoundCurrency(noGrowth)).
		Add("net_change_no_growth", domain.RoundCurrency(noGrowth.Sub(initialLocal))).
		Add("net_change_no_growth_percent", change(noGrowth)).
		Add("future_foreign_with_growth", domain.RoundCurrency(grownForeign)).
		Add("future_local_with_growth", domain.RoundCurrency(withGrowth)).
		Add("net_change_with_growth", domain.RoundCurrency(withGrowth.Sub(initialLocal))).
		Add("net_change_with_growth_percent", change(withGrowth))
	return nil
}

var relocationCalculator = definition{
	name:        "relocation",
	description: "Net benefit of moving for a job after tax, cost of living and moving costs",
	params: []ParamSpec{
		{Name: "current_annual_salary", Description: "Gross salary today", Default: "1500000"},
		{Name: "proposed_new_salary", Description: "Gross salary offered", Default: "2000000"},
		{Name: "current_tax_rate_percent", Description: "Effective tax today", Default: "20"},
		{Name: "new_tax_rate_percent", Description: "Effective tax after moving", Default: "22"},
		{Name: "current_col_index", Description: "Cost-of-living index where you live", Default: "100"},
		{Name: "new_col_index", Description: "Cost-of-living index where you would move", Default: "120"},
		{Name: "moving_expenses", Description: "Cost of the move", Default: "100000"},
		{Name: "temporary_housing", Description: "Temporary housing", Default: "60000"},
		{Name: "other_relocation_costs", Description: "Other one-off costs", Default: "40000"},
		{Name: "time_horizon_years", Description: "Years compared", Default: "5"},
		{Name: "expected_annual_investment_return_percent", Description: "Return on the yearly difference (fd_rate when omitted)", Optional: true},
	},
	run: runRelocation,
}

func runRelocation(ctx context.Context, s *session) error {
	current := s.nonNegative("current_annual_salary")
	proposed := s.nonNegative("proposed_new_salary")
	currentTax := s.share("current_tax_rate_percent")
	newTax := s.share("new_tax_rate_percent")
	currentCOL := s.positive("current_col_index")
	newCOL := s.positive("new_col_index")
	moving := s.nonNegative("moving_expenses")
	housing := s.nonNegative("temporary_housing")
	other := s.nonNegative("other_relocation_costs")
	years := s.duration("time_horizon_years")
	ret := s.rate(ctx, "expected_annual_investment_return_percent", rates.KeyFDRate, rates.Percent(7))
	r := domain.PercentToRate(ret)
	if s.err == nil && r.LessThanOrEqual(domain.One.Neg()) {
		s.check(domain.InvalidParameter(s.op, "expected_annual_investment_return_percent", "return must be above -100%%, got %s", ret))
	}
	if err := s.Err(); err != nil {
		return err
	}

	currentNet := current.Mul(domain.One.Sub(domain.PercentToRate(currentTax)))
	adjustedNew := proposed.Mul(currentCOL).Div(newCOL).Mul(domain.One.Sub(domain.PercentToRate(newTax)))
	annualDiff := adjustedNew.Sub(currentNet)
	totalDiff := annualDiff.Mul(years)
	costs := moving.Add(housing).Add(other)
	netBenefit := totalDiff.Sub(costs)

	invested := annualDiff.Mul(years)
	if !r.IsZero() {
		g, err := finmath.GrowthFactor(s.op, r, years)
		if err != nil {
			return err
		}
		invested = annualDiff.Mul(g.Sub(domain.One)).Div(r)
	}

	s.result.
		Add("current_net_salary", domain.RoundCurrency(currentNet)).
		Add("adjusted_new_salary_col_adjusted", domain.RoundCurrency(adjustedNew)).
		Add("annual_salary_difference", domain.RoundCurrency(annualDiff)).
		Add("total_income_difference", domain.RoundCurrency(totalDiff)).
		Add("total_relocation_expenses", domain.RoundCurrency(costs)).
		Add("net_benefit", domain.RoundCurrency(netBenefit)).
		Add("future_value_if_invested", domain.RoundCurrency(invested))

	return s.compare(
		outcome("Stay", metric("net_benefit", decimal.Zero)),
		outcome("Relocate", metric("net_benefit", netBenefit)),
		compare.Criterion{Metric: "net_benefit", Goal: compare.Maximize},
	)
}

var lifestyleHealthROICalculator = definition{
	name:        "lifestyle_health_roi",
	description: "Payback of spending on health through lower medical bills, productivity and a longer career",
	params: []ParamSpec{
		{Name: "monthly_health_investment", Description: "Monthly spend on gym, diet and checkups", Default: "3000"},
		{Name: "current_annual_medical_expenses", Description: "Medical bills per year today", Default: "50000"},
		{Name: "expected_reduction_medical_percent", Description: "Expected drop in medical bills", Default: "30"},
		{Name: "annual_salary", Description: "Annual salary", Default: "1200000"},
		{Name: "estimated_productivity_increase_percent", Description: "Expected productivity gain", Default: "5"},
		{Name: "extra_working_years", Description: "Additional working years from better health", Default: "2"},
		{Name: "avg_annual_earnings_extended_years", Description: "Earnings per extra working year", Default: "1500000"},
		{Name: "analysis_period_years", Description: "Years compared", Default: "20"},
		{Name: "expected_annual_investment_return_percent", Description: "Return on the net benefit (sip_rate when omitted)", Optional: true},
	},
	run: runLifestyleHealthROI,
}

func runLifestyleHealthROI(ctx context.Context, s *session) error {
	monthly := s.nonNegative("monthly_health_investment")
	medical := s.nonNegative("current_annual_medical_expenses")
	reduction := s.share("expected_reduction_medical_percent")
	salary := s.nonNegative("annual_salary")
	productivity := s.share("estimated_productivity_increase_percent")
	extraYears := s.duration("extra_working_years")
	extended := s.nonNegative("avg_annual_earnings_extended_years")
	years := s.years("analysis_period_years")
	ret := s.rate(ctx, "expected_annual_investment_return_percent", rates.KeySIPRate, rates.Percent(8))
	if err := s.Err(); err != nil {
		return err
	}

	medicalSaving := medical.Mul(domain.PercentToRate(reduction))
	productivityGain := salary.Mul(domain.PercentToRate(productivity))
	benefit := medicalSaving.Add(productivityGain)
	net := benefit.Sub(monthly.Mul(domain.Twelve))
	future, err := growthSum(net, ret, years)
	if err != nil {
		return err
	}
	extraEarnings := extraYears.Mul(extended)

	s.result.
		Add("annual_savings_medical", domain.RoundCurrency(medicalSaving)).
		Add("annual_productivity_benefit", domain.RoundCurrency(productivityGain)).
		Add("total_annual_benefit", domain.RoundCurrency(benefit)).
		Add("net_annual_benefit", domain.RoundCurrency(net)).
		Add("future_value_of_net_benefit", domain.RoundCurrency(future)).
		Add("extra_lifetime_earnings", domain.RoundCurrency(extraEarnings)).
		Add("overall_roi_amount", domain.RoundCurrency(future.Add(extraEarnings)))
	return nil
}

var diyVsOutsourceCalculator = definition{
	name:        "diy_vs_outsource",
	description: "Doing a recurring task yourself against paying for it, with the difference invested",
	params: []ParamSpec{
		{Name: "hourly_value", Description: "What an hour of your time is worth", Default: "500"},
		{Name: "time_hours", Description: "Hours the task takes", Default: "3"},
		{Name: "outsource_cost", Description: "Price of having it done", Default: "1500"},
		{Name: "additional_diy_costs", Description: "Materials per DIY session", Default: "100"},
		{Name: "frequency_per_month", Description: "Times per month", Default: "2"},
		{Name: "inflation_rate", Description: "Yearly price growth (inflation_rate when omitted)", Optional: true},
		{Name: "investment_return", Description: "Return on the monthly difference (sip_rate when omitted)", Optional: true},
		{Name: "analysis_years", Description: "Years compared", Default: "10"},
	},
	run: runDIYVsOutsource,
}

func runDIYVsOutsource(ctx context.Context, s *session) error {
	hourly := s.nonNegative("hourly_value")
	hours := s.nonNegative("time_hours")
	outsource := s.nonNegative("outsource_cost")
	materials := s.nonNegative("additional_diy_costs")
	perMonth := s.positiveInt("frequency_per_month")
	years := s.years("analysis_years")
	inflation := s.rate(ctx, "inflation_rate", rates.KeyInflationRate, rates.Percent(6))
	ret := s.rate(ctx, "investment_return", rates.KeySIPRate, rates.Percent(10))
	if err := s.Err(); err != nil {
		return err
	}

	times := decimal.NewFromInt(int64(perMonth))
	diyMonthly := hourly.Mul(hours).Add(materials).Mul(times)
	outsourceMonthly := outsource.Mul(times)
	difference := outsourceMonthly.Sub(diyMonthly)

	// year k's difference, inflated k times, grows monthly until the end
	annual := difference.Mul(domain.Twelve)
	inflate := domain.One.Add(domain.PercentToRate(inflation))
	monthlyGrowth := domain.One.Add(domain.MonthlyRate(ret))
	future := decimal.Zero
	for k := 0; k < years; k++ {
		g, err := finmath.PowInt(s.op, monthlyGrowth, 12*(years-1-k))
		if err != nil {
			return err
		}
		future = future.Add(finmath.Work(annual.Mul(g)))
		annual = finmath.Work(annual.Mul(inflate))
	}

	s.result.
		Add("current_monthly_diy_cost", domain.RoundCurrency(diyMonthly)).
		Add("current_monthly_outsource_cost", domain.RoundCurrency(outsourceMonthly)).
		Add("current_monthly_difference", domain.RoundCurrency(difference)).
		Add("future_value_monthly_savings", domain.RoundCurrency(future))

	return s.compare(
		outcome("DIY", metric("monthly_cost", diyMonthly)),
		outcome("Outsource", metric("monthly_cost", outsourceMonthly)),
		compare.Criterion{Metric: "monthly_cost", Goal: compare.Minimize},
	)
}
