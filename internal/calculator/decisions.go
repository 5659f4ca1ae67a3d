package calculator

import (
	"context"

	"github.com/rgehrsitz/fincalc/internal/amortization"
	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/simulation"
	"github.com/shopspring/decimal"
)

var chitVsMFCalculator = definition{
	name:        "chit_vs_mf",
	description: "Chit fund dividend against a mutual fund SIP of the same instalment",
	params: []ParamSpec{
		{Name: "monthly_chit_amount", Description: "Monthly chit subscription", Default: "10000"},
		{Name: "number_of_members", Description: "Members in the chit group", Default: "20"},
		{Name: "duration_months", Description: "Chit duration in months", Default: "20"},
		{Name: "organizer_commission_percent", Description: "Organizer commission on the pot in percent", Default: "5"},
		{Name: "expected_bid_discount_percent", Description: "Average bid discount on the pot in percent", Default: "20"},
		{Name: "expected_annual_return_percent", Description: "Fund return in percent (sip_rate when omitted)", Optional: true},
		{Name: "expense_ratio_percent", Description: "Fund expense ratio in percent", Default: "1"},
		{Name: "monthly_sip_amount", Description: "SIP instalment (defaults to the chit amount)", Optional: true},
	},
	run: runChitVsMF,
}

func runChitVsMF(ctx context.Context, s *session) error {
	chit := s.positive("monthly_chit_amount")
	members := s.integer("number_of_members")
	if s.err == nil && members < 2 {
		s.check(domain.InvalidParameter(s.op, "number_of_members", "a chit needs at least 2 members, got %d", members))
	}
	months := s.months("duration_months")
	commissionPct := s.nonNegative("organizer_commission_percent")
	bidPct := s.nonNegative("expected_bid_discount_percent")
	expense := s.nonNegative("expense_ratio_percent")
	sip := chit
	if custom := s.optionalDecimal("monthly_sip_amount"); custom != nil {
		sip = *custom
	}
	fundReturn := s.rate(ctx, "expected_annual_return_percent", rates.KeySIPRate, rates.Percent(12))
	if err := s.Err(); err != nil {
		return err
	}
	if sip.IsNegative() {
		return domain.InvalidParameter(s.op, "monthly_sip_amount", "instalment must not be negative, got %s", sip)
	}

	n := decimal.NewFromInt(int64(months))
	pot := chit.Mul(decimal.NewFromInt(int64(members)))
	commission := pot.Mul(domain.PercentToRate(commissionPct))
	bidDiscount := pot.Mul(domain.PercentToRate(bidPct))
	share := bidDiscount.Div(decimal.NewFromInt(int64(members - 1)))
	dividend := share.Mul(n)
	chitInvested := chit.Mul(n)
	chitGain := dividend.Sub(commission)
	chitEffective := chitGain.Div(chitInvested).Mul(domain.Hundred)

	monthly := domain.MonthlyRate(fundReturn.Sub(expense))
	sipValue, err := compounding.FutureValueAnnuity(sip, monthly, months, compounding.TimingStart)
	if err != nil {
		return err
	}
	sipInvested := sip.Mul(n)
	sipGain := sipValue.Sub(sipInvested)
	sipEffective := decimal.Zero
	if sipInvested.IsPositive() {
		cagr, err := compounding.CAGR(sipInvested, sipValue, n.Div(domain.Twelve))
		if err != nil {
			return err
		}
		sipEffective = domain.RateToPercent(cagr)
	}

	s.result.
		Add("chit_pot", domain.RoundCurrency(pot)).
		Add("chit_commission", domain.RoundCurrency(commission)).
		Add("chit_dividend", domain.RoundCurrency(dividend)).
		Add("chit_invested", domain.RoundCurrency(chitInvested)).
		Add("chit_net_gain", domain.RoundCurrency(chitGain)).
		Add("chit_effective_percent", chitEffective.Round(domain.PercentPlaces)).
		Add("sip_invested", domain.RoundCurrency(sipInvested)).
		Add("sip_future_value", domain.RoundCurrency(sipValue)).
		Add("sip_gain", domain.RoundCurrency(sipGain)).
		Add("sip_effective_percent", sipEffective.Round(domain.PercentPlaces))

	return s.compare(
		outcome("Chit fund", metric("gain", chitGain), metric("invested", chitInvested)),
		outcome("Mutual fund SIP", metric("gain", sipGain), metric("invested", sipInvested)),
		compare.Criterion{Metric: "gain", Goal: compare.Maximize},
	)
}

var dividendVsGrowthCalculator = definition{
	name:        "dividend_vs_growth",
	description: "Taxed dividend income against taxed capital growth",
	params: []ParamSpec{
		{Name: "initial_investment", Description: "Amount invested", Default: "100000"},
		{Name: "investment_horizon_years", Description: "Horizon in years, rounded to whole years", Default: "8"},
		{Name: "annual_dividend_yield_percent", Description: "Dividend yield on the initial investment", Default: "4"},
		{Name: "dividend_growth_rate_percent", Description: "Yearly growth of the dividend", Default: "5"},
		{Name: "dividend_tax_rate_percent", Description: "Tax on dividends", Default: "15"},
		{Name: "capital_growth_rate_percent", Description: "Yearly price growth", Default: "8"},
		{Name: "capital_gains_tax_rate_percent", Description: "Tax on the capital gain at exit", Default: "10"},
	},
	run: runDividendVsGrowth,
}

func runDividendVsGrowth(_ context.Context, s *session) error {
	principal := s.positive("initial_investment")
	horizon := s.positive("investment_horizon_years")
	yield := s.decimal("annual_dividend_yield_percent")
	divGrowth := s.decimal("dividend_growth_rate_percent")
	divTax := s.nonNegative("dividend_tax_rate_percent")
	capGrowth := s.decimal("capital_growth_rate_percent")
	cgTax := s.nonNegative("capital_gains_tax_rate_percent")
	if err := s.Err(); err != nil {
		return err
	}
	for name, v := range map[string]decimal.Decimal{"dividend_tax_rate_percent": divTax, "capital_gains_tax_rate_percent": cgTax} {
		if v.GreaterThan(domain.Hundred) {
			return domain.InvalidParameter(s.op, name, "tax must not exceed 100%%, got %s", v)
		}
	}
	n := int(horizon.Round(0).IntPart())
	if n < 1 {
		return domain.InvalidParameter(s.op, "investment_horizon_years", "horizon must round to at least one year, got %s", horizon)
	}
	years := decimal.NewFromInt(int64(n))

	principalEnd, err := compounding.FutureValueLumpSum(principal, capGrowth, years)
	if err != nil {
		return err
	}
	// dividends grow yearly from principal·yield: a growing annuity over n years
	dividendsPreTax, err := compounding.FutureValueAnnuity(principal.Mul(domain.PercentToRate(yield)), domain.PercentToRate(divGrowth), n, compounding.TimingEnd)
	if err != nil {
		return err
	}
	dividendsPostTax := dividendsPreTax.Mul(domain.One.Sub(domain.PercentToRate(divTax)))
	dividendValue := principalEnd.Add(dividendsPostTax)

	growthTax := principalEnd.Sub(principal).Mul(domain.PercentToRate(cgTax))
	growthValue := principalEnd.Sub(growthTax)

	dividendCAGR, err := compounding.CAGR(principal, dividendValue, years)
	if err != nil {
		return err
	}
	growthCAGR, err := compounding.CAGR(principal, growthValue, years)
	if err != nil {
		return err
	}

	s.result.
		Add("dividend_total_pre_tax", domain.RoundCurrency(dividendsPreTax)).
		Add("dividend_total_post_tax", domain.RoundCurrency(dividendsPostTax)).
		Add("dividend_net_future_value", domain.RoundCurrency(dividendValue)).
		Add("dividend_effective_return", domain.RateToPercent(dividendCAGR).Round(domain.PercentPlaces)).
		Add("growth_tax_on_gain", domain.RoundCurrency(growthTax)).
		Add("growth_net_future_value", domain.RoundCurrency(growthValue)).
		Add("growth_effective_return", domain.RateToPercent(growthCAGR).Round(domain.PercentPlaces))

	return s.compare(
		outcome("Dividend", metric("net_future_value", dividendValue)),
		outcome("Growth", metric("net_future_value", growthValue)),
		compare.Criterion{Metric: "net_future_value", Goal: compare.Maximize},
	)
}

var carLeaseVsBuyCalculator = definition{
	name:        "car_lease_vs_buy",
	description: "Net cost of leasing a car against buying it with a loan",
	params: []ParamSpec{
		{Name: "car_price", Description: "On-road price", Default: "1000000"},
		{Name: "analysis_period_years", Description: "Years compared", Default: "5"},
		{Name: "opportunity_cost_percent", Description: "Return on cash not tied up in the car", Default: "7"},
		{Name: "lease_deposit", Description: "Refundable lease deposit", Default: "50000"},
		{Name: "lease_monthly_payment", Description: "Monthly lease rental", Default: "20000"},
		{Name: "lease_annual_maintenance", Description: "Maintenance paid while leasing", Default: "0"},
		{Name: "buy_down_payment", Description: "Down payment when buying", Default: "200000"},
		{Name: "buy_loan_interest_rate_percent", Description: "Car loan rate (loan_rate when omitted)", Optional: true},
		{Name: "buy_loan_tenure_years", Description: "Car loan tenure in years", Default: "5"},
		{Name: "buy_annual_maintenance", Description: "Maintenance paid when owning", Default: "15000"},
		{Name: "buy_annual_depreciation_percent", Description: "Yearly depreciation on book value", Default: "15"},
	},
	run: runCarLeaseVsBuy,
}

func runCarLeaseVsBuy(ctx context.Context, s *session) error {
	price := s.nonNegative("car_price")
	years := s.years("analysis_period_years")
	opportunity := s.nonNegative("opportunity_cost_percent")
	deposit := s.nonNegative("lease_deposit")
	leaseMonthly := s.nonNegative("lease_monthly_payment")
	leaseMaintenance := s.nonNegative("lease_annual_maintenance")
	down := s.nonNegative("buy_down_payment")
	tenure := s.duration("buy_loan_tenure_years")
	buyMaintenance := s.nonNegative("buy_annual_maintenance")
	depreciation := s.nonNegative("buy_annual_depreciation_percent")
	if s.err == nil && depreciation.GreaterThan(domain.Hundred) {
		s.check(domain.InvalidParameter(s.op, "buy_annual_depreciation_percent", "depreciation must not exceed 100%%, got %s", depreciation))
	}
	loanRate := s.rate(ctx, "buy_loan_interest_rate_percent", rates.KeyLoanRate, rates.Percent(9))
	if err := s.Err(); err != nil {
		return err
	}

	n := decimal.NewFromInt(int64(years))
	leasePayments := deposit.Add(leaseMonthly.Mul(decimal.NewFromInt(int64(years * 12))))
	leaseMaintenanceTotal := leaseMaintenance.Mul(n)
	growth, err := finmath.GrowthFactor(s.op, domain.PercentToRate(opportunity), n)
	if err != nil {
		return err
	}
	// negative when the deposit exceeds the down payment
	opportunityBenefit := down.Sub(deposit).Mul(growth.Sub(domain.One))
	leaseNet := leasePayments.Add(leaseMaintenanceTotal).Sub(opportunityBenefit)

	loanPrincipal := domain.MaxDecimal(decimal.Zero, price.Sub(down))
	loanMonths := int(tenure.Mul(domain.Twelve).Round(0).IntPart())
	emi, totalRepayment := decimal.Zero, decimal.Zero
	if loanMonths > 0 && loanPrincipal.IsPositive() {
		if emi, err = amortization.ComputeEMI(loanPrincipal, loanRate, loanMonths); err != nil {
			return err
		}
		totalRepayment, _ = amortization.TotalRepayment(emi, loanMonths, loanPrincipal)
	}
	buyMaintenanceTotal := buyMaintenance.Mul(n)
	resale, err := finmath.GrowthFactor(s.op, domain.PercentToRate(depreciation).Neg(), n)
	if err != nil {
		return err
	}
	resale = price.Mul(resale)
	buyNet := down.Add(totalRepayment).Add(buyMaintenanceTotal).Sub(resale)

	s.result.
		Add("lease_total_payments", domain.RoundCurrency(leasePayments)).
		Add("lease_maintenance", domain.RoundCurrency(leaseMaintenanceTotal)).
		Add("lease_opportunity_benefit", domain.RoundCurrency(opportunityBenefit)).
		Add("lease_net_cost", domain.RoundCurrency(leaseNet)).
		Add("buy_loan_principal", domain.RoundCurrency(loanPrincipal)).
		Add("buy_emi", domain.RoundCurrency(emi)).
		Add("buy_total_loan_repayment", domain.RoundCurrency(totalRepayment)).
		Add("buy_maintenance", domain.RoundCurrency(buyMaintenanceTotal)).
		Add("buy_resale_value", domain.RoundCurrency(resale)).
		Add("buy_net_cost", domain.RoundCurrency(buyNet))

	return s.compare(
		outcome("Lease", metric("net_cost", leaseNet)),
		outcome("Buy", metric("net_cost", buyNet)),
		compare.Criterion{Metric: "net_cost", Goal: compare.Minimize},
	)
}

var jobSwitchCalculator = definition{
	name:        "job_switch",
	description: "Lifetime earnings of staying in one job against switching periodically",
	params: []ParamSpec{
		{Name: "stable_current_annual_salary", Description: "Salary in the current job", Default: "1200000"},
		{Name: "stable_annual_increment_percent", Description: "Yearly raise in the current job", Default: "8"},
		{Name: "stable_annual_bonus", Description: "Yearly bonus in the current job", Default: "100000"},
		{Name: "switch_starting_annual_salary", Description: "Salary after the first switch", Default: "1400000"},
		{Name: "switch_salary_increase_percent", Description: "Raise gained at every further switch", Default: "20"},
		{Name: "switch_number_of_switches", Description: "Switches over the period", Default: "3"},
		{Name: "switch_avg_duration_per_job_years", Description: "Average years per job (at least 0.1)", Default: "2.5"},
		{Name: "switch_bonus_per_switch", Description: "Joining bonus per switch", Default: "50000"},
		{Name: "analysis_period_years", Description: "Years compared", Default: "10"},
		{Name: "expected_annual_investment_return_pct", Description: "Return on invested income, reported only (loan_rate when omitted)", Optional: true},
	},
	run: runJobSwitch,
}

func runJobSwitch(ctx context.Context, s *session) error {
	plan := simulation.JobSwitchPlan{
		StableSalary:           s.nonNegative("stable_current_annual_salary"),
		StableIncrementPercent: s.nonNegative("stable_annual_increment_percent"),
		StableBonus:            s.nonNegative("stable_annual_bonus"),
		SwitchStartSalary:      s.nonNegative("switch_starting_annual_salary"),
		SwitchIncreasePercent:  s.nonNegative("switch_salary_increase_percent"),
		Switches:               s.integer("switch_number_of_switches"),
		AvgJobYears:            s.decimal("switch_avg_duration_per_job_years"),
		SwitchBonus:            s.nonNegative("switch_bonus_per_switch"),
		Years:                  s.years("analysis_period_years"),
	}
	expectedReturn := s.rate(ctx, "expected_annual_investment_return_pct", rates.KeyLoanRate, rates.Percent(8))
	if err := s.Err(); err != nil {
		return err
	}

	res, err := simulation.JobSwitchIncome(plan)
	if err != nil {
		return err
	}

	s.result.
		Add("stable_total_income", domain.RoundCurrency(res.StableTotal)).
		Add("switch_total_income", domain.RoundCurrency(res.SwitchTotal)).
		Add("difference", domain.RoundCurrency(res.Difference)).
		Add("annual_difference", domain.RoundCurrency(res.AnnualDifference)).
		Add("switches_made", decimal.NewFromInt(int64(res.SwitchesMade))).
		Add("expected_annual_investment_return_pct", expectedReturn)

	return s.compare(
		outcome("Stay", metric("total_income", res.StableTotal)),
		outcome("Switch", metric("total_income", res.SwitchTotal)),
		compare.Criterion{Metric: "total_income", Goal: compare.Maximize},
	)
}
