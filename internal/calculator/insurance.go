package calculator

import (
	"context"

	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/rgehrsitz/fincalc/internal/irr"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
)

var licPolicyCalculator = definition{
	name:        "lic_policy",
	description: "Net yearly return of an endowment policy paying the sum assured at maturity",
	params: []ParamSpec{
		{Name: "premium_amount", Description: "Premium per payment", Default: "50000"},
		{Name: "premium_frequency", Description: "yearly or monthly", Default: "yearly"},
		{Name: "premium_is_annual", Description: "premium_amount is a yearly figure split into monthly payments", Default: "false"},
		{Name: "policy_term_years", Description: "Years premiums are paid", Default: "20"},
		{Name: "sum_assured", Description: "Maturity payout", Default: "1500000"},
		{Name: "expected_inflation_percent", Description: "Inflation in percent (inflation_rate when omitted)", Optional: true},
	},
	run: runLICPolicy,
}

func runLICPolicy(ctx context.Context, s *session) error {
	premium := s.positive("premium_amount")
	freq := s.oneOf("premium_frequency", "yearly", "monthly")
	premiumIsAnnual := s.boolean("premium_is_annual")
	years := s.years("policy_term_years")
	sumAssured := s.nonNegative("sum_assured")
	inflation := s.rate(ctx, "expected_inflation_percent", rates.KeyInflationRate, rates.Percent(6))
	if err := s.Err(); err != nil {
		return err
	}

	perYear := 1
	if freq == "monthly" {
		perYear = 12
		if premiumIsAnnual {
			premium = premium.Div(domain.Twelve)
		}
	}
	periods := years * perYear

	flows := make([]irr.CashFlow, periods)
	for t := range flows {
		flows[t] = irr.CashFlow{Period: t + 1, Amount: premium.Neg()}
	}
	flows[periods-1].Amount = flows[periods-1].Amount.Add(sumAssured)

	totalPremium := premium.Mul(decimal.NewFromInt(int64(periods)))
	return s.policyReturn(ctx, flows, perYear, years, totalPremium, sumAssured, inflation)
}

var insurancePolicyCalculator = definition{
	name:        "insurance_policy",
	description: "Net yearly return of a policy whose premium term is shorter than its policy term",
	params: []ParamSpec{
		{Name: "premium_amount", Description: "Premium per payment", Default: "50000"},
		{Name: "premium_frequency", Description: "yearly, quarterly or monthly", Default: "yearly"},
		{Name: "premium_paying_term_years", Description: "Years premiums are paid", Default: "10"},
		{Name: "total_policy_term_years", Description: "Years until the sum assured is paid", Default: "20"},
		{Name: "sum_assured", Description: "Maturity payout", Default: "1500000"},
		{Name: "expected_inflation_percent", Description: "Inflation in percent (inflation_rate when omitted)", Optional: true},
	},
	run: runInsurancePolicy,
}

func runInsurancePolicy(ctx context.Context, s *session) error {
	premium := s.positive("premium_amount")
	freq := s.oneOf("premium_frequency", "yearly", "quarterly", "monthly")
	payingYears := s.years("premium_paying_term_years")
	totalYears := s.years("total_policy_term_years")
	sumAssured := s.nonNegative("sum_assured")
	if s.err == nil && payingYears > totalYears {
		s.check(domain.InvalidParameter(s.op, "premium_paying_term_years",
			"premium paying term %d exceeds the policy term %d", payingYears, totalYears))
	}
	inflation := s.rate(ctx, "expected_inflation_percent", rates.KeyInflationRate, nil)
	if err := s.Err(); err != nil {
		return err
	}

	perYear, _ := domain.Frequency(freq).PeriodsPerYear()
	paying := payingYears * perYear
	total := totalYears * perYear

	flows := make([]irr.CashFlow, 0, paying+1)
	for t := 0; t < paying; t++ {
		flows = append(flows, irr.CashFlow{Period: t, Amount: premium.Neg()})
	}
	flows = append(flows, irr.CashFlow{Period: total, Amount: sumAssured})

	totalPremium := premium.Mul(decimal.NewFromInt(int64(paying)))
	s.result.Add("premium_paying_periods", decimal.NewFromInt(int64(paying)))
	return s.policyReturn(ctx, flows, perYear, totalYears, totalPremium, sumAssured, inflation)
}

// policyReturn solves the IRR of a premium stream and reports it with the
// inflation-adjusted value of the payout
func (s *session) policyReturn(ctx context.Context, flows []irr.CashFlow, perYear, years int, totalPremium, sumAssured, inflation decimal.Decimal) error {
	i := domain.PercentToRate(inflation)
	if i.LessThanOrEqual(domain.One.Neg()) {
		return domain.InvalidParameter(s.op, "expected_inflation_percent", "inflation must be above -100%%, got %s", inflation)
	}

	res, err := irr.NewDefaultSolver().Solve(ctx, flows)
	if err != nil {
		return err
	}
	annual, err := irr.Annualize(res.Rate, perYear)
	if err != nil {
		return err
	}
	realRate, err := compounding.RealRate(annual, i)
	if err != nil {
		return err
	}
	deflator, err := finmath.PowInt(s.op, domain.One.Add(i), years)
	if err != nil {
		return err
	}
	pvSumAssured := finmath.Work(sumAssured.Div(deflator))

	s.result.
		Add("total_premium_paid", domain.RoundCurrency(totalPremium)).
		Add("sum_assured", domain.RoundCurrency(sumAssured)).
		Add("net_gain", domain.RoundCurrency(sumAssured.Sub(totalPremium))).
		Add("periodic_irr", domain.RateToPercent(res.Rate).Round(domain.SolvedRatePlaces)).
		Add("annual_irr", domain.RateToPercent(annual).Round(domain.PercentPlaces)).
		Add("equivalent_sip_return", domain.RateToPercent(annual).Round(domain.PercentPlaces)).
		Add("real_return", domain.RateToPercent(realRate).Round(domain.PercentPlaces)).
		Add("pv_of_sum_assured", domain.RoundCurrency(pvSumAssured))
	s.result.Note("irr_method", string(res.Method))
	return nil
}
