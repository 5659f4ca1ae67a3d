package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCareerBreak(t *testing.T) {
	p := Params{
		"pre_break_salary":          "100",
		"annual_salary_growth":      "0",
		"career_break_years":        "2",
		"alternative_income":        "0",
		"expected_salary_on_return": "100",
		"post_break_growth":         "0",
		"remaining_career_years":    "3",
		"investment_return_rate":    "0",
	}
	r := runCalc(t, "career_break", p)
	assert.True(t, metricOf(t, r, "foregone_during_break").Equal(decimal.NewFromInt(200)))
	assert.True(t, metricOf(t, r, "career_impact").IsZero(), "Should see no gap when pay resumes at the same level")
	assert.True(t, metricOf(t, r, "opportunity_cost").Equal(decimal.NewFromInt(600)))

	p["career_break_years"] = "50"
	p["remaining_career_years"] = "60"
	assertRejected(t, "career_break", p, "remaining_career_years")
}

func TestDualIncome_CostsOutweighSecondIncome(t *testing.T) {
	p := Params{
		"primary_income":     "100",
		"secondary_income":   "100",
		"tax_rate_secondary": "50",
		"investment_return":  "0",
	}
	for _, name := range dualIncomeCosts {
		p[name] = "0"
	}
	p["childcare"] = "60"

	r := runCalc(t, "dual_income", p)
	assert.True(t, metricOf(t, r, "secondary_net_income").Equal(decimal.NewFromInt(50)))
	assert.True(t, metricOf(t, r, "annual_gain_from_second_income").Equal(decimal.NewFromInt(-10)))
	assert.Equal(t, "Single income", r.Notes["recommendation"])

	p["tax_rate_secondary"] = "120"
	assertRejected(t, "dual_income", p, "tax_rate_secondary")
}

func TestTaxSavings(t *testing.T) {
	r := runCalc(t, "tax_savings", Params{
		"investment_amount":        "100",
		"term_years":               "1",
		"annual_return_tax_saving": "10",
		"income_tax_slab":          "30",
		"annual_return_regular":    "10",
		"tax_on_gains":             "10",
	})
	assert.True(t, metricOf(t, r, "immediate_tax_savings").Equal(decimal.NewFromInt(30)))
	assert.True(t, metricOf(t, r, "tax_saving_net_gain").Equal(decimal.NewFromInt(40)))
	assert.True(t, metricOf(t, r, "regular_net_gain").Equal(decimal.NewFromInt(9)))
	assert.Equal(t, "Tax-saving", r.Notes["recommendation"])
}

func carInputs(p Params, prefix, price, resale string) {
	p[prefix+"_purchase_price"] = price
	p[prefix+"_down_payment"] = price
	p[prefix+"_loan_tenure_years"] = "0"
	p[prefix+"_fuel_efficiency_km_per_l"] = "10"
	p[prefix+"_annual_distance_km"] = "100"
	p[prefix+"_fuel_price_per_l"] = "1"
	p[prefix+"_annual_maintenance"] = "0"
	p[prefix+"_annual_insurance"] = "0"
	p[prefix+"_resale_value_after_ownership"] = resale
}

func TestTwoCarTCO(t *testing.T) {
	p := Params{"ownership_years": "1"}
	carInputs(p, "car_a", "100", "50")
	carInputs(p, "car_b", "200", "50")

	r := runCalc(t, "two_car_tco", p)
	assert.True(t, metricOf(t, r, "car_a_total_cost").Equal(decimal.NewFromInt(60)), "Should net resale against price and fuel")
	assert.True(t, metricOf(t, r, "car_b_total_cost").Equal(decimal.NewFromInt(160)))
	assert.True(t, metricOf(t, r, "difference").Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Car A", r.Notes["recommendation"])

	p["car_b_down_payment"] = "100"
	p["car_b_loan_tenure_years"] = "1"
	p["car_b_interest_rate_percent"] = "0"
	r = runCalc(t, "two_car_tco", p)
	assert.True(t, metricOf(t, r, "car_b_total_cost").Equal(decimal.NewFromInt(160)), "Should count a zero-rate loan at face value")
}

func TestCurrencyDepreciation(t *testing.T) {
	p := Params{
		"initial_foreign_amount":                "100",
		"base_exchange_rate":                    "80",
		"future_exchange_rate":                  "100",
		"annual_investment_growth_rate_percent": "0",
		"time_horizon_years":                    "1",
	}
	r := runCalc(t, "currency_depreciation", p)
	assert.True(t, metricOf(t, r, "initial_local_value").Equal(decimal.NewFromInt(8000)))
	assert.True(t, metricOf(t, r, "net_change_no_growth").Equal(decimal.NewFromInt(2000)))
	assert.True(t, metricOf(t, r, "net_change_no_growth_percent").Equal(decimal.NewFromInt(25)))

	p["base_exchange_rate"] = "0"
	assertRejected(t, "currency_depreciation", p, "base_exchange_rate")
}

func TestRelocation_CostOfLivingEatsRaise(t *testing.T) {
	r := runCalc(t, "relocation", Params{
		"current_annual_salary":                     "100",
		"proposed_new_salary":                       "100",
		"current_tax_rate_percent":                  "0",
		"new_tax_rate_percent":                      "0",
		"current_col_index":                         "100",
		"new_col_index":                             "200",
		"moving_expenses":                           "0",
		"temporary_housing":                         "0",
		"other_relocation_costs":                    "0",
		"time_horizon_years":                        "2",
		"expected_annual_investment_return_percent": "0",
	})
	assert.True(t, metricOf(t, r, "adjusted_new_salary_col_adjusted").Equal(decimal.NewFromInt(50)))
	assert.True(t, metricOf(t, r, "net_benefit").Equal(decimal.NewFromInt(-100)))
	assert.True(t, metricOf(t, r, "future_value_if_invested").Equal(decimal.NewFromInt(-100)))
	assert.Equal(t, "Stay", r.Notes["recommendation"])
}

func TestLifestyleHealthROI(t *testing.T) {
	r := runCalc(t, "lifestyle_health_roi", Params{
		"monthly_health_investment":                 "10",
		"current_annual_medical_expenses":           "1000",
		"expected_reduction_medical_percent":        "50",
		"annual_salary":                             "0",
		"estimated_productivity_increase_percent":   "0",
		"extra_working_years":                       "0",
		"analysis_period_years":                     "1",
		"expected_annual_investment_return_percent": "0",
	})
	assert.True(t, metricOf(t, r, "net_annual_benefit").Equal(decimal.NewFromInt(380)))
	assert.True(t, metricOf(t, r, "overall_roi_amount").Equal(decimal.NewFromInt(380)))
}

func TestDIYVsOutsource(t *testing.T) {
	r := runCalc(t, "diy_vs_outsource", Params{
		"hourly_value":         "100",
		"time_hours":           "1",
		"outsource_cost":       "150",
		"additional_diy_costs": "0",
		"frequency_per_month":  "1",
		"inflation_rate":       "0",
		"investment_return":    "0",
		"analysis_years":       "1",
	})
	assert.True(t, metricOf(t, r, "current_monthly_difference").Equal(decimal.NewFromInt(50)))
	assert.True(t, metricOf(t, r, "future_value_monthly_savings").Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "DIY", r.Notes["recommendation"])
}
