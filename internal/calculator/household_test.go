package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkFromHome(t *testing.T) {
	r := runCalc(t, "work_from_home", Params{
		"working_hours_per_day":      "10",
		"pc_power_watts":             "100",
		"ac_power_watts":             "0",
		"electricity_rate":           "5",
		"monthly_internet_bill":      "0",
		"equipment_cost":             "1200",
		"equipment_lifespan_years":   "1",
		"percent_equipment_for_work": "100",
		"monthly_rent_or_emi":        "1000",
		"percent_space_for_work":     "10",
		"monthly_stationery_cost":    "0",
	})
	assert.True(t, metricOf(t, r, "total_monthly").Equal(decimal.NewFromInt(300)))
	assert.True(t, metricOf(t, r, "total_annual").Equal(decimal.NewFromInt(3600)))
	require.Len(t, r.Tables, 1)
	assert.Len(t, r.Tables[0].Rows, 5, "Should itemise every cost")

	assertRejected(t, "work_from_home", Params{"percent_space_for_work": "150"}, "percent_space_for_work")
}

func TestFuelCost(t *testing.T) {
	p := Params{
		"one_way_distance_km":          "10",
		"fuel_efficiency_kmpl":         "20",
		"fuel_price_per_l":             "100",
		"working_days_per_week":        "5",
		"public_holidays_per_year":     "10",
		"annual_leave_days":            "0",
		"work_from_home_days_per_year": "0",
	}
	r := runCalc(t, "fuel_cost", p)
	assert.True(t, metricOf(t, r, "effective_commute_days_per_year").Equal(decimal.NewFromInt(250)))
	assert.True(t, metricOf(t, r, "daily_fuel_cost").Equal(decimal.NewFromInt(100)))
	assert.True(t, metricOf(t, r, "annual_fuel_cost").Equal(decimal.NewFromInt(25000)))

	p["work_from_home_days_per_year"] = "400"
	r = runCalc(t, "fuel_cost", p)
	assert.True(t, metricOf(t, r, "annual_fuel_cost").IsZero(), "Should floor commute days at zero")

	p["working_days_per_week"] = "8"
	assertRejected(t, "fuel_cost", p, "working_days_per_week")
}

func TestBudgetPlanner(t *testing.T) {
	p := Params{"monthly_income": "1000", "emergency_fund": "100"}
	for _, name := range append(budgetFixed, budgetVariable...) {
		p[name] = "0"
	}
	p["rent"] = "500"

	r := runCalc(t, "budget_planner", p)
	assert.True(t, metricOf(t, r, "total_expenses").Equal(decimal.NewFromInt(600)))
	assert.True(t, metricOf(t, r, "total_savings").Equal(decimal.NewFromInt(400)))
	assert.True(t, metricOf(t, r, "savings_percent").Equal(decimal.NewFromInt(40)))
}

func TestPricePerUse(t *testing.T) {
	r := runCalc(t, "price_per_use", Params{"items": "Coat|100|20|12; Mug|10||5"})
	assert.True(t, metricOf(t, r, "items").Equal(decimal.NewFromInt(2)))
	assert.True(t, metricOf(t, r, "lowest_price_per_use").Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "Mug", r.Notes["best_value"])

	r = runCalc(t, "price_per_use", Params{"items": "Lamp|40"})
	assert.True(t, metricOf(t, r, "lowest_price_per_use").Equal(decimal.NewFromInt(40)), "Should assume one use")

	for _, bad := range []string{"Coat|abc", "Coat|10|0|0", "Coat", ";"} {
		assertRejected(t, "price_per_use", Params{"items": bad}, "items")
	}
}

func TestTimeValueHour(t *testing.T) {
	p := Params{
		"annual_salary":   "208000",
		"hours_per_day":   "8",
		"days_per_week":   "5",
		"leave_days":      "0",
		"public_holidays": "0",
	}
	r := runCalc(t, "time_value_hour", p)
	assert.True(t, metricOf(t, r, "total_working_hours").Equal(decimal.NewFromInt(2080)))
	assert.True(t, metricOf(t, r, "hourly_value").Equal(decimal.NewFromInt(100)))

	p["leave_days"] = "300"
	assertRejected(t, "time_value_hour", p, "leave_days")
}

func TestSocialMediaTime(t *testing.T) {
	p := Params{
		"daily_social_media_minutes": "60",
		"daily_sleep_hours":          "8",
		"daily_chores_hours":         "0",
		"current_age_years":          "30",
		"expected_lifespan_years":    "40",
		"hourly_earning_potential":   "10",
	}
	r := runCalc(t, "social_media_time", p)
	assert.True(t, metricOf(t, r, "lifetime_social_media_hours").Equal(decimal.NewFromInt(3650)))
	assert.True(t, metricOf(t, r, "opportunity_cost").Equal(decimal.NewFromInt(36500)))
	assert.True(t, metricOf(t, r, "skills_could_have_learned").Equal(decimal.NewFromInt(73)))

	p["current_age_years"] = "50"
	r = runCalc(t, "social_media_time", p)
	assert.True(t, metricOf(t, r, "lifetime_social_media_hours").IsZero(), "Should count nothing past the expected lifespan")

	p["expected_lifespan_years"] = "200"
	assertRejected(t, "social_media_time", p, "expected_lifespan_years")
}
