package calculator

import (
	"context"
	"strconv"
	"strings"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	weeksPerYear     = decimal.NewFromInt(52)
	daysPerYear      = decimal.NewFromInt(365)
	hoursPerDay      = decimal.NewFromInt(24)
	minutesPerHour   = decimal.NewFromInt(60)
	wattsPerKilowatt = decimal.NewFromInt(1000)
	hoursPerYear     = hoursPerDay.Mul(daysPerYear)
)

// wfhDaysPerMonth is the working days assumed in a month of home working
const wfhDaysPerMonth = 20

var workFromHomeCalculator = definition{
	name:        "work_from_home",
	description: "Monthly and yearly cost of working from home",
	params: []ParamSpec{
		{Name: "working_hours_per_day", Description: "Hours worked per day", Default: "8"},
		{Name: "pc_power_watts", Description: "Computer power draw", Default: "150"},
		{Name: "ac_power_watts", Description: "Air conditioner power draw", Default: "0"},
		{Name: "electricity_rate", Description: "Price per kWh", Default: "8"},
		{Name: "monthly_internet_bill", Description: "Internet bill per month", Default: "1000"},
		{Name: "percent_internet_for_work", Description: "Share of the internet used for work", Default: "60"},
		{Name: "equipment_cost", Description: "Desk, chair and peripherals", Default: "60000"},
		{Name: "equipment_lifespan_years", Description: "Years the equipment lasts", Default: "5"},
		{Name: "percent_equipment_for_work", Description: "Share of the equipment used for work", Default: "100"},
		{Name: "monthly_rent_or_emi", Description: "Rent or home loan EMI", Default: "25000"},
		{Name: "percent_space_for_work", Description: "Share of the home used as an office", Default: "10"},
		{Name: "monthly_stationery_cost", Description: "Stationery and supplies per month", Default: "500"},
	},
	run: runWorkFromHome,
}

func runWorkFromHome(_ context.Context, s *session) error {
	hours := s.nonNegative("working_hours_per_day")
	if s.err == nil && hours.GreaterThan(hoursPerDay) {
		s.check(domain.InvalidParameter(s.op, "working_hours_per_day", "must not exceed 24, got %s", hours))
	}
	watts := s.nonNegative("pc_power_watts").Add(s.nonNegative("ac_power_watts"))
	tariff := s.nonNegative("electricity_rate")
	internet := s.nonNegative("monthly_internet_bill")
	internetShare := s.share("percent_internet_for_work")
	equipment := s.nonNegative("equipment_cost")
	lifespan := s.positive("equipment_lifespan_years")
	equipmentShare := s.share("percent_equipment_for_work")
	rent := s.nonNegative("monthly_rent_or_emi")
	spaceShare := s.share("percent_space_for_work")
	stationery := s.nonNegative("monthly_stationery_cost")
	if err := s.Err(); err != nil {
		return err
	}

	kwh := watts.Mul(hours).Mul(decimal.NewFromInt(wfhDaysPerMonth)).Div(wattsPerKilowatt)
	lines := []struct {
		name    string
		monthly decimal.Decimal
	}{
		{"electricity", kwh.Mul(tariff)},
		{"internet", internet.Mul(domain.PercentToRate(internetShare))},
		{"equipment_depreciation", equipment.Mul(domain.PercentToRate(equipmentShare)).Div(lifespan.Mul(domain.Twelve))},
		{"home_office_space", rent.Mul(domain.PercentToRate(spaceShare))},
		{"additional_expenses", stationery},
	}

	table := s.result.AddTable("costs", "item", "monthly", "annual")
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.monthly)
		table.AppendLabeled(l.name, domain.RoundCurrency(l.monthly), domain.RoundCurrency(l.monthly.Mul(domain.Twelve)))
	}
	s.result.
		Add("total_monthly", domain.RoundCurrency(total)).
		Add("total_annual", domain.RoundCurrency(total.Mul(domain.Twelve)))
	return nil
}

var fuelCostCalculator = definition{
	name:        "fuel_cost",
	description: "Fuel spent on the daily commute",
	params: []ParamSpec{
		{Name: "one_way_distance_km", Description: "Distance from home to work", Default: "15"},
		{Name: "fuel_efficiency_kmpl", Description: "Mileage in km per litre", Default: "15"},
		{Name: "fuel_price_per_l", Description: "Fuel price per litre", Default: "100"},
		{Name: "working_days_per_week", Description: "Working days per week (1 to 7)", Default: "5"},
		{Name: "public_holidays_per_year", Description: "Public holidays", Default: "10"},
		{Name: "annual_leave_days", Description: "Leave days taken", Default: "20"},
		{Name: "work_from_home_days_per_year", Description: "Days worked from home", Default: "0"},
	},
	run: runFuelCost,
}

func runFuelCost(_ context.Context, s *session) error {
	distance := s.nonNegative("one_way_distance_km")
	efficiency := s.positive("fuel_efficiency_kmpl")
	price := s.nonNegative("fuel_price_per_l")
	perWeek := s.positiveInt("working_days_per_week")
	if s.err == nil && perWeek > 7 {
		s.check(domain.InvalidParameter(s.op, "working_days_per_week", "must be at most 7, got %d", perWeek))
	}
	holidays := s.count("public_holidays_per_year")
	leave := s.count("annual_leave_days")
	wfh := s.count("work_from_home_days_per_year")
	if err := s.Err(); err != nil {
		return err
	}

	days := perWeek*52 - holidays - leave - wfh
	if days < 0 {
		days = 0
	}
	litres := distance.Mul(decimal.NewFromInt(2)).Div(efficiency)
	daily := litres.Mul(price)
	annual := daily.Mul(decimal.NewFromInt(int64(days)))

	s.result.
		Add("effective_commute_days_per_year", decimal.NewFromInt(int64(days))).
		Add("fuel_needed_per_day_l", litres.Round(2)).
		Add("daily_fuel_cost", domain.RoundCurrency(daily)).
		Add("monthly_fuel_cost", domain.RoundCurrency(annual.Div(domain.Twelve))).
		Add("annual_fuel_cost", domain.RoundCurrency(annual))
	return nil
}

var (
	budgetFixed    = []string{"rent", "utilities", "loans", "insurance", "subscriptions"}
	budgetVariable = []string{"groceries", "transport", "dining", "shopping", "medical", "education", "miscellaneous"}
)

var budgetPlannerCalculator = definition{
	name:        "budget_planner",
	description: "Monthly budget split into fixed, variable and emergency spending",
	params: []ParamSpec{
		{Name: "monthly_income", Description: "Take-home income per month", Default: "100000"},
		{Name: "rent", Description: "Rent", Default: "25000"},
		{Name: "utilities", Description: "Utilities", Default: "4000"},
		{Name: "loans", Description: "Loan repayments", Default: "10000"},
		{Name: "insurance", Description: "Insurance premiums", Default: "3000"},
		{Name: "subscriptions", Description: "Subscriptions", Default: "1000"},
		{Name: "groceries", Description: "Groceries", Default: "10000"},
		{Name: "transport", Description: "Transport", Default: "5000"},
		{Name: "dining", Description: "Eating out", Default: "4000"},
		{Name: "shopping", Description: "Shopping", Default: "5000"},
		{Name: "medical", Description: "Medical", Default: "2000"},
		{Name: "education", Description: "Education", Default: "3000"},
		{Name: "miscellaneous", Description: "Everything else", Default: "3000"},
		{Name: "emergency_fund", Description: "Monthly top-up of the emergency fund", Default: "5000"},
	},
	run: runBudgetPlanner,
}

func runBudgetPlanner(_ context.Context, s *session) error {
	income := s.nonNegative("monthly_income")
	sum := func(names []string) decimal.Decimal {
		total := decimal.Zero
		for _, name := range names {
			total = total.Add(s.nonNegative(name))
		}
		return total
	}
	fixed := sum(budgetFixed)
	variable := sum(budgetVariable)
	emergency := s.nonNegative("emergency_fund")
	if err := s.Err(); err != nil {
		return err
	}

	expenses := fixed.Add(variable).Add(emergency)
	savings := income.Sub(expenses)
	shareOf := func(v decimal.Decimal) decimal.Decimal {
		if !income.IsPositive() {
			return decimal.Zero
		}
		return domain.RateToPercent(v.Div(income)).Round(domain.PercentPlaces)
	}

	table := s.result.AddTable("breakdown", "category", "amount", "percent_of_income")
	for _, row := range []struct {
		label  string
		amount decimal.Decimal
	}{{"fixed", fixed}, {"variable", variable}, {"emergency_fund", emergency}, {"remaining", savings}} {
		table.AppendLabeled(row.label, domain.RoundCurrency(row.amount), shareOf(row.amount))
	}
	s.result.
		Add("total_fixed_expenses", domain.RoundCurrency(fixed)).
		Add("total_variable_expenses", domain.RoundCurrency(variable)).
		Add("total_expenses", domain.RoundCurrency(expenses)).
		Add("total_savings", domain.RoundCurrency(savings)).
		Add("savings_percent", shareOf(savings))
	return nil
}

var pricePerUseCalculator = definition{
	name:        "price_per_use",
	description: "Cost per use of one or more purchases",
	params: []ParamSpec{
		{Name: "items", Description: "name|price|additional_costs|uses entries separated by ;", Default: "Jacket|6000|500|100;Shoes|3000|0|300"},
	},
	run: runPricePerUse,
}

type useItem struct {
	name       string
	price      decimal.Decimal
	additional decimal.Decimal
	uses       int
}

// parseItems decodes "name|price|additional|uses;..."; a missing use count
// means a single use
func parseItems(op, raw string, r *reader) []useItem {
	if r.err != nil {
		return nil
	}
	var items []useItem
	for i, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, "|")
		if len(fields) < 2 || len(fields) > 4 {
			r.check(domain.InvalidParameter(op, "items", "entry %d: expected name|price|additional_costs|uses, got %q", i+1, entry))
			return nil
		}
		for len(fields) < 4 {
			fields = append(fields, "")
		}
		item := useItem{name: strings.TrimSpace(fields[0]), uses: 1}
		if item.name == "" {
			item.name = "Item " + strconv.Itoa(i+1)
		}
		for j, dst := range []*decimal.Decimal{&item.price, &item.additional} {
			field := strings.TrimSpace(fields[j+1])
			if field == "" {
				continue
			}
			v, err := decimal.NewFromString(field)
			if err != nil || v.IsNegative() {
				r.check(domain.InvalidParameter(op, "items", "entry %d: invalid amount %q", i+1, field))
				return nil
			}
			*dst = v
		}
		if field := strings.TrimSpace(fields[3]); field != "" {
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 {
				r.check(domain.InvalidParameter(op, "items", "entry %d: uses must be a whole number of at least 1, got %q", i+1, field))
				return nil
			}
			item.uses = n
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		r.check(domain.InvalidParameter(op, "items", "at least one item is required"))
	}
	return items
}

func runPricePerUse(_ context.Context, s *session) error {
	items := parseItems(s.op, s.str("items"), &s.reader)
	if err := s.Err(); err != nil {
		return err
	}

	table := s.result.AddTable("items", "item", "purchase_price", "additional_costs", "uses", "total_cost", "price_per_use")
	cheapest := -1
	var cheapestPerUse decimal.Decimal
	for i, item := range items {
		total := item.price.Add(item.additional)
		perUse := total.Div(decimal.NewFromInt(int64(item.uses)))
		table.AppendLabeled(item.name,
			domain.RoundCurrency(item.price),
			domain.RoundCurrency(item.additional),
			decimal.NewFromInt(int64(item.uses)),
			domain.RoundCurrency(total),
			domain.RoundCurrency(perUse),
		)
		if cheapest < 0 || perUse.LessThan(cheapestPerUse) {
			cheapest, cheapestPerUse = i, perUse
		}
	}
	s.result.
		Add("items", decimal.NewFromInt(int64(len(items)))).
		Add("lowest_price_per_use", domain.RoundCurrency(cheapestPerUse))
	s.result.Note("best_value", items[cheapest].name)
	return nil
}

var timeValueHourCalculator = definition{
	name:        "time_value_hour",
	description: "What one working hour is worth given salary and working time",
	params: []ParamSpec{
		{Name: "annual_salary", Description: "Gross annual salary", Default: "1200000"},
		{Name: "hours_per_day", Description: "Working hours per day", Default: "8"},
		{Name: "days_per_week", Description: "Working days per week", Default: "5"},
		{Name: "leave_days", Description: "Leave days per year", Default: "20"},
		{Name: "public_holidays", Description: "Public holidays per year", Default: "10"},
	},
	run: runTimeValueHour,
}

func runTimeValueHour(_ context.Context, s *session) error {
	salary := s.nonNegative("annual_salary")
	hours := s.positive("hours_per_day")
	perWeek := s.positive("days_per_week")
	leave := s.nonNegative("leave_days")
	holidays := s.nonNegative("public_holidays")
	if s.err == nil && (hours.GreaterThan(hoursPerDay) || perWeek.GreaterThan(decimal.NewFromInt(7))) {
		s.check(domain.InvalidParameter(s.op, "hours_per_day", "working time must fit in a week, got %s hours on %s days", hours, perWeek))
	}
	if err := s.Err(); err != nil {
		return err
	}

	days := weeksPerYear.Mul(perWeek).Sub(leave).Sub(holidays)
	if !days.IsPositive() {
		return domain.InvalidParameter(s.op, "leave_days", "leave and holidays leave no working days")
	}
	workingHours := days.Mul(hours)

	s.result.
		Add("total_working_days", days).
		Add("total_working_hours", workingHours).
		Add("hourly_value", domain.RoundCurrency(salary.Div(workingHours)))
	return nil
}

// hours needed per book read, skill learned and marathon trained for
var (
	hoursPerBook     = decimal.NewFromInt(20)
	hoursPerSkill    = decimal.NewFromInt(50)
	hoursPerMarathon = decimal.NewFromInt(150)
)

var socialMediaTimeCalculator = definition{
	name:        "social_media_time",
	description: "Lifetime hours spent on social media and what they could have earned",
	params: []ParamSpec{
		{Name: "daily_social_media_minutes", Description: "Minutes per day on social media", Default: "120"},
		{Name: "daily_sleep_hours", Description: "Hours of sleep per day", Default: "8"},
		{Name: "daily_chores_hours", Description: "Hours of chores per day", Default: "2"},
		{Name: "current_age_years", Description: "Current age", Default: "25"},
		{Name: "expected_lifespan_years", Description: "Expected lifespan", Default: "80"},
		{Name: "hourly_earning_potential", Description: "What an hour could earn", Default: "500"},
	},
	run: runSocialMediaTime,
}

func runSocialMediaTime(_ context.Context, s *session) error {
	socialHours := s.nonNegative("daily_social_media_minutes").Div(minutesPerHour)
	sleep := s.nonNegative("daily_sleep_hours")
	chores := s.nonNegative("daily_chores_hours")
	age := s.count("current_age_years")
	lifespan := s.positiveInt("expected_lifespan_years")
	hourly := s.nonNegative("hourly_earning_potential")
	if s.err == nil && socialHours.Add(sleep).Add(chores).GreaterThan(hoursPerDay) {
		s.check(domain.InvalidParameter(s.op, "daily_social_media_minutes", "daily hours add up to more than 24"))
	}
	if s.err == nil && (age > maxAge || lifespan > maxAge) {
		s.check(domain.InvalidParameter(s.op, "expected_lifespan_years", "ages must be at most %d", maxAge))
	}
	if err := s.Err(); err != nil {
		return err
	}

	remaining := decimal.NewFromInt(int64(max(0, lifespan-age)))
	lifetime := func(daily decimal.Decimal) decimal.Decimal {
		return daily.Mul(daysPerYear).Mul(remaining)
	}
	social := lifetime(socialHours)
	committed := social.Add(lifetime(sleep)).Add(lifetime(chores))
	free := remaining.Mul(hoursPerYear).Sub(committed)

	s.result.
		Add("annual_social_media_hours", socialHours.Mul(daysPerYear).Round(1)).
		Add("lifetime_social_media_hours", social.Round(1)).
		Add("lifetime_social_media_years", social.Div(hoursPerYear).Round(2)).
		Add("opportunity_cost", domain.RoundCurrency(social.Mul(hourly))).
		Add("lifetime_sleeping_years", lifetime(sleep).Div(hoursPerYear).Round(2)).
		Add("lifetime_chores_years", lifetime(chores).Div(hoursPerYear).Round(2)).
		Add("free_time_years", free.Div(hoursPerYear).Round(2)).
		Add("books_could_have_read", social.Div(hoursPerBook).Round(0)).
		Add("skills_could_have_learned", social.Div(hoursPerSkill).Round(0)).
		Add("marathons_trained", social.Div(hoursPerMarathon).Round(0))
	return nil
}
