package calculator

import (
	"context"

	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
)

var emiInflationCalculator = definition{
	name:        "emi_inflation",
	description: "Present value of a fixed EMI eroded by inflation",
	params: []ParamSpec{
		{Name: "monthly_emi", Description: "Instalment paid every month", Default: "25000"},
		{Name: "years", Description: "Number of years the EMI is paid", Default: "20"},
		{Name: "mode", Description: "yearly: discount once a year; monthly: discount every month", Default: "yearly"},
		{Name: "inflation", Description: "Annual inflation in percent (inflation_rate when omitted)", Optional: true},
	},
	run: runEMIInflation,
}

func runEMIInflation(ctx context.Context, s *session) error {
	emi := s.positive("monthly_emi")
	years := s.years("years")
	mode := s.oneOf("mode", "yearly", "monthly")
	inflation := s.rate(ctx, "inflation", rates.KeyInflationRate, nil)
	i := domain.PercentToRate(inflation)
	if s.err == nil && i.LessThanOrEqual(domain.One.Neg()) {
		s.check(domain.InvalidParameter(s.op, "inflation", "inflation must be above -100%%, got %s", inflation))
	}
	if err := s.Err(); err != nil {
		return err
	}

	table := s.result.AddTable("yearly", "year", "paid", "present_value")
	yearPaid := emi.Mul(domain.Twelve)
	totalPaid, totalPV := decimal.Zero, decimal.Zero

	switch mode {
	case "yearly":
		for y := 1; y <= years; y++ {
			g, err := finmath.PowInt(s.op, domain.One.Add(i), y)
			if err != nil {
				return err
			}
			pv := finmath.Work(yearPaid.Div(g))
			totalPaid = totalPaid.Add(yearPaid)
			totalPV = totalPV.Add(pv)
			table.Append(decimal.NewFromInt(int64(y)), domain.RoundCurrency(yearPaid), domain.RoundCurrency(pv))
		}
	default:
		growth := domain.One.Add(i.Div(domain.Twelve))
		factor := domain.One
		for y := 1; y <= years; y++ {
			pv := decimal.Zero
			for m := 0; m < 12; m++ {
				factor = finmath.Work(factor.Mul(growth))
				pv = pv.Add(finmath.Work(emi.Div(factor)))
			}
			totalPaid = totalPaid.Add(yearPaid)
			totalPV = totalPV.Add(pv)
			table.Append(decimal.NewFromInt(int64(y)), domain.RoundCurrency(yearPaid), domain.RoundCurrency(pv))
		}
	}

	s.result.
		Add("total_paid", domain.RoundCurrency(totalPaid)).
		Add("present_value", domain.RoundCurrency(totalPV)).
		Add("inflation_erosion", domain.RoundCurrency(totalPaid.Sub(totalPV)))
	return nil
}

var emiVsRentCalculator = definition{
	name:        "emi_vs_rent",
	description: "Inflation-adjusted cost of paying an EMI versus renting",
	params: []ParamSpec{
		{Name: "monthly_emi", Description: "Current monthly EMI", Default: "10000"},
		{Name: "inflation_rate", Description: "Annual inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "monthly_rent", Description: "Current monthly rent", Default: "15000"},
		{Name: "expected_rent_increment", Description: "Annual rent increase in percent", Default: "3"},
		{Name: "analysis_period", Description: "Years to project", Default: "5"},
	},
	run: runEMIVsRent,
}

func runEMIVsRent(ctx context.Context, s *session) error {
	currentEMI := s.nonNegative("monthly_emi")
	currentRent := s.nonNegative("monthly_rent")
	increment := s.nonNegative("expected_rent_increment")
	years := s.years("analysis_period")
	inflation := s.rate(ctx, "inflation_rate", rates.KeyInflationRate, rates.Percent(5))
	if s.err == nil && inflation.IsNegative() {
		s.check(domain.InvalidParameter(s.op, "inflation_rate", "inflation must not be negative, got %s", inflation))
	}
	if err := s.Err(); err != nil {
		return err
	}

	emiGrowth := domain.One.Add(domain.MonthlyRate(inflation))
	rentGrowth := domain.One.Add(domain.MonthlyRate(increment))

	table := s.result.AddTable("projection", "year", "monthly_emi", "monthly_rent")
	totalEMI, totalRent, pvEMI, pvRent := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	discount := domain.One
	for month := 1; month <= years*12; month++ {
		discount = finmath.Work(discount.Mul(emiGrowth))
		totalEMI = totalEMI.Add(currentEMI)
		totalRent = totalRent.Add(currentRent)
		pvEMI = pvEMI.Add(finmath.Work(currentEMI.Div(discount)))
		pvRent = pvRent.Add(finmath.Work(currentRent.Div(discount)))
		if month%12 == 0 {
			table.Append(decimal.NewFromInt(int64(month/12)), domain.RoundCurrency(currentEMI), domain.RoundCurrency(currentRent))
		}
		currentEMI = finmath.Work(currentEMI.Mul(emiGrowth))
		currentRent = finmath.Work(currentRent.Mul(rentGrowth))
	}

	s.result.
		Add("total_emi_paid", domain.RoundCurrency(totalEMI)).
		Add("total_rent_paid", domain.RoundCurrency(totalRent)).
		Add("pv_of_all_emi", domain.RoundCurrency(pvEMI)).
		Add("pv_of_all_rent", domain.RoundCurrency(pvRent))

	return s.compare(
		outcome("EMI", metric("present_cost", pvEMI), metric("total_paid", totalEMI)),
		outcome("Rent", metric("present_cost", pvRent), metric("total_paid", totalRent)),
		compare.Criterion{Metric: "present_cost", Goal: compare.Minimize},
	)
}

var futureValueCalculator = definition{
	name:        "future_value",
	description: "Bank balance grown at a deposit rate against the cost of keeping up with inflation",
	params: []ParamSpec{
		{Name: "present_balance", Description: "Amount today", Default: "100000"},
		{Name: "bank_rate", Description: "Annual deposit rate in percent (fd_rate when omitted)", Optional: true},
		{Name: "inflation_rate", Description: "Annual inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "years", Description: "Horizon in years", Default: "10"},
	},
	run: runFutureValue,
}

func runFutureValue(ctx context.Context, s *session) error {
	balance := s.positive("present_balance")
	years := s.years("years")
	bankRate := s.rate(ctx, "bank_rate", rates.KeyFDRate, rates.Percent(7))
	inflation := s.rate(ctx, "inflation_rate", rates.KeyInflationRate, rates.Percent(6))
	if err := s.Err(); err != nil {
		return err
	}

	n := decimal.NewFromInt(int64(years))
	nominal, err := compounding.FutureValueLumpSum(balance, bankRate, n)
	if err != nil {
		return err
	}
	costToMatch, err := compounding.FutureValueLumpSum(balance, inflation, n)
	if err != nil {
		return err
	}
	realRate, err := compounding.RealRate(domain.PercentToRate(bankRate), domain.PercentToRate(inflation))
	if err != nil {
		return err
	}
	// today's money: nominal deflated by the inflation path
	deflated := finmath.Work(nominal.Mul(balance).Div(costToMatch))

	s.result.
		Add("future_value", domain.RoundCurrency(nominal)).
		Add("cost_to_match_inflation", domain.RoundCurrency(costToMatch)).
		Add("inflation_adjusted_value", domain.RoundCurrency(deflated)).
		Add("shortfall", domain.RoundCurrency(costToMatch.Sub(nominal))).
		Add("real_rate", domain.RateToPercent(realRate).Round(domain.PercentPlaces))
	return nil
}

var realReturnCalculator = definition{
	name:        "real_return",
	description: "Return left after tax and inflation",
	params: []ParamSpec{
		{Name: "investment_amount", Description: "Amount invested", Default: "100000"},
		{Name: "annual_return_rate", Description: "Nominal annual return in percent", Default: "10"},
		{Name: "annual_inflation_rate", Description: "Annual inflation in percent (inflation_rate when omitted)", Optional: true},
		{Name: "tax_rate_on_returns", Description: "Tax on returns in percent", Default: "20"},
		{Name: "duration", Description: "Investment duration", Default: "5"},
		{Name: "duration_unit", Description: "years or months", Default: "years"},
	},
	run: runRealReturn,
}

func runRealReturn(ctx context.Context, s *session) error {
	amount := s.nonNegative("investment_amount")
	nominal := s.decimal("annual_return_rate")
	tax := s.nonNegative("tax_rate_on_returns")
	if s.err == nil && tax.GreaterThan(domain.Hundred) {
		s.check(domain.InvalidParameter(s.op, "tax_rate_on_returns", "tax must not exceed 100%%, got %s", tax))
	}
	duration := s.nonNegative("duration")
	unit, err := domain.ParseTermUnit(s.str("duration_unit"))
	s.check(err)
	inflation := s.rate(ctx, "annual_inflation_rate", rates.KeyInflationRate, rates.Percent(6))
	if err := s.Err(); err != nil {
		return err
	}

	afterTax := domain.PercentToRate(nominal).Mul(domain.One.Sub(domain.PercentToRate(tax)))
	i := domain.PercentToRate(inflation)

	var growth, deflator, realRate decimal.Decimal
	if unit == domain.TermMonths {
		ma, mi := afterTax.Div(domain.Twelve), i.Div(domain.Twelve)
		if growth, err = finmath.Pow(s.op, domain.One.Add(ma), duration); err != nil {
			return err
		}
		if deflator, err = finmath.Pow(s.op, domain.One.Add(mi), duration); err != nil {
			return err
		}
		annual, err := finmath.PowInt(s.op, domain.One.Add(ma).Div(domain.One.Add(mi)), 12)
		if err != nil {
			return err
		}
		realRate = annual.Sub(domain.One)
	} else {
		if growth, err = finmath.GrowthFactor(s.op, afterTax, duration); err != nil {
			return err
		}
		if deflator, err = finmath.GrowthFactor(s.op, i, duration); err != nil {
			return err
		}
		if realRate, err = compounding.RealRate(afterTax, i); err != nil {
			return err
		}
	}

	future := finmath.Work(amount.Mul(growth))
	realFuture := finmath.Work(future.Div(deflator))

	s.result.
		Add("after_tax_return", domain.RateToPercent(afterTax).Round(domain.PercentPlaces)).
		Add("real_return_rate", domain.RateToPercent(realRate).Round(domain.PercentPlaces)).
		Add("future_value", domain.RoundCurrency(future)).
		Add("real_future_value", domain.RoundCurrency(realFuture)).
		Add("nominal_gain", domain.RoundCurrency(future.Sub(amount))).
		Add("real_gain", domain.RoundCurrency(realFuture.Sub(amount)))
	return nil
}
