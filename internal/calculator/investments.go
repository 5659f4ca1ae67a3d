package calculator

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/simulation"
	"github.com/shopspring/decimal"
)

var sipCalculator = definition{
	name:        "sip",
	description: "Maturity value of a systematic investment plan with an optional lump sum",
	params: []ParamSpec{
		{Name: "deposit", Description: "Instalment per period", Default: "5000"},
		{Name: "annual_rate", Description: "Expected annual return in percent (sip_rate when omitted)", Optional: true},
		{Name: "years", Description: "Investment horizon in years", Default: "10"},
		{Name: "frequency", Description: "weekly, monthly, quarterly, half-yearly or yearly", Default: "monthly"},
		{Name: "lumpsum", Description: "Amount invested on day one", Default: "0"},
	},
	run: runSIP,
}

func runSIP(ctx context.Context, s *session) error {
	deposit := s.positive("deposit")
	years := s.positive("years")
	lumpSum := s.nonNegative("lumpsum")
	freq, err := domain.ParseFrequency(s.str("frequency"))
	s.check(err)
	rate := s.rate(ctx, "annual_rate", rates.KeySIPRate, rates.Percent(12))
	if err := s.Err(); err != nil {
		return err
	}

	res, err := compounding.SIP(deposit, rate, years, freq, lumpSum)
	if err != nil {
		return err
	}
	s.result.
		Add("invested", domain.RoundCurrency(res.Invested)).
		Add("sip_value", domain.RoundCurrency(res.SIPValue)).
		Add("lumpsum_value", domain.RoundCurrency(res.LumpSumValue)).
		Add("maturity_value", domain.RoundCurrency(res.MaturityValue)).
		Add("estimated_returns", domain.RoundCurrency(res.EstimatedReturns))
	return nil
}

var swpCalculator = definition{
	name:        "swp",
	description: "Systematic withdrawal from a corpus with yearly adjustment of the withdrawal",
	params: []ParamSpec{
		{Name: "lump_sum_deposit", Description: "Starting corpus", Default: "1000000"},
		{Name: "regular_withdrawal", Description: "Amount withdrawn per period", Default: "10000"},
		{Name: "withdrawal_frequency", Description: "monthly, quarterly, half-yearly or yearly", Default: "monthly"},
		{Name: "annual_withdrawal_adjustment", Description: "Yearly change of the withdrawal", Default: "0"},
		{Name: "adjustment_type", Description: "percent or flat (rupee)", Default: "percent"},
		{Name: "expected_annual_return", Description: "Annual return in percent (swp_rate, then loan_rate)", Optional: true},
		{Name: "withdrawal_term", Description: "Length of the plan", Default: "10"},
		{Name: "term_unit", Description: "years or months", Default: "years"},
		{Name: "include_year_wise", Description: "Attach the year-wise table", Default: "true"},
	},
	run: runSWP,
}

func runSWP(ctx context.Context, s *session) error {
	principal := s.nonNegative("lump_sum_deposit")
	withdrawal := s.nonNegative("regular_withdrawal")
	adjustment := s.decimal("annual_withdrawal_adjustment")
	term := s.positive("withdrawal_term")
	yearWise := s.boolean("include_year_wise")
	freq, err := domain.ParseFrequency(s.str("withdrawal_frequency"))
	s.check(err)
	adjType, err := simulation.ParseAdjustmentType(s.str("adjustment_type"))
	s.check(err)
	unit, err := domain.ParseTermUnit(s.str("term_unit"))
	s.check(err)
	annualReturn := s.rate(ctx, "expected_annual_return", rates.KeySWPRate, nil, rates.KeyLoanRate)
	if s.err == nil && annualReturn.IsNegative() {
		s.check(domain.InvalidParameter(s.op, "expected_annual_return", "return must not be negative, got %s", annualReturn))
	}
	if err := s.Err(); err != nil {
		return err
	}

	perYear, _ := freq.PeriodsPerYear()
	if freq == domain.Weekly {
		return domain.InvalidParameter(s.op, "withdrawal_frequency", "weekly withdrawals are not supported")
	}
	years := term
	if unit == domain.TermMonths {
		years = term.Div(domain.Twelve)
	}
	if years.GreaterThan(decimal.NewFromInt(domain.MaxTermYears)) {
		return domain.InvalidParameter(s.op, "withdrawal_term", "term must be at most %d years, got %s %s", domain.MaxTermYears, term, unit)
	}
	periods := int(years.Mul(decimal.NewFromInt(int64(perYear))).Round(0).IntPart())
	if periods < 1 {
		return domain.InvalidParameter(s.op, "withdrawal_term", "term %s %s gives no withdrawal period", term, unit)
	}

	periodic, err := simulation.EffectivePeriodicRate(annualReturn, perYear)
	if err != nil {
		return err
	}
	res, err := simulation.SystematicWithdrawal(simulation.WithdrawalPlan{
		Principal:        principal,
		Withdrawal:       withdrawal,
		PeriodicRate:     periodic,
		PeriodsPerYear:   perYear,
		TotalPeriods:     periods,
		AnnualAdjustment: adjustment,
		AdjustmentType:   adjType,
	})
	if err != nil {
		return err
	}

	s.result.
		Add("final_balance", domain.RoundCurrency(res.FinalBalance)).
		Add("total_withdrawals", domain.RoundCurrency(res.TotalWithdrawn)).
		Add("total_returns", domain.RoundCurrency(res.TotalReturns)).
		Add("periods_elapsed", decimal.NewFromInt(int64(res.PeriodsElapsed))).
		Add("periods_total", decimal.NewFromInt(int64(periods))).
		Add("periods_per_year", decimal.NewFromInt(int64(perYear))).
		Add("effective_periodic_rate", domain.RateToPercent(periodic).Round(domain.PeriodicRatePlaces))

	if res.Exhausted {
		s.result.Note("status", fmt.Sprintf("corpus exhausted after %s year(s)", res.YearsElapsed(perYear).StringFixed(2)))
	} else {
		s.result.Note("status", "corpus lasts the full term")
	}

	if yearWise {
		table := s.result.AddTable("year_wise", "year", "starting_balance", "total_withdrawn", "total_returns", "ending_balance")
		for _, y := range res.Years {
			table.Append(
				decimal.NewFromInt(int64(y.Year)),
				domain.RoundCurrency(y.StartBalance),
				domain.RoundCurrency(y.Withdrawn),
				domain.RoundCurrency(y.Returns),
				domain.RoundCurrency(y.EndBalance),
			)
		}
	}
	return nil
}

var compoundInterestCalculator = definition{
	name:        "compound_interest",
	description: "Lump sum plus regular deposits compounding at an independent frequency",
	params: []ParamSpec{
		{Name: "lump_sum", Description: "Initial deposit", Default: "100000"},
		{Name: "regular_deposit", Description: "Amount deposited every deposit period", Default: "5000"},
		{Name: "deposit_frequency", Description: "Deposits per year (1, 2, 4, 12 or 52)", Default: "12"},
		{Name: "interest_rate", Description: "Annual rate in percent (interest_rate when omitted)", Optional: true},
		{Name: "term_length", Description: "Length of the plan", Default: "10"},
		{Name: "term_type", Description: "years or months", Default: "years"},
		{Name: "compounding_frequency", Description: "Compounding periods per year (1, 2, 4, 12 or 52)", Default: "12"},
		{Name: "deposit_at", Description: "start or end of each deposit period", Default: "start"},
		{Name: "skip_first_deposit", Description: "Skip the first scheduled deposit", Default: "false"},
	},
	run: runCompoundInterest,
}

func runCompoundInterest(ctx context.Context, s *session) error {
	lumpSum := s.nonNegative("lump_sum")
	deposit := s.nonNegative("regular_deposit")
	depositFreq := s.positiveInt("deposit_frequency")
	compoundFreq := s.positiveInt("compounding_frequency")
	term := s.positive("term_length")
	skipFirst := s.boolean("skip_first_deposit")
	unit, err := domain.ParseTermUnit(s.str("term_type"))
	s.check(err)
	timing, err := compounding.ParseTiming(s.str("deposit_at"))
	s.check(err)
	rate := s.rate(ctx, "interest_rate", rates.KeyInterestRate, rates.Percent(8))
	if err := s.Err(); err != nil {
		return err
	}

	years := term
	if unit == domain.TermMonths {
		years = term.Div(domain.Twelve)
	}
	res, err := compounding.SimulateSteppedCompounding(compounding.Plan{
		Principal:            lumpSum,
		PeriodicDeposit:      deposit,
		DepositFrequency:     depositFreq,
		CompoundingFrequency: compoundFreq,
		Years:                years,
		AnnualRatePercent:    rate,
		Timing:               timing,
		SkipFirstDeposit:     skipFirst,
	})
	if err != nil {
		return err
	}

	s.result.
		Add("maturity_value", domain.RoundCurrency(res.MaturityValue)).
		Add("total_deposited", domain.RoundCurrency(res.TotalDeposited)).
		Add("total_interest", domain.RoundCurrency(res.TotalInterest)).
		Add("deposits_made", decimal.NewFromInt(int64(res.Deposits))).
		Add("steps_per_year", decimal.NewFromInt(int64(res.StepsPerYear)))

	table := s.result.AddTable("year_wise", "year", "total_deposit", "total_interest", "balance")
	for _, y := range res.Years {
		table.Append(y.Year, domain.RoundCurrency(y.TotalDeposit), domain.RoundCurrency(y.TotalInterest), domain.RoundCurrency(y.Balance))
	}
	return nil
}

var simpleInterestCalculator = definition{
	name:        "simple_interest",
	description: "Interest without compounding",
	params: []ParamSpec{
		{Name: "principal", Description: "Amount invested or borrowed", Default: "100000"},
		{Name: "annual_interest_rate", Description: "Annual rate in percent (interest_rate when omitted)", Optional: true},
		{Name: "term", Description: "Length of the term", Default: "5"},
		{Name: "term_unit", Description: "years or months", Default: "years"},
	},
	run: runSimpleInterest,
}

func runSimpleInterest(ctx context.Context, s *session) error {
	principal := s.nonNegative("principal")
	term := s.nonNegative("term")
	unit, err := domain.ParseTermUnit(s.str("term_unit"))
	s.check(err)
	rate := s.rate(ctx, "annual_interest_rate", rates.KeyInterestRate, rates.Percent(8))
	if err := s.Err(); err != nil {
		return err
	}

	years := term
	if unit == domain.TermMonths {
		years = term.Div(domain.Twelve)
	}
	interest, err := compounding.SimpleInterest(principal, rate, years)
	if err != nil {
		return err
	}
	s.result.
		Add("total_interest", domain.RoundCurrency(interest)).
		Add("final_amount", domain.RoundCurrency(principal.Add(interest)))
	return nil
}

var costOfDelayCalculator = definition{
	name:        "cost_of_delay",
	description: "Maturity lost by starting a monthly SIP late",
	params: []ParamSpec{
		{Name: "monthly_sip", Description: "Monthly instalment", Default: "5000"},
		{Name: "term_years", Description: "Horizon in years", Default: "20"},
		{Name: "annual_return", Description: "Expected annual return in percent (sip_rate when omitted)", Optional: true},
		{Name: "delay_months", Description: "Months the start is delayed", Default: "12"},
	},
	run: runCostOfDelay,
}

func runCostOfDelay(ctx context.Context, s *session) error {
	sip := s.positive("monthly_sip")
	years := s.years("term_years")
	delay := s.integer("delay_months")
	if s.err == nil && delay < 0 {
		s.check(domain.InvalidParameter(s.op, "delay_months", "delay must not be negative, got %d", delay))
	}
	if s.err == nil && delay > domain.MaxTermMonths {
		s.check(domain.InvalidParameter(s.op, "delay_months", "delay must be at most %d months, got %d", domain.MaxTermMonths, delay))
	}
	rate := s.rate(ctx, "annual_return", rates.KeySIPRate, rates.Percent(12))
	if err := s.Err(); err != nil {
		return err
	}

	months := years * 12
	monthly := domain.MonthlyRate(rate)
	now, err := compounding.FutureValueAnnuity(sip, monthly, months, compounding.TimingEnd)
	if err != nil {
		return err
	}
	delayed := decimal.Zero
	if remaining := months - delay; remaining > 0 {
		if delayed, err = compounding.FutureValueAnnuity(sip, monthly, remaining, compounding.TimingEnd); err != nil {
			return err
		}
	}
	loss := now.Sub(delayed)
	lossPercent := decimal.Zero
	if now.IsPositive() {
		lossPercent = loss.Div(now).Mul(domain.Hundred)
	}

	s.result.
		Add("start_today", domain.RoundCurrency(now)).
		Add("delayed_start", domain.RoundCurrency(delayed)).
		Add("loss_amount", domain.RoundCurrency(loss)).
		Add("loss_percent", lossPercent.Round(domain.PercentPlaces))
	return nil
}

// fixed-term payout schemes
const (
	misYears         = 5
	scssQuarters     = 20
	scssDepositLimit = 3000000
)

var misCalculator = definition{
	name:        "mis",
	description: "Monthly income scheme paying interest every month for five years",
	params: []ParamSpec{
		{Name: "lump_sum", Description: "Amount deposited", Default: "500000"},
		{Name: "annual_rate", Description: "Scheme rate in percent", Default: "7.4"},
	},
	run: runMIS,
}

func runMIS(_ context.Context, s *session) error {
	principal := s.nonNegative("lump_sum")
	rate := s.nonNegative("annual_rate")
	if err := s.Err(); err != nil {
		return err
	}

	yearInterest, err := compounding.SimpleInterest(principal, rate, domain.One)
	if err != nil {
		return err
	}
	total := yearInterest.Mul(decimal.NewFromInt(misYears))

	s.result.
		Add("monthly_income", domain.RoundCurrency(yearInterest.Div(domain.Twelve))).
		Add("total_interest", domain.RoundCurrency(total)).
		Add("maturity_amount", domain.RoundCurrency(principal)).
		Add("total_return", domain.RoundCurrency(principal.Add(total))).
		Add("term_years", decimal.NewFromInt(misYears))

	table := s.result.AddTable("year_wise", "year", "interest_this_year", "cumulative_interest", "total_payout_so_far")
	cumulative := decimal.Zero
	for y := 1; y <= misYears; y++ {
		cumulative = cumulative.Add(yearInterest)
		table.Append(decimal.NewFromInt(int64(y)), domain.RoundCurrency(yearInterest), domain.RoundCurrency(cumulative), domain.RoundCurrency(principal.Add(cumulative)))
	}
	return nil
}

var scssCalculator = definition{
	name:        "scss",
	description: "Senior citizen savings scheme paying interest every quarter for five years",
	params: []ParamSpec{
		{Name: "deposit_amount", Description: "Amount deposited (at most 3000000)", Default: "1500000"},
		{Name: "annual_interest_rate", Description: "Scheme rate in percent", Default: "8.2"},
	},
	run: runSCSS,
}

func runSCSS(_ context.Context, s *session) error {
	deposit := s.nonNegative("deposit_amount")
	if s.err == nil && deposit.GreaterThan(decimal.NewFromInt(scssDepositLimit)) {
		s.check(domain.InvalidParameter(s.op, "deposit_amount", "deposit must not exceed %d, got %s", scssDepositLimit, deposit))
	}
	rate := s.nonNegative("annual_interest_rate")
	if err := s.Err(); err != nil {
		return err
	}

	yearInterest, err := compounding.SimpleInterest(deposit, rate, domain.One)
	if err != nil {
		return err
	}
	quarterly := yearInterest.Div(decimal.NewFromInt(4))
	total := quarterly.Mul(decimal.NewFromInt(scssQuarters))

	s.result.
		Add("quarterly_interest", domain.RoundCurrency(quarterly)).
		Add("total_interest", domain.RoundCurrency(total)).
		Add("final_balance", domain.RoundCurrency(deposit)).
		Add("total_return", domain.RoundCurrency(deposit.Add(total)))

	table := s.result.AddTable("year_wise", "year", "interest_this_year", "cumulative_interest")
	cumulative := decimal.Zero
	for y := 1; y <= scssQuarters/4; y++ {
		cumulative = cumulative.Add(yearInterest)
		table.Append(decimal.NewFromInt(int64(y)), domain.RoundCurrency(yearInterest), domain.RoundCurrency(cumulative))
	}
	return nil
}
