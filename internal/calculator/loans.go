package calculator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/fincalc/internal/amortization"
	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/compounding"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/rgehrsitz/fincalc/internal/simulation"
	"github.com/shopspring/decimal"
)

var emiCalculator = definition{
	name:        "emi",
	description: "Monthly instalment, total payment and total interest of a loan",
	params: []ParamSpec{
		{Name: "principal", Description: "Loan amount", Default: "1000000"},
		{Name: "rate", Description: "Annual interest rate in percent (loan_rate when omitted)", Optional: true},
		{Name: "tenure", Description: "Loan tenure", Default: "20"},
		{Name: "tenure_type", Description: "years or months", Default: "years"},
		{Name: "save", Description: "Store the loan when a loan store is configured", Default: "false"},
	},
	run: runEMI,
}

func runEMI(ctx context.Context, s *session) error {
	principal := s.positive("principal")
	months := s.termMonths("tenure", "tenure_type")
	save := s.boolean("save")
	rate := s.rate(ctx, "rate", rates.KeyLoanRate, rates.Percent(8.5))
	if err := s.Err(); err != nil {
		return err
	}

	emi, err := amortization.ComputeEMI(principal, rate, months)
	if err != nil {
		return err
	}
	emi = domain.RoundCurrency(emi)
	total, interest := amortization.TotalRepayment(emi, months, principal)

	s.result.
		Add("emi", emi).
		Add("total_payment", domain.RoundCurrency(total)).
		Add("total_interest", domain.RoundCurrency(interest)).
		Add("tenure_months", decimal.NewFromInt(int64(months)))

	if !save {
		return nil
	}
	if s.deps.Loans == nil {
		s.result.Note("saved", "no loan store configured")
		return nil
	}
	record := LoanRecord{
		ID:            uuid.NewString(),
		Principal:     principal,
		RatePercent:   rate,
		RateSource:    s.result.RatesUsed["rate"].Source,
		TermMonths:    months,
		EMI:           emi,
		TotalInterest: domain.RoundCurrency(interest),
		TotalPayment:  domain.RoundCurrency(total),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.deps.Loans.SaveLoan(ctx, record); err != nil {
		return fmt.Errorf("failed to save loan: %w", err)
	}
	s.logger().Infof("saved loan %s", record.ID)
	s.result.Note("loan_id", record.ID)
	return nil
}

var loanScheduleCalculator = definition{
	name:        "loan_schedule",
	description: "Month-by-month amortization schedule with an optional extra repayment",
	params: []ParamSpec{
		{Name: "principal", Description: "Loan amount", Default: "500000"},
		{Name: "rate", Description: "Annual interest rate in percent (loan_rate when omitted)", Optional: true},
		{Name: "tenure", Description: "Loan tenure", Default: "60"},
		{Name: "tenure_type", Description: "years or months", Default: "months"},
		{Name: "extra_repayment", Description: "Extra amount paid with every instalment", Default: "0"},
	},
	run: runLoanSchedule,
}

func runLoanSchedule(ctx context.Context, s *session) error {
	principal := s.positive("principal")
	months := s.termMonths("tenure", "tenure_type")
	extra := s.nonNegative("extra_repayment")
	rate := s.rate(ctx, "rate", rates.KeyLoanRate, rates.Percent(10))
	if s.err == nil && !rate.IsPositive() {
		s.check(domain.InvalidParameter(s.op, "rate", "rate must be positive, got %s", rate))
	}
	if err := s.Err(); err != nil {
		return err
	}

	schedule, err := amortization.BuildSchedule(principal, rate, months, extra)
	if err != nil {
		return err
	}

	s.result.
		Add("emi", domain.RoundCurrency(schedule.EMI)).
		Add("total_interest", domain.RoundCurrency(schedule.TotalInterest)).
		Add("total_payment", domain.RoundCurrency(schedule.TotalPaid)).
		Add("months_taken", decimal.NewFromInt(int64(schedule.Months())))

	table := s.result.AddTable("schedule", "month", "payment", "interest", "principal", "balance")
	for _, row := range schedule.Rows {
		table.Append(
			decimal.NewFromInt(int64(row.Period)),
			domain.RoundCurrency(row.Payment),
			domain.RoundCurrency(row.Interest),
			domain.RoundCurrency(row.Principal),
			domain.RoundCurrency(row.Balance),
		)
	}
	return nil
}

var emiPrepayCalculator = definition{
	name:        "emi_prepay",
	description: "Prepay part of a loan or invest the same amount",
	params: []ParamSpec{
		{Name: "loan_amount", Description: "Outstanding loan", Default: "1000000"},
		{Name: "loan_rate", Description: "Annual loan rate in percent (loan_rate when omitted)", Optional: true},
		{Name: "tenure", Description: "Remaining tenure", Default: "240"},
		{Name: "tenure_type", Description: "years or months", Default: "months"},
		{Name: "prepayment", Description: "Lump sum available now", Default: "200000"},
		{Name: "invest_rate", Description: "Annual return if the lump sum is invested instead", Default: "12"},
	},
	run: runEMIPrepay,
}

func runEMIPrepay(ctx context.Context, s *session) error {
	principal := s.positive("loan_amount")
	months := s.termMonths("tenure", "tenure_type")
	prepayment := s.nonNegative("prepayment")
	investRate := s.nonNegative("invest_rate")
	rate := s.rate(ctx, "loan_rate", rates.KeyLoanRate, rates.Percent(8.5))
	if err := s.Err(); err != nil {
		return err
	}

	impact, err := amortization.AnalyzePrepayment(principal, rate, months, prepayment)
	if err != nil {
		return err
	}
	years := decimal.NewFromInt(int64(months)).Div(domain.Twelve)
	investValue, err := compounding.FutureValueLumpSum(prepayment, investRate, years)
	if err != nil {
		return err
	}
	investGain := investValue.Sub(prepayment)

	s.result.
		Add("emi", domain.RoundCurrency(impact.EMI)).
		Add("monthly_interest_rate", domain.RateToPercent(impact.MonthlyRate).Round(domain.MonthlyRatePlaces)).
		Add("total_interest_original", domain.RoundCurrency(impact.TotalInterestOriginal)).
		Add("total_payment_original", domain.RoundCurrency(impact.TotalPaidOriginal)).
		Add("months_after_prepayment", impact.MonthsAfterPrepayment.Round(domain.MonthsPlaces)).
		Add("total_interest_after_prepayment", domain.RoundCurrency(impact.TotalInterestAfterPrepayment)).
		Add("interest_saved", domain.RoundCurrency(impact.InterestSaved)).
		Add("investment_value", domain.RoundCurrency(investValue)).
		Add("investment_gain", domain.RoundCurrency(investGain))

	return s.compare(
		outcome("Prepay loan", metric("benefit", impact.InterestSaved)),
		outcome("Invest", metric("benefit", investGain)),
		compare.Criterion{Metric: "benefit", Goal: compare.Maximize},
	)
}

var debtPayoffCalculator = definition{
	name:        "debt_payoff",
	description: "Avalanche and snowball payoff of several debts",
	params: []ParamSpec{
		{
			Name:        "debts",
			Description: "Debts as name|balance|min_payment|rate separated by ';' (rate optional)",
			Default:     "Credit card|50000|2500|36;Car loan|300000|8000|9.5;Personal loan|150000|5000|14",
		},
		{Name: "extra_payment", Description: "Amount paid on top of the minimums every month", Default: "5000"},
		{Name: "rate", Description: "Rate in percent for debts listed without one (loan_rate, then interest_rate)", Optional: true},
		{Name: "strategy", Description: "Preferred strategy compared against the other: avalanche or snowball", Default: "avalanche"},
		{Name: "max_months", Description: "Simulation ceiling", Default: "600"},
	},
	run: runDebtPayoff,
}

func runDebtPayoff(ctx context.Context, s *session) error {
	extra := s.nonNegative("extra_payment")
	maxMonths := s.months("max_months")
	preferred, err := simulation.ParseStrategy(s.str("strategy"))
	s.check(err)
	debts, missingRate := parseDebts(s.op, s.str("debts"), &s.reader)
	if missingRate {
		fallbackRate := s.rate(ctx, "rate", rates.KeyLoanRate, rates.Percent(10), rates.KeyInterestRate)
		source := string(s.result.RatesUsed["rate"].Source)
		for i := range debts {
			if debts[i].RateSource == "" {
				debts[i].AnnualRatePercent = fallbackRate
				debts[i].RateSource = source
			}
		}
	}
	if err := s.Err(); err != nil {
		return err
	}

	opts := simulation.DebtOptions{MaxMonths: maxMonths}
	results := make(map[simulation.Strategy]*simulation.DebtPayoffResult, 2)
	for _, strategy := range []simulation.Strategy{simulation.Avalanche, simulation.Snowball} {
		res, err := simulation.DebtPayoff(debts, extra, strategy, opts)
		if err != nil {
			return err
		}
		results[strategy] = res

		prefix := string(strategy) + "_"
		s.result.
			Add(prefix+"months", decimal.NewFromInt(int64(res.Months))).
			Add(prefix+"total_interest", domain.RoundCurrency(res.TotalInterest)).
			Add(prefix+"total_paid", domain.RoundCurrency(res.TotalPaid))
		if res.CeilingReached {
			s.result.Note(prefix+"ceiling", fmt.Sprintf("not paid off within %d months", maxMonths))
		}

		table := s.result.AddTable(string(strategy), "rate", "starting_balance", "total_interest", "total_paid", "remaining_balance", "payoff_month")
		table.KeyColumn = "debt"
		for _, d := range res.Debts {
			table.AppendLabeled(d.Name,
				d.RatePercent,
				domain.RoundCurrency(d.StartingBalance),
				domain.RoundCurrency(d.TotalInterest),
				domain.RoundCurrency(d.TotalPaid),
				domain.RoundCurrency(d.RemainingBalance),
				decimal.NewFromInt(int64(d.PayoffMonth)),
			)
		}
	}

	other := simulation.Snowball
	if preferred == simulation.Snowball {
		other = simulation.Avalanche
	}
	s.result.Add("interest_difference", domain.RoundCurrency(results[other].TotalInterest.Sub(results[preferred].TotalInterest)))

	return s.compare(
		debtOutcome(results[preferred]),
		debtOutcome(results[other]),
		compare.Criterion{Metric: "total_interest", Goal: compare.Minimize},
	)
}

func debtOutcome(res *simulation.DebtPayoffResult) compare.Outcome {
	return outcome(string(res.Strategy),
		metric("total_interest", res.TotalInterest),
		metric("months", decimal.NewFromInt(int64(res.Months))),
	)
}

// parseDebts decodes "name|balance|min|rate;..." and reports whether any
// entry omitted its rate. Entries with a rate are tagged as user supplied.
func parseDebts(op, raw string, r *reader) ([]simulation.Debt, bool) {
	if r.err != nil {
		return nil, false
	}
	var debts []simulation.Debt
	missingRate := false
	for i, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, "|")
		if len(fields) < 3 || len(fields) > 4 {
			r.check(domain.InvalidParameter(op, "debts", "entry %d: expected name|balance|min_payment|rate, got %q", i+1, entry))
			return nil, false
		}
		debt := simulation.Debt{Name: strings.TrimSpace(fields[0])}
		if debt.Name == "" {
			debt.Name = "Debt " + strconv.Itoa(i+1)
		}
		values := make([]decimal.Decimal, 0, 3)
		for _, field := range fields[1:] {
			field = strings.TrimSpace(field)
			if field == "" {
				values = append(values, decimal.Zero)
				continue
			}
			v, err := decimal.NewFromString(field)
			if err != nil {
				r.check(domain.InvalidParameter(op, "debts", "entry %d: invalid number %q", i+1, field))
				return nil, false
			}
			values = append(values, v)
		}
		debt.Balance = values[0]
		debt.MinPayment = values[1]
		if len(fields) == 4 && strings.TrimSpace(fields[3]) != "" {
			debt.AnnualRatePercent = values[2]
			debt.RateSource = string(rates.SourceUser)
		} else {
			missingRate = true
		}
		debts = append(debts, debt)
	}
	if len(debts) == 0 {
		r.check(domain.InvalidParameter(op, "debts", "at least one debt is required"))
	}
	return debts, missingRate
}

var loanVsFDCalculator = definition{
	name:        "loan_vs_fd",
	description: "Take a loan or break a fixed deposit",
	params: []ParamSpec{
		{Name: "principal", Description: "Amount needed", Default: "1000000"},
		{Name: "term", Description: "Loan and deposit term", Default: "10"},
		{Name: "term_type", Description: "years or months", Default: "years"},
		{Name: "loan_rate", Description: "Annual loan rate in percent (loan_rate when omitted)", Optional: true},
		{Name: "fd_rate", Description: "Annual deposit rate in percent (fd_rate when omitted)", Optional: true},
	},
	run: runLoanVsFD,
}

func runLoanVsFD(ctx context.Context, s *session) error {
	principal := s.positive("principal")
	months := s.termMonths("term", "term_type")
	loanRate := s.rate(ctx, "loan_rate", rates.KeyLoanRate, rates.Percent(9))
	fdRate := s.rate(ctx, "fd_rate", rates.KeyFDRate, rates.Percent(8))
	if err := s.Err(); err != nil {
		return err
	}

	emi, err := amortization.ComputeEMI(principal, loanRate, months)
	if err != nil {
		return err
	}
	total, interest := amortization.TotalRepayment(emi, months, principal)

	years := decimal.NewFromInt(int64(months)).Div(domain.Twelve)
	maturity, err := compounding.FutureValueLumpSum(principal, fdRate, years)
	if err != nil {
		return err
	}
	fdInterest := maturity.Sub(principal)

	s.result.
		Add("term_years", years.Round(2)).
		Add("emi", domain.RoundCurrency(emi)).
		Add("total_interest_paid", domain.RoundCurrency(interest)).
		Add("total_amount_paid", domain.RoundCurrency(total)).
		Add("fd_interest_earned", domain.RoundCurrency(fdInterest)).
		Add("fd_maturity", domain.RoundCurrency(maturity))

	return s.compare(
		outcome("Take loan", metric("cost", interest)),
		outcome("Break FD", metric("cost", fdInterest)),
		compare.Criterion{Metric: "cost", Goal: compare.Minimize},
	)
}

var loanVsSWPCalculator = definition{
	name:        "loan_vs_swp",
	description: "Return a corpus needs to fund a loan's instalments by systematic withdrawal",
	params: []ParamSpec{
		{Name: "principal", Description: "Loan amount, also the corpus", Default: "1000000"},
		{Name: "tenure", Description: "Tenure in years", Default: "10"},
		{Name: "loan_rate", Description: "Annual loan rate in percent (loan_rate when omitted)", Optional: true},
	},
	run: runLoanVsSWP,
}

func runLoanVsSWP(ctx context.Context, s *session) error {
	principal := s.positive("principal")
	years := s.years("tenure")
	loanRate := s.rate(ctx, "loan_rate", rates.KeyLoanRate, rates.Percent(10))
	if err := s.Err(); err != nil {
		return err
	}

	res, err := amortization.BreakEvenWithdrawalReturn(principal, loanRate, years)
	if err != nil {
		return err
	}
	months := int64(years * 12)
	s.result.
		Add("emi", domain.RoundCurrency(res.EMI)).
		Add("total_emi_paid", domain.RoundCurrency(res.EMI.Mul(decimal.NewFromInt(months)))).
		Add("required_return", domain.RateToPercent(res.AnnualRate).Round(domain.SolvedRatePlaces)).
		Add("iterations", decimal.NewFromInt(int64(res.Iterations)))
	if !res.Bracketed {
		s.result.Note("required_return", "no break-even return found; the loan rate is reported")
	}
	return nil
}

var equivalentRateCalculator = definition{
	name:        "equivalent_rate",
	description: "Deposit rate equivalent to a loan rate, or the reverse",
	params: []ParamSpec{
		{Name: "rate", Description: "Known annual rate in percent (loan_rate when omitted)", Optional: true},
		{Name: "years", Description: "Horizon in years", Default: "15"},
		{Name: "type", Description: "loan: rate is a loan rate; fd: rate is a deposit rate", Default: "loan"},
	},
	run: runEquivalentRate,
}

func runEquivalentRate(ctx context.Context, s *session) error {
	years := s.years("years")
	kind := s.oneOf("type", "loan", "fd")
	rate := s.rate(ctx, "rate", rates.KeyLoanRate, rates.Percent(10))
	if err := s.Err(); err != nil {
		return err
	}

	if kind == "loan" {
		fd, err := amortization.LoanToDepositRate(rate, years)
		if err != nil {
			return err
		}
		s.result.Add("loan_rate", rate).Add("equivalent_fd_rate", fd.Round(domain.PercentPlaces))
		return nil
	}

	loan, err := amortization.DepositToLoanRate(rate, years)
	if err != nil {
		return err
	}
	s.result.Add("fd_rate", rate).Add("equivalent_loan_rate", loan.Round(domain.PercentPlaces))
	return nil
}
