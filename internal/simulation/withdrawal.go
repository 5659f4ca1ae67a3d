package simulation

import (
	"strings"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// AdjustmentType says how the withdrawal changes at each year boundary
type AdjustmentType string

const (
	// AdjustPercent scales the withdrawal by 1 + adjustment/100
	AdjustPercent AdjustmentType = "percent"
	// AdjustFlat adds the adjustment, never going below zero
	AdjustFlat AdjustmentType = "flat"
)

// ParseAdjustmentType accepts percent and flat (or rupee/amount)
func ParseAdjustmentType(s string) (AdjustmentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "percent", "percentage", "%":
		return AdjustPercent, nil
	case "flat", "rupee", "amount":
		return AdjustFlat, nil
	}
	return "", domain.InvalidParameter("parse_adjustment_type", "adjustment_type", "unsupported adjustment type %q", s)
}

// hundredPercentCut is the deepest percent adjustment; it stops withdrawals entirely
var hundredPercentCut = decimal.NewFromInt(-100)

// exhaustedBelow is the balance at or under which a corpus counts as used up
var exhaustedBelow = decimal.New(1, -7)

// MaxWithdrawalPeriods bounds TotalPeriods: monthly withdrawals over domain.MaxTermYears
const MaxWithdrawalPeriods = domain.MaxTermMonths

// WithdrawalPlan describes a systematic withdrawal from a corpus
type WithdrawalPlan struct {
	Principal        decimal.Decimal
	Withdrawal       decimal.Decimal
	PeriodicRate     decimal.Decimal // fraction per period
	PeriodsPerYear   int
	TotalPeriods     int
	AnnualAdjustment decimal.Decimal
	AdjustmentType   AdjustmentType
}

// WithdrawalYear summarizes one year (or the final partial year) of a plan
type WithdrawalYear struct {
	Year         int             `json:"year"`
	StartBalance decimal.Decimal `json:"startBalance"`
	Withdrawn    decimal.Decimal `json:"withdrawn"`
	Returns      decimal.Decimal `json:"returns"`
	EndBalance   decimal.Decimal `json:"endBalance"`
}

// WithdrawalResult is the outcome of SystematicWithdrawal
type WithdrawalResult struct {
	FinalBalance    decimal.Decimal  `json:"finalBalance"`
	TotalWithdrawn  decimal.Decimal  `json:"totalWithdrawn"`
	TotalReturns    decimal.Decimal  `json:"totalReturns"`
	PeriodsElapsed  int              `json:"periodsElapsed"`
	Exhausted       bool             `json:"exhausted"`
	ExhaustedInYear int              `json:"exhaustedInYear,omitempty"`
	Years           []WithdrawalYear `json:"years"`
}

// YearsElapsed returns PeriodsElapsed expressed in years
func (r *WithdrawalResult) YearsElapsed(periodsPerYear int) decimal.Decimal {
	if periodsPerYear < 1 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.PeriodsElapsed)).Div(decimal.NewFromInt(int64(periodsPerYear)))
}

// EffectivePeriodicRate converts an annual effective return into the
// equivalent rate per period: (1 + r)^(1/periodsPerYear) − 1
func EffectivePeriodicRate(annualPercent decimal.Decimal, periodsPerYear int) (decimal.Decimal, error) {
	const op = "effective_periodic_rate"
	if periodsPerYear < 1 {
		return decimal.Zero, domain.InvalidParameter(op, "frequency", "periods per year must be at least 1, got %d", periodsPerYear)
	}
	r := domain.PercentToRate(annualPercent)
	if r.LessThanOrEqual(domain.One.Neg()) {
		return decimal.Zero, domain.InvalidParameter(op, "rate", "rate must be above -100%%, got %s", annualPercent)
	}
	g, err := finmath.Pow(op, domain.One.Add(r), domain.One.Div(decimal.NewFromInt(int64(periodsPerYear))))
	if err != nil {
		return decimal.Zero, err
	}
	return g.Sub(domain.One), nil
}

// SystematicWithdrawal runs the plan period by period. Interest accrues
// first, then min(withdrawal, balance) is taken out. The withdrawal is
// adjusted after every full year. When a withdrawal leaves the balance at or
// below a negligible amount the corpus is exhausted and the plan stops.
func SystematicWithdrawal(p WithdrawalPlan) (*WithdrawalResult, error) {
	const op = "systematic_withdrawal"
	if p.Principal.IsNegative() {
		return nil, domain.InvalidParameter(op, "lump_sum", "corpus must not be negative, got %s", p.Principal)
	}
	if p.Withdrawal.IsNegative() {
		return nil, domain.InvalidParameter(op, "withdrawal", "withdrawal must not be negative, got %s", p.Withdrawal)
	}
	if p.PeriodsPerYear < 1 {
		return nil, domain.InvalidParameter(op, "frequency", "periods per year must be at least 1, got %d", p.PeriodsPerYear)
	}
	if p.TotalPeriods < 1 {
		return nil, domain.InvalidParameter(op, "term", "term must cover at least one period, got %d", p.TotalPeriods)
	}
	if p.TotalPeriods > MaxWithdrawalPeriods {
		return nil, domain.InvalidParameter(op, "term", "term must cover at most %d periods, got %d", MaxWithdrawalPeriods, p.TotalPeriods)
	}
	if p.PeriodicRate.LessThanOrEqual(domain.One.Neg()) {
		return nil, domain.InvalidParameter(op, "rate", "periodic rate must be above -1, got %s", p.PeriodicRate)
	}
	adjType := p.AdjustmentType
	if adjType == "" {
		adjType = AdjustPercent
	}
	if adjType != AdjustPercent && adjType != AdjustFlat {
		return nil, domain.InvalidParameter(op, "adjustment_type", "unsupported adjustment type %q", adjType)
	}
	if adjType == AdjustPercent && p.AnnualAdjustment.LessThan(hundredPercentCut) {
		return nil, domain.InvalidParameter(op, "annual_withdrawal_adjustment",
			"percent adjustment must be at least -100, got %s", p.AnnualAdjustment)
	}

	res := &WithdrawalResult{}
	balance := p.Principal
	withdrawal := p.Withdrawal
	year := WithdrawalYear{Year: 1, StartBalance: balance}
	inYear := 0

	closeYear := func() {
		year.EndBalance = balance
		res.Years = append(res.Years, year)
	}

	for period := 1; period <= p.TotalPeriods; period++ {
		interest := finmath.Work(balance.Mul(p.PeriodicRate))
		balance = balance.Add(interest)
		res.TotalReturns = res.TotalReturns.Add(interest)
		year.Returns = year.Returns.Add(interest)

		taken := domain.MinDecimal(withdrawal, balance)
		balance = balance.Sub(taken)
		res.TotalWithdrawn = res.TotalWithdrawn.Add(taken)
		year.Withdrawn = year.Withdrawn.Add(taken)

		res.PeriodsElapsed = period
		inYear++

		if taken.IsPositive() && balance.LessThanOrEqual(exhaustedBelow) {
			balance = decimal.Zero
			res.Exhausted = true
			res.ExhaustedInYear = year.Year
			closeYear()
			break
		}

		if inYear == p.PeriodsPerYear {
			switch adjType {
			case AdjustPercent:
				withdrawal = finmath.Work(withdrawal.Mul(domain.One.Add(domain.PercentToRate(p.AnnualAdjustment))))
			case AdjustFlat:
				withdrawal = domain.MaxDecimal(decimal.Zero, withdrawal.Add(p.AnnualAdjustment))
			}
			closeYear()
			year = WithdrawalYear{Year: year.Year + 1, StartBalance: balance}
			inYear = 0
		}
	}

	if !res.Exhausted && inYear > 0 {
		closeYear()
	}
	res.FinalBalance = balance
	return res, nil
}
