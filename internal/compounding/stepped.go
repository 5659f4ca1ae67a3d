package compounding

import (
	"math"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// MaxSteps bounds the number of simulation steps in one plan
const MaxSteps = domain.MaxTermYears * 52 * 12

// Plan describes a lump sum plus regular deposits compounding at a possibly
// different frequency than the deposits arrive
type Plan struct {
	Principal            decimal.Decimal
	PeriodicDeposit      decimal.Decimal
	DepositFrequency     int
	CompoundingFrequency int
	Years                decimal.Decimal
	AnnualRatePercent    decimal.Decimal
	Timing               Timing
	SkipFirstDeposit     bool
}

// YearSnapshot is the state of a plan at a year boundary (or at the final step)
type YearSnapshot struct {
	Year          decimal.Decimal `json:"year"`
	TotalDeposit  decimal.Decimal `json:"totalDeposit"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	Balance       decimal.Decimal `json:"balance"`
}

// SteppedResult is the outcome of SimulateSteppedCompounding
type SteppedResult struct {
	MaturityValue  decimal.Decimal `json:"maturityValue"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	StepsPerYear   int             `json:"stepsPerYear"`
	TotalSteps     int             `json:"totalSteps"`
	Deposits       int             `json:"deposits"`
	Years          []YearSnapshot  `json:"years"`
}

// Validate checks the plan's preconditions
func (p Plan) Validate() error {
	const op = "simulate_stepped_compounding"
	if p.Principal.IsNegative() {
		return domain.InvalidParameter(op, "lump_sum", "lump sum must not be negative, got %s", p.Principal)
	}
	if p.PeriodicDeposit.IsNegative() {
		return domain.InvalidParameter(op, "regular_deposit", "deposit must not be negative, got %s", p.PeriodicDeposit)
	}
	if _, ok := domain.FrequencyFromPeriods(p.DepositFrequency); !ok {
		return domain.InvalidParameter(op, "deposit_frequency", "deposit frequency must be 1, 2, 4, 12 or 52, got %d", p.DepositFrequency)
	}
	if _, ok := domain.FrequencyFromPeriods(p.CompoundingFrequency); !ok {
		return domain.InvalidParameter(op, "compounding_frequency", "compounding frequency must be 1, 2, 4, 12 or 52, got %d", p.CompoundingFrequency)
	}
	if !p.Years.IsPositive() {
		return domain.InvalidParameter(op, "term", "term must be positive, got %s", p.Years)
	}
	if p.Years.GreaterThan(decimal.NewFromInt(domain.MaxTermYears)) {
		return domain.InvalidParameter(op, "term", "term must be at most %d years, got %s", domain.MaxTermYears, p.Years)
	}
	if p.AnnualRatePercent.IsNegative() {
		return domain.InvalidParameter(op, "interest_rate", "rate must not be negative, got %s", p.AnnualRatePercent)
	}
	return nil
}

// SimulateSteppedCompounding walks the plan in steps of 1/LCM(d, n) years so
// every deposit and every compounding event lands on an integer step. Each
// step grows the balance by (1 + r/n)^(n/steps); after a full year that is
// exactly (1 + r/n)^n. Deposit k (0-based) arrives on step 1 + k·steps/d and
// is credited before or after that step's growth according to Timing.
func SimulateSteppedCompounding(p Plan) (*SteppedResult, error) {
	const op = "simulate_stepped_compounding"
	if err := p.Validate(); err != nil {
		return nil, err
	}

	stepsPerYear := finmath.LCM(p.DepositFrequency, p.CompoundingFrequency)
	depositInterval := stepsPerYear / p.DepositFrequency
	years := p.Years.InexactFloat64()
	totalSteps := int(math.Round(years * float64(stepsPerYear)))
	if totalSteps < 1 {
		return nil, domain.InvalidParameter(op, "term", "term %s is shorter than one step", p.Years)
	}
	if totalSteps > MaxSteps {
		return nil, domain.InvalidParameter(op, "term", "plan needs %d steps, at most %d are simulated", totalSteps, MaxSteps)
	}

	scheduled := int(math.Floor(years*float64(p.DepositFrequency) + 1e-9))
	depositSteps := make(map[int]int, scheduled)
	first := 0
	if p.SkipFirstDeposit && scheduled > 0 {
		first = 1
	}
	for k := first; k < scheduled; k++ {
		step := 1 + k*depositInterval
		if step <= totalSteps {
			depositSteps[step]++
		}
	}

	n := decimal.NewFromInt(int64(p.CompoundingFrequency))
	r := domain.PercentToRate(p.AnnualRatePercent)
	multiplier, err := finmath.Pow(op, domain.One.Add(r.Div(n)), n.Div(decimal.NewFromInt(int64(stepsPerYear))))
	if err != nil {
		return nil, err
	}

	timing := p.Timing
	if timing == "" {
		timing = TimingStart
	}

	result := &SteppedResult{
		StepsPerYear: stepsPerYear,
		TotalSteps:   totalSteps,
	}
	balance := p.Principal
	deposited := p.Principal
	perYear := decimal.NewFromInt(int64(stepsPerYear))

	for step := 1; step <= totalSteps; step++ {
		count := depositSteps[step]
		amount := p.PeriodicDeposit.Mul(decimal.NewFromInt(int64(count)))
		if count > 0 && timing == TimingStart {
			balance = balance.Add(amount)
			deposited = deposited.Add(amount)
		}
		balance = finmath.Work(balance.Mul(multiplier))
		if count > 0 && timing == TimingEnd {
			balance = balance.Add(amount)
			deposited = deposited.Add(amount)
		}
		result.Deposits += count

		if step%stepsPerYear == 0 || step == totalSteps {
			elapsed := decimal.NewFromInt(int64(step)).Div(perYear)
			result.Years = append(result.Years, YearSnapshot{
				Year:          domain.MinDecimal(p.Years, elapsed).Round(6),
				TotalDeposit:  deposited,
				TotalInterest: balance.Sub(deposited),
				Balance:       balance,
			})
		}
	}

	result.MaturityValue = balance
	result.TotalDeposited = deposited
	result.TotalInterest = balance.Sub(deposited)
	return result, nil
}
