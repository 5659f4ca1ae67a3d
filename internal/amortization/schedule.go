package amortization

import (
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// Installment is one row of an amortization schedule
type Installment struct {
	Period    int             `json:"period"`
	Payment   decimal.Decimal `json:"payment"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

// Schedule is a complete repayment plan
type Schedule struct {
	Principal     decimal.Decimal `json:"principal"`
	EMI           decimal.Decimal `json:"emi"`
	Extra         decimal.Decimal `json:"extra"`
	Rows          []Installment   `json:"rows"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
}

// Months returns the number of instalments actually paid
func (s *Schedule) Months() int {
	return len(s.Rows)
}

// StepResult is the effect of one period on a balance
type StepResult struct {
	Interest  decimal.Decimal
	Principal decimal.Decimal
	Payment   decimal.Decimal
	Balance   decimal.Decimal
}

// Step accrues interest on balance and applies payment. The principal part
// is clamped to the balance, and a residue below finmath.Dust is settled in
// the same period. A payment smaller than the interest grows the balance.
func Step(balance, periodicRate, payment decimal.Decimal) StepResult {
	interest := finmath.Work(balance.Mul(periodicRate))
	principal := payment.Sub(interest)
	if balance.Sub(principal).LessThan(finmath.Dust) {
		principal = balance
	}
	return StepResult{
		Interest:  interest,
		Principal: principal,
		Payment:   interest.Add(principal),
		Balance:   balance.Sub(principal),
	}
}

// BuildSchedule amortizes principal over termMonths with an optional extra
// payment every period. The loop stops as soon as the balance reaches zero;
// on period termMonths any residue left by rounding in the EMI is settled so
// the final balance is exactly zero.
func BuildSchedule(principal, annualRatePercent decimal.Decimal, termMonths int, extraPerPeriod decimal.Decimal) (*Schedule, error) {
	if extraPerPeriod.IsNegative() {
		return nil, domain.InvalidParameter("build_schedule", "extra_payment", "extra payment must not be negative, got %s", extraPerPeriod)
	}
	emi, err := ComputeEMI(principal, annualRatePercent, termMonths)
	if err != nil {
		return nil, err
	}

	r := domain.MonthlyRate(annualRatePercent)
	schedule := &Schedule{
		Principal: principal,
		EMI:       emi,
		Extra:     extraPerPeriod,
		Rows:      make([]Installment, 0, termMonths),
	}

	balance := principal
	for period := 1; period <= termMonths && balance.IsPositive(); period++ {
		step := Step(balance, r, emi.Add(extraPerPeriod))
		if period == termMonths && step.Balance.IsPositive() {
			step.Principal = balance
			step.Payment = step.Interest.Add(balance)
			step.Balance = decimal.Zero
		}
		balance = step.Balance

		schedule.Rows = append(schedule.Rows, Installment{
			Period:    period,
			Payment:   step.Payment,
			Interest:  step.Interest,
			Principal: step.Principal,
			Balance:   balance,
		})
		schedule.TotalInterest = schedule.TotalInterest.Add(step.Interest)
		schedule.TotalPaid = schedule.TotalPaid.Add(step.Payment)
	}

	return schedule, nil
}
