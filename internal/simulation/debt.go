// Package simulation holds the month-by-month and year-by-year engines:
// multi-debt payoff, systematic withdrawals, career income paths and
// accumulation towards a target.
package simulation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/fincalc/internal/amortization"
	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// Strategy decides which debt receives the surplus payment first
type Strategy string

const (
	// Avalanche pays the highest rate first
	Avalanche Strategy = "avalanche"
	// Snowball pays the smallest balance first
	Snowball Strategy = "snowball"
)

// ParseStrategy parses a payoff strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Avalanche:
		return Avalanche, nil
	case Snowball:
		return Snowball, nil
	}
	return "", domain.InvalidParameter("parse_strategy", "strategy", "unsupported strategy %q, want avalanche or snowball", s)
}

// Debt is one obligation entering a payoff simulation
type Debt struct {
	Name              string          `json:"name" yaml:"name"`
	Balance           decimal.Decimal `json:"balance" yaml:"balance"`
	MinPayment        decimal.Decimal `json:"minPayment" yaml:"min_payment"`
	AnnualRatePercent decimal.Decimal `json:"rate" yaml:"rate"`
	RateSource        string          `json:"rateSource,omitempty" yaml:"rate_source,omitempty"`
}

// DebtOutcome is the per-debt breakdown of a simulation
type DebtOutcome struct {
	Name             string          `json:"name"`
	RatePercent      decimal.Decimal `json:"rate"`
	RateSource       string          `json:"rateSource,omitempty"`
	StartingBalance  decimal.Decimal `json:"startingBalance"`
	TotalInterest    decimal.Decimal `json:"totalInterest"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	PayoffMonth      int             `json:"payoffMonth"` // 0 when not paid off
}

// DebtPayoffResult is the outcome of DebtPayoff
type DebtPayoffResult struct {
	Strategy       Strategy        `json:"strategy"`
	Months         int             `json:"months"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	CeilingReached bool            `json:"ceilingReached"`
	Debts          []DebtOutcome   `json:"debts"`
}

// DebtOptions bounds a payoff simulation
type DebtOptions struct {
	MaxMonths int
}

// DefaultDebtOptions returns the default simulation bounds
func DefaultDebtOptions() DebtOptions {
	return DebtOptions{MaxMonths: 600}
}

type debtState struct {
	Debt
	index    int
	rate     decimal.Decimal
	balance  decimal.Decimal
	interest decimal.Decimal
	paid     decimal.Decimal
	payoff   int
}

// DebtPayoff simulates paying down debts month by month. Every month each
// open debt accrues interest and receives its minimum payment; the pool of
// extraPayment, minimums freed by retired debts and any unused minimum is
// then applied to open debts in strategy order, an overpayment carrying on
// to the next debt. The loop ends when every balance is settled or at
// opts.MaxMonths.
func DebtPayoff(debts []Debt, extraPayment decimal.Decimal, strategy Strategy, opts DebtOptions) (*DebtPayoffResult, error) {
	const op = "debt_payoff"
	if len(debts) == 0 {
		return nil, domain.InvalidParameter(op, "debts", "at least one debt is required")
	}
	if extraPayment.IsNegative() {
		return nil, domain.InvalidParameter(op, "extra_payment", "extra payment must not be negative, got %s", extraPayment)
	}
	if strategy != Avalanche && strategy != Snowball {
		return nil, domain.InvalidParameter(op, "strategy", "unsupported strategy %q", strategy)
	}
	if opts.MaxMonths <= 0 {
		opts.MaxMonths = DefaultDebtOptions().MaxMonths
	}

	states := make([]*debtState, len(debts))
	for i, d := range debts {
		if d.Balance.IsNegative() {
			return nil, domain.InvalidParameter(op, fmt.Sprintf("debts[%d].balance", i), "balance must not be negative, got %s", d.Balance)
		}
		if d.MinPayment.IsNegative() {
			return nil, domain.InvalidParameter(op, fmt.Sprintf("debts[%d].min_payment", i), "minimum payment must not be negative, got %s", d.MinPayment)
		}
		if d.AnnualRatePercent.IsNegative() {
			return nil, domain.InvalidParameter(op, fmt.Sprintf("debts[%d].rate", i), "rate must not be negative, got %s", d.AnnualRatePercent)
		}
		if d.Name == "" {
			d.Name = fmt.Sprintf("Debt %d", i+1)
		}
		states[i] = &debtState{
			Debt:    d,
			index:   i,
			rate:    domain.MonthlyRate(d.AnnualRatePercent),
			balance: d.Balance,
		}
	}

	result := &DebtPayoffResult{Strategy: strategy}
	for month := 1; month <= opts.MaxMonths; month++ {
		open := openDebts(states)
		if len(open) == 0 {
			break
		}
		sortDebts(open, strategy)
		result.Months = month

		pool := extraPayment
		for _, s := range states {
			if s.payoff > 0 {
				pool = pool.Add(s.MinPayment)
			}
		}

		for _, s := range open {
			step := amortization.Step(s.balance, s.rate, s.MinPayment)
			if unused := s.MinPayment.Sub(step.Payment); unused.IsPositive() {
				pool = pool.Add(unused)
			}
			s.balance = step.Balance
			s.interest = s.interest.Add(step.Interest)
			s.paid = s.paid.Add(step.Payment)
		}

		for _, s := range open {
			if !pool.IsPositive() {
				break
			}
			if !s.balance.IsPositive() {
				continue
			}
			apply := domain.MinDecimal(pool, s.balance)
			if s.balance.Sub(apply).LessThan(finmath.Dust) {
				apply = s.balance
			}
			s.balance = s.balance.Sub(apply)
			s.paid = s.paid.Add(apply)
			pool = domain.MaxDecimal(decimal.Zero, pool.Sub(apply))
		}

		for _, s := range open {
			if !s.balance.IsPositive() && s.payoff == 0 {
				s.balance = decimal.Zero
				s.payoff = month
			}
		}
	}

	result.CeilingReached = len(openDebts(states)) > 0
	result.Debts = make([]DebtOutcome, len(states))
	for _, s := range states {
		result.TotalInterest = result.TotalInterest.Add(s.interest)
		result.TotalPaid = result.TotalPaid.Add(s.paid)
		result.Debts[s.index] = DebtOutcome{
			Name:             s.Name,
			RatePercent:      s.AnnualRatePercent,
			RateSource:       s.RateSource,
			StartingBalance:  s.Debt.Balance,
			TotalInterest:    s.interest,
			TotalPaid:        s.paid,
			RemainingBalance: s.balance,
			PayoffMonth:      s.payoff,
		}
	}
	return result, nil
}

func openDebts(states []*debtState) []*debtState {
	open := make([]*debtState, 0, len(states))
	for _, s := range states {
		if s.balance.IsPositive() {
			open = append(open, s)
		}
	}
	return open
}

// sortDebts orders open debts for the month. Equal keys keep input order.
func sortDebts(open []*debtState, strategy Strategy) {
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		switch strategy {
		case Snowball:
			if !a.balance.Equal(b.balance) {
				return a.balance.LessThan(b.balance)
			}
			if !a.AnnualRatePercent.Equal(b.AnnualRatePercent) {
				return a.AnnualRatePercent.GreaterThan(b.AnnualRatePercent)
			}
		default:
			if !a.AnnualRatePercent.Equal(b.AnnualRatePercent) {
				return a.AnnualRatePercent.GreaterThan(b.AnnualRatePercent)
			}
			if !a.balance.Equal(b.balance) {
				return a.balance.LessThan(b.balance)
			}
		}
		return a.index < b.index
	})
}
