// Package irr finds the internal rate of return of a cash-flow vector.
//
// Newton-Raphson runs first from the initial guess. It is abandoned for
// bisection as soon as the derivative vanishes, an iterate leaves the
// domain r > -1, or any intermediate value is not finite. Bisection works on
// [low, high], doubling high until NPV changes sign.
package irr

import (
	"context"
	"math"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/finmath"
	"github.com/shopspring/decimal"
)

// CashFlow is an amount received (positive) or paid (negative) at Period
type CashFlow struct {
	Period int             `json:"period"`
	Amount decimal.Decimal `json:"amount"`
}

// Method names the algorithm that produced a rate
type Method string

const (
	MethodNewton    Method = "newton"
	MethodBisection Method = "bisection"
)

// Options configures the solver
type Options struct {
	InitialGuess         float64
	Tolerance            float64 // absolute NPV tolerance
	MaxIterations        int     // per algorithm
	BracketLow           float64
	BracketHigh          float64
	MaxBracketExpansions int
}

// DefaultOptions returns the solver defaults
func DefaultOptions() Options {
	return Options{
		InitialGuess:         0.1,
		Tolerance:            1e-7,
		MaxIterations:        1000,
		BracketLow:           -0.999999,
		BracketHigh:          1.0,
		MaxBracketExpansions: 60,
	}
}

// Result is a solved periodic rate
type Result struct {
	Rate       decimal.Decimal `json:"rate"`
	Iterations int             `json:"iterations"`
	Method     Method          `json:"method"`
}

// Solver finds internal rates of return
type Solver struct {
	Options Options
}

// NewSolver creates a solver with options; zero fields take defaults
func NewSolver(options Options) *Solver {
	def := DefaultOptions()
	if options.Tolerance <= 0 {
		options.Tolerance = def.Tolerance
	}
	if options.MaxIterations <= 0 {
		options.MaxIterations = def.MaxIterations
	}
	if options.BracketLow <= -1 || options.BracketLow == 0 {
		options.BracketLow = def.BracketLow
	}
	if options.BracketHigh <= options.BracketLow {
		options.BracketHigh = def.BracketHigh
	}
	if options.MaxBracketExpansions <= 0 {
		options.MaxBracketExpansions = def.MaxBracketExpansions
	}
	return &Solver{Options: options}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions())
}

// SolveIRR solves flows with default options and the given initial guess
func SolveIRR(flows []CashFlow, initialGuess float64) (*Result, error) {
	opts := DefaultOptions()
	opts.InitialGuess = initialGuess
	return NewSolver(opts).Solve(context.Background(), flows)
}

type flow struct {
	t   float64
	amt float64
}

// Solve returns the periodic rate r making NPV(r) zero
func (s *Solver) Solve(ctx context.Context, flows []CashFlow) (*Result, error) {
	const op = "solve_irr"
	if len(flows) < 2 {
		return nil, domain.InvalidParameter(op, "cashflows", "at least two cash flows are required, got %d", len(flows))
	}

	fs := make([]flow, len(flows))
	hasPositive, hasNegative := false, false
	for i, cf := range flows {
		if cf.Period < 0 {
			return nil, domain.InvalidParameter(op, "cashflows", "period must not be negative, got %d", cf.Period)
		}
		amt := cf.Amount.InexactFloat64()
		hasPositive = hasPositive || amt > 0
		hasNegative = hasNegative || amt < 0
		fs[i] = flow{t: float64(cf.Period), amt: amt}
	}
	if !hasPositive || !hasNegative {
		return nil, domain.IRRNotFound(op, "cash flows have no sign change")
	}

	if res, ok, err := s.newton(ctx, fs); err != nil {
		return nil, err
	} else if ok {
		return res, nil
	}
	return s.bisect(ctx, fs)
}

func (s *Solver) newton(ctx context.Context, fs []flow) (*Result, bool, error) {
	r := s.Options.InitialGuess
	if r <= -1 {
		return nil, false, nil
	}
	for i := 1; i <= s.Options.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		v, dv := npvAndDerivative(r, fs)
		if !finmath.IsFinite(v) || !finmath.IsFinite(dv) {
			return nil, false, nil
		}
		if math.Abs(v) < s.Options.Tolerance {
			return newResult(r, i, MethodNewton)
		}
		if math.Abs(dv) < 1e-12 {
			return nil, false, nil
		}
		next := r - v/dv
		if !finmath.IsFinite(next) || next <= -1 {
			return nil, false, nil
		}
		r = next
	}
	return nil, false, nil
}

func (s *Solver) bisect(ctx context.Context, fs []flow) (*Result, error) {
	const op = "solve_irr"
	lo, hi := s.Options.BracketLow, s.Options.BracketHigh

	fLo := npv(lo, fs)
	// Close to -1 the discount factors overflow for long horizons; pull the
	// lower bound toward zero until NPV is finite there.
	for tries := 0; !finmath.IsFinite(fLo) && tries < 8; tries++ {
		lo = -1 + (1+lo)*10
		if lo >= hi {
			break
		}
		fLo = npv(lo, fs)
	}
	if !finmath.IsFinite(fLo) {
		return nil, domain.IRRNotFound(op, "net present value is not finite near the lower bound")
	}

	fHi := npv(hi, fs)
	for expansions := 0; finmath.IsFinite(fHi) && fLo*fHi > 0 && expansions < s.Options.MaxBracketExpansions; expansions++ {
		hi *= 2
		fHi = npv(hi, fs)
	}
	if !finmath.IsFinite(fHi) || fLo*fHi > 0 {
		return nil, domain.IRRNotFound(op, "no sign change of NPV in [%g, %g]", lo, hi)
	}

	mid := (lo + hi) / 2
	iterations := 0
	for iterations < s.Options.MaxIterations {
		iterations++
		if iterations%64 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		mid = (lo + hi) / 2
		fMid := npv(mid, fs)
		if !finmath.IsFinite(fMid) {
			return nil, domain.IRRNotFound(op, "net present value is not finite at %g", mid)
		}
		if math.Abs(fMid) < s.Options.Tolerance || (hi-lo)/2 < 1e-15 {
			break
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	res, _, err := newResult(mid, iterations, MethodBisection)
	return res, err
}

func newResult(rate float64, iterations int, method Method) (*Result, bool, error) {
	d, err := finmath.FromFloat("solve_irr", rate)
	if err != nil {
		return nil, false, err
	}
	return &Result{Rate: d, Iterations: iterations, Method: method}, true, nil
}

func npv(r float64, fs []flow) float64 {
	base := 1 + r
	total := 0.0
	for _, f := range fs {
		total += f.amt / math.Pow(base, f.t)
	}
	return total
}

func npvAndDerivative(r float64, fs []flow) (float64, float64) {
	base := 1 + r
	var v, dv float64
	for _, f := range fs {
		disc := math.Pow(base, f.t)
		v += f.amt / disc
		dv += -f.t * f.amt / (disc * base)
	}
	return v, dv
}

// NPV returns Σ amount/(1+rate)^period
func NPV(rate decimal.Decimal, flows []CashFlow) (decimal.Decimal, error) {
	if rate.LessThanOrEqual(domain.One.Neg()) {
		return decimal.Zero, domain.InvalidParameter("npv", "rate", "rate must be above -1, got %s", rate)
	}
	fs := make([]flow, len(flows))
	for i, cf := range flows {
		fs[i] = flow{t: float64(cf.Period), amt: cf.Amount.InexactFloat64()}
	}
	return finmath.FromFloat("npv", npv(rate.InexactFloat64(), fs))
}

// Annualize converts a periodic rate into an effective annual rate: (1+r)^n − 1
func Annualize(periodic decimal.Decimal, periodsPerYear int) (decimal.Decimal, error) {
	if periodsPerYear < 1 {
		return decimal.Zero, domain.InvalidParameter("annualize", "periods_per_year", "periods per year must be at least 1, got %d", periodsPerYear)
	}
	g, err := finmath.PowInt("annualize", domain.One.Add(periodic), periodsPerYear)
	if err != nil {
		return decimal.Zero, err
	}
	return g.Sub(domain.One), nil
}
