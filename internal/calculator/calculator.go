// Package calculator exposes the engines as named calculators. Each
// calculator takes a flat set of string parameters, resolves the rates it
// needs through the shared rates.Resolver and returns a Result of rounded
// metrics, notes and tables.
package calculator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/shopspring/decimal"
)

// Logger is the logging surface used by the registry
type Logger = domain.Logger

// NopLogger discards log output
type NopLogger = domain.NopLogger

// ParamSpec describes one input of a calculator
type ParamSpec struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Optional    bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Calculator is one named calculation
type Calculator interface {
	Name() string
	Description() string
	Params() []ParamSpec
	Calculate(ctx context.Context, params Params) (*Result, error)
}

// LoanRecord is a computed loan persisted on request
type LoanRecord struct {
	ID            string          `json:"id"`
	Principal     decimal.Decimal `json:"principal"`
	RatePercent   decimal.Decimal `json:"ratePercent"`
	RateSource    rates.Source    `json:"rateSource"`
	TermMonths    int             `json:"termMonths"`
	EMI           decimal.Decimal `json:"emi"`
	TotalInterest decimal.Decimal `json:"totalInterest"`
	TotalPayment  decimal.Decimal `json:"totalPayment"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// LoanRecorder stores loan records
type LoanRecorder interface {
	SaveLoan(ctx context.Context, loan LoanRecord) error
}

// Deps are the collaborators shared by every calculator
type Deps struct {
	Resolver *rates.Resolver
	Logger   Logger
	Loans    LoanRecorder
}

// Factory creates a calculator bound to deps
type Factory func(deps Deps) Calculator

// definition is the static description of a built-in calculator
type definition struct {
	name        string
	description string
	params      []ParamSpec
	run         func(ctx context.Context, s *session) error
}

func (d definition) factory() Factory {
	return func(deps Deps) Calculator {
		return &calc{definition: d, deps: deps}
	}
}

// calc adapts a definition to the Calculator interface
type calc struct {
	definition
	deps Deps
}

func (c *calc) Name() string        { return c.name }
func (c *calc) Description() string { return c.description }

func (c *calc) Params() []ParamSpec {
	out := make([]ParamSpec, len(c.params))
	copy(out, c.params)
	return out
}

// Calculate fills in defaults, rejects unknown or missing parameters and
// runs the calculation
func (c *calc) Calculate(ctx context.Context, params Params) (*Result, error) {
	merged, err := c.prepare(params)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &session{
		reader: reader{op: c.name, params: merged},
		deps:   c.deps,
		result: newResult(c.name),
	}
	if err := c.run(ctx, s); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (c *calc) prepare(params Params) (Params, error) {
	known := make(map[string]ParamSpec, len(c.params))
	for _, spec := range c.params {
		known[spec.Name] = spec
	}

	var unknown []string
	merged := make(Params, len(c.params))
	for name, value := range params {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
			continue
		}
		merged[name] = strings.TrimSpace(value)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, domain.InvalidParameter(c.name, unknown[0], "unknown parameter (accepted: %s)", strings.Join(c.paramNames(), ", "))
	}

	for _, spec := range c.params {
		if v, ok := merged[spec.Name]; ok && v != "" {
			continue
		}
		switch {
		case spec.Default != "":
			merged[spec.Name] = spec.Default
		case !spec.Optional:
			return nil, domain.InvalidParameter(c.name, spec.Name, "parameter is required")
		}
	}
	return merged, nil
}

func (c *calc) paramNames() []string {
	names := make([]string, len(c.params))
	for i, spec := range c.params {
		names[i] = spec.Name
	}
	return names
}

// session carries the state of one Calculate call
type session struct {
	reader
	deps   Deps
	result *Result
}

// rate resolves param through the rate policy and records its source.
// Errors are sticky like the other reader accessors.
func (s *session) rate(ctx context.Context, param, key string, fallback *decimal.Decimal, aliases ...string) decimal.Decimal {
	if s.err != nil {
		return decimal.Zero
	}
	user := s.optionalDecimal(param)
	if s.err != nil {
		return decimal.Zero
	}
	resolved, err := s.deps.Resolver.Resolve(ctx, rates.Request{
		UserValue: user,
		Key:       key,
		Aliases:   aliases,
		Fallback:  fallback,
	})
	if err != nil {
		s.err = fmt.Errorf("%s: %w", s.op, err)
		return decimal.Zero
	}
	s.result.UseRate(param, resolved)
	return resolved.Value
}

func (s *session) logger() Logger {
	return domain.OrNop(s.deps.Logger)
}
