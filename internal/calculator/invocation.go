package calculator

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fincalc/internal/compare"
	"github.com/rgehrsitz/fincalc/internal/domain"
)

// Invocation is one named calculator run
type Invocation struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Calculator string `json:"calculator" yaml:"calculator"`
	Params     Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// Label returns the invocation name, or the calculator name when unnamed
func (inv Invocation) Label() string {
	if inv.Name != "" {
		return inv.Name
	}
	return inv.Calculator
}

// Invoke runs a single invocation
func (r *Registry) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	params := inv.Params
	if params == nil {
		params = Params{}
	}
	result, err := r.Run(ctx, inv.Calculator, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inv.Label(), err)
	}
	return result, nil
}

// Compare runs base and every alternative and composes their summaries on
// the criterion. Outcomes are named by invocation label.
func (r *Registry) Compare(ctx context.Context, base Invocation, alternatives []Invocation, criterion compare.Criterion) (*compare.ComparisonSet, error) {
	if len(alternatives) == 0 {
		return nil, domain.InvalidParameter("compare", "alternatives", "at least one alternative is required")
	}
	seen := map[string]bool{base.Label(): true}
	for _, alt := range alternatives {
		if seen[alt.Label()] {
			return nil, domain.InvalidParameter("compare", "name", "duplicate outcome name %q", alt.Label())
		}
		seen[alt.Label()] = true
	}

	baseResult, err := r.Invoke(ctx, base)
	if err != nil {
		return nil, err
	}
	outcomes := make([]compare.Outcome, 0, len(alternatives))
	for _, alt := range alternatives {
		res, err := r.Invoke(ctx, alt)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, res.Outcome(alt.Label()))
	}

	composer := compare.NewComposer()
	composer.SetLogger(r.deps.Logger)
	set, err := composer.ComposeSet(baseResult.Outcome(base.Label()), outcomes, criterion)
	if err != nil {
		return nil, err
	}
	r.deps.Logger.Infof("compared %d alternative(s) against %s on %s: best %s",
		len(alternatives), base.Label(), criterion.Metric, set.Best)
	return set, nil
}
