// Package rates resolves the interest and inflation rates a calculation runs
// with: a user-supplied value wins, then the admin-configured default, then
// the caller's hardcoded fallback.
package rates

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Source tags where a resolved rate came from
type Source string

const (
	SourceUser     Source = "user"
	SourceAdmin    Source = "admin"
	SourceFallback Source = "fallback"
)

// Well-known admin keys
const (
	KeyLoanRate      = "loan_rate"
	KeyInterestRate  = "interest_rate"
	KeyInflationRate = "inflation_rate"
	KeyFDRate        = "fd_rate"
	KeySIPRate       = "sip_rate"
	KeySWPRate       = "swp_rate"
)

// KnownKeys lists every well-known admin key in sorted order
func KnownKeys() []string {
	return []string{
		KeyFDRate,
		KeyInflationRate,
		KeyInterestRate,
		KeyLoanRate,
		KeySIPRate,
		KeySWPRate,
	}
}

// Lookup is the read-only admin rate store
type Lookup interface {
	Rate(ctx context.Context, key string) (decimal.Decimal, bool, error)
}

// Request describes one rate to resolve. Aliases are consulted in order
// after Key when the admin store has no entry for Key.
type Request struct {
	UserValue *decimal.Decimal
	Key       string
	Aliases   []string
	Fallback  *decimal.Decimal
}

// Resolved is the outcome of a resolution
type Resolved struct {
	Value  decimal.Decimal `json:"value"`
	Source Source          `json:"source"`
	Key    string          `json:"key"`
}

// Resolver applies the user > admin > fallback policy
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a resolver over lookup; a nil lookup acts as an empty store
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns the rate for req tagged with its source
func (r *Resolver) Resolve(ctx context.Context, req Request) (Resolved, error) {
	if req.UserValue != nil {
		return Resolved{Value: *req.UserValue, Source: SourceUser, Key: req.Key}, nil
	}

	if r != nil && r.lookup != nil {
		for _, key := range append([]string{req.Key}, req.Aliases...) {
			if key == "" {
				continue
			}
			value, ok, err := r.lookup.Rate(ctx, key)
			if err != nil {
				return Resolved{}, fmt.Errorf("failed to look up rate %s: %w", key, err)
			}
			if ok {
				return Resolved{Value: value, Source: SourceAdmin, Key: key}, nil
			}
		}
	}

	if req.Fallback != nil {
		return Resolved{Value: *req.Fallback, Source: SourceFallback, Key: req.Key}, nil
	}

	return Resolved{}, domain.RateUnresolved("resolve_rate", req.Key)
}

// Value returns a pointer to v, handy for Request literals
func Value(v decimal.Decimal) *decimal.Decimal {
	return &v
}

// Percent returns a pointer to a decimal built from f
func Percent(f float64) *decimal.Decimal {
	return Value(decimal.NewFromFloat(f))
}

// StaticLookup is a fixed map of admin rates
type StaticLookup map[string]decimal.Decimal

// Rate implements Lookup
func (s StaticLookup) Rate(_ context.Context, key string) (decimal.Decimal, bool, error) {
	v, ok := s[key]
	return v, ok, nil
}

// Defaults returns the built-in admin rates seeded into fresh stores
func Defaults() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		KeyLoanRate:      decimal.NewFromInt(8),
		KeyInflationRate: decimal.NewFromInt(6),
		KeyFDRate:        decimal.NewFromFloat(7.5),
		KeySIPRate:       decimal.NewFromInt(12),
		KeySWPRate:       decimal.NewFromInt(10),
	}
}
