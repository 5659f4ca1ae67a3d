package rates

import (
	"context"
	"errors"
	"testing"

	"github.com/rgehrsitz/fincalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLookup struct{}

func (failingLookup) Rate(context.Context, string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, errors.New("store offline")
}

func TestResolver_UserValueAlwaysWins(t *testing.T) {
	admin := StaticLookup{KeyLoanRate: decimal.NewFromInt(9)}
	resolver := NewResolver(admin)

	resolved, err := resolver.Resolve(context.Background(), Request{
		UserValue: Percent(7.25),
		Key:       KeyLoanRate,
		Fallback:  Percent(10),
	})

	require.NoError(t, err)
	assert.Equal(t, SourceUser, resolved.Source, "Should tag user-supplied rates as user")
	assert.True(t, resolved.Value.Equal(decimal.NewFromFloat(7.25)), "Should return the user value")
}

func TestResolver_UserValueIgnoresFailingStore(t *testing.T) {
	resolver := NewResolver(failingLookup{})

	resolved, err := resolver.Resolve(context.Background(), Request{UserValue: Percent(5), Key: KeyLoanRate})

	require.NoError(t, err, "Should not consult the store when the user supplied a value")
	assert.Equal(t, SourceUser, resolved.Source)
}

func TestResolver_AdminBeforeFallback(t *testing.T) {
	resolver := NewResolver(StaticLookup{KeyLoanRate: decimal.NewFromInt(9)})

	resolved, err := resolver.Resolve(context.Background(), Request{Key: KeyLoanRate, Fallback: Percent(10)})

	require.NoError(t, err)
	assert.Equal(t, SourceAdmin, resolved.Source, "Should prefer the admin default")
	assert.True(t, resolved.Value.Equal(decimal.NewFromInt(9)))
}

func TestResolver_AliasLookup(t *testing.T) {
	resolver := NewResolver(StaticLookup{KeyInterestRate: decimal.NewFromInt(11)})

	resolved, err := resolver.Resolve(context.Background(), Request{
		Key:      KeyLoanRate,
		Aliases:  []string{KeyInterestRate},
		Fallback: Percent(10),
	})

	require.NoError(t, err)
	assert.Equal(t, SourceAdmin, resolved.Source)
	assert.Equal(t, KeyInterestRate, resolved.Key, "Should report the alias that matched")
	assert.True(t, resolved.Value.Equal(decimal.NewFromInt(11)))
}

func TestResolver_Fallback(t *testing.T) {
	resolver := NewResolver(nil)

	resolved, err := resolver.Resolve(context.Background(), Request{Key: KeyLoanRate, Fallback: Percent(10)})

	require.NoError(t, err)
	assert.Equal(t, SourceFallback, resolved.Source, "Should fall back when no store is configured")
	assert.True(t, resolved.Value.Equal(decimal.NewFromInt(10)))
}

func TestResolver_Unresolved(t *testing.T) {
	resolver := NewResolver(StaticLookup{})

	_, err := resolver.Resolve(context.Background(), Request{Key: KeyInflationRate})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateUnresolved, "Should fail without a fallback")
	assert.Equal(t, KeyInflationRate, domain.ParameterOf(err), "Should name the unresolved key")
}

func TestResolver_LookupErrorPropagates(t *testing.T) {
	resolver := NewResolver(failingLookup{})

	_, err := resolver.Resolve(context.Background(), Request{Key: KeyLoanRate, Fallback: Percent(10)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store offline")
}

func TestKnownKeys(t *testing.T) {
	keys := KnownKeys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, KeyInterestRate)
	for k := range Defaults() {
		assert.Contains(t, keys, k, "Should cover every seeded default")
	}
}
