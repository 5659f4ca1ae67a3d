package rates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rates.yaml")

	store, err := OpenFileStore(path)
	require.NoError(t, err)

	v, ok, err := store.Rate(ctx, KeyLoanRate)
	require.NoError(t, err)
	assert.True(t, ok, "Should seed defaults for a missing file")
	assert.True(t, v.Equal(decimal.NewFromInt(8)))

	require.NoError(t, store.SetRate(ctx, KeyLoanRate, decimal.NewFromFloat(9.25)))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	v, ok, err = reopened.Rate(ctx, KeyLoanRate)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromFloat(9.25)), "Should persist updates to disk")

	deleted, err := reopened.DeleteRate(ctx, KeyLoanRate)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, ok, _ = reopened.Rate(ctx, KeyLoanRate)
	assert.False(t, ok, "Should forget deleted keys")
}

func TestFileStore_LoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rates: [unclosed"), 0o644))

	_, err := OpenFileStore(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestFileStore_ListRatesSorted(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "rates.yaml"))
	ctx := context.Background()
	require.NoError(t, store.SetRate(ctx, "b", decimal.NewFromInt(2)))
	require.NoError(t, store.SetRate(ctx, "a", decimal.NewFromInt(1)))

	entries, err := store.ListRates(ctx)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)
}

type countingStore struct {
	*MemoryStore
	reads int
}

func (c *countingStore) Rate(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	c.reads++
	return c.MemoryStore.Rate(ctx, key)
}

func TestCachedStore_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore(map[string]decimal.Decimal{KeyLoanRate: decimal.NewFromInt(9)})}
	cached := NewCachedStore(inner, NewMemoryCache(), time.Minute)

	for i := 0; i < 3; i++ {
		v, ok, err := cached.Rate(ctx, KeyLoanRate)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, v.Equal(decimal.NewFromInt(9)))
	}
	assert.Equal(t, 1, inner.reads, "Should hit the store only once")

	_, ok, err := cached.Rate(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = cached.Rate(ctx, "missing")
	assert.False(t, ok)
	assert.Equal(t, 2, inner.reads, "Should cache misses as well")
}

func TestCachedStore_WriteInvalidates(t *testing.T) {
	ctx := context.Background()
	cached := NewCachedStore(NewMemoryStore(map[string]decimal.Decimal{KeyLoanRate: decimal.NewFromInt(9)}), NewMemoryCache(), 0)

	_, _, err := cached.Rate(ctx, KeyLoanRate)
	require.NoError(t, err)
	require.NoError(t, cached.SetRate(ctx, KeyLoanRate, decimal.NewFromInt(12)))

	v, ok, err := cached.Rate(ctx, KeyLoanRate)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(12)), "Should observe the new value after a write")
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k", "v", time.Second))
	_, ok, _ := cache.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = cache.Get(ctx, "k")
	assert.False(t, ok, "Should expire entries after their ttl")
}

func TestRefresher_RejectsBadSchedule(t *testing.T) {
	cached := NewCachedStore(NewMemoryStore(nil), NewMemoryCache(), 0)

	_, err := NewRefresher(cached, "not a schedule", []string{KeyLoanRate}, nil)

	assert.Error(t, err)
}

func TestRefresher_RefreshWarmsCache(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore(map[string]decimal.Decimal{KeyLoanRate: decimal.NewFromInt(9)})
	cache := NewMemoryCache()
	cached := NewCachedStore(inner, cache, 0)

	r, err := NewRefresher(cached, "@every 1h", []string{KeyLoanRate}, nil)
	require.NoError(t, err)

	r.Refresh()

	raw, ok, err := cache.Get(ctx, "fincalc:rate:"+KeyLoanRate)
	require.NoError(t, err)
	assert.True(t, ok, "Should populate the cache")
	assert.Equal(t, "9", raw)
}

func TestImportXML_RateSheet(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rates>
  <rate key="loan_rate">8.75</rate>
  <rate key="inflation_rate">5.5</rate>
</rates>`

	entries, err := ImportXML(strings.NewReader(xml), DefaultImportOptions())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "loan_rate", entries[0].Key)
	assert.True(t, entries[0].Value.Equal(decimal.NewFromFloat(8.75)))
	assert.Equal(t, "inflation_rate", entries[1].Key)
}

func TestImportXML_KeyRateFeed(t *testing.T) {
	xml := `<Envelope><Body><KeyRateResponse><KeyRateResult><diffgram>
<KeyRate><KR><DT>2025-01-02</DT><Rate>21.00</Rate></KR><KR><DT>2024-12-20</DT><Rate>20.00</Rate></KR></KeyRate>
</diffgram></KeyRateResult></KeyRateResponse></Body></Envelope>`

	entries, err := ImportXML(strings.NewReader(xml), ImportOptions{KeyRateKey: KeyLoanRate, KeyRateMargin: decimal.NewFromInt(5)})

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Value.Equal(decimal.NewFromInt(26)), "Should take the newest rate plus the margin")
}

func TestImportXML_Errors(t *testing.T) {
	_, err := ImportXML(strings.NewReader("<rates><rate>1</rate></rates>"), DefaultImportOptions())
	assert.Error(t, err, "Should require a key attribute")

	_, err = ImportXML(strings.NewReader("<other/>"), DefaultImportOptions())
	assert.Error(t, err, "Should reject documents without rates")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(map[string]decimal.Decimal{KeyLoanRate: decimal.NewFromInt(11)})

	added, err := Seed(ctx, store, Defaults())

	require.NoError(t, err)
	assert.Equal(t, len(Defaults())-1, added, "Should only add missing keys")
	v, _, _ := store.Rate(ctx, KeyLoanRate)
	assert.True(t, v.Equal(decimal.NewFromInt(11)), "Should keep existing values")
}
