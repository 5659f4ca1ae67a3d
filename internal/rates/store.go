package rates

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Entry is a single admin rate
type Entry struct {
	Key   string          `json:"key" yaml:"key"`
	Value decimal.Decimal `json:"value" yaml:"value"`
}

// Store is an admin rate store that can also be edited
type Store interface {
	Lookup
	SetRate(ctx context.Context, key string, value decimal.Decimal) error
	DeleteRate(ctx context.Context, key string) (bool, error)
	ListRates(ctx context.Context) ([]Entry, error)
}

// Seed writes every entry of values that the store does not already hold
func Seed(ctx context.Context, store Store, values map[string]decimal.Decimal) (int, error) {
	added := 0
	for k, v := range values {
		_, ok, err := store.Rate(ctx, k)
		if err != nil {
			return added, err
		}
		if ok {
			continue
		}
		if err := store.SetRate(ctx, k, v); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// MemoryStore is a Store kept in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewMemoryStore creates a store holding a copy of values
func NewMemoryStore(values map[string]decimal.Decimal) *MemoryStore {
	ms := &MemoryStore{rates: make(map[string]decimal.Decimal, len(values))}
	for k, v := range values {
		ms.rates[k] = v
	}
	return ms
}

func (ms *MemoryStore) Rate(_ context.Context, key string) (decimal.Decimal, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	v, ok := ms.rates[key]
	return v, ok, nil
}

func (ms *MemoryStore) SetRate(_ context.Context, key string, value decimal.Decimal) error {
	if key == "" {
		return fmt.Errorf("rate key is required")
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rates[key] = value
	return nil
}

func (ms *MemoryStore) DeleteRate(_ context.Context, key string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	_, ok := ms.rates[key]
	delete(ms.rates, key)
	return ok, nil
}

func (ms *MemoryStore) ListRates(_ context.Context) ([]Entry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	entries := make([]Entry, 0, len(ms.rates))
	for k, v := range ms.rates {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
