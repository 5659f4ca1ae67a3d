package rates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// rateFile is the on-disk layout of a FileStore
type rateFile struct {
	Rates map[string]decimal.Decimal `yaml:"rates"`
}

// FileStore keeps admin rates in a YAML file
type FileStore struct {
	path  string
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewFileStore creates an empty store bound to path. Call Load to read it.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:  path,
		rates: make(map[string]decimal.Decimal),
	}
}

// OpenFileStore loads path, seeding it with Defaults when the file does not exist
func OpenFileStore(path string) (*FileStore, error) {
	fs := NewFileStore(path)
	if err := fs.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		for k, v := range Defaults() {
			fs.rates[k] = v
		}
	}
	return fs, nil
}

// Load reads the YAML file, replacing the in-memory rates
func (fs *FileStore) Load() error {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", fs.path, err)
	}

	var rf rateFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.rates = make(map[string]decimal.Decimal, len(rf.Rates))
	for k, v := range rf.Rates {
		fs.rates[k] = v
	}
	return nil
}

// Save writes the current rates back to the YAML file
func (fs *FileStore) Save() error {
	fs.mu.RLock()
	rf := rateFile{Rates: make(map[string]decimal.Decimal, len(fs.rates))}
	for k, v := range fs.rates {
		rf.Rates[k] = v
	}
	fs.mu.RUnlock()

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("failed to encode rates: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", fs.path, err)
	}
	return nil
}

// Rate implements Lookup
func (fs *FileStore) Rate(_ context.Context, key string) (decimal.Decimal, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	v, ok := fs.rates[key]
	return v, ok, nil
}

// SetRate stores value under key and rewrites the file
func (fs *FileStore) SetRate(_ context.Context, key string, value decimal.Decimal) error {
	if key == "" {
		return fmt.Errorf("rate key is required")
	}
	fs.mu.Lock()
	fs.rates[key] = value
	fs.mu.Unlock()
	return fs.Save()
}

// DeleteRate removes key and rewrites the file; it reports whether the key existed
func (fs *FileStore) DeleteRate(_ context.Context, key string) (bool, error) {
	fs.mu.Lock()
	_, ok := fs.rates[key]
	delete(fs.rates, key)
	fs.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, fs.Save()
}

// ListRates returns all rates ordered by key
func (fs *FileStore) ListRates(_ context.Context) ([]Entry, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	entries := make([]Entry, 0, len(fs.rates))
	for k, v := range fs.rates {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
