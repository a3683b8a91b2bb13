package store

import (
	"context"
	"sync"

	"github.com/i474232898/weather-region-dashboard/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory series cache.
// Entries never expire and are never evicted for the lifetime of the process.
type MemoryStore struct {
	mu sync.RWMutex

	// key: CacheKey.String(), value: full hourly series
	data map[string]weather.HourlySeries
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]weather.HourlySeries),
	}
}

// Get returns the cached series for key.
func (s *MemoryStore) Get(_ context.Context, key weather.CacheKey) (weather.HourlySeries, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.data[key.String()]
	return series, ok, nil
}

// Put stores series under key, replacing any previous value.
func (s *MemoryStore) Put(_ context.Context, key weather.CacheKey, series weather.HourlySeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key.String()] = series
	return nil
}

// Len returns the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
