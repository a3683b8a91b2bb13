package weather

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/metrics"
)

// Service serves hourly series from the store and falls back to the provider on a miss.
type Service struct {
	store    Store
	provider Provider
	logger   *zap.Logger
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// Fetch returns the hourly series for the coordinate's rounded location on the instant's UTC day.
// Hits never touch the network. Failed fetches are returned as *FetchError and are not cached.
// Concurrent misses on the same key are not de-duplicated; the last Put wins.
func (s *Service) Fetch(ctx context.Context, coord geometry.Coordinate, instant time.Time) (HourlySeries, error) {
	key := NewCacheKey(coord, instant)

	series, ok, err := s.store.Get(ctx, key)
	if err != nil {
		// Treat a broken cache as a miss; the provider is still authoritative.
		s.logger.Warn("cache lookup failed", zap.String("key", key.String()), zap.Error(err))
	}
	if ok {
		metrics.CacheHitsTotal.Inc()
		s.logger.Debug("cache hit", zap.String("key", key.String()))
		return series, nil
	}
	metrics.CacheMissesTotal.Inc()

	from, to := key.Window()

	started := time.Now()
	series, err = s.provider.FetchHourly(ctx, coord, from, to)
	metrics.FetchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.FetchErrorsTotal.Inc()
		s.logger.Error("weather fetch failed",
			zap.String("provider", s.provider.Name()),
			zap.String("key", key.String()),
			zap.Error(err))
		return HourlySeries{}, &FetchError{Key: key, Provider: s.provider.Name(), Err: err}
	}

	if err := s.store.Put(ctx, key, series); err != nil {
		s.logger.Warn("cache store failed", zap.String("key", key.String()), zap.Error(err))
	}

	return series, nil
}

// Provider returns the name of the configured provider.
func (s *Service) Provider() string {
	return s.provider.Name()
}
