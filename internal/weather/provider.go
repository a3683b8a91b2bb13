package weather

import (
	"context"
	"time"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
)

// Provider abstracts an hourly temperature source (e.g. Open-Meteo archive, WeatherAPI history).
type Provider interface {
	Name() string
	FetchHourly(ctx context.Context, coord geometry.Coordinate, from, to time.Time) (HourlySeries, error)
}

// Store is the contract the series caches (memory, redis) must satisfy.
// Get reports ok=false on a miss; err is reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key CacheKey) (series HourlySeries, ok bool, err error)
	Put(ctx context.Context, key CacheKey, series HourlySeries) error
}
