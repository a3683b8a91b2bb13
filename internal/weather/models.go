package weather

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
)

const dayLayout = "2006-01-02"

// ErrNoTemperature is returned when a series has no value for the requested hour.
var ErrNoTemperature = errors.New("no temperature data available")

// CacheKey identifies a cached day of hourly data at a rounded location.
type CacheKey struct {
	Lat float64
	Lng float64
	Day string // UTC calendar day, YYYY-MM-DD
}

// NewCacheKey rounds the coordinate to two decimals and truncates the instant to its UTC day.
func NewCacheKey(coord geometry.Coordinate, instant time.Time) CacheKey {
	return CacheKey{
		Lat: round2(coord.Lat),
		Lng: round2(coord.Lng),
		Day: instant.UTC().Format(dayLayout),
	}
}

// String returns the canonical form used by the stores, e.g. "52.52_13.41_2024-05-01".
func (k CacheKey) String() string {
	return fmt.Sprintf("%.2f_%.2f_%s", k.Lat, k.Lng, k.Day)
}

// Window returns the one-day request window [midnight, midnight+1d] for the key's day.
func (k CacheKey) Window() (time.Time, time.Time) {
	start, err := time.ParseInLocation(dayLayout, k.Day, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return start, start.AddDate(0, 0, 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HourlySeries mirrors the provider's hourly response. Values are indexed by hour of day
// starting at the first requested day; nil entries are hours the provider has no value for.
type HourlySeries struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Hourly           Hourly  `json:"hourly"`
}

type Hourly struct {
	Time          []string   `json:"time"`
	Temperature2m []*float64 `json:"temperature_2m"`
}

// TemperatureAt returns the value at the instant's hour of day in loc.
func (s HourlySeries) TemperatureAt(instant time.Time, loc *time.Location) (float64, error) {
	if loc == nil {
		loc = time.Local
	}
	idx := instant.In(loc).Hour()
	if idx >= len(s.Hourly.Temperature2m) || s.Hourly.Temperature2m[idx] == nil {
		return 0, ErrNoTemperature
	}
	return *s.Hourly.Temperature2m[idx], nil
}

// FetchError wraps a failed provider call for a cache key.
type FetchError struct {
	Key      CacheKey
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch weather %s via %s: %v", e.Key, e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
