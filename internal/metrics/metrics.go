package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Series served from the cache
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_weather_cache_hits_total",
		Help: "Total number of weather lookups served from the series cache",
	})

	// Lookups that had to go to the provider
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_weather_cache_misses_total",
		Help: "Total number of weather lookups that required a provider request",
	})

	// Provider failures
	FetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_weather_fetch_errors_total",
		Help: "Total number of failed provider requests",
	})

	// Provider latency
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_weather_fetch_duration_seconds",
		Help:    "Time taken by a single provider request",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	// Region refresh outcomes, labelled ok/error
	RegionRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_region_refreshes_total",
		Help: "Total number of region refreshes by outcome",
	}, []string{"outcome"})

	// Currently registered regions
	RegionsRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_regions_registered",
		Help: "Number of regions currently registered",
	})
)
