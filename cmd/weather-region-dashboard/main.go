package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-region-dashboard/internal/api/http"
	"github.com/i474232898/weather-region-dashboard/internal/classify"
	"github.com/i474232898/weather-region-dashboard/internal/config"
	"github.com/i474232898/weather-region-dashboard/internal/dashboard"
	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/notify"
	"github.com/i474232898/weather-region-dashboard/internal/region"
	"github.com/i474232898/weather-region-dashboard/internal/render"
	"github.com/i474232898/weather-region-dashboard/internal/scheduler"
	"github.com/i474232898/weather-region-dashboard/internal/store"
	"github.com/i474232898/weather-region-dashboard/internal/timeline"
	"github.com/i474232898/weather-region-dashboard/internal/weather"
	"github.com/i474232898/weather-region-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	zlog, err := zcfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	rules := classify.DefaultRules()
	if cfg.ColorRulesFile != "" {
		rules, err = classify.LoadRules(cfg.ColorRulesFile)
		if err != nil {
			zlog.Fatal("failed to load color rules", zap.String("path", cfg.ColorRulesFile), zap.Error(err))
		}
	}

	// Series cache.
	var seriesStore weather.Store
	switch cfg.CacheBackend {
	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rs, err := store.NewRedisStore(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rs.Close()
		seriesStore = rs
	default:
		seriesStore = store.NewMemoryStore()
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	backoff := providers.DefaultBackoff()
	backoff.MaxRetries = cfg.FetchMaxRetries

	var provider weather.Provider
	switch cfg.Provider {
	case config.ProviderWeatherAPI:
		provider = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, cfg.WeatherAPIURL, backoff)
	default:
		provider = providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoArchiveURL, backoff)
	}

	service := weather.NewService(seriesStore, provider, zlog.Named("weather"))

	registry := region.NewRegistry(region.Config{
		MinVertices: cfg.MinVertices,
		MaxVertices: cfg.MaxVertices,
		Location:    cfg.DisplayLocation,
	}, service, zlog.Named("region"))

	tl := timeline.New(time.Now(), cfg.TimelineDaysBefore, cfg.TimelineDaysAfter)
	scene := render.NewScene()
	feed := notify.NewFeed(notify.DefaultTTL)

	ctrl := dashboard.New(tl, registry, scene, feed, dashboard.Options{
		Rules:     rules,
		Location:  cfg.DisplayLocation,
		MapCenter: geometry.Coordinate{Lat: cfg.MapCenterLat, Lng: cfg.MapCenterLng},
		MapZoom:   cfg.MapZoom,
	}, zlog.Named("dashboard"))

	// Optional periodic refresh of all regions.
	sched := scheduler.New(cfg.RefreshInterval, ctrl, zlog.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-region-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-region-dashboard",
			"provider": service.Provider(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, ctrl, scene, feed)

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port), zap.String("provider", service.Provider()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Warn("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Warn("error during shutdown", zap.Error(err))
	}
}
