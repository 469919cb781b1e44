package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.OpenWeatherAPIKey == "" {
		log.Printf("WARN: OPENWEATHER_API_KEY is not set; every search will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector("weather_dashboard", reg)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherConfig{
		APIKey:      cfg.OpenWeatherAPIKey,
		BaseURL:     cfg.OpenWeatherBaseURL,
		TileBaseURL: cfg.OpenWeatherTileURL,
		Location:    cfg.DisplayLocation,
	}, collector)

	service := weather.NewService(provider, collector)

	historyStore, closeStore := openHistoryStore(ctx, cfg)
	defer closeStore()

	dash := dashboard.New(service, dashboard.NewHistory(ctx, historyStore, collector), collector)

	refresher := scheduler.New(dash, cfg.RefreshInterval, cfg.HTTPTimeout*3)
	if err := refresher.Start(); err != nil {
		log.Fatalf("failed to start refresher: %v", err)
	}
	defer refresher.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// A search waits for all four upstream calls.
		WriteTimeout: cfg.HTTPTimeout*2 + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Dashboard: dash,
		Tiles:     provider,
		Gatherer:  reg,
		Location:  cfg.DisplayLocation,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s (history backend %s)", cfg.Port, cfg.HistoryBackend)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// openHistoryStore builds the configured backend. A backend that cannot be
// opened falls back to memory so the dashboard keeps working.
func openHistoryStore(ctx context.Context, cfg *config.AppConfig) (weather.HistoryStore, func()) {
	noop := func() {}

	switch cfg.HistoryBackend {
	case config.BackendFile:
		fs, err := store.NewFileStore(cfg.HistoryDir)
		if err != nil {
			log.Printf("WARN: file history store unavailable, using memory: %v", err)
			break
		}
		return fs, noop

	case config.BackendRedis:
		client, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("WARN: redis history store unavailable, using memory: %v", err)
			break
		}
		return store.NewRedisStore(client, store.HistoryKey), func() {
			if err := client.Close(); err != nil {
				log.Printf("WARN: closing redis client: %v", err)
			}
		}
	}

	return store.NewMemoryStore(dashboard.HistoryLimit), noop
}
