package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/cache"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/firms"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/gdacs"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/gemini"
	httpadapter "github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/openmeteo"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/upstream"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/config"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/dashboard"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	// A local .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	clients := newUpstreamClients(cfg, metrics)

	weather := cache.NewWeatherProvider(openmeteo.NewClient(clients.weather, cfg.WeatherBaseURL), cache.Options{
		TTL: cfg.WeatherCacheTTL, MaxEntries: cfg.CacheSize, Metrics: metrics,
	})
	fires := cache.NewFireFeed(firms.NewClient(clients.firms, cfg.FIRMSURL, cfg.FIRMSMinConfidence), cache.Options{
		TTL: cfg.FeedCacheTTL, MaxEntries: 1, Metrics: metrics,
	})
	alerts := cache.NewAlertFeed(gdacs.NewClient(clients.gdacs, cfg.GDACSURL), cache.Options{
		TTL: cfg.FeedCacheTTL, MaxEntries: 1, Metrics: metrics,
	})
	briefer := gemini.NewBriefer(cfg.GoogleAPIKey, cfg.BriefingModel, cfg.BriefingBaseURL, clients.gemini, metrics, logger)
	if cfg.GoogleAPIKey == "" {
		logger.Warn("GOOGLE_API_KEY not set; briefings will report the missing credential")
	}

	// Assessment event stream (feature-flagged via KAFKA_ENABLED).
	var (
		publisher dashboard.EventPublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.EventStreamEnabled.Set(1)
		logger.Info("assessment event stream enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaAssessmentTopic)
	} else {
		logger.Info("assessment event stream disabled")
	}

	svc := dashboard.New(weather, fires, alerts, briefer, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, clients.readiness(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// upstreamClients holds one breaker-guarded HTTP client per provider.
type upstreamClients struct {
	weather *upstream.Client
	firms   *upstream.Client
	gdacs   *upstream.Client
	gemini  *upstream.Client
}

func newUpstreamClients(cfg *config.Config, metrics *observability.Metrics) upstreamClients {
	return upstreamClients{
		weather: upstream.NewClient("openmeteo", cfg.WeatherTimeout, metrics),
		firms:   upstream.NewClient("firms", cfg.FeedTimeout, metrics),
		gdacs:   upstream.NewClient("gdacs", cfg.FeedTimeout, metrics),
		gemini:  upstream.NewClient("gemini", cfg.BriefingTimeout, metrics),
	}
}

// readiness covers the map's data sources only. A failing briefing service
// degrades to a warning string in the response and does not gate readiness.
func (u upstreamClients) readiness() upstream.Readiness {
	return upstream.Readiness{u.weather, u.firms, u.gdacs}
}
