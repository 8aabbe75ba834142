package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookwidget/internal/api"
	"bookwidget/internal/config"
	"bookwidget/internal/events"
	"bookwidget/internal/logging"
	"bookwidget/internal/metrics"
	"bookwidget/internal/session"
	"bookwidget/internal/widget"
	"bookwidget/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	embed, err := loadEmbed(cfg, &logger)
	if err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	gateway := buildGateway(cfg, embed, redisClient)
	sessions := buildSessions(cfg, redisClient, &logger)

	bus := events.NewEventBus()
	subscribeEventLog(bus, &logger)

	host, err := widget.NewHost(embed, gateway, sessions, bus, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("widget host refused to attach")
		return err
	}

	server := widget.NewServer(cfg.Widget, host, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analytics := worker.NewAnalyticsWorker(gateway, redisClient, worker.RetryPolicy{}, &logger)
	analytics.Attach(bus)
	go analytics.Start(ctx)

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, server, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "widget-main").Logger()

	return cfg, logger, closer, nil
}

// loadEmbed resolves the active embed from the optional embeds file. A
// deployment hosting several storefronts lists them there and selects one
// with WIDGET_CLIENT_ID; without the file the main config's embed is used.
func loadEmbed(cfg *config.Config, logger *zerolog.Logger) (config.EmbedConfig, error) {
	embedsPath := os.Getenv("EMBEDS_PATH")
	if embedsPath == "" {
		embedsPath = "configs/embeds.yaml"
	}

	data, err := os.ReadFile(embedsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.Embed, nil
		}
		logger.Error().Err(err).Str("embeds_path", embedsPath).Msg("read embeds")
		return config.EmbedConfig{}, err
	}

	var embedsConfig struct {
		Embeds []config.EmbedConfig `yaml:"embeds"`
	}
	if err := yaml.Unmarshal(data, &embedsConfig); err != nil {
		logger.Error().Err(err).Str("embeds_path", embedsPath).Msg("parse embeds")
		return config.EmbedConfig{}, err
	}
	if len(embedsConfig.Embeds) == 0 {
		return cfg.Embed, nil
	}

	wantClient := os.Getenv("WIDGET_CLIENT_ID")
	if wantClient == "" {
		return embedsConfig.Embeds[0], nil
	}
	for _, e := range embedsConfig.Embeds {
		if e.ClientID == wantClient {
			return e, nil
		}
	}
	return config.EmbedConfig{}, fmt.Errorf("embed for client %q not found in %s", wantClient, embedsPath)
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := session.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func buildGateway(cfg *config.Config, embed config.EmbedConfig, redisClient *redis.Client) *api.Client {
	gateway := api.NewClient(embed.BaseURL, embed.ClientID)
	if redisClient != nil {
		gateway.UseRedisCache(redisClient, time.Duration(cfg.Widget.CacheTTL)*time.Second)
	}
	gateway.UseAvailabilityLimit(cfg.Widget.AvailabilityLimit.RPS, cfg.Widget.AvailabilityLimit.Burst)
	return gateway
}

// buildSessions prefers Redis-backed sessions with an in-memory fallback, so
// a Redis outage degrades to per-process sessions instead of failing opens.
func buildSessions(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *session.Service {
	ttl := time.Duration(cfg.Widget.SessionTTL) * time.Second
	memory := session.NewMemorySessionRepository(ttl)

	if redisClient == nil {
		return session.NewService(memory, logger)
	}

	primary := session.NewRedisSessionRepository(redisClient, ttl)
	return session.NewService(session.NewFailoverSessionRepository(primary, memory, logger), logger)
}

func subscribeEventLog(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingSubmitted,
		events.EventSubmissionFailed,
		events.EventCatalogLoadFailed,
	} {
		et := eventType
		bus.Subscribe(et, func(event *events.Event) error {
			logger.Info().Str("event", et).RawJSON("payload", event.Payload).Msg("widget event")
			return nil
		})
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, server *widget.Server, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("widget server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.Widget.HTTPPort).Msg("widget server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("widget server shutdown")
	}

	logger.Info().Msg("widget server stopped")
	return nil
}
