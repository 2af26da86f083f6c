package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/adenchik/Lead-Board-Dota2/internal/adapter/httpserver"
	"github.com/adenchik/Lead-Board-Dota2/internal/adapter/websocket"
	"github.com/adenchik/Lead-Board-Dota2/internal/app"
	"github.com/adenchik/Lead-Board-Dota2/internal/cache"
	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
	"github.com/adenchik/Lead-Board-Dota2/internal/dota"
	"github.com/adenchik/Lead-Board-Dota2/internal/platform/config"
	"github.com/adenchik/Lead-Board-Dota2/internal/platform/logging"
	"github.com/adenchik/Lead-Board-Dota2/internal/storage/sqlite"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) *sqlite.Store {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Error("Failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	store, err := sqlite.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	return store
}

func setupRedis(ctx context.Context, redisURL string) *goredis.Client {
	client, err := cache.NewRedisClient(ctx, redisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *httpserver.Server, refresher *app.Refresher, hub *websocket.Hub, store *sqlite.Store) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		refresher.Stop()
		hub.Stop()

		if err := store.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	store := setupStore(cfg)

	var players domain.PlayerRepository = store
	healthChecks := []httpserver.HealthCheck{
		{Name: "sqlite", Check: store.HealthCheck},
	}

	// Redis is optional; without it queries hit SQLite directly.
	if cfg.RedisURL != "" {
		redisClient := setupRedis(context.Background(), cfg.RedisURL)
		defer func() { _ = redisClient.Close() }()

		players = cache.NewPlayerCache(redisClient, store)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	fetcher := dota.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout)
	appSvc := app.NewService(players, store, fetcher)

	hub := websocket.NewHub()
	appSvc.OnRefresh(hub.NotifyRefresh)

	refresher := app.NewRefresher(appSvc, clock, app.Intervals{
		Fallback:   cfg.RefreshFallbackInterval,
		EmptyRetry: cfg.RefreshEmptyRetry,
		ErrorRetry: cfg.RefreshErrorRetry,
	})
	go refresher.Run(context.Background())

	srv, err := httpserver.NewServer(cfg, appSvc, hub.Handler(), healthChecks)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, refresher, hub, store)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
