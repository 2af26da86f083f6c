package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// DefaultUpstreamURL is the public leaderboard endpoint of the Dota 2
// web API.
const DefaultUpstreamURL = "https://www.dota2.com/webapi/ILeaderboard/GetDivisionLeaderboard/v0001"

type Config struct {
	AppEnv  string `env:"APP_ENV" default:"development"`
	Port    string `env:"PORT" default:"8066"`
	DataDir string `env:"DATA_DIR" default:"data"`
	DBPath  string `env:"DB_PATH"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	UpstreamURL     string        `env:"UPSTREAM_URL"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"30s"`

	// RedisURL enables the read-through query cache when set.
	RedisURL string `env:"REDIS_URL"`

	// SessionSecret signs the region-preference cookie. A random
	// per-process secret is generated when unset; the cookie only
	// stores the last viewed region, so losing it across restarts
	// costs nothing.
	SessionSecret string `env:"SESSION_SECRET"`

	// Refresher sleep intervals. The happy path follows the
	// next_scheduled_post_time published by the upstream; these cover
	// the cases where it is absent, the fetch came back empty, or the
	// fetch failed outright.
	RefreshFallbackInterval time.Duration `env:"REFRESH_FALLBACK_INTERVAL" default:"1h"`
	RefreshEmptyRetry       time.Duration `env:"REFRESH_EMPTY_RETRY" default:"5m"`
	RefreshErrorRetry       time.Duration `env:"REFRESH_ERROR_RETRY" default:"1m"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = DefaultUpstreamURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "leaderboard.db")
	}
}

func validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	for name, d := range map[string]time.Duration{
		"REFRESH_FALLBACK_INTERVAL": cfg.RefreshFallbackInterval,
		"REFRESH_EMPTY_RETRY":       cfg.RefreshEmptyRetry,
		"REFRESH_ERROR_RETRY":       cfg.RefreshErrorRetry,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
