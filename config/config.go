package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "sjsage522/listingwatcher/pkg/errors"

	"github.com/kelseyhightower/envconfig"
)

// Settings represents the runtime configuration read from the environment
type Settings struct {
	// Watchlist file (JSON or YAML)
	WatchlistPath string `envconfig:"WATCHLIST_PATH" default:"config.json"`

	// Seen item cache file. Empty means DefaultSeenCachePath.
	SeenCachePath string `envconfig:"SEEN_CACHE_PATH"`

	// Environment
	Environment string `envconfig:"LISTING_ENVIRONMENT" default:"development"`

	// Crawler configuration
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	FetchInterval time.Duration `envconfig:"FETCH_INTERVAL" default:"1s"`
	CrawlInterval time.Duration `envconfig:"CRAWL_INTERVAL" default:"0s"`
	BlockTime     time.Duration `envconfig:"BLOCK_TIME" default:"500s"`

	// Memcache configuration, used to remember rate limited sites between runs
	MemcacheAddr string `envconfig:"MEMCACHE_ADDR"`

	// Redis configuration, optional notification stream
	RedisAddr            string `envconfig:"REDIS_ADDR"`
	RedisDB              int    `envconfig:"REDIS_DB" default:"0"`
	RedisStream          string `envconfig:"REDIS_STREAM" default:"listings"`
	RedisStreamCount     int    `envconfig:"REDIS_STREAM_COUNT" default:"1"`
	RedisStreamMaxLength int    `envconfig:"REDIS_STREAM_MAX_LENGTH" default:"1000"`

	// Telegram Bot API endpoint
	TelegramAPIURL string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
}

// LoadSettings loads the settings from environment variables with defaults
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, apperrors.NewConfiguration("failed to read environment", err)
	}

	if s.SeenCachePath == "" {
		path, err := DefaultSeenCachePath()
		if err != nil {
			return nil, err
		}
		s.SeenCachePath = path
	}

	return &s, nil
}

// DefaultSeenCachePath returns the per-user cache file location
func DefaultSeenCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", apperrors.NewConfiguration("cannot resolve home directory", err)
	}
	return filepath.Join(home, ".cache", "listingwatcher.cache"), nil
}

// Validate checks the settings for values the worker cannot run with
func (s *Settings) Validate() error {
	if s.WatchlistPath == "" {
		return apperrors.NewValidation("WATCHLIST_PATH must not be empty")
	}
	if s.SeenCachePath == "" {
		return apperrors.NewValidation("SEEN_CACHE_PATH must not be empty")
	}
	if s.HTTPTimeout < 0 || s.FetchInterval < 0 || s.CrawlInterval < 0 || s.BlockTime < 0 {
		return apperrors.NewValidation("durations must not be negative")
	}
	if s.RedisAddr != "" {
		if s.RedisStream == "" {
			return apperrors.NewValidation("REDIS_STREAM must not be empty")
		}
		if s.RedisStreamCount <= 0 {
			return apperrors.NewValidation(fmt.Sprintf("REDIS_STREAM_COUNT must be positive, got %d", s.RedisStreamCount))
		}
	}
	return nil
}
