package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/listingwatcher/config"
	"sjsage522/listingwatcher/internal/crawler"
	"sjsage522/listingwatcher/logger"
	"sjsage522/listingwatcher/services/cache"
	"sjsage522/listingwatcher/services/publisher"
	"sjsage522/listingwatcher/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	logger.Init()
	log := logger.Root()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	if err := settings.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid settings")
	}

	watchlist, err := config.LoadWatchlist(settings.WatchlistPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load watchlist")
	}
	if err := watchlist.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid watchlist")
	}

	log.Info().
		Str("environment", settings.Environment).
		Str("watchlist", settings.WatchlistPath).
		Str("seen_cache", settings.SeenCachePath).
		Int("vinted_urls", len(watchlist.VintedURLs)).
		Int("lbc_urls", len(watchlist.LbcURLs)).
		Msg("Starting listing watcher")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, settings, watchlist)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Listing watcher exited with error")
	}

	log.Info().Msg("Done")
}

// run wires the services, crawlers and worker, then runs once or every
// CRAWL_INTERVAL. Services are closed on every return path.
func run(ctx context.Context, settings *config.Settings, watchlist *config.Watchlist) error {
	services := initializeServices(ctx, settings, watchlist)
	defer services.Cleanup()

	seen, err := cache.LoadSeenCache(settings.SeenCachePath)
	if err != nil {
		return err
	}
	logger.ForCache("seen").Info().Int("entries", seen.Len()).Str("path", seen.Path()).Msg("Loaded seen cache")

	crawlers := crawler.CreateCrawlers(watchlist, settings, services.Cache)
	w := worker.NewWorker(crawlers, seen, services.Publisher)

	if settings.CrawlInterval > 0 {
		logger.Root().Info().Dur("crawl_interval", settings.CrawlInterval).Msg("Running until interrupted")
		return w.Start(ctx, settings.CrawlInterval)
	}
	_, err = w.RunOnce(ctx)
	return err
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher *publisher.MultiPublisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.ForPublisher("all").Warn().Err(err).Msg("Failed to close publishers")
		}
		s.Publisher = nil
	}
}

// initializeServices builds the optional block cache and the notification
// channels. Unreachable optional backends are logged and left out.
func initializeServices(ctx context.Context, settings *config.Settings, watchlist *config.Watchlist) *Services {
	services := &Services{}

	if settings.MemcacheAddr != "" {
		log := logger.ForCache("memcache")
		mc := cache.NewMemcacheService(settings.MemcacheAddr)
		if err := mc.Ping(); err != nil {
			log.Warn().Err(err).Str("addr", settings.MemcacheAddr).Msg("Memcache unavailable, rate limits will not be remembered")
		} else {
			services.Cache = mc
			log.Info().Str("addr", settings.MemcacheAddr).Msg("Connected to Memcache")
		}
	}

	var pubs []publisher.Publisher
	if watchlist.HasTelegram() {
		log := logger.ForPublisher("telegram")
		telegramPublisher, err := publisher.NewTelegramPublisher(
			settings.TelegramAPIURL,
			*watchlist.TelegramToken,
			*watchlist.TelegramChatID,
			settings.HTTPTimeout,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Telegram unavailable, chat notifications disabled")
		} else {
			pubs = append(pubs, telegramPublisher)
			log.Info().Str("chat", *watchlist.TelegramChatID).Msg("Publishing to Telegram")
		}
	}

	if settings.RedisAddr != "" {
		log := logger.ForPublisher("redis")
		redisPublisher := publisher.NewRedisPublisher(
			settings.RedisAddr,
			settings.RedisDB,
			settings.RedisStream,
			settings.RedisStreamCount,
			settings.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", settings.RedisAddr).Msg("Redis unavailable, stream publishing disabled")
			redisPublisher.Close()
		} else {
			pubs = append(pubs, redisPublisher)
			log.Info().
				Str("addr", settings.RedisAddr).
				Int("db", settings.RedisDB).
				Str("stream", settings.RedisStream).
				Msg("Connected to Redis")
		}
	}

	if len(pubs) == 0 {
		logger.ForPublisher("log").Warn().Msg("No notification channel configured, new items will only be logged")
		pubs = append(pubs, publisher.LogPublisher{})
	}
	services.Publisher = publisher.NewMultiPublisher(pubs...)

	return services
}
