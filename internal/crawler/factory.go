package crawler

import (
	"time"

	"sjsage522/listingwatcher/config"
	"sjsage522/listingwatcher/helpers"
	"sjsage522/listingwatcher/logger"
	"sjsage522/listingwatcher/services/cache"

	"golang.org/x/time/rate"
)

// newLimiter paces requests to one site; a zero interval disables pacing
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// CreateCrawlers creates one crawler per watched page. Vinted pages come
// first, then leboncoin pages, each in watchlist order.
func CreateCrawlers(watchlist *config.Watchlist, settings *config.Settings, cacheSvc cache.CacheService) []Crawler {
	vintedLimiter := newLimiter(settings.FetchInterval)
	leboncoinLimiter := newLimiter(settings.FetchInterval)
	vintedClient := helpers.NewClient(settings.HTTPTimeout)

	crawlers := make([]Crawler, 0, len(watchlist.VintedURLs)+len(watchlist.LbcURLs))
	for _, url := range watchlist.VintedURLs {
		crawlers = append(crawlers, NewVintedCrawler(CrawlerConfig{
			URL:       url,
			BlockTime: settings.BlockTime,
			Timeout:   settings.HTTPTimeout,
			Client:    vintedClient,
			Limiter:   vintedLimiter,
		}, cacheSvc))
	}
	for _, url := range watchlist.LbcURLs {
		crawlers = append(crawlers, NewLeboncoinCrawler(CrawlerConfig{
			URL:       url,
			BlockTime: settings.BlockTime,
			Timeout:   settings.HTTPTimeout,
			Limiter:   leboncoinLimiter,
		}, cacheSvc))
	}

	for i, c := range crawlers {
		logger.ForCrawler(c.GetProvider(), c.GetURL()).Debug().Int("index", i).Msg("Crawler created")
	}

	return crawlers
}
