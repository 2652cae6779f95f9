package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"sjsage522/listingwatcher/helpers"
	"sjsage522/listingwatcher/logger"
	apperrors "sjsage522/listingwatcher/pkg/errors"
	"sjsage522/listingwatcher/services/cache"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	URL       string
	Provider  string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Client    *http.Client
	Limiter   *rate.Limiter
}

func newBaseCrawler(provider string, config CrawlerConfig, cacheSvc cache.CacheService) BaseCrawler {
	client := config.Client
	if client == nil {
		client = helpers.NewClient(config.Timeout)
	}
	return BaseCrawler{
		URL:       config.URL,
		Provider:  provider,
		CacheKey:  config.CacheKey,
		CacheSvc:  cacheSvc,
		BlockTime: config.BlockTime,
		Client:    client,
		Limiter:   config.Limiter,
	}
}

// fetchWithCache fetches the page unless the site recently rate limited us,
// in which case it fails fast. A new rate limit answer is remembered for
// BlockTime.
func (c *BaseCrawler) fetchWithCache(ctx context.Context, client *http.Client, headers http.Header) (io.Reader, error) {
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			msg := fmt.Sprintf("not fetching for up to %s after being rate limited", c.BlockTime)
			return nil, apperrors.New(apperrors.ErrorTypeRateLimit, c.Provider, msg, nil)
		}
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewNetwork(c.Provider, "fetch cancelled", err)
		}
	}

	body, err := helpers.Fetch(ctx, client, c.URL, headers)
	if err != nil {
		if apperrors.IsRateLimit(err) {
			if c.CacheSvc != nil && c.CacheKey != "" && c.BlockTime > 0 {
				seconds := strconv.Itoa(int(c.BlockTime / time.Second))
				if setErr := c.CacheSvc.Set(c.CacheKey, []byte(seconds), c.BlockTime); setErr != nil {
					logger.ForCrawler(c.Provider, c.URL).Warn().Err(setErr).Msg("Failed to remember rate limit")
				}
			}
			return nil, apperrors.New(apperrors.ErrorTypeRateLimit, c.Provider, "fetch "+c.URL, err)
		}
		return nil, apperrors.NewNetwork(c.Provider, "fetch "+c.URL, err)
	}

	return body, nil
}

// createDocument creates a goquery document from a reader
func (c *BaseCrawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, apperrors.NewParsing(c.Provider, "failed to parse HTML", err)
	}
	return doc, nil
}

// processItems extracts every selection in order. Items whose required
// markers are missing are logged and left out.
func (c *BaseCrawler) processItems(selections []*goquery.Selection, extract func(*goquery.Selection) (Item, error)) []Item {
	log := logger.ForCrawler(c.Provider, c.URL)

	items := make([]Item, 0, len(selections))
	for i, s := range selections {
		item, err := extract(s)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping item")
			continue
		}
		items = append(items, item)
	}
	return items
}

// GetProvider returns the provider name for the crawler
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}

// GetURL returns the watched page
func (c *BaseCrawler) GetURL() string {
	return c.URL
}
