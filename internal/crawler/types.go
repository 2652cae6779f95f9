package crawler

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	ProviderVinted    = "Vinted"
	ProviderLeboncoin = "Leboncoin"
)

// Field is one named, optional attribute of an item. A nil Value means the
// attribute was not found on the page.
type Field struct {
	Name  string
	Value *string
}

// Item is a listing extracted from one page fragment
type Item interface {
	// Fields returns the item's attributes in their declared order
	Fields() []Field

	// Provider returns the site the item was scraped from
	Provider() string
}

// Crawler interface defines the contract for all crawler implementations
type Crawler interface {
	// FetchItems retrieves the listings of one watched page
	FetchItems(ctx context.Context) ([]Item, error)

	// GetProvider returns the provider name for the crawler
	GetProvider() string

	// GetURL returns the watched page
	GetURL() string
}

// CrawlerConfig contains configuration for a crawler
type CrawlerConfig struct {
	URL       string
	CacheKey  string
	BlockTime time.Duration
	Timeout   time.Duration
	Client    *http.Client
	Limiter   *rate.Limiter
}
