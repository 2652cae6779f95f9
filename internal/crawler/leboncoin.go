package crawler

import (
	"context"
	"net/http"
	"time"

	"sjsage522/listingwatcher/helpers"
	apperrors "sjsage522/listingwatcher/pkg/errors"
	"sjsage522/listingwatcher/services/cache"

	"github.com/PuerkitoBio/goquery"
)

const (
	leboncoinBaseURL      = "https://www.leboncoin.fr"
	leboncoinItemSelector = "li._3DFQ-"
	leboncoinUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/77.0.3865.90 Safari/537.36 OPR/64.0.3417.47"
	leboncoinLanguage     = "fr-FR,en;q=0.5"
)

// LeboncoinItem is a listing from a leboncoin search result list
type LeboncoinItem struct {
	Price *string `json:"price,omitempty"`
	Name  *string `json:"name,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// Fields returns price, name and url in that order
func (i LeboncoinItem) Fields() []Field {
	return []Field{
		{Name: "price", Value: i.Price},
		{Name: "name", Value: i.Name},
		{Name: "url", Value: i.URL},
	}
}

// Provider returns ProviderLeboncoin
func (i LeboncoinItem) Provider() string {
	return ProviderLeboncoin
}

var leboncoinMarkers = markers{provider: ProviderLeboncoin}

func leboncoinText(selector string) func(*goquery.Selection) (string, error) {
	return func(s *goquery.Selection) (string, error) {
		sel, err := leboncoinMarkers.first(s, selector)
		if err != nil {
			return "", err
		}
		return helpers.CleanText(sel.Text()), nil
	}
}

// Ads without a price are common on leboncoin; name and link are not optional.
var leboncoinExtractor = extractor{
	provider: ProviderLeboncoin,
	attributes: []attribute{
		{name: "name", required: true, extract: leboncoinText("span[itemprop=name]")},
		{name: "price", extract: leboncoinText("span[itemprop=priceCurrency]")},
		{
			name:     "url",
			required: true,
			extract: func(s *goquery.Selection) (string, error) {
				// also matches links with extra classes
				href, err := leboncoinMarkers.attr(s, "a.clearfix.trackable", "href")
				if err != nil {
					return "", err
				}
				return leboncoinBaseURL + href, nil
			},
		},
	},
}

// ExtractLeboncoinItem reads one search result list entry
func ExtractLeboncoinItem(s *goquery.Selection) (*LeboncoinItem, error) {
	values, err := leboncoinExtractor.run(s)
	if err != nil {
		return nil, err
	}
	return &LeboncoinItem{
		Price: values["price"],
		Name:  values["name"],
		URL:   values["url"],
	}, nil
}

// LeboncoinCrawler crawls one leboncoin search page
type LeboncoinCrawler struct {
	BaseCrawler
	timeout      time.Duration
	sharedClient bool
}

// NewLeboncoinCrawler creates a new leboncoin crawler. Unless config.Client
// is set, each fetch runs in a fresh cookie session.
func NewLeboncoinCrawler(config CrawlerConfig, cacheSvc cache.CacheService) *LeboncoinCrawler {
	if config.CacheKey == "" {
		config.CacheKey = "leboncoin_rate_limited"
	}
	return &LeboncoinCrawler{
		BaseCrawler:  newBaseCrawler(ProviderLeboncoin, config, cacheSvc),
		timeout:      config.Timeout,
		sharedClient: config.Client != nil,
	}
}

func leboncoinHeaders() http.Header {
	headers := http.Header{}
	headers.Set("User-Agent", leboncoinUserAgent)
	headers.Set("Accept-Language", leboncoinLanguage)
	return headers
}

// FetchItems fetches the search page and returns its items in page order
func (c *LeboncoinCrawler) FetchItems(ctx context.Context) ([]Item, error) {
	client := c.Client
	if !c.sharedClient {
		session, err := helpers.NewSessionClient(c.timeout)
		if err != nil {
			return nil, apperrors.NewNetwork(c.Provider, "failed to open session", err)
		}
		client = session
	}

	body, err := c.fetchWithCache(ctx, client, leboncoinHeaders())
	if err != nil {
		return nil, err
	}

	doc, err := c.createDocument(body)
	if err != nil {
		return nil, err
	}

	var selections []*goquery.Selection
	doc.Find(leboncoinItemSelector).Each(func(_ int, s *goquery.Selection) {
		selections = append(selections, s)
	})

	return c.processItems(selections, func(s *goquery.Selection) (Item, error) {
		item, err := ExtractLeboncoinItem(s)
		if err != nil {
			return nil, err
		}
		return item, nil
	}), nil
}
