package crawler

import (
	"context"
	"strings"

	"sjsage522/listingwatcher/helpers"
	"sjsage522/listingwatcher/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Class selectors here match elements carrying these classes among others,
// not only the exact class attribute.
const (
	vintedBaseURL      = "https://www.vinted.fr"
	vintedItemSelector = "div.is-visible.item-box__container"
)

// VintedItem is a listing from a Vinted catalog grid
type VintedItem struct {
	Brand *string `json:"brand,omitempty"`
	Price *string `json:"price,omitempty"`
	Size  *string `json:"size,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// Fields returns brand, price, size and url in that order
func (i VintedItem) Fields() []Field {
	return []Field{
		{Name: "brand", Value: i.Brand},
		{Name: "price", Value: i.Price},
		{Name: "size", Value: i.Size},
		{Name: "url", Value: i.URL},
	}
}

// Provider returns ProviderVinted
func (i VintedItem) Provider() string {
	return ProviderVinted
}

var vintedMarkers = markers{provider: ProviderVinted}

func vintedDetail(selector string) func(*goquery.Selection) (string, error) {
	return func(s *goquery.Selection) (string, error) {
		details, err := vintedMarkers.first(s, "div.item-box__details")
		if err != nil {
			return "", err
		}
		sel, err := vintedMarkers.first(details, selector)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(sel.Text()), nil
	}
}

// Only the brand may be missing from a Vinted item box.
var vintedExtractor = extractor{
	provider: ProviderVinted,
	attributes: []attribute{
		{
			name: "brand",
			extract: func(s *goquery.Selection) (string, error) {
				sel, err := vintedMarkers.first(s, "a.item-box__brand")
				if err != nil {
					return "", err
				}
				return helpers.CleanText(sel.Text()), nil
			},
		},
		{name: "price", required: true, extract: vintedDetail("div.item-box__title")},
		{name: "size", required: true, extract: vintedDetail("div.item-box__subtitle")},
		{
			name:     "url",
			required: true,
			extract: func(s *goquery.Selection) (string, error) {
				href, err := vintedMarkers.attr(s, "a.media__image-wrapper.js-item-link", "href")
				if err != nil {
					return "", err
				}
				return vintedBaseURL + href, nil
			},
		},
	},
}

// ExtractVintedItem reads one item box container
func ExtractVintedItem(s *goquery.Selection) (*VintedItem, error) {
	values, err := vintedExtractor.run(s)
	if err != nil {
		return nil, err
	}
	return &VintedItem{
		Brand: values["brand"],
		Price: values["price"],
		Size:  values["size"],
		URL:   values["url"],
	}, nil
}

// VintedCrawler crawls one Vinted catalog page
type VintedCrawler struct {
	BaseCrawler
}

// NewVintedCrawler creates a new Vinted crawler
func NewVintedCrawler(config CrawlerConfig, cacheSvc cache.CacheService) *VintedCrawler {
	if config.CacheKey == "" {
		config.CacheKey = "vinted_rate_limited"
	}
	return &VintedCrawler{
		BaseCrawler: newBaseCrawler(ProviderVinted, config, cacheSvc),
	}
}

// FetchItems fetches the catalog page and returns its items oldest first
func (c *VintedCrawler) FetchItems(ctx context.Context) ([]Item, error) {
	body, err := c.fetchWithCache(ctx, c.Client, nil)
	if err != nil {
		return nil, err
	}

	doc, err := c.createDocument(body)
	if err != nil {
		return nil, err
	}

	return c.processItems(vintedSelections(doc), func(s *goquery.Selection) (Item, error) {
		item, err := ExtractVintedItem(s)
		if err != nil {
			return nil, err
		}
		return item, nil
	}), nil
}

// vintedSelections returns the item boxes in reverse page order, since the
// catalog lists newest first.
func vintedSelections(doc *goquery.Document) []*goquery.Selection {
	boxes := doc.Find(vintedItemSelector)
	selections := make([]*goquery.Selection, 0, boxes.Length())
	for i := boxes.Length() - 1; i >= 0; i-- {
		selections = append(selections, boxes.Eq(i))
	}
	return selections
}
