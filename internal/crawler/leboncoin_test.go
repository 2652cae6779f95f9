package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	apperrors "sjsage522/listingwatcher/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leboncoinEntry = `<ul><li class="_3DFQ-">
	<a class="clearfix trackable" href="/velos/1234.htm">
		<span itemprop="name"> Vélo&#8203; de
			course </span>
		<span itemprop="priceCurrency">250&nbsp;€</span>
	</a>
</li></ul>`

func TestExtractLeboncoinItem(t *testing.T) {
	item, err := ExtractLeboncoinItem(fragment(t, leboncoinEntry, leboncoinItemSelector))
	require.NoError(t, err)

	assert.Equal(t, "Vélo de course", *item.Name)
	assert.Equal(t, "250 €", *item.Price)
	assert.Equal(t, "https://www.leboncoin.fr/velos/1234.htm", *item.URL)
	assert.Equal(t, ProviderLeboncoin, item.Provider())
}

func TestExtractLeboncoinItemMissingPrice(t *testing.T) {
	html := `<ul><li class="_3DFQ-">
		<a class="clearfix trackable" href="/dons/1.htm"><span itemprop="name">Table</span></a>
	</li></ul>`

	item, err := ExtractLeboncoinItem(fragment(t, html, leboncoinItemSelector))
	require.NoError(t, err)
	assert.Nil(t, item.Price)
	assert.Equal(t, "Table", *item.Name)
	assert.Equal(t, "Table\n<a href=\"https://www.leboncoin.fr/dons/1.htm\">link</a>\n", Render(item))
}

func TestExtractLeboncoinItemMissingName(t *testing.T) {
	html := `<ul><li class="_3DFQ-">
		<a class="clearfix trackable" href="/dons/1.htm"><span itemprop="priceCurrency">5 €</span></a>
	</li></ul>`

	item, err := ExtractLeboncoinItem(fragment(t, html, leboncoinItemSelector))
	assert.Nil(t, item)
	assert.True(t, apperrors.IsLookup(err))
	assert.Contains(t, err.Error(), "itemprop=name")
}

func TestExtractLeboncoinItemMissingLink(t *testing.T) {
	html := `<ul><li class="_3DFQ-">
		<a class="clearfix" href="/dons/1.htm"><span itemprop="name">Table</span></a>
	</li></ul>`

	_, err := ExtractLeboncoinItem(fragment(t, html, leboncoinItemSelector))
	assert.True(t, apperrors.IsLookup(err))
}

func TestLeboncoinCrawlerFetchItems(t *testing.T) {
	page := `<html><body><ul>
		<li class="_3DFQ-"><a class="clearfix trackable" href="/a/1.htm"><span itemprop="name">Premier</span><span itemprop="priceCurrency">10 €</span></a></li>
		<li class="_3DFQ-"><a class="clearfix trackable" href="/a/2.htm"><span itemprop="priceCurrency">20 €</span></a></li>
		<li class="_3DFQ-"><a class="clearfix trackable" href="/a/3.htm"><span itemprop="name">Troisième</span></a></li>
		<li class="other"><span itemprop="name">Publicité</span></li>
	</ul></body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/recherche", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "datadome", Value: "token", Path: "/"})
		http.Redirect(w, r, "/recherche/resultats", http.StatusFound)
	})
	mux.HandleFunc("/recherche/resultats", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, leboncoinUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "fr-FR,en;q=0.5", r.Header.Get("Accept-Language"))
		if _, err := r.Cookie("datadome"); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(page))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewLeboncoinCrawler(CrawlerConfig{URL: server.URL + "/recherche", Timeout: time.Second}, nil)
	items, err := c.FetchItems(context.Background())
	require.NoError(t, err)

	// page order is kept; the entry without a name is skipped
	require.Len(t, items, 2)
	first := items[0].(*LeboncoinItem)
	assert.Equal(t, "Premier", *first.Name)
	assert.Equal(t, "10 €", *first.Price)
	third := items[1].(*LeboncoinItem)
	assert.Equal(t, "Troisième", *third.Name)
	assert.Nil(t, third.Price)
	assert.Equal(t, "https://www.leboncoin.fr/a/3.htm", *third.URL)
}

func TestLeboncoinCrawlerFreshSessionPerFetch(t *testing.T) {
	var mu sync.Mutex
	var cookiesSeen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("session"); err == nil {
			mu.Lock()
			cookiesSeen = append(cookiesSeen, cookie.Value)
			mu.Unlock()
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		w.Write([]byte(`<html></html>`))
	}))
	defer server.Close()

	c := NewLeboncoinCrawler(CrawlerConfig{URL: server.URL, Timeout: time.Second}, nil)
	_, err := c.FetchItems(context.Background())
	require.NoError(t, err)
	_, err = c.FetchItems(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, cookiesSeen)
}

func TestLeboncoinCrawlerRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(430)
	}))
	defer server.Close()

	mockCache := NewMockCacheService()
	c := NewLeboncoinCrawler(CrawlerConfig{URL: server.URL, BlockTime: time.Minute, Timeout: time.Second}, mockCache)

	_, err := c.FetchItems(context.Background())
	assert.True(t, apperrors.IsRateLimit(err))

	_, err = mockCache.Get("leboncoin_rate_limited")
	assert.NoError(t, err)
}
