package publisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"sjsage522/listingwatcher/internal/crawler"
	apperrors "sjsage522/listingwatcher/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	getMeOK       = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"watcher","username":"watcher_bot"}}`
	sendMessageOK = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`
)

// newBotServer answers getMe for token 123:abc and hands sendMessage
// requests to send
func newBotServer(t *testing.T, send http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/bot123:abc/getMe", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(getMeOK))
	})
	mux.HandleFunc("/bot123:abc/sendMessage", send)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestTelegramPublisher(t *testing.T) {
	requests := make(chan url.Values, 1)
	server := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		requests <- r.PostForm
		w.Write([]byte(sendMessageOK))
	})

	p, err := NewTelegramPublisher(server.URL+"/", "123:abc", "42", time.Second)
	require.NoError(t, err)
	defer p.Close()

	item := testItem("Zara")
	require.NoError(t, p.Publish(context.Background(), item))

	received := <-requests
	assert.Equal(t, "42", received.Get("chat_id"))
	assert.Equal(t, "Zara\n12,00 €\n<a href=\"https://www.vinted.fr/items/1\">link</a>\n", received.Get("text"))
	assert.Equal(t, "HTML", received.Get("parse_mode"))
}

func TestTelegramPublisherEscapesFieldText(t *testing.T) {
	requests := make(chan url.Values, 1)
	server := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		requests <- r.PostForm
		w.Write([]byte(sendMessageOK))
	})

	p, err := NewTelegramPublisher(server.URL, "123:abc", "42", time.Second)
	require.NoError(t, err)

	item := &crawler.VintedItem{
		Brand: strPtr("H&M"),
		Price: strPtr("5 €"),
		Size:  strPtr("S < M"),
		URL:   strPtr("https://www.vinted.fr/items/1"),
	}
	require.NoError(t, p.Publish(context.Background(), item))

	received := <-requests
	assert.Equal(t, "H&amp;M\n5 €\nS &lt; M\n<a href=\"https://www.vinted.fr/items/1\">link</a>\n", received.Get("text"))
	assert.Equal(t, "H&M\n5 €\nS < M\n<a href=\"https://www.vinted.fr/items/1\">link</a>\n", crawler.Render(item))
}

func TestTelegramPublisherChannelUsername(t *testing.T) {
	requests := make(chan url.Values, 1)
	server := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		requests <- r.PostForm
		w.Write([]byte(sendMessageOK))
	})

	p, err := NewTelegramPublisher(server.URL, "123:abc", "@deals", time.Second)
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), testItem("Zara")))

	assert.Equal(t, "@deals", (<-requests).Get("chat_id"))
}

func TestTelegramPublisherAPIError(t *testing.T) {
	server := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	p, err := NewTelegramPublisher(server.URL, "123:abc", "42", time.Second)
	require.NoError(t, err)

	err = p.Publish(context.Background(), testItem("Zara"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypePublisher))
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramPublisherUnreadableBody(t *testing.T) {
	server := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	p, err := NewTelegramPublisher(server.URL, "123:abc", "42", time.Second)
	require.NoError(t, err)

	err = p.Publish(context.Background(), testItem("Zara"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypePublisher))
}

func TestTelegramPublisherCancelled(t *testing.T) {
	sent := make(chan struct{}, 1)
	server := newBotServer(t, func(w http.ResponseWriter, r *http.Request) {
		sent <- struct{}{}
		w.Write([]byte(sendMessageOK))
	})

	p, err := NewTelegramPublisher(server.URL, "123:abc", "42", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Publish(ctx, testItem("Zara")))
	assert.Empty(t, sent)
}

func TestTelegramPublisherRedactsToken(t *testing.T) {
	_, err := NewTelegramPublisher("http://127.0.0.1:1", "secret-token", "42", time.Second)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}
