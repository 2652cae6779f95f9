package publisher

import (
	"context"

	"sjsage522/listingwatcher/internal/crawler"
	"sjsage522/listingwatcher/logger"
)

// LogPublisher writes items to the log. It stands in when no
// notification channel is configured.
type LogPublisher struct{}

// Publish logs the rendered item
func (LogPublisher) Publish(ctx context.Context, item crawler.Item) error {
	logger.ForPublisher("log").Info().Str("provider", item.Provider()).Msg(crawler.Render(item))
	return nil
}

// Close does nothing
func (LogPublisher) Close() error {
	return nil
}
