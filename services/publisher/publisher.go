package publisher

import (
	"context"

	"sjsage522/listingwatcher/internal/crawler"
)

// Publisher delivers a new listing to a notification channel
type Publisher interface {
	// Publish sends one item, formatted the way the channel expects
	Publish(ctx context.Context, item crawler.Item) error

	// Close closes the publisher connection
	Close() error
}

// Trimmer is implemented by publishers whose backlog needs trimming after a run
type Trimmer interface {
	TrimStreams(ctx context.Context) error
}
