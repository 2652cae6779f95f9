package publisher

import (
	"context"
	"errors"

	"sjsage522/listingwatcher/internal/crawler"
)

// MultiPublisher fans every item out to several publishers
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a publisher that delivers to all of pubs
func NewMultiPublisher(pubs ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: pubs}
}

// Publish delivers to every publisher and joins their errors
func (m *MultiPublisher) Publish(ctx context.Context, item crawler.Item) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, item); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TrimStreams trims every publisher that supports it
func (m *MultiPublisher) TrimStreams(ctx context.Context) error {
	var errs []error
	for _, p := range m.publishers {
		if t, ok := p.(Trimmer); ok {
			if err := t.TrimStreams(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of publishers
func (m *MultiPublisher) Len() int {
	return len(m.publishers)
}
