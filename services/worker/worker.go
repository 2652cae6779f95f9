package worker

import (
	"context"
	"time"

	"sjsage522/listingwatcher/internal/crawler"
	"sjsage522/listingwatcher/logger"
	"sjsage522/listingwatcher/services/publisher"
)

// SeenStore is the part of the seen item cache the worker relies on
type SeenStore interface {
	Contains(id string) bool
	Add(id string)
	Save() error
}

// Report summarizes one run
type Report struct {
	Pages      int
	PageErrors int
	Items      int
	New        int
	Seen       int
	Failed     int
}

// Worker runs the fetch, filter, notify and persist pipeline
type Worker struct {
	crawlers  []crawler.Crawler
	seen      SeenStore
	publisher publisher.Publisher
	runs      int
}

// NewWorker creates a new worker
func NewWorker(crawlers []crawler.Crawler, seen SeenStore, pub publisher.Publisher) *Worker {
	return &Worker{
		crawlers:  crawlers,
		seen:      seen,
		publisher: pub,
	}
}

// Start runs the pipeline every interval until ctx is cancelled. A run that
// fails to persist the cache stops the loop.
func (w *Worker) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce crawls every page once, publishes items not seen before and saves
// the cache. Page and publish failures are logged and counted; only a cache
// save failure is returned.
func (w *Worker) RunOnce(ctx context.Context) (Report, error) {
	start := time.Now()
	w.runs++
	log := logger.ForRun(w.runs)
	var report Report

	for _, c := range w.crawlers {
		if ctx.Err() != nil {
			log.Warn().Msg("Run cancelled, saving progress")
			break
		}
		report.Pages++
		w.crawlAndPublish(ctx, c, &report)
	}

	if p, ok := w.publisher.(publisher.Trimmer); ok {
		if err := p.TrimStreams(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("Failed to trim streams")
		}
	}

	if err := w.seen.Save(); err != nil {
		log.Error().Err(err).Msg("Failed to save seen cache")
		return report, err
	}

	log.Info().
		Int("pages", report.Pages).
		Int("page_errors", report.PageErrors).
		Int("items", report.Items).
		Int("new", report.New).
		Int("seen", report.Seen).
		Int("failed", report.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Run finished")

	return report, nil
}

// crawlAndPublish fetches one page and publishes its new items
func (w *Worker) crawlAndPublish(ctx context.Context, c crawler.Crawler, report *Report) {
	log := logger.ForCrawler(c.GetProvider(), c.GetURL())

	items, err := c.FetchItems(ctx)
	if err != nil {
		report.PageErrors++
		log.Error().Err(err).Msg("Failed to fetch items")
		return
	}
	report.Items += len(items)

	for _, item := range items {
		body := crawler.Render(item)
		if w.seen.Contains(body) {
			report.Seen++
			continue
		}

		if err := w.publisher.Publish(ctx, item); err != nil {
			report.Failed++
			log.Error().Err(err).Msg("Failed to publish item")
			continue
		}

		// only delivered items are remembered, failed ones are retried next run
		w.seen.Add(body)
		report.New++
		log.Debug().Str("body", body).Msg("Published new item")
	}
}
