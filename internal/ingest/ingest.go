// Package ingest runs one ingestion pass over the configured section
// feeds, isolating each feed's failures from the rest of the run.
package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"noticias/dashboard/internal/config"
	"noticias/dashboard/internal/models"
)

// FeedFetcher retrieves and normalizes one feed. It is an interface so
// the orchestrator can run against fake feeds in tests.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, section models.Section, url string) ([]models.NewsItem, error)
}

// Orchestrator aggregates per-section fetch results in configuration
// order.
type Orchestrator struct {
	fetcher FeedFetcher
	feeds   []config.SectionFeed
}

// New creates an orchestrator over an explicit section feed list.
func New(fetcher FeedFetcher, feeds []config.SectionFeed) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, feeds: feeds}
}

// UpdateNews fetches every configured feed sequentially and concatenates
// the results, feed order first and entry order within each feed. One
// feed's failure is logged and skipped; it never aborts the others.
func (o *Orchestrator) UpdateNews(ctx context.Context) []models.NewsItem {
	var all []models.NewsItem

	for _, feed := range o.feeds {
		items, err := o.fetcher.FetchFeed(ctx, feed.Section, feed.URL)
		if err != nil {
			log.Error().
				Err(err).
				Str("section", string(feed.Section)).
				Str("url", feed.URL).
				Msg("Feed failed, skipping section")
			continue
		}
		all = append(all, items...)
	}

	log.Info().Int("total_items", len(all)).Msg("Ingestion pass complete")
	return all
}
