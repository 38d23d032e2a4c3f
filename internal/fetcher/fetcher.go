// Package fetcher turns one syndication feed into normalized news items:
// fetch, parse, dedupe against the store, then enrich or classify each
// entry before it is handed back for persistence.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
	"github.com/rs/zerolog/log"

	"noticias/dashboard/internal/enrich"
	"noticias/dashboard/internal/models"
	"noticias/dashboard/internal/scraper"
	"noticias/dashboard/internal/sentiment"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Consent cookie expected by the news search endpoints.
	consentCookie = "CONSENT=YES+"

	feedTimeout = 10 * time.Second

	// Entries beyond this cap are skipped; feeds are assumed to list the
	// most recent entries first.
	maxEntries = 10
)

var whitespace = regexp.MustCompile(`\s+`)

// DedupeGate is the store-side check preventing re-ingestion of an
// already-stored link.
type DedupeGate interface {
	ExistsByLink(ctx context.Context, link string) (bool, error)
}

// Fetcher retrieves and normalizes a single feed per call.
type Fetcher struct {
	gate     DedupeGate
	scraper  *scraper.Scraper
	enricher *enrich.Enricher
	parser   *gofeed.Parser
	client   *http.Client
}

// New creates a fetcher. The enricher decides per run whether entries go
// through the model or the keyword heuristic.
func New(gate DedupeGate, enricher *enrich.Enricher) *Fetcher {
	return &Fetcher{
		gate:     gate,
		scraper:  scraper.New(),
		enricher: enricher,
		parser:   gofeed.NewParser(),
		client:   &http.Client{Timeout: feedTimeout},
	}
}

// FetchFeed retrieves one feed and returns its new entries as normalized
// items tagged with section. Fetch and parse failures are returned to the
// orchestrator, which isolates them per feed.
func (f *Fetcher) FetchFeed(ctx context.Context, section models.Section, url string) ([]models.NewsItem, error) {
	log.Info().Str("section", string(section)).Str("url", url).Msg("Fetching feed")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", consentCookie)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching feed", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	if len(feed.Items) == 0 {
		log.Warn().Str("section", string(section)).Msg("No entries found")
		return nil, nil
	}

	entries := feed.Items
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	outlets := rssOutlets(body)

	var items []models.NewsItem
	for _, entry := range entries {
		if entry.Link == "" {
			continue
		}

		seen, err := f.gate.ExistsByLink(ctx, entry.Link)
		if err != nil {
			log.Error().Err(err).Str("link", entry.Link).Msg("Dedupe check failed, processing anyway")
		} else if seen {
			log.Debug().Str("link", entry.Link).Msg("Already stored, skipping")
			continue
		}

		items = append(items, f.normalize(ctx, section, feed, entry, outlets))
	}

	log.Info().
		Str("section", string(section)).
		Int("entries", len(entries)).
		Int("new_items", len(items)).
		Msg("Feed processed")
	return items, nil
}

// normalize builds one NewsItem from a feed entry, running the optional
// scrape+enrich path when a credential is configured.
func (f *Fetcher) normalize(ctx context.Context, section models.Section, feed *gofeed.Feed, entry *gofeed.Item, outlets map[string]string) models.NewsItem {
	title := strings.TrimSpace(entry.Title)
	summary := cleanMarkup(entrySummary(entry))

	var sent models.Sentiment
	if f.enricher.Enabled() {
		articleText, err := f.scraper.Extract(ctx, entry.Link)
		if err != nil {
			log.Debug().Err(err).Str("link", entry.Link).Msg("Article extraction failed")
		}
		title, summary, sent = f.enricher.Enrich(ctx, title, summary, articleText)
	} else {
		sent = sentiment.Classify(title + " " + summary)
	}

	return models.NewsItem{
		Link:          entry.Link,
		Title:         title,
		Summary:       summary,
		Section:       section,
		PublishedDate: publishedAt(entry),
		Sentiment:     sent,
		Source:        sourceLabel(feed, entry, outlets),
	}
}

// publishedAt parses the entry timestamp best-effort, defaulting to the
// ingestion time. Zone information is dropped at storage time so all rows
// compare as naive instants.
func publishedAt(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.Published != "" {
		if parsed, err := dateparse.ParseAny(entry.Published); err == nil {
			return parsed
		}
		log.Debug().Str("published", entry.Published).Msg("Unparseable publish date, using now")
	}
	return time.Now()
}

// entrySummary prefers the summary element and falls back to the full
// content block when a feed only provides that.
func entrySummary(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

// rssOutlets recovers the per-item <source> element, which aggregator
// feeds use for the originating outlet name. The universal parser drops
// the element, so the body is re-parsed with the RSS parser; non-RSS
// bodies yield no outlets.
func rssOutlets(body []byte) map[string]string {
	parsed, err := (&rss.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	outlets := make(map[string]string, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" || item.Source == nil {
			continue
		}
		if name := strings.TrimSpace(item.Source.Title); name != "" {
			outlets[item.Link] = name
		}
	}
	return outlets
}

// sourceLabel resolves a human-readable outlet name, preferring the
// entry's own <source> element over the feed title, with a safe default.
func sourceLabel(feed *gofeed.Feed, entry *gofeed.Item, outlets map[string]string) string {
	if name := outlets[entry.Link]; name != "" {
		return name
	}
	if name := strings.TrimSpace(feed.Title); name != "" {
		return name
	}
	return "Unknown"
}

// cleanMarkup strips tags from an RSS summary fragment and collapses
// whitespace runs.
func cleanMarkup(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(whitespace.ReplaceAllString(fragment, " "))
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(doc.Text(), " "))
}
