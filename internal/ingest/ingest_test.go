package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"noticias/dashboard/internal/config"
	"noticias/dashboard/internal/ingest"
	"noticias/dashboard/internal/models"
)

// scriptedFetcher returns canned results keyed by feed URL.
type scriptedFetcher struct {
	results map[string][]models.NewsItem
	errs    map[string]error
	calls   []string
}

func (f *scriptedFetcher) FetchFeed(_ context.Context, _ models.Section, url string) ([]models.NewsItem, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.results[url], nil
}

func item(link string, section models.Section) models.NewsItem {
	return models.NewsItem{Link: link, Title: link, Section: section, Sentiment: models.SentimentYellow}
}

func TestUpdateNewsAggregatesInFeedOrder(t *testing.T) {
	feeds := []config.SectionFeed{
		{Section: models.SectionCancilleria, URL: "feed-a"},
		{Section: models.SectionPeru, URL: "feed-b"},
		{Section: models.SectionMundo, URL: "feed-c"},
	}
	fetcher := &scriptedFetcher{results: map[string][]models.NewsItem{
		"feed-a": {item("a1", models.SectionCancilleria), item("a2", models.SectionCancilleria)},
		"feed-b": {item("b1", models.SectionPeru)},
		"feed-c": {item("c1", models.SectionMundo)},
	}}

	items := ingest.New(fetcher, feeds).UpdateNews(context.Background())

	require.Equal(t, []string{"feed-a", "feed-b", "feed-c"}, fetcher.calls)
	links := make([]string, len(items))
	for i, it := range items {
		links[i] = it.Link
	}
	require.Equal(t, []string{"a1", "a2", "b1", "c1"}, links)
}

func TestUpdateNewsSkipsFailedFeed(t *testing.T) {
	feeds := []config.SectionFeed{
		{Section: models.SectionCancilleria, URL: "feed-a"},
		{Section: models.SectionPeru, URL: "feed-b"},
		{Section: models.SectionMundo, URL: "feed-c"},
	}
	fetcher := &scriptedFetcher{
		results: map[string][]models.NewsItem{
			"feed-a": {item("a1", models.SectionCancilleria)},
			"feed-c": {item("c1", models.SectionMundo)},
		},
		errs: map[string]error{"feed-b": errors.New("boom")},
	}

	items := ingest.New(fetcher, feeds).UpdateNews(context.Background())

	require.Equal(t, []string{"feed-a", "feed-b", "feed-c"}, fetcher.calls)
	require.Len(t, items, 2)
	require.Equal(t, "a1", items[0].Link)
	require.Equal(t, "c1", items[1].Link)
}

func TestUpdateNewsNoFeeds(t *testing.T) {
	fetcher := &scriptedFetcher{}
	items := ingest.New(fetcher, nil).UpdateNews(context.Background())
	require.Empty(t, items)
	require.Empty(t, fetcher.calls)
}
