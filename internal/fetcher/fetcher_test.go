package fetcher_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noticias/dashboard/internal/enrich"
	"noticias/dashboard/internal/fetcher"
	"noticias/dashboard/internal/models"
)

// memoryGate is an in-memory stand-in for the store's dedupe check.
type memoryGate struct {
	seen map[string]bool
}

func newMemoryGate() *memoryGate {
	return &memoryGate{seen: map[string]bool{}}
}

func (g *memoryGate) ExistsByLink(_ context.Context, link string) (bool, error) {
	return g.seen[link], nil
}

func (g *memoryGate) markAll(items []models.NewsItem) {
	for _, item := range items {
		g.seen[item.Link] = true
	}
}

func rssFeed(title string, entries ...string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>%s</title>%s</channel></rss>`, title, strings.Join(entries, ""))
}

func rssEntry(link, title, description, pubDate string) string {
	var date string
	if pubDate != "" {
		date = "<pubDate>" + pubDate + "</pubDate>"
	}
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>%s</description>%s</item>`,
		title, link, description, date)
}

func rssEntryWithSource(link, title, outlet string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><description>resumen</description><source url="https://outlet.example/rss">%s</source></item>`,
		title, link, outlet)
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchFeedNormalizesEntries(t *testing.T) {
	server := feedServer(t, rssFeed("Bing News",
		rssEntry("https://example.pe/1", "Peru avanza en su economía", "<b>Cifras</b>   del trimestre.", "Mon, 02 Sep 2024 10:00:00 GMT"),
	))

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	items, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	require.Equal(t, "https://example.pe/1", item.Link)
	require.Equal(t, "Peru avanza en su economía", item.Title)
	require.Equal(t, "Cifras del trimestre.", item.Summary)
	require.Equal(t, models.SectionPeru, item.Section)
	require.Equal(t, models.SentimentGreen, item.Sentiment)
	require.Equal(t, "Bing News", item.Source)
	require.Equal(t, 2024, item.PublishedDate.Year())
}

func TestFetchFeedResolvesOutletFromEntrySource(t *testing.T) {
	server := feedServer(t, rssFeed("Bing News",
		rssEntryWithSource("https://example.pe/1", "Noticia con fuente", "El Comercio"),
		rssEntry("https://example.pe/2", "Noticia sin fuente", "resumen", ""),
	))

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	items, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "El Comercio", items[0].Source)
	require.Equal(t, "Bing News", items[1].Source)
}

func TestFetchFeedSourceDefaultsToUnknown(t *testing.T) {
	server := feedServer(t, rssFeed("",
		rssEntry("https://example.pe/1", "Noticia", "resumen", ""),
	))

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	items, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Unknown", items[0].Source)
}

func TestFetchFeedSendsConsentCookie(t *testing.T) {
	var gotCookie, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, rssFeed("Bing News"))
	}))
	defer server.Close()

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	_, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Equal(t, "CONSENT=YES+", gotCookie)
	require.Contains(t, gotAgent, "Mozilla/5.0")
}

func TestFetchFeedCapsEntries(t *testing.T) {
	var entries []string
	for i := 0; i < 15; i++ {
		entries = append(entries, rssEntry(
			fmt.Sprintf("https://example.pe/%d", i),
			fmt.Sprintf("Noticia %d", i),
			"resumen", "Mon, 02 Sep 2024 10:00:00 GMT"))
	}
	server := feedServer(t, rssFeed("Bing News", entries...))

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	items, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Len(t, items, 10)
	require.Equal(t, "https://example.pe/0", items[0].Link)
}

func TestFetchFeedDedupeGate(t *testing.T) {
	server := feedServer(t, rssFeed("Bing News",
		rssEntry("https://example.pe/1", "Noticia uno", "resumen", ""),
		rssEntry("https://example.pe/2", "Noticia dos", "resumen", ""),
	))

	gate := newMemoryGate()
	f := fetcher.New(gate, enrich.NewEnricher(""))

	items, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// A later run against an unchanged feed yields nothing new.
	gate.markAll(items)
	items, err = f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestFetchFeedDefaultsDateToIngestionTime(t *testing.T) {
	server := feedServer(t, rssFeed("Bing News",
		rssEntry("https://example.pe/1", "Sin fecha", "resumen", ""),
	))

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	before := time.Now()
	items, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, items[0].PublishedDate.Before(before))
}

func TestFetchFeedBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	_, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.Error(t, err)
}

func TestFetchFeedUnparseableBody(t *testing.T) {
	server := feedServer(t, "this is not xml at all")

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	_, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.Error(t, err)
}

func TestFetchFeedEmptyFeed(t *testing.T) {
	server := feedServer(t, rssFeed("Bing News"))

	f := fetcher.New(newMemoryGate(), enrich.NewEnricher(""))
	items, err := f.FetchFeed(context.Background(), models.SectionPeru, server.URL)
	require.NoError(t, err)
	require.Empty(t, items)
}
