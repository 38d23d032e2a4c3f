// Package scraper fetches article pages and extracts bounded plain text
// for the enrichment prompt.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// Browser-like identity; several outlets refuse default Go clients.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	requestTimeout = 4 * time.Second
	maxTextRunes   = 3000
)

var whitespace = regexp.MustCompile(`\s+`)

// Scraper extracts article body text from a URL.
type Scraper struct {
	client *http.Client
}

// New creates a scraper with the bounded per-request timeout.
func New() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Extract fetches the page and concatenates the text of every paragraph
// block in document order, whitespace-collapsed and truncated to the
// maximum prompt size. Transport failures and non-success statuses are
// returned as errors for the caller to log and skip.
func (s *Scraper) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching article", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse article HTML: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.TrimSpace(whitespace.ReplaceAllString(strings.Join(paragraphs, " "), " "))
	if runes := []rune(text); len(runes) > maxTextRunes {
		text = string(runes[:maxTextRunes])
	}
	return text, nil
}
