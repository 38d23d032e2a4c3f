package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/hlog"
	"github.com/samber/lo"

	"noticias/dashboard/internal/models"
)

const (
	defaultWindowHours = 168
	maxWindowHours     = 24 * 30

	maxTitleRunes = 150
)

// NewsRepository defines the read side the handler needs.
type NewsRepository interface {
	QueryRecent(ctx context.Context, windowHours int) ([]models.NewsItem, error)
}

// Response structure for the news endpoint. Mode tells the caller
// whether items were enriched by the model or classified heuristically.
type Response struct {
	Mode  string            `json:"mode"`
	Items []models.NewsItem `json:"items"`
}

// NewsHandler holds dependencies for the API handler.
type NewsHandler struct {
	repo NewsRepository
	mode string
}

// NewNewsHandler creates a new handler instance.
func NewNewsHandler(repo NewsRepository, aiEnabled bool) *NewsHandler {
	mode := "heuristic"
	if aiEnabled {
		mode = "ai"
	}
	return &NewsHandler{repo: repo, mode: mode}
}

// GetNews handles requests for the windowed, title-deduplicated record
// set, optionally filtered by exact sentiment and section.
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)
	log.Debug().Msg("Processing news request")

	query := r.URL.Query()

	hours := defaultWindowHours
	if hoursStr := query.Get("hours"); hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil || parsed <= 0 || parsed > maxWindowHours {
			log.Warn().Str("hours", hoursStr).Msg("Invalid 'hours' parameter value")
			http.Error(w, fmt.Sprintf("Invalid 'hours' parameter: must be between 1 and %d", maxWindowHours), http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	sentimentFilter := models.Sentiment(query.Get("sentiment"))
	if sentimentFilter != "" && !sentimentFilter.Valid() {
		http.Error(w, "Invalid 'sentiment' parameter: use red, yellow or green", http.StatusBadRequest)
		return
	}

	sectionFilter := models.Section(query.Get("section"))
	if sectionFilter != "" && !sectionFilter.Valid() {
		http.Error(w, "Invalid 'section' parameter", http.StatusBadRequest)
		return
	}

	items, err := h.repo.QueryRecent(r.Context(), hours)
	if err != nil {
		log.Error().Err(err).Int("hours", hours).Msg("Error fetching recent news")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	items = shapeItems(items, sentimentFilter, sectionFilter)

	jsonBytes, err := json.Marshal(Response{Mode: h.mode, Items: items})
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Error().Err(err).Msg("Error writing JSON response body")
	}
}

// shapeItems applies the exact-equality filters, drops repeated titles
// keeping the first (most recent) occurrence, and cleans titles for
// display. Near-duplicate stories from different outlets are never
// merged.
func shapeItems(items []models.NewsItem, sentimentFilter models.Sentiment, sectionFilter models.Section) []models.NewsItem {
	if sentimentFilter != "" {
		items = lo.Filter(items, func(item models.NewsItem, _ int) bool {
			return item.Sentiment == sentimentFilter
		})
	}
	if sectionFilter != "" {
		items = lo.Filter(items, func(item models.NewsItem, _ int) bool {
			return item.Section == sectionFilter
		})
	}

	items = lo.UniqBy(items, func(item models.NewsItem) string {
		return item.Title
	})

	return lo.Map(items, func(item models.NewsItem, _ int) models.NewsItem {
		item.Title = CleanTitle(item.Title)
		return item
	})
}

// CleanTitle strips the trailing outlet suffix aggregators append to
// headlines and bounds the display length.
func CleanTitle(title string) string {
	if idx := strings.Index(title, " - "); idx > 0 {
		title = title[:idx]
	}
	if idx := strings.Index(title, " | "); idx > 0 {
		title = title[:idx]
	}

	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes-3]) + "..."
	}
	return title
}
