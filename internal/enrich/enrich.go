// Package enrich wraps the optional model-assisted rewrite of item
// title, summary and sentiment. Enrichment is strictly best-effort: a
// failing or misconfigured model call degrades to the original inputs
// and never surfaces an error to the pipeline.
package enrich

import (
	"context"

	"github.com/rs/zerolog/log"

	"noticias/dashboard/internal/models"
	"noticias/dashboard/internal/sentiment"
)

// Enricher applies the model rewrite when a credential is configured and
// falls back to the keyword heuristic otherwise.
type Enricher struct {
	client *Client
}

// NewEnricher returns an enricher for the given credential. An empty key
// selects the non-AI fallback path.
func NewEnricher(apiKey string) *Enricher {
	if apiKey == "" {
		return &Enricher{}
	}
	return &Enricher{client: NewClient(ClientConfig{APIKey: apiKey})}
}

// NewEnricherWithClient wires a preconfigured client, used by tests to
// point at a fake completion endpoint.
func NewEnricherWithClient(client *Client) *Enricher {
	return &Enricher{client: client}
}

// Enabled reports whether model enrichment is configured.
func (e *Enricher) Enabled() bool {
	return e.client != nil
}

// Enrich returns the replacement title, summary and sentiment for one
// item. Without a credential the inputs pass through unchanged and the
// heuristic classifies title+summary. With a credential, any model
// failure is logged and degrades to the originals with neutral sentiment.
func (e *Enricher) Enrich(ctx context.Context, title, summary, articleText string) (string, string, models.Sentiment) {
	if !e.Enabled() {
		return title, summary, sentiment.Classify(title + " " + summary)
	}

	rewrite, err := e.client.Rewrite(ctx, title, summary, articleText)
	if err != nil {
		log.Warn().Err(err).Str("title", title).Msg("Enrichment failed, keeping original text")
		return title, summary, models.SentimentYellow
	}
	return rewrite.Title, rewrite.Summary, rewrite.Sentiment
}
