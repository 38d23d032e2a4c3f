package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"noticias/dashboard/internal/models"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-3.5-turbo"

	systemPrompt = "You are a helpful news assistant. Always output in Spanish."

	// Low temperature and a tight output cap keep responses cheap and
	// close to reproducible.
	temperature = 0.3
	maxTokens   = 250

	// Article text shorter than this carries less signal than the raw
	// title+summary pair, so the prompt falls back to those.
	minArticleRunes = 200
)

// ClientConfig defines how to contact the chat-completions API.
type ClientConfig struct {
	Endpoint string
	Model    string
	APIKey   string
}

// Client issues chat-completion requests against OpenAI-compatible APIs.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client from configuration, filling in defaults for
// the endpoint and model.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Rewrite holds the model-produced replacement fields for one item.
type Rewrite struct {
	Title     string
	Summary   string
	Sentiment models.Sentiment
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Rewrite asks the model for a fresh headline, a ~50 word neutral summary
// and a sentiment label, preferring scraped article text over the raw RSS
// pair when enough of it is available. Missing fields in the response fall
// back to the originals.
func (c *Client) Rewrite(ctx context.Context, title, summary, articleText string) (*Rewrite, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("enrichment client has no credential")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(title, summary, articleText)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("chat API error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat response contains no choices")
	}

	return parseCompletion(parsed.Choices[0].Message.Content, title, summary), nil
}

func buildPrompt(title, summary, articleText string) string {
	var material string
	if len([]rune(articleText)) > minArticleRunes {
		material = "Article Content: " + articleText
	} else {
		material = fmt.Sprintf("RSS Title: %s\nRSS Summary: %s", title, summary)
	}

	return fmt.Sprintf(`You are a professional news editor for the Ministry of Foreign Affairs of Peru.

Context:
%s

Tasks:
1. Title: Create a NEW, unique headline in Spanish (5-12 words). Do NOT copy the original title. Make it descriptive and professional.
2. Summary: Write a clear, neutral summary in Spanish (approx 50 words) based on the context.
3. Sentiment: Analyze the sentiment (positive/neutral/negative) for the institution/country.

Output format:
Title: [Nuevo Título]
Summary: [Nuevo Resumen]
Sentiment: [Red/Yellow/Green]`, material)
}

// parseCompletion matches the literal field prefixes line by line. Any
// field absent from the response keeps the corresponding original input;
// sentiment defaults to yellow.
func parseCompletion(content, title, summary string) *Rewrite {
	result := &Rewrite{
		Title:     title,
		Summary:   summary,
		Sentiment: models.SentimentYellow,
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "Title:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "Title:")); v != "" {
				result.Title = v
			}
		case strings.HasPrefix(line, "Summary:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "Summary:")); v != "" {
				result.Summary = v
			}
		case strings.HasPrefix(line, "Sentiment:"):
			result.Sentiment = parseSentimentLabel(strings.TrimPrefix(line, "Sentiment:"))
		}
	}

	return result
}

func parseSentimentLabel(label string) models.Sentiment {
	label = strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(label, "red"), strings.Contains(label, "negative"):
		return models.SentimentRed
	case strings.Contains(label, "green"), strings.Contains(label, "positive"):
		return models.SentimentGreen
	default:
		return models.SentimentYellow
	}
}
