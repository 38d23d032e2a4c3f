package sentiment_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"noticias/dashboard/internal/models"
	"noticias/dashboard/internal/sentiment"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Sentiment
	}{
		{name: "positive keyword", text: "Peru avanza en su economía", want: models.SentimentGreen},
		{name: "negative keyword", text: "Crisis política se agrava", want: models.SentimentRed},
		{name: "no keywords", text: "Reunión ordinaria del consejo", want: models.SentimentYellow},
		{name: "empty text", text: "", want: models.SentimentYellow},
		{name: "balanced score", text: "acuerdo histórico en medio de la crisis", want: models.SentimentYellow},
		{name: "more negatives than positives", text: "mejora leve tras la crisis y la protesta", want: models.SentimentRed},
		{name: "substring match without word boundary", text: "la muerte anunciada", want: models.SentimentRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sentiment.Classify(tt.text))
		})
	}
}

func TestClassifyCaseInvariant(t *testing.T) {
	texts := []string{
		"Peru AVANZA en su economía",
		"CRISIS en el transporte",
		"sin señal alguna",
	}

	for _, text := range texts {
		require.Equal(t, sentiment.Classify(strings.ToLower(text)), sentiment.Classify(strings.ToUpper(text)))
	}
}

func TestClassifyAlwaysReturnsKnownBucket(t *testing.T) {
	for _, text := range []string{"", "x", "avanza crisis guerra triunfo", "ñ é ü", strings.Repeat("palabra ", 500)} {
		require.True(t, sentiment.Classify(text).Valid())
	}
}
