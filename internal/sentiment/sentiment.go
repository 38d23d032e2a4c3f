// Package sentiment implements the keyword-count fallback classifier used
// when no enrichment credential is configured.
package sentiment

import (
	"strings"

	"noticias/dashboard/internal/models"
)

var positiveWords = []string{
	"avanza", "crecimiento", "éxito", "logro", "mejora", "gana", "beneficio",
	"paz", "triunfo", "acuerdo", "solución", "bueno", "positivo", "aprobado",
	"felicidad", "celebración", "victoria", "récord", "supera", "destaca",
}

var negativeWords = []string{
	"muerte", "crisis", "caída", "pierde", "error", "conflicto", "guerra",
	"crimen", "denuncia", "trágico", "fallece", "asesinato", "baja", "pérdida",
	"déficit", "fracaso", "malo", "negativo", "rechazo", "protesta", "accidente",
}

// Classify maps text to a sentiment bucket by counting case-insensitive
// keyword hits: more positive than negative is green, the reverse is red.
// A zero score yields yellow, which conflates true neutrality with the
// absence of any keyword signal; short titles land here by construction.
// Matching is pure substring containment without word boundaries, so
// substring false positives are accepted imprecision.
func Classify(text string) models.Sentiment {
	lower := strings.ToLower(text)

	score := 0
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			score++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			score--
		}
	}

	switch {
	case score > 0:
		return models.SentimentGreen
	case score < 0:
		return models.SentimentRed
	default:
		return models.SentimentYellow
	}
}
