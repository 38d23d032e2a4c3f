package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const openAIKeyEnv = "OPENAI_API_KEY"

// Known placeholder values that regularly leak in from sample configs.
var placeholderKeys = []string{"sk-...", "sk-tu-clave-aqui"}

// secretsFile mirrors the layout of secrets.yaml:
//
//	openai:
//	  api_key: sk-xxxx
type secretsFile struct {
	OpenAI struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"openai"`
}

// ResolveOpenAIKey resolves the enrichment credential once at process
// entry: environment variable first, then the secrets file. It returns
// an empty string when no usable key is found, which selects the
// heuristic fallback path downstream.
func ResolveOpenAIKey(secretsPath string) string {
	if key := os.Getenv(openAIKeyEnv); validKey(key) {
		log.Info().Str("source", "env").Msg("Enrichment credential loaded")
		return key
	}

	if key := keyFromSecretsFile(secretsPath); validKey(key) {
		log.Info().Str("source", secretsPath).Msg("Enrichment credential loaded")
		return key
	}

	log.Warn().Msg("No valid enrichment credential found, running without AI")
	return ""
}

func keyFromSecretsFile(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var secrets secretsFile
	if err := yaml.Unmarshal(raw, &secrets); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to parse secrets file")
		return ""
	}
	return secrets.OpenAI.APIKey
}

// validKey rejects empty values, known placeholders, and truncated keys
// ending in a literal ellipsis.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, placeholder := range placeholderKeys {
		if key == placeholder {
			return false
		}
	}
	return !strings.HasSuffix(key, "...")
}
