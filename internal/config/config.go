package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	DBPath      string
	FeedsPath   string
	SecretsPath string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Ingestion settings
	OpenAIKey string
	Interval  time.Duration
	Seed      bool

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration with hardcoded defaults.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		DBPath:      DefaultDBPath,
		FeedsPath:   DefaultFeedsPath,
		SecretsPath: DefaultSecretsPath,
		ServerHost:  DefaultServerHost,
		ServerPort:  DefaultServerPort,
		APIKey:      GetEnvString("NOTICIAS_API_KEY", ""),
		Interval:    time.Duration(DefaultInterval) * time.Minute,
		LogLevel:    logLevel,
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// AIEnabled reports whether a usable enrichment credential was resolved.
func (c *Config) AIEnabled() bool {
	return c.OpenAIKey != ""
}
