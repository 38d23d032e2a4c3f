package config

// Constants defining default values for application configuration
const (
	DefaultDBPath      = "./noticias.db"
	DefaultFeedsPath   = "" // Empty string means use the built-in section list
	DefaultSecretsPath = "./secrets.yaml"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultInterval = 0 // Minutes between ingestion runs, 0 for one-shot

	DefaultLogLevel = "info"
)
