package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"noticias/dashboard/internal/config"
	"noticias/dashboard/internal/database"
	"noticias/dashboard/internal/enrich"
	"noticias/dashboard/internal/fetcher"
	"noticias/dashboard/internal/ingest"
	"noticias/dashboard/internal/models"
	"noticias/dashboard/internal/server"
	"noticias/dashboard/internal/store"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	cfg := config.DefaultConfig()

	fetchCmd := flag.NewFlagSet("fetch", flag.ExitOnError)
	fetchCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("NOTICIAS_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: NOTICIAS_DB_PATH)")
	fetchCmd.StringVar(&cfg.FeedsPath, "feeds", config.GetEnvString("NOTICIAS_FEEDS_PATH", config.DefaultFeedsPath),
		"Path to a YAML section feed list, empty for the built-in list (env: NOTICIAS_FEEDS_PATH)")
	fetchCmd.StringVar(&cfg.SecretsPath, "secrets", config.GetEnvString("NOTICIAS_SECRETS_PATH", config.DefaultSecretsPath),
		"Path to the secrets file holding the enrichment credential (env: NOTICIAS_SECRETS_PATH)")
	fetchCmd.BoolVar(&cfg.Seed, "seed", false,
		"Insert a small fixture set instead of fetching feeds")

	var intervalMinutes int
	fetchCmd.IntVar(&intervalMinutes, "interval", config.GetEnvInt("NOTICIAS_INTERVAL", config.DefaultInterval),
		"Interval in minutes between ingestion runs, 0 for one-shot mode (env: NOTICIAS_INTERVAL)")

	var fetchLogLevelStr string
	fetchCmd.StringVar(&fetchLogLevelStr, "log-level", config.GetEnvString("NOTICIAS_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NOTICIAS_LOG_LEVEL)")

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	serveCmd.StringVar(&cfg.DBPath, "db", config.GetEnvString("NOTICIAS_DB_PATH", config.DefaultDBPath),
		"Path to the SQLite database file (env: NOTICIAS_DB_PATH)")
	serveCmd.StringVar(&cfg.SecretsPath, "secrets", config.GetEnvString("NOTICIAS_SECRETS_PATH", config.DefaultSecretsPath),
		"Path to the secrets file holding the enrichment credential (env: NOTICIAS_SECRETS_PATH)")
	serveCmd.StringVar(&cfg.ServerHost, "host", config.GetEnvString("NOTICIAS_HOST", config.DefaultServerHost),
		"Host to bind the server to (env: NOTICIAS_HOST)")
	serveCmd.IntVar(&cfg.ServerPort, "port", config.GetEnvInt("NOTICIAS_PORT", config.DefaultServerPort),
		"Port to listen on (env: NOTICIAS_PORT)")

	var serveLogLevelStr string
	serveCmd.StringVar(&serveLogLevelStr, "log-level", config.GetEnvString("NOTICIAS_LOG_LEVEL", config.DefaultLogLevel),
		"Log level: debug, info, warn, error (env: NOTICIAS_LOG_LEVEL)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "fetch":
		fetchCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(fetchLogLevelStr); err == nil {
			cfg.LogLevel = level
		}
		cfg.Interval = time.Duration(intervalMinutes) * time.Minute

		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runFetch(cfg); err != nil {
			log.Error().Err(err).Msg("Ingestion failed")
			os.Exit(1)
		}

	case "serve":
		serveCmd.Parse(os.Args[2:])

		if level, err := zerolog.ParseLevel(serveLogLevelStr); err == nil {
			cfg.LogLevel = level
		}

		zerolog.SetGlobalLevel(cfg.LogLevel)

		if err := runServe(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}

	case "-h", "--help", "help":
		printUsage()
		os.Exit(0)

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: noticias [command] [options]")
	fmt.Println("Commands: fetch, serve")
	fmt.Println("\nFor command-specific options, use: noticias [command] -h")
}

// runFetch executes the ingestion pipeline either once or periodically
// based on configuration.
func runFetch(cfg *config.Config) error {
	dbCfg := database.NewConfig(cfg.DBPath)
	db, err := database.NewDB(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	st := store.New(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Seed {
		saved, err := st.Save(ctx, seedItems())
		if err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
		log.Info().Int("saved", saved).Msg("Seed data inserted")
		return nil
	}

	feeds, err := config.LoadFeeds(cfg.FeedsPath)
	if err != nil {
		return fmt.Errorf("failed to load feed list: %w", err)
	}

	// Resolved once at process entry and threaded explicitly from here on.
	cfg.OpenAIKey = config.ResolveOpenAIKey(cfg.SecretsPath)
	if cfg.AIEnabled() {
		log.Info().Msg("Running in AI enrichment mode")
	} else {
		log.Info().Msg("Running in heuristic mode, original titles kept")
	}

	enricher := enrich.NewEnricher(cfg.OpenAIKey)
	orchestrator := ingest.New(fetcher.New(st, enricher), feeds)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	if err := runIngestionCycle(ctx, orchestrator, st); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("Ingestion cycle canceled by shutdown signal")
			return nil
		}
		return err
	}

	if cfg.Interval <= 0 {
		log.Info().Msg("One-shot ingestion completed, exiting")
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", cfg.Interval).
		Time("next_run", time.Now().Add(cfg.Interval)).
		Msg("Waiting for next ingestion cycle")

	for {
		select {
		case <-ticker.C:
			log.Info().Msg("Starting scheduled ingestion cycle")

			if err := runIngestionCycle(ctx, orchestrator, st); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Info().Msg("Ingestion cycle canceled by shutdown signal")
					return nil
				}
				log.Error().Err(err).Msg("Ingestion cycle failed")
				// Continue to the next cycle rather than exiting
			}

			log.Info().
				Time("next_run", time.Now().Add(cfg.Interval)).
				Msg("Waiting for next ingestion cycle")

		case <-ctx.Done():
			log.Info().Msg("Shutting down periodic ingestion")
			return nil
		}
	}
}

// runIngestionCycle executes a single fetch-and-persist pass.
func runIngestionCycle(ctx context.Context, orchestrator *ingest.Orchestrator, st *store.Store) error {
	startTime := time.Now()
	items := orchestrator.UpdateNews(ctx)

	if err := ctx.Err(); err != nil {
		return err
	}

	saved, err := st.Save(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to persist items: %w", err)
	}

	log.Info().
		Int("fetched", len(items)).
		Int("saved", saved).
		Dur("duration", time.Since(startTime)).
		Msg("Ingestion cycle finished")
	return nil
}

// runServe starts the read-only HTTP API with the provided configuration.
func runServe(cfg *config.Config) error {
	dbCfg := database.NewConfig(cfg.DBPath)
	dbCfg.ReadOnly = true

	db, err := database.NewDB(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	cfg.OpenAIKey = config.ResolveOpenAIKey(cfg.SecretsPath)

	return server.RunServer(store.New(db), cfg.ListenAddr(), log.Logger, cfg.APIKey, cfg.AIEnabled())
}

// seedItems returns a small fixture set so the dashboard can be exercised
// without network access.
func seedItems() []models.NewsItem {
	now := time.Now()
	return []models.NewsItem{
		{
			Link:          "https://example.pe/cancilleria/acuerdo-comercial",
			Title:         "Cancillería firma acuerdo comercial con socios de la región",
			Summary:       "El Ministerio de Relaciones Exteriores concretó un acuerdo de cooperación comercial con varios países de la región.",
			Section:       models.SectionCancilleria,
			PublishedDate: now.Add(-2 * time.Hour),
			Sentiment:     models.SentimentGreen,
			Source:        "Ejemplo Noticias",
		},
		{
			Link:          "https://example.pe/peru/economia-avanza",
			Title:         "Peru avanza en su economía según cifras oficiales",
			Summary:       "Las cifras del último trimestre muestran un avance sostenido de la actividad económica.",
			Section:       models.SectionPeru,
			PublishedDate: now.Add(-5 * time.Hour),
			Sentiment:     models.SentimentGreen,
			Source:        "Ejemplo Noticias",
		},
		{
			Link:          "https://example.pe/mundo/cumbre-apec",
			Title:         "Delegación peruana participa en cumbre internacional",
			Summary:       "La delegación presentó su agenda en la cumbre de cooperación económica.",
			Section:       models.SectionMundo,
			PublishedDate: now.Add(-8 * time.Hour),
			Sentiment:     models.SentimentYellow,
			Source:        "Agencia Mundial",
		},
		{
			Link:          "https://example.pe/peru/protesta-transporte",
			Title:         "Protesta de transportistas genera congestión en la capital",
			Summary:       "Gremios de transporte realizaron una protesta que afectó las principales vías de la ciudad.",
			Section:       models.SectionPeru,
			PublishedDate: now.Add(-12 * time.Hour),
			Sentiment:     models.SentimentRed,
			Source:        "Diario Capital",
		},
	}
}
