package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"noticias/dashboard/internal/database"
	"noticias/dashboard/internal/models"
)

// Naive local-time format used for the published_date column so rows
// compare and order uniformly regardless of source timezone.
const timestampFormat = "2006-01-02 15:04:05"

// Store provides durable keyed access to the 'news' table.
type Store struct {
	db *database.DB
}

// New creates a store backed by an existing database connection.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Save inserts items with insert-if-absent semantics keyed on link.
// Per-item write errors are logged and skipped without aborting the
// batch. It returns the number of newly inserted rows.
func (s *Store) Save(ctx context.Context, items []models.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO news (link, title, summary, section, published_date, sentiment, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO NOTHING;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	duplicates := 0

	for _, item := range items {
		res, err := stmt.ExecContext(ctx,
			item.Link, item.Title, item.Summary, item.Section,
			item.PublishedDate.Format(timestampFormat), item.Sentiment, item.Source,
		)
		if err != nil {
			log.Error().Err(err).Str("link", item.Link).Msg("Failed to insert news item")
			continue
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			log.Error().Err(err).Str("link", item.Link).Msg("Failed to get rows affected")
			continue
		}
		if rowsAffected > 0 {
			saved++
		} else {
			duplicates++
			log.Debug().Str("link", item.Link).Msg("Duplicate link detected")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	log.Info().
		Int("saved", saved).
		Int("duplicates", duplicates).
		Msg("Batch saved")
	return saved, nil
}

// ExistsByLink reports whether an item with the given link is already stored.
func (s *Store) ExistsByLink(ctx context.Context, link string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, "SELECT 1 FROM news WHERE link = ?", link)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check link existence: %w", err)
	}
	return true, nil
}

// QueryRecent returns items published inside the trailing window, newest
// first.
func (s *Store) QueryRecent(ctx context.Context, windowHours int) ([]models.NewsItem, error) {
	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)

	var items []models.NewsItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT link, title, summary, section, published_date, sentiment, source
		FROM news
		WHERE published_date >= ?
		ORDER BY published_date DESC`,
		cutoff.Format(timestampFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent news: %w", err)
	}
	return items, nil
}

// Count returns the total number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM news"); err != nil {
		return 0, fmt.Errorf("failed to count news items: %w", err)
	}
	return count, nil
}
