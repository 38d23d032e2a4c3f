package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"noticias/dashboard/internal/database"
	"noticias/dashboard/internal/models"
	"noticias/dashboard/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.NewDB(database.NewConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db)
}

func testItem(link string, published time.Time) models.NewsItem {
	return models.NewsItem{
		Link:          link,
		Title:         "titular " + link,
		Summary:       "resumen",
		Section:       models.SectionPeru,
		PublishedDate: published,
		Sentiment:     models.SentimentYellow,
		Source:        "Test",
	}
}

func TestSaveInsertIfAbsent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	items := []models.NewsItem{
		testItem("https://example.pe/a", now),
		testItem("https://example.pe/b", now),
	}

	saved, err := st.Save(ctx, items)
	require.NoError(t, err)
	require.Equal(t, 2, saved)

	// Second run with the same links inserts nothing.
	saved, err = st.Save(ctx, items)
	require.NoError(t, err)
	require.Equal(t, 0, saved)

	count, err := st.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestSaveEmptyBatch(t *testing.T) {
	st := newTestStore(t)

	saved, err := st.Save(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, saved)
}

func TestExistsByLink(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	exists, err := st.ExistsByLink(ctx, "https://example.pe/missing")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = st.Save(ctx, []models.NewsItem{testItem("https://example.pe/present", time.Now())})
	require.NoError(t, err)

	exists, err = st.ExistsByLink(ctx, "https://example.pe/present")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestQueryRecentWindowAndOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := st.Save(ctx, []models.NewsItem{
		testItem("https://example.pe/old", now.Add(-72*time.Hour)),
		testItem("https://example.pe/mid", now.Add(-10*time.Hour)),
		testItem("https://example.pe/new", now.Add(-1*time.Hour)),
	})
	require.NoError(t, err)

	items, err := st.QueryRecent(ctx, 24)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Strictly descending by published date.
	require.Equal(t, "https://example.pe/new", items[0].Link)
	require.Equal(t, "https://example.pe/mid", items[1].Link)
	for i := 1; i < len(items); i++ {
		require.True(t, items[i-1].PublishedDate.After(items[i].PublishedDate))
	}

	// Wider window includes the old item too.
	items, err = st.QueryRecent(ctx, 168)
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestQueryRecentEmpty(t *testing.T) {
	st := newTestStore(t)

	items, err := st.QueryRecent(context.Background(), 24)
	require.NoError(t, err)
	require.Empty(t, items)
}
