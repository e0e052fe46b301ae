package quotes

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE quotes (symbol TEXT PRIMARY KEY, price REAL NOT NULL, fetched_at INTEGER NOT NULL);
CREATE INDEX idx_quotes_fetched_at ON quotes(fetched_at);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every new :memory: connection is a fresh database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol("  aapl "))
	assert.Equal(t, "BRK.B", NormalizeSymbol("brk.b"))
	assert.Equal(t, "", NormalizeSymbol("   "))
}

func TestGet_Missing(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	q, err := repo.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestUpsertAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	fetched := time.Date(2025, 12, 4, 15, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, "aapl", 177.22, fetched))

	q, err := repo.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 177.22, q.Price)
	assert.True(t, fetched.Equal(q.FetchedAt))
	assert.Equal(t, 10*time.Minute, q.Age(fetched.Add(10*time.Minute)))
}

func TestUpsert_NeverDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	first := time.Now().Add(-time.Hour)
	second := time.Now()

	require.NoError(t, repo.Upsert(ctx, "MSFT", 360.0, first))
	require.NoError(t, repo.Upsert(ctx, "msft", 375.31, second))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM quotes WHERE symbol = 'MSFT'").Scan(&count))
	assert.Equal(t, 1, count)

	q, err := repo.Get(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 375.31, q.Price)
	assert.Equal(t, second.Unix(), q.FetchedAt.Unix())

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteOlderThan(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Upsert(ctx, "OLD1", 1, now.Add(-10*24*time.Hour)))
	require.NoError(t, repo.Upsert(ctx, "OLD2", 1, now.Add(-8*24*time.Hour)))
	require.NoError(t, repo.Upsert(ctx, "NEW", 1, now.Add(-time.Hour)))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	q, err := repo.Get(ctx, "NEW")
	require.NoError(t, err)
	assert.NotNil(t, q)

	q, err = repo.Get(ctx, "OLD1")
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestCleanupJob(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, "OLD", 1, now.Add(-48*time.Hour)))
	require.NoError(t, repo.Upsert(ctx, "NEW", 1, now.Add(-time.Hour)))

	job := NewCleanupJob(repo, 24*time.Hour, zerolog.Nop())
	job.now = func() time.Time { return now }

	assert.Equal(t, "quote_cache_cleanup", job.Name())
	require.NoError(t, job.Run())

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
