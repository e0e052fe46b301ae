package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	testingpkg "github.com/aristath/portfolio-tracker/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc      *Service
	repo     *Repository
	provider *testingpkg.MockQuoteProvider
	now      time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	repo := NewRepository(setupTestDB(t))
	provider := testingpkg.NewSeededQuoteProvider()
	svc := NewService(repo, provider, Config{TTL: 15 * time.Minute, FallbackPrice: 100}, zerolog.Nop())

	f := &serviceFixture{
		svc:      svc,
		repo:     repo,
		provider: provider,
		now:      time.Date(2025, 12, 4, 15, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return f.now }
	return f
}

func TestGetQuote_LiveThenCached(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	q := f.svc.GetQuote(ctx, "aapl")
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 177.22, q.Price)
	assert.Equal(t, SourceLive, q.Source)
	require.NotNil(t, q.FetchedAt)
	assert.True(t, f.now.Equal(*q.FetchedAt))

	f.now = f.now.Add(5 * time.Minute)
	q = f.svc.GetQuote(ctx, "AAPL")
	assert.Equal(t, SourceCache, q.Source)
	assert.Equal(t, 177.22, q.Price)
	assert.Equal(t, 1, f.provider.Calls("AAPL"), "fresh cache must not call the provider")
}

func TestGetQuote_ExpiredEntryRefetches(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Upsert(ctx, "MSFT", 360.0, f.now.Add(-16*time.Minute)))

	q := f.svc.GetQuote(ctx, "MSFT")
	assert.Equal(t, SourceLive, q.Source)
	assert.Equal(t, 375.31, q.Price)

	cached, err := f.repo.Get(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 375.31, cached.Price)
	assert.Equal(t, f.now.Unix(), cached.FetchedAt.Unix())
}

func TestGetQuote_TTLBoundary(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	// An entry exactly TTL old is no longer fresh
	require.NoError(t, f.repo.Upsert(ctx, "NVDA", 800.0, f.now.Add(-15*time.Minute)))

	q := f.svc.GetQuote(ctx, "NVDA")
	assert.Equal(t, SourceLive, q.Source)
	assert.Equal(t, 1, f.provider.Calls("NVDA"))
}

func TestGetQuote_ProviderFailureUsesStale(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	stale := f.now.Add(-3 * time.Hour)
	require.NoError(t, f.repo.Upsert(ctx, "TSLA", 232.10, stale))
	f.provider.SetError(errors.New("provider down"))

	q := f.svc.GetQuote(ctx, "TSLA")
	assert.Equal(t, SourceStale, q.Source)
	assert.Equal(t, 232.10, q.Price)
	require.NotNil(t, q.FetchedAt)
	assert.Equal(t, stale.Unix(), q.FetchedAt.Unix())

	// Stale entries are left untouched
	cached, err := f.repo.Get(ctx, "TSLA")
	require.NoError(t, err)
	assert.Equal(t, stale.Unix(), cached.FetchedAt.Unix())
}

func TestGetQuote_ProviderFailureWithoutCacheUsesFallback(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	q := f.svc.GetQuote(ctx, "UNKNOWN")
	assert.Equal(t, SourceFallback, q.Source)
	assert.Equal(t, 100.0, q.Price)
	assert.Nil(t, q.FetchedAt)

	cached, err := f.repo.Get(ctx, "UNKNOWN")
	require.NoError(t, err)
	assert.Nil(t, cached, "fallback prices are never cached")
}

func TestGetQuote_UnusableProviderPriceFallsBack(t *testing.T) {
	for _, price := range []float64{math.NaN(), math.Inf(1), 0} {
		f := newServiceFixture(t)
		ctx := context.Background()
		f.provider.SetPrice("AAPL", price)

		q := f.svc.GetQuote(ctx, "AAPL")
		assert.Equal(t, SourceFallback, q.Source)
		assert.Equal(t, 100.0, q.Price)

		_, err := json.Marshal(q)
		assert.NoError(t, err)

		cached, err := f.repo.Get(ctx, "AAPL")
		require.NoError(t, err)
		assert.Nil(t, cached)
	}
}

func TestGetQuote_MalformedSymbolUsesFallback(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	for _, sym := range []string{"", "   ", "ABCDEFGHIJKLMNOP", "ÄÖÜÄÖÜÄÖÜÄÖÜÄÖÜ"} {
		q := f.svc.GetQuote(ctx, sym)
		assert.Equal(t, SourceFallback, q.Source, sym)
		assert.Equal(t, 100.0, q.Price, sym)
	}
	assert.Zero(t, f.provider.TotalCalls())

	f.svc.GetQuote(ctx, "ÄÖÜÄÖÜÄÖÜÄÖÜÄÖ")
	assert.Equal(t, 1, f.provider.TotalCalls(), "15 characters is a valid length even when longer in bytes")
}

func TestGetQuote_CacheFailureStillAnswers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	provider := testingpkg.NewSeededQuoteProvider()
	svc := NewService(repo, provider, Config{TTL: time.Minute, FallbackPrice: 50}, zerolog.Nop())

	require.NoError(t, db.Close())

	q := svc.GetQuote(context.Background(), "AAPL")
	assert.Equal(t, SourceLive, q.Source)
	assert.Equal(t, 177.22, q.Price)

	provider.SetError(errors.New("down"))
	q = svc.GetQuote(context.Background(), "AAPL")
	assert.Equal(t, SourceFallback, q.Source)
	assert.Equal(t, 50.0, q.Price)
}

func TestGetQuotes_DeduplicatesSymbols(t *testing.T) {
	f := newServiceFixture(t)

	got := f.svc.GetQuotes(context.Background(), []string{"AAPL", "aapl", " MSFT ", "AAPL"})
	assert.Len(t, got, 2)
	assert.Equal(t, 177.22, got["AAPL"].Price)
	assert.Equal(t, 375.31, got["MSFT"].Price)
	assert.Equal(t, 1, f.provider.Calls("AAPL"))
}
