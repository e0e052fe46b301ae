package portfolio

import (
	"context"
	"testing"
	"time"

	testingpkg "github.com/aristath/portfolio-tracker/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "portfolio")
	t.Cleanup(cleanup)
	return NewRepository(db.Conn(), zerolog.Nop())
}

func createPortfolio(t *testing.T, repo *Repository, token string, positions ...Position) {
	t.Helper()
	p := Portfolio{Token: token, CreatedAt: time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(context.Background(), p, positions))
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	createPortfolio(t, repo, "tok-1",
		Position{Symbol: "MSFT", Qty: 2, AvgCost: 300},
		Position{Symbol: "AAPL", Name: "Apple", Qty: 10, AvgCost: 150},
	)

	p, err := repo.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", p.Token)
	assert.Equal(t, time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC), p.CreatedAt)

	positions, err := repo.ListPositions(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, Position{Symbol: "AAPL", Name: "Apple", Qty: 10, AvgCost: 150}, positions[0])
	assert.Equal(t, "MSFT", positions[1].Symbol)
	assert.Empty(t, positions[1].Name)
}

func TestRepository_GetUnknown(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPortfolioNotFound)

	exists, err := repo.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_CreateRollsBackOnDuplicateSymbol(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	p := Portfolio{Token: "tok-dup", CreatedAt: time.Now()}
	err := repo.Create(ctx, p, []Position{{Symbol: "AAPL", Qty: 1}, {Symbol: "AAPL", Qty: 2}})
	require.Error(t, err)

	exists, err := repo.Exists(ctx, "tok-dup")
	require.NoError(t, err)
	assert.False(t, exists, "portfolio insert must roll back with the positions")
}

func TestRepository_ListPositionsEmpty(t *testing.T) {
	repo := setupRepository(t)
	createPortfolio(t, repo, "tok-empty")

	positions, err := repo.ListPositions(context.Background(), "tok-empty")
	require.NoError(t, err)
	assert.NotNil(t, positions)
	assert.Empty(t, positions)
}

func TestRepository_ReplacePositions(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	createPortfolio(t, repo, "tok-1", Position{Symbol: "AAPL", Qty: 10, AvgCost: 150})

	require.NoError(t, repo.ReplacePositions(ctx, "tok-1", []Position{
		{Symbol: "NVDA", Qty: 1, AvgCost: 400},
	}))

	positions, err := repo.ListPositions(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "NVDA", positions[0].Symbol)

	require.NoError(t, repo.ReplacePositions(ctx, "tok-1", nil))
	positions, err = repo.ListPositions(ctx, "tok-1")
	require.NoError(t, err)
	assert.Empty(t, positions)

	err = repo.ReplacePositions(ctx, "missing", []Position{{Symbol: "AAPL"}})
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
}

func TestRepository_UpsertPosition(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	createPortfolio(t, repo, "tok-1", Position{Symbol: "AAPL", Qty: 10, AvgCost: 150})

	require.NoError(t, repo.UpsertPosition(ctx, "tok-1", Position{Symbol: "AAPL", Name: "Apple", Qty: 12, AvgCost: 155}))
	require.NoError(t, repo.UpsertPosition(ctx, "tok-1", Position{Symbol: "VOO", Qty: 3, AvgCost: 420}))

	positions, err := repo.ListPositions(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, Position{Symbol: "AAPL", Name: "Apple", Qty: 12, AvgCost: 155}, positions[0])
	assert.Equal(t, "VOO", positions[1].Symbol)

	err = repo.UpsertPosition(ctx, "missing", Position{Symbol: "AAPL"})
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
}

func TestRepository_DeletePosition(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	createPortfolio(t, repo, "tok-1", Position{Symbol: "AAPL", Qty: 10, AvgCost: 150})

	require.NoError(t, repo.DeletePosition(ctx, "tok-1", "AAPL"))
	assert.ErrorIs(t, repo.DeletePosition(ctx, "tok-1", "AAPL"), ErrPositionNotFound)
	assert.ErrorIs(t, repo.DeletePosition(ctx, "missing", "AAPL"), ErrPortfolioNotFound)
}

func TestRepository_Count(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	createPortfolio(t, repo, "a")
	createPortfolio(t, repo, "b")

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
