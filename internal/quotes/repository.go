// Package quotes provides the shared, TTL-checked price cache and the quote
// service that falls back to stale or placeholder prices when the provider fails.
package quotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// CachedQuote is a row of the quotes table.
type CachedQuote struct {
	Symbol    string
	Price     float64
	FetchedAt time.Time
}

// Age returns how old the cached price is at now.
func (q CachedQuote) Age(now time.Time) time.Duration {
	return now.Sub(q.FetchedAt)
}

// Repository provides cache operations for quotes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new quote repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// MaxSymbolLength is the longest ticker symbol, in characters.
const MaxSymbolLength = 15

// ValidSymbol reports whether a normalized symbol is non-empty and short enough.
func ValidSymbol(symbol string) bool {
	return symbol != "" && utf8.RuneCountInString(symbol) <= MaxSymbolLength
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Get returns the cached quote regardless of age.
// Returns nil, nil if the symbol has never been cached.
func (r *Repository) Get(ctx context.Context, symbol string) (*CachedQuote, error) {
	var (
		q         CachedQuote
		fetchedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT symbol, price, fetched_at FROM quotes WHERE symbol = ?",
		NormalizeSymbol(symbol),
	).Scan(&q.Symbol, &q.Price, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}

	q.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	return &q, nil
}

// Upsert stores the latest price for symbol, replacing any previous entry.
func (r *Repository) Upsert(ctx context.Context, symbol string, price float64, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes (symbol, price, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET price = excluded.price, fetched_at = excluded.fetched_at`,
		NormalizeSymbol(symbol), price, fetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store quote for %s: %w", symbol, err)
	}
	return nil
}

// DeleteOlderThan removes entries fetched before cutoff.
// Returns the number of rows deleted.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM quotes WHERE fetched_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired quotes: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Count returns the number of cached symbols.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quotes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return n, nil
}
