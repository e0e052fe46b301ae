package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/rs/zerolog"
)

// Repository handles portfolio and position database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// Create inserts a portfolio together with its initial positions.
func (r *Repository) Create(ctx context.Context, p Portfolio, positions []Position) error {
	return database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO portfolios (token, created_at) VALUES (?, ?)",
			p.Token, p.CreatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("failed to insert portfolio: %w", err)
		}
		return insertPositions(ctx, tx, p.Token, positions)
	})
}

// Get returns the portfolio for token, or ErrPortfolioNotFound.
func (r *Repository) Get(ctx context.Context, token string) (*Portfolio, error) {
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		"SELECT created_at FROM portfolios WHERE token = ?", token,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio: %w", err)
	}

	return &Portfolio{Token: token, CreatedAt: time.Unix(createdAt, 0).UTC()}, nil
}

// Exists reports whether token names a portfolio.
func (r *Repository) Exists(ctx context.Context, token string) (bool, error) {
	_, err := r.Get(ctx, token)
	if errors.Is(err, ErrPortfolioNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListPositions returns the positions of a portfolio ordered by symbol.
func (r *Repository) ListPositions(ctx context.Context, token string) ([]Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT symbol, COALESCE(name, ''), qty, avg_cost
		FROM positions WHERE portfolio_token = ? ORDER BY symbol`, token)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]Position, 0)
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.Symbol, &p.Name, &p.Qty, &p.AvgCost); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// ReplacePositions atomically swaps the portfolio's positions for the given set.
func (r *Repository) ReplacePositions(ctx context.Context, token string, positions []Position) error {
	return database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if err := requirePortfolio(ctx, tx, token); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM positions WHERE portfolio_token = ?", token); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}
		return insertPositions(ctx, tx, token, positions)
	})
}

// UpsertPosition inserts a position or updates the one with the same symbol.
func (r *Repository) UpsertPosition(ctx context.Context, token string, p Position) error {
	return database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if err := requirePortfolio(ctx, tx, token); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO positions (portfolio_token, symbol, name, qty, avg_cost) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(portfolio_token, symbol) DO UPDATE SET
				name = excluded.name, qty = excluded.qty, avg_cost = excluded.avg_cost`,
			token, p.Symbol, nullableName(p.Name), p.Qty, p.AvgCost,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert position %s: %w", p.Symbol, err)
		}
		return nil
	})
}

// DeletePosition removes one symbol from a portfolio.
func (r *Repository) DeletePosition(ctx context.Context, token, symbol string) error {
	return database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if err := requirePortfolio(ctx, tx, token); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"DELETE FROM positions WHERE portfolio_token = ? AND symbol = ?", token, symbol)
		if err != nil {
			return fmt.Errorf("failed to delete position %s: %w", symbol, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return ErrPositionNotFound
		}
		return nil
	})
}

// Count returns the number of portfolios.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM portfolios").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count portfolios: %w", err)
	}
	return n, nil
}

func requirePortfolio(ctx context.Context, tx *sql.Tx, token string) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM portfolios WHERE token = ?", token).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPortfolioNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query portfolio: %w", err)
	}
	return nil
}

func insertPositions(ctx context.Context, tx *sql.Tx, token string, positions []Position) error {
	if len(positions) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO positions (portfolio_token, symbol, name, qty, avg_cost) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare position insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.ExecContext(ctx, token, p.Symbol, nullableName(p.Name), p.Qty, p.AvgCost); err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.Symbol, err)
		}
	}
	return nil
}

func nullableName(name string) interface{} {
	if name == "" {
		return nil
	}
	return name
}
