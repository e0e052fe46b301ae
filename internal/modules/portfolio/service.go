// Package portfolio manages token-identified portfolios and values their
// positions against current market prices.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/portfolio-tracker/internal/quotes"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PortfolioService orchestrates portfolio storage and valuation.
//
// Responsibilities:
//   - Issue tokens for new portfolios
//   - Replace, upsert and delete positions
//   - Price positions through the quote service and derive value, weight and P&L
type PortfolioService struct {
	repo     *Repository
	prices   PriceSource
	newToken func() string
	now      func() time.Time
	log      zerolog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(repo *Repository, prices PriceSource, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		repo:     repo,
		prices:   prices,
		newToken: func() string { return uuid.New().String() },
		now:      time.Now,
		log:      log.With().Str("service", "portfolio").Logger(),
	}
}

// CreatePortfolio issues a new token and stores the optional initial positions.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, inputs []PositionInput) (*Portfolio, []EnrichedPosition, error) {
	positions, err := normalize(inputs)
	if err != nil {
		return nil, nil, err
	}

	p := Portfolio{
		Token:     s.newToken(),
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Create(ctx, p, positions); err != nil {
		return nil, nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	s.log.Info().Str("token", shortToken(p.Token)).Int("positions", len(positions)).Msg("Portfolio created")

	return &p, s.value(ctx, positions).positions, nil
}

// Exists reports whether token names a portfolio.
func (s *PortfolioService) Exists(ctx context.Context, token string) (bool, error) {
	return s.repo.Exists(ctx, token)
}

// ReplacePositions swaps all positions and returns the new set, priced.
func (s *PortfolioService) ReplacePositions(ctx context.Context, token string, inputs []PositionInput) ([]EnrichedPosition, error) {
	positions, err := normalize(inputs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplacePositions(ctx, token, positions); err != nil {
		return nil, err
	}

	s.log.Info().Str("token", shortToken(token)).Int("positions", len(positions)).Msg("Positions replaced")

	return s.value(ctx, positions).positions, nil
}

// UpsertPosition adds or updates one position and returns it priced within
// the whole portfolio, so its weight is meaningful.
func (s *PortfolioService) UpsertPosition(ctx context.Context, token string, input PositionInput) (*EnrichedPosition, error) {
	pos := input.ToPosition()
	if err := s.repo.UpsertPosition(ctx, token, pos); err != nil {
		return nil, err
	}

	positions, err := s.GetPortfolio(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		if positions[i].Symbol == pos.Symbol {
			return &positions[i], nil
		}
	}
	return nil, fmt.Errorf("position %s missing after upsert", pos.Symbol)
}

// DeletePosition removes a symbol from the portfolio.
func (s *PortfolioService) DeletePosition(ctx context.Context, token, symbol string) error {
	return s.repo.DeletePosition(ctx, token, quotes.NormalizeSymbol(symbol))
}

// GetPortfolio returns the portfolio's positions, priced.
func (s *PortfolioService) GetPortfolio(ctx context.Context, token string) ([]EnrichedPosition, error) {
	v, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	return v.positions, nil
}

// GetSummary returns total cost, total value and P&L with the priced positions.
func (s *PortfolioService) GetSummary(ctx context.Context, token string) (*Summary, error) {
	v, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Token:      token,
		TotalCost:  v.totalCost.InexactFloat64(),
		TotalValue: v.totalValue.InexactFloat64(),
		PnL:        v.pnl().InexactFloat64(),
		PnLPct:     v.pnlPct().InexactFloat64(),
		Positions:  v.positions,
	}, nil
}

// GetOverview returns the dashboard headline. No price history is kept, so
// the day change is always zero.
func (s *PortfolioService) GetOverview(ctx context.Context, token string) (*Overview, error) {
	v, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Overview{Value: v.totalValue.InexactFloat64()}, nil
}

// GetAllocation returns each position's weight, largest first.
func (s *PortfolioService) GetAllocation(ctx context.Context, token string) ([]AllocationSlice, error) {
	positions, err := s.GetPortfolio(ctx, token)
	if err != nil {
		return nil, err
	}

	slices := make([]AllocationSlice, 0, len(positions))
	for _, p := range positions {
		slices = append(slices, AllocationSlice{Name: p.Symbol, Value: p.Weight})
	}
	sortAllocation(slices)
	return slices, nil
}

func (s *PortfolioService) load(ctx context.Context, token string) (valuation, error) {
	if _, err := s.repo.Get(ctx, token); err != nil {
		return valuation{}, err
	}
	positions, err := s.repo.ListPositions(ctx, token)
	if err != nil {
		return valuation{}, err
	}
	return s.value(ctx, positions), nil
}

func (s *PortfolioService) value(ctx context.Context, positions []Position) valuation {
	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	return value(positions, s.prices.GetQuotes(ctx, symbols))
}

// normalize converts inputs to positions and rejects repeated symbols.
func normalize(inputs []PositionInput) ([]Position, error) {
	positions := make([]Position, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		p := in.ToPosition()
		if seen[p.Symbol] {
			return nil, &DuplicateSymbolError{Symbol: p.Symbol}
		}
		seen[p.Symbol] = true
		positions = append(positions, p)
	}
	return positions, nil
}

// sortAllocation orders slices by weight descending, then by name.
func sortAllocation(slices []AllocationSlice) {
	sort.SliceStable(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Name < slices[j].Name
	})
}

// shortToken keeps full tokens out of the logs.
func shortToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "…"
}
