package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/portfolio-tracker/internal/quotes"
)

var (
	// ErrPortfolioNotFound is returned for unknown tokens.
	ErrPortfolioNotFound = errors.New("portfolio not found")
	// ErrPositionNotFound is returned when deleting a symbol the portfolio does not hold.
	ErrPositionNotFound = errors.New("position not found")
	// ErrDuplicateSymbol is wrapped by DuplicateSymbolError.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
)

// DuplicateSymbolError reports a symbol submitted more than once in one request.
type DuplicateSymbolError struct {
	Symbol string
}

func (e *DuplicateSymbolError) Error() string {
	return "duplicate symbol " + e.Symbol
}

func (e *DuplicateSymbolError) Unwrap() error {
	return ErrDuplicateSymbol
}

// Portfolio is a token-identified set of positions.
type Portfolio struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Position is a stored holding.
type Position struct {
	Symbol  string  `json:"symbol"`
	Name    string  `json:"name"`
	Qty     float64 `json:"qty"`
	AvgCost float64 `json:"avg_cost"`
}

// PositionInput is a holding as submitted by clients.
type PositionInput struct {
	Symbol  string  `json:"symbol" validate:"required,max=15"`
	Name    string  `json:"name" validate:"max=128"`
	Qty     float64 `json:"qty" validate:"gte=0,lte=1e12"`
	AvgCost float64 `json:"avg_cost" validate:"gte=0,lte=1e12"`
}

// ToPosition normalizes the input into a storable Position.
func (in PositionInput) ToPosition() Position {
	return Position{
		Symbol:  quotes.NormalizeSymbol(in.Symbol),
		Name:    in.Name,
		Qty:     in.Qty,
		AvgCost: in.AvgCost,
	}
}

// EnrichedPosition is a Position with live pricing and derived values.
type EnrichedPosition struct {
	Symbol      string        `json:"symbol"`
	Name        string        `json:"name"`
	Qty         float64       `json:"qty"`
	AvgCost     float64       `json:"avg_cost"`
	Price       float64       `json:"price"`
	PriceSource quotes.Source `json:"price_source"`
	MarketValue float64       `json:"market_value"`
	CostBasis   float64       `json:"cost_basis"`
	PnL         float64       `json:"pnl"`
	PnLPct      float64       `json:"pnl_pct"`
	Weight      float64       `json:"weight"` // percent of total market value
}

// Summary aggregates cost, value and profit/loss over a portfolio.
type Summary struct {
	Token      string             `json:"token"`
	TotalCost  float64            `json:"total_cost"`
	TotalValue float64            `json:"total_value"`
	PnL        float64            `json:"pnl"`
	PnLPct     float64            `json:"pnl_pct"`
	Positions  []EnrichedPosition `json:"positions"`
}

// Overview is the dashboard headline for the frontend.
type Overview struct {
	Value     float64 `json:"value"`
	DayChange float64 `json:"dayChange"`
	DayPct    float64 `json:"dayPct"`
}

// AllocationSlice is one wedge of the allocation chart.
type AllocationSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PriceSource supplies prices for valuation, keyed by normalized symbol.
// It never fails and looks up each distinct symbol once.
type PriceSource interface {
	GetQuotes(ctx context.Context, symbols []string) map[string]quotes.Quote
}

type tokenContextKey struct{}

// WithToken stores the request's portfolio token in ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the token stored by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok && token != ""
}
