package quotes

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Source tells where a quote's price came from.
type Source string

const (
	SourceLive     Source = "live"     // fetched from the provider just now
	SourceCache    Source = "cache"    // cached and within the TTL
	SourceStale    Source = "stale"    // cached but expired; provider failed
	SourceFallback Source = "fallback" // placeholder; nothing else available
)

// Quote is the price answer for a single symbol.
type Quote struct {
	Symbol    string     `json:"symbol"`
	Price     float64    `json:"price"`
	Source    Source     `json:"source"`
	FetchedAt *time.Time `json:"fetched_at"`
}

// Provider fetches a live price from a third-party quote API.
type Provider interface {
	GetQuote(ctx context.Context, symbol string) (float64, error)
}

// Config controls cache freshness and the placeholder price.
type Config struct {
	TTL           time.Duration
	FallbackPrice float64
}

// Service answers price lookups cache-first.
type Service struct {
	repo     *Repository
	provider Provider
	cfg      Config
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new quote service.
func NewService(repo *Repository, provider Provider, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("service", "quotes").Logger(),
	}
}

// GetQuote always returns a price: fresh cache, then provider, then the stale
// cache entry, then the fallback price. Cache errors are treated as misses.
// Malformed symbols get the fallback price without touching cache or provider.
func (s *Service) GetQuote(ctx context.Context, symbol string) Quote {
	symbol = NormalizeSymbol(symbol)
	if !ValidSymbol(symbol) {
		s.log.Debug().Str("symbol", symbol).Msg("Malformed symbol, using fallback price")
		return Quote{Symbol: symbol, Price: s.cfg.FallbackPrice, Source: SourceFallback}
	}
	now := s.now()

	cached, err := s.repo.Get(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote cache read failed")
		cached = nil
	}

	if cached != nil && cached.Age(now) < s.cfg.TTL {
		s.log.Debug().Str("symbol", symbol).Float64("price", cached.Price).Msg("Cache hit")
		return newQuote(cached.Symbol, cached.Price, SourceCache, cached.FetchedAt)
	}

	price, err := s.provider.GetQuote(ctx, symbol)
	if err == nil && !usablePrice(price) {
		err = fmt.Errorf("provider returned unusable price %v for %s", price, symbol)
	}
	if err == nil {
		if storeErr := s.repo.Upsert(ctx, symbol, price, now); storeErr != nil {
			s.log.Warn().Err(storeErr).Str("symbol", symbol).Msg("Failed to cache quote")
		}
		return newQuote(symbol, price, SourceLive, now.UTC().Truncate(time.Second))
	}

	if cached != nil {
		s.log.Warn().
			Err(err).
			Str("symbol", symbol).
			Float64("price", cached.Price).
			Dur("age", cached.Age(now)).
			Msg("Provider failed, using stale cached price")
		return newQuote(cached.Symbol, cached.Price, SourceStale, cached.FetchedAt)
	}

	s.log.Warn().
		Err(err).
		Str("symbol", symbol).
		Float64("price", s.cfg.FallbackPrice).
		Msg("Provider failed and no cached price, using fallback price")
	return Quote{Symbol: symbol, Price: s.cfg.FallbackPrice, Source: SourceFallback}
}

// GetQuotes looks up each distinct symbol once, in order.
func (s *Service) GetQuotes(ctx context.Context, symbols []string) map[string]Quote {
	out := make(map[string]Quote, len(symbols))
	for _, sym := range symbols {
		sym = NormalizeSymbol(sym)
		if _, done := out[sym]; done {
			continue
		}
		out[sym] = s.GetQuote(ctx, sym)
	}
	return out
}

func usablePrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func newQuote(symbol string, price float64, source Source, fetchedAt time.Time) Quote {
	t := fetchedAt
	return Quote{Symbol: symbol, Price: price, Source: source, FetchedAt: &t}
}
