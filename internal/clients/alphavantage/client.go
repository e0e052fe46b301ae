// Package alphavantage provides a client for Alpha Vantage's GLOBAL_QUOTE endpoint.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL    = "https://www.alphavantage.co/query"
	defaultDailyLimit = 25 // Free tier allowance
)

// ErrNoAPIKey is returned when the client was created without an API key.
var ErrNoAPIKey = errors.New("alphavantage: no API key configured")

// ErrRateLimitExceeded is returned once the daily request budget is used up,
// or when Alpha Vantage itself reports throttling.
type ErrRateLimitExceeded struct {
	Limit   int
	Message string
}

func (e ErrRateLimitExceeded) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("alphavantage rate limit: %s", e.Message)
	}
	return fmt.Sprintf("alphavantage daily limit of %d requests exceeded", e.Limit)
}

// Client fetches latest prices from Alpha Vantage
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger

	mu           sync.Mutex
	dailyLimit   int
	requestCount int
}

// NewClient creates a new Alpha Vantage client.
// dailyLimit <= 0 selects the free-tier default.
func NewClient(apiKey string, dailyLimit int, log zerolog.Logger) *Client {
	if dailyLimit <= 0 {
		dailyLimit = defaultDailyLimit
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("client", "alphavantage").Logger(),
		dailyLimit: dailyLimit,
	}
}

type globalQuoteResponse struct {
	GlobalQuote  map[string]string `json:"Global Quote"`
	Note         string            `json:"Note"`
	Information  string            `json:"Information"`
	ErrorMessage string            `json:"Error Message"`
}

// GetQuote returns the latest traded price for symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (float64, error) {
	if c.apiKey == "" {
		return 0, ErrNoAPIKey
	}
	if err := c.checkRateLimit(); err != nil {
		return 0, err
	}

	params := url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	c.log.Debug().Str("symbol", symbol).Msg("Fetching quote")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var body globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	switch {
	case body.Note != "":
		return 0, ErrRateLimitExceeded{Limit: c.dailyLimit, Message: body.Note}
	case body.Information != "":
		return 0, ErrRateLimitExceeded{Limit: c.dailyLimit, Message: body.Information}
	case body.ErrorMessage != "":
		return 0, fmt.Errorf("API error for %s: %s", symbol, body.ErrorMessage)
	}

	raw, ok := body.GlobalQuote["05. price"]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("no quote returned for %s", symbol)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q for %s: %w", raw, symbol, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("invalid price %q for %s", raw, symbol)
	}

	c.log.Debug().Str("symbol", symbol).Float64("price", price).Msg("Fetched quote")

	return price, nil
}

// checkRateLimit consumes one request from the daily budget.
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.requestCount >= c.dailyLimit {
		return ErrRateLimitExceeded{Limit: c.dailyLimit}
	}
	c.requestCount++
	return nil
}

// GetRemainingRequests returns the number of requests left today.
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dailyLimit - c.requestCount
}

// ResetDailyCounter restores the full daily budget.
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount = 0
}
