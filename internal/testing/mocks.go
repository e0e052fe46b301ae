package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockQuoteProvider is an in-memory quote provider for testing.
// Unknown symbols fail, as does every symbol once SetError is called.
type MockQuoteProvider struct {
	mu     sync.RWMutex
	prices map[string]float64
	err    error
	calls  map[string]int
}

// NewMockQuoteProvider creates a new mock quote provider
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		prices: make(map[string]float64),
		calls:  make(map[string]int),
	}
}

// SetPrice sets the price returned for a symbol
func (m *MockQuoteProvider) SetPrice(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[strings.ToUpper(symbol)] = price
}

// SetError makes every subsequent call fail with err (nil restores normal behaviour)
func (m *MockQuoteProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetQuote returns the configured price for symbol
func (m *MockQuoteProvider) GetQuote(ctx context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbol = strings.ToUpper(symbol)
	m.calls[symbol]++

	if m.err != nil {
		return 0, m.err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no quote for %s", symbol)
	}
	return price, nil
}

// Calls returns how many times GetQuote was called for symbol
func (m *MockQuoteProvider) Calls(symbol string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[strings.ToUpper(symbol)]
}

// TotalCalls returns the number of GetQuote calls across all symbols
func (m *MockQuoteProvider) TotalCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}
