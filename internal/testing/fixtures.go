package testing

// PriceFixtures returns the provider prices used across tests.
func PriceFixtures() map[string]float64 {
	return map[string]float64{
		"AAPL": 177.22,
		"MSFT": 375.31,
		"NVDA": 867.90,
		"VOO":  512.10,
		"TSLA": 228.70,
	}
}

// NewSeededQuoteProvider returns a MockQuoteProvider loaded with PriceFixtures.
func NewSeededQuoteProvider() *MockQuoteProvider {
	m := NewMockQuoteProvider()
	for symbol, price := range PriceFixtures() {
		m.SetPrice(symbol, price)
	}
	return m
}
