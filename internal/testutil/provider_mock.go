package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// MockProvider is a market data provider returning predefined data instead
// of making API calls.
type MockProvider struct {
	mu sync.Mutex
	// Series maps a symbol to the daily closes returned for it.
	Series map[string][]model.PricePoint
	// Symbols is the listing returned by Listing.
	Symbols []model.Symbol
	// MockError is returned by every call when set.
	MockError error
	// Delay blocks each DailySeries call, to exercise concurrent refreshes.
	Delay time.Duration

	seriesCalls map[string]int
}

// NewMockProvider creates a MockProvider without data.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Series:      map[string][]model.PricePoint{},
		seriesCalls: map[string]int{},
	}
}

// WithDaily adds a close for every day from start to end inclusive.
func (m *MockProvider) WithDaily(symbol string, start, end time.Time, price float64) *MockProvider {
	for d := model.Day(start); !d.After(model.Day(end)); d = d.AddDate(0, 0, 1) {
		m.Series[symbol] = append(m.Series[symbol], model.PricePoint{Symbol: symbol, Date: d, Close: price})
	}
	return m
}

// WithSymbols sets the listing.
func (m *MockProvider) WithSymbols(symbols ...model.Symbol) *MockProvider {
	m.Symbols = symbols
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.MockError = err
	return m
}

// Name identifies the mock in log output.
func (m *MockProvider) Name() string { return "mock" }

// DailySeries returns the configured series for symbol.
func (m *MockProvider) DailySeries(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	m.mu.Lock()
	m.seriesCalls[symbol]++
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.Series[symbol], nil
}

// Listing returns the configured listing.
func (m *MockProvider) Listing(context.Context) ([]model.Symbol, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.Symbols, nil
}

// SeriesCalls returns how many times DailySeries was called for symbol.
func (m *MockProvider) SeriesCalls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seriesCalls[symbol]
}
