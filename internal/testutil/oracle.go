package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// StaticOracle is an in-memory price oracle for tests. Prices are set per
// symbol and calendar day; any other lookup reports the price as unavailable.
//
// Example usage:
//
//	oracle := testutil.NewStaticOracle().
//	    Set("AAPL", testutil.Date(2022, 6, 1), 98.72).
//	    Daily("MSFT", testutil.Date(2022, 6, 1), testutil.Date(2022, 7, 31), 250)
type StaticOracle struct {
	mu     sync.Mutex
	prices map[string]map[string]float64
	calls  map[string]int
}

// NewStaticOracle creates an empty StaticOracle.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		prices: map[string]map[string]float64{},
		calls:  map[string]int{},
	}
}

// Set stores the close of symbol on day.
func (o *StaticOracle) Set(symbol string, day time.Time, price float64) *StaticOracle {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.prices[symbol] == nil {
		o.prices[symbol] = map[string]float64{}
	}
	o.prices[symbol][model.FormatDate(day)] = price
	return o
}

// Daily stores the same close of symbol for every day from start to end inclusive.
func (o *StaticOracle) Daily(symbol string, start, end time.Time, price float64) *StaticOracle {
	for d := model.Day(start); !d.After(model.Day(end)); d = d.AddDate(0, 0, 1) {
		o.Set(symbol, d, price)
	}
	return o
}

// Remove deletes the close of symbol on day, e.g. to simulate a holiday.
func (o *StaticOracle) Remove(symbol string, day time.Time) *StaticOracle {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.prices[symbol], model.FormatDate(day))
	return o
}

// PriceOn implements the price oracle used by the ledger and the services.
func (o *StaticOracle) PriceOn(_ context.Context, symbol string, date time.Time) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls[symbol]++
	if p, ok := o.prices[symbol][model.FormatDate(date)]; ok {
		return p, nil
	}
	return 0, &apperrors.PriceUnavailableError{Symbol: symbol, Date: model.Day(date)}
}

// Calls returns how many lookups were made for symbol.
func (o *StaticOracle) Calls(symbol string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[symbol]
}
