package service

import (
	"math"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// RoundingPrecision is the multiplier used by round for two decimal places.
const RoundingPrecision = 100.0

// round rounds a float64 value to two decimal places using the package RoundingPrecision constant.
// This function is used throughout the service layer to ensure consistent rounding of monetary
// values in API responses.
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(1.994)       // returns 1.99
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func (c Clock) today() time.Time {
	if c == nil {
		return model.Day(time.Now())
	}
	return model.Day(c())
}

// notAfter wraps a dated lookup so that days after today report the price
// as unavailable instead of reaching the oracle.
func notAfter[T any](today time.Time, symbol string, fn func(day time.Time) (T, error)) func(day time.Time) (T, error) {
	return func(day time.Time) (T, error) {
		if day.After(today) {
			var zero T
			return zero, &apperrors.PriceUnavailableError{Symbol: symbol, Date: day}
		}
		return fn(day)
	}
}
