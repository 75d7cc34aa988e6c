// Package retry shifts a dated operation forward one calendar day at a time
// while its price data is unavailable, for example on weekends and holidays.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// Policy bounds the number of attempts and the day shift between them.
type Policy struct {
	MaxAttempts int
	StepDays    int
	// OnShift, when set, is called before each retry with the failed date,
	// the next date and the error that caused the shift.
	OnShift func(from, to time.Time, err error)
}

// Default tries the requested day and the two following days.
var Default = Policy{MaxAttempts: 3, StepDays: 1}

// Do runs fn for date and, while fn fails with apperrors.ErrPriceUnavailable,
// for the following days up to MaxAttempts in total. It returns fn's result
// and the day it succeeded on. Any other error is returned at once.
func Do[T any](ctx context.Context, p Policy, date time.Time, fn func(day time.Time) (T, error)) (T, time.Time, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	step := p.StepDays
	if step < 1 {
		step = 1
	}

	day := model.Day(date)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, day, err
		}

		v, err := fn(day)
		if err == nil {
			return v, day, nil
		}
		if !errors.Is(err, apperrors.ErrPriceUnavailable) {
			return zero, day, err
		}
		lastErr = err

		if i < attempts-1 {
			next := model.AddDays(day, step)
			if p.OnShift != nil {
				p.OnShift(day, next, err)
			}
			day = next
		}
	}
	return zero, day, lastErr
}
