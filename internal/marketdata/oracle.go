package marketdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshTTL is the minimum time between two refreshes of one symbol.
const DefaultRefreshTTL = time.Hour

// CachedOracle answers price lookups from the price table and refreshes a
// symbol's series from the provider on a miss. Concurrent refreshes of the
// same symbol share one provider call.
//
// PriceOn must not be called while the caller holds an open SQL transaction
// on the same database: the refresh writes through its own transaction.
type CachedOracle struct {
	db       *sql.DB
	prices   *repository.PriceRepository
	provider Provider
	ttl      time.Duration
	now      func() time.Time
	logger   *logging.Logger
	group    singleflight.Group
}

// OracleOption configures a CachedOracle
type OracleOption func(*CachedOracle)

// WithRefreshTTL sets the minimum time between refreshes of one symbol.
func WithRefreshTTL(ttl time.Duration) OracleOption {
	return func(o *CachedOracle) {
		o.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) OracleOption {
	return func(o *CachedOracle) {
		o.now = now
	}
}

// WithOracleLogger sets the logger
func WithOracleLogger(logger *logging.Logger) OracleOption {
	return func(o *CachedOracle) {
		o.logger = logger
	}
}

// NewCachedOracle creates a CachedOracle. provider may be nil, in which case
// only cached prices are served.
func NewCachedOracle(db *sql.DB, prices *repository.PriceRepository, provider Provider, opts ...OracleOption) *CachedOracle {
	o := &CachedOracle{
		db:       db,
		prices:   prices,
		provider: provider,
		ttl:      DefaultRefreshTTL,
		now:      time.Now,
		logger:   logging.NewSilent(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PriceOn returns the close of symbol on date. A day without a price after
// refreshing yields a *apperrors.PriceUnavailableError; provider failures
// are returned as other errors.
func (o *CachedOracle) PriceOn(ctx context.Context, symbol string, date time.Time) (float64, error) {
	day := model.Day(date)

	price, ok, err := o.prices.GetPrice(ctx, symbol, day)
	if err != nil {
		return 0, err
	}
	if ok {
		return price, nil
	}

	// No provider can know a future close.
	if o.provider == nil || day.After(model.Day(o.now())) {
		return 0, &apperrors.PriceUnavailableError{Symbol: symbol, Date: day}
	}

	if err := o.refresh(ctx, symbol, false); err != nil {
		return 0, err
	}

	// Re-read even when this call did not fetch: a concurrent refresh may
	// have stored the series in the meantime.
	price, ok, err = o.prices.GetPrice(ctx, symbol, day)
	if err != nil {
		return 0, err
	}
	if ok {
		return price, nil
	}

	return 0, &apperrors.PriceUnavailableError{Symbol: symbol, Date: day}
}

// Refresh fetches the full series of symbol and stores it, regardless of
// when it was last fetched. A symbol the provider does not know is recorded
// as refreshed with no prices.
func (o *CachedOracle) Refresh(ctx context.Context, symbol string) error {
	return o.refresh(ctx, symbol, true)
}

func (o *CachedOracle) refresh(ctx context.Context, symbol string, force bool) error {
	if o.provider == nil {
		return fmt.Errorf("no market data provider configured")
	}

	_, err, shared := o.group.Do(symbol, func() (any, error) {
		if !force {
			last, ok, err := o.prices.GetLastRefresh(ctx, symbol)
			if err != nil {
				return nil, err
			}
			if ok && o.now().Sub(last) < o.ttl {
				return nil, nil
			}
		}

		points, err := o.provider.DailySeries(ctx, symbol)
		if err != nil && !errors.Is(err, ErrSymbolNotFound) {
			return nil, fmt.Errorf("failed to refresh %s from %s: %w", symbol, o.provider.Name(), err)
		}

		err = repository.WithinTx(ctx, o.db, func(tx *sql.Tx) error {
			prices := o.prices.WithTx(tx)
			if err := prices.UpsertPrices(ctx, points); err != nil {
				return err
			}
			return prices.MarkRefreshed(ctx, symbol, o.now())
		})
		if err != nil {
			return nil, err
		}

		o.logger.Debug().
			Str("symbol", symbol).
			Str("provider", o.provider.Name()).
			Int("points", len(points)).
			Msg("Refreshed price series")
		return nil, nil
	})
	if shared {
		o.logger.Debug().Str("symbol", symbol).Msg("Joined in-flight price refresh")
	}
	return err
}
