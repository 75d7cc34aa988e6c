package marketdata_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/marketdata"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
	"github.com/ndewijer/Stockbroker-Backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jun1  = testutil.Date(2022, 6, 1)
	jun30 = testutil.Date(2022, 6, 30)
	today = testutil.Date(2022, 7, 15)
)

func newOracle(t *testing.T, provider marketdata.Provider) (*marketdata.CachedOracle, *repository.PriceRepository) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	prices := repository.NewPriceRepository(db)
	clock := func() time.Time { return today.Add(10 * time.Hour) }
	return marketdata.NewCachedOracle(db, prices, provider, marketdata.WithClock(clock)), prices
}

func TestCachedOracle_ServesCacheWithoutProvider(t *testing.T) {
	provider := testutil.NewMockProvider()
	oracle, prices := newOracle(t, provider)
	ctx := context.Background()

	require.NoError(t, prices.UpsertPrices(ctx, []model.PricePoint{{Symbol: "AAPL", Date: jun1, Close: 98.72}}))

	p, err := oracle.PriceOn(ctx, "AAPL", jun1.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 98.72, p)
	assert.Equal(t, 0, provider.SeriesCalls("AAPL"))
}

// TestCachedOracle_RefreshesOnMiss verifies that a miss fetches the whole
// series once and later misses within the refresh TTL do not refetch.
//
// WHY: the provider quota is a handful of calls per minute; one refresh
// must serve every date of the symbol.
func TestCachedOracle_RefreshesOnMiss(t *testing.T) {
	provider := testutil.NewMockProvider().WithDaily("AAPL", jun1, jun30, 100)
	provider.Series["AAPL"] = provider.Series["AAPL"][:len(provider.Series["AAPL"])-1] // no close on jun30
	oracle, _ := newOracle(t, provider)
	ctx := context.Background()

	p, err := oracle.PriceOn(ctx, "AAPL", jun1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)

	p, err = oracle.PriceOn(ctx, "AAPL", jun1.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)

	_, err = oracle.PriceOn(ctx, "AAPL", jun30)
	assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)

	assert.Equal(t, 1, provider.SeriesCalls("AAPL"))
}

func TestCachedOracle_FutureDateIsUnavailable(t *testing.T) {
	provider := testutil.NewMockProvider()
	oracle, _ := newOracle(t, provider)

	_, err := oracle.PriceOn(context.Background(), "AAPL", today.AddDate(0, 0, 1))
	var pu *apperrors.PriceUnavailableError
	require.True(t, errors.As(err, &pu))
	assert.Equal(t, today.AddDate(0, 0, 1), pu.Date)
	assert.Equal(t, 0, provider.SeriesCalls("AAPL"))
}

func TestCachedOracle_UnknownSymbolIsUnavailable(t *testing.T) {
	provider := testutil.NewMockProvider().WithError(marketdata.ErrSymbolNotFound)
	oracle, prices := newOracle(t, provider)
	ctx := context.Background()

	_, err := oracle.PriceOn(ctx, "NOPE", jun1)
	assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)

	_, refreshed, err := prices.GetLastRefresh(ctx, "NOPE")
	require.NoError(t, err)
	assert.True(t, refreshed)
}

func TestCachedOracle_ProviderFailureIsNotUnavailable(t *testing.T) {
	provider := testutil.NewMockProvider().WithError(marketdata.ErrRateLimited)
	oracle, _ := newOracle(t, provider)

	_, err := oracle.PriceOn(context.Background(), "AAPL", jun1)
	require.Error(t, err)
	assert.ErrorIs(t, err, marketdata.ErrRateLimited)
	assert.False(t, errors.Is(err, apperrors.ErrPriceUnavailable))
}

func TestCachedOracle_ConcurrentMissesShareRefresh(t *testing.T) {
	provider := testutil.NewMockProvider().WithDaily("AAPL", jun1, jun30, 100)
	provider.Delay = 20 * time.Millisecond
	oracle, _ := newOracle(t, provider)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = oracle.PriceOn(context.Background(), "AAPL", jun1.AddDate(0, 0, i))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, provider.SeriesCalls("AAPL"))
}

func TestCachedOracle_NoProvider(t *testing.T) {
	oracle, _ := newOracle(t, nil)
	_, err := oracle.PriceOn(context.Background(), "AAPL", jun1)
	assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
}
