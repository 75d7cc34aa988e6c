package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahoo_DailySeries(t *testing.T) {
	jun1 := time.Date(2022, 6, 1, 13, 30, 0, 0, time.UTC).Unix()
	jun2 := time.Date(2022, 6, 2, 13, 30, 0, 0, time.UTC).Unix()
	jun3 := time.Date(2022, 6, 3, 13, 30, 0, 0, time.UTC).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD"},` +
			`"timestamp":[` + itoa(jun1) + `,` + itoa(jun2) + `,` + itoa(jun3) + `],` +
			`"indicators":{"quote":[{"close":[98.72,null,101.5]}]}}],"error":null}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewYahooClient(WithBaseURL(srv.URL), WithRateLimit(0))
	points, err := client.DailySeries(context.Background(), "AAPL")
	require.NoError(t, err)

	require.Len(t, points, 2, "null closes are skipped")
	assert.Equal(t, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, 98.72, points[0].Close)
	assert.Equal(t, time.Date(2022, 6, 3, 0, 0, 0, 0, time.UTC), points[1].Date)
}

func TestYahoo_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	t.Cleanup(srv.Close)

	client := NewYahooClient(WithBaseURL(srv.URL), WithRateLimit(0))
	_, err := client.DailySeries(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrSymbolNotFound)

	_, err = client.Listing(context.Background())
	assert.ErrorIs(t, err, ErrListingUnsupported)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
