package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryDate(t *testing.T) {
	fallback := time.Date(2022, 7, 1, 15, 30, 0, 0, time.UTC)

	t.Run("empty uses the fallback day", func(t *testing.T) {
		got, err := ParseQueryDate("", fallback)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("calendar day", func(t *testing.T) {
		got, err := ParseQueryDate("2022-06-01", fallback)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("RFC3339 is truncated to its UTC day", func(t *testing.T) {
		got, err := ParseQueryDate("2022-06-01T23:30:00-02:00", fallback)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 6, 2, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseQueryDate("06/01/2022", fallback)
		assert.Error(t, err)
	})
}

func TestParseDateRange(t *testing.T) {
	t.Run("both dates", func(t *testing.T) {
		start, end, err := ParseDateRange("2022-06-01", "2022-07-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("missing dates", func(t *testing.T) {
		_, _, err := ParseDateRange("", "2022-07-01")
		assert.Error(t, err)
		_, _, err = ParseDateRange("2022-06-01", "")
		assert.Error(t, err)
	})

	t.Run("invalid end", func(t *testing.T) {
		_, _, err := ParseDateRange("2022-06-01", "July")
		assert.ErrorContains(t, err, "end_date")
	})
}
