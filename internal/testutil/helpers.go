package testutil

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// MakeID returns a new random UUID string.
func MakeID() string {
	return uuid.New().String()
}

// MakePortfolioName returns a unique portfolio name with the given prefix.
func MakePortfolioName(prefix string) string {
	//#nosec G404 -- test data only
	return fmt.Sprintf("%s %d", prefix, rand.Intn(1_000_000))
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MustDate parses a "2006-01-02" date or fails the test.
func MustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", s, err)
	}
	return d
}

// FixedClock returns a clock function that always reports the given day.
func FixedClock(day time.Time) func() time.Time {
	return func() time.Time { return day }
}
