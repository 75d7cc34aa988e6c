package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	dates   []time.Time
	periods int
	err     error
}

func (f *fakeRunner) CatchUpAll(_ context.Context, date time.Time) (int, error) {
	f.dates = append(f.dates, date)
	return f.periods, f.err
}

// TestCatchUpJob verifies what one tick of the warm-up job does.
//
// WHY: The job must advance schedules to the calendar day of "now" and
// must never panic or stop the process when a period cannot be priced.
func TestCatchUpJob(t *testing.T) {
	now := func() time.Time { return time.Date(2022, 7, 1, 6, 30, 0, 0, time.UTC) }

	t.Run("advances to today", func(t *testing.T) {
		var buf bytes.Buffer
		runner := &fakeRunner{periods: 2}

		CatchUpJob(runner, now, logging.NewWithOutput("info", "json", &buf))()

		require.Len(t, runner.dates, 1)
		assert.Equal(t, time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC), runner.dates[0])
		assert.Contains(t, buf.String(), `"periods":2`)
		assert.Contains(t, buf.String(), `"level":"info"`)
	})

	t.Run("failures are logged as warnings", func(t *testing.T) {
		var buf bytes.Buffer
		runner := &fakeRunner{periods: 1, err: errors.New("price data not available")}

		CatchUpJob(runner, now, logging.NewWithOutput("info", "json", &buf))()

		assert.Contains(t, buf.String(), `"level":"warn"`)
		assert.Contains(t, buf.String(), "price data not available")
	})
}

func TestScheduler_AddCatchUp(t *testing.T) {
	t.Run("rejects an invalid cron expression", func(t *testing.T) {
		s := NewScheduler(logging.NewSilent())
		err := s.AddCatchUp("every morning", &fakeRunner{}, nil)
		assert.Error(t, err)
	})

	t.Run("starts and stops", func(t *testing.T) {
		s := NewScheduler(logging.NewSilent())
		require.NoError(t, s.AddCatchUp("0 6 * * *", &fakeRunner{}, nil))

		s.Start()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})
}
