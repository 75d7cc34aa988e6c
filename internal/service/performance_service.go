package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/ledger"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/retry"
)

// performanceSamples is the number of intervals the range is split into;
// the range yields up to performanceSamples+1 sample dates.
const performanceSamples = 5

// performanceLevels is the number of value buckets between the smallest
// and the largest sample.
const performanceLevels = 10

// PerformanceService samples a portfolio's market value over a date range.
type PerformanceService struct {
	portfolioService *PortfolioService
	oracle           ledger.PriceOracle
	policy           retry.Policy
	clock            Clock
}

// NewPerformanceService creates a new PerformanceService with the provided dependencies.
func NewPerformanceService(portfolioService *PortfolioService, oracle ledger.PriceOracle, clock Clock) *PerformanceService {
	return &PerformanceService{
		portfolioService: portfolioService,
		oracle:           oracle,
		policy:           retry.Default,
		clock:            clock,
	}
}

// Performance samples the named portfolio's value at six evenly spaced
// dates from start to end and expresses each sample as a level of the
// common scale:
//
//	delta = (max - min) / 10
//	level = floor(value / delta), scale = floor(delta)
//
// A sample without a price is retried on the following days, but keeps its
// nominal date. Samples falling on the same day collapse into one point.
// When every sample has the same value the result is flat: the scale is the
// value itself and every level is 1, or 0 for a zero value.
//
// An end date that is not after start yields an empty result.
func (s *PerformanceService) Performance(ctx context.Context, name string, start, end time.Time) (model.Performance, error) {
	start, end = model.Day(start), model.Day(end)
	view, err := s.portfolioService.loadAt(ctx, name, end)
	if err != nil {
		return model.Performance{}, err
	}

	perf := model.Performance{
		Portfolio: view.portfolio.Name,
		Start:     model.FormatDate(start),
		End:       model.FormatDate(end),
		Points:    []model.PerformancePoint{},
	}

	interval := end.Sub(start).Milliseconds() / performanceSamples
	valueOn := notAfter(s.clock.today(), name, func(day time.Time) (float64, error) {
		return view.book.MarketValue(ctx, view.txs, day, s.oracle)
	})

	index := make(map[string]int)
	for i := int64(0); i <= performanceSamples && interval > 0; i++ {
		nominal := model.Day(start.Add(time.Duration(interval*i) * time.Millisecond))
		value, _, err := retry.Do(ctx, s.policy, nominal, valueOn)
		if err != nil {
			return model.Performance{}, fmt.Errorf("%w: sample %s: %w", apperrors.ErrFailedToGetPerformance, model.FormatDate(nominal), err)
		}

		key := model.FormatDate(nominal)
		if at, ok := index[key]; ok {
			perf.Points[at].Value = value
			continue
		}
		index[key] = len(perf.Points)
		perf.Points = append(perf.Points, model.PerformancePoint{Date: key, Value: value})
	}

	if len(perf.Points) == 0 {
		return perf, nil
	}
	applyLevels(&perf)
	return perf, nil
}

func applyLevels(perf *model.Performance) {
	lo, hi := perf.Points[0].Value, perf.Points[0].Value
	for _, p := range perf.Points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}

	delta := (hi - lo) / performanceLevels
	if delta == 0 {
		perf.Flat = true
		perf.Scale = int(math.Floor(hi))
		for i := range perf.Points {
			if perf.Points[i].Value > 0 {
				perf.Points[i].Level = 1
			}
		}
	} else {
		perf.Scale = int(math.Floor(delta))
		for i := range perf.Points {
			perf.Points[i].Level = int(math.Floor(perf.Points[i].Value / delta))
		}
	}

	for i := range perf.Points {
		perf.Points[i].Value = round(perf.Points[i].Value)
	}
}
