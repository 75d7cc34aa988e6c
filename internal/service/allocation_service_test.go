package service_test

import (
	"context"
	"testing"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
	"github.com/ndewijer/Stockbroker-Backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateWeights checks the exact-sum rule.
//
// WHY: weights are compared to 100 with float equality; near misses such as
// 99.99 must fail rather than silently investing the wrong amount.
func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []model.Weight
		wantErr bool
	}{
		{"exact", []model.Weight{{Symbol: "AAPL", Weight: 60}, {Symbol: "MSFT", Weight: 40}}, false},
		{"single symbol", []model.Weight{{Symbol: "AAPL", Weight: 100}}, false},
		{"with zero weight", []model.Weight{{Symbol: "AAPL", Weight: 100}, {Symbol: "MSFT", Weight: 0}}, false},
		{"under", []model.Weight{{Symbol: "AAPL", Weight: 50}, {Symbol: "MSFT", Weight: 49.99}}, true},
		{"over", []model.Weight{{Symbol: "AAPL", Weight: 50}, {Symbol: "MSFT", Weight: 50.01}}, true},
		{"negative", []model.Weight{{Symbol: "AAPL", Weight: 110}, {Symbol: "MSFT", Weight: -10}}, true},
		{"empty", nil, true},
		{"duplicate symbol", []model.Weight{{Symbol: "AAPL", Weight: 50}, {Symbol: "AAPL", Weight: 50}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateWeights(tt.weights)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidWeights)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllocationService_Plan(t *testing.T) {
	day := testutil.Date(2022, 6, 1)

	t.Run("splits the amount after fees by weight", func(t *testing.T) {
		h := newHarness(t, day)
		h.oracle.Set("AAPL", day, 100).Set("MSFT", day, 200)

		planned, err := h.allocation.Plan(context.Background(), []model.Weight{
			{Symbol: "AAPL", Weight: 60},
			{Symbol: "MSFT", Weight: 40},
		}, 1000, 5, day)
		require.NoError(t, err)
		require.Len(t, planned, 2)

		// (1000 - 2*5) * 0.6 / 100 and (1000 - 2*5) * 0.4 / 200
		assert.Equal(t, "AAPL", planned[0].Symbol)
		assert.InDelta(t, 5.94, planned[0].Quantity, 1e-9)
		assert.Equal(t, "MSFT", planned[1].Symbol)
		assert.InDelta(t, 1.98, planned[1].Quantity, 1e-9)
		for _, p := range planned {
			assert.Equal(t, model.TransactionBuy, p.Type)
			assert.Equal(t, 5.0, p.CommissionFee)
			assert.Equal(t, model.SourceAllocation, p.Source)
			assert.Equal(t, day, p.Date)
		}
	})

	t.Run("skips zero weights", func(t *testing.T) {
		h := newHarness(t, day)
		h.oracle.Set("AAPL", day, 100)

		planned, err := h.allocation.Plan(context.Background(), []model.Weight{
			{Symbol: "AAPL", Weight: 100},
			{Symbol: "MSFT", Weight: 0},
		}, 100, 0, day)
		require.NoError(t, err)
		require.Len(t, planned, 1)
		assert.Equal(t, 0, h.oracle.Calls("MSFT"))
	})

	t.Run("fees exceeding the amount", func(t *testing.T) {
		h := newHarness(t, day)
		h.oracle.Set("AAPL", day, 100).Set("MSFT", day, 200)

		_, err := h.allocation.Plan(context.Background(), []model.Weight{
			{Symbol: "AAPL", Weight: 50},
			{Symbol: "MSFT", Weight: 50},
		}, 10, 5, day)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		h := newHarness(t, day)
		testutil.CreateSymbols(t, h.db, "AAPL")
		h.oracle.Set("AAPL", day, 100).Set("NOPE", day, 1)

		_, err := h.allocation.Plan(context.Background(), []model.Weight{
			{Symbol: "AAPL", Weight: 50},
			{Symbol: "NOPE", Weight: 50},
		}, 100, 0, day)
		assert.ErrorIs(t, err, apperrors.ErrUnknownSymbol)
	})
}

// TestAllocationService_Invest checks that investments are all-or-nothing.
//
// WHY: an investment that fails on its second symbol must not leave the
// first symbol's buy behind in the ledger.
func TestAllocationService_Invest(t *testing.T) {
	day := testutil.Date(2022, 6, 1)
	weights := []model.Weight{{Symbol: "AAPL", Weight: 50}, {Symbol: "MSFT", Weight: 50}}

	t.Run("appends every planned buy", func(t *testing.T) {
		h := newHarness(t, day)
		h.oracle.Set("AAPL", day, 100).Set("MSFT", day, 250)
		p := testutil.NewPortfolio().Build(t, h.db)

		appended, err := h.allocation.Invest(context.Background(), p.Name, service.InvestInput{
			Weights: weights, Amount: 1000, CommissionFee: 0, Date: day,
		})
		require.NoError(t, err)
		require.Len(t, appended, 2)

		txs := h.records(t, p.ID)
		require.Len(t, txs, 2)
		assert.InDelta(t, 5.0, txs[0].Quantity, 1e-9)
		assert.InDelta(t, 2.0, txs[1].Quantity, 1e-9)
		assert.Equal(t, int64(1), txs[0].Seq)
		assert.Equal(t, int64(2), txs[1].Seq)
	})

	t.Run("missing price appends nothing", func(t *testing.T) {
		h := newHarness(t, day)
		h.oracle.Set("AAPL", day, 100)
		p := testutil.NewPortfolio().Build(t, h.db)

		_, err := h.allocation.Invest(context.Background(), p.Name, service.InvestInput{
			Weights: weights, Amount: 1000, Date: day,
		})
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
		assert.Empty(t, h.records(t, p.ID))
	})

	t.Run("invalid weights append nothing", func(t *testing.T) {
		for _, second := range []float64{49.99, 50.01} {
			h := newHarness(t, day)
			h.oracle.Set("AAPL", day, 100).Set("MSFT", day, 250)
			p := testutil.NewPortfolio().Build(t, h.db)

			_, err := h.allocation.Invest(context.Background(), p.Name, service.InvestInput{
				Weights: []model.Weight{{Symbol: "AAPL", Weight: 50}, {Symbol: "MSFT", Weight: second}},
				Amount:  1000,
				Date:    day,
			})
			assert.ErrorIs(t, err, apperrors.ErrInvalidWeights)
			assert.Empty(t, h.records(t, p.ID))
		}
	})

	t.Run("simple portfolio rejects commission", func(t *testing.T) {
		h := newHarness(t, day)
		h.oracle.Set("AAPL", day, 100).Set("MSFT", day, 250)
		p := testutil.NewPortfolio().Simple().Build(t, h.db)

		_, err := h.allocation.Invest(context.Background(), p.Name, service.InvestInput{
			Weights: weights, Amount: 1000, CommissionFee: 1, Date: day,
		})
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedOperation)
		assert.Empty(t, h.records(t, p.ID))
	})

	t.Run("unknown portfolio", func(t *testing.T) {
		h := newHarness(t, day)
		_, err := h.allocation.Invest(context.Background(), "missing", service.InvestInput{
			Weights: weights, Amount: 1000, Date: day,
		})
		assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)
	})
}
