package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *Error
	require.True(t, errors.As(err, &vErr), "expected *validation.Error, got %v", err)
	return vErr.Fields
}

func TestValidateCreatePortfolio(t *testing.T) {
	assert.NoError(t, ValidateCreatePortfolio(request.CreatePortfolioRequest{Name: "Growth"}))
	assert.NoError(t, ValidateCreatePortfolio(request.CreatePortfolioRequest{Name: "Basket", Kind: "simple"}))

	f := fields(t, ValidateCreatePortfolio(request.CreatePortfolioRequest{Name: " ", Kind: "hybrid"}))
	assert.Contains(t, f, "name")
	assert.Contains(t, f, "kind")
}

func TestValidateCreateTransaction(t *testing.T) {
	valid := request.CreateTransactionRequest{Symbol: "AAPL", Quantity: 1, Date: "2022-06-01", Type: "buy"}
	assert.NoError(t, ValidateCreateTransaction(valid))

	f := fields(t, ValidateCreateTransaction(request.CreateTransactionRequest{
		Quantity: -1, Date: "01-06-2022", Type: "dividend", CommissionFee: -2,
	}))
	assert.Len(t, f, 5)
	for _, field := range []string{"symbol", "quantity", "date", "type", "commissionFee"} {
		assert.Contains(t, f, field)
	}
}

func TestValidateCreateStrategy(t *testing.T) {
	end := "2022-12-31"
	valid := request.CreateStrategyRequest{
		Name:          "Monthly",
		Weights:       []request.WeightRequest{{Symbol: "AAPL", Weight: 100}},
		Amount:        1000,
		StartDate:     "2022-06-01",
		EndDate:       &end,
		FrequencyDays: 30,
	}
	assert.NoError(t, ValidateCreateStrategy(valid))

	t.Run("end before start", func(t *testing.T) {
		req := valid
		early := "2022-05-01"
		req.EndDate = &early
		assert.Contains(t, fields(t, ValidateCreateStrategy(req)), "endDate")
	})

	t.Run("missing fields", func(t *testing.T) {
		f := fields(t, ValidateCreateStrategy(request.CreateStrategyRequest{}))
		for _, field := range []string{"name", "weights", "amount", "frequencyDays", "startDate"} {
			assert.Contains(t, f, field)
		}
	})
}

func TestValidateInvest(t *testing.T) {
	assert.NoError(t, ValidateInvest(request.InvestRequest{
		Weights: []request.WeightRequest{{Symbol: "AAPL", Weight: 100}},
		Amount:  100,
		Date:    "2022-06-01",
	}))

	f := fields(t, ValidateInvest(request.InvestRequest{
		Weights: []request.WeightRequest{{Symbol: "AAPL", Weight: -1}},
	}))
	assert.Contains(t, f, "weights")
	assert.Contains(t, f, "amount")
	assert.Contains(t, f, "date")

	f = fields(t, ValidateInvest(request.InvestRequest{
		Weights: []request.WeightRequest{{Symbol: "AAPL", Weight: 50}, {Symbol: "AAPL", Weight: 50}},
		Amount:  100,
		Date:    "2022-06-01",
	}))
	assert.Equal(t, "AAPL appears more than once", f["weights"])
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateDateRange(start, start.AddDate(0, 0, 5)))
	assert.ErrorIs(t, ValidateDateRange(start, start.AddDate(0, 0, 4)), apperrors.ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateDateRange(start, start.AddDate(0, 0, -10)), apperrors.ErrInvalidDateRange)
}
