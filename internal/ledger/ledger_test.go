package ledger_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/ledger"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jun1  = testutil.Date(2022, 6, 1)
	jun10 = testutil.Date(2022, 6, 10)
	jun20 = testutil.Date(2022, 6, 20)
)

func TestReconstruct_FiltersByDate(t *testing.T) {
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(10).WithDate(jun1).Model(),
		testutil.NewTransaction("p").WithSymbol("MSFT").WithQuantity(5).WithDate(jun10).Model(),
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(4).WithDate(jun10).Sell().Model(),
		testutil.NewTransaction("p").WithSymbol("GOOG").WithQuantity(2).WithDate(jun20).Model(),
	}

	before := ledger.Reconstruct(txs, jun1.AddDate(0, 0, -1))
	assert.Equal(t, 0, before.Len())

	h := ledger.Reconstruct(txs, jun10)
	assert.Equal(t, []model.Holding{
		{Symbol: "AAPL", Quantity: 6},
		{Symbol: "MSFT", Quantity: 5},
	}, h.List())
	assert.Equal(t, 0.0, h.Quantity("GOOG"))

	all := ledger.Reconstruct(txs, jun20)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, all.Symbols())
}

// TestReconstruct_IgnoresAppendOrder verifies replay determinism.
//
// WHY: backdated records are appended after later-dated ones; the state on a
// date must depend only on which records are dated on or before it.
func TestReconstruct_IgnoresAppendOrder(t *testing.T) {
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(10).WithDate(jun1).Model(),
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(3).WithDate(jun10).Sell().Model(),
		testutil.NewTransaction("p").WithSymbol("MSFT").WithQuantity(5).WithDate(jun10).Model(),
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(2).WithDate(jun20).Model(),
		testutil.NewTransaction("p").WithSymbol("MSFT").WithQuantity(1).WithDate(jun20).Sell().Model(),
	}
	want := ledger.Reconstruct(txs, jun20)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := ledger.Reconstruct(shuffled, jun20)
		for _, s := range want.Symbols() {
			assert.Equal(t, want.Quantity(s), got.Quantity(s), "symbol %s", s)
		}
	}
}

// TestReconstruct_Conservation checks net quantity equals buys minus sells.
func TestReconstruct_Conservation(t *testing.T) {
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithQuantity(10).WithDate(jun1).Model(),
		testutil.NewTransaction("p").WithQuantity(2.5).WithDate(jun10).Model(),
		testutil.NewTransaction("p").WithQuantity(4).WithDate(jun10).Sell().Model(),
		testutil.NewTransaction("p").WithQuantity(8.5).WithDate(jun20).Sell().Model(),
	}

	h := ledger.Reconstruct(txs, jun20)
	assert.InDelta(t, 0.0, h.Quantity("AAPL"), 1e-12)
	assert.Equal(t, []string{"AAPL"}, h.Symbols(), "fully sold symbols stay in the composition")
}

// TestScenario_CostBasisAndValue reproduces the reference scenario: ten
// shares at 98.72 with a 10.00 commission.
func TestScenario_CostBasisAndValue(t *testing.T) {
	ctx := context.Background()
	oracle := testutil.NewStaticOracle().Set("AAPL", jun1, 98.72)
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(10).WithDate(jun1).WithCommission(10).Model(),
	}

	cost, err := ledger.CostBasis(ctx, txs, jun1, oracle)
	require.NoError(t, err)
	assert.InDelta(t, 997.20, cost, 1e-9)

	value, err := ledger.MarketValue(ctx, txs, jun1, oracle)
	require.NoError(t, err)
	assert.InDelta(t, 987.20, value, 1e-9)
}

func TestCostBasis_UsesRecordDatePriceAndSellFees(t *testing.T) {
	ctx := context.Background()
	oracle := testutil.NewStaticOracle().
		Set("AAPL", jun1, 100).
		Set("AAPL", jun10, 200)
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithQuantity(2).WithDate(jun1).WithCommission(1).Model(),
		testutil.NewTransaction("p").WithQuantity(1).WithDate(jun10).WithCommission(1).Model(),
		testutil.NewTransaction("p").WithQuantity(1).WithDate(jun10).WithCommission(3).Sell().Model(),
	}

	cost, err := ledger.CostBasis(ctx, txs, jun10, oracle)
	require.NoError(t, err)
	// 2*100+1 + 1*200+1 + 3
	assert.InDelta(t, 405.0, cost, 1e-9)

	cost, err = ledger.CostBasis(ctx, txs, jun1, oracle)
	require.NoError(t, err)
	assert.InDelta(t, 201.0, cost, 1e-9)
}

func TestMarketValue_SkipsZeroQuantityAndFailsOnMissingPrice(t *testing.T) {
	ctx := context.Background()
	oracle := testutil.NewStaticOracle().Set("MSFT", jun20, 50)
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(3).WithDate(jun1).Model(),
		testutil.NewTransaction("p").WithSymbol("AAPL").WithQuantity(3).WithDate(jun10).Sell().Model(),
		testutil.NewTransaction("p").WithSymbol("MSFT").WithQuantity(2).WithDate(jun10).Model(),
	}

	value, err := ledger.MarketValue(ctx, txs, jun20, oracle)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, value, 1e-9)
	assert.Equal(t, 0, oracle.Calls("AAPL"))

	_, err = ledger.MarketValue(ctx, txs, jun10, oracle)
	require.Error(t, err)
	var pu *apperrors.PriceUnavailableError
	require.True(t, errors.As(err, &pu))
	assert.Equal(t, "MSFT", pu.Symbol)
	assert.Equal(t, jun10, pu.Date)
}

// TestValidateSell_Guard covers the sell guard.
//
// WHY: a portfolio must never hold a negative position on any date, and a
// backdated sell may not precede a sell that was already recorded later.
func TestValidateSell_Guard(t *testing.T) {
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithQuantity(10).WithDate(jun1).Model(),
	}

	err := ledger.ValidateSell(txs, "AAPL", 11, jun10)
	var iq *apperrors.InsufficientQuantityError
	require.True(t, errors.As(err, &iq))
	assert.Equal(t, 10.0, iq.Available)
	assert.Equal(t, 11.0, iq.Requested)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientQuantity)

	require.NoError(t, ledger.ValidateSell(txs, "AAPL", 10, jun10))

	// Nothing is held before the buy date.
	assert.ErrorIs(t, ledger.ValidateSell(txs, "AAPL", 1, jun1.AddDate(0, 0, -1)), apperrors.ErrInsufficientQuantity)

	withSell := append(txs, testutil.NewTransaction("p").WithQuantity(2).WithDate(jun20).Sell().Model())
	err = ledger.ValidateSell(withSell, "AAPL", 1, jun10)
	var fc *apperrors.FutureSellConflictError
	require.True(t, errors.As(err, &fc))
	assert.Equal(t, jun20, fc.ConflictDate)
	assert.ErrorIs(t, err, apperrors.ErrFutureSellConflict)

	// A later sell of another symbol does not block.
	other := append(txs,
		testutil.NewTransaction("p").WithSymbol("MSFT").WithQuantity(1).WithDate(jun1).Model(),
		testutil.NewTransaction("p").WithSymbol("MSFT").WithQuantity(1).WithDate(jun20).Sell().Model(),
	)
	assert.NoError(t, ledger.ValidateSell(other, "AAPL", 5, jun10))
}

func TestValidateSell_ToleratesFloatResidue(t *testing.T) {
	var txs []model.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, testutil.NewTransaction("p").WithQuantity(0.1).WithDate(jun1).Model())
	}
	// 0.1 summed ten times is 0.9999999999999999.
	assert.NoError(t, ledger.ValidateSell(txs, "AAPL", 1, jun10))
}

func TestForKind(t *testing.T) {
	flex, err := ledger.ForKind(model.KindFlexible)
	require.NoError(t, err)
	assert.True(t, flex.SupportsSchedule())

	simple, err := ledger.ForKind(model.KindSimple)
	require.NoError(t, err)
	assert.False(t, simple.SupportsSchedule())

	_, err = ledger.ForKind("margin")
	assert.Error(t, err)
}

// TestSimpleBook values the whole basket on any date and rejects sells.
func TestSimpleBook(t *testing.T) {
	ctx := context.Background()
	book := ledger.SimpleBook{}
	oracle := testutil.NewStaticOracle().
		Set("AAPL", jun10, 100).
		Set("AAPL", jun1, 90).
		Set("AAPL", jun20, 110)
	txs := []model.Transaction{
		testutil.NewTransaction("p").WithQuantity(2).WithDate(jun10).Model(),
	}

	// The basket counts even before the record date.
	h := book.Reconstruct(txs, jun1)
	assert.Equal(t, 2.0, h.Quantity("AAPL"))

	value, err := book.MarketValue(ctx, txs, jun1, oracle)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, value, 1e-9)

	cost, err := book.CostBasis(ctx, txs, jun20, oracle)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, cost, 1e-9)

	assert.ErrorIs(t, book.ValidateSell(txs, "AAPL", 1, jun20), apperrors.ErrUnsupportedOperation)

	withFee := testutil.NewTransaction("p").WithCommission(1).Model()
	assert.ErrorIs(t, book.ValidateBuy(withFee), apperrors.ErrUnsupportedOperation)
	assert.NoError(t, book.ValidateBuy(testutil.NewTransaction("p").Model()))
}

func TestFlexibleBook_ValidateBuy(t *testing.T) {
	book := ledger.FlexibleBook{}
	assert.NoError(t, book.ValidateBuy(testutil.NewTransaction("p").WithCommission(5).Model()))
	assert.ErrorIs(t, book.ValidateBuy(testutil.NewTransaction("p").WithQuantity(0).Model()), apperrors.ErrInvalidQuantity)
	assert.ErrorIs(t, book.ValidateBuy(testutil.NewTransaction("p").WithCommission(-1).Model()), apperrors.ErrInvalidCommission)
}
