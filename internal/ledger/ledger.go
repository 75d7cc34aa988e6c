// Package ledger reconstructs portfolio positions from an append-only
// sequence of buy and sell records and values them with historical prices.
//
// Every function here is a pure replay over the records it is given: the
// result depends only on the records whose date is on or before the as-of
// date, never on the order in which they were appended.
package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// QuantityTolerance absorbs float residue left by fractional DCA quantities
// when comparing available and requested quantities.
const QuantityTolerance = 1e-9

// PriceOracle returns the closing price of a symbol on a calendar day.
// A missing price is reported with an error matching apperrors.ErrPriceUnavailable.
type PriceOracle interface {
	PriceOn(ctx context.Context, symbol string, date time.Time) (float64, error)
}

// Holdings is the net quantity per symbol, ordered by first appearance in the ledger.
type Holdings struct {
	order []string
	qty   map[string]float64
}

func newHoldings() Holdings {
	return Holdings{qty: map[string]float64{}}
}

func (h *Holdings) add(symbol string, delta float64) {
	if _, ok := h.qty[symbol]; !ok {
		h.order = append(h.order, symbol)
	}
	h.qty[symbol] += delta
}

// Quantity returns the net quantity held of symbol, zero when never traded.
func (h Holdings) Quantity(symbol string) float64 {
	return h.qty[symbol]
}

// Symbols returns every traded symbol in first-appearance order, including
// symbols whose net quantity is zero.
func (h Holdings) Symbols() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// List returns the holdings as model values in first-appearance order.
func (h Holdings) List() []model.Holding {
	out := make([]model.Holding, 0, len(h.order))
	for _, s := range h.order {
		out = append(out, model.Holding{Symbol: s, Quantity: h.qty[s]})
	}
	return out
}

// Len returns the number of distinct symbols.
func (h Holdings) Len() int {
	return len(h.order)
}

func onOrBefore(d, asOf time.Time) bool {
	return !model.Day(d).After(model.Day(asOf))
}

func isZero(q float64) bool {
	return math.Abs(q) < QuantityTolerance
}

// Reconstruct replays every record dated on or before asOf, adding buys and
// subtracting sells per symbol. Records dated on asOf are included.
func Reconstruct(txs []model.Transaction, asOf time.Time) Holdings {
	h := newHoldings()
	for _, t := range txs {
		if !onOrBefore(t.Date, asOf) {
			continue
		}
		switch t.Type {
		case model.TransactionBuy:
			h.add(t.Symbol, t.Quantity)
		case model.TransactionSell:
			h.add(t.Symbol, -t.Quantity)
		}
	}
	return h
}

// CostBasis sums, over records dated on or before asOf, the price on the
// record's own date times quantity plus commission for buys, and the
// commission alone for sells.
func CostBasis(ctx context.Context, txs []model.Transaction, asOf time.Time, oracle PriceOracle) (float64, error) {
	total := 0.0
	for _, t := range txs {
		if !onOrBefore(t.Date, asOf) {
			continue
		}
		switch t.Type {
		case model.TransactionBuy:
			price, err := oracle.PriceOn(ctx, t.Symbol, t.Date)
			if err != nil {
				return 0, err
			}
			total += price*t.Quantity + t.CommissionFee
		case model.TransactionSell:
			total += t.CommissionFee
		}
	}
	return total, nil
}

// MarketValue values the holdings reconstructed at asOf with prices on asOf.
// Symbols with zero net quantity contribute nothing and are not priced.
func MarketValue(ctx context.Context, txs []model.Transaction, asOf time.Time, oracle PriceOracle) (float64, error) {
	return valueHoldings(ctx, Reconstruct(txs, asOf), asOf, oracle)
}

func valueHoldings(ctx context.Context, h Holdings, asOf time.Time, oracle PriceOracle) (float64, error) {
	total := 0.0
	for _, symbol := range h.order {
		q := h.qty[symbol]
		if isZero(q) {
			continue
		}
		price, err := oracle.PriceOn(ctx, symbol, asOf)
		if err != nil {
			return 0, err
		}
		total += q * price
	}
	return total, nil
}

// ValidateSell checks that quantity of symbol can be sold on date.
// It fails with a *apperrors.FutureSellConflictError when a sell of the
// same symbol is already recorded after date, and with a
// *apperrors.InsufficientQuantityError when less than quantity is held on date.
func ValidateSell(txs []model.Transaction, symbol string, quantity float64, date time.Time) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: %g", apperrors.ErrInvalidQuantity, quantity)
	}

	day := model.Day(date)
	available := 0.0
	for _, t := range txs {
		if t.Symbol != symbol {
			continue
		}
		if !onOrBefore(t.Date, day) {
			if t.Type == model.TransactionSell {
				return &apperrors.FutureSellConflictError{Symbol: symbol, Date: day, ConflictDate: model.Day(t.Date)}
			}
			continue
		}
		switch t.Type {
		case model.TransactionBuy:
			available += t.Quantity
		case model.TransactionSell:
			available -= t.Quantity
		}
	}

	if available+QuantityTolerance < quantity {
		return &apperrors.InsufficientQuantityError{
			Symbol:    symbol,
			Date:      day,
			Available: available,
			Requested: quantity,
		}
	}
	return nil
}
