package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// Book applies the bookkeeping rules of one portfolio kind to a ledger.
type Book interface {
	Kind() model.PortfolioKind
	Reconstruct(txs []model.Transaction, asOf time.Time) Holdings
	CostBasis(ctx context.Context, txs []model.Transaction, asOf time.Time, oracle PriceOracle) (float64, error)
	MarketValue(ctx context.Context, txs []model.Transaction, asOf time.Time, oracle PriceOracle) (float64, error)
	// ValidateBuy checks a buy record before it is appended.
	ValidateBuy(t model.Transaction) error
	ValidateSell(txs []model.Transaction, symbol string, quantity float64, date time.Time) error
	// SupportsSchedule reports whether a DCA schedule may own the portfolio.
	SupportsSchedule() bool
}

// ForKind returns the Book for a portfolio kind.
func ForKind(kind model.PortfolioKind) (Book, error) {
	switch kind {
	case model.KindFlexible:
		return FlexibleBook{}, nil
	case model.KindSimple:
		return SimpleBook{}, nil
	default:
		return nil, fmt.Errorf("unknown portfolio kind %q", kind)
	}
}

// FlexibleBook supports dated buys and sells with commission fees.
type FlexibleBook struct{}

func (FlexibleBook) Kind() model.PortfolioKind { return model.KindFlexible }

func (FlexibleBook) Reconstruct(txs []model.Transaction, asOf time.Time) Holdings {
	return Reconstruct(txs, asOf)
}

func (FlexibleBook) CostBasis(ctx context.Context, txs []model.Transaction, asOf time.Time, oracle PriceOracle) (float64, error) {
	return CostBasis(ctx, txs, asOf, oracle)
}

func (FlexibleBook) MarketValue(ctx context.Context, txs []model.Transaction, asOf time.Time, oracle PriceOracle) (float64, error) {
	return MarketValue(ctx, txs, asOf, oracle)
}

func (FlexibleBook) ValidateBuy(t model.Transaction) error {
	return validateRecord(t)
}

func (FlexibleBook) ValidateSell(txs []model.Transaction, symbol string, quantity float64, date time.Time) error {
	return ValidateSell(txs, symbol, quantity, date)
}

func (FlexibleBook) SupportsSchedule() bool { return true }

// SimpleBook is a fixed basket: every record counts regardless of its date,
// commission is not charged and positions cannot be sold.
type SimpleBook struct{}

func (SimpleBook) Kind() model.PortfolioKind { return model.KindSimple }

func (SimpleBook) Reconstruct(txs []model.Transaction, _ time.Time) Holdings {
	h := newHoldings()
	for _, t := range txs {
		if t.Type == model.TransactionBuy {
			h.add(t.Symbol, t.Quantity)
		}
	}
	return h
}

func (SimpleBook) CostBasis(ctx context.Context, txs []model.Transaction, _ time.Time, oracle PriceOracle) (float64, error) {
	total := 0.0
	for _, t := range txs {
		if t.Type != model.TransactionBuy {
			continue
		}
		price, err := oracle.PriceOn(ctx, t.Symbol, t.Date)
		if err != nil {
			return 0, err
		}
		total += price * t.Quantity
	}
	return total, nil
}

func (b SimpleBook) MarketValue(ctx context.Context, txs []model.Transaction, asOf time.Time, oracle PriceOracle) (float64, error) {
	return valueHoldings(ctx, b.Reconstruct(txs, asOf), asOf, oracle)
}

func (SimpleBook) ValidateBuy(t model.Transaction) error {
	if err := validateRecord(t); err != nil {
		return err
	}
	if t.CommissionFee != 0 {
		return fmt.Errorf("%w: simple portfolios do not charge commission", apperrors.ErrUnsupportedOperation)
	}
	return nil
}

func (SimpleBook) ValidateSell([]model.Transaction, string, float64, time.Time) error {
	return fmt.Errorf("%w: simple portfolios cannot sell", apperrors.ErrUnsupportedOperation)
}

func (SimpleBook) SupportsSchedule() bool { return false }

func validateRecord(t model.Transaction) error {
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: %g", apperrors.ErrInvalidQuantity, t.Quantity)
	}
	if t.CommissionFee < 0 {
		return fmt.Errorf("%w: %g", apperrors.ErrInvalidCommission, t.CommissionFee)
	}
	return nil
}
