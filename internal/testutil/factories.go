package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    Simple().
//	    Build(t, db)
type PortfolioBuilder struct {
	ID   string
	Name string
	Kind model.PortfolioKind
}

// NewPortfolio creates a PortfolioBuilder for a flexible portfolio.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:   MakeID(),
		Name: MakePortfolioName("Test Portfolio"),
		Kind: model.KindFlexible,
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// Simple makes the portfolio a fixed basket.
func (b *PortfolioBuilder) Simple() *PortfolioBuilder {
	b.Kind = model.KindSimple
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	createdAt := time.Now().UTC().Truncate(time.Second)
	_, err := db.Exec(`
		INSERT INTO portfolio (id, name, kind, created_at)
		VALUES (?, ?, ?, ?)
	`, b.ID, b.Name, string(b.Kind), createdAt.Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{ID: b.ID, Name: b.Name, Kind: b.Kind, CreatedAt: createdAt}
}

// CreatePortfolio creates a flexible portfolio with the given name.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// TransactionBuilder provides a fluent interface for appending ledger records.
//
// Example usage:
//
//	testutil.NewTransaction(portfolio.ID).
//	    WithSymbol("AAPL").
//	    WithQuantity(10).
//	    WithDate(testutil.Date(2022, 6, 1)).
//	    Build(t, db)
type TransactionBuilder struct {
	ID            string
	PortfolioID   string
	Symbol        string
	Quantity      float64
	Date          time.Time
	Type          model.TransactionType
	CommissionFee float64
	Source        model.TransactionSource
}

// NewTransaction creates a TransactionBuilder for a buy of one AAPL share.
func NewTransaction(portfolioID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Symbol:      "AAPL",
		Quantity:    1,
		Date:        Date(2022, 6, 1),
		Type:        model.TransactionBuy,
		Source:      model.SourceManual,
	}
}

// WithSymbol sets the symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithQuantity sets the quantity.
func (b *TransactionBuilder) WithQuantity(q float64) *TransactionBuilder {
	b.Quantity = q
	return b
}

// WithDate sets the record date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithCommission sets the commission fee.
func (b *TransactionBuilder) WithCommission(fee float64) *TransactionBuilder {
	b.CommissionFee = fee
	return b
}

// Sell makes the record a sell.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionSell
	return b
}

// Model returns the record without storing it, for pure ledger tests.
func (b *TransactionBuilder) Model() model.Transaction {
	return model.Transaction{
		ID:            b.ID,
		PortfolioID:   b.PortfolioID,
		Symbol:        b.Symbol,
		Quantity:      b.Quantity,
		Date:          model.Day(b.Date),
		Type:          b.Type,
		CommissionFee: b.CommissionFee,
		Source:        b.Source,
	}
}

// Build appends the record to the portfolio's ledger and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	tx := b.Model()
	if err := db.QueryRow(
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM "transaction" WHERE portfolio_id = ?`, tx.PortfolioID,
	).Scan(&tx.Seq); err != nil {
		t.Fatalf("Failed to read ledger sequence: %v", err)
	}
	tx.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := db.Exec(`
		INSERT INTO "transaction" (id, portfolio_id, seq, symbol, quantity, date, type, commission_fee, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID,
		tx.PortfolioID,
		tx.Seq,
		tx.Symbol,
		tx.Quantity,
		model.FormatDate(tx.Date),
		string(tx.Type),
		tx.CommissionFee,
		string(tx.Source),
		tx.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return tx
}

// CreatePrice stores a cached close for symbol on day.
func CreatePrice(t *testing.T, db *sql.DB, symbol string, day time.Time, price float64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO price (symbol, date, close) VALUES (?, ?, ?)`,
		symbol, model.FormatDate(day), price)
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
}

// CreateSymbols adds listing entries for the given symbols.
//
// Example usage:
//
//	testutil.CreateSymbols(t, db, "AAPL", "MSFT")
func CreateSymbols(t *testing.T, db *sql.DB, symbols ...string) {
	t.Helper()
	for _, s := range symbols {
		_, err := db.Exec(`
			INSERT INTO symbol_info (symbol, name, exchange, asset_type, status)
			VALUES (?, ?, 'NASDAQ', 'Stock', 'Active')
		`, s, s+" Inc")
		if err != nil {
			t.Fatalf("Failed to create test symbol: %v", err)
		}
	}
}
