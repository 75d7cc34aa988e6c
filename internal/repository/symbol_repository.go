package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// SymbolRepository stores the stock listing in the symbol_info table.
type SymbolRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSymbolRepository creates a new SymbolRepository with the provided database connection.
func NewSymbolRepository(db *sql.DB) *SymbolRepository {
	return &SymbolRepository{db: db}
}

// WithTx returns a new SymbolRepository scoped to the provided transaction.
func (r *SymbolRepository) WithTx(tx *sql.Tx) *SymbolRepository {
	return &SymbolRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *SymbolRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// CountSymbols returns the number of listed symbols.
func (r *SymbolRepository) CountSymbols(ctx context.Context) (int, error) {
	var n int
	if err := r.getQuerier().QueryRowContext(ctx, `SELECT COUNT(*) FROM symbol_info`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count symbol_info: %w", err)
	}
	return n, nil
}

// GetSymbol retrieves one listing entry.
// Returns apperrors.ErrUnknownSymbol if the symbol is not listed.
func (r *SymbolRepository) GetSymbol(ctx context.Context, symbol string) (model.Symbol, error) {
	var s model.Symbol
	err := r.getQuerier().QueryRowContext(ctx, `
		SELECT symbol, name, exchange, asset_type, status
		FROM symbol_info
		WHERE symbol = ?
	`, symbol).Scan(&s.Symbol, &s.Name, &s.Exchange, &s.AssetType, &s.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Symbol{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownSymbol, symbol)
	}
	if err != nil {
		return model.Symbol{}, fmt.Errorf("failed to query symbol_info: %w", err)
	}
	return s, nil
}

// ReplaceSymbols swaps the whole listing for the given entries.
// Run it on a repository scoped with WithTx to make the swap atomic.
func (r *SymbolRepository) ReplaceSymbols(ctx context.Context, symbols []model.Symbol) error {
	q := r.getQuerier()
	if _, err := q.ExecContext(ctx, `DELETE FROM symbol_info`); err != nil {
		return fmt.Errorf("failed to clear symbol_info: %w", err)
	}

	for _, s := range symbols {
		_, err := q.ExecContext(ctx, `
			INSERT INTO symbol_info (symbol, name, exchange, asset_type, status)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (symbol) DO NOTHING
		`, s.Symbol, s.Name, s.Exchange, s.AssetType, s.Status)
		if err != nil {
			return fmt.Errorf("failed to insert symbol_info: %w", err)
		}
	}
	return nil
}
