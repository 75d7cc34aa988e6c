package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// PriceRepository caches daily closing prices per (symbol, date) and
// remembers when each symbol's series was last fetched.
type PriceRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// WithTx returns a new PriceRepository scoped to the provided transaction.
func (r *PriceRepository) WithTx(tx *sql.Tx) *PriceRepository {
	return &PriceRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PriceRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPrice returns the cached close for symbol on date. The boolean is
// false when no row exists.
func (r *PriceRepository) GetPrice(ctx context.Context, symbol string, date time.Time) (float64, bool, error) {
	var closePrice float64
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT close FROM price WHERE symbol = ? AND date = ?`,
		symbol, formatDate(date),
	).Scan(&closePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query price: %w", err)
	}
	return closePrice, true, nil
}

// UpsertPrices stores a batch of price points, replacing existing rows.
func (r *PriceRepository) UpsertPrices(ctx context.Context, points []model.PricePoint) error {
	for _, p := range points {
		_, err := r.getQuerier().ExecContext(ctx, `
			INSERT INTO price (symbol, date, close)
			VALUES (?, ?, ?)
			ON CONFLICT (symbol, date) DO UPDATE SET close = excluded.close
		`, p.Symbol, formatDate(p.Date), p.Close)
		if err != nil {
			return fmt.Errorf("failed to upsert price: %w", err)
		}
	}
	return nil
}

// GetLastRefresh returns when symbol was last fetched from the provider.
func (r *PriceRepository) GetLastRefresh(ctx context.Context, symbol string) (time.Time, bool, error) {
	var at string
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT refreshed_at FROM price_refresh WHERE symbol = ?`, symbol,
	).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query price_refresh: %w", err)
	}

	t, err := ParseTime(at)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// MarkRefreshed records that symbol was fetched at the given time.
func (r *PriceRepository) MarkRefreshed(ctx context.Context, symbol string, at time.Time) error {
	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO price_refresh (symbol, refreshed_at)
		VALUES (?, ?)
		ON CONFLICT (symbol) DO UPDATE SET refreshed_at = excluded.refreshed_at
	`, symbol, formatTimestamp(at))
	if err != nil {
		return fmt.Errorf("failed to update price_refresh: %w", err)
	}
	return nil
}
