package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// TransactionRepository provides append-only access to the transaction ledger.
// Records are never updated or deleted; ReadAll returns them in append order.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ReadAll returns every record of a portfolio in append (seq) order.
// Returns an empty slice for a portfolio without records.
func (r *TransactionRepository) ReadAll(ctx context.Context, portfolioID string) ([]model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, seq, symbol, quantity, date, type, commission_fee, source, created_at
		FROM "transaction"
		WHERE portfolio_id = ?
		ORDER BY seq ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var dateStr, typ, source, createdAtStr string

		err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&t.Seq,
			&t.Symbol,
			&t.Quantity,
			&dateStr,
			&typ,
			&t.CommissionFee,
			&source,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		t.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		t.Type = model.TransactionType(typ)
		t.Source = model.TransactionSource(source)

		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// Append stores one record at the end of the portfolio's ledger and returns
// it with ID, Seq and CreatedAt assigned.
func (r *TransactionRepository) Append(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	appended, err := r.AppendAll(ctx, []model.Transaction{t})
	if err != nil {
		return model.Transaction{}, err
	}
	return appended[0], nil
}

// AppendAll stores records in the given order. Callers that need the batch
// to be atomic run it on a repository scoped with WithTx.
func (r *TransactionRepository) AppendAll(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	q := r.getQuerier()
	now := time.Now().UTC().Truncate(time.Second)
	out := make([]model.Transaction, 0, len(txs))

	nextSeq := map[string]int64{}
	for _, t := range txs {
		seq, ok := nextSeq[t.PortfolioID]
		if !ok {
			if err := q.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(seq), 0) FROM "transaction" WHERE portfolio_id = ?`,
				t.PortfolioID,
			).Scan(&seq); err != nil {
				return nil, fmt.Errorf("failed to read ledger sequence: %w", err)
			}
		}
		seq++
		nextSeq[t.PortfolioID] = seq

		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.Source == "" {
			t.Source = model.SourceManual
		}
		t.Seq = seq
		t.Date = model.Day(t.Date)
		t.CreatedAt = now

		query := `
			INSERT INTO "transaction" (id, portfolio_id, seq, symbol, quantity, date, type, commission_fee, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := q.ExecContext(ctx, query,
			t.ID,
			t.PortfolioID,
			t.Seq,
			t.Symbol,
			t.Quantity,
			formatDate(t.Date),
			string(t.Type),
			t.CommissionFee,
			string(t.Source),
			formatTimestamp(t.CreatedAt),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transaction: %w", err)
		}

		out = append(out, t)
	}

	return out, nil
}
