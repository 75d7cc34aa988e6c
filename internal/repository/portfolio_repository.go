package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPortfolios retrieves all portfolios ordered by name.
// Returns an empty slice if no portfolios exist.
func (r *PortfolioRepository) GetPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	query := `
		SELECT id, name, kind, created_at
		FROM portfolio
		ORDER BY name
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioByName retrieves a portfolio by its unique name.
// Returns apperrors.ErrPortfolioNotFound if no portfolio has that name.
func (r *PortfolioRepository) GetPortfolioByName(ctx context.Context, name string) (model.Portfolio, error) {
	query := `
		SELECT id, name, kind, created_at
		FROM portfolio
		WHERE name = ?
	`
	p, err := scanPortfolio(r.getQuerier().QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return p, err
}

// GetPortfolioByID retrieves a portfolio by id.
func (r *PortfolioRepository) GetPortfolioByID(ctx context.Context, id string) (model.Portfolio, error) {
	query := `
		SELECT id, name, kind, created_at
		FROM portfolio
		WHERE id = ?
	`
	p, err := scanPortfolio(r.getQuerier().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return p, err
}

// InsertPortfolio stores a new portfolio. The ID and CreatedAt fields are
// assigned when empty. Returns apperrors.ErrDuplicatePortfolio if the name is taken.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p model.Portfolio) (model.Portfolio, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	query := `
		INSERT INTO portfolio (id, name, kind, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query, p.ID, p.Name, string(p.Kind), formatTimestamp(p.CreatedAt))
	if isUniqueViolation(err) {
		return model.Portfolio{}, fmt.Errorf("%w: %s", apperrors.ErrDuplicatePortfolio, p.Name)
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(row rowScanner) (model.Portfolio, error) {
	var p model.Portfolio
	var kind, createdAt string
	if err := row.Scan(&p.ID, &p.Name, &kind, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Portfolio{}, err
		}
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio: %w", err)
	}
	p.Kind = model.PortfolioKind(kind)

	created, err := ParseTime(createdAt)
	if err != nil {
		return model.Portfolio{}, err
	}
	p.CreatedAt = created
	return p, nil
}
