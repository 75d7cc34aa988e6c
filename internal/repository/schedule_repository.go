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

// ScheduleRepository provides data access methods for the dca_schedule and
// dca_weight tables. The only mutable column is last_processed_date, which
// is moved forward with a compare-and-set.
type ScheduleRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewScheduleRepository creates a new ScheduleRepository with the provided database connection.
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// WithTx returns a new ScheduleRepository scoped to the provided transaction.
func (r *ScheduleRepository) WithTx(tx *sql.Tx) *ScheduleRepository {
	return &ScheduleRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ScheduleRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const scheduleColumns = `
	id, portfolio_id, name, amount, commission_fee, start_date, end_date,
	frequency_days, last_processed_date, created_at
`

// GetSchedules retrieves every schedule with its weights, ordered by name.
func (r *ScheduleRepository) GetSchedules(ctx context.Context) ([]model.Schedule, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT `+scheduleColumns+` FROM dca_schedule ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dca_schedule table: %w", err)
	}

	schedules := []model.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		schedules = append(schedules, s)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating dca_schedule table: %w", err)
	}
	rows.Close()

	// Weights are loaded after the schedule cursor is closed; the database
	// runs on a single connection.
	for i := range schedules {
		if schedules[i].Weights, err = r.getWeights(ctx, schedules[i].ID); err != nil {
			return nil, err
		}
	}

	return schedules, nil
}

// GetScheduleByPortfolioID retrieves the schedule owned by a portfolio.
// Returns apperrors.ErrScheduleNotFound if the portfolio has none.
func (r *ScheduleRepository) GetScheduleByPortfolioID(ctx context.Context, portfolioID string) (model.Schedule, error) {
	return r.getOne(ctx, `SELECT `+scheduleColumns+` FROM dca_schedule WHERE portfolio_id = ?`, portfolioID)
}

// GetScheduleByName retrieves a schedule by strategy name.
// Returns apperrors.ErrScheduleNotFound if no schedule has that name.
func (r *ScheduleRepository) GetScheduleByName(ctx context.Context, name string) (model.Schedule, error) {
	return r.getOne(ctx, `SELECT `+scheduleColumns+` FROM dca_schedule WHERE name = ?`, name)
}

func (r *ScheduleRepository) getOne(ctx context.Context, query string, arg string) (model.Schedule, error) {
	s, err := scanSchedule(r.getQuerier().QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Schedule{}, apperrors.ErrScheduleNotFound
	}
	if err != nil {
		return model.Schedule{}, err
	}

	if s.Weights, err = r.getWeights(ctx, s.ID); err != nil {
		return model.Schedule{}, err
	}
	return s, nil
}

func (r *ScheduleRepository) getWeights(ctx context.Context, scheduleID string) ([]model.Weight, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `
		SELECT symbol, weight
		FROM dca_weight
		WHERE schedule_id = ?
		ORDER BY position ASC
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dca_weight table: %w", err)
	}
	defer rows.Close()

	weights := []model.Weight{}
	for rows.Next() {
		var w model.Weight
		if err := rows.Scan(&w.Symbol, &w.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan dca_weight table results: %w", err)
		}
		weights = append(weights, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dca_weight table: %w", err)
	}
	return weights, nil
}

// InsertSchedule stores a schedule and its weights in declared order.
// Returns apperrors.ErrDuplicateSchedule if the name or portfolio already has one.
func (r *ScheduleRepository) InsertSchedule(ctx context.Context, s model.Schedule) (model.Schedule, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	var endDate any
	if s.EndDate != nil {
		endDate = formatDate(*s.EndDate)
	}

	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO dca_schedule (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.PortfolioID,
		s.Name,
		s.Amount,
		s.CommissionFee,
		formatDate(s.StartDate),
		endDate,
		s.FrequencyDays,
		formatDate(s.LastProcessedDate),
		formatTimestamp(s.CreatedAt),
	)
	if isUniqueViolation(err) {
		return model.Schedule{}, fmt.Errorf("%w: %s", apperrors.ErrDuplicateSchedule, s.Name)
	}
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to insert dca_schedule: %w", err)
	}

	for i, w := range s.Weights {
		_, err := r.getQuerier().ExecContext(ctx, `
			INSERT INTO dca_weight (schedule_id, position, symbol, weight)
			VALUES (?, ?, ?, ?)
		`, s.ID, i, w.Symbol, w.Weight)
		if err != nil {
			return model.Schedule{}, fmt.Errorf("failed to insert dca_weight: %w", err)
		}
	}

	return s, nil
}

// AdvanceLastProcessed moves last_processed_date from prev to next.
// Returns apperrors.ErrStaleSchedule when the stored value is no longer prev.
func (r *ScheduleRepository) AdvanceLastProcessed(ctx context.Context, scheduleID string, prev, next time.Time) error {
	result, err := r.getQuerier().ExecContext(ctx, `
		UPDATE dca_schedule
		SET last_processed_date = ?
		WHERE id = ? AND last_processed_date = ?
	`, formatDate(next), scheduleID, formatDate(prev))
	if err != nil {
		return fmt.Errorf("failed to update dca_schedule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrStaleSchedule
	}
	return nil
}

func scanSchedule(row rowScanner) (model.Schedule, error) {
	var s model.Schedule
	var startStr, lastStr, createdStr string
	var endStr sql.NullString

	err := row.Scan(
		&s.ID,
		&s.PortfolioID,
		&s.Name,
		&s.Amount,
		&s.CommissionFee,
		&startStr,
		&endStr,
		&s.FrequencyDays,
		&lastStr,
		&createdStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Schedule{}, err
	}
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to scan dca_schedule: %w", err)
	}

	if s.StartDate, err = ParseTime(startStr); err != nil {
		return model.Schedule{}, err
	}
	if s.LastProcessedDate, err = ParseTime(lastStr); err != nil {
		return model.Schedule{}, err
	}
	if s.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Schedule{}, err
	}
	if endStr.Valid {
		end, err := ParseTime(endStr.String)
		if err != nil {
			return model.Schedule{}, err
		}
		s.EndDate = &end
	}

	return s, nil
}
