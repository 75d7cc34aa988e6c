package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/ledger"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
	"github.com/ndewijer/Stockbroker-Backend/internal/retry"
)

// StrategyInput describes a new dollar-cost averaging strategy.
type StrategyInput struct {
	Name          string
	Weights       []model.Weight
	Amount        float64
	CommissionFee float64
	StartDate     time.Time
	EndDate       *time.Time
	FrequencyDays int
}

// StrategyService manages dollar-cost averaging schedules.
//
// Schedules are advanced lazily: nothing runs in the background by default,
// and every date-sensitive portfolio query first calls CatchUp with its
// query date. Advancing invests every period that fell due between the
// schedule's last processed date and the horizon min(query date, end date),
// never past today.
//
// Each period is committed on its own: the buy records and the move of
// last_processed_date happen in one SQL transaction, guarded by a
// compare-and-set on the previous date. When a later period fails, the
// earlier ones stay committed and the next call resumes from there.
type StrategyService struct {
	db                *sql.DB
	portfolioRepo     *repository.PortfolioRepository
	scheduleRepo      *repository.ScheduleRepository
	transactionRepo   *repository.TransactionRepository
	allocationService *AllocationService
	symbolService     *SymbolService
	policy            retry.Policy
	clock             Clock
	logger            *logging.Logger
}

// NewStrategyService creates a new StrategyService with the provided dependencies.
// A nil clock uses the system time.
func NewStrategyService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	scheduleRepo *repository.ScheduleRepository,
	transactionRepo *repository.TransactionRepository,
	allocationService *AllocationService,
	symbolService *SymbolService,
	clock Clock,
	logger *logging.Logger,
) *StrategyService {
	s := &StrategyService{
		db:                db,
		portfolioRepo:     portfolioRepo,
		scheduleRepo:      scheduleRepo,
		transactionRepo:   transactionRepo,
		allocationService: allocationService,
		symbolService:     symbolService,
		policy:            retry.Default,
		clock:             clock,
		logger:            logger,
	}
	s.policy.OnShift = func(from, to time.Time, err error) {
		s.logger.Info().
			Str("from", model.FormatDate(from)).
			Str("to", model.FormatDate(to)).
			Err(err).
			Msg("No price data, shifting investment to next day")
	}
	return s
}

// ListStrategies returns every schedule ordered by name.
func (s *StrategyService) ListStrategies(ctx context.Context) ([]model.Schedule, error) {
	return s.scheduleRepo.GetSchedules(ctx)
}

// GetStrategy returns the schedule with the given name.
func (s *StrategyService) GetStrategy(ctx context.Context, name string) (model.Schedule, error) {
	return s.scheduleRepo.GetScheduleByName(ctx, name)
}

// CreateStrategy validates and stores a new schedule together with the
// flexible portfolio of the same name, which is created when missing.
//
// When the start date is not in the future the first period is invested on
// the start date (shifted by up to two days when no price exists), and a
// failure aborts creation without writing anything. A future start invests
// nothing yet; the schedule is stored so that its first lazy period lands
// on the start date.
func (s *StrategyService) CreateStrategy(ctx context.Context, in StrategyInput) (model.Schedule, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return model.Schedule{}, err
	}

	if _, err := s.scheduleRepo.GetScheduleByName(ctx, in.Name); err == nil {
		return model.Schedule{}, fmt.Errorf("%w: %s", apperrors.ErrDuplicateSchedule, in.Name)
	} else if !errors.Is(err, apperrors.ErrScheduleNotFound) {
		return model.Schedule{}, err
	}

	portfolio, err := s.portfolioRepo.GetPortfolioByName(ctx, in.Name)
	portfolioExists := err == nil
	if err != nil && !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return model.Schedule{}, err
	}
	if portfolioExists && portfolio.Kind != model.KindFlexible {
		return model.Schedule{}, fmt.Errorf("%w: %s is a %s portfolio", apperrors.ErrUnsupportedOperation, in.Name, portfolio.Kind)
	}

	schedule := model.Schedule{
		Name:          in.Name,
		Weights:       in.Weights,
		Amount:        in.Amount,
		CommissionFee: in.CommissionFee,
		StartDate:     model.Day(in.StartDate),
		FrequencyDays: in.FrequencyDays,
	}
	if in.EndDate != nil {
		end := model.Day(*in.EndDate)
		schedule.EndDate = &end
	}

	today := s.clock.today()
	var planned []model.Transaction
	if schedule.StartDate.After(today) {
		schedule.LastProcessedDate = model.AddDays(schedule.StartDate, -schedule.FrequencyDays)
	} else {
		var executed time.Time
		planned, executed, err = s.planPeriod(ctx, schedule, schedule.StartDate, today)
		if err != nil {
			return model.Schedule{}, fmt.Errorf("failed to invest first period of %s: %w", in.Name, err)
		}
		schedule.LastProcessedDate = executed
	}

	err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		if !portfolioExists {
			portfolio, err = s.portfolioRepo.WithTx(tx).InsertPortfolio(ctx, model.Portfolio{Name: in.Name, Kind: model.KindFlexible})
			if err != nil {
				return err
			}
		}

		schedule.PortfolioID = portfolio.ID
		schedule, err = s.scheduleRepo.WithTx(tx).InsertSchedule(ctx, schedule)
		if err != nil {
			return err
		}

		for i := range planned {
			planned[i].PortfolioID = portfolio.ID
		}
		_, err = s.transactionRepo.WithTx(tx).AppendAll(ctx, planned)
		return err
	})
	if err != nil {
		return model.Schedule{}, fmt.Errorf("failed to create strategy %s: %w", in.Name, err)
	}

	s.logger.Info().
		Str("strategy", schedule.Name).
		Str("lastProcessed", model.FormatDate(schedule.LastProcessedDate)).
		Int("records", len(planned)).
		Msg("Created dca strategy")
	return schedule, nil
}

func (s *StrategyService) validateInput(ctx context.Context, in StrategyInput) error {
	if in.Name == "" {
		return apperrors.ErrInvalidName
	}
	if err := ValidateWeights(in.Weights); err != nil {
		return err
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", apperrors.ErrInvalidAmount)
	}
	if in.CommissionFee < 0 {
		return fmt.Errorf("%w: %g", apperrors.ErrInvalidCommission, in.CommissionFee)
	}
	if in.FrequencyDays <= 0 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInvalidFrequency, in.FrequencyDays)
	}
	if in.EndDate != nil && model.Day(*in.EndDate).Before(model.Day(in.StartDate)) {
		return fmt.Errorf("%w: end date before start date", apperrors.ErrInvalidDateRange)
	}

	symbols := make([]string, len(in.Weights))
	for i, w := range in.Weights {
		symbols[i] = w.Symbol
	}
	return s.symbolService.Validate(ctx, symbols...)
}

// planPeriod plans one period's buys at candidate, moving forward a day at
// a time while prices are missing. It returns the plan and the day it was
// planned on.
func (s *StrategyService) planPeriod(ctx context.Context, schedule model.Schedule, candidate, today time.Time) ([]model.Transaction, time.Time, error) {
	plan := func(day time.Time) ([]model.Transaction, error) {
		planned, err := s.allocationService.Plan(ctx, schedule.Weights, schedule.Amount, schedule.CommissionFee, day)
		if err != nil {
			return nil, err
		}
		for i := range planned {
			planned[i].Source = model.SourceDCA
		}
		return planned, nil
	}
	return retry.Do(ctx, s.policy, candidate, notAfter(today, schedule.Name, plan))
}

// Advance invests every period of schedule that is due on queryDate and
// returns the number of periods committed by this call.
//
// The horizon is queryDate, capped by the schedule's end date. Periods are
// chained: each candidate is the previous executed date plus the frequency,
// so a holiday shift moves the rest of the schedule with it. Advancing stops
// at the first candidate after today or after the horizon.
func (s *StrategyService) Advance(ctx context.Context, schedule model.Schedule, queryDate time.Time) (int, error) {
	horizon := model.Day(queryDate)
	if schedule.EndDate != nil && schedule.EndDate.Before(horizon) {
		horizon = model.Day(*schedule.EndDate)
	}

	last := schedule.LastProcessedDate
	daysElapsed := model.DaysBetween(last, horizon)
	if daysElapsed < schedule.FrequencyDays {
		return 0, nil
	}

	today := s.clock.today()
	periods := daysElapsed / schedule.FrequencyDays
	committed := 0
	for i := 0; i < periods; i++ {
		candidate := model.AddDays(last, schedule.FrequencyDays)
		if candidate.After(today) || candidate.After(horizon) {
			break
		}

		planned, executed, err := s.planPeriod(ctx, schedule, candidate, today)
		if err != nil {
			return committed, fmt.Errorf("failed to invest %s period due %s: %w", schedule.Name, model.FormatDate(candidate), err)
		}

		err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
			for i := range planned {
				planned[i].PortfolioID = schedule.PortfolioID
			}
			if _, err := s.transactionRepo.WithTx(tx).AppendAll(ctx, planned); err != nil {
				return err
			}
			return s.scheduleRepo.WithTx(tx).AdvanceLastProcessed(ctx, schedule.ID, last, executed)
		})
		if err != nil {
			return committed, err
		}

		s.logger.Debug().
			Str("strategy", schedule.Name).
			Str("due", model.FormatDate(candidate)).
			Str("executed", model.FormatDate(executed)).
			Msg("Invested dca period")

		last = executed
		committed++
	}
	return committed, nil
}

// CatchUp advances the schedule owned by portfolio, if any, to date. A
// concurrent writer that moved the schedule first makes CatchUp re-read it
// once and continue from the stored last processed date.
func (s *StrategyService) CatchUp(ctx context.Context, portfolio model.Portfolio, date time.Time) (int, error) {
	book, err := ledger.ForKind(portfolio.Kind)
	if err != nil {
		return 0, err
	}
	if !book.SupportsSchedule() {
		return 0, nil
	}

	schedule, err := s.scheduleRepo.GetScheduleByPortfolioID(ctx, portfolio.ID)
	if errors.Is(err, apperrors.ErrScheduleNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	committed, err := s.Advance(ctx, schedule, date)
	if !errors.Is(err, apperrors.ErrStaleSchedule) {
		return committed, err
	}
	s.logger.Debug().Str("strategy", schedule.Name).Msg("Schedule moved by another writer, re-reading")

	schedule, err = s.scheduleRepo.GetScheduleByPortfolioID(ctx, portfolio.ID)
	if err != nil {
		return committed, err
	}
	more, err := s.Advance(ctx, schedule, date)
	return committed + more, err
}

// CatchUpAll advances every schedule to date. A failing schedule does not
// stop the others; their errors are joined.
func (s *StrategyService) CatchUpAll(ctx context.Context, date time.Time) (int, error) {
	schedules, err := s.scheduleRepo.GetSchedules(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	var errs []error
	for _, schedule := range schedules {
		n, err := s.Advance(ctx, schedule, date)
		total += n
		if err != nil {
			s.logger.Warn().Err(err).Str("strategy", schedule.Name).Msg("Failed to catch up dca strategy")
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
