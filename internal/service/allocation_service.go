package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/ledger"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
)

// InvestInput describes a one-off fixed-amount investment.
type InvestInput struct {
	Weights       []model.Weight
	Amount        float64
	CommissionFee float64
	Date          time.Time
}

// AllocationService splits a fixed amount across weighted symbols.
//
// Planning is separate from appending: Plan resolves every price and returns
// the buy records without touching the ledger, and Invest appends a plan in
// one SQL transaction. A symbol without a price on the date therefore fails
// the whole investment and leaves the ledger unchanged.
type AllocationService struct {
	db              *sql.DB
	portfolioRepo   *repository.PortfolioRepository
	transactionRepo *repository.TransactionRepository
	oracle          ledger.PriceOracle
	symbolService   *SymbolService
}

// NewAllocationService creates a new AllocationService with the provided dependencies.
func NewAllocationService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	transactionRepo *repository.TransactionRepository,
	oracle ledger.PriceOracle,
	symbolService *SymbolService,
) *AllocationService {
	return &AllocationService{
		db:              db,
		portfolioRepo:   portfolioRepo,
		transactionRepo: transactionRepo,
		oracle:          oracle,
		symbolService:   symbolService,
	}
}

// ValidateWeights requires at least one weight, no negative weight and a sum,
// accumulated in declared order, of exactly 100.
func ValidateWeights(weights []model.Weight) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: no weights given", apperrors.ErrInvalidWeights)
	}

	sum := 0.0
	seen := make(map[string]struct{}, len(weights))
	for _, w := range weights {
		if w.Weight < 0 {
			return fmt.Errorf("%w: negative weight for %s", apperrors.ErrInvalidWeights, w.Symbol)
		}
		if _, ok := seen[w.Symbol]; ok {
			return fmt.Errorf("%w: %s appears more than once", apperrors.ErrInvalidWeights, w.Symbol)
		}
		seen[w.Symbol] = struct{}{}
		sum += w.Weight
	}
	if sum != 100.0 {
		return fmt.Errorf("%w: got %g", apperrors.ErrInvalidWeights, sum)
	}
	return nil
}

// Plan computes the buy records investing amount on date. Every record
// carries the full commission fee, and the amount left after one fee per
// symbol is split by weight:
//
//	quantity = (amount - fee*len(weights)) * weight / 100 / price(symbol, date)
//
// Symbols with a zero weight get no record. Any missing price fails the plan.
func (s *AllocationService) Plan(ctx context.Context, weights []model.Weight, amount, fee float64, date time.Time) ([]model.Transaction, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if fee < 0 {
		return nil, fmt.Errorf("%w: %g", apperrors.ErrInvalidCommission, fee)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", apperrors.ErrInvalidAmount)
	}

	investable := amount - fee*float64(len(weights))
	if investable <= 0 {
		return nil, fmt.Errorf("%w: commission fees of %g exceed amount %g", apperrors.ErrInvalidAmount, fee*float64(len(weights)), amount)
	}

	symbols := make([]string, len(weights))
	for i, w := range weights {
		symbols[i] = w.Symbol
	}
	if err := s.symbolService.Validate(ctx, symbols...); err != nil {
		return nil, err
	}

	day := model.Day(date)
	planned := make([]model.Transaction, 0, len(weights))
	for _, w := range weights {
		if w.Weight == 0 {
			continue
		}
		price, err := s.oracle.PriceOn(ctx, w.Symbol, day)
		if err != nil {
			return nil, err
		}
		planned = append(planned, model.Transaction{
			Symbol:        w.Symbol,
			Quantity:      investable * w.Weight / 100 / price,
			Date:          day,
			Type:          model.TransactionBuy,
			CommissionFee: fee,
			Source:        model.SourceAllocation,
		})
	}
	return planned, nil
}

// Invest plans a fixed-amount investment and appends it to the named
// portfolio's ledger atomically.
func (s *AllocationService) Invest(ctx context.Context, portfolioName string, in InvestInput) ([]model.Transaction, error) {
	portfolio, err := s.portfolioRepo.GetPortfolioByName(ctx, portfolioName)
	if err != nil {
		return nil, err
	}
	book, err := ledger.ForKind(portfolio.Kind)
	if err != nil {
		return nil, err
	}

	planned, err := s.Plan(ctx, in.Weights, in.Amount, in.CommissionFee, in.Date)
	if err != nil {
		return nil, err
	}
	for i := range planned {
		planned[i].PortfolioID = portfolio.ID
		if err := book.ValidateBuy(planned[i]); err != nil {
			return nil, err
		}
	}

	var appended []model.Transaction
	err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		appended, err = s.transactionRepo.WithTx(tx).AppendAll(ctx, planned)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append investment: %w", err)
	}
	return appended, nil
}
