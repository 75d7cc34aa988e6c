package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/ledger"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
)

// PortfolioService handles portfolio-related business logic operations.
// Every date-sensitive query first catches up the portfolio's DCA schedule
// to the query date and then replays the ledger with the Book of the
// portfolio's kind.
type PortfolioService struct {
	portfolioRepo   *repository.PortfolioRepository
	transactionRepo *repository.TransactionRepository
	strategyService *StrategyService
	oracle          ledger.PriceOracle
	logger          *logging.Logger
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	transactionRepo *repository.TransactionRepository,
	strategyService *StrategyService,
	oracle ledger.PriceOracle,
	logger *logging.Logger,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo:   portfolioRepo,
		transactionRepo: transactionRepo,
		strategyService: strategyService,
		oracle:          oracle,
		logger:          logger,
	}
}

// GetAllPortfolios retrieves all portfolios ordered by name.
func (s *PortfolioService) GetAllPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(ctx)
}

// GetPortfolio retrieves a single portfolio by name.
func (s *PortfolioService) GetPortfolio(ctx context.Context, name string) (model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolioByName(ctx, name)
}

// CreatePortfolio stores a new, empty portfolio. Names are unique.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, name string, kind model.PortfolioKind) (model.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Portfolio{}, apperrors.ErrInvalidName
	}
	if kind == "" {
		kind = model.KindFlexible
	}
	if !kind.Valid() {
		return model.Portfolio{}, fmt.Errorf("%w: got %q", apperrors.ErrInvalidKind, kind)
	}
	return s.portfolioRepo.InsertPortfolio(ctx, model.Portfolio{Name: name, Kind: kind})
}

// ledgerView is a portfolio's ledger caught up to one date.
type ledgerView struct {
	portfolio model.Portfolio
	book      ledger.Book
	txs       []model.Transaction
	date      time.Time
}

// loadAt resolves the portfolio, advances its schedule to date and reads
// the full ledger. A failed catch-up aborts the query; the periods
// committed before the failure are kept.
func (s *PortfolioService) loadAt(ctx context.Context, name string, date time.Time) (ledgerView, error) {
	portfolio, err := s.portfolioRepo.GetPortfolioByName(ctx, name)
	if err != nil {
		return ledgerView{}, err
	}
	book, err := ledger.ForKind(portfolio.Kind)
	if err != nil {
		return ledgerView{}, err
	}

	day := model.Day(date)
	if s.strategyService != nil {
		if _, err := s.strategyService.CatchUp(ctx, portfolio, day); err != nil {
			s.logger.Warn().Err(err).Str("portfolio", name).Msg("DCA catch-up failed")
			return ledgerView{}, err
		}
	}

	txs, err := s.transactionRepo.ReadAll(ctx, portfolio.ID)
	if err != nil {
		return ledgerView{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
	}
	return ledgerView{portfolio: portfolio, book: book, txs: txs, date: day}, nil
}

// Composition returns the holdings of the named portfolio on date, ordered
// by first appearance in the ledger.
func (s *PortfolioService) Composition(ctx context.Context, name string, date time.Time) ([]model.Holding, error) {
	view, err := s.loadAt(ctx, name, date)
	if err != nil {
		return nil, err
	}
	return view.book.Reconstruct(view.txs, view.date).List(), nil
}

// Value returns the market value of the named portfolio on date.
func (s *PortfolioService) Value(ctx context.Context, name string, date time.Time) (float64, error) {
	view, err := s.loadAt(ctx, name, date)
	if err != nil {
		return 0, err
	}
	value, err := view.book.MarketValue(ctx, view.txs, view.date, s.oracle)
	if err != nil {
		return 0, err
	}
	return round(value), nil
}

// CostBasis returns the cost basis of the named portfolio on date.
func (s *PortfolioService) CostBasis(ctx context.Context, name string, date time.Time) (float64, error) {
	view, err := s.loadAt(ctx, name, date)
	if err != nil {
		return 0, err
	}
	cost, err := view.book.CostBasis(ctx, view.txs, view.date, s.oracle)
	if err != nil {
		return 0, err
	}
	return round(cost), nil
}

// Summary combines composition, market value and cost basis on date from a
// single catch-up and ledger read.
func (s *PortfolioService) Summary(ctx context.Context, name string, date time.Time) (model.PortfolioSummary, error) {
	view, err := s.loadAt(ctx, name, date)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	value, err := view.book.MarketValue(ctx, view.txs, view.date, s.oracle)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	cost, err := view.book.CostBasis(ctx, view.txs, view.date, s.oracle)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	return model.PortfolioSummary{
		Portfolio: view.portfolio,
		Date:      model.FormatDate(view.date),
		Holdings:  view.book.Reconstruct(view.txs, view.date).List(),
		Value:     round(value),
		CostBasis: round(cost),
		GainLoss:  round(value - cost),
	}, nil
}
