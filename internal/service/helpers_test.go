package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
	"github.com/ndewijer/Stockbroker-Backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

// harness wires every service against one in-memory database, a static
// price oracle and a "today" that tests can move with h.now.
type harness struct {
	now          time.Time
	db           *sql.DB
	oracle       *testutil.StaticOracle
	schedules    *repository.ScheduleRepository
	ledger       *repository.TransactionRepository
	symbols      *service.SymbolService
	allocation   *service.AllocationService
	strategies   *service.StrategyService
	portfolios   *service.PortfolioService
	transactions *service.TransactionService
	performance  *service.PerformanceService
	imports      *service.ImportService
}

func newHarness(t *testing.T, today time.Time) *harness {
	t.Helper()

	db := testutil.SetupTestDB(t)
	oracle := testutil.NewStaticOracle()
	logger := logging.NewSilent()
	h := &harness{now: today}
	clock := service.Clock(func() time.Time { return h.now })

	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	symbolRepo := repository.NewSymbolRepository(db)

	symbols := service.NewSymbolService(db, symbolRepo, nil, logger)
	allocation := service.NewAllocationService(db, portfolioRepo, transactionRepo, oracle, symbols)
	strategies := service.NewStrategyService(db, portfolioRepo, scheduleRepo, transactionRepo, allocation, symbols, clock, logger)
	portfolios := service.NewPortfolioService(portfolioRepo, transactionRepo, strategies, oracle, logger)

	*h = harness{
		now:          today,
		db:           db,
		oracle:       oracle,
		schedules:    scheduleRepo,
		ledger:       transactionRepo,
		symbols:      symbols,
		allocation:   allocation,
		strategies:   strategies,
		portfolios:   portfolios,
		transactions: service.NewTransactionService(db, transactionRepo, portfolios, symbols, oracle, clock),
		performance:  service.NewPerformanceService(portfolios, oracle, clock),
		imports:      service.NewImportService(db, portfolioRepo, transactionRepo, symbols, oracle, clock, logger),
	}
	return h
}

// records reads a portfolio's full ledger.
func (h *harness) records(t *testing.T, portfolioID string) []model.Transaction {
	t.Helper()
	txs, err := h.ledger.ReadAll(context.Background(), portfolioID)
	require.NoError(t, err)
	return txs
}
