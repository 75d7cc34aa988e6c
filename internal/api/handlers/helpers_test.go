package handlers_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Stockbroker-Backend/internal/api/handlers"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
	"github.com/ndewijer/Stockbroker-Backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

var today = testutil.Date(2022, 7, 1)

// fixture wires the handlers against an in-memory database and a static
// oracle, with "today" pinned to 2022-07-01.
type fixture struct {
	db           *sql.DB
	oracle       *testutil.StaticOracle
	portfolios   *handlers.PortfolioHandler
	transactions *handlers.TransactionHandler
	strategies   *handlers.StrategyHandler
	performance  *handlers.PerformanceHandler
	system       *handlers.SystemHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	oracle := testutil.NewStaticOracle()
	logger := logging.NewSilent()
	clock := service.Clock(testutil.FixedClock(today))

	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	symbols := service.NewSymbolService(db, repository.NewSymbolRepository(db), nil, logger)
	allocation := service.NewAllocationService(db, portfolioRepo, transactionRepo, oracle, symbols)
	strategies := service.NewStrategyService(db, portfolioRepo, scheduleRepo, transactionRepo, allocation, symbols, clock, logger)
	portfolios := service.NewPortfolioService(portfolioRepo, transactionRepo, strategies, oracle, logger)

	return &fixture{
		db:           db,
		oracle:       oracle,
		portfolios:   handlers.NewPortfolioHandler(portfolios, allocation, testutil.FixedClock(today)),
		transactions: handlers.NewTransactionHandler(service.NewTransactionService(db, transactionRepo, portfolios, symbols, oracle, clock)),
		strategies:   handlers.NewStrategyHandler(strategies),
		performance:  handlers.NewPerformanceHandler(service.NewPerformanceService(portfolios, oracle, clock)),
		system:       handlers.NewSystemHandler(service.NewSystemService(db)),
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out), w.Body.String())
	return out
}

// transactionJSON and scheduleJSON mirror the wire form, where dates are
// calendar-day strings.
type transactionJSON struct {
	Seq           int64   `json:"seq"`
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	CommissionFee float64 `json:"commissionFee"`
	Source        string  `json:"source"`
}

type transactionResponseJSON struct {
	Transaction transactionJSON `json:"transaction"`
	Price       float64         `json:"price"`
	Total       float64         `json:"total"`
}

type scheduleJSON struct {
	Name              string  `json:"name"`
	Amount            float64 `json:"amount"`
	StartDate         string  `json:"startDate"`
	EndDate           *string `json:"endDate"`
	FrequencyDays     int     `json:"frequencyDays"`
	LastProcessedDate string  `json:"lastProcessedDate"`
}
