// Package app wires configuration, storage, the market data provider and
// the services into one graph shared by the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Stockbroker-Backend/internal/api"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/config"
	"github.com/ndewijer/Stockbroker-Backend/internal/database"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/marketdata"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
)

// App holds the opened database and every service built on it.
type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	DB       *sql.DB
	Settings *repository.SettingRepository

	Symbols      *service.SymbolService
	Allocation   *service.AllocationService
	Strategies   *service.StrategyService
	Portfolios   *service.PortfolioService
	Transactions *service.TransactionService
	Performance  *service.PerformanceService
	Imports      *service.ImportService
	System       *service.SystemService
}

// Open opens and migrates the database, resolves the provider API key and
// builds the service graph. A nil clock uses the system time.
//
// The API key stored with "stockbroker apikey set" takes precedence over
// MARKET_DATA_API_KEY.
func Open(ctx context.Context, cfg *config.Config, logger *logging.Logger, clock service.Clock) (*App, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	a, err := build(ctx, db, cfg, logger, clock)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, db *sql.DB, cfg *config.Config, logger *logging.Logger, clock service.Clock) (*App, error) {
	settings, err := repository.NewSettingRepository(db, cfg.Security.EncryptionKey)
	if err != nil {
		return nil, err
	}

	apiKey, err := settings.GetSetting(ctx, repository.SettingMarketDataAPIKey)
	if err != nil && !errors.Is(err, apperrors.ErrSettingNotFound) {
		return nil, fmt.Errorf("failed to read market data API key: %w", err)
	}

	provider, err := marketdata.NewProvider(cfg.MarketData, apiKey, logger)
	if err != nil {
		return nil, err
	}

	oracleOpts := []marketdata.OracleOption{
		marketdata.WithRefreshTTL(cfg.MarketData.RefreshTTL),
		marketdata.WithOracleLogger(logger),
	}
	if clock != nil {
		oracleOpts = append(oracleOpts, marketdata.WithClock(clock))
	}
	oracle := marketdata.NewCachedOracle(db, repository.NewPriceRepository(db), provider, oracleOpts...)

	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	symbols := service.NewSymbolService(db, repository.NewSymbolRepository(db), provider, logger)
	allocation := service.NewAllocationService(db, portfolioRepo, transactionRepo, oracle, symbols)
	strategies := service.NewStrategyService(db, portfolioRepo, scheduleRepo, transactionRepo, allocation, symbols, clock, logger)
	portfolios := service.NewPortfolioService(portfolioRepo, transactionRepo, strategies, oracle, logger)

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Settings:     settings,
		Symbols:      symbols,
		Allocation:   allocation,
		Strategies:   strategies,
		Portfolios:   portfolios,
		Transactions: service.NewTransactionService(db, transactionRepo, portfolios, symbols, oracle, clock),
		Performance:  service.NewPerformanceService(portfolios, oracle, clock),
		Imports:      service.NewImportService(db, portfolioRepo, transactionRepo, symbols, oracle, clock, logger),
		System:       service.NewSystemService(db),
	}, nil
}

// APIServices returns the services the HTTP router needs.
func (a *App) APIServices() api.Services {
	return api.Services{
		System:      a.System,
		Portfolio:   a.Portfolios,
		Allocation:  a.Allocation,
		Transaction: a.Transactions,
		Strategy:    a.Strategies,
		Performance: a.Performance,
	}
}

// Close closes the database.
func (a *App) Close() error {
	return a.DB.Close()
}
