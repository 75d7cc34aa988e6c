package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/marketdata"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
)

// SymbolService validates symbols against the stock listing and refreshes
// the listing from the market data provider.
type SymbolService struct {
	db         *sql.DB
	symbolRepo *repository.SymbolRepository
	provider   marketdata.Provider
	logger     *logging.Logger
}

// NewSymbolService creates a new SymbolService. provider may be nil when
// the listing is never refreshed.
func NewSymbolService(
	db *sql.DB,
	symbolRepo *repository.SymbolRepository,
	provider marketdata.Provider,
	logger *logging.Logger,
) *SymbolService {
	return &SymbolService{
		db:         db,
		symbolRepo: symbolRepo,
		provider:   provider,
		logger:     logger,
	}
}

// Validate checks that every symbol is listed. An empty listing disables
// the check so a fresh installation can trade before the first refresh.
func (s *SymbolService) Validate(ctx context.Context, symbols ...string) error {
	count, err := s.symbolRepo.CountSymbols(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	for _, symbol := range symbols {
		if symbol == "" {
			return fmt.Errorf("%w: empty symbol", apperrors.ErrUnknownSymbol)
		}
		if _, err := s.symbolRepo.GetSymbol(ctx, symbol); err != nil {
			return err
		}
	}
	return nil
}

// GetSymbol returns one listing entry.
func (s *SymbolService) GetSymbol(ctx context.Context, symbol string) (model.Symbol, error) {
	return s.symbolRepo.GetSymbol(ctx, symbol)
}

// Refresh replaces the listing with the provider's current one and returns
// the number of symbols stored.
func (s *SymbolService) Refresh(ctx context.Context) (int, error) {
	if s.provider == nil {
		return 0, fmt.Errorf("no market data provider configured")
	}

	symbols, err := s.provider.Listing(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch listing from %s: %w", s.provider.Name(), err)
	}

	err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.symbolRepo.WithTx(tx).ReplaceSymbols(ctx, symbols)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int("symbols", len(symbols)).Str("provider", s.provider.Name()).Msg("Refreshed stock listing")
	return len(symbols), nil
}
