package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/ledger"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
)

// TransactionInput is a manual buy or sell.
type TransactionInput struct {
	Symbol        string
	Quantity      float64
	Date          time.Time
	Type          model.TransactionType
	CommissionFee float64
}

// TransactionService reads and appends manual ledger records.
type TransactionService struct {
	db               *sql.DB
	transactionRepo  *repository.TransactionRepository
	portfolioService *PortfolioService
	symbolService    *SymbolService
	oracle           ledger.PriceOracle
	clock            Clock
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	portfolioService *PortfolioService,
	symbolService *SymbolService,
	oracle ledger.PriceOracle,
	clock Clock,
) *TransactionService {
	return &TransactionService{
		db:               db,
		transactionRepo:  transactionRepo,
		portfolioService: portfolioService,
		symbolService:    symbolService,
		oracle:           oracle,
		clock:            clock,
	}
}

// GetTransactions returns the named portfolio's ledger in append order.
func (s *TransactionService) GetTransactions(ctx context.Context, name string) ([]model.Transaction, error) {
	portfolio, err := s.portfolioService.GetPortfolio(ctx, name)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.ReadAll(ctx, portfolio.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveTransactions, err)
	}
	return txs, nil
}

// RecordTransaction validates and appends a manual buy or sell.
//
// The portfolio's schedule is caught up to the transaction date first, so a
// sell is checked against the DCA buys that precede it. A record is only
// accepted when a closing price exists on its date; the response echoes
// that price and quantity times price.
func (s *TransactionService) RecordTransaction(ctx context.Context, name string, in TransactionInput) (model.TransactionResponse, error) {
	in.Symbol = strings.TrimSpace(in.Symbol)
	if in.Quantity <= 0 {
		return model.TransactionResponse{}, apperrors.ErrInvalidQuantity
	}
	if in.CommissionFee < 0 {
		return model.TransactionResponse{}, fmt.Errorf("%w: %g", apperrors.ErrInvalidCommission, in.CommissionFee)
	}
	if in.Type != model.TransactionBuy && in.Type != model.TransactionSell {
		return model.TransactionResponse{}, fmt.Errorf("%w: transaction type must be buy or sell, got %q", apperrors.ErrUnsupportedOperation, in.Type)
	}
	if err := s.symbolService.Validate(ctx, in.Symbol); err != nil {
		return model.TransactionResponse{}, err
	}

	day := model.Day(in.Date)
	view, err := s.portfolioService.loadAt(ctx, name, day)
	if err != nil {
		return model.TransactionResponse{}, err
	}

	record := model.Transaction{
		PortfolioID:   view.portfolio.ID,
		Symbol:        in.Symbol,
		Quantity:      in.Quantity,
		Date:          day,
		Type:          in.Type,
		CommissionFee: in.CommissionFee,
		Source:        model.SourceManual,
	}

	switch in.Type {
	case model.TransactionBuy:
		err = view.book.ValidateBuy(record)
	case model.TransactionSell:
		err = view.book.ValidateSell(view.txs, in.Symbol, in.Quantity, day)
	}
	if err != nil {
		return model.TransactionResponse{}, err
	}

	priceOn := notAfter(s.clock.today(), in.Symbol, func(d time.Time) (float64, error) {
		return s.oracle.PriceOn(ctx, in.Symbol, d)
	})
	price, err := priceOn(day)
	if err != nil {
		return model.TransactionResponse{}, err
	}

	err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		record, err = s.transactionRepo.WithTx(tx).Append(ctx, record)
		return err
	})
	if err != nil {
		return model.TransactionResponse{}, fmt.Errorf("failed to append transaction: %w", err)
	}

	return model.TransactionResponse{
		Transaction: record,
		Price:       price,
		Total:       round(price * in.Quantity),
	}, nil
}
