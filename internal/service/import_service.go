package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/ledger"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
)

// importHeader is the required first line of a ledger CSV file.
var importHeader = []string{"symbol", "quantity", "date", "type", "commissionFee"}

// ImportRowError reports the CSV row, counted from 1 after the header, that
// stopped an import.
type ImportRowError struct {
	Row int
	Err error
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportRowError) Unwrap() error {
	return e.Err
}

// ImportService loads a complete ledger from CSV into a new portfolio.
type ImportService struct {
	db              *sql.DB
	portfolioRepo   *repository.PortfolioRepository
	transactionRepo *repository.TransactionRepository
	symbolService   *SymbolService
	oracle          ledger.PriceOracle
	clock           Clock
	logger          *logging.Logger
}

// NewImportService creates a new ImportService with the provided dependencies.
func NewImportService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	transactionRepo *repository.TransactionRepository,
	symbolService *SymbolService,
	oracle ledger.PriceOracle,
	clock Clock,
	logger *logging.Logger,
) *ImportService {
	return &ImportService{
		db:              db,
		portfolioRepo:   portfolioRepo,
		transactionRepo: transactionRepo,
		symbolService:   symbolService,
		oracle:          oracle,
		clock:           clock,
		logger:          logger,
	}
}

// Import reads "symbol,quantity,date,type,commissionFee" rows from r and
// appends them to a new portfolio called name.
//
// Every row is validated before anything is written: the symbol must be
// listed, the quantity positive, the fee not negative, a price must exist
// on the row's date, and a sell must be covered by the rows before it. The
// portfolio and all of its records are then stored in one SQL transaction.
func (s *ImportService) Import(ctx context.Context, name string, kind model.PortfolioKind, r io.Reader) (model.Portfolio, []model.Transaction, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Portfolio{}, nil, apperrors.ErrInvalidName
	}
	if kind == "" {
		kind = model.KindFlexible
	}
	book, err := ledger.ForKind(kind)
	if err != nil {
		return model.Portfolio{}, nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidKind, err)
	}

	if _, err := s.portfolioRepo.GetPortfolioByName(ctx, name); err == nil {
		return model.Portfolio{}, nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicatePortfolio, name)
	} else if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return model.Portfolio{}, nil, err
	}

	records, err := s.readRows(ctx, book, r)
	if err != nil {
		return model.Portfolio{}, nil, err
	}

	var portfolio model.Portfolio
	var appended []model.Transaction
	err = repository.WithinTx(ctx, s.db, func(tx *sql.Tx) error {
		portfolio, err = s.portfolioRepo.WithTx(tx).InsertPortfolio(ctx, model.Portfolio{Name: name, Kind: kind})
		if err != nil {
			return err
		}
		for i := range records {
			records[i].PortfolioID = portfolio.ID
		}
		appended, err = s.transactionRepo.WithTx(tx).AppendAll(ctx, records)
		return err
	})
	if err != nil {
		return model.Portfolio{}, nil, fmt.Errorf("failed to import portfolio %s: %w", name, err)
	}

	s.logger.Info().Str("portfolio", name).Int("records", len(appended)).Msg("Imported portfolio ledger")
	return portfolio, appended, nil
}

func (s *ImportService) readRows(ctx context.Context, book ledger.Book, r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(importHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read import header: %w", err)
	}
	for i, col := range importHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("unexpected import header %q, want %q", strings.Join(header, ","), strings.Join(importHeader, ","))
		}
	}

	today := s.clock.today()
	var records []model.Transaction
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ImportRowError{Row: row, Err: err}
		}

		record, err := s.parseRow(ctx, book, records, fields, today)
		if err != nil {
			return nil, &ImportRowError{Row: row, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *ImportService) parseRow(ctx context.Context, book ledger.Book, before []model.Transaction, fields []string, today time.Time) (model.Transaction, error) {
	symbol := strings.TrimSpace(fields[0])
	if err := s.symbolService.Validate(ctx, symbol); err != nil {
		return model.Transaction{}, err
	}

	quantity, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidQuantity, fields[1])
	}
	if quantity <= 0 {
		return model.Transaction{}, fmt.Errorf("%w: %g", apperrors.ErrInvalidQuantity, quantity)
	}

	date, err := model.ParseDate(strings.TrimSpace(fields[2]))
	if err != nil {
		return model.Transaction{}, err
	}

	txType := model.TransactionType(strings.ToLower(strings.TrimSpace(fields[3])))
	if txType != model.TransactionBuy && txType != model.TransactionSell {
		return model.Transaction{}, fmt.Errorf("transaction type must be buy or sell, got %q", fields[3])
	}

	fee, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil || fee < 0 {
		return model.Transaction{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidCommission, fields[4])
	}

	record := model.Transaction{
		Symbol:        symbol,
		Quantity:      quantity,
		Date:          date,
		Type:          txType,
		CommissionFee: fee,
		Source:        model.SourceImport,
	}

	priceOn := notAfter(today, symbol, func(d time.Time) (float64, error) {
		return s.oracle.PriceOn(ctx, symbol, d)
	})
	if _, err := priceOn(date); err != nil {
		return model.Transaction{}, err
	}

	if txType == model.TransactionSell {
		err = book.ValidateSell(before, symbol, quantity, date)
	} else {
		err = book.ValidateBuy(record)
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return record, nil
}
