package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given name does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrScheduleNotFound indicates that no dollar-cost averaging schedule exists for a name.
	ErrScheduleNotFound = errors.New("dca schedule not found")

	// ErrSettingNotFound indicates that a system setting has not been stored.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrUnknownSymbol indicates that a symbol is not part of the stock listing.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidWeights indicates that allocation weights do not sum to exactly 100.
	ErrInvalidWeights = errors.New("sum of weights does not equal 100")

	// ErrInsufficientQuantity indicates that a sell would take a position below zero.
	ErrInsufficientQuantity = errors.New("not enough quantity available to sell")

	// ErrFutureSellConflict indicates that a backdated sell was attempted while a
	// later-dated sell of the same symbol already exists.
	ErrFutureSellConflict = errors.New("a sell has already happened on a later date")

	// ErrPriceUnavailable indicates that no closing price exists for a symbol on a date.
	ErrPriceUnavailable = errors.New("price data not available")

	// ErrDuplicatePortfolio indicates that a portfolio with the same name already exists.
	ErrDuplicatePortfolio = errors.New("portfolio with the same name already exists")

	// ErrDuplicateSchedule indicates that a dca strategy with the same name already exists.
	ErrDuplicateSchedule = errors.New("dca strategy with the same name already exists")

	// ErrUnsupportedOperation indicates an operation the portfolio kind does not allow.
	ErrUnsupportedOperation = errors.New("operation not supported for portfolio kind")

	// ErrStaleSchedule indicates that a schedule moved on between read and update.
	ErrStaleSchedule = errors.New("dca schedule was modified concurrently")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidAmount indicates an amount that leaves nothing to invest.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidQuantity indicates a non-positive transaction quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")

	// ErrInvalidFrequency indicates a schedule frequency of zero or fewer days.
	ErrInvalidFrequency = errors.New("frequency must be at least one day")

	// ErrInvalidName indicates an empty portfolio or strategy name.
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidKind indicates a portfolio kind other than simple or flexible.
	ErrInvalidKind = errors.New("portfolio kind must be simple or flexible")

	// ErrInvalidCommission indicates a negative commission fee.
	ErrInvalidCommission = errors.New("commission fee must be greater than or equal to 0")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrievePortfolios   = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrievePortfolio    = errors.New("failed to retrieve portfolio")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveStrategies   = errors.New("failed to retrieve strategies")
	ErrFailedToCreatePortfolio      = errors.New("failed to create portfolio")
	ErrFailedToCreateStrategy       = errors.New("failed to create strategy")
	ErrFailedToRecordTransaction    = errors.New("failed to record transaction")
	ErrFailedToInvest               = errors.New("failed to invest amount")
	ErrFailedToGetComposition       = errors.New("failed to get portfolio composition")
	ErrFailedToGetValue             = errors.New("failed to get portfolio value")
	ErrFailedToGetCostBasis         = errors.New("failed to get portfolio cost basis")
	ErrFailedToGetPerformance       = errors.New("failed to get portfolio performance")
	ErrFailedToRenderChart          = errors.New("failed to render performance chart")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// PriceUnavailableError carries the symbol and date for which no price was found.
type PriceUnavailableError struct {
	Symbol string
	Date   time.Time
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("price data for symbol %s not found on %s", e.Symbol, e.Date.Format("2006-01-02"))
}

func (e *PriceUnavailableError) Is(target error) bool {
	return target == ErrPriceUnavailable
}

// InsufficientQuantityError reports how much of a symbol was available on the sell date.
type InsufficientQuantityError struct {
	Symbol    string
	Date      time.Time
	Available float64
	Requested float64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("not enough quantity of %s available to sell on %s: available %g, requested %g",
		e.Symbol, e.Date.Format("2006-01-02"), e.Available, e.Requested)
}

func (e *InsufficientQuantityError) Is(target error) bool {
	return target == ErrInsufficientQuantity
}

// FutureSellConflictError names the later sell that blocks a backdated sell.
type FutureSellConflictError struct {
	Symbol       string
	Date         time.Time
	ConflictDate time.Time
}

func (e *FutureSellConflictError) Error() string {
	return fmt.Sprintf("invalid sell of %s on %s: a sell has already happened on %s",
		e.Symbol, e.Date.Format("2006-01-02"), e.ConflictDate.Format("2006-01-02"))
}

func (e *FutureSellConflictError) Is(target error) bool {
	return target == ErrFutureSellConflict
}
