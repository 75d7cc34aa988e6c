// Package marketdata resolves historical closing prices. Prices are read
// from the SQLite cache and, on a miss, the symbol's daily series is fetched
// from an external provider and stored before the lookup is repeated.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/config"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"golang.org/x/time/rate"
)

var (
	// ErrSymbolNotFound indicates that the provider has no data for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found at provider")

	// ErrRateLimited indicates that the provider refused the call because of its quota.
	ErrRateLimited = errors.New("provider rate limit reached")

	// ErrListingUnsupported indicates that the provider cannot list symbols.
	ErrListingUnsupported = errors.New("provider does not support symbol listing")
)

// Provider fetches daily closing prices and the stock listing.
type Provider interface {
	Name() string
	// DailySeries returns every available daily close of symbol.
	DailySeries(ctx context.Context, symbol string) ([]model.PricePoint, error)
	// Listing returns the symbols the provider knows about.
	Listing(ctx context.Context) ([]model.Symbol, error)
}

// APIError represents a non-200 provider response
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d)", e.Provider, e.Message, e.StatusCode)
}

const (
	DefaultTimeout = 30 * time.Second
)

// ClientOption configures a provider client
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger
}

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithRateLimit allows requestsPerMinute outbound calls per minute.
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *clientConfig) {
		c.limiter = newMinuteLimiter(requestsPerMinute)
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

func newMinuteLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

func newClientConfig(defaultBaseURL string, opts []ClientOption) clientConfig {
	c := clientConfig{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    newMinuteLimiter(5),
		logger:     logging.NewSilent(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// NewProvider builds the provider selected in the configuration.
// apiKey overrides the configured key when not empty.
func NewProvider(cfg config.MarketDataConfig, apiKey string, logger *logging.Logger) (Provider, error) {
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	opts := []ClientOption{WithRateLimit(cfg.RateLimit), WithLogger(logger)}

	switch cfg.Provider {
	case config.ProviderAlphaVantage:
		return NewAlphaVantageClient(apiKey, opts...), nil
	case config.ProviderYahoo:
		return NewYahooClient(opts...), nil
	default:
		return nil, fmt.Errorf("unknown market data provider %q", cfg.Provider)
	}
}
