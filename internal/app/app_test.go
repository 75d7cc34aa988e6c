package app

import (
	"context"
	"testing"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/config"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(provider string) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Path: ":memory:"},
		MarketData: config.MarketDataConfig{
			Provider:   provider,
			RateLimit:  5,
			RefreshTTL: time.Hour,
		},
	}
}

// TestOpen verifies that the service graph comes up against a fresh database.
//
// WHY: The server and the CLI share this wiring. A fresh installation has
// no stored API key and must still start.
func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh database", func(t *testing.T) {
		a, err := Open(ctx, testConfig(config.ProviderYahoo), logging.NewSilent(), nil)
		require.NoError(t, err)
		t.Cleanup(func() { a.Close() })

		require.NoError(t, a.System.CheckHealth())
		portfolios, err := a.Portfolios.GetAllPortfolios(ctx)
		require.NoError(t, err)
		assert.Empty(t, portfolios)

		services := a.APIServices()
		assert.NotNil(t, services.Strategy)
		assert.NotNil(t, services.Performance)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := Open(ctx, testConfig("bloomberg"), logging.NewSilent(), nil)
		assert.Error(t, err)
	})

	t.Run("invalid encryption key", func(t *testing.T) {
		cfg := testConfig(config.ProviderAlphaVantage)
		cfg.Security.EncryptionKey = "not-a-key"
		_, err := Open(ctx, cfg, logging.NewSilent(), nil)
		assert.Error(t, err)
	})
}
