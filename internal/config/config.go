package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	MarketData MarketDataConfig
	Schedule   ScheduleConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MarketDataConfig selects and throttles the daily price provider.
type MarketDataConfig struct {
	Provider string // "alphavantage" or "yahoo"
	APIKey   string
	// RateLimit is the number of outbound provider requests allowed per minute.
	RateLimit int
	// RefreshTTL is the minimum time between two refreshes of the same symbol.
	RefreshTTL time.Duration
}

// ScheduleConfig holds the optional DCA warm-up job configuration.
type ScheduleConfig struct {
	CatchUpCron string // empty disables the job
}

// SecurityConfig holds the key used to encrypt stored secrets.
type SecurityConfig struct {
	EncryptionKey string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string // "console" or "json"
}

// Provider names accepted by MARKET_DATA_PROVIDER.
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderYahoo        = "yahoo"
)

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	rateLimit, err := getEnvInt("MARKET_DATA_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := getEnvDuration("MARKET_DATA_REFRESH_TTL", time.Hour)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/stockbroker.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		MarketData: MarketDataConfig{
			Provider:   strings.ToLower(getEnv("MARKET_DATA_PROVIDER", ProviderAlphaVantage)),
			APIKey:     os.Getenv("MARKET_DATA_API_KEY"),
			RateLimit:  rateLimit,
			RefreshTTL: refreshTTL,
		},
		Schedule: ScheduleConfig{
			CatchUpCron: os.Getenv("DCA_CATCHUP_CRON"),
		},
		Security: SecurityConfig{
			EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	switch config.MarketData.Provider {
	case ProviderAlphaVantage, ProviderYahoo:
	default:
		return nil, fmt.Errorf("invalid MARKET_DATA_PROVIDER %q", config.MarketData.Provider)
	}
	if config.MarketData.RateLimit <= 0 {
		return nil, fmt.Errorf("MARKET_DATA_RATE_LIMIT must be positive, got %d", config.MarketData.RateLimit)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
