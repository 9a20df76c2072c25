// Package common provides shared utilities for Coinfolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Coinfolio
type Config struct {
	Environment string        `toml:"environment"`
	Currency    string        `toml:"currency"` // Quote currency for valuations (default "usd")
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the local durable store configuration.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	CoinGecko CoinGeckoConfig    `toml:"coingecko"`
	Portfolio PortfolioAPIConfig `toml:"portfolio"`
}

// CoinGeckoConfig holds market-data API configuration
type CoinGeckoConfig struct {
	BaseURL    string `toml:"base_url"`
	MinDelay   string `toml:"min_delay"` // minimum spacing between outbound requests
	CacheTTL   string `toml:"cache_ttl"`
	Timeout    string `toml:"timeout"`
	MaxRetries int    `toml:"max_retries"`
}

// GetMinDelay parses and returns the minimum inter-request delay
func (c *CoinGeckoConfig) GetMinDelay() time.Duration {
	d, err := time.ParseDuration(c.MinDelay)
	if err != nil {
		return 1500 * time.Millisecond
	}
	return d
}

// GetCacheTTL parses and returns the response cache TTL
func (c *CoinGeckoConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// GetTimeout parses and returns the request timeout duration
func (c *CoinGeckoConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// PortfolioAPIConfig holds portfolio persistence API configuration
type PortfolioAPIConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the request timeout duration
func (c *PortfolioAPIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Currency:    "usd",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/portfolio",
		},
		Clients: ClientsConfig{
			CoinGecko: CoinGeckoConfig{
				BaseURL:    "https://api.coingecko.com/api/v3",
				MinDelay:   "1500ms",
				CacheTTL:   "5m",
				Timeout:    "10s",
				MaxRetries: 3,
			},
			Portfolio: PortfolioAPIConfig{
				BaseURL:   "http://localhost:3004",
				RateLimit: 5,
				Timeout:   "10s",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("COINFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("COINFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("COINFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("COINFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("COINFOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if currency := os.Getenv("COINFOLIO_CURRENCY"); currency != "" {
		config.Currency = currency
	}

	if u := os.Getenv("COINFOLIO_COINGECKO_URL"); u != "" {
		config.Clients.CoinGecko.BaseURL = u
	}

	if u := os.Getenv("COINFOLIO_PORTFOLIO_API_URL"); u != "" {
		config.Clients.Portfolio.BaseURL = u
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateCurrency normalizes the quote currency to lowercase, defaulting to "usd".
func validateCurrency(config *Config) {
	currency := strings.ToLower(strings.TrimSpace(config.Currency))
	if currency == "" {
		currency = "usd"
	}
	config.Currency = currency
}
