// Package app wires configuration, storage, clients, and services into
// a runnable Coinfolio instance.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/coinfolio/internal/clients/coingecko"
	"github.com/coinfolio/internal/clients/portfolioapi"
	"github.com/coinfolio/internal/common"
	"github.com/coinfolio/internal/interfaces"
	"github.com/coinfolio/internal/server"
	"github.com/coinfolio/internal/services/portfolio"
	"github.com/coinfolio/internal/storage/badger"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	HoldingStore     interfaces.HoldingStore
	MarketClient     interfaces.MarketDataClient
	PortfolioClient  interfaces.PortfolioAPIClient
	PortfolioService interfaces.PortfolioService
	Handler          http.Handler
	StartupTime      time.Time
}

// NewApp initializes storage, clients, services, and the HTTP handler.
// configPath may be empty, in which case defaults and environment
// overrides apply.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	holdingStore := badger.NewHoldingStorage(store, logger)

	marketClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithLogger(logger),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
		coingecko.WithMinDelay(config.Clients.CoinGecko.GetMinDelay()),
		coingecko.WithCacheTTL(config.Clients.CoinGecko.GetCacheTTL()),
		coingecko.WithRetryPolicy(config.Clients.CoinGecko.MaxRetries, time.Second),
	)

	portfolioClient := portfolioapi.NewClient(
		portfolioapi.WithBaseURL(config.Clients.Portfolio.BaseURL),
		portfolioapi.WithLogger(logger),
		portfolioapi.WithRateLimit(config.Clients.Portfolio.RateLimit),
		portfolioapi.WithTimeout(config.Clients.Portfolio.GetTimeout()),
	)

	portfolioService := portfolio.NewService(holdingStore, portfolioClient, marketClient, config.Currency, logger)

	handler := server.NewHandler(portfolioService, marketClient, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		HoldingStore:     holdingStore,
		MarketClient:     marketClient,
		PortfolioClient:  portfolioClient,
		PortfolioService: portfolioService,
		Handler:          server.NewRouter(handler, logger),
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.HoldingStore != nil {
		if err := a.HoldingStore.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close local store")
		}
		a.HoldingStore = nil
	}
}
