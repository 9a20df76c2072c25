// Package interfaces defines service contracts for Coinfolio
package interfaces

import (
	"context"

	"github.com/coinfolio/internal/models"
)

// MarketDataClient provides access to the market-data API. Failures are
// always surfaced classified; no fallback data is synthesized.
type MarketDataClient interface {
	// ListCoins retrieves all known coins (id, name, symbol)
	ListCoins(ctx context.Context) ([]models.Coin, error)

	// GetMarkets retrieves one page of the market snapshot
	GetMarkets(ctx context.Context, currency string, page, perPage int, order string) ([]models.MarketCoin, error)

	// GetCoinDetail retrieves per-coin detail without localization or tickers
	GetCoinDetail(ctx context.Context, id string) (*models.CoinDetail, error)

	// GetMarketChart retrieves price history over a day-count window
	GetMarketChart(ctx context.Context, id, days, currency string) (*models.MarketChart, error)

	// GetSimplePrices retrieves current prices for a set of coin ids
	GetSimplePrices(ctx context.Context, ids, currencies []string) (models.SimplePrices, error)
}

// PortfolioAPIClient provides access to the remote portfolio persistence
// API. The service is optional; every method may fail and callers are
// expected to fall back to local storage.
type PortfolioAPIClient interface {
	// GetHoldings retrieves the full holdings collection
	GetHoldings(ctx context.Context) ([]models.Holding, error)

	// GetHolding retrieves a single holding by id
	GetHolding(ctx context.Context, id string) (*models.Holding, error)

	// CreateHolding creates a new holding and returns the stored record
	CreateHolding(ctx context.Context, holding models.Holding) (*models.Holding, error)

	// UpdateHolding applies a partial update and returns the updated record
	UpdateHolding(ctx context.Context, id string, update models.HoldingUpdate) (*models.Holding, error)

	// DeleteHolding deletes a holding by id
	DeleteHolding(ctx context.Context, id string) error
}
