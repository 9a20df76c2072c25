package interfaces

import (
	"context"

	"github.com/coinfolio/internal/models"
)

// PortfolioService manages holdings with a prefer-remote,
// fallback-local, mirror-on-success protocol.
type PortfolioService interface {
	// List returns all holdings, preferring the remote API and falling
	// back to the local mirror. It never fails.
	List(ctx context.Context) []models.Holding

	// Get returns one holding by id, or false if absent both remotely
	// and locally.
	Get(ctx context.Context, id string) (*models.Holding, bool)

	// Add creates a holding. The returned record always carries a
	// usable id, whether or not the remote API was reachable.
	Add(ctx context.Context, holding models.Holding) (*models.Holding, error)

	// Update applies a partial update. When both the remote API and the
	// local store miss the id, models.ErrHoldingNotFound is returned.
	Update(ctx context.Context, id string, update models.HoldingUpdate) (*models.Holding, error)

	// Remove deletes a holding. Idempotent and always locally honored.
	Remove(ctx context.Context, id string)

	// SyncWithPrices joins holdings with live prices. It never fails:
	// when the price lookup fails, valuations degrade to zero.
	SyncWithPrices(ctx context.Context) []models.EnrichedHolding
}
