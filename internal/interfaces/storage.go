package interfaces

import (
	"context"

	"github.com/coinfolio/internal/models"
)

// HoldingStore persists the holdings collection locally, surviving
// process restarts. It is the mirror and fallback for the remote
// portfolio API.
type HoldingStore interface {
	// Load returns the stored collection. Missing, corrupt, or
	// non-array data degrades to an empty collection; Load never fails.
	Load(ctx context.Context) []models.Holding

	// Save replaces the stored collection. The error is returned so the
	// caller can decide to swallow it.
	Save(ctx context.Context, holdings []models.Holding) error

	// Close releases the underlying database.
	Close() error
}
