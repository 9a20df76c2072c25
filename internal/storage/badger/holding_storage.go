package badger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coinfolio/internal/common"
	"github.com/coinfolio/internal/interfaces"
	"github.com/coinfolio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// HoldingsKey is the single fixed key the holdings collection lives under.
const HoldingsKey = "crypto_portfolio"

// HoldingsBlob is the stored form: one serialized JSON array per key.
type HoldingsBlob struct {
	Key  string `badgerhold:"key"`
	Data []byte
}

type holdingStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHoldingStorage creates a HoldingStore backed by BadgerHold.
func NewHoldingStorage(store *Store, logger *common.Logger) interfaces.HoldingStore {
	return &holdingStorage{store: store, logger: logger}
}

// Load returns the stored holdings collection. Anything that prevents
// producing a valid collection -- missing key, read failure, corrupt
// JSON, non-array data -- degrades to an empty slice.
func (s *holdingStorage) Load(_ context.Context) []models.Holding {
	var blob HoldingsBlob
	err := s.store.db.Get(HoldingsKey, &blob)
	if err != nil {
		if err != badgerhold.ErrNotFound {
			s.logger.Warn().Err(err).Msg("Failed to read holdings from local store")
		}
		return []models.Holding{}
	}

	var holdings []models.Holding
	if err := json.Unmarshal(blob.Data, &holdings); err != nil {
		s.logger.Warn().Err(err).Msg("Corrupt holdings blob in local store, treating as empty")
		return []models.Holding{}
	}
	if holdings == nil {
		return []models.Holding{}
	}
	return holdings
}

// Save replaces the stored collection.
func (s *holdingStorage) Save(_ context.Context, holdings []models.Holding) error {
	data, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("failed to encode holdings: %w", err)
	}

	blob := HoldingsBlob{Key: HoldingsKey, Data: data}
	if err := s.store.db.Upsert(HoldingsKey, &blob); err != nil {
		return fmt.Errorf("failed to write holdings: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (s *holdingStorage) Close() error {
	return s.store.Close()
}
