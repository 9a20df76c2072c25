// Package portfolio implements the holdings repository: prefer-remote,
// fallback-local, mirror-on-success.
package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/coinfolio/internal/common"
	"github.com/coinfolio/internal/interfaces"
	"github.com/coinfolio/internal/models"
)

// Service implements PortfolioService
type Service struct {
	store    interfaces.HoldingStore
	remote   interfaces.PortfolioAPIClient
	market   interfaces.MarketDataClient
	currency string
	logger   *common.Logger
}

// NewService creates a new portfolio service. currency is the quote
// currency used for valuations.
func NewService(
	store interfaces.HoldingStore,
	remote interfaces.PortfolioAPIClient,
	market interfaces.MarketDataClient,
	currency string,
	logger *common.Logger,
) *Service {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		store:    store,
		remote:   remote,
		market:   market,
		currency: currency,
		logger:   logger,
	}
}

// mirror overwrites the local store with the given collection. Write
// failures are deliberately swallowed: persistence must never crash an
// operation that already has a usable in-memory result.
func (s *Service) mirror(ctx context.Context, holdings []models.Holding) {
	if err := s.store.Save(ctx, holdings); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write holdings to local store")
	}
}

// List returns all holdings. The remote API is the source of truth when
// reachable: its result overwrites the local mirror. On any remote
// failure the local mirror is returned unmodified.
func (s *Service) List(ctx context.Context) []models.Holding {
	holdings, err := s.remote.GetHoldings(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Portfolio API unavailable, using local store")
		return s.store.Load(ctx)
	}

	s.mirror(ctx, holdings)
	if holdings == nil {
		holdings = []models.Holding{}
	}
	return holdings
}

// Get returns one holding by id, falling back to a scan of the local
// store. Not found is reported as absent, not as an error.
func (s *Service) Get(ctx context.Context, id string) (*models.Holding, bool) {
	holding, err := s.remote.GetHolding(ctx, id)
	if err == nil {
		return holding, true
	}

	s.logger.Warn().Err(err).Str("id", id).Msg("Portfolio API unavailable, scanning local store")
	for _, h := range s.store.Load(ctx) {
		if h.ID == id {
			return &h, true
		}
	}
	return nil, false
}

// Add creates a holding. The id is assigned locally up front so the
// record is identifiable even if the remote write fails; either path
// returns a record with a usable id.
func (s *Service) Add(ctx context.Context, holding models.Holding) (*models.Holding, error) {
	if err := holding.Validate(); err != nil {
		return nil, fmt.Errorf("invalid holding: %w", err)
	}
	holding.ID = uuid.New().String()

	created, err := s.remote.CreateHolding(ctx, holding)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Portfolio API unavailable, saving holding locally")
		local := append(s.store.Load(ctx), holding)
		s.mirror(ctx, local)
		return &holding, nil
	}

	local := append(s.store.Load(ctx), *created)
	s.mirror(ctx, local)

	s.logger.Info().Str("id", created.ID).Str("coin", created.CoinID).Msg("Holding added")
	return created, nil
}

// Update applies a partial update. On remote success the returned
// record replaces the local copy; on remote failure the submitted
// fields are merged into the local record directly. An id missing from
// the local store on the failure path is an error.
func (s *Service) Update(ctx context.Context, id string, update models.HoldingUpdate) (*models.Holding, error) {
	updated, err := s.remote.UpdateHolding(ctx, id, update)
	if err == nil {
		local := s.store.Load(ctx)
		for i := range local {
			if local[i].ID == id {
				local[i] = *updated
				s.mirror(ctx, local)
				break
			}
		}
		return updated, nil
	}

	s.logger.Warn().Err(err).Str("id", id).Msg("Portfolio API unavailable, updating local store")

	local := s.store.Load(ctx)
	for i := range local {
		if local[i].ID == id {
			update.Apply(&local[i])
			merged := local[i]
			s.mirror(ctx, local)
			return &merged, nil
		}
	}
	return nil, models.ErrHoldingNotFound
}

// Remove deletes a holding. The remote outcome is ignored: delete is
// idempotent and always locally honored.
func (s *Service) Remove(ctx context.Context, id string) {
	if err := s.remote.DeleteHolding(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("Portfolio API unavailable, deleting locally only")
	}

	local := s.store.Load(ctx)
	filtered := local[:0]
	for _, h := range local {
		if h.ID != id {
			filtered = append(filtered, h)
		}
	}
	s.mirror(ctx, filtered)
}

// SyncWithPrices joins holdings with live prices and computes derived
// valuations. It always returns a result: a failed price lookup
// degrades every item to zeroed valuations instead of failing.
func (s *Service) SyncWithPrices(ctx context.Context) []models.EnrichedHolding {
	holdings := s.List(ctx)
	enriched := make([]models.EnrichedHolding, 0, len(holdings))
	if len(holdings) == 0 {
		return enriched
	}

	coinIDs := models.DistinctCoinIDs(holdings)
	prices, err := s.market.GetSimplePrices(ctx, coinIDs, []string{s.currency})
	if err != nil {
		s.logger.Error().Err(err).Msg("Price lookup failed, returning zeroed valuations")
		for _, h := range holdings {
			enriched = append(enriched, models.EnrichedHolding{Holding: h})
		}
		return enriched
	}

	for _, h := range holdings {
		enriched = append(enriched, models.Enrich(h, prices.Price(h.CoinID, s.currency)))
	}
	return enriched
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
