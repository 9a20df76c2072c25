package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinfolio/internal/common"
	"github.com/coinfolio/internal/interfaces"
	"github.com/coinfolio/internal/models"
	"github.com/coinfolio/internal/storage/badger"
)

var errUnavailable = errors.New("connection refused")

// fakeRemote is a PortfolioAPIClient stand-in. With down set, every
// method fails the way an unreachable server would.
type fakeRemote struct {
	down     bool
	holdings []models.Holding
}

func (f *fakeRemote) GetHoldings(_ context.Context) ([]models.Holding, error) {
	if f.down {
		return nil, errUnavailable
	}
	return f.holdings, nil
}

func (f *fakeRemote) GetHolding(_ context.Context, id string) (*models.Holding, error) {
	if f.down {
		return nil, errUnavailable
	}
	for _, h := range f.holdings {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRemote) CreateHolding(_ context.Context, holding models.Holding) (*models.Holding, error) {
	if f.down {
		return nil, errUnavailable
	}
	f.holdings = append(f.holdings, holding)
	return &holding, nil
}

func (f *fakeRemote) UpdateHolding(_ context.Context, id string, update models.HoldingUpdate) (*models.Holding, error) {
	if f.down {
		return nil, errUnavailable
	}
	for i := range f.holdings {
		if f.holdings[i].ID == id {
			update.Apply(&f.holdings[i])
			return &f.holdings[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeRemote) DeleteHolding(_ context.Context, id string) error {
	if f.down {
		return errUnavailable
	}
	for i, h := range f.holdings {
		if h.ID == id {
			f.holdings = append(f.holdings[:i], f.holdings[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeMarket serves canned prices and counts lookups.
type fakeMarket struct {
	prices     models.SimplePrices
	err        error
	priceCalls int
}

func (f *fakeMarket) ListCoins(_ context.Context) ([]models.Coin, error) { return nil, nil }

func (f *fakeMarket) GetMarkets(_ context.Context, _ string, _, _ int, _ string) ([]models.MarketCoin, error) {
	return nil, nil
}

func (f *fakeMarket) GetCoinDetail(_ context.Context, _ string) (*models.CoinDetail, error) {
	return nil, nil
}

func (f *fakeMarket) GetMarketChart(_ context.Context, _, _, _ string) (*models.MarketChart, error) {
	return nil, nil
}

func (f *fakeMarket) GetSimplePrices(_ context.Context, ids, currencies []string) (models.SimplePrices, error) {
	f.priceCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

var (
	_ interfaces.PortfolioAPIClient = (*fakeRemote)(nil)
	_ interfaces.MarketDataClient   = (*fakeMarket)(nil)
)

func newTestService(t *testing.T, remote *fakeRemote, market *fakeMarket) *Service {
	t.Helper()

	logger := common.NewSilentLogger()
	store, err := badger.NewStore(logger, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewService(badger.NewHoldingStorage(store, logger), remote, market, "usd", logger)
}

func TestAdd_RemoteDown_SavesLocally(t *testing.T) {
	svc := newTestService(t, &fakeRemote{down: true}, &fakeMarket{})
	ctx := context.Background()

	created, err := svc.Add(ctx, models.Holding{
		CoinID:        "bitcoin",
		Name:          "Bitcoin",
		Symbol:        "btc",
		Amount:        2,
		PurchasePrice: 40000,
		PurchaseDate:  "2024-01-01",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	list := svc.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "bitcoin", list[0].CoinID)
}

func TestAdd_Invalid(t *testing.T) {
	svc := newTestService(t, &fakeRemote{}, &fakeMarket{})

	_, err := svc.Add(context.Background(), models.Holding{CoinID: "bitcoin", Amount: 0})
	assert.Error(t, err)
}

func TestList_PrefersRemoteAndMirrors(t *testing.T) {
	remote := &fakeRemote{holdings: []models.Holding{
		{ID: "h1", CoinID: "bitcoin", Amount: 1},
		{ID: "h2", CoinID: "ethereum", Amount: 3},
	}}
	svc := newTestService(t, remote, &fakeMarket{})
	ctx := context.Background()

	list := svc.List(ctx)
	require.Len(t, list, 2)

	// The remote result must survive in the mirror once the remote goes away.
	remote.down = true
	list = svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "h1", list[0].ID)
	assert.Equal(t, "h2", list[1].ID)
}

func TestGet_FallsBackToLocalScan(t *testing.T) {
	remote := &fakeRemote{holdings: []models.Holding{{ID: "h1", CoinID: "bitcoin", Amount: 1}}}
	svc := newTestService(t, remote, &fakeMarket{})
	ctx := context.Background()

	svc.List(ctx) // populate the mirror
	remote.down = true

	h, ok := svc.Get(ctx, "h1")
	require.True(t, ok)
	assert.Equal(t, "bitcoin", h.CoinID)

	_, ok = svc.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestUpdate_RemoteDown_MergesLocally(t *testing.T) {
	remote := &fakeRemote{holdings: []models.Holding{
		{ID: "h1", CoinID: "bitcoin", Amount: 1, PurchasePrice: 40000},
	}}
	svc := newTestService(t, remote, &fakeMarket{})
	ctx := context.Background()

	svc.List(ctx)
	remote.down = true

	amount := 5.0
	updated, err := svc.Update(ctx, "h1", models.HoldingUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Amount)
	assert.Equal(t, 40000.0, updated.PurchasePrice) // untouched field survives

	list := svc.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, 5.0, list[0].Amount)
}

func TestUpdate_RemoteDown_NotFound(t *testing.T) {
	svc := newTestService(t, &fakeRemote{down: true}, &fakeMarket{})

	amount := 5.0
	_, err := svc.Update(context.Background(), "missing", models.HoldingUpdate{Amount: &amount})
	assert.ErrorIs(t, err, models.ErrHoldingNotFound)
}

func TestRemove_Idempotent(t *testing.T) {
	remote := &fakeRemote{holdings: []models.Holding{{ID: "h1", CoinID: "bitcoin", Amount: 1}}}
	svc := newTestService(t, remote, &fakeMarket{})
	ctx := context.Background()

	svc.List(ctx)

	svc.Remove(ctx, "h1")
	assert.Empty(t, svc.List(ctx))

	// Removing an absent id is a no-op, remote up or down.
	remote.down = true
	svc.Remove(ctx, "h1")
	assert.Empty(t, svc.List(ctx))
}

func TestSyncWithPrices_ComputesValuations(t *testing.T) {
	remote := &fakeRemote{holdings: []models.Holding{
		{ID: "h1", CoinID: "bitcoin", Amount: 2, PurchasePrice: 40000},
	}}
	market := &fakeMarket{prices: models.SimplePrices{
		"bitcoin": {"usd": 50000},
	}}
	svc := newTestService(t, remote, market)

	enriched := svc.SyncWithPrices(context.Background())
	require.Len(t, enriched, 1)

	assert.Equal(t, 50000.0, enriched[0].CurrentPrice)
	assert.Equal(t, 100000.0, enriched[0].TotalValue)
	assert.Equal(t, 20000.0, enriched[0].Profit)
	assert.Equal(t, 25.0, enriched[0].ProfitPercentage)
	assert.Equal(t, 1, market.priceCalls)
}

func TestSyncWithPrices_EmptyPortfolioSkipsLookup(t *testing.T) {
	market := &fakeMarket{}
	svc := newTestService(t, &fakeRemote{}, market)

	enriched := svc.SyncWithPrices(context.Background())
	assert.NotNil(t, enriched)
	assert.Empty(t, enriched)
	assert.Equal(t, 0, market.priceCalls)
}

func TestSyncWithPrices_LookupFailureZeroesValuations(t *testing.T) {
	remote := &fakeRemote{holdings: []models.Holding{
		{ID: "h1", CoinID: "bitcoin", Amount: 2, PurchasePrice: 40000},
		{ID: "h2", CoinID: "ethereum", Amount: 10, PurchasePrice: 2000},
	}}
	market := &fakeMarket{err: errors.New("rate limited")}
	svc := newTestService(t, remote, market)

	enriched := svc.SyncWithPrices(context.Background())
	require.Len(t, enriched, 2)

	for _, e := range enriched {
		assert.Zero(t, e.CurrentPrice)
		assert.Zero(t, e.TotalValue)
		assert.Zero(t, e.Profit)
		assert.Zero(t, e.ProfitPercentage)
	}
	// Holding fields survive price degradation untouched.
	assert.Equal(t, "bitcoin", enriched[0].CoinID)
	assert.Equal(t, 2.0, enriched[0].Amount)
}

func TestSyncWithPrices_MissingCoinDefaultsToZero(t *testing.T) {
	remote := &fakeRemote{holdings: []models.Holding{
		{ID: "h1", CoinID: "bitcoin", Amount: 1, PurchasePrice: 100},
		{ID: "h2", CoinID: "obscurecoin", Amount: 1, PurchasePrice: 100},
	}}
	market := &fakeMarket{prices: models.SimplePrices{
		"bitcoin": {"usd": 50000},
	}}
	svc := newTestService(t, remote, market)

	enriched := svc.SyncWithPrices(context.Background())
	require.Len(t, enriched, 2)
	assert.Equal(t, 50000.0, enriched[0].CurrentPrice)
	assert.Zero(t, enriched[1].CurrentPrice)
	assert.Equal(t, -100.0, enriched[1].Profit)
	assert.Equal(t, -100.0, enriched[1].ProfitPercentage)
}
