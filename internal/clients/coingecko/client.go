// Package coingecko provides a client for the CoinGecko API
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/coinfolio/internal/common"
	"github.com/coinfolio/internal/interfaces"
	"github.com/coinfolio/internal/models"
)

const (
	DefaultBaseURL    = "https://api.coingecko.com/api/v3"
	DefaultTimeout    = 10 * time.Second
	DefaultMinDelay   = 1500 * time.Millisecond // stays within the ~40 req/min free-tier limit
	DefaultCacheTTL   = 5 * time.Minute
	DefaultMaxRetries = 3

	initialRetryDelay = time.Second
)

// Client implements the MarketDataClient interface. All outbound
// requests pass through a shared throttle; cacheable responses are kept
// in a shared TTL cache. The client never synthesizes fallback data --
// failures are surfaced classified.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	throttle   *Throttle
	cache      *responseCache
	maxRetries int
	retryDelay time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMinDelay sets the minimum spacing between outbound requests
func WithMinDelay(minDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.throttle = NewThrottle(minDelay)
	}
}

// WithCacheTTL sets the response cache validity window
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = newResponseCache(ttl)
	}
}

// WithRetryPolicy sets the rate-limit retry count and initial backoff delay.
// The delay doubles on each retry.
func WithRetryPolicy(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = initialDelay
	}
}

// NewClient creates a new CoinGecko client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:     common.NewSilentLogger(),
		throttle:   NewThrottle(DefaultMinDelay),
		cache:      newResponseCache(DefaultCacheTTL),
		maxRetries: DefaultMaxRetries,
		retryDelay: initialRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a throttled GET request with bounded retry on rate-limit
// rejection. The attempt counter is local to this one logical call;
// every retried attempt passes back through the throttle.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	delay := c.retryDelay
	for attempt := 0; ; attempt++ {
		err := c.do(ctx, reqURL, path, result)
		if err == nil {
			return nil
		}
		if !IsRateLimited(err) || attempt >= c.maxRetries {
			return err
		}

		c.logger.Warn().
			Str("endpoint", path).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("CoinGecko rate limit hit, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		delay *= 2
	}
}

// do performs a single throttled attempt.
func (c *Client) do(ctx context.Context, reqURL, endpoint string, result interface{}) error {
	if err := c.throttle.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("endpoint", endpoint).Msg("CoinGecko API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &APIError{Kind: KindNetworkUnavailable, Endpoint: endpoint, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return classifyStatus(resp.StatusCode, endpoint, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &APIError{Kind: KindInvalidResponse, StatusCode: resp.StatusCode, Endpoint: endpoint, Message: err.Error()}
	}

	return nil
}

// setCache stores a fetched value unless the call was canceled; a
// canceled operation must not populate the cache.
func (c *Client) setCache(ctx context.Context, key string, value interface{}) {
	if ctx.Err() != nil {
		return
	}
	c.cache.set(key, value)
}

// ListCoins retrieves all known coins (id, name, symbol).
func (c *Client) ListCoins(ctx context.Context) ([]models.Coin, error) {
	const cacheKey = "all_coins"
	if v, ok := c.cache.get(cacheKey); ok {
		return v.([]models.Coin), nil
	}

	var coins []models.Coin
	if err := c.get(ctx, "/coins/list", nil, &coins); err != nil {
		return nil, err
	}

	c.setCache(ctx, cacheKey, coins)
	return coins, nil
}

// GetMarkets retrieves one page of the market snapshot.
func (c *Client) GetMarkets(ctx context.Context, currency string, page, perPage int, order string) ([]models.MarketCoin, error) {
	if currency == "" {
		currency = "usd"
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if order == "" {
		order = "market_cap_desc"
	}

	cacheKey := fmt.Sprintf("markets_%s_%d_%d_%s", currency, page, perPage, order)
	if v, ok := c.cache.get(cacheKey); ok {
		return v.([]models.MarketCoin), nil
	}

	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("order", order)
	params.Set("sparkline", "false")

	var coins []models.MarketCoin
	if err := c.get(ctx, "/coins/markets", params, &coins); err != nil {
		return nil, err
	}

	c.setCache(ctx, cacheKey, coins)
	return coins, nil
}

// GetCoinDetail retrieves per-coin detail without localization or tickers.
func (c *Client) GetCoinDetail(ctx context.Context, id string) (*models.CoinDetail, error) {
	cacheKey := "detail_" + id
	if v, ok := c.cache.get(cacheKey); ok {
		return v.(*models.CoinDetail), nil
	}

	params := url.Values{}
	params.Set("market_data", "true")
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	params.Set("sparkline", "false")

	var detail models.CoinDetail
	if err := c.get(ctx, "/coins/"+url.PathEscape(id), params, &detail); err != nil {
		return nil, err
	}

	c.setCache(ctx, cacheKey, &detail)
	return &detail, nil
}

// GetMarketChart retrieves price history for a coin over a day-count
// window ("1", "7", "30", "90", "365" or "max"). Results are not cached:
// the id/days/currency key space grows combinatorially.
func (c *Client) GetMarketChart(ctx context.Context, id, days, currency string) (*models.MarketChart, error) {
	if days == "" {
		days = "7"
	}
	if currency == "" {
		currency = "usd"
	}

	params := url.Values{}
	params.Set("vs_currency", currency)
	params.Set("days", days)

	var chart models.MarketChart
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", params, &chart); err != nil {
		return nil, err
	}

	return &chart, nil
}

// GetSimplePrices retrieves current prices for a set of coin ids in a
// set of quote currencies. Both lists are sorted before the request and
// the cache key are built, so call order does not fragment the cache.
func (c *Client) GetSimplePrices(ctx context.Context, ids, currencies []string) (models.SimplePrices, error) {
	if len(ids) == 0 {
		return models.SimplePrices{}, nil
	}
	if len(currencies) == 0 {
		currencies = []string{"usd"}
	}

	sortedIDs := append([]string(nil), ids...)
	sort.Strings(sortedIDs)
	sortedCurrencies := append([]string(nil), currencies...)
	sort.Strings(sortedCurrencies)

	cacheKey := "prices_" + strings.Join(sortedIDs, "_") + "_" + strings.Join(sortedCurrencies, "_")
	if v, ok := c.cache.get(cacheKey); ok {
		return v.(models.SimplePrices), nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(sortedIDs, ","))
	params.Set("vs_currencies", strings.Join(sortedCurrencies, ","))

	var prices models.SimplePrices
	if err := c.get(ctx, "/simple/price", params, &prices); err != nil {
		return nil, err
	}

	c.setCache(ctx, cacheKey, prices)
	return prices, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
