// Package portfolioapi provides a client for the portfolio persistence API.
// The service is best-effort: its unavailability is an expected condition
// that callers recover from, not an error state.
package portfolioapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/coinfolio/internal/common"
	"github.com/coinfolio/internal/interfaces"
	"github.com/coinfolio/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:3004"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the PortfolioAPIClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new portfolio API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portfolio API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// do performs a rate-limited JSON request
func (c *Client) do(ctx context.Context, method, path string, payload, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("Portfolio API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetHoldings retrieves the full holdings collection. A body that does
// not decode as an array is an error.
func (c *Client) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := c.do(ctx, http.MethodGet, "/portfolio", nil, &holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

// GetHolding retrieves a single holding by id
func (c *Client) GetHolding(ctx context.Context, id string) (*models.Holding, error) {
	var holding models.Holding
	if err := c.do(ctx, http.MethodGet, "/portfolio/"+id, nil, &holding); err != nil {
		return nil, err
	}
	return &holding, nil
}

// CreateHolding creates a new holding and returns the stored record
func (c *Client) CreateHolding(ctx context.Context, holding models.Holding) (*models.Holding, error) {
	var created models.Holding
	if err := c.do(ctx, http.MethodPost, "/portfolio", holding, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateHolding applies a partial update and returns the updated record
func (c *Client) UpdateHolding(ctx context.Context, id string, update models.HoldingUpdate) (*models.Holding, error) {
	var updated models.Holding
	if err := c.do(ctx, http.MethodPatch, "/portfolio/"+id, update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteHolding deletes a holding by id
func (c *Client) DeleteHolding(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/portfolio/"+id, nil, nil)
}

// Ensure Client implements PortfolioAPIClient
var _ interfaces.PortfolioAPIClient = (*Client)(nil)
