package coingecko

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure.
type Kind string

const (
	// KindRateLimited is an upstream 429, surfaced after retries are exhausted.
	KindRateLimited Kind = "rate_limited"
	// KindNotFound is an upstream 404.
	KindNotFound Kind = "not_found"
	// KindNetworkUnavailable means no response was received at all.
	KindNetworkUnavailable Kind = "network_unavailable"
	// KindInvalidResponse is a 200 whose body failed a structural check.
	KindInvalidResponse Kind = "invalid_response"
	// KindUnknown covers everything else; the upstream message is passed through.
	KindUnknown Kind = "unknown"
)

// APIError represents a classified market-data API error
type APIError struct {
	Kind       Kind
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("CoinGecko API error: %s (%s, status: %d, endpoint: %s)", e.Message, e.Kind, e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("CoinGecko API error: %s (%s, endpoint: %s)", e.Message, e.Kind, e.Endpoint)
}

// classifyStatus maps a non-200 response to an APIError.
func classifyStatus(statusCode int, endpoint, body string) *APIError {
	kind := KindUnknown
	message := body
	switch statusCode {
	case http.StatusTooManyRequests:
		kind = KindRateLimited
		message = "rate limit exceeded"
	case http.StatusNotFound:
		kind = KindNotFound
		message = "resource not found"
	}
	return &APIError{
		Kind:       kind,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

func isKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsRateLimited reports whether err is an upstream rate-limit rejection.
func IsRateLimited(err error) bool { return isKind(err, KindRateLimited) }

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsNetworkUnavailable reports whether err means no response was received.
func IsNetworkUnavailable(err error) bool { return isKind(err, KindNetworkUnavailable) }

// IsInvalidResponse reports whether err is a malformed upstream body.
func IsInvalidResponse(err error) bool { return isKind(err, KindInvalidResponse) }
