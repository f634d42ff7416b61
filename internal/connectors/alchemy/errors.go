package alchemy

import (
	"errors"
	"fmt"
	"time"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

// RateLimitError represents a rate limit exceeded error with retry time.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("alchemy: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// Is maps the typed error onto the domain sentinel so callers outside
// the connector can match with errors.Is(err, domain.ErrRateLimited).
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// APIError represents an Alchemy API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alchemy: API error %d: %s", e.StatusCode, e.Message)
}

// Is maps HTTP status classes onto domain sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == 404
	case domain.ErrUpstream:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// IsNotFound checks if the error indicates the token was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}
