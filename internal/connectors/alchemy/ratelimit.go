package alchemy

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the sustained request rate. Alchemy meters by
	// compute units; this stays well under the free-tier budget.
	ProactiveRate = 5.0

	// BurstSize is the maximum burst size.
	BurstSize = 10

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter implements dual-strategy rate limiting for the Alchemy
// API: a proactive token bucket plus a reactive hold-off taken from
// 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter with proactive throttling.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), BurstSize),
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}
	return nil
}

// CheckRateLimit inspects a response for rate limiting. Returns a
// RateLimitError on 429, nil otherwise.
func (r *RateLimiter) CheckRateLimit(resp *http.Response) error {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	retryAt := time.Now().Add(time.Second)
	if after := resp.Header.Get(HeaderRetryAfter); after != "" {
		if seconds, err := strconv.Atoi(after); err == nil {
			retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}

	r.mu.Lock()
	r.retryAt = retryAt
	r.mu.Unlock()

	return &RateLimitError{RetryAt: retryAt}
}

// RetryAt returns the current hold-off deadline.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}
