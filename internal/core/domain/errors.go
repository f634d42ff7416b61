package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates the provider API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates the metadata provider failed in an
	// unclassified way (5xx, malformed response, network failure).
	ErrUpstream = errors.New("upstream provider error")

	// ErrAPIKeyMissing indicates no provider API key is configured.
	ErrAPIKeyMissing = errors.New("API key not configured")

	// ErrUnsupportedReference indicates a token reference could not be
	// parsed from any of the recognised URL formats.
	ErrUnsupportedReference = errors.New("unsupported token reference format")
)
