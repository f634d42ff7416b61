package alchemy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
)

const (
	// DefaultBaseURL is the Alchemy NFT API v2 endpoint for mainnet.
	DefaultBaseURL = "https://eth-mainnet.g.alchemy.com/nft/v2"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Ensure Client implements the fetcher port.
var _ driven.MetadataFetcher = (*Client)(nil)

// Config configures the Alchemy client.
type Config struct {
	// APIKey is the Alchemy API key. Required.
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	// Useful for testing and for other networks.
	BaseURL string

	// Timeout bounds each metadata request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client fetches token metadata from the Alchemy NFT API.
type Client struct {
	cfg         Config
	http        *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates an Alchemy API client.
// Returns domain.ErrAPIKeyMissing when no key is configured.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrAPIKeyMissing
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(),
	}, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// FetchMetadata retrieves the metadata document for one token via
// getNFTMetadata. The provider cache is used as-is (refreshCache=false).
func (c *Client) FetchMetadata(ctx context.Context, ref domain.TokenRef) (domain.MetadataDocument, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/getNFTMetadata?%s", c.cfg.BaseURL, c.cfg.APIKey, url.Values{
		"contractAddress": {ref.ContractAddress},
		"tokenId":         {ref.TokenID},
		"refreshCache":    {"false"},
	}.Encode())

	logger.Debug("Fetching metadata for %s", ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.wrapStatus(resp)
	}

	var doc domain.MetadataDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode metadata: %w", domain.ErrUpstream, err)
	}
	return doc, nil
}

// Validate checks that the configured API key is accepted by the
// provider. It fetches metadata for a well-known token; a not-found
// answer still proves the key works.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.FetchMetadata(ctx, domain.TokenRef{
		// CryptoPunks, the oldest widely-indexed collection.
		ContractAddress: "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb",
		TokenID:         "1",
	})
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// wrapStatus converts a non-200 response into a typed APIError. The
// response body is sampled for the message; Alchemy returns plain-text
// errors for bad keys and JSON errors otherwise. The API key is masked
// out of the reported URL since it is part of the request path.
func (c *Client) wrapStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	u := *resp.Request.URL
	u.Path = strings.Replace(u.Path, c.cfg.APIKey, "***", 1)
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
		URL:        u.String(),
	}
}
