package driven

import (
	"context"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

// MetadataFetcher retrieves the provider metadata document for one
// token. Implementations handle authentication, rate limiting and
// retries behind this interface; the core treats any failure as opaque
// for the affected token and does not retry.
type MetadataFetcher interface {
	// FetchMetadata returns the metadata document for a token.
	// Failures map onto domain.ErrNotFound, domain.ErrRateLimited or
	// domain.ErrUpstream via errors.Is.
	FetchMetadata(ctx context.Context, ref domain.TokenRef) (domain.MetadataDocument, error)
}
