package driving

import (
	"context"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

// ExtractService resolves one token into its artifact files.
type ExtractService interface {
	// Extract fetches the metadata for a token and materialises all
	// artifacts, returning the manifest. The error is non-nil only
	// when the metadata itself could not be fetched; per-artifact
	// failures are recorded inside the manifest.
	Extract(ctx context.Context, ref domain.TokenRef) (*domain.Manifest, error)

	// ResolveAndSave materialises artifacts for an already-fetched
	// metadata document. Never fails as a whole: every per-role
	// failure is captured in the returned manifest.
	ResolveAndSave(ctx context.Context, doc domain.MetadataDocument, ref domain.TokenRef) *domain.Manifest
}

// BatchSummary reports the outcome of a batch run.
type BatchSummary struct {
	// Processed is the number of tokens fully attempted.
	Processed int

	// Skipped is the number of source rows that yielded no token.
	Skipped int

	// Failed is the number of tokens whose metadata fetch failed.
	Failed int
}

// BatchRunner extracts a stream of tokens with a bounded worker pool.
type BatchRunner interface {
	// Run drains the references channel, extracting each token.
	// One token's total failure never stops subsequent tokens.
	Run(ctx context.Context, refs <-chan domain.TokenRef, errs <-chan error) BatchSummary
}
