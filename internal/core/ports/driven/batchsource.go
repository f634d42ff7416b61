package driven

import (
	"context"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

// BatchSource produces token references from an upstream listing
// (a spreadsheet, a dropped file, an id range). The core is invoked
// once per reference; a source never fails the batch as a whole.
type BatchSource interface {
	// Tokens streams references on the returned channel. Rows that
	// cannot be parsed are reported on the error channel and skipped.
	// Both channels close when the source is exhausted or ctx is done.
	Tokens(ctx context.Context) (<-chan domain.TokenRef, <-chan error)
}
