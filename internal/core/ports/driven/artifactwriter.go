package driven

import (
	"context"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

// ArtifactWriter materialises artifacts under a shared base name.
// The concrete implementation lives in internal/artifact.
type ArtifactWriter interface {
	// Download fetches media bytes into "{baseName}.{ext}". An
	// existing destination skips the fetch and reports its size.
	Download(ctx context.Context, baseName, ext string, role domain.Role, url string) (domain.Artifact, error)

	// WriteJSON serialises value into the role's metadata file,
	// atomically and with stable key order.
	WriteJSON(baseName string, role domain.Role, value any) (domain.Artifact, error)

	// Dir returns the output root.
	Dir() string
}
