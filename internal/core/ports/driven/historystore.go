package driven

import (
	"context"
	"time"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

// Run is one recorded extraction with its manifest.
type Run struct {
	// ID is the unique run identifier.
	ID string

	// Token is the extracted token reference.
	Token domain.TokenRef

	// BaseName is the filename stem shared by the run's artifacts.
	BaseName string

	// StartedAt is when the extraction began.
	StartedAt time.Time

	// Artifacts are the manifest entries, in write order.
	Artifacts []domain.Artifact
}

// HistoryStore persists extraction runs and their manifests.
type HistoryStore interface {
	// SaveRun records a completed extraction and its manifest.
	SaveRun(ctx context.Context, run Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Close releases resources.
	Close() error
}
