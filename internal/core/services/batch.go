package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driving"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
)

// DefaultWorkers bounds concurrent token extractions. The constraint
// is the provider API rate limit and outbound bandwidth for large
// media files, not CPU.
const DefaultWorkers = 4

// Ensure Batch implements the interface.
var _ driving.BatchRunner = (*Batch)(nil)

// Batch extracts a stream of token references with a bounded worker
// pool. Each token is an independent, stateless unit; one token's
// failure never stops the rest.
type Batch struct {
	extractor driving.ExtractService
	workers   int
}

// NewBatch creates a batch runner. workers <= 0 falls back to
// DefaultWorkers.
func NewBatch(extractor driving.ExtractService, workers int) *Batch {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Batch{extractor: extractor, workers: workers}
}

// Run drains refs, extracting every token. Parse failures arriving on
// errs are counted as skipped rows; errs may be nil when the source
// cannot fail. Returns when the channels are closed or ctx is
// cancelled.
func (b *Batch) Run(ctx context.Context, refs <-chan domain.TokenRef, errs <-chan error) driving.BatchSummary {
	var processed, skipped, failed atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ref, ok := <-refs:
					if !ok {
						return
					}
					logger.Info("Processing %s", ref)
					manifest, err := b.extractor.Extract(ctx, ref)
					if err != nil {
						if !errors.Is(err, context.Canceled) {
							logger.Error("Failed to fetch metadata for %s: %v", ref, err)
						}
						failed.Add(1)
						continue
					}
					processed.Add(1)
					if n := manifest.FailureCount(); n > 0 {
						logger.Warn("%s: %d artifact(s) failed", ref, n)
					}
				}
			}
		}()
	}

	// Source-side parse failures are skips, not batch failures.
	if errs != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for err := range errs {
				if err != nil {
					logger.Warn("Skipping row: %v", err)
					skipped.Add(1)
				}
			}
		}()
	}

	wg.Wait()

	summary := driving.BatchSummary{
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	logger.Info("Summary: processed %d, skipped %d, failed %d",
		summary.Processed, summary.Skipped, summary.Failed)
	return summary
}
