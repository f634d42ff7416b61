package services

import (
	"context"
	"sync"
	"time"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driving"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
	"github.com/steve-blackdove/nft-extractor/internal/media"
)

// Ensure Extractor implements the interface.
var _ driving.ExtractService = (*Extractor)(nil)

// ExtractOptions configures one Extractor.
type ExtractOptions struct {
	// DownloadThumbnails enables the thumbnail role. Default true at
	// the config layer.
	DownloadThumbnails bool

	// DuplicatePolicy is the thumbnail-vs-primary comparison rule.
	DuplicatePolicy media.DuplicatePolicy
}

// Extractor coordinates producing all artifacts for one token:
// name computation, media selection, downloads and metadata writes.
type Extractor struct {
	fetcher driven.MetadataFetcher
	writer  driven.ArtifactWriter
	history driven.HistoryStore // optional
	opts    ExtractOptions
}

// NewExtractor creates the extraction orchestrator.
// The history store is optional; pass nil to skip run recording.
func NewExtractor(
	fetcher driven.MetadataFetcher,
	writer driven.ArtifactWriter,
	history driven.HistoryStore,
	opts ExtractOptions,
) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		writer:  writer,
		history: history,
		opts:    opts,
	}
}

// Extract fetches metadata for a token and materialises its artifacts.
func (e *Extractor) Extract(ctx context.Context, ref domain.TokenRef) (*domain.Manifest, error) {
	doc, err := e.fetcher.FetchMetadata(ctx, ref)
	if err != nil {
		return nil, err
	}
	return e.ResolveAndSave(ctx, doc, ref), nil
}

// ResolveAndSave materialises all artifacts for an already-fetched
// document. Best-effort throughout: a failed role is recorded in the
// manifest and never prevents the other roles.
//
// The four writes (primary, thumbnail, simplified JSON, full JSON)
// have no ordering dependency and run concurrently; only the base
// name computation precedes them.
func (e *Extractor) ResolveAndSave(ctx context.Context, doc domain.MetadataDocument, ref domain.TokenRef) *domain.Manifest {
	startedAt := time.Now()
	baseName := e.baseName(doc, ref)
	logger.Debug("Using base filename: %s", baseName)

	selection := media.Select(doc, media.SelectOptions{
		DownloadThumbnails: e.opts.DownloadThumbnails,
		Policy:             e.opts.DuplicatePolicy,
	})

	// Fixed slots keep the manifest order deterministic regardless of
	// which goroutine finishes first.
	var (
		wg    sync.WaitGroup
		slots [4]*domain.Artifact
	)

	run := func(slot int, fn func() (domain.Artifact, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			art, err := fn()
			art.Err = err
			slots[slot] = &art
		}()
	}

	if selection.Primary != nil {
		resolved := resolveMedia(*selection.Primary, domain.RolePrimary)
		run(0, func() (domain.Artifact, error) {
			return e.writer.Download(ctx, baseName, resolved.Extension, resolved.Role, resolved.URL)
		})
	}
	if selection.Thumbnail != nil {
		resolved := resolveMedia(*selection.Thumbnail, domain.RoleThumbnail)
		run(1, func() (domain.Artifact, error) {
			return e.writer.Download(ctx, baseName, resolved.Extension, resolved.Role, resolved.URL)
		})
	}
	run(2, func() (domain.Artifact, error) {
		return e.writer.WriteJSON(baseName, domain.RoleMetadata, doc.Simplify())
	})
	run(3, func() (domain.Artifact, error) {
		return e.writer.WriteJSON(baseName, domain.RoleTokenMetadata, doc)
	})

	wg.Wait()

	manifest := &domain.Manifest{Token: ref, BaseName: baseName}
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		if slot.Err != nil {
			logger.Error("Failed to write %s for %s: %v", slot.Role, ref, slot.Err)
		}
		manifest.Add(*slot)
	}

	e.record(ctx, manifest, startedAt)
	return manifest
}

// baseName computes the shared filename stem: the token's display name
// when present, the top-level title otherwise, and a synthesized
// "token-{id}" as the last resort.
func (e *Extractor) baseName(doc domain.MetadataDocument, ref domain.TokenRef) string {
	if name := media.Sanitize(doc.GetString("metadata", "name")); name != "" {
		return name
	}
	if name := media.Sanitize(doc.GetString("title")); name != "" {
		return name
	}
	return "token-" + ref.TokenID
}

// resolveMedia fixes a selected candidate's download URL and file
// extension for the given role.
func resolveMedia(c domain.MediaCandidate, role domain.Role) domain.ResolvedMedia {
	return domain.ResolvedMedia{
		URL:       c.Location(),
		Extension: media.ResolveExtension(c.Location(), c.MIMEHint),
		Role:      role,
	}
}

// record saves the run to the history store, when one is configured.
// History failures are logged, never surfaced.
func (e *Extractor) record(ctx context.Context, manifest *domain.Manifest, startedAt time.Time) {
	if e.history == nil {
		return
	}
	run := driven.Run{
		Token:     manifest.Token,
		BaseName:  manifest.BaseName,
		StartedAt: startedAt,
		Artifacts: manifest.Artifacts,
	}
	if err := e.history.SaveRun(ctx, run); err != nil {
		logger.Warn("Failed to record run for %s: %v", manifest.Token, err)
	}
}
