package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve-blackdove/nft-extractor/internal/artifact"
	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
	"github.com/steve-blackdove/nft-extractor/internal/media"
)

// stubFetcher returns a fixed document or error.
type stubFetcher struct {
	doc domain.MetadataDocument
	err error
}

func (s *stubFetcher) FetchMetadata(_ context.Context, _ domain.TokenRef) (domain.MetadataDocument, error) {
	return s.doc, s.err
}

// recordingHistory captures saved runs.
type recordingHistory struct {
	runs []driven.Run
	err  error
}

func (r *recordingHistory) SaveRun(_ context.Context, run driven.Run) error {
	if r.err != nil {
		return r.err
	}
	r.runs = append(r.runs, run)
	return nil
}

func (r *recordingHistory) ListRuns(_ context.Context, _ int) ([]driven.Run, error) {
	return r.runs, nil
}

func (r *recordingHistory) Close() error { return nil }

func defaultOpts() ExtractOptions {
	return ExtractOptions{DownloadThumbnails: true, DuplicatePolicy: media.DuplicateContains}
}

func mediaServer(t *testing.T, downloads *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if downloads != nil {
			downloads.Add(1)
		}
		switch r.URL.Path {
		case "/full.mp4":
			_, _ = w.Write([]byte("full-resolution-video"))
		case "/thumb.jpg":
			_, _ = w.Write([]byte("thumbnail"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func fullDoc(serverURL string) domain.MetadataDocument {
	return domain.MetadataDocument{
		"title": "Fallback Title",
		"metadata": map[string]any{
			"name":        "Garden of Forking Paths",
			"description": "A video piece",
			"media": map[string]any{
				"uri":      serverURL + "/full.mp4",
				"mimeType": "video/mp4",
			},
		},
		"media": []any{
			map[string]any{
				"raw":     "ipfs://QmThumb",
				"gateway": serverURL + "/thumb.jpg",
				"format":  "jpeg",
			},
		},
	}
}

func TestExtractor_ResolveAndSave(t *testing.T) {
	ref := domain.TokenRef{ContractAddress: "0xabc", TokenID: "42"}

	t.Run("writes all four artifacts for a complete document", func(t *testing.T) {
		server := mediaServer(t, nil)
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		e := NewExtractor(nil, writer, nil, defaultOpts())

		manifest := e.ResolveAndSave(context.Background(), fullDoc(server.URL), ref)

		require.Len(t, manifest.Artifacts, 4)
		assert.Equal(t, 0, manifest.FailureCount())
		assert.Equal(t, "Garden-of-Forking-Paths", manifest.BaseName)

		for _, name := range []string{
			"Garden-of-Forking-Paths.mp4",
			"Garden-of-Forking-Paths.jpg",
			"Garden-of-Forking-Paths.json",
			"Garden-of-Forking-Paths-token.json",
		} {
			_, err := os.Stat(filepath.Join(writer.Dir(), name))
			assert.NoError(t, err, "expected %s", name)
		}
	})

	t.Run("document without media still writes both JSON files", func(t *testing.T) {
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		e := NewExtractor(nil, writer, nil, defaultOpts())
		doc := domain.MetadataDocument{"metadata": map[string]any{"name": "Bare"}}

		manifest := e.ResolveAndSave(context.Background(), doc, ref)

		require.Len(t, manifest.Artifacts, 2)
		assert.Nil(t, manifest.ByRole(domain.RolePrimary))
		assert.Nil(t, manifest.ByRole(domain.RoleThumbnail))
		assert.NotNil(t, manifest.ByRole(domain.RoleMetadata))
		assert.NotNil(t, manifest.ByRole(domain.RoleTokenMetadata))
		assert.Equal(t, 0, manifest.FailureCount())
	})

	t.Run("failed primary download does not block metadata writes", func(t *testing.T) {
		server := mediaServer(t, nil)
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		e := NewExtractor(nil, writer, nil, ExtractOptions{DownloadThumbnails: false})

		doc := domain.MetadataDocument{
			"metadata": map[string]any{
				"name":  "Broken",
				"media": map[string]any{"uri": server.URL + "/missing.mp4"},
			},
		}

		manifest := e.ResolveAndSave(context.Background(), doc, ref)

		primary := manifest.ByRole(domain.RolePrimary)
		require.NotNil(t, primary)
		assert.True(t, primary.Failed())

		var dlErr *artifact.DownloadError
		require.ErrorAs(t, primary.Err, &dlErr)
		assert.Equal(t, http.StatusNotFound, dlErr.StatusCode)

		_, err := os.Stat(filepath.Join(writer.Dir(), "Broken.json"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(writer.Dir(), "Broken-token.json"))
		assert.NoError(t, err)
	})

	t.Run("rerun downloads nothing and rewrites JSON byte-identically", func(t *testing.T) {
		var downloads atomic.Int32
		server := mediaServer(t, &downloads)
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		e := NewExtractor(nil, writer, nil, defaultOpts())
		doc := fullDoc(server.URL)

		first := e.ResolveAndSave(context.Background(), doc, ref)
		require.Equal(t, 0, first.FailureCount())
		require.Equal(t, int32(2), downloads.Load())

		jsonPath := filepath.Join(writer.Dir(), "Garden-of-Forking-Paths-token.json")
		before, err := os.ReadFile(jsonPath)
		require.NoError(t, err)

		second := e.ResolveAndSave(context.Background(), doc, ref)

		assert.Equal(t, int32(2), downloads.Load(), "rerun must not re-download binaries")
		assert.True(t, second.ByRole(domain.RolePrimary).Skipped)
		assert.True(t, second.ByRole(domain.RoleThumbnail).Skipped)

		after, err := os.ReadFile(jsonPath)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("duplicate thumbnail is suppressed end to end", func(t *testing.T) {
		server := mediaServer(t, nil)
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		e := NewExtractor(nil, writer, nil, defaultOpts())

		doc := domain.MetadataDocument{
			"metadata": map[string]any{
				"name":  "Dup",
				"media": map[string]any{"uri": server.URL + "/full.mp4"},
			},
			"media": []any{
				map[string]any{"raw": "ipfs://QmX", "gateway": server.URL + "/full.mp4"},
			},
		}

		manifest := e.ResolveAndSave(context.Background(), doc, ref)

		assert.NotNil(t, manifest.ByRole(domain.RolePrimary))
		assert.Nil(t, manifest.ByRole(domain.RoleThumbnail))
	})

	t.Run("thumbnails disabled suppresses the role", func(t *testing.T) {
		server := mediaServer(t, nil)
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		e := NewExtractor(nil, writer, nil, ExtractOptions{DownloadThumbnails: false})

		manifest := e.ResolveAndSave(context.Background(), fullDoc(server.URL), ref)

		assert.Nil(t, manifest.ByRole(domain.RoleThumbnail))
		assert.NotNil(t, manifest.ByRole(domain.RolePrimary))
	})

	t.Run("records the run in the history store", func(t *testing.T) {
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		history := &recordingHistory{}
		e := NewExtractor(nil, writer, history, defaultOpts())

		e.ResolveAndSave(context.Background(), domain.MetadataDocument{"title": "Recorded"}, ref)

		require.Len(t, history.runs, 1)
		assert.Equal(t, ref, history.runs[0].Token)
		assert.Equal(t, "Recorded", history.runs[0].BaseName)
		assert.Len(t, history.runs[0].Artifacts, 2)
	})

	t.Run("history store failure does not fail the extraction", func(t *testing.T) {
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		history := &recordingHistory{err: errors.New("db locked")}
		e := NewExtractor(nil, writer, history, defaultOpts())

		manifest := e.ResolveAndSave(context.Background(), domain.MetadataDocument{"title": "x"}, ref)

		assert.Equal(t, 0, manifest.FailureCount())
	})
}

func TestExtractor_BaseName(t *testing.T) {
	ref := domain.TokenRef{ContractAddress: "0xabc", TokenID: "7"}
	e := NewExtractor(nil, nil, nil, defaultOpts())

	t.Run("prefers metadata name", func(t *testing.T) {
		doc := domain.MetadataDocument{
			"title":    "Title",
			"metadata": map[string]any{"name": "Proper Name"},
		}
		assert.Equal(t, "Proper-Name", e.baseName(doc, ref))
	})

	t.Run("falls back to title", func(t *testing.T) {
		doc := domain.MetadataDocument{"title": "Just Title"}
		assert.Equal(t, "Just-Title", e.baseName(doc, ref))
	})

	t.Run("synthesizes from token id as last resort", func(t *testing.T) {
		assert.Equal(t, "token-7", e.baseName(domain.MetadataDocument{}, ref))
	})

	t.Run("name of only unsafe characters falls through", func(t *testing.T) {
		doc := domain.MetadataDocument{
			"metadata": map[string]any{"name": `???///`},
			"title":    "Usable",
		}
		assert.Equal(t, "Usable", e.baseName(doc, ref))
	})
}

func TestResolveMedia(t *testing.T) {
	t.Run("gateway url and its extension win", func(t *testing.T) {
		resolved := resolveMedia(domain.MediaCandidate{
			URL:        "ipfs://Qm123",
			GatewayURL: "https://nft-cdn.alchemy.com/a.png?width=200",
			MIMEHint:   "image/jpeg",
		}, domain.RoleThumbnail)

		assert.Equal(t, "https://nft-cdn.alchemy.com/a.png?width=200", resolved.URL)
		assert.Equal(t, "png", resolved.Extension)
		assert.Equal(t, domain.RoleThumbnail, resolved.Role)
	})

	t.Run("mime hint fills in an extensionless url", func(t *testing.T) {
		resolved := resolveMedia(domain.MediaCandidate{
			URL:      "https://ipfs.io/ipfs/Qm123",
			MIMEHint: "video/mp4",
		}, domain.RolePrimary)

		assert.Equal(t, "https://ipfs.io/ipfs/Qm123", resolved.URL)
		assert.Equal(t, "mp4", resolved.Extension)
		assert.Equal(t, domain.RolePrimary, resolved.Role)
	})
}

func TestExtractor_Extract(t *testing.T) {
	ref := domain.TokenRef{ContractAddress: "0xabc", TokenID: "42"}

	t.Run("fetch failure is returned without a manifest", func(t *testing.T) {
		fetcher := &stubFetcher{err: domain.ErrNotFound}
		e := NewExtractor(fetcher, artifact.NewWriter(artifact.Config{Dir: t.TempDir()}), nil, defaultOpts())

		manifest, err := e.Extract(context.Background(), ref)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, manifest)
	})

	t.Run("fetched document is resolved and saved", func(t *testing.T) {
		fetcher := &stubFetcher{doc: domain.MetadataDocument{"title": "Fetched"}}
		writer := artifact.NewWriter(artifact.Config{Dir: t.TempDir()})
		e := NewExtractor(fetcher, writer, nil, defaultOpts())

		manifest, err := e.Extract(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, "Fetched", manifest.BaseName)
		assert.Len(t, manifest.Artifacts, 2)
	})
}
