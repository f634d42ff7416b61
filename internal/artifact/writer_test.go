package artifact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	return NewWriter(Config{Dir: t.TempDir()})
}

func TestWriter_Download(t *testing.T) {
	t.Run("writes fetched bytes under base name and extension", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("fake-png-bytes"))
		}))
		defer server.Close()

		w := newTestWriter(t)
		art, err := w.Download(context.Background(), "My-Token", "png", domain.RolePrimary, server.URL)

		require.NoError(t, err)
		assert.Equal(t, "My-Token.png", art.Path)
		assert.Equal(t, domain.RolePrimary, art.Role)
		assert.Equal(t, int64(len("fake-png-bytes")), art.ByteSize)
		assert.False(t, art.Skipped)

		data, err := os.ReadFile(filepath.Join(w.Dir(), "My-Token.png"))
		require.NoError(t, err)
		assert.Equal(t, "fake-png-bytes", string(data))
	})

	t.Run("existing destination skips the fetch entirely", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte("remote"))
		}))
		defer server.Close()

		w := newTestWriter(t)
		require.NoError(t, os.WriteFile(filepath.Join(w.Dir(), "Token.png"), []byte("local"), 0o644))

		art, err := w.Download(context.Background(), "Token", "png", domain.RolePrimary, server.URL)

		require.NoError(t, err)
		assert.True(t, art.Skipped)
		assert.Equal(t, int64(len("local")), art.ByteSize)
		assert.Equal(t, int32(0), calls.Load(), "skip must not hit the network")
	})

	t.Run("non-2xx yields DownloadError with status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		w := newTestWriter(t)
		_, err := w.Download(context.Background(), "Token", "png", domain.RolePrimary, server.URL)

		var dlErr *DownloadError
		require.ErrorAs(t, err, &dlErr)
		assert.Equal(t, http.StatusNotFound, dlErr.StatusCode)
		assert.Equal(t, server.URL, dlErr.URL)
	})

	t.Run("failed download leaves no file at the final path", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		w := newTestWriter(t)
		_, err := w.Download(context.Background(), "Token", "png", domain.RolePrimary, server.URL)

		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(w.Dir(), "Token.png"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("cancelled context aborts the download", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		w := newTestWriter(t)
		_, err := w.Download(ctx, "Token", "png", domain.RolePrimary, server.URL)

		var dlErr *DownloadError
		require.ErrorAs(t, err, &dlErr)
	})

	t.Run("unreachable host yields DownloadError", func(t *testing.T) {
		w := newTestWriter(t)
		_, err := w.Download(context.Background(), "Token", "bin", domain.RolePrimary, "http://127.0.0.1:1/nope")

		var dlErr *DownloadError
		require.ErrorAs(t, err, &dlErr)
		assert.Zero(t, dlErr.StatusCode)
	})

	t.Run("sends configured bearer token", func(t *testing.T) {
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		w := NewWriter(Config{Dir: t.TempDir(), GatewayToken: "secret"})
		_, err := w.Download(context.Background(), "Token", "bin", domain.RolePrimary, server.URL)

		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", got)
	})
}

func TestWriter_WriteJSON(t *testing.T) {
	t.Run("metadata role writes base.json", func(t *testing.T) {
		w := newTestWriter(t)

		art, err := w.WriteJSON("Token", domain.RoleMetadata, domain.SimplifiedMetadata{Name: "x"})

		require.NoError(t, err)
		assert.Equal(t, "Token.json", art.Path)
		assert.Positive(t, art.ByteSize)
	})

	t.Run("token metadata role writes base-token.json", func(t *testing.T) {
		w := newTestWriter(t)

		art, err := w.WriteJSON("Token", domain.RoleTokenMetadata, map[string]any{"title": "x"})

		require.NoError(t, err)
		assert.Equal(t, "Token-token.json", art.Path)
	})

	t.Run("rewrites are byte-identical", func(t *testing.T) {
		w := newTestWriter(t)
		doc := map[string]any{"b": 2, "a": 1, "nested": map[string]any{"z": true, "y": false}}

		_, err := w.WriteJSON("Token", domain.RoleTokenMetadata, doc)
		require.NoError(t, err)
		first, err := os.ReadFile(filepath.Join(w.Dir(), "Token-token.json"))
		require.NoError(t, err)

		_, err = w.WriteJSON("Token", domain.RoleTokenMetadata, doc)
		require.NoError(t, err)
		second, err := os.ReadFile(filepath.Join(w.Dir(), "Token-token.json"))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		w := newTestWriter(t)

		_, err := w.WriteJSON("Token", domain.RoleMetadata, domain.SimplifiedMetadata{})
		require.NoError(t, err)

		entries, err := os.ReadDir(w.Dir())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Token.json", entries[0].Name())
	})

	t.Run("unmarshalable value fails without touching disk", func(t *testing.T) {
		w := newTestWriter(t)

		_, err := w.WriteJSON("Token", domain.RoleMetadata, map[string]any{"bad": func() {}})

		require.Error(t, err)
		entries, readErr := os.ReadDir(w.Dir())
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	})
}

func TestWriter_EnsureDir(t *testing.T) {
	t.Run("creates missing output directory including parents", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "deep", "artwork")
		w := NewWriter(Config{Dir: dir})

		_, err := w.WriteJSON("Token", domain.RoleMetadata, domain.SimplifiedMetadata{})

		require.NoError(t, err)
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	})
}

func TestDownloadError(t *testing.T) {
	t.Run("formats status errors", func(t *testing.T) {
		err := &DownloadError{URL: "https://x/a", StatusCode: 404}
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "https://x/a")
	})

	t.Run("unwraps the cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := &DownloadError{URL: "https://x/a", Err: cause}
		assert.ErrorIs(t, err, cause)
	})
}
