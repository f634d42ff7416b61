package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore(t *testing.T) {
	t.Run("creates config directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "config")

		store, err := NewConfigStore(dir)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("loads existing file", func(t *testing.T) {
		dir := t.TempDir()
		content := "alchemy_api_key = \"demo-key\"\nworkers = 8\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(dir)

		require.NoError(t, err)
		assert.Equal(t, "demo-key", store.GetString(KeyAlchemyAPIKey))
		assert.Equal(t, 8, store.GetInt(KeyWorkers))
	})

	t.Run("flattens nested tables", func(t *testing.T) {
		dir := t.TempDir()
		content := "[alchemy]\napi_key = \"nested-key\"\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

		store, err := NewConfigStore(dir)

		require.NoError(t, err)
		assert.Equal(t, "nested-key", store.GetString("alchemy.api_key"))
	})
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(KeyOutputDir, "artwork"))
	require.NoError(t, store.Set(KeyDownloadThumbnails, true))
	require.NoError(t, store.Set(KeyWorkers, 4))

	assert.Equal(t, "artwork", store.GetString(KeyOutputDir))
	assert.True(t, store.GetBool(KeyDownloadThumbnails))
	assert.Equal(t, 4, store.GetInt(KeyWorkers))

	_, ok := store.Get("missing_key")
	assert.False(t, ok)
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyGatewayToken, "tok-123"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", reopened.GetString(KeyGatewayToken))
}

func TestConfigStore_EnvOverrides(t *testing.T) {
	t.Run("env wins over file value", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(KeyAlchemyAPIKey, "from-file"))

		t.Setenv("ALCHEMY_API_KEY", "from-env")

		assert.Equal(t, "from-env", store.GetString(KeyAlchemyAPIKey))
	})

	t.Run("env strings parse as int and bool", func(t *testing.T) {
		store := newTestStore(t)

		t.Setenv("WORKERS", "6")
		t.Setenv("DOWNLOAD_THUMBNAILS", "false")

		assert.Equal(t, 6, store.GetInt(KeyWorkers))
		assert.False(t, store.GetBool(KeyDownloadThumbnails))
	})

	t.Run("unparseable env values fall back to zero", func(t *testing.T) {
		store := newTestStore(t)

		t.Setenv("WORKERS", "lots")

		assert.Equal(t, 0, store.GetInt(KeyWorkers))
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "ALCHEMY_API_KEY", envKey("alchemy_api_key"))
	assert.Equal(t, "ALCHEMY_API_KEY", envKey("alchemy.api-key"))
	assert.Equal(t, "OUTPUT_DIR", envKey("output_dir"))
}

func TestConfigStore_TypeMismatches(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(KeyWorkers, 4))

	assert.Empty(t, store.GetString(KeyWorkers))
	assert.False(t, store.GetBool(KeyWorkers))
}
