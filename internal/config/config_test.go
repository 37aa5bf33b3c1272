package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chunkflow/internal/adapters/driven/config/file"
	"github.com/custodia-labs/chunkflow/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

func noEnv(string) string { return "" }

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, noEnv)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "naive", cfg.Chunking.Method)
	assert.Equal(t, 512, cfg.Chunking.TokenBudget)
	assert.Equal(t, domain.DefaultParserConfig(), cfg.ParserConfig())
	assert.Equal(t, logger.LevelWarning, cfg.LogLevel())
}

func TestLoad_FromStore(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyStorageRegion: "eu-west-1",
		KeyStorageBucket: "docs",
		KeyStorageRoot:   "/srv/bucket",
		KeyMethod:        "book",
		KeyTokenBudget:   int64(128),
		KeyLayout:        "plaintext",
		KeyLanguage:      "Chinese",
		KeyLogLevel:      "debug",
	})

	cfg, err := Load(store, noEnv)
	require.NoError(t, err)

	assert.Equal(t, StorageConfig{Region: "eu-west-1", Bucket: "docs", Root: "/srv/bucket"}, cfg.Storage)
	assert.Equal(t, "book", cfg.Chunking.Method)
	assert.Equal(t, 128, cfg.Chunking.TokenBudget)
	assert.Equal(t, "Chinese", cfg.Chunking.Language)
	assert.Equal(t, domain.LayoutPlainText, cfg.ParserConfig().LayoutMode)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel())
}

func TestLoad_EnvOverridesStore(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyStorageRegion: "eu-west-1",
		KeyStorageBucket: "docs",
	})
	env := map[string]string{
		"CHUNKFLOW_STORAGE_REGION": "ap-south-1",
		"CHUNKFLOW_STORAGE_ROOT":   "/data",
		"CHUNKFLOW_LOG_LEVEL":      "ERROR",
	}

	cfg, err := Load(store, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "ap-south-1", cfg.Storage.Region)
	assert.Equal(t, "docs", cfg.Storage.Bucket)
	assert.Equal(t, "/data", cfg.Storage.Root)
	assert.Equal(t, logger.LevelError, cfg.LogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"zero budget", map[string]any{KeyTokenBudget: 0}},
		{"non numeric budget", map[string]any{KeyTokenBudget: "many"}},
		{"fractional budget", map[string]any{KeyTokenBudget: 1.5}},
		{"unknown layout", map[string]any{KeyLayout: "Holistic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(memory.NewConfigStore(tt.values), noEnv)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLoad_UnknownLogLevelMeansInfo(t *testing.T) {
	cfg, err := Load(memory.NewConfigStore(map[string]any{KeyLogLevel: "chatty"}), noEnv)
	require.NoError(t, err)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel())
}

func TestSet(t *testing.T) {
	store := memory.NewConfigStore()

	require.NoError(t, Set(store, KeyTokenBudget, " 256 "))
	require.NoError(t, Set(store, KeyLayout, "plaintext"))
	require.NoError(t, Set(store, KeyMethod, "paper"))

	assert.Equal(t, 256, store.GetInt(KeyTokenBudget))
	assert.Equal(t, "PlainText", store.GetString(KeyLayout))
	assert.Equal(t, "paper", store.GetString(KeyMethod))

	assert.ErrorIs(t, Set(store, "search.mode", "x"), domain.ErrInvalidInput)
	assert.ErrorIs(t, Set(store, KeyTokenBudget, "-1"), domain.ErrInvalidInput)
	assert.ErrorIs(t, Set(store, KeyLayout, "Holistic"), domain.ErrInvalidInput)
}

func TestLoad_FileStoreRoundTrip(t *testing.T) {
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, Set(store, KeyTokenBudget, "64"))
	require.NoError(t, Set(store, KeyStorageBucket, "archive"))

	reloaded, err := file.NewConfigStore(filepath.Dir(store.Path()))
	require.NoError(t, err)

	cfg, err := Load(reloaded, noEnv)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Chunking.TokenBudget)
	assert.Equal(t, "archive", cfg.Storage.Bucket)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, KeyStorageRoot)
	assert.Len(t, keys, 9)
}
