// Package config assembles the application configuration from the config
// store and the environment. It is loaded once at startup and passed into
// constructors.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
	"github.com/custodia-labs/chunkflow/internal/logger"
)

// Config keys in the TOML file.
const (
	KeyStorageRegion  = "storage.region"
	KeyStorageBucket  = "storage.bucket"
	KeyStorageRoot    = "storage.root"
	KeyMethod         = "chunking.method"
	KeyTokenBudget    = "chunking.token_budget"
	KeyLayout         = "chunking.layout"
	KeyDelimiter      = "chunking.delimiter"
	KeyLanguage       = "chunking.language"
	KeyLogLevel       = "log.level"
	keyEnvPrefix      = "CHUNKFLOW_"
	defaultRegion     = "us-east-1"
	defaultBucketRoot = "."
)

// envOverrides maps environment variables to the keys they override.
var envOverrides = map[string]string{
	keyEnvPrefix + "STORAGE_REGION": KeyStorageRegion,
	keyEnvPrefix + "STORAGE_BUCKET": KeyStorageBucket,
	keyEnvPrefix + "STORAGE_ROOT":   KeyStorageRoot,
	keyEnvPrefix + "LOG_LEVEL":      KeyLogLevel,
}

// Config is the resolved application configuration.
type Config struct {
	Storage  StorageConfig
	Chunking ChunkingConfig
	Log      LogConfig
}

// StorageConfig locates stored documents.
type StorageConfig struct {
	// Region and Bucket address chunk URLs.
	Region string
	Bucket string

	// Root is the local directory that serves the bucket's objects.
	Root string
}

// ChunkingConfig holds the chunking defaults.
type ChunkingConfig struct {
	Method      string
	TokenBudget int
	Layout      string
	Delimiter   string
	Language    string
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Region: defaultRegion,
			Root:   defaultBucketRoot,
		},
		Chunking: ChunkingConfig{
			Method:      domain.DefaultMethod,
			TokenBudget: domain.DefaultChunkTokenBudget,
			Layout:      string(domain.LayoutDeepDOC),
			Delimiter:   domain.DefaultDelimiter,
			Language:    domain.DefaultLanguage,
		},
		Log: LogConfig{
			Level: logger.LevelWarning.String(),
		},
	}
}

// Keys returns every supported config key, sorted.
func Keys() []string {
	keys := []string{
		KeyStorageRegion, KeyStorageBucket, KeyStorageRoot,
		KeyMethod, KeyTokenBudget, KeyLayout, KeyDelimiter, KeyLanguage,
		KeyLogLevel,
	}
	sort.Strings(keys)
	return keys
}

// Load reads store and applies environment overrides from getenv.
// A nil store yields the defaults; a nil getenv uses os.Getenv.
func Load(store driven.ConfigStore, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	lookup := func(key string) (any, bool) {
		for env, k := range envOverrides {
			if k == key {
				if v := strings.TrimSpace(getenv(env)); v != "" {
					return v, true
				}
			}
		}
		if store == nil {
			return nil, false
		}
		return store.Get(key)
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			if s, ok := v.(string); ok && s != "" {
				*dst = s
			}
		}
	}

	str(KeyStorageRegion, &cfg.Storage.Region)
	str(KeyStorageBucket, &cfg.Storage.Bucket)
	str(KeyStorageRoot, &cfg.Storage.Root)
	str(KeyMethod, &cfg.Chunking.Method)
	str(KeyLayout, &cfg.Chunking.Layout)
	str(KeyDelimiter, &cfg.Chunking.Delimiter)
	str(KeyLanguage, &cfg.Chunking.Language)
	str(KeyLogLevel, &cfg.Log.Level)

	if v, ok := lookup(KeyTokenBudget); ok {
		n, err := toInt(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("%w: %s must be a positive integer, got %v", domain.ErrInvalidInput, KeyTokenBudget, v)
		}
		cfg.Chunking.TokenBudget = n
	}

	if _, err := domain.ParseLayoutMode(cfg.Chunking.Layout); err != nil {
		return cfg, fmt.Errorf("%s: %w", KeyLayout, err)
	}
	return cfg, nil
}

// ParserConfig returns the parser defaults described by c.
func (c Config) ParserConfig() domain.ParserConfig {
	mode, err := domain.ParseLayoutMode(c.Chunking.Layout)
	if err != nil {
		mode = domain.LayoutDeepDOC
	}
	return domain.ParserConfig{
		ChunkTokenBudget: c.Chunking.TokenBudget,
		Delimiter:        c.Chunking.Delimiter,
		LayoutMode:       mode,
	}.WithDefaults()
}

// LogLevel returns the configured level. Unknown names mean INFO.
func (c Config) LogLevel() logger.Level {
	return logger.ParseLevel(c.Log.Level)
}

// Set validates and stores one key from its string form.
func Set(store driven.ConfigStore, key, value string) error {
	if !isKnown(key) {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	switch key {
	case KeyTokenBudget:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		return store.Set(key, n)
	case KeyLayout:
		mode, err := domain.ParseLayoutMode(value)
		if err != nil {
			return err
		}
		return store.Set(key, mode.String())
	default:
		return store.Set(key, value)
	}
}

func isKnown(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
