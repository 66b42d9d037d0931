// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	DefaultLogLevel  = "warn"
	DefaultCacheSize = 256
)

type Config struct {
	LogLevel string `json:"log_level"` // debug, info, warn, error

	Objects struct {
		CacheSize int `json:"cache_size"`
	} `json:"objects"`

	Database struct {
		SyncWrites *bool `json:"sync_writes"`
	} `json:"database"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{LogLevel: DefaultLogLevel}
	cfg.Objects.CacheSize = DefaultCacheSize
	return cfg
}

// SyncWrites reports whether badger should fsync every write. Defaults to true.
func (c *Config) SyncWrites() bool {
	if c.Database.SyncWrites == nil {
		return true
	}
	return *c.Database.SyncWrites
}

// Load reads the JSON config at path. A missing file yields Default().
// GROOT_LOG_LEVEL overrides the file's log level.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := json.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decoding config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("opening config %s: %w", path, err)
		}
	}

	if level := os.Getenv("GROOT_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Objects.CacheSize <= 0 {
		cfg.Objects.CacheSize = DefaultCacheSize
	}

	return cfg, nil
}
