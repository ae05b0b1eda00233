// Package config loads and validates application configuration from a YAML
// file with environment-variable overrides. The engine itself never reads
// files or the environment; only the command layer consumes this package
// and passes plain values down.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can use the usual
// human-readable forms ("30s", "5m").
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Import  ImportConfig  `yaml:"import"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StoreConfig holds the persistence location.
type StoreConfig struct {
	Path        string   `yaml:"path"`
	OpenTimeout Duration `yaml:"openTimeout"`
}

// ImportConfig controls bulk import batching.
type ImportConfig struct {
	BatchSize int `yaml:"batchSize"`
}

// SearchConfig controls result paging and the query cache.
type SearchConfig struct {
	PageSize  int      `yaml:"pageSize"`
	CacheSize int      `yaml:"cacheSize"`
	CacheTTL  Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus scrape listener.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:        "logseek.db",
			OpenTimeout: Duration(30 * time.Second),
		},
		Import: ImportConfig{
			BatchSize: 10000,
		},
		Search: SearchConfig{
			PageSize:  30,
			CacheSize: 1000,
			CacheTTL:  Duration(5 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Load reads path (if non-empty), overlays environment overrides, and
// validates the result. A missing file at the default path is not an
// error; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides honors the same knobs the original deployment exposed
// through its environment.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOGSEEK_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("LOGSEEK_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Import.BatchSize = n
		}
	}
	if v := os.Getenv("LOGSEEK_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.PageSize = n
		}
	}
	if v := os.Getenv("LOGSEEK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOGSEEK_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = n
		}
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("import.batchSize must be positive, got %d", c.Import.BatchSize)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.pageSize must be positive, got %d", c.Search.PageSize)
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search.cacheSize must not be negative, got %d", c.Search.CacheSize)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	return nil
}
