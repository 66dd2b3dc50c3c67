// Package config loads Regestra configuration from YAML with env overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Regestra configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StorageConfig configures the SQLite database.
type StorageConfig struct {
	// Path is the database file path. Empty means in-memory (tests only).
	Path string `yaml:"path" json:"path"`

	// BusyTimeoutMS is the SQLite busy_timeout in milliseconds.
	BusyTimeoutMS int `yaml:"busy_timeout_ms" json:"busy_timeout_ms"`
}

// SearchConfig configures search pagination and the label resolver cache.
type SearchConfig struct {
	// DefaultPageSize is used when a request omits pageSize.
	DefaultPageSize int `yaml:"default_page_size" json:"default_page_size"`

	// MaxPageSize caps pageSize for bounded requests. -1 (unbounded)
	// passes through untouched.
	MaxPageSize int `yaml:"max_page_size" json:"max_page_size"`

	// LabelCacheSize is the LRU size for resolved signature labels.
	LabelCacheSize int `yaml:"label_cache_size" json:"label_cache_size"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Storage: StorageConfig{
			Path:          DefaultDBPath(),
			BusyTimeoutMS: 5000,
		},
		Search: SearchConfig{
			DefaultPageSize: 50,
			MaxPageSize:     500,
			LabelCacheSize:  4096,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// DefaultDBPath returns the default database location (~/.regestra/regestra.db).
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".regestra", "regestra.db")
	}
	return filepath.Join(home, ".regestra", "regestra.db")
}

// Load reads configuration from the given path, falling back to defaults
// when the file does not exist. Env overrides are applied afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// applyEnv applies REGESTRA_* environment overrides. Env vars win over file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("REGESTRA_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("REGESTRA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("REGESTRA_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.DefaultPageSize = n
		}
	}
}

// normalize clamps out-of-range values back to defaults, logging a warning
// instead of failing startup.
func (c *Config) normalize() {
	def := Default()

	if c.Search.DefaultPageSize < 1 {
		slog.Warn("config_invalid_page_size",
			slog.Int("value", c.Search.DefaultPageSize),
			slog.Int("using", def.Search.DefaultPageSize))
		c.Search.DefaultPageSize = def.Search.DefaultPageSize
	}
	if c.Search.MaxPageSize < c.Search.DefaultPageSize {
		c.Search.MaxPageSize = def.Search.MaxPageSize
	}
	if c.Search.LabelCacheSize < 1 {
		c.Search.LabelCacheSize = def.Search.LabelCacheSize
	}
	if c.Storage.BusyTimeoutMS <= 0 {
		c.Storage.BusyTimeoutMS = def.Storage.BusyTimeoutMS
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = def.Logging.MaxSizeMB
	}
	if c.Logging.MaxFiles <= 0 {
		c.Logging.MaxFiles = def.Logging.MaxFiles
	}
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
