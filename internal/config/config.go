// Package config loads regexle configuration from .regexle.yaml with
// REGEXLE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked for in the scan root when --config is not given.
const DefaultFileName = ".regexle.yaml"

// Config holds all regexle configuration.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Catalog CatalogConfig `yaml:"catalog"`
	Index   IndexConfig   `yaml:"index"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
	Output  OutputConfig  `yaml:"output"`
}

// ScannerConfig configures the workspace walker.
type ScannerConfig struct {
	Workers        int      `yaml:"workers"`
	IgnorePatterns []string `yaml:"ignore_patterns"`
	MaxFileBytes   int64    `yaml:"max_file_bytes"`
	Languages      []string `yaml:"languages"`
	SkipTests      bool     `yaml:"skip_tests"`
}

// CatalogConfig points at user pattern files layered over the builtins.
type CatalogConfig struct {
	// File is a YAML pattern catalog merged over the builtin patterns.
	File string `yaml:"file"`
}

// IndexConfig configures the SQLite match index.
type IndexConfig struct {
	// Path of the index database. Relative paths resolve against the
	// scan root. Empty means <root>/.regexle/index.db.
	Path string `yaml:"path"`
	// Disabled turns off indexing entirely.
	Disabled bool `yaml:"disabled"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// DebounceMS is the settle window for filesystem events.
	DebounceMS int `yaml:"debounce_ms"`
}

// OutputConfig sets rendering defaults.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json, yaml, markdown
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Workers:      0, // 0 = auto
			MaxFileBytes: 2 * 1024 * 1024,
		},
		Index: IndexConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Load reads configuration from path. A missing file is not an error:
// defaults (plus env overrides) apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromRoot loads <root>/.regexle.yaml.
func LoadFromRoot(root string) (*Config, error) {
	return Load(filepath.Join(root, DefaultFileName))
}

// applyEnv overlays REGEXLE_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("REGEXLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("REGEXLE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("REGEXLE_INDEX_PATH"); v != "" {
		c.Index.Path = v
	}
	if v := os.Getenv("REGEXLE_CATALOG_FILE"); v != "" {
		c.Catalog.File = v
	}
	if v := os.Getenv("REGEXLE_SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scanner.Workers = n
		}
	}
	if v := os.Getenv("REGEXLE_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
}

// IndexPath resolves the index database location for a scan root.
func (c *Config) IndexPath(root string) string {
	p := c.Index.Path
	if p == "" {
		return filepath.Join(root, ".regexle", "index.db")
	}
	if !filepath.IsAbs(p) {
		return filepath.Join(root, p)
	}
	return p
}

// Write serializes the config to path. Used by `regexle init`.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
