// Package config defines the YAML configuration for housekeep.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tdelacour/housekeep/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Destinations DestinationsConfig `yaml:"destinations"`
	Organize     OrganizeConfig     `yaml:"organize"`
	Audit        AuditConfig        `yaml:"audit"`
	Performance  PerformanceConfig  `yaml:"performance"`
	Output       OutputConfig       `yaml:"output"`
	Logging      LoggingConfig      `yaml:"logging"`

	// Overrides adds or replaces extension-to-category mappings,
	// e.g. ".m4b": "music"
	Overrides map[string]string `yaml:"overrides"`

	Exclude []string `yaml:"exclude"`
}

// DestinationsConfig holds the category roots files are moved into
type DestinationsConfig struct {
	Documents string `yaml:"documents"`
	Music     string `yaml:"music"`
	Photos    string `yaml:"photos"`

	// Duplicates receives diverted duplicate album folders
	Duplicates string `yaml:"duplicates"`
}

// OrganizeConfig holds organize-pass settings
type OrganizeConfig struct {
	Mode      string `yaml:"mode"`      // "flatten" or "preserve"
	Overwrite bool   `yaml:"overwrite"` // Replace existing destination files
	Timeout   string `yaml:"timeout"`   // Wall-clock budget, e.g. "30m"; empty = unlimited
}

// AuditConfig holds audit-pass settings
type AuditConfig struct {
	DirTimeout string `yaml:"dir_timeout"` // Per-directory enumeration limit
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int   `yaml:"max_workers"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = stderr)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Destinations: DestinationsConfig{},
		Organize: OrganizeConfig{
			Mode:      string(models.ModeFlatten),
			Overwrite: false,
			Timeout:   "",
		},
		Audit: AuditConfig{
			DirTimeout: "30s",
		},
		Performance: PerformanceConfig{
			MaxWorkers:     1,
			BandwidthLimit: 0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "json",
			Level:   "info",
			File:    "",
		},
		Overrides: map[string]string{},
		Exclude: []string{
			"*.tmp",
			".git/",
			"node_modules/",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Organize.Mode != string(models.ModeFlatten) && c.Organize.Mode != string(models.ModePreserve) {
		return &models.ValidationError{
			Field:   "organize.mode",
			Message: "must be 'flatten' or 'preserve'",
		}
	}

	if _, err := c.Budget(); err != nil {
		return &models.ValidationError{
			Field:   "organize.timeout",
			Message: "must be a duration like '30m' or empty",
		}
	}
	if _, err := c.AuditDirTimeout(); err != nil {
		return &models.ValidationError{
			Field:   "audit.dir_timeout",
			Message: "must be a duration like '30s' or empty",
		}
	}

	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}
	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	for ext, cat := range c.Overrides {
		if ext == "" {
			return &models.ValidationError{
				Field:   "overrides",
				Message: "extension must not be empty",
			}
		}
		category := models.Category(cat)
		if !category.Valid() || category == models.CategoryUnknown {
			return &models.ValidationError{
				Field:   "overrides",
				Message: "unknown category '" + cat + "' for extension '" + ext + "'",
			}
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// Budget parses the organize timeout; empty means unlimited
func (c *Config) Budget() (time.Duration, error) {
	return parseDuration(c.Organize.Timeout)
}

// AuditDirTimeout parses the per-directory audit limit; empty selects
// the auditor's default
func (c *Config) AuditDirTimeout() (time.Duration, error) {
	return parseDuration(c.Audit.DirTimeout)
}

// CategoryRoots maps the configured destinations onto categories,
// omitting unset ones
func (c *Config) CategoryRoots() map[models.Category]string {
	roots := make(map[models.Category]string)
	if c.Destinations.Documents != "" {
		roots[models.CategoryDocument] = c.Destinations.Documents
	}
	if c.Destinations.Music != "" {
		roots[models.CategoryMusic] = c.Destinations.Music
	}
	if c.Destinations.Photos != "" {
		roots[models.CategoryPhoto] = c.Destinations.Photos
	}
	return roots
}

// ExtensionOverrides converts the raw override map to typed categories
func (c *Config) ExtensionOverrides() map[string]models.Category {
	overrides := make(map[string]models.Category, len(c.Overrides))
	for ext, cat := range c.Overrides {
		overrides[ext] = models.Category(cat)
	}
	return overrides
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", s)
	}
	return d, nil
}

// LoadFromFile reads and validates a YAML config file. Unset fields
// keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SaveToFile validates cfg and writes it as YAML, creating the parent
// directory when needed
func SaveToFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfigPath is ~/.config/housekeep/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "housekeep", "config.yaml"), nil
}

// LoadDefault loads the config from the default location, falling back
// to the built-in defaults when no file exists
func LoadDefault() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromFile(path)
}
