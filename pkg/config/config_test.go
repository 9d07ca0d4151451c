package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tdelacour/housekeep/pkg/models"
)

// TestDefaultIsValid tests that the shipped defaults pass validation
func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() is invalid: %v", err)
	}
}

// TestValidate tests rejection of bad settings
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"BadMode", func(c *Config) { c.Organize.Mode = "shuffle" }},
		{"BadTimeout", func(c *Config) { c.Organize.Timeout = "yesterday" }},
		{"NegativeTimeout", func(c *Config) { c.Organize.Timeout = "-5m" }},
		{"ZeroWorkers", func(c *Config) { c.Performance.MaxWorkers = 0 }},
		{"NegativeBandwidth", func(c *Config) { c.Performance.BandwidthLimit = -1 }},
		{"BadOverrideCategory", func(c *Config) { c.Overrides = map[string]string{".m4b": "audiobook"} }},
		{"EmptyOverrideExtension", func(c *Config) { c.Overrides = map[string]string{"": "music"} }},
		{"BadOutputFormat", func(c *Config) { c.Output.Format = "yaml" }},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should have rejected the config")
			}
		})
	}
}

// TestRoundTrip tests save and reload through YAML
func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Destinations.Documents = "/data/documents"
	cfg.Destinations.Music = "/data/music"
	cfg.Organize.Mode = string(models.ModePreserve)
	cfg.Organize.Timeout = "45m"
	cfg.Overrides = map[string]string{".m4b": "music"}

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Destinations.Documents != "/data/documents" {
		t.Errorf("documents root = %q", loaded.Destinations.Documents)
	}
	if loaded.Organize.Mode != string(models.ModePreserve) {
		t.Errorf("mode = %q", loaded.Organize.Mode)
	}
	budget, err := loaded.Budget()
	if err != nil || budget != 45*time.Minute {
		t.Errorf("budget = %v, %v", budget, err)
	}
	if loaded.Overrides[".m4b"] != "music" {
		t.Errorf("overrides = %v", loaded.Overrides)
	}
}

// TestLoadInvalidFile tests that a broken file is rejected
func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("organize:\n  mode: sideways\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should reject an invalid mode")
	}
}

// TestCategoryRoots tests the destination mapping
func TestCategoryRoots(t *testing.T) {
	cfg := Default()
	cfg.Destinations.Music = "/data/music"

	roots := cfg.CategoryRoots()
	if len(roots) != 1 {
		t.Fatalf("roots = %v, want only music", roots)
	}
	if roots[models.CategoryMusic] != "/data/music" {
		t.Errorf("music root = %q", roots[models.CategoryMusic])
	}
}
