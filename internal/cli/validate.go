package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tdelacour/housekeep/internal/platform"
	"github.com/tdelacour/housekeep/pkg/config"
	"github.com/tdelacour/housekeep/pkg/logging"
	"github.com/tdelacour/housekeep/pkg/models"
	"github.com/tdelacour/housekeep/pkg/output"
)

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// resolveRoots turns user-supplied paths into absolute, validated roots
func resolveRoots(paths []string) ([]string, error) {
	roots := make([]string, 0, len(paths))
	for _, path := range paths {
		if err := platform.ValidatePath(path); err != nil {
			return nil, err
		}
		abs, err := platform.Absolutize(path)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			return nil, fmt.Errorf("source path does not exist: %s", abs)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

// buildRunSpec assembles the validated run input from config and flags
func buildRunSpec(cfg *config.Config, sources []string, simulate, overwrite bool) (*models.RunSpec, error) {
	roots := cfg.CategoryRoots()
	if len(roots) == 0 {
		return nil, &models.ValidationError{
			Field:   "destinations",
			Message: "at least one destination root must be configured",
		}
	}
	for cat, root := range roots {
		abs, err := platform.Absolutize(root)
		if err != nil {
			return nil, err
		}
		roots[cat] = abs
		for _, src := range sources {
			if abs == src {
				return nil, fmt.Errorf("destination for %s cannot be a source root: %s", cat, abs)
			}
		}
	}

	duplicatesDir := cfg.Destinations.Duplicates
	if duplicatesDir == "" && roots[models.CategoryMusic] != "" {
		duplicatesDir = roots[models.CategoryMusic] + string(os.PathSeparator) + "Duplicates"
	}
	if duplicatesDir != "" {
		abs, err := platform.Absolutize(duplicatesDir)
		if err != nil {
			return nil, err
		}
		duplicatesDir = abs
	}

	budget, err := cfg.Budget()
	if err != nil {
		return nil, err
	}

	spec := &models.RunSpec{
		ID:                 uuid.New().String(),
		SourceRoots:        sources,
		CategoryRoots:      roots,
		DuplicatesDir:      duplicatesDir,
		Mode:               models.OrganizeMode(cfg.Organize.Mode),
		Simulate:           simulate,
		Overwrite:          overwrite,
		Budget:             budget,
		MaxWorkers:         cfg.Performance.MaxWorkers,
		BandwidthLimit:     cfg.Performance.BandwidthLimit,
		ExcludePatterns:    cfg.Exclude,
		ExtensionOverrides: cfg.ExtensionOverrides(),
		CreatedAt:          time.Now(),
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// parseBandwidth parses a human bandwidth limit like "10M" or "1G"
// into bytes per second
func parseBandwidth(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	s = strings.TrimSpace(strings.ToUpper(s))
	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	}

	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit: %s (use e.g. \"10M\", \"1G\")", s)
	}
	return value * multiplier, nil
}

// buildFormatter selects the output formatter from config and flags
func buildFormatter(cfg *config.Config, format string) output.Formatter {
	if globalFlags.Quiet {
		return nil
	}

	switch format {
	case "json":
		return output.NewJSONFormatter()
	default:
		if cfg.Output.Progress {
			return output.NewProgressFormatter()
		}
		return output.NewHumanFormatter()
	}
}

// createLogger creates a logger based on configuration
func createLogger(logFile, logFormat, logLevel string) (logging.Logger, error) {
	// If no log file specified, return null logger
	if logFile == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch logFormat {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	cfg := logging.FileLoggerConfig{
		Path:       logFile,
		Format:     format,
		Level:      logging.ParseLevel(logLevel),
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	}

	return logging.NewFileLogger(cfg)
}
