package output

import (
	"fmt"
	"io"

	"github.com/tdelacour/housekeep/pkg/models"
)

// ProgressUpdate represents a progress notification during a run
type ProgressUpdate struct {
	Type        string // "entry_start", "entry_complete", "entry_error"
	Path        string
	Destination string
	Outcome     models.MoveOutcome
	Bytes       int64
	CurrentFile int
	TotalFiles  int
	Error       error
}

// Formatter defines the interface for console output during a run
type Formatter interface {
	// Start initializes the formatter for a new run
	Start(writer io.Writer, totalFiles int, totalBytes int64) error

	// Progress reports per-entry progress
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the run summary
	Complete(report *models.RunReport) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// formatBytes renders a byte count in human-readable units
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
