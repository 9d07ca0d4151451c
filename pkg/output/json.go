package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/tdelacour/housekeep/pkg/models"
)

// JSONFormatter emits the final run report as JSON for automation.
// Per-entry progress is not streamed to keep the output parseable.
type JSONFormatter struct {
	writer io.Writer
}

// JSONReport is the serialized form of a run report
type JSONReport struct {
	RunID       string                       `json:"run_id"`
	Pass        string                       `json:"pass"`
	SourceRoots []string                     `json:"source_roots"`
	Simulate    bool                         `json:"simulate"`
	Status      string                       `json:"status"`
	TimedOut    bool                         `json:"timed_out,omitempty"`
	StartTime   string                       `json:"start_time"`
	EndTime     string                       `json:"end_time"`
	DurationMs  int64                        `json:"duration_ms"`
	Stats       JSONStats                    `json:"stats"`
	ByCategory  map[string]JSONCategoryStats `json:"by_category,omitempty"`
	Records     []JSONRecord                 `json:"records,omitempty"`
	Warnings    []string                     `json:"warnings,omitempty"`
	Errors      []JSONError                  `json:"errors,omitempty"`
}

// JSONStats holds the run-wide counters
type JSONStats struct {
	Processed        int64 `json:"processed"`
	Moved            int64 `json:"moved"`
	Skipped          int64 `json:"skipped"`
	Failed           int64 `json:"failed"`
	Simulated        int64 `json:"simulated"`
	BytesMoved       int64 `json:"bytes_moved"`
	Duplicates       int64 `json:"duplicates"`
	EmptyDirsRemoved int64 `json:"empty_dirs_removed"`
	CruftDirsRemoved int64 `json:"cruft_dirs_removed"`
}

// JSONCategoryStats holds per-category counters
type JSONCategoryStats struct {
	Processed  int64 `json:"processed"`
	Moved      int64 `json:"moved"`
	Skipped    int64 `json:"skipped"`
	Failed     int64 `json:"failed"`
	BytesMoved int64 `json:"bytes_moved"`
}

// JSONRecord is one relocation attempt
type JSONRecord struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Category    string `json:"category"`
	Outcome     string `json:"outcome"`
	Bytes       int64  `json:"bytes,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// JSONError is one recorded error
type JSONError struct {
	Path      string `json:"path"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is a no-op for the JSON formatter
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the final report as indented JSON
func (f *JSONFormatter) Complete(report *models.RunReport) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(buildJSONReport(report))
}

// Error writes a fatal error as a JSON object
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		f.writer = os.Stderr
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func buildJSONReport(report *models.RunReport) JSONReport {
	out := JSONReport{
		RunID:       report.RunID,
		Pass:        report.Pass,
		SourceRoots: report.SourceRoots,
		Simulate:    report.Simulate,
		Status:      string(report.Status),
		TimedOut:    report.TimedOut,
		StartTime:   report.StartTime.UTC().Format(time.RFC3339),
		EndTime:     report.EndTime.UTC().Format(time.RFC3339),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStats{
			Processed:        report.Stats.Processed.Load(),
			Moved:            report.Stats.Moved.Load(),
			Skipped:          report.Stats.Skipped.Load(),
			Failed:           report.Stats.Failed.Load(),
			Simulated:        report.Stats.Simulated.Load(),
			BytesMoved:       report.Stats.BytesMoved.Load(),
			Duplicates:       report.Stats.Duplicates.Load(),
			EmptyDirsRemoved: report.Stats.EmptyDirsRemoved.Load(),
			CruftDirsRemoved: report.Stats.CruftDirsRemoved.Load(),
		},
	}

	byCategory := report.ByCategory()
	if len(byCategory) > 0 {
		out.ByCategory = make(map[string]JSONCategoryStats, len(byCategory))
		for cat, counts := range byCategory {
			out.ByCategory[string(cat)] = JSONCategoryStats{
				Processed:  counts.Processed,
				Moved:      counts.Moved,
				Skipped:    counts.Skipped,
				Failed:     counts.Failed,
				BytesMoved: counts.BytesMoved,
			}
		}
	}

	for _, rec := range report.Records() {
		out.Records = append(out.Records, JSONRecord{
			Source:      rec.Source,
			Destination: rec.Destination,
			Category:    string(rec.Category),
			Outcome:     string(rec.Outcome),
			Bytes:       rec.BytesMoved,
			Reason:      rec.Reason,
		})
	}

	out.Warnings = report.Warnings()
	for _, e := range report.Errors() {
		out.Errors = append(out.Errors, JSONError{
			Path:      e.Path,
			Message:   e.Message,
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	return out
}
