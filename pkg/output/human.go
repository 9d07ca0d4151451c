package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/tdelacour/housekeep/pkg/models"
)

// HumanFormatter formats output in human-readable form
type HumanFormatter struct {
	writer     io.Writer
	totalFiles int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalFiles = totalFiles

	fmt.Fprintf(writer, "Processing %d files (%s)\n", totalFiles, formatBytes(totalBytes))
	return nil
}

// Progress reports per-entry progress
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case "entry_complete":
		switch update.Outcome {
		case models.OutcomeMoved:
			fmt.Fprintf(f.writer, "[%d/%d] moved %s -> %s (%s)\n",
				update.CurrentFile, f.totalFiles, update.Path, update.Destination, formatBytes(update.Bytes))
		case models.OutcomeSimulatedOnly:
			fmt.Fprintf(f.writer, "[%d/%d] would move %s -> %s\n",
				update.CurrentFile, f.totalFiles, update.Path, update.Destination)
		default:
			fmt.Fprintf(f.writer, "[%d/%d] %s %s\n",
				update.CurrentFile, f.totalFiles, update.Outcome, update.Path)
		}
	case "entry_error":
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n",
			update.CurrentFile, f.totalFiles, update.Path, update.Error)
	}

	return nil
}

// Complete finalizes output and displays the run summary
func (f *HumanFormatter) Complete(report *models.RunReport) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Run %s completed in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
	if report.Simulate {
		fmt.Fprintf(f.writer, "Simulate-only: no files were touched\n")
	}
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Summary:\n")
	fmt.Fprintf(f.writer, "  Processed:          %d\n", report.Stats.Processed.Load())
	fmt.Fprintf(f.writer, "  Moved:              %d\n", report.Stats.Moved.Load())
	fmt.Fprintf(f.writer, "  Skipped:            %d\n", report.Stats.Skipped.Load())
	fmt.Fprintf(f.writer, "  Failed:             %d\n", report.Stats.Failed.Load())
	if report.Simulate {
		fmt.Fprintf(f.writer, "  Simulated:          %d\n", report.Stats.Simulated.Load())
	}
	fmt.Fprintf(f.writer, "  Duplicates:         %d\n", report.Stats.Duplicates.Load())
	fmt.Fprintf(f.writer, "  Empty dirs removed: %d\n", report.Stats.EmptyDirsRemoved.Load())
	fmt.Fprintf(f.writer, "  Bytes moved:        %s\n", formatBytes(report.Stats.BytesMoved.Load()))

	byCategory := report.ByCategory()
	if len(byCategory) > 0 {
		cats := make([]string, 0, len(byCategory))
		for cat := range byCategory {
			cats = append(cats, string(cat))
		}
		sort.Strings(cats)

		fmt.Fprintf(f.writer, "\n  Per category:\n")
		for _, cat := range cats {
			counts := byCategory[models.Category(cat)]
			fmt.Fprintf(f.writer, "    %-10s moved %d, skipped %d, failed %d (%s)\n",
				cat, counts.Moved, counts.Skipped, counts.Failed, formatBytes(counts.BytesMoved))
		}
	}

	warnings := report.Warnings()
	if len(warnings) > 0 {
		fmt.Fprintf(f.writer, "\nWarnings:\n")
		for _, w := range warnings {
			fmt.Fprintf(f.writer, "  %s\n", w)
		}
	}

	errors := report.Errors()
	if len(errors) > 0 {
		fmt.Fprintf(f.writer, "\nErrors:\n")
		for _, e := range errors {
			fmt.Fprintf(f.writer, "  %s: %s\n", e.Path, e.Message)
		}
	}

	fmt.Fprintf(f.writer, "\nStatus: %s\n", report.Status)
	return nil
}

// Error reports a fatal error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
