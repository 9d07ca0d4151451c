package models

import (
	"sync"
	"sync/atomic"
	"time"
)

// RunStatus represents the overall result of a run
type RunStatus string

const (
	// StatusCompleted indicates the run finished; individual entries may
	// still have failed or been skipped
	StatusCompleted RunStatus = "completed"
	// StatusFailed indicates a fatal condition aborted the run
	StatusFailed RunStatus = "failed"
)

// ExitCode returns the process exit code for the status. Per-entry
// failures do not affect the exit code; only fatal conditions do.
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusFailed:
		return 2
	default:
		return 2
	}
}

// Stats holds run-wide counters. All fields are atomic so concurrent
// workers can record outcomes without a lock.
type Stats struct {
	Processed        atomic.Int64
	Moved            atomic.Int64
	Skipped          atomic.Int64
	Failed           atomic.Int64
	Simulated        atomic.Int64
	BytesMoved       atomic.Int64
	Duplicates       atomic.Int64
	EmptyDirsRemoved atomic.Int64
	CruftDirsRemoved atomic.Int64
}

// CategoryCounts holds per-category counters
type CategoryCounts struct {
	Processed  int64
	Moved      int64
	Skipped    int64
	Failed     int64
	BytesMoved int64
}

// RunError represents an error recorded during a run
type RunError struct {
	Path      string
	Message   string
	Timestamp time.Time
}

// RunReport is the aggregate outcome record for one execution. It is
// created at run start, mutated through its methods only, and finalized
// exactly once. All methods are safe for concurrent use.
type RunReport struct {
	RunID       string
	Pass        string
	SourceRoots []string
	Simulate    bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats Stats

	Status   RunStatus
	TimedOut bool

	mu         sync.Mutex
	byCategory map[Category]*CategoryCounts
	records    []MoveRecord
	errors     []RunError
	warnings   []string
}

// NewRunReport creates a report for a run that starts now
func NewRunReport(runID, pass string, sourceRoots []string, simulate bool) *RunReport {
	return &RunReport{
		RunID:       runID,
		Pass:        pass,
		SourceRoots: sourceRoots,
		Simulate:    simulate,
		StartTime:   time.Now(),
		Status:      StatusCompleted,
		byCategory:  make(map[Category]*CategoryCounts),
	}
}

// Record absorbs one move record into the counters. Every attempted
// entry produces exactly one call.
func (r *RunReport) Record(rec MoveRecord) {
	r.Stats.Processed.Add(1)

	switch {
	case rec.Outcome == OutcomeMoved:
		r.Stats.Moved.Add(1)
		r.Stats.BytesMoved.Add(rec.BytesMoved)
	case rec.Outcome == OutcomeSimulatedOnly:
		r.Stats.Simulated.Add(1)
	case rec.Outcome.IsSkip():
		r.Stats.Skipped.Add(1)
	case rec.Outcome.IsFailure():
		r.Stats.Failed.Add(1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	counts := r.byCategory[rec.Category]
	if counts == nil {
		counts = &CategoryCounts{}
		r.byCategory[rec.Category] = counts
	}
	counts.Processed++
	switch {
	case rec.Outcome == OutcomeMoved:
		counts.Moved++
		counts.BytesMoved += rec.BytesMoved
	case rec.Outcome.IsSkip():
		counts.Skipped++
	case rec.Outcome.IsFailure():
		counts.Failed++
	}

	r.records = append(r.records, rec)
}

// AddError records a recoverable per-entry error
func (r *RunReport) AddError(path, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, RunError{
		Path:      path,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// Warn records a non-fatal warning
func (r *RunReport) Warn(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, message)
}

// Records returns a copy of the recorded move outcomes
func (r *RunReport) Records() []MoveRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MoveRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Errors returns a copy of the recorded errors
func (r *RunReport) Errors() []RunError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunError, len(r.errors))
	copy(out, r.errors)
	return out
}

// Warnings returns a copy of the recorded warnings
func (r *RunReport) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// ByCategory returns a copy of the per-category counters
func (r *RunReport) ByCategory() map[Category]CategoryCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Category]CategoryCounts, len(r.byCategory))
	for cat, counts := range r.byCategory {
		out[cat] = *counts
	}
	return out
}

// Finalize computes the duration and sets the terminal status.
// It is called exactly once, on every code path, success or failure.
func (r *RunReport) Finalize(status RunStatus) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Status = status
}
