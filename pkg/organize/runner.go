package organize

import (
	"context"
	"fmt"
	"time"

	"github.com/tdelacour/housekeep/pkg/classify"
	"github.com/tdelacour/housekeep/pkg/logging"
	"github.com/tdelacour/housekeep/pkg/models"
	"github.com/tdelacour/housekeep/pkg/output"
	"github.com/tdelacour/housekeep/pkg/plan"
	"github.com/tdelacour/housekeep/pkg/ratelimit"
	"github.com/tdelacour/housekeep/pkg/scan"
	"github.com/tdelacour/housekeep/pkg/verify"
)

// State tracks where a run currently is
type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StateProcessing State = "processing"
	StateFinalizing State = "finalizing"
)

const verifyBufferSize = 64 * 1024

// Runner orchestrates a housekeeping run: enumerate, classify, plan,
// move, aggregate. It owns the report for the duration of the run and
// always finalizes it, success or failure.
type Runner struct {
	spec      *models.RunSpec
	exec      *Exec
	scanner   *scan.Scanner
	table     classify.Table
	mover     *Mover
	formatter output.Formatter

	state State
}

// NewRunner builds a runner from a validated spec. The extension table
// is built here so a bad override is rejected before any file is touched.
func NewRunner(spec *models.RunSpec, exec *Exec, formatter output.Formatter) (*Runner, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	table, err := classify.Build(spec.ExtensionOverrides)
	if err != nil {
		return nil, &models.ValidationError{Field: "ExtensionOverrides", Message: err.Error()}
	}

	mover := NewMover(
		exec,
		verify.NewVerifier(verifyBufferSize),
		ratelimit.NewLimiter(spec.BandwidthLimit),
		spec.Overwrite,
	)

	return &Runner{
		spec:      spec,
		exec:      exec,
		scanner:   scan.New(exec.FS, spec.ExcludePatterns),
		table:     table,
		mover:     mover,
		formatter: formatter,
		state:     StateIdle,
	}, nil
}

// State returns the current run state
func (r *Runner) State() State {
	return r.state
}

// Run executes the organize pass. The report is always produced and
// finalized, even when the run fails or panics; err is non-nil only for
// fatal conditions.
func (r *Runner) Run(ctx context.Context) (report *models.RunReport, err error) {
	report = models.NewRunReport(r.spec.ID, "organize", r.spec.SourceRoots, r.spec.Simulate)
	defer r.finalize(ctx, report, &err)

	if err = r.checkRoots(ctx, report); err != nil {
		return report, err
	}

	r.state = StateScanning
	deadline := r.deadline(report.StartTime)

	type rootScan struct {
		planner *plan.Planner
		entries []models.FileEntry
	}
	var scans []rootScan
	totalFiles := 0
	var totalBytes int64

	for _, root := range r.spec.SourceRoots {
		entries, warnings, scanErr := r.scanner.Files(ctx, root)
		if scanErr != nil {
			err = fmt.Errorf("failed to scan %s: %w", root, scanErr)
			return report, err
		}
		for _, w := range warnings {
			report.Warn(w)
			r.exec.Log.Warn(ctx, w, nil)
		}

		scans = append(scans, rootScan{
			planner: &plan.Planner{
				CategoryRoots: r.spec.CategoryRoots,
				SourceRoot:    root,
				Mode:          r.spec.Mode,
			},
			entries: entries,
		})
		totalFiles += len(entries)
		for _, e := range entries {
			totalBytes += e.Size
		}
	}

	if r.formatter != nil {
		r.formatter.Start(nil, totalFiles, totalBytes)
	}

	r.state = StateProcessing
	for _, s := range scans {
		var timedOut bool
		if r.spec.MaxWorkers > 1 {
			timedOut = r.processConcurrent(ctx, s.planner, s.entries, deadline, report)
		} else {
			timedOut = r.processSequential(ctx, s.planner, s.entries, deadline, report)
		}
		if timedOut {
			r.recordTimeout(ctx, report)
			return report, nil
		}
	}

	r.cleanupEmptyDirs(ctx, report)
	return report, nil
}

// RunMusic executes the music consolidation pass. It is always
// sequential: the deepest-first ordering is a correctness requirement.
func (r *Runner) RunMusic(ctx context.Context) (report *models.RunReport, err error) {
	musicRoot, ok := r.spec.CategoryRoots[models.CategoryMusic]
	report = models.NewRunReport(r.spec.ID, "music", []string{musicRoot}, r.spec.Simulate)
	defer r.finalize(ctx, report, &err)

	if !ok {
		err = &models.ValidationError{Field: "CategoryRoots", Message: "music root is required for the music pass"}
		return report, err
	}
	if r.spec.DuplicatesDir == "" {
		err = &models.ValidationError{Field: "DuplicatesDir", Message: "duplicates directory is required for the music pass"}
		return report, err
	}
	if exists, checkErr := r.exec.FS.Exists(ctx, musicRoot); checkErr != nil || !exists {
		err = fmt.Errorf("music root %s is missing or inaccessible", musicRoot)
		return report, err
	}

	r.state = StateScanning
	deadline := r.deadline(report.StartTime)

	dirs, warnings, scanErr := r.scanner.DirsDeepestFirst(ctx, musicRoot)
	if scanErr != nil {
		err = fmt.Errorf("failed to scan %s: %w", musicRoot, scanErr)
		return report, err
	}
	for _, w := range warnings {
		report.Warn(w)
		r.exec.Log.Warn(ctx, w, nil)
	}

	if r.formatter != nil {
		r.formatter.Start(nil, len(dirs), 0)
	}

	r.state = StateProcessing
	consolidator := NewConsolidator(r.exec, r.table, musicRoot, r.spec.DuplicatesDir)
	for _, dir := range dirs {
		if !deadline.IsZero() && time.Now().After(deadline) {
			r.recordTimeout(ctx, report)
			return report, nil
		}
		if procErr := consolidator.processDir(ctx, dir, report); procErr != nil {
			err = fmt.Errorf("music pass aborted: %w", procErr)
			return report, err
		}
	}

	return report, nil
}

// processSequential handles entries one at a time, fully processing
// each before the next. Returns true if the budget expired.
func (r *Runner) processSequential(ctx context.Context, planner *plan.Planner, entries []models.FileEntry, deadline time.Time, report *models.RunReport) bool {
	for _, entry := range entries {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return true
		}
		r.processEntry(ctx, planner, entry, report)
	}
	return false
}

// processEntry runs one entry through classify, plan and move, and
// records exactly one outcome
func (r *Runner) processEntry(ctx context.Context, planner *plan.Planner, entry models.FileEntry, report *models.RunReport) {
	cat := r.table.Classify(entry.Ext)
	if cat == models.CategoryUnknown {
		reason := "extension not mapped to a category"
		if entry.Ext == "" {
			reason = "file has no extension"
		}
		rec := models.MoveRecord{
			Source:   entry.AbsolutePath,
			Category: models.CategoryUnknown,
			Outcome:  models.OutcomeSkippedNoExtension,
			Reason:   reason,
		}
		report.Record(rec)
		r.exec.Log.Debug(ctx, "left in place", logging.Fields{"source": entry.AbsolutePath, "reason": reason})
		r.progress(rec, report)
		return
	}

	destDir, err := planner.DestinationDir(entry, cat)
	if err != nil {
		// Structural failure: aborts this entry only
		rec := models.MoveRecord{
			Source:   entry.AbsolutePath,
			Category: cat,
			Outcome:  models.OutcomeFailed,
			Reason:   err.Error(),
		}
		report.Record(rec)
		report.AddError(entry.AbsolutePath, err.Error())
		r.exec.Log.Error(ctx, "planning failed", err, logging.Fields{"source": entry.AbsolutePath})
		r.progress(rec, report)
		return
	}

	rec := r.mover.Move(ctx, entry, destDir, cat)
	report.Record(rec)
	if rec.Outcome.IsFailure() {
		report.AddError(rec.Source, rec.Reason)
	}
	r.progress(rec, report)
}

// cleanupEmptyDirs removes source directories left empty by the moves,
// deepest-first. Skipped in simulate mode: nothing was moved, so
// nothing is empty.
func (r *Runner) cleanupEmptyDirs(ctx context.Context, report *models.RunReport) {
	if r.spec.Simulate {
		return
	}

	for _, root := range r.spec.SourceRoots {
		dirs, _, err := r.scanner.DirsDeepestFirst(ctx, root)
		if err != nil {
			report.Warn(fmt.Sprintf("empty-dir cleanup skipped for %s: %v", root, err))
			continue
		}
		for _, dir := range dirs {
			infos, _, listErr := r.exec.FS.List(ctx, dir)
			if listErr != nil {
				continue
			}
			// List includes the directory itself
			if len(infos) > 1 {
				continue
			}
			if err := r.exec.Remove(ctx, dir); err == nil {
				report.Stats.EmptyDirsRemoved.Add(1)
				r.exec.Log.Info(ctx, "removed empty directory", logging.Fields{"path": dir})
			}
		}
	}
}

// checkRoots rejects fatal misconfiguration before any mutation:
// a missing source root, or no destination root that can be created.
func (r *Runner) checkRoots(ctx context.Context, report *models.RunReport) error {
	for _, root := range r.spec.SourceRoots {
		exists, err := r.exec.FS.Exists(ctx, root)
		if err != nil {
			return fmt.Errorf("source root %s is inaccessible: %w", root, err)
		}
		if !exists {
			return fmt.Errorf("source root %s does not exist", root)
		}
	}

	created := 0
	var lastErr error
	for _, root := range r.spec.CategoryRoots {
		if _, err := r.exec.EnsureDir(ctx, root); err != nil {
			lastErr = err
			report.Warn(fmt.Sprintf("destination root unavailable: %v", err))
			continue
		}
		created++
	}
	if created == 0 && lastErr != nil {
		return fmt.Errorf("no destination root could be created: %w", lastErr)
	}
	return nil
}

// finalize always runs: it computes the duration, absorbs panics into
// a failed status, and hands the report to the formatter
func (r *Runner) finalize(ctx context.Context, report *models.RunReport, errp *error) {
	r.state = StateFinalizing

	if rec := recover(); rec != nil {
		report.AddError("", fmt.Sprintf("unexpected error: %v", rec))
		report.Finalize(models.StatusFailed)
		*errp = fmt.Errorf("run aborted: %v", rec)
	} else if *errp != nil {
		report.AddError("", (*errp).Error())
		report.Finalize(models.StatusFailed)
	} else {
		report.Finalize(models.StatusCompleted)
	}

	r.exec.Log.Info(ctx, "run finished", logging.Fields{
		"run_id":   report.RunID,
		"pass":     report.Pass,
		"status":   string(report.Status),
		"duration": report.Duration.String(),
		"moved":    report.Stats.Moved.Load(),
		"failed":   report.Stats.Failed.Load(),
	})

	if r.formatter != nil {
		r.formatter.Complete(report)
	}
}

func (r *Runner) recordTimeout(ctx context.Context, report *models.RunReport) {
	report.TimedOut = true
	report.Warn(fmt.Sprintf("wall-clock budget of %s exceeded, remaining entries left untouched", r.spec.Budget))
	r.exec.Log.Warn(ctx, "budget exceeded, stopping early", logging.Fields{"budget": r.spec.Budget.String()})
}

func (r *Runner) deadline(start time.Time) time.Time {
	if r.spec.Budget <= 0 {
		return time.Time{}
	}
	return start.Add(r.spec.Budget)
}

func (r *Runner) progress(rec models.MoveRecord, report *models.RunReport) {
	if r.formatter == nil {
		return
	}

	update := output.ProgressUpdate{
		Type:        "entry_complete",
		Path:        rec.Source,
		Destination: rec.Destination,
		Outcome:     rec.Outcome,
		Bytes:       rec.BytesMoved,
		CurrentFile: int(report.Stats.Processed.Load()),
	}
	if rec.Outcome.IsFailure() {
		update.Type = "entry_error"
		update.Error = fmt.Errorf("%s", rec.Reason)
	}
	r.formatter.Progress(update)
}
