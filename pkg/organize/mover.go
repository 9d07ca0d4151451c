package organize

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tdelacour/housekeep/pkg/logging"
	"github.com/tdelacour/housekeep/pkg/models"
	"github.com/tdelacour/housekeep/pkg/ratelimit"
	"github.com/tdelacour/housekeep/pkg/verify"
)

// Mover relocates a single file without risking data loss. The
// relocation is three steps: copy to an in-flight temp name inside the
// destination folder, verify the copy, atomically rename it to the
// final name, then delete the source. A failure before the rename
// leaves the source untouched and removes the partial copy.
type Mover struct {
	exec      *Exec
	verifier  *verify.Verifier
	limiter   *ratelimit.Limiter
	overwrite bool
}

// NewMover creates a mover. limiter may be nil for unlimited throughput.
func NewMover(exec *Exec, verifier *verify.Verifier, limiter *ratelimit.Limiter, overwrite bool) *Mover {
	return &Mover{
		exec:      exec,
		verifier:  verifier,
		limiter:   limiter,
		overwrite: overwrite,
	}
}

// Move relocates file into destDir. Every branch produces exactly one
// log line and one record; the caller feeds the record to the report.
func (m *Mover) Move(ctx context.Context, file models.FileEntry, destDir string, cat models.Category) models.MoveRecord {
	rec := models.MoveRecord{
		Source:   file.AbsolutePath,
		Category: cat,
	}

	// Files can vanish between scan and move: the scan may be long, and
	// other processes keep working in the tree. Re-check right before
	// acting.
	exists, err := m.exec.FS.Exists(ctx, file.AbsolutePath)
	if err != nil {
		rec.Outcome = models.OutcomeFailed
		rec.Reason = fmt.Sprintf("failed to check source: %v", err)
		m.exec.Log.Error(ctx, "move failed", err, logging.Fields{"source": file.AbsolutePath})
		return rec
	}
	if !exists {
		rec.Outcome = models.OutcomeSkippedSourceVanished
		rec.Reason = "source vanished before move"
		m.exec.Log.Warn(ctx, "source vanished", logging.Fields{"source": file.AbsolutePath})
		return rec
	}

	if _, err := m.exec.EnsureDir(ctx, destDir); err != nil {
		rec.Outcome = models.OutcomeFailed
		rec.Reason = err.Error()
		m.exec.Log.Error(ctx, "destination folder unavailable", err, logging.Fields{
			"source": file.AbsolutePath,
			"dest":   destDir,
		})
		return rec
	}

	dest := filepath.Join(destDir, file.Name)
	rec.Destination = dest

	// A destination root nested inside a source root can plan a file
	// onto its own path. Relocating would copy, rename onto the same
	// path and then delete it, destroying the only copy. Leave it alone,
	// regardless of overwrite.
	if filepath.Clean(dest) == filepath.Clean(file.AbsolutePath) {
		rec.Outcome = models.OutcomeSkippedExists
		rec.Reason = "file is already at its destination"
		m.exec.Log.Info(ctx, "already in place, skipped", logging.Fields{"path": dest})
		return rec
	}

	destExists, err := m.exec.FS.Exists(ctx, dest)
	if err != nil {
		rec.Outcome = models.OutcomeFailed
		rec.Reason = fmt.Sprintf("failed to check destination: %v", err)
		m.exec.Log.Error(ctx, "move failed", err, logging.Fields{"dest": dest})
		return rec
	}
	if destExists && !m.overwrite {
		rec.Outcome = models.OutcomeSkippedExists
		rec.Reason = "destination already exists"
		m.exec.Log.Warn(ctx, "destination exists, skipped", logging.Fields{
			"source": file.AbsolutePath,
			"dest":   dest,
		})
		return rec
	}

	if m.exec.Simulate {
		rec.Outcome = models.OutcomeSimulatedOnly
		m.exec.Log.Info(ctx, "would move", logging.Fields{
			"source": file.AbsolutePath,
			"dest":   dest,
			"bytes":  file.Size,
		})
		return rec
	}

	if err := m.relocate(ctx, file, destDir, dest); err != nil {
		if removeErr, ok := err.(*sourceRemovalError); ok {
			// Copy and rename succeeded but the source could not be
			// deleted: the file now exists at both locations. Surfaced
			// as its own outcome, never as a clean success.
			rec.Outcome = models.OutcomeMovedSourceRemains
			rec.Reason = fmt.Sprintf("source deletion failed, duplicate remains on disk: %v", removeErr.err)
			m.exec.Log.Error(ctx, "moved but source remains", removeErr.err, logging.Fields{
				"source": file.AbsolutePath,
				"dest":   dest,
			})
			return rec
		}

		rec.Outcome = models.OutcomeFailed
		rec.Reason = err.Error()
		m.exec.Log.Error(ctx, "move failed", err, logging.Fields{
			"source": file.AbsolutePath,
			"dest":   dest,
		})
		return rec
	}

	rec.Outcome = models.OutcomeMoved
	rec.BytesMoved = file.Size
	m.exec.Log.Info(ctx, "moved", logging.Fields{
		"source": file.AbsolutePath,
		"dest":   dest,
		"bytes":  file.Size,
	})
	return rec
}

// sourceRemovalError marks the ambiguous partial-success state
type sourceRemovalError struct {
	err error
}

func (e *sourceRemovalError) Error() string {
	return fmt.Sprintf("source deletion failed: %v", e.err)
}

// relocate performs copy, verify, rename, delete. The temp file lives
// inside the destination folder so the final rename stays on one
// filesystem and is atomic.
func (m *Mover) relocate(ctx context.Context, file models.FileEntry, destDir, dest string) error {
	tempPath := filepath.Join(destDir, inflightName(file.Name))

	reader, err := m.exec.FS.Read(ctx, file.AbsolutePath)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	limited := ratelimit.NewReadCloser(ctx, reader, m.limiter)

	if err := m.exec.Write(ctx, tempPath, limited, file.Size); err != nil {
		limited.Close()
		m.discardTemp(ctx, tempPath)
		return fmt.Errorf("copy failed: %w", err)
	}
	limited.Close()

	if err := m.verifier.Verify(ctx, m.exec.FS, file.AbsolutePath, tempPath); err != nil {
		m.discardTemp(ctx, tempPath)
		return fmt.Errorf("copy verification failed: %w", err)
	}

	if err := m.exec.Rename(ctx, tempPath, dest); err != nil {
		m.discardTemp(ctx, tempPath)
		return fmt.Errorf("rename failed: %w", err)
	}

	if err := m.exec.Remove(ctx, file.AbsolutePath); err != nil {
		return &sourceRemovalError{err: err}
	}
	return nil
}

// discardTemp removes a partial in-flight copy, best effort
func (m *Mover) discardTemp(ctx context.Context, tempPath string) {
	if exists, err := m.exec.FS.Exists(ctx, tempPath); err == nil && exists {
		if err := m.exec.Remove(ctx, tempPath); err != nil {
			m.exec.Log.Warn(ctx, "failed to remove partial copy", logging.Fields{"path": tempPath})
		}
	}
}

// inflightName builds the temp sibling name for an in-flight copy. The
// dot prefix keeps it out of casual directory listings; the random
// suffix avoids collisions when the same name is retried.
func inflightName(name string) string {
	return "." + name + ".inflight-" + uuid.NewString()[:8]
}
