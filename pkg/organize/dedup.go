package organize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdelacour/housekeep/pkg/classify"
	"github.com/tdelacour/housekeep/pkg/logging"
	"github.com/tdelacour/housekeep/pkg/models"
)

// macosMetadataDir is the archive-extraction artifact macOS leaves
// behind; it is deleted wherever it appears under the music root.
const macosMetadataDir = "__MACOSX"

// timestampLayout disambiguates diverted duplicates that collide again
// inside the duplicates directory.
const timestampLayout = "20060102-150405"

// Consolidator flattens nested album folders into the music root.
// A folder-name collision at the root signals a duplicate album, which
// is diverted into the duplicates directory rather than merged or
// overwritten. The walk is deepest-first so nested collisions resolve
// before their parents are considered; this ordering is a correctness
// requirement and the consolidator therefore never runs concurrently.
type Consolidator struct {
	exec           *Exec
	table          classify.Table
	musicRoot      string
	duplicatesRoot string

	// now is replaceable in tests to pin the timestamp suffix
	now func() time.Time
}

// NewConsolidator creates a consolidator for the given music root
func NewConsolidator(exec *Exec, table classify.Table, musicRoot, duplicatesRoot string) *Consolidator {
	return &Consolidator{
		exec:           exec,
		table:          table,
		musicRoot:      filepath.Clean(musicRoot),
		duplicatesRoot: filepath.Clean(duplicatesRoot),
		now:            time.Now,
	}
}

// Run processes dirs, which must be sorted deepest-first, and records
// every action into report.
func (c *Consolidator) Run(ctx context.Context, dirs []string, report *models.RunReport) error {
	for _, dir := range dirs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := c.processDir(ctx, dir, report); err != nil {
			return err
		}
	}
	return nil
}

// processDir resolves one directory. Per-entry failures are absorbed
// into the report; only context cancellation propagates.
func (c *Consolidator) processDir(ctx context.Context, dir string, report *models.RunReport) error {
	dir = filepath.Clean(dir)

	if dir == c.musicRoot || dir == c.duplicatesRoot || isUnder(c.duplicatesRoot, dir) {
		return nil
	}

	// Deeper passes may already have moved or removed this directory
	exists, err := c.exec.FS.Exists(ctx, dir)
	if err != nil || !exists {
		return nil
	}

	if filepath.Base(dir) == macosMetadataDir {
		if err := c.exec.RemoveAll(ctx, dir); err != nil {
			report.AddError(dir, fmt.Sprintf("failed to remove macOS metadata folder: %v", err))
			return nil
		}
		report.Stats.CruftDirsRemoved.Add(1)
		c.exec.Log.Info(ctx, "removed macOS metadata folder", logging.Fields{"path": dir})
		return nil
	}

	hasMusic, bytes, err := c.musicContent(ctx, dir)
	if err != nil {
		report.AddError(dir, fmt.Sprintf("failed to inspect folder: %v", err))
		return nil
	}

	if !hasMusic {
		// No music anywhere underneath: cruft, not an album
		if err := c.exec.RemoveAll(ctx, dir); err != nil {
			report.AddError(dir, fmt.Sprintf("failed to remove folder: %v", err))
			return nil
		}
		report.Stats.CruftDirsRemoved.Add(1)
		c.exec.Log.Info(ctx, "removed folder without music content", logging.Fields{"path": dir})
		return nil
	}

	name := filepath.Base(dir)
	canonical := filepath.Join(c.musicRoot, name)

	collision := false
	if filepath.Clean(canonical) != dir {
		collision, err = c.exec.FS.Exists(ctx, canonical)
		if err != nil {
			report.AddError(dir, fmt.Sprintf("failed to check music root: %v", err))
			return nil
		}
	}

	switch {
	case collision:
		c.divert(ctx, dir, name, bytes, report)
	case filepath.Dir(dir) != c.musicRoot:
		c.moveToRoot(ctx, dir, canonical, bytes, report)
	}
	// Direct child with no collision: already where it belongs
	return nil
}

// divert moves a duplicate album folder into the duplicates directory,
// disambiguating with a timestamp suffix when needed. The existing
// folder at the music root is never touched.
func (c *Consolidator) divert(ctx context.Context, dir, name string, bytes int64, report *models.RunReport) {
	if _, err := c.exec.EnsureDir(ctx, c.duplicatesRoot); err != nil {
		report.AddError(dir, err.Error())
		report.Record(c.failure(dir, err.Error()))
		return
	}

	target := filepath.Join(c.duplicatesRoot, name)
	if exists, err := c.exec.FS.Exists(ctx, target); err == nil && exists {
		target = filepath.Join(c.duplicatesRoot, name+"_"+c.now().Format(timestampLayout))
	}

	if err := c.exec.Rename(ctx, dir, target); err != nil {
		report.AddError(dir, fmt.Sprintf("failed to divert duplicate: %v", err))
		report.Record(c.failure(dir, fmt.Sprintf("failed to divert duplicate: %v", err)))
		return
	}

	report.Stats.Duplicates.Add(1)
	report.Record(models.MoveRecord{
		Source:      dir,
		Destination: target,
		Category:    models.CategoryMusic,
		Outcome:     c.outcome(),
		BytesMoved:  c.movedBytes(bytes),
		Reason:      "duplicate album diverted",
	})
	c.exec.Log.Info(ctx, "duplicate album diverted", logging.Fields{"from": dir, "to": target})
}

// moveToRoot lifts a nested album folder up to the music root
func (c *Consolidator) moveToRoot(ctx context.Context, dir, canonical string, bytes int64, report *models.RunReport) {
	if err := c.exec.Rename(ctx, dir, canonical); err != nil {
		report.AddError(dir, fmt.Sprintf("failed to consolidate folder: %v", err))
		report.Record(c.failure(dir, fmt.Sprintf("failed to consolidate folder: %v", err)))
		return
	}

	report.Record(models.MoveRecord{
		Source:      dir,
		Destination: canonical,
		Category:    models.CategoryMusic,
		Outcome:     c.outcome(),
		BytesMoved:  c.movedBytes(bytes),
		Reason:      "album consolidated to music root",
	})
	c.exec.Log.Info(ctx, "album consolidated", logging.Fields{"from": dir, "to": canonical})
}

// musicContent reports whether dir recursively contains at least one
// music file, and the total size of its files
func (c *Consolidator) musicContent(ctx context.Context, dir string) (bool, int64, error) {
	infos, _, err := c.exec.FS.List(ctx, dir)
	if err != nil {
		return false, 0, err
	}

	hasMusic := false
	var bytes int64
	for _, info := range infos {
		if info.IsDir {
			continue
		}
		bytes += info.Size
		ext := strings.ToLower(filepath.Ext(info.Path))
		if c.table.Classify(ext) == models.CategoryMusic {
			hasMusic = true
		}
	}
	return hasMusic, bytes, nil
}

func (c *Consolidator) outcome() models.MoveOutcome {
	if c.exec.Simulate {
		return models.OutcomeSimulatedOnly
	}
	return models.OutcomeMoved
}

func (c *Consolidator) movedBytes(bytes int64) int64 {
	if c.exec.Simulate {
		return 0
	}
	return bytes
}

func (c *Consolidator) failure(dir, reason string) models.MoveRecord {
	return models.MoveRecord{
		Source:   dir,
		Category: models.CategoryMusic,
		Outcome:  models.OutcomeFailed,
		Reason:   reason,
	}
}

// isUnder reports whether path is strictly inside root
func isUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
