// Package audit builds size and extension breakdowns for a directory
// tree without moving anything.
package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tdelacour/housekeep/pkg/classify"
	"github.com/tdelacour/housekeep/pkg/logging"
	"github.com/tdelacour/housekeep/pkg/models"
	"github.com/tdelacour/housekeep/pkg/storage"
)

// DefaultDirTimeout bounds how long a single subdirectory may take to
// enumerate before its contribution is discarded.
const DefaultDirTimeout = 30 * time.Second

// ExtStats aggregates all files sharing one extension
type ExtStats struct {
	Extension string          `json:"extension"`
	Category  models.Category `json:"category"`
	Files     int64           `json:"files"`
	Bytes     int64           `json:"bytes"`
}

// DirStats aggregates one immediate subdirectory of the audited root
type DirStats struct {
	Path  string `json:"path"`
	Files int64  `json:"files"`
	Dirs  int64  `json:"dirs"`
	Bytes int64  `json:"bytes"`
}

// Report is the full audit result for one root
type Report struct {
	Root        string    `json:"root"`
	GeneratedAt time.Time `json:"generated_at"`
	Duration    string    `json:"duration"`

	TotalFiles int64 `json:"total_files"`
	TotalDirs  int64 `json:"total_dirs"`
	TotalBytes int64 `json:"total_bytes"`

	// Dirs covers the immediate subdirectories, largest first
	Dirs []DirStats `json:"dirs"`

	// Extensions covers every extension seen, largest first
	Extensions []ExtStats `json:"extensions"`

	ByCategory map[models.Category]ExtStats `json:"by_category"`

	// Skipped lists subdirectories whose enumeration timed out or failed
	Skipped []string `json:"skipped,omitempty"`

	// Warnings carries access-denied subtrees and timeout notices
	Warnings []string `json:"warnings,omitempty"`
}

// Auditor walks a tree and aggregates per-directory and per-extension
// totals. Each immediate subdirectory is enumerated under a hard
// timeout; one that hangs is reported and discarded rather than
// stalling the whole audit.
type Auditor struct {
	fs         storage.Backend
	table      classify.Table
	log        logging.Logger
	dirTimeout time.Duration
}

// New creates an auditor. dirTimeout <= 0 selects the default.
func New(fs storage.Backend, table classify.Table, log logging.Logger, dirTimeout time.Duration) *Auditor {
	if log == nil {
		log = logging.NewNullLogger()
	}
	if dirTimeout <= 0 {
		dirTimeout = DefaultDirTimeout
	}
	return &Auditor{
		fs:         fs,
		table:      table,
		log:        log,
		dirTimeout: dirTimeout,
	}
}

// dirResult carries one subdirectory enumeration back from its goroutine
type dirResult struct {
	infos   []storage.FileInfo
	skipped []string
	err     error
}

// Run audits root. Only an unreadable root itself is fatal; anything
// below degrades to a warning.
func (a *Auditor) Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	report := &Report{
		Root:        filepath.Clean(root),
		GeneratedAt: start,
		ByCategory:  make(map[models.Category]ExtStats),
	}

	children, err := a.fs.ListDir(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("audit failed: %w", err)
	}

	extTotals := make(map[string]*ExtStats)

	for _, child := range children {
		if !child.IsDir {
			a.tally(report, extTotals, child)
			continue
		}

		report.TotalDirs++
		stats, ok := a.auditDir(ctx, child.Path, report, extTotals)
		if !ok {
			continue
		}
		report.Dirs = append(report.Dirs, stats)
	}

	sort.Slice(report.Dirs, func(i, j int) bool {
		return report.Dirs[i].Bytes > report.Dirs[j].Bytes
	})

	report.Extensions = make([]ExtStats, 0, len(extTotals))
	for _, stats := range extTotals {
		report.Extensions = append(report.Extensions, *stats)
	}
	sort.Slice(report.Extensions, func(i, j int) bool {
		return report.Extensions[i].Bytes > report.Extensions[j].Bytes
	})

	report.Duration = time.Since(start).String()
	a.log.Info(ctx, "audit finished", logging.Fields{
		"root":    report.Root,
		"files":   report.TotalFiles,
		"bytes":   report.TotalBytes,
		"skipped": len(report.Skipped),
	})
	return report, nil
}

// auditDir enumerates one immediate subdirectory under the hard
// timeout. The enumeration runs in its own goroutine so a hung
// filesystem call cannot stall the audit; on timeout the goroutine is
// abandoned and the directory's contribution discarded.
func (a *Auditor) auditDir(ctx context.Context, dir string, report *Report, extTotals map[string]*ExtStats) (DirStats, bool) {
	dirCtx, cancel := context.WithTimeout(ctx, a.dirTimeout)
	defer cancel()

	results := make(chan dirResult, 1)
	go func() {
		infos, skipped, err := a.fs.List(dirCtx, dir)
		results <- dirResult{infos: infos, skipped: skipped, err: err}
	}()

	var res dirResult
	select {
	case res = <-results:
	case <-dirCtx.Done():
		report.Skipped = append(report.Skipped, dir)
		report.Warnings = append(report.Warnings, fmt.Sprintf("audit of %s exceeded %s, contribution discarded", dir, a.dirTimeout))
		a.log.Warn(ctx, "directory audit timed out", logging.Fields{"path": dir, "timeout": a.dirTimeout.String()})
		return DirStats{}, false
	}

	if res.err != nil {
		report.Skipped = append(report.Skipped, dir)
		report.Warnings = append(report.Warnings, fmt.Sprintf("audit of %s failed: %v", dir, res.err))
		a.log.Warn(ctx, "directory audit failed", logging.Fields{"path": dir, "error": res.err.Error()})
		return DirStats{}, false
	}
	for _, path := range res.skipped {
		report.Warnings = append(report.Warnings, fmt.Sprintf("access denied, subtree skipped: %s", path))
	}

	stats := DirStats{Path: dir}
	cleanDir := filepath.Clean(dir)
	for _, info := range res.infos {
		if info.IsDir {
			if filepath.Clean(info.Path) != cleanDir {
				stats.Dirs++
				report.TotalDirs++
			}
			continue
		}
		stats.Files++
		stats.Bytes += info.Size
		a.tally(report, extTotals, info)
	}
	return stats, true
}

// tally folds one file into the run-wide extension and category totals
func (a *Auditor) tally(report *Report, extTotals map[string]*ExtStats, info storage.FileInfo) {
	report.TotalFiles++
	report.TotalBytes += info.Size

	ext := strings.ToLower(filepath.Ext(info.Path))
	cat := a.table.Classify(ext)

	stats := extTotals[ext]
	if stats == nil {
		stats = &ExtStats{Extension: ext, Category: cat}
		extTotals[ext] = stats
	}
	stats.Files++
	stats.Bytes += info.Size

	catStats := report.ByCategory[cat]
	catStats.Category = cat
	catStats.Files++
	catStats.Bytes += info.Size
	report.ByCategory[cat] = catStats
}
