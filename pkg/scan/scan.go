// Package scan enumerates filesystem entries for a housekeeping run.
package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tdelacour/housekeep/pkg/models"
	"github.com/tdelacour/housekeep/pkg/storage"
)

// Scanner enumerates candidate entries under a root. Unreadable
// subtrees produce warnings, not errors.
type Scanner struct {
	fs       storage.Backend
	excludes []string
}

// New creates a scanner with the given exclude glob patterns
func New(fs storage.Backend, excludes []string) *Scanner {
	return &Scanner{fs: fs, excludes: excludes}
}

// Files returns every regular file under root as a FileEntry, plus
// warnings for subtrees that could not be read.
func (s *Scanner) Files(ctx context.Context, root string) ([]models.FileEntry, []string, error) {
	infos, skipped, err := s.fs.List(ctx, root)
	if err != nil {
		return nil, nil, fmt.Errorf("scan failed: %w", err)
	}

	var entries []models.FileEntry
	for _, info := range infos {
		if info.IsDir {
			continue
		}
		rel, relErr := filepath.Rel(root, info.Path)
		if relErr == nil && shouldExclude(rel, s.excludes) {
			continue
		}
		entries = append(entries, models.NewFileEntry(info.Path, info.Size))
	}

	warnings := make([]string, 0, len(skipped))
	for _, path := range skipped {
		warnings = append(warnings, fmt.Sprintf("access denied, subtree skipped: %s", path))
	}
	return entries, warnings, nil
}

// DirsDeepestFirst returns every directory under root (excluding root
// itself) sorted deepest-first, the order required for folder
// consolidation and empty-directory removal.
func (s *Scanner) DirsDeepestFirst(ctx context.Context, root string) ([]string, []string, error) {
	infos, skipped, err := s.fs.List(ctx, root)
	if err != nil {
		return nil, nil, fmt.Errorf("scan failed: %w", err)
	}

	cleanRoot := filepath.Clean(root)
	var dirs []string
	for _, info := range infos {
		if !info.IsDir || filepath.Clean(info.Path) == cleanRoot {
			continue
		}
		rel, relErr := filepath.Rel(root, info.Path)
		if relErr == nil && shouldExclude(rel, s.excludes) {
			continue
		}
		dirs = append(dirs, info.Path)
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})

	warnings := make([]string, 0, len(skipped))
	for _, path := range skipped {
		warnings = append(warnings, fmt.Sprintf("access denied, subtree skipped: %s", path))
	}
	return dirs, warnings, nil
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}
