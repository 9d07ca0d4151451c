// Package plan computes destination paths for classified files.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tdelacour/housekeep/pkg/models"
)

// InvalidRelativePathError indicates a file's directory is not under the
// configured source root. This aborts the current entry only.
type InvalidRelativePathError struct {
	Dir        string
	SourceRoot string
}

func (e *InvalidRelativePathError) Error() string {
	return fmt.Sprintf("directory %q is not under source root %q", e.Dir, e.SourceRoot)
}

// Planner computes destination paths for files
type Planner struct {
	// CategoryRoots maps each category to its destination root
	CategoryRoots map[models.Category]string

	// SourceRoot is the scan root, used in preserve mode to compute the
	// relative subpath
	SourceRoot string

	// Mode selects flatten or preserve-structure layout
	Mode models.OrganizeMode
}

// DestinationDir returns the directory a file should be moved into.
//
// Flatten mode ignores the source layout and returns the category root.
// Preserve mode mirrors the file's location relative to the source root.
// A file sitting directly in the source root collapses to the flatten form.
func (p *Planner) DestinationDir(file models.FileEntry, cat models.Category) (string, error) {
	root, ok := p.CategoryRoots[cat]
	if !ok {
		return "", fmt.Errorf("no destination root configured for category %q", cat)
	}

	if p.Mode == models.ModeFlatten {
		return root, nil
	}

	rel, err := relativeUnder(p.SourceRoot, file.Dir)
	if err != nil {
		return "", err
	}
	if rel == "" {
		return root, nil
	}
	return filepath.Join(root, rel), nil
}

// Destination returns the full planned path including the file name
func (p *Planner) Destination(file models.FileEntry, cat models.Category) (string, error) {
	dir, err := p.DestinationDir(file, cat)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file.Name), nil
}

// relativeUnder strips the root prefix from dir. The tree can keep being
// discovered while moves happen, so a directory outside the root is
// possible and must be rejected rather than producing a ".."-escaping path.
func relativeUnder(root, dir string) (string, error) {
	root = filepath.Clean(root)
	dir = filepath.Clean(dir)

	if dir == root {
		return "", nil
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &InvalidRelativePathError{Dir: dir, SourceRoot: root}
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}
