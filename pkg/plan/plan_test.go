package plan

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/tdelacour/housekeep/pkg/models"
)

func testRoots() map[models.Category]string {
	return map[models.Category]string{
		models.CategoryDocument: filepath.FromSlash("/dst/documents"),
		models.CategoryMusic:    filepath.FromSlash("/dst/music"),
		models.CategoryPhoto:    filepath.FromSlash("/dst/photos"),
	}
}

// TestDestinationFlatten tests flatten-mode planning
func TestDestinationFlatten(t *testing.T) {
	p := &Planner{
		CategoryRoots: testRoots(),
		SourceRoot:    filepath.FromSlash("/src"),
		Mode:          models.ModeFlatten,
	}

	file := models.NewFileEntry(filepath.FromSlash("/src/a/b/song.mp3"), 100)
	got, err := p.Destination(file, models.CategoryMusic)
	if err != nil {
		t.Fatalf("Destination() error = %v", err)
	}
	want := filepath.FromSlash("/dst/music/song.mp3")
	if got != want {
		t.Errorf("Destination() = %q, want %q", got, want)
	}
}

// TestDestinationPreserve tests preserve-structure planning
func TestDestinationPreserve(t *testing.T) {
	p := &Planner{
		CategoryRoots: testRoots(),
		SourceRoot:    filepath.FromSlash("/src"),
		Mode:          models.ModePreserve,
	}

	t.Run("NestedFile", func(t *testing.T) {
		file := models.NewFileEntry(filepath.FromSlash("/src/a/b/song.mp3"), 100)
		got, err := p.Destination(file, models.CategoryMusic)
		if err != nil {
			t.Fatalf("Destination() error = %v", err)
		}
		want := filepath.FromSlash("/dst/music/a/b/song.mp3")
		if got != want {
			t.Errorf("Destination() = %q, want %q", got, want)
		}
	})

	t.Run("FileAtRootCollapsesToFlatten", func(t *testing.T) {
		file := models.NewFileEntry(filepath.FromSlash("/src/doc.pdf"), 100)
		got, err := p.Destination(file, models.CategoryDocument)
		if err != nil {
			t.Fatalf("Destination() error = %v", err)
		}
		want := filepath.FromSlash("/dst/documents/doc.pdf")
		if got != want {
			t.Errorf("Destination() = %q, want %q", got, want)
		}
	})

	t.Run("OutsideSourceRoot", func(t *testing.T) {
		file := models.NewFileEntry(filepath.FromSlash("/elsewhere/doc.pdf"), 100)
		_, err := p.Destination(file, models.CategoryDocument)
		var invalidErr *InvalidRelativePathError
		if !errors.As(err, &invalidErr) {
			t.Errorf("Destination() error = %v, want InvalidRelativePathError", err)
		}
	})

	t.Run("SiblingWithRootPrefix", func(t *testing.T) {
		// /src-backup shares the string prefix but is not under /src
		file := models.NewFileEntry(filepath.FromSlash("/src-backup/doc.pdf"), 100)
		_, err := p.Destination(file, models.CategoryDocument)
		var invalidErr *InvalidRelativePathError
		if !errors.As(err, &invalidErr) {
			t.Errorf("Destination() error = %v, want InvalidRelativePathError", err)
		}
	})
}

// TestDestinationUnconfiguredCategory tests the missing-root case
func TestDestinationUnconfiguredCategory(t *testing.T) {
	p := &Planner{
		CategoryRoots: map[models.Category]string{},
		SourceRoot:    filepath.FromSlash("/src"),
		Mode:          models.ModeFlatten,
	}

	file := models.NewFileEntry(filepath.FromSlash("/src/doc.pdf"), 100)
	if _, err := p.Destination(file, models.CategoryDocument); err == nil {
		t.Error("Destination() should fail without a configured root")
	}
}
