package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdelacour/housekeep/pkg/storage"
)

func makeTree(t *testing.T, root string, files []string, dirs []string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

// TestFiles tests file enumeration with normalization
func TestFiles(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		[]string{"doc.pdf", "a/song.MP3", "a/b/pic.jpg", "noext"},
		nil,
	)

	scanner := New(storage.NewLocal(), nil)
	entries, warnings, err := scanner.Files(context.Background(), root)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Files() warnings = %v, want none", warnings)
	}
	if len(entries) != 4 {
		t.Fatalf("Files() returned %d entries, want 4", len(entries))
	}

	byName := make(map[string]bool)
	for _, e := range entries {
		byName[e.Name] = true
		if e.Name == "song.MP3" && e.Ext != ".mp3" {
			t.Errorf("extension not normalized: %q", e.Ext)
		}
		if e.Name == "noext" && e.Ext != "" {
			t.Errorf("no-extension file got ext %q", e.Ext)
		}
	}
	for _, want := range []string{"doc.pdf", "song.MP3", "pic.jpg", "noext"} {
		if !byName[want] {
			t.Errorf("missing entry %q", want)
		}
	}
}

// TestFilesExcludes tests exclude pattern filtering
func TestFilesExcludes(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		[]string{"keep.pdf", "skip.tmp", ".git/config", "node_modules/pkg/index.js"},
		nil,
	)

	scanner := New(storage.NewLocal(), []string{"*.tmp", ".git/", "node_modules/"})
	entries, _, err := scanner.Files(context.Background(), root)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "keep.pdf" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		t.Errorf("Files() = %v, want [keep.pdf]", names)
	}
}

// TestDirsDeepestFirst tests directory ordering
func TestDirsDeepestFirst(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, nil, []string{"a", "a/b", "a/b/c", "d"})

	scanner := New(storage.NewLocal(), nil)
	dirs, _, err := scanner.DirsDeepestFirst(context.Background(), root)
	if err != nil {
		t.Fatalf("DirsDeepestFirst() error = %v", err)
	}
	if len(dirs) != 4 {
		t.Fatalf("DirsDeepestFirst() returned %d dirs, want 4", len(dirs))
	}

	// Root itself must not be included
	for _, d := range dirs {
		if filepath.Clean(d) == filepath.Clean(root) {
			t.Error("root must not appear in the result")
		}
	}

	// a/b/c must come before a/b, which must come before a
	pos := make(map[string]int)
	for i, d := range dirs {
		rel, _ := filepath.Rel(root, d)
		pos[filepath.ToSlash(rel)] = i
	}
	if !(pos["a/b/c"] < pos["a/b"] && pos["a/b"] < pos["a"]) {
		t.Errorf("dirs not deepest-first: %v", dirs)
	}
}

// TestShouldExclude tests the pattern matcher directly
func TestShouldExclude(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"NoPatterns", "a/b.txt", nil, false},
		{"GlobBasename", "a/b.tmp", []string{"*.tmp"}, true},
		{"GlobNoMatch", "a/b.txt", []string{"*.tmp"}, false},
		{"DirPattern", ".git/config", []string{".git/"}, true},
		{"NestedDirPattern", "x/.git/config", []string{".git/"}, true},
		{"DoubleStar", "deep/nested/cache", []string{"**/cache"}, true},
		{"PathPattern", "build/out.bin", []string{"build/*"}, true},
		{"EmptyPattern", "a.txt", []string{""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldExclude(tt.path, tt.patterns); got != tt.want {
				t.Errorf("shouldExclude(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}

// TestFilesMissingRoot tests the fatal case
func TestFilesMissingRoot(t *testing.T) {
	scanner := New(storage.NewLocal(), nil)
	_, _, err := scanner.Files(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("Files() should fail for a missing root")
	}
	if !strings.Contains(err.Error(), "scan failed") {
		t.Errorf("error = %v, want scan failed wrapper", err)
	}
}
