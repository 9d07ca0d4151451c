package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tdelacour/housekeep/pkg/models"
)

func newTestSpec(src, dst string) *models.RunSpec {
	return &models.RunSpec{
		ID:          "test-run",
		SourceRoots: []string{src},
		CategoryRoots: map[models.Category]string{
			models.CategoryDocument: filepath.Join(dst, "documents"),
			models.CategoryMusic:    filepath.Join(dst, "music"),
			models.CategoryPhoto:    filepath.Join(dst, "photos"),
		},
		DuplicatesDir: filepath.Join(dst, "music", "Duplicates"),
		Mode:          models.ModeFlatten,
		MaxWorkers:    1,
		CreatedAt:     time.Now(),
	}
}

// TestRun tests a full organize pass over a mixed tree
func TestRun(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src")
	dst := filepath.Join(tempDir, "dst")
	writeTestFile(t, filepath.Join(src, "report.pdf"), "doc")
	writeTestFile(t, filepath.Join(src, "nested", "song.mp3"), "audio")
	writeTestFile(t, filepath.Join(src, "photo.jpg"), "image")
	writeTestFile(t, filepath.Join(src, "README"), "no extension")
	writeTestFile(t, filepath.Join(src, "data.xyz"), "unknown extension")

	runner, err := NewRunner(newTestSpec(src, dst), newTestExec(false), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", report.Status)
	}
	if got := report.Stats.Moved.Load(); got != 3 {
		t.Errorf("moved = %d, want 3", got)
	}
	if got := report.Stats.Skipped.Load(); got != 2 {
		t.Errorf("skipped = %d, want 2", got)
	}

	for _, want := range []string{
		filepath.Join(dst, "documents", "report.pdf"),
		filepath.Join(dst, "music", "song.mp3"),
		filepath.Join(dst, "photos", "photo.jpg"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Errorf("missing %s: %v", want, err)
		}
	}

	// Unclassified files stay put
	if _, err := os.Stat(filepath.Join(src, "README")); err != nil {
		t.Error("extensionless file was moved")
	}
	if _, err := os.Stat(filepath.Join(src, "data.xyz")); err != nil {
		t.Error("unknown-extension file was moved")
	}

	// The emptied nested dir is cleaned up
	if _, err := os.Stat(filepath.Join(src, "nested")); !os.IsNotExist(err) {
		t.Error("emptied source dir not removed")
	}
	if got := report.Stats.EmptyDirsRemoved.Load(); got != 1 {
		t.Errorf("empty dirs removed = %d, want 1", got)
	}
	if runner.State() != StateFinalizing {
		t.Errorf("state = %q, want finalizing", runner.State())
	}
}

// TestRunDestinationInsideSource tests organizing a tree whose category
// folders live inside the source root: files already in place stay put
// instead of being moved onto themselves
func TestRunDestinationInsideSource(t *testing.T) {
	src := t.TempDir()
	docs := filepath.Join(src, "documents")
	writeTestFile(t, filepath.Join(docs, "report.pdf"), "pdf content")
	writeTestFile(t, filepath.Join(src, "notes.txt"), "loose note")

	spec := &models.RunSpec{
		ID:          "test-run-nested",
		SourceRoots: []string{src},
		CategoryRoots: map[models.Category]string{
			models.CategoryDocument: docs,
		},
		Mode:       models.ModeFlatten,
		Overwrite:  true,
		MaxWorkers: 1,
		CreatedAt:  time.Now(),
	}
	runner, err := NewRunner(spec, newTestExec(false), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The in-place file survives with its content intact
	data, err := os.ReadFile(filepath.Join(docs, "report.pdf"))
	if err != nil {
		t.Fatalf("in-place file destroyed: %v", err)
	}
	if string(data) != "pdf content" {
		t.Errorf("in-place content = %q", data)
	}

	// The loose file is pulled into the category folder
	if _, err := os.Stat(filepath.Join(docs, "notes.txt")); err != nil {
		t.Errorf("loose file not relocated: %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, "notes.txt")); !os.IsNotExist(err) {
		t.Error("loose file still at its original path")
	}

	if got := report.Stats.Moved.Load(); got != 1 {
		t.Errorf("moved = %d, want 1", got)
	}
	if got := report.Stats.Skipped.Load(); got != 1 {
		t.Errorf("skipped = %d, want 1", got)
	}
	if got := report.Stats.Failed.Load(); got != 0 {
		t.Errorf("failed = %d, want 0", got)
	}
}

// TestRunPreserve tests the structure-preserving layout
func TestRunPreserve(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src")
	dst := filepath.Join(tempDir, "dst")
	writeTestFile(t, filepath.Join(src, "2024", "taxes", "return.pdf"), "doc")

	spec := newTestSpec(src, dst)
	spec.Mode = models.ModePreserve

	runner, err := NewRunner(spec, newTestExec(false), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := filepath.Join(dst, "documents", "2024", "taxes", "return.pdf")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("missing %s: %v", want, err)
	}
}

// TestRunSimulate tests that a simulated run reports every intended
// move without mutating anything
func TestRunSimulate(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src")
	dst := filepath.Join(tempDir, "dst")
	writeTestFile(t, filepath.Join(src, "a.pdf"), "one")
	writeTestFile(t, filepath.Join(src, "b.mp3"), "two")

	spec := newTestSpec(src, dst)
	spec.Simulate = true

	runner, err := NewRunner(spec, newTestExec(true), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := report.Stats.Simulated.Load(); got != 2 {
		t.Errorf("simulated = %d, want 2", got)
	}
	if got := report.Stats.Moved.Load(); got != 0 {
		t.Errorf("moved = %d in simulate mode", got)
	}
	if _, err := os.Stat(filepath.Join(src, "a.pdf")); err != nil {
		t.Error("simulate mode moved a file")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("simulate mode created destination roots")
	}
}

// TestRunMissingSourceRoot tests that a missing root is fatal but the
// report is still produced and finalized
func TestRunMissingSourceRoot(t *testing.T) {
	tempDir := t.TempDir()
	spec := newTestSpec(filepath.Join(tempDir, "does-not-exist"), filepath.Join(tempDir, "dst"))

	runner, err := NewRunner(spec, newTestExec(false), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail for a missing source root")
	}
	if report == nil {
		t.Fatal("report must be produced even on fatal failure")
	}
	if report.Status != models.StatusFailed {
		t.Errorf("status = %q, want failed", report.Status)
	}
	if report.Status.ExitCode() != 2 {
		t.Errorf("exit code = %d, want 2", report.Status.ExitCode())
	}
	if report.EndTime.IsZero() {
		t.Error("report not finalized")
	}
	if len(report.Errors()) == 0 {
		t.Error("fatal error not recorded in the report")
	}
}

// TestRunBudgetExceeded tests that an expired budget stops processing,
// leaves remaining entries untouched and still completes
func TestRunBudgetExceeded(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src")
	dst := filepath.Join(tempDir, "dst")
	writeTestFile(t, filepath.Join(src, "a.pdf"), "one")
	writeTestFile(t, filepath.Join(src, "b.pdf"), "two")

	spec := newTestSpec(src, dst)
	spec.Budget = time.Nanosecond

	runner, err := NewRunner(spec, newTestExec(false), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v: budget expiry is not fatal", err)
	}

	if !report.TimedOut {
		t.Error("report should be marked timed out")
	}
	if report.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", report.Status)
	}
	if got := report.Stats.Processed.Load(); got != 0 {
		t.Errorf("processed = %d after immediate expiry, want 0", got)
	}
	if len(report.Warnings()) == 0 {
		t.Error("budget expiry should produce a warning")
	}
	if _, err := os.Stat(filepath.Join(src, "a.pdf")); err != nil {
		t.Error("entry moved after budget expiry")
	}
}

// TestRunConcurrent tests the worker pool path moves everything exactly once
func TestRunConcurrent(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "src")
	dst := filepath.Join(tempDir, "dst")
	names := []string{"a.pdf", "b.pdf", "c.mp3", "d.jpg", "e.jpg", "f.pdf"}
	for _, name := range names {
		writeTestFile(t, filepath.Join(src, name), "content of "+name)
	}

	spec := newTestSpec(src, dst)
	spec.MaxWorkers = 4

	runner, err := NewRunner(spec, newTestExec(false), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := report.Stats.Moved.Load(); got != int64(len(names)) {
		t.Errorf("moved = %d, want %d", got, len(names))
	}
	if got := report.Stats.Failed.Load(); got != 0 {
		t.Errorf("failed = %d, want 0", got)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("source still holds %d entries", len(entries))
	}
}

// TestRunMusic tests the music pass end to end through the runner
func TestRunMusic(t *testing.T) {
	tempDir := t.TempDir()
	dst := filepath.Join(tempDir, "dst")
	musicRoot := filepath.Join(dst, "music")
	writeTestFile(t, filepath.Join(musicRoot, "Abbey Road", "01.mp3"), "original")
	writeTestFile(t, filepath.Join(musicRoot, "incoming", "Abbey Road", "01.mp3"), "rip")
	writeTestFile(t, filepath.Join(musicRoot, "incoming", "Kind of Blue", "01.flac"), "jazz")

	spec := newTestSpec(filepath.Join(tempDir, "src"), dst)
	runner, err := NewRunner(spec, newTestExec(false), nil)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	report, err := runner.RunMusic(context.Background())
	if err != nil {
		t.Fatalf("RunMusic() error = %v", err)
	}

	if report.Pass != "music" {
		t.Errorf("pass = %q, want music", report.Pass)
	}
	if _, err := os.Stat(filepath.Join(musicRoot, "Kind of Blue", "01.flac")); err != nil {
		t.Errorf("album not consolidated: %v", err)
	}
	if _, err := os.Stat(filepath.Join(spec.DuplicatesDir, "Abbey Road", "01.mp3")); err != nil {
		t.Errorf("duplicate not diverted: %v", err)
	}
	if got := report.Stats.Duplicates.Load(); got != 1 {
		t.Errorf("duplicates = %d, want 1", got)
	}
}
