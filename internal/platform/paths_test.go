package platform

import (
	"os"
	"path/filepath"
	"testing"
)

// TestExpandHome tests tilde expansion
func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	got, err := ExpandHome("~/music")
	if err != nil {
		t.Fatalf("ExpandHome() error = %v", err)
	}
	if got != filepath.Join(home, "music") {
		t.Errorf("ExpandHome(~/music) = %q", got)
	}

	// Paths without a tilde pass through untouched
	got, err = ExpandHome("/data/music")
	if err != nil || got != "/data/music" {
		t.Errorf("ExpandHome(/data/music) = %q, %v", got, err)
	}
}

// TestValidatePath tests rejection of empty paths
func TestValidatePath(t *testing.T) {
	if err := ValidatePath(""); err == nil {
		t.Error("ValidatePath(\"\") should fail")
	}
	if err := ValidatePath("/data/music"); err != nil {
		t.Errorf("ValidatePath() error = %v", err)
	}
}

// TestAbsolutize tests resolution to absolute form
func TestAbsolutize(t *testing.T) {
	got, err := Absolutize("some/relative/path")
	if err != nil {
		t.Fatalf("Absolutize() error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Absolutize() = %q, want absolute", got)
	}
}
