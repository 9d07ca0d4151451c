package verify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tdelacour/housekeep/pkg/storage"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestVerify tests copy verification
func TestVerify(t *testing.T) {
	tempDir := t.TempDir()
	fs := storage.NewLocal()
	v := NewVerifier(8192)
	ctx := context.Background()

	t.Run("IdenticalFiles", func(t *testing.T) {
		src := filepath.Join(tempDir, "src.bin")
		cpy := filepath.Join(tempDir, "cpy.bin")
		content := []byte("identical content")
		writeFile(t, src, content)
		writeFile(t, cpy, content)

		if err := v.Verify(ctx, fs, src, cpy); err != nil {
			t.Errorf("Verify() error = %v, want nil", err)
		}
	})

	t.Run("DifferentContentSameSize", func(t *testing.T) {
		src := filepath.Join(tempDir, "src2.bin")
		cpy := filepath.Join(tempDir, "cpy2.bin")
		writeFile(t, src, []byte("aaaa"))
		writeFile(t, cpy, []byte("bbbb"))

		err := v.Verify(ctx, fs, src, cpy)
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Errorf("Verify() error = %v, want MismatchError", err)
		}
	})

	t.Run("DifferentSizes", func(t *testing.T) {
		src := filepath.Join(tempDir, "src3.bin")
		cpy := filepath.Join(tempDir, "cpy3.bin")
		writeFile(t, src, []byte("longer content"))
		writeFile(t, cpy, []byte("short"))

		err := v.Verify(ctx, fs, src, cpy)
		var mismatch *MismatchError
		if !errors.As(err, &mismatch) {
			t.Errorf("Verify() error = %v, want MismatchError", err)
		}
	})

	t.Run("MissingCopy", func(t *testing.T) {
		src := filepath.Join(tempDir, "src4.bin")
		writeFile(t, src, []byte("x"))

		if err := v.Verify(ctx, fs, src, filepath.Join(tempDir, "missing.bin")); err == nil {
			t.Error("Verify() should fail when the copy is missing")
		}
	})

	t.Run("EmptyFiles", func(t *testing.T) {
		src := filepath.Join(tempDir, "empty-src")
		cpy := filepath.Join(tempDir, "empty-cpy")
		writeFile(t, src, nil)
		writeFile(t, cpy, nil)

		if err := v.Verify(ctx, fs, src, cpy); err != nil {
			t.Errorf("Verify() error = %v, want nil for empty files", err)
		}
	})
}

// TestNewVerifierClampsBuffer tests the minimum buffer size
func TestNewVerifierClampsBuffer(t *testing.T) {
	v := NewVerifier(16)
	if v.bufferSize < 4096 {
		t.Errorf("bufferSize = %d, want at least 4096", v.bufferSize)
	}
}
