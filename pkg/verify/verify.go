// Package verify checks that a copied file matches its source before
// the original is deleted.
package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/tdelacour/housekeep/pkg/storage"
)

// Verifier compares a source file against its freshly written copy
// using streaming SHA-256 digests.
type Verifier struct {
	bufferSize int
	bufferPool *sync.Pool
}

// NewVerifier creates a verifier with the given read buffer size
func NewVerifier(bufferSize int) *Verifier {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &Verifier{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// MismatchError indicates the copy does not match the source
type MismatchError struct {
	Source string
	Copy   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("copy %q does not match source %q", e.Copy, e.Source)
}

// Verify hashes both files and fails with MismatchError if the digests
// differ. Sizes are compared first as a cheap rejection.
func (v *Verifier) Verify(ctx context.Context, fs storage.Backend, sourcePath, copyPath string) error {
	sourceInfo, err := fs.Stat(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	copyInfo, err := fs.Stat(ctx, copyPath)
	if err != nil {
		return fmt.Errorf("failed to stat copy: %w", err)
	}
	if sourceInfo.Size != copyInfo.Size {
		return &MismatchError{Source: sourcePath, Copy: copyPath}
	}

	var sourceHash, copyHash string
	var sourceErr, copyErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceHash, sourceErr = v.hashFile(ctx, fs, sourcePath)
	}()
	go func() {
		defer wg.Done()
		copyHash, copyErr = v.hashFile(ctx, fs, copyPath)
	}()
	wg.Wait()

	if sourceErr != nil {
		return fmt.Errorf("failed to hash source: %w", sourceErr)
	}
	if copyErr != nil {
		return fmt.Errorf("failed to hash copy: %w", copyErr)
	}

	if sourceHash != copyHash {
		return &MismatchError{Source: sourcePath, Copy: copyPath}
	}
	return nil
}

func (v *Verifier) hashFile(ctx context.Context, fs storage.Backend, path string) (string, error) {
	reader, err := fs.Read(ctx, path)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	bufPtr := v.bufferPool.Get().(*[]byte)
	defer v.bufferPool.Put(bufPtr)

	hasher := sha256.New()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := reader.Read(*bufPtr)
		if n > 0 {
			hasher.Write((*bufPtr)[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
