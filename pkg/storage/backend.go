package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file or directory
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Backend defines the filesystem operations the housekeeping core needs.
// Paths are absolute; an organize run spans several unrelated roots, so
// the backend is not anchored to one of them.
type Backend interface {
	// List walks path recursively and returns every entry. Subtrees
	// that cannot be read (permission denied) are skipped and returned
	// in the second value rather than failing the walk.
	List(ctx context.Context, path string) ([]FileInfo, []string, error)

	// ListDir returns the immediate children of a directory, without
	// descending
	ListDir(ctx context.Context, path string) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or overwrites a file with the given content and
	// verifies the expected number of bytes was written
	Write(ctx context.Context, path string, reader io.Reader, size int64) error

	// Rename atomically renames a file or directory
	Rename(ctx context.Context, oldPath, newPath string) error

	// Remove deletes a single file or empty directory
	Remove(ctx context.Context, path string) error

	// RemoveAll deletes a directory tree
	RemoveAll(ctx context.Context, path string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error
}
