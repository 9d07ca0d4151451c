// Package organize implements the safe file-relocation engine: the
// execution context, the safe mover, the music-folder consolidator and
// the run orchestrator.
package organize

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/tdelacour/housekeep/pkg/logging"
	"github.com/tdelacour/housekeep/pkg/storage"
)

// FolderCreationError indicates a destination directory could not be
// created. It is recoverable: the entry is marked failed and the run
// continues.
type FolderCreationError struct {
	Path string
	Err  error
}

func (e *FolderCreationError) Error() string {
	return fmt.Sprintf("failed to create folder %q: %v", e.Path, e.Err)
}

func (e *FolderCreationError) Unwrap() error { return e.Err }

// Exec threads the simulate-only capability through every mutating
// primitive. Callers never branch on simulate themselves: they call
// these methods and the branch happens here, once. In simulate mode
// each primitive logs the intended action and reports success so
// downstream planning proceeds as if the mutation happened.
type Exec struct {
	FS       storage.Backend
	Log      logging.Logger
	Simulate bool
}

// NewExec creates an execution context
func NewExec(fs storage.Backend, log logging.Logger, simulate bool) *Exec {
	if log == nil {
		log = logging.NewNullLogger()
	}
	return &Exec{FS: fs, Log: log, Simulate: simulate}
}

// EnsureDir idempotently guarantees path and its ancestors exist.
// Returns true when the directory exists or is treated as created.
func (e *Exec) EnsureDir(ctx context.Context, path string) (bool, error) {
	exists, err := e.FS.Exists(ctx, path)
	if err != nil {
		return false, &FolderCreationError{Path: path, Err: err}
	}
	if exists {
		return true, nil
	}

	if e.Simulate {
		e.Log.Info(ctx, "would create folder", logging.Fields{"path": path})
		return true, nil
	}

	// MkdirAll creates the ancestors; make sure the parent chain is
	// checked so a file sitting where a directory should be fails here
	// rather than mid-move.
	parent := filepath.Dir(path)
	if parent != path {
		if info, statErr := e.FS.Stat(ctx, parent); statErr == nil && !info.IsDir {
			return false, &FolderCreationError{Path: path, Err: fmt.Errorf("parent %q is not a directory", parent)}
		}
	}

	if err := e.FS.MkdirAll(ctx, path); err != nil {
		return false, &FolderCreationError{Path: path, Err: err}
	}
	return true, nil
}

// Rename renames a file or directory, or logs the intent in simulate mode
func (e *Exec) Rename(ctx context.Context, oldPath, newPath string) error {
	if e.Simulate {
		e.Log.Info(ctx, "would rename", logging.Fields{"from": oldPath, "to": newPath})
		return nil
	}
	return e.FS.Rename(ctx, oldPath, newPath)
}

// Remove deletes a file or empty directory, or logs the intent in simulate mode
func (e *Exec) Remove(ctx context.Context, path string) error {
	if e.Simulate {
		e.Log.Info(ctx, "would remove", logging.Fields{"path": path})
		return nil
	}
	return e.FS.Remove(ctx, path)
}

// RemoveAll deletes a directory tree, or logs the intent in simulate mode
func (e *Exec) RemoveAll(ctx context.Context, path string) error {
	if e.Simulate {
		e.Log.Info(ctx, "would remove tree", logging.Fields{"path": path})
		return nil
	}
	return e.FS.RemoveAll(ctx, path)
}

// Write creates a file with the given content, or logs the intent in
// simulate mode
func (e *Exec) Write(ctx context.Context, path string, reader io.Reader, size int64) error {
	if e.Simulate {
		e.Log.Info(ctx, "would write", logging.Fields{"path": path, "bytes": size})
		return nil
	}
	return e.FS.Write(ctx, path, reader, size)
}
