package models

import (
	"path/filepath"
	"strings"
)

// Category is the classification bucket a file belongs to,
// derived solely from its extension
type Category string

const (
	// CategoryDocument covers office documents, text and ebooks
	CategoryDocument Category = "document"
	// CategoryMusic covers audio files
	CategoryMusic Category = "music"
	// CategoryPhoto covers images and raw photo formats
	CategoryPhoto Category = "photo"
	// CategoryUnknown is the fallback for unmapped or empty extensions
	CategoryUnknown Category = "unknown"
)

// Categories lists every category that has a destination root.
// CategoryUnknown is deliberately absent: unknown files are never relocated.
var Categories = []Category{CategoryDocument, CategoryMusic, CategoryPhoto}

// Valid reports whether c is one of the defined categories
func (c Category) Valid() bool {
	switch c {
	case CategoryDocument, CategoryMusic, CategoryPhoto, CategoryUnknown:
		return true
	}
	return false
}

// FileEntry is an immutable descriptor of a file discovered during a scan.
// It is produced once per scan and never mutated afterwards.
type FileEntry struct {
	// AbsolutePath is the full path on the filesystem
	AbsolutePath string

	// Name is the base name including extension
	Name string

	// Ext is the extension, lower-cased, including the leading dot.
	// Empty when the file has no extension.
	Ext string

	// Size in bytes
	Size int64

	// Dir is the containing directory
	Dir string
}

// NewFileEntry builds a FileEntry from an absolute path and size,
// normalizing the extension
func NewFileEntry(absPath string, size int64) FileEntry {
	return FileEntry{
		AbsolutePath: absPath,
		Name:         filepath.Base(absPath),
		Ext:          strings.ToLower(filepath.Ext(absPath)),
		Size:         size,
		Dir:          filepath.Dir(absPath),
	}
}

// MoveOutcome describes what happened to a single relocation attempt
type MoveOutcome string

const (
	// OutcomeMoved indicates the file was relocated successfully
	OutcomeMoved MoveOutcome = "moved"
	// OutcomeSkippedExists indicates the destination already existed and
	// overwrite was not allowed; the source is untouched
	OutcomeSkippedExists MoveOutcome = "skipped_exists"
	// OutcomeSkippedNoExtension indicates the file had no extension and
	// could not be classified
	OutcomeSkippedNoExtension MoveOutcome = "skipped_no_extension"
	// OutcomeSkippedSourceVanished indicates the source disappeared
	// between scan and move
	OutcomeSkippedSourceVanished MoveOutcome = "skipped_source_vanished"
	// OutcomeFailed indicates the move failed; the source is intact
	OutcomeFailed MoveOutcome = "failed"
	// OutcomeSimulatedOnly indicates simulate mode recorded the intended
	// move without touching the filesystem
	OutcomeSimulatedOnly MoveOutcome = "simulated"
	// OutcomeMovedSourceRemains indicates the copy and rename succeeded
	// but the source could not be deleted. The file exists at both
	// locations. This is counted as a failure, never a clean success.
	OutcomeMovedSourceRemains MoveOutcome = "moved_source_remains"
)

// IsSkip reports whether the outcome is an expected per-entry skip
// rather than an error
func (o MoveOutcome) IsSkip() bool {
	switch o {
	case OutcomeSkippedExists, OutcomeSkippedNoExtension, OutcomeSkippedSourceVanished:
		return true
	}
	return false
}

// IsFailure reports whether the outcome must be counted as a failure.
// OutcomeMovedSourceRemains is a failure by policy: it leaves a lingering
// duplicate on disk.
func (o MoveOutcome) IsFailure() bool {
	return o == OutcomeFailed || o == OutcomeMovedSourceRemains
}

// MoveRecord is the result of one relocation attempt, one per entry
type MoveRecord struct {
	Source      string
	Destination string
	Category    Category
	Outcome     MoveOutcome
	BytesMoved  int64
	Reason      string
}
