package models

import (
	"time"
)

// OrganizeMode defines how destination paths are laid out
type OrganizeMode string

const (
	// ModeFlatten places every file directly under its category root
	ModeFlatten OrganizeMode = "flatten"
	// ModePreserve mirrors the file's relative location under the source root
	ModePreserve OrganizeMode = "preserve"
)

// RunSpec is the validated input for a run. It is built once at run
// start from configuration and flags; the core never consults ambient
// state afterwards.
type RunSpec struct {
	ID          string
	SourceRoots []string

	// CategoryRoots maps each relocatable category to its destination root
	CategoryRoots map[Category]string

	// DuplicatesDir receives diverted duplicate album folders (music pass)
	DuplicatesDir string

	Mode      OrganizeMode
	Simulate  bool
	Overwrite bool

	// Budget is the wall-clock limit for a run; zero means unlimited
	Budget time.Duration

	// MaxWorkers bounds the concurrent file-move workers; 1 means
	// strictly sequential
	MaxWorkers int

	// BandwidthLimit caps copy throughput in bytes per second; 0 = unlimited
	BandwidthLimit int64

	// ExcludePatterns are glob patterns skipped during scans
	ExcludePatterns []string

	// ExtensionOverrides adds or replaces extension-to-category mappings
	ExtensionOverrides map[string]Category

	CreatedAt time.Time
}

// Validate checks the spec before any file is touched
func (s *RunSpec) Validate() error {
	if len(s.SourceRoots) == 0 {
		return &ValidationError{Field: "SourceRoots", Message: "at least one source root is required"}
	}
	for _, root := range s.SourceRoots {
		if root == "" {
			return &ValidationError{Field: "SourceRoots", Message: "source root must not be empty"}
		}
	}
	if len(s.CategoryRoots) == 0 {
		return &ValidationError{Field: "CategoryRoots", Message: "at least one category root is required"}
	}
	for cat, root := range s.CategoryRoots {
		if !cat.Valid() || cat == CategoryUnknown {
			return &ValidationError{Field: "CategoryRoots", Message: "unknown category: " + string(cat)}
		}
		if root == "" {
			return &ValidationError{Field: "CategoryRoots", Message: "root for " + string(cat) + " must not be empty"}
		}
	}
	if s.Mode != ModeFlatten && s.Mode != ModePreserve {
		return &ValidationError{Field: "Mode", Message: "must be 'flatten' or 'preserve'"}
	}
	if s.Budget < 0 {
		return &ValidationError{Field: "Budget", Message: "must not be negative"}
	}
	if s.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "must be at least 1"}
	}
	if s.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "must not be negative"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
