// Package classify maps file extensions to categories.
package classify

import (
	"fmt"
	"strings"

	"github.com/tdelacour/housekeep/pkg/models"
)

// Table is a mapping from normalized extension (lower-cased, with the
// leading dot) to category. Each extension maps to exactly one category.
type Table map[string]models.Category

// defaultExtensions lists the built-in extension sets per category.
// Uniqueness across categories is enforced by Build.
var defaultExtensions = map[models.Category][]string{
	models.CategoryDocument: {
		".pdf", ".doc", ".docx", ".odt", ".rtf", ".txt", ".md",
		".xls", ".xlsx", ".ods", ".csv",
		".ppt", ".pptx", ".odp",
		".epub", ".mobi",
	},
	models.CategoryMusic: {
		".mp3", ".flac", ".wav", ".aac", ".m4a", ".ogg", ".opus", ".wma", ".aiff",
	},
	models.CategoryPhoto: {
		".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp", ".heic",
		".raw", ".cr2", ".nef", ".arw", ".dng",
	},
}

// Default returns the built-in table
func Default() Table {
	table, err := Build(nil)
	if err != nil {
		// The built-in sets are disjoint; Build cannot fail without overrides.
		panic(err)
	}
	return table
}

// Build constructs a table from the built-in sets plus overrides.
// It fails if any extension would map to more than one category, or if
// an override names an invalid category.
func Build(overrides map[string]models.Category) (Table, error) {
	table := make(Table)

	for _, cat := range models.Categories {
		for _, ext := range defaultExtensions[cat] {
			if existing, ok := table[ext]; ok && existing != cat {
				return nil, fmt.Errorf("extension %q mapped to both %s and %s", ext, existing, cat)
			}
			table[ext] = cat
		}
	}

	for ext, cat := range overrides {
		normalized := normalizeExt(ext)
		if normalized == "" {
			return nil, fmt.Errorf("override extension %q is empty", ext)
		}
		if !cat.Valid() || cat == models.CategoryUnknown {
			return nil, fmt.Errorf("override for %q names invalid category %q", ext, cat)
		}
		table[normalized] = cat
	}

	return table, nil
}

// Classify returns the category for an extension. The lookup is pure
// and total: empty or unmapped extensions yield CategoryUnknown.
func (t Table) Classify(ext string) models.Category {
	if ext == "" {
		return models.CategoryUnknown
	}
	if cat, ok := t[normalizeExt(ext)]; ok {
		return cat
	}
	return models.CategoryUnknown
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
