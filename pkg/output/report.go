package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tdelacour/housekeep/pkg/models"
)

// WriteReport serializes the finalized run report to a file.
// Format can be "json", "csv" or "html".
func WriteReport(report *models.RunReport, path, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "csv":
		return writeCSVReport(report, file)
	case "html":
		return writeHTMLReport(report, file)
	case "json":
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(buildJSONReport(report))
	default:
		return fmt.Errorf("unsupported report format: %s (use: json, csv, html)", format)
	}
}
