package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tdelacour/housekeep/pkg/models"
)

// writeCSVReport writes one row per move record, suitable for
// spreadsheet-based auditing
func writeCSVReport(report *models.RunReport, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{"source", "destination", "category", "outcome", "bytes", "reason"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range report.Records() {
		row := []string{
			rec.Source,
			rec.Destination,
			string(rec.Category),
			string(rec.Outcome),
			strconv.FormatInt(rec.BytesMoved, 10),
			rec.Reason,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
