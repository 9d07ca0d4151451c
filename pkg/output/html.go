package output

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/tdelacour/housekeep/pkg/models"
)

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>housekeep report {{.RunID}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f0f0f0; }
.failed { color: #b00020; }
.moved { color: #1b5e20; }
.skipped { color: #666; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>Housekeeping report</h1>
<p class="meta">
Run {{.RunID}} ({{.Pass}} pass){{if .Simulate}}, simulate only{{end}}<br>
Started {{.Started}}, finished in {{.Duration}}<br>
Status: {{.Status}}{{if .TimedOut}} (budget exceeded, run stopped early){{end}}
</p>

<h2>Totals</h2>
<table>
<tr><th>Processed</th><th>Moved</th><th>Skipped</th><th>Failed</th><th>Duplicates</th><th>Bytes moved</th></tr>
<tr><td>{{.Processed}}</td><td>{{.Moved}}</td><td>{{.Skipped}}</td><td>{{.Failed}}</td><td>{{.Duplicates}}</td><td>{{.BytesMoved}}</td></tr>
</table>

{{if .Records}}
<h2>Entries</h2>
<table>
<tr><th>Source</th><th>Destination</th><th>Category</th><th>Outcome</th><th>Reason</th></tr>
{{range .Records}}
<tr>
<td>{{.Source}}</td>
<td>{{.Destination}}</td>
<td>{{.Category}}</td>
<td class="{{.Class}}">{{.Outcome}}</td>
<td>{{.Reason}}</td>
</tr>
{{end}}
</table>
{{end}}

{{if .Warnings}}
<h2>Warnings</h2>
<ul>
{{range .Warnings}}<li>{{.}}</li>{{end}}
</ul>
{{end}}

{{if .Errors}}
<h2>Errors</h2>
<ul>
{{range .Errors}}<li>{{.Path}}: {{.Message}}</li>{{end}}
</ul>
{{end}}
</body>
</html>
`

type htmlRecord struct {
	Source      string
	Destination string
	Category    string
	Outcome     string
	Reason      string
	Class       string
}

type htmlReport struct {
	RunID      string
	Pass       string
	Simulate   bool
	Started    string
	Duration   string
	Status     string
	TimedOut   bool
	Processed  int64
	Moved      int64
	Skipped    int64
	Failed     int64
	Duplicates int64
	BytesMoved string
	Records    []htmlRecord
	Warnings   []string
	Errors     []models.RunError
}

// writeHTMLReport renders the report as a standalone HTML page
func writeHTMLReport(report *models.RunReport, w io.Writer) error {
	tmpl, err := template.New("report").Parse(htmlReportTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse report template: %w", err)
	}

	data := htmlReport{
		RunID:      report.RunID,
		Pass:       report.Pass,
		Simulate:   report.Simulate,
		Started:    report.StartTime.Format(time.RFC1123),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		Status:     string(report.Status),
		TimedOut:   report.TimedOut,
		Processed:  report.Stats.Processed.Load(),
		Moved:      report.Stats.Moved.Load(),
		Skipped:    report.Stats.Skipped.Load(),
		Failed:     report.Stats.Failed.Load(),
		Duplicates: report.Stats.Duplicates.Load(),
		BytesMoved: formatBytes(report.Stats.BytesMoved.Load()),
		Warnings:   report.Warnings(),
		Errors:     report.Errors(),
	}

	for _, rec := range report.Records() {
		class := "skipped"
		switch {
		case rec.Outcome == models.OutcomeMoved:
			class = "moved"
		case rec.Outcome.IsFailure():
			class = "failed"
		}
		data.Records = append(data.Records, htmlRecord{
			Source:      rec.Source,
			Destination: rec.Destination,
			Category:    string(rec.Category),
			Outcome:     string(rec.Outcome),
			Reason:      rec.Reason,
			Class:       class,
		})
	}

	return tmpl.Execute(w, data)
}
