package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"

	"github.com/tdelacour/housekeep/pkg/models"
)

// Print writes a human-readable audit summary
func Print(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "Audit of %s (%s)\n", report.Root, report.Duration)
	fmt.Fprintf(w, "  Files:       %d\n", report.TotalFiles)
	fmt.Fprintf(w, "  Directories: %d\n", report.TotalDirs)
	fmt.Fprintf(w, "  Total size:  %s\n", formatBytes(report.TotalBytes))

	if len(report.ByCategory) > 0 {
		fmt.Fprintln(w, "\nBy category:")
		for _, cat := range append(models.Categories, models.CategoryUnknown) {
			stats, ok := report.ByCategory[cat]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %-10s %6d files  %10s\n", cat, stats.Files, formatBytes(stats.Bytes))
		}
	}

	if len(report.Dirs) > 0 {
		fmt.Fprintln(w, "\nLargest directories:")
		for _, dir := range report.Dirs {
			fmt.Fprintf(w, "  %10s  %6d files  %s\n", formatBytes(dir.Bytes), dir.Files, dir.Path)
		}
	}

	if len(report.Extensions) > 0 {
		fmt.Fprintln(w, "\nBy extension:")
		for _, ext := range report.Extensions {
			name := ext.Extension
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(w, "  %-10s %6d files  %10s  %s\n", name, ext.Files, formatBytes(ext.Bytes), ext.Category)
		}
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "\nwarning: %s", warning)
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintln(w)
	}
	return nil
}

// Write serializes the audit report to a file in the given format
func Write(report *Report, path, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "csv":
		return writeCSV(file, report)
	case "html":
		return writeHTML(file, report)
	default:
		return fmt.Errorf("unsupported report format: %s (use: json, csv, html)", format)
	}
}

// writeCSV emits one row per extension, the stable unit of an audit
func writeCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"extension", "category", "files", "bytes"}); err != nil {
		return err
	}
	for _, ext := range report.Extensions {
		row := []string{
			ext.Extension,
			string(ext.Category),
			strconv.FormatInt(ext.Files, 10),
			strconv.FormatInt(ext.Bytes, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var auditTemplate = template.Must(template.New("audit").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Audit of {{.Root}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: left; }
th { background: #f0f0f0; }
td.num { text-align: right; }
.warning { color: #a60; }
</style>
</head>
<body>
<h1>Audit of {{.Root}}</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} in {{.Duration}}</p>

<table>
<tr><th>Files</th><th>Directories</th><th>Bytes</th></tr>
<tr><td class="num">{{.TotalFiles}}</td><td class="num">{{.TotalDirs}}</td><td class="num">{{.TotalBytes}}</td></tr>
</table>

<h2>Directories</h2>
<table>
<tr><th>Path</th><th>Files</th><th>Bytes</th></tr>
{{range .Dirs}}<tr><td>{{.Path}}</td><td class="num">{{.Files}}</td><td class="num">{{.Bytes}}</td></tr>
{{end}}</table>

<h2>Extensions</h2>
<table>
<tr><th>Extension</th><th>Category</th><th>Files</th><th>Bytes</th></tr>
{{range .Extensions}}<tr><td>{{.Extension}}</td><td>{{.Category}}</td><td class="num">{{.Files}}</td><td class="num">{{.Bytes}}</td></tr>
{{end}}</table>

{{if .Warnings}}<h2>Warnings</h2>
<ul>
{{range .Warnings}}<li class="warning">{{.}}</li>
{{end}}</ul>{{end}}
</body>
</html>
`))

func writeHTML(w io.Writer, report *Report) error {
	return auditTemplate.Execute(w, report)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
