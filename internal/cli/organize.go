package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tdelacour/housekeep/pkg/config"
	"github.com/tdelacour/housekeep/pkg/organize"
	"github.com/tdelacour/housekeep/pkg/output"
	"github.com/tdelacour/housekeep/pkg/storage"
)

// OrganizeFlags holds organize command flags
type OrganizeFlags struct {
	Documents string
	Music     string
	Photos    string
	Mode      string
	Simulate  bool
	Overwrite bool
	Timeout   string
	Parallel  int
	Bandwidth string
	Exclude   []string
	Output    string

	Report       string
	ReportFormat string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var organizeFlags OrganizeFlags

// NewOrganizeCommand creates the organize command
func NewOrganizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize [source]...",
		Short: "Sort files from source folders into category folders",
		Long: `Scan one or more source folders, classify each file by extension
(document, music, photo) and move it into the matching destination folder.
Files with no extension or an unmapped extension are left in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runOrganize,
	}

	cmd.Flags().StringVar(&organizeFlags.Documents, "documents", "", "destination folder for documents")
	cmd.Flags().StringVar(&organizeFlags.Music, "music", "", "destination folder for music")
	cmd.Flags().StringVar(&organizeFlags.Photos, "photos", "", "destination folder for photos")
	cmd.Flags().StringVarP(&organizeFlags.Mode, "mode", "m", "", "layout mode: flatten, preserve")
	cmd.Flags().BoolVarP(&organizeFlags.Simulate, "simulate", "n", false, "report intended moves without touching any file")
	cmd.Flags().BoolVar(&organizeFlags.Overwrite, "overwrite", false, "replace existing destination files")
	cmd.Flags().StringVarP(&organizeFlags.Timeout, "timeout", "t", "", "wall-clock budget (e.g. \"30m\"); processing stops early when exceeded")
	cmd.Flags().IntVarP(&organizeFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: 1, sequential)")
	cmd.Flags().StringVarP(&organizeFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g. \"10M\", \"1G\")")
	cmd.Flags().StringSliceVar(&organizeFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&organizeFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&organizeFlags.Report, "report", "", "write run report to file")
	cmd.Flags().StringVar(&organizeFlags.ReportFormat, "report-format", "json", "report format: json, csv, html")

	cmd.Flags().StringVar(&organizeFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&organizeFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&organizeFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runOrganize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyOrganizeFlags(cfg); err != nil {
		return err
	}

	sources, err := resolveRoots(args)
	if err != nil {
		return err
	}

	spec, err := buildRunSpec(cfg, sources, organizeFlags.Simulate, organizeFlags.Overwrite)
	if err != nil {
		return err
	}

	logger, err := createLogger(organizeFlags.LogFile, organizeFlags.LogFormat, organizeFlags.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter := buildFormatter(cfg, cfg.Output.Format)
	exec := organize.NewExec(storage.NewLocal(), logger, spec.Simulate)

	runner, err := organize.NewRunner(spec, exec, formatter)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	if organizeFlags.Report != "" {
		if err := output.WriteReport(report, organizeFlags.Report, organizeFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	os.Exit(report.Status.ExitCode())
	return nil
}

// applyOrganizeFlags overrides config values with command-line flags
func applyOrganizeFlags(cfg *config.Config) error {
	if organizeFlags.Documents != "" {
		cfg.Destinations.Documents = organizeFlags.Documents
	}
	if organizeFlags.Music != "" {
		cfg.Destinations.Music = organizeFlags.Music
	}
	if organizeFlags.Photos != "" {
		cfg.Destinations.Photos = organizeFlags.Photos
	}
	if organizeFlags.Mode != "" {
		cfg.Organize.Mode = organizeFlags.Mode
	}
	if organizeFlags.Timeout != "" {
		cfg.Organize.Timeout = organizeFlags.Timeout
	}
	if organizeFlags.Parallel > 0 {
		cfg.Performance.MaxWorkers = organizeFlags.Parallel
	}
	if organizeFlags.Bandwidth != "" {
		limit, err := parseBandwidth(organizeFlags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Performance.BandwidthLimit = limit
	}
	if len(organizeFlags.Exclude) > 0 {
		cfg.Exclude = organizeFlags.Exclude
	}
	if organizeFlags.Output != "" {
		cfg.Output.Format = organizeFlags.Output
	}

	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}
	return nil
}
