package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tdelacour/housekeep/internal/platform"
	"github.com/tdelacour/housekeep/pkg/organize"
	"github.com/tdelacour/housekeep/pkg/output"
	"github.com/tdelacour/housekeep/pkg/storage"
)

// MusicFlags holds music command flags
type MusicFlags struct {
	Root       string
	Duplicates string
	Simulate   bool
	Timeout    string
	Output     string

	Report       string
	ReportFormat string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var musicFlags MusicFlags

// NewMusicCommand creates the music command
func NewMusicCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "music",
		Short: "Consolidate nested album folders into the music root",
		Long: `Walk the music root deepest-first and lift nested album folders up to
the root. A folder whose name already exists at the root is treated as a
duplicate album and diverted into the duplicates folder instead of being
merged or overwritten. Folders without any music content are removed.`,
		RunE: runMusic,
	}

	cmd.Flags().StringVarP(&musicFlags.Root, "root", "r", "", "music root folder (default from config)")
	cmd.Flags().StringVarP(&musicFlags.Duplicates, "duplicates", "d", "", "folder receiving duplicate albums (default: <root>/Duplicates)")
	cmd.Flags().BoolVarP(&musicFlags.Simulate, "simulate", "n", false, "report intended moves without touching any folder")
	cmd.Flags().StringVarP(&musicFlags.Timeout, "timeout", "t", "", "wall-clock budget (e.g. \"30m\")")
	cmd.Flags().StringVarP(&musicFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&musicFlags.Report, "report", "", "write run report to file")
	cmd.Flags().StringVar(&musicFlags.ReportFormat, "report-format", "json", "report format: json, csv, html")

	cmd.Flags().StringVar(&musicFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&musicFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&musicFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runMusic(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if musicFlags.Root != "" {
		cfg.Destinations.Music = musicFlags.Root
	}
	if musicFlags.Duplicates != "" {
		cfg.Destinations.Duplicates = musicFlags.Duplicates
	}
	if musicFlags.Timeout != "" {
		cfg.Organize.Timeout = musicFlags.Timeout
	}
	if musicFlags.Output != "" {
		cfg.Output.Format = musicFlags.Output
	}
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	if cfg.Destinations.Music == "" {
		return fmt.Errorf("no music root configured (use --root or the config file)")
	}
	musicRoot, err := platform.Absolutize(cfg.Destinations.Music)
	if err != nil {
		return err
	}
	if _, err := os.Stat(musicRoot); os.IsNotExist(err) {
		return fmt.Errorf("music root does not exist: %s", musicRoot)
	}
	cfg.Destinations.Music = musicRoot

	// The music pass scans the music root itself
	spec, err := buildRunSpec(cfg, []string{musicRoot}, musicFlags.Simulate, false)
	if err != nil {
		return err
	}
	// Deepest-first consolidation is order-sensitive and never concurrent
	spec.MaxWorkers = 1

	logger, err := createLogger(musicFlags.LogFile, musicFlags.LogFormat, musicFlags.LogLevel)
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

	report, err := runner.RunMusic(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	if musicFlags.Report != "" {
		if err := output.WriteReport(report, musicFlags.Report, musicFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	os.Exit(report.Status.ExitCode())
	return nil
}
