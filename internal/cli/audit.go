package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdelacour/housekeep/pkg/audit"
	"github.com/tdelacour/housekeep/pkg/classify"
	"github.com/tdelacour/housekeep/pkg/storage"
)

// AuditFlags holds audit command flags
type AuditFlags struct {
	DirTimeout string
	Report     string
	Format     string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var auditFlags AuditFlags

// NewAuditCommand creates the audit command
func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <path>",
		Short: "Report size and extension statistics for a folder tree",
		Long: `Walk a folder tree and report per-directory, per-extension and
per-category totals without moving anything. Each immediate subdirectory
is enumerated under a hard timeout; one that hangs is skipped with a
warning instead of stalling the audit.`,
		Args: cobra.ExactArgs(1),
		RunE: runAudit,
	}

	cmd.Flags().StringVar(&auditFlags.DirTimeout, "dir-timeout", "", "per-directory enumeration limit (e.g. \"30s\")")
	cmd.Flags().StringVar(&auditFlags.Report, "report", "", "write audit report to file")
	cmd.Flags().StringVarP(&auditFlags.Format, "format", "f", "json", "report file format: json, csv, html")

	cmd.Flags().StringVar(&auditFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&auditFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&auditFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if auditFlags.DirTimeout != "" {
		cfg.Audit.DirTimeout = auditFlags.DirTimeout
	}

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	table, err := classify.Build(cfg.ExtensionOverrides())
	if err != nil {
		return err
	}

	var dirTimeout time.Duration
	if dirTimeout, err = cfg.AuditDirTimeout(); err != nil {
		return err
	}

	logger, err := createLogger(auditFlags.LogFile, auditFlags.LogFormat, auditFlags.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	auditor := audit.New(storage.NewLocal(), table, logger, dirTimeout)
	report, err := auditor.Run(ctx, roots[0])
	if err != nil {
		return err
	}

	if !globalFlags.Quiet {
		if err := audit.Print(os.Stdout, report); err != nil {
			return err
		}
	}

	if auditFlags.Report != "" {
		if err := audit.Write(report, auditFlags.Report, auditFlags.Format); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}
