package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tdelacour/housekeep/internal/cli"
	"github.com/tdelacour/housekeep/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "housekeep",
		Short: "File-system housekeeping utility",
		Long: `housekeep sorts files from scattered source folders into category
folders (documents, music, photos), consolidates nested album folders
into a flat music library, and audits folder trees. Moves are performed
safely: copy, verify, rename, then delete the source.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewOrganizeCommand())
	rootCmd.AddCommand(cli.NewMusicCommand())
	rootCmd.AddCommand(cli.NewAuditCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
