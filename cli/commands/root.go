// Package commands implements the schemaplan CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/cli/internal/version"
)

// Execute is the main entry point for the CLI
func Execute() error {
	rootCmd := &cobra.Command{
		Use:           "schemaplan",
		Short:         "Schema-first database migrations",
		Long:          "schemaplan derives ordered migration plans from declarative schema models and compiles them to PostgreSQL, MySQL and SQLite.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newNewCommand(),
		newValidateCommand(),
		newDiffCommand(),
		newRevisionCommand(),
		newStatusCommand(),
		newSQLCommand(),
		newLogCommand(),
		newWatchCommand(),
		newVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
