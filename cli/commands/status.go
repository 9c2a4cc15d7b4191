package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/migrate/planner"
)

// newStatusCommand creates the status command.
func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the migration workspace",
		Long:  "Show the migration history and whether the models have drifted from it",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	target, err := loadTarget(store)
	if err != nil {
		return err
	}
	baseline, plans, err := loadBaseline(store)
	if err != nil {
		return err
	}

	ui.PrintInfo("Provider: %s", cfg.Provider)
	ui.PrintInfo("Models: %d table(s) in %s/", len(target), store.ModelsDir())
	ui.PrintInfo("Migrations: %d revision(s) in %s/", len(plans), store.MigrationsDir())
	fmt.Println()

	plan, err := planner.Diff(baseline, target)
	if err != nil {
		return err
	}
	if len(plan.Actions) == 0 {
		ui.PrintSuccess("Up to date")
		return nil
	}
	ui.PrintWarning("%d pending change(s); run `schemaplan diff` to inspect or `schemaplan revision` to record them", len(plan.Actions))
	return nil
}
