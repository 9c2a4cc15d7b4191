package commands

import (
	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/migrate/planner"
)

// newDiffCommand creates the diff command.
func newDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Preview the changes a new revision would contain",
		Long:  "Compare the declared models against the replayed migration history",
		RunE:  runDiff,
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	target, err := loadTarget(store)
	if err != nil {
		return err
	}
	baseline, _, err := loadBaseline(store)
	if err != nil {
		return err
	}
	plan, err := planner.Diff(baseline, target)
	if err != nil {
		return err
	}
	if len(plan.Actions) == 0 {
		ui.PrintSuccess("Models and migration history are in sync")
		return nil
	}

	ui.PrintInfo("%d pending change(s):", len(plan.Actions))
	for _, action := range plan.Actions {
		printActionLine(action)
	}
	return nil
}

func printActionLine(action migrate.Action) {
	switch action.(type) {
	case migrate.CreateTable, migrate.AddColumn, migrate.AddIndex, migrate.AddConstraint:
		ui.PrintAdded("%s", describeAction(action))
	case migrate.DeleteTable, migrate.DeleteColumn, migrate.RemoveIndex, migrate.RemoveConstraint:
		ui.PrintRemoved("%s", describeAction(action))
	default:
		ui.PrintChanged("%s", describeAction(action))
	}
}
