package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
)

// newLogCommand creates the log command.
func newLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "List recorded migrations",
		RunE:  runLog,
	}
}

func runLog(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	plans, err := store.LoadPlans()
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		ui.PrintWarning("No migrations found")
		return nil
	}

	rows := make([][]string, 0, len(plans))
	for _, plan := range plans {
		comment := ""
		if plan.Comment != nil {
			comment = *plan.Comment
		}
		created := ""
		if plan.CreatedAt != nil {
			created = *plan.CreatedAt
		}
		rows = append(rows, []string{
			fmt.Sprintf("%04d", plan.Version),
			comment,
			fmt.Sprintf("%d", len(plan.Actions)),
			created,
		})
	}
	ui.PrintTable([]string{"Version", "Comment", "Actions", "Created"}, rows)
	return nil
}
