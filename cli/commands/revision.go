package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/migrate/planner"
	"github.com/schemaplan/schemaplan/schema"
)

// newRevisionCommand creates the revision command.
func newRevisionCommand() *cobra.Command {
	var message string
	var fills []string
	cmd := &cobra.Command{
		Use:   "revision",
		Short: "Create a new migration from model changes",
		Long:  "Diff the declared models against the migration history and write the result as a new migration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevision(message, fills)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "revision comment used in the file name")
	cmd.Flags().StringArrayVar(&fills, "fill-with", nil, "backfill expression for a NOT NULL column, as table.column=expression (repeatable)")
	return cmd
}

func runRevision(message string, fills []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	target, err := loadTarget(store)
	if err != nil {
		return err
	}
	baseline, applied, err := loadBaseline(store)
	if err != nil {
		return err
	}

	plan, err := planner.NextPlanWithBaseline(target, applied, baseline)
	if err != nil {
		return err
	}
	if len(plan.Actions) == 0 {
		ui.PrintSuccess("Nothing to do, models and migration history are in sync")
		return nil
	}

	fillMap, err := parseFills(fills)
	if err != nil {
		return err
	}
	plan.Actions = applyFills(plan.Actions, fillMap)

	if err := planner.ValidatePlan(plan); err != nil {
		if planner.IsKind(err, planner.KindMissingFillWith) {
			return fmt.Errorf("%w\nhint: pass --fill-with table.column=expression to backfill existing rows", err)
		}
		return err
	}

	if message == "" {
		if err := survey.AskOne(&survey.Input{Message: "Revision comment:"}, &message); err != nil {
			return err
		}
	}
	if message != "" {
		plan.Comment = &message
	}
	plan.CreatedAt = schema.StringPtr(time.Now().UTC().Format(time.RFC3339))

	name, err := store.SavePlan(plan)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Created %s with %d action(s)", name, len(plan.Actions))
	for _, action := range plan.Actions {
		printActionLine(action)
	}
	return nil
}

// parseFills parses repeated table.column=expression flags.
func parseFills(fills []string) (map[string]string, error) {
	out := make(map[string]string, len(fills))
	for _, f := range fills {
		key, expr, ok := strings.Cut(f, "=")
		if !ok || !strings.Contains(key, ".") {
			return nil, fmt.Errorf("invalid --fill-with %q, expected table.column=expression", f)
		}
		out[key] = expr
	}
	return out, nil
}

// applyFills attaches backfill expressions to the actions that need them.
func applyFills(actions []migrate.Action, fills map[string]string) []migrate.Action {
	if len(fills) == 0 {
		return actions
	}
	out := make([]migrate.Action, len(actions))
	for i, action := range actions {
		switch a := action.(type) {
		case migrate.AddColumn:
			if expr, ok := fills[a.Table+"."+a.Column.Name]; ok {
				a.FillWith = &expr
			}
			out[i] = a
		case migrate.ModifyColumnNullable:
			if expr, ok := fills[a.Table+"."+a.Column]; ok && !a.Nullable {
				a.FillWith = &expr
			}
			out[i] = a
		default:
			out[i] = action
		}
	}
	return out
}
