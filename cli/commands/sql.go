package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/migrate/planner"
	"github.com/schemaplan/schemaplan/migrate/sqlgen"
	"github.com/schemaplan/schemaplan/schema"
)

// newSQLCommand creates the sql command.
func newSQLCommand() *cobra.Command {
	var backend string
	var version uint32
	var all bool
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Compile migrations to SQL",
		Long:  "Render the SQL statements a migration produces for the selected backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(backend, version, all)
		},
	}
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "target backend: postgres, mysql or sqlite (default: configured provider)")
	cmd.Flags().Uint32VarP(&version, "version", "n", 0, "render a single revision (default: all revisions)")
	cmd.Flags().BoolVar(&all, "all-backends", false, "render every supported backend")
	return cmd
}

func runSQL(backend string, version uint32, all bool) error {
	cfg, store, err := openStore()
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

	dialects := []sqlgen.Dialect{}
	if all {
		dialects = sqlgen.AllDialects
	} else {
		if backend == "" {
			backend = cfg.Provider
		}
		d, err := sqlgen.ParseDialect(backend)
		if err != nil {
			return err
		}
		dialects = append(dialects, d)
	}

	var baseline []schema.Table
	for _, plan := range plans {
		if version == 0 || plan.Version == version {
			if err := printPlanSQL(plan, baseline, dialects); err != nil {
				return err
			}
		}
		baseline, err = planner.ApplyPlan(baseline, plan)
		if err != nil {
			return fmt.Errorf("failed to replay revision %d: %w", plan.Version, err)
		}
	}
	return nil
}

func printPlanSQL(plan migrate.Plan, baseline []schema.Table, dialects []sqlgen.Dialect) error {
	title := fmt.Sprintf("revision %d", plan.Version)
	if plan.Comment != nil {
		title += ": " + *plan.Comment
	}
	ui.PrintInfo("%s", title)
	for _, d := range dialects {
		stmts, err := sqlgen.NewGeneratorFor(d).PlanSQL(plan, baseline)
		if err != nil {
			return fmt.Errorf("%s: %w", d, err)
		}
		var flat []string
		for _, group := range stmts {
			flat = append(flat, group...)
		}
		ui.PrintSQL(string(d), flat)
	}
	return nil
}
