package commands

import (
	"fmt"
	"strings"

	"github.com/schemaplan/schemaplan/cli/internal/config"
	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/migrate/history"
	"github.com/schemaplan/schemaplan/migrate/planner"
	"github.com/schemaplan/schemaplan/schema"
)

// openStore loads the configuration and opens the migration workspace.
func openStore() (*config.Config, *history.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	store := history.NewStore(config.AppFs, cfg.ModelsDir, cfg.MigrationsDir)
	return cfg, store, nil
}

// loadTarget reads and validates the declared models.
func loadTarget(store *history.Store) ([]schema.Table, error) {
	tables, err := store.LoadModels()
	if err != nil {
		return nil, err
	}
	if err := planner.ValidateSchema(tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// loadBaseline replays the saved plans into the schema they produce.
func loadBaseline(store *history.Store) ([]schema.Table, []migrate.Plan, error) {
	plans, err := store.LoadPlans()
	if err != nil {
		return nil, nil, err
	}
	baseline, err := planner.SchemaFromPlans(plans)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to replay migration history: %w", err)
	}
	return baseline, plans, nil
}

// describeAction renders a one-line human summary of an action.
func describeAction(a migrate.Action) string {
	switch act := a.(type) {
	case migrate.CreateTable:
		return fmt.Sprintf("create table %s (%d columns)", act.Table, len(act.Columns))
	case migrate.DeleteTable:
		return fmt.Sprintf("drop table %s", act.Table)
	case migrate.AddColumn:
		return fmt.Sprintf("add column %s.%s", act.Table, act.Column.Name)
	case migrate.RenameColumn:
		return fmt.Sprintf("rename column %s.%s to %s", act.Table, act.From, act.To)
	case migrate.DeleteColumn:
		return fmt.Sprintf("drop column %s.%s", act.Table, act.Column)
	case migrate.ModifyColumnType:
		return fmt.Sprintf("change type of %s.%s", act.Table, act.Column)
	case migrate.ModifyColumnNullable:
		if act.Nullable {
			return fmt.Sprintf("make %s.%s nullable", act.Table, act.Column)
		}
		return fmt.Sprintf("make %s.%s NOT NULL", act.Table, act.Column)
	case migrate.ModifyColumnDefault:
		if act.NewDefault == nil {
			return fmt.Sprintf("drop default of %s.%s", act.Table, act.Column)
		}
		return fmt.Sprintf("set default of %s.%s", act.Table, act.Column)
	case migrate.ModifyColumnComment:
		return fmt.Sprintf("change comment of %s.%s", act.Table, act.Column)
	case migrate.AddIndex:
		return fmt.Sprintf("add index on %s (%s)", act.Table, strings.Join(act.Index.Columns, ", "))
	case migrate.RemoveIndex:
		return fmt.Sprintf("drop index %s.%s", act.Table, act.Name)
	case migrate.AddConstraint:
		return fmt.Sprintf("add %s constraint on %s", act.Constraint.Kind, act.Table)
	case migrate.RemoveConstraint:
		return fmt.Sprintf("drop %s constraint on %s", act.Constraint.Kind, act.Table)
	case migrate.RenameTable:
		return fmt.Sprintf("rename table %s to %s", act.From, act.To)
	case migrate.RawSQL:
		return "raw SQL"
	default:
		return string(a.Type())
	}
}
