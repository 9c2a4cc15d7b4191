package sqlgen

import (
	"fmt"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/migrate/planner"
	"github.com/schemaplan/schemaplan/schema"
)

// Generator compiles migration actions into SQL for one dialect.
type Generator struct {
	dialect Dialect
}

// NewGenerator creates a generator for the given provider name.
func NewGenerator(provider string) (*Generator, error) {
	d, err := ParseDialect(provider)
	if err != nil {
		return nil, err
	}
	return &Generator{dialect: d}, nil
}

// NewGeneratorFor creates a generator for a known dialect.
func NewGeneratorFor(d Dialect) *Generator {
	return &Generator{dialect: d}
}

// Dialect returns the generator's target backend.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// ActionSQL compiles a single action against the current schema.
func (g *Generator) ActionSQL(action migrate.Action, current []schema.Table) ([]string, error) {
	return buildAction(g.dialect, action, current, nil)
}

// PlanSQL compiles every action of a plan, replaying each action onto
// the baseline so later actions see the schema earlier ones produced.
// The result holds one statement list per action.
func (g *Generator) PlanSQL(plan migrate.Plan, baseline []schema.Table) ([][]string, error) {
	current := schema.CloneTables(baseline)
	out := make([][]string, 0, len(plan.Actions))
	for i, action := range plan.Actions {
		skip := pendingIndexNames(plan.Actions[i+1:], actionTable(action))
		stmts, err := buildAction(g.dialect, action, current, skip)
		if err != nil {
			return nil, fmt.Errorf("failed to generate SQL for action %d (%s): %w", i, action.Type(), err)
		}
		out = append(out, stmts)
		current, err = planner.ApplyAction(current, action)
		if err != nil {
			return nil, fmt.Errorf("failed to replay action %d (%s): %w", i, action.Type(), err)
		}
	}
	return out, nil
}

// PlanSQLAll compiles a plan for every supported dialect.
func PlanSQLAll(plan migrate.Plan, baseline []schema.Table) (map[Dialect][][]string, error) {
	out := make(map[Dialect][][]string, len(AllDialects))
	for _, d := range AllDialects {
		stmts, err := NewGeneratorFor(d).PlanSQL(plan, baseline)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d, err)
		}
		out[d] = stmts
	}
	return out, nil
}

// buildAction dispatches one action to its builder. skip carries the
// SQL-level index names a later action in the same plan will create; a
// SQLite rebuild must not recreate those or the plan would create the
// same index twice.
func buildAction(d Dialect, action migrate.Action, current []schema.Table, skip map[string]bool) ([]string, error) {
	switch a := action.(type) {
	case migrate.CreateTable:
		return buildCreateTable(d, a.Table, a.Columns, a.Constraints)
	case migrate.DeleteTable:
		return buildDeleteTable(d, a, current), nil
	case migrate.AddColumn:
		return buildAddColumn(d, a, current, skip)
	case migrate.RenameColumn:
		return buildRenameColumn(d, a), nil
	case migrate.DeleteColumn:
		return buildDeleteColumn(d, a, current, skip)
	case migrate.ModifyColumnType:
		return buildModifyColumnType(d, a, current, skip)
	case migrate.ModifyColumnNullable:
		return buildModifyColumnNullable(d, a, current, skip)
	case migrate.ModifyColumnDefault:
		return buildModifyColumnDefault(d, a, current, skip)
	case migrate.ModifyColumnComment:
		return buildModifyColumnComment(d, a, current)
	case migrate.AddIndex:
		return buildAddIndex(d, a), nil
	case migrate.RemoveIndex:
		return buildRemoveIndex(d, a.Table, a.Name), nil
	case migrate.AddConstraint:
		return buildAddConstraint(d, a, current, skip)
	case migrate.RemoveConstraint:
		return buildRemoveConstraint(d, a, current, skip)
	case migrate.RenameTable:
		return buildRenameTable(d, a), nil
	case migrate.RawSQL:
		return []string{a.SQL}, nil
	default:
		return nil, fmt.Errorf("unsupported action type: %s", action.Type())
	}
}

// actionTable returns the table an action targets, or "" when the
// action has no single target table.
func actionTable(action migrate.Action) string {
	switch a := action.(type) {
	case migrate.CreateTable:
		return a.Table
	case migrate.DeleteTable:
		return a.Table
	case migrate.AddColumn:
		return a.Table
	case migrate.RenameColumn:
		return a.Table
	case migrate.DeleteColumn:
		return a.Table
	case migrate.ModifyColumnType:
		return a.Table
	case migrate.ModifyColumnNullable:
		return a.Table
	case migrate.ModifyColumnDefault:
		return a.Table
	case migrate.ModifyColumnComment:
		return a.Table
	case migrate.AddIndex:
		return a.Table
	case migrate.RemoveIndex:
		return a.Table
	case migrate.AddConstraint:
		return a.Table
	case migrate.RemoveConstraint:
		return a.Table
	default:
		return ""
	}
}

// pendingIndexNames collects the SQL-level names of indexes that later
// actions will create on the given table.
func pendingIndexNames(rest []migrate.Action, table string) map[string]bool {
	if table == "" {
		return nil
	}
	names := map[string]bool{}
	for _, action := range rest {
		switch a := action.(type) {
		case migrate.AddIndex:
			if a.Table == table {
				names[IndexName(a.Table, a.Index)] = true
			}
		case migrate.AddConstraint:
			if a.Table != table {
				continue
			}
			switch a.Constraint.Kind {
			case schema.ConstraintIndex:
				names[IndexName(a.Table, a.Constraint)] = true
			case schema.ConstraintUnique:
				names[UniqueName(a.Table, a.Constraint)] = true
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}
