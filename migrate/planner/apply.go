package planner

import (
	"strings"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

// ApplyAction replays a single action against a schema snapshot and returns
// the resulting snapshot. The input is never mutated.
func ApplyAction(tables []schema.Table, action migrate.Action) ([]schema.Table, error) {
	out := schema.CloneTables(tables)
	if err := applyInPlace(&out, action); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyPlan replays every action of a plan in order.
func ApplyPlan(tables []schema.Table, plan migrate.Plan) ([]schema.Table, error) {
	out := schema.CloneTables(tables)
	for _, action := range plan.Actions {
		if err := applyInPlace(&out, action); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SchemaFromPlans reconstructs the baseline schema by replaying all plans,
// in order, from an empty snapshot.
func SchemaFromPlans(plans []migrate.Plan) ([]schema.Table, error) {
	var out []schema.Table
	for _, plan := range plans {
		for _, action := range plan.Actions {
			if err := applyInPlace(&out, action); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func applyInPlace(tables *[]schema.Table, action migrate.Action) error {
	switch a := action.(type) {
	case migrate.CreateTable:
		if schema.FindTable(*tables, a.Table) != nil {
			return errTableExists(a.Table)
		}
		*tables = append(*tables, schema.Table{
			Name:        a.Table,
			Columns:     cloneColumns(a.Columns),
			Constraints: cloneConstraints(a.Constraints),
		})
		return nil

	case migrate.DeleteTable:
		for i := range *tables {
			if (*tables)[i].Name == a.Table {
				*tables = append((*tables)[:i], (*tables)[i+1:]...)
				return nil
			}
		}
		return errTableNotFound(a.Table)

	case migrate.AddColumn:
		tbl := schema.FindTable(*tables, a.Table)
		if tbl == nil {
			return errTableNotFound(a.Table)
		}
		if tbl.HasColumn(a.Column.Name) {
			return errColumnExists(a.Table, a.Column.Name)
		}
		tbl.Columns = append(tbl.Columns, a.Column.Clone())
		return nil

	case migrate.RenameColumn:
		tbl := schema.FindTable(*tables, a.Table)
		if tbl == nil {
			return errTableNotFound(a.Table)
		}
		col := tbl.Column(a.From)
		if col == nil {
			return errColumnNotFound(a.Table, a.From)
		}
		col.Name = a.To
		renameColumnInConstraints(tbl, a.From, a.To)
		return nil

	case migrate.DeleteColumn:
		tbl := schema.FindTable(*tables, a.Table)
		if tbl == nil {
			return errTableNotFound(a.Table)
		}
		if !tbl.HasColumn(a.Column) {
			return errColumnNotFound(a.Table, a.Column)
		}
		kept := tbl.Columns[:0]
		for _, c := range tbl.Columns {
			if c.Name != a.Column {
				kept = append(kept, c)
			}
		}
		tbl.Columns = kept
		dropColumnFromConstraints(tbl, a.Column)
		return nil

	case migrate.ModifyColumnType:
		col, err := findColumn(*tables, a.Table, a.Column)
		if err != nil {
			return err
		}
		col.Type = a.NewType.Clone()
		return nil

	case migrate.ModifyColumnNullable:
		col, err := findColumn(*tables, a.Table, a.Column)
		if err != nil {
			return err
		}
		col.Nullable = a.Nullable
		return nil

	case migrate.ModifyColumnDefault:
		col, err := findColumn(*tables, a.Table, a.Column)
		if err != nil {
			return err
		}
		col.Default = clonePtr(a.NewDefault)
		return nil

	case migrate.ModifyColumnComment:
		col, err := findColumn(*tables, a.Table, a.Column)
		if err != nil {
			return err
		}
		col.Comment = clonePtr(a.NewComment)
		return nil

	case migrate.AddIndex:
		tbl := schema.FindTable(*tables, a.Table)
		if tbl == nil {
			return errTableNotFound(a.Table)
		}
		tbl.Constraints = append(tbl.Constraints, a.Index.Clone())
		return nil

	case migrate.RemoveIndex:
		tbl := schema.FindTable(*tables, a.Table)
		if tbl == nil {
			return errTableNotFound(a.Table)
		}
		removed := false
		kept := tbl.Constraints[:0]
		for _, c := range tbl.Constraints {
			if c.Kind == schema.ConstraintIndex && c.Name != nil && *c.Name == a.Name {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		tbl.Constraints = kept
		if !removed {
			return errIndexNotFound(a.Table, a.Name)
		}
		clearInlineIndex(tbl, a.Name)
		return nil

	case migrate.AddConstraint:
		tbl := schema.FindTable(*tables, a.Table)
		if tbl == nil {
			return errTableNotFound(a.Table)
		}
		tbl.Constraints = append(tbl.Constraints, a.Constraint.Clone())
		return nil

	case migrate.RemoveConstraint:
		tbl := schema.FindTable(*tables, a.Table)
		if tbl == nil {
			return errTableNotFound(a.Table)
		}
		kept := tbl.Constraints[:0]
		for _, c := range tbl.Constraints {
			if c.Equal(a.Constraint) {
				continue
			}
			kept = append(kept, c)
		}
		tbl.Constraints = kept
		clearInlineShorthand(tbl, a.Constraint)
		return nil

	case migrate.RenameTable:
		if schema.FindTable(*tables, a.To) != nil {
			return errTableExists(a.To)
		}
		tbl := schema.FindTable(*tables, a.From)
		if tbl == nil {
			return errTableNotFound(a.From)
		}
		tbl.Name = a.To
		return nil

	case migrate.RawSQL:
		// Side-effect-only; the in-memory schema is untouched.
		return nil
	}
	return nil
}

func findColumn(tables []schema.Table, table, column string) (*schema.Column, error) {
	tbl := schema.FindTable(tables, table)
	if tbl == nil {
		return nil, errTableNotFound(table)
	}
	col := tbl.Column(column)
	if col == nil {
		return nil, errColumnNotFound(table, column)
	}
	return col, nil
}

func renameColumnInConstraints(tbl *schema.Table, from, to string) {
	for i := range tbl.Constraints {
		c := &tbl.Constraints[i]
		renameInList(c.Columns, from, to)
		if c.Kind == schema.ConstraintForeignKey {
			renameInList(c.RefColumns, from, to)
		}
	}
}

func renameInList(list []string, from, to string) {
	for i := range list {
		if list[i] == from {
			list[i] = to
		}
	}
}

// dropColumnFromConstraints prunes constraints after a column deletion:
// primary key and unique constraints lose the column (and are dropped when
// emptied), foreign keys lose it on both sides (and are dropped when either
// side empties), index constraints covering it are dropped whole, and check
// constraints are untouched.
func dropColumnFromConstraints(tbl *schema.Table, column string) {
	kept := tbl.Constraints[:0]
	for _, c := range tbl.Constraints {
		switch c.Kind {
		case schema.ConstraintPrimaryKey, schema.ConstraintUnique:
			c.Columns = removeFromList(c.Columns, column)
			if len(c.Columns) == 0 {
				continue
			}
		case schema.ConstraintForeignKey:
			c.Columns = removeFromList(c.Columns, column)
			c.RefColumns = removeFromList(c.RefColumns, column)
			if len(c.Columns) == 0 || len(c.RefColumns) == 0 {
				continue
			}
		case schema.ConstraintIndex:
			if containsColumn(c.Columns, column) {
				continue
			}
		}
		kept = append(kept, c)
	}
	tbl.Constraints = kept
}

func removeFromList(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func containsColumn(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// clearInlineIndex clears inline index shorthand that would re-create the
// removed index on the next normalize.
func clearInlineIndex(tbl *schema.Table, name string) {
	derivedColumn := ""
	prefix := "idx_" + tbl.Name + "_"
	if strings.HasPrefix(name, prefix) {
		derivedColumn = strings.TrimPrefix(name, prefix)
	}
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		sh := col.Index
		if sh == nil {
			continue
		}
		switch sh.Kind {
		case schema.ShorthandBool:
			if sh.Bool && col.Name == derivedColumn {
				col.Index = nil
			}
		case schema.ShorthandName:
			if sh.Name == name {
				col.Index = nil
			}
		case schema.ShorthandNames:
			names := sh.Names[:0]
			for _, n := range sh.Names {
				if n != name {
					names = append(names, n)
				}
			}
			sh.Names = names
			if len(sh.Names) == 0 {
				col.Index = nil
			}
		}
	}
}

// clearInlineShorthand clears inline column markers matching a removed
// table-level constraint so normalize will not resurrect it.
func clearInlineShorthand(tbl *schema.Table, constraint schema.Constraint) {
	switch constraint.Kind {
	case schema.ConstraintUnique:
		if constraint.Name == nil && len(constraint.Columns) == 1 {
			if col := tbl.Column(constraint.Columns[0]); col != nil {
				col.Unique = nil
			}
		}
		if constraint.Name != nil {
			clearNamedShorthand(tbl, *constraint.Name, func(c *schema.Column) **schema.Shorthand { return &c.Unique })
		}
	case schema.ConstraintPrimaryKey:
		for _, name := range constraint.Columns {
			if col := tbl.Column(name); col != nil {
				col.PrimaryKey = nil
			}
		}
	case schema.ConstraintForeignKey:
		for _, name := range constraint.Columns {
			if col := tbl.Column(name); col != nil {
				col.ForeignKey = nil
			}
		}
	case schema.ConstraintIndex:
		if constraint.Name != nil {
			clearInlineIndex(tbl, *constraint.Name)
		} else {
			for _, name := range constraint.Columns {
				if col := tbl.Column(name); col != nil {
					if col.Index != nil && col.Index.Kind == schema.ShorthandBool {
						col.Index = nil
					}
				}
			}
		}
	}
}

func clearNamedShorthand(tbl *schema.Table, name string, field func(*schema.Column) **schema.Shorthand) {
	for i := range tbl.Columns {
		slot := field(&tbl.Columns[i])
		sh := *slot
		if sh == nil {
			continue
		}
		switch sh.Kind {
		case schema.ShorthandName:
			if sh.Name == name {
				*slot = nil
			}
		case schema.ShorthandNames:
			names := sh.Names[:0]
			for _, n := range sh.Names {
				if n != name {
					names = append(names, n)
				}
			}
			sh.Names = names
			if len(sh.Names) == 0 {
				*slot = nil
			}
		}
	}
}

func cloneColumns(cols []schema.Column) []schema.Column {
	out := make([]schema.Column, len(cols))
	for i, c := range cols {
		out[i] = c.Clone()
	}
	return out
}

func cloneConstraints(cons []schema.Constraint) []schema.Constraint {
	if cons == nil {
		return nil
	}
	out := make([]schema.Constraint, len(cons))
	for i, c := range cons {
		out[i] = c.Clone()
	}
	return out
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
