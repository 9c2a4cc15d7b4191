package planner

import (
	"fmt"
	"strings"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

// ValidateSchema checks the structural integrity of a schema snapshot:
// unique table names, a primary key on every table, well-formed enum
// variants, non-empty constraint column lists, and resolvable local and
// foreign column references. Tables are normalized before checking.
func ValidateSchema(tables []schema.Table) error {
	normalized, err := schema.NormalizeTables(tables)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(normalized))
	for _, t := range normalized {
		if seen[t.Name] {
			return errDuplicateTableName(t.Name)
		}
		seen[t.Name] = true
	}

	for _, t := range normalized {
		if err := validateTable(normalized, t); err != nil {
			return err
		}
	}
	return nil
}

func validateTable(all []schema.Table, t schema.Table) error {
	if err := validatePrimaryKey(t); err != nil {
		return err
	}
	for _, col := range t.Columns {
		if err := validateEnumColumn(t.Name, col); err != nil {
			return err
		}
	}
	for _, c := range t.Constraints {
		if err := validateConstraint(all, t, c); err != nil {
			return err
		}
	}
	return nil
}

func validatePrimaryKey(t schema.Table) error {
	if t.PrimaryKeyConstraint() != nil {
		return nil
	}
	for _, col := range t.Columns {
		if col.PrimaryKey != nil && col.PrimaryKey.Enabled {
			return nil
		}
	}
	return errMissingPrimaryKey(t.Name)
}

func validateEnumColumn(table string, col schema.Column) error {
	if !col.Type.IsEnum() {
		return nil
	}
	enum := col.Type.EnumName
	values := col.Type.EnumValues

	seenNames := make(map[string]bool)
	for _, name := range values.Names() {
		if seenNames[name] {
			return errDuplicateEnumVariant(enum, table, col.Name, name)
		}
		seenNames[name] = true
	}
	if values.IsInteger() {
		seenValues := make(map[int32]bool)
		for _, m := range values.Members {
			if seenValues[m.Value] {
				return errDuplicateEnumValue(enum, table, col.Name, m.Value)
			}
			seenValues[m.Value] = true
		}
	}
	return nil
}

func validateConstraint(all []schema.Table, t schema.Table, c schema.Constraint) error {
	switch c.Kind {
	case schema.ConstraintIndex:
		label := fmt.Sprintf("Index(%s)", nameOrUnnamed(c.Name))
		if len(c.Columns) == 0 {
			return errEmptyConstraintColumns(t.Name, label)
		}
		for _, col := range c.Columns {
			if !t.HasColumn(col) {
				return errIndexColumnNotFound(t.Name, nameOrUnnamed(c.Name), col)
			}
		}
		return nil

	case schema.ConstraintCheck:
		// Column references live inside the expression; nothing to resolve.
		return nil

	case schema.ConstraintForeignKey:
		if len(c.Columns) == 0 {
			return errEmptyConstraintColumns(t.Name, "ForeignKey")
		}
		if len(c.RefColumns) == 0 {
			return errEmptyConstraintColumns(c.RefTable, "ForeignKey (ref_columns)")
		}
		for _, col := range c.Columns {
			if !t.HasColumn(col) {
				return errConstraintColumnNotFound(t.Name, "ForeignKey", col)
			}
		}
		cols := strings.Join(c.Columns, ", ")
		ref := schema.FindTable(all, c.RefTable)
		if ref == nil {
			return errForeignKeyTableNotFound(t.Name, cols, c.RefTable)
		}
		for _, refCol := range c.RefColumns {
			if !ref.HasColumn(refCol) {
				return errForeignKeyColumnNotFound(t.Name, cols, c.RefTable, refCol)
			}
		}
		if len(c.Columns) != len(c.RefColumns) {
			mismatch := fmt.Sprintf("column count mismatch: %d != %d", len(c.Columns), len(c.RefColumns))
			return errForeignKeyColumnNotFound(t.Name, mismatch, c.RefTable, "")
		}
		return nil

	default:
		label := constraintLabel(c)
		if len(c.Columns) == 0 {
			return errEmptyConstraintColumns(t.Name, label)
		}
		for _, col := range c.Columns {
			if !t.HasColumn(col) {
				return errConstraintColumnNotFound(t.Name, label, col)
			}
		}
		return nil
	}
}

func constraintLabel(c schema.Constraint) string {
	switch c.Kind {
	case schema.ConstraintPrimaryKey:
		return "PrimaryKey"
	case schema.ConstraintUnique:
		return "Unique"
	case schema.ConstraintForeignKey:
		return "ForeignKey"
	case schema.ConstraintCheck:
		return "Check"
	default:
		return "Index"
	}
}

func nameOrUnnamed(name *string) string {
	if name == nil {
		return "(unnamed)"
	}
	return *name
}

// ValidatePlan checks a single migration plan for policy violations:
// adding a NOT NULL column without a default requires a backfill value, and
// tightening a column to NOT NULL always does.
func ValidatePlan(plan migrate.Plan) error {
	for _, action := range plan.Actions {
		switch a := action.(type) {
		case migrate.AddColumn:
			if !a.Column.Nullable && a.Column.Default == nil && a.FillWith == nil {
				return errMissingFillWith(a.Table, a.Column.Name)
			}
		case migrate.ModifyColumnNullable:
			if !a.Nullable && a.FillWith == nil {
				return errMissingFillWith(a.Table, a.Column)
			}
		}
	}
	return nil
}
