package sqlgen

import (
	"fmt"
	"strings"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

// buildAddColumn renders an ADD COLUMN. A NOT NULL column without a
// default is added nullable first, backfilled with the fill expression,
// and tightened afterwards so existing rows survive the change.
func buildAddColumn(d Dialect, a migrate.AddColumn, current []schema.Table, skip map[string]bool) ([]string, error) {
	col := a.Column
	var stmts []string

	if d == DialectPostgres && isStringEnum(col.Type) {
		stmts = append(stmts, createEnumTypeSQL(EnumTypeName(a.Table, col.Type.EnumName), col.Type.EnumValues.Names()))
	}

	backfill := !col.Nullable && col.Default == nil && a.FillWith != nil
	stmts = append(stmts, addColumnSQL(d, a.Table, col, backfill))

	if !backfill {
		return stmts, nil
	}

	stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = %s",
		quote(d, a.Table), quote(d, col.Name), *a.FillWith))

	switch d {
	case DialectPostgres:
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL",
			quote(d, a.Table), quote(d, col.Name)))
	case DialectMySQL:
		stmts = append(stmts, mysqlModifyColumn(a.Table, col))
	default:
		tbl := schema.FindTable(current, a.Table)
		if tbl == nil {
			return nil, fmt.Errorf("Table '%s' not found in current schema. SQLite requires current schema information to add NOT NULL columns.", a.Table)
		}
		norm, err := tbl.Normalize()
		if err != nil {
			return nil, err
		}
		cols := append(cloneColumnList(norm.Columns), col.Clone())
		rebuild, err := sqliteRebuild(a.Table, cols, norm.Constraints, columnNames(cols), skip)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, rebuild...)
	}
	return stmts, nil
}

// addColumnSQL renders the bare ALTER TABLE ADD COLUMN statement.
func addColumnSQL(d Dialect, table string, col schema.Column, forceNullable bool) string {
	def := columnDef(d, table, col, forceNullable)
	if d == DialectSQLite && isStringEnum(col.Type) {
		def += fmt.Sprintf(" CONSTRAINT %s CHECK (%s IN (%s))",
			quote(d, EnumCheckName(table, col.Name)),
			quote(d, col.Name),
			literalList(d, col.Type.EnumValues.Names()))
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quote(d, table), def)
}

// buildDeleteColumn renders a DROP COLUMN. PostgreSQL also drops the
// table-scoped enum type when the column held one. SQLite rebuilds the
// table when the column participates in constraints ALTER TABLE cannot
// touch, and drops covering indexes beforehand otherwise.
func buildDeleteColumn(d Dialect, a migrate.DeleteColumn, current []schema.Table, skip map[string]bool) ([]string, error) {
	drop := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quote(d, a.Table), quote(d, a.Column))
	tbl := schema.FindTable(current, a.Table)

	switch d {
	case DialectPostgres:
		stmts := []string{drop}
		if tbl != nil {
			if col := tbl.Column(a.Column); col != nil && isStringEnum(col.Type) {
				stmts = append(stmts, fmt.Sprintf("DROP TYPE IF EXISTS %s",
					quote(d, EnumTypeName(a.Table, col.Type.EnumName))))
			}
		}
		return stmts, nil
	case DialectMySQL:
		return []string{drop}, nil
	}

	if tbl == nil {
		return []string{drop}, nil
	}
	norm, err := tbl.Normalize()
	if err != nil {
		return nil, err
	}

	if sqliteNeedsRebuildForDrop(norm, a.Column) {
		var cols []schema.Column
		for _, c := range norm.Columns {
			if c.Name != a.Column {
				cols = append(cols, c.Clone())
			}
		}
		var cons []schema.Constraint
		for _, c := range norm.Constraints {
			if constraintReferencesColumn(c, a.Column) {
				continue
			}
			cons = append(cons, c.Clone())
		}
		return sqliteRebuild(a.Table, cols, cons, columnNames(cols), skip)
	}

	var stmts []string
	for _, c := range norm.Constraints {
		if !containsName(c.Columns, a.Column) {
			continue
		}
		switch c.Kind {
		case schema.ConstraintUnique:
			stmts = append(stmts, fmt.Sprintf("DROP INDEX %s", quote(d, UniqueName(a.Table, c))))
		case schema.ConstraintIndex:
			stmts = append(stmts, fmt.Sprintf("DROP INDEX %s", quote(d, IndexName(a.Table, c))))
		}
	}
	return append(stmts, drop), nil
}

// sqliteNeedsRebuildForDrop reports whether dropping the column requires
// a table rebuild on SQLite.
func sqliteNeedsRebuildForDrop(t schema.Table, column string) bool {
	if col := t.Column(column); col != nil && isStringEnum(col.Type) {
		return true
	}
	for _, c := range t.Constraints {
		switch c.Kind {
		case schema.ConstraintPrimaryKey, schema.ConstraintForeignKey:
			if containsName(c.Columns, column) {
				return true
			}
		case schema.ConstraintCheck:
			if exprReferencesColumn(c.Expr, column) {
				return true
			}
		}
	}
	return false
}

// constraintReferencesColumn reports whether a constraint covers the
// column, checking the expression for check constraints.
func constraintReferencesColumn(c schema.Constraint, column string) bool {
	if c.Kind == schema.ConstraintCheck {
		return exprReferencesColumn(c.Expr, column)
	}
	return containsName(c.Columns, column)
}

// exprReferencesColumn reports whether a SQL expression mentions the
// column, either quoted or as a bare word.
func exprReferencesColumn(expr, column string) bool {
	if strings.Contains(expr, `"`+column+`"`) || strings.Contains(expr, "`"+column+"`") {
		return true
	}
	for i := 0; i+len(column) <= len(expr); i++ {
		if expr[i:i+len(column)] != column {
			continue
		}
		before := byte(' ')
		if i > 0 {
			before = expr[i-1]
		}
		after := byte(' ')
		if i+len(column) < len(expr) {
			after = expr[i+len(column)]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// buildRenameColumn renders a RENAME COLUMN statement.
func buildRenameColumn(d Dialect, a migrate.RenameColumn) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		quote(d, a.Table), quote(d, a.From), quote(d, a.To))}
}

// buildModifyColumnType renders a column type change. PostgreSQL rewrites
// table-scoped enum types in place, MySQL uses MODIFY COLUMN and SQLite
// rebuilds the table.
func buildModifyColumnType(d Dialect, a migrate.ModifyColumnType, current []schema.Table, skip map[string]bool) ([]string, error) {
	switch d {
	case DialectPostgres:
		return postgresModifyColumnType(a, current), nil
	case DialectMySQL:
		return []string{fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s",
			quote(d, a.Table), quote(d, a.Column), typeSQL(d, a.Table, a.NewType))}, nil
	}

	tbl := schema.FindTable(current, a.Table)
	if tbl == nil {
		return nil, fmt.Errorf("Table '%s' not found in current schema. SQLite requires current schema information to modify column types.", a.Table)
	}
	norm, err := tbl.Normalize()
	if err != nil {
		return nil, err
	}
	cols, found := replaceColumn(norm.Columns, a.Column, func(c *schema.Column) {
		c.Type = a.NewType.Clone()
	})
	if !found {
		return nil, fmt.Errorf("Column '%s' not found in table '%s'", a.Column, a.Table)
	}
	return sqliteRebuild(a.Table, cols, norm.Constraints, columnNames(cols), skip)
}

// postgresModifyColumnType renders the PostgreSQL statements for a type
// change, handling the enum type lifecycle.
func postgresModifyColumnType(a migrate.ModifyColumnType, current []schema.Table) []string {
	d := DialectPostgres
	var oldType *schema.ColumnType
	if tbl := schema.FindTable(current, a.Table); tbl != nil {
		if col := tbl.Column(a.Column); col != nil {
			t := col.Type.Clone()
			oldType = &t
		}
	}

	if isStringEnum(a.NewType) {
		typeName := EnumTypeName(a.Table, a.NewType.EnumName)
		if oldType != nil && isStringEnum(*oldType) {
			// Swap the enum type under the column: build the replacement
			// under a scratch name, cast through text, then rename it
			// over the old one.
			oldName := EnumTypeName(a.Table, oldType.EnumName)
			scratch := typeName + "_new"
			return []string{
				createEnumTypeSQL(scratch, a.NewType.EnumValues.Names()),
				fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::text::%s",
					quote(d, a.Table), quote(d, a.Column), quote(d, scratch), quote(d, a.Column), quote(d, scratch)),
				fmt.Sprintf("DROP TYPE %s", quote(d, oldName)),
				fmt.Sprintf("ALTER TYPE %s RENAME TO %s", quote(d, scratch), quote(d, typeName)),
			}
		}
		return []string{
			createEnumTypeSQL(typeName, a.NewType.EnumValues.Names()),
			fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::text::%s",
				quote(d, a.Table), quote(d, a.Column), quote(d, typeName), quote(d, a.Column), quote(d, typeName)),
		}
	}

	stmts := []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
		quote(d, a.Table), quote(d, a.Column), typeSQL(d, a.Table, a.NewType))}
	if oldType != nil && isStringEnum(*oldType) {
		stmts = append(stmts, fmt.Sprintf("DROP TYPE IF EXISTS %s",
			quote(d, EnumTypeName(a.Table, oldType.EnumName))))
	}
	return stmts
}

// buildModifyColumnNullable renders a nullability change, backfilling
// NULLs first when tightening with a fill expression.
func buildModifyColumnNullable(d Dialect, a migrate.ModifyColumnNullable, current []schema.Table, skip map[string]bool) ([]string, error) {
	var stmts []string
	if !a.Nullable && a.FillWith != nil {
		stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL",
			quote(d, a.Table), quote(d, a.Column), *a.FillWith, quote(d, a.Column)))
	}

	switch d {
	case DialectPostgres:
		verb := "SET"
		if a.Nullable {
			verb = "DROP"
		}
		return append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s NOT NULL",
			quote(d, a.Table), quote(d, a.Column), verb)), nil
	case DialectMySQL:
		tbl := schema.FindTable(current, a.Table)
		if tbl == nil {
			return nil, fmt.Errorf("Table '%s' not found in current schema. MySQL requires current schema information to modify column nullability.", a.Table)
		}
		col := tbl.Column(a.Column)
		if col == nil {
			return nil, fmt.Errorf("Column '%s' not found in table '%s'. MySQL requires column information to modify nullability.", a.Column, a.Table)
		}
		mod := col.Clone()
		mod.Nullable = a.Nullable
		return append(stmts, mysqlModifyColumn(a.Table, mod)), nil
	}

	tbl := schema.FindTable(current, a.Table)
	if tbl == nil {
		return nil, fmt.Errorf("Table '%s' not found in current schema. SQLite requires current schema information to modify column nullability.", a.Table)
	}
	norm, err := tbl.Normalize()
	if err != nil {
		return nil, err
	}
	cols, found := replaceColumn(norm.Columns, a.Column, func(c *schema.Column) {
		c.Nullable = a.Nullable
	})
	if !found {
		return nil, fmt.Errorf("Column '%s' not found in table '%s'", a.Column, a.Table)
	}
	rebuild, err := sqliteRebuild(a.Table, cols, norm.Constraints, columnNames(cols), skip)
	if err != nil {
		return nil, err
	}
	return append(stmts, rebuild...), nil
}

// buildModifyColumnDefault renders a default change.
func buildModifyColumnDefault(d Dialect, a migrate.ModifyColumnDefault, current []schema.Table, skip map[string]bool) ([]string, error) {
	switch d {
	case DialectPostgres:
		tbl := schema.FindTable(current, a.Table)
		var colType schema.ColumnType
		if tbl != nil {
			if col := tbl.Column(a.Column); col != nil {
				colType = col.Type
			}
		}
		if a.NewDefault == nil {
			return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT",
				quote(d, a.Table), quote(d, a.Column))}, nil
		}
		return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s",
			quote(d, a.Table), quote(d, a.Column), defaultSQL(d, colType, *a.NewDefault))}, nil
	case DialectMySQL:
		tbl := schema.FindTable(current, a.Table)
		if tbl == nil {
			return nil, fmt.Errorf("Table '%s' not found in current schema. MySQL requires current schema information to modify column defaults.", a.Table)
		}
		col := tbl.Column(a.Column)
		if col == nil {
			return nil, fmt.Errorf("Column '%s' not found in table '%s'. MySQL requires column information to modify defaults.", a.Column, a.Table)
		}
		mod := col.Clone()
		mod.Default = a.NewDefault
		return []string{mysqlModifyColumn(a.Table, mod)}, nil
	}

	tbl := schema.FindTable(current, a.Table)
	if tbl == nil {
		return nil, fmt.Errorf("Table '%s' not found in current schema. SQLite requires current schema information to modify column defaults.", a.Table)
	}
	norm, err := tbl.Normalize()
	if err != nil {
		return nil, err
	}
	cols, found := replaceColumn(norm.Columns, a.Column, func(c *schema.Column) {
		c.Default = a.NewDefault
	})
	if !found {
		return nil, fmt.Errorf("Column '%s' not found in table '%s'", a.Column, a.Table)
	}
	return sqliteRebuild(a.Table, cols, norm.Constraints, columnNames(cols), skip)
}

// buildModifyColumnComment renders a comment change. SQLite has no
// column comments, so the change compiles to nothing there.
func buildModifyColumnComment(d Dialect, a migrate.ModifyColumnComment, current []schema.Table) ([]string, error) {
	switch d {
	case DialectPostgres:
		comment := "NULL"
		if a.NewComment != nil {
			comment = literal(d, *a.NewComment)
		}
		return []string{fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s",
			quote(d, a.Table), quote(d, a.Column), comment)}, nil
	case DialectMySQL:
		tbl := schema.FindTable(current, a.Table)
		if tbl == nil {
			return nil, fmt.Errorf("Table '%s' not found in current schema. MySQL requires current schema information to modify column comments.", a.Table)
		}
		col := tbl.Column(a.Column)
		if col == nil {
			return nil, fmt.Errorf("Column '%s' not found in table '%s'. MySQL requires column information to modify comments.", a.Column, a.Table)
		}
		mod := col.Clone()
		mod.Comment = a.NewComment
		return []string{mysqlModifyColumn(a.Table, mod)}, nil
	}
	return nil, nil
}

// mysqlModifyColumn renders a full MODIFY COLUMN statement. MySQL drops
// attributes left out of the definition, so everything is restated,
// comment included.
func mysqlModifyColumn(table string, col schema.Column) string {
	d := DialectMySQL
	def := columnDef(d, table, col, false)
	if col.Comment != nil {
		def += " COMMENT " + literal(d, *col.Comment)
	}
	return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", quote(d, table), def)
}

// replaceColumn clones the column list, applying mutate to the named
// column. The second return reports whether the column was found.
func replaceColumn(columns []schema.Column, name string, mutate func(*schema.Column)) ([]schema.Column, bool) {
	out := make([]schema.Column, len(columns))
	found := false
	for i, c := range columns {
		out[i] = c.Clone()
		if c.Name == name {
			mutate(&out[i])
			found = true
		}
	}
	return out, found
}

// cloneColumnList deep-copies a column slice.
func cloneColumnList(columns []schema.Column) []schema.Column {
	out := make([]schema.Column, len(columns))
	for i, c := range columns {
		out[i] = c.Clone()
	}
	return out
}

// containsName reports whether the list contains the name.
func containsName(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
