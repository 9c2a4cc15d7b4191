package sqlgen

import (
	"fmt"
	"strings"

	"github.com/schemaplan/schemaplan/schema"
)

// buildCreateTable renders a CREATE TABLE statement plus any companion
// statements: PostgreSQL enum type definitions before the table, and
// CREATE UNIQUE INDEX / CREATE INDEX statements after it.
func buildCreateTable(d Dialect, table string, columns []schema.Column, constraints []schema.Constraint) ([]string, error) {
	// Materialize inline column markers so only the constraint list needs
	// to be consulted below.
	norm, err := schema.Table{Name: table, Columns: columns, Constraints: constraints}.Normalize()
	if err != nil {
		return nil, err
	}
	columns = norm.Columns
	constraints = norm.Constraints

	var stmts []string
	if d == DialectPostgres {
		stmts = append(stmts, createEnumTypeStatements(table, columns)...)
	}

	pk := pkConstraint(constraints)
	autoInc := ""
	if pk != nil && pk.AutoIncrement && len(pk.Columns) == 1 {
		autoInc = pk.Columns[0]
	}

	var defs []string
	for _, col := range columns {
		defs = append(defs, createColumnDef(d, table, col, autoInc))
	}

	// SQLite folds the auto-increment primary key into the column
	// definition; every other primary key becomes a table constraint.
	if pk != nil && !(d == DialectSQLite && autoInc != "") {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteList(d, pk.Columns)))
	}

	var indexStmts []string
	for _, c := range constraints {
		switch c.Kind {
		case schema.ConstraintUnique:
			indexStmts = append(indexStmts, fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)",
				quote(d, UniqueName(table, c)), quote(d, table), quoteList(d, c.Columns)))
		case schema.ConstraintIndex:
			indexStmts = append(indexStmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
				quote(d, IndexName(table, c)), quote(d, table), quoteList(d, c.Columns)))
		case schema.ConstraintForeignKey:
			defs = append(defs, foreignKeyClause(d, table, c))
		case schema.ConstraintCheck:
			defs = append(defs, fmt.Sprintf("CONSTRAINT %s CHECK (%s)", quote(d, c.NameOrEmpty()), c.Expr))
		}
	}

	if d == DialectSQLite {
		for _, col := range columns {
			if isStringEnum(col.Type) {
				defs = append(defs, enumCheckClause(d, table, col))
			}
		}
	}

	stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s ( %s )", quote(d, table), strings.Join(defs, ", ")))
	return append(stmts, indexStmts...), nil
}

// createColumnDef renders one column of a CREATE TABLE statement,
// including dialect-specific auto increment handling.
func createColumnDef(d Dialect, table string, col schema.Column, autoInc string) string {
	if col.Name == autoInc && autoInc != "" {
		switch d {
		case DialectPostgres:
			serial := "serial"
			if col.Type.Kind == schema.TypeBigInt {
				serial = "bigserial"
			} else if col.Type.Kind == schema.TypeSmallInt {
				serial = "smallserial"
			}
			return fmt.Sprintf("%s %s NOT NULL", quote(d, col.Name), serial)
		case DialectMySQL:
			return fmt.Sprintf("%s %s NOT NULL AUTO_INCREMENT", quote(d, col.Name), typeSQL(d, table, col.Type))
		default:
			return fmt.Sprintf("%s integer PRIMARY KEY AUTOINCREMENT", quote(d, col.Name))
		}
	}

	return columnDef(d, table, col, false)
}

// foreignKeyClause renders an inline FOREIGN KEY table constraint.
func foreignKeyClause(d Dialect, table string, c schema.Constraint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		quote(d, ForeignKeyName(table, c)),
		quoteList(d, c.Columns),
		quote(d, c.RefTable),
		quoteList(d, c.RefColumns))
	if c.OnDelete != nil {
		fmt.Fprintf(&b, " ON DELETE %s", referenceActionSQL(*c.OnDelete))
	}
	if c.OnUpdate != nil {
		fmt.Fprintf(&b, " ON UPDATE %s", referenceActionSQL(*c.OnUpdate))
	}
	return b.String()
}

// createEnumTypeStatements renders CREATE TYPE statements for every
// distinct string enum used by the given columns.
func createEnumTypeStatements(table string, columns []schema.Column) []string {
	var stmts []string
	seen := map[string]bool{}
	for _, col := range columns {
		if !isStringEnum(col.Type) || seen[col.Type.EnumName] {
			continue
		}
		seen[col.Type.EnumName] = true
		stmts = append(stmts, createEnumTypeSQL(EnumTypeName(table, col.Type.EnumName), col.Type.EnumValues.Names()))
	}
	return stmts
}

// createEnumTypeSQL renders a single PostgreSQL CREATE TYPE statement.
func createEnumTypeSQL(typeName string, values []string) string {
	return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", quote(DialectPostgres, typeName), literalList(DialectPostgres, values))
}

// pkConstraint returns the table's primary key constraint, if any.
func pkConstraint(constraints []schema.Constraint) *schema.Constraint {
	for i := range constraints {
		if constraints[i].Kind == schema.ConstraintPrimaryKey {
			return &constraints[i]
		}
	}
	return nil
}
