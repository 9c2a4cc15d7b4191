package sqlgen

import (
	"fmt"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

// buildAddIndex renders a CREATE INDEX statement.
func buildAddIndex(d Dialect, a migrate.AddIndex) []string {
	return []string{fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		quote(d, IndexName(a.Table, a.Index)), quote(d, a.Table), quoteList(d, a.Index.Columns))}
}

// buildRemoveIndex renders a DROP INDEX statement. MySQL scopes index
// names to the table.
func buildRemoveIndex(d Dialect, table, name string) []string {
	if d == DialectMySQL {
		return []string{fmt.Sprintf("DROP INDEX %s ON %s", quote(d, name), quote(d, table))}
	}
	return []string{fmt.Sprintf("DROP INDEX %s", quote(d, name))}
}

// buildAddConstraint renders the statements that add a table-level
// constraint. Unique constraints become unique indexes on every backend.
// SQLite cannot ALTER TABLE for primary keys, foreign keys or checks and
// rebuilds the table instead.
func buildAddConstraint(d Dialect, a migrate.AddConstraint, current []schema.Table, skip map[string]bool) ([]string, error) {
	c := a.Constraint
	switch c.Kind {
	case schema.ConstraintUnique:
		return []string{fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)",
			quote(d, UniqueName(a.Table, c)), quote(d, a.Table), quoteList(d, c.Columns))}, nil
	case schema.ConstraintIndex:
		return []string{fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			quote(d, IndexName(a.Table, c)), quote(d, a.Table), quoteList(d, c.Columns))}, nil
	}

	if d == DialectSQLite {
		return sqliteConstraintRebuild(a.Table, current, skip, func(cons []schema.Constraint) ([]schema.Constraint, error) {
			return append(cons, c.Clone()), nil
		}, "add")
	}

	switch c.Kind {
	case schema.ConstraintPrimaryKey:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)",
			quote(d, a.Table), quoteList(d, c.Columns))}, nil
	case schema.ConstraintForeignKey:
		return []string{fmt.Sprintf("ALTER TABLE %s ADD %s",
			quote(d, a.Table), foreignKeyClause(d, a.Table, c))}, nil
	case schema.ConstraintCheck:
		if c.Name == nil || *c.Name == "" {
			return nil, fmt.Errorf("%w: adding an unnamed check constraint", ErrUnsupportedConstraint)
		}
		return []string{fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)",
			quote(d, a.Table), quote(d, *c.Name), c.Expr)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedConstraint, c.Kind)
}

// buildRemoveConstraint renders the statements that drop a table-level
// constraint. Names follow the same derivation used when the constraint
// was added, so a constraint round-trips without manual naming.
func buildRemoveConstraint(d Dialect, a migrate.RemoveConstraint, current []schema.Table, skip map[string]bool) ([]string, error) {
	c := a.Constraint
	switch c.Kind {
	case schema.ConstraintUnique:
		return buildRemoveIndex(d, a.Table, UniqueName(a.Table, c)), nil
	case schema.ConstraintIndex:
		return buildRemoveIndex(d, a.Table, IndexName(a.Table, c)), nil
	}

	if d == DialectSQLite {
		return sqliteConstraintRebuild(a.Table, current, skip, func(cons []schema.Constraint) ([]schema.Constraint, error) {
			var out []schema.Constraint
			for _, existing := range cons {
				if existing.Equal(c) {
					continue
				}
				out = append(out, existing)
			}
			return out, nil
		}, "remove")
	}

	switch c.Kind {
	case schema.ConstraintPrimaryKey:
		if d == DialectMySQL {
			return []string{fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY", quote(d, a.Table))}, nil
		}
		return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s",
			quote(d, a.Table), quote(d, primaryKeyName(a.Table)))}, nil
	case schema.ConstraintForeignKey:
		if d == DialectMySQL {
			return []string{fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s",
				quote(d, a.Table), quote(d, ForeignKeyName(a.Table, c)))}, nil
		}
		return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s",
			quote(d, a.Table), quote(d, ForeignKeyName(a.Table, c)))}, nil
	case schema.ConstraintCheck:
		if c.Name == nil || *c.Name == "" {
			return nil, fmt.Errorf("%w: dropping an unnamed check constraint", ErrUnsupportedConstraint)
		}
		if d == DialectMySQL {
			return []string{fmt.Sprintf("ALTER TABLE %s DROP CHECK %s",
				quote(d, a.Table), quote(d, *c.Name))}, nil
		}
		return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s",
			quote(d, a.Table), quote(d, *c.Name))}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedConstraint, c.Kind)
}

// sqliteConstraintRebuild rebuilds a table with its constraint list
// transformed by edit.
func sqliteConstraintRebuild(table string, current []schema.Table, skip map[string]bool, edit func([]schema.Constraint) ([]schema.Constraint, error), verb string) ([]string, error) {
	tbl := schema.FindTable(current, table)
	if tbl == nil {
		return nil, fmt.Errorf("Table '%s' not found in current schema. SQLite requires current schema information to %s constraints.", table, verb)
	}
	norm, err := tbl.Normalize()
	if err != nil {
		return nil, err
	}
	cons, err := edit(cloneConstraintList(norm.Constraints))
	if err != nil {
		return nil, err
	}
	return sqliteRebuild(table, norm.Columns, cons, columnNames(norm.Columns), skip)
}

// cloneConstraintList deep-copies a constraint slice.
func cloneConstraintList(cons []schema.Constraint) []schema.Constraint {
	out := make([]schema.Constraint, len(cons))
	for i, c := range cons {
		out[i] = c.Clone()
	}
	return out
}
