package sqlgen

import (
	"fmt"
	"strings"

	"github.com/schemaplan/schemaplan/schema"
)

// sqliteRebuild renders the statement sequence SQLite needs for table
// changes it cannot express as ALTER TABLE: create a temporary table with
// the desired shape, copy the surviving rows, swap it in, and recreate
// the table's secondary indexes.
//
// copyColumns lists the columns shared by the old and new shape. skip
// filters index recreation by SQL-level index name, which lets a plan
// that re-adds an index later avoid creating it twice.
//
// Callers pass a normalized table shape; inline column markers are
// dropped here so the temporary table does not grow duplicates of the
// constraints and indexes recreated from the constraint list.
func sqliteRebuild(table string, columns []schema.Column, constraints []schema.Constraint, copyColumns []string, skip map[string]bool) ([]string, error) {
	d := DialectSQLite
	temp := table + "_temp"

	createStmts, err := buildCreateTable(d, table, stripInlineMarkers(columns), nonSecondaryConstraints(constraints))
	if err != nil {
		return nil, err
	}
	// buildCreateTable names checks and keys after the final table; only
	// the table identifier itself is swapped for the temporary name.
	create := strings.Replace(createStmts[len(createStmts)-1],
		"CREATE TABLE "+quote(d, table), "CREATE TABLE "+quote(d, temp), 1)

	cols := quoteList(d, copyColumns)
	stmts := []string{
		create,
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", quote(d, temp), cols, cols, quote(d, table)),
		fmt.Sprintf("DROP TABLE %s", quote(d, table)),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quote(d, temp), quote(d, table)),
	}

	for _, c := range constraints {
		switch c.Kind {
		case schema.ConstraintUnique:
			name := UniqueName(table, c)
			if skip[name] {
				continue
			}
			stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)",
				quote(d, name), quote(d, table), quoteList(d, c.Columns)))
		case schema.ConstraintIndex:
			name := IndexName(table, c)
			if skip[name] {
				continue
			}
			stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
				quote(d, name), quote(d, table), quoteList(d, c.Columns)))
		}
	}
	return stmts, nil
}

// nonSecondaryConstraints strips unique and index constraints, which the
// rebuild recreates as separate statements after the table swap.
func nonSecondaryConstraints(constraints []schema.Constraint) []schema.Constraint {
	var out []schema.Constraint
	for _, c := range constraints {
		if c.Kind == schema.ConstraintUnique || c.Kind == schema.ConstraintIndex {
			continue
		}
		out = append(out, c)
	}
	return out
}

// stripInlineMarkers clears inline constraint markers from a copy of the
// columns. The rebuild's constraint list is authoritative; leftover
// markers would be re-materialized into constraints the rebuild may be
// removing.
func stripInlineMarkers(columns []schema.Column) []schema.Column {
	out := make([]schema.Column, len(columns))
	for i, c := range columns {
		col := c.Clone()
		col.PrimaryKey = nil
		col.Unique = nil
		col.Index = nil
		col.ForeignKey = nil
		out[i] = col
	}
	return out
}

// columnNames returns the names of the given columns in order.
func columnNames(columns []schema.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}
