package sqlgen

import (
	"fmt"
	"strings"

	"github.com/schemaplan/schemaplan/schema"
)

// IndexName returns the SQL-level name for an index. A named index keeps
// its declared name; unnamed indexes derive one from the table and columns.
func IndexName(table string, c schema.Constraint) string {
	if c.Name != nil && *c.Name != "" {
		return *c.Name
	}
	return fmt.Sprintf("ix_%s__%s", table, strings.Join(c.Columns, "_"))
}

// UniqueName returns the SQL-level name for a unique index backing a
// unique constraint.
func UniqueName(table string, c schema.Constraint) string {
	key := strings.Join(c.Columns, "_")
	if c.Name != nil && *c.Name != "" {
		key = *c.Name
	}
	return fmt.Sprintf("uq_%s__%s", table, key)
}

// ForeignKeyName returns the SQL-level name for a foreign key constraint.
func ForeignKeyName(table string, c schema.Constraint) string {
	key := strings.Join(c.Columns, "_")
	if c.Name != nil && *c.Name != "" {
		key = *c.Name
	}
	return fmt.Sprintf("fk_%s__%s", table, key)
}

// EnumTypeName returns the PostgreSQL type name for a table-scoped enum.
func EnumTypeName(table, enum string) string {
	return fmt.Sprintf("%s_%s", table, enum)
}

// EnumCheckName returns the SQLite check constraint name that emulates an
// enum column.
func EnumCheckName(table, column string) string {
	return fmt.Sprintf("chk_%s_%s", table, column)
}

// primaryKeyName returns PostgreSQL's implicit primary key constraint name.
func primaryKeyName(table string) string {
	return table + "_pkey"
}
