package sqlgen

import (
	"fmt"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

// buildDeleteTable renders a DROP TABLE. PostgreSQL also drops the
// table-scoped enum types the table owned.
func buildDeleteTable(d Dialect, a migrate.DeleteTable, current []schema.Table) []string {
	stmts := []string{fmt.Sprintf("DROP TABLE %s", quote(d, a.Table))}
	if d != DialectPostgres {
		return stmts
	}
	tbl := schema.FindTable(current, a.Table)
	if tbl == nil {
		return stmts
	}
	seen := map[string]bool{}
	for _, col := range tbl.Columns {
		if !isStringEnum(col.Type) || seen[col.Type.EnumName] {
			continue
		}
		seen[col.Type.EnumName] = true
		stmts = append(stmts, fmt.Sprintf("DROP TYPE IF EXISTS %s",
			quote(d, EnumTypeName(a.Table, col.Type.EnumName))))
	}
	return stmts
}

// buildRenameTable renders a table rename.
func buildRenameTable(d Dialect, a migrate.RenameTable) []string {
	if d == DialectMySQL {
		return []string{fmt.Sprintf("RENAME TABLE %s TO %s", quote(d, a.From), quote(d, a.To))}
	}
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quote(d, a.From), quote(d, a.To))}
}
