// Package sqlgen compiles migration actions into SQL statements for
// PostgreSQL, MySQL and SQLite.
package sqlgen

import (
	"fmt"
	"strings"
)

// Dialect identifies a target SQL backend.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// AllDialects lists every supported backend in stable order.
var AllDialects = []Dialect{DialectPostgres, DialectMySQL, DialectSQLite}

// ParseDialect resolves a provider name to a Dialect.
func ParseDialect(provider string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database provider: %s", provider)
	}
}

// quote wraps an identifier in the dialect's quoting characters.
func quote(d Dialect, ident string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// quoteList quotes each identifier and joins them with ", ".
func quoteList(d Dialect, idents []string) string {
	parts := make([]string, len(idents))
	for i, id := range idents {
		parts[i] = quote(d, id)
	}
	return strings.Join(parts, ", ")
}
