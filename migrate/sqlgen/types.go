package sqlgen

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/schemaplan/schemaplan/schema"
)

// typeSQL renders a column type for the given dialect. Enum types are
// table-scoped: PostgreSQL uses a named type, MySQL an inline ENUM and
// SQLite a plain TEXT column constrained by a separate CHECK clause.
func typeSQL(d Dialect, table string, t schema.ColumnType) string {
	if t.IsEnum() {
		if t.EnumValues.IsInteger() {
			switch d {
			case DialectMySQL:
				return "int"
			default:
				return "integer"
			}
		}
		switch d {
		case DialectPostgres:
			return quote(d, EnumTypeName(table, t.EnumName))
		case DialectMySQL:
			return fmt.Sprintf("ENUM(%s)", literalList(d, t.EnumValues.Names()))
		default:
			return "text"
		}
	}

	switch t.Kind {
	case schema.TypeSmallInt:
		if d == DialectSQLite {
			return "integer"
		}
		return "smallint"
	case schema.TypeInteger:
		if d == DialectMySQL {
			return "int"
		}
		return "integer"
	case schema.TypeBigInt:
		return "bigint"
	case schema.TypeReal:
		if d == DialectMySQL {
			return "float"
		}
		return "real"
	case schema.TypeDoublePrecision:
		if d == DialectPostgres {
			return "double precision"
		}
		return "double"
	case schema.TypeText:
		return "text"
	case schema.TypeBoolean:
		return "boolean"
	case schema.TypeDate:
		return "date"
	case schema.TypeTime:
		return "time"
	case schema.TypeTimestamp:
		return "timestamp"
	case schema.TypeTimestamptz:
		if d == DialectPostgres {
			return "timestamp with time zone"
		}
		return "timestamp"
	case schema.TypeInterval:
		if d == DialectMySQL {
			return "varchar(255)"
		}
		return "interval"
	case schema.TypeBytea:
		switch d {
		case DialectPostgres:
			return "bytea"
		case DialectMySQL:
			return "blob"
		default:
			return "blob"
		}
	case schema.TypeUUID:
		switch d {
		case DialectPostgres:
			return "uuid"
		case DialectMySQL:
			return "char(36)"
		default:
			return "text"
		}
	case schema.TypeJSON:
		if d == DialectSQLite {
			return "text"
		}
		return "json"
	case schema.TypeJSONB:
		switch d {
		case DialectPostgres:
			return "jsonb"
		case DialectMySQL:
			return "json"
		default:
			return "text"
		}
	case schema.TypeInet:
		switch d {
		case DialectPostgres:
			return "inet"
		case DialectMySQL:
			return "varchar(43)"
		default:
			return "text"
		}
	case schema.TypeCidr:
		switch d {
		case DialectPostgres:
			return "cidr"
		case DialectMySQL:
			return "varchar(43)"
		default:
			return "text"
		}
	case schema.TypeMacaddr:
		switch d {
		case DialectPostgres:
			return "macaddr"
		case DialectMySQL:
			return "varchar(17)"
		default:
			return "text"
		}
	case schema.TypeXML:
		if d == DialectPostgres {
			return "xml"
		}
		return "text"
	case schema.TypeVarchar:
		return fmt.Sprintf("varchar(%d)", t.Length)
	case schema.TypeChar:
		return fmt.Sprintf("char(%d)", t.Length)
	case schema.TypeNumeric:
		return fmt.Sprintf("numeric(%d, %d)", t.Precision, t.Scale)
	case schema.TypeCustom:
		return t.CustomType
	default:
		return string(t.Kind)
	}
}

// literal renders a single-quoted string literal for the dialect.
// PostgreSQL literals go through the driver's escaping, which also
// handles backslashes; the other backends double embedded quotes.
func literal(d Dialect, s string) string {
	if d == DialectPostgres {
		return strings.TrimSpace(pq.QuoteLiteral(s))
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// literalList renders a comma-separated list of string literals.
func literalList(d Dialect, values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = literal(d, v)
	}
	return strings.Join(parts, ", ")
}

// convertDefault translates portable default expressions into the
// dialect's equivalent. Unrecognized expressions pass through untouched.
func convertDefault(d Dialect, def string) string {
	switch strings.ToLower(def) {
	case "gen_random_uuid()", "uuid()":
		switch d {
		case DialectPostgres:
			return "gen_random_uuid()"
		case DialectMySQL:
			return "(UUID())"
		default:
			return "(lower(hex(randomblob(16))))"
		}
	case "now()", "current_timestamp", "current_timestamp()":
		return "CURRENT_TIMESTAMP"
	default:
		return def
	}
}

// defaultSQL renders the DEFAULT expression for a column, quoting bare
// enum variants as string literals.
func defaultSQL(d Dialect, t schema.ColumnType, def string) string {
	if isStringEnum(t) && !strings.HasPrefix(def, "'") {
		return literal(d, def)
	}
	return convertDefault(d, def)
}

// columnDef renders a column definition clause. When forceNullable is set
// the NOT NULL qualifier is suppressed regardless of the column's own
// nullability, which lets callers add a column first and backfill it
// before tightening the constraint.
func columnDef(d Dialect, table string, col schema.Column, forceNullable bool) string {
	var b strings.Builder
	b.WriteString(quote(d, col.Name))
	b.WriteString(" ")
	b.WriteString(typeSQL(d, table, col.Type))
	if !col.Nullable && !forceNullable {
		b.WriteString(" NOT NULL")
	}
	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(defaultSQL(d, col.Type, *col.Default))
	}
	return b.String()
}

// enumCheckClause renders the CHECK clause SQLite uses to emulate a
// string enum column.
func enumCheckClause(d Dialect, table string, col schema.Column) string {
	return fmt.Sprintf("CONSTRAINT %s CHECK (%s IN (%s))",
		quote(d, EnumCheckName(table, col.Name)),
		quote(d, col.Name),
		literalList(d, col.Type.EnumValues.Names()))
}

// isStringEnum reports whether the column holds a string-valued enum.
func isStringEnum(t schema.ColumnType) bool {
	return t.IsEnum() && !t.EnumValues.IsInteger()
}

// referenceActionSQL renders a foreign key reference action.
func referenceActionSQL(a schema.ReferenceAction) string {
	switch a {
	case schema.ActionCascade:
		return "CASCADE"
	case schema.ActionRestrict:
		return "RESTRICT"
	case schema.ActionSetNull:
		return "SET NULL"
	case schema.ActionSetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}
