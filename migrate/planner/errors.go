package planner

import (
	"errors"
	"fmt"
)

// ErrorKind classifies planner errors.
type ErrorKind string

const (
	// Structural errors from replay and validation.
	KindTableExists        ErrorKind = "TableExists"
	KindTableNotFound      ErrorKind = "TableNotFound"
	KindColumnExists       ErrorKind = "ColumnExists"
	KindColumnNotFound     ErrorKind = "ColumnNotFound"
	KindIndexNotFound      ErrorKind = "IndexNotFound"
	KindDuplicateTableName ErrorKind = "DuplicateTableName"

	// Referential errors from schema validation.
	KindForeignKeyTableNotFound  ErrorKind = "ForeignKeyTableNotFound"
	KindForeignKeyColumnNotFound ErrorKind = "ForeignKeyColumnNotFound"
	KindIndexColumnNotFound      ErrorKind = "IndexColumnNotFound"
	KindConstraintColumnNotFound ErrorKind = "ConstraintColumnNotFound"
	KindEmptyConstraintColumns   ErrorKind = "EmptyConstraintColumns"
	KindMissingPrimaryKey        ErrorKind = "MissingPrimaryKey"
	KindDuplicateEnumVariant     ErrorKind = "DuplicateEnumVariantName"
	KindDuplicateEnumValue       ErrorKind = "DuplicateEnumValue"

	// Topological error from the diff engine.
	KindCircularForeignKey ErrorKind = "CircularForeignKeyDependency"

	// Policy error from plan validation.
	KindMissingFillWith ErrorKind = "MissingFillWith"
)

// Error is a planner error carrying its taxonomy kind.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// IsKind reports whether err is a planner error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func errTableExists(table string) *Error {
	return newError(KindTableExists, "table already exists: %s", table)
}

func errTableNotFound(table string) *Error {
	return newError(KindTableNotFound, "table not found: %s", table)
}

func errColumnExists(table, column string) *Error {
	return newError(KindColumnExists, "column already exists: %s.%s", table, column)
}

func errColumnNotFound(table, column string) *Error {
	return newError(KindColumnNotFound, "column not found: %s.%s", table, column)
}

func errIndexNotFound(table, name string) *Error {
	return newError(KindIndexNotFound, "index not found: %s.%s", table, name)
}

func errDuplicateTableName(table string) *Error {
	return newError(KindDuplicateTableName, "duplicate table name: %s", table)
}

func errForeignKeyTableNotFound(table, columns, refTable string) *Error {
	return newError(KindForeignKeyTableNotFound,
		"foreign key references non-existent table: %s.%s -> %s", table, columns, refTable)
}

func errForeignKeyColumnNotFound(table, columns, refTable, refColumn string) *Error {
	return newError(KindForeignKeyColumnNotFound,
		"foreign key references non-existent column: %s.%s -> %s.%s", table, columns, refTable, refColumn)
}

func errIndexColumnNotFound(table, index, column string) *Error {
	return newError(KindIndexColumnNotFound,
		"index references non-existent column: %s.%s -> %s", table, index, column)
}

func errConstraintColumnNotFound(table, constraint, column string) *Error {
	return newError(KindConstraintColumnNotFound,
		"constraint references non-existent column: %s.%s -> %s", table, constraint, column)
}

func errEmptyConstraintColumns(table, constraint string) *Error {
	return newError(KindEmptyConstraintColumns,
		"constraint has empty column list: %s.%s", table, constraint)
}

func errMissingPrimaryKey(table string) *Error {
	return newError(KindMissingPrimaryKey, "table '%s' must have a primary key", table)
}

func errDuplicateEnumVariant(enum, table, column, variant string) *Error {
	return newError(KindDuplicateEnumVariant,
		"enum '%s' in column '%s.%s' has duplicate variant name: '%s'", enum, table, column, variant)
}

func errDuplicateEnumValue(enum, table, column string, value int32) *Error {
	return newError(KindDuplicateEnumValue,
		"enum '%s' in column '%s.%s' has duplicate value: %d", enum, table, column, value)
}

func errCircularForeignKey(tables string) *Error {
	return newError(KindCircularForeignKey,
		"circular foreign key dependency detected among tables: %s", tables)
}

func errMissingFillWith(table, column string) *Error {
	return newError(KindMissingFillWith,
		"AddColumn requires fill_with when column is NOT NULL without default: %s.%s", table, column)
}
