// Package migrate defines migration plans and the actions they contain.
// A plan is an ordered list of actions; replaying all plans from an empty
// schema reconstructs the baseline the next diff runs against.
package migrate

import (
	"github.com/schemaplan/schemaplan/schema"
)

// ActionType identifies the kind of a migration action. The values double
// as the "type" tag in serialized plans.
type ActionType string

const (
	ActionCreateTable          ActionType = "create_table"
	ActionDeleteTable          ActionType = "delete_table"
	ActionAddColumn            ActionType = "add_column"
	ActionRenameColumn         ActionType = "rename_column"
	ActionDeleteColumn         ActionType = "delete_column"
	ActionModifyColumnType     ActionType = "modify_column_type"
	ActionModifyColumnNullable ActionType = "modify_column_nullable"
	ActionModifyColumnDefault  ActionType = "modify_column_default"
	ActionModifyColumnComment  ActionType = "modify_column_comment"
	ActionAddIndex             ActionType = "add_index"
	ActionRemoveIndex          ActionType = "remove_index"
	ActionAddConstraint        ActionType = "add_constraint"
	ActionRemoveConstraint     ActionType = "remove_constraint"
	ActionRenameTable          ActionType = "rename_table"
	ActionRawSQL               ActionType = "raw_sql"
)

// Action is one step of a migration plan.
type Action interface {
	// Type returns the action's tag.
	Type() ActionType
}

// CreateTable creates a new table with the given columns and constraints.
// Index constraints are not embedded here; the diff engine emits them as
// separate AddIndex actions.
type CreateTable struct {
	Table       string              `json:"table"`
	Columns     []schema.Column     `json:"columns"`
	Constraints []schema.Constraint `json:"constraints,omitempty"`
}

// DeleteTable drops a table.
type DeleteTable struct {
	Table string `json:"table"`
}

// AddColumn adds a column to an existing table. FillWith backfills existing
// rows when the new column is NOT NULL without a default.
type AddColumn struct {
	Table    string        `json:"table"`
	Column   schema.Column `json:"column"`
	FillWith *string       `json:"fill_with,omitempty"`
}

// RenameColumn renames a column.
type RenameColumn struct {
	Table string `json:"table"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// DeleteColumn drops a column.
type DeleteColumn struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// ModifyColumnType changes a column's type.
type ModifyColumnType struct {
	Table   string            `json:"table"`
	Column  string            `json:"column"`
	NewType schema.ColumnType `json:"new_type"`
}

// ModifyColumnNullable flips a column's nullability. FillWith backfills
// NULLs before tightening to NOT NULL.
type ModifyColumnNullable struct {
	Table    string  `json:"table"`
	Column   string  `json:"column"`
	Nullable bool    `json:"nullable"`
	FillWith *string `json:"fill_with,omitempty"`
}

// ModifyColumnDefault sets or clears a column's default expression.
type ModifyColumnDefault struct {
	Table      string  `json:"table"`
	Column     string  `json:"column"`
	NewDefault *string `json:"new_default,omitempty"`
}

// ModifyColumnComment sets or clears a column's comment.
type ModifyColumnComment struct {
	Table      string  `json:"table"`
	Column     string  `json:"column"`
	NewComment *string `json:"new_comment,omitempty"`
}

// AddIndex adds an index to a table. Index must be an index-kind constraint.
type AddIndex struct {
	Table string            `json:"table"`
	Index schema.Constraint `json:"index"`
}

// RemoveIndex removes the named index from a table.
type RemoveIndex struct {
	Table string `json:"table"`
	Name  string `json:"name"`
}

// AddConstraint adds a table-level constraint.
type AddConstraint struct {
	Table      string            `json:"table"`
	Constraint schema.Constraint `json:"constraint"`
}

// RemoveConstraint removes a structurally matching table-level constraint.
type RemoveConstraint struct {
	Table      string            `json:"table"`
	Constraint schema.Constraint `json:"constraint"`
}

// RenameTable renames a table.
type RenameTable struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RawSQL carries a verbatim SQL statement through the plan.
type RawSQL struct {
	SQL string `json:"sql"`
}

func (CreateTable) Type() ActionType          { return ActionCreateTable }
func (DeleteTable) Type() ActionType          { return ActionDeleteTable }
func (AddColumn) Type() ActionType            { return ActionAddColumn }
func (RenameColumn) Type() ActionType         { return ActionRenameColumn }
func (DeleteColumn) Type() ActionType         { return ActionDeleteColumn }
func (ModifyColumnType) Type() ActionType     { return ActionModifyColumnType }
func (ModifyColumnNullable) Type() ActionType { return ActionModifyColumnNullable }
func (ModifyColumnDefault) Type() ActionType  { return ActionModifyColumnDefault }
func (ModifyColumnComment) Type() ActionType  { return ActionModifyColumnComment }
func (AddIndex) Type() ActionType             { return ActionAddIndex }
func (RemoveIndex) Type() ActionType          { return ActionRemoveIndex }
func (AddConstraint) Type() ActionType        { return ActionAddConstraint }
func (RemoveConstraint) Type() ActionType     { return ActionRemoveConstraint }
func (RenameTable) Type() ActionType          { return ActionRenameTable }
func (RawSQL) Type() ActionType               { return ActionRawSQL }
