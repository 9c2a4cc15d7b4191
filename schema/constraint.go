package schema

import (
	"encoding/json"
	"fmt"
)

// ConstraintKind identifies a table-level constraint.
type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintIndex      ConstraintKind = "index"
)

// Constraint is a table-level constraint. Which fields are meaningful
// depends on Kind:
//
//	primary_key: Columns, AutoIncrement
//	unique:      Name (optional), Columns
//	foreign_key: Name (optional), Columns, RefTable, RefColumns, OnDelete, OnUpdate
//	check:       Name, Expr
//	index:       Name (optional), Columns
type Constraint struct {
	Kind          ConstraintKind
	Name          *string
	Columns       []string
	AutoIncrement bool
	RefTable      string
	RefColumns    []string
	OnDelete      *ReferenceAction
	OnUpdate      *ReferenceAction
	Expr          string
}

// PrimaryKey returns a table-level primary key constraint.
func PrimaryKey(autoIncrement bool, columns ...string) Constraint {
	return Constraint{Kind: ConstraintPrimaryKey, AutoIncrement: autoIncrement, Columns: columns}
}

// Unique returns a unique constraint. name may be nil.
func Unique(name *string, columns ...string) Constraint {
	return Constraint{Kind: ConstraintUnique, Name: name, Columns: columns}
}

// ForeignKey returns a foreign key constraint. name may be nil.
func ForeignKey(name *string, columns []string, refTable string, refColumns []string, onDelete, onUpdate *ReferenceAction) Constraint {
	return Constraint{
		Kind:       ConstraintForeignKey,
		Name:       name,
		Columns:    columns,
		RefTable:   refTable,
		RefColumns: refColumns,
		OnDelete:   onDelete,
		OnUpdate:   onUpdate,
	}
}

// Check returns a check constraint.
func Check(name, expr string) Constraint {
	return Constraint{Kind: ConstraintCheck, Name: &name, Expr: expr}
}

// Index returns an index constraint. name may be nil.
func Index(name *string, columns ...string) Constraint {
	return Constraint{Kind: ConstraintIndex, Name: name, Columns: columns}
}

// ConstraintColumns returns the local columns the constraint covers. Check
// constraints return nil; their column references live in the expression.
func (c Constraint) ConstraintColumns() []string {
	if c.Kind == ConstraintCheck {
		return nil
	}
	return c.Columns
}

// NameOrEmpty returns the constraint name, or "" when unnamed.
func (c Constraint) NameOrEmpty() string {
	if c.Name == nil {
		return ""
	}
	return *c.Name
}

// Equal reports structural equality of two constraints.
func (c Constraint) Equal(other Constraint) bool {
	if c.Kind != other.Kind {
		return false
	}
	if (c.Name == nil) != (other.Name == nil) {
		return false
	}
	if c.Name != nil && *c.Name != *other.Name {
		return false
	}
	if !stringsEqual(c.Columns, other.Columns) {
		return false
	}
	switch c.Kind {
	case ConstraintPrimaryKey:
		return c.AutoIncrement == other.AutoIncrement
	case ConstraintForeignKey:
		if c.RefTable != other.RefTable || !stringsEqual(c.RefColumns, other.RefColumns) {
			return false
		}
		return refActionEqual(c.OnDelete, other.OnDelete) && refActionEqual(c.OnUpdate, other.OnUpdate)
	case ConstraintCheck:
		return c.Expr == other.Expr
	default:
		return true
	}
}

// Clone returns a deep copy.
func (c Constraint) Clone() Constraint {
	out := c
	out.Name = cloneString(c.Name)
	if c.Columns != nil {
		out.Columns = append([]string(nil), c.Columns...)
	}
	if c.RefColumns != nil {
		out.RefColumns = append([]string(nil), c.RefColumns...)
	}
	if c.OnDelete != nil {
		d := *c.OnDelete
		out.OnDelete = &d
	}
	if c.OnUpdate != nil {
		u := *c.OnUpdate
		out.OnUpdate = &u
	}
	return out
}

func refActionEqual(a, b *ReferenceAction) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

type constraintJSON struct {
	Type          ConstraintKind   `json:"type"`
	Name          *string          `json:"name,omitempty"`
	Columns       []string         `json:"columns,omitempty"`
	AutoIncrement *bool            `json:"auto_increment,omitempty"`
	RefTable      string           `json:"ref_table,omitempty"`
	RefColumns    []string         `json:"ref_columns,omitempty"`
	OnDelete      *ReferenceAction `json:"on_delete,omitempty"`
	OnUpdate      *ReferenceAction `json:"on_update,omitempty"`
	Expr          string           `json:"expr,omitempty"`
}

// MarshalJSON encodes the constraint as a tagged object with a "type" key.
func (c Constraint) MarshalJSON() ([]byte, error) {
	out := constraintJSON{Type: c.Kind, Name: c.Name}
	switch c.Kind {
	case ConstraintPrimaryKey:
		ai := c.AutoIncrement
		out.AutoIncrement = &ai
		out.Columns = c.Columns
	case ConstraintUnique, ConstraintIndex:
		out.Columns = c.Columns
	case ConstraintForeignKey:
		out.Columns = c.Columns
		out.RefTable = c.RefTable
		out.RefColumns = c.RefColumns
		out.OnDelete = c.OnDelete
		out.OnUpdate = c.OnUpdate
	case ConstraintCheck:
		out.Expr = c.Expr
	default:
		return nil, fmt.Errorf("unknown constraint kind: %q", c.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged object form.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var raw constraintJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case ConstraintPrimaryKey:
		auto := raw.AutoIncrement != nil && *raw.AutoIncrement
		*c = Constraint{Kind: ConstraintPrimaryKey, AutoIncrement: auto, Columns: raw.Columns}
	case ConstraintUnique:
		*c = Constraint{Kind: ConstraintUnique, Name: raw.Name, Columns: raw.Columns}
	case ConstraintIndex:
		*c = Constraint{Kind: ConstraintIndex, Name: raw.Name, Columns: raw.Columns}
	case ConstraintForeignKey:
		*c = Constraint{
			Kind:       ConstraintForeignKey,
			Name:       raw.Name,
			Columns:    raw.Columns,
			RefTable:   raw.RefTable,
			RefColumns: raw.RefColumns,
			OnDelete:   raw.OnDelete,
			OnUpdate:   raw.OnUpdate,
		}
	case ConstraintCheck:
		*c = Constraint{Kind: ConstraintCheck, Name: raw.Name, Expr: raw.Expr}
	default:
		return fmt.Errorf("unknown constraint type: %q", raw.Type)
	}
	return nil
}
