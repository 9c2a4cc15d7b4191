package schema

import (
	"encoding/json"
	"fmt"
)

// ReferenceAction is the action taken on a foreign key when the referenced
// row is deleted or updated.
type ReferenceAction string

const (
	ActionCascade    ReferenceAction = "cascade"
	ActionRestrict   ReferenceAction = "restrict"
	ActionSetNull    ReferenceAction = "set_null"
	ActionSetDefault ReferenceAction = "set_default"
	ActionNoAction   ReferenceAction = "no_action"
)

// ForeignKeyRef is the inline foreign key shorthand on a column.
type ForeignKeyRef struct {
	RefTable   string           `json:"ref_table"`
	RefColumns []string         `json:"ref_columns"`
	OnDelete   *ReferenceAction `json:"on_delete,omitempty"`
	OnUpdate   *ReferenceAction `json:"on_update,omitempty"`
}

// Clone returns a deep copy.
func (f *ForeignKeyRef) Clone() *ForeignKeyRef {
	if f == nil {
		return nil
	}
	out := &ForeignKeyRef{
		RefTable:   f.RefTable,
		RefColumns: append([]string(nil), f.RefColumns...),
	}
	if f.OnDelete != nil {
		d := *f.OnDelete
		out.OnDelete = &d
	}
	if f.OnUpdate != nil {
		u := *f.OnUpdate
		out.OnUpdate = &u
	}
	return out
}

// PrimaryKeySpec is the inline primary key shorthand on a column. It accepts
// either a bare boolean or an object carrying auto_increment.
type PrimaryKeySpec struct {
	Enabled       bool
	AutoIncrement bool
}

// MarshalJSON writes the object form when auto increment is set, otherwise a
// bare boolean.
func (p PrimaryKeySpec) MarshalJSON() ([]byte, error) {
	if p.AutoIncrement {
		return json.Marshal(map[string]bool{"auto_increment": true})
	}
	return json.Marshal(p.Enabled)
}

// UnmarshalJSON accepts true/false or {"auto_increment": bool}.
func (p *PrimaryKeySpec) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*p = PrimaryKeySpec{Enabled: b}
		return nil
	}
	var obj struct {
		AutoIncrement bool `json:"auto_increment"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid primary_key shorthand: %s", data)
	}
	*p = PrimaryKeySpec{Enabled: true, AutoIncrement: obj.AutoIncrement}
	return nil
}

// ShorthandKind discriminates the forms of the unique/index shorthand.
type ShorthandKind int

const (
	// ShorthandBool is the bare true/false form.
	ShorthandBool ShorthandKind = iota
	// ShorthandName is the single string form naming one constraint.
	ShorthandName
	// ShorthandNames is the array form naming several constraints.
	ShorthandNames
)

// Shorthand is the inline unique/index marker on a column: a boolean, a
// constraint name, or a list of constraint names.
type Shorthand struct {
	Kind  ShorthandKind
	Bool  bool
	Name  string
	Names []string
}

// BoolShorthand returns the boolean form.
func BoolShorthand(v bool) *Shorthand {
	return &Shorthand{Kind: ShorthandBool, Bool: v}
}

// NameShorthand returns the single-name form.
func NameShorthand(name string) *Shorthand {
	return &Shorthand{Kind: ShorthandName, Name: name}
}

// NamesShorthand returns the multi-name form.
func NamesShorthand(names ...string) *Shorthand {
	return &Shorthand{Kind: ShorthandNames, Names: names}
}

// Clone returns a deep copy.
func (s *Shorthand) Clone() *Shorthand {
	if s == nil {
		return nil
	}
	out := &Shorthand{Kind: s.Kind, Bool: s.Bool, Name: s.Name}
	if s.Names != nil {
		out.Names = append([]string(nil), s.Names...)
	}
	return out
}

// MarshalJSON writes the form matching Kind.
func (s Shorthand) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ShorthandName:
		return json.Marshal(s.Name)
	case ShorthandNames:
		return json.Marshal(s.Names)
	default:
		return json.Marshal(s.Bool)
	}
}

// UnmarshalJSON accepts a boolean, a string, or an array of strings.
func (s *Shorthand) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = Shorthand{Kind: ShorthandBool, Bool: b}
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = Shorthand{Kind: ShorthandName, Name: name}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*s = Shorthand{Kind: ShorthandNames, Names: names}
		return nil
	}
	return fmt.Errorf("invalid shorthand value: %s", data)
}

// Column is one column of a table, including any inline constraint shorthand.
type Column struct {
	Name       string          `json:"name"`
	Type       ColumnType      `json:"type"`
	Nullable   bool            `json:"nullable"`
	Default    *string         `json:"default,omitempty"`
	Comment    *string         `json:"comment,omitempty"`
	PrimaryKey *PrimaryKeySpec `json:"primary_key,omitempty"`
	Unique     *Shorthand      `json:"unique,omitempty"`
	Index      *Shorthand      `json:"index,omitempty"`
	ForeignKey *ForeignKeyRef  `json:"foreign_key,omitempty"`
}

// Clone returns a deep copy.
func (c Column) Clone() Column {
	out := c
	out.Default = cloneString(c.Default)
	out.Comment = cloneString(c.Comment)
	if c.PrimaryKey != nil {
		pk := *c.PrimaryKey
		out.PrimaryKey = &pk
	}
	out.Unique = c.Unique.Clone()
	out.Index = c.Index.Clone()
	out.ForeignKey = c.ForeignKey.Clone()
	out.Type = c.Type.Clone()
	return out
}

// Clone returns a deep copy of the column type.
func (t ColumnType) Clone() ColumnType {
	out := t
	if t.EnumValues.Strings != nil {
		out.EnumValues.Strings = append([]string(nil), t.EnumValues.Strings...)
	}
	if t.EnumValues.Members != nil {
		out.EnumValues.Members = append([]EnumMember(nil), t.EnumValues.Members...)
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to s. Convenience for building models and
// actions literally.
func StringPtr(s string) *string {
	return &s
}
