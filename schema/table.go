package schema

// Table is one declared table: columns plus table-level constraints.
// Inline column shorthand is materialized into Constraints by Normalize.
type Table struct {
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Columns     []Column     `json:"columns"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	out := Table{Name: t.Name, Description: cloneString(t.Description)}
	out.Columns = make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		out.Columns[i] = c.Clone()
	}
	if t.Constraints != nil {
		out.Constraints = make([]Constraint, len(t.Constraints))
		for i, c := range t.Constraints {
			out.Constraints[i] = c.Clone()
		}
	}
	return out
}

// Column returns a pointer to the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// PrimaryKeyConstraint returns the table-level primary key constraint, or nil.
func (t *Table) PrimaryKeyConstraint() *Constraint {
	for i := range t.Constraints {
		if t.Constraints[i].Kind == ConstraintPrimaryKey {
			return &t.Constraints[i]
		}
	}
	return nil
}

// CloneTables deep-copies a schema snapshot.
func CloneTables(tables []Table) []Table {
	out := make([]Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return out
}

// FindTable returns a pointer to the named table within the snapshot, or nil.
func FindTable(tables []Table, name string) *Table {
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i]
		}
	}
	return nil
}
