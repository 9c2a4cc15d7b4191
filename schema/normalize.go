package schema

import "fmt"

// DuplicateIndexError reports two index shorthands colliding on one name
// with incompatible column sets.
type DuplicateIndexError struct {
	Table string
	Name  string
}

func (e *DuplicateIndexError) Error() string {
	return fmt.Sprintf("duplicate index name: %s.%s", e.Table, e.Name)
}

// DuplicateConstraintError reports two constraint shorthands colliding on
// one name with incompatible column sets.
type DuplicateConstraintError struct {
	Table string
	Name  string
}

func (e *DuplicateConstraintError) Error() string {
	return fmt.Sprintf("duplicate constraint name: %s.%s", e.Table, e.Name)
}

// Normalize materializes inline column shorthand (primary_key, unique,
// index, foreign_key) into table-level constraints. The inline markers are
// left in place; a shorthand whose constraint already exists is skipped, so
// normalizing an already-normalized table is a no-op.
func (t Table) Normalize() (Table, error) {
	out := t.Clone()

	normalizePrimaryKey(&out)
	if err := normalizeUnique(&out); err != nil {
		return Table{}, err
	}
	normalizeForeignKeys(&out)
	if err := normalizeIndexes(&out); err != nil {
		return Table{}, err
	}

	return out, nil
}

// NormalizeTables normalizes every table in a schema snapshot.
func NormalizeTables(tables []Table) ([]Table, error) {
	out := make([]Table, len(tables))
	for i, t := range tables {
		n, err := t.Normalize()
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func normalizePrimaryKey(t *Table) {
	if t.PrimaryKeyConstraint() != nil {
		return
	}
	var cols []string
	var autoIncrement bool
	for _, c := range t.Columns {
		if c.PrimaryKey != nil && c.PrimaryKey.Enabled {
			cols = append(cols, c.Name)
			autoIncrement = autoIncrement || c.PrimaryKey.AutoIncrement
		}
	}
	if len(cols) > 0 {
		t.Constraints = append(t.Constraints, PrimaryKey(autoIncrement, cols...))
	}
}

func normalizeUnique(t *Table) error {
	for _, col := range t.Columns {
		sh := col.Unique
		if sh == nil {
			continue
		}
		switch sh.Kind {
		case ShorthandBool:
			if !sh.Bool {
				continue
			}
			if findUnnamedUnique(t, col.Name) == nil {
				t.Constraints = append(t.Constraints, Unique(nil, col.Name))
			}
		case ShorthandName:
			if err := mergeNamedUnique(t, sh.Name, col.Name); err != nil {
				return err
			}
		case ShorthandNames:
			for _, name := range sh.Names {
				if err := mergeNamedUnique(t, name, col.Name); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// mergeNamedUnique folds a column into the named unique constraint, creating
// it on first sight. A pre-declared table-level constraint with the same
// name absorbs the column; anything else with that name is a collision.
func mergeNamedUnique(t *Table, name, column string) error {
	for i := range t.Constraints {
		c := &t.Constraints[i]
		if c.Name == nil || *c.Name != name {
			continue
		}
		if c.Kind != ConstraintUnique {
			return &DuplicateConstraintError{Table: t.Name, Name: name}
		}
		if !containsString(c.Columns, column) {
			c.Columns = append(c.Columns, column)
		}
		return nil
	}
	n := name
	t.Constraints = append(t.Constraints, Unique(&n, column))
	return nil
}

func findUnnamedUnique(t *Table, column string) *Constraint {
	for i := range t.Constraints {
		c := &t.Constraints[i]
		if c.Kind == ConstraintUnique && c.Name == nil && stringsEqual(c.Columns, []string{column}) {
			return c
		}
	}
	return nil
}

func normalizeForeignKeys(t *Table) {
	for _, col := range t.Columns {
		fk := col.ForeignKey
		if fk == nil {
			continue
		}
		if findForeignKeyOn(t, col.Name) != nil {
			continue
		}
		t.Constraints = append(t.Constraints, ForeignKey(
			nil,
			[]string{col.Name},
			fk.RefTable,
			append([]string(nil), fk.RefColumns...),
			fk.OnDelete,
			fk.OnUpdate,
		))
	}
}

func findForeignKeyOn(t *Table, column string) *Constraint {
	for i := range t.Constraints {
		c := &t.Constraints[i]
		if c.Kind == ConstraintForeignKey && stringsEqual(c.Columns, []string{column}) {
			return c
		}
	}
	return nil
}

// DefaultIndexName is the name given to a bare boolean index shorthand.
func DefaultIndexName(table, column string) string {
	return fmt.Sprintf("idx_%s_%s", table, column)
}

func normalizeIndexes(t *Table) error {
	var order []string
	groups := make(map[string][]string)
	add := func(name, column string) {
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		if !containsString(groups[name], column) {
			groups[name] = append(groups[name], column)
		}
	}

	for _, col := range t.Columns {
		sh := col.Index
		if sh == nil {
			continue
		}
		switch sh.Kind {
		case ShorthandBool:
			if sh.Bool {
				add(DefaultIndexName(t.Name, col.Name), col.Name)
			}
		case ShorthandName:
			add(sh.Name, col.Name)
		case ShorthandNames:
			for _, name := range sh.Names {
				add(name, col.Name)
			}
		}
	}

	for _, name := range order {
		cols := groups[name]
		existing := findConstraintByName(t, name)
		if existing == nil {
			n := name
			t.Constraints = append(t.Constraints, Index(&n, cols...))
			continue
		}
		if existing.Kind != ConstraintIndex {
			return &DuplicateIndexError{Table: t.Name, Name: name}
		}
		for _, c := range cols {
			if !containsString(existing.Columns, c) {
				return &DuplicateIndexError{Table: t.Name, Name: name}
			}
		}
	}
	return nil
}

func findConstraintByName(t *Table, name string) *Constraint {
	for i := range t.Constraints {
		c := &t.Constraints[i]
		if c.Name != nil && *c.Name == name {
			return c
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
