package planner

import (
	"strings"

	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

// Diff compares a baseline snapshot against the declared target schema and
// returns the plan that migrates baseline into target. Both sides are
// normalized first. The result's version is zero; NextPlan assigns it.
func Diff(baseline, target []schema.Table) (migrate.Plan, error) {
	cur, err := schema.NormalizeTables(baseline)
	if err != nil {
		return migrate.Plan{}, err
	}
	tgt, err := schema.NormalizeTables(target)
	if err != nil {
		return migrate.Plan{}, err
	}

	var actions []migrate.Action

	// Changes to tables present on both sides, in baseline declaration order.
	for _, curTable := range cur {
		tgtTable := schema.FindTable(tgt, curTable.Name)
		if tgtTable == nil {
			continue
		}
		actions = append(actions, diffTable(curTable, *tgtTable)...)
	}

	// Dropped tables, referencers first so drops never leave a dangling
	// foreign key mid-plan.
	var removed []schema.Table
	for _, curTable := range cur {
		if schema.FindTable(tgt, curTable.Name) == nil {
			removed = append(removed, curTable)
		}
	}
	order, stuck := dependencyOrder(removed)
	order = append(order, stuck...)
	for i := len(order) - 1; i >= 0; i-- {
		actions = append(actions, migrate.DeleteTable{Table: order[i].Name})
	}

	// New tables, referenced tables first.
	var added []schema.Table
	for _, tgtTable := range tgt {
		if schema.FindTable(cur, tgtTable.Name) == nil {
			added = append(added, tgtTable)
		}
	}
	order, stuck = dependencyOrder(added)
	if len(stuck) > 0 {
		names := make([]string, len(stuck))
		for i, t := range stuck {
			names[i] = t.Name
		}
		return migrate.Plan{}, errCircularForeignKey(strings.Join(names, ", "))
	}
	for _, t := range order {
		actions = append(actions, createTableActions(t)...)
	}

	return migrate.Plan{Version: 0, Actions: actions}, nil
}

// diffTable produces the column, index and constraint changes between two
// versions of one table.
func diffTable(cur, tgt schema.Table) []migrate.Action {
	var actions []migrate.Action

	for _, col := range cur.Columns {
		if !tgt.HasColumn(col.Name) {
			actions = append(actions, migrate.DeleteColumn{Table: cur.Name, Column: col.Name})
		}
	}

	for _, col := range cur.Columns {
		tgtCol := tgt.Column(col.Name)
		if tgtCol != nil && !col.Type.Equal(tgtCol.Type) {
			actions = append(actions, migrate.ModifyColumnType{
				Table:   cur.Name,
				Column:  col.Name,
				NewType: tgtCol.Type,
			})
		}
	}

	for _, col := range tgt.Columns {
		if !cur.HasColumn(col.Name) {
			actions = append(actions, migrate.AddColumn{Table: cur.Name, Column: col})
		}
	}

	actions = append(actions, diffIndexes(cur, tgt)...)
	actions = append(actions, diffConstraints(cur, tgt)...)
	return actions
}

// diffIndexes matches named index constraints by name and unnamed ones by
// structure. A renamed index shows up as remove plus add.
func diffIndexes(cur, tgt schema.Table) []migrate.Action {
	var actions []migrate.Action

	curNamed, curUnnamed := splitIndexes(cur)
	tgtNamed, tgtUnnamed := splitIndexes(tgt)

	for _, c := range curNamed {
		t, ok := findNamedIndex(tgtNamed, *c.Name)
		if !ok {
			actions = append(actions, migrate.RemoveIndex{Table: cur.Name, Name: *c.Name})
			continue
		}
		if !c.Equal(t) {
			actions = append(actions,
				migrate.RemoveIndex{Table: cur.Name, Name: *c.Name},
				migrate.AddIndex{Table: cur.Name, Index: t},
			)
		}
	}
	for _, t := range tgtNamed {
		if _, ok := findNamedIndex(curNamed, *t.Name); !ok {
			actions = append(actions, migrate.AddIndex{Table: cur.Name, Index: t})
		}
	}

	for _, c := range curUnnamed {
		if !containsConstraint(tgtUnnamed, c) {
			actions = append(actions, migrate.RemoveConstraint{Table: cur.Name, Constraint: c})
		}
	}
	for _, t := range tgtUnnamed {
		if !containsConstraint(curUnnamed, t) {
			actions = append(actions, migrate.AddIndex{Table: cur.Name, Index: t})
		}
	}

	return actions
}

// diffConstraints set-diffs the non-index constraints by structural equality.
func diffConstraints(cur, tgt schema.Table) []migrate.Action {
	var actions []migrate.Action
	curCons := nonIndexConstraints(cur)
	tgtCons := nonIndexConstraints(tgt)

	for _, c := range curCons {
		if !containsConstraint(tgtCons, c) {
			actions = append(actions, migrate.RemoveConstraint{Table: cur.Name, Constraint: c})
		}
	}
	for _, c := range tgtCons {
		if !containsConstraint(curCons, c) {
			actions = append(actions, migrate.AddConstraint{Table: cur.Name, Constraint: c})
		}
	}
	return actions
}

// createTableActions emits a CreateTable carrying the non-index constraints,
// followed by one AddIndex per index constraint.
func createTableActions(t schema.Table) []migrate.Action {
	actions := []migrate.Action{migrate.CreateTable{
		Table:       t.Name,
		Columns:     t.Columns,
		Constraints: nonIndexConstraints(t),
	}}
	for _, c := range t.Constraints {
		if c.Kind == schema.ConstraintIndex {
			actions = append(actions, migrate.AddIndex{Table: t.Name, Index: c})
		}
	}
	return actions
}

func splitIndexes(t schema.Table) (named, unnamed []schema.Constraint) {
	for _, c := range t.Constraints {
		if c.Kind != schema.ConstraintIndex {
			continue
		}
		if c.Name != nil {
			named = append(named, c)
		} else {
			unnamed = append(unnamed, c)
		}
	}
	return named, unnamed
}

func findNamedIndex(list []schema.Constraint, name string) (schema.Constraint, bool) {
	for _, c := range list {
		if c.Name != nil && *c.Name == name {
			return c, true
		}
	}
	return schema.Constraint{}, false
}

func nonIndexConstraints(t schema.Table) []schema.Constraint {
	var out []schema.Constraint
	for _, c := range t.Constraints {
		if c.Kind != schema.ConstraintIndex {
			out = append(out, c)
		}
	}
	return out
}

func containsConstraint(list []schema.Constraint, c schema.Constraint) bool {
	for _, v := range list {
		if v.Equal(c) {
			return true
		}
	}
	return false
}

// dependencyOrder sorts tables so that a referenced table precedes its
// referencers, using Kahn's algorithm with declaration order as the
// tie-break. Foreign keys to tables outside the batch and self references
// are ignored. Tables trapped in a cycle are returned separately, in
// declaration order.
func dependencyOrder(tables []schema.Table) (order, stuck []schema.Table) {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		index[t.Name] = i
	}

	indegree := make([]int, len(tables))
	dependents := make([][]int, len(tables))
	for i, t := range tables {
		for _, c := range t.Constraints {
			if c.Kind != schema.ConstraintForeignKey {
				continue
			}
			ref, ok := index[c.RefTable]
			if !ok || ref == i {
				continue
			}
			indegree[i]++
			dependents[ref] = append(dependents[ref], i)
		}
	}

	var queue []int
	for i := range tables {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	emitted := make([]bool, len(tables))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		emitted[i] = true
		order = append(order, tables[i])
		for _, dep := range dependents[i] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	for i, t := range tables {
		if !emitted[i] {
			stuck = append(stuck, t)
		}
	}
	return order, stuck
}
