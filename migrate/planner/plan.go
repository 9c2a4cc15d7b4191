// Package planner turns declared models and previously written plans into
// the next migration plan: it replays history into a baseline, validates,
// diffs baseline against target, and orders the result.
package planner

import (
	"github.com/schemaplan/schemaplan/migrate"
	"github.com/schemaplan/schemaplan/schema"
)

// NextPlan builds the next migration plan. The baseline is reconstructed
// from the applied plans and diffed against the declared target schema.
func NextPlan(target []schema.Table, applied []migrate.Plan) (migrate.Plan, error) {
	baseline, err := SchemaFromPlans(applied)
	if err != nil {
		return migrate.Plan{}, err
	}
	return NextPlanWithBaseline(target, applied, baseline)
}

// NextPlanWithBaseline is NextPlan with a pre-computed baseline, avoiding a
// redundant replay when the caller already holds one. The target schema is
// validated before diffing. The resulting plan is not validated here:
// callers attach backfill expressions first, then run ValidatePlan.
func NextPlanWithBaseline(target []schema.Table, applied []migrate.Plan, baseline []schema.Table) (migrate.Plan, error) {
	if err := ValidateSchema(target); err != nil {
		return migrate.Plan{}, err
	}
	plan, err := Diff(baseline, target)
	if err != nil {
		return migrate.Plan{}, err
	}
	plan.Version = NextVersion(applied)
	return plan, nil
}

// NextVersion returns max applied version plus one, or 1 when no plan has
// been applied yet.
func NextVersion(applied []migrate.Plan) uint32 {
	var max uint32
	for _, p := range applied {
		if p.Version > max {
			max = p.Version
		}
	}
	return max + 1
}
