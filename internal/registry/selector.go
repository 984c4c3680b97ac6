package registry

import (
	"dealdesk/internal/types"
)

// =============================================================================
// SELECTOR
// =============================================================================

// Select maps a submission to the evaluator instances that should run for
// it. It is pure and deterministic: no I/O, no sorting, no bounds. Output
// order follows registry declaration order; entries with the always
// predicate are included unconditionally, never-predicate (spawn-only)
// entries are skipped, and the rest are included on a predicate match.
//
// A submission matching zero conditional predicates still yields the core
// panel; the result is empty only if the registry itself is empty.
func Select(reg *Registry, sub *types.Submission) []*types.EvaluatorInstance {
	var instances []*types.EvaluatorInstance

	for _, def := range reg.defs {
		switch def.Predicate.Kind() {
		case "always":
			instances = append(instances, types.NewInstance(def.ID))
		case "never":
			// Spawn-only; reachable through a parent's request.
		default:
			if def.Predicate.Matches(sub) {
				instances = append(instances, types.NewInstance(def.ID))
			}
		}
	}

	return instances
}

// EstimateCost sums the cost weights of the selected instances' definitions.
// Reporting only; never used for scheduling decisions.
func EstimateCost(reg *Registry, instances []*types.EvaluatorInstance) float64 {
	var total float64
	for _, inst := range instances {
		if def, ok := reg.Get(inst.DefinitionID); ok {
			total += def.CostWeight
		}
	}
	return total
}
