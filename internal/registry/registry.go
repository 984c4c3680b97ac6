// Package registry holds the static catalog of evaluator definitions and
// the pure Selector that maps a submission to the evaluator instances
// relevant to it. Definitions are data, not subclasses: a single worker
// runner is parameterized by whichever definition an instance references.
package registry

import (
	"fmt"
	"strings"

	"dealdesk/internal/types"
)

// =============================================================================
// SPAWN PREDICATES
// =============================================================================

// SpawnPredicate decides whether an evaluator definition is relevant to a
// given submission. Implementations must be pure: no I/O, no state.
type SpawnPredicate interface {
	Matches(sub *types.Submission) bool
	Kind() string
}

// AlwaysPredicate matches every submission. Definitions carrying it form
// the core panel that runs on every evaluation.
type AlwaysPredicate struct{}

// Matches always returns true.
func (AlwaysPredicate) Matches(*types.Submission) bool { return true }

// Kind returns "always".
func (AlwaysPredicate) Kind() string { return "always" }

// NeverPredicate never matches. It marks spawn-only definitions: sub-worker
// types that only enter a run when a parent requests them.
type NeverPredicate struct{}

// Matches always returns false.
func (NeverPredicate) Matches(*types.Submission) bool { return false }

// Kind returns "never".
func (NeverPredicate) Kind() string { return "never" }

// KeywordPredicate matches when any keyword appears (case-insensitive
// substring) in the submission's free-text or categorical fields.
type KeywordPredicate struct {
	Keywords []string
}

// Matches scans name, tagline, description, industry, stage, business model
// and tech stack for any of the keywords.
func (p KeywordPredicate) Matches(sub *types.Submission) bool {
	if sub == nil || len(p.Keywords) == 0 {
		return false
	}
	haystack := " " + strings.ToLower(strings.Join([]string{
		sub.Name,
		sub.Tagline,
		sub.Description,
		sub.Industry,
		sub.Stage,
		sub.BusinessModel,
		strings.Join(sub.TechStack, " "),
	}, " ")) + " "

	for _, kw := range p.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Kind returns "keyword".
func (p KeywordPredicate) Kind() string { return "keyword" }

// =============================================================================
// EVALUATOR DEFINITIONS
// =============================================================================

// EvaluatorDefinition is one registry entry: a domain perspective that can
// judge submissions. CostWeight is used only for reporting/estimation and
// never drives control flow.
type EvaluatorDefinition struct {
	ID            string
	Domain        string
	ExpertiseTags []string
	Predicate     SpawnPredicate

	// Sub-worker spawning
	CanSpawn       bool
	SpawnAllowList []string

	CostWeight float64

	// Framing is the domain-specific perspective injected into the
	// judgment prompt for this evaluator.
	Framing string
}

// Registry is an ordered catalog of evaluator definitions. Declaration
// order is load-bearing: the Selector emits instances in this order.
type Registry struct {
	defs  []EvaluatorDefinition
	index map[string]int
}

// New builds a registry from definitions in declaration order and validates
// it. A malformed registry is a configuration failure and is rejected here,
// at startup, not per-run.
func New(defs []EvaluatorDefinition) (*Registry, error) {
	r := &Registry{
		defs:  make([]EvaluatorDefinition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if err := r.add(def); err != nil {
			return nil, err
		}
	}
	if err := r.validateAllowLists(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) add(def EvaluatorDefinition) error {
	if def.ID == "" {
		return fmt.Errorf("evaluator definition with empty id")
	}
	if def.Domain == "" {
		return fmt.Errorf("evaluator %q: empty domain", def.ID)
	}
	if def.Predicate == nil {
		return fmt.Errorf("evaluator %q: nil spawn predicate", def.ID)
	}
	if def.CanSpawn && len(def.SpawnAllowList) == 0 {
		return fmt.Errorf("evaluator %q: can_spawn set with empty allow-list", def.ID)
	}
	if !def.CanSpawn && len(def.SpawnAllowList) > 0 {
		return fmt.Errorf("evaluator %q: allow-list set without can_spawn", def.ID)
	}
	if def.CostWeight < 0 {
		return fmt.Errorf("evaluator %q: negative cost weight", def.ID)
	}
	if idx, dup := r.index[def.ID]; dup {
		// Overlay semantics: a later definition with the same id
		// replaces the earlier one in place, keeping its position.
		r.defs[idx] = def
		return nil
	}
	r.index[def.ID] = len(r.defs)
	r.defs = append(r.defs, def)
	return nil
}

// validateAllowLists checks every allow-list entry resolves to a known
// definition that does not itself spawn (keeps the forest shallow by
// construction, on top of the engine's runtime depth cap).
func (r *Registry) validateAllowLists() error {
	for _, def := range r.defs {
		for _, allowed := range def.SpawnAllowList {
			child, ok := r.Get(allowed)
			if !ok {
				return fmt.Errorf("evaluator %q: allow-list references unknown evaluator %q", def.ID, allowed)
			}
			if child.CanSpawn {
				return fmt.Errorf("evaluator %q: allow-list entry %q may itself spawn", def.ID, allowed)
			}
		}
	}
	return nil
}

// Get returns the definition with the given id.
func (r *Registry) Get(id string) (EvaluatorDefinition, bool) {
	idx, ok := r.index[id]
	if !ok {
		return EvaluatorDefinition{}, false
	}
	return r.defs[idx], true
}

// All returns the definitions in declaration order.
func (r *Registry) All() []EvaluatorDefinition {
	out := make([]EvaluatorDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}
