package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"dealdesk/internal/logging"
)

// =============================================================================
// USER-DEFINED EVALUATOR OVERLAY
// =============================================================================
// Deployments can extend or replace the built-in catalog with a JSON overlay
// file (typically .dealdesk/evaluators.json). Overlay entries with a known
// id replace the built-in definition in place; new ids append after the
// built-ins in file order.

// OverlayFile is the on-disk format of a user evaluator overlay.
type OverlayFile struct {
	Version    string             `json:"version"`
	Evaluators []OverlayEvaluator `json:"evaluators"`
}

// OverlayEvaluator is one user-defined evaluator definition.
type OverlayEvaluator struct {
	ID            string   `json:"id"`
	Domain        string   `json:"domain"`
	ExpertiseTags []string `json:"expertise_tags,omitempty"`

	// Predicate selection: Always wins over Keywords; SpawnOnly wins over
	// both. Exactly one mode should be intended per entry.
	Always    bool     `json:"always,omitempty"`
	SpawnOnly bool     `json:"spawn_only,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`

	CanSpawn       bool     `json:"can_spawn,omitempty"`
	SpawnAllowList []string `json:"spawn_allow_list,omitempty"`
	CostWeight     float64  `json:"cost_weight,omitempty"`
	Framing        string   `json:"framing"`
}

// toDefinition converts an overlay entry to a catalog definition.
func (o OverlayEvaluator) toDefinition() (EvaluatorDefinition, error) {
	var pred SpawnPredicate
	switch {
	case o.SpawnOnly:
		pred = NeverPredicate{}
	case o.Always:
		pred = AlwaysPredicate{}
	case len(o.Keywords) > 0:
		pred = KeywordPredicate{Keywords: o.Keywords}
	default:
		return EvaluatorDefinition{}, fmt.Errorf(
			"overlay evaluator %q: no predicate (set always, spawn_only, or keywords)", o.ID)
	}

	weight := o.CostWeight
	if weight == 0 {
		weight = 1.0
	}

	return EvaluatorDefinition{
		ID:             o.ID,
		Domain:         o.Domain,
		ExpertiseTags:  o.ExpertiseTags,
		Predicate:      pred,
		CanSpawn:       o.CanSpawn,
		SpawnAllowList: o.SpawnAllowList,
		CostWeight:     weight,
		Framing:        o.Framing,
	}, nil
}

// LoadOverlay reads a user evaluator overlay file.
func LoadOverlay(path string) (*OverlayFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay %s: %w", path, err)
	}

	var of OverlayFile
	if err := json.Unmarshal(data, &of); err != nil {
		return nil, fmt.Errorf("failed to parse overlay %s: %w", path, err)
	}
	return &of, nil
}

// NewWithOverlay builds a registry from the built-in catalog plus an
// optional overlay file. An empty path yields the built-ins alone. Overlay
// validation failures are configuration failures and fail fast.
func NewWithOverlay(path string) (*Registry, error) {
	defs := make([]EvaluatorDefinition, 0, len(BuiltinDefinitions))
	defs = append(defs, BuiltinDefinitions...)

	if path != "" {
		of, err := LoadOverlay(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range of.Evaluators {
			def, err := entry.toDefinition()
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
		logging.Registry("loaded %d overlay evaluators from %s", len(of.Evaluators), path)
	}

	return New(defs)
}
