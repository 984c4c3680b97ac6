package engine

import (
	"dealdesk/internal/logging"
	"dealdesk/internal/registry"
	"dealdesk/internal/types"
)

// Spawner instantiates sub-worker instances requested by a parent
// evaluator. Every spawn is gated three ways: the parent definition must
// allow spawning, the requested type must be on the parent's allow-list,
// and the child's depth must stay inside the configured maximum. Requests
// that fail a gate are logged and skipped, never propagated as errors.
type Spawner struct {
	registry *registry.Registry
	maxDepth int
}

// NewSpawner creates a Spawner with the given hard depth cap.
func NewSpawner(reg *registry.Registry, maxDepth int) *Spawner {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &Spawner{registry: reg, maxDepth: maxDepth}
}

// Spawn converts a parent's requested sub-worker types into scheduled
// instances, recording lineage via the parent id and an incremented depth
// counter. The returned instances are fed back into the engine's next
// wave, not executed inline.
func (s *Spawner) Spawn(parent *types.EvaluatorInstance, requested []string) []*types.EvaluatorInstance {
	if len(requested) == 0 {
		return nil
	}

	parentDef, ok := s.registry.Get(parent.DefinitionID)
	if !ok || !parentDef.CanSpawn {
		logging.SpawnerWarn("instance %s (%s) requested sub-workers but may not spawn",
			parent.ID, parent.DefinitionID)
		return nil
	}

	if parent.Depth+1 > s.maxDepth {
		logging.SpawnerWarn("instance %s at depth %d hit spawn depth cap %d; %d requests dropped",
			parent.ID, parent.Depth, s.maxDepth, len(requested))
		return nil
	}

	allowed := make(map[string]bool, len(parentDef.SpawnAllowList))
	for _, id := range parentDef.SpawnAllowList {
		allowed[id] = true
	}

	var children []*types.EvaluatorInstance
	seen := make(map[string]bool, len(requested))

	for _, defID := range requested {
		if seen[defID] {
			continue
		}
		seen[defID] = true

		if !allowed[defID] {
			logging.SpawnerWarn("instance %s requested %q outside its allow-list; skipped",
				parent.ID, defID)
			continue
		}
		if _, ok := s.registry.Get(defID); !ok {
			logging.SpawnerWarn("instance %s requested unknown evaluator %q; skipped",
				parent.ID, defID)
			continue
		}

		child := types.NewChildInstance(defID, parent)
		children = append(children, child)
		logging.Spawner("spawned %s (%s) at depth %d for parent %s",
			child.ID, defID, child.Depth, parent.ID)
	}

	return children
}

// MaxDepth returns the configured hard depth cap.
func (s *Spawner) MaxDepth() int {
	return s.maxDepth
}
