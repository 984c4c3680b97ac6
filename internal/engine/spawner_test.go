package engine

import (
	"testing"

	"dealdesk/internal/registry"
	"dealdesk/internal/types"
)

func spawnerRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.NewBuiltin()
	if err != nil {
		t.Fatalf("NewBuiltin() error: %v", err)
	}
	return reg
}

func TestSpawnGrantsAllowListedRequests(t *testing.T) {
	s := NewSpawner(spawnerRegistry(t), 1)
	parent := types.NewInstance("ai_specialist")

	children := s.Spawn(parent, []string{"data_advantage_auditor", "infra_cost_auditor"})
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
	for _, c := range children {
		if c.ParentID != parent.ID {
			t.Errorf("child %s has parent %q, want %q", c.DefinitionID, c.ParentID, parent.ID)
		}
		if c.Depth != 1 {
			t.Errorf("child %s depth = %d, want 1", c.DefinitionID, c.Depth)
		}
	}
}

func TestSpawnSkipsOutsideAllowList(t *testing.T) {
	s := NewSpawner(spawnerRegistry(t), 1)
	parent := types.NewInstance("ai_specialist")

	// regulatory_auditor exists but belongs to other specialists.
	children := s.Spawn(parent, []string{"regulatory_auditor", "data_advantage_auditor"})
	if len(children) != 1 || children[0].DefinitionID != "data_advantage_auditor" {
		t.Errorf("children = %v, want only data_advantage_auditor", definitionIDs(children))
	}
}

func TestSpawnSkipsUnknownDefinitions(t *testing.T) {
	s := NewSpawner(spawnerRegistry(t), 1)
	parent := types.NewInstance("ai_specialist")

	if children := s.Spawn(parent, []string{"ghost_auditor"}); len(children) != 0 {
		t.Errorf("spawned unknown definitions: %v", definitionIDs(children))
	}
}

func TestSpawnDeniesNonSpawningParent(t *testing.T) {
	s := NewSpawner(spawnerRegistry(t), 1)
	parent := types.NewInstance("generalist")

	if children := s.Spawn(parent, []string{"data_advantage_auditor"}); len(children) != 0 {
		t.Errorf("non-spawning parent spawned: %v", definitionIDs(children))
	}
}

func TestSpawnEnforcesDepthCap(t *testing.T) {
	s := NewSpawner(spawnerRegistry(t), 1)
	top := types.NewInstance("ai_specialist")
	atCap := types.NewChildInstance("ai_specialist", top)

	if children := s.Spawn(atCap, []string{"data_advantage_auditor"}); len(children) != 0 {
		t.Errorf("spawn past depth cap: %v", definitionIDs(children))
	}
}

func TestSpawnDedupesRequests(t *testing.T) {
	s := NewSpawner(spawnerRegistry(t), 1)
	parent := types.NewInstance("ai_specialist")

	children := s.Spawn(parent, []string{
		"data_advantage_auditor", "data_advantage_auditor", "data_advantage_auditor",
	})
	if len(children) != 1 {
		t.Errorf("got %d children, want 1 after dedupe", len(children))
	}
}

func TestSpawnEmptyRequest(t *testing.T) {
	s := NewSpawner(spawnerRegistry(t), 1)
	if children := s.Spawn(types.NewInstance("ai_specialist"), nil); children != nil {
		t.Errorf("empty request spawned %v", definitionIDs(children))
	}
}

func definitionIDs(instances []*types.EvaluatorInstance) []string {
	ids := make([]string, 0, len(instances))
	for _, inst := range instances {
		ids = append(ids, inst.DefinitionID)
	}
	return ids
}
