package types

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EVALUATOR INSTANCES
// =============================================================================

// EvaluatorInstance is one scheduled unit of work: a definition bound to a
// generated instance id, with lineage back to the parent instance that
// requested it (empty for top-level instances). Instances are immutable once
// created and live only for the duration of one evaluation run.
type EvaluatorInstance struct {
	ID           string    `json:"id"`
	DefinitionID string    `json:"definition_id"`
	ParentID     string    `json:"parent_id,omitempty"`
	Depth        int       `json:"depth"` // 0 for top-level, parent.Depth+1 for spawned
	CreatedAt    time.Time `json:"created_at"`
}

// NewInstance creates a top-level instance for the given definition.
func NewInstance(definitionID string) *EvaluatorInstance {
	return &EvaluatorInstance{
		ID:           uuid.New().String(),
		DefinitionID: definitionID,
		Depth:        0,
		CreatedAt:    time.Now(),
	}
}

// NewChildInstance creates an instance spawned by parent. The depth counter
// is threaded through every spawn so the engine can enforce a hard maximum.
func NewChildInstance(definitionID string, parent *EvaluatorInstance) *EvaluatorInstance {
	return &EvaluatorInstance{
		ID:           uuid.New().String(),
		DefinitionID: definitionID,
		ParentID:     parent.ID,
		Depth:        parent.Depth + 1,
		CreatedAt:    time.Now(),
	}
}

// TopLevel reports whether the instance was created by the Selector rather
// than spawned by a parent.
func (i *EvaluatorInstance) TopLevel() bool {
	return i.ParentID == ""
}
