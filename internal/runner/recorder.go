package runner

import (
	"dealdesk/internal/logging"
	"dealdesk/internal/types"
)

// LogRecorder is the default lifecycle recorder: it writes instance
// lifecycle records to the runner log category. It never blocks and never
// surfaces errors into the evaluation.
type LogRecorder struct{}

// RecordStart implements types.LifecycleRecorder.
func (LogRecorder) RecordStart(inst *types.EvaluatorInstance) {
	logging.RunnerDebug("lifecycle: started instance=%s definition=%s parent=%s depth=%d",
		inst.ID, inst.DefinitionID, inst.ParentID, inst.Depth)
}

// RecordOutcome implements types.LifecycleRecorder.
func (LogRecorder) RecordOutcome(outcome *types.InstanceOutcome) {
	inst := outcome.Instance
	if outcome.Succeeded() {
		logging.RunnerDebug("lifecycle: completed instance=%s definition=%s duration=%v",
			inst.ID, inst.DefinitionID, outcome.Duration)
		return
	}
	logging.RunnerDebug("lifecycle: failed instance=%s definition=%s kind=%s duration=%v",
		inst.ID, inst.DefinitionID, outcome.FailureKind, outcome.Duration)
}
