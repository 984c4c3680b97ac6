package types

import (
	"context"
)

// Judge defines the external judgment capability. The pipeline treats it as
// a pure remote call: one request in, one raw structured-text response out.
// Which inference backend implements it is not this package's concern.
type Judge interface {
	Judge(ctx context.Context, req JudgeRequest) (string, error)
}

// JudgeRequest carries everything a backend needs to produce a judgment.
type JudgeRequest struct {
	DefinitionID string `json:"definition_id"`
	SubmissionID string `json:"submission_id"`
	Domain       string `json:"domain"`
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

// JudgeFunc adapts a plain function to the Judge interface.
type JudgeFunc func(ctx context.Context, req JudgeRequest) (string, error)

// Judge implements the Judge interface.
func (f JudgeFunc) Judge(ctx context.Context, req JudgeRequest) (string, error) {
	return f(ctx, req)
}

// JudgmentCache memoizes raw Judge responses keyed by
// (definitionID, submissionID). The cache is owned by whoever wires the
// Judge, never by the execution engine itself.
type JudgmentCache interface {
	Get(definitionID, submissionID string) (string, bool)
	Put(definitionID, submissionID, raw string) error
}

// LifecycleRecorder receives per-instance lifecycle events for
// observability. Implementations must never block and must never surface
// errors into the evaluation itself.
type LifecycleRecorder interface {
	RecordStart(inst *EvaluatorInstance)
	RecordOutcome(outcome *InstanceOutcome)
}
