// Package runner executes one evaluator instance: it frames the judgment
// request from the submission and the instance's definition, invokes the
// injected Judge capability, and validates the structured result. Failures
// are typed into the outcome rather than returned as errors; the execution
// engine treats every outcome the same way.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealdesk/internal/logging"
	"dealdesk/internal/registry"
	"dealdesk/internal/types"
)

// Runner runs evaluator instances against the Judge capability.
type Runner struct {
	registry *registry.Registry
	judge    types.Judge

	cache    types.JudgmentCache     // optional
	recorder types.LifecycleRecorder // optional

	// degradeOnInvalid coerces malformed judgments to a safe neutral
	// result instead of recording a failure.
	degradeOnInvalid bool

	judgeTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache installs a judgment cache keyed by (definitionID, submissionID).
func WithCache(cache types.JudgmentCache) Option {
	return func(r *Runner) { r.cache = cache }
}

// WithRecorder installs a lifecycle recorder.
func WithRecorder(rec types.LifecycleRecorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithDegradeOnInvalid enables coercion of malformed judgments to neutral.
func WithDegradeOnInvalid(enabled bool) Option {
	return func(r *Runner) { r.degradeOnInvalid = enabled }
}

// WithJudgeTimeout bounds each individual Judge call.
func WithJudgeTimeout(d time.Duration) Option {
	return func(r *Runner) { r.judgeTimeout = d }
}

// New creates a Runner.
func New(reg *registry.Registry, judge types.Judge, opts ...Option) *Runner {
	r := &Runner{
		registry:     reg,
		judge:        judge,
		judgeTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a single instance and always returns an outcome: a judgment
// on success, a typed failure otherwise. It never panics the run and never
// retries; retry policy belongs to the Judge implementation.
func (r *Runner) Run(ctx context.Context, inst *types.EvaluatorInstance, sub *types.Submission) *types.InstanceOutcome {
	outcome := &types.InstanceOutcome{
		Instance:  inst,
		StartedAt: time.Now(),
	}
	r.recordStart(inst)

	def, ok := r.registry.Get(inst.DefinitionID)
	if !ok {
		return r.fail(outcome, types.FailureInvalidOutput,
			fmt.Sprintf("unknown definition %q", inst.DefinitionID))
	}

	logging.Runner("instance %s (%s) started for submission %s", inst.ID, def.ID, sub.ID)

	raw, err := r.obtainRaw(ctx, def, sub)
	if err != nil {
		// Only an expired deadline is a timeout; a plain cancellation
		// (caller interrupt) stays a judge error.
		kind := types.FailureJudgeError
		if errors.Is(err, context.DeadlineExceeded) {
			kind = types.FailureTimeout
		}
		return r.fail(outcome, kind, err.Error())
	}

	judgment, err := ParseJudgment(raw)
	if err != nil {
		if !r.degradeOnInvalid {
			return r.fail(outcome, types.FailureInvalidOutput, err.Error())
		}
		logging.RunnerDebug("instance %s degraded to neutral: %v", inst.ID, err)
		judgment = degradedJudgment(err)
	}

	outcome.Judgment = judgment
	outcome.CompletedAt = time.Now()
	outcome.Duration = outcome.CompletedAt.Sub(outcome.StartedAt)
	r.recordOutcome(outcome)

	logging.Runner("instance %s (%s) completed: verdict=%s confidence=%.0f in %v",
		inst.ID, def.ID, judgment.Verdict, judgment.Confidence, outcome.Duration)
	return outcome
}

// obtainRaw returns the raw judge response, consulting the cache first.
func (r *Runner) obtainRaw(ctx context.Context, def registry.EvaluatorDefinition, sub *types.Submission) (string, error) {
	if r.cache != nil {
		if raw, hit := r.cache.Get(def.ID, sub.ID); hit {
			logging.Cache("hit for (%s, %s)", def.ID, sub.ID)
			return raw, nil
		}
	}

	req := types.JudgeRequest{
		DefinitionID: def.ID,
		SubmissionID: sub.ID,
		Domain:       def.Domain,
		SystemPrompt: buildSystemPrompt(def),
		UserPrompt:   buildUserPrompt(sub),
	}

	callCtx := ctx
	if r.judgeTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.judgeTimeout)
		defer cancel()
	}

	raw, err := r.judge.Judge(callCtx, req)
	if err != nil {
		return "", fmt.Errorf("judge call for %s failed: %w", def.ID, err)
	}

	if r.cache != nil {
		if err := r.cache.Put(def.ID, sub.ID, raw); err != nil {
			// Cache problems never fail an evaluation.
			logging.Cache("put failed for (%s, %s): %v", def.ID, sub.ID, err)
		}
	}
	return raw, nil
}

// fail finalizes a failure outcome.
func (r *Runner) fail(outcome *types.InstanceOutcome, kind types.FailureKind, detail string) *types.InstanceOutcome {
	outcome.FailureKind = kind
	outcome.FailureDetail = detail
	outcome.CompletedAt = time.Now()
	outcome.Duration = outcome.CompletedAt.Sub(outcome.StartedAt)
	r.recordOutcome(outcome)

	logging.Get(logging.CategoryRunner).Warn("instance %s failed (%s): %s",
		outcome.Instance.ID, kind, detail)
	return outcome
}

func (r *Runner) recordStart(inst *types.EvaluatorInstance) {
	if r.recorder != nil {
		r.recorder.RecordStart(inst)
	}
}

func (r *Runner) recordOutcome(outcome *types.InstanceOutcome) {
	if r.recorder != nil {
		r.recorder.RecordOutcome(outcome)
	}
}

// degradedJudgment is the safe fallback for malformed output when degrade
// mode is on: midpoint confidence, neutral verdict.
func degradedJudgment(cause error) *types.JudgmentResult {
	return &types.JudgmentResult{
		Confidence: 50,
		Verdict:    types.VerdictNeutral,
		Reasoning:  fmt.Sprintf("Degraded result: judgment output failed validation (%v).", cause),
	}
}

// =============================================================================
// PROMPT FRAMING
// =============================================================================

// buildSystemPrompt frames the judge with the definition's domain
// perspective and the response protocol.
func buildSystemPrompt(def registry.EvaluatorDefinition) string {
	var sb strings.Builder

	sb.WriteString(def.Framing)
	sb.WriteString("\n\n")
	sb.WriteString("Respond with exactly this structure:\n\n")
	sb.WriteString("VERDICT: [strong_reject / reject / neutral / accept / strong_accept]\n")
	sb.WriteString("CONFIDENCE: [0-100]\n\n")
	sb.WriteString("STRENGTHS:\n- [one per line]\n\n")
	sb.WriteString("WEAKNESSES:\n- [one per line]\n\n")
	sb.WriteString("QUESTIONS:\n- [questions you would ask the founders, one per line]\n\n")
	sb.WriteString("RECOMMENDATIONS:\n- [one per line]\n\n")

	if def.CanSpawn && len(def.SpawnAllowList) > 0 {
		sb.WriteString("REQUEST_SPECIALISTS:\n")
		sb.WriteString(fmt.Sprintf("- [only if deeper analysis is needed; choose from: %s]\n\n",
			strings.Join(def.SpawnAllowList, ", ")))
	}

	sb.WriteString("REASONING:\n[your main assessment]\n")
	return sb.String()
}

// buildUserPrompt renders the submission for the judge.
func buildUserPrompt(sub *types.Submission) string {
	var sb strings.Builder

	sb.WriteString("## Pitch Submission\n\n")
	sb.WriteString(fmt.Sprintf("**Company:** %s\n", sub.Name))
	if sub.Tagline != "" {
		sb.WriteString(fmt.Sprintf("**Tagline:** %s\n", sub.Tagline))
	}
	sb.WriteString(fmt.Sprintf("**Industry:** %s\n", sub.Industry))
	sb.WriteString(fmt.Sprintf("**Stage:** %s\n\n", sub.Stage))

	sb.WriteString("### Description\n")
	sb.WriteString(sub.Description)
	sb.WriteString("\n\n### Financials\n")
	sb.WriteString(fmt.Sprintf("- Funding ask: %s\n", FormatCents(sub.FundingAskCents)))
	if sub.ValuationCents > 0 {
		sb.WriteString(fmt.Sprintf("- Valuation: %s\n", FormatCents(sub.ValuationCents)))
	}
	if sub.AnnualRevenueCents > 0 {
		sb.WriteString(fmt.Sprintf("- Annual revenue: %s\n", FormatCents(sub.AnnualRevenueCents)))
	}
	if sub.TeamSize > 0 {
		sb.WriteString(fmt.Sprintf("- Team size: %d\n", sub.TeamSize))
	}
	if sub.UserCount > 0 {
		sb.WriteString(fmt.Sprintf("- Users: %d\n", sub.UserCount))
	}

	if len(sub.TechStack) > 0 {
		sb.WriteString(fmt.Sprintf("\n### Tech Stack\n%s\n", strings.Join(sub.TechStack, ", ")))
	}
	if sub.BusinessModel != "" {
		sb.WriteString(fmt.Sprintf("\n### Business Model\n%s\n", sub.BusinessModel))
	}

	return sb.String()
}

// FormatCents renders a minor-unit amount as dollars for prompt/report text.
func FormatCents(cents int64) string {
	dollars := cents / 100
	switch {
	case dollars >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(dollars)/1_000_000)
	case dollars >= 1_000:
		return fmt.Sprintf("$%.0fK", float64(dollars)/1_000)
	default:
		return fmt.Sprintf("$%d", dollars)
	}
}
