// Package types holds the shared data model for the evaluation pipeline:
// submissions, judgments, consensus, offers, and the capability interfaces
// that connect the pipeline to external collaborators.
package types

import (
	"time"
)

// =============================================================================
// SUBMISSION
// =============================================================================

// Submission is the immutable input record being evaluated. It is created
// once per evaluation request and never mutated during a run.
type Submission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tagline     string `json:"tagline,omitempty"`
	Description string `json:"description"`

	// Categorical fields
	Industry string `json:"industry"`
	Stage    string `json:"stage"`

	// Numeric fields. Monetary amounts are integers in minor currency
	// units (cents).
	FundingAskCents    int64 `json:"funding_ask_cents"`
	ValuationCents     int64 `json:"valuation_cents,omitempty"`
	TeamSize           int   `json:"team_size,omitempty"`
	AnnualRevenueCents int64 `json:"annual_revenue_cents,omitempty"`
	UserCount          int64 `json:"user_count,omitempty"`

	// Optional structured fields
	TechStack     []string `json:"tech_stack,omitempty"`
	BusinessModel string   `json:"business_model,omitempty"`
}

// =============================================================================
// VERDICTS
// =============================================================================

// Verdict is a single evaluator's categorical judgment.
type Verdict string

const (
	VerdictStrongReject Verdict = "strong_reject"
	VerdictReject       Verdict = "reject"
	VerdictNeutral      Verdict = "neutral"
	VerdictAccept       Verdict = "accept"
	VerdictStrongAccept Verdict = "strong_accept"
)

// AllVerdicts lists the fixed five verdicts in ascending order.
var AllVerdicts = []Verdict{
	VerdictStrongReject,
	VerdictReject,
	VerdictNeutral,
	VerdictAccept,
	VerdictStrongAccept,
}

// Valid reports whether v is one of the fixed five verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictStrongReject, VerdictReject, VerdictNeutral, VerdictAccept, VerdictStrongAccept:
		return true
	}
	return false
}

// Accepting reports whether the verdict counts toward the accept side.
func (v Verdict) Accepting() bool {
	return v == VerdictAccept || v == VerdictStrongAccept
}

// Rejecting reports whether the verdict counts toward the reject side.
func (v Verdict) Rejecting() bool {
	return v == VerdictReject || v == VerdictStrongReject
}

// OverallVerdict is the aggregated consensus decision.
type OverallVerdict string

const (
	OverallAccept        OverallVerdict = "accept"
	OverallReject        OverallVerdict = "reject"
	OverallNeedsRevision OverallVerdict = "needs_revision"
)

// =============================================================================
// JUDGMENT
// =============================================================================

// JudgmentResult is the structured output of one completed evaluator
// instance. Failed instances have no JudgmentResult at all; absence is how
// failure is distinguished from a genuine neutral judgment.
type JudgmentResult struct {
	Confidence float64 `json:"confidence"` // 0-100
	Verdict    Verdict `json:"verdict"`

	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	Questions       []string `json:"questions,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Reasoning       string   `json:"reasoning,omitempty"`

	// RequestedSpecialists lists sub-worker definition ids this evaluator
	// wants spawned for deeper analysis. Honored only when the parent
	// definition allows spawning and each id passes its allow-list.
	RequestedSpecialists []string `json:"requested_specialists,omitempty"`
}

// =============================================================================
// OUTCOMES
// =============================================================================

// FailureKind classifies why an instance produced no judgment.
type FailureKind string

const (
	FailureJudgeError    FailureKind = "judge_error"    // Judge call returned an error
	FailureTimeout       FailureKind = "timeout"        // Run deadline expired mid-call
	FailureInvalidOutput FailureKind = "invalid_output" // Response failed validation
)

// InstanceOutcome records how a single instance resolved: either a judgment
// or a typed failure, never both.
type InstanceOutcome struct {
	Instance *EvaluatorInstance `json:"instance"`
	Judgment *JudgmentResult    `json:"judgment,omitempty"`

	FailureKind   FailureKind `json:"failure_kind,omitempty"`
	FailureDetail string      `json:"failure_detail,omitempty"`

	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}

// Succeeded reports whether the instance completed with a judgment.
func (o *InstanceOutcome) Succeeded() bool {
	return o.Judgment != nil
}

// =============================================================================
// CONSENSUS
// =============================================================================

// ConsensusResult is the single aggregated decision derived from all
// resolved instances of one evaluation run.
type ConsensusResult struct {
	Verdict    OverallVerdict `json:"verdict"`
	Confidence float64        `json:"confidence"` // mean of succeeded instances

	TopStrengths   []string `json:"top_strengths,omitempty"`
	TopWeaknesses  []string `json:"top_weaknesses,omitempty"`
	CriticalIssues []string `json:"critical_issues,omitempty"`

	// Run metadata so downstream consumers can render confidence caveats.
	SucceededCount int             `json:"succeeded_count"`
	FailedCount    int             `json:"failed_count"`
	VerdictCounts  map[Verdict]int `json:"verdict_counts,omitempty"`
}

// =============================================================================
// OFFERS
// =============================================================================

// Offer is a derived financial proposal generated from an accepting
// consensus. An Offer with Interested=false never carries amount or equity.
type Offer struct {
	InstanceID   string `json:"instance_id"`
	DefinitionID string `json:"definition_id"`
	Interested   bool   `json:"interested"`

	AmountCents   int64   `json:"amount_cents,omitempty"`
	EquityPercent float64 `json:"equity_percent,omitempty"` // one decimal, clamped to [8, 25]

	DealStructure  string  `json:"deal_structure,omitempty"`
	Terms          string  `json:"terms,omitempty"`
	ExpectedReturn string  `json:"expected_return,omitempty"`
	Confidence     float64 `json:"confidence"`
}

// =============================================================================
// EVALUATION RESULT
// =============================================================================

// InstanceRecord is the wire-facing flattening of one instance's outcome.
type InstanceRecord struct {
	InstanceID   string `json:"instance_id"`
	ParentID     string `json:"parent_id,omitempty"`
	DefinitionID string `json:"definition_id"`

	Judgment      *JudgmentResult `json:"judgment,omitempty"`
	FailureKind   FailureKind     `json:"failure_kind,omitempty"`
	FailureDetail string          `json:"failure_detail,omitempty"`
	DurationMS    int64           `json:"duration_ms"`
}

// EvaluationResult is the full output of one evaluation run, handed to the
// external persistence/API layer.
type EvaluationResult struct {
	SubmissionID string           `json:"submission_id"`
	Instances    []InstanceRecord `json:"instances"`
	Consensus    *ConsensusResult `json:"consensus"`
	Offers       []Offer          `json:"offers"`

	// EstimatedCost is the sum of the selected definitions' cost weights.
	// Reporting only; never used for control flow.
	EstimatedCost float64 `json:"estimated_cost"`

	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}
