// Package consensus reduces the settled outcomes of an evaluation run into
// a single weighted decision. The reduction is pure: the same outcomes in
// the same order always produce an identical ConsensusResult.
package consensus

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"dealdesk/internal/types"
)

// ErrNoJudgments is the run-level failure returned when every instance
// failed. It is distinct from a low-confidence needs_revision consensus:
// with zero judgments there is nothing to synthesize at all.
var ErrNoJudgments = errors.New("no evaluator produced a judgment")

// Thresholds holds the consensus policy. These are policy constants, not
// derived or validated values; they are injected from config rather than
// hard-coded.
type Thresholds struct {
	AcceptRatio float64 // accepting share of succeeded needed for overall accept
	RejectRatio float64 // rejecting share of succeeded needed for overall reject
	TopListSize int     // display count for top strengths/weaknesses
}

// DefaultThresholds returns the default consensus policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AcceptRatio: 0.7,
		RejectRatio: 0.5,
		TopListSize: 5,
	}
}

// Synthesizer derives consensus from instance outcomes.
type Synthesizer struct {
	thresholds Thresholds
}

// New creates a Synthesizer with the given policy.
func New(t Thresholds) *Synthesizer {
	if t.TopListSize < 1 {
		t.TopListSize = DefaultThresholds().TopListSize
	}
	return &Synthesizer{thresholds: t}
}

// Synthesize reduces all settled outcomes into a ConsensusResult. Failed
// instances contribute nothing to scoring; they are counted only in the
// run metadata. Zero succeeded instances is a hard run failure.
func (s *Synthesizer) Synthesize(outcomes []*types.InstanceOutcome) (*types.ConsensusResult, error) {
	var succeeded []*types.InstanceOutcome
	failed := 0
	for _, o := range outcomes {
		if o.Succeeded() {
			succeeded = append(succeeded, o)
		} else {
			failed++
		}
	}

	if len(succeeded) == 0 {
		return nil, ErrNoJudgments
	}

	result := &types.ConsensusResult{
		SucceededCount: len(succeeded),
		FailedCount:    failed,
		VerdictCounts:  make(map[types.Verdict]int),
	}

	// Verdict counting and mean confidence.
	accepting := 0
	rejecting := 0
	var confidenceSum float64
	for _, o := range succeeded {
		result.VerdictCounts[o.Judgment.Verdict]++
		confidenceSum += o.Judgment.Confidence
		if o.Judgment.Verdict.Accepting() {
			accepting++
		}
		if o.Judgment.Verdict.Rejecting() {
			rejecting++
		}
	}
	result.Confidence = confidenceSum / float64(len(succeeded))

	total := float64(len(succeeded))
	switch {
	case float64(accepting) >= s.thresholds.AcceptRatio*total:
		result.Verdict = types.OverallAccept
	case float64(rejecting) >= s.thresholds.RejectRatio*total:
		result.Verdict = types.OverallReject
	default:
		result.Verdict = types.OverallNeedsRevision
	}

	result.TopStrengths = topRanked(succeeded, func(j *types.JudgmentResult) []string {
		return j.Strengths
	}, s.thresholds.TopListSize)
	result.TopWeaknesses = topRanked(succeeded, func(j *types.JudgmentResult) []string {
		return j.Weaknesses
	}, s.thresholds.TopListSize)
	result.CriticalIssues = criticalIssues(succeeded)

	return result, nil
}

// topRanked frequency-ranks items across all succeeded judgments and
// truncates to the display count. Ties break by first-seen order, which
// keeps the reduction deterministic for identical input order.
func topRanked(succeeded []*types.InstanceOutcome, pick func(*types.JudgmentResult) []string, limit int) []string {
	counts := make(map[string]int)
	display := make(map[string]string)
	var order []string

	for _, o := range succeeded {
		for _, item := range pick(o.Judgment) {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" {
				continue
			}
			if _, seen := counts[key]; !seen {
				order = append(order, key)
				display[key] = strings.TrimSpace(item)
			}
			counts[key]++
		}
	}

	firstSeen := make(map[string]int, len(order))
	for i, key := range order {
		firstSeen[key] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] > counts[order[b]]
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	out := make([]string, 0, len(order))
	for _, key := range order {
		out = append(out, display[key])
	}
	return out
}

// criticalIssues collects reasoning snippets from rejecting instances, in
// instance order.
func criticalIssues(succeeded []*types.InstanceOutcome) []string {
	var issues []string
	for _, o := range succeeded {
		if !o.Judgment.Verdict.Rejecting() {
			continue
		}
		snippet := strings.TrimSpace(o.Judgment.Reasoning)
		if snippet == "" {
			continue
		}
		if len(snippet) > 300 {
			// Back up to a rune boundary so truncation never emits
			// invalid UTF-8.
			cut := 300
			for cut > 0 && !utf8.RuneStart(snippet[cut]) {
				cut--
			}
			snippet = snippet[:cut] + "..."
		}
		issues = append(issues, snippet)
	}
	return issues
}
