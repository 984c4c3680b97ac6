package consensus

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"dealdesk/internal/types"
)

func outcome(defID string, verdict types.Verdict, confidence float64) *types.InstanceOutcome {
	return &types.InstanceOutcome{
		Instance: &types.EvaluatorInstance{ID: "i-" + defID, DefinitionID: defID},
		Judgment: &types.JudgmentResult{Verdict: verdict, Confidence: confidence},
	}
}

func failedOutcome(defID string, kind types.FailureKind) *types.InstanceOutcome {
	return &types.InstanceOutcome{
		Instance:    &types.EvaluatorInstance{ID: "i-" + defID, DefinitionID: defID},
		FailureKind: kind,
	}
}

func TestSynthesizeAcceptMajority(t *testing.T) {
	s := New(DefaultThresholds())

	// 3 of 4 accepting (0.75 >= 0.7) carries the accept.
	result, err := s.Synthesize([]*types.InstanceOutcome{
		outcome("a", types.VerdictAccept, 80),
		outcome("b", types.VerdictAccept, 75),
		outcome("c", types.VerdictStrongAccept, 90),
		outcome("d", types.VerdictReject, 40),
	})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	if result.Verdict != types.OverallAccept {
		t.Errorf("Verdict = %s, want accept", result.Verdict)
	}
	if result.Confidence != 71.25 {
		t.Errorf("Confidence = %v, want 71.25", result.Confidence)
	}
	if result.SucceededCount != 4 || result.FailedCount != 0 {
		t.Errorf("counts = %d/%d, want 4/0", result.SucceededCount, result.FailedCount)
	}
	if result.VerdictCounts[types.VerdictAccept] != 2 ||
		result.VerdictCounts[types.VerdictStrongAccept] != 1 ||
		result.VerdictCounts[types.VerdictReject] != 1 {
		t.Errorf("VerdictCounts = %v", result.VerdictCounts)
	}
}

func TestSynthesizeRejectMajority(t *testing.T) {
	s := New(DefaultThresholds())

	result, err := s.Synthesize([]*types.InstanceOutcome{
		outcome("a", types.VerdictReject, 80),
		outcome("b", types.VerdictStrongReject, 85),
		outcome("c", types.VerdictAccept, 70),
		outcome("d", types.VerdictNeutral, 50),
	})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if result.Verdict != types.OverallReject {
		t.Errorf("Verdict = %s, want reject (2 of 4 rejecting)", result.Verdict)
	}
}

func TestSynthesizeNeedsRevision(t *testing.T) {
	s := New(DefaultThresholds())

	// 2 of 4 accepting (0.5 < 0.7), 1 of 4 rejecting (0.25 < 0.5).
	result, err := s.Synthesize([]*types.InstanceOutcome{
		outcome("a", types.VerdictAccept, 80),
		outcome("b", types.VerdictAccept, 75),
		outcome("c", types.VerdictNeutral, 60),
		outcome("d", types.VerdictReject, 55),
	})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if result.Verdict != types.OverallNeedsRevision {
		t.Errorf("Verdict = %s, want needs_revision", result.Verdict)
	}
}

func TestSynthesizeFailedInstancesExcludedFromScoring(t *testing.T) {
	s := New(DefaultThresholds())

	// 3 of 3 succeeded accepting; the 2 failures only appear in metadata.
	result, err := s.Synthesize([]*types.InstanceOutcome{
		outcome("a", types.VerdictAccept, 80),
		failedOutcome("b", types.FailureTimeout),
		outcome("c", types.VerdictAccept, 90),
		failedOutcome("d", types.FailureJudgeError),
		outcome("e", types.VerdictStrongAccept, 70),
	})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if result.Verdict != types.OverallAccept {
		t.Errorf("Verdict = %s, want accept", result.Verdict)
	}
	if result.Confidence != 80 {
		t.Errorf("Confidence = %v, want 80 (mean over succeeded only)", result.Confidence)
	}
	if result.SucceededCount != 3 || result.FailedCount != 2 {
		t.Errorf("counts = %d/%d, want 3/2", result.SucceededCount, result.FailedCount)
	}
}

func TestSynthesizeZeroSucceeded(t *testing.T) {
	s := New(DefaultThresholds())

	_, err := s.Synthesize([]*types.InstanceOutcome{
		failedOutcome("a", types.FailureTimeout),
		failedOutcome("b", types.FailureJudgeError),
	})
	if !errors.Is(err, ErrNoJudgments) {
		t.Fatalf("error = %v, want ErrNoJudgments", err)
	}

	if _, err := s.Synthesize(nil); !errors.Is(err, ErrNoJudgments) {
		t.Fatalf("empty input error = %v, want ErrNoJudgments", err)
	}
}

func TestSynthesizeTopListRanking(t *testing.T) {
	s := New(Thresholds{AcceptRatio: 0.7, RejectRatio: 0.5, TopListSize: 2})

	a := outcome("a", types.VerdictAccept, 80)
	a.Judgment.Strengths = []string{"Strong team", "Clear market"}
	b := outcome("b", types.VerdictAccept, 80)
	b.Judgment.Strengths = []string{"clear market", "Fast iteration"}
	c := outcome("c", types.VerdictAccept, 80)
	c.Judgment.Strengths = []string{"Clear Market"}

	result, err := s.Synthesize([]*types.InstanceOutcome{a, b, c})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	// "Clear market" appears 3x (case-insensitive, first spelling wins);
	// the tie between "Strong team" and "Fast iteration" breaks first-seen.
	want := []string{"Clear market", "Strong team"}
	if diff := cmp.Diff(want, result.TopStrengths); diff != "" {
		t.Errorf("TopStrengths mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeCriticalIssues(t *testing.T) {
	s := New(DefaultThresholds())

	rejecting := outcome("a", types.VerdictStrongReject, 85)
	rejecting.Judgment.Reasoning = "The regulatory path is fatal to the timeline."
	accepting := outcome("b", types.VerdictAccept, 80)
	accepting.Judgment.Reasoning = "Looks fine."

	result, err := s.Synthesize([]*types.InstanceOutcome{rejecting, accepting})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(result.CriticalIssues) != 1 {
		t.Fatalf("CriticalIssues = %v, want 1 entry", result.CriticalIssues)
	}
	if result.CriticalIssues[0] != "The regulatory path is fatal to the timeline." {
		t.Errorf("CriticalIssues[0] = %q", result.CriticalIssues[0])
	}
}

func TestSynthesizeCriticalIssueTruncation(t *testing.T) {
	s := New(DefaultThresholds())

	// Multi-byte runes offset so the 300-byte mark lands mid-rune.
	long := "x" + strings.Repeat("語", 150)
	rejecting := outcome("a", types.VerdictReject, 80)
	rejecting.Judgment.Reasoning = long

	result, err := s.Synthesize([]*types.InstanceOutcome{rejecting})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(result.CriticalIssues) != 1 {
		t.Fatalf("CriticalIssues = %v, want 1 entry", result.CriticalIssues)
	}

	got := result.CriticalIssues[0]
	if !utf8.ValidString(got) {
		t.Error("truncated critical issue contains invalid UTF-8")
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated issue missing ellipsis: %q", got)
	}
	if len(got) > 303 {
		t.Errorf("issue length %d exceeds truncation bound", len(got))
	}
	if !strings.HasPrefix(long, strings.TrimSuffix(got, "...")) {
		t.Error("truncation altered the snippet content")
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	s := New(DefaultThresholds())

	build := func() []*types.InstanceOutcome {
		a := outcome("a", types.VerdictAccept, 80)
		a.Judgment.Strengths = []string{"Team", "Market"}
		a.Judgment.Weaknesses = []string{"Pricing"}
		b := outcome("b", types.VerdictAccept, 75)
		b.Judgment.Strengths = []string{"market", "Moat"}
		c := outcome("c", types.VerdictReject, 40)
		c.Judgment.Reasoning = "Margins do not work."
		return []*types.InstanceOutcome{a, b, c}
	}

	first, err := s.Synthesize(build())
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := s.Synthesize(build())
		if err != nil {
			t.Fatalf("run %d error: %v", i, err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d diverged (-first +again):\n%s", i, diff)
		}
	}
}
