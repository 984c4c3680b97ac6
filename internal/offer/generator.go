// Package offer derives bounded financial proposals from an accepting
// consensus. Offer generation is pure arithmetic over the settled
// outcomes: no randomness, no I/O, no LLM calls. The same consensus and
// outcomes always yield byte-identical offers.
package offer

import (
	"math"
	"sort"

	"dealdesk/internal/types"
)

// Policy holds the offer generation knobs. Values are injected from
// config; the zero value is not usable.
type Policy struct {
	MinConfidence     float64 // per-instance eligibility cutoff
	MaxOffers         int     // hard cap on offers per run
	MultiplierCeiling float64 // cap on the funding-ask multiplier
	EquityFloor       float64 // percent
	EquityCeiling     float64 // percent
}

// DefaultPolicy returns the default offer policy.
func DefaultPolicy() Policy {
	return Policy{
		MinConfidence:     70,
		MaxOffers:         3,
		MultiplierCeiling: 1.5,
		EquityFloor:       8,
		EquityCeiling:     25,
	}
}

// Generator turns consensus plus outcomes into offers.
type Generator struct {
	policy Policy
}

// New creates a Generator with the given policy.
func New(p Policy) *Generator {
	if p.MaxOffers < 0 {
		p.MaxOffers = 0
	}
	return &Generator{policy: p}
}

// Generate produces at most MaxOffers offers from the highest-confidence
// accepting instances. A non-accept consensus closes the run with no
// offers at all, regardless of how enthusiastic individual evaluators
// were.
func (g *Generator) Generate(consensus *types.ConsensusResult, outcomes []*types.InstanceOutcome, sub *types.Submission) []types.Offer {
	if consensus == nil || consensus.Verdict != types.OverallAccept {
		return []types.Offer{}
	}

	eligible := g.eligible(outcomes)
	if len(eligible) > g.policy.MaxOffers {
		eligible = eligible[:g.policy.MaxOffers]
	}

	offers := make([]types.Offer, 0, len(eligible))
	for _, o := range eligible {
		offers = append(offers, g.buildOffer(o, sub))
	}
	return offers
}

// eligible filters to accepting instances at or above the confidence
// cutoff and orders them by confidence, highest first. Ties break by
// outcome position, which keeps the ordering deterministic.
func (g *Generator) eligible(outcomes []*types.InstanceOutcome) []*types.InstanceOutcome {
	var picked []*types.InstanceOutcome
	for _, o := range outcomes {
		if !o.Succeeded() {
			continue
		}
		if !o.Judgment.Verdict.Accepting() {
			continue
		}
		if o.Judgment.Confidence < g.policy.MinConfidence {
			continue
		}
		picked = append(picked, o)
	}
	sort.SliceStable(picked, func(a, b int) bool {
		return picked[a].Judgment.Confidence > picked[b].Judgment.Confidence
	})
	return picked
}

// buildOffer derives one instance's offer terms from its judgment and the
// submission's funding ask.
func (g *Generator) buildOffer(o *types.InstanceOutcome, sub *types.Submission) types.Offer {
	j := o.Judgment
	amount := g.offerAmount(j, sub.FundingAskCents)
	equity := g.offerEquity(j.Confidence, amount, sub.FundingAskCents)

	return types.Offer{
		InstanceID:     o.Instance.ID,
		DefinitionID:   o.Instance.DefinitionID,
		Interested:     true,
		AmountCents:    amount,
		EquityPercent:  equity,
		DealStructure:  dealStructure(amount),
		Terms:          terms(j.Verdict, amount),
		ExpectedReturn: expectedReturn(j.Confidence),
		Confidence:     j.Confidence,
	}
}

// offerAmount scales the funding ask by a confidence-tier multiplier.
// Strong conviction can overbid the ask, but never past the configured
// ceiling. Arithmetic stays in integer cents.
func (g *Generator) offerAmount(j *types.JudgmentResult, askCents int64) int64 {
	var multiplier float64
	switch {
	case j.Confidence >= 90:
		multiplier = 1.25
	case j.Confidence >= 80:
		multiplier = 1.0
	default:
		multiplier = 0.8
	}
	if j.Verdict == types.VerdictStrongAccept {
		multiplier += 0.15
	}
	if multiplier > g.policy.MultiplierCeiling {
		multiplier = g.policy.MultiplierCeiling
	}

	return int64(math.Round(float64(askCents) * multiplier))
}

// offerEquity derives the equity ask as a percentage with one decimal
// place, clamped to the policy band. Higher evaluator confidence means a
// lighter equity ask; larger checks pull the ask back up, and an overbid
// (amount above the ask) concedes a little equity back.
func (g *Generator) offerEquity(confidence float64, amountCents, askCents int64) float64 {
	band := g.policy.EquityCeiling - g.policy.EquityFloor

	// Linear within the eligibility window: the cutoff confidence maps to
	// the ceiling, confidence 100 maps to the floor.
	window := 100 - g.policy.MinConfidence
	if window <= 0 {
		window = 1
	}
	frac := (confidence - g.policy.MinConfidence) / window
	equity := g.policy.EquityCeiling - frac*band

	// Size premium: each 10x over a $100K check adds two points.
	dollars := float64(amountCents) / 100
	if dollars > 100_000 {
		equity += 2 * math.Log10(dollars/100_000)
	}

	// Overbid concession: paying above the ask gives a little equity back.
	if askCents > 0 && amountCents > askCents {
		equity -= 5 * (float64(amountCents)/float64(askCents) - 1)
	}

	equity = math.Max(g.policy.EquityFloor, math.Min(g.policy.EquityCeiling, equity))
	return math.Round(equity*10) / 10
}

func dealStructure(amountCents int64) string {
	switch {
	case amountCents >= 100_000_000: // $1M+
		return "priced equity round with board seat"
	case amountCents >= 25_000_000: // $250K+
		return "priced equity round"
	default:
		return "SAFE with valuation cap"
	}
}

func terms(verdict types.Verdict, amountCents int64) string {
	if verdict == types.VerdictStrongAccept {
		return "standard terms, pro-rata rights, fast close"
	}
	if amountCents >= 100_000_000 {
		return "standard terms, milestone-based tranches"
	}
	return "standard terms"
}

func expectedReturn(confidence float64) string {
	switch {
	case confidence >= 90:
		return "10x+"
	case confidence >= 80:
		return "5-10x"
	default:
		return "3-5x"
	}
}
