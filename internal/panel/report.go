package panel

import (
	"fmt"
	"strings"

	"dealdesk/internal/runner"
	"dealdesk/internal/types"
)

// FormatReport renders an evaluation result as a markdown report for
// terminal or file output.
func FormatReport(sub *types.Submission, result *types.EvaluationResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Evaluation: %s\n\n", sub.Name))
	if sub.Tagline != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", sub.Tagline))
	}
	sb.WriteString(fmt.Sprintf("- **Industry:** %s\n", sub.Industry))
	sb.WriteString(fmt.Sprintf("- **Stage:** %s\n", sub.Stage))
	sb.WriteString(fmt.Sprintf("- **Funding ask:** %s\n", runner.FormatCents(sub.FundingAskCents)))
	sb.WriteString(fmt.Sprintf("- **Duration:** %v\n", result.Duration.Round(1_000_000)))
	sb.WriteString(fmt.Sprintf("- **Estimated cost:** %.1f units\n\n", result.EstimatedCost))

	cons := result.Consensus
	sb.WriteString("## Consensus\n\n")
	sb.WriteString(fmt.Sprintf("**%s** (confidence %.1f, %d evaluated / %d failed)\n\n",
		strings.ToUpper(string(cons.Verdict)), cons.Confidence,
		cons.SucceededCount, cons.FailedCount))

	writeList(&sb, "Top Strengths", cons.TopStrengths)
	writeList(&sb, "Top Weaknesses", cons.TopWeaknesses)
	writeList(&sb, "Critical Issues", cons.CriticalIssues)

	sb.WriteString("## Panel\n\n")
	sb.WriteString("| Evaluator | Verdict | Confidence | Outcome |\n")
	sb.WriteString("|-----------|---------|------------|--------|\n")
	for _, rec := range result.Instances {
		name := rec.DefinitionID
		if rec.ParentID != "" {
			name = "└ " + name
		}
		if rec.Judgment != nil {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.0f | ok |\n",
				name, rec.Judgment.Verdict, rec.Judgment.Confidence))
		} else {
			sb.WriteString(fmt.Sprintf("| %s | - | - | %s |\n", name, rec.FailureKind))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Offers\n\n")
	if len(result.Offers) == 0 {
		sb.WriteString("No offers extended.\n")
		return sb.String()
	}
	for i, o := range result.Offers {
		sb.WriteString(fmt.Sprintf("### Offer %d — %s\n\n", i+1, o.DefinitionID))
		sb.WriteString(fmt.Sprintf("- **Amount:** %s\n", runner.FormatCents(o.AmountCents)))
		sb.WriteString(fmt.Sprintf("- **Equity:** %.1f%%\n", o.EquityPercent))
		sb.WriteString(fmt.Sprintf("- **Structure:** %s\n", o.DealStructure))
		sb.WriteString(fmt.Sprintf("- **Terms:** %s\n", o.Terms))
		sb.WriteString(fmt.Sprintf("- **Expected return:** %s\n", o.ExpectedReturn))
		sb.WriteString(fmt.Sprintf("- **Confidence:** %.0f\n\n", o.Confidence))
	}

	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("### %s\n\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n")
}
