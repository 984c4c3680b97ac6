package runner

import (
	"fmt"
	"strconv"
	"strings"

	"dealdesk/internal/types"
)

// =============================================================================
// JUDGMENT PROTOCOL PARSING
// =============================================================================
// Judges respond in a structured text protocol:
//
//	VERDICT: accept
//	CONFIDENCE: 78
//	STRENGTHS:
//	- ...
//	WEAKNESSES:
//	- ...
//	QUESTIONS:
//	- ...
//	RECOMMENDATIONS:
//	- ...
//	REQUEST_SPECIALISTS:
//	- ...
//	REASONING:
//	free text until end
//
// Sections may appear in any order; list sections take "-" or "*" bullets.

// ParseJudgment parses a raw judge response into a JudgmentResult and
// validates it against the fixed shape: verdict must be one of the five
// categories and confidence must be within [0, 100].
func ParseJudgment(raw string) (*types.JudgmentResult, error) {
	result := &types.JudgmentResult{Confidence: -1}

	var currentSection string
	var reasoning strings.Builder

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "VERDICT:"):
			currentSection = ""
			result.Verdict = normalizeVerdict(trimmed[len("VERDICT:"):])
		case strings.HasPrefix(upper, "CONFIDENCE:"):
			currentSection = ""
			conf, err := parseConfidence(trimmed[len("CONFIDENCE:"):])
			if err != nil {
				return nil, err
			}
			result.Confidence = conf
		case strings.HasPrefix(upper, "STRENGTHS:"):
			currentSection = "strengths"
		case strings.HasPrefix(upper, "WEAKNESSES:"):
			currentSection = "weaknesses"
		case strings.HasPrefix(upper, "QUESTIONS:"):
			currentSection = "questions"
		case strings.HasPrefix(upper, "RECOMMENDATIONS:"):
			currentSection = "recommendations"
		case strings.HasPrefix(upper, "REQUEST_SPECIALISTS:"):
			currentSection = "specialists"
		case strings.HasPrefix(upper, "REASONING:"):
			currentSection = "reasoning"
			if rest := strings.TrimSpace(trimmed[len("REASONING:"):]); rest != "" {
				reasoning.WriteString(rest)
			}
		default:
			switch currentSection {
			case "reasoning":
				if trimmed != "" {
					if reasoning.Len() > 0 {
						reasoning.WriteString("\n")
					}
					reasoning.WriteString(trimmed)
				}
			case "":
				// Text outside any section is ignored.
			default:
				item, ok := bulletItem(trimmed)
				if !ok {
					continue
				}
				switch currentSection {
				case "strengths":
					result.Strengths = append(result.Strengths, item)
				case "weaknesses":
					result.Weaknesses = append(result.Weaknesses, item)
				case "questions":
					result.Questions = append(result.Questions, item)
				case "recommendations":
					result.Recommendations = append(result.Recommendations, item)
				case "specialists":
					result.RequestedSpecialists = append(result.RequestedSpecialists, normalizeSpecialist(item))
				}
			}
		}
	}

	result.Reasoning = reasoning.String()

	if !result.Verdict.Valid() {
		return nil, fmt.Errorf("missing or unknown verdict in judgment")
	}
	if result.Confidence < 0 || result.Confidence > 100 {
		return nil, fmt.Errorf("confidence %v outside [0, 100]", result.Confidence)
	}

	return result, nil
}

// bulletItem strips a leading "-" or "*" bullet. Non-bullet lines inside
// list sections are ignored.
func bulletItem(line string) (string, bool) {
	if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
		return "", false
	}
	item := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "-"), "*"))
	if item == "" || strings.EqualFold(item, "none") {
		return "", false
	}
	return item, true
}

// normalizeVerdict maps verdict spellings ("Strong Accept", "strong-accept")
// onto the fixed enum. Unknown input yields an invalid zero verdict.
func normalizeVerdict(s string) types.Verdict {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	v = strings.ReplaceAll(v, "-", "_")
	verdict := types.Verdict(v)
	if verdict.Valid() {
		return verdict
	}
	return ""
}

// parseConfidence accepts "78", "78.5", or "78%".
func parseConfidence(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	conf, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable confidence %q", s)
	}
	return conf, nil
}

// normalizeSpecialist maps a requested specialist name to allow-list form.
func normalizeSpecialist(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}
