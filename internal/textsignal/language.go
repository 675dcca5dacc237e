package textsignal

import (
	"fmt"
	"regexp"
	"strings"
)

// LanguageAnalysis scores the rhetorical quality of promise language:
// hedging, specificity, and commitment strength. Advisory only; none of
// these scores feed back into credibility math.
type LanguageAnalysis struct {
	RedFlags          []string `json:"red_flags,omitempty"`
	PositiveSignals   []string `json:"positive_signals,omitempty"`
	ConfidenceScore   float64  `json:"confidence_score"`
	HedgingScore      float64  `json:"hedging_score"`
	SpecificityScore  float64  `json:"specificity_score"`
	OverallAssessment string   `json:"overall_assessment"`
}

var redFlagPhrases = map[string][]string{
	"vague_timeline": {
		"in due course", "when appropriate", "at the right time",
		"as soon as possible", "in the near future", "eventually",
	},
	"heavy_hedging": {
		"we hope to", "we may be able to", "it's possible that",
		"depending on", "if everything goes", "assuming",
	},
	"qualification": {
		"subject to", "provided that", "unless", "except",
		"barring any", "contingent upon",
	},
	"uncertainty": {
		"we believe", "we think", "in our opinion", "we estimate",
		"approximately", "roughly",
	},
}

var commitmentPhrases = []string{
	"we will", "we are committed", "definitely", "certainly",
	"without question", "guaranteed",
}

var specificityPatterns = map[string][]*regexp.Regexp{
	"specific_timeline": compileAll(
		`\b\d{1,2}/\d{1,2}/\d{4}\b`,
		`\b[QH][1-4]\s+\d{4}\b`,
		`\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}\b`,
	),
	"quantifiable_metrics": compileAll(
		`\b\d+\s*(?:patients?|subjects?)\b`,
		`\b\d+\s*(?:sites?|centers?)\b`,
		`\$\d+(?:\.\d+)?\s*(?:million|billion)\b`,
		`\b\d+(?:\.\d+)?%`,
	),
	"track_record_reference": compileAll(
		`as we have done`, `similar to our previous`, `track record`,
		`historically`, `consistently delivered`,
	),
}

// AnalyzePromiseLanguage scans promise text for hedging red flags and
// commitment/specificity signals.
func AnalyzePromiseLanguage(text string) LanguageAnalysis {
	analysis := LanguageAnalysis{ConfidenceScore: 0.5}
	lower := strings.ToLower(text)

	for flagType, phrases := range redFlagPhrases {
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				analysis.RedFlags = append(analysis.RedFlags, fmt.Sprintf("%s: %q", flagType, phrase))
				analysis.HedgingScore += 0.1
			}
		}
	}

	for _, phrase := range commitmentPhrases {
		if strings.Contains(lower, phrase) {
			analysis.PositiveSignals = append(analysis.PositiveSignals, fmt.Sprintf("strong_commitment: %q", phrase))
			analysis.ConfidenceScore += 0.1
		}
	}

	for signalType, patterns := range specificityPatterns {
		for _, pattern := range patterns {
			if pattern.MatchString(lower) {
				analysis.PositiveSignals = append(analysis.PositiveSignals, signalType)
				analysis.SpecificityScore += 0.1
			}
		}
	}

	analysis.ConfidenceScore = min1(analysis.ConfidenceScore)
	analysis.HedgingScore = min1(analysis.HedgingScore)
	analysis.SpecificityScore = min1(analysis.SpecificityScore)

	switch {
	case analysis.HedgingScore > 0.5:
		analysis.OverallAssessment = "High Risk - Heavy hedging detected"
	case analysis.SpecificityScore < 0.2:
		analysis.OverallAssessment = "Medium Risk - Lacks specific details"
	case analysis.ConfidenceScore > 0.7 && analysis.SpecificityScore > 0.5:
		analysis.OverallAssessment = "Low Risk - Strong commitment with specifics"
	default:
		analysis.OverallAssessment = "Medium Risk - Mixed signals"
	}

	return analysis
}

func min1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
