// Package textsignal converts unstructured biotech news text into typed
// signals: executive promises, deadlines, confidence language,
// quantitative metrics, and FDA filing mentions. Everything here is
// declarative pattern matching; there is no learned model.
package textsignal

import (
	"regexp"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// timeline is the shared capture for period expressions: "Q3 2024",
// "H1 2025", "June 2024", "first half of 2024".
const timeline = `([QH][1-4]\s+\d{4}|\w+\s+\d{4})`

// promisePatterns maps each detectable promise type to an ordered list
// of matchers. Each pattern captures the timeline expression in group 1.
// Types without patterns (partnership, financing, ...) are recorded
// manually rather than extracted.
var promisePatterns = map[model.PromiseType][]*regexp.Regexp{
	model.PromiseClinicalTimeline: {
		regexp.MustCompile(`(?i)expect(?:ed|ing)?\s+(?:to\s+)?(?:report|announce|release)\s+(?:topline\s+)?(?:data|results)\s+(?:in|by|during)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:trial|study)\s+(?:data|results)\s+(?:expected|anticipated)\s+(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:plan|planning|plans)\s+to\s+(?:report|announce)\s+(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:on\s+track|remains?\s+on\s+track)\s+(?:to|for)\s+(?:report|complete|deliver).*?(?:in|by)\s+` + timeline),
	},
	model.PromiseFDASubmission: {
		regexp.MustCompile(`(?i)(?:plan|expect|anticipate)\s+to\s+(?:submit|file)\s+(?:the\s+)?(?:our\s+)?(?:NDA|BLA|IND|510k|PMA).*?(?:in|by|during)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:NDA|BLA|IND|510k|PMA)\s+(?:submission|filing)\s+(?:expected|anticipated|planned)\s+(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)targeting\s+(?:a|an)?\s*(?:NDA|BLA|IND|510k|PMA)\s+(?:submission|filing)\s+(?:in|by)\s+` + timeline),
	},
	model.PromiseDataReadout: {
		regexp.MustCompile(`(?i)data\s+(?:readout|read-out)\s+(?:expected|anticipated)\s+(?:in|by|during)\s+` + timeline),
		regexp.MustCompile(`(?i)expect\s+(?:the\s+)?data\s+(?:from|for).*?(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:topline|top-line)\s+(?:data|results)\s+(?:in|by)\s+` + timeline),
	},
	model.PromiseEnrollmentCompletion: {
		regexp.MustCompile(`(?i)(?:enrollment|enrolment)\s+(?:expected|anticipated)\s+to\s+(?:complete|finish)\s+(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:complete|finish)\s+(?:enrollment|enrolment)\s+(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:on\s+track|targeting)\s+(?:to\s+)?(?:complete|finish)\s+(?:enrollment|enrolment).*?(?:in|by)\s+` + timeline),
	},
	model.PromiseProductLaunch: {
		regexp.MustCompile(`(?i)(?:launch|commercial\s+launch)\s+(?:expected|anticipated|planned)\s+(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:plan|planning|expect)\s+to\s+launch.*?(?:in|by)\s+` + timeline),
		regexp.MustCompile(`(?i)(?:targeting|target)\s+(?:a\s+)?(?:launch|commercial\s+launch)\s+(?:in|by)\s+` + timeline),
	},
}

// confidenceSet pairs a confidence level with the phrases that signal it.
type confidenceSet struct {
	level    model.ConfidenceLevel
	patterns []*regexp.Regexp
}

// confidenceSets is scanned in priority order; the first level with a
// matching phrase wins. "very confident" must outrank the bare
// "confident" pattern that would also match it.
var confidenceSets = []confidenceSet{
	{model.ConfidenceVeryConfident, compileAll(
		`highly\s+confident`,
		`very\s+confident`,
		`strong(?:ly)?\s+believe`,
		`definitely`,
		`certainly`,
		`without\s+question`,
	)},
	{model.ConfidenceConfident, compileAll(
		`confident`,
		`on\s+track`,
		`progressing\s+well`,
		`expect\s+to\s+meet`,
		`remain\s+on\s+schedule`,
	)},
	{model.ConfidenceModerate, compileAll(
		`anticipate`,
		`expect`,
		`plan(?:ning)?`,
		`target(?:ing)?`,
		`aim(?:ing)?`,
	)},
	{model.ConfidenceCautious, compileAll(
		`hope`,
		`believe`,
		`think`,
		`if\s+everything\s+goes`,
		`assuming`,
		`provided`,
	)},
	{model.ConfidenceHedged, compileAll(
		`may\s+be\s+able`,
		`could\s+potentially`,
		`possible`,
		`exploring`,
		`evaluating`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Metric extractors. Each runs independently; repeated matches of one
// kind accumulate.
var (
	percentPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	dollarPattern     = regexp.MustCompile(`(?i)\$(\d+(?:\.\d+)?)\s*(million|billion|M|B)?`)
	patientPattern    = regexp.MustCompile(`(?i)(\d+)\s*(?:patient|subject|participant)s?`)
	sitePattern       = regexp.MustCompile(`(?i)(\d+)\s*(?:site|center|location)s?`)
	enrollmentPattern = regexp.MustCompile(`(?i)(?:enroll|recruit)\s*(\d+)`)
)
