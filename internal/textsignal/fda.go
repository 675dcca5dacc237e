package textsignal

import "strings"

// FDASignals flags regulatory mentions in a piece of text for the FDA
// analysis pipeline. A zero value means the text carries no FDA signal.
type FDASignals struct {
	SubmissionMentions  []string `json:"submission_mentions,omitempty"`
	DecisionMentions    []string `json:"decision_mentions,omitempty"`
	DesignationMentions []string `json:"designation_mentions,omitempty"`
}

// Relevant reports whether any FDA signal was detected.
func (s FDASignals) Relevant() bool {
	return len(s.SubmissionMentions) > 0 || len(s.DecisionMentions) > 0 || len(s.DesignationMentions) > 0
}

var (
	submissionKeywords = []string{
		"nda", "bla", "ind", "snda", "sbla", "510k", "pma",
		"nda submission", "bla submission", "regulatory submission", "filed with the fda",
	}
	decisionKeywords = []string{
		"fda approval", "approved by the fda", "fda approved",
		"complete response letter", "crl", "refuse to file",
		"clinical hold", "tentative approval",
	}
	designationKeywords = []string{
		"breakthrough therapy", "breakthrough designation",
		"orphan drug", "orphan designation",
		"fast track", "priority review", "rmat", "accelerated approval",
	}
)

// DetectFDASignals scans text for submission, decision, and designation
// mentions. Matching is case-insensitive keyword containment.
func DetectFDASignals(text string) FDASignals {
	lower := strings.ToLower(text)

	var s FDASignals
	for _, kw := range submissionKeywords {
		if containsWord(lower, kw) {
			s.SubmissionMentions = append(s.SubmissionMentions, kw)
		}
	}
	for _, kw := range decisionKeywords {
		if containsWord(lower, kw) {
			s.DecisionMentions = append(s.DecisionMentions, kw)
		}
	}
	for _, kw := range designationKeywords {
		if containsWord(lower, kw) {
			s.DesignationMentions = append(s.DesignationMentions, kw)
		}
	}
	return s
}

// containsWord checks for kw in text with word boundaries on both sides,
// so "ind" does not fire inside "indication".
func containsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isAlnum(text[start-1])
		afterOK := end == len(text) || !isAlnum(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
