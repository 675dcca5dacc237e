package textsignal

import (
	"regexp"
	"strings"
)

// Speaker is the executive a quoted statement is attributed to.
type Speaker struct {
	Name  string
	Title string
}

// Attribution clauses in press releases follow a few fixed shapes:
// `said Jane Smith, Chief Executive Officer` or
// `Jane Smith, CEO of Biotech Corp, said`.
var speakerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:said|commented|stated|noted|added)\s+(?:Dr\.\s+)?([A-Z][\w.-]+(?:\s+[A-Z][\w.-]+){1,3}),\s*([A-Z][^.,"]{2,80}?)[".,]`),
	regexp.MustCompile(`(?:Dr\.\s+)?([A-Z][\w.-]+(?:\s+[A-Z][\w.-]+){1,3}),\s*([A-Z][^.,"]{2,80}?),\s+(?:said|commented|stated|noted|added)`),
}

// ExtractSpeaker finds the first attributed executive in the text.
// Titles like "Chief Executive Officer of Biotech Corp" keep their
// internal structure; only the trailing company reference is stripped.
// Returns the zero Speaker when no attribution clause matches.
func ExtractSpeaker(text, company string) Speaker {
	for _, re := range speakerPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return Speaker{
				Name:  strings.TrimSpace(m[1]),
				Title: trimCompanySuffix(strings.TrimSpace(m[2]), company),
			}
		}
	}
	return Speaker{}
}

func trimCompanySuffix(title, company string) string {
	if company == "" {
		return title
	}
	lower := strings.ToLower(title)
	for _, sep := range []string{" of ", " at "} {
		suffix := sep + strings.ToLower(company)
		if strings.HasSuffix(lower, suffix) {
			return strings.TrimSpace(title[:len(title)-len(suffix)])
		}
	}
	return title
}
