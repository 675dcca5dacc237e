// Package fda estimates FDA approval probability for drug submissions
// from historical division patterns, trial characteristics, and decided
// precedents. All scoring is heuristic; the constants come from the
// production calibration and are not meant to be retuned casually.
package fda

import (
	"strings"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// DivisionPattern captures the historical review behavior of one FDA
// division.
type DivisionPattern struct {
	ApprovalRate       float64  `json:"approval_rate"`
	FirstCycleApproval float64  `json:"first_cycle_approval"`
	MedianReviewDays   int      `json:"median_review_days"`
	AdComRate          float64  `json:"adcom_rate"`
	CommonIssues       []string `json:"common_issues"`
	SuccessFactors     []string `json:"success_factors"`
}

var divisionPatterns = map[model.ReviewDivision]DivisionPattern{
	model.DivisionOncology: {
		ApprovalRate:       0.67,
		FirstCycleApproval: 0.45,
		MedianReviewDays:   180,
		AdComRate:          0.78,
		CommonIssues: []string{
			"Overall survival not demonstrated",
			"Safety concerns outweigh benefit",
			"Single-arm trial insufficient",
			"Durability of response unclear",
		},
		SuccessFactors: []string{
			"Significant OS or PFS benefit",
			"Unmet medical need",
			"Breakthrough therapy designation",
			"Strong ORR with durability",
		},
	},
	model.DivisionNeurology: {
		ApprovalRate:       0.52,
		FirstCycleApproval: 0.35,
		MedianReviewDays:   210,
		AdComRate:          0.65,
		CommonIssues: []string{
			"Clinical meaningfulness uncertain",
			"Biomarker not validated",
			"Study population concerns",
			"Missing data/dropouts",
		},
		SuccessFactors: []string{
			"Clear functional benefit",
			"Multiple positive trials",
			"Validated clinical endpoints",
			"Consistent safety profile",
		},
	},
	model.DivisionRareDiseases: {
		ApprovalRate:       0.74,
		FirstCycleApproval: 0.58,
		MedianReviewDays:   165,
		AdComRate:          0.45,
		CommonIssues: []string{
			"Small sample size",
			"Natural history unclear",
			"Endpoint validation",
			"Manufacturing concerns",
		},
		SuccessFactors: []string{
			"No available therapy",
			"Clear clinical benefit",
			"Orphan designation",
			"Patient advocacy support",
		},
	},
}

var defaultDivisionPattern = DivisionPattern{
	ApprovalRate:       0.60,
	FirstCycleApproval: 0.40,
	MedianReviewDays:   180,
	AdComRate:          0.50,
	CommonIssues:       []string{"Safety concerns", "Efficacy not demonstrated"},
	SuccessFactors:     []string{"Clear benefit-risk", "Unmet need"},
}

// PatternFor returns the historical pattern for a division, falling
// back to the cross-division default.
func PatternFor(division model.ReviewDivision) DivisionPattern {
	if p, ok := divisionPatterns[division]; ok {
		return p
	}
	return defaultDivisionPattern
}

// controversialIndications are therapy areas where an advisory
// committee is likelier regardless of the data package.
var controversialIndications = []string{
	"alzheimer", "duchenne", "pain", "obesity",
	"psychiatric", "addiction", "rare pediatric",
}

// isControversialIndication matches by substring so "early Alzheimer's
// disease" and similar phrasings count.
func isControversialIndication(indication string) bool {
	lower := strings.ToLower(indication)
	for _, c := range controversialIndications {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

// hardEndpoints are clinical outcomes the FDA weighs most heavily.
var hardEndpoints = []string{
	"overall survival", "mortality", "stroke",
	"myocardial infarction", "progression-free survival",
}

func hasHardEndpoint(primaryEndpoint string) bool {
	lower := strings.ToLower(primaryEndpoint)
	for _, e := range hardEndpoints {
		if strings.Contains(lower, e) {
			return true
		}
	}
	return false
}
