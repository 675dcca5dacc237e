package fda

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// Component weights for the overall approval probability.
var probabilityWeights = struct {
	base, pathway, trial, endpoints, safety, precedent float64
}{
	base:      0.20,
	pathway:   0.15,
	trial:     0.25,
	endpoints: 0.20,
	safety:    0.15,
	precedent: 0.05,
}

// Outcome classification thresholds.
const (
	approvalThreshold = 0.70
	crlThreshold      = 0.40
	probabilityCap    = 0.95
)

// ComponentScores breaks the probability into its weighted inputs.
type ComponentScores struct {
	Base      float64 `json:"base"`
	Pathway   float64 `json:"pathway"`
	Trial     float64 `json:"trial"`
	Endpoints float64 `json:"endpoints"`
	Safety    float64 `json:"safety"`
	Precedent float64 `json:"precedent"`
}

// TimelinePrediction estimates the review clock.
type TimelinePrediction struct {
	ExpectedReviewDays   int      `json:"expected_review_days"`
	ExtensionProbability float64  `json:"extension_probability"`
	PDUFAReliability     float64  `json:"pdufa_date_reliability"`
	Factors              []string `json:"factors_affecting_timeline,omitempty"`
}

// AdComPrediction estimates advisory committee involvement.
type AdComPrediction struct {
	RequiredProbability  float64  `json:"adcom_required_probability"`
	ExpectedPositiveVote float64  `json:"expected_positive_vote"`
	DiscussionTopics     []string `json:"key_discussion_topics,omitempty"`
	VotingConsiderations []string `json:"voting_considerations,omitempty"`
}

// PrecedentSummary is the compact view of a similar decided submission.
type PrecedentSummary struct {
	Drug       string  `json:"drug"`
	Company    string  `json:"company"`
	Outcome    string  `json:"outcome"`
	Similarity float64 `json:"similarity_score"`
}

// Analysis is the full output for one submission.
type Analysis struct {
	SubmissionID        string             `json:"submission_id"`
	Company             string             `json:"company"`
	DrugName            string             `json:"drug_name"`
	ApprovalProbability float64            `json:"approval_probability"`
	PredictedOutcome    model.DecisionType `json:"predicted_outcome"`
	Components          ComponentScores    `json:"component_scores"`
	KeyRiskFactors      []string           `json:"key_risk_factors,omitempty"`
	PositiveFactors     []string           `json:"positive_factors,omitempty"`
	SimilarPrecedents   []PrecedentSummary `json:"similar_precedents,omitempty"`
	Timeline            TimelinePrediction `json:"timeline_prediction"`
	AdCom               AdComPrediction    `json:"advisory_committee_prediction"`
	Recommendations     []string           `json:"recommendations,omitempty"`
}

// Analyzer estimates approval probability for FDA submissions.
type Analyzer struct {
	store Store
}

// NewAnalyzer wraps a Store for precedent lookups.
func NewAnalyzer(store Store) *Analyzer {
	return &Analyzer{store: store}
}

// Analyze scores a submission against historical division behavior and
// decided precedents. The probability is a weighted blend of six
// heuristic components, capped at 0.95: no heuristic is ever certain.
func (a *Analyzer) Analyze(ctx context.Context, sub model.Submission) (*Analysis, error) {
	sub.EnsureID()

	pattern := PatternFor(sub.ReviewDivision)
	precedents, err := FindPrecedents(ctx, a.store, sub)
	if err != nil {
		return nil, err
	}

	components := ComponentScores{
		Base:      pattern.ApprovalRate,
		Pathway:   PathwayAdjustment(sub),
		Trial:     TrialDesignScore(sub),
		Endpoints: EndpointScore(sub),
		Safety:    SafetyScore(sub),
		Precedent: PrecedentScore(precedents),
	}

	probability := components.Base*probabilityWeights.base +
		components.Pathway*probabilityWeights.pathway +
		components.Trial*probabilityWeights.trial +
		components.Endpoints*probabilityWeights.endpoints +
		components.Safety*probabilityWeights.safety +
		components.Precedent*probabilityWeights.precedent
	probability = clamp(probability, 0, probabilityCap)

	analysis := &Analysis{
		SubmissionID:        sub.ID,
		Company:             sub.Company,
		DrugName:            sub.DrugName,
		ApprovalProbability: round3(probability),
		PredictedOutcome:    OutcomeFor(probability),
		Components:          components,
		KeyRiskFactors:      riskFactors(sub, components, len(precedents)),
		PositiveFactors:     positiveFactors(sub),
		Timeline:            predictTimeline(sub, pattern),
		AdCom:               predictAdCom(sub, pattern),
	}

	for i, p := range precedents {
		if i >= 5 {
			break
		}
		outcome := string(p.Submission.DecisionType)
		if outcome == "" {
			outcome = "pending"
		}
		analysis.SimilarPrecedents = append(analysis.SimilarPrecedents, PrecedentSummary{
			Drug:       p.Submission.DrugName,
			Company:    p.Submission.Company,
			Outcome:    outcome,
			Similarity: p.Similarity,
		})
	}

	analysis.Recommendations = recommendations(probability, analysis)

	zap.L().Info("fda: submission analyzed",
		zap.String("id", sub.ID),
		zap.String("drug", sub.DrugName),
		zap.Float64("probability", analysis.ApprovalProbability),
		zap.String("outcome", string(analysis.PredictedOutcome)),
	)
	return analysis, nil
}

// OutcomeFor maps a probability to the predicted decision class.
func OutcomeFor(probability float64) model.DecisionType {
	switch {
	case probability >= approvalThreshold:
		return model.DecisionApproval
	case probability >= crlThreshold:
		return model.DecisionCRL
	default:
		return model.DecisionRefuseToFile
	}
}

// PathwayAdjustment scores the regulatory pathway and stacked
// designations. Accelerated approval is penalized: the post-approval
// evidentiary bar invites CRLs.
func PathwayAdjustment(sub model.Submission) float64 {
	adjustment := 0.60

	switch sub.ReviewPathway {
	case model.PathwayBreakthrough:
		adjustment += 0.15
	case model.PathwayFastTrack:
		adjustment += 0.10
	case model.PathwayPriority:
		adjustment += 0.08
	case model.PathwayOrphan:
		adjustment += 0.12
	case model.PathwayRMAT:
		adjustment += 0.10
	case model.PathwayAccelerated:
		adjustment -= 0.05
	}

	if sub.HasBreakthroughDesignation {
		adjustment += 0.10
	}
	if sub.HasOrphanDesignation {
		adjustment += 0.08
	}
	if sub.HasFastTrack {
		adjustment += 0.05
	}
	return math.Min(adjustment, 0.95)
}

// TrialDesignScore scores the pivotal trial program.
func TrialDesignScore(sub model.Submission) float64 {
	score := 0.5

	switch {
	case sub.PivotalTrialSize >= 500:
		score += 0.15
	case sub.PivotalTrialSize >= 200:
		score += 0.10
	case sub.PivotalTrialSize < 50:
		score -= 0.15
	}

	if sub.UnmetMedicalNeed {
		score += 0.10
	}
	if sub.PatientPopulationSize >= 100000 {
		score += 0.05
	}
	return clamp(score, 0, 1)
}

// EndpointScore scores endpoint choice and result.
func EndpointScore(sub model.Submission) float64 {
	score := 0.5

	if sub.PrimaryEndpointMet {
		score += 0.30
	} else {
		score -= 0.20
	}
	if hasHardEndpoint(sub.PrimaryEndpoint) {
		score += 0.20
	}
	return clamp(score, 0, 1)
}

// SafetyScore maps the 1-5 safety grade to [0,1]. Advanced therapies
// take a 10% haircut for the extra scrutiny they draw.
func SafetyScore(sub model.Submission) float64 {
	score := float64(sub.SafetyProfileGrade) / 5.0
	if sub.DrugType.AdvancedTherapy() {
		score *= 0.9
	}
	return clamp(score, 0, 1)
}

func riskFactors(sub model.Submission, c ComponentScores, precedentCount int) []string {
	var risks []string

	if sub.ReviewDivision == model.DivisionOncology &&
		!strings.Contains(strings.ToLower(sub.PrimaryEndpoint), "overall survival") {
		risks = append(risks, "Primary endpoint is not overall survival")
	}
	if c.Trial < 0.5 && sub.PivotalTrialSize < 100 {
		risks = append(risks, "Small sample size limits statistical power")
	}
	if c.Endpoints < 0.5 {
		risks = append(risks, "Endpoints may not meet FDA standards for approval")
	}
	if c.Safety < 0.6 {
		risks = append(risks, "Safety profile concerns may impact approval")
	}
	if sub.DrugType.AdvancedTherapy() {
		risks = append(risks, "Manufacturing complexity for advanced therapies")
	}
	if precedentCount < 3 {
		risks = append(risks, "Limited precedents for this indication/mechanism")
	}
	return risks
}

func positiveFactors(sub model.Submission) []string {
	var factors []string

	if sub.ReviewPathway == model.PathwayBreakthrough || sub.HasBreakthroughDesignation {
		factors = append(factors, "Breakthrough Therapy designation indicates preliminary evidence of substantial improvement")
	}
	if sub.ReviewPathway == model.PathwayOrphan || sub.HasOrphanDesignation {
		factors = append(factors, "Orphan Drug designation for rare disease with unmet need")
	}
	if sub.ReviewPathway == model.PathwayFastTrack || sub.HasFastTrack {
		factors = append(factors, "Fast Track designation enables rolling review and frequent FDA meetings")
	}
	if sub.PrimaryEndpointMet {
		factors = append(factors, "Primary endpoint successfully met")
	}
	if sub.SafetyProfileGrade >= 4 {
		factors = append(factors, "Favorable safety profile")
	}
	if sub.UnmetMedicalNeed {
		factors = append(factors, "Addresses significant unmet medical need")
	}
	if sub.PivotalTrialSize > 300 {
		factors = append(factors, "Large, well-powered clinical trial")
	}
	return factors
}

func predictTimeline(sub model.Submission, pattern DivisionPattern) TimelinePrediction {
	baseDays := pattern.MedianReviewDays
	if sub.ReviewPathway == model.PathwayPriority {
		baseDays = minInt(baseDays, 180)
	} else {
		baseDays = minInt(baseDays, 300)
	}

	extension := 0.30
	if sub.DrugType.AdvancedTherapy() {
		extension += 0.20
	}
	if pattern.AdComRate > 0.5 {
		extension += 0.15
	}

	expectedDays := baseDays
	if extension > 0.5 {
		expectedDays += 90
	}

	var factors []string
	if sub.DrugType.AdvancedTherapy() {
		factors = append(factors, "Complex manufacturing may require additional review time")
	}
	if !sub.AdvisoryCommittee {
		factors = append(factors, "No AdCom scheduled could expedite review")
	}
	if sub.ReviewPathway == model.PathwayBreakthrough || sub.HasBreakthroughDesignation {
		factors = append(factors, "Breakthrough designation includes intensive FDA guidance")
	}

	return TimelinePrediction{
		ExpectedReviewDays:   expectedDays,
		ExtensionProbability: round2(extension),
		PDUFAReliability:     round2(1 - extension),
		Factors:              factors,
	}
}

func predictAdCom(sub model.Submission, pattern DivisionPattern) AdComPrediction {
	probability := pattern.AdComRate
	if sub.DrugType.AdvancedTherapy() {
		probability += 0.20
	}
	if isControversialIndication(sub.Indication) {
		probability += 0.15
	}
	if sub.ReviewPathway == model.PathwayAccelerated {
		probability += 0.10
	}

	topics := []string{"Benefit-risk assessment"}
	if sub.PivotalTrialSize < 100 {
		topics = append(topics, "Adequacy of trial size and statistical power")
	}
	if sub.SafetyProfileGrade < 3 {
		topics = append(topics, "Safety concerns and risk mitigation")
	}
	if sub.DrugType == model.DrugGeneTherapy {
		topics = append(topics, "Long-term safety monitoring requirements")
	}
	if sub.ReviewPathway == model.PathwayAccelerated {
		topics = append(topics, "Confirmatory trial requirements")
	}

	return AdComPrediction{
		RequiredProbability:  round2(math.Min(probability, 0.95)),
		ExpectedPositiveVote: 0.60,
		DiscussionTopics:     topics,
		VotingConsiderations: []string{
			"Magnitude of clinical benefit",
			"Unmet medical need in indication",
			"Safety profile acceptability",
			"Quality and robustness of data",
			"Appropriate patient population",
		},
	}
}

func recommendations(probability float64, analysis *Analysis) []string {
	var recs []string

	switch {
	case probability >= approvalThreshold:
		recs = append(recs,
			"HIGH APPROVAL PROBABILITY: Prepare for launch activities and post-market commitments",
			"Focus on manufacturing scale-up and commercial readiness",
		)
	case probability >= crlThreshold:
		recs = append(recs,
			"MODERATE APPROVAL PROBABILITY: Prepare for potential Complete Response Letter",
			"Develop contingency plans for addressing likely FDA concerns",
		)
		for _, risk := range analysis.KeyRiskFactors {
			lower := strings.ToLower(risk)
			if strings.Contains(lower, "safety") {
				recs = append(recs, "Consider additional safety analyses or risk mitigation proposals")
			} else if strings.Contains(lower, "endpoint") {
				recs = append(recs, "Prepare robust justification for clinical meaningfulness of endpoints")
			}
		}
	default:
		recs = append(recs,
			"LOW APPROVAL PROBABILITY: Consider withdrawal and resubmission strategy",
			"Seek Type A meeting with FDA to discuss deficiencies",
		)
	}

	if analysis.AdCom.RequiredProbability > 0.70 {
		recs = append(recs,
			"Prepare comprehensive AdCom presentation and Q&A strategy",
			"Engage KOLs and patient advocates for potential testimony",
		)
	}
	if analysis.Timeline.ExtensionProbability > 0.50 {
		recs = append(recs, fmt.Sprintf(
			"Plan for potential 3-month PDUFA extension (high probability: %.0f%%)",
			analysis.Timeline.ExtensionProbability*100,
		))
	}
	return recs
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
