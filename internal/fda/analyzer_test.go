package fda

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/biotrust-cli/internal/model"
)

func strongSubmission() model.Submission {
	return model.Submission{
		Company:               "Biotech Corp",
		DrugName:              "BTX-100",
		DrugType:              model.DrugSmallMolecule,
		Indication:            "nsclc",
		ReviewDivision:        model.DivisionOncology,
		ReviewPathway:         model.PathwayStandard,
		SubmissionDate:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PrimaryEndpoint:       "overall survival",
		PrimaryEndpointMet:    true,
		SafetyProfileGrade:    4,
		PivotalTrialSize:      600,
		PatientPopulationSize: 200000,
		UnmetMedicalNeed:      true,
	}
}

func TestPathwayAdjustment(t *testing.T) {
	tests := []struct {
		name     string
		sub      model.Submission
		expected float64
	}{
		{"standard", model.Submission{ReviewPathway: model.PathwayStandard}, 0.60},
		{"breakthrough", model.Submission{ReviewPathway: model.PathwayBreakthrough}, 0.75},
		{"fast track", model.Submission{ReviewPathway: model.PathwayFastTrack}, 0.70},
		{"priority", model.Submission{ReviewPathway: model.PathwayPriority}, 0.68},
		{"orphan", model.Submission{ReviewPathway: model.PathwayOrphan}, 0.72},
		{"rmat", model.Submission{ReviewPathway: model.PathwayRMAT}, 0.70},
		{"accelerated penalized", model.Submission{ReviewPathway: model.PathwayAccelerated}, 0.55},
		{
			"stacked designations capped",
			model.Submission{
				ReviewPathway:              model.PathwayBreakthrough,
				HasBreakthroughDesignation: true,
				HasOrphanDesignation:       true,
				HasFastTrack:               true,
			},
			0.95,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PathwayAdjustment(tt.sub), 1e-9)
		})
	}
}

func TestTrialDesignScore(t *testing.T) {
	tests := []struct {
		name     string
		sub      model.Submission
		expected float64
	}{
		{"large trial", model.Submission{PivotalTrialSize: 500}, 0.65},
		{"medium trial", model.Submission{PivotalTrialSize: 200}, 0.60},
		{"small trial", model.Submission{PivotalTrialSize: 40}, 0.35},
		{"unmet need bonus", model.Submission{PivotalTrialSize: 100, UnmetMedicalNeed: true}, 0.60},
		{"population bonus", model.Submission{PivotalTrialSize: 100, PatientPopulationSize: 100000}, 0.55},
		{
			"all bonuses",
			model.Submission{PivotalTrialSize: 600, UnmetMedicalNeed: true, PatientPopulationSize: 150000},
			0.80,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TrialDesignScore(tt.sub), 1e-9)
		})
	}
}

func TestEndpointScore(t *testing.T) {
	tests := []struct {
		name     string
		sub      model.Submission
		expected float64
	}{
		{"met soft endpoint", model.Submission{PrimaryEndpoint: "response rate", PrimaryEndpointMet: true}, 0.80},
		{"missed soft endpoint", model.Submission{PrimaryEndpoint: "response rate"}, 0.30},
		{"met hard endpoint", model.Submission{PrimaryEndpoint: "overall survival", PrimaryEndpointMet: true}, 1.00},
		{"missed hard endpoint", model.Submission{PrimaryEndpoint: "all-cause mortality"}, 0.50},
		{"pfs counts as hard", model.Submission{PrimaryEndpoint: "progression-free survival", PrimaryEndpointMet: true}, 1.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EndpointScore(tt.sub), 1e-9)
		})
	}
}

func TestSafetyScore(t *testing.T) {
	assert.InDelta(t, 0.8, SafetyScore(model.Submission{SafetyProfileGrade: 4, DrugType: model.DrugSmallMolecule}), 1e-9)
	assert.InDelta(t, 1.0, SafetyScore(model.Submission{SafetyProfileGrade: 5, DrugType: model.DrugBiologic}), 1e-9)
	// Advanced therapies take a 10% haircut.
	assert.InDelta(t, 0.72, SafetyScore(model.Submission{SafetyProfileGrade: 4, DrugType: model.DrugGeneTherapy}), 1e-9)
	assert.InDelta(t, 0.9, SafetyScore(model.Submission{SafetyProfileGrade: 5, DrugType: model.DrugCellTherapy}), 1e-9)
}

func TestOutcomeFor_Thresholds(t *testing.T) {
	tests := []struct {
		probability float64
		expected    model.DecisionType
	}{
		{0.70, model.DecisionApproval},
		{0.699999, model.DecisionCRL},
		{0.40, model.DecisionCRL},
		{0.399999, model.DecisionRefuseToFile},
		{0.95, model.DecisionApproval},
		{0.0, model.DecisionRefuseToFile},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, OutcomeFor(tt.probability), "probability %v", tt.probability)
	}
}

func TestAnalyze_StrongOncologySubmission(t *testing.T) {
	st := newTestFDAStore(t)
	analyzer := NewAnalyzer(st)

	analysis, err := analyzer.Analyze(context.Background(), strongSubmission())
	require.NoError(t, err)

	// base 0.67*0.20 + pathway 0.60*0.15 + trial 0.80*0.25 +
	// endpoints 1.00*0.20 + safety 0.80*0.15 + precedent 0.60*0.05 = 0.774
	assert.InDelta(t, 0.774, analysis.ApprovalProbability, 1e-9)
	assert.Equal(t, model.DecisionApproval, analysis.PredictedOutcome)
	assert.NotEmpty(t, analysis.SubmissionID)
	assert.Contains(t, analysis.PositiveFactors, "Primary endpoint successfully met")
	assert.Contains(t, analysis.Recommendations[0], "HIGH APPROVAL PROBABILITY")
	// Empty store means no precedents.
	assert.Contains(t, analysis.KeyRiskFactors, "Limited precedents for this indication/mechanism")
	assert.Empty(t, analysis.SimilarPrecedents)
}

func TestAnalyze_ProbabilityCapped(t *testing.T) {
	st := newTestFDAStore(t)
	analyzer := NewAnalyzer(st)

	sub := strongSubmission()
	sub.ReviewDivision = model.DivisionRareDiseases
	sub.ReviewPathway = model.PathwayBreakthrough
	sub.HasBreakthroughDesignation = true
	sub.HasOrphanDesignation = true
	sub.HasFastTrack = true
	sub.SafetyProfileGrade = 5

	analysis, err := analyzer.Analyze(context.Background(), sub)
	require.NoError(t, err)
	assert.LessOrEqual(t, analysis.ApprovalProbability, 0.95)
	assert.GreaterOrEqual(t, analysis.ApprovalProbability, 0.0)
}

func TestAnalyze_WeakSubmission(t *testing.T) {
	st := newTestFDAStore(t)
	analyzer := NewAnalyzer(st)

	sub := model.Submission{
		Company:            "Risky Bio",
		DrugName:           "RSK-1",
		DrugType:           model.DrugGeneTherapy,
		Indication:         "duchenne muscular dystrophy",
		ReviewDivision:     model.DivisionNeurology,
		ReviewPathway:      model.PathwayAccelerated,
		SubmissionDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		PrimaryEndpoint:    "dystrophin expression",
		PrimaryEndpointMet: false,
		SafetyProfileGrade: 2,
		PivotalTrialSize:   30,
	}

	analysis, err := analyzer.Analyze(context.Background(), sub)
	require.NoError(t, err)

	// base 0.52*0.20 + pathway 0.55*0.15 + trial 0.35*0.25 +
	// endpoints 0.30*0.20 + safety 0.36*0.15 + precedent 0.60*0.05 = 0.418
	assert.InDelta(t, 0.418, analysis.ApprovalProbability, 1e-9)
	assert.Equal(t, model.DecisionCRL, analysis.PredictedOutcome)
	assert.Contains(t, analysis.KeyRiskFactors, "Small sample size limits statistical power")
	assert.Contains(t, analysis.KeyRiskFactors, "Safety profile concerns may impact approval")
	assert.Contains(t, analysis.KeyRiskFactors, "Manufacturing complexity for advanced therapies")
	assert.Contains(t, analysis.Recommendations[0], "MODERATE APPROVAL PROBABILITY")
	assert.Contains(t, analysis.Recommendations, "Consider additional safety analyses or risk mitigation proposals")
	// AdCom probability caps at 0.95 for this profile, triggering prep advice.
	assert.Contains(t, analysis.Recommendations, "Prepare comprehensive AdCom presentation and Q&A strategy")
}

func TestPredictTimeline(t *testing.T) {
	// Oncology standard, non-advanced: extension 0.30 + 0.15 (adcom rate
	// 0.78 > 0.5) = 0.45, no 90-day bump.
	tl := predictTimeline(
		model.Submission{DrugType: model.DrugSmallMolecule, ReviewPathway: model.PathwayStandard},
		PatternFor(model.DivisionOncology),
	)
	assert.Equal(t, 180, tl.ExpectedReviewDays)
	assert.InDelta(t, 0.45, tl.ExtensionProbability, 1e-9)
	assert.InDelta(t, 0.55, tl.PDUFAReliability, 1e-9)

	// Gene therapy pushes extension past 0.5, adding the 90-day bump.
	tl = predictTimeline(
		model.Submission{DrugType: model.DrugGeneTherapy, ReviewPathway: model.PathwayStandard},
		PatternFor(model.DivisionOncology),
	)
	assert.Equal(t, 270, tl.ExpectedReviewDays)
	assert.InDelta(t, 0.65, tl.ExtensionProbability, 1e-9)
	assert.Contains(t, tl.Factors, "Complex manufacturing may require additional review time")
}

func TestPredictTimeline_PriorityReview(t *testing.T) {
	// Neurology median 210 capped at 180 for priority review; extension
	// 0.30 + 0.15 = 0.45 stays under the bump threshold.
	tl := predictTimeline(
		model.Submission{DrugType: model.DrugSmallMolecule, ReviewPathway: model.PathwayPriority},
		PatternFor(model.DivisionNeurology),
	)
	assert.Equal(t, 180, tl.ExpectedReviewDays)
	assert.InDelta(t, 0.45, tl.ExtensionProbability, 1e-9)
}

func TestPredictAdCom(t *testing.T) {
	// Neurology base 0.65, controversial indication +0.15.
	pred := predictAdCom(
		model.Submission{
			DrugType:           model.DrugSmallMolecule,
			Indication:         "early Alzheimer's disease",
			ReviewPathway:      model.PathwayStandard,
			PivotalTrialSize:   400,
			SafetyProfileGrade: 4,
		},
		PatternFor(model.DivisionNeurology),
	)
	assert.InDelta(t, 0.80, pred.RequiredProbability, 1e-9)
	assert.Equal(t, 0.60, pred.ExpectedPositiveVote)
	assert.Equal(t, []string{"Benefit-risk assessment"}, pred.DiscussionTopics)

	// Gene therapy + accelerated stacks and caps at 0.95.
	pred = predictAdCom(
		model.Submission{
			DrugType:           model.DrugGeneTherapy,
			Indication:         "duchenne",
			ReviewPathway:      model.PathwayAccelerated,
			PivotalTrialSize:   50,
			SafetyProfileGrade: 2,
		},
		PatternFor(model.DivisionOncology),
	)
	assert.InDelta(t, 0.95, pred.RequiredProbability, 1e-9)
	assert.Contains(t, pred.DiscussionTopics, "Adequacy of trial size and statistical power")
	assert.Contains(t, pred.DiscussionTopics, "Safety concerns and risk mitigation")
	assert.Contains(t, pred.DiscussionTopics, "Long-term safety monitoring requirements")
	assert.Contains(t, pred.DiscussionTopics, "Confirmatory trial requirements")
}

func TestIsControversialIndication(t *testing.T) {
	assert.True(t, isControversialIndication("early Alzheimer's disease"))
	assert.True(t, isControversialIndication("chronic pain"))
	assert.True(t, isControversialIndication("Duchenne muscular dystrophy"))
	assert.False(t, isControversialIndication("nsclc"))
	assert.False(t, isControversialIndication("hypertension"))
}
