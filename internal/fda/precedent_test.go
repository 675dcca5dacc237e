package fda

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/biotrust-cli/internal/model"
)

func TestSimilarity(t *testing.T) {
	base := decidedSubmission("A Bio", "DRUG-A", model.DecisionApproval)

	t.Run("identical", func(t *testing.T) {
		other := decidedSubmission("B Bio", "DRUG-B", model.DecisionApproval)
		assert.InDelta(t, 1.05, Similarity(base, other), 1e-9)
	})

	t.Run("nothing shared", func(t *testing.T) {
		other := decidedSubmission("B Bio", "DRUG-B", model.DecisionApproval)
		other.Indication = "melanoma"
		other.DrugType = model.DrugGeneTherapy
		other.ReviewDivision = model.DivisionNeurology
		other.ReviewPathway = model.PathwayPriority
		other.PrimaryEndpoint = "progression-free survival"
		other.HasBreakthroughDesignation = true
		assert.InDelta(t, 0.0, Similarity(base, other), 1e-9)
	})

	t.Run("indication and drug type only", func(t *testing.T) {
		other := decidedSubmission("B Bio", "DRUG-B", model.DecisionApproval)
		other.ReviewDivision = model.DivisionNeurology
		other.ReviewPathway = model.PathwayPriority
		other.PrimaryEndpoint = "progression-free survival"
		other.HasBreakthroughDesignation = true
		assert.InDelta(t, 0.60, Similarity(base, other), 1e-9)
	})
}

func TestFindPrecedents_NarrowMatch(t *testing.T) {
	st := newTestFDAStore(t)
	ctx := context.Background()

	target := decidedSubmission("Target Bio", "TGT-1", "")
	target.DecisionDate = nil
	require.NoError(t, st.SaveSubmission(ctx, target))

	for _, drug := range []string{"P-1", "P-2", "P-3", "P-4", "P-5"} {
		require.NoError(t, st.SaveSubmission(ctx, decidedSubmission("Peer Bio", drug, model.DecisionApproval)))
	}

	precedents, err := FindPrecedents(ctx, st, target)
	require.NoError(t, err)
	require.Len(t, precedents, 5)
	for _, p := range precedents {
		assert.NotEqual(t, target.ID, p.Submission.ID)
		assert.InDelta(t, 1.05, p.Similarity, 1e-9)
	}
}

func TestFindPrecedents_BroadensToDivision(t *testing.T) {
	st := newTestFDAStore(t)
	ctx := context.Background()

	target := decidedSubmission("Target Bio", "TGT-1", "")
	target.DecisionDate = nil
	require.NoError(t, st.SaveSubmission(ctx, target))

	// Two narrow matches, below the broadening cutoff.
	narrowA := decidedSubmission("Peer Bio", "P-1", model.DecisionApproval)
	narrowB := decidedSubmission("Peer Bio", "P-2", model.DecisionCRL)
	// Same division, different indication. Surfaces only via broadening.
	divisional := decidedSubmission("Peer Bio", "P-3", model.DecisionApproval)
	divisional.Indication = "melanoma"
	for _, sub := range []model.Submission{narrowA, narrowB, divisional} {
		require.NoError(t, st.SaveSubmission(ctx, sub))
	}

	precedents, err := FindPrecedents(ctx, st, target)
	require.NoError(t, err)
	require.Len(t, precedents, 3)

	// The narrow matches are not duplicated by the division query and
	// the lower-similarity divisional hit sorts last.
	assert.Equal(t, "melanoma", precedents[2].Submission.Indication)
	assert.Greater(t, precedents[0].Similarity, precedents[2].Similarity)
}

func TestPrecedentScore(t *testing.T) {
	approval := decidedSubmission("A Bio", "DRUG-A", model.DecisionApproval)
	crl := decidedSubmission("B Bio", "DRUG-B", model.DecisionCRL)
	rtf := decidedSubmission("C Bio", "DRUG-C", model.DecisionRefuseToFile)

	t.Run("empty is neutral", func(t *testing.T) {
		assert.InDelta(t, 0.60, PrecedentScore(nil), 1e-9)
	})

	t.Run("single approval scores its similarity", func(t *testing.T) {
		score := PrecedentScore([]Precedent{{Submission: approval, Similarity: 0.80}})
		assert.InDelta(t, 0.80, score, 1e-9)
	})

	t.Run("rank discounts later precedents", func(t *testing.T) {
		// (1.0*1.0*1.05 + 0.3*0.5*0.50) / 2 = 0.5625
		score := PrecedentScore([]Precedent{
			{Submission: approval, Similarity: 1.05},
			{Submission: crl, Similarity: 0.50},
		})
		assert.InDelta(t, 0.5625, score, 1e-9)
	})

	t.Run("refusal to file contributes nothing", func(t *testing.T) {
		score := PrecedentScore([]Precedent{{Submission: rtf, Similarity: 1.05}})
		assert.InDelta(t, 0.0, score, 1e-9)
	})
}
