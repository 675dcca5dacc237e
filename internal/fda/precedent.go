package fda

import (
	"context"
	"sort"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// precedentFetchLimit bounds each store query during precedent search.
const precedentFetchLimit = 20

// similarity weights. The flag term makes the total 1.05 rather than
// 1.0; the downstream thresholds were calibrated against the
// unnormalized score, so do not normalize.
const (
	weightIndication   = 0.40
	weightDrugType     = 0.20
	weightDivision     = 0.15
	weightEndpoint     = 0.15
	weightPathway      = 0.10
	weightBreakthrough = 0.05
)

// Similarity scores how closely two submissions resemble each other.
func Similarity(a, b model.Submission) float64 {
	score := 0.0
	if a.Indication == b.Indication {
		score += weightIndication
	}
	if a.DrugType == b.DrugType {
		score += weightDrugType
	}
	if a.ReviewDivision == b.ReviewDivision {
		score += weightDivision
	}
	if a.ReviewPathway == b.ReviewPathway {
		score += weightPathway
	}
	if a.HasBreakthroughDesignation == b.HasBreakthroughDesignation {
		score += weightBreakthrough
	}
	if a.PrimaryEndpoint == b.PrimaryEndpoint {
		score += weightEndpoint
	}
	return score
}

// Precedent is a decided submission paired with its similarity to the
// target.
type Precedent struct {
	Submission model.Submission `json:"submission"`
	Similarity float64          `json:"similarity"`
}

// FindPrecedents returns decided submissions resembling the target,
// most similar first. The search starts narrow (same indication and
// drug type) and broadens to the whole review division when fewer than
// five precedents surface.
func FindPrecedents(ctx context.Context, store Store, target model.Submission) ([]Precedent, error) {
	subs, err := store.ListDecidedByIndicationAndType(ctx, target.Indication, target.DrugType, precedentFetchLimit)
	if err != nil {
		return nil, err
	}

	if len(subs) < 5 {
		broader, err := store.ListDecidedByDivision(ctx, target.ReviewDivision, precedentFetchLimit)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(subs))
		for _, s := range subs {
			seen[s.ID] = struct{}{}
		}
		for _, s := range broader {
			if _, dup := seen[s.ID]; !dup {
				subs = append(subs, s)
			}
		}
	}

	precedents := make([]Precedent, 0, len(subs))
	for _, s := range subs {
		if s.ID == target.ID {
			continue
		}
		precedents = append(precedents, Precedent{
			Submission: s,
			Similarity: Similarity(target, s),
		})
	}
	sort.SliceStable(precedents, func(i, j int) bool {
		return precedents[i].Similarity > precedents[j].Similarity
	})
	return precedents, nil
}

// PrecedentScore aggregates decided precedents into a [0,1] signal.
// Each of the top 10 contributes its outcome value discounted by rank
// and scaled by similarity to the target. No precedents yields the
// neutral 0.60.
func PrecedentScore(precedents []Precedent) float64 {
	if len(precedents) == 0 {
		return 0.60
	}

	top := precedents
	if len(top) > 10 {
		top = top[:10]
	}

	var sum float64
	for i, p := range top {
		var outcome float64
		switch p.Submission.DecisionType {
		case model.DecisionApproval:
			outcome = 1.0
		case model.DecisionCRL:
			outcome = 0.3
		default:
			outcome = 0.0
		}
		rankWeight := 1.0 / float64(i+1)
		sum += outcome * rankWeight * p.Similarity
	}
	return sum / float64(len(top))
}
