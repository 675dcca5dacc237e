// Package credibility scores executives and companies on how reliably
// they deliver what they promise. Scores are derived aggregates over the
// promise store and can always be recomputed from scratch.
package credibility

import (
	"time"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// Impact maps a resolved promise to its credibility weight in [0,1].
// Late deliveries decay with the size of the slip; a late promise with
// no recorded delay gets the midpoint.
func Impact(status model.PromiseStatus, delayDays *int) float64 {
	switch status {
	case model.StatusDeliveredOnTime:
		return 1.0
	case model.StatusDeliveredLate:
		if delayDays == nil {
			return 0.5
		}
		switch d := *delayDays; {
		case d <= 30:
			return 0.8
		case d <= 90:
			return 0.6
		case d <= 180:
			return 0.4
		default:
			return 0.2
		}
	case model.StatusFailed:
		return 0.0
	case model.StatusModified:
		return 0.3
	default:
		return 0.5
	}
}

// scoreable reports whether a promise participates in the score
// denominator. Modified promises are terminal for scoring even though
// they sit outside the delivered/failed buckets.
func scoreable(s model.PromiseStatus) bool {
	return s.Completed() || s == model.StatusModified
}

// ComputeExecutive builds the credibility aggregate for one executive
// at one company from their full promise history. With no completed
// promises the score is 0, never an error.
func ComputeExecutive(executiveName, company string, promises []model.Promise) model.ExecutiveCredibility {
	cred := model.ExecutiveCredibility{
		ExecutiveID:   model.ExecutiveID(executiveName, company),
		ExecutiveName: executiveName,
		Company:       company,
		TotalPromises: len(promises),
		LastUpdated:   time.Now().UTC(),
	}

	var impactSum float64
	var scored, delaySum, delayed int
	for _, p := range promises {
		switch p.Status {
		case model.StatusDeliveredOnTime:
			cred.DeliveredOnTime++
		case model.StatusDeliveredLate:
			cred.DeliveredLate++
			if p.DelayDays != nil {
				delaySum += *p.DelayDays
				delayed++
			}
		case model.StatusFailed:
			cred.Failed++
		case model.StatusModified:
			// scored below, outside the delivery buckets
		default:
			cred.Pending++
		}
		if scoreable(p.Status) {
			impactSum += Impact(p.Status, p.DelayDays)
			scored++
		}
	}

	if delayed > 0 {
		cred.AverageDelayDays = float64(delaySum) / float64(delayed)
	}
	if scored > 0 {
		cred.CredibilityScore = impactSum / float64(scored)
	}
	return cred
}

// ComputeCompany builds the company-wide aggregate with a per-type
// delivery breakdown across all executives.
func ComputeCompany(company string, promises []model.Promise) model.CompanyCredibility {
	cred := model.CompanyCredibility{
		Company:       company,
		TotalPromises: len(promises),
		ByPromiseType: make(map[model.PromiseType]model.TypeAccuracy),
		LastUpdated:   time.Now().UTC(),
	}

	executives := make(map[string]struct{})
	typeCompleted := make(map[model.PromiseType]int)
	typeOnTime := make(map[model.PromiseType]int)

	var impactSum float64
	var scored, delaySum, delayed int
	for _, p := range promises {
		executives[model.ExecutiveID(p.ExecutiveName, p.Company)] = struct{}{}

		switch p.Status {
		case model.StatusDeliveredOnTime:
			cred.DeliveredOnTime++
			typeOnTime[p.Type]++
		case model.StatusDeliveredLate:
			cred.DeliveredLate++
			if p.DelayDays != nil {
				delaySum += *p.DelayDays
				delayed++
			}
		case model.StatusFailed:
			cred.Failed++
		case model.StatusModified:
		default:
			cred.Pending++
		}
		if p.Status.Completed() {
			typeCompleted[p.Type]++
		}
		if scoreable(p.Status) {
			impactSum += Impact(p.Status, p.DelayDays)
			scored++
		}
	}

	cred.TotalExecutives = len(executives)
	if delayed > 0 {
		cred.AverageDelayDays = float64(delaySum) / float64(delayed)
	}
	if scored > 0 {
		cred.CredibilityScore = impactSum / float64(scored)
	}
	for promiseType, completed := range typeCompleted {
		cred.ByPromiseType[promiseType] = model.TypeAccuracy{
			Total:       completed,
			SuccessRate: float64(typeOnTime[promiseType]) / float64(completed),
		}
	}
	return cred
}
