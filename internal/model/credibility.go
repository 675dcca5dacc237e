package model

import "time"

// TypeAccuracy is the per-promise-type delivery breakdown for a company.
type TypeAccuracy struct {
	Total       int     `json:"total"`
	SuccessRate float64 `json:"success_rate"` // on-time / completed of this type
}

// ExecutiveCredibility is a derived aggregate over one executive's
// promises at one company. It is a cache: always recomputable from the
// promise store.
type ExecutiveCredibility struct {
	ExecutiveID      string    `json:"executive_id"`
	ExecutiveName    string    `json:"executive_name"`
	Company          string    `json:"company"`
	TotalPromises    int       `json:"total_promises"`
	DeliveredOnTime  int       `json:"delivered_on_time"`
	DeliveredLate    int       `json:"delivered_late"`
	Failed           int       `json:"failed"`
	Pending          int       `json:"pending"`
	AverageDelayDays float64   `json:"average_delay_days"`
	CredibilityScore float64   `json:"credibility_score"` // [0,1]; 0 when no completed promises
	LastUpdated      time.Time `json:"last_updated"`
}

// CompanyCredibility is the company-wide analogue of ExecutiveCredibility
// with a per-type breakdown.
type CompanyCredibility struct {
	Company          string                       `json:"company"`
	TotalPromises    int                          `json:"total_promises"`
	DeliveredOnTime  int                          `json:"delivered_on_time"`
	DeliveredLate    int                          `json:"delivered_late"`
	Failed           int                          `json:"failed"`
	Pending          int                          `json:"pending"`
	TotalExecutives  int                          `json:"total_executives"`
	AverageDelayDays float64                      `json:"average_delay_days"`
	CredibilityScore float64                      `json:"credibility_score"`
	ByPromiseType    map[PromiseType]TypeAccuracy `json:"by_promise_type"`
	LastUpdated      time.Time                    `json:"last_updated"`
}
