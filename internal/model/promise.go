package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// PromiseStatus represents the lifecycle state of a tracked promise.
type PromiseStatus string

const (
	StatusPending         PromiseStatus = "pending"
	StatusDeliveredOnTime PromiseStatus = "delivered_on_time"
	StatusDeliveredLate   PromiseStatus = "delivered_late"
	StatusFailed          PromiseStatus = "failed"
	StatusModified        PromiseStatus = "modified"
	StatusInProgress      PromiseStatus = "in_progress"
	StatusUnclear         PromiseStatus = "unclear"
)

// Completed reports whether the status is terminal for scoring purposes.
func (s PromiseStatus) Completed() bool {
	return s == StatusDeliveredOnTime || s == StatusDeliveredLate || s == StatusFailed
}

// ParsePromiseStatus converts a stored string back into a PromiseStatus.
func ParsePromiseStatus(s string) (PromiseStatus, error) {
	switch PromiseStatus(s) {
	case StatusPending, StatusDeliveredOnTime, StatusDeliveredLate,
		StatusFailed, StatusModified, StatusInProgress, StatusUnclear:
		return PromiseStatus(s), nil
	}
	return "", eris.Errorf("model: unknown promise status %q", s)
}

// PromiseType categorizes the commitment an executive made.
type PromiseType string

const (
	PromiseClinicalTimeline     PromiseType = "clinical_timeline"
	PromiseFDASubmission        PromiseType = "fda_submission"
	PromiseDataReadout          PromiseType = "data_readout"
	PromisePartnership          PromiseType = "partnership"
	PromiseRevenueGuidance      PromiseType = "revenue_guidance"
	PromiseEnrollmentCompletion PromiseType = "enrollment_completion"
	PromiseManufacturing        PromiseType = "manufacturing"
	PromiseRegulatoryApproval   PromiseType = "regulatory_approval"
	PromiseProductLaunch        PromiseType = "product_launch"
	PromiseFinancing            PromiseType = "financing"
)

// PromiseTypes lists every promise type in a stable order.
var PromiseTypes = []PromiseType{
	PromiseClinicalTimeline,
	PromiseFDASubmission,
	PromiseDataReadout,
	PromisePartnership,
	PromiseRevenueGuidance,
	PromiseEnrollmentCompletion,
	PromiseManufacturing,
	PromiseRegulatoryApproval,
	PromiseProductLaunch,
	PromiseFinancing,
}

// ParsePromiseType converts a stored string back into a PromiseType.
func ParsePromiseType(s string) (PromiseType, error) {
	for _, t := range PromiseTypes {
		if PromiseType(s) == t {
			return t, nil
		}
	}
	return "", eris.Errorf("model: unknown promise type %q", s)
}

// ConfidenceLevel classifies the hedging language around a promise.
type ConfidenceLevel string

const (
	ConfidenceVeryConfident ConfidenceLevel = "very_confident"
	ConfidenceConfident     ConfidenceLevel = "confident"
	ConfidenceModerate      ConfidenceLevel = "moderate"
	ConfidenceCautious      ConfidenceLevel = "cautious"
	ConfidenceHedged        ConfidenceLevel = "hedged"
	ConfidenceNeutral       ConfidenceLevel = "neutral"
)

// Metrics holds quantifiable targets extracted from promise text.
// Dollar figures are normalized to absolute values.
type Metrics struct {
	Percentages      []float64 `json:"percentages,omitempty"`
	FinancialFigures []float64 `json:"financial_figures,omitempty"`
	PatientCounts    []int     `json:"patient_counts,omitempty"`
	SiteCounts       []int     `json:"site_counts,omitempty"`
	EnrollmentTarget int       `json:"enrollment_target,omitempty"`
}

// Empty reports whether no metrics were extracted.
func (m Metrics) Empty() bool {
	return len(m.Percentages) == 0 && len(m.FinancialFigures) == 0 &&
		len(m.PatientCounts) == 0 && len(m.SiteCounts) == 0 && m.EnrollmentTarget == 0
}

// Promise is a single dated commitment made by a named executive.
type Promise struct {
	ID                 string          `json:"id"`
	Company            string          `json:"company"`
	ExecutiveName      string          `json:"executive_name"`
	ExecutiveTitle     string          `json:"executive_title"`
	Text               string          `json:"text"`
	Type               PromiseType     `json:"type"`
	DateMade           time.Time       `json:"date_made"`
	Deadline           *time.Time      `json:"deadline,omitempty"`
	Source             string          `json:"source"`
	ConfidenceLanguage ConfidenceLevel `json:"confidence_language"`
	Metrics            Metrics         `json:"metrics"`
	Status             PromiseStatus   `json:"status"`
	OutcomeDate        *time.Time      `json:"outcome_date,omitempty"`
	OutcomeDetails     string          `json:"outcome_details,omitempty"`
	DelayDays          *int            `json:"delay_days,omitempty"`
	CredibilityImpact  *float64        `json:"credibility_impact,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// PromiseID derives the content-hash identifier for a promise. It is a
// pure function of the defining fields so re-extraction of the same
// statement upserts rather than duplicates.
func PromiseID(company, executive string, promiseType PromiseType, dateMade time.Time, text string) string {
	snippet := text
	if len(snippet) > 50 {
		snippet = snippet[:50]
	}
	content := fmt.Sprintf("%s_%s_%s_%s_%s",
		company, executive, promiseType, dateMade.Format(time.RFC3339), snippet)
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ExecutiveID derives the stable identifier for an (executive, company) pair.
func ExecutiveID(executive, company string) string {
	sum := md5.Sum([]byte(executive + "_" + company))
	return hex.EncodeToString(sum[:])
}
