package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// DrugType categorizes the modality of a drug application.
type DrugType string

const (
	DrugSmallMolecule      DrugType = "small_molecule"
	DrugBiologic           DrugType = "biologic"
	DrugGeneTherapy        DrugType = "gene_therapy"
	DrugCellTherapy        DrugType = "cell_therapy"
	DrugVaccine            DrugType = "vaccine"
	DrugMonoclonalAntibody DrugType = "monoclonal_antibody"
	DrugPeptide            DrugType = "peptide"
	DrugDeviceCombo        DrugType = "device_drug_combination"
)

var drugTypes = []DrugType{
	DrugSmallMolecule, DrugBiologic, DrugGeneTherapy, DrugCellTherapy,
	DrugVaccine, DrugMonoclonalAntibody, DrugPeptide, DrugDeviceCombo,
}

// AdvancedTherapy reports whether the drug type gets extra regulatory
// scrutiny (gene and cell therapies).
func (d DrugType) AdvancedTherapy() bool {
	return d == DrugGeneTherapy || d == DrugCellTherapy
}

// ParseDrugType converts a stored string back into a DrugType.
func ParseDrugType(s string) (DrugType, error) {
	for _, t := range drugTypes {
		if DrugType(s) == t {
			return t, nil
		}
	}
	return "", eris.Errorf("model: unknown drug type %q", s)
}

// ReviewDivision identifies the FDA division reviewing a submission.
type ReviewDivision string

const (
	DivisionOncology             ReviewDivision = "oncology"
	DivisionNeurology            ReviewDivision = "neurology"
	DivisionCardiologyNephrology ReviewDivision = "cardiology_nephrology"
	DivisionPsychiatry           ReviewDivision = "psychiatry"
	DivisionPulmonary            ReviewDivision = "pulmonary"
	DivisionAntimicrobial        ReviewDivision = "antimicrobial"
	DivisionGastroenterology     ReviewDivision = "gastroenterology"
	DivisionRareDiseases         ReviewDivision = "rare_diseases"
	DivisionHematology           ReviewDivision = "hematology"
	DivisionEndocrinology        ReviewDivision = "endocrinology"
	DivisionDermatology          ReviewDivision = "dermatology"
	DivisionOphthalmology        ReviewDivision = "ophthalmology"
	DivisionAnesthesiology       ReviewDivision = "anesthesiology"
)

// ReviewDivisions lists every division in a stable order.
var ReviewDivisions = []ReviewDivision{
	DivisionOncology, DivisionNeurology, DivisionCardiologyNephrology,
	DivisionPsychiatry, DivisionPulmonary, DivisionAntimicrobial,
	DivisionGastroenterology, DivisionRareDiseases, DivisionHematology,
	DivisionEndocrinology, DivisionDermatology, DivisionOphthalmology,
	DivisionAnesthesiology,
}

// ParseReviewDivision converts a stored string back into a ReviewDivision.
func ParseReviewDivision(s string) (ReviewDivision, error) {
	for _, d := range ReviewDivisions {
		if ReviewDivision(s) == d {
			return d, nil
		}
	}
	return "", eris.Errorf("model: unknown review division %q", s)
}

// ReviewPathway identifies the FDA review pathway for a submission.
type ReviewPathway string

const (
	PathwayStandard     ReviewPathway = "standard"
	PathwayPriority     ReviewPathway = "priority"
	PathwayFastTrack    ReviewPathway = "fast_track"
	PathwayBreakthrough ReviewPathway = "breakthrough"
	PathwayAccelerated  ReviewPathway = "accelerated"
	PathwayOrphan       ReviewPathway = "orphan"
	PathwayRMAT         ReviewPathway = "rmat"
)

var reviewPathways = []ReviewPathway{
	PathwayStandard, PathwayPriority, PathwayFastTrack,
	PathwayBreakthrough, PathwayAccelerated, PathwayOrphan, PathwayRMAT,
}

// ParseReviewPathway converts a stored string back into a ReviewPathway.
func ParseReviewPathway(s string) (ReviewPathway, error) {
	for _, p := range reviewPathways {
		if ReviewPathway(s) == p {
			return p, nil
		}
	}
	return "", eris.Errorf("model: unknown review pathway %q", s)
}

// DecisionType is the FDA's decision on a submission.
type DecisionType string

const (
	DecisionApproval          DecisionType = "approval"
	DecisionCRL               DecisionType = "crl"
	DecisionWithdrawal        DecisionType = "withdrawal"
	DecisionRefuseToFile      DecisionType = "rtf"
	DecisionClinicalHold      DecisionType = "clinical_hold"
	DecisionPartialHold       DecisionType = "partial_clinical_hold"
	DecisionTentativeApproval DecisionType = "tentative_approval"
)

var decisionTypes = []DecisionType{
	DecisionApproval, DecisionCRL, DecisionWithdrawal, DecisionRefuseToFile,
	DecisionClinicalHold, DecisionPartialHold, DecisionTentativeApproval,
}

// ParseDecisionType converts a stored string back into a DecisionType.
func ParseDecisionType(s string) (DecisionType, error) {
	for _, d := range decisionTypes {
		if DecisionType(s) == d {
			return d, nil
		}
	}
	return "", eris.Errorf("model: unknown decision type %q", s)
}

// AdComVote records an advisory committee vote tally.
type AdComVote struct {
	Yes int `json:"yes" yaml:"yes"`
	No  int `json:"no" yaml:"no"`
}

// Submission represents one FDA regulatory filing under analysis.
// Decided submissions double as precedents for similarity scoring.
type Submission struct {
	ID             string         `json:"id" yaml:"id"`
	Company        string         `json:"company" yaml:"company"`
	DrugName       string         `json:"drug_name" yaml:"drug_name"`
	DrugType       DrugType       `json:"drug_type" yaml:"drug_type"`
	Indication     string         `json:"indication" yaml:"indication"`
	ReviewDivision ReviewDivision `json:"review_division" yaml:"review_division"`
	ReviewPathway  ReviewPathway  `json:"review_pathway" yaml:"review_pathway"`
	SubmissionType string         `json:"submission_type" yaml:"submission_type"` // NDA, BLA, sNDA, sBLA
	SubmissionDate time.Time      `json:"submission_date" yaml:"submission_date"`
	PDUFADate      *time.Time     `json:"pdufa_date,omitempty" yaml:"pdufa_date,omitempty"`

	HasBreakthroughDesignation bool `json:"has_breakthrough_designation" yaml:"has_breakthrough_designation"`
	HasOrphanDesignation       bool `json:"has_orphan_designation" yaml:"has_orphan_designation"`
	HasFastTrack               bool `json:"has_fast_track" yaml:"has_fast_track"`

	PrimaryEndpoint       string   `json:"primary_endpoint" yaml:"primary_endpoint"`
	PrimaryEndpointMet    bool     `json:"primary_endpoint_met" yaml:"primary_endpoint_met"`
	SafetyProfileGrade    int      `json:"safety_profile_grade" yaml:"safety_profile_grade"` // 1-5, 5 best
	PivotalTrialSize      int      `json:"pivotal_trial_size" yaml:"pivotal_trial_size"`
	PatientPopulationSize int      `json:"patient_population_size" yaml:"patient_population_size"`
	UnmetMedicalNeed      bool     `json:"unmet_medical_need" yaml:"unmet_medical_need"`
	CompetingDrugs        []string `json:"competing_drugs,omitempty" yaml:"competing_drugs,omitempty"`

	DecisionType      DecisionType `json:"decision_type,omitempty" yaml:"decision_type,omitempty"`
	DecisionDate      *time.Time   `json:"decision_date,omitempty" yaml:"decision_date,omitempty"`
	DecisionDetails   string       `json:"decision_details,omitempty" yaml:"decision_details,omitempty"`
	AdvisoryCommittee bool         `json:"advisory_committee" yaml:"advisory_committee"`
	AdComVote         *AdComVote   `json:"adcom_vote,omitempty" yaml:"adcom_vote,omitempty"`
	ReviewIssues      []string     `json:"review_issues,omitempty" yaml:"review_issues,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Decided reports whether the FDA has ruled on this submission.
func (s *Submission) Decided() bool {
	return s.DecisionType != ""
}

// SubmissionID derives the content-hash identifier for a submission.
func SubmissionID(company, drug string, submissionDate time.Time) string {
	content := fmt.Sprintf("%s_%s_%s", company, drug, submissionDate.Format(time.RFC3339))
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// EnsureID fills in the derived identifier and defaults when absent.
func (s *Submission) EnsureID() {
	if s.ID == "" {
		s.ID = SubmissionID(s.Company, s.DrugName, s.SubmissionDate)
	}
	if s.SubmissionType == "" {
		s.SubmissionType = "NDA"
	}
	if s.SafetyProfileGrade == 0 {
		s.SafetyProfileGrade = 3
	}
}
