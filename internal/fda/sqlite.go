package fda

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS fda_submissions (
	id                      TEXT PRIMARY KEY,
	company                 TEXT NOT NULL,
	drug_name               TEXT NOT NULL,
	drug_type               TEXT NOT NULL,
	indication              TEXT NOT NULL,
	review_division         TEXT NOT NULL,
	review_pathway          TEXT NOT NULL,
	submission_type         TEXT NOT NULL DEFAULT 'NDA',
	submission_date         DATETIME NOT NULL,
	pdufa_date              DATETIME,
	has_breakthrough        INTEGER NOT NULL DEFAULT 0,
	has_orphan              INTEGER NOT NULL DEFAULT 0,
	has_fast_track          INTEGER NOT NULL DEFAULT 0,
	primary_endpoint        TEXT NOT NULL DEFAULT '',
	primary_endpoint_met    INTEGER NOT NULL DEFAULT 0,
	safety_profile_grade    INTEGER NOT NULL DEFAULT 3,
	pivotal_trial_size      INTEGER NOT NULL DEFAULT 0,
	patient_population_size INTEGER NOT NULL DEFAULT 0,
	unmet_medical_need      INTEGER NOT NULL DEFAULT 0,
	competing_drugs         TEXT NOT NULL DEFAULT '[]',
	decision_type           TEXT,
	decision_date           DATETIME,
	decision_details        TEXT,
	advisory_committee      INTEGER NOT NULL DEFAULT 0,
	adcom_vote              TEXT,
	review_issues           TEXT NOT NULL DEFAULT '[]',
	created_at              DATETIME NOT NULL,
	updated_at              DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fda_indication_type ON fda_submissions(indication, drug_type);
CREATE INDEX IF NOT EXISTS idx_fda_division ON fda_submissions(review_division);
CREATE INDEX IF NOT EXISTS idx_fda_decision_type ON fda_submissions(decision_type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const submissionColumns = `id, company, drug_name, drug_type, indication, review_division,
	review_pathway, submission_type, submission_date, pdufa_date, has_breakthrough, has_orphan,
	has_fast_track, primary_endpoint, primary_endpoint_met, safety_profile_grade,
	pivotal_trial_size, patient_population_size, unmet_medical_need, competing_drugs,
	decision_type, decision_date, decision_details, advisory_committee, adcom_vote,
	review_issues, created_at, updated_at`

func (s *SQLiteStore) SaveSubmission(ctx context.Context, sub model.Submission) error {
	competingJSON, err := json.Marshal(sliceOrEmpty(sub.CompetingDrugs))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal competing drugs")
	}
	issuesJSON, err := json.Marshal(sliceOrEmpty(sub.ReviewIssues))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal review issues")
	}
	var voteJSON any
	if sub.AdComVote != nil {
		b, err := json.Marshal(sub.AdComVote)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal adcom vote")
		}
		voteJSON = string(b)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO fda_submissions (`+submissionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   decision_type = excluded.decision_type,
		   decision_date = excluded.decision_date,
		   decision_details = excluded.decision_details,
		   advisory_committee = excluded.advisory_committee,
		   adcom_vote = excluded.adcom_vote,
		   review_issues = excluded.review_issues,
		   updated_at = excluded.updated_at`,
		sub.ID, sub.Company, sub.DrugName, string(sub.DrugType), sub.Indication,
		string(sub.ReviewDivision), string(sub.ReviewPathway), sub.SubmissionType,
		sub.SubmissionDate, nullTime(sub.PDUFADate),
		sub.HasBreakthroughDesignation, sub.HasOrphanDesignation, sub.HasFastTrack,
		sub.PrimaryEndpoint, sub.PrimaryEndpointMet, sub.SafetyProfileGrade,
		sub.PivotalTrialSize, sub.PatientPopulationSize, sub.UnmetMedicalNeed,
		string(competingJSON), nullString(string(sub.DecisionType)), nullTime(sub.DecisionDate),
		nullString(sub.DecisionDetails), sub.AdvisoryCommittee, voteJSON,
		string(issuesJSON), sub.CreatedAt, sub.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save submission %s", sub.ID)
}

func (s *SQLiteStore) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM fda_submissions WHERE id = ?`, id)
	return scanSubmission(row)
}

func (s *SQLiteStore) ListDecidedByIndicationAndType(ctx context.Context, indication string, drugType model.DrugType, limit int) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM fda_submissions
		 WHERE indication = ? AND drug_type = ? AND decision_type IS NOT NULL
		 ORDER BY decision_date DESC LIMIT ?`,
		indication, string(drugType), limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list decided for %s", indication)
	}
	return collectSubmissions(rows)
}

func (s *SQLiteStore) ListDecidedByDivision(ctx context.Context, division model.ReviewDivision, limit int) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM fda_submissions
		 WHERE review_division = ? AND decision_type IS NOT NULL
		 ORDER BY decision_date DESC LIMIT ?`,
		string(division), limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list decided for division %s", division)
	}
	return collectSubmissions(rows)
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanSubmission(row scannable) (*model.Submission, error) {
	var sub model.Submission
	var drugType, division, pathway string
	var competingJSON, issuesJSON string
	var pdufaDate, decisionDate sql.NullTime
	var decisionType, decisionDetails, voteJSON sql.NullString

	err := row.Scan(&sub.ID, &sub.Company, &sub.DrugName, &drugType, &sub.Indication,
		&division, &pathway, &sub.SubmissionType, &sub.SubmissionDate, &pdufaDate,
		&sub.HasBreakthroughDesignation, &sub.HasOrphanDesignation, &sub.HasFastTrack,
		&sub.PrimaryEndpoint, &sub.PrimaryEndpointMet, &sub.SafetyProfileGrade,
		&sub.PivotalTrialSize, &sub.PatientPopulationSize, &sub.UnmetMedicalNeed,
		&competingJSON, &decisionType, &decisionDate, &decisionDetails,
		&sub.AdvisoryCommittee, &voteJSON, &issuesJSON, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("submission not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan submission")
	}

	if sub.DrugType, err = model.ParseDrugType(drugType); err != nil {
		return nil, err
	}
	if sub.ReviewDivision, err = model.ParseReviewDivision(division); err != nil {
		return nil, err
	}
	if sub.ReviewPathway, err = model.ParseReviewPathway(pathway); err != nil {
		return nil, err
	}
	if decisionType.Valid {
		if sub.DecisionType, err = model.ParseDecisionType(decisionType.String); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal([]byte(competingJSON), &sub.CompetingDrugs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal competing drugs")
	}
	if err := json.Unmarshal([]byte(issuesJSON), &sub.ReviewIssues); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal review issues")
	}
	if voteJSON.Valid {
		sub.AdComVote = &model.AdComVote{}
		if err := json.Unmarshal([]byte(voteJSON.String), sub.AdComVote); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal adcom vote")
		}
	}
	if pdufaDate.Valid {
		t := pdufaDate.Time.UTC()
		sub.PDUFADate = &t
	}
	if decisionDate.Valid {
		t := decisionDate.Time.UTC()
		sub.DecisionDate = &t
	}
	if decisionDetails.Valid {
		sub.DecisionDetails = decisionDetails.String
	}
	return &sub, nil
}

func collectSubmissions(rows *sql.Rows) ([]model.Submission, error) {
	defer rows.Close()
	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: iterate submissions")
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
