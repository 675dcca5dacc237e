package fda

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/biotrust-cli/internal/db"
	"github.com/sells-group/biotrust-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS fda_submissions (
	id                      TEXT PRIMARY KEY,
	company                 TEXT NOT NULL,
	drug_name               TEXT NOT NULL,
	drug_type               TEXT NOT NULL,
	indication              TEXT NOT NULL,
	review_division         TEXT NOT NULL,
	review_pathway          TEXT NOT NULL,
	submission_type         TEXT NOT NULL DEFAULT 'NDA',
	submission_date         TIMESTAMPTZ NOT NULL,
	pdufa_date              TIMESTAMPTZ,
	has_breakthrough        BOOLEAN NOT NULL DEFAULT false,
	has_orphan              BOOLEAN NOT NULL DEFAULT false,
	has_fast_track          BOOLEAN NOT NULL DEFAULT false,
	primary_endpoint        TEXT NOT NULL DEFAULT '',
	primary_endpoint_met    BOOLEAN NOT NULL DEFAULT false,
	safety_profile_grade    INTEGER NOT NULL DEFAULT 3,
	pivotal_trial_size      INTEGER NOT NULL DEFAULT 0,
	patient_population_size INTEGER NOT NULL DEFAULT 0,
	unmet_medical_need      BOOLEAN NOT NULL DEFAULT false,
	competing_drugs         JSONB NOT NULL DEFAULT '[]',
	decision_type           TEXT,
	decision_date           TIMESTAMPTZ,
	decision_details        TEXT,
	advisory_committee      BOOLEAN NOT NULL DEFAULT false,
	adcom_vote              JSONB,
	review_issues           JSONB NOT NULL DEFAULT '[]',
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fda_indication_type ON fda_submissions(indication, drug_type);
CREATE INDEX IF NOT EXISTS idx_fda_division ON fda_submissions(review_division);
CREATE INDEX IF NOT EXISTS idx_fda_decision_type ON fda_submissions(decision_type);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const pgSubmissionColumns = `id, company, drug_name, drug_type, indication, review_division,
	review_pathway, submission_type, submission_date, pdufa_date, has_breakthrough, has_orphan,
	has_fast_track, primary_endpoint, primary_endpoint_met, safety_profile_grade,
	pivotal_trial_size, patient_population_size, unmet_medical_need, competing_drugs,
	decision_type, decision_date, decision_details, advisory_committee, adcom_vote,
	review_issues, created_at, updated_at`

func (s *PostgresStore) SaveSubmission(ctx context.Context, sub model.Submission) error {
	competingJSON, err := json.Marshal(sliceOrEmpty(sub.CompetingDrugs))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal competing drugs")
	}
	issuesJSON, err := json.Marshal(sliceOrEmpty(sub.ReviewIssues))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal review issues")
	}
	var voteJSON []byte
	if sub.AdComVote != nil {
		if voteJSON, err = json.Marshal(sub.AdComVote); err != nil {
			return eris.Wrap(err, "postgres: marshal adcom vote")
		}
	}

	var decisionType *string
	if sub.DecisionType != "" {
		v := string(sub.DecisionType)
		decisionType = &v
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO fda_submissions (`+pgSubmissionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		         $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		 ON CONFLICT (id) DO UPDATE SET
		   decision_type = EXCLUDED.decision_type,
		   decision_date = EXCLUDED.decision_date,
		   decision_details = EXCLUDED.decision_details,
		   advisory_committee = EXCLUDED.advisory_committee,
		   adcom_vote = EXCLUDED.adcom_vote,
		   review_issues = EXCLUDED.review_issues,
		   updated_at = EXCLUDED.updated_at`,
		sub.ID, sub.Company, sub.DrugName, string(sub.DrugType), sub.Indication,
		string(sub.ReviewDivision), string(sub.ReviewPathway), sub.SubmissionType,
		sub.SubmissionDate, sub.PDUFADate,
		sub.HasBreakthroughDesignation, sub.HasOrphanDesignation, sub.HasFastTrack,
		sub.PrimaryEndpoint, sub.PrimaryEndpointMet, sub.SafetyProfileGrade,
		sub.PivotalTrialSize, sub.PatientPopulationSize, sub.UnmetMedicalNeed,
		competingJSON, decisionType, sub.DecisionDate, sub.DecisionDetails,
		sub.AdvisoryCommittee, voteJSON, issuesJSON, sub.CreatedAt, sub.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save submission %s", sub.ID)
}

func (s *PostgresStore) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgSubmissionColumns+` FROM fda_submissions WHERE id = $1`, id)
	sub, err := scanPGSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.New("submission not found")
		}
		return nil, err
	}
	return sub, nil
}

func (s *PostgresStore) ListDecidedByIndicationAndType(ctx context.Context, indication string, drugType model.DrugType, limit int) ([]model.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgSubmissionColumns+` FROM fda_submissions
		 WHERE indication = $1 AND drug_type = $2 AND decision_type IS NOT NULL
		 ORDER BY decision_date DESC LIMIT $3`,
		indication, string(drugType), limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list decided for %s", indication)
	}
	return collectPGSubmissions(rows)
}

func (s *PostgresStore) ListDecidedByDivision(ctx context.Context, division model.ReviewDivision, limit int) ([]model.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgSubmissionColumns+` FROM fda_submissions
		 WHERE review_division = $1 AND decision_type IS NOT NULL
		 ORDER BY decision_date DESC LIMIT $2`,
		string(division), limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list decided for division %s", division)
	}
	return collectPGSubmissions(rows)
}

// helpers

func scanPGSubmission(row pgx.Row) (*model.Submission, error) {
	var sub model.Submission
	var drugType, division, pathway string
	var competingJSON, issuesJSON, voteJSON []byte
	var decisionType, decisionDetails *string

	err := row.Scan(&sub.ID, &sub.Company, &sub.DrugName, &drugType, &sub.Indication,
		&division, &pathway, &sub.SubmissionType, &sub.SubmissionDate, &sub.PDUFADate,
		&sub.HasBreakthroughDesignation, &sub.HasOrphanDesignation, &sub.HasFastTrack,
		&sub.PrimaryEndpoint, &sub.PrimaryEndpointMet, &sub.SafetyProfileGrade,
		&sub.PivotalTrialSize, &sub.PatientPopulationSize, &sub.UnmetMedicalNeed,
		&competingJSON, &decisionType, &sub.DecisionDate, &decisionDetails,
		&sub.AdvisoryCommittee, &voteJSON, &issuesJSON, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "postgres: scan submission")
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
	if decisionType != nil {
		if sub.DecisionType, err = model.ParseDecisionType(*decisionType); err != nil {
			return nil, err
		}
	}
	if decisionDetails != nil {
		sub.DecisionDetails = *decisionDetails
	}
	if err := json.Unmarshal(competingJSON, &sub.CompetingDrugs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal competing drugs")
	}
	if err := json.Unmarshal(issuesJSON, &sub.ReviewIssues); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal review issues")
	}
	if len(voteJSON) > 0 {
		sub.AdComVote = &model.AdComVote{}
		if err := json.Unmarshal(voteJSON, sub.AdComVote); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal adcom vote")
		}
	}
	return &sub, nil
}

func collectPGSubmissions(rows pgx.Rows) ([]model.Submission, error) {
	defer rows.Close()
	var subs []model.Submission
	for rows.Next() {
		sub, err := scanPGSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "postgres: iterate submissions")
}
