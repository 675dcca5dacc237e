package fda

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/biotrust-cli/internal/model"
)

func newMockPostgresFDAStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewPostgresWithPool(mock), mock
}

var pgSubmissionColumnNames = []string{
	"id", "company", "drug_name", "drug_type", "indication", "review_division",
	"review_pathway", "submission_type", "submission_date", "pdufa_date", "has_breakthrough",
	"has_orphan", "has_fast_track", "primary_endpoint", "primary_endpoint_met",
	"safety_profile_grade", "pivotal_trial_size", "patient_population_size",
	"unmet_medical_need", "competing_drugs", "decision_type", "decision_date",
	"decision_details", "advisory_committee", "adcom_vote", "review_issues",
	"created_at", "updated_at",
}

func TestPostgresStore_SaveSubmission_Upsert(t *testing.T) {
	s, mock := newMockPostgresFDAStore(t)

	args := make([]any, 28)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[1] = "Biotech Corp"
	args[2] = "BTX-100"
	args[3] = "small_molecule"

	mock.ExpectExec(`ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(args...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sub := model.Submission{
		Company:        "Biotech Corp",
		DrugName:       "BTX-100",
		DrugType:       model.DrugSmallMolecule,
		Indication:     "nsclc",
		ReviewDivision: model.DivisionOncology,
		ReviewPathway:  model.PathwayStandard,
		SubmissionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	sub.EnsureID()
	require.NoError(t, s.SaveSubmission(context.Background(), sub))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSubmission(t *testing.T) {
	s, mock := newMockPostgresFDAStore(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	decision := "approval"
	rows := pgxmock.NewRows(pgSubmissionColumnNames).AddRow(
		"sub1", "Biotech Corp", "BTX-100", "small_molecule", "nsclc", "oncology",
		"priority", "NDA", now, (*time.Time)(nil), true,
		false, false, "overall survival", true,
		4, 520, 0,
		true, []byte(`["competitor-a"]`), &decision, &now,
		(*string)(nil), false, []byte(nil), []byte(`[]`),
		now, now,
	)
	mock.ExpectQuery(`SELECT .* FROM fda_submissions WHERE id = \$1`).
		WithArgs("sub1").
		WillReturnRows(rows)

	sub, err := s.GetSubmission(context.Background(), "sub1")
	require.NoError(t, err)
	assert.Equal(t, model.DrugSmallMolecule, sub.DrugType)
	assert.Equal(t, model.DivisionOncology, sub.ReviewDivision)
	assert.Equal(t, model.DecisionApproval, sub.DecisionType)
	assert.Equal(t, []string{"competitor-a"}, sub.CompetingDrugs)
	assert.Nil(t, sub.AdComVote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSubmission_NotFound(t *testing.T) {
	s, mock := newMockPostgresFDAStore(t)

	mock.ExpectQuery(`SELECT .* FROM fda_submissions WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSubmission(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDecidedByIndicationAndType(t *testing.T) {
	s, mock := newMockPostgresFDAStore(t)
	now := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

	decision := "crl"
	rows := pgxmock.NewRows(pgSubmissionColumnNames).AddRow(
		"sub2", "Other Corp", "OTX-5", "small_molecule", "nsclc", "oncology",
		"standard", "NDA", now, (*time.Time)(nil), false,
		false, false, "pfs", false,
		3, 300, 0,
		false, []byte(`[]`), &decision, &now,
		(*string)(nil), false, []byte(nil), []byte(`[]`),
		now, now,
	)
	mock.ExpectQuery(`decision_type IS NOT NULL`).
		WithArgs("nsclc", "small_molecule", 20).
		WillReturnRows(rows)

	subs, err := s.ListDecidedByIndicationAndType(context.Background(), "nsclc", model.DrugSmallMolecule, 20)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, model.DecisionCRL, subs[0].DecisionType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
