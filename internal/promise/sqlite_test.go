package promise

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/biotrust-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testPromise(company, executive string, deadline *time.Time) model.Promise {
	dateMade := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	text := "we expect to submit our BLA by Q3 2024"
	now := time.Now().UTC()
	return model.Promise{
		ID:                 model.PromiseID(company, executive, model.PromiseFDASubmission, dateMade, text),
		Company:            company,
		ExecutiveName:      executive,
		ExecutiveTitle:     "CEO",
		Text:               text,
		Type:               model.PromiseFDASubmission,
		DateMade:           dateMade,
		Deadline:           deadline,
		Source:             "earnings call",
		ConfidenceLanguage: model.ConfidenceModerate,
		Status:             model.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func intPtr(v int) *int { return &v }

func TestSQLite_SaveAndGetPromise(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	deadline := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)
	p := testPromise("Biotech Corp", "Jane Doe", &deadline)
	require.NoError(t, st.SavePromise(ctx, p))

	got, err := st.GetPromise(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Company, got.Company)
	assert.Equal(t, model.PromiseFDASubmission, got.Type)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, model.ConfidenceModerate, got.ConfidenceLanguage)
	require.NotNil(t, got.Deadline)
	assert.True(t, got.Deadline.Equal(deadline))
	assert.Nil(t, got.DelayDays)
	assert.Nil(t, got.CredibilityImpact)
}

func TestSQLite_SavePromise_UpsertIsIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := testPromise("Biotech Corp", "Jane Doe", nil)
	require.NoError(t, st.SavePromise(ctx, p))
	require.NoError(t, st.SavePromise(ctx, p))

	promises, err := st.ListByCompany(ctx, "Biotech Corp")
	require.NoError(t, err)
	assert.Len(t, promises, 1)
}

func TestSQLite_GetPromise_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetPromise(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSQLite_ListByExecutive(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SavePromise(ctx, testPromise("Biotech Corp", "Jane Doe", nil)))
	require.NoError(t, st.SavePromise(ctx, testPromise("Other Pharma", "Jane Doe", nil)))
	require.NoError(t, st.SavePromise(ctx, testPromise("Biotech Corp", "John Smith", nil)))

	all, err := st.ListByExecutive(ctx, "Jane Doe", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := st.ListByExecutive(ctx, "Jane Doe", "Biotech Corp")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Biotech Corp", scoped[0].Company)
}

func TestSQLite_ListByExecutive_CompanySubstring(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SavePromise(ctx, testPromise("Acme Bio", "Jane Doe", nil)))
	require.NoError(t, st.SavePromise(ctx, testPromise("Acme Bio Inc", "Jane Doe", nil)))
	require.NoError(t, st.SavePromise(ctx, testPromise("Other Pharma", "Jane Doe", nil)))

	matched, err := st.ListByExecutive(ctx, "Jane Doe", "Acme Bio")
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestSQLite_DueBefore(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	soon := testPromise("Biotech Corp", "Jane Doe", timePtr(now.AddDate(0, 0, 10)))
	far := testPromise("Biotech Corp", "John Smith", timePtr(now.AddDate(0, 0, 120)))
	overdue := testPromise("Other Pharma", "Jane Doe", timePtr(now.AddDate(0, 0, -5)))
	noDeadline := testPromise("Other Pharma", "John Smith", nil)
	resolved := testPromise("Third Bio", "Jane Doe", timePtr(now.AddDate(0, 0, 3)))
	resolved.Status = model.StatusDeliveredOnTime

	for _, p := range []model.Promise{soon, far, overdue, noDeadline, resolved} {
		require.NoError(t, st.SavePromise(ctx, p))
	}

	due, err := st.DueBefore(ctx, now.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, due, 2)
	// Soonest first, overdue included.
	assert.Equal(t, overdue.ID, due[0].ID)
	assert.Equal(t, soon.ID, due[1].ID)
}

func TestSQLite_SearchPromises(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SavePromise(ctx, testPromise("Biotech Corp", "Jane Doe", nil)))
	require.NoError(t, st.SavePromise(ctx, testPromise("Other Pharma", "John Smith", nil)))

	hits, err := st.SearchPromises(ctx, "Biotech")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Biotech Corp", hits[0].Company)

	hits, err = st.SearchPromises(ctx, "BLA")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSQLite_ExecutiveCredibility_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	cred := model.ExecutiveCredibility{
		ExecutiveID:      model.ExecutiveID("Jane Doe", "Biotech Corp"),
		ExecutiveName:    "Jane Doe",
		Company:          "Biotech Corp",
		TotalPromises:    4,
		DeliveredOnTime:  2,
		DeliveredLate:    1,
		Failed:           1,
		CredibilityScore: 0.65,
		LastUpdated:      time.Now().UTC(),
	}
	require.NoError(t, st.SaveExecutiveCredibility(ctx, cred))

	got, err := st.GetExecutiveCredibility(ctx, cred.ExecutiveID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cred.TotalPromises, got.TotalPromises)
	assert.Equal(t, cred.CredibilityScore, got.CredibilityScore)

	missing, err := st.GetExecutiveCredibility(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLite_CompanyCredibility_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	cred := model.CompanyCredibility{
		Company:          "Biotech Corp",
		TotalPromises:    6,
		TotalExecutives:  2,
		CredibilityScore: 0.7,
		ByPromiseType: map[model.PromiseType]model.TypeAccuracy{
			model.PromiseFDASubmission: {Total: 2, SuccessRate: 0.5},
		},
		LastUpdated: time.Now().UTC(),
	}
	require.NoError(t, st.SaveCompanyCredibility(ctx, cred))

	got, err := st.GetCompanyCredibility(ctx, "Biotech Corp")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TotalExecutives)
	assert.Equal(t, 0.5, got.ByPromiseType[model.PromiseFDASubmission].SuccessRate)
}
