package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/biotrust-cli/internal/model"
)

func sampleCompany() model.CompanyCredibility {
	return model.CompanyCredibility{
		Company:          "Biotech Corp",
		TotalPromises:    4,
		DeliveredOnTime:  1,
		DeliveredLate:    1,
		Failed:           1,
		Pending:          1,
		TotalExecutives:  2,
		AverageDelayDays: 45,
		CredibilityScore: 0.533,
		ByPromiseType: map[model.PromiseType]model.TypeAccuracy{
			model.PromiseFDASubmission: {Total: 2, SuccessRate: 0.5},
		},
		LastUpdated: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func samplePromises() []model.Promise {
	delay := 45
	dateMade := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return []model.Promise{
		{
			Company:       "Biotech Corp",
			ExecutiveName: "Jane Smith",
			Type:          model.PromiseFDASubmission,
			Status:        model.StatusDeliveredLate,
			DateMade:      dateMade,
			DelayDays:     &delay,
			Text:          "We will submit the BLA in Q1 2024. Additional remarks follow.",
		},
		{
			Company:       "Biotech Corp",
			ExecutiveName: "John Doe",
			Type:          model.PromiseClinicalTimeline,
			Status:        model.StatusFailed,
			DateMade:      dateMade.AddDate(0, -1, 0),
			Text:          "Topline data expected by year end",
		},
		{
			Company:       "Biotech Corp",
			ExecutiveName: "Jane Smith",
			Type:          model.PromiseEnrollmentCompletion,
			Status:        model.StatusPending,
			DateMade:      dateMade,
			Metrics:       model.Metrics{EnrollmentTarget: 120000},
			Text:          "Enrollment of 120000 patients will complete in 2025",
		},
	}
}

func TestAccountability(t *testing.T) {
	executives := []model.ExecutiveCredibility{
		{ExecutiveName: "Jane Smith", Company: "Biotech Corp", CredibilityScore: 0.8, TotalPromises: 2},
		{ExecutiveName: "John Doe", Company: "Biotech Corp", CredibilityScore: 0.2, TotalPromises: 2},
	}

	out := Accountability(sampleCompany(), executives, samplePromises())

	assert.Contains(t, out, "ACCOUNTABILITY REPORT: Biotech Corp")
	assert.Contains(t, out, "Credibility score: 0.533")
	assert.Contains(t, out, "fda_submission")
	assert.Contains(t, out, "50% on time")
	assert.Contains(t, out, "[LATE 45d] Jane Smith: We will submit the BLA in Q1 2024.")
	assert.Contains(t, out, "[FAILED] John Doe: Topline data expected by year end")
	// Grouped thousands from the message printer.
	assert.Contains(t, out, "120,000 patients")

	// Failed promise was made first, so it is listed first.
	assert.Less(t, strings.Index(out, "[FAILED]"), strings.Index(out, "[LATE 45d]"))
	// Executives sorted by score descending.
	assert.Less(t, strings.Index(out, "Jane Smith"), strings.Index(out, "John Doe"))
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	wb := Workbook{
		Companies: []model.CompanyCredibility{sampleCompany()},
		Executives: []model.ExecutiveCredibility{
			{ExecutiveName: "Jane Smith", Company: "Biotech Corp", CredibilityScore: 0.8, TotalPromises: 2},
		},
		Promises: samplePromises(),
	}
	require.NoError(t, WriteWorkbook(path, wb))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, "Companies", f.Sheets[0].Name)
	assert.Equal(t, "Executives", f.Sheets[1].Name)
	assert.Equal(t, "Promises", f.Sheets[2].Name)

	companies := f.Sheets[0]
	require.GreaterOrEqual(t, len(companies.Rows), 2)
	assert.Equal(t, "Company", companies.Rows[0].Cells[0].String())
	assert.Equal(t, "Biotech Corp", companies.Rows[1].Cells[0].String())

	promises := f.Sheets[2]
	require.Len(t, promises.Rows, 4)
	assert.Equal(t, "fda_submission", promises.Rows[1].Cells[2].String())
	assert.Equal(t, "2024-01-10", promises.Rows[1].Cells[4].String())
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "biotech-corp-credibility-20240801.xlsx", DefaultFilename("Biotech Corp", now))
}
