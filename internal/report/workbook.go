// Package report renders credibility data into distributable formats:
// an xlsx workbook for analysts and a plaintext accountability report.
package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// Workbook bundles everything the xlsx export covers.
type Workbook struct {
	Companies  []model.CompanyCredibility
	Executives []model.ExecutiveCredibility
	Promises   []model.Promise
}

// WriteWorkbook saves the workbook to path with one sheet per section.
func WriteWorkbook(path string, wb Workbook) error {
	f := xlsx.NewFile()

	if err := addCompanySheet(f, wb.Companies); err != nil {
		return err
	}
	if err := addExecutiveSheet(f, wb.Executives); err != nil {
		return err
	}
	if err := addPromiseSheet(f, wb.Promises); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "report: save workbook %s", path)
}

func addCompanySheet(f *xlsx.File, companies []model.CompanyCredibility) error {
	sheet, err := f.AddSheet("Companies")
	if err != nil {
		return eris.Wrap(err, "report: add companies sheet")
	}

	addHeaderRow(sheet, "Company", "Score", "Total", "On Time", "Late",
		"Failed", "Pending", "Executives", "Avg Delay (days)")
	for _, c := range companies {
		row := sheet.AddRow()
		row.AddCell().SetString(c.Company)
		row.AddCell().SetFloatWithFormat(c.CredibilityScore, "0.000")
		row.AddCell().SetInt(c.TotalPromises)
		row.AddCell().SetInt(c.DeliveredOnTime)
		row.AddCell().SetInt(c.DeliveredLate)
		row.AddCell().SetInt(c.Failed)
		row.AddCell().SetInt(c.Pending)
		row.AddCell().SetInt(c.TotalExecutives)
		row.AddCell().SetFloatWithFormat(c.AverageDelayDays, "0.0")
	}
	return nil
}

func addExecutiveSheet(f *xlsx.File, executives []model.ExecutiveCredibility) error {
	sheet, err := f.AddSheet("Executives")
	if err != nil {
		return eris.Wrap(err, "report: add executives sheet")
	}

	addHeaderRow(sheet, "Executive", "Company", "Score", "Total", "On Time",
		"Late", "Failed", "Pending", "Avg Delay (days)")
	for _, e := range executives {
		row := sheet.AddRow()
		row.AddCell().SetString(e.ExecutiveName)
		row.AddCell().SetString(e.Company)
		row.AddCell().SetFloatWithFormat(e.CredibilityScore, "0.000")
		row.AddCell().SetInt(e.TotalPromises)
		row.AddCell().SetInt(e.DeliveredOnTime)
		row.AddCell().SetInt(e.DeliveredLate)
		row.AddCell().SetInt(e.Failed)
		row.AddCell().SetInt(e.Pending)
		row.AddCell().SetFloatWithFormat(e.AverageDelayDays, "0.0")
	}
	return nil
}

func addPromiseSheet(f *xlsx.File, promises []model.Promise) error {
	sheet, err := f.AddSheet("Promises")
	if err != nil {
		return eris.Wrap(err, "report: add promises sheet")
	}

	addHeaderRow(sheet, "Company", "Executive", "Type", "Status", "Date Made",
		"Deadline", "Delay (days)", "Confidence", "Text")
	for _, p := range promises {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Company)
		row.AddCell().SetString(p.ExecutiveName)
		row.AddCell().SetString(string(p.Type))
		row.AddCell().SetString(string(p.Status))
		row.AddCell().SetString(p.DateMade.Format("2006-01-02"))
		if p.Deadline != nil {
			row.AddCell().SetString(p.Deadline.Format("2006-01-02"))
		} else {
			row.AddCell().SetString("")
		}
		if p.DelayDays != nil {
			row.AddCell().SetInt(*p.DelayDays)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(string(p.ConfidenceLanguage))
		row.AddCell().SetString(p.Text)
	}
	return nil
}

func addHeaderRow(sheet *xlsx.Sheet, headers ...string) {
	row := sheet.AddRow()
	for _, h := range headers {
		row.AddCell().SetString(h)
	}
}
