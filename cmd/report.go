package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/credibility"
	"github.com/sells-group/biotrust-cli/internal/model"
	"github.com/sells-group/biotrust-cli/internal/report"
)

var (
	reportCompany string
	reportOutput  string
	reportText    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export a company credibility report",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		promises, err := env.Promises.ListByCompany(cmd.Context(), reportCompany)
		if err != nil {
			return err
		}
		if len(promises) == 0 {
			fmt.Printf("No promises tracked for %s.\n", reportCompany)
			return nil
		}

		company := credibility.ComputeCompany(reportCompany, promises)
		executives := executiveAggregates(reportCompany, promises)

		if reportText {
			fmt.Print(report.Accountability(company, executives, promises))
			return nil
		}

		path := reportOutput
		if path == "" {
			path = filepath.Join(cfg.Report.OutputDir,
				report.DefaultFilename(reportCompany, time.Now().UTC()))
		}
		wb := report.Workbook{
			Companies:  []model.CompanyCredibility{company},
			Executives: executives,
			Promises:   promises,
		}
		if err := report.WriteWorkbook(path, wb); err != nil {
			return err
		}

		zap.L().Info("report written",
			zap.String("company", reportCompany),
			zap.String("path", path),
		)
		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}

// executiveAggregates recomputes per-executive credibility from the
// company's promise history.
func executiveAggregates(company string, promises []model.Promise) []model.ExecutiveCredibility {
	byExec := make(map[string][]model.Promise)
	var order []string
	for _, p := range promises {
		if _, seen := byExec[p.ExecutiveName]; !seen {
			order = append(order, p.ExecutiveName)
		}
		byExec[p.ExecutiveName] = append(byExec[p.ExecutiveName], p)
	}

	out := make([]model.ExecutiveCredibility, 0, len(order))
	for _, name := range order {
		out = append(out, credibility.ComputeExecutive(name, company, byExec[name]))
	}
	return out
}

func init() {
	reportCmd.Flags().StringVar(&reportCompany, "company", "", "company name (required)")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "output path (default derived from company and date)")
	reportCmd.Flags().BoolVar(&reportText, "text", false, "print a plaintext accountability report instead of xlsx")
	_ = reportCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(reportCmd)
}
