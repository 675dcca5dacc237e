package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/biotrust-cli/internal/fda"
	"github.com/sells-group/biotrust-cli/internal/model"
)

var fdaCmd = &cobra.Command{
	Use:   "fda",
	Short: "Analyze FDA submissions and precedents",
}

var fdaFile string

// loadSubmission reads a submission description from a yaml file.
func loadSubmission(path string) (model.Submission, error) {
	var sub model.Submission
	data, err := os.ReadFile(path)
	if err != nil {
		return sub, eris.Wrapf(err, "read %s", path)
	}
	if err := yaml.Unmarshal(data, &sub); err != nil {
		return sub, eris.Wrapf(err, "parse %s", path)
	}
	if sub.Company == "" || sub.DrugName == "" {
		return sub, eris.New("submission file needs company and drug_name")
	}
	if _, err := model.ParseDrugType(string(sub.DrugType)); err != nil {
		return sub, err
	}
	if _, err := model.ParseReviewDivision(string(sub.ReviewDivision)); err != nil {
		return sub, err
	}
	if sub.ReviewPathway == "" {
		sub.ReviewPathway = model.PathwayStandard
	}
	sub.EnsureID()
	return sub, nil
}

var fdaAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Estimate approval probability for a submission",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := loadSubmission(fdaFile)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		analysis, err := env.Analyzer.Analyze(cmd.Context(), sub)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s): %.1f%% approval probability, predicted %s\n",
			analysis.DrugName, analysis.Company,
			analysis.ApprovalProbability*100, analysis.PredictedOutcome)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

var fdaPrecedentsCmd = &cobra.Command{
	Use:   "precedents",
	Short: "List decided submissions similar to the given one",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := loadSubmission(fdaFile)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		precedents, err := fda.FindPrecedents(cmd.Context(), env.FDA, sub)
		if err != nil {
			return err
		}
		if len(precedents) == 0 {
			fmt.Println("No decided precedents found.")
			return nil
		}
		for _, p := range precedents {
			fmt.Printf("%.2f  %-20s %-24s %s\n",
				p.Similarity, p.Submission.DrugName, p.Submission.Company,
				p.Submission.DecisionType)
		}
		return nil
	},
}

var (
	fdaDecision     string
	fdaDecisionDate string
	fdaDetails      string
)

var fdaRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Save a submission, optionally with its decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := loadSubmission(fdaFile)
		if err != nil {
			return err
		}

		if fdaDecision != "" {
			decision, err := model.ParseDecisionType(fdaDecision)
			if err != nil {
				return err
			}
			sub.DecisionType = decision
			sub.DecisionDetails = fdaDetails

			when := time.Now().UTC()
			if fdaDecisionDate != "" {
				if when, err = time.Parse("2006-01-02", fdaDecisionDate); err != nil {
					return eris.Wrapf(err, "parse date %s", fdaDecisionDate)
				}
			}
			sub.DecisionDate = &when
		}

		now := time.Now().UTC()
		if sub.CreatedAt.IsZero() {
			sub.CreatedAt = now
		}
		sub.UpdatedAt = now

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.FDA.SaveSubmission(cmd.Context(), sub); err != nil {
			return err
		}

		fmt.Printf("Recorded submission %s (%s, %s)\n", sub.ID, sub.DrugName, sub.Company)
		return nil
	},
}

func init() {
	fdaCmd.PersistentFlags().StringVar(&fdaFile, "file", "", "submission yaml file (required)")
	_ = fdaCmd.MarkPersistentFlagRequired("file")

	fdaRecordCmd.Flags().StringVar(&fdaDecision, "decision", "", "decision type (approval, crl, ...)")
	fdaRecordCmd.Flags().StringVar(&fdaDecisionDate, "decision-date", "", "decision date YYYY-MM-DD")
	fdaRecordCmd.Flags().StringVar(&fdaDetails, "details", "", "decision notes")

	fdaCmd.AddCommand(fdaAnalyzeCmd, fdaPrecedentsCmd, fdaRecordCmd)
	rootCmd.AddCommand(fdaCmd)
}
