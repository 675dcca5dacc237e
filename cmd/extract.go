package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/biotrust-cli/internal/textsignal"
)

var (
	extractFile      string
	extractCompany   string
	extractExecutive string
	extractTitle     string
	extractSource    string
	extractDate      string
	extractSave      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract executive promises from a text document",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := os.ReadFile(extractFile)
		if err != nil {
			return eris.Wrapf(err, "read %s", extractFile)
		}

		dateMade := time.Now().UTC()
		if extractDate != "" {
			if dateMade, err = time.Parse("2006-01-02", extractDate); err != nil {
				return eris.Wrapf(err, "parse date %s", extractDate)
			}
		}

		promises := textsignal.ExtractPromises(string(text), extractCompany,
			extractExecutive, extractTitle, extractSource, dateMade)

		if extractSave && len(promises) > 0 {
			env, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			saved, err := env.Tracker.Record(cmd.Context(), promises)
			if err != nil {
				return err
			}
			zap.L().Info("promises recorded", zap.Int("count", saved))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(promises)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractFile, "file", "", "text file to scan (required)")
	extractCmd.Flags().StringVar(&extractCompany, "company", "", "company name (required)")
	extractCmd.Flags().StringVar(&extractExecutive, "executive", "", "executive name (required)")
	extractCmd.Flags().StringVar(&extractTitle, "title", "", "executive title")
	extractCmd.Flags().StringVar(&extractSource, "source", "", "source document reference")
	extractCmd.Flags().StringVar(&extractDate, "date", "", "statement date YYYY-MM-DD (default today)")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "record extracted promises in the store")
	_ = extractCmd.MarkFlagRequired("file")
	_ = extractCmd.MarkFlagRequired("company")
	_ = extractCmd.MarkFlagRequired("executive")
	rootCmd.AddCommand(extractCmd)
}
