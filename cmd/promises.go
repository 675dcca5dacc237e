package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/biotrust-cli/internal/model"
)

var promisesCmd = &cobra.Command{
	Use:   "promises",
	Short: "Inspect and resolve tracked promises",
}

var dueDays int

var promisesDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List pending promises with upcoming or passed deadlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		due, err := env.Tracker.DueWithin(cmd.Context(), dueDays)
		if err != nil {
			return err
		}

		if len(due) == 0 {
			fmt.Println("No promises due.")
			return nil
		}
		for _, d := range due {
			marker := fmt.Sprintf("in %d days", d.DaysUntilDeadline)
			if d.DaysUntilDeadline < 0 {
				marker = fmt.Sprintf("OVERDUE by %d days", -d.DaysUntilDeadline)
			}
			fmt.Printf("%s  %-20s %-24s %-22s %s\n",
				d.Deadline.Format("2006-01-02"), d.Company, d.ExecutiveName, d.Type, marker)
		}
		return nil
	},
}

var (
	outcomeStatus  string
	outcomeDate    string
	outcomeDetails string
)

var promisesOutcomeCmd = &cobra.Command{
	Use:   "outcome <promise-id>",
	Short: "Record the outcome of a promise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := model.ParsePromiseStatus(outcomeStatus)
		if err != nil {
			return err
		}

		when := time.Now().UTC()
		if outcomeDate != "" {
			if when, err = time.Parse("2006-01-02", outcomeDate); err != nil {
				return eris.Wrapf(err, "parse date %s", outcomeDate)
			}
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		updated, err := env.Tracker.UpdateOutcome(cmd.Context(), args[0], status, when, outcomeDetails)
		if err != nil {
			return err
		}

		fmt.Printf("Promise %s resolved as %s", updated.ID, updated.Status)
		if updated.DelayDays != nil && *updated.DelayDays > 0 {
			fmt.Printf(" (%d days late)", *updated.DelayDays)
		}
		if updated.CredibilityImpact != nil {
			fmt.Printf(", credibility impact %.2f", *updated.CredibilityImpact)
		}
		fmt.Println()
		return nil
	},
}

var (
	detailsExecutive string
	detailsCompany   string
)

var promisesDetailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Show an executive's full promise history",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		details, err := env.Tracker.Details(cmd.Context(), detailsExecutive, detailsCompany)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(details)
	},
}

var searchQuery string

var promisesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search promises by text, company, or executive",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Tracker.Search(cmd.Context(), searchQuery)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, p := range results {
			fmt.Printf("%s  %-20s %-24s %-18s %s\n",
				p.ID[:8], p.Company, p.ExecutiveName, p.Status, p.Type)
		}
		return nil
	},
}

func init() {
	promisesDueCmd.Flags().IntVar(&dueDays, "days", 30, "look-ahead window in days")

	promisesOutcomeCmd.Flags().StringVar(&outcomeStatus, "status", "", "outcome status (required)")
	promisesOutcomeCmd.Flags().StringVar(&outcomeDate, "date", "", "outcome date YYYY-MM-DD (default today)")
	promisesOutcomeCmd.Flags().StringVar(&outcomeDetails, "details", "", "outcome notes")
	_ = promisesOutcomeCmd.MarkFlagRequired("status")

	promisesDetailsCmd.Flags().StringVar(&detailsExecutive, "executive", "", "executive name (required)")
	promisesDetailsCmd.Flags().StringVar(&detailsCompany, "company", "", "company name (narrows ambiguous names)")
	_ = promisesDetailsCmd.MarkFlagRequired("executive")

	promisesSearchCmd.Flags().StringVar(&searchQuery, "query", "", "search term (required)")
	_ = promisesSearchCmd.MarkFlagRequired("query")

	promisesCmd.AddCommand(promisesDueCmd, promisesOutcomeCmd, promisesDetailsCmd, promisesSearchCmd)
	rootCmd.AddCommand(promisesCmd)
}
