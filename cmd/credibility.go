package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/biotrust-cli/internal/credibility"
	"github.com/sells-group/biotrust-cli/internal/model"
)

var credibilityCmd = &cobra.Command{
	Use:   "credibility",
	Short: "Credibility scores for executives and companies",
}

var credExecCompany string

var credibilityExecutiveCmd = &cobra.Command{
	Use:   "executive <name>",
	Short: "Show an executive's credibility score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		// Recompute from the promise history rather than trusting the
		// cached row.
		promises, err := env.Promises.ListByExecutive(cmd.Context(), args[0], credExecCompany)
		if err != nil {
			return err
		}
		if len(promises) == 0 {
			fmt.Printf("No promises tracked for %s.\n", args[0])
			return nil
		}

		cred := credibility.ComputeExecutive(args[0], promises[0].Company, promises)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cred)
	},
}

var credibilityCompanyCmd = &cobra.Command{
	Use:   "company <name>",
	Short: "Show a company's aggregate credibility",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		promises, err := env.Promises.ListByCompany(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(promises) == 0 {
			fmt.Printf("No promises tracked for %s.\n", args[0])
			return nil
		}

		cred := credibility.ComputeCompany(args[0], promises)
		printCompanySummary(cred)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cred)
	},
}

func printCompanySummary(cred model.CompanyCredibility) {
	fmt.Printf("%s: score %.3f over %d promises (%d executives)\n",
		cred.Company, cred.CredibilityScore, cred.TotalPromises, cred.TotalExecutives)
}

func init() {
	credibilityExecutiveCmd.Flags().StringVar(&credExecCompany, "company", "", "restrict to one company")
	credibilityCmd.AddCommand(credibilityExecutiveCmd, credibilityCompanyCmd)
	rootCmd.AddCommand(credibilityCmd)
}
