package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the dashboard: balances and this month's totals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		summary, err := service.Summary(cmd.Context(), profileID, password)
		if err != nil {
			return err
		}

		if len(summary.Accounts) == 0 {
			fmt.Println("No accounts yet. Add one with: vaultledger account add <name>")
			return nil
		}
		for _, a := range summary.Accounts {
			fmt.Printf("%4d  %-24s %12s\n", a.AccountID, a.Name, a.Balance.StringFixed(2))
		}
		fmt.Println()
		color.New(color.Bold).Printf("Total balance:      %12s\n", summary.Total.StringFixed(2))
		color.Green("This month income:  %12s", summary.MonthIncome.StringFixed(2))
		color.Red("This month expense: %12s", summary.MonthExpense.StringFixed(2))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
