package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts (funding sources)",
}

var accountAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an account to the selected profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		id, err := service.CreateAccount(cmd.Context(), profileID, args[0], password)
		if err != nil {
			return err
		}
		color.Green("✓ Account %q created with id %d", args[0], id)
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with balances",
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		accounts, err := service.ListAccounts(cmd.Context(), profileID, password)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts yet. Add one with: vaultledger account add <name>")
			return nil
		}
		for _, a := range accounts {
			balance, err := service.Balance(cmd.Context(), a.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%4d  %-24s %12s\n", a.ID, a.Name, balance.StringFixed(2))
		}
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <account-id>",
	Short: "Show the balance of one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountID, err := parseID(args[0])
		if err != nil {
			return err
		}
		balance, err := service.Balance(cmd.Context(), accountID)
		if err != nil {
			return err
		}
		fmt.Println(balance.StringFixed(2))
		return nil
	},
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func init() {
	accountCmd.AddCommand(accountAddCmd, accountListCmd)
	rootCmd.AddCommand(accountCmd, balanceCmd)
}
