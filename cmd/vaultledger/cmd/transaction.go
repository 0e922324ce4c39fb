package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"vaultledger/internal/domain/ledger"
)

var (
	txType       string
	txAccountID  int64
	txCategoryID int64
	txPage       int
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and browse transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add <amount> [description]",
	Short: "Record an income or expense",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := ledger.ParseEntryType(txType)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		description := ""
		if len(args) == 2 {
			description = args[1]
		}

		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		id, err := service.CreateTransaction(cmd.Context(), txAccountID, txCategoryID, typ, amount, description, password)
		if err != nil {
			return err
		}
		color.Green("✓ %s of %s recorded with id %d", typ, amount.StringFixed(2), id)
		return nil
	},
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse transaction history, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		typ, err := ledger.ParseEntryType(txType)
		if err != nil {
			return err
		}
		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		page, err := service.ListTransactions(cmd.Context(), profileID, password, typ, txPage, cfg.PageSize)
		if err != nil {
			return err
		}
		if page.TotalItems == 0 {
			fmt.Println("No transactions.")
			return nil
		}

		for _, row := range page.Rows {
			fmt.Printf("%s  %-20s %-20s %12s  %s\n",
				row.CreatedAt.Format("2006-01-02 15:04:05"),
				row.Account, row.Category,
				row.Amount.StringFixed(2), row.Description)
		}
		fmt.Printf("\nPage %d of %d (%d transactions)\n", page.Page, page.TotalPages, page.TotalItems)
		return nil
	},
}

func init() {
	txAddCmd.Flags().StringVarP(&txType, "type", "t", "expense", "transaction type: income or expense")
	txAddCmd.Flags().Int64VarP(&txAccountID, "account", "a", 0, "account id")
	txAddCmd.Flags().Int64VarP(&txCategoryID, "category", "c", 0, "category id")
	_ = txAddCmd.MarkFlagRequired("account")
	_ = txAddCmd.MarkFlagRequired("category")

	txListCmd.Flags().StringVarP(&txType, "type", "t", "expense", "transaction type: income or expense")
	txListCmd.Flags().IntVarP(&txPage, "page", "p", 1, "page number")

	txCmd.AddCommand(txAddCmd, txListCmd)
	rootCmd.AddCommand(txCmd)
}
