package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	transferFrom int64
	transferTo   int64
)

var transferCmd = &cobra.Command{
	Use:   "transfer <amount>",
	Short: "Move funds between two accounts of the profile",
	Long: `Transfer records a balanced pair of transactions: an expense on the
source account and an income on the destination account, both under the
well-known transfer categories. Either both are recorded or neither is.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}

		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		if err := service.Transfer(cmd.Context(), transferFrom, transferTo, amount, password); err != nil {
			return err
		}
		color.Green("✓ Transferred %s from account %d to account %d", amount.StringFixed(2), transferFrom, transferTo)
		return nil
	},
}

func init() {
	transferCmd.Flags().Int64Var(&transferFrom, "from", 0, "source account id")
	transferCmd.Flags().Int64Var(&transferTo, "to", 0, "destination account id")
	_ = transferCmd.MarkFlagRequired("from")
	_ = transferCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(transferCmd)
}
