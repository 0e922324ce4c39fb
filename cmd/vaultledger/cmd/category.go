package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vaultledger/internal/domain/ledger"
)

var categoryType string

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage income and expense categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := ledger.ParseEntryType(categoryType)
		if err != nil {
			return err
		}
		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		id, err := service.CreateCategory(cmd.Context(), args[0], typ, password)
		if err != nil {
			return err
		}
		color.Green("✓ %s category %q created with id %d", typ, args[0], id)
		return nil
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories of one type",
	RunE: func(cmd *cobra.Command, _ []string) error {
		typ, err := ledger.ParseEntryType(categoryType)
		if err != nil {
			return err
		}
		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		categories, err := service.ListCategories(cmd.Context(), typ, password)
		if err != nil {
			return err
		}
		for _, c := range categories {
			// Categories created under other profiles show as decryption
			// errors here; that is expected, not corruption.
			fmt.Printf("%4d  %s\n", c.ID, c.Name)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{categoryAddCmd, categoryListCmd} {
		c.Flags().StringVarP(&categoryType, "type", "t", "expense", "category type: income or expense")
	}
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)
	rootCmd.AddCommand(categoryCmd)
}
