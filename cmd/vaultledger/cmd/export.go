package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vaultledger/internal/export"
)

var exportFile string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the profile's full history to CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		password, err := authenticatedPassword(cmd)
		if err != nil {
			return err
		}

		rows, err := service.ExportRows(cmd.Context(), profileID, password)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No transactions to export.")
			return nil
		}

		filename := exportFile
		if filename == "" {
			filename = fmt.Sprintf("ledger_%d_%s.csv", profileID, time.Now().Format("2006-01-02"))
		}
		if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
			filename += ".csv"
		}

		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()

		if err := export.WriteCSV(f, rows); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		color.Green("✓ Exported %d transactions to %s", len(rows), filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "out", "o", "", "output file (default ledger_<profile>_<date>.csv)")
	rootCmd.AddCommand(exportCmd)
}
