// Package export serializes decrypted ledger history to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"vaultledger/internal/domain/ledger"
)

// timestampLayout matches the timestamps shown in the interactive history.
const timestampLayout = "2006-01-02 15:04:05"

var header = []string{"account", "type", "category", "amount", "description", "timestamp"}

// WriteCSV writes rows (already ordered ascending by timestamp) with a
// header line. Fields that failed to decrypt render their error placeholder;
// the numeric and date columns are always real data.
func WriteCSV(w io.Writer, rows []ledger.HistoryRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Account.String(),
			string(row.Type),
			row.Category.String(),
			row.Amount.String(),
			row.Description.String(),
			row.CreatedAt.Format(timestampLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
