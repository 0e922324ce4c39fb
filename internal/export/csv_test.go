package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultledger/internal/crypto"
	"vaultledger/internal/domain/ledger"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 5, 31, 14, 30, 0, 0, time.UTC)
	rows := []ledger.HistoryRow{
		{
			CreatedAt:   created,
			Account:     ledger.Field{Value: "Cash"},
			Category:    ledger.Field{Value: "Salary"},
			Type:        ledger.Income,
			Amount:      decimal.NewFromInt(5000),
			Description: ledger.Field{Value: "May salary, \"final\""},
		},
		{
			CreatedAt:   created.Add(time.Hour),
			Account:     ledger.Field{Err: crypto.ErrDecryptionFailed},
			Category:    ledger.Field{Value: "Rent"},
			Type:        ledger.Expense,
			Amount:      decimal.RequireFromString("1200.50"),
			Description: ledger.Field{},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "account,type,category,amount,description,timestamp", lines[0])
	assert.Contains(t, lines[1], "Cash,income,Salary,5000")
	assert.Contains(t, lines[1], "2026-05-31 14:30:00")
	// Quoted because the description itself contains quotes.
	assert.Contains(t, lines[1], `"May salary, ""final"""`)
	assert.Contains(t, lines[2], "<decryption error>,expense,Rent,1200.5")
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "account,type,category,amount,description,timestamp\n", buf.String())
}
