package ledger

import "fmt"

// EntryType is the two-valued income/expense tag carried by categories and
// transactions. Stored as plaintext: it drives balance signs and filtering.
type EntryType string

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

// Well-known category names created lazily by Transfer.
const (
	TransferOutCategory = "Transfer Out"
	TransferInCategory  = "Transfer In"
)

func (t EntryType) Valid() bool {
	return t == Income || t == Expense
}

// Sign is +1 for income and -1 for expense.
func (t EntryType) Sign() int {
	if t == Income {
		return 1
	}
	return -1
}

// ParseEntryType parses user input into an EntryType.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryType, s)
	}
	return t, nil
}
