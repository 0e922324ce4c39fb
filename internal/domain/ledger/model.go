package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"vaultledger/internal/crypto"
)

// Profile is a user identity owning a set of accounts. Verifier is the
// stored password verifier (base64 of salt and derived key); the name is
// plaintext so profiles can be listed before authentication.
type Profile struct {
	ID        int64
	Name      string
	Verifier  string
	CreatedAt time.Time
}

// Account belongs to exactly one profile. Name holds the encrypted blob at
// the storage boundary and the decrypted display name in service results.
type Account struct {
	ID        int64
	ProfileID int64
	Name      string
}

// Category is global in storage; its name only decrypts correctly under the
// password of the profile that created it. Type is plaintext and immutable.
type Category struct {
	ID   int64
	Name string
	Type EntryType
}

// Transaction is immutable once created. Amount is always positive; the
// sign is implied by Type.
type Transaction struct {
	ID          int64
	AccountID   int64
	CategoryID  int64
	Type        EntryType
	Amount      decimal.Decimal
	CreatedAt   time.Time
	Description string
}

// Field is a decrypted text field. A per-field decryption failure is carried
// in Err instead of aborting the whole listing: numeric columns stay valid
// even when the password cannot decrypt the text columns.
type Field struct {
	Value string
	Err   error
}

func (f Field) String() string {
	if f.Err != nil {
		return "<decryption error>"
	}
	return f.Value
}

// HistoryRow is one decrypted row of transaction history, joined across
// account and category.
type HistoryRow struct {
	CreatedAt   time.Time
	Account     Field
	Category    Field
	Type        EntryType
	Amount      decimal.Decimal
	Description Field
}

// Page is one page of transaction history.
type Page struct {
	Rows       []HistoryRow
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// AccountBalance pairs an account with its recomputed balance.
type AccountBalance struct {
	AccountID int64
	Name      Field
	Balance   decimal.Decimal
}

// Summary is the dashboard view: every account balance plus totals for the
// current calendar month.
type Summary struct {
	Accounts     []AccountBalance
	Total        decimal.Decimal
	MonthIncome  decimal.Decimal
	MonthExpense decimal.Decimal
}

func decryptField(c crypto.FieldCipher, blob, password string) Field {
	value, err := c.DecryptField(blob, password)
	if err != nil {
		return Field{Err: err}
	}
	return Field{Value: value}
}
