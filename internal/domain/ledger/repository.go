package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryRecord is a joined transaction row as stored: the account name,
// category name and description are still encrypted blobs.
type HistoryRecord struct {
	CreatedAt   time.Time
	AccountName string
	Category    string
	Type        EntryType
	Amount      decimal.Decimal
	Description string
}

type ProfileRepository interface {
	Create(ctx context.Context, name, verifier string) (int64, error)
	Get(ctx context.Context, id int64) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
}

type AccountRepository interface {
	// Create stores an account whose name is already encrypted.
	Create(ctx context.Context, profileID int64, encryptedName string) (int64, error)
	Get(ctx context.Context, id int64) (*Account, error)
	ListByProfile(ctx context.Context, profileID int64) ([]Account, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, encryptedName string, typ EntryType) (int64, error)
	Get(ctx context.Context, id int64) (*Category, error)
	ListByType(ctx context.Context, typ EntryType) ([]Category, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) (int64, error)
	// ListByAccount returns every transaction of one account, the full set
	// a balance is recomputed from.
	ListByAccount(ctx context.Context, accountID int64) ([]Transaction, error)
	CountByProfile(ctx context.Context, profileID int64, typ EntryType) (int, error)
	// ListPage returns joined rows for one profile and type, newest first
	// with id as the deterministic tie-break.
	ListPage(ctx context.Context, profileID int64, typ EntryType, limit, offset int) ([]HistoryRecord, error)
	// ListAllByProfile returns every joined row ascending by timestamp, for
	// export.
	ListAllByProfile(ctx context.Context, profileID int64) ([]HistoryRecord, error)
}

// Repositories bundles the per-entity repositories, either bound to the
// shared handle or to one open transaction.
type Repositories struct {
	Profiles     ProfileRepository
	Accounts     AccountRepository
	Categories   CategoryRepository
	Transactions TransactionRepository
}

// Transactor runs fn against repositories bound to a single storage
// transaction: everything fn writes commits together or not at all.
type Transactor interface {
	InTx(ctx context.Context, fn func(r Repositories) error) error
}
