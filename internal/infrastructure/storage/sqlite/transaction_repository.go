package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"

	"vaultledger/internal/domain/ledger"
)

// Amounts are stored as TEXT and parsed back into decimals: REAL would round
// and INTEGER cents would bake a currency scale into the schema.
type TransactionRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewTransactionRepository(db DBTX, log *slog.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:  db,
		log: log.With("component", "transaction_repository"),
	}
}

func (r *TransactionRepository) Create(ctx context.Context, t *ledger.Transaction) (int64, error) {
	const query = `
		INSERT INTO transactions (account_id, category_id, type, amount, created_at, description)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		t.AccountID, t.CategoryID, string(t.Type), t.Amount.String(), t.CreatedAt, t.Description)
	if err != nil {
		r.log.Error("failed to create transaction",
			"account_id", t.AccountID, "type", t.Type, "error", err)
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return result.LastInsertId()
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64) ([]ledger.Transaction, error) {
	const query = `
		SELECT id, account_id, category_id, type, amount, created_at, description
		FROM transactions
		WHERE account_id = ?
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		r.log.Error("failed to list transactions", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		var amount string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Type, &amount, &t.CreatedAt, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *TransactionRepository) CountByProfile(ctx context.Context, profileID int64, typ ledger.EntryType) (int, error) {
	const query = `
		SELECT COUNT(t.id)
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.profile_id = ? AND t.type = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, profileID, string(typ)).Scan(&count); err != nil {
		r.log.Error("failed to count transactions", "profile_id", profileID, "error", err)
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) ListPage(ctx context.Context, profileID int64, typ ledger.EntryType, limit, offset int) ([]ledger.HistoryRecord, error) {
	// Equal timestamps are possible; id breaks the tie deterministically.
	const query = `
		SELECT t.created_at, a.name, c.name, t.type, t.amount, t.description
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		JOIN categories c ON t.category_id = c.id
		WHERE a.profile_id = ? AND t.type = ?
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, profileID, string(typ), limit, offset)
	if err != nil {
		r.log.Error("failed to list transaction page", "profile_id", profileID, "error", err)
		return nil, fmt.Errorf("list transaction page: %w", err)
	}
	defer rows.Close()

	return scanHistoryRecords(rows)
}

func (r *TransactionRepository) ListAllByProfile(ctx context.Context, profileID int64) ([]ledger.HistoryRecord, error) {
	const query = `
		SELECT t.created_at, a.name, c.name, t.type, t.amount, t.description
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		JOIN categories c ON t.category_id = c.id
		WHERE a.profile_id = ?
		ORDER BY t.created_at ASC, t.id ASC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		r.log.Error("failed to list all transactions", "profile_id", profileID, "error", err)
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	defer rows.Close()

	return scanHistoryRecords(rows)
}

func scanHistoryRecords(rows *sql.Rows) ([]ledger.HistoryRecord, error) {
	var records []ledger.HistoryRecord
	for rows.Next() {
		var rec ledger.HistoryRecord
		var amount string
		if err := rows.Scan(&rec.CreatedAt, &rec.AccountName, &rec.Category, &rec.Type, &amount, &rec.Description); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		var err error
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
