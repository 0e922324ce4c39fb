package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"vaultledger/internal/domain/ledger"
)

type AccountRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewAccountRepository(db DBTX, log *slog.Logger) *AccountRepository {
	return &AccountRepository{
		db:  db,
		log: log.With("component", "account_repository"),
	}
}

func (r *AccountRepository) Create(ctx context.Context, profileID int64, encryptedName string) (int64, error) {
	const query = `INSERT INTO accounts (profile_id, name) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, profileID, encryptedName)
	if err != nil {
		r.log.Error("failed to create account", "profile_id", profileID, "error", err)
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return result.LastInsertId()
}

func (r *AccountRepository) Get(ctx context.Context, id int64) (*ledger.Account, error) {
	const query = `SELECT id, profile_id, name FROM accounts WHERE id = ?`

	var a ledger.Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.ProfileID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		r.log.Error("failed to get account", "account_id", id, "error", err)
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepository) ListByProfile(ctx context.Context, profileID int64) ([]ledger.Account, error) {
	const query = `SELECT id, profile_id, name FROM accounts WHERE profile_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		r.log.Error("failed to list accounts", "profile_id", profileID, "error", err)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
