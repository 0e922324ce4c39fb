package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"vaultledger/internal/domain/ledger"
	"vaultledger/internal/infrastructure/migration"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so every
// repository can run either on the shared handle or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Storage owns the SQLite handle and hands out repositories bound to it.
type Storage struct {
	db  *sql.DB
	log *slog.Logger
}

// New opens (creating if needed) the database file, applies migrations and
// returns the storage handle.
func New(path string, log *slog.Logger) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single local file, one interactive session: one connection avoids
	// SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)

	if err := migration.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Storage{db: db, log: log}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Repositories returns the per-entity repositories bound to the shared
// handle.
func (s *Storage) Repositories() ledger.Repositories {
	return s.repositories(s.db)
}

func (s *Storage) repositories(db DBTX) ledger.Repositories {
	return ledger.Repositories{
		Profiles:     NewProfileRepository(db, s.log),
		Accounts:     NewAccountRepository(db, s.log),
		Categories:   NewCategoryRepository(db, s.log),
		Transactions: NewTransactionRepository(db, s.log),
	}
}

// InTx runs fn against repositories bound to one transaction. Any error
// from fn rolls everything back.
func (s *Storage) InTx(ctx context.Context, fn func(r ledger.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(s.repositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
