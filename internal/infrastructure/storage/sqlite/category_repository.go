package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"vaultledger/internal/domain/ledger"
)

type CategoryRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewCategoryRepository(db DBTX, log *slog.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:  db,
		log: log.With("component", "category_repository"),
	}
}

func (r *CategoryRepository) Create(ctx context.Context, encryptedName string, typ ledger.EntryType) (int64, error) {
	const query = `INSERT INTO categories (name, type) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, encryptedName, string(typ))
	if err != nil {
		r.log.Error("failed to create category", "type", typ, "error", err)
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return result.LastInsertId()
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (*ledger.Category, error) {
	const query = `SELECT id, name, type FROM categories WHERE id = ?`

	var c ledger.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrCategoryNotFound
	}
	if err != nil {
		r.log.Error("failed to get category", "category_id", id, "error", err)
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) ListByType(ctx context.Context, typ ledger.EntryType) ([]ledger.Category, error) {
	const query = `SELECT id, name, type FROM categories WHERE type = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, string(typ))
	if err != nil {
		r.log.Error("failed to list categories", "type", typ, "error", err)
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []ledger.Category
	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
