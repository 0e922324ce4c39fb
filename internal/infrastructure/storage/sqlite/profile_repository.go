package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"vaultledger/internal/domain/ledger"
)

type ProfileRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewProfileRepository(db DBTX, log *slog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: log.With("component", "profile_repository"),
	}
}

func (r *ProfileRepository) Create(ctx context.Context, name, verifier string) (int64, error) {
	const query = `INSERT INTO profiles (name, verifier, created_at) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, name, verifier, time.Now())
	if err != nil {
		r.log.Error("failed to create profile", "error", err)
		return 0, fmt.Errorf("insert profile: %w", err)
	}
	return result.LastInsertId()
}

func (r *ProfileRepository) Get(ctx context.Context, id int64) (*ledger.Profile, error) {
	const query = `SELECT id, name, verifier, created_at FROM profiles WHERE id = ?`

	var p ledger.Profile
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Verifier, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrProfileNotFound
	}
	if err != nil {
		r.log.Error("failed to get profile", "profile_id", id, "error", err)
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]ledger.Profile, error) {
	const query = `SELECT id, name, verifier, created_at FROM profiles ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Error("failed to list profiles", "error", err)
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []ledger.Profile
	for rows.Next() {
		var p ledger.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Verifier, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
