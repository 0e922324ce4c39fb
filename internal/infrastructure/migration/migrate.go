package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrator is the subset of migrate.Migrate the package needs, so tests can
// stub the engine without touching a real database.
type Migrator interface {
	Up() error
	Close() (source error, database error)
}

// Engine builds a Migrator for an open database handle.
type Engine func(db *sql.DB) (Migrator, error)

// DefaultEngine wires the embedded migration files to the sqlite3 driver.
func DefaultEngine(db *sql.DB) (Migrator, error) {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("open migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "sqlite3", driver)
}

// Up applies all pending migrations. A database already at the latest
// version is not an error.
func Up(db *sql.DB) error {
	return UpWith(db, DefaultEngine)
}

// UpWith is Up with a pluggable engine.
func UpWith(db *sql.DB, engine Engine) (err error) {
	m, err := engine(db)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil && err == nil {
			err = serr
		}
		if dberr != nil && err == nil {
			err = dberr
		}
	}()

	if upErr := m.Up(); upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", upErr)
	}
	return nil
}
