package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationResult describes what a migration run did.
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// Migrate opens dbPath and migrates it.
//   - If targetVersion < 0, it migrates to the latest version.
//   - If targetVersion == 0, it rolls back all migrations.
//   - If targetVersion > 0, it migrates to the specified version.
func Migrate(dbPath string, targetVersion int) (MigrationResult, error) {
	db, err := Open(dbPath)
	if err != nil {
		return MigrationResult{}, err
	}
	defer db.Close()

	return migrateDB(db, targetVersion)
}

func migrateDB(db *sql.DB, targetVersion int) (MigrationResult, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to create SQLite migrate driver: %w", err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to create migration source: %w", err)
	}

	// m.Close would also close db, which the caller owns.
	m, err := migrate.NewWithInstance("iofs", source, "megascan", driver)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return MigrationResult{}, fmt.Errorf("database is in a dirty state at version %d", from)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return MigrationResult{From: from, To: from}, nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to migrate: %w", err)
	}

	to, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		to, err = 0, nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to read new version: %w", err)
	}
	return MigrationResult{From: from, To: to, Changed: true}, nil
}
