package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/locvowork/employee_records/internal/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationFS embed.FS

// NewMigrator builds a migrate instance over the embedded migrations for
// driver. Closing it also closes db.
func NewMigrator(db *sql.DB, driver string) (*migrate.Migrate, error) {
	var (
		instance migratedb.Driver
		err      error
	)
	switch driver {
	case "", DriverPostgres:
		driver = DriverPostgres
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		instance, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending migrations. The migrate instance is left open
// because closing it would close db.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	m, err := NewMigrator(db, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.InfoLog(ctx, "No migrations to apply")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}

	logger.InfoLog(ctx, "Migrations applied successfully")
	return nil
}
