package database

import (
	"database/sql"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// MigrationStatus is the schema version after a migration command.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Changed bool
}

// MigrateUp applies every pending "up" migration found at migrationsPath (e.g. file://migrations).
func MigrateUp(databaseURL, migrationsPath string) (*MigrationStatus, error) {
	return runMigrations(databaseURL, migrationsPath, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(databaseURL, migrationsPath string, steps int) (*MigrationStatus, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be >= 1, got %d", steps)
	}
	return runMigrations(databaseURL, migrationsPath, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

func runMigrations(databaseURL, migrationsPath string, apply func(m *migrate.Migrate) error) (status *MigrationStatus, err error) {
	logger := zap.L()

	// migrate needs a database/sql handle; the pgx stdlib driver keeps one driver for both paths.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	if err := migrationDB.Ping(); err != nil {
		_ = migrationDB.Close()
		return nil, fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		_ = migrationDB.Close()
		return nil, fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		_ = migrationDB.Close()
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	// Closing m closes the driver and with it migrationDB.
	defer func() {
		sourceErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(sourceErr, dbErr)
		}
	}()

	changed := true
	if applyErr := apply(m); applyErr != nil {
		if !errors.Is(applyErr, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to apply migrations: %w", applyErr)
		}
		changed = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		logger.Warn("Database schema is dirty", zap.Uint("version", version))
	}
	if changed {
		logger.Info("Database migrations applied", zap.Uint("version", version))
	} else {
		logger.Info("No new database migrations to apply", zap.Uint("version", version))
	}
	return &MigrationStatus{Version: version, Dirty: dirty, Changed: changed}, nil
}
