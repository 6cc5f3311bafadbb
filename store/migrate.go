package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file" // File source driver
)

// MigrationConfig holds configuration for running migrations.
type MigrationConfig struct {
	// MigrationsPath is the path to the migrations directory (e.g., "file://store/migrations")
	MigrationsPath string
	// DatabaseName is used by golang-migrate for internal tracking (default: "main")
	DatabaseName string
}

// DefaultMigrationConfig returns sensible defaults for migration configuration.
func DefaultMigrationConfig(migrationsPath string) MigrationConfig {
	return MigrationConfig{
		MigrationsPath: migrationsPath,
		DatabaseName:   "main",
	}
}

// MigrateUp applies all pending up migrations.
// Returns nil if there are no pending migrations (ErrNoChange is handled gracefully).
//
// IMPORTANT: This function takes ownership of the database connection and will
// close it when complete. Do not use the db connection after calling this function.
func MigrateUp(db *sql.DB, migrationsPath string) error {
	m, err := newMigrator(db, DefaultMigrationConfig(migrationsPath))
	if err != nil {
		return fmt.Errorf("store: failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			// No pending migrations is not an error
			return nil
		}
		return fmt.Errorf("store: failed to apply migrations: %w", err)
	}

	return nil
}

// MigrateUpFromPath applies all pending migrations using a database path.
// This is the recommended approach as it manages its own connection lifecycle.
func MigrateUpFromPath(dbPath, migrationsPath string) error {
	db, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		return fmt.Errorf("store: failed to open database: %w", err)
	}

	return MigrateUp(db, migrationsPath)
}

// MigrateDown rolls back migrations by the specified number of steps.
// Pass -1 to roll back all migrations.
// Returns nil if there are no migrations to roll back.
//
// IMPORTANT: This function takes ownership of the database connection and will
// close it when complete.
func MigrateDown(db *sql.DB, migrationsPath string, steps int) error {
	m, err := newMigrator(db, DefaultMigrationConfig(migrationsPath))
	if err != nil {
		return fmt.Errorf("store: failed to create migrator: %w", err)
	}
	defer m.Close()

	var migrateErr error
	if steps == -1 {
		migrateErr = m.Down()
	} else {
		migrateErr = m.Steps(-steps)
	}

	if migrateErr != nil {
		if errors.Is(migrateErr, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("store: failed to roll back migrations: %w", migrateErr)
	}

	return nil
}

// MigrateDownFromPath rolls back migrations using a database path.
func MigrateDownFromPath(dbPath, migrationsPath string, steps int) error {
	db, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		return fmt.Errorf("store: failed to open database: %w", err)
	}

	return MigrateDown(db, migrationsPath, steps)
}

// GetMigrationVersion returns the current migration version and dirty state.
// Returns version=0 and dirty=false if no migrations have been applied.
//
// The dirty flag indicates if a migration failed partway through.
// If dirty is true, manual intervention may be required.
//
// IMPORTANT: This function takes ownership of the database connection and will
// close it when complete.
func GetMigrationVersion(db *sql.DB, migrationsPath string) (uint, bool, error) {
	m, err := newMigrator(db, DefaultMigrationConfig(migrationsPath))
	if err != nil {
		return 0, false, fmt.Errorf("store: failed to create migrator: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			// No migrations applied yet
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("store: failed to get migration version: %w", err)
	}

	return version, dirty, nil
}

// GetMigrationVersionFromPath returns migration version using a database path.
func GetMigrationVersionFromPath(dbPath, migrationsPath string) (uint, bool, error) {
	db, err := NewSQLiteConnectionWithDefaults(dbPath)
	if err != nil {
		return 0, false, fmt.Errorf("store: failed to open database: %w", err)
	}

	return GetMigrationVersion(db, migrationsPath)
}

// newMigrator creates a new migrate.Migrate instance for the given database.
//
// Note: The returned migrator takes ownership of the database connection.
// When migrator.Close() is called, the database connection is also closed.
func newMigrator(db *sql.DB, config MigrationConfig) (*migrate.Migrate, error) {
	if db == nil {
		return nil, errors.New("store: database connection is required")
	}
	if config.MigrationsPath == "" {
		return nil, errors.New("store: migrations path is required")
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{
		DatabaseName: config.DatabaseName,
	})
	if err != nil {
		return nil, fmt.Errorf("store: failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		config.MigrationsPath,
		"sqlite",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to create migrate instance: %w", err)
	}

	return m, nil
}
