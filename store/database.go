package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database manages the triage metadata database lifecycle:
// SQLite connection with WAL mode, schema migrations, and graceful shutdown.
//
// Usage:
//
//	db, err := store.NewDatabase("/path/to/meddoc.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
type Database struct {
	db             *sql.DB
	path           string
	migrationsPath string
	mu             sync.RWMutex
}

// DatabaseConfig holds configuration for the Database.
type DatabaseConfig struct {
	// Path is the database file path
	Path string
	// MigrationsPath is the path to migrations directory (file:// URL format)
	// Default: "file://store/migrations"
	MigrationsPath string
	// ConnectionConfig allows customizing the SQLite connection
	ConnectionConfig *ConnectionConfig
}

// DefaultDatabaseConfig returns sensible defaults for the database.
func DefaultDatabaseConfig(path string) DatabaseConfig {
	return DatabaseConfig{
		Path:             path,
		MigrationsPath:   "file://store/migrations",
		ConnectionConfig: nil, // Use defaults
	}
}

// NewDatabase creates a new Database instance with default configuration.
// The database file and its parent directories are created if they don't exist.
// Migrations are NOT applied automatically; call Migrate.
func NewDatabase(path string) (*Database, error) {
	return NewDatabaseWithConfig(DefaultDatabaseConfig(path))
}

// NewDatabaseWithConfig creates a new Database instance with custom configuration.
func NewDatabaseWithConfig(config DatabaseConfig) (*Database, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("store: database path is required")
	}

	// Ensure parent directory exists
	dir := filepath.Dir(config.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: failed to create database directory %s: %w", dir, err)
		}
	}

	var connConfig ConnectionConfig
	if config.ConnectionConfig != nil {
		connConfig = *config.ConnectionConfig
	} else {
		connConfig = DefaultConnectionConfig(config.Path)
	}

	conn, err := NewSQLiteConnection(connConfig)
	if err != nil {
		return nil, fmt.Errorf("store: failed to create database connection: %w", err)
	}

	migrationsPath := config.MigrationsPath
	if migrationsPath == "" {
		migrationsPath = "file://store/migrations"
	}

	database := &Database{
		db:             conn,
		path:           config.Path,
		migrationsPath: migrationsPath,
	}

	return database, nil
}

// Migrate runs all pending database migrations.
// Safe to call multiple times; only pending migrations are applied.
//
// Note: migrations run on a separate connection because golang-migrate
// takes ownership of the connection it is given.
func (d *Database) Migrate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := MigrateUpFromPath(d.path, d.migrationsPath); err != nil {
		return fmt.Errorf("store: migration failed: %w", err)
	}

	return nil
}

// MigrateWithPath runs migrations from a specific path.
func (d *Database) MigrateWithPath(migrationsPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := MigrateUpFromPath(d.path, migrationsPath); err != nil {
		return fmt.Errorf("store: migration failed: %w", err)
	}

	return nil
}

// DB returns the underlying sql.DB connection for use by repositories.
// The returned connection should not be closed directly; use Database.Close() instead.
func (d *Database) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// Close gracefully closes the database connection.
// After Close is called, the Database instance should not be used.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	if err := d.db.Close(); err != nil {
		return fmt.Errorf("store: failed to close database: %w", err)
	}

	d.db = nil
	return nil
}

// Ping verifies the database connection is alive.
// This is useful for health checks.
func (d *Database) Ping() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("store: database connection is closed")
	}

	return d.db.Ping()
}

// Stats returns database connection pool statistics.
func (d *Database) Stats() sql.DBStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return sql.DBStats{}
	}

	return d.db.Stats()
}

// Exec executes a query without returning any rows.
func (d *Database) Exec(query string, args ...interface{}) (sql.Result, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil, fmt.Errorf("store: database connection is closed")
	}

	return d.db.Exec(query, args...)
}

// Query executes a query that returns rows.
func (d *Database) Query(query string, args ...interface{}) (*sql.Rows, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil, fmt.Errorf("store: database connection is closed")
	}

	return d.db.Query(query, args...)
}

// QueryRow executes a query that returns at most one row.
func (d *Database) QueryRow(query string, args ...interface{}) *sql.Row {
	d.mu.RLock()
	defer d.mu.RUnlock()

	// QueryRow never returns an error, it defers error to Scan
	return d.db.QueryRow(query, args...)
}

// Begin starts a new transaction.
func (d *Database) Begin() (*sql.Tx, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil, fmt.Errorf("store: database connection is closed")
	}

	return d.db.Begin()
}
