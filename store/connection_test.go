package store

import (
	"path/filepath"
	"testing"
)

func TestNewSQLiteConnection_EmptyPath(t *testing.T) {
	_, err := NewSQLiteConnection(ConnectionConfig{Path: ""})
	if err == nil {
		t.Fatal("expected error for empty path, got nil")
	}
}

func TestNewSQLiteConnection_WALEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		t.Fatalf("NewSQLiteConnectionWithDefaults() error: %v", err)
	}
	defer db.Close()

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("failed to read journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
	}
}

func TestNewSQLiteConnection_ForeignKeysEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		t.Fatalf("NewSQLiteConnectionWithDefaults() error: %v", err)
	}
	defer db.Close()

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("failed to read foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestDefaultConnectionConfig(t *testing.T) {
	config := DefaultConnectionConfig("/some/path.db")

	if config.Path != "/some/path.db" {
		t.Errorf("Path = %q, want %q", config.Path, "/some/path.db")
	}
	if config.BusyTimeout != 5000 {
		t.Errorf("BusyTimeout = %d, want 5000", config.BusyTimeout)
	}
	if config.MaxOpenConns != 1 {
		t.Errorf("MaxOpenConns = %d, want 1", config.MaxOpenConns)
	}
}

func TestDatabase_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifecycle.db")

	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// After Close, operations report the closed state
	if err := db.Ping(); err == nil {
		t.Error("Ping() after Close should return error")
	}
	if _, err := db.Query("SELECT 1"); err == nil {
		t.Error("Query() after Close should return error")
	}

	// Close is idempotent
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestNewDatabase_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "test.db")

	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestNewDatabase_EmptyPath(t *testing.T) {
	_, err := NewDatabase("")
	if err == nil {
		t.Fatal("expected error for empty path, got nil")
	}
}
