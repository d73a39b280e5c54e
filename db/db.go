// ABOUTME: SQLite connection setup for the desk database
// ABOUTME: Opens the file under the XDG data directory in WAL mode and applies the schema
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// dsnOptions puts the database in WAL mode and waits on a held lock instead of
// failing with "database is locked".
const dsnOptions = "?_journal_mode=WAL&_busy_timeout=5000"

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "brokerdesk", "brokerdesk.db")
}

// OpenDatabase opens the database at path, creating its directory and tables
// when missing.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	// One writer at a time; the desk already serializes persistence.
	database.SetMaxOpenConns(1)

	if err := InitSchema(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
