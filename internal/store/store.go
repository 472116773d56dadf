// Package store provides the console's local SQLite state: recently visited
// records, view preferences and the saved session.
//
// The database is stored at ~/.mspdesk/mspdesk.db by default.
// Use Open() to connect and Init() to create the schema.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	entity_type TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	seq INTEGER NOT NULL,
	visited_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (entity_type, entity_id)
);

CREATE TABLE IF NOT EXISTS preferences (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	api_url TEXT NOT NULL,
	token TEXT NOT NULL,
	email TEXT,
	expires_at DATETIME,
	saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_visits_type_seq ON visits(entity_type, seq);
`

// DB wraps a SQL database connection with console-state operations.
type DB struct {
	*sql.DB
}

// DefaultPath returns the default database path (~/.mspdesk/mspdesk.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mspdesk", "mspdesk.db"), nil
}

// Open opens or creates the database at the given path
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 2000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// The session row holds a bearer token; keep the file private.
	if err := os.Chmod(path, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("failed to restrict database permissions: %w", err)
	}

	return &DB{db}, nil
}

// Init creates the schema.
func (db *DB) Init() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// OpenDefault opens the database at path (DefaultPath when empty) and
// initializes the schema.
func OpenDefault(path string) (*DB, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
