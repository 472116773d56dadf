package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type ViewMode string

const (
	ViewList  ViewMode = "list"
	ViewBoard ViewMode = "board"
)

func (m ViewMode) IsValid() bool {
	return m == ViewList || m == ViewBoard
}

// Preference returns the stored value for key, or def when unset.
func (db *DB) Preference(key, def string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference %q: %w", key, err)
	}
	return value, nil
}

// SetPreference stores value under key, replacing any previous value.
func (db *DB) SetPreference(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set preference %q: %w", key, err)
	}
	return nil
}

func viewModeKey(page string) string {
	return "view_mode." + page
}

// ViewMode returns the persisted view mode for a page, defaulting to list.
// An unrecognized stored value also reads as list.
func (db *DB) ViewMode(page string) (ViewMode, error) {
	v, err := db.Preference(viewModeKey(page), string(ViewList))
	if err != nil {
		return ViewList, err
	}
	mode := ViewMode(v)
	if !mode.IsValid() {
		return ViewList, nil
	}
	return mode, nil
}

// SetViewMode persists the view mode for a page.
func (db *DB) SetViewMode(page string, mode ViewMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid view mode: %s (use list or board)", mode)
	}
	return db.SetPreference(viewModeKey(page), string(mode))
}
