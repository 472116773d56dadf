package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSession is returned when no one is logged in.
var ErrNoSession = errors.New("not logged in (run 'mspdesk login')")

// Session is the saved bearer token for one backend.
type Session struct {
	APIURL    string
	Token     string
	Email     string
	ExpiresAt *time.Time
	SavedAt   time.Time
}

// Expired reports whether the token's expiry has passed.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// SaveSession replaces the stored session.
func (db *DB) SaveSession(s Session) error {
	if s.Token == "" {
		return fmt.Errorf("session token is required")
	}
	_, err := db.Exec(`
		INSERT INTO session (id, api_url, token, email, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			api_url = excluded.api_url,
			token = excluded.token,
			email = excluded.email,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at`,
		s.APIURL, s.Token, s.Email, s.ExpiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session or ErrNoSession.
func (db *DB) LoadSession() (*Session, error) {
	s := &Session{}
	var email sql.NullString
	var expires sql.NullTime
	err := db.QueryRow(`SELECT api_url, token, email, expires_at, saved_at FROM session WHERE id = 1`).
		Scan(&s.APIURL, &s.Token, &email, &expires, &s.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.Email = email.String
	if expires.Valid {
		s.ExpiresAt = &expires.Time
	}
	return s, nil
}

// ClearSession forgets the stored token. Clearing with no session is not
// an error.
func (db *DB) ClearSession() error {
	if _, err := db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
