// Package persistence keeps the session identity (user, token, location) in a
// local SQLite database so it survives process restarts.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/AncaElena10/MERN-jobify/app/store"
)

// session entry keys, stored as three independent rows
const (
	keyUser     = "user"
	keyToken    = "token"
	keyLocation = "location"
)

// SessionStore implements durable session storage using SQLite.
type SessionStore struct {
	db *sqlx.DB
}

// NewSessionStore opens (or creates) the session database.
func NewSessionStore(dbPath string) (*SessionStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return &SessionStore{db: db}, nil
}

// Initialize creates the database schema.
func (s *SessionStore) Initialize() error {
	query := `CREATE TABLE IF NOT EXISTS session (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save writes the three session entries. The writes are independent and not
// wrapped in a transaction, matching the entry-per-key storage contract.
func (s *SessionStore) Save(user *store.User, token, location string) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	entries := []struct{ key, value string }{
		{keyUser, string(blob)},
		{keyToken, token},
		{keyLocation, location},
	}
	for _, e := range entries {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`, e.key, e.value)
		if err != nil {
			return fmt.Errorf("failed to save session entry %s: %w", e.key, err)
		}
	}
	return nil
}

// Load reads the persisted session back. Any missing or corrupt entry fails
// open to the logged-out result (nil user, empty token), never an error, so a
// damaged session database can't prevent startup.
func (s *SessionStore) Load() (user *store.User, token, location string) {
	blob, err := s.get(keyUser)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[WARN] failed to read persisted user, starting logged out: %v", err)
		}
		return nil, "", ""
	}

	user = &store.User{}
	if err := json.Unmarshal([]byte(blob), user); err != nil {
		log.Printf("[WARN] corrupt persisted user, starting logged out: %v", err)
		return nil, "", ""
	}

	token, err = s.get(keyToken)
	if err != nil || token == "" {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[WARN] failed to read persisted token, starting logged out: %v", err)
		}
		return nil, "", ""
	}

	// location is optional, absence doesn't invalidate the session
	if location, err = s.get(keyLocation); err != nil {
		location = ""
	}

	return user, token, location
}

// Clear removes the three session entries, independently like Save.
func (s *SessionStore) Clear() error {
	for _, key := range []string{keyUser, keyToken, keyLocation} {
		if _, err := s.db.Exec(`DELETE FROM session WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to remove session entry %s: %w", key, err)
		}
	}
	return nil
}

func (s *SessionStore) get(key string) (string, error) {
	var value string
	if err := s.db.Get(&value, `SELECT value FROM session WHERE key = ?`, key); err != nil {
		return "", err
	}
	return value, nil
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
