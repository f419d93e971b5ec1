// Package store implements the durable client-local state shared by all
// components: the authentication hint, the bearer token, and the pending
// task id. Values here outlive a single process run; they are hints and
// resume points, never the authoritative session state.
package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Storage keys. Presence of a credential key is only a rendering hint;
// the session verifier's round-trip decides the real state.
const (
	keyAuthHint    = "authenticated"
	keyToken       = "bearer_token"
	keyPendingTask = "pending_task_id"
)

// Store is the durable key-value state consulted by the session, the
// credential transport, the route guard, and the scan tracker.
type Store interface {
	// Token returns the stored bearer token, or "" when absent.
	Token() (string, error)
	SetToken(token string) error

	// AuthHint reports whether a previous verification succeeded.
	AuthHint() (bool, error)
	SetAuthHint(v bool) error

	// ClearCredentials erases the token and the auth hint together.
	ClearCredentials() error

	// PendingTask returns the persisted task id, or "" when absent.
	PendingTask() (string, error)
	SetPendingTask(id string) error
	ClearPendingTask() error
}

// SQLiteStore persists state in the app_state table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by the given database connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read state key %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write state key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM app_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete state key %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Token() (string, error) {
	return s.get(keyToken)
}

func (s *SQLiteStore) SetToken(token string) error {
	if token == "" {
		return s.delete(keyToken)
	}
	return s.set(keyToken, token)
}

func (s *SQLiteStore) AuthHint() (bool, error) {
	v, err := s.get(keyAuthHint)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *SQLiteStore) SetAuthHint(v bool) error {
	if !v {
		return s.delete(keyAuthHint)
	}
	return s.set(keyAuthHint, "true")
}

func (s *SQLiteStore) ClearCredentials() error {
	if err := s.delete(keyToken); err != nil {
		return err
	}
	return s.delete(keyAuthHint)
}

func (s *SQLiteStore) PendingTask() (string, error) {
	return s.get(keyPendingTask)
}

func (s *SQLiteStore) SetPendingTask(id string) error {
	if id == "" {
		return s.delete(keyPendingTask)
	}
	return s.set(keyPendingTask, id)
}

func (s *SQLiteStore) ClearPendingTask() error {
	return s.delete(keyPendingTask)
}
