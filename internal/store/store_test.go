package store

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE app_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

// stores returns both implementations so every behavior is checked against
// each of them.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"sqlite": NewSQLiteStore(newTestDB(t)),
		"memory": NewMemoryStore(),
	}
}

func TestStore(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("token roundtrip", func(t *testing.T) {
				token, err := s.Token()
				if err != nil {
					t.Fatalf("Token failed: %v", err)
				}
				if token != "" {
					t.Errorf("expected empty token, got %q", token)
				}

				if err := s.SetToken("tok-123"); err != nil {
					t.Fatalf("SetToken failed: %v", err)
				}
				token, err = s.Token()
				if err != nil {
					t.Fatalf("Token failed: %v", err)
				}
				if token != "tok-123" {
					t.Errorf("expected tok-123, got %q", token)
				}

				if err := s.SetToken("tok-456"); err != nil {
					t.Fatalf("SetToken overwrite failed: %v", err)
				}
				token, _ = s.Token()
				if token != "tok-456" {
					t.Errorf("expected tok-456 after overwrite, got %q", token)
				}

				if err := s.SetToken(""); err != nil {
					t.Fatalf("SetToken with empty value failed: %v", err)
				}
				token, _ = s.Token()
				if token != "" {
					t.Errorf("expected empty token after erase, got %q", token)
				}
			})

			t.Run("auth hint roundtrip", func(t *testing.T) {
				hint, err := s.AuthHint()
				if err != nil {
					t.Fatalf("AuthHint failed: %v", err)
				}
				if hint {
					t.Error("expected hint to start false")
				}

				if err := s.SetAuthHint(true); err != nil {
					t.Fatalf("SetAuthHint failed: %v", err)
				}
				hint, _ = s.AuthHint()
				if !hint {
					t.Error("expected hint true after set")
				}

				if err := s.SetAuthHint(false); err != nil {
					t.Fatalf("SetAuthHint(false) failed: %v", err)
				}
				hint, _ = s.AuthHint()
				if hint {
					t.Error("expected hint false after unset")
				}
			})

			t.Run("clear credentials erases token and hint together", func(t *testing.T) {
				if err := s.SetToken("tok"); err != nil {
					t.Fatalf("SetToken failed: %v", err)
				}
				if err := s.SetAuthHint(true); err != nil {
					t.Fatalf("SetAuthHint failed: %v", err)
				}

				if err := s.ClearCredentials(); err != nil {
					t.Fatalf("ClearCredentials failed: %v", err)
				}

				token, _ := s.Token()
				if token != "" {
					t.Errorf("expected token cleared, got %q", token)
				}
				hint, _ := s.AuthHint()
				if hint {
					t.Error("expected hint cleared")
				}
			})

			t.Run("clear credentials is idempotent", func(t *testing.T) {
				if err := s.ClearCredentials(); err != nil {
					t.Errorf("ClearCredentials on empty store failed: %v", err)
				}
			})

			t.Run("pending task roundtrip", func(t *testing.T) {
				id, err := s.PendingTask()
				if err != nil {
					t.Fatalf("PendingTask failed: %v", err)
				}
				if id != "" {
					t.Errorf("expected no pending task, got %q", id)
				}

				if err := s.SetPendingTask("task-abc"); err != nil {
					t.Fatalf("SetPendingTask failed: %v", err)
				}
				id, _ = s.PendingTask()
				if id != "task-abc" {
					t.Errorf("expected task-abc, got %q", id)
				}

				if err := s.ClearPendingTask(); err != nil {
					t.Fatalf("ClearPendingTask failed: %v", err)
				}
				id, _ = s.PendingTask()
				if id != "" {
					t.Errorf("expected pending task cleared, got %q", id)
				}
			})

			t.Run("pending task survives credential erase", func(t *testing.T) {
				if err := s.SetToken("tok"); err != nil {
					t.Fatalf("SetToken failed: %v", err)
				}
				if err := s.SetPendingTask("task-xyz"); err != nil {
					t.Fatalf("SetPendingTask failed: %v", err)
				}

				if err := s.ClearCredentials(); err != nil {
					t.Fatalf("ClearCredentials failed: %v", err)
				}

				id, _ := s.PendingTask()
				if id != "task-xyz" {
					t.Errorf("expected pending task untouched, got %q", id)
				}
				if err := s.ClearPendingTask(); err != nil {
					t.Fatalf("ClearPendingTask failed: %v", err)
				}
			})
		})
	}
}
