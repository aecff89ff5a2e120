package auth

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parishworks/chms-core/internal/audit"
)

// testDB creates a temporary SQLite database with the auth schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'viewer',
			full_name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			last_login TEXT,
			failed_login_attempts INTEGER NOT NULL DEFAULT 0,
			locked_until TEXT
		);

		CREATE TABLE user_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			session_token TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			ip_address TEXT,
			user_agent TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			action TEXT NOT NULL,
			resource TEXT,
			resource_id INTEGER,
			details TEXT,
			ip_address TEXT,
			timestamp TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// seedTestUser inserts a user with password "password123" and returns it.
func seedTestUser(t *testing.T, db *sql.DB, username string, role Role) *User {
	t.Helper()

	hash, salt, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		PasswordHash: hash,
		Salt:         salt,
		Role:         role,
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}

// newTestService wires a full auth service over the test database.
func newTestService(t *testing.T, db *sql.DB) *Service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewSafeRecorder(audit.NewRecorder(db), logger)
	return NewService(NewUserRepository(db), NewSessionRepository(db), recorder, logger, ServiceConfig{})
}

// countAuditEvents returns how many audit rows exist for an action.
func countAuditEvents(t *testing.T, db *sql.DB, action string) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_log WHERE action = ?", action).Scan(&n); err != nil {
		t.Fatalf("counting audit events: %v", err)
	}
	return n
}
