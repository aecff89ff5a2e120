package member

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

// testDB creates a temporary SQLite database with the member schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "member-test-*.db")
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
		CREATE TABLE members (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			mobile_no TEXT,
			email_address TEXT,
			physical_address TEXT,
			join_date TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			gender TEXT,
			membership_status TEXT NOT NULL DEFAULT 'Active',
			baptized INTEGER NOT NULL DEFAULT 0,
			baptism_date TEXT,
			emergency_contact_name TEXT,
			emergency_contact_number TEXT,
			notes TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			action TEXT NOT NULL,
			resource TEXT,
			resource_id INTEGER,
			details TEXT,
			ip_address TEXT,
			timestamp TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// newTestService wires a member service over the test database.
func newTestService(t *testing.T, db *sql.DB) *Service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewSafeRecorder(audit.NewRecorder(db), logger)
	return NewService(NewRepository(db), recorder, logger)
}

// seedTestMember inserts a member record with sensible defaults.
func seedTestMember(t *testing.T, db *sql.DB, name string) *Member {
	t.Helper()

	m := &Member{
		Name:             name,
		JoinDate:         "2020-03-15",
		DateOfBirth:      "1985-06-20",
		MembershipStatus: StatusActive,
	}
	if err := NewRepository(db).Create(context.Background(), m); err != nil {
		t.Fatalf("creating test member %s: %v", name, err)
	}
	return m
}
