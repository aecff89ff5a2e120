package finance

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

// testDB creates a temporary SQLite database with the finance schema
// applied and the default categories seeded.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "finance-test-*.db")
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
			join_date TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			membership_status TEXT NOT NULL DEFAULT 'Active',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE income_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE expense_categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL
		);

		CREATE TABLE transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_date TEXT NOT NULL,
			transaction_type TEXT NOT NULL,
			category_id INTEGER NOT NULL,
			category_name TEXT NOT NULL,
			amount REAL NOT NULL,
			description TEXT,
			member_id INTEGER,
			created_at TEXT NOT NULL,
			FOREIGN KEY (member_id) REFERENCES members(id)
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

		INSERT INTO income_categories (name) VALUES ('Tithes'), ('Offerings'), ('Donations');
		INSERT INTO expense_categories (name) VALUES ('Utilities'), ('Salaries');
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// newTestService wires a finance service over the test database.
func newTestService(t *testing.T, db *sql.DB) *Service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewSafeRecorder(audit.NewRecorder(db), logger)
	return NewService(NewRepository(db), recorder, logger)
}

// seedTestMember inserts a member row and returns its ID.
func seedTestMember(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO members (name, join_date, date_of_birth, created_at, updated_at)
		 VALUES (?, '2020-01-01', '1990-01-01', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`, name)
	if err != nil {
		t.Fatalf("seeding member: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

// seedTransaction inserts an entry through the repository using the
// first matching category.
func seedTransaction(t *testing.T, db *sql.DB, date, txType string, amount float64) *Transaction {
	t.Helper()

	repo := NewRepository(db)
	cats, err := repo.ListCategories(context.Background(), txType)
	if err != nil || len(cats) == 0 {
		t.Fatalf("listing categories: %v", err)
	}

	txn := &Transaction{Date: date, Type: txType, CategoryID: cats[0].ID, Amount: amount}
	if err := repo.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("creating transaction: %v", err)
	}
	return txn
}
