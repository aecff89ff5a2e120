package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash, salt string) error
	RecordLoginFailure(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

const userColumns = `id, username, email, password_hash, salt, role, full_name, is_active,
	created_at, updated_at, last_login, failed_login_attempts, locked_until`

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new user account. Duplicate username and email are
// checked up front so the caller gets a specific sentinel rather than
// a generic constraint error.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ?", user.Username).Scan(&n); err != nil {
		return fmt.Errorf("checking username: %w", err)
	}
	if n > 0 {
		return ErrUsernameExists
	}
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ?", user.Email).Scan(&n); err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if n > 0 {
		return ErrEmailExists
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, salt, role, full_name, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Salt,
		string(user.Role), user.FullName, boolToInt(user.IsActive),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		// Concurrent insert can still race past the COUNT checks.
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return ErrEmailExists
			}
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading new user id: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByUsername retrieves a user by their username.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

// List returns all users, newest account first.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// Update applies the non-nil fields of a partial update. An empty
// update returns ErrNoFields without touching the store.
func (r *SQLiteUserRepository) Update(ctx context.Context, id int64, upd UserUpdate) error {
	if upd.IsEmpty() {
		return ErrNoFields
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Role != nil {
		if !IsValidRole(*upd.Role) {
			return ErrInvalidRole
		}
		sets = append(sets, "role = ?")
		args = append(args, string(*upd.Role))
	}
	if upd.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *upd.FullName)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, boolToInt(*upd.IsActive))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("updating user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword changes a user's password hash and salt together.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash, salt string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ?, updated_at = ? WHERE id = ?`,
		passwordHash, salt, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordLoginFailure stores the new failure count and, once the lockout
// threshold is reached, the time until which the account stays locked.
func (r *SQLiteUserRepository) RecordLoginFailure(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error {
	var until any
	if lockedUntil != nil {
		until = lockedUntil.UTC().Format(time.RFC3339)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = ?, locked_until = ? WHERE id = ?`,
		attempts, until, id,
	)
	if err != nil {
		return fmt.Errorf("recording login failure: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordLoginSuccess clears the failure counter and lock, and stamps
// the last login time.
func (r *SQLiteUserRepository) RecordLoginSuccess(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = 0, locked_until = NULL, last_login = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("recording login success: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of user accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// getUser executes a query and scans a single user result.
func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	return scanUserFrom(r.db.QueryRowContext(ctx, query, args...))
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanUserFrom scans a user from any scanner (Row or Rows).
func scanUserFrom(s scanner) (*User, error) {
	var u User
	var role string
	var isActive int
	var createdAt, updatedAt string
	var lastLogin, lockedUntil sql.NullString

	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt,
		&role, &u.FullName, &isActive, &createdAt, &updatedAt,
		&lastLogin, &u.FailedLoginAttempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	u.IsActive = isActive != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	u.LastLogin = parseNullTime(lastLogin)
	u.LockedUntil = parseNullTime(lockedUntil)

	return &u, nil
}

// Helper functions.

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
