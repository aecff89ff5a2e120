package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// sessionTokenBytes is the entropy of a session token before encoding.
const sessionTokenBytes = 32

// SessionRepository defines the interface for session persistence.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, expiresAt time.Time, meta SessionMeta) (*Session, error)
	GetByToken(ctx context.Context, token string) (*Session, error)
	Validate(ctx context.Context, token string) (*SessionUser, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// SQLiteSessionRepository implements SessionRepository using SQLite.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite-backed session repository.
func NewSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Create stores a new session with a freshly generated opaque token.
func (r *SQLiteSessionRepository) Create(ctx context.Context, userID int64, expiresAt time.Time, meta SessionMeta) (*Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO user_sessions (user_id, session_token, created_at, expires_at, is_active, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		userID, token, now.Format(time.RFC3339), expiresAt.UTC().Format(time.RFC3339),
		nullString(meta.IPAddress), nullString(meta.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new session id: %w", err)
	}

	return &Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expiresAt.UTC(),
		IsActive:  true,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}, nil
}

// GetByToken retrieves a session row regardless of its active state.
func (r *SQLiteSessionRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, session_token, created_at, expires_at, is_active, ip_address, user_agent
		 FROM user_sessions WHERE session_token = ?`, token)

	var s Session
	var createdAt, expiresAt string
	var isActive int
	var ip, agent sql.NullString

	err := row.Scan(&s.ID, &s.UserID, &s.Token, &createdAt, &expiresAt, &isActive, &ip, &agent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	s.IsActive = isActive != 0
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	s.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt) //nolint:errcheck // format is controlled
	if ip.Valid {
		s.IPAddress = ip.String
	}
	if agent.Valid {
		s.UserAgent = agent.String
	}
	return &s, nil
}

// Validate checks that a token names an active, unexpired session and
// returns the joined user snapshot. A session found past its expiry is
// flipped inactive on the spot rather than waiting for cleanup.
func (r *SQLiteSessionRepository) Validate(ctx context.Context, token string) (*SessionUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.expires_at, u.id, u.username, u.email, u.full_name, u.role, u.is_active
		 FROM user_sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.session_token = ? AND s.is_active = 1`, token)

	var sessionID int64
	var expiresAt string
	var su SessionUser
	var role string
	var userActive int

	err := row.Scan(&sessionID, &expiresAt, &su.UserID, &su.Username, &su.Email, &su.FullName, &role, &userActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("validating session: %w", err)
	}

	expiry, _ := time.Parse(time.RFC3339, expiresAt) //nolint:errcheck // format is controlled
	if !time.Now().UTC().Before(expiry) {
		_, _ = r.db.ExecContext(ctx, //nolint:errcheck // lazy expiry is best effort
			"UPDATE user_sessions SET is_active = 0 WHERE id = ?", sessionID)
		return nil, ErrSessionInvalid
	}

	su.Role = Role(role)
	su.IsActive = userActive != 0
	if !su.IsActive {
		return nil, ErrSessionInvalid
	}
	return &su, nil
}

// Revoke deactivates a session. Revoking an unknown or already revoked
// token is not an error.
func (r *SQLiteSessionRepository) Revoke(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE user_sessions SET is_active = 0 WHERE session_token = ?", token)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// RevokeAllForUser deactivates every session belonging to a user and
// returns how many were still active.
func (r *SQLiteSessionRepository) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE user_sessions SET is_active = 0 WHERE user_id = ? AND is_active = 1", userID)
	if err != nil {
		return 0, fmt.Errorf("revoking user sessions: %w", err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return n, nil
}

// DeleteExpired removes session rows whose expiry has passed.
func (r *SQLiteSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE expires_at < ?", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return n, nil
}

// generateSessionToken produces an opaque URL-safe token with 256 bits
// of entropy.
func generateSessionToken() (string, error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
