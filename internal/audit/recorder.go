// Package audit persists the administrative action trail.
//
// Every security-relevant operation (logins, record changes, report
// generation) is recorded as an append-only event. Recording is treated
// as best effort at call sites via SafeRecorder: a failed audit write
// must never abort the business operation it describes.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// defaultListLimit caps audit queries that don't specify a limit;
// maxListLimit caps the ones that do.
const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Entry is the caller-supplied portion of an audit event.
type Entry struct {
	// UserID is the acting user, nil for system-initiated actions.
	UserID     *int64
	Action     string
	Resource   string
	ResourceID *int64
	Details    string
	IPAddress  string
}

// Event is a stored audit record joined with the actor's identity.
type Event struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource,omitempty"`
	ResourceID *int64    `json:"resource_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// Username and FullName come from the users join and are empty for
	// system events or deleted accounts.
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Recorder defines the interface for audit persistence.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Event, error)
}

// SQLiteRecorder implements Recorder using SQLite.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewRecorder creates a new SQLite-backed audit recorder.
func NewRecorder(db *sql.DB) *SQLiteRecorder {
	return &SQLiteRecorder{db: db}
}

// Record appends one audit event.
func (r *SQLiteRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, action, resource, resource_id, details, ip_address, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(e.UserID), e.Action, nullStr(e.Resource), nullInt64(e.ResourceID),
		nullStr(e.Details), nullStr(e.IPAddress), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording audit event: %w", err)
	}
	return nil
}

// List returns the most recent events, newest first, joined with the
// acting user's username and full name where the account still exists.
func (r *SQLiteRecorder) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, a.action, a.resource, a.resource_id, a.details, a.ip_address, a.timestamp,
		        u.username, u.full_name
		 FROM audit_log a
		 LEFT JOIN users u ON u.id = a.user_id
		 ORDER BY a.timestamp DESC, a.id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var userID, resourceID sql.NullInt64
		var resource, details, ip, username, fullName sql.NullString
		var ts string

		if err := rows.Scan(&e.ID, &userID, &e.Action, &resource, &resourceID,
			&details, &ip, &ts, &username, &fullName); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}

		if userID.Valid {
			e.UserID = &userID.Int64
		}
		if resourceID.Valid {
			e.ResourceID = &resourceID.Int64
		}
		e.Resource = resource.String
		e.Details = details.String
		e.IPAddress = ip.String
		e.Username = username.String
		e.FullName = fullName.String
		e.Timestamp, _ = time.Parse(time.RFC3339, ts) //nolint:errcheck // format is controlled

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit events: %w", err)
	}

	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// SafeRecorder wraps a Recorder so that Record never returns an error:
// failures are logged and swallowed.
type SafeRecorder struct {
	inner  Recorder
	logger *slog.Logger
}

// NewSafeRecorder wraps a recorder with swallow-and-log semantics.
func NewSafeRecorder(inner Recorder, logger *slog.Logger) *SafeRecorder {
	return &SafeRecorder{inner: inner, logger: logger}
}

// Record appends an event, logging instead of propagating any failure.
func (s *SafeRecorder) Record(ctx context.Context, e Entry) {
	if err := s.inner.Record(ctx, e); err != nil {
		s.logger.Error("audit record failed",
			"action", e.Action,
			"resource", e.Resource,
			"error", err)
	}
}

// List passes through to the underlying recorder.
func (s *SafeRecorder) List(ctx context.Context, limit int) ([]Event, error) {
	return s.inner.List(ctx, limit)
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
