package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Repository defines the interface for membership persistence.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context) ([]Member, error)
	ListByStatus(ctx context.Context, status string) ([]Member, error)
	ListBaptized(ctx context.Context) ([]Member, error)
	Search(ctx context.Context, query string) ([]Member, error)
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*Statistics, error)
	UpcomingBirthdays(ctx context.Context, days int) ([]Birthday, error)
}

const memberColumns = `id, name, mobile_no, email_address, physical_address, join_date, date_of_birth,
	gender, membership_status, baptized, baptism_date, emergency_contact_name,
	emergency_contact_number, notes, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed member repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new membership record.
func (r *SQLiteRepository) Create(ctx context.Context, m *Member) error {
	if m.MembershipStatus == "" {
		m.MembershipStatus = StatusActive
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO members (name, mobile_no, email_address, physical_address, join_date, date_of_birth,
		 gender, membership_status, baptized, baptism_date, emergency_contact_name,
		 emergency_contact_number, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, nullStr(m.MobileNo), nullStr(m.EmailAddress), nullStr(m.PhysicalAddress),
		m.JoinDate, m.DateOfBirth, nullStr(m.Gender), m.MembershipStatus,
		boolToInt(m.Baptized), nullStr(m.BaptismDate),
		nullStr(m.EmergencyContactName), nullStr(m.EmergencyContactNumber), nullStr(m.Notes),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating member: %w", err)
	}

	m.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading new member id: %w", err)
	}
	return nil
}

// GetByID retrieves a member by their unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Member, error) {
	return scanMemberFrom(r.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id = ?", id))
}

// GetByEmail retrieves the first member with the given email address.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return scanMemberFrom(r.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE email_address = ? ORDER BY id LIMIT 1", email))
}

// List returns all members ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Member, error) {
	return r.listWhere(ctx, "", nil)
}

// ListByStatus returns members with the given membership status.
func (r *SQLiteRepository) ListByStatus(ctx context.Context, status string) ([]Member, error) {
	return r.listWhere(ctx, "WHERE membership_status = ?", []any{status})
}

// ListBaptized returns all baptized members.
func (r *SQLiteRepository) ListBaptized(ctx context.Context) ([]Member, error) {
	return r.listWhere(ctx, "WHERE baptized = 1", nil)
}

// Search matches members by name, email address, or mobile number.
func (r *SQLiteRepository) Search(ctx context.Context, query string) ([]Member, error) {
	pattern := "%" + query + "%"
	return r.listWhere(ctx,
		"WHERE name LIKE ? OR email_address LIKE ? OR mobile_no LIKE ?",
		[]any{pattern, pattern, pattern})
}

func (r *SQLiteRepository) listWhere(ctx context.Context, where string, args []any) ([]Member, error) {
	q := "SELECT " + memberColumns + " FROM members " + where + " ORDER BY name ASC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMemberFrom(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating members: %w", err)
	}

	if members == nil {
		members = []Member{}
	}
	return members, nil
}

// Update replaces a member's mutable fields.
func (r *SQLiteRepository) Update(ctx context.Context, m *Member) error {
	now := time.Now().UTC()
	m.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE members SET name = ?, mobile_no = ?, email_address = ?, physical_address = ?,
		 join_date = ?, date_of_birth = ?, gender = ?, membership_status = ?, baptized = ?,
		 baptism_date = ?, emergency_contact_name = ?, emergency_contact_number = ?, notes = ?,
		 updated_at = ? WHERE id = ?`,
		m.Name, nullStr(m.MobileNo), nullStr(m.EmailAddress), nullStr(m.PhysicalAddress),
		m.JoinDate, m.DateOfBirth, nullStr(m.Gender), m.MembershipStatus,
		boolToInt(m.Baptized), nullStr(m.BaptismDate),
		nullStr(m.EmergencyContactName), nullStr(m.EmergencyContactNumber), nullStr(m.Notes),
		now.Format(time.RFC3339), m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating member: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Delete removes a membership record. Transactions referencing the
// member keep their member_id; history is not rewritten.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Statistics summarises the membership roll in a single pass.
func (r *SQLiteRepository) Statistics(ctx context.Context) (*Statistics, error) {
	members, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stats := &Statistics{
		ByStatus: make(map[string]int),
		ByGender: make(map[string]int),
	}
	for i := range members {
		m := &members[i]
		stats.Total++
		stats.ByStatus[m.MembershipStatus]++
		if m.MembershipStatus == StatusActive {
			stats.Active++
		}
		if m.Baptized {
			stats.Baptized++
		}
		if m.Gender != "" {
			stats.ByGender[m.Gender]++
		}
		if joined, err := time.Parse(DateLayout, m.JoinDate); err == nil {
			if joined.Year() == now.Year() {
				stats.NewThisYear++
				if joined.Month() == now.Month() {
					stats.NewThisMonth++
				}
			}
		}
	}
	return stats, nil
}

// UpcomingBirthdays returns active members whose birthday falls within
// the next N days, soonest first. Year boundaries are handled by
// projecting each birth date onto the current or next year.
func (r *SQLiteRepository) UpcomingBirthdays(ctx context.Context, days int) ([]Birthday, error) {
	members, err := r.ListByStatus(ctx, StatusActive)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	cutoff := today.AddDate(0, 0, days)

	var upcoming []Birthday
	for i := range members {
		m := &members[i]
		dob, err := time.Parse(DateLayout, m.DateOfBirth)
		if err != nil {
			continue
		}
		next := time.Date(today.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
		if next.Before(today) {
			next = next.AddDate(1, 0, 0)
		}
		if next.After(cutoff) {
			continue
		}
		upcoming = append(upcoming, Birthday{
			Member:   *m,
			Date:     next,
			TurnsAge: next.Year() - dob.Year(),
		})
	}

	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Date.Before(upcoming[j].Date) })
	if upcoming == nil {
		upcoming = []Birthday{}
	}
	return upcoming, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanMemberFrom(s scanner) (*Member, error) {
	var m Member
	var mobile, email, address, gender, baptismDate, ecName, ecNumber, notes sql.NullString
	var baptized int
	var createdAt, updatedAt string

	err := s.Scan(&m.ID, &m.Name, &mobile, &email, &address, &m.JoinDate, &m.DateOfBirth,
		&gender, &m.MembershipStatus, &baptized, &baptismDate, &ecName, &ecNumber, &notes,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("scanning member: %w", err)
	}

	m.MobileNo = mobile.String
	m.EmailAddress = email.String
	m.PhysicalAddress = address.String
	m.Gender = gender.String
	m.Baptized = baptized != 0
	m.BaptismDate = baptismDate.String
	m.EmergencyContactName = ecName.String
	m.EmergencyContactNumber = ecNumber.String
	m.Notes = notes.String
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &m, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
