package auth

import (
	"errors"
	"strings"
	"time"
)

// Validation limits for user accounts.
const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleAdmin has every capability, including user management and
	// system settings.
	RoleAdmin Role = "admin"

	// RoleTreasurer manages finances: full transaction access plus
	// member and report access.
	RoleTreasurer Role = "treasurer"

	// RoleSecretary manages membership records and can view finances
	// and generate reports.
	RoleSecretary Role = "secretary"

	// RoleMember has read access to dashboards, members, finances,
	// and reports.
	RoleMember Role = "member"

	// RoleViewer can only view the dashboard and reports.
	RoleViewer Role = "viewer"
)

// ValidRoles is the closed set of roles a user account may hold.
var ValidRoles = []Role{RoleAdmin, RoleTreasurer, RoleSecretary, RoleMember, RoleViewer}

// IsValidRole returns true if the role is one of the known roles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents an authenticated account.
// PasswordHash and Salt are never serialised.
type User struct {
	ID                  int64      `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name"`
	PasswordHash        string     `json:"-"`
	Salt                string     `json:"-"`
	Role                Role       `json:"role"`
	IsActive            bool       `json:"is_active"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
}

// Session represents a stored opaque session token.
// The raw token is a bearer credential and is never serialised.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// SessionMeta carries optional client metadata attached to a session.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// SessionUser is the user snapshot joined at session validation time.
// It may go stale relative to concurrent profile edits until the next
// validation call re-joins the tables.
type SessionUser struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// UserUpdate is a partial update of a user's mutable fields.
// Only non-nil fields are applied; the allowed-field set is the type itself.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsEmpty returns true if no field of the update is set.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.Role == nil && u.FullName == nil && u.IsActive == nil
}

// ValidateNewUser checks the shape of a new account's fields before any
// store access. Password length is checked separately by the service,
// which owns hashing.
func ValidateNewUser(username, email string, role Role) error {
	if len(username) < minUsernameLength {
		return ErrUsernameTooShort
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if !IsValidRole(role) {
		return ErrInvalidRole
	}
	return nil
}

// Sentinel errors for auth operations.
var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password, deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrAccountLocked    = errors.New("account is temporarily locked due to too many failed login attempts")
	ErrAccountInactive  = errors.New("account is deactivated")
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameExists   = errors.New("username already exists")
	ErrEmailExists      = errors.New("email already exists")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrInvalidEmail     = errors.New("valid email address is required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrWrongPassword    = errors.New("current password is incorrect")
	ErrNoFields         = errors.New("no valid fields to update")
	ErrSessionInvalid   = errors.New("session is invalid or expired")
)
