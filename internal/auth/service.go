package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parishworks/chms-core/internal/audit"
)

// Default security parameters, used when the config leaves them zero.
const (
	defaultSessionTTL       = 24 * time.Hour
	defaultLockoutThreshold = 5
	defaultLockoutWindow    = 30 * time.Minute
)

// Audit actions emitted by the auth service.
const (
	actionLoginSuccess    = "LOGIN_SUCCESS"
	actionLoginFailed     = "LOGIN_FAILED"
	actionLogout          = "LOGOUT"
	actionUserCreated     = "USER_CREATED"
	actionUserUpdated     = "USER_UPDATED"
	actionPasswordChanged = "PASSWORD_CHANGED"
	actionSessionsRevoked = "SESSIONS_REVOKED"
)

// ServiceConfig carries the tunable security parameters.
type ServiceConfig struct {
	SessionTTL       time.Duration
	LockoutThreshold int
	LockoutWindow    time.Duration
}

// Service implements authentication, session management, and
// authorisation on top of the user and session repositories.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	audit    *audit.SafeRecorder
	logger   *slog.Logger

	sessionTTL       time.Duration
	lockoutThreshold int
	lockoutWindow    time.Duration
}

// NewService creates the auth service. Zero config fields fall back to
// the package defaults.
func NewService(users UserRepository, sessions SessionRepository, recorder *audit.SafeRecorder, logger *slog.Logger, cfg ServiceConfig) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.LockoutThreshold <= 0 {
		cfg.LockoutThreshold = defaultLockoutThreshold
	}
	if cfg.LockoutWindow <= 0 {
		cfg.LockoutWindow = defaultLockoutWindow
	}
	return &Service{
		users:            users,
		sessions:         sessions,
		audit:            recorder,
		logger:           logger,
		sessionTTL:       cfg.SessionTTL,
		lockoutThreshold: cfg.LockoutThreshold,
		lockoutWindow:    cfg.LockoutWindow,
	}
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	User        SessionUser  `json:"user"`
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Permissions []Capability `json:"permissions"`
}

// Login verifies credentials and opens a session. Unknown usernames and
// wrong passwords both surface as ErrInvalidCredentials; lockout and
// deactivation are only reported for accounts that exist, after the
// lock check, so the distinction leaks nothing about unknown names.
func (s *Service) Login(ctx context.Context, username, password string, meta SessionMeta) (*LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.audit.Record(ctx, audit.Entry{
				Action:    actionLoginFailed,
				Resource:  "auth",
				Details:   "unknown username: " + username,
				IPAddress: meta.IPAddress,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	now := time.Now().UTC()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		s.recordLoginFailure(ctx, u, meta, "account locked")
		return nil, ErrAccountLocked
	}
	if !u.IsActive {
		s.recordLoginFailure(ctx, u, meta, "account deactivated")
		return nil, ErrAccountInactive
	}

	if !VerifyPassword(password, u.PasswordHash, u.Salt) {
		attempts := u.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if attempts >= s.lockoutThreshold {
			t := now.Add(s.lockoutWindow)
			lockedUntil = &t
		}
		if err := s.users.RecordLoginFailure(ctx, u.ID, attempts, lockedUntil); err != nil {
			s.logger.Error("recording login failure", "user_id", u.ID, "error", err)
		}
		s.recordLoginFailure(ctx, u, meta, fmt.Sprintf("invalid password (attempt %d)", attempts))
		return nil, ErrInvalidCredentials
	}

	if err := s.users.RecordLoginSuccess(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("recording login success: %w", err)
	}

	session, err := s.sessions.Create(ctx, u.ID, now.Add(s.sessionTTL), meta)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:    &u.ID,
		Action:    actionLoginSuccess,
		Resource:  "auth",
		IPAddress: meta.IPAddress,
	})
	s.logger.Info("user logged in", "user_id", u.ID, "username", u.Username)

	return &LoginResult{
		User: SessionUser{
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
			IsActive: u.IsActive,
		},
		Token:       session.Token,
		ExpiresAt:   session.ExpiresAt,
		Permissions: PermissionsForRole(u.Role),
	}, nil
}

func (s *Service) recordLoginFailure(ctx context.Context, u *User, meta SessionMeta, reason string) {
	s.audit.Record(ctx, audit.Entry{
		UserID:    &u.ID,
		Action:    actionLoginFailed,
		Resource:  "auth",
		Details:   reason,
		IPAddress: meta.IPAddress,
	})
}

// Logout revokes the session named by the token. Unknown tokens are a
// no-op so logout stays idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return nil
		}
		return err
	}

	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}

	if session.IsActive {
		s.audit.Record(ctx, audit.Entry{
			UserID:   &session.UserID,
			Action:   actionLogout,
			Resource: "auth",
		})
	}
	return nil
}

// ValidateSession resolves a token to the current user snapshot.
func (s *Service) ValidateSession(ctx context.Context, token string) (*SessionUser, error) {
	return s.sessions.Validate(ctx, token)
}

// Authorize resolves a token and checks the capability in one step.
// A nil user means the session itself is invalid; a non-nil user with
// ok false means the session is fine but the role lacks the capability.
func (s *Service) Authorize(ctx context.Context, token string, cap Capability) (*SessionUser, bool) {
	su, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, false
	}
	return su, HasPermission(su.Role, cap)
}

// CreateUserParams carries the fields for a new account.
type CreateUserParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// CreateUser validates, hashes, and stores a new account. The actor is
// the administrator performing the operation, nil during bootstrap.
func (s *Service) CreateUser(ctx context.Context, actorID *int64, p CreateUserParams) (*User, error) {
	if err := ValidateNewUser(p.Username, p.Email, p.Role); err != nil {
		return nil, err
	}
	if len(p.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, salt, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     p.Username,
		Email:        p.Email,
		FullName:     p.FullName,
		PasswordHash: hash,
		Salt:         salt,
		Role:         p.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionUserCreated,
		Resource:   "users",
		ResourceID: &u.ID,
		Details:    fmt.Sprintf("created user %s with role %s", u.Username, u.Role),
	})
	s.logger.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

// UpdateUser applies a partial update to an account. Deactivating an
// account also revokes its open sessions.
func (s *Service) UpdateUser(ctx context.Context, actorID *int64, id int64, upd UserUpdate) error {
	if err := s.users.Update(ctx, id, upd); err != nil {
		return err
	}

	if upd.IsActive != nil && !*upd.IsActive {
		if n, err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
			s.logger.Error("revoking sessions for deactivated user", "user_id", id, "error", err)
		} else if n > 0 {
			s.logger.Info("revoked sessions for deactivated user", "user_id", id, "count", n)
		}
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionUserUpdated,
		Resource:   "users",
		ResourceID: &id,
	})
	return nil
}

// ChangePassword verifies the current password before storing a new
// hash and salt, then revokes the user's sessions so every client has
// to sign in again with the new credential.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(currentPassword, u.PasswordHash, u.Salt) {
		return ErrWrongPassword
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, salt, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, salt); err != nil {
		return err
	}

	if n, err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Error("revoking sessions after password change", "user_id", userID, "error", err)
	} else if n > 0 {
		s.logger.Info("revoked sessions after password change", "user_id", userID, "count", n)
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     actionPasswordChanged,
		Resource:   "users",
		ResourceID: &userID,
	})
	return nil
}

// RevokeUserSessions force-revokes every open session for an account,
// signing the user out everywhere. The account itself stays active.
func (s *Service) RevokeUserSessions(ctx context.Context, actorID *int64, id int64) (int64, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return 0, err
	}

	n, err := s.sessions.RevokeAllForUser(ctx, id)
	if err != nil {
		return 0, err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionSessionsRevoked,
		Resource:   "users",
		ResourceID: &id,
	})
	return n, nil
}

// GetUser retrieves a single account by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}

// CleanupExpiredSessions removes session rows past their expiry. Meant
// to run periodically from the main loop.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}
