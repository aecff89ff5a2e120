package auth

import (
	"context"
	"fmt"
	"log/slog"
)

// Default administrator account created on an empty database.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	defaultAdminEmail    = "admin@church.local"
	defaultAdminFullName = "System Administrator"
)

// SeedAdmin creates the default administrator account if and only if
// the users table is empty. It returns true when an account was
// created. The well-known credentials exist so a fresh install is
// reachable; the startup log insists they be changed.
func SeedAdmin(ctx context.Context, svc *Service, users UserRepository, logger *slog.Logger) (bool, error) {
	count, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	u, err := svc.CreateUser(ctx, nil, CreateUserParams{
		Username: DefaultAdminUsername,
		Email:    defaultAdminEmail,
		Password: DefaultAdminPassword,
		FullName: defaultAdminFullName,
		Role:     RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("seeding admin account: %w", err)
	}

	logger.Warn("created default admin account, change the password immediately",
		"user_id", u.ID,
		"username", DefaultAdminUsername)
	return true, nil
}
