package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parishworks/chms-core/internal/auth"
)

// handleLogin authenticates a user and issues a session token.
//
//	POST /api/v1/auth/login
//	{"username": "...", "password": "..."}
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	result, err := s.auth.Login(r.Context(), req.Username, req.Password, sessionMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid username or password")
		case errors.Is(err, auth.ErrAccountLocked):
			writeError(w, http.StatusLocked, ErrCodeLocked, "account is temporarily locked")
		case errors.Is(err, auth.ErrAccountInactive):
			writeError(w, http.StatusForbidden, ErrCodeForbidden, "account is deactivated")
		default:
			s.logger.Error("login failed", "error", err)
			writeDomainError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleLogout revokes the caller's session. Revoking an already-dead
// session still succeeds.
//
//	POST /api/v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), currentToken(r)); err != nil {
		s.logger.Error("logout failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe returns the calling user's profile and effective permissions.
//
//	GET /api/v1/auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"permissions": auth.PermissionsForRole(user.Role),
	})
}

// handleChangePassword lets the calling user rotate their own password.
//
//	POST /api/v1/auth/change-password
//	{"current_password": "...", "new_password": "..."}
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user := currentUser(r)
	err := s.auth.ChangePassword(r.Context(), user.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
