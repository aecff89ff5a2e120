package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parishworks/chms-core/internal/auth"
)

// idParam parses the {id} route parameter as a positive integer.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// handleListUsers returns all user accounts.
//
//	GET /api/v1/users
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("listing users failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// handleGetUser returns a single user account.
//
//	GET /api/v1/users/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}

	user, err := s.auth.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleCreateUser creates a new user account.
//
//	POST /api/v1/users
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.CreateUser(r.Context(), currentActorID(r), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleRevokeUserSessions signs a user out of every open session.
//
//	DELETE /api/v1/users/{id}/sessions
func (s *Server) handleRevokeUserSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}

	n, err := s.auth.RevokeUserSessions(r.Context(), currentActorID(r), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "sessions revoked", "revoked": n})
}

// handleUpdateUser applies a partial update to a user account.
//
//	PATCH /api/v1/users/{id}
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}

	var upd auth.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.auth.UpdateUser(r.Context(), currentActorID(r), id, upd); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user, err := s.auth.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
