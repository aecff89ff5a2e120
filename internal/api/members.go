package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/parishworks/chms-core/internal/member"
)

// handleListMembers returns the membership roll, optionally filtered.
//
//	GET /api/v1/members
//	GET /api/v1/members?q=ruth
//	GET /api/v1/members?status=Active
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		members []member.Member
		err     error
	)
	switch {
	case r.URL.Query().Get("q") != "":
		members, err = s.members.Search(ctx, r.URL.Query().Get("q"))
	case r.URL.Query().Get("status") != "":
		members, err = s.members.ListByStatus(ctx, r.URL.Query().Get("status"))
	case r.URL.Query().Get("baptized") == "true":
		members, err = s.members.ListBaptized(ctx)
	default:
		members, err = s.members.List(ctx)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"members": members, "count": len(members)})
}

// handleGetMember returns a single membership record.
//
//	GET /api/v1/members/{id}
func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}

	m, err := s.members.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleCreateMember adds a membership record.
//
//	POST /api/v1/members
func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var m member.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.members.Create(r.Context(), currentActorID(r), &m); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// handleUpdateMember replaces a membership record.
//
//	PUT /api/v1/members/{id}
func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}

	var m member.Member
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	m.ID = id

	if err := s.members.Update(r.Context(), currentActorID(r), &m); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleDeleteMember removes a membership record.
//
//	DELETE /api/v1/members/{id}
func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid member id")
		return
	}

	if err := s.members.Delete(r.Context(), currentActorID(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleMemberStats returns aggregate membership statistics.
//
//	GET /api/v1/members/stats
func (s *Server) handleMemberStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.members.Statistics(r.Context())
	if err != nil {
		s.logger.Error("member statistics failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleUpcomingBirthdays lists birthdays in the next N days (default 30).
//
//	GET /api/v1/members/birthdays?days=14
func (s *Server) handleUpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days")) //nolint:errcheck // zero means default window

	birthdays, err := s.members.UpcomingBirthdays(r.Context(), days)
	if err != nil {
		s.logger.Error("upcoming birthdays failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"birthdays": birthdays, "count": len(birthdays)})
}
