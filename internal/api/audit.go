package api

import (
	"net/http"
	"strconv"
)

// handleAuditLog returns recent audit events, newest first.
//
//	GET /api/v1/audit?limit=50
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit")) //nolint:errcheck // zero means default limit

	events, err := s.audit.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing audit events failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}
