package api

import (
	"net/http"
	"strconv"
)

// handleDashboard returns the full dashboard overview.
//
//	GET /api/v1/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := s.dashboard.Overview(r.Context())
	if err != nil {
		s.logger.Error("dashboard overview failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// handleQuickStats returns the headline numbers only.
//
//	GET /api/v1/dashboard/quick-stats
func (s *Server) handleQuickStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.QuickStats(r.Context())
	if err != nil {
		s.logger.Error("quick stats failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleMemberGrowth returns the trailing membership growth series.
//
//	GET /api/v1/dashboard/growth?months=6
func (s *Server) handleMemberGrowth(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months")) //nolint:errcheck // zero means default window

	points, err := s.dashboard.MemberGrowth(r.Context(), months)
	if err != nil {
		s.logger.Error("member growth failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"growth": points})
}

// handleAlerts returns current financial alerts.
//
//	GET /api/v1/dashboard/alerts
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.dashboard.FinancialAlerts(r.Context())
	if err != nil {
		s.logger.Error("financial alerts failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

// handleUpcomingEvents returns upcoming congregation events (birthdays).
//
//	GET /api/v1/dashboard/events
func (s *Server) handleUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.dashboard.UpcomingEvents(r.Context())
	if err != nil {
		s.logger.Error("upcoming events failed", "error", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}
