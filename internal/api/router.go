package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parishworks/chms-core/internal/auth"
)

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(s.requestIDMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated endpoints.
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)

		// Everything else requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/change-password", s.handleChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireCapability(auth.CapManageUsers))
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/{id}", s.handleGetUser)
				r.Patch("/{id}", s.handleUpdateUser)
				r.Delete("/{id}/sessions", s.handleRevokeUserSessions)
			})

			r.Route("/members", func(r chi.Router) {
				r.With(s.requireCapability(auth.CapViewMembers)).Get("/", s.handleListMembers)
				r.With(s.requireCapability(auth.CapAddMembers)).Post("/", s.handleCreateMember)
				r.With(s.requireCapability(auth.CapViewMembers)).Get("/stats", s.handleMemberStats)
				r.With(s.requireCapability(auth.CapViewMembers)).Get("/birthdays", s.handleUpcomingBirthdays)
				r.With(s.requireCapability(auth.CapViewMembers)).Get("/{id}", s.handleGetMember)
				r.With(s.requireCapability(auth.CapEditMembers)).Put("/{id}", s.handleUpdateMember)
				r.With(s.requireCapability(auth.CapDeleteMembers)).Delete("/{id}", s.handleDeleteMember)
			})

			r.Route("/finance", func(r chi.Router) {
				r.With(s.requireCapability(auth.CapViewFinances)).Get("/categories", s.handleListCategories)
				r.With(s.requireCapability(auth.CapAddTransactions)).Post("/categories", s.handleAddCategory)

				r.With(s.requireCapability(auth.CapViewFinances)).Get("/transactions", s.handleListTransactions)
				r.With(s.requireCapability(auth.CapAddTransactions)).Post("/transactions", s.handleAddTransaction)
				r.With(s.requireCapability(auth.CapViewFinances)).Get("/transactions/{id}", s.handleGetTransaction)
				r.With(s.requireCapability(auth.CapEditTransactions)).Put("/transactions/{id}", s.handleUpdateTransaction)
				r.With(s.requireCapability(auth.CapDeleteTransactions)).Delete("/transactions/{id}", s.handleDeleteTransaction)

				r.With(s.requireCapability(auth.CapViewFinances)).Get("/summary", s.handleFinanceSummary)
				r.With(s.requireCapability(auth.CapViewFinances)).Get("/trends", s.handleFinanceTrends)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Use(s.requireCapability(auth.CapViewDashboard))
				r.Get("/", s.handleDashboard)
				r.Get("/quick-stats", s.handleQuickStats)
				r.Get("/growth", s.handleMemberGrowth)
				r.Get("/alerts", s.handleAlerts)
				r.Get("/events", s.handleUpcomingEvents)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(s.requireCapability(auth.CapGenerateReports))
				r.Get("/financial.pdf", s.handleFinancialPDF)
				r.Get("/financial.xlsx", s.handleFinancialExcel)
				r.Get("/transactions.csv", s.handleTransactionsCSV)
				r.Get("/member-giving.pdf", s.handleMemberGivingPDF)
				r.Post("/budget.pdf", s.handleBudgetPDF)
				r.Get("/trends.pdf", s.handleTrendsPDF)
				r.Get("/members.csv", s.handleMembersCSV)
			})

			r.With(s.requireCapability(auth.CapSystemSettings)).Get("/audit", s.handleAuditLog)
		})
	})

	return r
}

// handleHealth returns service liveness plus database health.
//
//	GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			dbStatus = "unavailable"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, status, map[string]string{
		"status":   overall,
		"version":  s.version,
		"database": dbStatus,
	})
}
