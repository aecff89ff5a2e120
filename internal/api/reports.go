package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Report download content types.
const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
)

// reportPeriod reads the from/to query parameters, defaulting to the
// current calendar year when absent.
func reportPeriod(r *http.Request) (string, string) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" && to == "" {
		now := time.Now().UTC()
		from = fmt.Sprintf("%d-01-01", now.Year())
		to = now.Format("2006-01-02")
	}
	return from, to
}

// sendDownload writes a fully-rendered report with download headers.
// Reports are buffered before any header is written so a render failure
// can still produce a clean error response.
func sendDownload(w http.ResponseWriter, contentType, filename string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	body.WriteTo(w)
}

// handleFinancialPDF streams the period financial report as PDF.
//
//	GET /api/v1/reports/financial.pdf?from=2026-01-01&to=2026-01-31
func (s *Server) handleFinancialPDF(w http.ResponseWriter, r *http.Request) {
	from, to := reportPeriod(r)

	var buf bytes.Buffer
	if err := s.reports.WriteFinancialPDF(r.Context(), currentActorID(r), from, to, &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	sendDownload(w, contentTypePDF, fmt.Sprintf("financial-report-%s-to-%s.pdf", from, to), &buf)
}

// handleFinancialExcel streams the period financial report as a workbook.
//
//	GET /api/v1/reports/financial.xlsx?from=2026-01-01&to=2026-01-31
func (s *Server) handleFinancialExcel(w http.ResponseWriter, r *http.Request) {
	from, to := reportPeriod(r)

	var buf bytes.Buffer
	if err := s.reports.WriteFinancialExcel(r.Context(), currentActorID(r), from, to, &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	sendDownload(w, contentTypeXLSX, fmt.Sprintf("financial-report-%s-to-%s.xlsx", from, to), &buf)
}

// handleTransactionsCSV streams the period's transactions as CSV.
//
//	GET /api/v1/reports/transactions.csv?from=2026-01-01&to=2026-01-31
func (s *Server) handleTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	from, to := reportPeriod(r)

	var buf bytes.Buffer
	if err := s.reports.WriteTransactionsCSV(r.Context(), currentActorID(r), from, to, &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	sendDownload(w, contentTypeCSV, fmt.Sprintf("transactions-%s-to-%s.csv", from, to), &buf)
}

// handleMemberGivingPDF streams one member's giving statement as PDF.
//
//	GET /api/v1/reports/member-giving.pdf?member_id=5&from=2026-01-01&to=2026-12-31
func (s *Server) handleMemberGivingPDF(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
	if err != nil || memberID < 1 {
		writeBadRequest(w, "member_id query parameter is required")
		return
	}
	from, to := reportPeriod(r)

	var buf bytes.Buffer
	if err := s.reports.WriteMemberGivingPDF(r.Context(), currentActorID(r), memberID, from, to, &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	sendDownload(w, contentTypePDF, fmt.Sprintf("giving-statement-%d-%s-to-%s.pdf", memberID, from, to), &buf)
}

// handleBudgetPDF streams a budget-versus-actual comparison as PDF.
// Budget figures come from the caller; they are not stored server-side.
//
//	POST /api/v1/reports/budget.pdf
//	{"from": "2026-01-01", "to": "2026-12-31", "budgets": {"Utilities": 1200}}
func (s *Server) handleBudgetPDF(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From    string             `json:"from"`
		To      string             `json:"to"`
		Budgets map[string]float64 `json:"budgets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.From == "" && req.To == "" {
		now := time.Now().UTC()
		req.From = fmt.Sprintf("%d-01-01", now.Year())
		req.To = now.Format("2006-01-02")
	}

	var buf bytes.Buffer
	if err := s.reports.WriteBudgetPDF(r.Context(), currentActorID(r), req.From, req.To, req.Budgets, &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	sendDownload(w, contentTypePDF, fmt.Sprintf("budget-report-%s-to-%s.pdf", req.From, req.To), &buf)
}

// handleTrendsPDF streams the monthly trends report for a year as PDF.
//
//	GET /api/v1/reports/trends.pdf?year=2026
func (s *Server) handleTrendsPDF(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year")) //nolint:errcheck // zero means current year
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	var buf bytes.Buffer
	if err := s.reports.WriteMonthlyTrendsPDF(r.Context(), currentActorID(r), year, &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	sendDownload(w, contentTypePDF, fmt.Sprintf("monthly-trends-%d.pdf", year), &buf)
}

// handleMembersCSV streams the membership roll as CSV.
//
//	GET /api/v1/reports/members.csv
func (s *Server) handleMembersCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.reports.WriteMembersCSV(r.Context(), currentActorID(r), &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	sendDownload(w, contentTypeCSV, "members.csv", &buf)
}
