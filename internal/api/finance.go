package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/parishworks/chms-core/internal/finance"
)

// handleListCategories returns the category list for one ledger side.
//
//	GET /api/v1/finance/categories?type=income
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	txType := r.URL.Query().Get("type")
	if txType == "" {
		txType = "income"
	}

	categories, err := s.finances.ListCategories(r.Context(), txType)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories, "count": len(categories)})
}

// handleAddCategory creates a category on one ledger side.
//
//	POST /api/v1/finance/categories
//	{"type": "income", "name": "Building Fund"}
func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	category, err := s.finances.AddCategory(r.Context(), currentActorID(r), req.Type, req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// transactionFilter builds a listing filter from query parameters.
func transactionFilter(r *http.Request) finance.Filter {
	q := r.URL.Query()
	var f finance.Filter
	f.Type = q.Get("type")
	f.From = q.Get("from")
	f.To = q.Get("to")
	f.MemberID, _ = strconv.ParseInt(q.Get("member_id"), 10, 64)   //nolint:errcheck // zero means no filter
	f.CategoryID, _ = strconv.ParseInt(q.Get("category_id"), 10, 64) //nolint:errcheck // zero means no filter
	f.Limit, _ = strconv.Atoi(q.Get("limit"))                      //nolint:errcheck // zero means no limit
	return f
}

// handleListTransactions returns transactions matching the query filters.
//
//	GET /api/v1/finance/transactions?type=income&from=2026-01-01&to=2026-01-31
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.finances.ListTransactions(r.Context(), transactionFilter(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns, "count": len(txns)})
}

// handleGetTransaction returns a single transaction.
//
//	GET /api/v1/finance/transactions/{id}
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	txn, err := s.finances.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// handleAddTransaction records a new income or expense entry.
//
//	POST /api/v1/finance/transactions
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var t finance.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.finances.AddTransaction(r.Context(), currentActorID(r), &t); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleUpdateTransaction replaces an existing transaction.
//
//	PUT /api/v1/finance/transactions/{id}
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	var t finance.Transaction
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	t.ID = id

	if err := s.finances.UpdateTransaction(r.Context(), currentActorID(r), &t); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTransaction removes a transaction.
//
//	DELETE /api/v1/finance/transactions/{id}
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	if err := s.finances.DeleteTransaction(r.Context(), currentActorID(r), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleFinanceSummary returns totals for a period. Without from/to it
// reports the year to date.
//
//	GET /api/v1/finance/summary?from=2026-01-01&to=2026-01-31
func (s *Server) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")

	var (
		summary *finance.Summary
		err     error
	)
	if from == "" && to == "" {
		summary, err = s.finances.YTDSummary(r.Context())
	} else {
		summary, err = s.finances.SummaryBetween(r.Context(), from, to)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleFinanceTrends returns the month-by-month breakdown for a year.
//
//	GET /api/v1/finance/trends?year=2026
func (s *Server) handleFinanceTrends(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year")) //nolint:errcheck // zero means current year

	trends, err := s.finances.MonthlyTrends(r.Context(), year)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trends": trends})
}
