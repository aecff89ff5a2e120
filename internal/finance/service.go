// Package finance records church income and expenses: categorised
// transactions, optionally tied to a member, with period summaries and
// trend aggregates feeding the dashboard and reports.
package finance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parishworks/chms-core/internal/audit"
)

// Audit actions emitted by the finance service.
const (
	actionTransactionAdded   = "TRANSACTION_ADDED"
	actionTransactionUpdated = "TRANSACTION_UPDATED"
	actionTransactionDeleted = "TRANSACTION_DELETED"
	actionCategoryAdded      = "CATEGORY_ADDED"
)

// Service validates financial entries and layers the audit trail over
// the repository.
type Service struct {
	repo   Repository
	audit  *audit.SafeRecorder
	logger *slog.Logger
}

// NewService creates the finance service.
func NewService(repo Repository, recorder *audit.SafeRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: recorder, logger: logger}
}

// AddTransaction validates and stores a new entry.
func (s *Service) AddTransaction(ctx context.Context, actorID *int64, t *Transaction) error {
	normalized, err := normalizeType(t.Type)
	if err != nil {
		return err
	}
	t.Type = normalized
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionTransactionAdded,
		Resource:   "transactions",
		ResourceID: &t.ID,
		Details:    fmt.Sprintf("%s of %.2f in %s", t.Type, t.Amount, t.CategoryName),
	})
	s.logger.Info("transaction added",
		"transaction_id", t.ID, "type", t.Type, "amount", t.Amount, "category", t.CategoryName)
	return nil
}

// UpdateTransaction validates and replaces an existing entry.
func (s *Service) UpdateTransaction(ctx context.Context, actorID *int64, t *Transaction) error {
	normalized, err := normalizeType(t.Type)
	if err != nil {
		return err
	}
	t.Type = normalized
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionTransactionUpdated,
		Resource:   "transactions",
		ResourceID: &t.ID,
	})
	return nil
}

// DeleteTransaction removes an entry.
func (s *Service) DeleteTransaction(ctx context.Context, actorID *int64, id int64) error {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionTransactionDeleted,
		Resource:   "transactions",
		ResourceID: &id,
		Details:    fmt.Sprintf("removed %s of %.2f in %s", t.Type, t.Amount, t.CategoryName),
	})
	return nil
}

// GetTransaction retrieves one entry.
func (s *Service) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// ListTransactions returns entries matching the filter. A non-empty
// type filter is normalised first.
func (s *Service) ListTransactions(ctx context.Context, f Filter) ([]Transaction, error) {
	if f.Type != "" {
		normalized, err := normalizeType(f.Type)
		if err != nil {
			return nil, err
		}
		f.Type = normalized
	}
	return s.repo.ListTransactions(ctx, f)
}

// RecentTransactions returns the N most recent entries.
func (s *Service) RecentTransactions(ctx context.Context, n int) ([]Transaction, error) {
	if n <= 0 {
		n = 10
	}
	return s.repo.ListTransactions(ctx, Filter{Limit: n})
}

// ListCategories returns the categories for a transaction type.
func (s *Service) ListCategories(ctx context.Context, txType string) ([]Category, error) {
	normalized, err := normalizeType(txType)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, normalized)
}

// AddCategory inserts a new category.
func (s *Service) AddCategory(ctx context.Context, actorID *int64, txType, name string) (*Category, error) {
	normalized, err := normalizeType(txType)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.AddCategory(ctx, normalized, name)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry{
		UserID:     actorID,
		Action:     actionCategoryAdded,
		Resource:   "categories",
		ResourceID: &c.ID,
		Details:    fmt.Sprintf("added %s category %s", normalized, c.Name),
	})
	return c, nil
}

// SummaryBetween totals a date range.
func (s *Service) SummaryBetween(ctx context.Context, from, to string) (*Summary, error) {
	return s.repo.SummaryBetween(ctx, from, to)
}

// YTDSummary totals the current calendar year to date.
func (s *Service) YTDSummary(ctx context.Context) (*Summary, error) {
	now := time.Now().UTC()
	from := fmt.Sprintf("%04d-01-01", now.Year())
	return s.repo.SummaryBetween(ctx, from, now.Format(DateLayout))
}

// CurrentMonthSummary totals the current calendar month to date.
func (s *Service) CurrentMonthSummary(ctx context.Context) (*Summary, error) {
	now := time.Now().UTC()
	from := fmt.Sprintf("%04d-%02d-01", now.Year(), now.Month())
	return s.repo.SummaryBetween(ctx, from, now.Format(DateLayout))
}

// CategoryTotals aggregates per category over a date range.
func (s *Service) CategoryTotals(ctx context.Context, from, to string) ([]CategoryTotal, error) {
	return s.repo.CategoryTotals(ctx, from, to)
}

// MonthlyTrends returns twelve months of income versus expenses.
func (s *Service) MonthlyTrends(ctx context.Context, year int) ([]MonthlyTrend, error) {
	if year <= 0 {
		year = time.Now().UTC().Year()
	}
	return s.repo.MonthlyTrends(ctx, year)
}

// BalanceBefore returns the opening balance for a period start date.
func (s *Service) BalanceBefore(ctx context.Context, date string) (float64, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return 0, ErrInvalidDate
	}
	return s.repo.BalanceBefore(ctx, date)
}
