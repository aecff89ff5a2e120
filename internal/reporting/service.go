// Package reporting renders financial and membership reports as PDF,
// Excel, and CSV documents from the finance and member services.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/parishworks/chms-core/internal/audit"
	"github.com/parishworks/chms-core/internal/finance"
	"github.com/parishworks/chms-core/internal/member"
)

const actionReportGenerated = "REPORT_GENERATED"

// ErrInvalidPeriod is returned when a report period is malformed or
// ends before it starts.
var ErrInvalidPeriod = errors.New("report period must be two YYYY-MM-DD dates in order")

// FinanceSource is the slice of the finance service reports read from.
type FinanceSource interface {
	ListTransactions(ctx context.Context, f finance.Filter) ([]finance.Transaction, error)
	SummaryBetween(ctx context.Context, from, to string) (*finance.Summary, error)
	CategoryTotals(ctx context.Context, from, to string) ([]finance.CategoryTotal, error)
	MonthlyTrends(ctx context.Context, year int) ([]finance.MonthlyTrend, error)
	BalanceBefore(ctx context.Context, date string) (float64, error)
}

// MemberSource is the slice of the member service reports read from.
type MemberSource interface {
	Get(ctx context.Context, id int64) (*member.Member, error)
	List(ctx context.Context) ([]member.Member, error)
}

// Options carry presentation settings for rendered documents.
type Options struct {
	OrganisationName string
	CurrencySymbol   string
}

// Service assembles report data and renders it in several formats.
type Service struct {
	finances FinanceSource
	members  MemberSource
	audit    *audit.SafeRecorder
	logger   *slog.Logger
	opts     Options
}

// NewService creates the reporting service.
func NewService(finances FinanceSource, members MemberSource, recorder *audit.SafeRecorder, logger *slog.Logger, opts Options) *Service {
	if opts.OrganisationName == "" {
		opts.OrganisationName = "Community Church"
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "$"
	}
	return &Service{finances: finances, members: members, audit: recorder, logger: logger, opts: opts}
}

// FinancialReport is the assembled data behind a period report.
type FinancialReport struct {
	OrganisationName string                  `json:"organisation_name"`
	From             string                  `json:"from"`
	To               string                  `json:"to"`
	OpeningBalance   float64                 `json:"opening_balance"`
	Summary          finance.Summary         `json:"summary"`
	ClosingBalance   float64                 `json:"closing_balance"`
	CategoryTotals   []finance.CategoryTotal `json:"category_totals"`
	Transactions     []finance.Transaction   `json:"transactions"`
	GeneratedAt      time.Time               `json:"generated_at"`
}

// MemberGivingReport is the assembled data behind a giving statement.
type MemberGivingReport struct {
	OrganisationName string                  `json:"organisation_name"`
	Member           member.Member           `json:"member"`
	From             string                  `json:"from"`
	To               string                  `json:"to"`
	Total            float64                 `json:"total"`
	ByCategory       []finance.CategoryTotal `json:"by_category"`
	Transactions     []finance.Transaction   `json:"transactions"`
	GeneratedAt      time.Time               `json:"generated_at"`
}

func validatePeriod(from, to string) error {
	start, err := time.Parse(finance.DateLayout, from)
	if err != nil {
		return ErrInvalidPeriod
	}
	end, err := time.Parse(finance.DateLayout, to)
	if err != nil {
		return ErrInvalidPeriod
	}
	if end.Before(start) {
		return ErrInvalidPeriod
	}
	return nil
}

// FinancialData assembles the full period report: opening balance,
// period summary, closing balance, category breakdown, and the
// transaction listing.
func (s *Service) FinancialData(ctx context.Context, from, to string) (*FinancialReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	opening, err := s.finances.BalanceBefore(ctx, from)
	if err != nil {
		return nil, err
	}
	summary, err := s.finances.SummaryBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	totals, err := s.finances.CategoryTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	txns, err := s.finances.ListTransactions(ctx, finance.Filter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	return &FinancialReport{
		OrganisationName: s.opts.OrganisationName,
		From:             from,
		To:               to,
		OpeningBalance:   opening,
		Summary:          *summary,
		ClosingBalance:   opening + summary.Net,
		CategoryTotals:   totals,
		Transactions:     txns,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

// MemberGivingData assembles a member's income contributions over a
// period, with a per-category breakdown computed from the listing.
func (s *Service) MemberGivingData(ctx context.Context, memberID int64, from, to string) (*MemberGivingReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	m, err := s.members.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	txns, err := s.finances.ListTransactions(ctx, finance.Filter{
		Type: finance.TypeIncome, From: from, To: to, MemberID: memberID,
	})
	if err != nil {
		return nil, err
	}

	report := &MemberGivingReport{
		OrganisationName: s.opts.OrganisationName,
		Member:           *m,
		From:             from,
		To:               to,
		Transactions:     txns,
		GeneratedAt:      time.Now().UTC(),
	}

	byName := make(map[string]*finance.CategoryTotal)
	var order []string
	for _, t := range txns {
		report.Total += t.Amount
		ct, ok := byName[t.CategoryName]
		if !ok {
			ct = &finance.CategoryTotal{Category: t.CategoryName, Type: finance.TypeIncome}
			byName[t.CategoryName] = ct
			order = append(order, t.CategoryName)
		}
		ct.Total += t.Amount
		ct.Count++
	}
	for _, name := range order {
		report.ByCategory = append(report.ByCategory, *byName[name])
	}
	return report, nil
}

// BudgetLine compares one expense category's budget with its actual
// spend over the period.
type BudgetLine struct {
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
	Actual   float64 `json:"actual"`
	Variance float64 `json:"variance"`
}

// BudgetReport is the assembled budget-versus-actual comparison.
type BudgetReport struct {
	OrganisationName string       `json:"organisation_name"`
	From             string       `json:"from"`
	To               string       `json:"to"`
	Lines            []BudgetLine `json:"lines"`
	TotalBudget      float64      `json:"total_budget"`
	TotalActual      float64      `json:"total_actual"`
	TotalVariance    float64      `json:"total_variance"`
	GeneratedAt      time.Time    `json:"generated_at"`
}

// BudgetData compares the supplied per-category budgets against actual
// expense totals for the period. Categories with spend but no budget
// figure appear with a zero budget so overruns stay visible.
func (s *Service) BudgetData(ctx context.Context, from, to string, budgets map[string]float64) (*BudgetReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	totals, err := s.finances.CategoryTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	actuals := make(map[string]float64)
	for _, ct := range totals {
		if ct.Type == finance.TypeExpense {
			actuals[ct.Category] += ct.Total
		}
	}

	names := make([]string, 0, len(budgets))
	for name := range budgets {
		names = append(names, name)
	}
	for name := range actuals {
		if _, ok := budgets[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	report := &BudgetReport{
		OrganisationName: s.opts.OrganisationName,
		From:             from,
		To:               to,
		GeneratedAt:      time.Now().UTC(),
	}
	for _, name := range names {
		line := BudgetLine{
			Category: name,
			Budget:   budgets[name],
			Actual:   actuals[name],
		}
		line.Variance = line.Budget - line.Actual
		report.Lines = append(report.Lines, line)
		report.TotalBudget += line.Budget
		report.TotalActual += line.Actual
	}
	report.TotalVariance = report.TotalBudget - report.TotalActual
	return report, nil
}

// money formats an amount with the configured currency symbol.
func (s *Service) money(v float64) string {
	return fmt.Sprintf("%s%.2f", s.opts.CurrencySymbol, v)
}

func (s *Service) recordGenerated(ctx context.Context, actorID *int64, kind, period string) {
	s.audit.Record(ctx, audit.Entry{
		UserID:   actorID,
		Action:   actionReportGenerated,
		Resource: "reports",
		Details:  fmt.Sprintf("%s report for %s", kind, period),
	})
	s.logger.Info("report generated", "kind", kind, "period", period)
}
