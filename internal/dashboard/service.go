// Package dashboard assembles the landing-page overview from the
// membership and finance services: headline counts, period summaries,
// recent activity, growth curves, and advisory alerts.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/parishworks/chms-core/internal/finance"
	"github.com/parishworks/chms-core/internal/member"
)

// MemberSource is the slice of the member service the dashboard reads.
type MemberSource interface {
	Statistics(ctx context.Context) (*member.Statistics, error)
	List(ctx context.Context) ([]member.Member, error)
	UpcomingBirthdays(ctx context.Context, days int) ([]member.Birthday, error)
}

// FinanceSource is the slice of the finance service the dashboard reads.
type FinanceSource interface {
	YTDSummary(ctx context.Context) (*finance.Summary, error)
	CurrentMonthSummary(ctx context.Context) (*finance.Summary, error)
	MonthlyTrends(ctx context.Context, year int) ([]finance.MonthlyTrend, error)
	RecentTransactions(ctx context.Context, n int) ([]finance.Transaction, error)
}

// Service aggregates read-only views for the dashboard.
type Service struct {
	members  MemberSource
	finances FinanceSource
}

// NewService creates the dashboard service.
func NewService(members MemberSource, finances FinanceSource) *Service {
	return &Service{members: members, finances: finances}
}

// Overview is the full dashboard payload.
type Overview struct {
	Members            *member.Statistics    `json:"members"`
	MonthSummary       *finance.Summary      `json:"month_summary"`
	YTDSummary         *finance.Summary      `json:"ytd_summary"`
	RecentTransactions []finance.Transaction `json:"recent_transactions"`
	UpcomingBirthdays  []member.Birthday     `json:"upcoming_birthdays"`
	Alerts             []Alert               `json:"alerts"`
}

// QuickStats is the compact headline strip.
type QuickStats struct {
	TotalMembers  int     `json:"total_members"`
	ActiveMembers int     `json:"active_members"`
	MonthIncome   float64 `json:"month_income"`
	MonthExpenses float64 `json:"month_expenses"`
	YTDNet        float64 `json:"ytd_net"`
}

// GrowthPoint is one month on the membership growth curve.
type GrowthPoint struct {
	Month      string `json:"month"` // YYYY-MM
	NewMembers int    `json:"new_members"`
	Total      int    `json:"total"`
}

// Alert severities.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Alert is an advisory message derived from current financial state.
type Alert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Event is a calendar entry surfaced on the dashboard.
type Event struct {
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
	Type  string    `json:"type"`
}

// Overview builds the full dashboard payload.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	stats, err := s.members.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("member statistics: %w", err)
	}
	month, err := s.finances.CurrentMonthSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("month summary: %w", err)
	}
	ytd, err := s.finances.YTDSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("ytd summary: %w", err)
	}
	recent, err := s.finances.RecentTransactions(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	birthdays, err := s.members.UpcomingBirthdays(ctx, 30)
	if err != nil {
		return nil, fmt.Errorf("upcoming birthdays: %w", err)
	}

	return &Overview{
		Members:            stats,
		MonthSummary:       month,
		YTDSummary:         ytd,
		RecentTransactions: recent,
		UpcomingBirthdays:  birthdays,
		Alerts:             buildAlerts(month, ytd, recent),
	}, nil
}

// QuickStats builds the compact headline strip.
func (s *Service) QuickStats(ctx context.Context) (*QuickStats, error) {
	stats, err := s.members.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("member statistics: %w", err)
	}
	month, err := s.finances.CurrentMonthSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("month summary: %w", err)
	}
	ytd, err := s.finances.YTDSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("ytd summary: %w", err)
	}

	return &QuickStats{
		TotalMembers:  stats.Total,
		ActiveMembers: stats.Active,
		MonthIncome:   month.Income,
		MonthExpenses: month.Expenses,
		YTDNet:        ytd.Net,
	}, nil
}

// MemberGrowth buckets join dates into the trailing N months and runs
// a cumulative total alongside.
func (s *Service) MemberGrowth(ctx context.Context, months int) ([]GrowthPoint, error) {
	if months <= 0 {
		months = 12
	}

	members, err := s.members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	points := make([]GrowthPoint, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0)
		key := m.Format("2006-01")
		points[i] = GrowthPoint{Month: key}
		index[key] = i
	}

	// Members joined before the window seed the running total.
	base := 0
	for i := range members {
		joined, err := time.Parse(member.DateLayout, members[i].JoinDate)
		if err != nil {
			continue
		}
		if joined.Before(start) {
			base++
			continue
		}
		if idx, ok := index[joined.Format("2006-01")]; ok {
			points[idx].NewMembers++
		}
	}

	running := base
	for i := range points {
		running += points[i].NewMembers
		points[i].Total = running
	}
	return points, nil
}

// MonthlyTrends passes through the finance trend aggregate.
func (s *Service) MonthlyTrends(ctx context.Context, year int) ([]finance.MonthlyTrend, error) {
	return s.finances.MonthlyTrends(ctx, year)
}

// FinancialAlerts derives advisory alerts from the current summaries.
func (s *Service) FinancialAlerts(ctx context.Context) ([]Alert, error) {
	month, err := s.finances.CurrentMonthSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("month summary: %w", err)
	}
	ytd, err := s.finances.YTDSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("ytd summary: %w", err)
	}
	recent, err := s.finances.RecentTransactions(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return buildAlerts(month, ytd, recent), nil
}

// UpcomingEvents surfaces the next 30 days of member birthdays as
// calendar entries.
func (s *Service) UpcomingEvents(ctx context.Context) ([]Event, error) {
	birthdays, err := s.members.UpcomingBirthdays(ctx, 30)
	if err != nil {
		return nil, fmt.Errorf("upcoming birthdays: %w", err)
	}

	events := make([]Event, 0, len(birthdays))
	for _, b := range birthdays {
		events = append(events, Event{
			Date:  b.Date,
			Title: fmt.Sprintf("%s turns %d", b.Member.Name, b.TurnsAge),
			Type:  "birthday",
		})
	}
	return events, nil
}

// largeTransactionShare flags a single entry dominating its type's
// monthly volume.
const largeTransactionShare = 0.5

func buildAlerts(month, ytd *finance.Summary, recent []finance.Transaction) []Alert {
	alerts := []Alert{}
	if month.Net < 0 {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("expenses exceed income this month by %.2f", -month.Net),
		})
	} else if month.Income > 0 && month.Expenses > month.Income*0.9 {
		alerts = append(alerts, Alert{
			Severity: SeverityInfo,
			Message:  "expenses are above 90% of income this month",
		})
	}
	if ytd.Net < 0 {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("running a year-to-date deficit of %.2f", -ytd.Net),
		})
	}
	if month.Count == 0 {
		alerts = append(alerts, Alert{
			Severity: SeverityInfo,
			Message:  "no transactions recorded this month",
		})
	}

	// A single entry eating most of a month with several transactions
	// is worth a second look.
	if month.Count >= 3 {
		prefix := time.Now().UTC().Format("2006-01")
		for _, t := range recent {
			if !strings.HasPrefix(t.Date, prefix) {
				continue
			}
			total := month.Income
			if t.Type == finance.TypeExpense {
				total = month.Expenses
			}
			if total > 0 && t.Amount > total*largeTransactionShare {
				alerts = append(alerts, Alert{
					Severity: SeverityInfo,
					Message: fmt.Sprintf("large %s transaction: %s %.2f on %s",
						strings.ToLower(t.Type), t.CategoryName, t.Amount, t.Date),
				})
			}
		}
	}
	return alerts
}
