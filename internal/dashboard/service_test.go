package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/parishworks/chms-core/internal/finance"
	"github.com/parishworks/chms-core/internal/member"
)

type fakeMembers struct {
	stats     *member.Statistics
	roll      []member.Member
	birthdays []member.Birthday
}

func (f *fakeMembers) Statistics(context.Context) (*member.Statistics, error) { return f.stats, nil }
func (f *fakeMembers) List(context.Context) ([]member.Member, error)          { return f.roll, nil }
func (f *fakeMembers) UpcomingBirthdays(context.Context, int) ([]member.Birthday, error) {
	return f.birthdays, nil
}

type fakeFinances struct {
	ytd    *finance.Summary
	month  *finance.Summary
	trends []finance.MonthlyTrend
	recent []finance.Transaction
}

func (f *fakeFinances) YTDSummary(context.Context) (*finance.Summary, error) { return f.ytd, nil }
func (f *fakeFinances) CurrentMonthSummary(context.Context) (*finance.Summary, error) {
	return f.month, nil
}
func (f *fakeFinances) MonthlyTrends(context.Context, int) ([]finance.MonthlyTrend, error) {
	return f.trends, nil
}
func (f *fakeFinances) RecentTransactions(context.Context, int) ([]finance.Transaction, error) {
	return f.recent, nil
}

func healthyFinances() *fakeFinances {
	return &fakeFinances{
		ytd:   &finance.Summary{Income: 12000, Expenses: 8000, Net: 4000, Count: 40},
		month: &finance.Summary{Income: 1000, Expenses: 400, Net: 600, Count: 5},
	}
}

func TestService_Overview(t *testing.T) {
	members := &fakeMembers{
		stats: &member.Statistics{Total: 120, Active: 100},
		birthdays: []member.Birthday{
			{Member: member.Member{Name: "Jubilee"}, Date: time.Now().AddDate(0, 0, 3), TurnsAge: 40},
		},
	}
	finances := healthyFinances()
	finances.recent = []finance.Transaction{{ID: 1, Amount: 100, Type: finance.TypeIncome}}

	svc := NewService(members, finances)
	o, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if o.Members.Total != 120 {
		t.Errorf("Members.Total = %d, want 120", o.Members.Total)
	}
	if o.MonthSummary.Net != 600 {
		t.Errorf("MonthSummary.Net = %.2f, want 600.00", o.MonthSummary.Net)
	}
	if len(o.RecentTransactions) != 1 {
		t.Errorf("len(RecentTransactions) = %d, want 1", len(o.RecentTransactions))
	}
	if len(o.UpcomingBirthdays) != 1 {
		t.Errorf("len(UpcomingBirthdays) = %d, want 1", len(o.UpcomingBirthdays))
	}
	if len(o.Alerts) != 0 {
		t.Errorf("Alerts = %+v, want none for a healthy month", o.Alerts)
	}
}

func TestService_QuickStats(t *testing.T) {
	svc := NewService(
		&fakeMembers{stats: &member.Statistics{Total: 50, Active: 45}},
		healthyFinances(),
	)

	qs, err := svc.QuickStats(context.Background())
	if err != nil {
		t.Fatalf("QuickStats() error = %v", err)
	}
	if qs.TotalMembers != 50 || qs.ActiveMembers != 45 {
		t.Errorf("members = (%d, %d), want (50, 45)", qs.TotalMembers, qs.ActiveMembers)
	}
	if qs.MonthIncome != 1000 || qs.YTDNet != 4000 {
		t.Errorf("finances = (%.2f, %.2f), want (1000.00, 4000.00)", qs.MonthIncome, qs.YTDNet)
	}
}

func TestService_FinancialAlerts(t *testing.T) {
	deficit := &fakeFinances{
		ytd:   &finance.Summary{Income: 100, Expenses: 500, Net: -400, Count: 2},
		month: &finance.Summary{Income: 0, Expenses: 200, Net: -200, Count: 1},
	}
	svc := NewService(&fakeMembers{stats: &member.Statistics{}}, deficit)

	alerts, err := svc.FinancialAlerts(context.Background())
	if err != nil {
		t.Fatalf("FinancialAlerts() error = %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2 (month and ytd deficits)", len(alerts))
	}
	for _, a := range alerts {
		if a.Severity != SeverityWarning {
			t.Errorf("Severity = %q, want %q", a.Severity, SeverityWarning)
		}
	}
}

func TestService_FinancialAlerts_QuietMonth(t *testing.T) {
	quiet := &fakeFinances{
		ytd:   &finance.Summary{Income: 100, Expenses: 50, Net: 50, Count: 3},
		month: &finance.Summary{},
	}
	svc := NewService(&fakeMembers{}, quiet)

	alerts, err := svc.FinancialAlerts(context.Background())
	if err != nil {
		t.Fatalf("FinancialAlerts() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1", len(alerts))
	}
	if alerts[0].Severity != SeverityInfo {
		t.Errorf("Severity = %q, want %q", alerts[0].Severity, SeverityInfo)
	}
}

func TestService_FinancialAlerts_LargeTransaction(t *testing.T) {
	thisMonth := time.Now().UTC().Format("2006-01")
	finances := &fakeFinances{
		ytd:   &finance.Summary{Income: 5000, Expenses: 2000, Net: 3000, Count: 20},
		month: &finance.Summary{Income: 1000, Expenses: 800, Net: 200, Count: 6},
		recent: []finance.Transaction{
			{ID: 1, Date: thisMonth + "-03", Type: finance.TypeExpense, CategoryName: "Building Fund", Amount: 600},
			{ID: 2, Date: thisMonth + "-10", Type: finance.TypeIncome, CategoryName: "Tithes", Amount: 200},
			{ID: 3, Date: "2020-01-01", Type: finance.TypeExpense, CategoryName: "Utilities", Amount: 900},
		},
	}
	svc := NewService(&fakeMembers{stats: &member.Statistics{}}, finances)

	alerts, err := svc.FinancialAlerts(context.Background())
	if err != nil {
		t.Fatalf("FinancialAlerts() error = %v", err)
	}

	// Only the 600 expense qualifies: the 200 income is under half the
	// month's income and the 900 expense is from an old month.
	if len(alerts) != 1 {
		t.Fatalf("alerts = %+v, want exactly the large-transaction alert", alerts)
	}
	if alerts[0].Severity != SeverityInfo {
		t.Errorf("Severity = %q, want %q", alerts[0].Severity, SeverityInfo)
	}
	if !strings.Contains(alerts[0].Message, "Building Fund") {
		t.Errorf("Message = %q, want it to name the category", alerts[0].Message)
	}
}

func TestService_MemberGrowth(t *testing.T) {
	now := time.Now().UTC()
	thisMonth := now.Format("2006-01") + "-10"
	lastMonth := now.AddDate(0, -1, 0).Format("2006-01") + "-05"

	members := &fakeMembers{roll: []member.Member{
		{Name: "Old", JoinDate: "2010-01-01"},
		{Name: "Recent", JoinDate: lastMonth},
		{Name: "New", JoinDate: thisMonth},
	}}
	svc := NewService(members, healthyFinances())

	points, err := svc.MemberGrowth(context.Background(), 3)
	if err != nil {
		t.Fatalf("MemberGrowth() error = %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}

	last := points[2]
	if last.NewMembers != 1 {
		t.Errorf("current month NewMembers = %d, want 1", last.NewMembers)
	}
	if last.Total != 3 {
		t.Errorf("current month Total = %d, want 3 (cumulative)", last.Total)
	}
	if points[0].Total != 1 {
		t.Errorf("window start Total = %d, want 1 (pre-window member)", points[0].Total)
	}
}

func TestService_UpcomingEvents(t *testing.T) {
	when := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	members := &fakeMembers{birthdays: []member.Birthday{
		{Member: member.Member{Name: "Esther"}, Date: when, TurnsAge: 50},
	}}
	svc := NewService(members, healthyFinances())

	events, err := svc.UpcomingEvents(context.Background())
	if err != nil {
		t.Fatalf("UpcomingEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Title != "Esther turns 50" {
		t.Errorf("Title = %q, want %q", events[0].Title, "Esther turns 50")
	}
	if events[0].Type != "birthday" {
		t.Errorf("Type = %q, want birthday", events[0].Type)
	}
}
