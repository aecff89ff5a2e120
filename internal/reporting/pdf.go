package reporting

import (
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Page layout constants shared by the PDF reports.
const (
	pdfMargin     = 15.0
	pdfRowHeight  = 7.0
	pdfHeadHeight = 8.0
)

func newReportPDF(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()
	return pdf
}

func (s *Service) pdfHeader(pdf *fpdf.Fpdf, title, subtitle string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, s.opts.OrganisationName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func pdfTableHead(pdf *fpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(225, 225, 225)
	for i, label := range labels {
		pdf.CellFormat(widths[i], pdfHeadHeight, label, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func pdfKeyValue(pdf *fpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(60, pdfRowHeight, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, pdfRowHeight, value, "", 1, "L", false, 0, "")
}

// WriteFinancialPDF renders the comprehensive period report.
func (s *Service) WriteFinancialPDF(ctx context.Context, actorID *int64, from, to string, w io.Writer) error {
	report, err := s.FinancialData(ctx, from, to)
	if err != nil {
		return err
	}

	pdf := newReportPDF("Financial Report")
	s.pdfHeader(pdf, "Financial Report", fmt.Sprintf("Period %s to %s", report.From, report.To))

	pdfKeyValue(pdf, "Opening balance", s.money(report.OpeningBalance))
	pdfKeyValue(pdf, "Total income", s.money(report.Summary.Income))
	pdfKeyValue(pdf, "Total expenses", s.money(report.Summary.Expenses))
	pdfKeyValue(pdf, "Net for period", s.money(report.Summary.Net))
	pdfKeyValue(pdf, "Closing balance", s.money(report.ClosingBalance))
	pdf.Ln(6)

	if len(report.CategoryTotals) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "By category", "", 1, "L", false, 0, "")
		widths := []float64{70, 30, 40, 20}
		pdfTableHead(pdf, widths, []string{"Category", "Type", "Total", "Entries"})
		for _, ct := range report.CategoryTotals {
			pdf.CellFormat(widths[0], pdfRowHeight, ct.Category, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], pdfRowHeight, ct.Type, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], pdfRowHeight, s.money(ct.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], pdfRowHeight, fmt.Sprintf("%d", ct.Count), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if len(report.Transactions) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "Transactions", "", 1, "L", false, 0, "")
		widths := []float64{24, 20, 46, 30, 60}
		pdfTableHead(pdf, widths, []string{"Date", "Type", "Category", "Amount", "Description"})
		for _, t := range report.Transactions {
			pdf.CellFormat(widths[0], pdfRowHeight, t.Date, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], pdfRowHeight, t.Type, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], pdfRowHeight, t.CategoryName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], pdfRowHeight, s.money(t.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[4], pdfRowHeight, truncate(t.Description, 38), "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+report.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing financial pdf: %w", err)
	}
	s.recordGenerated(ctx, actorID, "financial PDF", from+" to "+to)
	return nil
}

// WriteMemberGivingPDF renders a member's giving statement.
func (s *Service) WriteMemberGivingPDF(ctx context.Context, actorID *int64, memberID int64, from, to string, w io.Writer) error {
	report, err := s.MemberGivingData(ctx, memberID, from, to)
	if err != nil {
		return err
	}

	pdf := newReportPDF("Giving Statement")
	s.pdfHeader(pdf, "Giving Statement", fmt.Sprintf("Period %s to %s", report.From, report.To))

	pdfKeyValue(pdf, "Member", report.Member.Name)
	if report.Member.EmailAddress != "" {
		pdfKeyValue(pdf, "Email", report.Member.EmailAddress)
	}
	pdfKeyValue(pdf, "Total contributions", s.money(report.Total))
	pdf.Ln(6)

	if len(report.ByCategory) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "By category", "", 1, "L", false, 0, "")
		widths := []float64{80, 50, 30}
		pdfTableHead(pdf, widths, []string{"Category", "Total", "Entries"})
		for _, ct := range report.ByCategory {
			pdf.CellFormat(widths[0], pdfRowHeight, ct.Category, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], pdfRowHeight, s.money(ct.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[2], pdfRowHeight, fmt.Sprintf("%d", ct.Count), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if len(report.Transactions) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, "Contributions", "", 1, "L", false, 0, "")
		widths := []float64{30, 70, 40, 40}
		pdfTableHead(pdf, widths, []string{"Date", "Category", "Amount", "Description"})
		for _, t := range report.Transactions {
			pdf.CellFormat(widths[0], pdfRowHeight, t.Date, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], pdfRowHeight, t.CategoryName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], pdfRowHeight, s.money(t.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], pdfRowHeight, truncate(t.Description, 24), "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	} else {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No contributions recorded in this period.", "", 1, "L", false, 0, "")
	}

	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+report.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing giving statement pdf: %w", err)
	}
	s.recordGenerated(ctx, actorID, "giving statement PDF",
		fmt.Sprintf("member %d, %s to %s", memberID, from, to))
	return nil
}

// WriteBudgetPDF renders the budget-versus-actual comparison for the
// period, one row per expense category.
func (s *Service) WriteBudgetPDF(ctx context.Context, actorID *int64, from, to string, budgets map[string]float64, w io.Writer) error {
	report, err := s.BudgetData(ctx, from, to, budgets)
	if err != nil {
		return err
	}

	pdf := newReportPDF("Budget Report")
	s.pdfHeader(pdf, "Budget vs Actual", fmt.Sprintf("Period %s to %s", report.From, report.To))

	widths := []float64{70, 35, 35, 35}
	pdfTableHead(pdf, widths, []string{"Category", "Budget", "Actual", "Variance"})
	for _, line := range report.Lines {
		pdf.CellFormat(widths[0], pdfRowHeight, line.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], pdfRowHeight, s.money(line.Budget), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], pdfRowHeight, s.money(line.Actual), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], pdfRowHeight, s.money(line.Variance), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(widths[0], pdfRowHeight, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[1], pdfRowHeight, s.money(report.TotalBudget), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[2], pdfRowHeight, s.money(report.TotalActual), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], pdfRowHeight, s.money(report.TotalVariance), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+report.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing budget pdf: %w", err)
	}
	s.recordGenerated(ctx, actorID, "budget PDF", from+" to "+to)
	return nil
}

// WriteMonthlyTrendsPDF renders the year's income versus expenses table.
func (s *Service) WriteMonthlyTrendsPDF(ctx context.Context, actorID *int64, year int, w io.Writer) error {
	trends, err := s.finances.MonthlyTrends(ctx, year)
	if err != nil {
		return err
	}

	pdf := newReportPDF("Monthly Trends")
	s.pdfHeader(pdf, "Monthly Trends", fmt.Sprintf("Calendar year %d", year))

	widths := []float64{30, 45, 45, 45}
	pdfTableHead(pdf, widths, []string{"Month", "Income", "Expenses", "Net"})
	var income, expenses float64
	for _, mt := range trends {
		pdf.CellFormat(widths[0], pdfRowHeight, mt.Month, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], pdfRowHeight, s.money(mt.Income), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], pdfRowHeight, s.money(mt.Expenses), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], pdfRowHeight, s.money(mt.Net), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		income += mt.Income
		expenses += mt.Expenses
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(widths[0], pdfRowHeight, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[1], pdfRowHeight, s.money(income), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[2], pdfRowHeight, s.money(expenses), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], pdfRowHeight, s.money(income-expenses), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing trends pdf: %w", err)
	}
	s.recordGenerated(ctx, actorID, "monthly trends PDF", fmt.Sprintf("year %d", year))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
