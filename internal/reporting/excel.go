package reporting

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the Excel workbook.
const (
	sheetSummary      = "Summary"
	sheetTransactions = "Transactions"
	sheetCategories   = "Categories"
)

// WriteFinancialExcel renders the period report as a three-sheet
// workbook: summary figures, the transaction listing, and the category
// breakdown.
func (s *Service) WriteFinancialExcel(ctx context.Context, actorID *int64, from, to string, w io.Writer) error {
	report, err := s.FinancialData(ctx, from, to)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}

	summaryRows := [][]any{
		{s.opts.OrganisationName},
		{"Financial Report", fmt.Sprintf("%s to %s", report.From, report.To)},
		{},
		{"Opening balance", report.OpeningBalance},
		{"Total income", report.Summary.Income},
		{"Total expenses", report.Summary.Expenses},
		{"Net for period", report.Summary.Net},
		{"Closing balance", report.ClosingBalance},
		{"Transactions", report.Summary.Count},
		{},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04 MST")},
	}
	if err := writeRows(f, sheetSummary, summaryRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetTransactions); err != nil {
		return fmt.Errorf("adding transactions sheet: %w", err)
	}
	txnRows := [][]any{{"Date", "Type", "Category", "Amount", "Description", "Member"}}
	for _, t := range report.Transactions {
		txnRows = append(txnRows, []any{t.Date, t.Type, t.CategoryName, t.Amount, t.Description, t.MemberName})
	}
	if err := writeRows(f, sheetTransactions, txnRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(sheetCategories); err != nil {
		return fmt.Errorf("adding categories sheet: %w", err)
	}
	catRows := [][]any{{"Category", "Type", "Total", "Entries"}}
	for _, ct := range report.CategoryTotals {
		catRows = append(catRows, []any{ct.Category, ct.Type, ct.Total, ct.Count})
	}
	if err := writeRows(f, sheetCategories, catRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing excel workbook: %w", err)
	}
	s.recordGenerated(ctx, actorID, "financial Excel", from+" to "+to)
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
