package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/parishworks/chms-core/internal/finance"
)

// WriteTransactionsCSV streams the period's transactions as CSV with a
// header row. Amounts are plain numbers so spreadsheets parse them.
func (s *Service) WriteTransactionsCSV(ctx context.Context, actorID *int64, from, to string, w io.Writer) error {
	if err := validatePeriod(from, to); err != nil {
		return err
	}

	txns, err := s.finances.ListTransactions(ctx, finance.Filter{From: from, To: to})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "category", "amount", "description", "member"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range txns {
		record := []string{
			t.Date,
			t.Type,
			t.CategoryName,
			fmt.Sprintf("%.2f", t.Amount),
			t.Description,
			t.MemberName,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	s.recordGenerated(ctx, actorID, "transactions CSV", from+" to "+to)
	return nil
}

// WriteMembersCSV streams the membership roll as CSV.
func (s *Service) WriteMembersCSV(ctx context.Context, actorID *int64, w io.Writer) error {
	members, err := s.members.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"name", "mobile_no", "email_address", "join_date", "date_of_birth",
		"gender", "membership_status", "baptized", "baptism_date"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, m := range members {
		baptized := "no"
		if m.Baptized {
			baptized = "yes"
		}
		record := []string{m.Name, m.MobileNo, m.EmailAddress, m.JoinDate, m.DateOfBirth,
			m.Gender, m.MembershipStatus, baptized, m.BaptismDate}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	s.recordGenerated(ctx, actorID, "members CSV", "full roll")
	return nil
}
