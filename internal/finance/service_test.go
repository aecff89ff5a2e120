package finance

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestService_AddTransaction_Validation(t *testing.T) {
	db := testDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	cats, _ := NewRepository(db).ListCategories(ctx, TypeIncome)
	catID := cats[0].ID

	tests := []struct {
		name string
		txn  Transaction
		want error
	}{
		{"bad type", Transaction{Date: "2026-01-01", Type: "Transfer", CategoryID: catID, Amount: 10}, ErrInvalidType},
		{"zero amount", Transaction{Date: "2026-01-01", Type: TypeIncome, CategoryID: catID, Amount: 0}, ErrInvalidAmount},
		{"negative amount", Transaction{Date: "2026-01-01", Type: TypeIncome, CategoryID: catID, Amount: -5}, ErrInvalidAmount},
		{"bad date", Transaction{Date: "01/01/2026", Type: TypeIncome, CategoryID: catID, Amount: 10}, ErrInvalidDate},
		{"future date", Transaction{Date: "2099-01-01", Type: TypeIncome, CategoryID: catID, Amount: 10}, ErrFutureDate},
		{"missing category", Transaction{Date: "2026-01-01", Type: TypeIncome, Amount: 10}, ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := tt.txn
			if err := svc.AddTransaction(ctx, nil, &txn); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_AddTransaction_NormalisesType(t *testing.T) {
	db := testDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	cats, _ := NewRepository(db).ListCategories(ctx, TypeExpense)
	txn := &Transaction{Date: "2026-04-01", Type: "expenses", CategoryID: cats[0].ID, Amount: 42}
	if err := svc.AddTransaction(ctx, nil, txn); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if txn.Type != TypeExpense {
		t.Errorf("Type = %q, want %q", txn.Type, TypeExpense)
	}
}

func TestService_AddTransaction_RecordsAudit(t *testing.T) {
	db := testDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	actorID := int64(3)
	cats, _ := NewRepository(db).ListCategories(ctx, TypeIncome)
	txn := &Transaction{Date: "2026-04-05", Type: TypeIncome, CategoryID: cats[0].ID, Amount: 120}
	if err := svc.AddTransaction(ctx, &actorID, txn); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	var n int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM audit_log WHERE action = 'TRANSACTION_ADDED' AND user_id = ?",
		actorID).Scan(&n); err != nil {
		t.Fatalf("counting audit rows: %v", err)
	}
	if n != 1 {
		t.Errorf("TRANSACTION_ADDED audit rows = %d, want 1", n)
	}
}

func TestService_DeleteTransaction_NotFound(t *testing.T) {
	db := testDB(t)
	svc := newTestService(t, db)

	err := svc.DeleteTransaction(context.Background(), nil, 12345)
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("error = %v, want ErrTransactionNotFound", err)
	}
}

func TestService_YTDSummary(t *testing.T) {
	db := testDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	thisYear := time.Now().UTC().Format("2006")
	seedTransaction(t, db, thisYear+"-01-02", TypeIncome, 300)
	seedTransaction(t, db, "2001-06-01", TypeExpense, 999) // ancient history

	s, err := svc.YTDSummary(ctx)
	if err != nil {
		t.Fatalf("YTDSummary() error = %v", err)
	}
	if s.Income != 300 {
		t.Errorf("Income = %.2f, want 300.00", s.Income)
	}
	if s.Expenses != 0 {
		t.Errorf("Expenses = %.2f, want 0.00", s.Expenses)
	}
}

func TestService_ListCategories_RejectsBadType(t *testing.T) {
	db := testDB(t)
	svc := newTestService(t, db)

	if _, err := svc.ListCategories(context.Background(), "loans"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("error = %v, want ErrInvalidType", err)
	}
}

func TestService_BalanceBefore_ValidatesDate(t *testing.T) {
	db := testDB(t)
	svc := newTestService(t, db)

	if _, err := svc.BalanceBefore(context.Background(), "next tuesday"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("error = %v, want ErrInvalidDate", err)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Income", TypeIncome, false},
		{"income", TypeIncome, false},
		{" EXPENSE ", TypeExpense, false},
		{"expenses", TypeExpense, false},
		{"transfer", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := normalizeType(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidType) {
				t.Errorf("normalizeType(%q) error = %v, want ErrInvalidType", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("normalizeType(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}
