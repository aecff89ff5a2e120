package finance

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the civil date format for transaction dates.
const DateLayout = "2006-01-02"

// Transaction types.
const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"
)

// Category is an income or expense category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transaction is a single financial entry. CategoryName is denormalised
// at insert time so reports survive category renames and deletions.
type Transaction struct {
	ID           int64     `json:"id"`
	Date         string    `json:"date"`
	Type         string    `json:"type"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Amount       float64   `json:"amount"`
	Description  string    `json:"description,omitempty"`
	MemberID     *int64    `json:"member_id,omitempty"`
	MemberName   string    `json:"member_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks a transaction's fields before persistence.
func (t *Transaction) Validate() error {
	if t.Type != TypeIncome && t.Type != TypeExpense {
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return ErrInvalidDate
	}
	if d.After(time.Now().UTC()) {
		return ErrFutureDate
	}
	if t.CategoryID <= 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Filter narrows a transaction listing. Zero values mean "no filter".
type Filter struct {
	Type       string
	From       string
	To         string
	MemberID   int64
	CategoryID int64
	Limit      int
}

// Summary totals income and expenses over a period.
type Summary struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
	Count    int     `json:"count"`
}

// CategoryTotal aggregates one category over a period.
type CategoryTotal struct {
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// MonthlyTrend is one month of income versus expenses.
type MonthlyTrend struct {
	Month    string  `json:"month"` // YYYY-MM
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// normalizeType maps loose user input onto the two canonical types.
func normalizeType(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TypeIncome, nil
	case "expense", "expenses":
		return TypeExpense, nil
	default:
		return "", ErrInvalidType
	}
}

// Sentinel errors for finance operations.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryExists      = errors.New("category already exists")
	ErrCategoryNameEmpty   = errors.New("category name is required")
	ErrInvalidType         = errors.New("transaction type must be Income or Expense")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidDate         = errors.New("date must be in YYYY-MM-DD format")
	ErrFutureDate          = errors.New("date cannot be in the future")
)
